package models

import (
	"time"

	"github.com/google/uuid"
)

// Known platform tags a contact can be blocked on. "sms" and "calls" are the
// two the sync agent enforces natively; the rest are informational.
var KnownPlatforms = []string{"sms", "calls", "whatsapp", "instagram", "facebook", "email", "other"}

// BlockedContact is a communication target the user has blocked, owned by the
// user's account. At most one row may be active per (user, phone) pair;
// re-blocking the same number replaces the previous active row.
type BlockedContact struct {
	ID               uuid.UUID     `json:"id"`
	UserID           uuid.UUID     `json:"user_id"`
	ContactName      string        `json:"contact_name"`
	ContactPhone     *string       `json:"contact_phone,omitempty"`
	ContactEmail     *string       `json:"contact_email,omitempty"`
	RelationshipType string        `json:"relationship_type"`
	Platforms        []string      `json:"platforms"`
	Severity         Severity      `json:"severity"`
	Reason           string        `json:"reason"`
	Status           ContactStatus `json:"status"`
	BlockedAt        time.Time     `json:"blocked_at"`
	UnblockedAt      *time.Time    `json:"unblocked_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// NewBlockedContact builds an active contact with blocked_at set to now.
func NewBlockedContact(userID uuid.UUID, name string, platforms []string, severity Severity, reason string) *BlockedContact {
	now := time.Now()
	return &BlockedContact{
		ID:               uuid.New(),
		UserID:           userID,
		ContactName:      name,
		RelationshipType: "other",
		Platforms:        platforms,
		Severity:         severity,
		Reason:           reason,
		Status:           ContactActive,
		BlockedAt:        now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsActive reports whether the block is currently enforced.
func (c *BlockedContact) IsActive() bool {
	return c.Status == ContactActive
}

// Phone returns the contact phone or "" when none was recorded.
func (c *BlockedContact) Phone() string {
	if c.ContactPhone == nil {
		return ""
	}
	return *c.ContactPhone
}
