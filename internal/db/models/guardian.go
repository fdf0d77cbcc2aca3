package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Guardian is the relationship between a user and the trusted party who must
// approve unblock requests. At most one row is active per user; adding a new
// guardian deactivates the previous one.
type Guardian struct {
	ID               uuid.UUID     `json:"id"`
	UserID           uuid.UUID     `json:"user_id"`
	GuardianEmail    string        `json:"guardian_email"`
	GuardianName     string        `json:"guardian_name"`
	RelationshipType string        `json:"relationship_type"`
	PersonalMessage  string        `json:"personal_message,omitempty"`
	Status           ContactStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// NewGuardian builds an active guardian relationship. The email is lowercased
// so decision authorization can compare case-insensitively.
func NewGuardian(userID uuid.UUID, email, name, relationship string) *Guardian {
	now := time.Now()
	return &Guardian{
		ID:               uuid.New(),
		UserID:           userID,
		GuardianEmail:    strings.ToLower(strings.TrimSpace(email)),
		GuardianName:     strings.TrimSpace(name),
		RelationshipType: relationship,
		Status:           ContactActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
