package models

import (
	"time"

	"github.com/google/uuid"
)

// UnblockRequest is one workflow instance seeking guardian approval to
// reverse a block. The guardian email is captured at creation time: a later
// guardian change does not redirect an in-flight request.
type UnblockRequest struct {
	ID                  uuid.UUID     `json:"id"`
	UserID              uuid.UUID     `json:"user_id"`
	BlockedContactID    uuid.UUID     `json:"blocked_contact_id"`
	GuardianEmail       string        `json:"guardian_email"`
	CurrentMood         Mood          `json:"current_mood"`
	JournalEntry        string        `json:"journal_entry"`
	AdditionalContext   string        `json:"additional_context,omitempty"`
	Urgency             Urgency       `json:"urgency"`
	Status              RequestStatus `json:"status"`
	GuardianResponse    *string       `json:"guardian_response,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	GuardianRespondedAt *time.Time    `json:"guardian_responded_at,omitempty"`
	ProcessedAt         *time.Time    `json:"processed_at,omitempty"`
}

// NewUnblockRequest builds a pending request addressed to the given guardian.
func NewUnblockRequest(userID, contactID uuid.UUID, guardianEmail string, mood Mood, journal, context string, urgency Urgency) *UnblockRequest {
	if urgency == "" {
		urgency = UrgencyNormal
	}
	return &UnblockRequest{
		ID:                uuid.New(),
		UserID:            userID,
		BlockedContactID:  contactID,
		GuardianEmail:     guardianEmail,
		CurrentMood:       mood,
		JournalEntry:      journal,
		AdditionalContext: context,
		Urgency:           urgency,
		Status:            RequestPending,
		CreatedAt:         time.Now(),
	}
}

// Decided reports whether a guardian has resolved the request.
func (r *UnblockRequest) Decided() bool {
	return r.Status != RequestPending
}

// AwaitingCompletion reports whether the approval side effects still need to
// be applied by the sync engine.
func (r *UnblockRequest) AwaitingCompletion() bool {
	return r.Status == RequestApproved && r.ProcessedAt == nil
}
