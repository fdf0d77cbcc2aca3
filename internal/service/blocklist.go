// Package service provides the business logic of the blocking system: the
// block list, guardian management, the guided unblock flow, the guardian
// decision gateway, and the device sync engine.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shush-app/guarded-blocking-go/internal/db"
	"github.com/shush-app/guarded-blocking-go/internal/db/models"
	"github.com/shush-app/guarded-blocking-go/internal/db/repository"
	"github.com/shush-app/guarded-blocking-go/internal/metrics"
	"github.com/shush-app/guarded-blocking-go/internal/validation"
	"github.com/shush-app/guarded-blocking-go/pkg/logger"
)

// BlockContactInput carries everything needed to block a contact.
type BlockContactInput struct {
	ContactName      string
	ContactPhone     string
	ContactEmail     string
	RelationshipType string
	Platforms        []string
	Severity         models.Severity
	Reason           string
}

// UpdateContactInput carries the editable fields of a blocked contact. The
// contact's phone and email are fixed for the life of the block; changing
// the target means unblocking and blocking anew.
type UpdateContactInput struct {
	ContactName      string
	RelationshipType string
	Platforms        []string
	Severity         models.Severity
	Reason           string
}

// BlocklistService manages the authoritative block list.
type BlocklistService struct {
	contacts repository.BlockedContactRepository
	log      *zap.Logger
}

// NewBlocklistService creates a new BlocklistService.
func NewBlocklistService(contacts repository.BlockedContactRepository) *BlocklistService {
	return &BlocklistService{
		contacts: contacts,
		log:      logger.Named("blocklist"),
	}
}

// Block validates the input and records a new active block. Re-blocking a
// phone number that already has an active block replaces the old row.
func (s *BlocklistService) Block(ctx context.Context, userID uuid.UUID, input BlockContactInput) (*models.BlockedContact, error) {
	if strings.TrimSpace(input.ContactName) == "" {
		return nil, &ValidationError{Message: "contact name is required"}
	}
	if err := validation.Reason(input.Reason); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := validation.Severity(input.Severity); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := validation.Platforms(input.Platforms); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if input.ContactPhone == "" && input.ContactEmail == "" {
		return nil, &ValidationError{Message: "a contact phone or email is required"}
	}

	contact := models.NewBlockedContact(userID, strings.TrimSpace(input.ContactName), input.Platforms, input.Severity, input.Reason)
	if input.RelationshipType != "" {
		contact.RelationshipType = input.RelationshipType
	}

	if input.ContactPhone != "" {
		phone := validation.NormalizePhone(input.ContactPhone)
		if err := validation.Phone(phone); err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
		contact.ContactPhone = &phone
	}
	if input.ContactEmail != "" {
		email := strings.ToLower(strings.TrimSpace(input.ContactEmail))
		if err := validation.Email(email); err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
		contact.ContactEmail = &email
	}

	if err := s.contacts.Create(ctx, contact); err != nil {
		s.log.Error("Failed to block contact",
			zap.Error(err),
			zap.String("userId", userID.String()),
		)
		return nil, fmt.Errorf("failed to block contact: %w", err)
	}

	metrics.ContactsBlocked.WithLabelValues(string(contact.Severity)).Inc()
	s.log.Info("Contact blocked",
		zap.String("userId", userID.String()),
		zap.String("contactId", contact.ID.String()),
		zap.String("severity", string(contact.Severity)),
	)

	return contact, nil
}

// Get retrieves one contact, active or not.
func (s *BlocklistService) Get(ctx context.Context, userID, contactID uuid.UUID) (*models.BlockedContact, error) {
	contact, err := s.contacts.GetByID(ctx, userID, contactID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return contact, nil
}

// Update edits the descriptive fields of an active block. Inactive contacts
// are history and stay as they were recorded.
func (s *BlocklistService) Update(ctx context.Context, userID, contactID uuid.UUID, input UpdateContactInput) (*models.BlockedContact, error) {
	if strings.TrimSpace(input.ContactName) == "" {
		return nil, &ValidationError{Message: "contact name is required"}
	}
	if err := validation.Reason(input.Reason); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := validation.Severity(input.Severity); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := validation.Platforms(input.Platforms); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	contact, err := s.contacts.GetByID(ctx, userID, contactID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	if !contact.IsActive() {
		return nil, ErrContactNotBlocked
	}

	contact.ContactName = strings.TrimSpace(input.ContactName)
	contact.Platforms = input.Platforms
	contact.Severity = input.Severity
	contact.Reason = input.Reason
	if input.RelationshipType != "" {
		contact.RelationshipType = input.RelationshipType
	}

	if err := s.contacts.Update(ctx, contact); err != nil {
		if db.IsNotFound(err) {
			// Deactivated between the read and the write.
			return nil, ErrContactNotBlocked
		}
		s.log.Error("Failed to update contact",
			zap.Error(err),
			zap.String("contactId", contactID.String()),
		)
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	s.log.Info("Contact updated",
		zap.String("userId", userID.String()),
		zap.String("contactId", contact.ID.String()),
		zap.String("severity", string(contact.Severity)),
	)

	return contact, nil
}

// Unblock deactivates a contact directly, outside the guardian flow. Any
// pending unblock request for it becomes an orphan the decision gateway
// refuses to approve.
func (s *BlocklistService) Unblock(ctx context.Context, userID, contactID uuid.UUID) error {
	err := s.contacts.Deactivate(ctx, userID, contactID)
	if err == nil {
		s.log.Info("Contact unblocked directly",
			zap.String("userId", userID.String()),
			zap.String("contactId", contactID.String()),
		)
		return nil
	}
	if !db.IsNotFound(err) {
		return fmt.Errorf("failed to unblock contact: %w", err)
	}

	// Zero rows: either the contact never existed or it is already inactive.
	if _, getErr := s.contacts.GetByID(ctx, userID, contactID); getErr != nil {
		if db.IsNotFound(getErr) {
			return ErrContactNotFound
		}
		return fmt.Errorf("failed to unblock contact: %w", getErr)
	}

	return ErrContactNotBlocked
}

// List retrieves the user's contacts, optionally only active blocks.
func (s *BlocklistService) List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*models.BlockedContact, error) {
	contacts, err := s.contacts.List(ctx, userID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	return contacts, nil
}
