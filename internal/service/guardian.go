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
	"github.com/shush-app/guarded-blocking-go/internal/validation"
	"github.com/shush-app/guarded-blocking-go/pkg/logger"
)

// SetGuardianInput carries a guardian nomination. UserEmail is the account
// email of the nominating user, used to reject self-nomination.
type SetGuardianInput struct {
	UserEmail        string
	GuardianEmail    string
	GuardianName     string
	RelationshipType string
	PersonalMessage  string
}

// GuardianService manages the single trusted guardian per user.
type GuardianService struct {
	guardians repository.GuardianRepository
	log       *zap.Logger
}

// NewGuardianService creates a new GuardianService.
func NewGuardianService(guardians repository.GuardianRepository) *GuardianService {
	return &GuardianService{
		guardians: guardians,
		log:       logger.Named("guardian"),
	}
}

// Set installs the user's guardian, replacing any existing one. A user may
// not nominate themselves.
func (s *GuardianService) Set(ctx context.Context, userID uuid.UUID, input SetGuardianInput) (*models.Guardian, error) {
	email := strings.ToLower(strings.TrimSpace(input.GuardianEmail))
	if err := validation.Email(email); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := validation.GuardianName(input.GuardianName); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := validation.PersonalMessage(input.PersonalMessage); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if input.UserEmail != "" && strings.EqualFold(strings.TrimSpace(input.UserEmail), email) {
		return nil, ErrSelfGuardian
	}

	guardian := models.NewGuardian(userID, email, strings.TrimSpace(input.GuardianName), input.RelationshipType)
	guardian.PersonalMessage = input.PersonalMessage

	if err := s.guardians.Replace(ctx, guardian); err != nil {
		s.log.Error("Failed to set guardian",
			zap.Error(err),
			zap.String("userId", userID.String()),
		)
		return nil, fmt.Errorf("failed to set guardian: %w", err)
	}

	s.log.Info("Guardian set",
		zap.String("userId", userID.String()),
		zap.String("guardianId", guardian.ID.String()),
	)

	return guardian, nil
}

// Get retrieves the user's active guardian.
func (s *GuardianService) Get(ctx context.Context, userID uuid.UUID) (*models.Guardian, error) {
	guardian, err := s.guardians.GetActive(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNoActiveGuardian
		}
		return nil, fmt.Errorf("failed to get guardian: %w", err)
	}

	return guardian, nil
}

// Remove deactivates the user's guardian. With no guardian, new unblock
// flows cannot be started; pending requests keep their captured email.
func (s *GuardianService) Remove(ctx context.Context, userID, guardianID uuid.UUID) error {
	if err := s.guardians.Deactivate(ctx, userID, guardianID); err != nil {
		if db.IsNotFound(err) {
			return ErrNoActiveGuardian
		}
		return fmt.Errorf("failed to remove guardian: %w", err)
	}

	s.log.Info("Guardian removed",
		zap.String("userId", userID.String()),
		zap.String("guardianId", guardianID.String()),
	)

	return nil
}
