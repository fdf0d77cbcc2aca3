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
	"github.com/shush-app/guarded-blocking-go/internal/notify"
	"github.com/shush-app/guarded-blocking-go/internal/validation"
	"github.com/shush-app/guarded-blocking-go/pkg/logger"
)

// DecisionInput carries a guardian's ruling on an unblock request.
type DecisionInput struct {
	GuardianEmail string
	Decision      models.RequestStatus
	Message       string
}

// DecisionGateway is the only path through which an unblock request gets
// resolved. Authorization is by the guardian email captured on the request;
// the database update is the concurrency guard, so exactly one decision wins.
type DecisionGateway struct {
	requests repository.UnblockRequestRepository
	contacts repository.BlockedContactRepository
	notifier notify.Notifier
	log      *zap.Logger
}

// NewDecisionGateway creates a new DecisionGateway.
func NewDecisionGateway(
	requests repository.UnblockRequestRepository,
	contacts repository.BlockedContactRepository,
	notifier notify.Notifier,
) *DecisionGateway {
	return &DecisionGateway{
		requests: requests,
		contacts: contacts,
		notifier: notifier,
		log:      logger.Named("decision"),
	}
}

// Decide resolves a pending request. An approval also deactivates the blocked
// contact; if that follow-up write fails the request stays approved and
// unprocessed, and the sync engine retries it.
//
// A missing request and a request addressed to a different guardian both come
// back as ErrNotPermitted, so a caller cannot probe for request existence.
func (g *DecisionGateway) Decide(ctx context.Context, requestID uuid.UUID, input DecisionInput) (*models.UnblockRequest, error) {
	if !models.RequestPending.CanTransition(input.Decision) {
		return nil, &ValidationError{Message: fmt.Sprintf("decision must be %q or %q", models.RequestApproved, models.RequestDenied)}
	}
	if err := validation.DecisionMessage(input.Message); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	email := strings.ToLower(strings.TrimSpace(input.GuardianEmail))
	if err := validation.Email(email); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	if input.Decision == models.RequestApproved {
		if err := g.checkContactStillBlocked(ctx, requestID, email); err != nil {
			return nil, err
		}
	}

	request, err := g.requests.Decide(ctx, requestID, email, input.Decision, input.Message)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, g.classifyDecideConflict(ctx, requestID, email)
		}
		return nil, fmt.Errorf("failed to decide request: %w", err)
	}

	metrics.RequestsDecided.WithLabelValues(string(input.Decision)).Inc()
	g.log.Info("Unblock request decided",
		zap.String("requestId", requestID.String()),
		zap.String("outcome", string(input.Decision)),
	)

	if request.Status == models.RequestApproved {
		err := g.contacts.Deactivate(ctx, request.UserID, request.BlockedContactID)
		if err != nil && !db.IsNotFound(err) {
			// Recoverable: the request is approved with processed_at unset, so
			// the next sync run picks it up.
			g.log.Error("Failed to deactivate contact after approval",
				zap.Error(err),
				zap.String("requestId", requestID.String()),
				zap.String("contactId", request.BlockedContactID.String()),
			)
		}
	}

	g.notifyUser(ctx, request, input.Message)

	return request, nil
}

// ListForGuardian returns the requests addressed to a guardian, optionally
// filtered to one status. This is the guardian dashboard feed.
func (g *DecisionGateway) ListForGuardian(ctx context.Context, guardianEmail string, status models.RequestStatus) ([]*models.UnblockRequest, error) {
	email := strings.ToLower(strings.TrimSpace(guardianEmail))
	if err := validation.Email(email); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if status != "" && !statusKnown(status) {
		return nil, &ValidationError{Message: fmt.Sprintf("unknown status %q", status)}
	}

	requests, err := g.requests.ListForGuardian(ctx, email, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list guardian requests: %w", err)
	}

	return requests, nil
}

// ListByUser returns all of a user's unblock requests, newest first.
func (g *DecisionGateway) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.UnblockRequest, error) {
	requests, err := g.requests.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unblock requests: %w", err)
	}

	return requests, nil
}

// checkContactStillBlocked rejects approving a request whose contact has
// already been unblocked some other way (an orphaned request).
func (g *DecisionGateway) checkContactStillBlocked(ctx context.Context, requestID uuid.UUID, email string) error {
	request, err := g.requests.GetByID(ctx, requestID)
	if err != nil {
		if db.IsNotFound(err) {
			return ErrNotPermitted
		}
		return fmt.Errorf("failed to look up request: %w", err)
	}
	if !strings.EqualFold(request.GuardianEmail, email) {
		g.log.Warn("Decision attempt by non-guardian",
			zap.String("requestId", requestID.String()),
		)
		return ErrNotPermitted
	}

	contact, err := g.contacts.GetByID(ctx, request.UserID, request.BlockedContactID)
	if err != nil {
		if db.IsNotFound(err) {
			return ErrContactNotBlocked
		}
		return fmt.Errorf("failed to look up contact: %w", err)
	}
	if !contact.IsActive() {
		return ErrContactNotBlocked
	}

	return nil
}

// classifyDecideConflict runs after the conditional update matched no row,
// and works out which failure to report.
func (g *DecisionGateway) classifyDecideConflict(ctx context.Context, requestID uuid.UUID, email string) error {
	request, err := g.requests.GetByID(ctx, requestID)
	if err != nil {
		if db.IsNotFound(err) {
			return ErrNotPermitted
		}
		return fmt.Errorf("failed to classify decision conflict: %w", err)
	}

	if !strings.EqualFold(request.GuardianEmail, email) {
		g.log.Warn("Decision attempt by non-guardian",
			zap.String("requestId", requestID.String()),
		)
		return ErrNotPermitted
	}

	if request.Decided() {
		return ErrAlreadyResolved
	}

	// Pending, right guardian, yet the update matched nothing: a concurrent
	// writer got there between the update and this read.
	return ErrAlreadyResolved
}

func (g *DecisionGateway) notifyUser(ctx context.Context, request *models.UnblockRequest, message string) {
	contactName := ""
	if contact, err := g.contacts.GetByID(ctx, request.UserID, request.BlockedContactID); err == nil {
		contactName = contact.ContactName
	}

	event, err := notify.NewEvent("user_decision", &notify.UserDecisionPayload{
		RequestID:   request.ID,
		UserID:      request.UserID,
		ContactName: contactName,
		Outcome:     string(request.Status),
		Message:     message,
	})
	if err == nil {
		err = g.notifier.Publish(ctx, notify.KeyUserDecision, event)
	}
	if err != nil {
		g.log.Error("Failed to notify user of decision",
			zap.Error(err),
			zap.String("requestId", request.ID.String()),
		)
	}
}

func statusKnown(s models.RequestStatus) bool {
	switch s {
	case models.RequestPending, models.RequestApproved, models.RequestDenied, models.RequestCompleted:
		return true
	}
	return false
}
