package service

import (
	"context"
	"fmt"
	"sync"
	"time"

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

// FlowState is the stage of an in-progress unblock flow session.
type FlowState string

const (
	FlowCoolingOff FlowState = "cooling_off"
	FlowReflecting FlowState = "reflecting"
)

// FlowSession is an in-progress unblock flow. Sessions live in memory only:
// abandoning the flow (or restarting the server) leaves no trace, which is
// the intended friction. Only Submit writes to the database.
type FlowSession struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	ContactID        uuid.UUID `json:"contact_id"`
	ContactName      string    `json:"contact_name"`
	GuardianEmail    string    `json:"guardian_email"`
	State            FlowState `json:"state"`
	CoolingOffEndsAt time.Time `json:"cooling_off_ends_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// Remaining returns how much cooling-off is left at the given instant.
func (s *FlowSession) Remaining(now time.Time) time.Duration {
	if remaining := s.CoolingOffEndsAt.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}

// SubmitInput carries the reflection answers that turn a session into a
// persisted unblock request.
type SubmitInput struct {
	Mood              models.Mood
	JournalEntry      string
	AdditionalContext string
	Urgency           models.Urgency
}

// FlowService runs the guided unblock flow: cooling-off, reflection, then
// submission to the guardian.
type FlowService struct {
	contacts  repository.BlockedContactRepository
	guardians repository.GuardianRepository
	requests  repository.UnblockRequestRepository
	notifier  notify.Notifier

	coolingOffBase time.Duration
	now            func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*FlowSession

	log *zap.Logger
}

// NewFlowService creates a new FlowService. coolingOffBase is the wait for a
// low-severity contact; medium and high multiply it.
func NewFlowService(
	contacts repository.BlockedContactRepository,
	guardians repository.GuardianRepository,
	requests repository.UnblockRequestRepository,
	notifier notify.Notifier,
	coolingOffBase time.Duration,
) *FlowService {
	return &FlowService{
		contacts:       contacts,
		guardians:      guardians,
		requests:       requests,
		notifier:       notifier,
		coolingOffBase: coolingOffBase,
		now:            time.Now,
		sessions:       make(map[uuid.UUID]*FlowSession),
		log:            logger.Named("unblockflow"),
	}
}

// Begin starts a flow session for a blocked contact. It requires an active
// guardian, an actively blocked contact, and no pending request for that
// contact. The session starts in cooling-off sized by the contact's severity.
func (fs *FlowService) Begin(ctx context.Context, userID, contactID uuid.UUID) (*FlowSession, error) {
	guardian, err := fs.guardians.GetActive(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNoActiveGuardian
		}
		return nil, fmt.Errorf("failed to look up guardian: %w", err)
	}

	contact, err := fs.contacts.GetByID(ctx, userID, contactID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to look up contact: %w", err)
	}
	if !contact.IsActive() {
		return nil, ErrContactNotBlocked
	}

	pending, err := fs.requests.HasPending(ctx, userID, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending {
		return nil, ErrPendingRequestExists
	}

	now := fs.now()
	session := &FlowSession{
		ID:               uuid.New(),
		UserID:           userID,
		ContactID:        contactID,
		ContactName:      contact.ContactName,
		GuardianEmail:    guardian.GuardianEmail,
		State:            FlowCoolingOff,
		CoolingOffEndsAt: now.Add(contact.Severity.CoolingOff(fs.coolingOffBase)),
		CreatedAt:        now,
	}

	stored := *session
	fs.mu.Lock()
	fs.sessions[session.ID] = &stored
	fs.mu.Unlock()

	fs.log.Info("Unblock flow started",
		zap.String("sessionId", session.ID.String()),
		zap.String("contactId", contactID.String()),
		zap.String("severity", string(contact.Severity)),
		zap.Duration("coolingOff", session.CoolingOffEndsAt.Sub(now)),
	)

	return session, nil
}

// Get returns the session, scoped to its owner. Callers receive a copy; the
// stored session may change under the service's lock after return.
func (fs *FlowService) Get(userID, sessionID uuid.UUID) (*FlowSession, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	session, ok := fs.sessions[sessionID]
	if !ok || session.UserID != userID {
		return nil, ErrSessionNotFound
	}

	out := *session
	return &out, nil
}

// StartReflection moves a session from cooling-off to reflecting. It fails
// while the cooling-off wait has not elapsed.
func (fs *FlowService) StartReflection(userID, sessionID uuid.UUID) (*FlowSession, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	session, ok := fs.sessions[sessionID]
	if !ok || session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	if fs.now().Before(session.CoolingOffEndsAt) {
		return nil, ErrCoolingOffIncomplete
	}

	session.State = FlowReflecting
	out := *session
	return &out, nil
}

// Submit validates the reflection answers, persists the unblock request with
// the guardian email captured at Begin, and notifies the guardian. The
// session is consumed on success.
func (fs *FlowService) Submit(ctx context.Context, userID, sessionID uuid.UUID, input SubmitInput) (*models.UnblockRequest, error) {
	fs.mu.Lock()
	stored, ok := fs.sessions[sessionID]
	if !ok || stored.UserID != userID {
		fs.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	session := *stored
	fs.mu.Unlock()

	if session.State != FlowReflecting {
		if fs.now().Before(session.CoolingOffEndsAt) {
			return nil, ErrCoolingOffIncomplete
		}
		return nil, &ValidationError{Message: "reflection has not been started"}
	}

	if err := validation.Mood(input.Mood); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := validation.Journal(input.JournalEntry); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	urgency := input.Urgency
	if urgency == "" {
		urgency = models.UrgencyNormal
	}
	if err := validation.Urgency(urgency); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	// Re-check the contact: it may have been unblocked since Begin.
	contact, err := fs.contacts.GetByID(ctx, userID, session.ContactID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to look up contact: %w", err)
	}
	if !contact.IsActive() {
		return nil, ErrContactNotBlocked
	}

	request := models.NewUnblockRequest(userID, session.ContactID, session.GuardianEmail,
		input.Mood, input.JournalEntry, input.AdditionalContext, urgency)

	if err := fs.requests.Create(ctx, request); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, ErrPendingRequestExists
		}
		return nil, fmt.Errorf("failed to create unblock request: %w", err)
	}

	fs.mu.Lock()
	delete(fs.sessions, sessionID)
	fs.mu.Unlock()

	metrics.RequestsSubmitted.WithLabelValues(string(urgency)).Inc()
	fs.log.Info("Unblock request submitted",
		zap.String("requestId", request.ID.String()),
		zap.String("contactId", session.ContactID.String()),
		zap.String("urgency", string(urgency)),
	)

	// Notification is best-effort; the guardian dashboard shows the request
	// either way.
	event, err := notify.NewEvent("guardian_request", &notify.GuardianRequestPayload{
		RequestID:     request.ID,
		GuardianEmail: session.GuardianEmail,
		ContactName:   session.ContactName,
		Urgency:       string(urgency),
		Mood:          string(input.Mood),
	})
	if err == nil {
		err = fs.notifier.Publish(ctx, notify.KeyGuardianRequest, event)
	}
	if err != nil {
		fs.log.Error("Failed to notify guardian",
			zap.Error(err),
			zap.String("requestId", request.ID.String()),
		)
	}

	return request, nil
}

// Abandon discards a session without a trace.
func (fs *FlowService) Abandon(userID, sessionID uuid.UUID) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	session, ok := fs.sessions[sessionID]
	if !ok || session.UserID != userID {
		return ErrSessionNotFound
	}

	delete(fs.sessions, sessionID)
	fs.log.Info("Unblock flow abandoned", zap.String("sessionId", sessionID.String()))

	return nil
}
