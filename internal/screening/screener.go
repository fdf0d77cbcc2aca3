// Package screening decides whether an incoming call or message is allowed,
// consulting the device-local block store only. Screening never touches the
// network: the sync engine keeps the local store current, screening reads it.
package screening

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shush-app/guarded-blocking-go/internal/localstore"
	"github.com/shush-app/guarded-blocking-go/internal/metrics"
	"github.com/shush-app/guarded-blocking-go/internal/validation"
	"github.com/shush-app/guarded-blocking-go/pkg/logger"
)

// Verdict is the screening outcome for one incoming event.
type Verdict struct {
	Blocked     bool   `json:"blocked"`
	Phone       string `json:"phone"`
	ContactName string `json:"contact_name,omitempty"`
}

// Screener screens incoming calls and messages against the local block list
// and records what it intercepted.
type Screener struct {
	store *localstore.Store
	log   *zap.Logger
}

// NewScreener creates a Screener over the given store.
func NewScreener(store *localstore.Store) *Screener {
	return &Screener{
		store: store,
		log:   logger.Named("screening"),
	}
}

// ScreenCall screens an incoming call. A blocked verdict is also appended to
// the blocked-call audit log; an audit failure does not flip the verdict.
func (s *Screener) ScreenCall(ctx context.Context, phone string) (Verdict, error) {
	phone = validation.NormalizePhone(phone)

	entry, found, err := s.store.Lookup(ctx, phone)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to screen call: %w", err)
	}

	if !found {
		metrics.CallsScreened.WithLabelValues("allowed").Inc()
		return Verdict{Blocked: false, Phone: phone}, nil
	}

	metrics.CallsScreened.WithLabelValues("blocked").Inc()
	s.log.Info("Blocked incoming call",
		zap.String("phone", phone),
		zap.String("contact", entry.ContactName),
	)

	if err := s.store.AppendBlockedCall(ctx, localstore.BlockedCall{
		Phone:       phone,
		ContactName: entry.ContactName,
		OccurredAt:  time.Now().UTC(),
	}); err != nil {
		s.log.Error("Failed to record blocked call", zap.Error(err))
	}

	return Verdict{Blocked: true, Phone: phone, ContactName: entry.ContactName}, nil
}

// ScreenMessage screens an incoming message. Blocked messages are recorded
// with a truncated preview, never the full body.
func (s *Screener) ScreenMessage(ctx context.Context, phone, body string) (Verdict, error) {
	phone = validation.NormalizePhone(phone)

	entry, found, err := s.store.Lookup(ctx, phone)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to screen message: %w", err)
	}

	if !found {
		metrics.MessagesScreened.WithLabelValues("allowed").Inc()
		return Verdict{Blocked: false, Phone: phone}, nil
	}

	metrics.MessagesScreened.WithLabelValues("blocked").Inc()
	s.log.Info("Blocked incoming message",
		zap.String("phone", phone),
		zap.String("contact", entry.ContactName),
	)

	if err := s.store.AppendBlockedMessage(ctx, localstore.BlockedMessage{
		Phone:       phone,
		ContactName: entry.ContactName,
		Preview:     localstore.TruncatePreview(body),
		OccurredAt:  time.Now().UTC(),
	}); err != nil {
		s.log.Error("Failed to record blocked message", zap.Error(err))
	}

	return Verdict{Blocked: true, Phone: phone, ContactName: entry.ContactName}, nil
}
