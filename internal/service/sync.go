package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/shush-app/guarded-blocking-go/internal/db"
	"github.com/shush-app/guarded-blocking-go/internal/db/models"
	"github.com/shush-app/guarded-blocking-go/internal/db/repository"
	"github.com/shush-app/guarded-blocking-go/internal/localstore"
	"github.com/shush-app/guarded-blocking-go/internal/metrics"
	"github.com/shush-app/guarded-blocking-go/pkg/logger"
)

// LocalBlockStore is the slice of the device store the sync engine writes to.
type LocalBlockStore interface {
	Block(ctx context.Context, entry localstore.BlockEntry) error
	Unblock(ctx context.Context, phone string) error
	Snapshot(ctx context.Context) (map[string]string, error)
}

// RunStats summarizes one reconciliation run.
type RunStats struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Completed int `json:"completed"`
	Failures  int `json:"failures"`
}

// SyncEngine reconciles the device-local block list against the remote
// database, then completes approved unblock requests whose side effects have
// not been applied yet.
//
// Runs never overlap: a run requested while another is in flight is
// suppressed, not queued. The next scheduled run converges on current state
// anyway, because reconciliation works from full sets rather than deltas.
type SyncEngine struct {
	userID   uuid.UUID
	contacts repository.BlockedContactRepository
	requests repository.UnblockRequestRepository
	local    LocalBlockStore

	running atomic.Bool
	log     *zap.Logger
}

// NewSyncEngine creates a SyncEngine for one device's user.
func NewSyncEngine(
	userID uuid.UUID,
	contacts repository.BlockedContactRepository,
	requests repository.UnblockRequestRepository,
	local LocalBlockStore,
) *SyncEngine {
	return &SyncEngine{
		userID:   userID,
		contacts: contacts,
		requests: requests,
		local:    local,
		log:      logger.Named("sync"),
	}
}

// Run executes one full sync: reconcile, then sweep. Individual items that
// fail to apply are counted and left for the next run; only a failure to read
// either side aborts the run.
func (e *SyncEngine) Run(ctx context.Context) (RunStats, error) {
	if !e.running.CompareAndSwap(false, true) {
		metrics.SyncRuns.WithLabelValues("suppressed").Inc()
		return RunStats{}, ErrSyncInProgress
	}
	defer e.running.Store(false)

	timer := prometheus.NewTimer(metrics.SyncDuration)
	defer timer.ObserveDuration()

	var stats RunStats

	remote, err := e.contacts.ActivePhones(ctx, e.userID)
	if err != nil {
		metrics.SyncRuns.WithLabelValues("failed").Inc()
		return stats, fmt.Errorf("failed to read remote block list: %w", err)
	}

	local, err := e.local.Snapshot(ctx)
	if err != nil {
		metrics.SyncRuns.WithLabelValues("failed").Inc()
		return stats, fmt.Errorf("failed to read local block list: %w", err)
	}

	// Remote is truth: add what it has and we lack, drop what we have and it
	// lacks.
	for phone, name := range remote {
		if _, ok := local[phone]; ok {
			continue
		}
		if err := e.local.Block(ctx, localstore.BlockEntry{Phone: phone, ContactName: name}); err != nil {
			stats.Failures++
			metrics.SyncApplyFailures.Inc()
			e.log.Error("Failed to apply local block", zap.Error(err), zap.String("phone", phone))
			continue
		}
		stats.Added++
	}

	for phone := range local {
		if _, ok := remote[phone]; ok {
			continue
		}
		if err := e.local.Unblock(ctx, phone); err != nil {
			stats.Failures++
			metrics.SyncApplyFailures.Inc()
			e.log.Error("Failed to apply local unblock", zap.Error(err), zap.String("phone", phone))
			continue
		}
		stats.Removed++
	}

	e.sweep(ctx, &stats)

	if stats.Failures > 0 {
		metrics.SyncRuns.WithLabelValues("failed").Inc()
	} else {
		metrics.SyncRuns.WithLabelValues("ok").Inc()
	}

	e.log.Info("Sync run finished",
		zap.Int("added", stats.Added),
		zap.Int("removed", stats.Removed),
		zap.Int("completed", stats.Completed),
		zap.Int("failures", stats.Failures),
	)

	return stats, nil
}

// sweep finds approved requests whose unblock has not been durably applied
// and finishes them: contact deactivated, number locally unblocked, request
// marked completed. Every step tolerates having already happened.
func (e *SyncEngine) sweep(ctx context.Context, stats *RunStats) {
	awaiting, err := e.requests.ListAwaitingCompletion(ctx, e.userID)
	if err != nil {
		stats.Failures++
		e.log.Error("Failed to list requests awaiting completion", zap.Error(err))
		return
	}

	for _, request := range awaiting {
		// The listing can race a concurrent writer; the transition table
		// decides, not the stale read.
		if !request.Status.CanTransition(models.RequestCompleted) {
			continue
		}

		contact, err := e.contacts.GetByID(ctx, e.userID, request.BlockedContactID)
		if err != nil {
			stats.Failures++
			e.log.Error("Failed to load contact for approved request",
				zap.Error(err),
				zap.String("requestId", request.ID.String()),
			)
			continue
		}

		// The decision gateway usually did this already.
		if err := e.contacts.Deactivate(ctx, e.userID, contact.ID); err != nil && !db.IsNotFound(err) {
			stats.Failures++
			e.log.Error("Failed to deactivate contact",
				zap.Error(err),
				zap.String("requestId", request.ID.String()),
			)
			continue
		}

		if phone := contact.Phone(); phone != "" {
			if err := e.local.Unblock(ctx, phone); err != nil {
				stats.Failures++
				metrics.SyncApplyFailures.Inc()
				e.log.Error("Failed to unblock number locally",
					zap.Error(err),
					zap.String("requestId", request.ID.String()),
				)
				continue
			}
		}

		// Only after the unblock is durably applied does the request complete.
		if err := e.requests.MarkCompleted(ctx, request.ID); err != nil && !db.IsNotFound(err) {
			stats.Failures++
			e.log.Error("Failed to mark request completed",
				zap.Error(err),
				zap.String("requestId", request.ID.String()),
			)
			continue
		}

		stats.Completed++
		e.log.Info("Approved unblock completed",
			zap.String("requestId", request.ID.String()),
			zap.String("contactId", contact.ID.String()),
		)
	}
}
