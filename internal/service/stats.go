package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shush-app/guarded-blocking-go/internal/db"
	"github.com/shush-app/guarded-blocking-go/internal/db/models"
	"github.com/shush-app/guarded-blocking-go/internal/db/repository"
	"github.com/shush-app/guarded-blocking-go/internal/validation"
)

// UserStats summarizes a user's block list and request history for the
// dashboard.
type UserStats struct {
	TotalBlocked     int            `json:"total_blocked"`
	ActiveBlocked    int            `json:"active_blocked"`
	TotalRequests    int            `json:"total_requests"`
	PendingRequests  int            `json:"pending_requests"`
	ApprovedRequests int            `json:"approved_requests"`
	DeniedRequests   int            `json:"denied_requests"`
	SeverityCounts   map[string]int `json:"severity_counts"`
	Platforms        []string       `json:"platforms"`
	HasGuardian      bool           `json:"has_guardian"`
	StreakDays       int            `json:"streak_days"`
}

// GuardianStats summarizes the workload of one guardian across all users who
// nominated them.
type GuardianStats struct {
	PendingRequests int `json:"pending_requests"`
	TotalDecided    int `json:"total_decided"`
	Approved        int `json:"approved"`
	Denied          int `json:"denied"`
}

// StatsService aggregates read-only statistics for dashboards.
type StatsService struct {
	contacts  repository.BlockedContactRepository
	guardians repository.GuardianRepository
	requests  repository.UnblockRequestRepository
	now       func() time.Time
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	contacts repository.BlockedContactRepository,
	guardians repository.GuardianRepository,
	requests repository.UnblockRequestRepository,
) *StatsService {
	return &StatsService{
		contacts:  contacts,
		guardians: guardians,
		requests:  requests,
		now:       time.Now,
	}
}

// ForUser computes a user's block and request statistics.
func (s *StatsService) ForUser(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	contacts, err := s.contacts.List(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to compute user stats: %w", err)
	}

	requests, err := s.requests.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute user stats: %w", err)
	}

	stats := &UserStats{
		TotalBlocked:   len(contacts),
		TotalRequests:  len(requests),
		SeverityCounts: make(map[string]int),
	}

	platforms := make(map[string]bool)
	for _, contact := range contacts {
		if contact.IsActive() {
			stats.ActiveBlocked++
			stats.SeverityCounts[string(contact.Severity)]++
		}
		for _, p := range contact.Platforms {
			platforms[p] = true
		}
	}
	for p := range platforms {
		stats.Platforms = append(stats.Platforms, p)
	}
	sort.Strings(stats.Platforms)

	for _, request := range requests {
		switch request.Status {
		case models.RequestPending:
			stats.PendingRequests++
		case models.RequestApproved, models.RequestCompleted:
			stats.ApprovedRequests++
		case models.RequestDenied:
			stats.DeniedRequests++
		}
	}

	if _, err := s.guardians.GetActive(ctx, userID); err == nil {
		stats.HasGuardian = true
	} else if !db.IsNotFound(err) {
		return nil, fmt.Errorf("failed to compute user stats: %w", err)
	}

	stats.StreakDays = streakDays(contacts, s.now())

	return stats, nil
}

// ForGuardian computes the decision workload of a guardian.
func (s *StatsService) ForGuardian(ctx context.Context, guardianEmail string) (*GuardianStats, error) {
	email := strings.ToLower(strings.TrimSpace(guardianEmail))
	if err := validation.Email(email); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	requests, err := s.requests.ListForGuardian(ctx, email, "")
	if err != nil {
		return nil, fmt.Errorf("failed to compute guardian stats: %w", err)
	}

	stats := &GuardianStats{}
	for _, request := range requests {
		switch request.Status {
		case models.RequestPending:
			stats.PendingRequests++
		case models.RequestApproved, models.RequestCompleted:
			stats.TotalDecided++
			stats.Approved++
		case models.RequestDenied:
			stats.TotalDecided++
			stats.Denied++
		}
	}

	return stats, nil
}

// streakDays is the impulse-free streak: whole days since the most recent
// unblock, or since the earliest block when nothing was ever unblocked. No
// contacts means no streak.
func streakDays(contacts []*models.BlockedContact, now time.Time) int {
	if len(contacts) == 0 {
		return 0
	}

	var since time.Time
	for _, contact := range contacts {
		if contact.UnblockedAt != nil && contact.UnblockedAt.After(since) {
			since = *contact.UnblockedAt
		}
	}
	if since.IsZero() {
		since = contacts[0].BlockedAt
		for _, contact := range contacts {
			if contact.BlockedAt.Before(since) {
				since = contact.BlockedAt
			}
		}
	}

	days := int(now.Sub(since).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
