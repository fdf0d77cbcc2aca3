// Package metrics registers the Prometheus instruments exported by the API
// server and the sync agent.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ContactsBlocked counts new blocks by severity.
	ContactsBlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shush_contacts_blocked_total",
		Help: "Number of contacts blocked, by severity.",
	}, []string{"severity"})

	// RequestsSubmitted counts unblock requests that reached a guardian.
	RequestsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shush_unblock_requests_submitted_total",
		Help: "Number of unblock requests submitted, by urgency.",
	}, []string{"urgency"})

	// RequestsDecided counts guardian decisions by outcome.
	RequestsDecided = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shush_unblock_requests_decided_total",
		Help: "Number of guardian decisions, by outcome.",
	}, []string{"outcome"})

	// SyncRuns counts reconciliation runs by result.
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shush_sync_runs_total",
		Help: "Number of sync runs, by result (ok, failed, suppressed).",
	}, []string{"result"})

	// SyncApplyFailures counts individual reconciliation items that failed to
	// apply and were left for the next run.
	SyncApplyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shush_sync_apply_failures_total",
		Help: "Number of reconciliation items that failed to apply.",
	})

	// SyncDuration observes how long a full reconciliation run takes.
	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shush_sync_duration_seconds",
		Help:    "Duration of a full sync run.",
		Buckets: prometheus.DefBuckets,
	})

	// CallsScreened counts screened calls by verdict.
	CallsScreened = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shush_calls_screened_total",
		Help: "Number of screened incoming calls, by verdict (blocked, allowed).",
	}, []string{"verdict"})

	// MessagesScreened counts screened messages by verdict.
	MessagesScreened = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shush_messages_screened_total",
		Help: "Number of screened incoming messages, by verdict (blocked, allowed).",
	}, []string{"verdict"})
)
