package models

import "time"

// ContactStatus is the lifecycle state of a blocked contact. Contacts are
// never hard-deleted; unblocking flips the row to inactive.
type ContactStatus string

const (
	ContactActive   ContactStatus = "active"
	ContactInactive ContactStatus = "inactive"
)

// RequestStatus is the lifecycle state of an unblock request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestDenied    RequestStatus = "denied"
	RequestCompleted RequestStatus = "completed"
)

// requestTransitions is the single source of truth for which request status
// changes are legal. Denied and completed are terminal.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:  {RequestApproved, RequestDenied},
	RequestApproved: {RequestCompleted},
}

// CanTransition reports whether a request may move from one status to another.
func (s RequestStatus) CanTransition(to RequestStatus) bool {
	for _, next := range requestTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Severity classifies how risky contact with a blocked person is. It drives
// the cooling-off duration before an unblock request may be submitted.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var severityMultipliers = map[Severity]time.Duration{
	SeverityLow:    1,
	SeverityMedium: 2,
	SeverityHigh:   3,
}

// Valid reports whether the severity is one of the known levels.
func (s Severity) Valid() bool {
	_, ok := severityMultipliers[s]
	return ok
}

// CoolingOff returns the mandatory wait for this severity given the base
// duration. Unknown severities fall back to the base duration.
func (s Severity) CoolingOff(base time.Duration) time.Duration {
	m, ok := severityMultipliers[s]
	if !ok {
		return base
	}
	return base * m
}

// Mood is the self-reported emotional state captured during reflection.
type Mood string

const (
	MoodCalm       Mood = "calm"
	MoodSad        Mood = "sad"
	MoodAnxious    Mood = "anxious"
	MoodAngry      Mood = "angry"
	MoodLonely     Mood = "lonely"
	MoodHopeful    Mood = "hopeful"
	MoodConfused   Mood = "confused"
	MoodDetermined Mood = "determined"
)

var moods = map[Mood]bool{
	MoodCalm: true, MoodSad: true, MoodAnxious: true, MoodAngry: true,
	MoodLonely: true, MoodHopeful: true, MoodConfused: true, MoodDetermined: true,
}

// Valid reports whether the mood is one of the enumerated values.
func (m Mood) Valid() bool {
	return moods[m]
}

// Urgency is the user-selected priority of an unblock request.
type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyNormal    Urgency = "normal"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

// Valid reports whether the urgency is one of the known levels.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyEmergency:
		return true
	}
	return false
}
