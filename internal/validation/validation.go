// Package validation holds the input rules shared by the HTTP handlers and
// the service layer.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shush-app/guarded-blocking-go/internal/db/models"
)

const (
	MinReasonLength          = 10
	MinJournalLength         = 50
	MinDecisionMessageLength = 10
	MinGuardianNameLength    = 2
	MinPersonalMessageLength = 20
)

var (
	// E.164-style numbers: optional +, 7 to 15 digits.
	phoneRe = regexp.MustCompile(`^\+?[1-9][0-9]{6,14}$`)
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// NormalizePhone strips spaces, dashes, dots, and parentheses so the same
// number always compares and stores identically.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')':
			return -1
		}
		return r
	}, phone)
}

// Phone validates a normalized phone number.
func Phone(phone string) error {
	if !phoneRe.MatchString(phone) {
		return fmt.Errorf("invalid phone number %q", phone)
	}
	return nil
}

// Email validates an email address.
func Email(email string) error {
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email address %q", email)
	}
	return nil
}

// Reason validates the justification recorded when blocking a contact.
func Reason(reason string) error {
	if len(strings.TrimSpace(reason)) < MinReasonLength {
		return fmt.Errorf("reason must be at least %d characters", MinReasonLength)
	}
	return nil
}

// Journal validates the reflection journal entry on an unblock request.
func Journal(entry string) error {
	if len(strings.TrimSpace(entry)) < MinJournalLength {
		return fmt.Errorf("journal entry must be at least %d characters", MinJournalLength)
	}
	return nil
}

// DecisionMessage validates the guardian's response message.
func DecisionMessage(message string) error {
	if len(strings.TrimSpace(message)) < MinDecisionMessageLength {
		return fmt.Errorf("decision message must be at least %d characters", MinDecisionMessageLength)
	}
	return nil
}

// GuardianName validates a guardian's display name.
func GuardianName(name string) error {
	if len(strings.TrimSpace(name)) < MinGuardianNameLength {
		return fmt.Errorf("guardian name must be at least %d characters", MinGuardianNameLength)
	}
	return nil
}

// PersonalMessage validates the optional note shown to the guardian. An empty
// message is allowed; a present one must carry some substance.
func PersonalMessage(message string) error {
	if message == "" {
		return nil
	}
	if len(strings.TrimSpace(message)) < MinPersonalMessageLength {
		return fmt.Errorf("personal message must be at least %d characters", MinPersonalMessageLength)
	}
	return nil
}

// Platforms validates the platform tags on a blocked contact. At least one
// tag is required and every tag must be known.
func Platforms(platforms []string) error {
	if len(platforms) == 0 {
		return fmt.Errorf("at least one platform is required")
	}
	for _, p := range platforms {
		if !knownPlatform(p) {
			return fmt.Errorf("unknown platform %q", p)
		}
	}
	return nil
}

func knownPlatform(p string) bool {
	for _, known := range models.KnownPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// Severity validates a severity label.
func Severity(s models.Severity) error {
	if !s.Valid() {
		return fmt.Errorf("unknown severity %q", s)
	}
	return nil
}

// Mood validates a mood label.
func Mood(m models.Mood) error {
	if !m.Valid() {
		return fmt.Errorf("unknown mood %q", m)
	}
	return nil
}

// Urgency validates an urgency label.
func Urgency(u models.Urgency) error {
	if !u.Valid() {
		return fmt.Errorf("unknown urgency %q", u)
	}
	return nil
}
