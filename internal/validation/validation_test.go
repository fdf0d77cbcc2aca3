package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shush-app/guarded-blocking-go/internal/db/models"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"+1 (555) 123-4567", "+15551234567"},
		{"555.123.4567", "5551234567"},
		{"+15551234567", "+15551234567"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizePhone(tt.input))
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		wantErr bool
	}{
		{"valid with plus", "+15551234567", false},
		{"valid without plus", "15551234567", false},
		{"too short", "+1234", true},
		{"too long", "+1234567890123456", true},
		{"leading zero", "05551234567", true},
		{"letters", "+1555CALLNOW", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Phone(tt.phone)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("mom@example.com"))
	assert.Error(t, Email("not-an-email"))
	assert.Error(t, Email("two@at@signs.com"))
	assert.Error(t, Email(""))
}

func TestLengthRules(t *testing.T) {
	assert.Error(t, Reason("too short"))
	assert.NoError(t, Reason("keeps sending hurtful messages"))

	assert.Error(t, Journal(strings.Repeat("x", 49)))
	assert.NoError(t, Journal(strings.Repeat("x", 50)))
	assert.Error(t, Journal(strings.Repeat(" ", 60)), "whitespace does not count")

	assert.Error(t, DecisionMessage("no"))
	assert.NoError(t, DecisionMessage("I think you're ready."))

	assert.Error(t, GuardianName("M"))
	assert.NoError(t, GuardianName("Mom"))

	assert.NoError(t, PersonalMessage(""), "personal message is optional")
	assert.Error(t, PersonalMessage("please help"))
	assert.NoError(t, PersonalMessage("Please keep an eye on me while I work through this."))
}

func TestPlatforms(t *testing.T) {
	assert.Error(t, Platforms(nil))
	assert.Error(t, Platforms([]string{}))
	assert.Error(t, Platforms([]string{"carrier-pigeon"}))
	assert.NoError(t, Platforms([]string{"calls", "sms"}))
}

func TestEnumRules(t *testing.T) {
	assert.NoError(t, Severity(models.SeverityMedium))
	assert.Error(t, Severity(models.Severity("catastrophic")))

	assert.NoError(t, Mood(models.MoodHopeful))
	assert.Error(t, Mood(models.Mood("vengeful")))

	assert.NoError(t, Urgency(models.UrgencyEmergency))
	assert.Error(t, Urgency(models.Urgency("whenever")))
}
