package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shush-app/guarded-blocking-go/internal/db"
	"github.com/shush-app/guarded-blocking-go/internal/db/models"
)

func validBlockInput() BlockContactInput {
	return BlockContactInput{
		ContactName:      "Alex",
		ContactPhone:     "+1 (555) 123-4567",
		RelationshipType: "ex_partner",
		Platforms:        []string{"sms", "calls"},
		Severity:         models.SeverityHigh,
		Reason:           "keeps crossing boundaries after being asked to stop",
	}
}

func TestBlock_NormalizesAndPersists(t *testing.T) {
	contacts := new(mockContactRepo)
	userID := uuid.New()

	contacts.On("Create", mock.Anything, mock.AnythingOfType("*models.BlockedContact")).Return(nil)

	contact, err := NewBlocklistService(contacts).Block(context.Background(), userID, validBlockInput())
	require.NoError(t, err)

	assert.Equal(t, "+15551234567", contact.Phone(), "phone is stored normalized")
	assert.Equal(t, models.ContactActive, contact.Status)
	assert.Equal(t, "ex_partner", contact.RelationshipType)
	contacts.AssertExpectations(t)
}

func TestBlock_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BlockContactInput)
	}{
		{"empty name", func(in *BlockContactInput) { in.ContactName = "  " }},
		{"short reason", func(in *BlockContactInput) { in.Reason = "mean" }},
		{"bad severity", func(in *BlockContactInput) { in.Severity = "catastrophic" }},
		{"no platforms", func(in *BlockContactInput) { in.Platforms = nil }},
		{"bad phone", func(in *BlockContactInput) { in.ContactPhone = "not-a-number" }},
		{"bad email", func(in *BlockContactInput) { in.ContactPhone = ""; in.ContactEmail = "nope" }},
		{"no phone or email", func(in *BlockContactInput) { in.ContactPhone = ""; in.ContactEmail = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contacts := new(mockContactRepo)
			input := validBlockInput()
			tt.mutate(&input)

			_, err := NewBlocklistService(contacts).Block(context.Background(), uuid.New(), input)

			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
			contacts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdate_EditsActiveContact(t *testing.T) {
	contacts := new(mockContactRepo)
	userID := uuid.New()
	contact := activeContact(userID, models.SeverityLow)

	contacts.On("GetByID", mock.Anything, userID, contact.ID).Return(contact, nil)
	contacts.On("Update", mock.Anything, contact).Return(nil)

	got, err := NewBlocklistService(contacts).Update(context.Background(), userID, contact.ID, UpdateContactInput{
		ContactName: "Alex R.",
		Platforms:   []string{"sms", "calls", "whatsapp"},
		Severity:    models.SeverityHigh,
		Reason:      "escalated to showing up unannounced",
	})
	require.NoError(t, err)

	assert.Equal(t, "Alex R.", got.ContactName)
	assert.Equal(t, models.SeverityHigh, got.Severity)
	assert.Equal(t, []string{"sms", "calls", "whatsapp"}, got.Platforms)
	assert.Equal(t, "+15551234567", got.Phone(), "phone is not editable")
	contacts.AssertExpectations(t)
}

func TestUpdate_Validation(t *testing.T) {
	contacts := new(mockContactRepo)

	_, err := NewBlocklistService(contacts).Update(context.Background(), uuid.New(), uuid.New(), UpdateContactInput{
		ContactName: "Alex",
		Platforms:   []string{"sms"},
		Severity:    "catastrophic",
		Reason:      "keeps crossing boundaries after being asked to stop",
	})

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	contacts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdate_RejectsInactiveContact(t *testing.T) {
	contacts := new(mockContactRepo)
	userID := uuid.New()
	contact := activeContact(userID, models.SeverityLow)
	contact.Status = models.ContactInactive

	contacts.On("GetByID", mock.Anything, userID, contact.ID).Return(contact, nil)

	_, err := NewBlocklistService(contacts).Update(context.Background(), userID, contact.ID, UpdateContactInput{
		ContactName: "Alex",
		Platforms:   []string{"sms"},
		Severity:    models.SeverityMedium,
		Reason:      "keeps crossing boundaries after being asked to stop",
	})
	assert.ErrorIs(t, err, ErrContactNotBlocked)
	contacts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestBlocklistGet_NotFound(t *testing.T) {
	contacts := new(mockContactRepo)
	userID := uuid.New()
	contactID := uuid.New()

	contacts.On("GetByID", mock.Anything, userID, contactID).
		Return(nil, db.WrapError(pgx.ErrNoRows, "get blocked contact"))

	_, err := NewBlocklistService(contacts).Get(context.Background(), userID, contactID)
	assert.ErrorIs(t, err, ErrContactNotFound)
}
