package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/shush-app/guarded-blocking-go/internal/db/models"
	"github.com/shush-app/guarded-blocking-go/internal/notify"
)

// mockContactRepo mocks the BlockedContactRepository interface
type mockContactRepo struct {
	mock.Mock
}

func (m *mockContactRepo) Create(ctx context.Context, contact *models.BlockedContact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *mockContactRepo) GetByID(ctx context.Context, userID, contactID uuid.UUID) (*models.BlockedContact, error) {
	args := m.Called(ctx, userID, contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlockedContact), args.Error(1)
}

func (m *mockContactRepo) List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*models.BlockedContact, error) {
	args := m.Called(ctx, userID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BlockedContact), args.Error(1)
}

func (m *mockContactRepo) Update(ctx context.Context, contact *models.BlockedContact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *mockContactRepo) Deactivate(ctx context.Context, userID, contactID uuid.UUID) error {
	args := m.Called(ctx, userID, contactID)
	return args.Error(0)
}

func (m *mockContactRepo) ActivePhones(ctx context.Context, userID uuid.UUID) (map[string]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

// mockGuardianRepo mocks the GuardianRepository interface
type mockGuardianRepo struct {
	mock.Mock
}

func (m *mockGuardianRepo) Replace(ctx context.Context, guardian *models.Guardian) error {
	args := m.Called(ctx, guardian)
	return args.Error(0)
}

func (m *mockGuardianRepo) GetActive(ctx context.Context, userID uuid.UUID) (*models.Guardian, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guardian), args.Error(1)
}

func (m *mockGuardianRepo) Deactivate(ctx context.Context, userID, guardianID uuid.UUID) error {
	args := m.Called(ctx, userID, guardianID)
	return args.Error(0)
}

// mockRequestRepo mocks the UnblockRequestRepository interface
type mockRequestRepo struct {
	mock.Mock
}

func (m *mockRequestRepo) Create(ctx context.Context, request *models.UnblockRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *mockRequestRepo) GetByID(ctx context.Context, requestID uuid.UUID) (*models.UnblockRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UnblockRequest), args.Error(1)
}

func (m *mockRequestRepo) HasPending(ctx context.Context, userID, contactID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, contactID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRequestRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.UnblockRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UnblockRequest), args.Error(1)
}

func (m *mockRequestRepo) ListForGuardian(ctx context.Context, guardianEmail string, status models.RequestStatus) ([]*models.UnblockRequest, error) {
	args := m.Called(ctx, guardianEmail, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UnblockRequest), args.Error(1)
}

func (m *mockRequestRepo) Decide(ctx context.Context, requestID uuid.UUID, guardianEmail string, decision models.RequestStatus, message string) (*models.UnblockRequest, error) {
	args := m.Called(ctx, requestID, guardianEmail, decision, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UnblockRequest), args.Error(1)
}

func (m *mockRequestRepo) ListAwaitingCompletion(ctx context.Context, userID uuid.UUID) ([]*models.UnblockRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UnblockRequest), args.Error(1)
}

func (m *mockRequestRepo) MarkCompleted(ctx context.Context, requestID uuid.UUID) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

// mockNotifier mocks the notify.Notifier interface
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Publish(ctx context.Context, routingKey string, event *notify.Event) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *mockNotifier) Close() error {
	args := m.Called()
	return args.Error(0)
}
