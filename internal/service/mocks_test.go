package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/yugaldekate/pingpanda/internal/discord"
	"github.com/yugaldekate/pingpanda/internal/models"
)

// Mock repository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) UpdateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) FindUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	args := m.Called(ctx, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) FindUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) CreateCategory(ctx context.Context, category *models.EventCategory) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockRepository) FindCategoryByName(ctx context.Context, userID uuid.UUID, name string) (*models.EventCategory, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventCategory), args.Error(1)
}

func (m *MockRepository) ListCategories(ctx context.Context, userID uuid.UUID) ([]models.EventCategory, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EventCategory), args.Error(1)
}

func (m *MockRepository) CountCategories(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) DeleteCategory(ctx context.Context, userID uuid.UUID, name string) error {
	args := m.Called(ctx, userID, name)
	return args.Error(0)
}

func (m *MockRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockRepository) UpdateEventDeliveryStatus(ctx context.Context, id uuid.UUID, status models.DeliveryStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRepository) ListEventsByCategory(ctx context.Context, categoryID uuid.UUID, offset, limit int) ([]models.Event, int64, error) {
	args := m.Called(ctx, categoryID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Event), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) CountEventsSince(ctx context.Context, categoryID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, categoryID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListEventFieldsSince(ctx context.Context, categoryID uuid.UUID, since time.Time) ([][]byte, error) {
	args := m.Called(ctx, categoryID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]byte), args.Error(1)
}

func (m *MockRepository) LastEventTime(ctx context.Context, categoryID uuid.UUID) (*time.Time, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockRepository) DeleteDeliveredEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CountEventsByStatusSince(ctx context.Context, status models.DeliveryStatus, since time.Time) (int64, error) {
	args := m.Called(ctx, status, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetQuota(ctx context.Context, userID uuid.UUID, month, year int) (*models.Quota, error) {
	args := m.Called(ctx, userID, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quota), args.Error(1)
}

func (m *MockRepository) IncrementQuota(ctx context.Context, userID uuid.UUID, month, year int) error {
	args := m.Called(ctx, userID, month, year)
	return args.Error(0)
}

// Mock notifier for testing
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) CreateDM(ctx context.Context, recipientID string) (string, error) {
	args := m.Called(ctx, recipientID)
	return args.String(0), args.Error(1)
}

func (m *MockNotifier) SendEmbed(ctx context.Context, channelID string, embed discord.Embed) error {
	args := m.Called(ctx, channelID, embed)
	return args.Error(0)
}
