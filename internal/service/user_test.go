package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yugaldekate/pingpanda/internal/models"
	"github.com/yugaldekate/pingpanda/internal/repository"
)

func TestSyncIdentityCreatesUser(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewUserService(mockRepo)

	mockRepo.On("FindUserByExternalID", mock.Anything, "ext-1").Return(nil, repository.ErrNotFound)

	var created *models.User
	mockRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.User)
		}).
		Return(nil)

	user, isNew, err := service.SyncIdentity(context.Background(), "ext-1", "dev@example.com")

	require.NoError(t, err)
	require.True(t, isNew)
	require.Equal(t, "ext-1", user.ExternalID)
	require.Equal(t, models.PlanFree, user.Plan)
	require.NotEmpty(t, created.APIKey)
	mockRepo.AssertExpectations(t)
}

func TestSyncIdentityIsIdempotent(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewUserService(mockRepo)

	existing := &models.User{ID: uuid.New(), ExternalID: "ext-1", APIKey: "key-1"}
	mockRepo.On("FindUserByExternalID", mock.Anything, "ext-1").Return(existing, nil)

	user, isNew, err := service.SyncIdentity(context.Background(), "ext-1", "dev@example.com")

	require.NoError(t, err)
	require.False(t, isNew)
	require.Equal(t, existing.ID, user.ID)
	mockRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestSyncIdentitySurvivesProvisioningRace(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewUserService(mockRepo)

	existing := &models.User{ID: uuid.New(), ExternalID: "ext-1"}
	mockRepo.On("FindUserByExternalID", mock.Anything, "ext-1").Return(nil, repository.ErrNotFound).Once()
	mockRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(repository.ErrDuplicateKey)
	mockRepo.On("FindUserByExternalID", mock.Anything, "ext-1").Return(existing, nil).Once()

	user, isNew, err := service.SyncIdentity(context.Background(), "ext-1", "dev@example.com")

	require.NoError(t, err)
	require.False(t, isNew)
	require.Equal(t, existing.ID, user.ID)
}

func TestUpdateDiscordID(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewUserService(mockRepo)

	user := &models.User{ID: uuid.New()}
	mockRepo.On("UpdateUser", mock.Anything, user).Return(nil)

	require.NoError(t, service.UpdateDiscordID(context.Background(), user, "123456789"))
	require.NotNil(t, user.DiscordID)
	require.Equal(t, "123456789", *user.DiscordID)

	// An empty id clears the recipient
	require.NoError(t, service.UpdateDiscordID(context.Background(), user, ""))
	require.Nil(t, user.DiscordID)
}

func TestUsage(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewUserService(mockRepo)

	user := &models.User{ID: uuid.New(), Plan: models.PlanPro}
	mockRepo.On("GetQuota", mock.Anything, user.ID, mock.AnythingOfType("int"), mock.AnythingOfType("int")).
		Return(&models.Quota{UserID: user.ID, Count: 250}, nil)
	mockRepo.On("CountCategories", mock.Anything, user.ID).Return(int64(4), nil)

	usage, err := service.Usage(context.Background(), user)

	require.NoError(t, err)
	require.Equal(t, models.PlanPro, usage.Plan)
	require.Equal(t, 250, usage.EventsUsed)
	require.Equal(t, models.ProLimits.MaxEventsPerMonth, usage.EventsLimit)
	require.Equal(t, int64(4), usage.CategoriesUsed)
	require.Equal(t, models.ProLimits.MaxEventCategories, usage.CategoriesLimit)

	// Usage resets on the first of the next month
	next := startOfMonth(time.Now()).AddDate(0, 1, 0)
	require.Equal(t, next, usage.ResetsAt)
	require.Equal(t, 1, usage.ResetsAt.Day())
}

func TestUsageWithoutQuotaRow(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewUserService(mockRepo)

	user := &models.User{ID: uuid.New(), Plan: models.PlanFree}
	mockRepo.On("GetQuota", mock.Anything, user.ID, mock.AnythingOfType("int"), mock.AnythingOfType("int")).
		Return(nil, repository.ErrNotFound)
	mockRepo.On("CountCategories", mock.Anything, user.ID).Return(int64(0), nil)

	usage, err := service.Usage(context.Background(), user)

	require.NoError(t, err)
	require.Equal(t, 0, usage.EventsUsed)
	require.Equal(t, models.FreeLimits.MaxEventsPerMonth, usage.EventsLimit)
}
