package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yugaldekate/pingpanda/internal/models"
	"github.com/yugaldekate/pingpanda/internal/repository"
)

func TestCreateCategory(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewCategoryService(mockRepo)

	user := &models.User{ID: uuid.New(), Plan: models.PlanFree}
	mockRepo.On("CountCategories", mock.Anything, user.ID).Return(int64(0), nil)

	var created *models.EventCategory
	mockRepo.On("CreateCategory", mock.Anything, mock.AnythingOfType("*models.EventCategory")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.EventCategory)
		}).
		Return(nil)

	category, err := service.Create(context.Background(), user, &CreateCategoryRequest{
		Name:  "Sale",
		Color: "#FF6B35",
		Emoji: "💰",
	})

	require.NoError(t, err)
	require.NotNil(t, category)
	require.Equal(t, "sale", created.Name)
	require.Equal(t, 0xFF6B35, created.Color)
	require.NotNil(t, created.Emoji)
	require.Equal(t, "💰", *created.Emoji)
	require.Equal(t, user.ID, created.UserID)

	mockRepo.AssertExpectations(t)
}

func TestCreateCategoryEnforcesPlanLimit(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewCategoryService(mockRepo)

	user := &models.User{ID: uuid.New(), Plan: models.PlanFree}
	mockRepo.On("CountCategories", mock.Anything, user.ID).
		Return(int64(models.FreeLimits.MaxEventCategories), nil)

	_, err := service.Create(context.Background(), user, &CreateCategoryRequest{
		Name:  "sale",
		Color: "#FF6B35",
	})

	require.ErrorIs(t, err, ErrCategoryLimitReached)
	mockRepo.AssertNotCalled(t, "CreateCategory", mock.Anything, mock.Anything)
}

func TestCreateCategoryRejectsInvalidColor(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewCategoryService(mockRepo)

	user := &models.User{ID: uuid.New(), Plan: models.PlanFree}
	mockRepo.On("CountCategories", mock.Anything, user.ID).Return(int64(0), nil)

	for _, color := range []string{"", "red", "#FFF", "#GGGGGG"} {
		_, err := service.Create(context.Background(), user, &CreateCategoryRequest{
			Name:  "sale",
			Color: color,
		})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr, "color %q", color)
		require.Equal(t, 422, apiErr.StatusCode)
	}
}

func TestCreateCategoryRejectsInvalidName(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewCategoryService(mockRepo)

	user := &models.User{ID: uuid.New(), Plan: models.PlanFree}

	_, err := service.Create(context.Background(), user, &CreateCategoryRequest{
		Name:  "bad name!",
		Color: "#FF6B35",
	})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 422, apiErr.StatusCode)
}

func TestCreateCategoryDuplicate(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewCategoryService(mockRepo)

	user := &models.User{ID: uuid.New(), Plan: models.PlanPro}
	mockRepo.On("CountCategories", mock.Anything, user.ID).Return(int64(1), nil)
	mockRepo.On("CreateCategory", mock.Anything, mock.AnythingOfType("*models.EventCategory")).
		Return(repository.ErrDuplicateKey)

	_, err := service.Create(context.Background(), user, &CreateCategoryRequest{
		Name:  "sale",
		Color: "#FF6B35",
	})

	require.ErrorIs(t, err, ErrDuplicateCategory)
}

func TestDeleteCategoryNotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewCategoryService(mockRepo)

	user := &models.User{ID: uuid.New()}
	mockRepo.On("DeleteCategory", mock.Anything, user.ID, "missing").Return(repository.ErrNotFound)

	err := service.Delete(context.Background(), user, "missing")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 404, apiErr.StatusCode)
}

func TestListWithStats(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewCategoryService(mockRepo)

	user := &models.User{ID: uuid.New()}
	category := models.EventCategory{ID: uuid.New(), Name: "sale", UserID: user.ID}

	mockRepo.On("ListCategories", mock.Anything, user.ID).Return([]models.EventCategory{category}, nil)
	mockRepo.On("CountEventsSince", mock.Anything, category.ID, mock.AnythingOfType("time.Time")).Return(int64(7), nil)
	mockRepo.On("ListEventFieldsSince", mock.Anything, category.ID, mock.AnythingOfType("time.Time")).
		Return([][]byte{
			[]byte(`{"amount":42,"plan":"PRO"}`),
			[]byte(`{"amount":10,"country":"KE"}`),
		}, nil)
	mockRepo.On("LastEventTime", mock.Anything, category.ID).Return(nil, nil)

	stats, err := service.ListWithStats(context.Background(), user)

	require.NoError(t, err)
	require.Len(t, stats, 1)
	require.Equal(t, int64(7), stats[0].EventCount)
	// amount, plan and country across the two documents
	require.Equal(t, 3, stats[0].UniqueFieldCount)
	require.Nil(t, stats[0].LastPing)
}

func TestListEventsClampsPagination(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewCategoryService(mockRepo)

	user := &models.User{ID: uuid.New()}
	category := &models.EventCategory{ID: uuid.New(), Name: "sale", UserID: user.ID}

	mockRepo.On("FindCategoryByName", mock.Anything, user.ID, "sale").Return(category, nil)
	mockRepo.On("ListEventsByCategory", mock.Anything, category.ID, 0, 20).
		Return([]models.Event{}, int64(0), nil)

	_, _, err := service.ListEvents(context.Background(), user, "sale", -3, 500)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestParseHexColor(t *testing.T) {
	value, err := parseHexColor("#FF6B35")
	require.NoError(t, err)
	require.Equal(t, 0xFF6B35, value)

	value, err = parseHexColor("00ff00")
	require.NoError(t, err)
	require.Equal(t, 0x00FF00, value)

	_, err = parseHexColor("#FFF")
	require.Error(t, err)
}
