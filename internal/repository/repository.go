package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yugaldekate/pingpanda/internal/models"
)

// Repository provides data access methods
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error)
	FindUserByExternalID(ctx context.Context, externalID string) (*models.User, error)

	// EventCategory operations
	CreateCategory(ctx context.Context, category *models.EventCategory) error
	FindCategoryByName(ctx context.Context, userID uuid.UUID, name string) (*models.EventCategory, error)
	ListCategories(ctx context.Context, userID uuid.UUID) ([]models.EventCategory, error)
	CountCategories(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteCategory(ctx context.Context, userID uuid.UUID, name string) error

	// Event operations
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEventDeliveryStatus(ctx context.Context, id uuid.UUID, status models.DeliveryStatus) error
	ListEventsByCategory(ctx context.Context, categoryID uuid.UUID, offset, limit int) ([]models.Event, int64, error)
	CountEventsSince(ctx context.Context, categoryID uuid.UUID, since time.Time) (int64, error)
	ListEventFieldsSince(ctx context.Context, categoryID uuid.UUID, since time.Time) ([][]byte, error)
	LastEventTime(ctx context.Context, categoryID uuid.UUID) (*time.Time, error)
	DeleteDeliveredEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountEventsByStatusSince(ctx context.Context, status models.DeliveryStatus, since time.Time) (int64, error)

	// Quota operations
	GetQuota(ctx context.Context, userID uuid.UUID, month, year int) (*models.Quota, error)
	IncrementQuota(ctx context.Context, userID uuid.UUID, month, year int) error
}
