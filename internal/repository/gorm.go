package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yugaldekate/pingpanda/internal/models"
)

// gormRepository implements Repository backed by GORM
type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a new GORM-backed repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicateKey
	}
	return err
}

// CreateUser creates a new user
func (r *gormRepository) CreateUser(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

// UpdateUser saves changes to an existing user
func (r *gormRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Save(user).Error)
}

// FindUserByID finds a user by its id
func (r *gormRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// FindUserByAPIKey finds the user owning the given API key
func (r *gormRepository) FindUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "api_key = ?", apiKey).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// FindUserByExternalID finds a user by its identity provider id
func (r *gormRepository) FindUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "external_id = ?", externalID).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// CreateCategory creates a new event category
func (r *gormRepository) CreateCategory(ctx context.Context, category *models.EventCategory) error {
	return translateError(r.db.WithContext(ctx).Create(category).Error)
}

// FindCategoryByName finds a category owned by a user, by exact name
func (r *gormRepository) FindCategoryByName(ctx context.Context, userID uuid.UUID, name string) (*models.EventCategory, error) {
	var category models.EventCategory
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&category).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

// ListCategories lists a user's categories, most recently updated first
func (r *gormRepository) ListCategories(ctx context.Context, userID uuid.UUID) ([]models.EventCategory, error) {
	var categories []models.EventCategory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&categories).Error
	if err != nil {
		return nil, translateError(err)
	}
	return categories, nil
}

// CountCategories counts a user's categories
func (r *gormRepository) CountCategories(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EventCategory{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, translateError(err)
}

// DeleteCategory deletes a category and all events it owns
func (r *gormRepository) DeleteCategory(ctx context.Context, userID uuid.UUID, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.EventCategory
		err := tx.Where("user_id = ? AND name = ?", userID, name).First(&category).Error
		if err != nil {
			return translateError(err)
		}

		// Cascade: owned events go first
		if err := tx.Where("event_category_id = ?", category.ID).Delete(&models.Event{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete category events")
		}

		return translateError(tx.Delete(&category).Error)
	})
}

// CreateEvent creates a new event row
func (r *gormRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	return translateError(r.db.WithContext(ctx).Create(event).Error)
}

// UpdateEventDeliveryStatus sets the final delivery status of an event
func (r *gormRepository) UpdateEventDeliveryStatus(ctx context.Context, id uuid.UUID, status models.DeliveryStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Update("delivery_status", status)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEventsByCategory lists a category's events, newest first, with the total count
func (r *gormRepository) ListEventsByCategory(ctx context.Context, categoryID uuid.UUID, offset, limit int) ([]models.Event, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("event_category_id = ?", categoryID).
		Count(&total).Error
	if err != nil {
		return nil, 0, translateError(err)
	}

	var events []models.Event
	err = r.db.WithContext(ctx).
		Where("event_category_id = ?", categoryID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, translateError(err)
	}
	return events, total, nil
}

// CountEventsSince counts a category's events created at or after the given time
func (r *gormRepository) CountEventsSince(ctx context.Context, categoryID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("event_category_id = ? AND created_at >= ?", categoryID, since).
		Count(&count).Error
	return count, translateError(err)
}

// ListEventFieldsSince returns the raw field documents of a category's recent events
func (r *gormRepository) ListEventFieldsSince(ctx context.Context, categoryID uuid.UUID, since time.Time) ([][]byte, error) {
	var fields [][]byte
	err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("event_category_id = ? AND created_at >= ?", categoryID, since).
		Pluck("fields", &fields).Error
	if err != nil {
		return nil, translateError(err)
	}
	return fields, nil
}

// LastEventTime returns the creation time of a category's most recent event
func (r *gormRepository) LastEventTime(ctx context.Context, categoryID uuid.UUID) (*time.Time, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Where("event_category_id = ?", categoryID).
		Order("created_at DESC").
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &event.CreatedAt, nil
}

// DeleteDeliveredEventsBefore hard-deletes delivered events older than the cutoff
func (r *gormRepository) DeleteDeliveredEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("delivery_status = ? AND created_at < ?", models.DeliveryDelivered, cutoff).
		Delete(&models.Event{})
	return result.RowsAffected, translateError(result.Error)
}

// CountEventsByStatusSince counts events in a delivery state created at or after the given time
func (r *gormRepository) CountEventsByStatusSince(ctx context.Context, status models.DeliveryStatus, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("delivery_status = ? AND created_at >= ?", status, since).
		Count(&count).Error
	return count, translateError(err)
}

// GetQuota fetches the quota counter for a user and calendar period
func (r *gormRepository) GetQuota(ctx context.Context, userID uuid.UUID, month, year int) (*models.Quota, error) {
	var quota models.Quota
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		First(&quota).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &quota, nil
}

// IncrementQuota atomically increments the counter for a user and period,
// creating it with count 1 when it does not exist yet. Concurrent first
// increments of a period must not lose updates.
func (r *gormRepository) IncrementQuota(ctx context.Context, userID uuid.UUID, month, year int) error {
	quota := &models.Quota{
		ID:     uuid.New(),
		UserID: userID,
		Month:  month,
		Year:   year,
		Count:  1,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "month"}, {Name: "year"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":      gorm.Expr("quotas.count + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(quota).Error

	return translateError(err)
}
