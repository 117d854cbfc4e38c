package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yugaldekate/pingpanda/internal/models"
	"github.com/yugaldekate/pingpanda/internal/repository"
)

// CreateCategoryRequest is the input for creating an event category
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,categoryname"`
	Color string `json:"color" validate:"required,hexcolor"`
	Emoji string `json:"emoji"`
}

// CategoryStats is a category with its month-to-date dashboard numbers
type CategoryStats struct {
	models.EventCategory
	UniqueFieldCount int        `json:"unique_field_count"`
	EventCount       int64      `json:"event_count"`
	LastPing         *time.Time `json:"last_ping"`
}

// CategoryService handles category management
type CategoryService struct {
	repo repository.Repository
}

// NewCategoryService creates a new category service
func NewCategoryService(repo repository.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Create creates a category for a user. Names are stored lowercase so the
// ingestion pipeline can match them exactly. The plan's category limit is
// enforced here.
func (s *CategoryService) Create(ctx context.Context, user *models.User, req *CreateCategoryRequest) (*models.EventCategory, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, NewValidationError(err.Error())
	}

	limits := models.LimitsFor(user.Plan)
	count, err := s.repo.CountCategories(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count categories")
	}
	if count >= int64(limits.MaxEventCategories) {
		return nil, ErrCategoryLimitReached
	}

	color, err := parseHexColor(req.Color)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}

	category := &models.EventCategory{
		ID:     uuid.New(),
		Name:   strings.ToLower(req.Name),
		UserID: user.ID,
		Color:  color,
	}
	if req.Emoji != "" {
		category.Emoji = &req.Emoji
	}

	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateCategory
		}
		return nil, errors.Wrap(err, "failed to create category")
	}

	log.Info().
		Str("category", category.Name).
		Str("user_id", user.ID.String()).
		Msg("Category created")

	return category, nil
}

// Delete removes a category and all of its events
func (s *CategoryService) Delete(ctx context.Context, user *models.User, name string) error {
	err := s.repo.DeleteCategory(ctx, user.ID, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewCategoryNotFoundError(name)
		}
		return errors.Wrap(err, "failed to delete category")
	}

	log.Info().
		Str("category", name).
		Str("user_id", user.ID.String()).
		Msg("Category deleted")

	return nil
}

// ListWithStats lists a user's categories with month-to-date statistics
func (s *CategoryService) ListWithStats(ctx context.Context, user *models.User) ([]CategoryStats, error) {
	categories, err := s.repo.ListCategories(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}

	since := startOfMonth(time.Now())
	stats := make([]CategoryStats, 0, len(categories))
	for _, category := range categories {
		eventCount, err := s.repo.CountEventsSince(ctx, category.ID, since)
		if err != nil {
			return nil, errors.Wrap(err, "failed to count events")
		}

		fieldDocs, err := s.repo.ListEventFieldsSince(ctx, category.ID, since)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load event fields")
		}
		uniqueFields := make(map[string]struct{})
		for _, doc := range fieldDocs {
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(doc, &fields); err != nil {
				continue
			}
			for name := range fields {
				uniqueFields[name] = struct{}{}
			}
		}

		lastPing, err := s.repo.LastEventTime(ctx, category.ID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to find last event")
		}

		stats = append(stats, CategoryStats{
			EventCategory:    category,
			UniqueFieldCount: len(uniqueFields),
			EventCount:       eventCount,
			LastPing:         lastPing,
		})
	}

	return stats, nil
}

// ListEvents returns one page of a category's events, newest first
func (s *CategoryService) ListEvents(ctx context.Context, user *models.User, name string, page, limit int) ([]models.Event, int64, error) {
	category, err := s.repo.FindCategoryByName(ctx, user.ID, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, NewCategoryNotFoundError(name)
		}
		return nil, 0, errors.Wrap(err, "failed to resolve category")
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	events, total, err := s.repo.ListEventsByCategory(ctx, category.ID, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list events")
	}
	return events, total, nil
}

// parseHexColor parses "#RRGGBB" into a 24-bit color value
func parseHexColor(s string) (int, error) {
	trimmed := strings.TrimPrefix(s, "#")
	if len(trimmed) != 6 {
		return 0, errors.New("color must be in #RRGGBB format")
	}
	value, err := strconv.ParseInt(trimmed, 16, 32)
	if err != nil {
		return 0, errors.New("color must be in #RRGGBB format")
	}
	return int(value), nil
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
