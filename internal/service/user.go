package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yugaldekate/pingpanda/internal/models"
	"github.com/yugaldekate/pingpanda/internal/repository"
)

// UsageSummary describes the current period's consumption against the plan
type UsageSummary struct {
	Plan            models.Plan `json:"plan"`
	EventsUsed      int         `json:"events_used"`
	EventsLimit     int         `json:"events_limit"`
	CategoriesUsed  int64       `json:"categories_used"`
	CategoriesLimit int         `json:"categories_limit"`
	ResetsAt        time.Time   `json:"resets_at"`
}

// UserService handles account management
type UserService struct {
	repo repository.Repository
}

// NewUserService creates a new user service
func NewUserService(repo repository.Repository) *UserService {
	return &UserService{repo: repo}
}

// SyncIdentity provisions the account for an identity-provider principal.
// The first call creates the user on the FREE plan with a fresh API key;
// later calls are no-ops returning the existing row.
func (s *UserService) SyncIdentity(ctx context.Context, externalID, email string) (*models.User, bool, error) {
	user, err := s.repo.FindUserByExternalID(ctx, externalID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, errors.Wrap(err, "failed to look up user")
	}

	user = &models.User{
		ID:         uuid.New(),
		ExternalID: externalID,
		Email:      email,
		APIKey:     uuid.NewString(),
		Plan:       models.PlanFree,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// Concurrent first sync: someone else won the race
		if errors.Is(err, repository.ErrDuplicateKey) {
			existing, ferr := s.repo.FindUserByExternalID(ctx, externalID)
			if ferr == nil {
				return existing, false, nil
			}
		}
		return nil, false, errors.Wrap(err, "failed to create user")
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("external_id", externalID).
		Msg("User provisioned")

	return user, true, nil
}

// UpdateDiscordID sets or clears the user's messaging-platform recipient id
func (s *UserService) UpdateDiscordID(ctx context.Context, user *models.User, discordID string) error {
	if discordID == "" {
		user.DiscordID = nil
	} else {
		user.DiscordID = &discordID
	}
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return errors.Wrap(err, "failed to update user")
	}
	return nil
}

// Usage returns the user's consumption for the current calendar period
func (s *UserService) Usage(ctx context.Context, user *models.User) (*UsageSummary, error) {
	now := time.Now()
	limits := models.LimitsFor(user.Plan)

	eventsUsed := 0
	quota, err := s.repo.GetQuota(ctx, user.ID, int(now.Month()), now.Year())
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, errors.Wrap(err, "failed to fetch quota")
	}
	if quota != nil {
		eventsUsed = quota.Count
	}

	categoriesUsed, err := s.repo.CountCategories(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count categories")
	}

	return &UsageSummary{
		Plan:            user.Plan,
		EventsUsed:      eventsUsed,
		EventsLimit:     limits.MaxEventsPerMonth,
		CategoriesUsed:  categoriesUsed,
		CategoriesLimit: limits.MaxEventCategories,
		ResetsAt:        startOfMonth(now).AddDate(0, 1, 0),
	}, nil
}
