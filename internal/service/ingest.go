package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yugaldekate/pingpanda/internal/cache"
	"github.com/yugaldekate/pingpanda/internal/discord"
	"github.com/yugaldekate/pingpanda/internal/metrics"
	"github.com/yugaldekate/pingpanda/internal/models"
	"github.com/yugaldekate/pingpanda/internal/repository"
	"github.com/yugaldekate/pingpanda/internal/search"
	"github.com/yugaldekate/pingpanda/internal/tracing"
)

const (
	defaultEmoji = "🔔"
	// DM channels are stable per recipient, safe to reuse for a while
	dmChannelTTL = 24 * time.Hour
)

// Notifier delivers a composed message to a messaging-platform recipient
type Notifier interface {
	CreateDM(ctx context.Context, recipientID string) (string, error)
	SendEmbed(ctx context.Context, channelID string, embed discord.Embed) error
}

// IngestRequest is the body of an ingestion call. The fields key must be
// present (an empty object is fine); a pointer distinguishes absence from {}.
type IngestRequest struct {
	Category    string              `json:"category" validate:"required,categoryname"`
	Fields      *models.EventFields `json:"fields" validate:"required"`
	Description string              `json:"description"`
}

// IngestResult carries the outcome of a successful ingestion
type IngestResult struct {
	EventID uuid.UUID
}

// IngestService runs the event ingestion pipeline
type IngestService struct {
	repo     repository.Repository
	notifier Notifier
	cache    *cache.RedisCache
	search   *search.ElasticClient
	metrics  *metrics.Metrics
	tracer   tracing.Tracer
}

// NewIngestService creates a new ingestion service
func NewIngestService(
	repo repository.Repository,
	notifier Notifier,
	redisCache *cache.RedisCache,
	elasticClient *search.ElasticClient,
	metricsCollector *metrics.Metrics,
	tracer tracing.Tracer,
) *IngestService {
	return &IngestService{
		repo:     repo,
		notifier: notifier,
		cache:    redisCache,
		search:   elasticClient,
		metrics:  metricsCollector,
		tracer:   tracer,
	}
}

// ProcessEvent runs the pipeline for one authenticated ingestion call, in
// strict order: recipient check, quota check, body validation, category
// resolution, event persistence, delivery, bookkeeping. Each step
// short-circuits on failure. The event row is always persisted before the
// delivery attempt so failures stay attributable to a concrete event id.
func (s *IngestService) ProcessEvent(ctx context.Context, user *models.User, body io.Reader) (*IngestResult, error) {
	txn := s.tracer.StartTransaction("ingest-event")
	defer s.tracer.EndTransaction(txn)
	s.tracer.AddAttribute(txn, "user_id", user.ID.String())

	s.metrics.IncrementCounter("events.received")

	if user.DiscordID == nil || *user.DiscordID == "" {
		return nil, ErrRecipientNotConfigured
	}

	now := time.Now()
	month, year := int(now.Month()), now.Year()
	limits := models.LimitsFor(user.Plan)

	quota, err := s.repo.GetQuota(ctx, user.ID, month, year)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, errors.Wrap(err, "failed to fetch quota")
	}
	if quota != nil && quota.Count >= limits.MaxEventsPerMonth {
		s.metrics.IncrementCounter("events.rejected_quota")
		return nil, ErrQuotaExceeded
	}

	req, err := decodeIngestRequest(body)
	if err != nil {
		s.metrics.IncrementCounter("events.rejected_validation")
		return nil, NewValidationError(err.Error())
	}

	category, err := s.repo.FindCategoryByName(ctx, user.ID, req.Category)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewCategoryNotFoundError(req.Category)
		}
		return nil, errors.Wrap(err, "failed to resolve category")
	}

	embed := composeEmbed(category, req, now)

	fieldsJSON, err := json.Marshal(req.Fields)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode event fields")
	}

	// Persist before attempting delivery: every quota-passing request must
	// leave an audit trail regardless of delivery outcome.
	event := &models.Event{
		ID:               uuid.New(),
		Name:             category.Name,
		Fields:           fieldsJSON,
		FormattedMessage: embed.Title + "\n\n" + embed.Description,
		DeliveryStatus:   models.DeliveryPending,
		UserID:           user.ID,
		EventCategoryID:  category.ID,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, errors.Wrap(err, "failed to persist event")
	}

	if err := s.deliver(ctx, *user.DiscordID, embed); err != nil {
		s.tracer.RecordError(txn, err)
		s.metrics.IncrementCounter("events.failed")
		log.Error().
			Err(err).
			Str("event_id", event.ID.String()).
			Str("category", category.Name).
			Msg("Event delivery failed")

		if uerr := s.repo.UpdateEventDeliveryStatus(ctx, event.ID, models.DeliveryFailed); uerr != nil {
			log.Error().Err(uerr).Str("event_id", event.ID.String()).Msg("Failed to mark event as failed")
		}
		return nil, NewDeliveryError(event.ID)
	}

	if err := s.repo.UpdateEventDeliveryStatus(ctx, event.ID, models.DeliveryDelivered); err != nil {
		// Counter increments stay in lock-step with the DELIVERED status
		return nil, errors.Wrap(err, "failed to mark event as delivered")
	}

	if err := s.repo.IncrementQuota(ctx, user.ID, month, year); err != nil {
		// Delivery succeeded, so the request is a success; the counter will
		// under-count until an operator reconciles it.
		log.Error().Err(err).Str("event_id", event.ID.String()).Msg("Failed to increment quota counter")
	}

	s.metrics.IncrementCounter("events.delivered")

	if s.search.Enabled() {
		event.DeliveryStatus = models.DeliveryDelivered
		if err := s.search.IndexEvent(ctx, event); err != nil {
			log.Warn().Err(err).Str("event_id", event.ID.String()).Msg("Failed to index event")
		}
	}

	log.Info().
		Str("event_id", event.ID.String()).
		Str("category", category.Name).
		Msg("Event processed successfully")

	return &IngestResult{EventID: event.ID}, nil
}

// deliver opens (or reuses) the recipient's DM channel and posts the embed
func (s *IngestService) deliver(ctx context.Context, recipientID string, embed discord.Embed) error {
	start := time.Now()
	defer func() {
		s.metrics.RecordTimer("delivery.duration", time.Since(start))
	}()

	channelID, err := s.cache.GetString(ctx, cache.DMChannelKey(recipientID))
	if err != nil {
		channelID, err = s.notifier.CreateDM(ctx, recipientID)
		if err != nil {
			return errors.Wrap(err, "failed to open DM channel")
		}
		if cerr := s.cache.SetString(ctx, cache.DMChannelKey(recipientID), channelID, dmChannelTTL); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to cache DM channel id")
		}
	}

	if err := s.notifier.SendEmbed(ctx, channelID, embed); err != nil {
		return errors.Wrap(err, "failed to send embed")
	}
	return nil
}

// decodeIngestRequest decodes and validates an ingestion body. Unknown
// top-level keys are rejected.
func decodeIngestRequest(body io.Reader) (*IngestRequest, error) {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var req IngestRequest
	if err := dec.Decode(&req); err != nil {
		return nil, errors.Wrap(err, "invalid request body")
	}
	if err := ValidateStruct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// composeEmbed builds the notification message for an event
func composeEmbed(category *models.EventCategory, req *IngestRequest, now time.Time) discord.Embed {
	emoji := defaultEmoji
	if category.Emoji != nil && *category.Emoji != "" {
		emoji = *category.Emoji
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("A new %s event has occurred!", category.Name)
	}

	var reqFields models.EventFields
	if req.Fields != nil {
		reqFields = *req.Fields
	}

	fields := make([]discord.EmbedField, 0, len(reqFields))
	for _, field := range reqFields {
		fields = append(fields, discord.EmbedField{
			Name:   field.Name,
			Value:  field.ValueString(),
			Inline: true,
		})
	}

	return discord.Embed{
		Title:       emoji + " " + capitalize(category.Name),
		Description: description,
		Color:       category.Color,
		Timestamp:   now.UTC().Format(time.RFC3339),
		Fields:      fields,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
