package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	stripe "github.com/stripe/stripe-go/v81"
	stripeclient "github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/yugaldekate/pingpanda/config"
	"github.com/yugaldekate/pingpanda/internal/models"
	"github.com/yugaldekate/pingpanda/internal/repository"
)

// BillingService handles checkout and plan upgrades via Stripe
type BillingService struct {
	sc   *stripeclient.API
	cfg  config.StripeConfig
	repo repository.Repository
}

// NewBillingService creates a new billing service with its own Stripe client
func NewBillingService(cfg config.StripeConfig, repo repository.Repository) *BillingService {
	sc := &stripeclient.API{}
	sc.Init(cfg.SecretKey, nil)

	return &BillingService{
		sc:   sc,
		cfg:  cfg,
		repo: repo,
	}
}

// CreateCheckout starts a checkout session for the PRO upgrade and returns
// the hosted checkout URL.
func (s *BillingService) CreateCheckout(ctx context.Context, user *models.User) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(user.Email),
		SuccessURL:    stripe.String(s.cfg.SuccessURL),
		CancelURL:     stripe.String(s.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.ProPriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	// The webhook uses this to find the user to upgrade
	params.AddMetadata("userId", user.ID.String())

	session, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		return "", errors.Wrap(err, "failed to create checkout session")
	}
	return session.URL, nil
}

// HandleWebhook verifies and processes a payment provider webhook
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return NewValidationError("invalid webhook signature")
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return errors.Wrap(err, "failed to decode checkout session")
		}
		return s.UpgradeUserFromCheckout(ctx, session.Metadata["userId"])
	default:
		log.Debug().Str("type", string(event.Type)).Msg("Ignoring webhook event")
		return nil
	}
}

// UpgradeUserFromCheckout moves the user referenced by checkout metadata to
// the PRO plan.
func (s *BillingService) UpgradeUserFromCheckout(ctx context.Context, userIDStr string) error {
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return errors.Errorf("invalid userId in checkout metadata: %q", userIDStr)
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "failed to find user for upgrade")
	}

	user.Plan = models.PlanPro
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return errors.Wrap(err, "failed to upgrade user plan")
	}

	log.Info().Str("user_id", user.ID.String()).Msg("User upgraded to PRO")
	return nil
}
