package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/yugaldekate/pingpanda/config"
	"github.com/yugaldekate/pingpanda/internal/models"
)

const webhookSecret = "whsec_test"

func signedStripeHeader(payload []byte) string {
	now := time.Now()
	signature := webhook.ComputeSignature(now, payload, webhookSecret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(signature))
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewBillingService(config.StripeConfig{WebhookSecret: webhookSecret}, mockRepo)

	err := service.HandleWebhook(context.Background(), []byte(`{}`), "t=0,v1=deadbeef")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 422, apiErr.StatusCode)
	mockRepo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func TestHandleWebhookUpgradesPlanOnCheckoutCompleted(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewBillingService(config.StripeConfig{WebhookSecret: webhookSecret}, mockRepo)

	user := &models.User{ID: uuid.New(), Plan: models.PlanFree}
	mockRepo.On("FindUserByID", mock.Anything, user.ID).Return(user, nil)

	var updated *models.User
	mockRepo.On("UpdateUser", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*models.User)
		}).
		Return(nil)

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {"object": {"metadata": {"userId": %q}}}
	}`, stripe.APIVersion, user.ID.String()))

	err := service.HandleWebhook(context.Background(), payload, signedStripeHeader(payload))

	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, models.PlanPro, updated.Plan)
	mockRepo.AssertExpectations(t)
}

func TestHandleWebhookIgnoresOtherEventTypes(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewBillingService(config.StripeConfig{WebhookSecret: webhookSecret}, mockRepo)

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_2",
		"api_version": %q,
		"type": "invoice.paid",
		"data": {"object": {}}
	}`, stripe.APIVersion))

	err := service.HandleWebhook(context.Background(), payload, signedStripeHeader(payload))

	require.NoError(t, err)
	mockRepo.AssertNotCalled(t, "FindUserByID", mock.Anything, mock.Anything)
}

func TestUpgradeUserFromCheckoutRejectsBadID(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewBillingService(config.StripeConfig{}, mockRepo)

	err := service.UpgradeUserFromCheckout(context.Background(), "not-a-uuid")

	require.Error(t, err)
	mockRepo.AssertNotCalled(t, "FindUserByID", mock.Anything, mock.Anything)
}
