package service

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// APIError is a terminal request error carrying the HTTP status it maps to.
// Delivery failures additionally carry the id of the event row that was
// persisted before the attempt, so callers can correlate and retry manually.
type APIError struct {
	Message    string
	StatusCode int
	Code       string
	EventID    *uuid.UUID
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Request error taxonomy
var (
	ErrUnauthenticated = &APIError{
		Message:    "Invalid API key",
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHENTICATED",
	}
	ErrRecipientNotConfigured = &APIError{
		Message:    "Please enter your Discord ID in your account settings",
		StatusCode: http.StatusForbidden,
		Code:       "RECIPIENT_NOT_CONFIGURED",
	}
	ErrQuotaExceeded = &APIError{
		Message:    "Monthly quota reached. Please upgrade your plan for more events",
		StatusCode: http.StatusTooManyRequests,
		Code:       "QUOTA_EXCEEDED",
	}
	ErrCategoryLimitReached = &APIError{
		Message:    "Category limit reached for your plan. Please upgrade to create more categories",
		StatusCode: http.StatusForbidden,
		Code:       "CATEGORY_LIMIT_REACHED",
	}
	ErrDuplicateCategory = &APIError{
		Message:    "A category with this name already exists",
		StatusCode: http.StatusConflict,
		Code:       "DUPLICATE_CATEGORY",
	}
	ErrSearchUnavailable = &APIError{
		Message:    "Event search is not available",
		StatusCode: http.StatusServiceUnavailable,
		Code:       "SEARCH_UNAVAILABLE",
	}
)

// NewValidationError creates a schema validation error surfacing the validator's message
func NewValidationError(message string) *APIError {
	return &APIError{
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "VALIDATION_FAILED",
	}
}

// NewCategoryNotFoundError creates a not-found error echoing the category name
func NewCategoryNotFoundError(name string) *APIError {
	return &APIError{
		Message:    fmt.Sprintf("You don't have a category named %q", name),
		StatusCode: http.StatusNotFound,
		Code:       "CATEGORY_NOT_FOUND",
	}
}

// NewDeliveryError creates a delivery failure error carrying the event id
func NewDeliveryError(eventID uuid.UUID) *APIError {
	return &APIError{
		Message:    "Error processing event",
		StatusCode: http.StatusInternalServerError,
		Code:       "DELIVERY_FAILED",
		EventID:    &eventID,
	}
}
