package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yugaldekate/pingpanda/internal/service"
)

// writeServiceError maps a service error to its HTTP response. Anything
// outside the request taxonomy becomes a generic 500.
func writeServiceError(c *gin.Context, err error) {
	var apiErr *service.APIError
	if errors.As(err, &apiErr) {
		body := gin.H{"message": apiErr.Message}
		if apiErr.EventID != nil {
			body["eventId"] = apiErr.EventID.String()
		}
		c.JSON(apiErr.StatusCode, body)
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}
