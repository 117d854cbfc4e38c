package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yugaldekate/pingpanda/internal/api/middleware"
	"github.com/yugaldekate/pingpanda/internal/search"
	"github.com/yugaldekate/pingpanda/internal/service"
)

// EventHandler handles event ingestion and event search requests
type EventHandler struct {
	ingestService *service.IngestService
	elasticClient *search.ElasticClient
}

// NewEventHandler creates a new event handler
func NewEventHandler(ingestService *service.IngestService, elasticClient *search.ElasticClient) *EventHandler {
	return &EventHandler{
		ingestService: ingestService,
		elasticClient: elasticClient,
	}
}

// HandleIngestEvent runs the ingestion pipeline for one request
func (h *EventHandler) HandleIngestEvent(c *gin.Context) {
	user := middleware.UserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	result, err := h.ingestService.ProcessEvent(c.Request.Context(), user, c.Request.Body)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event processed successfully",
		"eventId": result.EventID.String(),
	})
}

// HandleSearchEvents runs a free-text search over the caller's events
func (h *EventHandler) HandleSearchEvents(c *gin.Context) {
	user := middleware.UserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if !h.elasticClient.Enabled() {
		writeServiceError(c, service.ErrSearchUnavailable)
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Query parameter 'q' is required"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	results, err := h.elasticClient.SearchEvents(c.Request.Context(), user.ID, query, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
