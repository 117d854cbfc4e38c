package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yugaldekate/pingpanda/internal/api/middleware"
	"github.com/yugaldekate/pingpanda/internal/service"
)

// UserHandler handles account requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// HandleSyncIdentity provisions the signed-in identity on first call
func (h *UserHandler) HandleSyncIdentity(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	user, created, err := h.userService.SyncIdentity(c.Request.Context(), identity.ExternalID, identity.Email)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"isSynced": true, "userId": user.ID.String()})
}

// HandleGetUsage returns the caller's current-period consumption
func (h *UserHandler) HandleGetUsage(c *gin.Context) {
	user := middleware.UserFromContext(c)

	usage, err := h.userService.Usage(c.Request.Context(), user)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, usage)
}

// HandleGetAPIKey reveals the caller's API key
func (h *UserHandler) HandleGetAPIKey(c *gin.Context) {
	user := middleware.UserFromContext(c)
	c.JSON(http.StatusOK, gin.H{"apiKey": user.APIKey})
}

// settingsRequest is the body of a settings update
type settingsRequest struct {
	DiscordID string `json:"discordId"`
}

// HandleUpdateSettings sets or clears the caller's Discord recipient id
func (h *UserHandler) HandleUpdateSettings(c *gin.Context) {
	user := middleware.UserFromContext(c)

	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid request body"})
		return
	}

	if err := h.userService.UpdateDiscordID(c.Request.Context(), user, req.DiscordID); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
