package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yugaldekate/pingpanda/internal/api/middleware"
	"github.com/yugaldekate/pingpanda/internal/service"
)

// CategoryHandler handles event category requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// HandleListCategories lists the caller's categories with month-to-date stats
func (h *CategoryHandler) HandleListCategories(c *gin.Context) {
	user := middleware.UserFromContext(c)

	categories, err := h.categoryService.ListWithStats(c.Request.Context(), user)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// HandleCreateCategory creates a new category
func (h *CategoryHandler) HandleCreateCategory(c *gin.Context) {
	user := middleware.UserFromContext(c)

	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Msg("Invalid category body")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid request body"})
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), user, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// HandleDeleteCategory deletes a category and its events
func (h *CategoryHandler) HandleDeleteCategory(c *gin.Context) {
	user := middleware.UserFromContext(c)
	name := c.Param("name")

	if err := h.categoryService.Delete(c.Request.Context(), user, name); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleListCategoryEvents returns one page of a category's events
func (h *CategoryHandler) HandleListCategoryEvents(c *gin.Context) {
	user := middleware.UserFromContext(c)
	name := c.Param("name")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	events, total, err := h.categoryService.ListEvents(c.Request.Context(), user, name, page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  total,
	})
}
