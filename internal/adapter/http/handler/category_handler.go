package handler

import (
	"skills-marketplace-api/internal/adapter/http/dto"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"
	"skills-marketplace-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CategoryHandler handles taxonomy endpoints.
type CategoryHandler struct {
	categorySvc ports.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categorySvc ports.CategoryService) *CategoryHandler {
	return &CategoryHandler{categorySvc: categorySvc}
}

// Tree handles GET /api/v1/categories/tree.
func (h *CategoryHandler) Tree(c *gin.Context) {
	tree, err := h.categorySvc.Tree(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tree)
}

// CreateCategory handles POST /api/v1/categories.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	category, err := h.categorySvc.CreateCategory(c.Request.Context(), req.Name, req.Image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// CreateSubCategory handles POST /api/v1/categories/:id/subcategories.
func (h *CategoryHandler) CreateSubCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid category id"))
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	sub, err := h.categorySvc.CreateSubCategory(c.Request.Context(), categoryID, req.Name, req.Image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// CreateTopic handles POST /api/v1/subcategories/:id/topics.
func (h *CategoryHandler) CreateTopic(c *gin.Context) {
	subCategoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid subcategory id"))
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	topic, err := h.categorySvc.CreateTopic(c.Request.Context(), subCategoryID, req.Name, req.Image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, topic)
}

// DeleteCategory handles DELETE /api/v1/categories/:id (soft delete).
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid category id"))
		return
	}

	if err := h.categorySvc.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// DashboardHandler handles admin aggregate endpoints.
type DashboardHandler struct {
	dashboardSvc ports.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardSvc ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Stats handles GET /api/v1/dashboard/stats.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardSvc.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}
