package handler

import (
	"encoding/json"

	"skills-marketplace-api/internal/adapter/http/dto"
	"skills-marketplace-api/internal/adapter/http/middleware"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"
	"skills-marketplace-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler handles profile and instructor workflow endpoints.
type UserHandler struct {
	userSvc       ports.UserService
	instructorSvc ports.InstructorService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userSvc ports.UserService, instructorSvc ports.InstructorService) *UserHandler {
	return &UserHandler{userSvc: userSvc, instructorSvc: instructorSvc}
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}

	user, err := h.userSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// Me handles GET /api/v1/users/me.
func (h *UserHandler) Me(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	user, err := h.userSvc.Get(c.Request.Context(), caller.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// Update handles PATCH /api/v1/users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}

	var patch map[string]json.RawMessage
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), caller, id, patch, middleware.RequestMetaFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// Delete handles DELETE /api/v1/users/:id (soft delete).
func (h *UserHandler) Delete(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), caller, id, middleware.RequestMetaFrom(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// GetInstructor handles GET /api/v1/instructors/:id.
func (h *UserHandler) GetInstructor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid instructor id"))
		return
	}

	instructor, err := h.instructorSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, instructor)
}

// ApproveInstructor handles POST /api/v1/instructors/:id/approve.
func (h *UserHandler) ApproveInstructor(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid instructor id"))
		return
	}

	instructor, err := h.instructorSvc.Approve(c.Request.Context(), caller, id, middleware.RequestMetaFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, instructor)
}

// RejectInstructor handles POST /api/v1/instructors/:id/reject.
func (h *UserHandler) RejectInstructor(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid instructor id"))
		return
	}

	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	instructor, err := h.instructorSvc.Reject(c.Request.Context(), caller, id, req.Reason, middleware.RequestMetaFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, instructor)
}
