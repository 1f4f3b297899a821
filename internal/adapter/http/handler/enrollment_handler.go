package handler

import (
	"skills-marketplace-api/internal/adapter/http/dto"
	"skills-marketplace-api/internal/adapter/http/middleware"
	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"
	"skills-marketplace-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EnrollmentHandler handles booking, progress, and certificate endpoints.
type EnrollmentHandler struct {
	enrollSvc ports.EnrollmentService
	certSvc   ports.CertificateService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollSvc ports.EnrollmentService, certSvc ports.CertificateService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollSvc: enrollSvc, certSvc: certSvc}
}

// Enroll handles POST /api/v1/enrollments.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing_id"))
		return
	}

	enrollment, err := h.enrollSvc.Enroll(c.Request.Context(), caller, ports.EnrollRequest{
		ListingID:    listingID,
		SelectedDate: req.SelectedDate,
		SelectedSlot: req.SelectedSlot,
	}, middleware.RequestMetaFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// List handles GET /api/v1/enrollments. Admin view across all users.
func (h *EnrollmentHandler) List(c *gin.Context) {
	page, pageSize := parsePageParams(c)
	params := ports.EnrollmentListParams{Page: page, PageSize: pageSize}

	if v := c.Query("listing_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.Error(c, apperror.Validation("invalid listing_id"))
			return
		}
		params.ListingID = &id
	}
	if v := c.Query("instructor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.Error(c, apperror.Validation("invalid instructor_id"))
			return
		}
		params.InstructorID = &id
	}
	if v := c.Query("status"); v != "" {
		status := domain.EnrollmentStatus(v)
		params.Status = &status
	}

	enrollments, total, err := h.enrollSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewListResponse(enrollments, total, page, pageSize))
}

// Me handles GET /api/v1/enrollments/me. Returns the caller's enrollments
// with per-status counts.
func (h *EnrollmentHandler) Me(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, pageSize := parsePageParams(c)
	params := ports.EnrollmentListParams{Page: page, PageSize: pageSize}
	if v := c.Query("status"); v != "" {
		status := domain.EnrollmentStatus(v)
		params.Status = &status
	}

	enrollments, counts, err := h.enrollSvc.ListForUser(c.Request.Context(), caller.ID, params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{
		"enrollments":   enrollments,
		"status_counts": counts,
	})
}

// Participants handles GET /api/v1/enrollments/participants. Lists the
// distinct learners across the calling instructor's listings.
func (h *EnrollmentHandler) Participants(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, pageSize := parsePageParams(c)
	users, total, err := h.enrollSvc.Participants(c.Request.Context(), caller.ID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewListResponse(users, total, page, pageSize))
}

// UpdateProgress handles PATCH /api/v1/enrollments/:id/progress.
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid enrollment id"))
		return
	}

	var req dto.ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	enrollment, err := h.enrollSvc.UpdateProgress(c.Request.Context(), caller, id, req.Progress, req.CompletedModules)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollment)
}

// Cancel handles DELETE /api/v1/enrollments/:id.
func (h *EnrollmentHandler) Cancel(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid enrollment id"))
		return
	}

	if err := h.enrollSvc.Cancel(c.Request.Context(), caller, id, middleware.RequestMetaFrom(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"cancelled": true})
}

// IssueCertificate handles POST /api/v1/certificates.
func (h *EnrollmentHandler) IssueCertificate(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid user_id"))
		return
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing_id"))
		return
	}

	cert, err := h.certSvc.Issue(c.Request.Context(), caller, userID, listingID, req.CertificateURL, middleware.RequestMetaFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cert)
}
