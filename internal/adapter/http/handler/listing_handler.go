package handler

import (
	"encoding/json"
	"strconv"

	"skills-marketplace-api/internal/adapter/http/dto"
	"skills-marketplace-api/internal/adapter/http/middleware"
	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"
	"skills-marketplace-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListingHandler handles listing lifecycle endpoints.
type ListingHandler struct {
	listingSvc ports.ListingService
	reviewSvc  ports.ReviewService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listingSvc ports.ListingService, reviewSvc ports.ReviewService) *ListingHandler {
	return &ListingHandler{listingSvc: listingSvc, reviewSvc: reviewSvc}
}

// Create handles POST /api/v1/listings.
func (h *ListingHandler) Create(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	listing, err := h.listingSvc.Create(c.Request.Context(), caller, ports.ListingInput{
		Title:          req.Title,
		Type:           req.Type,
		Description:    req.Description,
		ParticipantFee: req.ParticipantFee,
		SeatCapacity:   req.SeatCapacity,
		LocationType:   domain.LocationType(req.LocationType),
		Address:        req.Address,
		TimeSlots:      req.TimeSlots,
		Images:         req.Images,
		FAQs:           req.FAQs,
	}, middleware.RequestMetaFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, listing)
}

// Get handles GET /api/v1/listings/:id.
func (h *ListingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	listing, err := h.listingSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, listing)
}

// List handles GET /api/v1/listings.
func (h *ListingHandler) List(c *gin.Context) {
	page, pageSize := parsePageParams(c)
	params := ports.ListingListParams{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
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
		status := domain.ListingStatus(v)
		params.Status = &status
	}
	if v := c.Query("type"); v != "" {
		params.Type = &v
	}

	listings, total, err := h.listingSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewListResponse(listings, total, page, pageSize))
}

// Update handles PATCH /api/v1/listings/:id. The body is a partial document;
// only the provided keys are applied.
func (h *ListingHandler) Update(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	var patch map[string]json.RawMessage
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	listing, err := h.listingSvc.Update(c.Request.Context(), caller, id, patch, middleware.RequestMetaFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, listing)
}

// Delete handles DELETE /api/v1/listings/:id (soft delete).
func (h *ListingHandler) Delete(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	if err := h.listingSvc.Delete(c.Request.Context(), caller, id, middleware.RequestMetaFrom(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// Restore handles POST /api/v1/listings/:id/restore.
func (h *ListingHandler) Restore(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	listing, err := h.listingSvc.Restore(c.Request.Context(), caller, id, middleware.RequestMetaFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, listing)
}

// ChangeStatus handles POST /api/v1/listings/:id/status.
func (h *ListingHandler) ChangeStatus(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	listing, err := h.listingSvc.ChangeStatus(c.Request.Context(), caller, id, domain.ListingStatus(req.Status), req.Reason, middleware.RequestMetaFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, listing)
}

// Reviews handles GET /api/v1/listings/:id/reviews.
func (h *ListingHandler) Reviews(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	reviews, err := h.reviewSvc.ListByListing(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, reviews)
}

// AddReview handles POST /api/v1/listings/:id/reviews.
func (h *ListingHandler) AddReview(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	review, err := h.reviewSvc.Add(c.Request.Context(), caller, id, req.Rating, req.Body, middleware.RequestMetaFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

func parsePageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
