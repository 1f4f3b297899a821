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

// PaymentHandler handles the stubbed payment flow endpoints.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// CreateIntent handles POST /api/v1/payments/intent.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	var listingID *uuid.UUID
	if req.ListingID != nil {
		id, err := uuid.Parse(*req.ListingID)
		if err != nil {
			response.Error(c, apperror.Validation("invalid listing_id"))
			return
		}
		listingID = &id
	}

	intent, err := h.paymentSvc.CreateIntent(c.Request.Context(), caller, listingID, req.Amount, domain.PaymentType(req.PaymentType), middleware.RequestMetaFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, intent)
}

// Confirm handles POST /api/v1/payments/:id/confirm.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid payment id"))
		return
	}

	var req dto.PaymentConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payment, err := h.paymentSvc.Confirm(c.Request.Context(), caller, id, req.Succeeded, middleware.RequestMetaFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, payment)
}
