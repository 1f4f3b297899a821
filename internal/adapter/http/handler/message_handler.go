package handler

import (
	"skills-marketplace-api/internal/adapter/http/dto"
	"skills-marketplace-api/internal/adapter/http/middleware"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"
	"skills-marketplace-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MessageHandler handles direct messages and listing discussions.
type MessageHandler struct {
	messageSvc ports.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageSvc ports.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// Send handles POST /api/v1/messages.
func (h *MessageHandler) Send(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid receiver_id"))
		return
	}

	msg, err := h.messageSvc.Send(c.Request.Context(), caller, receiverID, req.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// Conversation handles GET /api/v1/messages/:userId. Returns the thread
// between the caller and the named user, marking received messages read.
func (h *MessageHandler) Conversation(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	otherID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}

	msgs, err := h.messageSvc.Conversation(c.Request.Context(), caller, otherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, msgs)
}

// PostDiscussion handles POST /api/v1/listings/:id/discussions.
func (h *MessageHandler) PostDiscussion(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	var req dto.DiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	var parentID *uuid.UUID
	if req.ParentID != nil {
		id, err := uuid.Parse(*req.ParentID)
		if err != nil {
			response.Error(c, apperror.Validation("invalid parent_id"))
			return
		}
		parentID = &id
	}

	discussion, err := h.messageSvc.PostDiscussion(c.Request.Context(), caller, listingID, req.Body, parentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, discussion)
}

// ListDiscussions handles GET /api/v1/listings/:id/discussions.
func (h *MessageHandler) ListDiscussions(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	discussions, err := h.messageSvc.ListDiscussions(c.Request.Context(), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, discussions)
}
