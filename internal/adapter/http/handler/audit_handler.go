package handler

import (
	"strconv"
	"strings"
	"time"

	"skills-marketplace-api/internal/adapter/http/middleware"
	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"
	"skills-marketplace-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditHandler exposes the audit ledger read endpoints. Permission checks
// live here: the query service itself is caller-agnostic.
type AuditHandler struct {
	querySvc ports.AuditQueryService
	policy   ports.AuditAccessPolicy
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(querySvc ports.AuditQueryService, policy ports.AuditAccessPolicy) *AuditHandler {
	return &AuditHandler{querySvc: querySvc, policy: policy}
}

// DocumentHistory handles GET /api/v1/audit/documents/:entityType/:documentId.
func (h *AuditHandler) DocumentHistory(c *gin.Context) {
	caller, entityType, docID, ok := h.documentScope(c)
	if !ok {
		return
	}
	if err := h.policy.CanView(c.Request.Context(), caller, entityType, docID); err != nil {
		response.Error(c, err)
		return
	}

	opts, err := parseAuditQueryOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.querySvc.ByDocument(c.Request.Context(), entityType, docID, opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// DocumentSummary handles GET /api/v1/audit/documents/:entityType/:documentId/summary.
func (h *AuditHandler) DocumentSummary(c *gin.Context) {
	caller, entityType, docID, ok := h.documentScope(c)
	if !ok {
		return
	}
	if err := h.policy.CanView(c.Request.Context(), caller, entityType, docID); err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.querySvc.Summary(c.Request.Context(), entityType, docID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// ActorHistory handles GET /api/v1/audit/actors/:actorId. Callers may read
// their own trail; everything else is admin-only.
func (h *AuditHandler) ActorHistory(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	actorID, err := uuid.Parse(c.Param("actorId"))
	if err != nil {
		response.Error(c, apperror.ErrInvalidDocumentID())
		return
	}
	if err := h.policy.CanViewActor(caller, actorID); err != nil {
		response.Error(c, err)
		return
	}

	opts, err := parseAuditQueryOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.querySvc.ByActor(c.Request.Context(), actorID, opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// SystemQuery handles GET /api/v1/audit/system. Admin only.
func (h *AuditHandler) SystemQuery(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	if err := h.policy.CanViewSystem(caller); err != nil {
		response.Error(c, err)
		return
	}

	opts, err := parseAuditQueryOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.querySvc.System(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// RecentActivity handles GET /api/v1/audit/feed. Admin only.
func (h *AuditHandler) RecentActivity(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	if err := h.policy.CanViewSystem(caller); err != nil {
		response.Error(c, err)
		return
	}

	opts := ports.AuditFeedOptions{}
	if v := c.Query("entity_types"); v != "" {
		for _, part := range strings.Split(v, ",") {
			opts.EntityTypes = append(opts.EntityTypes, domain.EntityType(strings.TrimSpace(part)))
		}
	}
	if v := c.Query("actions"); v != "" {
		for _, part := range strings.Split(v, ",") {
			opts.Actions = append(opts.Actions, domain.AuditAction(strings.TrimSpace(part)))
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}

	entries, err := h.querySvc.RecentActivity(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}

func (h *AuditHandler) documentScope(c *gin.Context) (ports.Caller, domain.EntityType, uuid.UUID, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return ports.Caller{}, "", uuid.Nil, false
	}

	entityType := domain.EntityType(c.Param("entityType"))
	docID, err := uuid.Parse(c.Param("documentId"))
	if err != nil {
		response.Error(c, apperror.ErrInvalidDocumentID())
		return ports.Caller{}, "", uuid.Nil, false
	}
	return caller, entityType, docID, true
}

// parseAuditQueryOptions extracts the shared filter knobs from query params.
// Unparseable dates are a validation error; unknown filter values are left
// to the query service, which owns the recognized sets.
func parseAuditQueryOptions(c *gin.Context) (ports.AuditQueryOptions, error) {
	opts := ports.AuditQueryOptions{}

	if v := c.Query("action"); v != "" {
		action := domain.AuditAction(v)
		opts.Action = &action
	}
	if v := c.Query("actor_role"); v != "" {
		role := domain.Role(v)
		opts.ActorRole = &role
	}
	if v := c.Query("entity_type"); v != "" {
		entityType := domain.EntityType(v)
		opts.EntityType = &entityType
	}
	if v := c.Query("actor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return opts, apperror.Validation("invalid actor_id")
		}
		opts.ActorID = &id
	}
	if v := c.Query("document_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return opts, apperror.ErrInvalidDocumentID()
		}
		opts.DocumentID = &id
	}
	if v := c.Query("date_from"); v != "" {
		t, err := parseQueryTime(v)
		if err != nil {
			return opts, apperror.Validation("invalid date_from")
		}
		opts.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := parseQueryTime(v)
		if err != nil {
			return opts, apperror.Validation("invalid date_to")
		}
		opts.DateTo = &t
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	return opts, nil
}

// parseQueryTime accepts RFC 3339 timestamps or bare calendar dates. A bare
// date parses as midnight UTC; the query service decides whether an
// end-of-day bound should widen to cover the full day.
func parseQueryTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
