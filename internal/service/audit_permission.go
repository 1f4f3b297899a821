package service

import (
	"context"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
)

// AuditPolicy implements ports.AuditAccessPolicy.
//
// Admins may read any document's history. Non-admins may read a document's
// history only when they own the underlying document, resolved through the
// entity registry. A User document is owned by that user. Everything else
// is denied with an access error distinct from not-found, so an absent
// document and a forbidden one are reported differently.
type AuditPolicy struct {
	registry *EntityRegistry
}

// NewAuditPolicy creates the audit read-access policy.
func NewAuditPolicy(registry *EntityRegistry) *AuditPolicy {
	return &AuditPolicy{registry: registry}
}

// CanView decides whether the caller may read one document's audit history.
func (p *AuditPolicy) CanView(ctx context.Context, caller ports.Caller, entityType domain.EntityType, documentID uuid.UUID) error {
	if caller.Role == domain.RoleAdmin {
		return nil
	}

	accessor, err := p.registry.Lookup(entityType)
	if err != nil {
		return err
	}

	owner, err := accessor.OwnerID(ctx, documentID)
	if err != nil {
		return apperror.ErrAuditQueryFailed(err)
	}
	if owner != uuid.Nil && owner == caller.ID {
		return nil
	}
	return apperror.ErrAuditAccessDenied()
}

// CanViewActor decides whether the caller may read another user's activity
// history. Self-view is always allowed.
func (p *AuditPolicy) CanViewActor(caller ports.Caller, actorID uuid.UUID) error {
	if caller.Role == domain.RoleAdmin || caller.ID == actorID {
		return nil
	}
	return apperror.ErrAuditAccessDenied()
}

// CanViewSystem gates the unrestricted cross-collection queries and the
// recent-activity feed.
func (p *AuditPolicy) CanViewSystem(caller ports.Caller) error {
	if caller.Role == domain.RoleAdmin {
		return nil
	}
	return apperror.ErrAuditAccessDenied()
}
