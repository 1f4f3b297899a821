package service

import (
	"context"
	"sort"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
)

// EntityRegistry maps entity type names to the accessor each collection
// registered at startup. Lookups against unregistered names fail with
// ErrUnknownEntityType, so adding an auditable collection is a registration
// at wire-up time, not a code change here.
type EntityRegistry struct {
	accessors map[domain.EntityType]ports.EntityAccessor
}

// NewEntityRegistry creates an empty registry.
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{accessors: make(map[domain.EntityType]ports.EntityAccessor)}
}

// Register binds an accessor to an entity type. Later registrations for the
// same type replace earlier ones.
func (r *EntityRegistry) Register(t domain.EntityType, a ports.EntityAccessor) {
	r.accessors[t] = a
}

// Lookup resolves the accessor for an entity type.
func (r *EntityRegistry) Lookup(t domain.EntityType) (ports.EntityAccessor, error) {
	a, ok := r.accessors[t]
	if !ok {
		return nil, apperror.ErrUnknownEntityType(string(t))
	}
	return a, nil
}

// Types returns the registered entity type names, sorted.
func (r *EntityRegistry) Types() []domain.EntityType {
	types := make([]domain.EntityType, 0, len(r.accessors))
	for t := range r.accessors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// --- accessors ---

// UserAccessor adapts the user repository to the audit registry.
type UserAccessor struct {
	repo ports.UserRepository
}

func NewUserAccessor(repo ports.UserRepository) *UserAccessor {
	return &UserAccessor{repo: repo}
}

func (a *UserAccessor) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	u, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

func (a *UserAccessor) Describe(ctx context.Context, id uuid.UUID) (map[string]any, error) {
	u, err := a.repo.GetByID(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}
	return map[string]any{"name": u.DisplayName(), "role": u.Role, "status": u.Status}, nil
}

// OwnerID of a user document is the user themselves.
func (a *UserAccessor) OwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return id, nil
}

// InstructorAccessor adapts the instructor repository to the audit registry.
type InstructorAccessor struct {
	repo ports.InstructorRepository
}

func NewInstructorAccessor(repo ports.InstructorRepository) *InstructorAccessor {
	return &InstructorAccessor{repo: repo}
}

func (a *InstructorAccessor) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	ins, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return ins != nil, nil
}

func (a *InstructorAccessor) Describe(ctx context.Context, id uuid.UUID) (map[string]any, error) {
	ins, err := a.repo.GetByID(ctx, id)
	if err != nil || ins == nil {
		return nil, err
	}
	return map[string]any{"name": ins.Name, "status": ins.Status, "category": ins.Category}, nil
}

// OwnerID of an instructor document is the instructor account itself.
func (a *InstructorAccessor) OwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return id, nil
}

// ListingAccessor adapts the listing repository to the audit registry.
type ListingAccessor struct {
	repo ports.ListingRepository
}

func NewListingAccessor(repo ports.ListingRepository) *ListingAccessor {
	return &ListingAccessor{repo: repo}
}

func (a *ListingAccessor) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	l, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return l != nil, nil
}

func (a *ListingAccessor) Describe(ctx context.Context, id uuid.UUID) (map[string]any, error) {
	l, err := a.repo.GetByID(ctx, id)
	if err != nil || l == nil {
		return nil, err
	}
	return map[string]any{"title": l.Title, "status": l.Status, "is_deleted": l.IsDeleted}, nil
}

func (a *ListingAccessor) OwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	l, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if l == nil {
		return uuid.Nil, nil
	}
	return l.InstructorID, nil
}

// EnrollmentAccessor adapts the enrollment repository to the audit registry.
type EnrollmentAccessor struct {
	repo ports.EnrollmentRepository
}

func NewEnrollmentAccessor(repo ports.EnrollmentRepository) *EnrollmentAccessor {
	return &EnrollmentAccessor{repo: repo}
}

func (a *EnrollmentAccessor) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	e, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

func (a *EnrollmentAccessor) Describe(ctx context.Context, id uuid.UUID) (map[string]any, error) {
	e, err := a.repo.GetByID(ctx, id)
	if err != nil || e == nil {
		return nil, err
	}
	return map[string]any{"status": e.Status, "progress": e.Progress, "selected_date": e.SelectedDate}, nil
}

func (a *EnrollmentAccessor) OwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	e, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if e == nil {
		return uuid.Nil, nil
	}
	return e.UserID, nil
}

// PaymentAccessor adapts the payment repository to the audit registry.
type PaymentAccessor struct {
	repo ports.PaymentRepository
}

func NewPaymentAccessor(repo ports.PaymentRepository) *PaymentAccessor {
	return &PaymentAccessor{repo: repo}
}

func (a *PaymentAccessor) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	p, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

func (a *PaymentAccessor) Describe(ctx context.Context, id uuid.UUID) (map[string]any, error) {
	p, err := a.repo.GetByID(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	return map[string]any{"amount": p.Amount, "status": p.Status, "gateway": p.Gateway}, nil
}

func (a *PaymentAccessor) OwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	p, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if p == nil {
		return uuid.Nil, nil
	}
	return p.UserID, nil
}

// ReviewAccessor adapts the review repository to the audit registry.
type ReviewAccessor struct {
	repo ports.ReviewRepository
}

func NewReviewAccessor(repo ports.ReviewRepository) *ReviewAccessor {
	return &ReviewAccessor{repo: repo}
}

func (a *ReviewAccessor) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	rev, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return rev != nil, nil
}

func (a *ReviewAccessor) Describe(ctx context.Context, id uuid.UUID) (map[string]any, error) {
	rev, err := a.repo.GetByID(ctx, id)
	if err != nil || rev == nil {
		return nil, err
	}
	return map[string]any{"rating": rev.Rating, "listing_id": rev.ListingID}, nil
}

func (a *ReviewAccessor) OwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	rev, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if rev == nil {
		return uuid.Nil, nil
	}
	return rev.UserID, nil
}
