package integration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"

	"github.com/google/uuid"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.EmailID != nil && *u.EmailID == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *inMemoryUserRepo) Update(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return fmt.Errorf("user not found")
	}
	r.users[u.ID] = u
	return nil
}

func (r *inMemoryUserRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.IsDeleted = true
	return nil
}

// --- In-Memory Listing Repo ---

type inMemoryListingRepo struct {
	mu       sync.RWMutex
	listings map[uuid.UUID]*domain.Listing
}

func newInMemoryListingRepo() *inMemoryListingRepo {
	return &inMemoryListingRepo{listings: make(map[uuid.UUID]*domain.Listing)}
}

func (r *inMemoryListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.listings[l.ID] = &cp
	return nil
}

func (r *inMemoryListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *inMemoryListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[l.ID]; !ok {
		return fmt.Errorf("listing not found")
	}
	cp := *l
	r.listings[l.ID] = &cp
	return nil
}

func (r *inMemoryListingRepo) List(ctx context.Context, params ports.ListingListParams) ([]domain.Listing, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Listing
	for _, l := range r.listings {
		if params.InstructorID != nil && l.InstructorID != *params.InstructorID {
			continue
		}
		if params.Status != nil && l.Status != *params.Status {
			continue
		}
		if params.IsDeleted != nil && l.IsDeleted != *params.IsDeleted {
			continue
		}
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

func (r *inMemoryListingRepo) AdjustParticipantCount(ctx context.Context, id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return fmt.Errorf("listing not found")
	}
	if delta > 0 && l.SeatCapacity != nil && l.ParticipantCount+delta > *l.SeatCapacity {
		return fmt.Errorf("no seats available")
	}
	l.ParticipantCount += delta
	return nil
}

func (r *inMemoryListingRepo) UpdateAverageRating(ctx context.Context, id uuid.UUID, avg float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return fmt.Errorf("listing not found")
	}
	l.AverageRating = avg
	return nil
}

// --- In-Memory Enrollment Repo ---

type inMemoryEnrollmentRepo struct {
	mu          sync.RWMutex
	enrollments map[uuid.UUID]*domain.Enrollment
}

func newInMemoryEnrollmentRepo() *inMemoryEnrollmentRepo {
	return &inMemoryEnrollmentRepo{enrollments: make(map[uuid.UUID]*domain.Enrollment)}
}

func (r *inMemoryEnrollmentRepo) Create(ctx context.Context, e *domain.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.enrollments[e.ID] = &cp
	return nil
}

func (r *inMemoryEnrollmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enrollments[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *inMemoryEnrollmentRepo) GetBySlot(ctx context.Context, userID, listingID uuid.UUID, date string, slot domain.TimeSlot) (*domain.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.enrollments {
		if e.UserID == userID && e.ListingID == listingID && e.SelectedDate == date && e.SelectedSlot == slot {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryEnrollmentRepo) GetByUserAndListing(ctx context.Context, userID, listingID uuid.UUID) (*domain.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.enrollments {
		if e.UserID == userID && e.ListingID == listingID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryEnrollmentRepo) List(ctx context.Context, params ports.EnrollmentListParams) ([]domain.Enrollment, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Enrollment
	for _, e := range r.enrollments {
		if params.UserID != nil && e.UserID != *params.UserID {
			continue
		}
		if params.ListingID != nil && e.ListingID != *params.ListingID {
			continue
		}
		if params.Status != nil && e.Status != *params.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *inMemoryEnrollmentRepo) Update(ctx context.Context, e *domain.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enrollments[e.ID]; !ok {
		return fmt.Errorf("enrollment not found")
	}
	cp := *e
	r.enrollments[e.ID] = &cp
	return nil
}

func (r *inMemoryEnrollmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.enrollments, id)
	return nil
}

func (r *inMemoryEnrollmentRepo) StatusCounts(ctx context.Context, userID uuid.UUID) (*domain.EnrollmentStatusCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := &domain.EnrollmentStatusCounts{}
	for _, e := range r.enrollments {
		if e.UserID != userID {
			continue
		}
		counts.Total++
		switch e.Status {
		case domain.EnrollmentStatusPending:
			counts.Pending++
		case domain.EnrollmentStatusActive:
			counts.Active++
		case domain.EnrollmentStatusCompleted:
			counts.Completed++
		}
	}
	return counts, nil
}

func (r *inMemoryEnrollmentRepo) DistinctParticipantIDs(ctx context.Context, instructorID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, e := range r.enrollments {
		if e.InstructorID == instructorID && !seen[e.UserID] {
			seen[e.UserID] = true
			out = append(out, e.UserID)
		}
	}
	return out, nil
}

// --- In-Memory Audit Repo ---

// inMemoryAuditRepo reproduces the ledger's query semantics: newest first by
// timestamp, id as the tie-break, inclusive date bounds. failWrites simulates
// a storage outage on the write path only.
type inMemoryAuditRepo struct {
	mu         sync.RWMutex
	records    []domain.AuditRecord
	failWrites bool
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, rec *domain.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return fmt.Errorf("audit store unavailable")
	}
	r.records = append(r.records, *rec)
	return nil
}

func (r *inMemoryAuditRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *inMemoryAuditRepo) matching(params ports.AuditListParams) []domain.AuditRecord {
	var out []domain.AuditRecord
	for _, rec := range r.records {
		if params.EntityType != nil && rec.EntityType != *params.EntityType {
			continue
		}
		if params.DocumentID != nil && rec.DocumentID != *params.DocumentID {
			continue
		}
		if params.Action != nil && rec.Action != *params.Action {
			continue
		}
		if params.ActorID != nil && rec.ActorID != *params.ActorID {
			continue
		}
		if params.ActorRole != nil && rec.ActorRole != *params.ActorRole {
			continue
		}
		if params.From != nil && rec.Timestamp.Before(*params.From) {
			continue
		}
		if params.To != nil && rec.Timestamp.After(*params.To) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return strings.Compare(out[i].ID.String(), out[j].ID.String()) > 0
	})
	return out
}

func (r *inMemoryAuditRepo) List(ctx context.Context, params ports.AuditListParams) ([]domain.AuditRecord, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := r.matching(params)
	total := int64(len(matched))

	start := (params.Page - 1) * params.Limit
	if start >= len(matched) {
		return []domain.AuditRecord{}, total, nil
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *inMemoryAuditRepo) Recent(ctx context.Context, params ports.AuditFeedParams) ([]domain.AuditRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := r.matching(ports.AuditListParams{})

	filtered := matched[:0:0]
	for _, rec := range matched {
		if len(params.EntityTypes) > 0 && !containsEntity(params.EntityTypes, rec.EntityType) {
			continue
		}
		if len(params.Actions) > 0 && !containsAction(params.Actions, rec.Action) {
			continue
		}
		filtered = append(filtered, rec)
	}
	if params.Limit > 0 && len(filtered) > params.Limit {
		filtered = filtered[:params.Limit]
	}
	return filtered, nil
}

func (r *inMemoryAuditRepo) Summary(ctx context.Context, entityType domain.EntityType, documentID uuid.UUID) (*domain.AuditSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := r.matching(ports.AuditListParams{EntityType: &entityType, DocumentID: &documentID})

	summary := &domain.AuditSummary{TotalActions: int64(len(matched))}
	buckets := make(map[domain.AuditAction]*domain.ActionCount)
	actors := make(map[domain.AuditAction]map[uuid.UUID]bool)

	for _, rec := range matched {
		b, ok := buckets[rec.Action]
		if !ok {
			b = &domain.ActionCount{Action: rec.Action}
			buckets[rec.Action] = b
			actors[rec.Action] = make(map[uuid.UUID]bool)
		}
		b.Count++
		if rec.Timestamp.After(b.LastOccurred) {
			b.LastOccurred = rec.Timestamp
		}
		actors[rec.Action][rec.ActorID] = true
	}
	for action, b := range buckets {
		b.UniqueActors = int64(len(actors[action]))
		summary.Actions = append(summary.Actions, *b)
	}
	sort.Slice(summary.Actions, func(i, j int) bool {
		return summary.Actions[i].Action < summary.Actions[j].Action
	})

	if len(matched) > 0 {
		earliest := matched[len(matched)-1]
		summary.FirstAction = &domain.FirstAction{
			Timestamp: earliest.Timestamp,
			Action:    earliest.Action,
			ActorName: earliest.ActorName,
		}
	}
	return summary, nil
}

func containsEntity(set []domain.EntityType, t domain.EntityType) bool {
	for _, e := range set {
		if e == t {
			return true
		}
	}
	return false
}

func containsAction(set []domain.AuditAction, a domain.AuditAction) bool {
	for _, e := range set {
		if e == a {
			return true
		}
	}
	return false
}
