package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EnrollmentServiceImpl implements ports.EnrollmentService.
type EnrollmentServiceImpl struct {
	enrollRepo  ports.EnrollmentRepository
	listingRepo ports.ListingRepository
	userRepo    ports.UserRepository
	audit       ports.AuditRecorder
	log         zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentServiceImpl.
func NewEnrollmentService(
	enrollRepo ports.EnrollmentRepository,
	listingRepo ports.ListingRepository,
	userRepo ports.UserRepository,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *EnrollmentServiceImpl {
	return &EnrollmentServiceImpl{
		enrollRepo:  enrollRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		audit:       audit,
		log:         log,
	}
}

// Enroll books a slot on a listing. The seat counter is adjusted atomically
// in storage so concurrent bookings cannot oversell a capacity-bound
// listing.
func (s *EnrollmentServiceImpl) Enroll(ctx context.Context, caller ports.Caller, req ports.EnrollRequest, meta *ports.RequestMeta) (*domain.Enrollment, error) {
	listing, err := s.listingRepo.GetByID(ctx, req.ListingID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get listing: %w", err))
	}
	if listing == nil {
		return nil, apperror.ErrNotFound("listing")
	}
	if listing.IsDeleted {
		return nil, apperror.ErrListingDeleted()
	}
	if listing.Status != domain.ListingStatusApproved {
		return nil, apperror.Validation("listing is not open for enrollment")
	}
	if req.SelectedDate == "" || req.SelectedSlot.StartTime == "" {
		return nil, apperror.Validation("selected date and slot are required")
	}

	existing, err := s.enrollRepo.GetBySlot(ctx, caller.ID, listing.ID, req.SelectedDate, req.SelectedSlot)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check duplicate booking: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrAlreadyBooked()
	}

	// The capacity guard lives in the UPDATE statement; a zero-row result
	// means the listing is full.
	if err := s.listingRepo.AdjustParticipantCount(ctx, listing.ID, 1); err != nil {
		return nil, apperror.ErrNoSeatsAvailable()
	}

	now := time.Now().UTC()
	enrollment := &domain.Enrollment{
		ID:           uuid.New(),
		UserID:       caller.ID,
		ListingID:    listing.ID,
		InstructorID: listing.InstructorID,
		SelectedDate: req.SelectedDate,
		SelectedSlot: req.SelectedSlot,
		Status:       domain.EnrollmentStatusPending,
		EnrolledAt:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if listing.LocationType == domain.LocationSpecific && listing.SeatCapacity != nil {
		seat := listing.ParticipantCount + 1
		enrollment.SeatNumber = &seat
	}

	if err := s.enrollRepo.Create(ctx, enrollment); err != nil {
		// Release the seat taken above.
		if adjErr := s.listingRepo.AdjustParticipantCount(ctx, listing.ID, -1); adjErr != nil {
			s.log.Error().Err(adjErr).Str("listing_id", listing.ID.String()).Msg("failed to release seat after enrollment insert failure")
		}
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create enrollment: %w", err))
	}

	snapshot, _ := json.Marshal(enrollment)
	s.audit.Record(ctx, ports.AuditEntry{
		EntityType: domain.EntityEnrollment,
		DocumentID: enrollment.ID,
		Action:     domain.AuditActionCreate,
		Actor:      caller,
		NewData:    snapshot,
		Meta:       meta,
	})

	return enrollment, nil
}

// List returns a filtered page of enrollments enriched with the related
// user and listing.
func (s *EnrollmentServiceImpl) List(ctx context.Context, params ports.EnrollmentListParams) ([]ports.EnrichedEnrollment, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 20
	}

	enrollments, total, err := s.enrollRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("list enrollments: %w", err))
	}

	enriched, err := s.enrich(ctx, enrollments, true)
	if err != nil {
		return nil, 0, err
	}
	return enriched, total, nil
}

// ListForUser returns one user's enrollments with their status counts.
func (s *EnrollmentServiceImpl) ListForUser(ctx context.Context, userID uuid.UUID, params ports.EnrollmentListParams) ([]ports.EnrichedEnrollment, *domain.EnrollmentStatusCounts, error) {
	params.UserID = &userID
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 20
	}

	enrollments, _, err := s.enrollRepo.List(ctx, params)
	if err != nil {
		return nil, nil, apperror.ErrDatabaseError(fmt.Errorf("list enrollments: %w", err))
	}

	counts, err := s.enrollRepo.StatusCounts(ctx, userID)
	if err != nil {
		return nil, nil, apperror.ErrDatabaseError(fmt.Errorf("count enrollments: %w", err))
	}

	enriched, err := s.enrich(ctx, enrollments, false)
	if err != nil {
		return nil, nil, err
	}
	return enriched, counts, nil
}

// Participants returns the distinct learners enrolled with an instructor.
func (s *EnrollmentServiceImpl) Participants(ctx context.Context, instructorID uuid.UUID, page, pageSize int) ([]domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	ids, err := s.enrollRepo.DistinctParticipantIDs(ctx, instructorID)
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("list participant ids: %w", err))
	}

	total := int64(len(ids))
	start := (page - 1) * pageSize
	if start >= len(ids) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(ids) {
		end = len(ids)
	}

	users, err := s.userRepo.GetByIDs(ctx, ids[start:end])
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("fetch participants: %w", err))
	}
	return users, total, nil
}

// UpdateProgress advances a learner's position in a listing. Progress is
// monotonic; status follows it.
func (s *EnrollmentServiceImpl) UpdateProgress(ctx context.Context, caller ports.Caller, id uuid.UUID, progress *int, completedModules []string) (*domain.Enrollment, error) {
	enrollment, err := s.enrollRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get enrollment: %w", err))
	}
	if enrollment == nil {
		return nil, apperror.ErrNotFound("enrollment")
	}
	if caller.Role != domain.RoleAdmin && enrollment.UserID != caller.ID && enrollment.InstructorID != caller.ID {
		return nil, apperror.ErrForbidden("enrollment belongs to another user")
	}

	if progress != nil {
		if *progress < 0 || *progress > 100 {
			return nil, apperror.Validation("progress must be between 0 and 100")
		}
		if *progress < enrollment.Progress {
			return nil, apperror.Validation("progress cannot decrease")
		}
		enrollment.Progress = *progress
	}
	if completedModules != nil {
		enrollment.CompletedModules = completedModules
	}

	switch {
	case enrollment.Progress >= 100:
		enrollment.Status = domain.EnrollmentStatusCompleted
	case enrollment.Progress > 0:
		enrollment.Status = domain.EnrollmentStatusActive
	}

	now := time.Now().UTC()
	enrollment.LastAccessedAt = &now
	enrollment.UpdatedAt = now

	if err := s.enrollRepo.Update(ctx, enrollment); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("update enrollment: %w", err))
	}
	return enrollment, nil
}

// Cancel removes a booking and releases its seat.
func (s *EnrollmentServiceImpl) Cancel(ctx context.Context, caller ports.Caller, id uuid.UUID, meta *ports.RequestMeta) error {
	enrollment, err := s.enrollRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("get enrollment: %w", err))
	}
	if enrollment == nil {
		return apperror.ErrNotFound("enrollment")
	}
	if caller.Role != domain.RoleAdmin && enrollment.UserID != caller.ID {
		return apperror.ErrForbidden("enrollment belongs to another user")
	}

	previous, _ := json.Marshal(enrollment)

	if err := s.enrollRepo.Delete(ctx, id); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("delete enrollment: %w", err))
	}

	if err := s.listingRepo.AdjustParticipantCount(ctx, enrollment.ListingID, -1); err != nil {
		s.log.Warn().Err(err).Str("listing_id", enrollment.ListingID.String()).Msg("failed to release seat on cancellation")
	}

	s.audit.Record(ctx, ports.AuditEntry{
		EntityType:   domain.EntityEnrollment,
		DocumentID:   enrollment.ID,
		Action:       domain.AuditActionDelete,
		Actor:        caller,
		PreviousData: previous,
		Meta:         meta,
	})

	return nil
}

// enrich attaches the listing (and optionally the user) to each enrollment.
func (s *EnrollmentServiceImpl) enrich(ctx context.Context, enrollments []domain.Enrollment, withUsers bool) ([]ports.EnrichedEnrollment, error) {
	if len(enrollments) == 0 {
		return nil, nil
	}

	listings := make(map[uuid.UUID]*domain.Listing)
	for _, e := range enrollments {
		if _, ok := listings[e.ListingID]; ok {
			continue
		}
		l, err := s.listingRepo.GetByID(ctx, e.ListingID)
		if err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("get listing: %w", err))
		}
		listings[e.ListingID] = l
	}

	users := make(map[uuid.UUID]*domain.User)
	if withUsers {
		seen := make(map[uuid.UUID]struct{})
		var ids []uuid.UUID
		for _, e := range enrollments {
			if _, ok := seen[e.UserID]; ok {
				continue
			}
			seen[e.UserID] = struct{}{}
			ids = append(ids, e.UserID)
		}
		fetched, err := s.userRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("fetch users: %w", err))
		}
		for i := range fetched {
			users[fetched[i].ID] = &fetched[i]
		}
	}

	enriched := make([]ports.EnrichedEnrollment, len(enrollments))
	for i, e := range enrollments {
		enriched[i] = ports.EnrichedEnrollment{
			Enrollment: e,
			Listing:    listings[e.ListingID],
		}
		if withUsers {
			enriched[i].User = users[e.UserID]
		}
	}
	return enriched, nil
}
