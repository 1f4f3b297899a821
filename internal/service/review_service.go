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

// ReviewServiceImpl implements ports.ReviewService.
type ReviewServiceImpl struct {
	reviewRepo  ports.ReviewRepository
	listingRepo ports.ListingRepository
	enrollRepo  ports.EnrollmentRepository
	audit       ports.AuditRecorder
	log         zerolog.Logger
}

// NewReviewService creates a new ReviewServiceImpl.
func NewReviewService(
	reviewRepo ports.ReviewRepository,
	listingRepo ports.ListingRepository,
	enrollRepo ports.EnrollmentRepository,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *ReviewServiceImpl {
	return &ReviewServiceImpl{
		reviewRepo:  reviewRepo,
		listingRepo: listingRepo,
		enrollRepo:  enrollRepo,
		audit:       audit,
		log:         log,
	}
}

// Add records a review and rolls the new average rating up onto the listing.
// Only enrolled learners can review.
func (s *ReviewServiceImpl) Add(ctx context.Context, caller ports.Caller, listingID uuid.UUID, rating int, body string, meta *ports.RequestMeta) (*domain.Review, error) {
	if !domain.ValidRating(rating) {
		return nil, apperror.Validation("rating must be between 1 and 5")
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get listing: %w", err))
	}
	if listing == nil || listing.IsDeleted {
		return nil, apperror.ErrNotFound("listing")
	}

	enrollment, err := s.enrollRepo.GetByUserAndListing(ctx, caller.ID, listingID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check enrollment: %w", err))
	}
	if enrollment == nil {
		return nil, apperror.ErrForbidden("only enrolled learners can review a listing")
	}

	review := &domain.Review{
		ID:        uuid.New(),
		UserID:    caller.ID,
		ListingID: listingID,
		Rating:    rating,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create review: %w", err))
	}

	avg, count, err := s.reviewRepo.AverageForListing(ctx, listingID)
	if err != nil {
		s.log.Warn().Err(err).Str("listing_id", listingID.String()).Msg("failed to recompute average rating")
	} else if err := s.listingRepo.UpdateAverageRating(ctx, listingID, avg); err != nil {
		s.log.Warn().Err(err).Str("listing_id", listingID.String()).Int64("reviews", count).Msg("failed to roll up average rating")
	}

	snapshot, _ := json.Marshal(review)
	s.audit.Record(ctx, ports.AuditEntry{
		EntityType: domain.EntityReview,
		DocumentID: review.ID,
		Action:     domain.AuditActionCreate,
		Actor:      caller,
		NewData:    snapshot,
		Meta:       meta,
	})

	return review, nil
}

// ListByListing returns all reviews for a listing, newest first.
func (s *ReviewServiceImpl) ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.Review, error) {
	reviews, err := s.reviewRepo.ListByListing(ctx, listingID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list reviews: %w", err))
	}
	return reviews, nil
}
