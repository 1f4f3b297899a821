package postgres

import (
	"context"
	"errors"
	"fmt"

	"skills-marketplace-api/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const reviewColumns = `id, user_id, listing_id, rating, body, created_at`

// ReviewRepo implements ports.ReviewRepository.
type ReviewRepo struct {
	pool Pool
}

// NewReviewRepo creates a new ReviewRepo.
func NewReviewRepo(pool Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

// Create inserts a new review.
func (r *ReviewRepo) Create(ctx context.Context, rev *domain.Review) error {
	query := `INSERT INTO reviews (` + reviewColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		rev.ID, rev.UserID, rev.ListingID, rev.Rating, rev.Body, rev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// GetByID fetches a review by UUID.
func (r *ReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	rev := &domain.Review{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rev.ID, &rev.UserID, &rev.ListingID, &rev.Rating, &rev.Body, &rev.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	return rev, nil
}

// ListByListing fetches all reviews of a listing, newest first.
func (r *ReviewRepo) ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE listing_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		rev := domain.Review{}
		err := rows.Scan(&rev.ID, &rev.UserID, &rev.ListingID, &rev.Rating, &rev.Body, &rev.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, nil
}

// AverageForListing returns the mean rating and review count in one query.
func (r *ReviewRepo) AverageForListing(ctx context.Context, listingID uuid.UUID) (float64, int64, error) {
	query := `SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE listing_id = $1`

	var avg float64
	var count int64
	err := r.pool.QueryRow(ctx, query, listingID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("average rating: %w", err)
	}
	return avg, count, nil
}
