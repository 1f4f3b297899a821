package postgres

import (
	"context"
	"fmt"

	"skills-marketplace-api/internal/core/domain"

	"github.com/google/uuid"
)

// DiscussionRepo implements ports.DiscussionRepository.
type DiscussionRepo struct {
	pool Pool
}

// NewDiscussionRepo creates a new DiscussionRepo.
func NewDiscussionRepo(pool Pool) *DiscussionRepo {
	return &DiscussionRepo{pool: pool}
}

// Create inserts a new discussion comment.
func (r *DiscussionRepo) Create(ctx context.Context, d *domain.Discussion) error {
	query := `INSERT INTO discussions (id, listing_id, user_id, body, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query, d.ID, d.ListingID, d.UserID, d.Body, d.ParentID, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert discussion: %w", err)
	}
	return nil
}

// ListByListing fetches a listing's discussion thread, oldest first so
// replies follow their parents.
func (r *DiscussionRepo) ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.Discussion, error) {
	query := `SELECT id, listing_id, user_id, body, parent_id, created_at FROM discussions
		WHERE listing_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	defer rows.Close()

	var discussions []domain.Discussion
	for rows.Next() {
		d := domain.Discussion{}
		err := rows.Scan(&d.ID, &d.ListingID, &d.UserID, &d.Body, &d.ParentID, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan discussion row: %w", err)
		}
		discussions = append(discussions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discussion rows: %w", err)
	}
	return discussions, nil
}
