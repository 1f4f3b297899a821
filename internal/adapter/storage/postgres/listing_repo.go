package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const listingColumns = `id, instructor_id, title, type, description, participant_fee, seat_capacity,
	location_type, address, time_slots, images, faqs, participant_count, earning, average_rating,
	status, rejection_reason, is_deleted, created_at, updated_at`

// ListingRepo implements ports.ListingRepository.
type ListingRepo struct {
	pool Pool
}

// NewListingRepo creates a new ListingRepo.
func NewListingRepo(pool Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

// Create inserts a new listing.
func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	address, slots, faqs, err := marshalListingFields(l)
	if err != nil {
		return err
	}

	query := `INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err = r.pool.Exec(ctx, query,
		l.ID, l.InstructorID, l.Title, l.Type, l.Description, l.ParticipantFee,
		l.SeatCapacity, l.LocationType, address, slots, l.Images, faqs,
		l.ParticipantCount, l.Earning, l.AverageRating, l.Status,
		l.RejectionReason, l.IsDeleted, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// GetByID fetches a listing by UUID, including soft-deleted rows so callers
// can distinguish deleted from never-existed.
func (r *ListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	l, err := scanListingRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

// Update persists modified listing fields.
func (r *ListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	address, slots, faqs, err := marshalListingFields(l)
	if err != nil {
		return err
	}

	query := `UPDATE listings SET title = $1, type = $2, description = $3, participant_fee = $4,
		seat_capacity = $5, location_type = $6, address = $7, time_slots = $8, images = $9,
		faqs = $10, earning = $11, status = $12, rejection_reason = $13, is_deleted = $14,
		updated_at = $15 WHERE id = $16`

	tag, err := r.pool.Exec(ctx, query,
		l.Title, l.Type, l.Description, l.ParticipantFee, l.SeatCapacity,
		l.LocationType, address, slots, l.Images, faqs, l.Earning,
		l.Status, l.RejectionReason, l.IsDeleted, time.Now(), l.ID,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing not found: %s", l.ID)
	}
	return nil
}

// List fetches listings with filtering and pagination, newest first.
func (r *ListingRepo) List(ctx context.Context, params ports.ListingListParams) ([]domain.Listing, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.InstructorID != nil {
		conditions = append(conditions, fmt.Sprintf("instructor_id = $%d", argIdx))
		args = append(args, *params.InstructorID)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}
	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.IsDeleted != nil {
		conditions = append(conditions, fmt.Sprintf("is_deleted = $%d", argIdx))
		args = append(args, *params.IsDeleted)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM listings %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM listings %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, listingColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListingRow(rows)
		if err != nil {
			return nil, 0, err
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate listing rows: %w", err)
	}
	return listings, total, nil
}

// AdjustParticipantCount atomically moves the participant counter. The seat
// guard runs in SQL so concurrent enrollments cannot overshoot capacity.
func (r *ListingRepo) AdjustParticipantCount(ctx context.Context, id uuid.UUID, delta int) error {
	query := `UPDATE listings SET participant_count = participant_count + $1, updated_at = $2
		WHERE id = $3 AND participant_count + $1 >= 0
		AND (seat_capacity IS NULL OR location_type = 'online' OR participant_count + $1 <= seat_capacity)`

	tag, err := r.pool.Exec(ctx, query, delta, time.Now(), id)
	if err != nil {
		return fmt.Errorf("adjust participant count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("participant count unchanged for listing %s", id)
	}
	return nil
}

// UpdateAverageRating stores the recomputed review rollup.
func (r *ListingRepo) UpdateAverageRating(ctx context.Context, id uuid.UUID, avg float64) error {
	query := `UPDATE listings SET average_rating = $1, updated_at = $2 WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, avg, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update average rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing not found: %s", id)
	}
	return nil
}

func marshalListingFields(l *domain.Listing) ([]byte, []byte, []byte, error) {
	address, err := json.Marshal(l.Address)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal address: %w", err)
	}
	slots, err := json.Marshal(l.TimeSlots)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal time slots: %w", err)
	}
	faqs, err := json.Marshal(l.FAQs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal faqs: %w", err)
	}
	return address, slots, faqs, nil
}

func scanListingRow(row pgx.Row) (*domain.Listing, error) {
	l := &domain.Listing{}
	var address, slots, faqs []byte
	err := row.Scan(
		&l.ID, &l.InstructorID, &l.Title, &l.Type, &l.Description, &l.ParticipantFee,
		&l.SeatCapacity, &l.LocationType, &address, &slots, &l.Images, &faqs,
		&l.ParticipantCount, &l.Earning, &l.AverageRating, &l.Status,
		&l.RejectionReason, &l.IsDeleted, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan listing: %w", err)
	}
	if len(address) > 0 && string(address) != "null" {
		l.Address = &domain.Address{}
		if err := json.Unmarshal(address, l.Address); err != nil {
			return nil, fmt.Errorf("unmarshal address: %w", err)
		}
	}
	if len(slots) > 0 {
		if err := json.Unmarshal(slots, &l.TimeSlots); err != nil {
			return nil, fmt.Errorf("unmarshal time slots: %w", err)
		}
	}
	if len(faqs) > 0 {
		if err := json.Unmarshal(faqs, &l.FAQs); err != nil {
			return nil, fmt.Errorf("unmarshal faqs: %w", err)
		}
	}
	return l, nil
}
