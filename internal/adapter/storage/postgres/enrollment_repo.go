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

const enrollmentColumns = `id, user_id, listing_id, instructor_id, seat_number, selected_date,
	selected_slot, status, progress, completed_modules, certificate_issued, is_archived,
	enrolled_at, last_accessed_at, created_at, updated_at`

// EnrollmentRepo implements ports.EnrollmentRepository.
type EnrollmentRepo struct {
	pool Pool
}

// NewEnrollmentRepo creates a new EnrollmentRepo.
func NewEnrollmentRepo(pool Pool) *EnrollmentRepo {
	return &EnrollmentRepo{pool: pool}
}

// Create inserts a new enrollment.
func (r *EnrollmentRepo) Create(ctx context.Context, e *domain.Enrollment) error {
	slot, err := json.Marshal(e.SelectedSlot)
	if err != nil {
		return fmt.Errorf("marshal selected slot: %w", err)
	}

	query := `INSERT INTO enrollments (` + enrollmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = r.pool.Exec(ctx, query,
		e.ID, e.UserID, e.ListingID, e.InstructorID, e.SeatNumber, e.SelectedDate,
		slot, e.Status, e.Progress, e.CompletedModules, e.CertificateIssued,
		e.IsArchived, e.EnrolledAt, e.LastAccessedAt, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// GetByID fetches an enrollment by UUID.
func (r *EnrollmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetBySlot finds an existing booking of the same listing slot on the same
// day, for duplicate detection.
func (r *EnrollmentRepo) GetBySlot(ctx context.Context, userID, listingID uuid.UUID, date string, slot domain.TimeSlot) (*domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments
		WHERE user_id = $1 AND listing_id = $2 AND selected_date = $3
		AND selected_slot->>'start_time' = $4 AND is_archived = FALSE`

	return r.scanOne(r.pool.QueryRow(ctx, query, userID, listingID, date, slot.StartTime))
}

// GetByUserAndListing fetches the learner's enrollment in a listing.
func (r *EnrollmentRepo) GetByUserAndListing(ctx context.Context, userID, listingID uuid.UUID) (*domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments
		WHERE user_id = $1 AND listing_id = $2 AND is_archived = FALSE
		ORDER BY enrolled_at DESC LIMIT 1`

	return r.scanOne(r.pool.QueryRow(ctx, query, userID, listingID))
}

// List fetches enrollments with filtering and pagination, newest first.
func (r *EnrollmentRepo) List(ctx context.Context, params ports.EnrollmentListParams) ([]domain.Enrollment, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, *params.UserID)
		argIdx++
	}
	if params.InstructorID != nil {
		conditions = append(conditions, fmt.Sprintf("instructor_id = $%d", argIdx))
		args = append(args, *params.InstructorID)
		argIdx++
	}
	if params.ListingID != nil {
		conditions = append(conditions, fmt.Sprintf("listing_id = $%d", argIdx))
		args = append(args, *params.ListingID)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	conditions = append(conditions, "is_archived = FALSE")

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM enrollments %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM enrollments %s
		ORDER BY enrolled_at DESC LIMIT $%d OFFSET $%d`, enrollmentColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []domain.Enrollment
	for rows.Next() {
		e, err := scanEnrollmentRow(rows)
		if err != nil {
			return nil, 0, err
		}
		enrollments = append(enrollments, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate enrollment rows: %w", err)
	}
	return enrollments, total, nil
}

// Update persists progress and status changes.
func (r *EnrollmentRepo) Update(ctx context.Context, e *domain.Enrollment) error {
	slot, err := json.Marshal(e.SelectedSlot)
	if err != nil {
		return fmt.Errorf("marshal selected slot: %w", err)
	}

	query := `UPDATE enrollments SET seat_number = $1, selected_date = $2, selected_slot = $3,
		status = $4, progress = $5, completed_modules = $6, certificate_issued = $7,
		is_archived = $8, last_accessed_at = $9, updated_at = $10 WHERE id = $11`

	tag, err := r.pool.Exec(ctx, query,
		e.SeatNumber, e.SelectedDate, slot, e.Status, e.Progress,
		e.CompletedModules, e.CertificateIssued, e.IsArchived,
		e.LastAccessedAt, time.Now(), e.ID,
	)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("enrollment not found: %s", e.ID)
	}
	return nil
}

// Delete removes an enrollment row. The booking's audit history survives in
// the ledger.
func (r *EnrollmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("enrollment not found: %s", id)
	}
	return nil
}

// StatusCounts aggregates a user's enrollments per status in one query.
func (r *EnrollmentRepo) StatusCounts(ctx context.Context, userID uuid.UUID) (*domain.EnrollmentStatusCounts, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'active') AS active,
		COUNT(*) FILTER (WHERE status = 'completed') AS completed
		FROM enrollments WHERE user_id = $1 AND is_archived = FALSE`

	counts := &domain.EnrollmentStatusCounts{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&counts.Total, &counts.Pending, &counts.Active, &counts.Completed,
	)
	if err != nil {
		return nil, fmt.Errorf("enrollment status counts: %w", err)
	}
	return counts, nil
}

// DistinctParticipantIDs lists unique learners enrolled with an instructor.
func (r *EnrollmentRepo) DistinctParticipantIDs(ctx context.Context, instructorID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT user_id FROM enrollments WHERE instructor_id = $1 AND is_archived = FALSE`

	rows, err := r.pool.Query(ctx, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("distinct participants: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participant rows: %w", err)
	}
	return ids, nil
}

func (r *EnrollmentRepo) scanOne(row pgx.Row) (*domain.Enrollment, error) {
	e, err := scanEnrollmentRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func scanEnrollmentRow(row pgx.Row) (*domain.Enrollment, error) {
	e := &domain.Enrollment{}
	var slot []byte
	err := row.Scan(
		&e.ID, &e.UserID, &e.ListingID, &e.InstructorID, &e.SeatNumber, &e.SelectedDate,
		&slot, &e.Status, &e.Progress, &e.CompletedModules, &e.CertificateIssued,
		&e.IsArchived, &e.EnrolledAt, &e.LastAccessedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan enrollment: %w", err)
	}
	if len(slot) > 0 {
		if err := json.Unmarshal(slot, &e.SelectedSlot); err != nil {
			return nil, fmt.Errorf("unmarshal selected slot: %w", err)
		}
	}
	return e, nil
}
