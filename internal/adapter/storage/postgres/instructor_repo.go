package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skills-marketplace-api/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const instructorColumns = `id, name, title, mobile_no, email_id, category, bio, profile_image,
	experience_years, price_per_hour, specialties, social_links, kyc_completed, status,
	rejection_reason, created_at, updated_at`

// InstructorRepo implements ports.InstructorRepository.
type InstructorRepo struct {
	pool Pool
}

// NewInstructorRepo creates a new InstructorRepo.
func NewInstructorRepo(pool Pool) *InstructorRepo {
	return &InstructorRepo{pool: pool}
}

// Create inserts a new instructor profile.
func (r *InstructorRepo) Create(ctx context.Context, ins *domain.Instructor) error {
	specialties, links, err := marshalInstructorFields(ins)
	if err != nil {
		return err
	}

	query := `INSERT INTO instructors (` + instructorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = r.pool.Exec(ctx, query,
		ins.ID, ins.Name, ins.Title, ins.MobileNo, ins.EmailID, ins.Category,
		ins.Bio, ins.ProfileImage, ins.ExperienceYears, ins.PricePerHour,
		specialties, links, ins.KYCCompleted, ins.Status, ins.RejectionReason,
		ins.CreatedAt, ins.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert instructor: %w", err)
	}
	return nil
}

// GetByID fetches an instructor by UUID.
func (r *InstructorRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Instructor, error) {
	query := `SELECT ` + instructorColumns + ` FROM instructors WHERE id = $1`

	ins := &domain.Instructor{}
	var specialties, links []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ins.ID, &ins.Name, &ins.Title, &ins.MobileNo, &ins.EmailID, &ins.Category,
		&ins.Bio, &ins.ProfileImage, &ins.ExperienceYears, &ins.PricePerHour,
		&specialties, &links, &ins.KYCCompleted, &ins.Status, &ins.RejectionReason,
		&ins.CreatedAt, &ins.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan instructor: %w", err)
	}
	if len(specialties) > 0 {
		if err := json.Unmarshal(specialties, &ins.Specialties); err != nil {
			return nil, fmt.Errorf("unmarshal specialties: %w", err)
		}
	}
	if len(links) > 0 {
		if err := json.Unmarshal(links, &ins.SocialLinks); err != nil {
			return nil, fmt.Errorf("unmarshal social links: %w", err)
		}
	}
	return ins, nil
}

// Update persists profile changes.
func (r *InstructorRepo) Update(ctx context.Context, ins *domain.Instructor) error {
	specialties, links, err := marshalInstructorFields(ins)
	if err != nil {
		return err
	}

	query := `UPDATE instructors SET name = $1, title = $2, mobile_no = $3, email_id = $4,
		category = $5, bio = $6, profile_image = $7, experience_years = $8, price_per_hour = $9,
		specialties = $10, social_links = $11, kyc_completed = $12, updated_at = $13
		WHERE id = $14`

	tag, err := r.pool.Exec(ctx, query,
		ins.Name, ins.Title, ins.MobileNo, ins.EmailID, ins.Category,
		ins.Bio, ins.ProfileImage, ins.ExperienceYears, ins.PricePerHour,
		specialties, links, ins.KYCCompleted, time.Now(), ins.ID,
	)
	if err != nil {
		return fmt.Errorf("update instructor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("instructor not found: %s", ins.ID)
	}
	return nil
}

// UpdateStatus moves the instructor through the approval workflow.
func (r *InstructorRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InstructorStatus, reason string) error {
	query := `UPDATE instructors SET status = $1, rejection_reason = $2, updated_at = $3 WHERE id = $4`

	tag, err := r.pool.Exec(ctx, query, status, reason, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update instructor status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("instructor not found: %s", id)
	}
	return nil
}

func marshalInstructorFields(ins *domain.Instructor) ([]byte, []byte, error) {
	specialties, err := json.Marshal(ins.Specialties)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal specialties: %w", err)
	}
	links, err := json.Marshal(ins.SocialLinks)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal social links: %w", err)
	}
	return specialties, links, nil
}
