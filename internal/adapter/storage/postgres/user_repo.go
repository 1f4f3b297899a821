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

const userColumns = `id, role, name, mobile_no, email_id, password_hash, profile_image, bio,
	school_name, grade, skills, learning_goals, status, is_deleted, created_at, updated_at`

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a new user account.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	skills, goals, err := marshalSkillFields(u)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = r.pool.Exec(ctx, query,
		u.ID, u.Role, u.Name, u.MobileNo, u.EmailID, u.PasswordHash,
		u.ProfileImage, u.Bio, u.SchoolName, u.Grade, skills, goals,
		u.Status, u.IsDeleted, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by UUID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches a user by email address.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email_id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetByIDs batch-fetches users. IDs that match no row are simply absent
// from the result.
func (r *UserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("batch fetch users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

// Update persists profile changes.
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	skills, goals, err := marshalSkillFields(u)
	if err != nil {
		return err
	}

	query := `UPDATE users SET role = $1, name = $2, mobile_no = $3, email_id = $4,
		password_hash = $5, profile_image = $6, bio = $7, school_name = $8, grade = $9,
		skills = $10, learning_goals = $11, status = $12, is_deleted = $13, updated_at = $14
		WHERE id = $15`

	tag, err := r.pool.Exec(ctx, query,
		u.Role, u.Name, u.MobileNo, u.EmailID, u.PasswordHash,
		u.ProfileImage, u.Bio, u.SchoolName, u.Grade, skills, goals,
		u.Status, u.IsDeleted, time.Now(), u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", u.ID)
	}
	return nil
}

// SoftDelete marks the account deleted without removing the row. Audit
// records referencing the user keep resolving.
func (r *UserRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET is_deleted = TRUE, status = $1, updated_at = $2 WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, domain.UserStatusInactive, time.Now(), id)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

func marshalSkillFields(u *domain.User) ([]byte, []byte, error) {
	skills, err := json.Marshal(u.Skills)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal skills: %w", err)
	}
	goals, err := json.Marshal(u.LearningGoals)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal learning goals: %w", err)
	}
	return skills, goals, nil
}

func (r *UserRepo) scanUser(row pgx.Row) (*domain.User, error) {
	u, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func scanUserRow(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	var skills, goals []byte
	err := row.Scan(
		&u.ID, &u.Role, &u.Name, &u.MobileNo, &u.EmailID, &u.PasswordHash,
		&u.ProfileImage, &u.Bio, &u.SchoolName, &u.Grade, &skills, &goals,
		&u.Status, &u.IsDeleted, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &u.Skills); err != nil {
			return nil, fmt.Errorf("unmarshal skills: %w", err)
		}
	}
	if len(goals) > 0 {
		if err := json.Unmarshal(goals, &u.LearningGoals); err != nil {
			return nil, fmt.Errorf("unmarshal learning goals: %w", err)
		}
	}
	return u, nil
}
