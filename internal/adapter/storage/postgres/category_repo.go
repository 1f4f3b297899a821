package postgres

import (
	"context"
	"fmt"
	"time"

	"skills-marketplace-api/internal/core/domain"

	"github.com/google/uuid"
)

// CategoryRepo implements ports.CategoryRepository for the three-level
// taxonomy (categories, sub_categories, topics).
type CategoryRepo struct {
	pool Pool
}

// NewCategoryRepo creates a new CategoryRepo.
func NewCategoryRepo(pool Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

// CreateCategory inserts a top-level category.
func (r *CategoryRepo) CreateCategory(ctx context.Context, c *domain.Category) error {
	query := `INSERT INTO categories (id, name, slug, image, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Slug, c.Image, c.IsDeleted, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// UpdateCategory persists name/slug/image changes.
func (r *CategoryRepo) UpdateCategory(ctx context.Context, c *domain.Category) error {
	query := `UPDATE categories SET name = $1, slug = $2, image = $3, updated_at = $4 WHERE id = $5`

	tag, err := r.pool.Exec(ctx, query, c.Name, c.Slug, c.Image, time.Now(), c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category not found: %s", c.ID)
	}
	return nil
}

// SoftDeleteCategory hides a category without removing its rows.
func (r *CategoryRepo) SoftDeleteCategory(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE categories SET is_deleted = TRUE, updated_at = $1 WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("soft delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category not found: %s", id)
	}
	return nil
}

// ListCategories fetches categories in name order.
func (r *CategoryRepo) ListCategories(ctx context.Context, includeDeleted bool) ([]domain.Category, error) {
	query := `SELECT id, name, slug, image, is_deleted, created_at, updated_at FROM categories`
	if !includeDeleted {
		query += ` WHERE is_deleted = FALSE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		c := domain.Category{}
		err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Image, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return cats, nil
}

// SlugExists checks slug uniqueness within one taxonomy level. level is the
// table name: categories, sub_categories or topics.
func (r *CategoryRepo) SlugExists(ctx context.Context, level string, slug string) (bool, error) {
	var table string
	switch level {
	case "categories", "sub_categories", "topics":
		table = level
	default:
		return false, fmt.Errorf("unknown taxonomy level: %s", level)
	}

	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE slug = $1 AND is_deleted = FALSE)`, table)

	var exists bool
	if err := r.pool.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slug exists: %w", err)
	}
	return exists, nil
}

// CreateSubCategory inserts a second-level category.
func (r *CategoryRepo) CreateSubCategory(ctx context.Context, s *domain.SubCategory) error {
	query := `INSERT INTO sub_categories (id, category_id, name, slug, image, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query, s.ID, s.CategoryID, s.Name, s.Slug, s.Image, s.IsDeleted, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert sub category: %w", err)
	}
	return nil
}

// ListSubCategories fetches subcategories joined with their parent name,
// optionally filtered by category.
func (r *CategoryRepo) ListSubCategories(ctx context.Context, categoryID *uuid.UUID) ([]domain.SubCategory, error) {
	query := `SELECT s.id, s.category_id, c.name, s.name, s.slug, s.image, s.is_deleted, s.created_at, s.updated_at
		FROM sub_categories s JOIN categories c ON c.id = s.category_id
		WHERE s.is_deleted = FALSE`
	var args []any
	if categoryID != nil {
		query += ` AND s.category_id = $1`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY s.name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sub categories: %w", err)
	}
	defer rows.Close()

	var subs []domain.SubCategory
	for rows.Next() {
		s := domain.SubCategory{}
		err := rows.Scan(&s.ID, &s.CategoryID, &s.CategoryName, &s.Name, &s.Slug, &s.Image,
			&s.IsDeleted, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan sub category row: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sub category rows: %w", err)
	}
	return subs, nil
}

// CreateTopic inserts a leaf-level topic.
func (r *CategoryRepo) CreateTopic(ctx context.Context, t *domain.Topic) error {
	query := `INSERT INTO topics (id, sub_category_id, name, slug, image, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query, t.ID, t.SubCategoryID, t.Name, t.Slug, t.Image, t.IsDeleted, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert topic: %w", err)
	}
	return nil
}

// ListTopics fetches topics joined with their parent name, optionally
// filtered by subcategory.
func (r *CategoryRepo) ListTopics(ctx context.Context, subCategoryID *uuid.UUID) ([]domain.Topic, error) {
	query := `SELECT t.id, t.sub_category_id, s.name, t.name, t.slug, t.image, t.is_deleted, t.created_at, t.updated_at
		FROM topics t JOIN sub_categories s ON s.id = t.sub_category_id
		WHERE t.is_deleted = FALSE`
	var args []any
	if subCategoryID != nil {
		query += ` AND t.sub_category_id = $1`
		args = append(args, *subCategoryID)
	}
	query += ` ORDER BY t.name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []domain.Topic
	for rows.Next() {
		t := domain.Topic{}
		err := rows.Scan(&t.ID, &t.SubCategoryID, &t.SubCategoryName, &t.Name, &t.Slug, &t.Image,
			&t.IsDeleted, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan topic row: %w", err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic rows: %w", err)
	}
	return topics, nil
}
