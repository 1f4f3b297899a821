package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	categoryTreeCacheKey = "category:tree"
	categoryTreeCacheTTL = 10 * time.Minute
)

// CategoryServiceImpl implements ports.CategoryService. The rendered tree
// is cached; any taxonomy write invalidates it.
type CategoryServiceImpl struct {
	categoryRepo ports.CategoryRepository
	cache        ports.ViewCache
	log          zerolog.Logger
}

// NewCategoryService creates a new CategoryServiceImpl.
func NewCategoryService(categoryRepo ports.CategoryRepository, cache ports.ViewCache, log zerolog.Logger) *CategoryServiceImpl {
	return &CategoryServiceImpl{
		categoryRepo: categoryRepo,
		cache:        cache,
		log:          log,
	}
}

// CreateCategory adds a top-level category with a unique slug.
func (s *CategoryServiceImpl) CreateCategory(ctx context.Context, name, image string) (*domain.Category, error) {
	slug, err := s.uniqueSlug(ctx, "categories", name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		Image:     image,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.categoryRepo.CreateCategory(ctx, c); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create category: %w", err))
	}

	s.invalidateTree(ctx)
	return c, nil
}

// CreateSubCategory adds a second-level entry under a category.
func (s *CategoryServiceImpl) CreateSubCategory(ctx context.Context, categoryID uuid.UUID, name, image string) (*domain.SubCategory, error) {
	slug, err := s.uniqueSlug(ctx, "sub_categories", name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sc := &domain.SubCategory{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Name:       name,
		Slug:       slug,
		Image:      image,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.categoryRepo.CreateSubCategory(ctx, sc); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create sub category: %w", err))
	}

	s.invalidateTree(ctx)
	return sc, nil
}

// CreateTopic adds a leaf entry under a subcategory.
func (s *CategoryServiceImpl) CreateTopic(ctx context.Context, subCategoryID uuid.UUID, name, image string) (*domain.Topic, error) {
	slug, err := s.uniqueSlug(ctx, "topics", name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &domain.Topic{
		ID:            uuid.New(),
		SubCategoryID: subCategoryID,
		Name:          name,
		Slug:          slug,
		Image:         image,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.categoryRepo.CreateTopic(ctx, t); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create topic: %w", err))
	}

	s.invalidateTree(ctx)
	return t, nil
}

// Tree returns the full three-level taxonomy, served from cache when fresh.
func (s *CategoryServiceImpl) Tree(ctx context.Context) ([]domain.CategoryTree, error) {
	if cached, err := s.cache.Get(ctx, categoryTreeCacheKey); err != nil {
		s.log.Warn().Err(err).Msg("category tree cache read failed, falling through to DB")
	} else if cached != nil {
		var tree []domain.CategoryTree
		if err := json.Unmarshal(cached, &tree); err == nil {
			return tree, nil
		}
	}

	categories, err := s.categoryRepo.ListCategories(ctx, false)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list categories: %w", err))
	}
	subCategories, err := s.categoryRepo.ListSubCategories(ctx, nil)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list sub categories: %w", err))
	}
	topics, err := s.categoryRepo.ListTopics(ctx, nil)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list topics: %w", err))
	}

	topicsBySub := make(map[uuid.UUID][]domain.Topic)
	for _, t := range topics {
		topicsBySub[t.SubCategoryID] = append(topicsBySub[t.SubCategoryID], t)
	}
	subsByCat := make(map[uuid.UUID][]domain.SubCategoryTree)
	for _, sc := range subCategories {
		subsByCat[sc.CategoryID] = append(subsByCat[sc.CategoryID], domain.SubCategoryTree{
			SubCategory: sc,
			Topics:      topicsBySub[sc.ID],
		})
	}

	tree := make([]domain.CategoryTree, len(categories))
	for i, c := range categories {
		tree[i] = domain.CategoryTree{
			Category:      c,
			SubCategories: subsByCat[c.ID],
		}
	}

	if encoded, err := json.Marshal(tree); err == nil {
		if err := s.cache.Set(ctx, categoryTreeCacheKey, encoded, categoryTreeCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("category tree cache write failed")
		}
	}

	return tree, nil
}

// DeleteCategory soft-deletes a category. Children remain but disappear
// from the tree with their parent.
func (s *CategoryServiceImpl) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.SoftDeleteCategory(ctx, id); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("delete category: %w", err))
	}
	s.invalidateTree(ctx)
	return nil
}

func (s *CategoryServiceImpl) invalidateTree(ctx context.Context) {
	if err := s.cache.Delete(ctx, categoryTreeCacheKey); err != nil {
		s.log.Warn().Err(err).Msg("category tree cache invalidation failed")
	}
}

// uniqueSlug derives a URL slug from name and rejects duplicates within the
// taxonomy level.
func (s *CategoryServiceImpl) uniqueSlug(ctx context.Context, level, name string) (string, error) {
	if name == "" {
		return "", apperror.Validation("name is required")
	}
	slug := slugify(name)
	if slug == "" {
		return "", apperror.Validation("name yields an empty slug")
	}

	exists, err := s.categoryRepo.SlugExists(ctx, level, slug)
	if err != nil {
		return "", apperror.ErrDatabaseError(fmt.Errorf("check slug: %w", err))
	}
	if exists {
		return "", apperror.ErrSlugTaken(slug)
	}
	return slug, nil
}

// slugify lowercases name and collapses runs of non-alphanumerics into
// single hyphens.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
