package service

import (
	"context"
	"encoding/json"
	"testing"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Arts & Crafts", "arts-crafts"},
		{"  Music  ", "music"},
		{"C++ Programming", "c-programming"},
		{"already-slugged", "already-slugged"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), "slugify(%q)", tt.in)
	}
}

func TestCategoryService_CreateCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockCategoryRepository(ctrl)
	mockCache := mocks.NewMockViewCache(ctrl)
	svc := NewCategoryService(mockRepo, mockCache, newTestLogger())

	mockRepo.EXPECT().SlugExists(gomock.Any(), "categories", "arts-crafts").Return(false, nil)
	mockRepo.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).Return(nil)
	mockCache.EXPECT().Delete(gomock.Any(), "category:tree").Return(nil)

	c, err := svc.CreateCategory(context.Background(), "Arts & Crafts", "img.png")
	require.NoError(t, err)
	assert.Equal(t, "arts-crafts", c.Slug)
	assert.Equal(t, "Arts & Crafts", c.Name)
}

func TestCategoryService_CreateCategory_SlugTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockCategoryRepository(ctrl)
	svc := NewCategoryService(mockRepo, mocks.NewMockViewCache(ctrl), newTestLogger())

	mockRepo.EXPECT().SlugExists(gomock.Any(), "categories", "music").Return(true, nil)

	_, err := svc.CreateCategory(context.Background(), "Music", "")
	assertAppErrorCode(t, err, "CAT_005")
}

func TestCategoryService_Tree_ServedFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockCategoryRepository(ctrl)
	mockCache := mocks.NewMockViewCache(ctrl)
	svc := NewCategoryService(mockRepo, mockCache, newTestLogger())

	cached := []domain.CategoryTree{{Category: domain.Category{ID: uuid.New(), Name: "Music"}}}
	encoded, err := json.Marshal(cached)
	require.NoError(t, err)

	// No repository expectations: a cache hit must not touch the DB.
	mockCache.EXPECT().Get(gomock.Any(), "category:tree").Return(encoded, nil)

	tree, err := svc.Tree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "Music", tree[0].Name)
}

func TestCategoryService_Tree_BuildsAndCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockCategoryRepository(ctrl)
	mockCache := mocks.NewMockViewCache(ctrl)
	svc := NewCategoryService(mockRepo, mockCache, newTestLogger())

	catID := uuid.New()
	subID := uuid.New()

	mockCache.EXPECT().Get(gomock.Any(), "category:tree").Return(nil, nil)
	mockRepo.EXPECT().ListCategories(gomock.Any(), false).Return(
		[]domain.Category{{ID: catID, Name: "Music"}}, nil)
	mockRepo.EXPECT().ListSubCategories(gomock.Any(), nil).Return(
		[]domain.SubCategory{{ID: subID, CategoryID: catID, Name: "Guitar"}}, nil)
	mockRepo.EXPECT().ListTopics(gomock.Any(), nil).Return(
		[]domain.Topic{{ID: uuid.New(), SubCategoryID: subID, Name: "Fingerstyle"}}, nil)
	mockCache.EXPECT().Set(gomock.Any(), "category:tree", gomock.Any(), gomock.Any()).Return(nil)

	tree, err := svc.Tree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].SubCategories, 1)
	require.Len(t, tree[0].SubCategories[0].Topics, 1)
	assert.Equal(t, "Fingerstyle", tree[0].SubCategories[0].Topics[0].Name)
}

func TestCategoryService_DeleteCategory_InvalidatesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockCategoryRepository(ctrl)
	mockCache := mocks.NewMockViewCache(ctrl)
	svc := NewCategoryService(mockRepo, mockCache, newTestLogger())

	id := uuid.New()
	mockRepo.EXPECT().SoftDeleteCategory(gomock.Any(), id).Return(nil)
	mockCache.EXPECT().Delete(gomock.Any(), "category:tree").Return(nil)

	require.NoError(t, svc.DeleteCategory(context.Background(), id))
}
