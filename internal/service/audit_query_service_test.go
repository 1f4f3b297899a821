package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"skills-marketplace-api/config"
	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testAuditConfig() config.AuditConfig {
	return config.AuditConfig{
		DefaultPageSize:   50,
		MaxPageSize:       100,
		FeedSize:          20,
		EndOfDayInclusive: true,
	}
}

type auditQueryFixture struct {
	repo     *mocks.MockAuditRepository
	users    *mocks.MockUserRepository
	accessor *mocks.MockEntityAccessor
	svc      ports.AuditQueryService
}

func newAuditQueryFixture(t *testing.T, cfg config.AuditConfig) *auditQueryFixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &auditQueryFixture{
		repo:     mocks.NewMockAuditRepository(ctrl),
		users:    mocks.NewMockUserRepository(ctrl),
		accessor: mocks.NewMockEntityAccessor(ctrl),
	}
	reg := NewEntityRegistry()
	reg.Register(domain.EntityListing, f.accessor)
	f.svc = NewAuditQueryService(f.repo, f.users, reg, cfg, newTestLogger())
	return f
}

func TestAuditQueryService_ByDocument(t *testing.T) {
	f := newAuditQueryFixture(t, testAuditConfig())

	docID := uuid.New()
	knownActor := uuid.New()
	goneActor := uuid.New()
	email := "priya@example.com"

	f.accessor.EXPECT().Exists(gomock.Any(), docID).Return(true, nil)

	var gotParams ports.AuditListParams
	f.repo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, params ports.AuditListParams) ([]domain.AuditRecord, int64, error) {
			gotParams = params
			return []domain.AuditRecord{
				{ID: uuid.New(), EntityType: domain.EntityListing, DocumentID: docID, Action: domain.AuditActionUpdate, ActorID: knownActor},
				{ID: uuid.New(), EntityType: domain.EntityListing, DocumentID: docID, Action: domain.AuditActionCreate, ActorID: goneActor},
			}, 101, nil
		},
	)
	f.users.EXPECT().GetByIDs(gomock.Any(), gomock.InAnyOrder([]uuid.UUID{knownActor, goneActor})).Return(
		[]domain.User{{ID: knownActor, Name: "Priya", EmailID: &email, Role: domain.RoleInstructor}}, nil,
	)
	f.accessor.EXPECT().Describe(gomock.Any(), docID).Return(
		map[string]any{"title": "Pottery Basics", "status": domain.ListingStatusApproved}, nil,
	)

	res, err := f.svc.ByDocument(context.Background(), domain.EntityListing, docID, ports.AuditQueryOptions{})
	require.NoError(t, err)

	require.NotNil(t, gotParams.EntityType)
	assert.Equal(t, domain.EntityListing, *gotParams.EntityType)
	require.NotNil(t, gotParams.DocumentID)
	assert.Equal(t, docID, *gotParams.DocumentID)

	assert.Equal(t, 1, res.Pagination.Page)
	assert.Equal(t, 50, res.Pagination.Limit)
	assert.Equal(t, int64(101), res.Pagination.Total)
	assert.Equal(t, 3, res.Pagination.Pages)

	require.Len(t, res.Records, 2)
	require.NotNil(t, res.Records[0].Actor)
	assert.Equal(t, "Priya", res.Records[0].Actor.Name)
	assert.Equal(t, "priya@example.com", res.Records[0].Actor.EmailID)
	// The second actor no longer resolves; the record survives without one.
	assert.Nil(t, res.Records[1].Actor)

	require.NotNil(t, res.DocumentInfo)
	assert.Equal(t, "Pottery Basics", res.DocumentInfo["title"])
}

func TestAuditQueryService_ByDocument_DescribeFailureKeepsHistory(t *testing.T) {
	f := newAuditQueryFixture(t, testAuditConfig())

	docID := uuid.New()
	actorID := uuid.New()

	f.accessor.EXPECT().Exists(gomock.Any(), docID).Return(true, nil)
	f.repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(
		[]domain.AuditRecord{
			{ID: uuid.New(), EntityType: domain.EntityListing, DocumentID: docID, Action: domain.AuditActionCreate, ActorID: actorID},
		}, int64(1), nil,
	)
	f.users.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).Return(nil, nil)
	f.accessor.EXPECT().Describe(gomock.Any(), docID).Return(nil, errors.New("row scan failed"))

	res, err := f.svc.ByDocument(context.Background(), domain.EntityListing, docID, ports.AuditQueryOptions{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Nil(t, res.DocumentInfo)
}

func TestAuditQueryService_ByDocument_NotFound(t *testing.T) {
	f := newAuditQueryFixture(t, testAuditConfig())

	docID := uuid.New()
	f.accessor.EXPECT().Exists(gomock.Any(), docID).Return(false, nil)

	_, err := f.svc.ByDocument(context.Background(), domain.EntityListing, docID, ports.AuditQueryOptions{})
	assertAppErrorCode(t, err, "CAT_001")
}

func TestAuditQueryService_ByDocument_UnknownEntityType(t *testing.T) {
	f := newAuditQueryFixture(t, testAuditConfig())

	_, err := f.svc.ByDocument(context.Background(), "Widget", uuid.New(), ports.AuditQueryOptions{})
	assertAppErrorCode(t, err, "AUD_001")
}

func TestAuditQueryService_System_InvalidAction(t *testing.T) {
	f := newAuditQueryFixture(t, testAuditConfig())

	bad := domain.AuditAction("mutate")
	_, err := f.svc.System(context.Background(), ports.AuditQueryOptions{Action: &bad})
	assertAppErrorCode(t, err, "VAL_001")
}

func TestAuditQueryService_System_PageAndLimitNormalized(t *testing.T) {
	f := newAuditQueryFixture(t, testAuditConfig())

	var gotParams ports.AuditListParams
	f.repo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, params ports.AuditListParams) ([]domain.AuditRecord, int64, error) {
			gotParams = params
			return nil, 0, nil
		},
	)

	res, err := f.svc.System(context.Background(), ports.AuditQueryOptions{Page: -3, Limit: 500})
	require.NoError(t, err)

	assert.Equal(t, 1, gotParams.Page)
	assert.Equal(t, 100, gotParams.Limit) // clamped to the configured max
	assert.Equal(t, 0, res.Pagination.Pages)
	assert.Empty(t, res.Records)
}

func TestAuditQueryService_EndOfDayWidening(t *testing.T) {
	midnight := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	precise := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		cfg    config.AuditConfig
		dateTo time.Time
		want   time.Time
	}{
		{
			name:   "midnight bound widens to end of day",
			cfg:    testAuditConfig(),
			dateTo: midnight,
			want:   midnight.Add(24*time.Hour - time.Nanosecond),
		},
		{
			name:   "precise instant untouched",
			cfg:    testAuditConfig(),
			dateTo: precise,
			want:   precise,
		},
		{
			name: "flag off keeps midnight bound",
			cfg: config.AuditConfig{
				DefaultPageSize: 50, MaxPageSize: 100, FeedSize: 20,
				EndOfDayInclusive: false,
			},
			dateTo: midnight,
			want:   midnight,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuditQueryFixture(t, tt.cfg)

			var gotTo *time.Time
			f.repo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
				func(ctx context.Context, params ports.AuditListParams) ([]domain.AuditRecord, int64, error) {
					gotTo = params.To
					return nil, 0, nil
				},
			)

			_, err := f.svc.System(context.Background(), ports.AuditQueryOptions{DateTo: &tt.dateTo})
			require.NoError(t, err)
			require.NotNil(t, gotTo)
			assert.True(t, gotTo.Equal(tt.want), "want %v, got %v", tt.want, *gotTo)
		})
	}
}

func TestAuditQueryService_ByActor(t *testing.T) {
	f := newAuditQueryFixture(t, testAuditConfig())

	actorID := uuid.New()

	var gotParams ports.AuditListParams
	f.repo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, params ports.AuditListParams) ([]domain.AuditRecord, int64, error) {
			gotParams = params
			return nil, 0, nil
		},
	)

	_, err := f.svc.ByActor(context.Background(), actorID, ports.AuditQueryOptions{})
	require.NoError(t, err)
	require.NotNil(t, gotParams.ActorID)
	assert.Equal(t, actorID, *gotParams.ActorID)
}

func TestAuditQueryService_RecentActivity(t *testing.T) {
	f := newAuditQueryFixture(t, testAuditConfig())

	const chromeUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	f.repo.EXPECT().Recent(gomock.Any(), ports.AuditFeedParams{Limit: 20}).Return(
		[]domain.AuditRecord{
			{ID: uuid.New(), EntityType: domain.EntityListing, Action: domain.AuditActionCreate, UserAgent: chromeUA},
			{ID: uuid.New(), EntityType: domain.EntityUser, Action: domain.AuditActionDelete},
		}, nil,
	)

	entries, err := f.svc.RecentActivity(context.Background(), ports.AuditFeedOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.True(t, strings.HasPrefix(entries[0].Client, "Chrome 120"), "got client %q", entries[0].Client)
	assert.Contains(t, entries[0].Client, " / ")
	assert.Empty(t, entries[1].Client)
}

func TestAuditQueryService_RecentActivity_UnknownFilter(t *testing.T) {
	f := newAuditQueryFixture(t, testAuditConfig())

	_, err := f.svc.RecentActivity(context.Background(), ports.AuditFeedOptions{
		EntityTypes: []domain.EntityType{"Widget"},
	})
	assertAppErrorCode(t, err, "AUD_001")
}

func TestAuditQueryService_Summary(t *testing.T) {
	f := newAuditQueryFixture(t, testAuditConfig())

	docID := uuid.New()
	want := &domain.AuditSummary{
		Actions:      []domain.ActionCount{{Action: domain.AuditActionUpdate, Count: 3, UniqueActors: 2}},
		TotalActions: 3,
		FirstAction:  &domain.FirstAction{Action: domain.AuditActionCreate, ActorName: "Priya"},
	}
	f.repo.EXPECT().Summary(gomock.Any(), domain.EntityListing, docID).Return(want, nil)

	got, err := f.svc.Summary(context.Background(), domain.EntityListing, docID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAuditQueryService_Summary_UnknownEntityType(t *testing.T) {
	f := newAuditQueryFixture(t, testAuditConfig())

	_, err := f.svc.Summary(context.Background(), "Widget", uuid.New())
	assertAppErrorCode(t, err, "AUD_001")
}
