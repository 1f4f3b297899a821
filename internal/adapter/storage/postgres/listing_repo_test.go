package postgres

import (
	"context"
	"testing"
	"time"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestListing(instructorID uuid.UUID) *domain.Listing {
	now := time.Now().UTC().Truncate(time.Microsecond)
	seats := 12
	return &domain.Listing{
		ID:             uuid.New(),
		InstructorID:   instructorID,
		Title:          "Watercolour Basics",
		Type:           "workshop",
		Description:    "A weekend introduction to watercolour painting.",
		ParticipantFee: 150000,
		SeatCapacity:   &seats,
		LocationType:   domain.LocationSpecific,
		Address:        &domain.Address{City: "Pune", Pincode: "411001"},
		TimeSlots:      []domain.TimeSlot{{StartTime: "10:00", EndTime: "12:00"}},
		Images:         []string{"cover.jpg"},
		FAQs:           []domain.FAQ{{Question: "Materials?", Answer: "Provided."}},
		Status:         domain.ListingStatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func listingRow(l *domain.Listing) *pgxmock.Rows {
	address, slots, faqs, _ := marshalListingFields(l)
	return pgxmock.NewRows([]string{"id", "instructor_id", "title", "type", "description",
		"participant_fee", "seat_capacity", "location_type", "address", "time_slots", "images",
		"faqs", "participant_count", "earning", "average_rating", "status", "rejection_reason",
		"is_deleted", "created_at", "updated_at"}).
		AddRow(
			l.ID, l.InstructorID, l.Title, l.Type, l.Description, l.ParticipantFee,
			l.SeatCapacity, l.LocationType, address, slots, l.Images, faqs,
			l.ParticipantCount, l.Earning, l.AverageRating, l.Status,
			l.RejectionReason, l.IsDeleted, l.CreatedAt, l.UpdatedAt,
		)
}

func TestListingRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)
	l := newTestListing(uuid.New())

	mock.ExpectExec("INSERT INTO listings").
		WithArgs(
			l.ID, l.InstructorID, l.Title, l.Type, l.Description, l.ParticipantFee,
			l.SeatCapacity, l.LocationType, pgxmock.AnyArg(), pgxmock.AnyArg(), l.Images,
			pgxmock.AnyArg(), l.ParticipantCount, l.Earning, l.AverageRating, l.Status,
			l.RejectionReason, l.IsDeleted, l.CreatedAt, l.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), l)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)
	l := newTestListing(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM listings WHERE id").
		WithArgs(l.ID).
		WillReturnRows(listingRow(l))

	result, err := repo.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, l.Title, result.Title)
	require.NotNil(t, result.Address)
	assert.Equal(t, "Pune", result.Address.City)
	assert.Len(t, result.TimeSlots, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM listings WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	result, err := repo.GetByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepo_List_Filtered(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)
	l := newTestListing(uuid.New())
	status := domain.ListingStatusDraft
	deleted := false

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM listings WHERE instructor_id .+ AND status .+ AND is_deleted").
		WithArgs(l.InstructorID, status, deleted).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM listings WHERE .+ ORDER BY created_at DESC").
		WithArgs(l.InstructorID, status, deleted, 10, 0).
		WillReturnRows(listingRow(l))

	listings, total, err := repo.List(context.Background(), ports.ListingListParams{
		InstructorID: &l.InstructorID,
		Status:       &status,
		IsDeleted:    &deleted,
		Page:         1,
		PageSize:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, listings, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepo_AdjustParticipantCount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE listings SET participant_count").
		WithArgs(1, pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.AdjustParticipantCount(context.Background(), id, 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepo_AdjustParticipantCount_Full(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE listings SET participant_count").
		WithArgs(1, pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.AdjustParticipantCount(context.Background(), id, 1)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
