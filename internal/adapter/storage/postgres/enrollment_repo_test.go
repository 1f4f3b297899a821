package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnrollment() *domain.Enrollment {
	now := time.Now().UTC().Truncate(time.Microsecond)
	seat := 4
	return &domain.Enrollment{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		ListingID:    uuid.New(),
		InstructorID: uuid.New(),
		SeatNumber:   &seat,
		SelectedDate: "2026-09-12",
		SelectedSlot: domain.TimeSlot{StartTime: "10:00", EndTime: "12:00"},
		Status:       domain.EnrollmentStatusActive,
		Progress:     40,
		EnrolledAt:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func enrollmentRow(e *domain.Enrollment) *pgxmock.Rows {
	slot, _ := json.Marshal(e.SelectedSlot)
	return pgxmock.NewRows([]string{"id", "user_id", "listing_id", "instructor_id", "seat_number",
		"selected_date", "selected_slot", "status", "progress", "completed_modules",
		"certificate_issued", "is_archived", "enrolled_at", "last_accessed_at", "created_at", "updated_at"}).
		AddRow(
			e.ID, e.UserID, e.ListingID, e.InstructorID, e.SeatNumber, e.SelectedDate,
			slot, e.Status, e.Progress, e.CompletedModules, e.CertificateIssued,
			e.IsArchived, e.EnrolledAt, e.LastAccessedAt, e.CreatedAt, e.UpdatedAt,
		)
}

func TestEnrollmentRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEnrollmentRepo(mock)
	e := newTestEnrollment()

	mock.ExpectExec("INSERT INTO enrollments").
		WithArgs(
			e.ID, e.UserID, e.ListingID, e.InstructorID, e.SeatNumber, e.SelectedDate,
			pgxmock.AnyArg(), e.Status, e.Progress, e.CompletedModules, e.CertificateIssued,
			e.IsArchived, e.EnrolledAt, e.LastAccessedAt, e.CreatedAt, e.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), e)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepo_GetBySlot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEnrollmentRepo(mock)
	e := newTestEnrollment()

	mock.ExpectQuery("SELECT .+ FROM enrollments WHERE user_id .+ AND listing_id .+ AND selected_date").
		WithArgs(e.UserID, e.ListingID, e.SelectedDate, e.SelectedSlot.StartTime).
		WillReturnRows(enrollmentRow(e))

	result, err := repo.GetBySlot(context.Background(), e.UserID, e.ListingID, e.SelectedDate, e.SelectedSlot)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, e.ID, result.ID)
	assert.Equal(t, "10:00", result.SelectedSlot.StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepo_GetBySlot_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEnrollmentRepo(mock)
	e := newTestEnrollment()

	mock.ExpectQuery("SELECT .+ FROM enrollments WHERE user_id").
		WithArgs(e.UserID, e.ListingID, e.SelectedDate, e.SelectedSlot.StartTime).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	result, err := repo.GetBySlot(context.Background(), e.UserID, e.ListingID, e.SelectedDate, e.SelectedSlot)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepo_List_ByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEnrollmentRepo(mock)
	e := newTestEnrollment()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM enrollments WHERE user_id .+ AND is_archived").
		WithArgs(e.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM enrollments WHERE .+ ORDER BY enrolled_at DESC").
		WithArgs(e.UserID, 10, 0).
		WillReturnRows(enrollmentRow(e))

	enrollments, total, err := repo.List(context.Background(), ports.EnrollmentListParams{
		UserID:   &e.UserID,
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, enrollments, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepo_StatusCounts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEnrollmentRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM enrollments WHERE user_id").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"total", "pending", "active", "completed"}).
			AddRow(int64(7), int64(1), int64(4), int64(2)))

	counts, err := repo.StatusCounts(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), counts.Total)
	assert.Equal(t, int64(4), counts.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepo_DistinctParticipantIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEnrollmentRepo(mock)
	instructorID := uuid.New()
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT DISTINCT user_id FROM enrollments").
		WithArgs(instructorID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(a).AddRow(b))

	ids, err := repo.DistinctParticipantIDs(context.Background(), instructorID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
