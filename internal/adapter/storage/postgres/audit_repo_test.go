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

func newTestAuditRecord(entityType domain.EntityType, action domain.AuditAction) *domain.AuditRecord {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.AuditRecord{
		ID:            uuid.New(),
		EntityType:    entityType,
		DocumentID:    uuid.New(),
		Action:        action,
		ActorID:       uuid.New(),
		ActorRole:     domain.RoleAdmin,
		ActorName:     "Asha Verma",
		PreviousData:  json.RawMessage(`{"status":"draft"}`),
		NewData:       json.RawMessage(`{"status":"approved"}`),
		ChangedFields: []string{"status"},
		IPAddress:     "10.0.0.7",
		UserAgent:     "Mozilla/5.0",
		Timestamp:     now,
	}
}

func auditTestColumns() []string {
	return []string{"id", "entity_type", "document_id", "action", "actor_id", "actor_role", "actor_name",
		"previous_data", "new_data", "changed_fields", "ip_address", "user_agent", "recorded_at"}
}

func auditRow(recs ...*domain.AuditRecord) *pgxmock.Rows {
	rows := pgxmock.NewRows(auditTestColumns())
	for _, rec := range recs {
		rows.AddRow(
			rec.ID, rec.EntityType, rec.DocumentID, rec.Action,
			rec.ActorID, rec.ActorRole, rec.ActorName,
			rec.PreviousData, rec.NewData, rec.ChangedFields,
			rec.IPAddress, rec.UserAgent, rec.Timestamp,
		)
	}
	return rows
}

func TestAuditRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditRepo(mock)
	rec := newTestAuditRecord(domain.EntityListing, domain.AuditActionStatusChange)

	mock.ExpectExec("INSERT INTO audit_records").
		WithArgs(
			rec.ID, rec.EntityType, rec.DocumentID, rec.Action,
			rec.ActorID, rec.ActorRole, rec.ActorName,
			rec.PreviousData, rec.NewData, rec.ChangedFields,
			rec.IPAddress, rec.UserAgent, rec.Timestamp,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), rec)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_List_ByDocument(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditRepo(mock)
	rec := newTestAuditRecord(domain.EntityListing, domain.AuditActionUpdate)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM audit_records WHERE entity_type .+ AND document_id").
		WithArgs(rec.EntityType, rec.DocumentID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM audit_records WHERE entity_type .+ AND document_id .+ ORDER BY recorded_at DESC").
		WithArgs(rec.EntityType, rec.DocumentID, 50, 0).
		WillReturnRows(auditRow(rec))

	records, total, err := repo.List(context.Background(), ports.AuditListParams{
		EntityType: &rec.EntityType,
		DocumentID: &rec.DocumentID,
		Page:       1,
		Limit:      50,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.Equal(t, rec.ChangedFields, records[0].ChangedFields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_List_AllFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditRepo(mock)
	rec := newTestAuditRecord(domain.EntityUser, domain.AuditActionUpdate)
	from := rec.Timestamp.Add(-time.Hour)
	to := rec.Timestamp.Add(time.Hour)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM audit_records WHERE").
		WithArgs(rec.EntityType, rec.DocumentID, rec.Action, rec.ActorID, rec.ActorRole, from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM audit_records WHERE .+ LIMIT \\$8 OFFSET \\$9").
		WithArgs(rec.EntityType, rec.DocumentID, rec.Action, rec.ActorID, rec.ActorRole, from, to, 20, 20).
		WillReturnRows(auditRow(rec))

	records, total, err := repo.List(context.Background(), ports.AuditListParams{
		EntityType: &rec.EntityType,
		DocumentID: &rec.DocumentID,
		Action:     &rec.Action,
		ActorID:    &rec.ActorID,
		ActorRole:  &rec.ActorRole,
		From:       &from,
		To:         &to,
		Page:       2,
		Limit:      20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, records, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_List_NoFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditRepo(mock)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM audit_records").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery("SELECT .+ FROM audit_records .+ ORDER BY recorded_at DESC").
		WithArgs(50, 0).
		WillReturnRows(pgxmock.NewRows(auditTestColumns()))

	records, total, err := repo.List(context.Background(), ports.AuditListParams{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_Recent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditRepo(mock)
	rec := newTestAuditRecord(domain.EntityPayment, domain.AuditActionCreate)

	mock.ExpectQuery("SELECT .+ FROM audit_records WHERE entity_type = ANY.+ ORDER BY recorded_at DESC").
		WithArgs([]domain.EntityType{domain.EntityPayment}, 20).
		WillReturnRows(auditRow(rec))

	records, err := repo.Recent(context.Background(), ports.AuditFeedParams{
		EntityTypes: []domain.EntityType{domain.EntityPayment},
		Limit:       20,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.EntityPayment, records[0].EntityType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_Summary(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditRepo(mock)
	docID := uuid.New()
	created := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Microsecond)
	updated := time.Now().UTC().Truncate(time.Microsecond)

	cols := []string{"action", "count", "last_occurred", "unique_actors", "total", "first_at", "first_action", "first_actor"}
	mock.ExpectQuery("WITH doc AS").
		WithArgs(domain.EntityListing, docID).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(domain.AuditActionUpdate, int64(3), updated, int64(2), int64(4), created, domain.AuditActionCreate, "Asha Verma").
			AddRow(domain.AuditActionCreate, int64(1), created, int64(1), int64(4), created, domain.AuditActionCreate, "Asha Verma"))

	summary, err := repo.Summary(context.Background(), domain.EntityListing, docID)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, int64(4), summary.TotalActions)
	require.Len(t, summary.Actions, 2)
	assert.Equal(t, domain.AuditActionUpdate, summary.Actions[0].Action)
	assert.Equal(t, int64(3), summary.Actions[0].Count)
	assert.Equal(t, int64(2), summary.Actions[0].UniqueActors)
	require.NotNil(t, summary.FirstAction)
	assert.Equal(t, domain.AuditActionCreate, summary.FirstAction.Action)
	assert.Equal(t, created, summary.FirstAction.Timestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_Summary_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditRepo(mock)

	cols := []string{"action", "count", "last_occurred", "unique_actors", "total", "first_at", "first_action", "first_actor"}
	mock.ExpectQuery("WITH doc AS").
		WithArgs(domain.EntityReview, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(cols))

	summary, err := repo.Summary(context.Background(), domain.EntityReview, uuid.New())
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, int64(0), summary.TotalActions)
	assert.Empty(t, summary.Actions)
	assert.Nil(t, summary.FirstAction)
	assert.NoError(t, mock.ExpectationsWereMet())
}
