package postgres

import (
	"context"
	"fmt"
	"strings"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"

	"github.com/google/uuid"
)

const auditColumns = `id, entity_type, document_id, action, actor_id, actor_role, actor_name,
	previous_data, new_data, changed_fields, ip_address, user_agent, recorded_at`

// AuditRepo implements ports.AuditRepository. The table is append-only;
// there are no update or delete statements here.
type AuditRepo struct {
	pool Pool
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(pool Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// Create inserts a new audit record.
func (r *AuditRepo) Create(ctx context.Context, rec *domain.AuditRecord) error {
	query := `INSERT INTO audit_records (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.EntityType, rec.DocumentID, rec.Action,
		rec.ActorID, rec.ActorRole, rec.ActorName,
		rec.PreviousData, rec.NewData, rec.ChangedFields,
		rec.IPAddress, rec.UserAgent, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// List fetches audit records with filtering and pagination, newest first.
// Ties on recorded_at break by id so pages never overlap.
func (r *AuditRepo) List(ctx context.Context, params ports.AuditListParams) ([]domain.AuditRecord, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.EntityType != nil {
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", argIdx))
		args = append(args, *params.EntityType)
		argIdx++
	}
	if params.DocumentID != nil {
		conditions = append(conditions, fmt.Sprintf("document_id = $%d", argIdx))
		args = append(args, *params.DocumentID)
		argIdx++
	}
	if params.Action != nil {
		conditions = append(conditions, fmt.Sprintf("action = $%d", argIdx))
		args = append(args, *params.Action)
		argIdx++
	}
	if params.ActorID != nil {
		conditions = append(conditions, fmt.Sprintf("actor_id = $%d", argIdx))
		args = append(args, *params.ActorID)
		argIdx++
	}
	if params.ActorRole != nil {
		conditions = append(conditions, fmt.Sprintf("actor_role = $%d", argIdx))
		args = append(args, *params.ActorRole)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("recorded_at >= $%d", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("recorded_at <= $%d", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM audit_records %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count audit records: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.Limit
	dataQuery := fmt.Sprintf(`SELECT %s FROM audit_records %s
		ORDER BY recorded_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		auditColumns, where, argIdx, argIdx+1)
	args = append(args, params.Limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var records []domain.AuditRecord
	for rows.Next() {
		rec := domain.AuditRecord{}
		err := rows.Scan(
			&rec.ID, &rec.EntityType, &rec.DocumentID, &rec.Action,
			&rec.ActorID, &rec.ActorRole, &rec.ActorName,
			&rec.PreviousData, &rec.NewData, &rec.ChangedFields,
			&rec.IPAddress, &rec.UserAgent, &rec.Timestamp,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan audit row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate audit rows: %w", err)
	}
	return records, total, nil
}

// Recent fetches the newest records across the ledger. Empty filter slices
// match everything.
func (r *AuditRepo) Recent(ctx context.Context, params ports.AuditFeedParams) ([]domain.AuditRecord, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if len(params.EntityTypes) > 0 {
		conditions = append(conditions, fmt.Sprintf("entity_type = ANY($%d)", argIdx))
		args = append(args, params.EntityTypes)
		argIdx++
	}
	if len(params.Actions) > 0 {
		conditions = append(conditions, fmt.Sprintf("action = ANY($%d)", argIdx))
		args = append(args, params.Actions)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM audit_records %s
		ORDER BY recorded_at DESC, id DESC LIMIT $%d`, auditColumns, where, argIdx)
	args = append(args, params.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recent audit records: %w", err)
	}
	defer rows.Close()

	var records []domain.AuditRecord
	for rows.Next() {
		rec := domain.AuditRecord{}
		err := rows.Scan(
			&rec.ID, &rec.EntityType, &rec.DocumentID, &rec.Action,
			&rec.ActorID, &rec.ActorRole, &rec.ActorName,
			&rec.PreviousData, &rec.NewData, &rec.ChangedFields,
			&rec.IPAddress, &rec.UserAgent, &rec.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit rows: %w", err)
	}
	return records, nil
}

// Summary computes the per-action aggregation for one document in a single
// grouped statement. The total and the earliest record ride along on every
// bucket row; a document with no records yields zero rows and an empty
// summary.
func (r *AuditRepo) Summary(ctx context.Context, entityType domain.EntityType, documentID uuid.UUID) (*domain.AuditSummary, error) {
	query := `WITH doc AS (
			SELECT action, actor_id, actor_name, recorded_at
			FROM audit_records
			WHERE entity_type = $1 AND document_id = $2
		), first_rec AS (
			SELECT action, actor_name, recorded_at
			FROM doc ORDER BY recorded_at ASC LIMIT 1
		)
		SELECT d.action, COUNT(*), MAX(d.recorded_at), COUNT(DISTINCT d.actor_id),
			(SELECT COUNT(*) FROM doc),
			f.recorded_at, f.action, f.actor_name
		FROM doc d CROSS JOIN first_rec f
		GROUP BY d.action, f.recorded_at, f.action, f.actor_name
		ORDER BY COUNT(*) DESC, d.action ASC`

	rows, err := r.pool.Query(ctx, query, entityType, documentID)
	if err != nil {
		return nil, fmt.Errorf("audit summary: %w", err)
	}
	defer rows.Close()

	summary := &domain.AuditSummary{}
	for rows.Next() {
		var bucket domain.ActionCount
		var first domain.FirstAction
		err := rows.Scan(
			&bucket.Action, &bucket.Count, &bucket.LastOccurred, &bucket.UniqueActors,
			&summary.TotalActions,
			&first.Timestamp, &first.Action, &first.ActorName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		summary.Actions = append(summary.Actions, bucket)
		summary.FirstAction = &first
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}
	return summary, nil
}
