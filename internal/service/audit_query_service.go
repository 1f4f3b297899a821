package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"skills-marketplace-api/config"
	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"github.com/rs/zerolog"
)

type auditQueryService struct {
	repo     ports.AuditRepository
	users    ports.UserRepository
	registry *EntityRegistry
	cfg      config.AuditConfig
	log      zerolog.Logger
}

// NewAuditQueryService creates the read side of the audit subsystem.
func NewAuditQueryService(
	repo ports.AuditRepository,
	users ports.UserRepository,
	registry *EntityRegistry,
	cfg config.AuditConfig,
	log zerolog.Logger,
) ports.AuditQueryService {
	return &auditQueryService{repo: repo, users: users, registry: registry, cfg: cfg, log: log}
}

// ByDocument reconstructs one entity's change history, newest first.
func (s *auditQueryService) ByDocument(ctx context.Context, entityType domain.EntityType, documentID uuid.UUID, opts ports.AuditQueryOptions) (*ports.AuditQueryResult, error) {
	accessor, err := s.registry.Lookup(entityType)
	if err != nil {
		return nil, err
	}

	exists, err := accessor.Exists(ctx, documentID)
	if err != nil {
		return nil, apperror.ErrAuditQueryFailed(err)
	}
	if !exists {
		return nil, apperror.ErrNotFound(string(entityType))
	}

	opts.EntityType = &entityType
	opts.DocumentID = &documentID
	result, err := s.query(ctx, opts)
	if err != nil {
		return nil, err
	}

	info, err := accessor.Describe(ctx, documentID)
	if err != nil {
		// The history itself is still useful without the summary block.
		s.log.Warn().Err(err).
			Str("entity_type", string(entityType)).
			Str("document_id", documentID.String()).
			Msg("Describe failed, returning history without document info")
	} else {
		result.DocumentInfo = info
	}
	return result, nil
}

// ByActor lists everything one user did, across collections.
func (s *auditQueryService) ByActor(ctx context.Context, actorID uuid.UUID, opts ports.AuditQueryOptions) (*ports.AuditQueryResult, error) {
	if opts.EntityType != nil && !domain.ValidEntityType(*opts.EntityType) {
		return nil, apperror.ErrUnknownEntityType(string(*opts.EntityType))
	}
	opts.ActorID = &actorID
	return s.query(ctx, opts)
}

// System is the unrestricted cross-collection query.
func (s *auditQueryService) System(ctx context.Context, opts ports.AuditQueryOptions) (*ports.AuditQueryResult, error) {
	if opts.EntityType != nil && !domain.ValidEntityType(*opts.EntityType) {
		return nil, apperror.ErrUnknownEntityType(string(*opts.EntityType))
	}
	return s.query(ctx, opts)
}

// RecentActivity returns the newest slice of the ledger with trimmed fields
// and a parsed client label.
func (s *auditQueryService) RecentActivity(ctx context.Context, opts ports.AuditFeedOptions) ([]domain.ActivityEntry, error) {
	for _, t := range opts.EntityTypes {
		if !domain.ValidEntityType(t) {
			return nil, apperror.ErrUnknownEntityType(string(t))
		}
	}
	for _, a := range opts.Actions {
		if !domain.ValidAuditAction(a) {
			return nil, apperror.Validation(fmt.Sprintf("Unrecognized action: %s", a))
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.FeedSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}

	records, err := s.repo.Recent(ctx, ports.AuditFeedParams{
		EntityTypes: opts.EntityTypes,
		Actions:     opts.Actions,
		Limit:       limit,
	})
	if err != nil {
		return nil, apperror.ErrAuditQueryFailed(err)
	}

	entries := make([]domain.ActivityEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, domain.ActivityEntry{
			ID:            rec.ID,
			EntityType:    rec.EntityType,
			DocumentID:    rec.DocumentID,
			Action:        rec.Action,
			ActorID:       rec.ActorID,
			ActorName:     rec.ActorName,
			ActorRole:     rec.ActorRole,
			ChangedFields: rec.ChangedFields,
			Client:        clientLabel(rec.UserAgent),
			Timestamp:     rec.Timestamp,
		})
	}
	return entries, nil
}

// Summary aggregates a document's record set per action.
func (s *auditQueryService) Summary(ctx context.Context, entityType domain.EntityType, documentID uuid.UUID) (*domain.AuditSummary, error) {
	if _, err := s.registry.Lookup(entityType); err != nil {
		return nil, err
	}

	summary, err := s.repo.Summary(ctx, entityType, documentID)
	if err != nil {
		return nil, apperror.ErrAuditQueryFailed(err)
	}
	return summary, nil
}

// query runs the shared filter + paginate + enrich pipeline.
func (s *auditQueryService) query(ctx context.Context, opts ports.AuditQueryOptions) (*ports.AuditQueryResult, error) {
	if opts.Action != nil && !domain.ValidAuditAction(*opts.Action) {
		return nil, apperror.Validation(fmt.Sprintf("Unrecognized action: %s", *opts.Action))
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}

	params := ports.AuditListParams{
		EntityType: opts.EntityType,
		DocumentID: opts.DocumentID,
		Action:     opts.Action,
		ActorID:    opts.ActorID,
		ActorRole:  opts.ActorRole,
		From:       opts.DateFrom,
		To:         s.widenDateTo(opts.DateTo),
		Page:       page,
		Limit:      limit,
	}

	records, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, apperror.ErrAuditQueryFailed(err)
	}

	enriched, err := s.enrich(ctx, records)
	if err != nil {
		return nil, err
	}

	return &ports.AuditQueryResult{
		Records: enriched,
		Pagination: ports.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(limit))),
		},
		Filters: params,
	}, nil
}

// widenDateTo stretches an inclusive upper bound to the end of its calendar
// day when the configuration asks for it. The stretch only applies to a
// bound given at midnight, so a caller passing a precise instant keeps it.
func (s *auditQueryService) widenDateTo(to *time.Time) *time.Time {
	if to == nil || !s.cfg.EndOfDayInclusive {
		return to
	}
	if to.Hour() != 0 || to.Minute() != 0 || to.Second() != 0 || to.Nanosecond() != 0 {
		return to
	}
	widened := to.Add(24*time.Hour - time.Nanosecond)
	return &widened
}

// enrich resolves the current state of every distinct actor in one batch.
// Actors that no longer resolve are attached as nil rather than dropped.
func (s *auditQueryService) enrich(ctx context.Context, records []domain.AuditRecord) ([]domain.EnrichedAuditRecord, error) {
	seen := make(map[uuid.UUID]struct{}, len(records))
	var ids []uuid.UUID
	for _, rec := range records {
		if _, ok := seen[rec.ActorID]; !ok {
			seen[rec.ActorID] = struct{}{}
			ids = append(ids, rec.ActorID)
		}
	}

	actors := make(map[uuid.UUID]*domain.ActorInfo, len(ids))
	if len(ids) > 0 {
		users, err := s.users.GetByIDs(ctx, ids)
		if err != nil {
			return nil, apperror.ErrAuditQueryFailed(err)
		}
		for i := range users {
			u := users[i]
			info := &domain.ActorInfo{ID: u.ID, Name: u.DisplayName(), Role: u.Role}
			if u.EmailID != nil {
				info.EmailID = *u.EmailID
			}
			actors[u.ID] = info
		}
	}

	enriched := make([]domain.EnrichedAuditRecord, 0, len(records))
	for _, rec := range records {
		enriched = append(enriched, domain.EnrichedAuditRecord{
			AuditRecord: rec,
			Actor:       actors[rec.ActorID],
		})
	}
	return enriched, nil
}

// clientLabel condenses a raw User-Agent header into "Browser version / OS".
func clientLabel(rawUA string) string {
	if rawUA == "" {
		return ""
	}
	ua := useragent.New(rawUA)
	name, version := ua.Browser()
	if name == "" {
		return rawUA
	}
	label := name
	if version != "" {
		label += " " + version
	}
	if os := ua.OS(); os != "" {
		label += " / " + os
	}
	return label
}
