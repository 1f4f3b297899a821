package service

import (
	"context"
	"time"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type auditRecorder struct {
	repo ports.AuditRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewAuditRecorder creates the write side of the audit subsystem. Record
// never fails the caller: a persistence error is logged and swallowed,
// because the business mutation it describes has already committed.
func NewAuditRecorder(repo ports.AuditRepository, log zerolog.Logger) ports.AuditRecorder {
	return &auditRecorder{repo: repo, log: log, now: time.Now}
}

// Record validates and persists one audit entry. Invalid entries and storage
// failures both return nil; the returned record is informational only.
func (s *auditRecorder) Record(ctx context.Context, entry ports.AuditEntry) *domain.AuditRecord {
	if !domain.ValidEntityType(entry.EntityType) {
		s.log.Warn().
			Str("entity_type", string(entry.EntityType)).
			Str("document_id", entry.DocumentID.String()).
			Msg("audit entry dropped: unknown entity type")
		return nil
	}
	if !domain.ValidAuditAction(entry.Action) {
		s.log.Warn().
			Str("action", string(entry.Action)).
			Str("entity_type", string(entry.EntityType)).
			Msg("audit entry dropped: unknown action")
		return nil
	}
	if entry.DocumentID == uuid.Nil || entry.Actor.ID == uuid.Nil {
		s.log.Warn().
			Str("entity_type", string(entry.EntityType)).
			Str("action", string(entry.Action)).
			Msg("audit entry dropped: missing document or actor id")
		return nil
	}

	rec := &domain.AuditRecord{
		ID:            uuid.New(),
		EntityType:    entry.EntityType,
		DocumentID:    entry.DocumentID,
		Action:        entry.Action,
		ActorID:       entry.Actor.ID,
		ActorRole:     entry.Actor.Role,
		ActorName:     entry.Actor.Name,
		PreviousData:  entry.PreviousData,
		NewData:       entry.NewData,
		ChangedFields: entry.ChangedFields,
		Timestamp:     s.now().UTC(),
	}
	if entry.Meta != nil {
		rec.IPAddress = entry.Meta.IPAddress
		rec.UserAgent = entry.Meta.UserAgent
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		s.log.Warn().Err(err).
			Str("entity_type", string(rec.EntityType)).
			Str("document_id", rec.DocumentID.String()).
			Str("action", string(rec.Action)).
			Msg("failed to persist audit record")
		return nil
	}

	s.log.Info().
		Str("entity_type", string(rec.EntityType)).
		Str("document_id", rec.DocumentID.String()).
		Str("action", string(rec.Action)).
		Str("actor_id", rec.ActorID.String()).
		Msg("audit")

	return rec
}
