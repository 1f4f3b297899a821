package service

import (
	"context"
	"encoding/json"
	"fmt"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
)

// InstructorServiceImpl implements ports.InstructorService.
type InstructorServiceImpl struct {
	instructorRepo ports.InstructorRepository
	audit          ports.AuditRecorder
}

// NewInstructorService creates a new InstructorServiceImpl.
func NewInstructorService(instructorRepo ports.InstructorRepository, audit ports.AuditRecorder) *InstructorServiceImpl {
	return &InstructorServiceImpl{
		instructorRepo: instructorRepo,
		audit:          audit,
	}
}

// Get returns an instructor profile by id.
func (s *InstructorServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Instructor, error) {
	ins, err := s.instructorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get instructor: %w", err))
	}
	if ins == nil {
		return nil, apperror.ErrNotFound("instructor")
	}
	return ins, nil
}

// Approve completes the onboarding workflow for a pending instructor.
// Admin only.
func (s *InstructorServiceImpl) Approve(ctx context.Context, caller ports.Caller, id uuid.UUID, meta *ports.RequestMeta) (*domain.Instructor, error) {
	return s.decide(ctx, caller, id, domain.InstructorStatusApproved, "", meta)
}

// Reject declines a pending instructor with a reason. Admin only.
func (s *InstructorServiceImpl) Reject(ctx context.Context, caller ports.Caller, id uuid.UUID, reason string, meta *ports.RequestMeta) (*domain.Instructor, error) {
	if reason == "" {
		return nil, apperror.Validation("rejection reason is required")
	}
	return s.decide(ctx, caller, id, domain.InstructorStatusRejected, reason, meta)
}

func (s *InstructorServiceImpl) decide(ctx context.Context, caller ports.Caller, id uuid.UUID, status domain.InstructorStatus, reason string, meta *ports.RequestMeta) (*domain.Instructor, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, apperror.ErrForbidden("only admins can decide instructor onboarding")
	}

	ins, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ins.Status != domain.InstructorStatusPendingApproval {
		return nil, apperror.ErrInvalidStatusTransition(string(ins.Status), string(status))
	}

	previous, _ := json.Marshal(ins)

	if err := s.instructorRepo.UpdateStatus(ctx, id, status, reason); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("update instructor status: %w", err))
	}
	ins.Status = status
	ins.RejectionReason = reason

	snapshot, _ := json.Marshal(ins)
	s.audit.Record(ctx, ports.AuditEntry{
		EntityType:    domain.EntityInstructor,
		DocumentID:    ins.ID,
		Action:        domain.AuditActionStatusChange,
		Actor:         caller,
		PreviousData:  previous,
		NewData:       snapshot,
		ChangedFields: []string{"status"},
		Meta:          meta,
	})

	return ins, nil
}
