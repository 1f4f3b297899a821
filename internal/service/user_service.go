package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
)

// userPatchFields is the recognized patch surface, in detection order.
var userPatchFields = []string{
	"name", "mobile_no", "email_id", "profile_image", "bio",
	"school_name", "grade", "skills", "learning_goals",
}

// UserServiceImpl implements ports.UserService.
type UserServiceImpl struct {
	userRepo ports.UserRepository
	audit    ports.AuditRecorder
}

// NewUserService creates a new UserServiceImpl.
func NewUserService(userRepo ports.UserRepository, audit ports.AuditRecorder) *UserServiceImpl {
	return &UserServiceImpl{
		userRepo: userRepo,
		audit:    audit,
	}
}

// Get returns a user profile by id.
func (s *UserServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get user: %w", err))
	}
	if user == nil || user.IsDeleted {
		return nil, apperror.ErrNotFound("user")
	}
	return user, nil
}

// Update applies a partial profile mutation. Self or admin only.
func (s *UserServiceImpl) Update(ctx context.Context, caller ports.Caller, id uuid.UUID, patch map[string]json.RawMessage, meta *ports.RequestMeta) (*domain.User, error) {
	if caller.Role != domain.RoleAdmin && caller.ID != id {
		return nil, apperror.ErrForbidden("cannot modify another user's profile")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	previous, _ := json.Marshal(user)

	changed, err := applyUserPatch(user, patch)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return user, nil
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("update user: %w", err))
	}

	snapshot, _ := json.Marshal(user)
	s.audit.Record(ctx, ports.AuditEntry{
		EntityType:    domain.EntityUser,
		DocumentID:    user.ID,
		Action:        domain.AuditActionUpdate,
		Actor:         caller,
		PreviousData:  previous,
		NewData:       snapshot,
		ChangedFields: changed,
		Meta:          meta,
	})

	return user, nil
}

// Delete soft-deletes an account. Self or admin only.
func (s *UserServiceImpl) Delete(ctx context.Context, caller ports.Caller, id uuid.UUID, meta *ports.RequestMeta) error {
	if caller.Role != domain.RoleAdmin && caller.ID != id {
		return apperror.ErrForbidden("cannot delete another user's account")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	previous, _ := json.Marshal(user)

	if err := s.userRepo.SoftDelete(ctx, id); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("soft delete user: %w", err))
	}

	s.audit.Record(ctx, ports.AuditEntry{
		EntityType:   domain.EntityUser,
		DocumentID:   id,
		Action:       domain.AuditActionDelete,
		Actor:        caller,
		PreviousData: previous,
		Meta:         meta,
	})

	return nil
}

// applyUserPatch mutates u in place and returns the names of fields whose
// values actually changed, in detection order.
func applyUserPatch(u *domain.User, patch map[string]json.RawMessage) ([]string, error) {
	for key := range patch {
		known := false
		for _, f := range userPatchFields {
			if f == key {
				known = true
				break
			}
		}
		if !known {
			return nil, apperror.Validation(fmt.Sprintf("unknown field: %s", key))
		}
	}

	var changed []string
	for _, field := range userPatchFields {
		raw, ok := patch[field]
		if !ok {
			continue
		}
		didChange, err := applyUserField(u, field, raw)
		if err != nil {
			return nil, apperror.Validation(fmt.Sprintf("invalid value for %s", field))
		}
		if didChange {
			changed = append(changed, field)
		}
	}
	return changed, nil
}

func applyUserField(u *domain.User, field string, raw json.RawMessage) (bool, error) {
	switch field {
	case "name":
		return patchString(&u.Name, raw)
	case "mobile_no":
		return patchStringPtr(&u.MobileNo, raw)
	case "email_id":
		return patchStringPtr(&u.EmailID, raw)
	case "profile_image":
		return patchString(&u.ProfileImage, raw)
	case "bio":
		return patchString(&u.Bio, raw)
	case "school_name":
		return patchString(&u.SchoolName, raw)
	case "grade":
		return patchString(&u.Grade, raw)
	case "skills":
		var v []domain.Skill
		if err := json.Unmarshal(raw, &v); err != nil {
			return false, err
		}
		if jsonEqual(u.Skills, v) {
			return false, nil
		}
		u.Skills = v
		return true, nil
	case "learning_goals":
		var v []domain.Skill
		if err := json.Unmarshal(raw, &v); err != nil {
			return false, err
		}
		if jsonEqual(u.LearningGoals, v) {
			return false, nil
		}
		u.LearningGoals = v
		return true, nil
	}
	return false, fmt.Errorf("unhandled field %q", field)
}

func patchStringPtr(dst **string, raw json.RawMessage) (bool, error) {
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, err
	}
	if (*dst == nil) == (v == nil) && (v == nil || **dst == *v) {
		return false, nil
	}
	*dst = v
	return true, nil
}
