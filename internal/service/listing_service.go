package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// listingPatchFields is the recognized patch surface, in detection order.
// Changed-field lists follow this order, not alphabetical.
var listingPatchFields = []string{
	"title", "type", "description", "participant_fee", "seat_capacity",
	"location_type", "address", "time_slots", "images", "faqs",
}

// ListingServiceImpl implements ports.ListingService.
type ListingServiceImpl struct {
	listingRepo ports.ListingRepository
	audit       ports.AuditRecorder
	log         zerolog.Logger
}

// NewListingService creates a new ListingServiceImpl.
func NewListingService(listingRepo ports.ListingRepository, audit ports.AuditRecorder, log zerolog.Logger) *ListingServiceImpl {
	return &ListingServiceImpl{
		listingRepo: listingRepo,
		audit:       audit,
		log:         log,
	}
}

// Create publishes a new listing into the approval workflow.
func (s *ListingServiceImpl) Create(ctx context.Context, caller ports.Caller, in ports.ListingInput, meta *ports.RequestMeta) (*domain.Listing, error) {
	if caller.Role != domain.RoleInstructor && caller.Role != domain.RoleAdmin {
		return nil, apperror.ErrForbidden("only instructors can create listings")
	}
	if in.Title == "" {
		return nil, apperror.Validation("title is required")
	}
	if in.LocationType != domain.LocationOnline && in.LocationType != domain.LocationSpecific {
		return nil, apperror.Validation("invalid location type")
	}
	if in.LocationType == domain.LocationSpecific && in.SeatCapacity != nil && *in.SeatCapacity <= 0 {
		return nil, apperror.Validation("seat capacity must be positive")
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		ID:             uuid.New(),
		InstructorID:   caller.ID,
		Title:          in.Title,
		Type:           in.Type,
		Description:    in.Description,
		ParticipantFee: in.ParticipantFee,
		SeatCapacity:   in.SeatCapacity,
		LocationType:   in.LocationType,
		Address:        in.Address,
		TimeSlots:      in.TimeSlots,
		Images:         in.Images,
		FAQs:           in.FAQs,
		Status:         domain.ListingStatusPendingApproval,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create listing: %w", err))
	}

	snapshot, _ := json.Marshal(listing)
	s.audit.Record(ctx, ports.AuditEntry{
		EntityType: domain.EntityListing,
		DocumentID: listing.ID,
		Action:     domain.AuditActionCreate,
		Actor:      caller,
		NewData:    snapshot,
		Meta:       meta,
	})

	return listing, nil
}

// Update applies a partial mutation and records the changed fields.
func (s *ListingServiceImpl) Update(ctx context.Context, caller ports.Caller, id uuid.UUID, patch map[string]json.RawMessage, meta *ports.RequestMeta) (*domain.Listing, error) {
	listing, err := s.getOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if listing.IsDeleted {
		return nil, apperror.ErrListingDeleted()
	}

	previous, _ := json.Marshal(listing)

	changed, err := applyListingPatch(listing, patch)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return listing, nil
	}

	listing.UpdatedAt = time.Now().UTC()
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("update listing: %w", err))
	}

	snapshot, _ := json.Marshal(listing)
	s.audit.Record(ctx, ports.AuditEntry{
		EntityType:    domain.EntityListing,
		DocumentID:    listing.ID,
		Action:        domain.AuditActionUpdate,
		Actor:         caller,
		PreviousData:  previous,
		NewData:       snapshot,
		ChangedFields: changed,
		Meta:          meta,
	})

	return listing, nil
}

// Delete soft-deletes a listing. The row survives for audit reads.
func (s *ListingServiceImpl) Delete(ctx context.Context, caller ports.Caller, id uuid.UUID, meta *ports.RequestMeta) error {
	listing, err := s.getOwned(ctx, caller, id)
	if err != nil {
		return err
	}
	if listing.IsDeleted {
		return apperror.ErrListingDeleted()
	}

	previous, _ := json.Marshal(listing)
	listing.IsDeleted = true
	listing.UpdatedAt = time.Now().UTC()

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("delete listing: %w", err))
	}

	s.audit.Record(ctx, ports.AuditEntry{
		EntityType:   domain.EntityListing,
		DocumentID:   listing.ID,
		Action:       domain.AuditActionDelete,
		Actor:        caller,
		PreviousData: previous,
		Meta:         meta,
	})

	return nil
}

// Restore undoes a soft delete.
func (s *ListingServiceImpl) Restore(ctx context.Context, caller ports.Caller, id uuid.UUID, meta *ports.RequestMeta) (*domain.Listing, error) {
	listing, err := s.getOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !listing.IsDeleted {
		return listing, nil
	}

	listing.IsDeleted = false
	listing.UpdatedAt = time.Now().UTC()

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("restore listing: %w", err))
	}

	snapshot, _ := json.Marshal(listing)
	s.audit.Record(ctx, ports.AuditEntry{
		EntityType: domain.EntityListing,
		DocumentID: listing.ID,
		Action:     domain.AuditActionRestore,
		Actor:      caller,
		NewData:    snapshot,
		Meta:       meta,
	})

	return listing, nil
}

// validListingTransitions encodes the approval workflow.
var validListingTransitions = map[domain.ListingStatus][]domain.ListingStatus{
	domain.ListingStatusDraft:           {domain.ListingStatusPendingApproval},
	domain.ListingStatusPendingApproval: {domain.ListingStatusApproved, domain.ListingStatusRejected},
	domain.ListingStatusRejected:        {domain.ListingStatusPendingApproval},
}

// ChangeStatus moves a listing through the approval workflow. Approval and
// rejection are admin operations.
func (s *ListingServiceImpl) ChangeStatus(ctx context.Context, caller ports.Caller, id uuid.UUID, status domain.ListingStatus, reason string, meta *ports.RequestMeta) (*domain.Listing, error) {
	if status == domain.ListingStatusApproved || status == domain.ListingStatusRejected {
		if caller.Role != domain.RoleAdmin {
			return nil, apperror.ErrForbidden("only admins can approve or reject listings")
		}
	}

	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get listing: %w", err))
	}
	if listing == nil {
		return nil, apperror.ErrNotFound("listing")
	}

	allowed := false
	for _, next := range validListingTransitions[listing.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperror.ErrInvalidStatusTransition(string(listing.Status), string(status))
	}

	previous, _ := json.Marshal(listing)
	from := listing.Status
	listing.Status = status
	listing.RejectionReason = ""
	if status == domain.ListingStatusRejected {
		listing.RejectionReason = reason
	}
	listing.UpdatedAt = time.Now().UTC()

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("update listing status: %w", err))
	}

	snapshot, _ := json.Marshal(listing)
	s.audit.Record(ctx, ports.AuditEntry{
		EntityType:    domain.EntityListing,
		DocumentID:    listing.ID,
		Action:        domain.AuditActionStatusChange,
		Actor:         caller,
		PreviousData:  previous,
		NewData:       snapshot,
		ChangedFields: []string{"status"},
		Meta:          meta,
	})

	s.log.Info().
		Str("listing_id", listing.ID.String()).
		Str("from", string(from)).
		Str("to", string(status)).
		Msg("listing status changed")

	return listing, nil
}

// Get returns a listing by id.
func (s *ListingServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get listing: %w", err))
	}
	if listing == nil || listing.IsDeleted {
		return nil, apperror.ErrNotFound("listing")
	}
	return listing, nil
}

// List returns a filtered page of listings plus the total match count.
func (s *ListingServiceImpl) List(ctx context.Context, params ports.ListingListParams) ([]domain.Listing, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 20
	}
	listings, total, err := s.listingRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("list listings: %w", err))
	}
	return listings, total, nil
}

// getOwned loads a listing and enforces instructor ownership. Admins bypass
// the ownership check.
func (s *ListingServiceImpl) getOwned(ctx context.Context, caller ports.Caller, id uuid.UUID) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get listing: %w", err))
	}
	if listing == nil {
		return nil, apperror.ErrNotFound("listing")
	}
	if caller.Role != domain.RoleAdmin && !listing.IsOwnedBy(caller.ID) {
		return nil, apperror.ErrForbidden("listing belongs to another instructor")
	}
	return listing, nil
}

// applyListingPatch mutates l in place and returns the names of fields whose
// values actually changed, in detection order. Unknown patch keys are
// rejected.
func applyListingPatch(l *domain.Listing, patch map[string]json.RawMessage) ([]string, error) {
	for key := range patch {
		known := false
		for _, f := range listingPatchFields {
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
	for _, field := range listingPatchFields {
		raw, ok := patch[field]
		if !ok {
			continue
		}
		didChange, err := applyListingField(l, field, raw)
		if err != nil {
			return nil, apperror.Validation(fmt.Sprintf("invalid value for %s", field))
		}
		if didChange {
			changed = append(changed, field)
		}
	}
	return changed, nil
}

func applyListingField(l *domain.Listing, field string, raw json.RawMessage) (bool, error) {
	switch field {
	case "title":
		return patchString(&l.Title, raw)
	case "type":
		return patchString(&l.Type, raw)
	case "description":
		return patchString(&l.Description, raw)
	case "participant_fee":
		var v int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return false, err
		}
		if l.ParticipantFee == v {
			return false, nil
		}
		l.ParticipantFee = v
		return true, nil
	case "seat_capacity":
		var v *int
		if err := json.Unmarshal(raw, &v); err != nil {
			return false, err
		}
		if (l.SeatCapacity == nil) == (v == nil) && (v == nil || *l.SeatCapacity == *v) {
			return false, nil
		}
		l.SeatCapacity = v
		return true, nil
	case "location_type":
		var v domain.LocationType
		if err := json.Unmarshal(raw, &v); err != nil {
			return false, err
		}
		if v != domain.LocationOnline && v != domain.LocationSpecific {
			return false, fmt.Errorf("unknown location type %q", v)
		}
		if l.LocationType == v {
			return false, nil
		}
		l.LocationType = v
		return true, nil
	case "address":
		var v *domain.Address
		if err := json.Unmarshal(raw, &v); err != nil {
			return false, err
		}
		if jsonEqual(l.Address, v) {
			return false, nil
		}
		l.Address = v
		return true, nil
	case "time_slots":
		var v []domain.TimeSlot
		if err := json.Unmarshal(raw, &v); err != nil {
			return false, err
		}
		if jsonEqual(l.TimeSlots, v) {
			return false, nil
		}
		l.TimeSlots = v
		return true, nil
	case "images":
		var v []string
		if err := json.Unmarshal(raw, &v); err != nil {
			return false, err
		}
		if jsonEqual(l.Images, v) {
			return false, nil
		}
		l.Images = v
		return true, nil
	case "faqs":
		var v []domain.FAQ
		if err := json.Unmarshal(raw, &v); err != nil {
			return false, err
		}
		if jsonEqual(l.FAQs, v) {
			return false, nil
		}
		l.FAQs = v
		return true, nil
	}
	return false, fmt.Errorf("unhandled field %q", field)
}

func patchString(dst *string, raw json.RawMessage) (bool, error) {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, err
	}
	if *dst == v {
		return false, nil
	}
	*dst = v
	return true, nil
}

// jsonEqual compares two values by their canonical JSON encoding, which is
// sufficient for patch change detection.
func jsonEqual(a, b any) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}
