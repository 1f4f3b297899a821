package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the kind of mutation an audit record describes.
type AuditAction string

const (
	AuditActionCreate       AuditAction = "create"
	AuditActionUpdate       AuditAction = "update"
	AuditActionDelete       AuditAction = "delete"
	AuditActionStatusChange AuditAction = "status_change"
	AuditActionRestore      AuditAction = "restore"
)

// ValidAuditAction reports whether a is one of the recognized actions.
func ValidAuditAction(a AuditAction) bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionDelete,
		AuditActionStatusChange, AuditActionRestore:
		return true
	}
	return false
}

// EntityType names a logical entity collection that participates in the
// audit trail. Queries reject names outside the recognized set.
type EntityType string

const (
	EntityUser       EntityType = "User"
	EntityInstructor EntityType = "Instructor"
	EntityListing    EntityType = "Listing"
	EntityEnrollment EntityType = "Enrollment"
	EntityPayment    EntityType = "Payment"
	EntityReview     EntityType = "Review"
)

// AuditableEntityTypes is the recognized set, in display order.
func AuditableEntityTypes() []EntityType {
	return []EntityType{
		EntityUser, EntityInstructor, EntityListing,
		EntityEnrollment, EntityPayment, EntityReview,
	}
}

// ValidEntityType reports whether t is in the recognized set.
func ValidEntityType(t EntityType) bool {
	for _, e := range AuditableEntityTypes() {
		if e == t {
			return true
		}
	}
	return false
}

// AuditRecord is an immutable change-event record. Once written it is never
// updated or deleted by normal operation.
type AuditRecord struct {
	ID         uuid.UUID   `json:"id"`
	EntityType EntityType  `json:"entity_type"`
	DocumentID uuid.UUID   `json:"document_id"`
	Action     AuditAction `json:"action"`

	// Actor identity captured at write time. Survives actor deletion or
	// rename; current actor state is resolved separately at read time.
	ActorID   uuid.UUID `json:"actor_id"`
	ActorRole Role      `json:"actor_role"`
	ActorName string    `json:"actor_name"`

	// Snapshots are schema-less: audited entities vary in shape across
	// collections. PreviousData is nil for create, NewData nil for hard
	// deletes.
	PreviousData json.RawMessage `json:"previous_data,omitempty"`
	NewData      json.RawMessage `json:"new_data,omitempty"`

	// ChangedFields preserves mutation-detection order, not alphabetical.
	// Only meaningful for update.
	ChangedFields []string `json:"changed_fields"`

	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ActorInfo is the subset of current user attributes attached to query
// results, resolved from the users table at read time.
type ActorInfo struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	EmailID string    `json:"email_id,omitempty"`
	Role    Role      `json:"role"`
}

// EnrichedAuditRecord pairs a stored record with the actor's current
// attributes. Actor is nil when the actor no longer exists.
type EnrichedAuditRecord struct {
	AuditRecord
	Actor *ActorInfo `json:"actor,omitempty"`
}

// ActivityEntry is the trimmed record shape served by the recent-activity
// feed: no snapshots, plus a parsed client label.
type ActivityEntry struct {
	ID            uuid.UUID   `json:"id"`
	EntityType    EntityType  `json:"entity_type"`
	DocumentID    uuid.UUID   `json:"document_id"`
	Action        AuditAction `json:"action"`
	ActorID       uuid.UUID   `json:"actor_id"`
	ActorName     string      `json:"actor_name"`
	ActorRole     Role        `json:"actor_role"`
	ChangedFields []string    `json:"changed_fields"`
	Client        string      `json:"client,omitempty"` // e.g. "Chrome 120 / Linux"
	Timestamp     time.Time   `json:"timestamp"`
}

// ActionCount is one bucket of the per-document audit summary.
type ActionCount struct {
	Action       AuditAction `json:"action"`
	Count        int64       `json:"count"`
	LastOccurred time.Time   `json:"last_occurred"`
	UniqueActors int64       `json:"unique_actors"`
}

// FirstAction identifies the earliest-timestamped record for a document.
type FirstAction struct {
	Timestamp time.Time   `json:"timestamp"`
	Action    AuditAction `json:"action"`
	ActorName string      `json:"actor_name"`
}

// AuditSummary is the grouped aggregation over a document's full record set.
type AuditSummary struct {
	Actions      []ActionCount `json:"actions"`
	TotalActions int64         `json:"total_actions"`
	FirstAction  *FirstAction  `json:"first_action,omitempty"`
}
