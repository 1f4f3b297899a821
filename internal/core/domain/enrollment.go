package domain

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus tracks the learner's position in a booking lifecycle.
type EnrollmentStatus string

const (
	EnrollmentStatusPending   EnrollmentStatus = "pending"
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
)

// Enrollment is a learner's booking of a listing slot.
type Enrollment struct {
	ID                uuid.UUID        `json:"id"`
	UserID            uuid.UUID        `json:"user_id"`
	ListingID         uuid.UUID        `json:"listing_id"`
	InstructorID      uuid.UUID        `json:"instructor_id"`
	SeatNumber        *int             `json:"seat_number,omitempty"` // nil for online sessions
	SelectedDate      string           `json:"selected_date"`
	SelectedSlot      TimeSlot         `json:"selected_slot"`
	Status            EnrollmentStatus `json:"status"`
	Progress          int              `json:"progress"` // 0..100
	CompletedModules  []string         `json:"completed_modules,omitempty"`
	CertificateIssued bool             `json:"certificate_issued"`
	IsArchived        bool             `json:"is_archived"`
	EnrolledAt        time.Time        `json:"enrolled_at"`
	LastAccessedAt    *time.Time       `json:"last_accessed_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// CertificateEligible reports whether the learner has progressed far enough
// for a certificate to be issued.
func (e *Enrollment) CertificateEligible() bool {
	return e.Progress >= 90
}

// EnrollmentStatusCounts aggregates a user's enrollments per status.
type EnrollmentStatusCounts struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
}
