package domain

import (
	"time"

	"github.com/google/uuid"
)

// ListingStatus tracks the publish workflow for a listing.
type ListingStatus string

const (
	ListingStatusDraft           ListingStatus = "draft"
	ListingStatusPendingApproval ListingStatus = "pendingApproval"
	ListingStatusApproved        ListingStatus = "approved"
	ListingStatusRejected        ListingStatus = "rejected"
)

// LocationType distinguishes online sessions from in-person ones.
type LocationType string

const (
	LocationOnline   LocationType = "online"
	LocationSpecific LocationType = "specificLocation"
)

// TimeSlot is a bookable window within a listing's schedule.
type TimeSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// FAQ is a question/answer pair shown on a listing page.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Address locates an in-person listing.
type Address struct {
	Line1    string `json:"line1,omitempty"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	Landmark string `json:"landmark,omitempty"`
}

// Listing is a course/session offering published by an instructor.
type Listing struct {
	ID               uuid.UUID     `json:"id"`
	InstructorID     uuid.UUID     `json:"instructor_id"`
	Title            string        `json:"title"`
	Type             string        `json:"type,omitempty"`
	Description      string        `json:"description"`
	ParticipantFee   int64         `json:"participant_fee"`
	SeatCapacity     *int          `json:"seat_capacity,omitempty"` // nil = unlimited
	LocationType     LocationType  `json:"location_type"`
	Address          *Address      `json:"address,omitempty"`
	TimeSlots        []TimeSlot    `json:"time_slots,omitempty"`
	Images           []string      `json:"images,omitempty"`
	FAQs             []FAQ         `json:"faqs,omitempty"`
	ParticipantCount int           `json:"participant_count"`
	Earning          int64         `json:"earning"`
	AverageRating    float64       `json:"average_rating"`
	Status           ListingStatus `json:"status"`
	RejectionReason  string        `json:"rejection_reason,omitempty"`
	IsDeleted        bool          `json:"is_deleted"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// HasSeatsAvailable reports whether another participant can enroll.
// Online listings are unbounded.
func (l *Listing) HasSeatsAvailable() bool {
	if l.LocationType == LocationOnline || l.SeatCapacity == nil {
		return true
	}
	return l.ParticipantCount < *l.SeatCapacity
}

// IsOwnedBy reports whether the given instructor published this listing.
func (l *Listing) IsOwnedBy(instructorID uuid.UUID) bool {
	return l.InstructorID == instructorID
}
