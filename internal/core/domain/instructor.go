package domain

import (
	"time"

	"github.com/google/uuid"
)

// InstructorStatus tracks the onboarding / approval workflow.
type InstructorStatus string

const (
	InstructorStatusInitiated       InstructorStatus = "initiated"
	InstructorStatusPendingApproval InstructorStatus = "pendingApproval"
	InstructorStatusApproved        InstructorStatus = "approved"
	InstructorStatusRejected        InstructorStatus = "rejected"
)

// InstructorCategory classifies the kind of teaching entity.
type InstructorCategory string

const (
	InstructorCategoryTutor          InstructorCategory = "tutor"
	InstructorCategoryClasses        InstructorCategory = "classes"
	InstructorCategoryInstitute      InstructorCategory = "institute"
	InstructorCategoryEventOrganizer InstructorCategory = "eventOrganizer"
)

// SocialLinks holds optional social/profile URLs.
type SocialLinks struct {
	YouTube   string `json:"youtube,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Website   string `json:"website,omitempty"`
}

// Instructor represents a teaching account with its approval workflow state.
type Instructor struct {
	ID              uuid.UUID          `json:"id"`
	Name            string             `json:"name"`
	Title           string             `json:"title,omitempty"`
	MobileNo        *string            `json:"mobile_no,omitempty"`
	EmailID         *string            `json:"email_id,omitempty"`
	Category        InstructorCategory `json:"category,omitempty"`
	Bio             string             `json:"bio,omitempty"`
	ProfileImage    string             `json:"profile_image,omitempty"`
	ExperienceYears int                `json:"experience_years"`
	PricePerHour    int64              `json:"price_per_hour"`
	Specialties     []Skill            `json:"specialties,omitempty"`
	SocialLinks     SocialLinks        `json:"social_links"`
	KYCCompleted    bool               `json:"kyc_completed"`
	Status          InstructorStatus   `json:"status"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// IsApproved returns true once the admin approval workflow has completed.
func (i *Instructor) IsApproved() bool {
	return i.Status == InstructorStatusApproved
}
