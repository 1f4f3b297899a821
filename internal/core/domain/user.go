package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the platform-wide actor role.
type Role string

const (
	RoleLearner    Role = "learner"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// ValidRole reports whether r is a recognized role.
func ValidRole(r Role) bool {
	return r == RoleLearner || r == RoleInstructor || r == RoleAdmin
}

// UserStatus represents the state of a user account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// Skill is a tagged skill or learning goal attached to a user profile.
type Skill struct {
	Name       string `json:"name"`
	Code       string `json:"code,omitempty"`
	ParentCode string `json:"parent_code,omitempty"`
}

// User represents a platform account (learner or admin).
type User struct {
	ID            uuid.UUID  `json:"id"`
	Role          Role       `json:"role"`
	Name          string     `json:"name"`
	MobileNo      *string    `json:"mobile_no,omitempty"`
	EmailID       *string    `json:"email_id,omitempty"`
	PasswordHash  string     `json:"-"`
	ProfileImage  string     `json:"profile_image,omitempty"`
	Bio           string     `json:"bio,omitempty"`
	SchoolName    string     `json:"school_name,omitempty"`
	Grade         string     `json:"grade,omitempty"`
	Skills        []Skill    `json:"skills,omitempty"`
	LearningGoals []Skill    `json:"learning_goals,omitempty"`
	Status        UserStatus `json:"status"`
	IsDeleted     bool       `json:"is_deleted"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsActive returns true if the account can authenticate and act.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive && !u.IsDeleted
}

// DisplayName returns the best available identifier for audit snapshots:
// name, then email, then mobile number.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.EmailID != nil && *u.EmailID != "" {
		return *u.EmailID
	}
	if u.MobileNo != nil && *u.MobileNo != "" {
		return *u.MobileNo
	}
	return u.ID.String()
}
