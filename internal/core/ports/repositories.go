package ports

import (
	"context"
	"time"

	"skills-marketplace-api/internal/core/domain"

	"github.com/google/uuid"
)

// AuditRepository defines persistence for the append-only audit ledger.
// Records are inserted once and never updated or deleted.
type AuditRepository interface {
	Create(ctx context.Context, rec *domain.AuditRecord) error
	// List returns one page of records matching the filter, newest first,
	// plus the total match count.
	List(ctx context.Context, params AuditListParams) ([]domain.AuditRecord, int64, error)
	// Recent returns the most recent records across the ledger without
	// pagination bookkeeping.
	Recent(ctx context.Context, params AuditFeedParams) ([]domain.AuditRecord, error)
	// Summary computes the per-action aggregation for one document in a
	// single grouped query.
	Summary(ctx context.Context, entityType domain.EntityType, documentID uuid.UUID) (*domain.AuditSummary, error)
}

// AuditListParams holds filter + pagination for audit queries. Nil pointer
// fields are omitted from the filter.
type AuditListParams struct {
	EntityType *domain.EntityType  `json:"entity_type,omitempty"`
	DocumentID *uuid.UUID          `json:"document_id,omitempty"`
	Action     *domain.AuditAction `json:"action,omitempty"`
	ActorID    *uuid.UUID          `json:"actor_id,omitempty"`
	ActorRole  *domain.Role        `json:"actor_role,omitempty"`
	From       *time.Time          `json:"from,omitempty"` // inclusive
	To         *time.Time          `json:"to,omitempty"`   // inclusive
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
}

// AuditFeedParams selects the recent-activity slice. Empty slices mean "all".
type AuditFeedParams struct {
	EntityTypes []domain.EntityType
	Actions     []domain.AuditAction
	Limit       int
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByIDs batch-fetches users for actor enrichment; missing ids are
	// silently absent from the result.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// InstructorRepository defines persistence operations for instructors.
type InstructorRepository interface {
	Create(ctx context.Context, ins *domain.Instructor) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Instructor, error)
	Update(ctx context.Context, ins *domain.Instructor) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InstructorStatus, reason string) error
}

// ListingListParams holds filter + pagination for listing queries.
type ListingListParams struct {
	InstructorID *uuid.UUID
	Status       *domain.ListingStatus
	Type         *string
	Search       string // matched against title and description
	IsDeleted    *bool  // nil = both
	Page         int
	PageSize     int
}

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	Create(ctx context.Context, l *domain.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	Update(ctx context.Context, l *domain.Listing) error
	List(ctx context.Context, params ListingListParams) ([]domain.Listing, int64, error)
	// AdjustParticipantCount atomically increments (or decrements) the
	// participant counter.
	AdjustParticipantCount(ctx context.Context, id uuid.UUID, delta int) error
	UpdateAverageRating(ctx context.Context, id uuid.UUID, avg float64) error
}

// EnrollmentListParams holds filter + pagination for enrollment queries.
type EnrollmentListParams struct {
	UserID       *uuid.UUID
	InstructorID *uuid.UUID
	ListingID    *uuid.UUID
	Status       *domain.EnrollmentStatus
	Page         int
	PageSize     int
}

// EnrollmentRepository defines persistence operations for enrollments.
type EnrollmentRepository interface {
	Create(ctx context.Context, e *domain.Enrollment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error)
	// GetBySlot detects duplicate bookings of the same slot on the same day.
	GetBySlot(ctx context.Context, userID, listingID uuid.UUID, date string, slot domain.TimeSlot) (*domain.Enrollment, error)
	// GetByUserAndListing is used for certificate eligibility checks.
	GetByUserAndListing(ctx context.Context, userID, listingID uuid.UUID) (*domain.Enrollment, error)
	List(ctx context.Context, params EnrollmentListParams) ([]domain.Enrollment, int64, error)
	Update(ctx context.Context, e *domain.Enrollment) error
	Delete(ctx context.Context, id uuid.UUID) error
	StatusCounts(ctx context.Context, userID uuid.UUID) (*domain.EnrollmentStatusCounts, error)
	// DistinctParticipantIDs lists the unique learners enrolled with an
	// instructor, for the participant roster.
	DistinctParticipantIDs(ctx context.Context, instructorID uuid.UUID) ([]uuid.UUID, error)
}

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.Review, error)
	// AverageForListing returns the mean rating and review count.
	AverageForListing(ctx context.Context, listingID uuid.UUID) (float64, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
}

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	// Conversation returns both directions of traffic between two users,
	// oldest first.
	Conversation(ctx context.Context, a, b uuid.UUID) ([]domain.Message, error)
	// MarkRead flags all messages from sender to receiver as read.
	MarkRead(ctx context.Context, receiverID, senderID uuid.UUID) error
}

// DiscussionRepository defines persistence operations for listing discussions.
type DiscussionRepository interface {
	Create(ctx context.Context, d *domain.Discussion) error
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.Discussion, error)
}

// PaymentRepository defines persistence operations for payments.
type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error)
}

// CertificateRepository defines persistence operations for certificates.
type CertificateRepository interface {
	Create(ctx context.Context, c *domain.Certificate) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Certificate, error)
}

// CategoryRepository defines persistence for the three-level taxonomy.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	SoftDeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context, includeDeleted bool) ([]domain.Category, error)
	SlugExists(ctx context.Context, level string, slug string) (bool, error)

	CreateSubCategory(ctx context.Context, s *domain.SubCategory) error
	ListSubCategories(ctx context.Context, categoryID *uuid.UUID) ([]domain.SubCategory, error)

	CreateTopic(ctx context.Context, t *domain.Topic) error
	ListTopics(ctx context.Context, subCategoryID *uuid.UUID) ([]domain.Topic, error)
}

// PlatformStats holds the admin dashboard aggregates.
type PlatformStats struct {
	TotalUsers           int64 `json:"total_users"`
	TotalInstructors     int64 `json:"total_instructors"`
	PendingInstructors   int64 `json:"pending_instructors"`
	ApprovedInstructors  int64 `json:"approved_instructors"`
	TotalListings        int64 `json:"total_listings"`
	PendingListings      int64 `json:"pending_listings"`
	ApprovedListings     int64 `json:"approved_listings"`
	RejectedListings     int64 `json:"rejected_listings"`
	TotalEnrollments     int64 `json:"total_enrollments"`
	CompletedEnrollments int64 `json:"completed_enrollments"`
}

// StatsRepository computes platform-wide aggregates for the admin dashboard.
type StatsRepository interface {
	PlatformStats(ctx context.Context) (*PlatformStats, error)
}
