package ports

import (
	"context"
	"encoding/json"
	"time"

	"skills-marketplace-api/internal/core/domain"

	"github.com/google/uuid"
)

// Caller identifies the authenticated principal for a request.
type Caller struct {
	ID   uuid.UUID
	Role domain.Role
	Name string
}

// RequestMeta carries best-effort request provenance into audit records.
// Zero values are recorded as empty fields rather than failing the write.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// AuditEntry is the input to the audit recorder.
type AuditEntry struct {
	EntityType    domain.EntityType
	DocumentID    uuid.UUID
	Action        domain.AuditAction
	Actor         Caller
	PreviousData  json.RawMessage
	NewData       json.RawMessage
	ChangedFields []string
	Meta          *RequestMeta
}

// AuditRecorder appends change events to the audit ledger. Record never
// fails the caller: persistence errors are swallowed after logging and nil
// is returned, because the business mutation has already committed.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) *domain.AuditRecord
}

// Pagination is the page bookkeeping attached to audit query results.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// AuditQueryResult is the common envelope for paginated audit reads.
// DocumentInfo carries the current entity summary on document-scoped reads
// and is absent on actor and system scopes.
type AuditQueryResult struct {
	Records      []domain.EnrichedAuditRecord `json:"records"`
	Pagination   Pagination                   `json:"pagination"`
	Filters      AuditListParams              `json:"filters"`
	DocumentInfo map[string]any               `json:"document_info,omitempty"`
}

// AuditQueryOptions are the caller-tunable knobs shared by the paginated
// audit reads. DateFrom/DateTo are inclusive; end-of-day widening of DateTo
// is a service-level configuration flag, not inferred per call.
type AuditQueryOptions struct {
	Action     *domain.AuditAction
	ActorRole  *domain.Role
	EntityType *domain.EntityType
	ActorID    *uuid.UUID
	DocumentID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	Limit      int
}

// AuditFeedOptions select the recent-activity slice.
type AuditFeedOptions struct {
	EntityTypes []domain.EntityType
	Actions     []domain.AuditAction
	Limit       int
}

// AuditQueryService is the read side of the audit subsystem.
type AuditQueryService interface {
	// ByDocument reconstructs a single entity's history.
	ByDocument(ctx context.Context, entityType domain.EntityType, documentID uuid.UUID, opts AuditQueryOptions) (*AuditQueryResult, error)
	// ByActor lists everything one user did, across collections.
	ByActor(ctx context.Context, actorID uuid.UUID, opts AuditQueryOptions) (*AuditQueryResult, error)
	// System is the unrestricted cross-collection query for privileged
	// callers.
	System(ctx context.Context, opts AuditQueryOptions) (*AuditQueryResult, error)
	// RecentActivity returns a fixed-size newest slice with trimmed fields.
	RecentActivity(ctx context.Context, opts AuditFeedOptions) ([]domain.ActivityEntry, error)
	// Summary aggregates a document's record set per action.
	Summary(ctx context.Context, entityType domain.EntityType, documentID uuid.UUID) (*domain.AuditSummary, error)
}

// EntityAccessor is the capability an auditable collection registers with
// the audit subsystem: existence checks, a display description for query
// responses, and the owning user for permission decisions.
type EntityAccessor interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Describe(ctx context.Context, id uuid.UUID) (map[string]any, error)
	OwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// AuditAccessPolicy decides who may read which slice of the audit ledger.
// A denial is returned as a distinct error so handlers can tell
// access-denied from not-found.
type AuditAccessPolicy interface {
	// CanView gates one document's history.
	CanView(ctx context.Context, caller Caller, entityType domain.EntityType, documentID uuid.UUID) error
	// CanViewActor gates a user's activity trail. Self-view is allowed.
	CanViewActor(caller Caller, actorID uuid.UUID) error
	// CanViewSystem gates the cross-collection queries and the feed.
	CanViewSystem(caller Caller) error
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Role   domain.Role
	Name   string
}

// TokenService handles JWT issuance and validation.
type TokenService interface {
	Generate(userID uuid.UUID, role domain.Role, name string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// HashService handles password hashing.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// AuthService is the thin session collaborator: credential check + token.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, time.Time, error)
}

// --- Business services ---

// ListingInput is the validated mutation payload for listings. Fields is the
// raw payload used for changed-field detection in payload order.
type ListingInput struct {
	Title          string
	Type           string
	Description    string
	ParticipantFee int64
	SeatCapacity   *int
	LocationType   domain.LocationType
	Address        *domain.Address
	TimeSlots      []domain.TimeSlot
	Images         []string
	FAQs           []domain.FAQ
}

// ListingService implements the listing lifecycle with audit hooks.
type ListingService interface {
	Create(ctx context.Context, caller Caller, in ListingInput, meta *RequestMeta) (*domain.Listing, error)
	Update(ctx context.Context, caller Caller, id uuid.UUID, patch map[string]json.RawMessage, meta *RequestMeta) (*domain.Listing, error)
	Delete(ctx context.Context, caller Caller, id uuid.UUID, meta *RequestMeta) error
	Restore(ctx context.Context, caller Caller, id uuid.UUID, meta *RequestMeta) (*domain.Listing, error)
	ChangeStatus(ctx context.Context, caller Caller, id uuid.UUID, status domain.ListingStatus, reason string, meta *RequestMeta) (*domain.Listing, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	List(ctx context.Context, params ListingListParams) ([]domain.Listing, int64, error)
}

// EnrollRequest is the validated input for a booking.
type EnrollRequest struct {
	ListingID    uuid.UUID
	SelectedDate string
	SelectedSlot domain.TimeSlot
}

// EnrichedEnrollment attaches the related user and listing to an enrollment
// row for list responses.
type EnrichedEnrollment struct {
	domain.Enrollment
	User    *domain.User    `json:"user,omitempty"`
	Listing *domain.Listing `json:"listing,omitempty"`
}

// EnrollmentService implements booking, progress, and cancellation.
type EnrollmentService interface {
	Enroll(ctx context.Context, caller Caller, req EnrollRequest, meta *RequestMeta) (*domain.Enrollment, error)
	List(ctx context.Context, params EnrollmentListParams) ([]EnrichedEnrollment, int64, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params EnrollmentListParams) ([]EnrichedEnrollment, *domain.EnrollmentStatusCounts, error)
	Participants(ctx context.Context, instructorID uuid.UUID, page, pageSize int) ([]domain.User, int64, error)
	UpdateProgress(ctx context.Context, caller Caller, id uuid.UUID, progress *int, completedModules []string) (*domain.Enrollment, error)
	Cancel(ctx context.Context, caller Caller, id uuid.UUID, meta *RequestMeta) error
}

// ReviewService implements reviews with the average-rating rollup.
type ReviewService interface {
	Add(ctx context.Context, caller Caller, listingID uuid.UUID, rating int, body string, meta *RequestMeta) (*domain.Review, error)
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]domain.Review, error)
}

// MessageService implements direct messages and listing discussions.
type MessageService interface {
	Send(ctx context.Context, caller Caller, receiverID uuid.UUID, body string) (*domain.Message, error)
	Conversation(ctx context.Context, caller Caller, otherID uuid.UUID) ([]domain.Message, error)
	PostDiscussion(ctx context.Context, caller Caller, listingID uuid.UUID, body string, parentID *uuid.UUID) (*domain.Discussion, error)
	ListDiscussions(ctx context.Context, listingID uuid.UUID) ([]domain.Discussion, error)
}

// PaymentIntent is the stub client payload returned on intent creation.
type PaymentIntent struct {
	Payment       *domain.Payment `json:"payment"`
	ClientPayload map[string]any  `json:"client_payload"`
}

// PaymentService implements the stubbed payment flow.
type PaymentService interface {
	CreateIntent(ctx context.Context, caller Caller, listingID *uuid.UUID, amount int64, paymentType domain.PaymentType, meta *RequestMeta) (*PaymentIntent, error)
	Confirm(ctx context.Context, caller Caller, paymentID uuid.UUID, succeeded bool, meta *RequestMeta) (*domain.Payment, error)
}

// CertificateService issues certificates against enrollment progress.
type CertificateService interface {
	Issue(ctx context.Context, caller Caller, userID, listingID uuid.UUID, certificateURL string, meta *RequestMeta) (*domain.Certificate, error)
}

// UserService implements profile reads and audited profile mutations.
type UserService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, caller Caller, id uuid.UUID, patch map[string]json.RawMessage, meta *RequestMeta) (*domain.User, error)
	Delete(ctx context.Context, caller Caller, id uuid.UUID, meta *RequestMeta) error
}

// InstructorService implements the instructor approval workflow.
type InstructorService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Instructor, error)
	Approve(ctx context.Context, caller Caller, id uuid.UUID, meta *RequestMeta) (*domain.Instructor, error)
	Reject(ctx context.Context, caller Caller, id uuid.UUID, reason string, meta *RequestMeta) (*domain.Instructor, error)
}

// CategoryService implements taxonomy CRUD and the tree view.
type CategoryService interface {
	CreateCategory(ctx context.Context, name, image string) (*domain.Category, error)
	CreateSubCategory(ctx context.Context, categoryID uuid.UUID, name, image string) (*domain.SubCategory, error)
	CreateTopic(ctx context.Context, subCategoryID uuid.UUID, name, image string) (*domain.Topic, error)
	Tree(ctx context.Context) ([]domain.CategoryTree, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// DashboardService exposes admin aggregates.
type DashboardService interface {
	Stats(ctx context.Context) (*PlatformStats, error)
}
