package dto

import (
	"encoding/json"

	"skills-marketplace-api/internal/core/domain"
)

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CreateListingRequest is the request body for listing creation.
type CreateListingRequest struct {
	Title          string            `json:"title" binding:"required,min=3,max=200"`
	Type           string            `json:"type" binding:"required,max=50"`
	Description    string            `json:"description" binding:"max=5000"`
	ParticipantFee int64             `json:"participant_fee" binding:"gte=0"`
	SeatCapacity   *int              `json:"seat_capacity,omitempty" binding:"omitempty,gt=0"`
	LocationType   string            `json:"location_type" binding:"required"`
	Address        *domain.Address   `json:"address,omitempty"`
	TimeSlots      []domain.TimeSlot `json:"time_slots" binding:"required,min=1"`
	Images         []string          `json:"images,omitempty"`
	FAQs           []domain.FAQ      `json:"faqs,omitempty"`
}

// PatchRequest carries a partial update. Keys are matched against the
// mutable field set; the raw values drive changed-field detection.
type PatchRequest map[string]json.RawMessage

// ChangeStatusRequest moves a listing through its approval workflow.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason,omitempty"`
}

// EnrollRequest is the request body for booking a listing slot.
type EnrollRequest struct {
	ListingID    string          `json:"listing_id" binding:"required,uuid"`
	SelectedDate string          `json:"selected_date" binding:"required,ymd_date"`
	SelectedSlot domain.TimeSlot `json:"selected_slot" binding:"required"`
}

// ProgressRequest updates enrollment progress.
type ProgressRequest struct {
	Progress         *int     `json:"progress,omitempty" binding:"omitempty,gte=0,lte=100"`
	CompletedModules []string `json:"completed_modules,omitempty"`
}

// ReviewRequest is the request body for posting a review.
type ReviewRequest struct {
	Rating int    `json:"rating" binding:"required,gte=1,lte=5"`
	Body   string `json:"body" binding:"max=2000"`
}

// MessageRequest sends a direct message to another user.
type MessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required,uuid"`
	Body       string `json:"body" binding:"required,max=5000"`
}

// DiscussionRequest posts to a listing's discussion thread.
type DiscussionRequest struct {
	Body     string  `json:"body" binding:"required,max=5000"`
	ParentID *string `json:"parent_id,omitempty" binding:"omitempty,uuid"`
}

// PaymentIntentRequest starts a stubbed payment.
type PaymentIntentRequest struct {
	ListingID   *string `json:"listing_id,omitempty" binding:"omitempty,uuid"`
	Amount      int64   `json:"amount" binding:"required,gt=0"`
	PaymentType string  `json:"payment_type" binding:"required"`
}

// PaymentConfirmRequest settles a pending payment.
type PaymentConfirmRequest struct {
	Succeeded bool `json:"succeeded"`
}

// CertificateRequest issues a certificate for a completed enrollment.
type CertificateRequest struct {
	UserID         string `json:"user_id" binding:"required,uuid"`
	ListingID      string `json:"listing_id" binding:"required,uuid"`
	CertificateURL string `json:"certificate_url" binding:"required,safe_url"`
}

// RejectRequest carries the mandatory reason for a rejection.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// CategoryRequest creates a taxonomy node.
type CategoryRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Image string `json:"image,omitempty" binding:"omitempty,safe_url"`
}

// ListResponse wraps a paginated collection.
type ListResponse struct {
	Items      any   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewListResponse computes page bookkeeping for a collection slice.
func NewListResponse(items any, total int64, page, pageSize int) ListResponse {
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return ListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
}
