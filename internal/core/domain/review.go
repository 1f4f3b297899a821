package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is a learner's rating of a listing. The average is rolled up onto
// the listing after every write.
type Review struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ListingID uuid.UUID `json:"listing_id"`
	Rating    int       `json:"rating"` // 1..5
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidRating reports whether r is within the accepted range.
func ValidRating(r int) bool {
	return r >= 1 && r <= 5
}

// Certificate is issued to a learner who completed a listing.
type Certificate struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	ListingID      uuid.UUID `json:"listing_id"`
	CertificateURL string    `json:"certificate_url"`
	IssuedAt       time.Time `json:"issued_at"`
}
