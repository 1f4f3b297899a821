package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidEntityType(t *testing.T) {
	tests := []struct {
		name string
		et   EntityType
		want bool
	}{
		{"listing", EntityListing, true},
		{"user", EntityUser, true},
		{"instructor", EntityInstructor, true},
		{"enrollment", EntityEnrollment, true},
		{"payment", EntityPayment, true},
		{"review", EntityReview, true},
		{"unknown", EntityType("Certificate"), false},
		{"empty", EntityType(""), false},
		{"lowercase", EntityType("listing"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidEntityType(tt.et))
		})
	}
}

func TestValidAuditAction(t *testing.T) {
	for _, a := range []AuditAction{
		AuditActionCreate, AuditActionUpdate, AuditActionDelete,
		AuditActionStatusChange, AuditActionRestore,
	} {
		assert.True(t, ValidAuditAction(a), string(a))
	}
	assert.False(t, ValidAuditAction(AuditAction("archive")))
	assert.False(t, ValidAuditAction(AuditAction("")))
}

func TestUser_DisplayName(t *testing.T) {
	email := "learner@example.com"
	mobile := "9876543210"

	id := uuid.New()
	tests := []struct {
		name string
		user User
		want string
	}{
		{"name wins", User{ID: id, Name: "Asha", EmailID: &email}, "Asha"},
		{"email fallback", User{ID: id, EmailID: &email}, email},
		{"mobile fallback", User{ID: id, MobileNo: &mobile}, mobile},
		{"id last resort", User{ID: id}, id.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}

func TestUser_IsActive(t *testing.T) {
	assert.True(t, (&User{Status: UserStatusActive}).IsActive())
	assert.False(t, (&User{Status: UserStatusInactive}).IsActive())
	assert.False(t, (&User{Status: UserStatusActive, IsDeleted: true}).IsActive())
}

func TestListing_HasSeatsAvailable(t *testing.T) {
	cap3 := 3

	tests := []struct {
		name    string
		listing Listing
		want    bool
	}{
		{"online unlimited", Listing{LocationType: LocationOnline, SeatCapacity: &cap3, ParticipantCount: 10}, true},
		{"no capacity set", Listing{LocationType: LocationSpecific}, true},
		{"seats left", Listing{LocationType: LocationSpecific, SeatCapacity: &cap3, ParticipantCount: 2}, true},
		{"full", Listing{LocationType: LocationSpecific, SeatCapacity: &cap3, ParticipantCount: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.listing.HasSeatsAvailable())
		})
	}
}

func TestEnrollment_CertificateEligible(t *testing.T) {
	assert.False(t, (&Enrollment{Progress: 89}).CertificateEligible())
	assert.True(t, (&Enrollment{Progress: 90}).CertificateEligible())
	assert.True(t, (&Enrollment{Progress: 100}).CertificateEligible())
}

func TestValidRating(t *testing.T) {
	assert.False(t, ValidRating(0))
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(6))
}

func TestPayment_IsTerminal(t *testing.T) {
	assert.False(t, (&Payment{Status: PaymentStatusPending}).IsTerminal())
	assert.True(t, (&Payment{Status: PaymentStatusSuccess}).IsTerminal())
	assert.True(t, (&Payment{Status: PaymentStatusFailed}).IsTerminal())
}
