package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentType distinguishes one-off purchases from subscriptions.
type PaymentType string

const (
	PaymentTypeOneTime      PaymentType = "one_time"
	PaymentTypeSubscription PaymentType = "subscription"
)

// PaymentStatus is the gateway-side lifecycle state.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// PaymentGateway names the processor. Only the stub gateway is wired;
// real gateway integration is an external collaborator.
type PaymentGateway string

const (
	GatewayStub PaymentGateway = "stub"
)

// Payment records a payment intent and its outcome.
type Payment struct {
	ID            uuid.UUID      `json:"id"`
	UserID        uuid.UUID      `json:"user_id"`
	ListingID     *uuid.UUID     `json:"listing_id,omitempty"`
	PaymentType   PaymentType    `json:"payment_type"`
	Amount        int64          `json:"amount"`
	Status        PaymentStatus  `json:"status"`
	Gateway       PaymentGateway `json:"gateway"`
	TransactionID string         `json:"transaction_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsTerminal returns true once the payment reached a final state.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusSuccess || p.Status == PaymentStatusFailed
}
