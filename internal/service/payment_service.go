package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentServiceImpl implements ports.PaymentService against the stub
// gateway. No real processor is contacted; the confirm call decides the
// outcome.
type PaymentServiceImpl struct {
	paymentRepo ports.PaymentRepository
	listingRepo ports.ListingRepository
	audit       ports.AuditRecorder
	log         zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	paymentRepo ports.PaymentRepository,
	listingRepo ports.ListingRepository,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		paymentRepo: paymentRepo,
		listingRepo: listingRepo,
		audit:       audit,
		log:         log,
	}
}

// CreateIntent opens a pending payment and returns the stub client payload.
func (s *PaymentServiceImpl) CreateIntent(ctx context.Context, caller ports.Caller, listingID *uuid.UUID, amount int64, paymentType domain.PaymentType, meta *ports.RequestMeta) (*ports.PaymentIntent, error) {
	if amount <= 0 {
		return nil, apperror.Validation("amount must be positive")
	}
	if paymentType != domain.PaymentTypeOneTime && paymentType != domain.PaymentTypeSubscription {
		return nil, apperror.Validation("invalid payment type")
	}

	if listingID != nil {
		listing, err := s.listingRepo.GetByID(ctx, *listingID)
		if err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("get listing: %w", err))
		}
		if listing == nil || listing.IsDeleted {
			return nil, apperror.ErrNotFound("listing")
		}
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:            uuid.New(),
		UserID:        caller.ID,
		ListingID:     listingID,
		PaymentType:   paymentType,
		Amount:        amount,
		Status:        domain.PaymentStatusPending,
		Gateway:       domain.GatewayStub,
		TransactionID: fmt.Sprintf("stub_%d", now.UnixNano()),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create payment: %w", err))
	}

	snapshot, _ := json.Marshal(payment)
	s.audit.Record(ctx, ports.AuditEntry{
		EntityType: domain.EntityPayment,
		DocumentID: payment.ID,
		Action:     domain.AuditActionCreate,
		Actor:      caller,
		NewData:    snapshot,
		Meta:       meta,
	})

	return &ports.PaymentIntent{
		Payment: payment,
		ClientPayload: map[string]any{
			"gateway":        string(payment.Gateway),
			"transaction_id": payment.TransactionID,
			"amount":         payment.Amount,
		},
	}, nil
}

// Confirm finalizes a pending payment. Terminal payments are immutable.
func (s *PaymentServiceImpl) Confirm(ctx context.Context, caller ports.Caller, paymentID uuid.UUID, succeeded bool, meta *ports.RequestMeta) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get payment: %w", err))
	}
	if payment == nil {
		return nil, apperror.ErrNotFound("payment")
	}
	if caller.Role != domain.RoleAdmin && payment.UserID != caller.ID {
		return nil, apperror.ErrForbidden("payment belongs to another user")
	}
	if payment.IsTerminal() {
		return nil, apperror.ErrInvalidStatusTransition(string(payment.Status), "confirmed")
	}

	previous, _ := json.Marshal(payment)

	status := domain.PaymentStatusFailed
	if succeeded {
		status = domain.PaymentStatusSuccess
	}
	if err := s.paymentRepo.UpdateStatus(ctx, paymentID, status); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("update payment status: %w", err))
	}
	payment.Status = status
	payment.UpdatedAt = time.Now().UTC()

	snapshot, _ := json.Marshal(payment)
	s.audit.Record(ctx, ports.AuditEntry{
		EntityType:    domain.EntityPayment,
		DocumentID:    payment.ID,
		Action:        domain.AuditActionStatusChange,
		Actor:         caller,
		PreviousData:  previous,
		NewData:       snapshot,
		ChangedFields: []string{"status"},
		Meta:          meta,
	})

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("status", string(status)).
		Msg("payment confirmed")

	return payment, nil
}
