package service

import (
	"context"
	"fmt"
	"time"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
)

// CertificateServiceImpl implements ports.CertificateService.
type CertificateServiceImpl struct {
	certRepo   ports.CertificateRepository
	enrollRepo ports.EnrollmentRepository
}

// NewCertificateService creates a new CertificateServiceImpl.
func NewCertificateService(certRepo ports.CertificateRepository, enrollRepo ports.EnrollmentRepository) *CertificateServiceImpl {
	return &CertificateServiceImpl{
		certRepo:   certRepo,
		enrollRepo: enrollRepo,
	}
}

// Issue creates a certificate for a learner who progressed far enough
// through a listing. Instructor or admin only.
func (s *CertificateServiceImpl) Issue(ctx context.Context, caller ports.Caller, userID, listingID uuid.UUID, certificateURL string, meta *ports.RequestMeta) (*domain.Certificate, error) {
	if caller.Role != domain.RoleInstructor && caller.Role != domain.RoleAdmin {
		return nil, apperror.ErrForbidden("only instructors can issue certificates")
	}

	enrollment, err := s.enrollRepo.GetByUserAndListing(ctx, userID, listingID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get enrollment: %w", err))
	}
	if enrollment == nil {
		return nil, apperror.ErrNotFound("enrollment")
	}
	if caller.Role == domain.RoleInstructor && enrollment.InstructorID != caller.ID {
		return nil, apperror.ErrForbidden("enrollment belongs to another instructor")
	}
	if !enrollment.CertificateEligible() {
		return nil, apperror.ErrProgressTooLow()
	}
	if enrollment.CertificateIssued {
		return nil, apperror.Validation("certificate already issued")
	}

	cert := &domain.Certificate{
		ID:             uuid.New(),
		UserID:         userID,
		ListingID:      listingID,
		CertificateURL: certificateURL,
		IssuedAt:       time.Now().UTC(),
	}
	if err := s.certRepo.Create(ctx, cert); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create certificate: %w", err))
	}

	enrollment.CertificateIssued = true
	enrollment.UpdatedAt = time.Now().UTC()
	if err := s.enrollRepo.Update(ctx, enrollment); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("flag enrollment: %w", err))
	}

	return cert, nil
}
