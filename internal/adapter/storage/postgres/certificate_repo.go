package postgres

import (
	"context"
	"fmt"

	"skills-marketplace-api/internal/core/domain"

	"github.com/google/uuid"
)

// CertificateRepo implements ports.CertificateRepository.
type CertificateRepo struct {
	pool Pool
}

// NewCertificateRepo creates a new CertificateRepo.
func NewCertificateRepo(pool Pool) *CertificateRepo {
	return &CertificateRepo{pool: pool}
}

// Create inserts an issued certificate.
func (r *CertificateRepo) Create(ctx context.Context, c *domain.Certificate) error {
	query := `INSERT INTO certificates (id, user_id, listing_id, certificate_url, issued_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, c.ID, c.UserID, c.ListingID, c.CertificateURL, c.IssuedAt)
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

// ListByUser fetches a user's certificates, newest first.
func (r *CertificateRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Certificate, error) {
	query := `SELECT id, user_id, listing_id, certificate_url, issued_at FROM certificates
		WHERE user_id = $1 ORDER BY issued_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	var certs []domain.Certificate
	for rows.Next() {
		c := domain.Certificate{}
		err := rows.Scan(&c.ID, &c.UserID, &c.ListingID, &c.CertificateURL, &c.IssuedAt)
		if err != nil {
			return nil, fmt.Errorf("scan certificate row: %w", err)
		}
		certs = append(certs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certificate rows: %w", err)
	}
	return certs, nil
}
