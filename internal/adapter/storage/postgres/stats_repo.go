package postgres

import (
	"context"
	"fmt"

	"skills-marketplace-api/internal/core/ports"
)

// StatsRepo implements ports.StatsRepository.
type StatsRepo struct {
	pool Pool
}

// NewStatsRepo creates a new StatsRepo.
func NewStatsRepo(pool Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

// PlatformStats computes the admin dashboard aggregates in one round trip.
func (r *StatsRepo) PlatformStats(ctx context.Context) (*ports.PlatformStats, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM users WHERE is_deleted = FALSE) AS total_users,
		(SELECT COUNT(*) FROM instructors) AS total_instructors,
		(SELECT COUNT(*) FROM instructors WHERE status = 'pendingApproval') AS pending_instructors,
		(SELECT COUNT(*) FROM instructors WHERE status = 'approved') AS approved_instructors,
		(SELECT COUNT(*) FROM listings WHERE is_deleted = FALSE) AS total_listings,
		(SELECT COUNT(*) FROM listings WHERE is_deleted = FALSE AND status = 'pendingApproval') AS pending_listings,
		(SELECT COUNT(*) FROM listings WHERE is_deleted = FALSE AND status = 'approved') AS approved_listings,
		(SELECT COUNT(*) FROM listings WHERE is_deleted = FALSE AND status = 'rejected') AS rejected_listings,
		(SELECT COUNT(*) FROM enrollments WHERE is_archived = FALSE) AS total_enrollments,
		(SELECT COUNT(*) FROM enrollments WHERE is_archived = FALSE AND status = 'completed') AS completed_enrollments`

	stats := &ports.PlatformStats{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalUsers, &stats.TotalInstructors, &stats.PendingInstructors, &stats.ApprovedInstructors,
		&stats.TotalListings, &stats.PendingListings, &stats.ApprovedListings, &stats.RejectedListings,
		&stats.TotalEnrollments, &stats.CompletedEnrollments,
	)
	if err != nil {
		return nil, fmt.Errorf("platform stats: %w", err)
	}
	return stats, nil
}
