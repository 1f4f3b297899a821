package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	dashboardStatsCacheKey = "dashboard:stats"
	dashboardStatsCacheTTL = time.Minute
)

// DashboardServiceImpl implements ports.DashboardService. Aggregates are
// cached briefly; staleness up to the TTL is acceptable for the admin view.
type DashboardServiceImpl struct {
	statsRepo ports.StatsRepository
	cache     ports.ViewCache
	log       zerolog.Logger
}

// NewDashboardService creates a new DashboardServiceImpl.
func NewDashboardService(statsRepo ports.StatsRepository, cache ports.ViewCache, log zerolog.Logger) *DashboardServiceImpl {
	return &DashboardServiceImpl{
		statsRepo: statsRepo,
		cache:     cache,
		log:       log,
	}
}

// Stats returns the platform aggregates.
func (s *DashboardServiceImpl) Stats(ctx context.Context) (*ports.PlatformStats, error) {
	if cached, err := s.cache.Get(ctx, dashboardStatsCacheKey); err != nil {
		s.log.Warn().Err(err).Msg("dashboard cache read failed, falling through to DB")
	} else if cached != nil {
		var stats ports.PlatformStats
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := s.statsRepo.PlatformStats(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("platform stats: %w", err))
	}

	if encoded, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, dashboardStatsCacheKey, encoded, dashboardStatsCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("dashboard cache write failed")
		}
	}

	return stats, nil
}
