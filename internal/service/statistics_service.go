package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/contest-seating-api/internal/dto"
	"github.com/noah-isme/contest-seating-api/internal/models"
	appErrors "github.com/noah-isme/contest-seating-api/pkg/errors"
)

type registrationCounter interface {
	CountByCycle(ctx context.Context) ([]models.CycleCount, error)
	CountSchools(ctx context.Context) (int, error)
}

type schoolRegistrationCounter interface {
	RegistrationCounts(ctx context.Context) ([]models.SchoolRegistrationCount, error)
}

// StatisticsService computes registration totals, cached in Redis when enabled.
type StatisticsService struct {
	registrations registrationCounter
	schools       schoolRegistrationCounter
	cache         *CacheService
	ttl           time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewStatisticsService constructs a StatisticsService.
func NewStatisticsService(registrations registrationCounter, schools schoolRegistrationCounter, cache *CacheService, ttl time.Duration, logger *zap.Logger) *StatisticsService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{
		registrations: registrations,
		schools:       schools,
		cache:         cache,
		ttl:           ttl,
		logger:        logger,
		now:           time.Now,
	}
}

// Overview returns totals per cycle and indicates whether the cache served it.
func (s *StatisticsService) Overview(ctx context.Context) (*dto.StatisticsResponse, bool, error) {
	return Remember(ctx, s.cache, statisticsOverviewKey, s.ttl, s.loadOverview)
}

func (s *StatisticsService) loadOverview(ctx context.Context) (*dto.StatisticsResponse, error) {
	counts, err := s.registrations.CountByCycle(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	totalSchools, err := s.registrations.CountSchools(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count schools")
	}

	cycles, total := cycleBreakdown(counts)
	return &dto.StatisticsResponse{
		TotalSchools:  totalSchools,
		TotalStudents: total,
		Cycles:        cycles,
		GeneratedAt:   s.now().UTC(),
	}, nil
}

// RegisteredSchools returns schools with registered students, busiest first.
func (s *StatisticsService) RegisteredSchools(ctx context.Context) ([]models.SchoolRegistrationCount, bool, error) {
	return Remember(ctx, s.cache, statisticsSchoolsKey, s.ttl, func(ctx context.Context) ([]models.SchoolRegistrationCount, error) {
		counts, err := s.schools.RegistrationCounts(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registered schools")
		}
		if counts == nil {
			counts = []models.SchoolRegistrationCount{}
		}
		return counts, nil
	})
}

// Invalidate drops every cached statistics payload.
func (s *StatisticsService) Invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, statisticsCachePattern)
}

// cycleBreakdown lists every known cycle in order, filling zero for cycles without students.
func cycleBreakdown(counts []models.CycleCount) ([]dto.CycleCountItem, int) {
	byCycle := make(map[models.Cycle]int, len(counts))
	for _, c := range counts {
		byCycle[c.Cycle] += c.Count
	}
	items := make([]dto.CycleCountItem, 0, len(models.CycleOrder))
	total := 0
	for _, cycle := range models.CycleOrder {
		items = append(items, dto.CycleCountItem{Cycle: cycle, Count: byCycle[cycle]})
		total += byCycle[cycle]
	}
	return items, total
}
