package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contest-seating-api/internal/models"
	appErrors "github.com/noah-isme/contest-seating-api/pkg/errors"
)

type countsStub struct {
	cycles    []models.CycleCount
	schools   int
	perSchool []models.SchoolRegistrationCount
	calls     int
	err       error
}

func (c *countsStub) CountByCycle(ctx context.Context) ([]models.CycleCount, error) {
	c.calls++
	return c.cycles, c.err
}

func (c *countsStub) CountSchools(ctx context.Context) (int, error) {
	return c.schools, c.err
}

func (c *countsStub) RegistrationCounts(ctx context.Context) ([]models.SchoolRegistrationCount, error) {
	c.calls++
	return c.perSchool, c.err
}

func TestStatisticsServiceOverviewFillsEveryCycle(t *testing.T) {
	counts := &countsStub{
		cycles:  []models.CycleCount{{Cycle: models.Cycle6th, Count: 7}, {Cycle: models.Cycle4th, Count: 3}},
		schools: 2,
	}
	svc := NewStatisticsService(counts, counts, nil, 0, nil)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	resp, cached, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, resp.TotalSchools)
	assert.Equal(t, 10, resp.TotalStudents)
	require.Len(t, resp.Cycles, 4)
	assert.Equal(t, models.Cycle4th, resp.Cycles[0].Cycle)
	assert.Equal(t, 3, resp.Cycles[0].Count)
	assert.Equal(t, 0, resp.Cycles[1].Count)
	assert.Equal(t, 7, resp.Cycles[2].Count)
	assert.Equal(t, fixed, resp.GeneratedAt)
}

func TestStatisticsServiceUsesCache(t *testing.T) {
	counts := &countsStub{cycles: []models.CycleCount{{Cycle: models.Cycle5th, Count: 1}}, schools: 1}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewStatisticsService(counts, counts, cache, time.Minute, nil)

	_, cached, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	resp, cached, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, resp.TotalStudents)
	assert.Equal(t, 1, counts.calls)

	svc.Invalidate(context.Background())
	_, cached, err = svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, counts.calls)
}

func TestStatisticsServiceRegisteredSchools(t *testing.T) {
	counts := &countsStub{}
	svc := NewStatisticsService(counts, counts, nil, 0, nil)
	list, _, err := svc.RegisteredSchools(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	counts.err = errors.New("db down")
	_, _, err = svc.RegisteredSchools(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
