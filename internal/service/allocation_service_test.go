package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contest-seating-api/internal/dto"
	"github.com/noah-isme/contest-seating-api/internal/models"
	"github.com/noah-isme/contest-seating-api/internal/repository"
	appErrors "github.com/noah-isme/contest-seating-api/pkg/errors"
	"github.com/noah-isme/contest-seating-api/pkg/events"
)

type studentSourceStub struct {
	students []models.RegisteredStudent
}

func (s *studentSourceStub) ListStudents(ctx context.Context, filter repository.RegisteredStudentFilter) ([]models.RegisteredStudent, error) {
	return s.students, nil
}

func (s *studentSourceStub) CountByCycle(ctx context.Context) ([]models.CycleCount, error) {
	counts := map[models.Cycle]int{}
	for _, st := range s.students {
		counts[st.Cycle]++
	}
	var out []models.CycleCount
	for _, cycle := range models.CycleOrder {
		if counts[cycle] > 0 {
			out = append(out, models.CycleCount{Cycle: cycle, Count: counts[cycle]})
		}
	}
	return out, nil
}

type roomSourceStub struct {
	rooms []models.Room
}

func (r roomSourceStub) List(ctx context.Context) ([]models.Room, error) {
	return r.rooms, nil
}

type runRepoStub struct {
	runs        []*models.AllocationRun
	latestCalls int
}

func (r *runRepoStub) CreateRun(ctx context.Context, run *models.AllocationRun) error {
	run.ID = fmt.Sprintf("run-%d", len(r.runs)+1)
	run.CreatedAt = time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	r.runs = append(r.runs, run)
	return nil
}

func (r *runRepoStub) Latest(ctx context.Context) (*models.AllocationRun, error) {
	r.latestCalls++
	if len(r.runs) == 0 {
		return nil, sql.ErrNoRows
	}
	return r.runs[len(r.runs)-1], nil
}

func (r *runRepoStub) FindByID(ctx context.Context, id string) (*models.AllocationRun, error) {
	for _, run := range r.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, sql.ErrNoRows
}

func registeredStudents(cycle models.Cycle, n int, school string) []models.RegisteredStudent {
	out := make([]models.RegisteredStudent, n)
	for i := range out {
		out[i] = models.RegisteredStudent{
			ID:           fmt.Sprintf("%s-%s-%d", school, cycle, i),
			FullName:     fmt.Sprintf("Elev %s %d", cycle, i),
			Cycle:        cycle,
			SchoolName:   school,
			TeacherEmail: "prof@" + school + ".ro",
		}
	}
	return out
}

func endToEndFixture() (*studentSourceStub, roomSourceStub) {
	students := append(registeredStudents(models.Cycle4th, 3, "a"), registeredStudents(models.Cycle5th, 3, "b")...)
	rooms := []models.Room{
		{Name: "Room B", Seats: 2, Rows: 1, Cols: 2},
		{Name: "Room A", Seats: 4, Rows: 2, Cols: 2},
	}
	return &studentSourceStub{students: students}, roomSourceStub{rooms: rooms}
}

func TestAllocationServiceSummary(t *testing.T) {
	students, rooms := endToEndFixture()
	rooms.rooms = rooms.rooms[:1]
	svc := NewAllocationService(students, rooms, &runRepoStub{}, nil, nil, nil, nil, nil, AllocationServiceConfig{})

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, summary.TotalStudents)
	assert.Equal(t, 2, summary.TotalSeats)
	assert.Equal(t, 1, summary.RoomCount)
	assert.Equal(t, 300, summary.Occupancy)
	assert.Equal(t, 4, summary.Shortfall)
	require.Len(t, summary.Cycles, 4)
	assert.Equal(t, 3, summary.Cycles[0].Count)
	assert.Equal(t, 3, summary.Cycles[1].Count)
}

func TestAllocationServiceRunPlacesEveryone(t *testing.T) {
	students, rooms := endToEndFixture()
	runs := &runRepoStub{}
	pub := &publisherStub{}
	audit := &auditLoggerStub{}
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewAllocationService(students, rooms, runs, audit, pub, cache, metrics, nil, AllocationServiceConfig{})

	resp, err := svc.Run(context.Background(), dto.RunAllocationRequest{}, &models.JWTClaims{UserID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "run-1", resp.ID)
	assert.Equal(t, 6, resp.PlacedCount)
	assert.Equal(t, 0, resp.UnplacedCount)
	assert.Equal(t, "admin", resp.CreatedBy)
	require.Len(t, resp.Rooms, 2)
	assert.Equal(t, "Room A", resp.Rooms[0].Room)
	assert.Len(t, resp.Rooms[0].Placements, 4)
	assert.Equal(t, "Room B", resp.Rooms[1].Room)

	total := 0
	for _, count := range resp.PhaseCounts {
		total += count
	}
	assert.Equal(t, 6, total)

	require.Len(t, runs.runs, 1)
	assert.Len(t, runs.runs[0].Placements, 6)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeAllocationCompleted, pub.events[0].Type)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionAllocationRun, audit.logs[0].Action)
	assert.Equal(t, uint64(1), metrics.Snapshot().AllocationRuns)

	latest, cached, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "run-1", latest.ID)
	assert.Equal(t, 0, runs.latestCalls)
}

func TestAllocationServiceRunRequiresShortfallConfirmation(t *testing.T) {
	students, rooms := endToEndFixture()
	rooms.rooms = rooms.rooms[:1]
	runs := &runRepoStub{}
	svc := NewAllocationService(students, rooms, runs, nil, nil, nil, nil, nil, AllocationServiceConfig{})

	_, err := svc.Run(context.Background(), dto.RunAllocationRequest{}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCapacityConfirmation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, runs.runs)

	resp, err := svc.Run(context.Background(), dto.RunAllocationRequest{ConfirmShortfall: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.PlacedCount)
	assert.Equal(t, 4, resp.UnplacedCount)
}

func TestAllocationServiceRunRejectsEmptyInputs(t *testing.T) {
	_, rooms := endToEndFixture()
	svc := NewAllocationService(&studentSourceStub{}, rooms, &runRepoStub{}, nil, nil, nil, nil, nil, AllocationServiceConfig{})
	_, err := svc.Run(context.Background(), dto.RunAllocationRequest{}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoStudents.Code, appErrors.FromError(err).Code)

	students, _ := endToEndFixture()
	svc = NewAllocationService(students, roomSourceStub{}, &runRepoStub{}, nil, nil, nil, nil, nil, AllocationServiceConfig{})
	_, err = svc.Run(context.Background(), dto.RunAllocationRequest{}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoRooms.Code, appErrors.FromError(err).Code)
}

func TestAllocationServiceLatestFromRepository(t *testing.T) {
	runs := &runRepoStub{}
	svc := NewAllocationService(&studentSourceStub{}, roomSourceStub{}, runs, nil, nil, nil, nil, nil, AllocationServiceConfig{})

	_, _, err := svc.Latest(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	runs.runs = append(runs.runs, &models.AllocationRun{
		ID:          "run-9",
		PlacedCount: 2,
		Placements: []models.SeatPlacement{
			{StudentID: "2", FullName: "Zoe", Cycle: models.Cycle4th, RoomName: "Sala 10", Row: 1, Col: 1, SeatIndexInRoom: 1},
			{StudentID: "1", FullName: "Ana", Cycle: models.Cycle4th, RoomName: "Sala 9", Row: 1, Col: 1, SeatIndexInRoom: 1},
		},
	})
	resp, cached, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, resp.Rooms, 2)
	assert.Equal(t, "Sala 9", resp.Rooms[0].Room)
	assert.Equal(t, "Sala 10", resp.Rooms[1].Room)

	found, err := svc.FindRun(context.Background(), "run-9")
	require.NoError(t, err)
	assert.Equal(t, 2, found.PlacedCount)
	_, err = svc.FindRun(context.Background(), "missing")
	require.Error(t, err)
}
