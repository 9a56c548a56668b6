package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/contest-seating-api/internal/dto"
	"github.com/noah-isme/contest-seating-api/internal/models"
	"github.com/noah-isme/contest-seating-api/internal/repository"
	"github.com/noah-isme/contest-seating-api/internal/seating"
	appErrors "github.com/noah-isme/contest-seating-api/pkg/errors"
	"github.com/noah-isme/contest-seating-api/pkg/events"
)

type allocationStudentSource interface {
	ListStudents(ctx context.Context, filter repository.RegisteredStudentFilter) ([]models.RegisteredStudent, error)
	CountByCycle(ctx context.Context) ([]models.CycleCount, error)
}

type allocationRoomSource interface {
	List(ctx context.Context) ([]models.Room, error)
}

type allocationRunRepository interface {
	CreateRun(ctx context.Context, run *models.AllocationRun) error
	Latest(ctx context.Context) (*models.AllocationRun, error)
	FindByID(ctx context.Context, id string) (*models.AllocationRun, error)
}

// AllocationServiceConfig tunes allocation caching.
type AllocationServiceConfig struct {
	CacheTTL time.Duration
}

// AllocationService runs the seating engine over registered students and configured rooms.
type AllocationService struct {
	students  allocationStudentSource
	rooms     allocationRoomSource
	runs      allocationRunRepository
	audit     auditLogger
	publisher events.Publisher
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       AllocationServiceConfig
}

// NewAllocationService constructs the allocation service.
func NewAllocationService(students allocationStudentSource, rooms allocationRoomSource, runs allocationRunRepository, audit auditLogger, publisher events.Publisher, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg AllocationServiceConfig) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &AllocationService{
		students:  students,
		rooms:     rooms,
		runs:      runs,
		audit:     audit,
		publisher: publisher,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// Summary compares registered demand with declared room capacity.
func (s *AllocationService) Summary(ctx context.Context) (*dto.AllocationSummaryResponse, error) {
	counts, err := s.students.CountByCycle(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	cycles, students := cycleBreakdown(counts)
	seats := declaredSeats(rooms)
	resp := &dto.AllocationSummaryResponse{
		Cycles:        cycles,
		TotalStudents: students,
		RoomCount:     len(rooms),
		TotalSeats:    seats,
	}
	if seats > 0 {
		resp.Occupancy = int(math.Round(float64(students) / float64(seats) * 100))
	}
	if students > seats {
		resp.Shortfall = students - seats
	}
	return resp, nil
}

// Run allocates every registered student and persists the result as a new run.
// When students outnumber declared seats the caller must confirm the shortfall.
func (s *AllocationService) Run(ctx context.Context, req dto.RunAllocationRequest, actor *models.JWTClaims) (*dto.AllocationRunResponse, error) {
	registered, err := s.students.ListStudents(ctx, repository.RegisteredStudentFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registered students")
	}
	if len(registered) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoStudents, "")
	}
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoRooms, "")
	}
	seats := declaredSeats(rooms)
	if len(registered) > seats && !req.ConfirmShortfall {
		return nil, appErrors.Clone(appErrors.ErrCapacityConfirmation,
			fmt.Sprintf("%d students registered for %d seats; %d would remain unplaced", len(registered), seats, len(registered)-seats))
	}

	start := time.Now()
	outcome := seating.Allocate(toSeatingStudents(registered), toSeatingRooms(rooms))
	elapsed := time.Since(start)

	phaseCounts := make(map[string]int, len(outcome.PhaseCounts))
	for phase, count := range outcome.PhaseCounts {
		phaseCounts[phase.String()] = count
	}
	s.metrics.ObserveAllocation(elapsed, phaseCounts, outcome.UnplacedCount)
	if len(outcome.ShortRooms) > 0 {
		s.logger.Warn("rooms hold fewer seats than declared", zap.Strings("rooms", outcome.ShortRooms))
	}
	if outcome.UnknownCycle > 0 {
		s.logger.Warn("students with unknown cycle left unplaced", zap.Int("count", outcome.UnknownCycle))
	}

	run := &models.AllocationRun{
		TotalStudents: len(registered),
		TotalSeats:    outcome.UsableSeats,
		PlacedCount:   outcome.PlacedCount,
		UnplacedCount: outcome.UnplacedCount,
		RoomCount:     len(rooms),
		Placements:    toSeatPlacements(outcome.Placements),
	}
	if actor != nil {
		run.CreatedBy = actor.UserID
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store allocation run")
	}

	resp := buildRunResponse(run)
	resp.PhaseCounts = phaseCounts
	resp.ShortRooms = outcome.ShortRooms
	if err := s.cache.Set(ctx, allocationLatestKey, resp, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("allocation cache write failed", zap.Error(err))
	}

	s.publish(ctx, run)
	s.recordAudit(ctx, actor, run)
	s.logger.Info("allocation completed",
		zap.String("run_id", run.ID),
		zap.Int("placed", run.PlacedCount),
		zap.Int("unplaced", run.UnplacedCount),
		zap.Duration("duration", elapsed),
	)
	return resp, nil
}

// Latest returns the most recent run grouped by room.
func (s *AllocationService) Latest(ctx context.Context) (*dto.AllocationRunResponse, bool, error) {
	return Remember(ctx, s.cache, allocationLatestKey, s.cfg.CacheTTL, func(ctx context.Context) (*dto.AllocationRunResponse, error) {
		run, err := s.runs.Latest(ctx)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "no allocation has been run yet")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocation run")
		}
		return buildRunResponse(run), nil
	})
}

// FindRun returns a stored run by ID, or the latest one when id is empty.
func (s *AllocationService) FindRun(ctx context.Context, id string) (*models.AllocationRun, error) {
	var (
		run *models.AllocationRun
		err error
	)
	if id == "" {
		run, err = s.runs.Latest(ctx)
	} else {
		run, err = s.runs.FindByID(ctx, id)
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "allocation run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocation run")
	}
	return run, nil
}

func (s *AllocationService) publish(ctx context.Context, run *models.AllocationRun) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	event := events.Event{
		Type:       events.TypeAllocationCompleted,
		OccurredAt: run.CreatedAt,
		Payload:    events.AllocationCompleted{RunID: run.ID, Placed: run.PlacedCount, Unplaced: run.UnplacedCount},
	}
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", event.Type), zap.Error(err))
	}
}

func (s *AllocationService) recordAudit(ctx context.Context, actor *models.JWTClaims, run *models.AllocationRun) {
	if s.audit == nil {
		return
	}
	body, _ := json.Marshal(map[string]int{
		"totalStudents": run.TotalStudents,
		"placed":        run.PlacedCount,
		"unplaced":      run.UnplacedCount,
	})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     userIDPtr(actor),
		Action:     models.AuditActionAllocationRun,
		Resource:   "allocation_run",
		ResourceID: strPtr(run.ID),
		NewValues:  body,
		IPAddress:  "system",
		UserAgent:  "allocation-service",
	}); err != nil {
		s.logger.Warn("failed to record allocation audit", zap.Error(err))
	}
}

func declaredSeats(rooms []models.Room) int {
	total := 0
	for _, room := range rooms {
		total += room.Seats
	}
	return total
}

func toSeatingStudents(registered []models.RegisteredStudent) []seating.Student {
	out := make([]seating.Student, len(registered))
	for i, st := range registered {
		out[i] = seating.Student{
			ID:       st.ID,
			FullName: st.FullName,
			Cycle:    st.Cycle,
			School:   st.SchoolName,
			Teacher:  st.TeacherEmail,
		}
	}
	return out
}

func toSeatingRooms(rooms []models.Room) []seating.Room {
	out := make([]seating.Room, len(rooms))
	for i, room := range rooms {
		out[i] = seating.Room{Name: room.Name, Seats: room.Seats, Rows: room.Rows, Cols: room.Cols}
	}
	return out
}

func toSeatPlacements(placements []seating.Placement) []models.SeatPlacement {
	out := make([]models.SeatPlacement, len(placements))
	for i, p := range placements {
		out[i] = models.SeatPlacement{
			StudentID:       p.StudentID,
			FullName:        p.FullName,
			Cycle:           p.Cycle,
			SchoolName:      p.School,
			Teacher:         p.Teacher,
			RoomName:        p.Room,
			Row:             p.Row,
			Col:             p.Col,
			SeatIndexInRoom: p.SeatIndex,
		}
	}
	return out
}

func fromSeatPlacements(placements []models.SeatPlacement) []seating.Placement {
	out := make([]seating.Placement, len(placements))
	for i, p := range placements {
		out[i] = seating.Placement{
			StudentID: p.StudentID,
			FullName:  p.FullName,
			Cycle:     p.Cycle,
			School:    p.SchoolName,
			Teacher:   p.Teacher,
			Room:      p.RoomName,
			Row:       p.Row,
			Col:       p.Col,
			SeatIndex: p.SeatIndexInRoom,
		}
	}
	return out
}

// groupRun orders a run's placements per room for display and export.
func groupRun(run *models.AllocationRun) []dto.RoomPlacements {
	groups := seating.GroupByRoom(fromSeatPlacements(run.Placements))
	out := make([]dto.RoomPlacements, len(groups))
	for i, g := range groups {
		placements := toSeatPlacements(g.Placements)
		for j := range placements {
			placements[j].RunID = run.ID
		}
		out[i] = dto.RoomPlacements{Room: g.Room, Placements: placements}
	}
	return out
}

func buildRunResponse(run *models.AllocationRun) *dto.AllocationRunResponse {
	return &dto.AllocationRunResponse{
		ID:            run.ID,
		TotalStudents: run.TotalStudents,
		TotalSeats:    run.TotalSeats,
		PlacedCount:   run.PlacedCount,
		UnplacedCount: run.UnplacedCount,
		RoomCount:     run.RoomCount,
		CreatedBy:     run.CreatedBy,
		CreatedAt:     run.CreatedAt,
		Rooms:         groupRun(run),
	}
}
