package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/contest-seating-api/internal/models"
)

// AllocationRepository persists allocation runs and their seat placements.
type AllocationRepository struct {
	db *sqlx.DB
}

// NewAllocationRepository constructs an AllocationRepository.
func NewAllocationRepository(db *sqlx.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

const allocationRunColumns = `id, total_students, total_seats, placed_count, unplaced_count, room_count, created_by, created_at`

// CreateRun stores a run and all of its placements atomically.
func (r *AllocationRepository) CreateRun(ctx context.Context, run *models.AllocationRun) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin allocation run: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	const insertRun = `INSERT INTO allocation_runs (id, total_students, total_seats, placed_count, unplaced_count, room_count, created_by, created_at)
        VALUES (:id, :total_students, :total_seats, :placed_count, :unplaced_count, :room_count, :created_by, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertRun, run); err != nil {
		return fmt.Errorf("create allocation run: %w", err)
	}

	const insertPlacement = `INSERT INTO allocation_placements (run_id, student_id, full_name, cycle, school_name, teacher, room_name, seat_row, seat_col, seat_index)
        VALUES (:run_id, :student_id, :full_name, :cycle, :school_name, :teacher, :room_name, :seat_row, :seat_col, :seat_index)`
	for i := range run.Placements {
		run.Placements[i].RunID = run.ID
		if _, err = tx.NamedExecContext(ctx, insertPlacement, run.Placements[i]); err != nil {
			return fmt.Errorf("create allocation placement: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit allocation run: %w", err)
	}
	return nil
}

// Latest returns the most recent run with its placements, or sql.ErrNoRows when none exist.
func (r *AllocationRepository) Latest(ctx context.Context) (*models.AllocationRun, error) {
	var run models.AllocationRun
	if err := r.db.GetContext(ctx, &run, `SELECT `+allocationRunColumns+` FROM allocation_runs ORDER BY created_at DESC LIMIT 1`); err != nil {
		return nil, err
	}
	if err := r.loadPlacements(ctx, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// FindByID returns a run with its placements.
func (r *AllocationRepository) FindByID(ctx context.Context, id string) (*models.AllocationRun, error) {
	var run models.AllocationRun
	if err := r.db.GetContext(ctx, &run, `SELECT `+allocationRunColumns+` FROM allocation_runs WHERE id = $1`, id); err != nil {
		return nil, err
	}
	if err := r.loadPlacements(ctx, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *AllocationRepository) loadPlacements(ctx context.Context, run *models.AllocationRun) error {
	const query = `SELECT run_id, student_id, full_name, cycle, school_name, teacher, room_name, seat_row, seat_col, seat_index
FROM allocation_placements WHERE run_id = $1 ORDER BY room_name ASC, seat_index ASC`
	if err := r.db.SelectContext(ctx, &run.Placements, query, run.ID); err != nil {
		return fmt.Errorf("list allocation placements: %w", err)
	}
	return nil
}
