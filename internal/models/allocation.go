package models

import "time"

// AllocationRun is one persisted execution of the seating allocator.
type AllocationRun struct {
	ID            string    `db:"id" json:"id"`
	TotalStudents int       `db:"total_students" json:"total_students"`
	TotalSeats    int       `db:"total_seats" json:"total_seats"`
	PlacedCount   int       `db:"placed_count" json:"placed_count"`
	UnplacedCount int       `db:"unplaced_count" json:"unplaced_count"`
	RoomCount     int       `db:"room_count" json:"room_count"`
	CreatedBy     string    `db:"created_by" json:"created_by"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	Placements []SeatPlacement `db:"-" json:"placements,omitempty"`
}

// SeatPlacement records the seat a student received in a run.
type SeatPlacement struct {
	RunID           string `db:"run_id" json:"-"`
	StudentID       string `db:"student_id" json:"student_id"`
	FullName        string `db:"full_name" json:"full_name"`
	Cycle           Cycle  `db:"cycle" json:"cycle"`
	SchoolName      string `db:"school_name" json:"school_name"`
	Teacher         string `db:"teacher" json:"teacher"`
	RoomName        string `db:"room_name" json:"room_name"`
	Row             int    `db:"seat_row" json:"row"`
	Col             int    `db:"seat_col" json:"col"`
	SeatIndexInRoom int    `db:"seat_index" json:"seat_index"`
}
