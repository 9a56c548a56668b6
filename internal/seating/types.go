// Package seating assigns registered students to exam room seats so that students of the
// same cycle do not sit next to each other along the serpentine seat order.
package seating

import "github.com/noah-isme/contest-seating-api/internal/models"

// Student is one allocation input record.
type Student struct {
	ID       string
	FullName string
	Cycle    models.Cycle
	School   string
	Teacher  string
}

// Room describes a room and its seat matrix. Rows or Cols at zero fall back to defaults.
type Room struct {
	Name  string
	Seats int
	Rows  int
	Cols  int
}

// Position is a 1-based seat coordinate inside a room.
type Position struct {
	Row int
	Col int
}

// Placement records the seat assigned to a student.
type Placement struct {
	StudentID string
	FullName  string
	Cycle     models.Cycle
	School    string
	Teacher   string
	Room      string
	Row       int
	Col       int
	// SeatIndex counts placements per room name, starting at 1, in placement order.
	// Rooms sharing a name share one sequence.
	SeatIndex int
}

// Phase identifies which placement pass produced a placement.
type Phase int

const (
	PhaseStrict Phase = iota + 1
	PhaseLateral
	PhaseFallback
)

func (p Phase) String() string {
	switch p {
	case PhaseStrict:
		return "strict"
	case PhaseLateral:
		return "lateral"
	case PhaseFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Outcome is the result of an allocation run.
type Outcome struct {
	Placements    []Placement
	PlacedCount   int
	UnplacedCount int
	// UsableSeats is the number of enumerated seat positions across all rooms.
	UsableSeats int
	// PhaseCounts maps each phase to the placements it made.
	PhaseCounts map[Phase]int
	// ShortRooms lists rooms whose grid cannot hold every declared seat.
	ShortRooms []string
	// UnknownCycle counts students skipped because their cycle is not recognised.
	UnknownCycle int
}
