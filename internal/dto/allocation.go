package dto

import (
	"time"

	"github.com/noah-isme/contest-seating-api/internal/models"
)

// CycleCountItem is the number of students in a cycle.
type CycleCountItem struct {
	Cycle models.Cycle `json:"cycle"`
	Count int          `json:"count"`
}

// AllocationSummaryResponse describes demand against capacity before a run.
type AllocationSummaryResponse struct {
	Cycles        []CycleCountItem `json:"cycles"`
	TotalStudents int              `json:"totalStudents"`
	RoomCount     int              `json:"roomCount"`
	TotalSeats    int              `json:"totalSeats"`
	Occupancy     int              `json:"occupancy"`
	Shortfall     int              `json:"shortfall"`
}

// RunAllocationRequest triggers an allocation run.
type RunAllocationRequest struct {
	ConfirmShortfall bool `json:"confirmShortfall"`
}

// RoomPlacements lists the students seated in one room.
type RoomPlacements struct {
	Room       string                 `json:"room"`
	Placements []models.SeatPlacement `json:"placements"`
}

// AllocationRunResponse is a persisted run grouped by room.
type AllocationRunResponse struct {
	ID            string           `json:"id"`
	TotalStudents int              `json:"totalStudents"`
	TotalSeats    int              `json:"totalSeats"`
	PlacedCount   int              `json:"placedCount"`
	UnplacedCount int              `json:"unplacedCount"`
	RoomCount     int              `json:"roomCount"`
	PhaseCounts   map[string]int   `json:"phaseCounts,omitempty"`
	ShortRooms    []string         `json:"shortRooms,omitempty"`
	CreatedBy     string           `json:"createdBy"`
	CreatedAt     time.Time        `json:"createdAt"`
	Rooms         []RoomPlacements `json:"rooms"`
}
