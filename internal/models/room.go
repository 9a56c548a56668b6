package models

import "time"

// DefaultFloor labels rooms created without a floor.
const DefaultFloor = "Nespecificat"

// Room is a physical exam room with its seat matrix geometry.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Floor     string    `db:"floor" json:"floor"`
	Seats     int       `db:"seats" json:"seats"`
	Rows      int       `db:"seat_rows" json:"rows"`
	Cols      int       `db:"seat_cols" json:"cols"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GeometryConsistent reports whether the grid can hold every declared seat.
func (r Room) GeometryConsistent() bool {
	return r.Rows*r.Cols >= r.Seats
}

// DefaultRooms is seeded when no rooms are configured yet.
var DefaultRooms = []Room{
	{Name: "Sala 6", Floor: "Etaj I", Seats: 25, Rows: 5, Cols: 5},
	{Name: "Sala 7", Floor: "Etaj I", Seats: 23, Rows: 5, Cols: 5},
	{Name: "Sala 8", Floor: "Etaj I", Seats: 25, Rows: 5, Cols: 5},
	{Name: "Sala 9", Floor: "Etaj I", Seats: 25, Rows: 5, Cols: 5},
	{Name: "Sala 10", Floor: "Etaj I", Seats: 25, Rows: 5, Cols: 5},
	{Name: "Sala 11", Floor: "Etaj I", Seats: 23, Rows: 5, Cols: 5},
	{Name: "Sala 15", Floor: "Etaj II", Seats: 25, Rows: 5, Cols: 5},
	{Name: "Sala 16", Floor: "Etaj II", Seats: 25, Rows: 5, Cols: 5},
	{Name: "Sala 17", Floor: "Etaj II", Seats: 24, Rows: 5, Cols: 5},
	{Name: "Sala 18", Floor: "Etaj II", Seats: 20, Rows: 5, Cols: 4},
	{Name: "Sala 19", Floor: "Etaj II", Seats: 5, Rows: 3, Cols: 2},
}
