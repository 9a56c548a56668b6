package seating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatPositionsSerpentine(t *testing.T) {
	got := SeatPositions(Room{Name: "Sala 1", Seats: 6, Rows: 3, Cols: 2})
	assert.Equal(t, []Position{{1, 1}, {1, 2}, {2, 2}, {2, 1}, {3, 1}, {3, 2}}, got)
}

func TestSeatPositionsTruncatesToSeatCount(t *testing.T) {
	got := SeatPositions(Room{Name: "Sala 2", Seats: 7, Rows: 2, Cols: 5})
	assert.Equal(t, []Position{{1, 1}, {1, 2}, {1, 3}, {1, 4}, {1, 5}, {2, 5}, {2, 4}}, got)
}

func TestSeatPositionsShortGridYieldsFewerSeats(t *testing.T) {
	got := SeatPositions(Room{Name: "Sala 3", Seats: 10, Rows: 2, Cols: 3})
	assert.Len(t, got, 6)
}

func TestSeatPositionsDefaults(t *testing.T) {
	tests := []struct {
		name     string
		room     Room
		wantRows int
		wantCols int
		wantLen  int
	}{
		{name: "missing cols", room: Room{Seats: 10, Rows: 2}, wantRows: 2, wantCols: DefaultCols, wantLen: 10},
		{name: "missing rows", room: Room{Seats: 10, Cols: 4}, wantRows: 3, wantCols: 4, wantLen: 10},
		{name: "missing both", room: Room{Seats: 15}, wantRows: 3, wantCols: DefaultCols, wantLen: 15},
		{name: "no seats", room: Room{Seats: 0, Rows: 2, Cols: 2}, wantRows: 2, wantCols: 2, wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, cols := Dimensions(tt.room)
			assert.Equal(t, tt.wantRows, rows)
			assert.Equal(t, tt.wantCols, cols)
			assert.Len(t, SeatPositions(tt.room), tt.wantLen)
		})
	}
}

func TestSeatPositionsUnique(t *testing.T) {
	seen := map[Position]bool{}
	for _, p := range SeatPositions(Room{Seats: 25, Rows: 5, Cols: 5}) {
		assert.False(t, seen[p], "duplicate %v", p)
		seen[p] = true
		assert.True(t, p.Row >= 1 && p.Row <= 5 && p.Col >= 1 && p.Col <= 5)
	}
	assert.Len(t, seen, 25)
}

func TestReachableGrid(t *testing.T) {
	tests := []struct {
		name   string
		room   Room
		rows   int
		cols   int
		usable int
	}{
		{name: "exact", room: Room{Seats: 6, Rows: 2, Cols: 3}, rows: 2, cols: 3, usable: 6},
		{name: "short grid", room: Room{Seats: 10, Rows: 2, Cols: 3}, rows: 2, cols: 3, usable: 6},
		{name: "rows trimmed", room: Room{Seats: 2, Rows: math.MaxInt, Cols: 1}, rows: 2, cols: 1, usable: 2},
		{name: "wide row", room: Room{Seats: 3, Rows: 4, Cols: math.MaxInt}, rows: 1, cols: math.MaxInt, usable: 3},
		{name: "no seats", room: Room{Seats: 0, Rows: math.MaxInt, Cols: math.MaxInt}, rows: 0, cols: math.MaxInt, usable: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, cols, usable := reachableGrid(tt.room)
			assert.Equal(t, tt.rows, rows)
			assert.Equal(t, tt.cols, cols)
			assert.Equal(t, tt.usable, usable)
		})
	}
}

func TestSeatPositionsHugeGrid(t *testing.T) {
	got := SeatPositions(Room{Name: "Sala 1", Seats: 2, Rows: math.MaxInt, Cols: 1})
	assert.Equal(t, []Position{{1, 1}, {2, 1}}, got)

	got = SeatPositions(Room{Name: "Sala 2", Seats: 3, Rows: 2, Cols: math.MaxInt})
	assert.Equal(t, []Position{{1, 1}, {1, 2}, {1, 3}}, got)
}
