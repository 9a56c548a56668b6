package seating

import "math"

// DefaultCols is used when a room does not declare its column count.
const DefaultCols = 7

// Dimensions resolves the effective grid size of a room.
func Dimensions(room Room) (rows, cols int) {
	cols = room.Cols
	if cols <= 0 {
		cols = DefaultCols
	}
	rows = room.Rows
	if rows <= 0 {
		seats := room.Seats
		if seats < 0 {
			seats = 0
		}
		rows = int(math.Ceil(float64(seats) / float64(cols)))
	}
	return rows, cols
}

// reachableGrid trims the grid to the rows the seat count can reach, ceil(seats/cols),
// and returns how many positions the trimmed grid yields. The product rows*cols is only
// taken when it is known to be below the seat count, so it cannot overflow.
func reachableGrid(room Room) (rows, cols, usable int) {
	rows, cols = Dimensions(room)
	if room.Seats <= 0 {
		return 0, cols, 0
	}
	needed := room.Seats / cols
	if room.Seats%cols != 0 {
		needed++
	}
	if rows >= needed {
		return needed, cols, room.Seats
	}
	return rows, cols, rows * cols
}

// SeatPositions enumerates the room's seats in serpentine order: odd rows run left to
// right, even rows right to left. The sequence is cut at the declared seat count, so a
// grid smaller than the seat count yields fewer positions than declared.
func SeatPositions(room Room) []Position {
	rows, cols, usable := reachableGrid(room)
	if usable == 0 {
		return nil
	}
	positions := make([]Position, 0, usable)
	for r := 1; r <= rows && len(positions) < usable; r++ {
		for i := 0; i < cols && len(positions) < usable; i++ {
			c := i + 1
			if r%2 == 0 {
				c = cols - i
			}
			positions = append(positions, Position{Row: r, Col: c})
		}
	}
	return positions
}
