package seating

import (
	"sort"

	"github.com/noah-isme/contest-seating-api/internal/models"
)

// roomState is the seat matrix of one room. Cells are stored in serpentine order, so
// the slice holds exactly the usable seats however wide the declared grid is.
type roomState struct {
	name     string
	declared int
	rows     int
	cols     int
	cells    []int // cycle rank + 1, zero when empty
}

func newRoomState(room Room) *roomState {
	rows, cols, usable := reachableGrid(room)
	return &roomState{name: room.Name, declared: room.Seats, rows: rows, cols: cols, cells: make([]int, usable)}
}

// ordinal maps a coordinate to its serpentine index, or -1 outside the usable seats.
func (r *roomState) ordinal(row, col int) int {
	if row < 1 || row > r.rows || col < 1 || col > r.cols {
		return -1
	}
	offset := col - 1
	if row%2 == 0 {
		offset = r.cols - col
	}
	i := (row-1)*r.cols + offset
	if i >= len(r.cells) {
		return -1
	}
	return i
}

func (r *roomState) occupant(row, col int) int {
	i := r.ordinal(row, col)
	if i < 0 {
		return 0
	}
	return r.cells[i]
}

type seatRef struct {
	room *roomState
	pos  Position
}

// admission decides whether a cycle may take a free seat.
type admission func(room *roomState, pos Position, rank int) bool

// cycleOrdering yields cycle ranks in the order a pass should try them for the next seat.
type cycleOrdering func(s *allocationState) []int

type allocationState struct {
	queues     [][]Student
	remaining  []int
	pending    int
	seats      []seatRef
	placements []Placement
	phases     map[Phase]int
	roomSeated map[string]int
}

// Allocate seats students into rooms. Rooms are visited in numeric-aware name order and
// each room in serpentine order. Three passes run over the global seat list:
//   - strict: no same-cycle lateral predecessor and no same-cycle student directly in front,
//     trying cycles with the largest backlog first;
//   - lateral: only the lateral predecessor is checked, cycles in declared order;
//   - fallback: any free seat, cycles in declared order, only when the enumerated seats
//     can hold every student.
//
// Allocate is deterministic and has no side effects.
func Allocate(students []Student, rooms []Room) Outcome {
	orderedRooms := make([]Room, len(rooms))
	copy(orderedRooms, rooms)
	state, roomStates, unknown := newAllocationState(students, orderedRooms)

	outcome := Outcome{
		UsableSeats:  len(state.seats),
		UnknownCycle: unknown,
		PhaseCounts:  map[Phase]int{},
	}
	for _, rs := range roomStates {
		if len(rs.cells) < rs.declared {
			outcome.ShortRooms = append(outcome.ShortRooms, rs.name)
		}
	}

	state.pass(PhaseStrict, strictAdmission, byBacklog)
	state.pass(PhaseLateral, lateralAdmission, declaredOrder)
	if state.pending > 0 && len(state.seats) >= len(students) {
		state.pass(PhaseFallback, anySeat, declaredOrder)
	}

	outcome.Placements = state.placements
	outcome.PlacedCount = len(state.placements)
	outcome.UnplacedCount = len(students) - outcome.PlacedCount
	outcome.PhaseCounts = state.phases
	return outcome
}

// newAllocationState sorts rooms in place and returns their states in that order.
func newAllocationState(students []Student, rooms []Room) (*allocationState, []*roomState, int) {
	ordered := make([]Student, len(students))
	copy(ordered, students)
	SortStudents(ordered)

	state := &allocationState{
		queues:     make([][]Student, len(models.CycleOrder)),
		remaining:  make([]int, len(models.CycleOrder)),
		phases:     map[Phase]int{},
		roomSeated: map[string]int{},
	}
	unknown := 0
	for _, st := range ordered {
		rank := st.Cycle.Rank()
		if rank < 0 {
			unknown++
			continue
		}
		state.queues[rank] = append(state.queues[rank], st)
		state.remaining[rank]++
		state.pending++
	}

	sortRooms(rooms)
	roomStates := make([]*roomState, len(rooms))
	for i, room := range rooms {
		rs := newRoomState(room)
		roomStates[i] = rs
		for _, pos := range SeatPositions(room) {
			state.seats = append(state.seats, seatRef{room: rs, pos: pos})
		}
	}
	return state, roomStates, unknown
}

func (s *allocationState) pass(phase Phase, admits admission, order cycleOrdering) {
	for _, seat := range s.seats {
		if s.pending == 0 {
			return
		}
		if seat.room.occupant(seat.pos.Row, seat.pos.Col) != 0 {
			continue
		}
		for _, rank := range order(s) {
			if s.remaining[rank] == 0 || !admits(seat.room, seat.pos, rank) {
				continue
			}
			s.place(seat, rank, phase)
			break
		}
	}
}

func (s *allocationState) place(seat seatRef, rank int, phase Phase) {
	student := s.queues[rank][0]
	s.queues[rank] = s.queues[rank][1:]
	s.remaining[rank]--
	s.pending--

	room := seat.room
	room.cells[room.ordinal(seat.pos.Row, seat.pos.Col)] = rank + 1
	s.roomSeated[room.name]++
	s.phases[phase]++

	s.placements = append(s.placements, Placement{
		StudentID: student.ID,
		FullName:  student.FullName,
		Cycle:     student.Cycle,
		School:    student.School,
		Teacher:   student.Teacher,
		Room:      room.name,
		Row:       seat.pos.Row,
		Col:       seat.pos.Col,
		SeatIndex: s.roomSeated[room.name],
	})
}

// lateralAdmission rejects a seat whose serpentine predecessor in the same row holds the cycle.
func lateralAdmission(room *roomState, pos Position, rank int) bool {
	mark := rank + 1
	if pos.Row%2 == 1 {
		return pos.Col <= 1 || room.occupant(pos.Row, pos.Col-1) != mark
	}
	return pos.Col >= room.cols || room.occupant(pos.Row, pos.Col+1) != mark
}

func strictAdmission(room *roomState, pos Position, rank int) bool {
	if !lateralAdmission(room, pos, rank) {
		return false
	}
	return pos.Row <= 1 || room.occupant(pos.Row-1, pos.Col) != rank+1
}

func anySeat(*roomState, Position, int) bool {
	return true
}

func declaredOrder(s *allocationState) []int {
	order := make([]int, len(s.remaining))
	for i := range order {
		order[i] = i
	}
	return order
}

// byBacklog sorts cycles by remaining demand, descending; ties keep the declared order.
func byBacklog(s *allocationState) []int {
	order := declaredOrder(s)
	sort.SliceStable(order, func(i, j int) bool {
		return s.remaining[order[i]] > s.remaining[order[j]]
	})
	return order
}

// SortStudents orders students by cycle rank, then by name using Romanian collation that
// ignores case and diacritics. Equal keys keep their input order.
func SortStudents(students []Student) {
	col := newNameCollator()
	sort.SliceStable(students, func(i, j int) bool {
		ri, rj := students[i].Cycle.Rank(), students[j].Cycle.Rank()
		if ri != rj {
			return ri < rj
		}
		return col.CompareString(students[i].FullName, students[j].FullName) < 0
	})
}

func sortRooms(rooms []Room) {
	col := newRoomCollator()
	sort.SliceStable(rooms, func(i, j int) bool {
		return col.CompareString(rooms[i].Name, rooms[j].Name) < 0
	})
}
