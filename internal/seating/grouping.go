package seating

import (
	"sort"
	"strconv"

	"github.com/noah-isme/contest-seating-api/pkg/export"
)

// RoomGroup holds the placements of a single room ready for export.
type RoomGroup struct {
	Room       string
	Placements []Placement
}

// GroupByRoom buckets placements per room. Rooms come back in numeric-aware name order and
// placements inside a room are sorted by cycle rank, then name.
func GroupByRoom(placements []Placement) []RoomGroup {
	index := make(map[string]int)
	groups := make([]RoomGroup, 0)
	for _, p := range placements {
		i, ok := index[p.Room]
		if !ok {
			i = len(groups)
			index[p.Room] = i
			groups = append(groups, RoomGroup{Room: p.Room})
		}
		groups[i].Placements = append(groups[i].Placements, p)
	}

	roomCol := newRoomCollator()
	sort.SliceStable(groups, func(i, j int) bool {
		return roomCol.CompareString(groups[i].Room, groups[j].Room) < 0
	})

	nameCol := newNameCollator()
	for _, g := range groups {
		rows := g.Placements
		sort.SliceStable(rows, func(i, j int) bool {
			ri, rj := rows[i].Cycle.Rank(), rows[j].Cycle.Rank()
			if ri != rj {
				return ri < rj
			}
			return nameCol.CompareString(rows[i].FullName, rows[j].FullName) < 0
		})
	}
	return groups
}

// SheetHeaders are the columns of a room sheet.
var SheetHeaders = []string{"No.", "Student", "Cycle", "School", "Supervising teacher"}

// Workbook lays out one sheet per room group, numbering students within each room.
func Workbook(groups []RoomGroup) export.Workbook {
	book := export.Workbook{Title: "Seating by room", Sheets: make([]export.Sheet, 0, len(groups))}
	for _, g := range groups {
		rows := make([]map[string]string, 0, len(g.Placements))
		for i, p := range g.Placements {
			rows = append(rows, map[string]string{
				"No.":                 strconv.Itoa(i + 1),
				"Student":             p.FullName,
				"Cycle":               string(p.Cycle),
				"School":              p.School,
				"Supervising teacher": p.Teacher,
			})
		}
		book.Sheets = append(book.Sheets, export.Sheet{
			Name:    g.Room,
			Dataset: export.Dataset{Headers: SheetHeaders, Rows: rows},
		})
	}
	return book
}
