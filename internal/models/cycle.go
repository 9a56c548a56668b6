package models

import "strings"

// Cycle identifies the grade cohort a student competes in.
type Cycle string

const (
	Cycle4th Cycle = "4th"
	Cycle5th Cycle = "5th"
	Cycle6th Cycle = "6th"
	Cycle7th Cycle = "7th"
)

// CycleOrder is the declared cycle order used for ranking and tie-breaks.
var CycleOrder = []Cycle{Cycle4th, Cycle5th, Cycle6th, Cycle7th}

var cycleAliases = map[string]Cycle{
	"4": Cycle4th, "4th": Cycle4th, "iv": Cycle4th,
	"5": Cycle5th, "5th": Cycle5th, "v": Cycle5th,
	"6": Cycle6th, "6th": Cycle6th, "vi": Cycle6th,
	"7": Cycle7th, "7th": Cycle7th, "vii": Cycle7th,
}

// Rank returns the position of the cycle in CycleOrder, or -1 when unknown.
func (c Cycle) Rank() int {
	for i, known := range CycleOrder {
		if c == known {
			return i
		}
	}
	return -1
}

// Valid reports whether the cycle is one of the declared cycles.
func (c Cycle) Valid() bool {
	return c.Rank() >= 0
}

// ParseCycle accepts canonical values ("4th"), digits ("4"), roman numerals ("IV")
// and the classroom labels used on paper forms ("a IV-a", "clasa a IV-a").
func ParseCycle(raw string) (Cycle, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.TrimPrefix(v, "clasa ")
	v = strings.TrimPrefix(v, "a ")
	v = strings.TrimSuffix(v, "-a")
	c, ok := cycleAliases[strings.TrimSpace(v)]
	return c, ok
}
