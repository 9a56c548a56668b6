package seating

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collators keep internal buffers and are not safe for concurrent use, so every sort builds its own.

func newNameCollator() *collate.Collator {
	return collate.New(language.Romanian, collate.Loose)
}

func newRoomCollator() *collate.Collator {
	return collate.New(language.Romanian, collate.Loose, collate.Numeric)
}

// CompareRoomNames orders room names numeric-aware ("Sala 2" before "Sala 10").
func CompareRoomNames(a, b string) int {
	return newRoomCollator().CompareString(a, b)
}
