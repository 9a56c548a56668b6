package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/contest-seating-api/internal/models"
	"github.com/noah-isme/contest-seating-api/internal/seating"
	"github.com/noah-isme/contest-seating-api/pkg/export"
)

type roomFile struct {
	Rooms []roomEntry `yaml:"rooms"`
}

type roomEntry struct {
	Name  string `yaml:"name"`
	Floor string `yaml:"floor"`
	Seats int    `yaml:"seats"`
	Rows  int    `yaml:"rows"`
	Cols  int    `yaml:"cols"`
}

// studentColumns maps lower-cased header names to the student field they fill.
var studentColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"student":   "name",
	"nume":      "name",
	"elev":      "name",
	"cycle":     "cycle",
	"class":     "cycle",
	"ciclu":     "cycle",
	"clasa":     "cycle",
	"school":    "school",
	"scoala":    "school",
	"școala":    "school",
	"teacher":   "teacher",
	"profesor":  "teacher",
	"professor": "teacher",
}

func loadRoomsOrDefault(path string) ([]seating.Room, error) {
	if path == "" {
		rooms := make([]seating.Room, 0, len(models.DefaultRooms))
		for _, room := range models.DefaultRooms {
			rooms = append(rooms, seating.Room{Name: room.Name, Seats: room.Seats, Rows: room.Rows, Cols: room.Cols})
		}
		return rooms, nil
	}
	return loadRoomFile(path)
}

// Same bounds as the room API.
const (
	maxRoomSeats = 500
	maxRoomSide  = 50
)

func loadRoomFile(path string) ([]seating.Room, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rooms: %w", err)
	}
	var file roomFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse rooms: %w", err)
	}
	rooms := make([]seating.Room, 0, len(file.Rooms))
	seen := make(map[string]struct{}, len(file.Rooms))
	for i, entry := range file.Rooms {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("room %d has no name", i+1)
		}
		if entry.Seats <= 0 || entry.Seats > maxRoomSeats {
			return nil, fmt.Errorf("room %q must declare between 1 and %d seats", name, maxRoomSeats)
		}
		if entry.Rows < 0 || entry.Rows > maxRoomSide || entry.Cols < 0 || entry.Cols > maxRoomSide {
			return nil, fmt.Errorf("room %q rows and cols must be between 1 and %d (0 uses the default)", name, maxRoomSide)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("room %q is declared twice", name)
		}
		seen[key] = struct{}{}
		rooms = append(rooms, seating.Room{Name: name, Seats: entry.Seats, Rows: entry.Rows, Cols: entry.Cols})
	}
	return rooms, nil
}

func loadStudentFile(path string) ([]seating.Student, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open students: %w", err)
	}
	defer f.Close() //nolint:errcheck

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	table, err := export.ReadTable(f, format)
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, nil
	}

	index := map[string]int{}
	for i, header := range table[0] {
		if field, ok := studentColumns[strings.ToLower(strings.TrimSpace(header))]; ok {
			if _, taken := index[field]; !taken {
				index[field] = i
			}
		}
	}
	for _, required := range []string{"name", "cycle"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("students file is missing the %s column", required)
		}
	}

	cell := func(row []string, field string) string {
		i, ok := index[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	students := make([]seating.Student, 0, len(table)-1)
	for n, row := range table[1:] {
		name := cell(row, "name")
		if name == "" {
			continue
		}
		cycle, ok := models.ParseCycle(cell(row, "cycle"))
		if !ok {
			cycle = models.Cycle(cell(row, "cycle"))
		}
		id := cell(row, "id")
		if id == "" {
			id = strconv.Itoa(n + 1)
		}
		students = append(students, seating.Student{
			ID:       id,
			FullName: name,
			Cycle:    cycle,
			School:   cell(row, "school"),
			Teacher:  cell(row, "teacher"),
		})
	}
	return students, nil
}

func sortRoomsByName(rooms []seating.Room) {
	sort.SliceStable(rooms, func(i, j int) bool {
		return seating.CompareRoomNames(rooms[i].Name, rooms[j].Name) < 0
	})
}
