package dto

import "time"

// StatisticsResponse aggregates registration totals.
type StatisticsResponse struct {
	TotalSchools  int              `json:"totalSchools"`
	TotalStudents int              `json:"totalStudents"`
	Cycles        []CycleCountItem `json:"cycles"`
	GeneratedAt   time.Time        `json:"generatedAt"`
}
