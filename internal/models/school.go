package models

import "time"

// School is a participating school identified by name within a county and locality.
type School struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	County    string    `db:"county" json:"county"`
	Locality  string    `db:"locality" json:"locality"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SchoolFilter captures list filters for schools.
type SchoolFilter struct {
	County    string
	Locality  string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// SchoolRegistrationCount is a school with the number of students it registered.
type SchoolRegistrationCount struct {
	SchoolID     string `db:"school_id" json:"school_id"`
	Name         string `db:"name" json:"name"`
	County       string `db:"county" json:"county"`
	Locality     string `db:"locality" json:"locality"`
	StudentCount int    `db:"student_count" json:"student_count"`
}
