package models

import "time"

// Registration is one submission of a school for a single cycle.
type Registration struct {
	ID           string    `db:"id" json:"id"`
	SchoolID     string    `db:"school_id" json:"school_id"`
	Cycle        Cycle     `db:"cycle" json:"cycle"`
	TeacherEmail string    `db:"teacher_email" json:"teacher_email"`
	Phone        string    `db:"phone" json:"phone"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	Students []RegistrationStudent `db:"-" json:"students"`
}

// RegistrationStudent is a single student listed on a registration.
type RegistrationStudent struct {
	ID             string    `db:"id" json:"id"`
	RegistrationID string    `db:"registration_id" json:"registration_id"`
	FullName       string    `db:"full_name" json:"full_name"`
	Phone          string    `db:"phone" json:"phone"`
	Position       int       `db:"position" json:"position"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// RegisteredStudent is the denormalised view of a student joined with its registration and school.
type RegisteredStudent struct {
	ID             string `db:"id" json:"id"`
	RegistrationID string `db:"registration_id" json:"registration_id"`
	FullName       string `db:"full_name" json:"full_name"`
	Phone          string `db:"phone" json:"phone"`
	Cycle          Cycle  `db:"cycle" json:"cycle"`
	SchoolID       string `db:"school_id" json:"school_id"`
	SchoolName     string `db:"school_name" json:"school_name"`
	County         string `db:"county" json:"county"`
	Locality       string `db:"locality" json:"locality"`
	TeacherEmail   string `db:"teacher_email" json:"teacher_email"`
	TeacherPhone   string `db:"teacher_phone" json:"teacher_phone"`
}

// CycleCount is the number of students registered for a cycle.
type CycleCount struct {
	Cycle Cycle `db:"cycle" json:"cycle"`
	Count int   `db:"count" json:"count"`
}
