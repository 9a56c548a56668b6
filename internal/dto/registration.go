package dto

import (
	"time"

	"github.com/noah-isme/contest-seating-api/internal/models"
)

// RegistrationStudentInput is one student listed on a submission.
type RegistrationStudentInput struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

// SubmitRegistrationRequest captures POST /registrations payload. Cycle accepts aliases such as "IV" or "a IV-a".
type SubmitRegistrationRequest struct {
	SchoolID     string                     `json:"schoolId" validate:"required"`
	Cycle        string                     `json:"cycle" validate:"required"`
	TeacherEmail string                     `json:"teacherEmail" validate:"required,email,max=200"`
	Phone        string                     `json:"phone" validate:"required,max=32"`
	Students     []RegistrationStudentInput `json:"students" validate:"required,min=1,dive"`
}

// RegistrationResponse is returned after a successful submission.
type RegistrationResponse struct {
	ID        string                       `json:"id"`
	SchoolID  string                       `json:"schoolId"`
	Cycle     models.Cycle                 `json:"cycle"`
	Students  []models.RegistrationStudent `json:"students"`
	CreatedAt time.Time                    `json:"createdAt"`
}

// RenameStudentRequest updates a registered student's name.
type RenameStudentRequest struct {
	FullName string `json:"fullName" validate:"required,max=120"`
}

// DeleteStudentResponse reports what a student removal touched.
type DeleteStudentResponse struct {
	StudentID           string `json:"studentId"`
	RegistrationRemoved bool   `json:"registrationRemoved"`
}

// RegistrationStatusResponse is the public registration window.
type RegistrationStatusResponse struct {
	IsActive    bool   `json:"isActive"`
	Message     string `json:"message,omitempty"`
	CycleQuota  int    `json:"cycleQuota"`
	ContestName string `json:"contestName,omitempty"`
}
