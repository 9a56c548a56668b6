package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contest-seating-api/internal/dto"
	"github.com/noah-isme/contest-seating-api/internal/models"
	appErrors "github.com/noah-isme/contest-seating-api/pkg/errors"
	"github.com/noah-isme/contest-seating-api/pkg/response"
)

type registrationService interface {
	Status(ctx context.Context) (*dto.RegistrationStatusResponse, error)
	Submit(ctx context.Context, req dto.SubmitRegistrationRequest) (*dto.RegistrationResponse, error)
	ListBySchool(ctx context.Context, schoolID string) ([]models.RegisteredStudent, error)
	RenameStudent(ctx context.Context, id string, req dto.RenameStudentRequest, actor *models.JWTClaims) error
	DeleteStudent(ctx context.Context, id string, actor *models.JWTClaims) (*dto.DeleteStudentResponse, error)
}

// RegistrationHandler serves the public submission form and the admin student editor.
type RegistrationHandler struct {
	registrations registrationService
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(registrations registrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

// Status godoc
// @Summary Registration window status
// @Tags Registrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /status [get]
func (h *RegistrationHandler) Status(c *gin.Context) {
	status, err := h.registrations.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Submit godoc
// @Summary Submit a registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body dto.SubmitRegistrationRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	var req dto.SubmitRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	registration, err := h.registrations.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registration)
}

// SchoolStudents godoc
// @Summary List students registered by a school
// @Tags Registrations
// @Produce json
// @Param id path string true "School ID"
// @Success 200 {object} response.Envelope
// @Router /schools/{id}/students [get]
func (h *RegistrationHandler) SchoolStudents(c *gin.Context) {
	students, err := h.registrations.ListBySchool(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// RenameStudent godoc
// @Summary Rename a registered student
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.RenameStudentRequest true "New name"
// @Success 204
// @Router /registration-students/{id} [put]
func (h *RegistrationHandler) RenameStudent(c *gin.Context) {
	var req dto.RenameStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	if err := h.registrations.RenameStudent(c.Request.Context(), c.Param("id"), req, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteStudent godoc
// @Summary Remove a student from its registration
// @Tags Registrations
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /registration-students/{id} [delete]
func (h *RegistrationHandler) DeleteStudent(c *gin.Context) {
	result, err := h.registrations.DeleteStudent(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
