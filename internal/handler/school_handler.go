package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contest-seating-api/internal/dto"
	"github.com/noah-isme/contest-seating-api/internal/models"
	appErrors "github.com/noah-isme/contest-seating-api/pkg/errors"
	"github.com/noah-isme/contest-seating-api/pkg/response"
)

const maxImportSize = 10 << 20

type schoolService interface {
	List(ctx context.Context, filter models.SchoolFilter) ([]models.School, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.School, error)
	Create(ctx context.Context, req dto.SchoolRequest) (*models.School, error)
	Update(ctx context.Context, id string, req dto.SchoolRequest) (*models.School, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) (*dto.SchoolDeleteResponse, error)
	Import(ctx context.Context, r io.Reader, format string, actor *models.JWTClaims) (*dto.SchoolImportResult, error)
	Counties(ctx context.Context) ([]string, error)
	Localities(ctx context.Context, county string) ([]string, error)
	SchoolsIn(ctx context.Context, county, locality string) ([]models.School, error)
}

// SchoolHandler exposes school administration and the public lookup cascade.
type SchoolHandler struct {
	schools schoolService
}

// NewSchoolHandler constructs a SchoolHandler.
func NewSchoolHandler(schools schoolService) *SchoolHandler {
	return &SchoolHandler{schools: schools}
}

// List godoc
// @Summary List schools
// @Tags Schools
// @Produce json
// @Param county query string false "County"
// @Param locality query string false "Locality"
// @Param search query string false "Name search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schools [get]
func (h *SchoolHandler) List(c *gin.Context) {
	filter := models.SchoolFilter{
		County:    strings.TrimSpace(c.Query("county")),
		Locality:  strings.TrimSpace(c.Query("locality")),
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}
	schools, pagination, err := h.schools.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schools, pagination)
}

// Get godoc
// @Summary Get a school
// @Tags Schools
// @Produce json
// @Param id path string true "School ID"
// @Success 200 {object} response.Envelope
// @Router /schools/{id} [get]
func (h *SchoolHandler) Get(c *gin.Context) {
	school, err := h.schools.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}

// Create godoc
// @Summary Create a school
// @Tags Schools
// @Accept json
// @Produce json
// @Param payload body dto.SchoolRequest true "School payload"
// @Success 201 {object} response.Envelope
// @Router /schools [post]
func (h *SchoolHandler) Create(c *gin.Context) {
	var req dto.SchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid school payload"))
		return
	}
	school, err := h.schools.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, school)
}

// Update godoc
// @Summary Update a school
// @Tags Schools
// @Accept json
// @Produce json
// @Param id path string true "School ID"
// @Param payload body dto.SchoolRequest true "School payload"
// @Success 200 {object} response.Envelope
// @Router /schools/{id} [put]
func (h *SchoolHandler) Update(c *gin.Context) {
	var req dto.SchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid school payload"))
		return
	}
	school, err := h.schools.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}

// Delete godoc
// @Summary Delete a school with its registrations
// @Tags Schools
// @Produce json
// @Param id path string true "School ID"
// @Success 200 {object} response.Envelope
// @Router /schools/{id} [delete]
func (h *SchoolHandler) Delete(c *gin.Context) {
	result, err := h.schools.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Import godoc
// @Summary Bulk import schools from CSV or XLSX
// @Tags Schools
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file with Name, County and Locality columns"
// @Param format formData string false "csv or xlsx, derived from the file name when omitted"
// @Success 200 {object} response.Envelope
// @Router /schools/import [post]
func (h *SchoolHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	if fileHeader.Size > maxImportSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "import file is too large"))
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.PostForm("format")))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	result, err := h.schools.Import(c.Request.Context(), file, format, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Counties godoc
// @Summary Counties with participating schools
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/counties [get]
func (h *SchoolHandler) Counties(c *gin.Context) {
	counties, err := h.schools.Counties(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counties, nil)
}

// Localities godoc
// @Summary Localities of a county
// @Tags Public
// @Produce json
// @Param county query string true "County"
// @Success 200 {object} response.Envelope
// @Router /public/localities [get]
func (h *SchoolHandler) Localities(c *gin.Context) {
	localities, err := h.schools.Localities(c.Request.Context(), c.Query("county"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, localities, nil)
}

// Lookup godoc
// @Summary Schools of a county and locality
// @Tags Public
// @Produce json
// @Param county query string true "County"
// @Param locality query string true "Locality"
// @Success 200 {object} response.Envelope
// @Router /public/schools [get]
func (h *SchoolHandler) Lookup(c *gin.Context) {
	schools, err := h.schools.SchoolsIn(c.Request.Context(), c.Query("county"), c.Query("locality"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schools, nil)
}
