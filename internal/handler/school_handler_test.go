package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contest-seating-api/internal/dto"
	"github.com/noah-isme/contest-seating-api/internal/models"
	appErrors "github.com/noah-isme/contest-seating-api/pkg/errors"
)

type schoolServiceMock struct {
	filter       models.SchoolFilter
	created      *dto.SchoolRequest
	createErr    error
	importFormat string
	importBody   string
	localitiesOf string
	lookup       [2]string
}

func (m *schoolServiceMock) List(ctx context.Context, filter models.SchoolFilter) ([]models.School, *models.Pagination, error) {
	m.filter = filter
	return []models.School{{ID: "s1", Name: "Școala 1"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (m *schoolServiceMock) Get(ctx context.Context, id string) (*models.School, error) {
	if id != "s1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
	}
	return &models.School{ID: id}, nil
}

func (m *schoolServiceMock) Create(ctx context.Context, req dto.SchoolRequest) (*models.School, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = &req
	return &models.School{ID: "s2", Name: req.Name}, nil
}

func (m *schoolServiceMock) Update(ctx context.Context, id string, req dto.SchoolRequest) (*models.School, error) {
	return &models.School{ID: id, Name: req.Name}, nil
}

func (m *schoolServiceMock) Delete(ctx context.Context, id string, actor *models.JWTClaims) (*dto.SchoolDeleteResponse, error) {
	return &dto.SchoolDeleteResponse{SchoolID: id, RemovedRegistrations: 2}, nil
}

func (m *schoolServiceMock) Import(ctx context.Context, r io.Reader, format string, actor *models.JWTClaims) (*dto.SchoolImportResult, error) {
	body, _ := io.ReadAll(r)
	m.importBody = string(body)
	m.importFormat = format
	return &dto.SchoolImportResult{Total: 1, Inserted: 1}, nil
}

func (m *schoolServiceMock) Counties(ctx context.Context) ([]string, error) {
	return []string{"Cluj", "Iași"}, nil
}

func (m *schoolServiceMock) Localities(ctx context.Context, county string) ([]string, error) {
	m.localitiesOf = county
	if county == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "county is required")
	}
	return []string{"Dej"}, nil
}

func (m *schoolServiceMock) SchoolsIn(ctx context.Context, county, locality string) ([]models.School, error) {
	m.lookup = [2]string{county, locality}
	return []models.School{}, nil
}

func TestSchoolHandlerListParsesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &schoolServiceMock{}
	handler := NewSchoolHandler(mock)

	c, w := newGinContext(http.MethodGet, "/schools?county=Cluj&search=%20lic%20&page=2&limit=10", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cluj", mock.filter.County)
	assert.Equal(t, "lic", mock.filter.Search)
	assert.Equal(t, 2, mock.filter.Page)
	assert.Equal(t, 10, mock.filter.PageSize)
	envelope := decodeEnvelope(t, w)
	assert.NotNil(t, envelope["pagination"])
}

func TestSchoolHandlerCreateAndGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &schoolServiceMock{}
	handler := NewSchoolHandler(mock)

	payload, _ := json.Marshal(dto.SchoolRequest{Name: "Liceul 2", County: "Cluj", Locality: "Dej"})
	c, w := newGinContext(http.MethodPost, "/schools", payload)
	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Liceul 2", mock.created.Name)

	c, w = newGinContext(http.MethodGet, "/schools/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	conflict := NewSchoolHandler(&schoolServiceMock{createErr: appErrors.Clone(appErrors.ErrConflict, "school already exists")})
	c, w = newGinContext(http.MethodPost, "/schools", payload)
	conflict.Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSchoolHandlerImportDerivesFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &schoolServiceMock{}
	handler := NewSchoolHandler(mock)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "Scoli.CSV")
	require.NoError(t, err)
	_, _ = part.Write([]byte("Nume,Județ,Localitate\nȘcoala 1,Cluj,Dej\n"))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/schools/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req
	withAdmin(c)

	handler.Import(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mock.importFormat)
	assert.Contains(t, mock.importBody, "Școala 1")
}

func TestSchoolHandlerImportRequiresFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSchoolHandler(&schoolServiceMock{})
	c, w := newGinContext(http.MethodPost, "/schools/import", nil)
	handler.Import(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchoolHandlerLookupCascade(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &schoolServiceMock{}
	handler := NewSchoolHandler(mock)

	c, w := newGinContext(http.MethodGet, "/public/counties", nil)
	handler.Counties(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeEnvelope(t, w)["data"], 2)

	c, w = newGinContext(http.MethodGet, "/public/localities", nil)
	handler.Localities(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodGet, "/public/localities?county=Cluj", nil)
	handler.Localities(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cluj", mock.localitiesOf)

	c, w = newGinContext(http.MethodGet, "/public/schools?county=Cluj&locality=Dej", nil)
	handler.Lookup(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [2]string{"Cluj", "Dej"}, mock.lookup)
}
