package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contest-seating-api/internal/dto"
	"github.com/noah-isme/contest-seating-api/internal/models"
	appErrors "github.com/noah-isme/contest-seating-api/pkg/errors"
)

type statisticsServiceMock struct {
	overviewErr error
}

func (m statisticsServiceMock) Overview(ctx context.Context) (*dto.StatisticsResponse, bool, error) {
	if m.overviewErr != nil {
		return nil, false, m.overviewErr
	}
	return &dto.StatisticsResponse{TotalSchools: 2, TotalStudents: 7, GeneratedAt: time.Now()}, false, nil
}

func (m statisticsServiceMock) RegisteredSchools(ctx context.Context) ([]models.SchoolRegistrationCount, bool, error) {
	return []models.SchoolRegistrationCount{{SchoolID: "s1", StudentCount: 4}}, true, nil
}

func TestStatisticsHandlerOverview(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStatisticsHandler(statisticsServiceMock{})
	c, w := newGinContext(http.MethodGet, "/statistics", nil)
	handler.Overview(c)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["totalStudents"])
	assert.Equal(t, false, envelope["meta"].(map[string]interface{})["cache_hit"])

	failing := NewStatisticsHandler(statisticsServiceMock{overviewErr: appErrors.Clone(appErrors.ErrInternal, "boom")})
	c, w = newGinContext(http.MethodGet, "/statistics", nil)
	failing.Overview(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStatisticsHandlerRegisteredSchools(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStatisticsHandler(statisticsServiceMock{})
	c, w := newGinContext(http.MethodGet, "/schools/registered", nil)
	handler.RegisteredSchools(c)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Len(t, envelope["data"], 1)
	assert.Equal(t, true, envelope["meta"].(map[string]interface{})["cache_hit"])
}
