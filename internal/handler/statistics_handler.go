package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contest-seating-api/internal/dto"
	"github.com/noah-isme/contest-seating-api/internal/models"
	"github.com/noah-isme/contest-seating-api/pkg/response"
)

type statisticsService interface {
	Overview(ctx context.Context) (*dto.StatisticsResponse, bool, error)
	RegisteredSchools(ctx context.Context) ([]models.SchoolRegistrationCount, bool, error)
}

// StatisticsHandler exposes registration totals.
type StatisticsHandler struct {
	stats statisticsService
}

// NewStatisticsHandler constructs a StatisticsHandler.
func NewStatisticsHandler(stats statisticsService) *StatisticsHandler {
	return &StatisticsHandler{stats: stats}
}

// Overview godoc
// @Summary Registration statistics
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /statistics [get]
func (h *StatisticsHandler) Overview(c *gin.Context) {
	start := time.Now()
	overview, cacheHit, err := h.stats.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, overview, cacheHit, start)
}

// RegisteredSchools godoc
// @Summary Schools with registered students, busiest first
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schools/registered [get]
func (h *StatisticsHandler) RegisteredSchools(c *gin.Context) {
	start := time.Now()
	schools, cacheHit, err := h.stats.RegisteredSchools(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, schools, cacheHit, start)
}
