package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contest-seating-api/internal/dto"
	"github.com/noah-isme/contest-seating-api/internal/models"
	appErrors "github.com/noah-isme/contest-seating-api/pkg/errors"
	"github.com/noah-isme/contest-seating-api/pkg/response"
)

type allocationService interface {
	Summary(ctx context.Context) (*dto.AllocationSummaryResponse, error)
	Run(ctx context.Context, req dto.RunAllocationRequest, actor *models.JWTClaims) (*dto.AllocationRunResponse, error)
	Latest(ctx context.Context) (*dto.AllocationRunResponse, bool, error)
}

// AllocationHandler triggers seat allocation runs and reports their results.
type AllocationHandler struct {
	allocations allocationService
}

// NewAllocationHandler constructs an AllocationHandler.
func NewAllocationHandler(allocations allocationService) *AllocationHandler {
	return &AllocationHandler{allocations: allocations}
}

// Summary godoc
// @Summary Demand against capacity before a run
// @Tags Allocation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /allocations/summary [get]
func (h *AllocationHandler) Summary(c *gin.Context) {
	summary, err := h.allocations.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Run godoc
// @Summary Run the seat allocation
// @Tags Allocation
// @Accept json
// @Produce json
// @Param payload body dto.RunAllocationRequest false "Run options"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /allocations [post]
func (h *AllocationHandler) Run(c *gin.Context) {
	var req dto.RunAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid allocation payload"))
		return
	}
	run, err := h.allocations.Run(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, run)
}

// Latest godoc
// @Summary Latest allocation run grouped by room
// @Tags Allocation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /allocations/latest [get]
func (h *AllocationHandler) Latest(c *gin.Context) {
	start := time.Now()
	run, cacheHit, err := h.allocations.Latest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, run, cacheHit, start)
}
