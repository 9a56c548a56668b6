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

type configurationService interface {
	List(ctx context.Context) ([]dto.ConfigurationItem, error)
	Get(ctx context.Context, key string) (*dto.ConfigurationItem, error)
	Update(ctx context.Context, key, value string, actor *models.JWTClaims) (*dto.ConfigurationItem, error)
	BulkUpdate(ctx context.Context, req dto.BulkUpdateConfigurationRequest, actor *models.JWTClaims) ([]dto.ConfigurationItem, error)
	SetRegistrationWindow(ctx context.Context, req dto.RegistrationWindowRequest, actor *models.JWTClaims) (models.RegistrationWindow, error)
}

// ConfigurationHandler exposes runtime settings such as the registration window and cycle quota.
type ConfigurationHandler struct {
	settings configurationService
}

// NewConfigurationHandler builds a ConfigurationHandler.
func NewConfigurationHandler(settings configurationService) *ConfigurationHandler {
	return &ConfigurationHandler{settings: settings}
}

// List godoc
// @Summary List runtime settings
// @Tags Configuration
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /configuration [get]
func (h *ConfigurationHandler) List(c *gin.Context) {
	items, err := h.settings.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get a runtime setting
// @Tags Configuration
// @Produce json
// @Security BearerAuth
// @Param key path string true "Setting key"
// @Success 200 {object} response.Envelope
// @Router /configuration/{key} [get]
func (h *ConfigurationHandler) Get(c *gin.Context) {
	item, err := h.settings.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Update godoc
// @Summary Change a runtime setting
// @Tags Configuration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Setting key"
// @Param payload body dto.UpdateConfigurationRequest true "New value"
// @Success 200 {object} response.Envelope
// @Router /configuration/{key} [put]
func (h *ConfigurationHandler) Update(c *gin.Context) {
	var req dto.UpdateConfigurationRequest
	if !bindJSON(c, &req, "invalid setting payload") {
		return
	}
	key := c.Param("key")
	if req.Key != "" && req.Key != key {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "key mismatch between path and body"))
		return
	}
	item, err := h.settings.Update(c.Request.Context(), key, req.Value, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// BulkUpdate godoc
// @Summary Change several runtime settings
// @Tags Configuration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BulkUpdateConfigurationRequest true "Settings"
// @Success 200 {object} response.Envelope
// @Router /configuration [put]
func (h *ConfigurationHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkUpdateConfigurationRequest
	if !bindJSON(c, &req, "invalid settings payload") {
		return
	}
	items, err := h.settings.BulkUpdate(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// SetRegistrationWindow godoc
// @Summary Open or close public registrations
// @Tags Configuration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RegistrationWindowRequest true "Window state"
// @Success 200 {object} response.Envelope
// @Router /registration-window [put]
func (h *ConfigurationHandler) SetRegistrationWindow(c *gin.Context) {
	var req dto.RegistrationWindowRequest
	if !bindJSON(c, &req, "invalid registration window payload") {
		return
	}
	window, err := h.settings.SetRegistrationWindow(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}
