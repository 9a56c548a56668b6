package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/contest-seating-api/internal/dto"
	"github.com/noah-isme/contest-seating-api/internal/models"
	appErrors "github.com/noah-isme/contest-seating-api/pkg/errors"
)

type configurationRepository interface {
	ListByKeys(ctx context.Context, keys []string) ([]models.Configuration, error)
	Get(ctx context.Context, key string) (*models.Configuration, error)
	Upsert(ctx context.Context, cfg *models.Configuration) error
	BulkUpsert(ctx context.Context, cfgs []models.Configuration) error
}

// settingDef declares one admin-editable contest setting.
type settingDef struct {
	key         string
	kind        models.ConfigurationType
	description string
	fallback    string
	min, max    int
}

// contestSettings lists every editable setting in display order.
var contestSettings = []settingDef{
	{
		key:         models.ConfigKeyRegistrationOpen,
		kind:        models.ConfigurationTypeBoolean,
		description: "Whether schools may submit registrations",
		fallback:    "true",
	},
	{
		key:         models.ConfigKeyRegistrationMessage,
		kind:        models.ConfigurationTypeString,
		description: "Message shown on the registration form while it is closed",
		fallback:    "Registrations are closed.",
	},
	{
		key:         models.ConfigKeyCycleQuota,
		kind:        models.ConfigurationTypeInteger,
		description: "Maximum students a school may register per cycle",
		fallback:    "5",
		min:         1,
		max:         100,
	},
	{
		key:         models.ConfigKeyContestName,
		kind:        models.ConfigurationTypeString,
		description: "Contest name printed on exports",
	},
}

func lookupSetting(key string) (settingDef, error) {
	for _, def := range contestSettings {
		if def.key == key {
			return def, nil
		}
	}
	return settingDef{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported setting %q", key))
}

func settingKeys() []string {
	keys := make([]string, len(contestSettings))
	for i, def := range contestSettings {
		keys[i] = def.key
	}
	return keys
}

// normalize validates raw against the setting type and returns its canonical form.
func (def settingDef) normalize(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	switch def.kind {
	case models.ConfigurationTypeBoolean:
		b, err := strconv.ParseBool(strings.ToLower(value))
		if err != nil {
			return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s expects true or false", def.key))
		}
		return strconv.FormatBool(b), nil
	case models.ConfigurationTypeInteger:
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s expects a whole number", def.key))
		}
		if n < def.min || (def.max > 0 && n > def.max) {
			return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be between %d and %d", def.key, def.min, def.max))
		}
		return strconv.Itoa(n), nil
	default:
		return value, nil
	}
}

func (def settingDef) item(value string, stored *models.Configuration) dto.ConfigurationItem {
	item := dto.ConfigurationItem{
		Key:         def.key,
		Value:       value,
		Type:        string(def.kind),
		Description: def.description,
	}
	if stored != nil && stored.Description != nil && *stored.Description != "" {
		item.Description = *stored.Description
	}
	return item
}

// ConfigurationServiceConfig overrides built-in fallbacks, usually from the environment.
type ConfigurationServiceConfig struct {
	Defaults map[string]string
}

// ConfigurationService reads and edits the contest settings stored in the database.
// Unset settings resolve to environment defaults, then to built-in fallbacks.
type ConfigurationService struct {
	repo      configurationRepository
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	defaults  map[string]string
}

// NewConfigurationService constructs a ConfigurationService.
func NewConfigurationService(repo configurationRepository, audit auditLogger, validate *validator.Validate, logger *zap.Logger, cfg ConfigurationServiceConfig) *ConfigurationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := make(map[string]string, len(contestSettings))
	for _, def := range contestSettings {
		defaults[def.key] = def.fallback
		if v := cfg.Defaults[def.key]; v != "" {
			defaults[def.key] = v
		}
	}
	return &ConfigurationService{repo: repo, audit: audit, validator: validate, logger: logger, defaults: defaults}
}

// List returns every editable setting with its effective value.
func (s *ConfigurationService) List(ctx context.Context) ([]dto.ConfigurationItem, error) {
	stored, err := s.stored(ctx, settingKeys())
	if err != nil {
		return nil, err
	}
	items := make([]dto.ConfigurationItem, 0, len(contestSettings))
	for _, def := range contestSettings {
		if row, ok := stored[def.key]; ok {
			items = append(items, def.item(row.Value, &row))
			continue
		}
		items = append(items, def.item(s.defaults[def.key], nil))
	}
	return items, nil
}

// Get returns one setting, falling back to its default when never stored.
func (s *ConfigurationService) Get(ctx context.Context, key string) (*dto.ConfigurationItem, error) {
	def, err := lookupSetting(key)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.Get(ctx, key)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		item := def.item(s.defaults[key], nil)
		return &item, nil
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load setting")
	}
	item := def.item(row.Value, row)
	return &item, nil
}

// Update stores a single setting after normalising its value.
func (s *ConfigurationService) Update(ctx context.Context, key, value string, actor *models.JWTClaims) (*dto.ConfigurationItem, error) {
	def, err := lookupSetting(key)
	if err != nil {
		return nil, err
	}
	value, err = def.normalize(value)
	if err != nil {
		return nil, err
	}
	prev, err := s.repo.Get(ctx, key)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load setting")
	}
	if err := checkKind(def, prev); err != nil {
		return nil, err
	}

	row := s.row(def, value, actor)
	if err := s.repo.Upsert(ctx, &row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store setting")
	}
	s.recordChange(ctx, actor, key, prev, value)
	item := def.item(value, nil)
	return &item, nil
}

// BulkUpdate validates every item first and then stores them in one transaction.
func (s *ConfigurationService) BulkUpdate(ctx context.Context, req dto.BulkUpdateConfigurationRequest, actor *models.JWTClaims) ([]dto.ConfigurationItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}

	keys := make([]string, len(req.Items))
	for i, it := range req.Items {
		keys[i] = it.Key
	}
	stored, err := s.stored(ctx, keys)
	if err != nil {
		return nil, err
	}

	rows := make([]models.Configuration, 0, len(req.Items))
	specs := make([]settingDef, 0, len(req.Items))
	for _, it := range req.Items {
		def, err := lookupSetting(it.Key)
		if err != nil {
			return nil, err
		}
		value, err := def.normalize(it.Value)
		if err != nil {
			return nil, err
		}
		if prev, ok := stored[it.Key]; ok {
			if err := checkKind(def, &prev); err != nil {
				return nil, err
			}
		}
		rows = append(rows, s.row(def, value, actor))
		specs = append(specs, def)
	}
	if err := s.repo.BulkUpsert(ctx, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store settings")
	}

	items := make([]dto.ConfigurationItem, len(rows))
	for i, row := range rows {
		items[i] = specs[i].item(row.Value, nil)
		var prev *models.Configuration
		if p, ok := stored[row.Key]; ok {
			prev = &p
		}
		s.recordChange(ctx, actor, row.Key, prev, row.Value)
	}
	return items, nil
}

// RegistrationWindow resolves whether submissions are open, the closed message and the cycle quota.
// The message is only reported while registrations are closed.
func (s *ConfigurationService) RegistrationWindow(ctx context.Context) (models.RegistrationWindow, error) {
	stored, err := s.stored(ctx, settingKeys())
	if err != nil {
		return models.RegistrationWindow{}, err
	}
	effective := func(key string) string {
		if row, ok := stored[key]; ok {
			return row.Value
		}
		return s.defaults[key]
	}

	open, _ := strconv.ParseBool(effective(models.ConfigKeyRegistrationOpen))
	window := models.RegistrationWindow{IsActive: open, ContestName: effective(models.ConfigKeyContestName)}
	if !open {
		window.Message = effective(models.ConfigKeyRegistrationMessage)
	}

	raw := effective(models.ConfigKeyCycleQuota)
	quota, err := strconv.Atoi(raw)
	if err != nil || quota <= 0 {
		def, _ := lookupSetting(models.ConfigKeyCycleQuota)
		s.logger.Warn("ignoring invalid cycle quota", zap.String("value", raw), zap.String("fallback", def.fallback))
		quota, _ = strconv.Atoi(def.fallback)
	}
	window.CycleQuota = quota
	return window, nil
}

// SetRegistrationWindow opens or closes submissions and optionally replaces the closed notice.
func (s *ConfigurationService) SetRegistrationWindow(ctx context.Context, req dto.RegistrationWindowRequest, actor *models.JWTClaims) (models.RegistrationWindow, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.RegistrationWindow{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration window payload")
	}
	bulk := dto.BulkUpdateConfigurationRequest{Items: []dto.UpdateConfigurationRequest{
		{Key: models.ConfigKeyRegistrationOpen, Value: strconv.FormatBool(*req.Open)},
	}}
	if msg := strings.TrimSpace(req.Message); msg != "" {
		bulk.Items = append(bulk.Items, dto.UpdateConfigurationRequest{Key: models.ConfigKeyRegistrationMessage, Value: msg})
	}
	if _, err := s.BulkUpdate(ctx, bulk, actor); err != nil {
		return models.RegistrationWindow{}, err
	}
	s.logger.Info("registration window changed", zap.Bool("open", *req.Open), zap.String("actor", actorID(actor)))
	return s.RegistrationWindow(ctx)
}

func (s *ConfigurationService) stored(ctx context.Context, keys []string) (map[string]models.Configuration, error) {
	rows, err := s.repo.ListByKeys(ctx, keys)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	byKey := make(map[string]models.Configuration, len(rows))
	for _, row := range rows {
		byKey[row.Key] = row
	}
	return byKey, nil
}

func (s *ConfigurationService) row(def settingDef, value string, actor *models.JWTClaims) models.Configuration {
	return models.Configuration{
		Key:         def.key,
		Value:       value,
		Type:        def.kind,
		Description: strPtr(def.description),
		UpdatedBy:   userIDPtr(actor),
	}
}

func checkKind(def settingDef, stored *models.Configuration) error {
	if stored != nil && stored.Type != def.kind {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is stored as %s, expected %s", def.key, stored.Type, def.kind))
	}
	return nil
}

func (s *ConfigurationService) recordChange(ctx context.Context, actor *models.JWTClaims, key string, prev *models.Configuration, value string) {
	if s.audit == nil {
		return
	}
	old := ""
	if prev != nil {
		old = prev.Value
	}
	oldBytes, _ := json.Marshal(map[string]string{"key": key, "value": old})
	newBytes, _ := json.Marshal(map[string]string{"key": key, "value": value})
	entry := &models.AuditLog{
		UserID:     userIDPtr(actor),
		Action:     models.AuditActionConfigurationSet,
		Resource:   "configuration",
		ResourceID: strPtr(key),
		OldValues:  oldBytes,
		NewValues:  newBytes,
		IPAddress:  "system",
		UserAgent:  "configuration-service",
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record setting change", zap.String("key", key), zap.Error(err))
	}
}
