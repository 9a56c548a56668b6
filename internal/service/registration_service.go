package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/contest-seating-api/internal/dto"
	"github.com/noah-isme/contest-seating-api/internal/models"
	"github.com/noah-isme/contest-seating-api/internal/repository"
	appErrors "github.com/noah-isme/contest-seating-api/pkg/errors"
	"github.com/noah-isme/contest-seating-api/pkg/events"
)

type registrationRepository interface {
	CreateWithQuota(ctx context.Context, reg *models.Registration, quota int) error
	ListStudents(ctx context.Context, filter repository.RegisteredStudentFilter) ([]models.RegisteredStudent, error)
	RenameStudent(ctx context.Context, id, fullName string) (string, error)
	DeleteStudent(ctx context.Context, id string) (bool, error)
}

type registrationWindowSource interface {
	RegistrationWindow(ctx context.Context) (models.RegistrationWindow, error)
}

// RegistrationService accepts school registrations and powers the student editor.
type RegistrationService struct {
	repo      registrationRepository
	window    registrationWindowSource
	audit     auditLogger
	publisher events.Publisher
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs the registration service.
func NewRegistrationService(repo registrationRepository, window registrationWindowSource, audit auditLogger, publisher events.Publisher, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RegistrationService{
		repo:      repo,
		window:    window,
		audit:     audit,
		publisher: publisher,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Status returns the public registration window.
func (s *RegistrationService) Status(ctx context.Context) (*dto.RegistrationStatusResponse, error) {
	window, err := s.window.RegistrationWindow(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.RegistrationStatusResponse{
		IsActive:    window.IsActive,
		Message:     window.Message,
		CycleQuota:  window.CycleQuota,
		ContestName: window.ContestName,
	}, nil
}

// Submit stores a registration for one school and cycle.
func (s *RegistrationService) Submit(ctx context.Context, req dto.SubmitRegistrationRequest) (*dto.RegistrationResponse, error) {
	window, err := s.window.RegistrationWindow(ctx)
	if err != nil {
		return nil, err
	}
	if !window.IsActive {
		return nil, appErrors.Clone(appErrors.ErrRegistrationClosed, window.Message)
	}

	req.SchoolID = strings.TrimSpace(req.SchoolID)
	req.TeacherEmail = strings.TrimSpace(req.TeacherEmail)
	req.Phone = strings.TrimSpace(req.Phone)
	for i := range req.Students {
		req.Students[i].FullName = strings.TrimSpace(req.Students[i].FullName)
		req.Students[i].Phone = strings.TrimSpace(req.Students[i].Phone)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	cycle, ok := models.ParseCycle(req.Cycle)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown cycle %q", req.Cycle))
	}
	if len(req.Students) > window.CycleQuota {
		return nil, appErrors.Clone(appErrors.ErrQuotaExceeded, fmt.Sprintf("at most %d students may be registered per cycle", window.CycleQuota))
	}

	reg := &models.Registration{
		SchoolID:     req.SchoolID,
		Cycle:        cycle,
		TeacherEmail: req.TeacherEmail,
		Phone:        req.Phone,
		Students:     make([]models.RegistrationStudent, 0, len(req.Students)),
	}
	names := make([]string, 0, len(req.Students))
	for _, st := range req.Students {
		reg.Students = append(reg.Students, models.RegistrationStudent{FullName: st.FullName, Phone: st.Phone})
		names = append(names, st.FullName)
	}

	if err := s.repo.CreateWithQuota(ctx, reg, window.CycleQuota); err != nil {
		var quotaErr *repository.QuotaExceededError
		switch {
		case errors.As(err, &quotaErr):
			return nil, appErrors.Clone(appErrors.ErrQuotaExceeded,
				fmt.Sprintf("school already registered %d of %d students for cycle %s", quotaErr.Existing, quotaErr.Quota, quotaErr.Cycle)).
				WithDetails(map[string]interface{}{
					"cycle":     quotaErr.Cycle,
					"existing":  quotaErr.Existing,
					"quota":     quotaErr.Quota,
					"remaining": quotaErr.Quota - quotaErr.Existing,
				})
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store registration")
		}
	}

	s.metrics.ObserveRegistration(string(cycle), len(reg.Students))
	s.invalidate(ctx)
	s.publish(ctx, events.Event{
		Type:       events.TypeRegistrationSubmitted,
		OccurredAt: reg.CreatedAt,
		Payload: events.RegistrationSubmitted{
			RegistrationID: reg.ID,
			SchoolID:       reg.SchoolID,
			Cycle:          string(reg.Cycle),
			TeacherEmail:   reg.TeacherEmail,
			Students:       names,
		},
	})
	s.logger.Info("registration submitted",
		zap.String("registration_id", reg.ID),
		zap.String("school_id", reg.SchoolID),
		zap.String("cycle", string(reg.Cycle)),
		zap.Int("students", len(reg.Students)),
	)

	return &dto.RegistrationResponse{
		ID:        reg.ID,
		SchoolID:  reg.SchoolID,
		Cycle:     reg.Cycle,
		Students:  reg.Students,
		CreatedAt: reg.CreatedAt,
	}, nil
}

// ListBySchool returns the students a school registered, ordered by cycle and position.
func (s *RegistrationService) ListBySchool(ctx context.Context, schoolID string) ([]models.RegisteredStudent, error) {
	students, err := s.repo.ListStudents(ctx, repository.RegisteredStudentFilter{SchoolID: schoolID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registered students")
	}
	if students == nil {
		students = []models.RegisteredStudent{}
	}
	return students, nil
}

// RenameStudent changes the name of a registered student.
func (s *RegistrationService) RenameStudent(ctx context.Context, id string, req dto.RenameStudentRequest, actor *models.JWTClaims) error {
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	previous, err := s.repo.RenameStudent(ctx, id, req.FullName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rename student")
	}
	s.recordAudit(ctx, actor, models.AuditActionStudentRename, id,
		map[string]string{"fullName": previous},
		map[string]string{"fullName": req.FullName})
	return nil
}

// DeleteStudent removes a student; the registration goes with its last student.
func (s *RegistrationService) DeleteStudent(ctx context.Context, id string, actor *models.JWTClaims) (*dto.DeleteStudentResponse, error) {
	removed, err := s.repo.DeleteStudent(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.recordAudit(ctx, actor, models.AuditActionStudentDelete, id, nil, map[string]bool{"registrationRemoved": removed})
	s.invalidate(ctx)
	return &dto.DeleteStudentResponse{StudentID: id, RegistrationRemoved: removed}, nil
}

func (s *RegistrationService) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, statisticsCachePattern)
}

func (s *RegistrationService) publish(ctx context.Context, event events.Event) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", event.Type), zap.Error(err))
	}
}

func (s *RegistrationService) recordAudit(ctx context.Context, actor *models.JWTClaims, action, studentID string, oldValues, newValues interface{}) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     userIDPtr(actor),
		Action:     action,
		Resource:   "registration_student",
		ResourceID: strPtr(studentID),
		IPAddress:  "system",
		UserAgent:  "registration-service",
	}
	if oldValues != nil {
		entry.OldValues, _ = json.Marshal(oldValues)
	}
	if newValues != nil {
		entry.NewValues, _ = json.Marshal(newValues)
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record student audit", zap.String("action", action), zap.Error(err))
	}
}
