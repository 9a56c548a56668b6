package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/noah-isme/contest-seating-api/internal/dto"
	"github.com/noah-isme/contest-seating-api/internal/models"
	appErrors "github.com/noah-isme/contest-seating-api/pkg/errors"
	"github.com/noah-isme/contest-seating-api/pkg/export"
)

type schoolRepository interface {
	List(ctx context.Context, filter models.SchoolFilter) ([]models.School, int, error)
	FindByID(ctx context.Context, id string) (*models.School, error)
	Exists(ctx context.Context, county, locality, name, excludeID string) (bool, error)
	Create(ctx context.Context, school *models.School) error
	Update(ctx context.Context, school *models.School) error
	Delete(ctx context.Context, id string) (int, error)
	BulkInsert(ctx context.Context, schools []models.School) (int, error)
	ListCounties(ctx context.Context) ([]string, error)
	ListLocalities(ctx context.Context, county string) ([]string, error)
	ListByLocality(ctx context.Context, county, locality string) ([]models.School, error)
}

// importColumns maps normalised header names to the school field they fill.
var importColumns = map[string]string{
	"name":       "name",
	"nume":       "name",
	"school":     "name",
	"scoala":     "name",
	"county":     "county",
	"judet":      "county",
	"locality":   "locality",
	"localitate": "locality",
}

// SchoolService handles school administration and the public lookup cascade.
type SchoolService struct {
	repo      schoolRepository
	audit     auditLogger
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchoolService constructs the school service.
func NewSchoolService(repo schoolRepository, audit auditLogger, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SchoolService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolService{repo: repo, audit: audit, cache: cache, validator: validate, logger: logger}
}

// List returns schools and pagination metadata.
func (s *SchoolService) List(ctx context.Context, filter models.SchoolFilter) ([]models.School, *models.Pagination, error) {
	schools, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schools")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 50
	}
	return schools, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single school.
func (s *SchoolService) Get(ctx context.Context, id string) (*models.School, error) {
	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	return school, nil
}

// Create adds a school, rejecting duplicates within the same locality.
func (s *SchoolService) Create(ctx context.Context, req dto.SchoolRequest) (*models.School, error) {
	req = trimSchoolRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school payload")
	}
	if err := s.ensureUnique(ctx, req, ""); err != nil {
		return nil, err
	}
	school := &models.School{Name: req.Name, County: req.County, Locality: req.Locality}
	if err := s.repo.Create(ctx, school); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create school")
	}
	s.invalidate(ctx)
	return school, nil
}

// Update modifies a school.
func (s *SchoolService) Update(ctx context.Context, id string, req dto.SchoolRequest) (*models.School, error) {
	req = trimSchoolRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school payload")
	}
	school, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, req, id); err != nil {
		return nil, err
	}
	school.Name = req.Name
	school.County = req.County
	school.Locality = req.Locality
	if err := s.repo.Update(ctx, school); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update school")
	}
	s.invalidate(ctx)
	return school, nil
}

// Delete removes a school together with its registrations.
func (s *SchoolService) Delete(ctx context.Context, id string, actor *models.JWTClaims) (*dto.SchoolDeleteResponse, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete school")
	}
	s.recordAudit(ctx, actor, models.AuditActionSchoolDelete, &id, map[string]interface{}{"removedRegistrations": removed})
	s.invalidate(ctx)
	s.logger.Info("school deleted", zap.String("school_id", id), zap.Int("removed_registrations", removed))
	return &dto.SchoolDeleteResponse{SchoolID: id, RemovedRegistrations: removed}, nil
}

// Import bulk-loads schools from a CSV or XLSX table. The first row must name the
// Name, County and Locality columns (Romanian headers are accepted). Rows missing any
// value are skipped; rows already present are counted as duplicates.
func (s *SchoolService) Import(ctx context.Context, r io.Reader, format string, actor *models.JWTClaims) (*dto.SchoolImportResult, error) {
	table, err := export.ReadTable(r, format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable import file")
	}
	if len(table) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "import file is empty")
	}
	index, err := resolveImportColumns(table[0])
	if err != nil {
		return nil, err
	}

	result := &dto.SchoolImportResult{Total: len(table) - 1}
	seen := make(map[string]struct{}, len(table))
	schools := make([]models.School, 0, len(table)-1)
	for _, row := range table[1:] {
		school := models.School{
			Name:     cell(row, index["name"]),
			County:   cell(row, index["county"]),
			Locality: cell(row, index["locality"]),
		}
		if school.Name == "" || school.County == "" || school.Locality == "" {
			result.Skipped++
			continue
		}
		key := strings.ToLower(school.County + "|" + school.Locality + "|" + school.Name)
		if _, dup := seen[key]; dup {
			result.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		schools = append(schools, school)
	}

	inserted, err := s.repo.BulkInsert(ctx, schools)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import schools")
	}
	result.Inserted = inserted
	result.Duplicates += len(schools) - inserted

	s.recordAudit(ctx, actor, models.AuditActionSchoolImport, nil, result)
	if inserted > 0 {
		s.invalidate(ctx)
	}
	s.logger.Info("schools imported",
		zap.Int("total", result.Total),
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// Counties lists the counties with at least one school.
func (s *SchoolService) Counties(ctx context.Context) ([]string, error) {
	counties, err := s.repo.ListCounties(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list counties")
	}
	return counties, nil
}

// Localities lists the localities of a county.
func (s *SchoolService) Localities(ctx context.Context, county string) ([]string, error) {
	county = strings.TrimSpace(county)
	if county == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "county is required")
	}
	localities, err := s.repo.ListLocalities(ctx, county)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list localities")
	}
	return localities, nil
}

// SchoolsIn lists the schools of a county and locality.
func (s *SchoolService) SchoolsIn(ctx context.Context, county, locality string) ([]models.School, error) {
	county = strings.TrimSpace(county)
	locality = strings.TrimSpace(locality)
	if county == "" || locality == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "county and locality are required")
	}
	schools, err := s.repo.ListByLocality(ctx, county, locality)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schools")
	}
	return schools, nil
}

func (s *SchoolService) ensureUnique(ctx context.Context, req dto.SchoolRequest, excludeID string) error {
	exists, err := s.repo.Exists(ctx, req.County, req.Locality, req.Name, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate school")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "school already exists in this locality")
	}
	return nil
}

func (s *SchoolService) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, statisticsCachePattern)
}

func (s *SchoolService) recordAudit(ctx context.Context, actor *models.JWTClaims, action string, resourceID *string, payload interface{}) {
	if s.audit == nil {
		return
	}
	body, _ := json.Marshal(payload)
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     userIDPtr(actor),
		Action:     action,
		Resource:   "school",
		ResourceID: resourceID,
		NewValues:  body,
		IPAddress:  "system",
		UserAgent:  "school-service",
	}); err != nil {
		s.logger.Warn("failed to record school audit", zap.String("action", action), zap.Error(err))
	}
}

func trimSchoolRequest(req dto.SchoolRequest) dto.SchoolRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.County = strings.TrimSpace(req.County)
	req.Locality = strings.TrimSpace(req.Locality)
	return req
}

func resolveImportColumns(header []string) (map[string]int, error) {
	index := map[string]int{}
	for i, raw := range header {
		field, ok := importColumns[normalizeHeader(raw)]
		if !ok {
			continue
		}
		if _, taken := index[field]; !taken {
			index[field] = i
		}
	}
	var missing []string
	for _, field := range []string{"name", "county", "locality"} {
		if _, ok := index[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("import file is missing columns: %s", strings.Join(missing, ", ")))
	}
	return index, nil
}

// normalizeHeader lowercases and strips diacritics, so "Județ" matches "judet".
func normalizeHeader(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(raw))
	if err != nil {
		out = raw
	}
	return strings.ToLower(strings.TrimSpace(out))
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
