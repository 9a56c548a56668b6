package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/contest-seating-api/internal/models"
	"github.com/noah-isme/contest-seating-api/internal/repository"
	"github.com/noah-isme/contest-seating-api/internal/seating"
	"github.com/noah-isme/contest-seating-api/pkg/export"
	"github.com/noah-isme/contest-seating-api/pkg/storage"
)

// Sheet and column labels used by the generated documents.
const (
	sheetRegisteredStudents = "Registered students"
	sheetSchoolsTotal       = "Schools total"
	csvSheetColumn          = "Sheet"
)

var (
	registrationHeaders = []string{"No.", "Student", "Cycle", "School", "Locality", "County", "Supervising teacher", "Phone"}
	schoolTotalHeaders  = []string{"No.", "School", "Locality", "County", "Students"}
)

type exportStudentSource interface {
	ListStudents(ctx context.Context, filter repository.RegisteredStudentFilter) ([]models.RegisteredStudent, error)
}

type exportSchoolCounts interface {
	RegistrationCounts(ctx context.Context) ([]models.SchoolRegistrationCount, error)
}

type exportRunSource interface {
	FindRun(ctx context.Context, id string) (*models.AllocationRun, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type xlsxRenderer interface {
	Render(book export.Workbook) ([]byte, error)
}

type csvRenderer interface {
	RenderWorkbook(book export.Workbook, sheetColumn string) ([]byte, error)
}

type pdfRenderer interface {
	RenderWorkbook(book export.Workbook) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService builds export workbooks and persists rendered files.
type ExportService struct {
	students exportStudentSource
	schools  exportSchoolCounts
	runs     exportRunSource
	storage  fileStorage
	xlsx     xlsxRenderer
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the pkg/export implementations.
func NewExportService(students exportStudentSource, schools exportSchoolCounts, runs exportRunSource, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		students: students,
		schools:  schools,
		runs:     runs,
		storage:  storage,
		xlsx:     export.NewXLSXExporter(),
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Generate builds the workbook for the job, renders it and stores the file.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	book, err := s.BuildWorkbook(ctx, job.Type, job.Params)
	if err != nil {
		return nil, err
	}
	payload, err := s.Render(book, job.Format)
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(path.Join(job.ID, s.buildFilename(job.Type, job.Format)), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Render encodes a workbook in the requested format.
func (s *ExportService) Render(book export.Workbook, format models.ExportFormat) ([]byte, error) {
	switch format {
	case models.ExportFormatXLSX:
		return s.xlsx.Render(book)
	case models.ExportFormatCSV:
		return s.csv.RenderWorkbook(book, csvSheetColumn)
	case models.ExportFormatPDF:
		return s.pdf.RenderWorkbook(book)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

// BuildWorkbook assembles the sheets for an export type.
func (s *ExportService) BuildWorkbook(ctx context.Context, exportType models.ExportType, params models.ExportJobParams) (export.Workbook, error) {
	switch exportType {
	case models.ExportTypeRegistrations:
		return s.registrationsWorkbook(ctx, params)
	case models.ExportTypeSeating:
		run, err := s.runs.FindRun(ctx, params.RunID)
		if err != nil {
			return export.Workbook{}, err
		}
		return seating.Workbook(seating.GroupByRoom(fromSeatPlacements(run.Placements))), nil
	default:
		return export.Workbook{}, fmt.Errorf("unsupported export type %s", exportType)
	}
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) registrationsWorkbook(ctx context.Context, params models.ExportJobParams) (export.Workbook, error) {
	students, err := s.students.ListStudents(ctx, repository.RegisteredStudentFilter{})
	if err != nil {
		return export.Workbook{}, err
	}
	counts, err := s.schools.RegistrationCounts(ctx)
	if err != nil {
		return export.Workbook{}, err
	}

	studentRows := make([]map[string]string, 0, len(students))
	for _, st := range students {
		if params.County != "" && !strings.EqualFold(st.County, params.County) {
			continue
		}
		studentRows = append(studentRows, map[string]string{
			"No.":                 strconv.Itoa(len(studentRows) + 1),
			"Student":             st.FullName,
			"Cycle":               string(st.Cycle),
			"School":              st.SchoolName,
			"Locality":            st.Locality,
			"County":              st.County,
			"Supervising teacher": st.TeacherEmail,
			"Phone":               firstNonEmpty(st.Phone, st.TeacherPhone),
		})
	}

	schoolRows := make([]map[string]string, 0, len(counts))
	for _, c := range counts {
		if params.County != "" && !strings.EqualFold(c.County, params.County) {
			continue
		}
		schoolRows = append(schoolRows, map[string]string{
			"No.":      strconv.Itoa(len(schoolRows) + 1),
			"School":   c.Name,
			"Locality": c.Locality,
			"County":   c.County,
			"Students": strconv.Itoa(c.StudentCount),
		})
	}

	title := "Registered students"
	if params.County != "" {
		title = fmt.Sprintf("Registered students, %s", params.County)
	}
	return export.Workbook{
		Title: title,
		Sheets: []export.Sheet{
			{Name: sheetRegisteredStudents, Dataset: export.Dataset{Headers: registrationHeaders, Rows: studentRows}},
			{Name: sheetSchoolsTotal, Dataset: export.Dataset{Headers: schoolTotalHeaders, Rows: schoolRows}},
		},
	}, nil
}

func (s *ExportService) buildFilename(exportType models.ExportType, format models.ExportFormat) string {
	date := s.now().UTC().Format("2006-01-02")
	base := "Registered_Students"
	if exportType == models.ExportTypeSeating {
		base = "Repartizare_pe_Sali"
	}
	return fmt.Sprintf("%s_%s.%s", base, date, format)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
