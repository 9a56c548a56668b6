package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/contest-seating-api/internal/models"
)

// SchoolRepository manages persistence for participating schools.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository constructs a SchoolRepository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// List returns schools matching the provided filters.
func (r *SchoolRepository) List(ctx context.Context, filter models.SchoolFilter) ([]models.School, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.County != "" {
		conditions = append(conditions, fmt.Sprintf("county = $%d", len(args)+1))
		args = append(args, filter.County)
	}
	if filter.Locality != "" {
		conditions = append(conditions, fmt.Sprintf("locality = $%d", len(args)+1))
		args = append(args, filter.Locality)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	where := strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"name":       "name",
		"county":     "county",
		"locality":   "locality",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, name, county, locality, created_at, updated_at FROM schools WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		where, column, order, size, offset)
	var schools []models.School
	if err := r.db.SelectContext(ctx, &schools, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schools: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM schools WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count schools: %w", err)
	}
	return schools, total, nil
}

// FindByID fetches a school by ID.
func (r *SchoolRepository) FindByID(ctx context.Context, id string) (*models.School, error) {
	const query = `SELECT id, name, county, locality, created_at, updated_at FROM schools WHERE id = $1`
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, id); err != nil {
		return nil, err
	}
	return &school, nil
}

// Exists checks whether a school with the same name is already registered in the locality.
func (r *SchoolRepository) Exists(ctx context.Context, county, locality, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM schools WHERE county = $1 AND locality = $2 AND LOWER(name) = LOWER($3)"
	args := []interface{}{county, locality, name}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check school: %w", err)
	}
	return true, nil
}

// Create inserts a new school.
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) error {
	if school.ID == "" {
		school.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	school.CreatedAt = now
	school.UpdatedAt = now
	const query = `INSERT INTO schools (id, name, county, locality, created_at, updated_at)
        VALUES (:id, :name, :county, :locality, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("create school: %w", err)
	}
	return nil
}

// Update modifies an existing school.
func (r *SchoolRepository) Update(ctx context.Context, school *models.School) error {
	school.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schools SET name = :name, county = :county, locality = :locality, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, school); err != nil {
		return fmt.Errorf("update school: %w", err)
	}
	return nil
}

// Delete removes the school and every registration submitted for it in one transaction.
// It returns the number of registrations removed, or sql.ErrNoRows when the school is unknown.
func (r *SchoolRepository) Delete(ctx context.Context, id string) (removed int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin school delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM registration_students WHERE registration_id IN (SELECT id FROM registrations WHERE school_id = $1)`, id); err != nil {
		return 0, fmt.Errorf("delete school students: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM registrations WHERE school_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete school registrations: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted registrations: %w", err)
	}
	res, err = tx.ExecContext(ctx, `DELETE FROM schools WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete school: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted schools: %w", err)
	}
	if deleted == 0 {
		err = sql.ErrNoRows
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit school delete: %w", err)
	}
	return int(affected), nil
}

// BulkInsert stores schools in one transaction, skipping ones already present in the locality.
// It returns how many rows were inserted.
func (r *SchoolRepository) BulkInsert(ctx context.Context, schools []models.School) (inserted int, err error) {
	if len(schools) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin school import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO schools (id, name, county, locality, created_at, updated_at)
        VALUES (:id, :name, :county, :locality, :created_at, :updated_at)
        ON CONFLICT (county, locality, name) DO NOTHING`
	now := time.Now().UTC()
	for i := range schools {
		if schools[i].ID == "" {
			schools[i].ID = uuid.NewString()
		}
		schools[i].CreatedAt = now
		schools[i].UpdatedAt = now
		res, execErr := tx.NamedExecContext(ctx, query, schools[i])
		if execErr != nil {
			err = fmt.Errorf("import school %q: %w", schools[i].Name, execErr)
			return 0, err
		}
		if n, rowsErr := res.RowsAffected(); rowsErr == nil {
			inserted += int(n)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit school import: %w", err)
	}
	return inserted, nil
}

// ListCounties returns the distinct counties in alphabetical order.
func (r *SchoolRepository) ListCounties(ctx context.Context) ([]string, error) {
	var counties []string
	if err := r.db.SelectContext(ctx, &counties, `SELECT DISTINCT county FROM schools ORDER BY county ASC`); err != nil {
		return nil, fmt.Errorf("list counties: %w", err)
	}
	return counties, nil
}

// ListLocalities returns the distinct localities of a county.
func (r *SchoolRepository) ListLocalities(ctx context.Context, county string) ([]string, error) {
	var localities []string
	if err := r.db.SelectContext(ctx, &localities, `SELECT DISTINCT locality FROM schools WHERE county = $1 ORDER BY locality ASC`, county); err != nil {
		return nil, fmt.Errorf("list localities: %w", err)
	}
	return localities, nil
}

// ListByLocality returns the schools of a county and locality ordered by name.
func (r *SchoolRepository) ListByLocality(ctx context.Context, county, locality string) ([]models.School, error) {
	const query = `SELECT id, name, county, locality, created_at, updated_at FROM schools WHERE county = $1 AND locality = $2 ORDER BY name ASC`
	var schools []models.School
	if err := r.db.SelectContext(ctx, &schools, query, county, locality); err != nil {
		return nil, fmt.Errorf("list schools by locality: %w", err)
	}
	return schools, nil
}

// RegistrationCounts returns schools with at least one registered student, busiest first.
func (r *SchoolRepository) RegistrationCounts(ctx context.Context) ([]models.SchoolRegistrationCount, error) {
	const query = `SELECT s.id AS school_id, s.name, s.county, s.locality, COUNT(rs.id) AS student_count
FROM schools s
JOIN registrations r ON r.school_id = s.id
JOIN registration_students rs ON rs.registration_id = r.id
GROUP BY s.id, s.name, s.county, s.locality
HAVING COUNT(rs.id) > 0
ORDER BY student_count DESC, s.name ASC`
	var counts []models.SchoolRegistrationCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count registrations per school: %w", err)
	}
	return counts, nil
}
