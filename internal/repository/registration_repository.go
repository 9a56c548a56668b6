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

// QuotaExceededError reports a submission that would push a school past its cycle quota.
type QuotaExceededError struct {
	Cycle    models.Cycle
	Existing int
	Quota    int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("cycle %s already has %d of %d students", e.Cycle, e.Existing, e.Quota)
}

// RegisteredStudentFilter narrows registered student listings.
type RegisteredStudentFilter struct {
	SchoolID string
	Cycle    models.Cycle
}

// RegistrationRepository persists registrations and their students.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registeredStudentColumns = `rs.id, rs.registration_id, rs.full_name, rs.phone, r.cycle, r.school_id,
        s.name AS school_name, s.county, s.locality, r.teacher_email, r.phone AS teacher_phone`

const registeredStudentJoins = `FROM registration_students rs
        JOIN registrations r ON r.id = rs.registration_id
        JOIN schools s ON s.id = r.school_id`

// CreateWithQuota stores the registration and its students while holding a lock on the school
// row, so concurrent submissions for the same school cannot exceed quota together.
// It returns sql.ErrNoRows for unknown schools and *QuotaExceededError when the quota is hit.
func (r *RegistrationRepository) CreateWithQuota(ctx context.Context, reg *models.Registration, quota int) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var schoolID string
	if err = tx.GetContext(ctx, &schoolID, `SELECT id FROM schools WHERE id = $1 FOR UPDATE`, reg.SchoolID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock school: %w", err)
	}

	var existing int
	const countQuery = `SELECT COUNT(rs.id) FROM registration_students rs
        JOIN registrations r ON r.id = rs.registration_id
        WHERE r.school_id = $1 AND r.cycle = $2`
	if err = tx.GetContext(ctx, &existing, countQuery, reg.SchoolID, reg.Cycle); err != nil {
		return fmt.Errorf("count registered students: %w", err)
	}
	if existing+len(reg.Students) > quota {
		err = &QuotaExceededError{Cycle: reg.Cycle, Existing: existing, Quota: quota}
		return err
	}

	now := time.Now().UTC()
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	reg.CreatedAt = now
	const insertRegistration = `INSERT INTO registrations (id, school_id, cycle, teacher_email, phone, created_at)
        VALUES (:id, :school_id, :cycle, :teacher_email, :phone, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertRegistration, reg); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}

	const insertStudent = `INSERT INTO registration_students (id, registration_id, full_name, phone, position, updated_at)
        VALUES (:id, :registration_id, :full_name, :phone, :position, :updated_at)`
	for i := range reg.Students {
		st := &reg.Students[i]
		if st.ID == "" {
			st.ID = uuid.NewString()
		}
		st.RegistrationID = reg.ID
		st.Position = i + 1
		st.UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, insertStudent, st); err != nil {
			return fmt.Errorf("create registration student: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit registration: %w", err)
	}
	return nil
}

// ListStudents returns registered students joined with registration and school data.
func (r *RegistrationRepository) ListStudents(ctx context.Context, filter RegisteredStudentFilter) ([]models.RegisteredStudent, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.SchoolID != "" {
		conditions = append(conditions, fmt.Sprintf("r.school_id = $%d", len(args)+1))
		args = append(args, filter.SchoolID)
	}
	if filter.Cycle != "" {
		conditions = append(conditions, fmt.Sprintf("r.cycle = $%d", len(args)+1))
		args = append(args, filter.Cycle)
	}
	query := fmt.Sprintf(`SELECT %s
        %s
        WHERE %s ORDER BY s.name ASC, r.cycle ASC, rs.position ASC`, registeredStudentColumns, registeredStudentJoins, strings.Join(conditions, " AND "))

	var students []models.RegisteredStudent
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list registered students: %w", err)
	}
	return students, nil
}

// FindStudent fetches a registered student by ID.
func (r *RegistrationRepository) FindStudent(ctx context.Context, id string) (*models.RegisteredStudent, error) {
	query := fmt.Sprintf(`SELECT %s
        %s
        WHERE rs.id = $1`, registeredStudentColumns, registeredStudentJoins)
	var student models.RegisteredStudent
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// RenameStudent updates a student's name inside a transaction and returns the previous name.
func (r *RegistrationRepository) RenameStudent(ctx context.Context, id, fullName string) (previous string, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin student rename: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.GetContext(ctx, &previous, `SELECT full_name FROM registration_students WHERE id = $1 FOR UPDATE`, id); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("lock student: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE registration_students SET full_name = $1, updated_at = $2 WHERE id = $3`, fullName, time.Now().UTC(), id); err != nil {
		return "", fmt.Errorf("rename student: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit student rename: %w", err)
	}
	return previous, nil
}

// DeleteStudent removes a student from its registration. The registration itself is removed
// once it has no students left; registrationRemoved reports whether that happened.
func (r *RegistrationRepository) DeleteStudent(ctx context.Context, id string) (registrationRemoved bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin student delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var registrationID string
	if err = tx.GetContext(ctx, &registrationID, `SELECT registration_id FROM registration_students WHERE id = $1 FOR UPDATE`, id); err != nil {
		if err == sql.ErrNoRows {
			return false, err
		}
		return false, fmt.Errorf("lock student: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM registration_students WHERE id = $1`, id); err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	var remaining int
	if err = tx.GetContext(ctx, &remaining, `SELECT COUNT(*) FROM registration_students WHERE registration_id = $1`, registrationID); err != nil {
		return false, fmt.Errorf("count remaining students: %w", err)
	}
	if remaining == 0 {
		if _, err = tx.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, registrationID); err != nil {
			return false, fmt.Errorf("delete empty registration: %w", err)
		}
		registrationRemoved = true
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit student delete: %w", err)
	}
	return registrationRemoved, nil
}

// CountByCycle returns the number of registered students per cycle.
func (r *RegistrationRepository) CountByCycle(ctx context.Context) ([]models.CycleCount, error) {
	const query = `SELECT r.cycle, COUNT(rs.id) AS count
FROM registrations r
JOIN registration_students rs ON rs.registration_id = r.id
GROUP BY r.cycle`
	var counts []models.CycleCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count students by cycle: %w", err)
	}
	return counts, nil
}

// CountSchools returns how many distinct schools have at least one registered student.
func (r *RegistrationRepository) CountSchools(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(DISTINCT r.school_id) FROM registrations r
        JOIN registration_students rs ON rs.registration_id = r.id`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count registering schools: %w", err)
	}
	return total, nil
}
