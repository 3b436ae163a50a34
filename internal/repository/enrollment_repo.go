package repository

import (
	"context"
	"errors"
	"fmt"

	"pathshala/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateEnrollment is returned when a second non-terminal enrollment
// for the same (student, course) pair hits the partial unique index.
var ErrDuplicateEnrollment = errors.New("duplicate enrollment for student and course")

// EnrollmentRepository is the enrollment store: per-student purchase records
// and their progress snapshots.
type EnrollmentRepository interface {
	CreateEnrollment(ctx context.Context, e *model.Enrollment) error
	GetEnrollmentByID(ctx context.Context, enrollmentID string) (*model.Enrollment, error)
	// FindByStudentAndCourse returns the student's enrollment in the course,
	// or nil when none exists.
	FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*model.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
	ListApprovedByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
	ListPending(ctx context.Context) ([]model.Enrollment, error)
	// PersistSnapshot writes back a synchronized progress snapshot in a single
	// per-record update.
	PersistSnapshot(ctx context.Context, enrollmentID string, lessons model.ProgressList, materials []string) error
	// ApprovePending moves a pending enrollment to approved. Returns false
	// when the enrollment is absent or already approved.
	ApprovePending(ctx context.Context, enrollmentID string) (bool, error)
	// DeletePending removes a pending enrollment. Returns false when the
	// enrollment is absent or no longer pending.
	DeletePending(ctx context.Context, enrollmentID string) (bool, error)
}

type enrollmentRepo struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepo creates a new EnrollmentRepository
func NewEnrollmentRepo(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentRepo{pool: pool}
}

const enrollmentColumns = `id, course_id, student_id, transaction_id, type, payment_method,
		status, lessons, materials, created_at, updated_at`

func scanEnrollment(row pgx.Row, e *model.Enrollment) error {
	return row.Scan(
		&e.EnrollmentID,
		&e.CourseID,
		&e.StudentID,
		&e.TransactionID,
		&e.Type,
		&e.PaymentMethod,
		&e.Status,
		&e.Lessons,
		&e.Materials,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
}

func (r *enrollmentRepo) CreateEnrollment(ctx context.Context, e *model.Enrollment) error {
	query := `
		INSERT INTO enrollments (course_id, student_id, transaction_id, type, payment_method, status, lessons, materials)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + enrollmentColumns
	row := r.pool.QueryRow(ctx, query,
		e.CourseID, e.StudentID, e.TransactionID, e.Type, e.PaymentMethod, e.Status, e.Lessons, e.Materials,
	)
	if err := scanEnrollment(row, e); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEnrollment
		}
		return fmt.Errorf("creating enrollment: %w", err)
	}
	return nil
}

func (r *enrollmentRepo) GetEnrollmentByID(ctx context.Context, enrollmentID string) (*model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	var e model.Enrollment
	err := scanEnrollment(r.pool.QueryRow(ctx, query, enrollmentID), &e)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting enrollment: %w", err)
	}
	return &e, nil
}

func (r *enrollmentRepo) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id = $1 AND course_id = $2`
	var e model.Enrollment
	err := scanEnrollment(r.pool.QueryRow(ctx, query, studentID, courseID), &e)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding enrollment: %w", err)
	}
	return &e, nil
}

func (r *enrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("querying enrollments: %w", err)
	}
	defer rows.Close()
	return collectEnrollments(rows)
}

func (r *enrollmentRepo) ListApprovedByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id = $1 AND status = $2`
	rows, err := r.pool.Query(ctx, query, studentID, model.EnrollmentApproved)
	if err != nil {
		return nil, fmt.Errorf("querying approved enrollments: %w", err)
	}
	defer rows.Close()
	return collectEnrollments(rows)
}

func (r *enrollmentRepo) ListPending(ctx context.Context) ([]model.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE status = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, model.EnrollmentPending)
	if err != nil {
		return nil, fmt.Errorf("querying pending enrollments: %w", err)
	}
	defer rows.Close()
	return collectEnrollments(rows)
}

func collectEnrollments(rows pgx.Rows) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := scanEnrollment(rows, &e); err != nil {
			return nil, fmt.Errorf("scanning enrollment row: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating enrollment rows: %w", err)
	}
	if len(enrollments) == 0 {
		return []model.Enrollment{}, nil
	}
	return enrollments, nil
}

func (r *enrollmentRepo) PersistSnapshot(ctx context.Context, enrollmentID string, lessons model.ProgressList, materials []string) error {
	query := `UPDATE enrollments SET lessons = $1, materials = $2, updated_at = NOW() WHERE id = $3`
	if _, err := r.pool.Exec(ctx, query, lessons, materials, enrollmentID); err != nil {
		return fmt.Errorf("persisting enrollment snapshot: %w", err)
	}
	return nil
}

func (r *enrollmentRepo) ApprovePending(ctx context.Context, enrollmentID string) (bool, error) {
	query := `UPDATE enrollments SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	tag, err := r.pool.Exec(ctx, query, model.EnrollmentApproved, enrollmentID, model.EnrollmentPending)
	if err != nil {
		return false, fmt.Errorf("approving enrollment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *enrollmentRepo) DeletePending(ctx context.Context, enrollmentID string) (bool, error) {
	query := `DELETE FROM enrollments WHERE id = $1 AND status = $2`
	tag, err := r.pool.Exec(ctx, query, enrollmentID, model.EnrollmentPending)
	if err != nil {
		return false, fmt.Errorf("deleting pending enrollment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
