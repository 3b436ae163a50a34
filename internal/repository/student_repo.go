package repository

import (
	"context"
	"errors"
	"fmt"

	"pathshala/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudentRepository is the student directory.
type StudentRepository interface {
	// GetStudentByID returns the student, or nil when absent.
	GetStudentByID(ctx context.Context, studentID string) (*model.Student, error)
	// AddEnrollmentRef records an enrollment reference on the student.
	AddEnrollmentRef(ctx context.Context, studentID, enrollmentID string) error
	// GrantMaterial adds a material to the student's directly owned set.
	GrantMaterial(ctx context.Context, studentID, materialID string) error
	UpdatePhotoURL(ctx context.Context, studentID, photoURL string) error
}

type studentRepo struct {
	pool *pgxpool.Pool
}

// NewStudentRepo creates a new StudentRepository
func NewStudentRepo(pool *pgxpool.Pool) StudentRepository {
	return &studentRepo{pool: pool}
}

const studentColumns = `id, full_name, registration_number, email, phone, photo_url,
		education_level, institution, materials, enrollments, created_at, updated_at`

func (r *studentRepo) GetStudentByID(ctx context.Context, studentID string) (*model.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var s model.Student
	err := r.pool.QueryRow(ctx, query, studentID).Scan(
		&s.StudentID,
		&s.FullName,
		&s.RegistrationNumber,
		&s.Email,
		&s.Phone,
		&s.PhotoURL,
		&s.EducationLevel,
		&s.Institution,
		&s.Materials,
		&s.Enrollments,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting student: %w", err)
	}
	return &s, nil
}

func (r *studentRepo) AddEnrollmentRef(ctx context.Context, studentID, enrollmentID string) error {
	// array_append guarded against duplicates, mirroring a set add
	query := `
		UPDATE students
		SET enrollments = array_append(enrollments, $1), updated_at = NOW()
		WHERE id = $2 AND NOT ($1 = ANY(enrollments))
	`
	if _, err := r.pool.Exec(ctx, query, enrollmentID, studentID); err != nil {
		return fmt.Errorf("adding enrollment ref: %w", err)
	}
	return nil
}

func (r *studentRepo) GrantMaterial(ctx context.Context, studentID, materialID string) error {
	query := `
		UPDATE students
		SET materials = array_append(materials, $1), updated_at = NOW()
		WHERE id = $2 AND NOT ($1 = ANY(materials))
	`
	if _, err := r.pool.Exec(ctx, query, materialID, studentID); err != nil {
		return fmt.Errorf("granting material: %w", err)
	}
	return nil
}

func (r *studentRepo) UpdatePhotoURL(ctx context.Context, studentID, photoURL string) error {
	query := `UPDATE students SET photo_url = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.pool.Exec(ctx, query, photoURL, studentID); err != nil {
		return fmt.Errorf("updating photo URL: %w", err)
	}
	return nil
}
