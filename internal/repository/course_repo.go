package repository

import (
	"context"
	"errors"
	"fmt"

	"pathshala/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseRepository is the catalog store: the canonical course definitions.
type CourseRepository interface {
	CreateCourse(ctx context.Context, c *model.Course) error
	// GetCourseByID retrieves a course by its ID
	GetCourseByID(ctx context.Context, courseID string) (*model.Course, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
	ListCoursesByIDs(ctx context.Context, courseIDs []string) ([]model.Course, error)
	// UpdateCourse updates the descriptive fields of a course
	UpdateCourse(ctx context.Context, c *model.Course) error
	// UpdateLessons replaces the lesson structure of a course
	UpdateLessons(ctx context.Context, courseID string, lessons model.LessonList) error
	// UpdateMaterials replaces the attached material set of a course
	UpdateMaterials(ctx context.Context, courseID string, materials []string) error
	IncrementStudentsEnrolled(ctx context.Context, courseID string) error
}

type courseRepo struct {
	pool *pgxpool.Pool
}

// NewCourseRepo creates a new CourseRepository
func NewCourseRepo(pool *pgxpool.Pool) CourseRepository {
	return &courseRepo{pool: pool}
}

const courseColumns = `id, title, description, short_description, subjects, thumbnail_url,
		price, offer_price, course_for, lessons, materials, students_enrolled, created_at, updated_at`

func scanCourse(row pgx.Row, c *model.Course) error {
	return row.Scan(
		&c.CourseID,
		&c.Title,
		&c.Description,
		&c.ShortDescription,
		&c.Subjects,
		&c.ThumbnailURL,
		&c.Price,
		&c.OfferPrice,
		&c.CourseFor,
		&c.Lessons,
		&c.Materials,
		&c.StudentsEnrolled,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

// CreateCourse inserts a new course and returns the created record
func (r *courseRepo) CreateCourse(ctx context.Context, c *model.Course) error {
	query := `
		INSERT INTO courses (title, description, short_description, subjects, thumbnail_url,
			price, offer_price, course_for, lessons, materials)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + courseColumns
	row := r.pool.QueryRow(ctx, query,
		c.Title, c.Description, c.ShortDescription, c.Subjects, c.ThumbnailURL,
		c.Price, c.OfferPrice, c.CourseFor, c.Lessons, c.Materials,
	)
	if err := scanCourse(row, c); err != nil {
		return fmt.Errorf("creating course: %w", err)
	}
	return nil
}

// GetCourseByID retrieves a course by its ID
func (r *courseRepo) GetCourseByID(ctx context.Context, courseID string) (*model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	var c model.Course
	err := scanCourse(r.pool.QueryRow(ctx, query, courseID), &c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting course: %w", err)
	}
	return &c, nil
}

func (r *courseRepo) ListCourses(ctx context.Context) ([]model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()
	return collectCourses(rows)
}

func (r *courseRepo) ListCoursesByIDs(ctx context.Context, courseIDs []string) ([]model.Course, error) {
	if len(courseIDs) == 0 {
		return []model.Course{}, nil
	}
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("querying courses by IDs: %w", err)
	}
	defer rows.Close()
	return collectCourses(rows)
}

func collectCourses(rows pgx.Rows) ([]model.Course, error) {
	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := scanCourse(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating course rows: %w", err)
	}
	if len(courses) == 0 {
		return []model.Course{}, nil
	}
	return courses, nil
}

// UpdateCourse updates the descriptive fields of a course
func (r *courseRepo) UpdateCourse(ctx context.Context, c *model.Course) error {
	query := `
		UPDATE courses
		SET title = $1, description = $2, short_description = $3, subjects = $4,
			thumbnail_url = $5, price = $6, offer_price = $7, course_for = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING ` + courseColumns
	row := r.pool.QueryRow(ctx, query,
		c.Title, c.Description, c.ShortDescription, c.Subjects,
		c.ThumbnailURL, c.Price, c.OfferPrice, c.CourseFor, c.CourseID,
	)
	if err := scanCourse(row, c); err != nil {
		return fmt.Errorf("updating course: %w", err)
	}
	return nil
}

// UpdateLessons replaces the lesson structure of a course
func (r *courseRepo) UpdateLessons(ctx context.Context, courseID string, lessons model.LessonList) error {
	query := `UPDATE courses SET lessons = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.pool.Exec(ctx, query, lessons, courseID); err != nil {
		return fmt.Errorf("updating course lessons: %w", err)
	}
	return nil
}

// UpdateMaterials replaces the attached material set of a course
func (r *courseRepo) UpdateMaterials(ctx context.Context, courseID string, materials []string) error {
	query := `UPDATE courses SET materials = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.pool.Exec(ctx, query, materials, courseID); err != nil {
		return fmt.Errorf("updating course materials: %w", err)
	}
	return nil
}

func (r *courseRepo) IncrementStudentsEnrolled(ctx context.Context, courseID string) error {
	query := `UPDATE courses SET students_enrolled = students_enrolled + 1, updated_at = NOW() WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, courseID); err != nil {
		return fmt.Errorf("incrementing students enrolled: %w", err)
	}
	return nil
}
