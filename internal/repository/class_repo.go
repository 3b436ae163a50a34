package repository

import (
	"context"
	"errors"
	"fmt"

	"pathshala/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClassRepository stores live and recorded class sessions.
type ClassRepository interface {
	CreateClass(ctx context.Context, c *model.Class) error
	// GetClassByID returns the class, or nil when absent.
	GetClassByID(ctx context.Context, classID string) (*model.Class, error)
	ListByCourses(ctx context.Context, courseIDs []string) ([]model.Class, error)
	ListActiveLiveByCourses(ctx context.Context, courseIDs []string) ([]model.Class, error)
	UpdateClass(ctx context.Context, c *model.Class) error
	SetActiveLive(ctx context.Context, classID string, active bool) error
	DeleteClass(ctx context.Context, classID string) (bool, error)
}

type classRepo struct {
	pool *pgxpool.Pool
}

// NewClassRepo creates a new ClassRepository
func NewClassRepo(pool *pgxpool.Pool) ClassRepository {
	return &classRepo{pool: pool}
}

const classColumns = `id, title, subject, image_url, instructor_id, course_id, course_type,
		billing_type, type, video_link, start_time, is_active_live, created_at, updated_at`

func scanClass(row pgx.Row, c *model.Class) error {
	return row.Scan(
		&c.ClassID,
		&c.Title,
		&c.Subject,
		&c.ImageURL,
		&c.InstructorID,
		&c.CourseID,
		&c.CourseType,
		&c.BillingType,
		&c.Type,
		&c.VideoLink,
		&c.StartTime,
		&c.IsActiveLive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

func (r *classRepo) CreateClass(ctx context.Context, c *model.Class) error {
	query := `
		INSERT INTO classes (title, subject, image_url, instructor_id, course_id, course_type,
			billing_type, type, video_link, start_time, is_active_live)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + classColumns
	row := r.pool.QueryRow(ctx, query,
		c.Title, c.Subject, c.ImageURL, c.InstructorID, c.CourseID, c.CourseType,
		c.BillingType, c.Type, c.VideoLink, c.StartTime, c.IsActiveLive,
	)
	if err := scanClass(row, c); err != nil {
		return fmt.Errorf("creating class: %w", err)
	}
	return nil
}

func (r *classRepo) GetClassByID(ctx context.Context, classID string) (*model.Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1`
	var c model.Class
	err := scanClass(r.pool.QueryRow(ctx, query, classID), &c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting class: %w", err)
	}
	return &c, nil
}

func (r *classRepo) ListByCourses(ctx context.Context, courseIDs []string) ([]model.Class, error) {
	if len(courseIDs) == 0 {
		return []model.Class{}, nil
	}
	query := `SELECT ` + classColumns + ` FROM classes WHERE course_id = ANY($1) ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("querying classes: %w", err)
	}
	defer rows.Close()
	return collectClasses(rows)
}

func (r *classRepo) ListActiveLiveByCourses(ctx context.Context, courseIDs []string) ([]model.Class, error) {
	if len(courseIDs) == 0 {
		return []model.Class{}, nil
	}
	query := `
		SELECT ` + classColumns + `
		FROM classes
		WHERE course_id = ANY($1) AND type = $2 AND is_active_live = TRUE
		ORDER BY start_time ASC
	`
	rows, err := r.pool.Query(ctx, query, courseIDs, model.ClassLive)
	if err != nil {
		return nil, fmt.Errorf("querying live classes: %w", err)
	}
	defer rows.Close()
	return collectClasses(rows)
}

func collectClasses(rows pgx.Rows) ([]model.Class, error) {
	var classes []model.Class
	for rows.Next() {
		var c model.Class
		if err := scanClass(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning class row: %w", err)
		}
		classes = append(classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating class rows: %w", err)
	}
	if len(classes) == 0 {
		return []model.Class{}, nil
	}
	return classes, nil
}

func (r *classRepo) UpdateClass(ctx context.Context, c *model.Class) error {
	query := `
		UPDATE classes
		SET title = $1, subject = $2, image_url = $3, instructor_id = $4, course_id = $5,
			course_type = $6, billing_type = $7, type = $8, video_link = $9, start_time = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING ` + classColumns
	row := r.pool.QueryRow(ctx, query,
		c.Title, c.Subject, c.ImageURL, c.InstructorID, c.CourseID,
		c.CourseType, c.BillingType, c.Type, c.VideoLink, c.StartTime, c.ClassID,
	)
	if err := scanClass(row, c); err != nil {
		return fmt.Errorf("updating class: %w", err)
	}
	return nil
}

func (r *classRepo) SetActiveLive(ctx context.Context, classID string, active bool) error {
	query := `UPDATE classes SET is_active_live = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.pool.Exec(ctx, query, active, classID); err != nil {
		return fmt.Errorf("setting class live flag: %w", err)
	}
	return nil
}

func (r *classRepo) DeleteClass(ctx context.Context, classID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, classID)
	if err != nil {
		return false, fmt.Errorf("deleting class: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
