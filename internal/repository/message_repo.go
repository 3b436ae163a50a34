package repository

import (
	"context"
	"fmt"

	"pathshala/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository stores live-class chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, m *model.Message) error
	ListByClass(ctx context.Context, classID string, limit int) ([]model.Message, error)
}

type messageRepo struct {
	pool *pgxpool.Pool
}

// NewMessageRepo creates a new MessageRepository
func NewMessageRepo(pool *pgxpool.Pool) MessageRepository {
	return &messageRepo{pool: pool}
}

func (r *messageRepo) CreateMessage(ctx context.Context, m *model.Message) error {
	query := `
		INSERT INTO messages (class_id, student_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, class_id, student_id, content, created_at
	`
	err := r.pool.QueryRow(ctx, query, m.ClassID, m.StudentID, m.Content).Scan(
		&m.MessageID,
		&m.ClassID,
		&m.StudentID,
		&m.Content,
		&m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating message: %w", err)
	}
	return nil
}

func (r *messageRepo) ListByClass(ctx context.Context, classID string, limit int) ([]model.Message, error) {
	query := `
		SELECT id, class_id, student_id, content, created_at
		FROM messages
		WHERE class_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, classID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.MessageID, &m.ClassID, &m.StudentID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}
	if len(messages) == 0 {
		return []model.Message{}, nil
	}
	return messages, nil
}
