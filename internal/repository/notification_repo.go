package repository

import (
	"context"
	"fmt"

	"pathshala/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository stores in-app notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListForRecipient(ctx context.Context, recipientID string) ([]model.Notification, error)
	// MarkRead sets the read receipt. Returns false when the notification does
	// not exist or does not belong to the recipient.
	MarkRead(ctx context.Context, notificationID, recipientID string) (bool, error)
	DeleteBySender(ctx context.Context, notificationID, senderID string) (bool, error)
	DeleteByRecipient(ctx context.Context, notificationID, recipientID string) (bool, error)
}

type notificationRepo struct {
	pool *pgxpool.Pool
}

// NewNotificationRepo creates a new NotificationRepository
func NewNotificationRepo(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepo{pool: pool}
}

func (r *notificationRepo) CreateNotification(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (sent_by, sent_by_role, sent_to, sent_to_role, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, sent_by, sent_by_role, sent_to, sent_to_role, message,
			read_receipt, deleted_by_sender, deleted_by_recipient, created_at
	`
	err := r.pool.QueryRow(ctx, query, n.SentBy, n.SentByRole, n.SentTo, n.SentToRole, n.Message).Scan(
		&n.NotificationID,
		&n.SentBy,
		&n.SentByRole,
		&n.SentTo,
		&n.SentToRole,
		&n.Message,
		&n.ReadReceipt,
		&n.DeletedBySender,
		&n.DeletedByRecipient,
		&n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

func (r *notificationRepo) ListForRecipient(ctx context.Context, recipientID string) ([]model.Notification, error) {
	query := `
		SELECT id, sent_by, sent_by_role, sent_to, sent_to_role, message,
			read_receipt, deleted_by_sender, deleted_by_recipient, created_at
		FROM notifications
		WHERE sent_to = $1 AND deleted_by_recipient = FALSE
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(
			&n.NotificationID,
			&n.SentBy,
			&n.SentByRole,
			&n.SentTo,
			&n.SentToRole,
			&n.Message,
			&n.ReadReceipt,
			&n.DeletedBySender,
			&n.DeletedByRecipient,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notification rows: %w", err)
	}
	if len(notifications) == 0 {
		return []model.Notification{}, nil
	}
	return notifications, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, notificationID, recipientID string) (bool, error) {
	query := `UPDATE notifications SET read_receipt = TRUE WHERE id = $1 AND sent_to = $2`
	tag, err := r.pool.Exec(ctx, query, notificationID, recipientID)
	if err != nil {
		return false, fmt.Errorf("marking notification read: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *notificationRepo) DeleteBySender(ctx context.Context, notificationID, senderID string) (bool, error) {
	query := `UPDATE notifications SET deleted_by_sender = TRUE WHERE id = $1 AND sent_by = $2`
	tag, err := r.pool.Exec(ctx, query, notificationID, senderID)
	if err != nil {
		return false, fmt.Errorf("flagging notification deleted by sender: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *notificationRepo) DeleteByRecipient(ctx context.Context, notificationID, recipientID string) (bool, error) {
	query := `UPDATE notifications SET deleted_by_recipient = TRUE WHERE id = $1 AND sent_to = $2`
	tag, err := r.pool.Exec(ctx, query, notificationID, recipientID)
	if err != nil {
		return false, fmt.Errorf("flagging notification deleted by recipient: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
