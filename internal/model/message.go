package model

import "time"

// Message is a chat message posted in a live class.
type Message struct {
	MessageID string    `db:"id" json:"message_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
