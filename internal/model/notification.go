package model

import "time"

// Notification roles for sender/recipient.
const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleStudent = "student"
)

// Notification is an in-app message between platform actors. Deletion is
// soft: each side hides its own copy via a flag.
type Notification struct {
	NotificationID     string    `db:"id" json:"notification_id"`
	SentBy             string    `db:"sent_by" json:"sent_by"`
	SentByRole         string    `db:"sent_by_role" json:"sent_by_role"`
	SentTo             string    `db:"sent_to" json:"sent_to"`
	SentToRole         string    `db:"sent_to_role" json:"sent_to_role"`
	Message            string    `db:"message" json:"message"`
	ReadReceipt        bool      `db:"read_receipt" json:"read_receipt"`
	DeletedBySender    bool      `db:"deleted_by_sender" json:"deleted_by_sender"`
	DeletedByRecipient bool      `db:"deleted_by_recipient" json:"deleted_by_recipient"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
