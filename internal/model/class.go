package model

import "time"

// Class types.
const (
	ClassRecorded = "recorded"
	ClassLive     = "live"
)

// Class is a scheduled (live) or recorded session attached to a course.
type Class struct {
	ClassID      string     `db:"id" json:"class_id"`
	Title        string     `db:"title" json:"title"`
	Subject      string     `db:"subject" json:"subject"`
	ImageURL     string     `db:"image_url" json:"image_url"`
	InstructorID string     `db:"instructor_id" json:"instructor_id"`
	CourseID     string     `db:"course_id" json:"course_id"`
	CourseType   string     `db:"course_type" json:"course_type"`   // "class", "admission", "job"
	BillingType  string     `db:"billing_type" json:"billing_type"` // "free" or "paid"
	Type         string     `db:"type" json:"type"`
	VideoLink    string     `db:"video_link" json:"video_link"`
	StartTime    *time.Time `db:"start_time" json:"start_time,omitempty"`
	IsActiveLive bool       `db:"is_active_live" json:"is_active_live"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
