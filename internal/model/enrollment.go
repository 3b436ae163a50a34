package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Enrollment lifecycle statuses. Transitions are monotonic: a pending
// enrollment may become approved, never the reverse.
const (
	EnrollmentPending  = "pending"
	EnrollmentApproved = "approved"
)

// Enrollment types.
const (
	EnrollmentTypePaid = "paid"
	EnrollmentTypeFree = "free"
)

// StatusLocked is the initial per-student status for every freshly
// snapshotted lesson and content item. Other values (e.g. "done") are set by
// progress-tracking callers and are treated as opaque by the synchronizer.
const StatusLocked = "locked"

// ContentProgress is the per-student copy of a content item, augmented with
// a progress status.
type ContentProgress struct {
	ContentID       string `json:"content_id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Link            string `json:"link"`
	Description     string `json:"description"`
	RequiredForNext bool   `json:"required_for_next"`
	Status          string `json:"status"`
}

// LessonProgress is the per-student copy of a lesson. Descriptive fields
// track the catalog; Status and the per-content statuses belong to the
// student and survive synchronization.
type LessonProgress struct {
	LessonID        string            `json:"lesson_id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Type            string            `json:"type"`
	RequiredForNext bool              `json:"required_for_next"`
	Status          string            `json:"status"`
	Contents        []ContentProgress `json:"contents"`
}

// ProgressList is an enrollment's lesson progress snapshot (JSONB)
type ProgressList []LessonProgress

// Enrollment is one purchase/registration attempt of a student for a course,
// carrying the student's progress snapshot of that course.
type Enrollment struct {
	EnrollmentID  string       `db:"id" json:"enrollment_id"`
	CourseID      string       `db:"course_id" json:"course_id"`
	StudentID     string       `db:"student_id" json:"student_id"`
	TransactionID string       `db:"transaction_id" json:"transaction_id"`
	Type          string       `db:"type" json:"type"`                     // "paid" or "free"
	PaymentMethod string       `db:"payment_method" json:"payment_method"` // "bkash", "nagad", "rocket"
	Status        string       `db:"status" json:"status"`
	Lessons       ProgressList `db:"lessons" json:"lessons"`
	Materials     []string     `db:"materials" json:"materials"` // material-ref snapshot
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// Value implements the driver.Valuer interface for JSONB
func (p ProgressList) Value() (driver.Value, error) {
	if p == nil {
		return json.Marshal([]LessonProgress{})
	}
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface for JSONB
func (p *ProgressList) Scan(value interface{}) error {
	if value == nil {
		*p = make(ProgressList, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*p = make(ProgressList, 0)
		return fmt.Errorf("cannot scan %T into ProgressList", value)
	}

	if len(bytes) == 0 {
		*p = make(ProgressList, 0)
		return nil
	}

	return json.Unmarshal(bytes, p)
}
