package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Content is a single piece of learning content inside a lesson.
type Content struct {
	ContentID       string `json:"content_id"`
	Name            string `json:"name"`
	Type            string `json:"type"` // e.g. "video", "pdf", "quiz"
	Link            string `json:"link"`
	Description     string `json:"description"`
	RequiredForNext bool   `json:"required_for_next"`
}

// Lesson is an ordered unit of a course. Lesson and content IDs are stable
// once created; descriptive fields may change over the life of the course.
type Lesson struct {
	LessonID        string    `json:"lesson_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Type            string    `json:"type"`
	RequiredForNext bool      `json:"required_for_next"`
	Contents        []Content `json:"contents"`
}

// LessonList is the ordered lesson structure of a course (JSONB)
type LessonList []Lesson

// Course is the canonical catalog definition of a course.
type Course struct {
	CourseID         string     `db:"id" json:"course_id"`
	Title            string     `db:"title" json:"title"`
	Description      string     `db:"description" json:"description"`
	ShortDescription string     `db:"short_description" json:"short_description"`
	Subjects         []string   `db:"subjects" json:"subjects"`
	ThumbnailURL     string     `db:"thumbnail_url" json:"thumbnail_url"`
	Price            int        `db:"price" json:"price"`
	OfferPrice       int        `db:"offer_price" json:"offer_price"`
	CourseFor        string     `db:"course_for" json:"course_for"` // e.g. "class 10", "hsc", "admission"
	Lessons          LessonList `db:"lessons" json:"lessons"`
	Materials        []string   `db:"materials" json:"materials"` // attached material IDs
	StudentsEnrolled int        `db:"students_enrolled" json:"students_enrolled"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Value implements the driver.Valuer interface for JSONB
func (l LessonList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]Lesson{})
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface for JSONB
func (l *LessonList) Scan(value interface{}) error {
	if value == nil {
		*l = make(LessonList, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*l = make(LessonList, 0)
		return fmt.Errorf("cannot scan %T into LessonList", value)
	}

	if len(bytes) == 0 {
		*l = make(LessonList, 0)
		return nil
	}

	return json.Unmarshal(bytes, l)
}
