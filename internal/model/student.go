package model

import "time"

// Student represents a student account.
type Student struct {
	StudentID          string    `db:"id" json:"student_id"`
	FullName           string    `db:"full_name" json:"full_name"`
	RegistrationNumber string    `db:"registration_number" json:"registration_number"`
	Email              string    `db:"email" json:"email"`
	Phone              string    `db:"phone" json:"phone"`
	PhotoURL           string    `db:"photo_url" json:"photo_url"`
	EducationLevel     string    `db:"education_level" json:"education_level"`
	Institution        string    `db:"institution" json:"institution"`
	Materials          []string  `db:"materials" json:"materials"`     // directly owned material IDs
	Enrollments        []string  `db:"enrollments" json:"enrollments"` // enrollment IDs
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}
