package dto

import "time"

// ClassCreateDTO is used for incoming class creation requests
type ClassCreateDTO struct {
	Title        string     `json:"title" validate:"required"`
	Subject      string     `json:"subject,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	InstructorID string     `json:"instructor_id,omitempty"`
	CourseID     string     `json:"course_id" validate:"required"`
	CourseType   string     `json:"course_type,omitempty"`
	BillingType  string     `json:"billing_type,omitempty" validate:"omitempty,oneof=free paid"`
	Type         string     `json:"type" validate:"required,oneof=recorded live"`
	VideoLink    string     `json:"video_link,omitempty"`
	StartTime    *time.Time `json:"start_time,omitempty"`
}

// ClassUpdateDTO is used for incoming class update requests
type ClassUpdateDTO struct {
	Title        *string    `json:"title,omitempty"`
	Subject      *string    `json:"subject,omitempty"`
	ImageURL     *string    `json:"image_url,omitempty"`
	InstructorID *string    `json:"instructor_id,omitempty"`
	CourseType   *string    `json:"course_type,omitempty"`
	BillingType  *string    `json:"billing_type,omitempty" validate:"omitempty,oneof=free paid"`
	VideoLink    *string    `json:"video_link,omitempty"`
	StartTime    *time.Time `json:"start_time,omitempty"`
}

// ClassLiveDTO toggles the live flag of a class
type ClassLiveDTO struct {
	Active bool `json:"active"`
}
