package dto

// ContentCreateDTO is an inline content item in a lesson request
type ContentCreateDTO struct {
	Name            string `json:"name" validate:"required"`
	Type            string `json:"type" validate:"required,oneof=video pdf quiz link"`
	Link            string `json:"link,omitempty"`
	Description     string `json:"description,omitempty"`
	RequiredForNext bool   `json:"required_for_next"`
}

// LessonCreateDTO is used for adding a lesson to a course
type LessonCreateDTO struct {
	Name            string             `json:"name" validate:"required"`
	Description     string             `json:"description,omitempty"`
	Type            string             `json:"type,omitempty"`
	RequiredForNext bool               `json:"required_for_next"`
	Contents        []ContentCreateDTO `json:"contents,omitempty" validate:"dive"`
}

// LessonUpdateDTO is used for rewriting a lesson's descriptive fields
type LessonUpdateDTO struct {
	Name            *string `json:"name,omitempty"`
	Description     *string `json:"description,omitempty"`
	Type            *string `json:"type,omitempty"`
	RequiredForNext *bool   `json:"required_for_next,omitempty"`
}

// CourseCreateDTO is used for incoming course creation requests
type CourseCreateDTO struct {
	Title            string            `json:"title" validate:"required"`
	Description      string            `json:"description,omitempty"`
	ShortDescription string            `json:"short_description,omitempty"`
	Subjects         []string          `json:"subjects,omitempty"`
	ThumbnailURL     string            `json:"thumbnail_url,omitempty"`
	Price            int               `json:"price" validate:"gte=0"`
	OfferPrice       int               `json:"offer_price" validate:"gte=0"`
	CourseFor        string            `json:"course_for,omitempty"`
	Lessons          []LessonCreateDTO `json:"lessons,omitempty" validate:"dive"`
}

// CourseUpdateDTO is used for incoming course update requests
type CourseUpdateDTO struct {
	Title            *string  `json:"title,omitempty"`
	Description      *string  `json:"description,omitempty"`
	ShortDescription *string  `json:"short_description,omitempty"`
	Subjects         []string `json:"subjects,omitempty"`
	ThumbnailURL     *string  `json:"thumbnail_url,omitempty"`
	Price            *int     `json:"price,omitempty" validate:"omitempty,gte=0"`
	OfferPrice       *int     `json:"offer_price,omitempty" validate:"omitempty,gte=0"`
	CourseFor        *string  `json:"course_for,omitempty"`
}

// AttachMaterialDTO attaches an existing material to a course
type AttachMaterialDTO struct {
	MaterialID string `json:"material_id" validate:"required"`
}
