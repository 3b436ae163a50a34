package dto

import "pathshala/internal/model"

// MaterialCreateDTO is used for incoming material creation requests
type MaterialCreateDTO struct {
	Title         string   `json:"title" validate:"required"`
	Price         int      `json:"price" validate:"gte=0"`
	ImageURL      string   `json:"image_url,omitempty"`
	AccessControl string   `json:"access_control" validate:"required,oneof=purchased free restricted"`
	ForCourses    []string `json:"for_courses,omitempty"`
}

// MaterialUpdateDTO is used for incoming material update requests
type MaterialUpdateDTO struct {
	Title         *string  `json:"title,omitempty"`
	Price         *int     `json:"price,omitempty" validate:"omitempty,gte=0"`
	ImageURL      *string  `json:"image_url,omitempty"`
	AccessControl *string  `json:"access_control,omitempty" validate:"omitempty,oneof=purchased free restricted"`
	ForCourses    []string `json:"for_courses,omitempty"`
}

// MaterialPurchaseDTO is used for standalone material purchase requests
type MaterialPurchaseDTO struct {
	MaterialID    string `json:"material_id" validate:"required"`
	TransactionID string `json:"transaction_id" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=bkash nagad rocket"`
}

// FileUploadDTO requests a presigned upload slot for a material file
type FileUploadDTO struct {
	Filename string `json:"filename" validate:"required"`
}

// FileUploadResponseDTO carries the presigned PUT URL for a new file
type FileUploadResponseDTO struct {
	Material  *model.Material `json:"material"`
	UploadURL string          `json:"upload_url"`
}

// MaterialAccessResponseDTO is the outcome of a material access resolution
type MaterialAccessResponseDTO struct {
	Material *model.Material `json:"material"`
	Path     string          `json:"path"`
	CourseID string          `json:"course_id,omitempty"`
	FileURLs []string        `json:"file_urls"`
}

// FreeMaterialResponseDTO is a free material with download links
type FreeMaterialResponseDTO struct {
	Material *model.Material `json:"material"`
	FileURLs []string        `json:"file_urls"`
}
