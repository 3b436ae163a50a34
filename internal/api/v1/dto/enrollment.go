package dto

import "pathshala/internal/model"

// EnrollmentPurchaseDTO is used for incoming course purchase requests
type EnrollmentPurchaseDTO struct {
	CourseID      string `json:"course_id" validate:"required"`
	Type          string `json:"type" validate:"required,oneof=paid free"`
	TransactionID string `json:"transaction_id" validate:"required_if=Type paid"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=bkash nagad rocket"`
}

// EnrollmentSyncResponseDTO returns a synchronized enrollment and whether the
// read rewrote the stored snapshot.
type EnrollmentSyncResponseDTO struct {
	Enrollment   *model.Enrollment `json:"enrollment"`
	Synchronized bool              `json:"synchronized"`
}
