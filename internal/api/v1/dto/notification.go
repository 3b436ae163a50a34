package dto

// NotificationSendDTO is used for sending an in-app notification
type NotificationSendDTO struct {
	SentTo     string `json:"sent_to" validate:"required"`
	SentToRole string `json:"sent_to_role" validate:"required,oneof=admin staff student"`
	Message    string `json:"message" validate:"required"`
}
