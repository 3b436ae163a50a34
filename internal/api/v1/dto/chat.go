package dto

// MessagePostDTO is an incoming chat message for a class
type MessagePostDTO struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// MessagePostResponseDTO acknowledges a published chat message
type MessagePostResponseDTO struct {
	MessageID string `json:"message_id"`
}

// PushEnvelopeDTO is the wrapper Google Pub/Sub wraps around pushed messages.
type PushEnvelopeDTO struct {
	Message struct {
		Data      []byte `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}
