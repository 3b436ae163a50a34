package service

import (
	"context"
	"encoding/json"
	"fmt"

	"pathshala/internal/model"
	"pathshala/internal/pubsub"
	"pathshala/internal/repository"

	"github.com/rs/zerolog"
)

// ChatService is the live-class chat surface. Posted messages are fanned out
// through Pub/Sub; the push endpoint persists them via HandleIncoming, and
// clients poll ListMessages.
type ChatService interface {
	// PostMessage publishes a chat message for an enrollment-gated class.
	// Returns the Pub/Sub message ID.
	PostMessage(ctx context.Context, studentID, classID, content string) (string, error)
	// HandleIncoming persists a message delivered by the push subscription.
	HandleIncoming(ctx context.Context, payload []byte) (*model.Message, error)
	ListMessages(ctx context.Context, studentID, classID string, limit int) ([]model.Message, error)
}

// chatMessage is the wire form of a chat message on the topic.
type chatMessage struct {
	ClassID   string `json:"class_id"`
	StudentID string `json:"student_id"`
	Content   string `json:"content"`
}

// chatService is the implementation of ChatService
type chatService struct {
	repo           repository.MessageRepository
	classRepo      repository.ClassRepository
	enrollmentRepo repository.EnrollmentRepository
	publisher      pubsub.Publisher
	topic          string
	logger         zerolog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	repo repository.MessageRepository,
	classRepo repository.ClassRepository,
	enrollmentRepo repository.EnrollmentRepository,
	publisher pubsub.Publisher,
	topic string,
	logger zerolog.Logger,
) ChatService {
	return &chatService{
		repo:           repo,
		classRepo:      classRepo,
		enrollmentRepo: enrollmentRepo,
		publisher:      publisher,
		topic:          topic,
		logger:         logger.With().Str("service", "ChatService").Logger(),
	}
}

func (s *chatService) PostMessage(ctx context.Context, studentID, classID, content string) (string, error) {
	if err := s.authorize(ctx, studentID, classID); err != nil {
		return "", err
	}

	payload, err := json.Marshal(chatMessage{
		ClassID:   classID,
		StudentID: studentID,
		Content:   content,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat message: %w", err)
	}

	msgID, err := s.publisher.Publish(ctx, s.topic, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("class_id", classID).Msg("Failed to publish chat message")
		return "", err
	}
	return msgID, nil
}

func (s *chatService) HandleIncoming(ctx context.Context, payload []byte) (*model.Message, error) {
	var wire chatMessage
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat message: %w", err)
	}

	message := &model.Message{
		ClassID:   wire.ClassID,
		StudentID: wire.StudentID,
		Content:   wire.Content,
	}
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *chatService) ListMessages(ctx context.Context, studentID, classID string, limit int) ([]model.Message, error) {
	if err := s.authorize(ctx, studentID, classID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByClass(ctx, classID, limit)
}

// authorize requires an approved enrollment in the class's course.
func (s *chatService) authorize(ctx context.Context, studentID, classID string) error {
	class, err := s.classRepo.GetClassByID(ctx, classID)
	if err != nil {
		return err
	}
	if class == nil {
		return ErrClassNotFound
	}
	enrollment, err := s.enrollmentRepo.FindByStudentAndCourse(ctx, studentID, class.CourseID)
	if err != nil {
		return err
	}
	if enrollment == nil || enrollment.Status != model.EnrollmentApproved {
		return ErrNotEnrolled
	}
	return nil
}
