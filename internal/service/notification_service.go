package service

import (
	"context"
	"errors"

	"pathshala/internal/model"
	"pathshala/internal/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService manages in-app notifications.
type NotificationService interface {
	Send(ctx context.Context, n *model.Notification) (*model.Notification, error)
	ListMine(ctx context.Context, recipientID string) ([]model.Notification, error)
	MarkRead(ctx context.Context, notificationID, recipientID string) error
	// Delete hides the caller's copy: the sender's flag or the recipient's,
	// depending on which side the caller is on.
	DeleteAsSender(ctx context.Context, notificationID, senderID string) error
	DeleteAsRecipient(ctx context.Context, notificationID, recipientID string) error
}

// notificationService is the implementation of NotificationService
type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Send(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *notificationService) ListMine(ctx context.Context, recipientID string) ([]model.Notification, error) {
	return s.repo.ListForRecipient(ctx, recipientID)
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, recipientID string) error {
	ok, err := s.repo.MarkRead(ctx, notificationID, recipientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *notificationService) DeleteAsSender(ctx context.Context, notificationID, senderID string) error {
	ok, err := s.repo.DeleteBySender(ctx, notificationID, senderID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *notificationService) DeleteAsRecipient(ctx context.Context, notificationID, recipientID string) error {
	ok, err := s.repo.DeleteByRecipient(ctx, notificationID, recipientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}
