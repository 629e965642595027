package service

import (
	"context"
	"errors"
	"fmt"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/repository"
	"bikerental-backend/internal/security"
)

var ErrNotificationNotFound = errors.New("notification not found")

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

// inbox is the recipient id the caller reads from. Admins share one inbox.
func inbox(caller *security.Identity) string {
	if caller.IsAdmin() {
		return domain.AdminRecipient
	}
	return caller.UserID
}

func (s *notificationService) GetNotifications(ctx context.Context, caller *security.Identity, page, pageSize int32) ([]domain.Notification, int32, error) {
	if caller == nil {
		return nil, 0, ErrForbidden
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, inbox(caller), pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, caller *security.Identity, notificationID int32) error {
	if caller == nil {
		return ErrForbidden
	}
	err := s.noteRepo.MarkAsRead(ctx, notificationID, inbox(caller))
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrNotificationNotFound, notificationID)
	}
	return err
}
