package services

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/bharatcare/claims-backend/internal/models"
	"github.com/bharatcare/claims-backend/internal/store"
)

// NotificationService is an append-only per-user message sink; marking
// all read is its only mutation.
type NotificationService struct {
	store store.Store
}

func NewNotificationService(st store.Store) *NotificationService {
	return &NotificationService{store: st}
}

func (s *NotificationService) Notify(userID uuid.UUID, message string) {
	n := &models.Notification{UserID: userID, Message: message}
	if err := s.store.CreateNotification(n); err != nil {
		slog.Error("notification create failed", "user_id", userID, "error", err)
	}
}

// Broadcast notifies every user holding one of the given roles.
func (s *NotificationService) Broadcast(message string, roles ...models.Role) {
	users, err := s.store.ListUsersByRole(roles...)
	if err != nil {
		slog.Error("notification broadcast failed", "error", err)
		return
	}
	for _, u := range users {
		s.Notify(u.ID, message)
	}
}

func (s *NotificationService) ListForUser(userID uuid.UUID) ([]models.Notification, error) {
	return s.store.ListNotifications(userID)
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) (int64, error) {
	return s.store.MarkAllNotificationsRead(userID)
}
