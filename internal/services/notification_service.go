package services

import (
	"context"
	"time"

	"github.com/freightflow/freight-marketplace/internal/models"
	"github.com/freightflow/freight-marketplace/internal/realtime"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// How many feed entries the REST surface returns.
const notificationFeedLimit = 20

// EventNotification is the event name pushed for every notification frame.
const EventNotification = "notification"

// NotificationStore is the durable notification feed.
// Implemented by repository.NotificationRepository.
type NotificationStore interface {
	Insert(ctx context.Context, notif *models.Notification) (*models.Notification, error)
	ListRecent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
}

// UserDirectory resolves the recipients of a role broadcast.
// Implemented by repository.UserRepository.
type UserDirectory interface {
	GetUsersByRole(ctx context.Context, role string) ([]models.User, error)
}

// Emitter fans an event out to the current members of a room.
// Implemented by realtime.Hub.
type Emitter interface {
	Emit(room, event string, payload interface{})
}

// NotificationService persists notifications and pushes them to connected
// clients. Domain services call it at every event point (shipment posted,
// offer received/accepted, status changed).
type NotificationService struct {
	repo  NotificationStore
	users UserDirectory
	hub   Emitter
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(repo NotificationStore, users UserDirectory, hub Emitter) *NotificationService {
	return &NotificationService{
		repo:  repo,
		users: users,
		hub:   hub,
	}
}

// NotifyUser persists a notification for one user and then pushes it to that
// user's room. The persisted write is the durability guarantee; the push is
// best-effort and cannot fail the caller. A persistence failure does propagate,
// so the calling domain service decides whether it matters.
func (s *NotificationService) NotifyUser(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, metadata map[string]interface{}) (*models.Notification, error) {
	notif := &models.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Message:  message,
		Metadata: metadata,
	}

	created, err := s.repo.Insert(ctx, notif)
	if err != nil {
		return nil, err
	}

	s.hub.Emit(realtime.UserRoom(userID.Hex()), EventNotification, created)
	return created, nil
}

// NotifyRole announces an event to every user holding a role. The live push
// to the role room happens first so currently-connected clients see the alert
// immediately; the per-user records are persisted afterwards. Failures in the
// persistence leg are logged and swallowed: the ephemeral broadcast has
// already been delivered and cannot be undone.
func (s *NotificationService) NotifyRole(ctx context.Context, role, notifType, title, message string, metadata map[string]interface{}) {
	s.hub.Emit(realtime.RoleRoom(role), EventNotification, map[string]interface{}{
		"title":     title,
		"message":   message,
		"type":      notifType,
		"metadata":  metadata,
		"isRead":    false,
		"createdAt": time.Now(),
	})

	users, err := s.users.GetUsersByRole(ctx, role)
	if err != nil {
		logrus.WithError(err).WithField("role", role).Error("Failed to enumerate role recipients")
		return
	}

	for _, user := range users {
		notif := &models.Notification{
			UserID:   user.ID,
			Type:     notifType,
			Title:    title,
			Message:  message,
			Metadata: metadata,
		}
		if _, err := s.repo.Insert(ctx, notif); err != nil {
			logrus.WithError(err).WithField("userID", user.ID.Hex()).Warn("Failed to persist role notification")
		}
	}
}

// GetUserNotifications returns the newest notifications for a user.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.repo.ListRecent(ctx, userID, notificationFeedLimit)
}

// MarkNotificationRead sets the read flag of one notification. Calling it
// with an unknown id is not an error.
func (s *NotificationService) MarkNotificationRead(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.MarkRead(ctx, id)
}

// MarkAllNotificationsRead sets the read flag for all of a user's notifications.
func (s *NotificationService) MarkAllNotificationsRead(ctx context.Context, userID primitive.ObjectID) error {
	return s.repo.MarkAllRead(ctx, userID)
}
