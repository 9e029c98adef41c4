package service

import (
	"context"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime"
)

// notificationService implements NotificationService.
type notificationService struct {
	Deps
}

// NewNotificationService creates a new NotificationService instance.
func NewNotificationService(deps Deps) NotificationService {
	return &notificationService{Deps: deps}
}

// NotificationEvent is the payload of the update and delete notification
// events.
type NotificationEvent struct {
	NotificationID string `json:"notificationId"`
	UserID         string `json:"userId"`
}

// List reads straight from the store. Notifications are never cached.
func (s *notificationService) List(ctx context.Context, actor domain.Actor) ([]*domain.Notification, error) {
	return s.Store.Notifications.ListByUser(ctx, actor.UserID)
}

func (s *notificationService) MarkRead(ctx context.Context, actor domain.Actor, notificationID string) error {
	if err := s.requireOwn(ctx, actor, notificationID); err != nil {
		return err
	}
	s.Emitter.Emit(ctx, realtime.EventUpdateNotification, NotificationEvent{
		NotificationID: notificationID,
		UserID:         actor.UserID,
	}, actor.UserID)
	enqueue(ctx, s.Queue, queue.UpdateNotification, &queue.NotificationJob{NotificationID: notificationID, UserTo: actor.UserID})
	return nil
}

func (s *notificationService) Delete(ctx context.Context, actor domain.Actor, notificationID string) error {
	if err := s.requireOwn(ctx, actor, notificationID); err != nil {
		return err
	}
	s.Emitter.Emit(ctx, realtime.EventDeleteNotification, NotificationEvent{
		NotificationID: notificationID,
		UserID:         actor.UserID,
	}, actor.UserID)
	enqueue(ctx, s.Queue, queue.DeleteNotification, &queue.NotificationJob{NotificationID: notificationID, UserTo: actor.UserID})
	return nil
}

// requireOwn fails with ErrNotFound unless the notification was sent to
// actor, so other users' ids are not revealed.
func (s *notificationService) requireOwn(ctx context.Context, actor domain.Actor, notificationID string) error {
	if err := requirePostID("notificationId", notificationID); err != nil {
		return err
	}
	_, err := s.Store.Notifications.Get(ctx, actor.UserID, notificationID)
	return err
}
