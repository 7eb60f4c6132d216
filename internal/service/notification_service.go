package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/purchase-request-api/internal/models"
)

// Notifier shows a result toast to the operator.
type Notifier interface {
	Success(ctx context.Context, message, title string)
	Error(ctx context.Context, message, title string)
}

type broadcaster interface {
	Broadcast(message []byte)
}

// NotificationService logs every notification and pushes it to connected panels when a hub is wired.
type NotificationService struct {
	hub    broadcaster
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService constructs a NotificationService. hub may be nil.
func NewNotificationService(hub broadcaster, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{hub: hub, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Success publishes a success notification.
func (s *NotificationService) Success(ctx context.Context, message, title string) {
	s.publish(models.Notification{Kind: models.NotificationSuccess, Title: title, Message: message})
}

// Error publishes an error notification.
func (s *NotificationService) Error(ctx context.Context, message, title string) {
	s.publish(models.Notification{Kind: models.NotificationError, Title: title, Message: message})
}

func (s *NotificationService) publish(n models.Notification) {
	n.SentAt = s.now()
	fields := []zap.Field{zap.String("kind", string(n.Kind)), zap.String("title", n.Title), zap.String("message", n.Message)}
	if n.Kind == models.NotificationError {
		s.logger.Warn("notification", fields...)
	} else {
		s.logger.Info("notification", fields...)
	}
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		s.logger.Error("encode notification", zap.Error(err))
		return
	}
	s.hub.Broadcast(payload)
}
