package notification

import (
	"context"
	"strings"

	"coach_marketplace_backend/internal/common"

	"go.uber.org/zap"
)

// Service defines the notification operations used by handlers and other services.
type Service interface {
	CreateNotification(ctx context.Context, userID uint, notifType NotificationType, message string, relatedCoachProfileID *uint) (*Notification, error)
	GetNotificationsForUser(ctx context.Context, userID uint, page, pageSize int) ([]Notification, *common.Pagination, error)
	MarkNotificationAsRead(ctx context.Context, notificationID uint, userID uint) error
	MarkAllUserNotificationsAsRead(ctx context.Context, userID uint) (int64, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.Named("NotificationService"),
	}
}

func (s *service) CreateNotification(ctx context.Context, userID uint, notifType NotificationType, message string, relatedCoachProfileID *uint) (*Notification, error) {
	n := &Notification{
		UserID:                userID,
		Type:                  notifType,
		Message:               strings.TrimSpace(message),
		RelatedCoachProfileID: relatedCoachProfileID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification",
			zap.Uint("userID", userID),
			zap.String("type", string(notifType)),
			zap.Error(err),
		)
		return nil, common.ErrInternalServer.WithDetails("Could not create notification.")
	}
	s.logger.Debug("Notification created", zap.Uint("id", n.ID), zap.Uint("userID", userID), zap.String("type", string(notifType)))
	return n, nil
}

func (s *service) GetNotificationsForUser(ctx context.Context, userID uint, page, pageSize int) ([]Notification, *common.Pagination, error) {
	items, pagination, err := s.repo.GetByUserID(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to list notifications", zap.Uint("userID", userID), zap.Error(err))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve notifications.")
	}
	return items, pagination, nil
}

func (s *service) MarkNotificationAsRead(ctx context.Context, notificationID uint, userID uint) error {
	if err := s.repo.MarkAsRead(ctx, notificationID, userID); err != nil {
		if _, ok := common.IsAPIError(err); ok {
			return err
		}
		s.logger.Error("Failed to mark notification as read",
			zap.Uint("notificationID", notificationID),
			zap.Uint("userID", userID),
			zap.Error(err),
		)
		return common.ErrInternalServer.WithDetails("Could not mark notification as read.")
	}
	return nil
}

func (s *service) MarkAllUserNotificationsAsRead(ctx context.Context, userID uint) (int64, error) {
	count, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to mark all notifications as read", zap.Uint("userID", userID), zap.Error(err))
		return 0, common.ErrInternalServer.WithDetails("Could not mark all notifications as read.")
	}
	return count, nil
}
