package notification

import (
	"context"
	"fmt"

	"coach_marketplace_backend/internal/common"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	GetByUserID(ctx context.Context, userID uint, page, pageSize int) ([]Notification, *common.Pagination, error)
	FindByID(ctx context.Context, notificationID uint, userID uint) (*Notification, error) // userID for ownership check
	MarkAsRead(ctx context.Context, notificationID uint, userID uint) error
	MarkAllAsRead(ctx context.Context, userID uint) (int64, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

func (r *GORMRepository) Create(ctx context.Context, notification *Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByUserID returns a page of the user's notifications, newest first.
func (r *GORMRepository) GetByUserID(ctx context.Context, userID uint, page, pageSize int) ([]Notification, *common.Pagination, error) {
	var notifications []Notification
	var total int64

	if err := r.db.WithContext(ctx).Model(&Notification{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting notifications for user %d failed: %w", userID, err)
	}

	pagination := common.NewPagination(total, page, pageSize)

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.PageSize).
		Offset(common.Offset(pagination.CurrentPage, pagination.PageSize)).
		Find(&notifications).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching notifications for user %d failed: %w", userID, err)
	}
	return notifications, pagination, nil
}

func (r *GORMRepository) FindByID(ctx context.Context, notificationID uint, userID uint) (*Notification, error) {
	var notification Notification
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error
	if err != nil {
		if common.IsRecordNotFound(err) {
			return nil, common.ErrNotFound.WithDetails("Notification not found or not owned by user.")
		}
		return nil, fmt.Errorf("failed to find notification %d for user %d: %w", notificationID, userID, err)
	}
	return &notification, nil
}

// MarkAsRead verifies ownership first, so marking an already-read notification is not an error.
func (r *GORMRepository) MarkAsRead(ctx context.Context, notificationID uint, userID uint) error {
	if _, err := r.FindByID(ctx, notificationID, userID); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification %d as read for user %d: %w", notificationID, userID, result.Error)
	}
	return nil
}

func (r *GORMRepository) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read for user %d: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}
