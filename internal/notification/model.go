package notification

import (
	"time"
)

// NotificationType defines the type of notification.
type NotificationType string

const (
	ProfileReviewStarted NotificationType = "profile_review_started"
	ProfilePublished     NotificationType = "profile_published"
	ProfileRejected      NotificationType = "profile_rejected"
)

// Notification is a message addressed to one user. Rows are immutable apart from IsRead.
type Notification struct {
	ID                    uint             `gorm:"primaryKey" json:"id"`
	UserID                uint             `gorm:"not null;index:idx_notification_user_status" json:"user_id"`
	Type                  NotificationType `gorm:"type:varchar(100);not null" json:"type"`
	Message               string           `gorm:"type:text;not null" json:"message"`
	RelatedCoachProfileID *uint            `json:"related_coach_profile_id,omitempty"`
	IsRead                bool             `gorm:"not null;default:false;index:idx_notification_user_status" json:"is_read"`
	CreatedAt             time.Time        `gorm:"not null;index:idx_notification_user_status" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}
