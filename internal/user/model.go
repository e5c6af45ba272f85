package user

import (
	"coach_marketplace_backend/internal/common"
)

// User represents the user model in the database.
// Accounts are created by the external account service; this service reads them and
// maintains the two coach profile links.
type User struct {
	common.BaseModel
	Email       *string `gorm:"type:varchar(255);uniqueIndex"`
	FirstName   *string `gorm:"type:varchar(100)"`
	LastName    *string `gorm:"type:varchar(100)"`
	Role        string  `gorm:"type:varchar(50);not null;default:'customer'"`
	FirebaseUID *string `gorm:"column:firebase_uid;type:varchar(128);uniqueIndex"`

	// Published profile, set by the first successful publish.
	CoachProfileID *uint `gorm:"column:coach_profile_id"`
	// Draft profile, created lazily on the first coach request.
	CoachProfileDraftID *uint `gorm:"column:coach_profile_draft_id"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}
