package user

import (
	"coach_marketplace_backend/internal/shared"
)

// DBToShared converts a GORM user.User model to a shared.User DTO.
func DBToShared(dbUser *User) *shared.User {
	if dbUser == nil {
		return nil
	}
	return &shared.User{
		ID:                  dbUser.ID,
		Email:               dbUser.Email,
		FirstName:           dbUser.FirstName,
		LastName:            dbUser.LastName,
		Role:                dbUser.Role,
		FirebaseUID:         dbUser.FirebaseUID,
		CoachProfileID:      dbUser.CoachProfileID,
		CoachProfileDraftID: dbUser.CoachProfileDraftID,
		CreatedAt:           dbUser.CreatedAt,
		UpdatedAt:           dbUser.UpdatedAt,
	}
}
