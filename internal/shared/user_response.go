package shared

import (
	"time"
)

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID                  uint      `json:"id"`
	Email               *string   `json:"email,omitempty"`
	FirstName           *string   `json:"first_name,omitempty"`
	LastName            *string   `json:"last_name,omitempty"`
	Role                string    `json:"role"`
	CoachProfileID      *uint     `json:"coach_profile_id,omitempty"`
	CoachProfileDraftID *uint     `json:"coach_profile_draft_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ToUserResponse converts a shared.User to a UserResponse DTO.
func ToUserResponse(svUser *User) UserResponse {
	return UserResponse{
		ID:                  svUser.ID,
		Email:               svUser.Email,
		FirstName:           svUser.FirstName,
		LastName:            svUser.LastName,
		Role:                svUser.Role,
		CoachProfileID:      svUser.CoachProfileID,
		CoachProfileDraftID: svUser.CoachProfileDraftID,
		CreatedAt:           svUser.CreatedAt,
		UpdatedAt:           svUser.UpdatedAt,
	}
}
