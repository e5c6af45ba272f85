package specialization

import (
	"time"

	"coach_marketplace_backend/internal/common"
)

// Specialization is a catalog entry coaches attach to their profiles.
type Specialization struct {
	common.BaseModel
	Name        string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_specializations_name"`
	Slug        string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_specializations_slug"`
	Description *string `gorm:"type:text"`
}

// TableName specifies the table name for the Specialization model.
func (Specialization) TableName() string {
	return "specializations"
}

// ProfileJoinTable is the many2many table linking coach profiles and specializations.
const ProfileJoinTable = "coach_profile_specializations"

// --- DTOs ---

// SpecializationResponse is the API shape of a catalog entry.
type SpecializationResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToSpecializationResponse converts a Specialization model to its DTO.
func ToSpecializationResponse(s *Specialization) SpecializationResponse {
	return SpecializationResponse{
		ID:          s.ID,
		Name:        s.Name,
		Slug:        s.Slug,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ToSpecializationResponses converts a slice.
func ToSpecializationResponses(items []Specialization) []SpecializationResponse {
	out := make([]SpecializationResponse, len(items))
	for i := range items {
		out[i] = ToSpecializationResponse(&items[i])
	}
	return out
}

// UpsertSpecializationRequest is the operator payload for create and update.
// Slug is derived from the name when omitted.
type UpsertSpecializationRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Slug        string  `json:"slug" binding:"omitempty,max=100"`
	Description *string `json:"description,omitempty"`
}
