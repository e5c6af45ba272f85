package coachprofile

import (
	"fmt"
	"strings"
	"time"

	"coach_marketplace_backend/internal/common"
	"coach_marketplace_backend/internal/specialization"

	"gorm.io/datatypes"
)

// ReviewStatus is the workflow marker of a coach profile.
type ReviewStatus string

const (
	StatusDraft           ReviewStatus = "DRAFT"
	StatusReviewRequested ReviewStatus = "REVIEW_REQUESTED"
	StatusReviewStarted   ReviewStatus = "REVIEW_STARTED"
	StatusPublished       ReviewStatus = "PUBLISHED"
)

// AppointmentType is one way a coach meets clients.
type AppointmentType string

const (
	AppointmentOnline   AppointmentType = "ONLINE"
	AppointmentInPerson AppointmentType = "IN_PERSON"
	AppointmentPhone    AppointmentType = "PHONE"
)

var appointmentTypeOrder = []AppointmentType{AppointmentOnline, AppointmentInPerson, AppointmentPhone}

// CertificateType classifies a certificate.
type CertificateType string

const (
	CertificateDiploma CertificateType = "DIPLOMA"
	CertificateLicense CertificateType = "LICENSE"
	CertificateCourse  CertificateType = "COURSE"
	CertificateOther   CertificateType = "OTHER"
)

// CoachProfile is stored twice per coach: the editable draft and the published copy.
// users.coach_profile_draft_id and users.coach_profile_id tell them apart.
type CoachProfile struct {
	common.BaseModel
	UserID uint `gorm:"not null;index"`

	FirstName        *string `gorm:"type:varchar(100)"`
	LastName         *string `gorm:"type:varchar(100)"`
	Bio              *string `gorm:"type:text"`
	CompanyName      *string `gorm:"type:varchar(200)"`
	AddressLine1     *string `gorm:"column:address_line1;type:varchar(255)"`
	AddressLine2     *string `gorm:"column:address_line2;type:varchar(255)"`
	Zip              *string `gorm:"type:varchar(20)"`
	City             *string `gorm:"type:varchar(100)"`
	Country          *string `gorm:"type:varchar(100)"`
	AppointmentTypes *string `gorm:"type:varchar(100)"`

	Specializations []specialization.Specialization `gorm:"many2many:coach_profile_specializations;"`
	Certificates    []Certificate                   `gorm:"foreignKey:CoachProfileID;constraint:OnDelete:CASCADE;"`

	ReviewStatus      ReviewStatus `gorm:"type:varchar(32);not null;default:'DRAFT'"`
	RequestedReviewAt *time.Time
	ReviewedAt        *time.Time
	RejectionReason   *string `gorm:"type:text"`
}

// TableName specifies the table name for the CoachProfile model.
func (CoachProfile) TableName() string {
	return "coach_profiles"
}

// Certificate is owned by exactly one profile row.
type Certificate struct {
	common.BaseModel
	CoachProfileID uint            `gorm:"not null;index"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Description    *string         `gorm:"type:text"`
	Type           CertificateType `gorm:"type:varchar(32);not null"`
}

// TableName specifies the table name for the Certificate model.
func (Certificate) TableName() string {
	return "certificates"
}

// ReviewEvent is one row of the review audit trail.
type ReviewEvent struct {
	ID             uint         `gorm:"primaryKey"`
	CoachUserID    uint         `gorm:"not null;index"`
	CoachProfileID uint         `gorm:"not null"`
	Action         ReviewAction `gorm:"type:varchar(32);not null"`
	FromStatus     ReviewStatus `gorm:"type:varchar(32);not null"`
	ToStatus       ReviewStatus `gorm:"type:varchar(32);not null"`
	Reason         *string      `gorm:"type:text"`
	// Snapshot holds the published information on publish events.
	Snapshot  datatypes.JSON `gorm:"not null;default:'{}'"`
	CreatedAt time.Time      `gorm:"not null"`
}

// TableName specifies the table name for the ReviewEvent model.
func (ReviewEvent) TableName() string {
	return "coach_profile_review_events"
}

// ProfileInformation is the content of a profile without identity, workflow metadata
// or relations. It is what a publish copies from the draft.
type ProfileInformation struct {
	FirstName        *string `json:"first_name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
	Bio              *string `json:"bio,omitempty"`
	CompanyName      *string `json:"company_name,omitempty"`
	AddressLine1     *string `json:"address_line1,omitempty"`
	AddressLine2     *string `json:"address_line2,omitempty"`
	Zip              *string `json:"zip,omitempty"`
	City             *string `json:"city,omitempty"`
	Country          *string `json:"country,omitempty"`
	AppointmentTypes *string `json:"appointment_types,omitempty"`
}

// Information strips the profile down to its content fields.
func (p *CoachProfile) Information() ProfileInformation {
	return ProfileInformation{
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Bio:              p.Bio,
		CompanyName:      p.CompanyName,
		AddressLine1:     p.AddressLine1,
		AddressLine2:     p.AddressLine2,
		Zip:              p.Zip,
		City:             p.City,
		Country:          p.Country,
		AppointmentTypes: p.AppointmentTypes,
	}
}

// ApplyInformation overwrites every content field, including with empty values.
func (p *CoachProfile) ApplyInformation(info ProfileInformation) {
	p.FirstName = info.FirstName
	p.LastName = info.LastName
	p.Bio = info.Bio
	p.CompanyName = info.CompanyName
	p.AddressLine1 = info.AddressLine1
	p.AddressLine2 = info.AddressLine2
	p.Zip = info.Zip
	p.City = info.City
	p.Country = info.Country
	p.AppointmentTypes = info.AppointmentTypes
}

// SpecializationIDs returns the ids of the attached specializations.
func (p *CoachProfile) SpecializationIDs() []uint {
	ids := make([]uint, len(p.Specializations))
	for i, s := range p.Specializations {
		ids[i] = s.ID
	}
	return ids
}

// ParseAppointmentTypes splits the stored comma-joined list.
func ParseAppointmentTypes(raw string) ([]AppointmentType, error) {
	var out []AppointmentType
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t := AppointmentType(strings.ToUpper(part))
		if !t.Valid() {
			return nil, fmt.Errorf("unknown appointment type %q", part)
		}
		out = append(out, t)
	}
	return out, nil
}

// JoinAppointmentTypes dedupes and orders the list canonically. An empty list yields nil.
func JoinAppointmentTypes(types []AppointmentType) *string {
	present := make(map[AppointmentType]bool, len(types))
	for _, t := range types {
		present[t] = true
	}
	parts := make([]string, 0, len(present))
	for _, t := range appointmentTypeOrder {
		if present[t] {
			parts = append(parts, string(t))
		}
	}
	return common.StringPtr(strings.Join(parts, ","))
}

// Valid reports whether t is a known appointment type.
func (t AppointmentType) Valid() bool {
	for _, known := range appointmentTypeOrder {
		if t == known {
			return true
		}
	}
	return false
}

// --- DTOs ---

type CertificateResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Type        CertificateType `json:"type"`
}

func toCertificateResponses(certs []Certificate) []CertificateResponse {
	out := make([]CertificateResponse, len(certs))
	for i, c := range certs {
		out[i] = CertificateResponse{ID: c.ID, Name: c.Name, Description: c.Description, Type: c.Type}
	}
	return out
}

// CoachProfileResponse is the API shape of a draft or published profile.
type CoachProfileResponse struct {
	ID               uint                                    `json:"id"`
	UserID           uint                                    `json:"user_id"`
	FirstName        *string                                 `json:"first_name"`
	LastName         *string                                 `json:"last_name"`
	Bio              *string                                 `json:"bio"`
	CompanyName      *string                                 `json:"company_name"`
	AddressLine1     *string                                 `json:"address_line1"`
	AddressLine2     *string                                 `json:"address_line2"`
	Zip              *string                                 `json:"zip"`
	City             *string                                 `json:"city"`
	Country          *string                                 `json:"country"`
	AppointmentTypes []AppointmentType                       `json:"appointment_types"`
	Specializations  []specialization.SpecializationResponse `json:"specializations"`
	Certificates     []CertificateResponse                   `json:"certificates"`
	ReviewStatus     ReviewStatus                            `json:"review_status"`
	UpdatedAt        time.Time                               `json:"updated_at"`
}

// ToCoachProfileResponse converts a CoachProfile model to its DTO.
func ToCoachProfileResponse(p *CoachProfile) CoachProfileResponse {
	types, _ := ParseAppointmentTypes(common.StringValue(p.AppointmentTypes))
	if types == nil {
		types = []AppointmentType{}
	}
	return CoachProfileResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Bio:              p.Bio,
		CompanyName:      p.CompanyName,
		AddressLine1:     p.AddressLine1,
		AddressLine2:     p.AddressLine2,
		Zip:              p.Zip,
		City:             p.City,
		Country:          p.Country,
		AppointmentTypes: types,
		Specializations:  specialization.ToSpecializationResponses(p.Specializations),
		Certificates:     toCertificateResponses(p.Certificates),
		ReviewStatus:     p.ReviewStatus,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ReviewOverview is what the coach sees on the review screen.
type ReviewOverview struct {
	Diffs                []DiffEntry  `json:"diffs"`
	ReviewStatus         ReviewStatus `json:"review_status"`
	RequestedReviewAt    *time.Time   `json:"requested_review_at"`
	ReviewedAt           *time.Time   `json:"reviewed_at"`
	RejectionReason      *string      `json:"rejection_reason"`
	HasPublishedProfile  bool         `json:"has_published_profile"`
	HasChanges           bool         `json:"has_changes"`
	CanRequestReview     bool         `json:"can_request_review"`
	ReviewCycleCompleted bool         `json:"review_cycle_completed"`
}

type ReviewEventResponse struct {
	ID         uint         `json:"id"`
	Action     ReviewAction `json:"action"`
	FromStatus ReviewStatus `json:"from_status"`
	ToStatus   ReviewStatus `json:"to_status"`
	Reason     *string      `json:"reason,omitempty"`
	Snapshot   datatypes.JSON `json:"snapshot,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func ToReviewEventResponses(events []ReviewEvent) []ReviewEventResponse {
	out := make([]ReviewEventResponse, len(events))
	for i, e := range events {
		out[i] = ReviewEventResponse{
			ID:         e.ID,
			Action:     e.Action,
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			Reason:     e.Reason,
			Snapshot:   e.Snapshot,
			CreatedAt:  e.CreatedAt,
		}
	}
	return out
}

// UpdateDraftRequest carries a partial update. Absent fields are left alone and an empty
// string clears a field. A present but empty appointment_types list clears the list.
type UpdateDraftRequest struct {
	FirstName        *string  `json:"first_name" binding:"omitempty,max=100"`
	LastName         *string  `json:"last_name" binding:"omitempty,max=100"`
	Bio              *string  `json:"bio" binding:"omitempty,max=5000"`
	CompanyName      *string  `json:"company_name" binding:"omitempty,max=200"`
	AddressLine1     *string  `json:"address_line1" binding:"omitempty,max=255"`
	AddressLine2     *string  `json:"address_line2" binding:"omitempty,max=255"`
	Zip              *string  `json:"zip" binding:"omitempty,max=20"`
	City             *string  `json:"city" binding:"omitempty,max=100"`
	Country          *string  `json:"country" binding:"omitempty,max=100"`
	AppointmentTypes []string `json:"appointment_types" binding:"omitempty,dive,oneof=ONLINE IN_PERSON PHONE"`
}

type SetSpecializationsRequest struct {
	SpecializationIDs []uint `json:"specialization_ids" binding:"required,dive,gt=0"`
}

type AddCertificateRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Description *string         `json:"description" binding:"omitempty,max=2000"`
	Type        CertificateType `json:"type" binding:"required,oneof=DIPLOMA LICENSE COURSE OTHER"`
}

type RevertFieldRequest struct {
	Field string `json:"field" binding:"required"`
}

// OperatorCommandRequest is the body of every operator review command.
type OperatorCommandRequest struct {
	CoachUserID     uint   `json:"coachUserId" binding:"required,gt=0"`
	RejectionReason string `json:"rejectionReason"`
}
