package coachprofile

import (
	"context"
	"fmt"

	"coach_marketplace_backend/internal/common"
	"coach_marketplace_backend/internal/specialization"
	"coach_marketplace_backend/internal/user"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var workflowColumns = []string{"review_status", "requested_review_at", "reviewed_at", "rejection_reason", "updated_at"}

// Repository defines the persistence operations of the profile store.
type Repository interface {
	// WithTransaction runs fn against a repository bound to one database transaction.
	// Returning an error from fn rolls everything back.
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error

	FindOwner(ctx context.Context, userID uint, forUpdate bool) (*user.User, error)
	FindProfile(ctx context.Context, profileID uint, forUpdate bool) (*CoachProfile, error)
	FindPublishedBatch(ctx context.Context, afterID uint, limit int) ([]CoachProfile, error)

	CreateProfile(ctx context.Context, profile *CoachProfile) error
	SaveProfile(ctx context.Context, profile *CoachProfile) error
	UpdateContent(ctx context.Context, profile *CoachProfile) error
	SaveWorkflow(ctx context.Context, profile *CoachProfile) error
	LinkDraft(ctx context.Context, userID, profileID uint) error
	LinkPublished(ctx context.Context, userID, profileID uint) error

	ReplaceSpecializations(ctx context.Context, profile *CoachProfile, items []specialization.Specialization) error
	ReplaceCertificates(ctx context.Context, profileID uint, certificates []Certificate) error
	AddCertificate(ctx context.Context, certificate *Certificate) error
	DeleteCertificate(ctx context.Context, profileID, certificateID uint) error

	RecordReviewEvent(ctx context.Context, event *ReviewEvent) error
	ListReviewEvents(ctx context.Context, coachUserID uint, page, pageSize int) ([]ReviewEvent, *common.Pagination, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM coach profile repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func lockFor(query *gorm.DB, forUpdate bool) *gorm.DB {
	if forUpdate {
		return query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return query
}

func (r *gormRepository) FindOwner(ctx context.Context, userID uint, forUpdate bool) (*user.User, error) {
	var owner user.User
	err := lockFor(r.db.WithContext(ctx), forUpdate).First(&owner, userID).Error
	if err != nil {
		if common.IsRecordNotFound(err) {
			return nil, common.ErrNotFound.WithDetails("Coach not found.")
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return &owner, nil
}

// preloader applies the relation preloads of a profile. Certificates come back in
// insertion order.
func (r *gormRepository) preloader(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Specializations", func(db *gorm.DB) *gorm.DB { return db.Order("specializations.id ASC") }).
		Preload("Certificates", func(db *gorm.DB) *gorm.DB { return db.Order("certificates.id ASC") })
}

func (r *gormRepository) FindProfile(ctx context.Context, profileID uint, forUpdate bool) (*CoachProfile, error) {
	var profile CoachProfile
	query := lockFor(r.preloader(r.db.WithContext(ctx)), forUpdate)
	if err := query.First(&profile, profileID).Error; err != nil {
		if common.IsRecordNotFound(err) {
			return nil, common.ErrNotFound.WithDetails("Coach profile not found.")
		}
		return nil, fmt.Errorf("failed to load coach profile %d: %w", profileID, err)
	}
	return &profile, nil
}

// FindPublishedBatch pages through published profiles by ascending id.
func (r *gormRepository) FindPublishedBatch(ctx context.Context, afterID uint, limit int) ([]CoachProfile, error) {
	var profiles []CoachProfile
	err := r.preloader(r.db.WithContext(ctx)).
		Joins("JOIN users ON users.coach_profile_id = coach_profiles.id").
		Where("coach_profiles.id > ?", afterID).
		Order("coach_profiles.id ASC").
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load published profiles after %d: %w", afterID, err)
	}
	return profiles, nil
}

func (r *gormRepository) CreateProfile(ctx context.Context, profile *CoachProfile) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create coach profile for user %d: %w", profile.UserID, err)
	}
	return nil
}

// SaveProfile overwrites every scalar column. Relations are left alone.
func (r *gormRepository) SaveProfile(ctx context.Context, profile *CoachProfile) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to save coach profile %d: %w", profile.ID, err)
	}
	return nil
}

// UpdateContent writes only the comparable content columns, NULLs included.
func (r *gormRepository) UpdateContent(ctx context.Context, profile *CoachProfile) error {
	columns := make([]string, 0, len(comparableFields)+1)
	for _, f := range comparableFields {
		columns = append(columns, f.column)
	}
	columns = append(columns, "updated_at")

	result := r.db.WithContext(ctx).Model(profile).Select(columns).Updates(profile)
	if result.Error != nil {
		return fmt.Errorf("failed to update coach profile %d: %w", profile.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Coach profile not found.")
	}
	return nil
}

// SaveWorkflow writes only the review metadata columns.
func (r *gormRepository) SaveWorkflow(ctx context.Context, profile *CoachProfile) error {
	result := r.db.WithContext(ctx).Model(profile).Select(workflowColumns).Updates(profile)
	if result.Error != nil {
		return fmt.Errorf("failed to save review state of coach profile %d: %w", profile.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Coach profile not found.")
	}
	return nil
}

func (r *gormRepository) LinkDraft(ctx context.Context, userID, profileID uint) error {
	return r.link(ctx, userID, "coach_profile_draft_id", profileID)
}

func (r *gormRepository) LinkPublished(ctx context.Context, userID, profileID uint) error {
	return r.link(ctx, userID, "coach_profile_id", profileID)
}

func (r *gormRepository) link(ctx context.Context, userID uint, column string, profileID uint) error {
	result := r.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", userID).Update(column, profileID)
	if result.Error != nil {
		return fmt.Errorf("failed to set %s of user %d: %w", column, userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Coach not found.")
	}
	return nil
}

// ReplaceSpecializations makes items the exact specialization set of the profile.
func (r *gormRepository) ReplaceSpecializations(ctx context.Context, profile *CoachProfile, items []specialization.Specialization) error {
	assoc := r.db.WithContext(ctx).Model(profile).Association("Specializations")
	var err error
	if len(items) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(items)
	}
	if err != nil {
		return fmt.Errorf("failed to replace specializations of coach profile %d: %w", profile.ID, err)
	}
	return nil
}

// ReplaceCertificates deletes the profile's certificates and bulk-inserts certificates
// re-keyed to the profile.
func (r *gormRepository) ReplaceCertificates(ctx context.Context, profileID uint, certificates []Certificate) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("coach_profile_id = ?", profileID).Delete(&Certificate{}).Error; err != nil {
		return fmt.Errorf("failed to delete certificates of coach profile %d: %w", profileID, err)
	}
	if len(certificates) == 0 {
		return nil
	}
	for i := range certificates {
		certificates[i].CoachProfileID = profileID
	}
	if err := db.Create(&certificates).Error; err != nil {
		return fmt.Errorf("failed to insert certificates of coach profile %d: %w", profileID, err)
	}
	return nil
}

func (r *gormRepository) AddCertificate(ctx context.Context, certificate *Certificate) error {
	if err := r.db.WithContext(ctx).Create(certificate).Error; err != nil {
		return fmt.Errorf("failed to add certificate to coach profile %d: %w", certificate.CoachProfileID, err)
	}
	return nil
}

func (r *gormRepository) DeleteCertificate(ctx context.Context, profileID, certificateID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND coach_profile_id = ?", certificateID, profileID).
		Delete(&Certificate{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete certificate %d: %w", certificateID, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Certificate not found on the draft profile.")
	}
	return nil
}

func (r *gormRepository) RecordReviewEvent(ctx context.Context, event *ReviewEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record %s event for user %d: %w", event.Action, event.CoachUserID, err)
	}
	return nil
}

func (r *gormRepository) ListReviewEvents(ctx context.Context, coachUserID uint, page, pageSize int) ([]ReviewEvent, *common.Pagination, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ReviewEvent{}).Where("coach_user_id = ?", coachUserID).Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting review events for user %d failed: %w", coachUserID, err)
	}
	pagination := common.NewPagination(total, page, pageSize)

	var events []ReviewEvent
	err := r.db.WithContext(ctx).
		Where("coach_user_id = ?", coachUserID).
		Order("id DESC").
		Limit(pagination.PageSize).
		Offset(common.Offset(pagination.CurrentPage, pagination.PageSize)).
		Find(&events).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching review events for user %d failed: %w", coachUserID, err)
	}
	return events, pagination, nil
}
