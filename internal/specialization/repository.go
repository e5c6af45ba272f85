package specialization

import (
	"context"
	"fmt"

	"coach_marketplace_backend/internal/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for specialization data operations.
type Repository interface {
	Create(ctx context.Context, s *Specialization) error
	FindByID(ctx context.Context, id uint) (*Specialization, error)
	FindByIDs(ctx context.Context, ids []uint) ([]Specialization, error)
	FindAll(ctx context.Context) ([]Specialization, error)
	Update(ctx context.Context, s *Specialization) error
	Delete(ctx context.Context, id uint) error
	// UpsertBySlug inserts or refreshes entries keyed by slug; returns the number of rows written.
	UpsertBySlug(ctx context.Context, items []Specialization) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM specialization repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, s *Specialization) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if common.IsUniqueViolation(err) {
			return common.ErrConflict.WithDetails("Specialization with this name or slug already exists.")
		}
		return fmt.Errorf("failed to create specialization: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*Specialization, error) {
	var s Specialization
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if common.IsRecordNotFound(err) {
			return nil, common.ErrNotFound.WithDetails("Specialization not found.")
		}
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) FindByIDs(ctx context.Context, ids []uint) ([]Specialization, error) {
	var items []Specialization
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *gormRepository) FindAll(ctx context.Context) ([]Specialization, error) {
	var items []Specialization
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *gormRepository) Update(ctx context.Context, s *Specialization) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		if common.IsUniqueViolation(err) {
			return common.ErrConflict.WithDetails("Specialization with this name or slug already exists.")
		}
		return fmt.Errorf("failed to update specialization %d: %w", s.ID, err)
	}
	return nil
}

// Delete refuses to remove entries still attached to a draft or published profile.
func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inUse int64
		if err := tx.Table(ProfileJoinTable).Where("specialization_id = ?", id).Count(&inUse).Error; err != nil {
			return fmt.Errorf("failed to check specialization usage: %w", err)
		}
		if inUse > 0 {
			return common.ErrConflict.WithDetails(
				fmt.Sprintf("Cannot delete specialization: %d coach profiles still reference it.", inUse),
			)
		}

		result := tx.Delete(&Specialization{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound.WithDetails("Specialization not found or already deleted.")
		}
		return nil
	})
}

func (r *gormRepository) UpsertBySlug(ctx context.Context, items []Specialization) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "updated_at"}),
	}).Create(&items)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to upsert specializations: %w", result.Error)
	}
	return result.RowsAffected, nil
}
