package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HouseholdRepository defines data access for household account links.
type HouseholdRepository interface {
	Create(ctx context.Context, link *model.HouseholdLink) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.HouseholdLink, error)
	FindActiveSpouse(ctx context.Context, primaryID uuid.UUID) (*model.HouseholdLink, error)
	ListActiveByPrimary(ctx context.Context, primaryID uuid.UUID) ([]model.HouseholdLink, error)
	Update(ctx context.Context, link *model.HouseholdLink) error
}

type householdRepository struct {
	db *gorm.DB
}

func NewHouseholdRepository(db *gorm.DB) HouseholdRepository {
	return &householdRepository{db: db}
}

func (r *householdRepository) Create(ctx context.Context, link *model.HouseholdLink) error {
	return GetDB(ctx, r.db).Create(link).Error
}

func (r *householdRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.HouseholdLink, error) {
	var link model.HouseholdLink
	if err := GetDB(ctx, r.db).Preload("Linked").First(&link, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// FindActiveSpouse returns the active spouse link for a primary, or
// gorm.ErrRecordNotFound when none exists.
func (r *householdRepository) FindActiveSpouse(ctx context.Context, primaryID uuid.UUID) (*model.HouseholdLink, error) {
	var link model.HouseholdLink
	err := GetDB(ctx, r.db).
		Where("primary_id = ? AND relationship_type = ? AND is_active = ?",
			primaryID, model.RelationshipSpouse, true).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *householdRepository) ListActiveByPrimary(ctx context.Context, primaryID uuid.UUID) ([]model.HouseholdLink, error) {
	var links []model.HouseholdLink
	err := GetDB(ctx, r.db).
		Preload("Linked").
		Where("primary_id = ? AND is_active = ?", primaryID, true).
		Order("created_at asc").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *householdRepository) Update(ctx context.Context, link *model.HouseholdLink) error {
	return GetDB(ctx, r.db).Save(link).Error
}
