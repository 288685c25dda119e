package repository

import (
	"backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// IdentityRepository defines the interface for data access of Identity entities
type IdentityRepository interface {
	Create(ctx context.Context, identity *model.Identity) error
	GetByID(ctx context.Context, id string) (*model.Identity, error)
	GetByEmail(ctx context.Context, email string) (*model.Identity, error)
	List(ctx context.Context, page, limit int) ([]model.Identity, int64, error)
	Update(ctx context.Context, identity *model.Identity) error
	Deactivate(ctx context.Context, id string) error
}

type identityRepository struct {
	db *gorm.DB
}

// NewIdentityRepository returns a new instance of IdentityRepository
func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) Create(ctx context.Context, identity *model.Identity) error {
	return GetDB(ctx, r.db).Create(identity).Error
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*model.Identity, error) {
	var identity model.Identity
	if err := GetDB(ctx, r.db).Preload("Community").Preload("District").First(&identity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*model.Identity, error) {
	var identity model.Identity
	if err := GetDB(ctx, r.db).First(&identity, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *identityRepository) List(ctx context.Context, page, limit int) ([]model.Identity, int64, error) {
	var identities []model.Identity
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Identity{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&identities).Error; err != nil {
		return nil, 0, err
	}

	return identities, total, nil
}

func (r *identityRepository) Update(ctx context.Context, identity *model.Identity) error {
	return GetDB(ctx, r.db).Save(identity).Error
}

// Deactivate flips the status flag; identity rows are never hard-deleted.
func (r *identityRepository) Deactivate(ctx context.Context, id string) error {
	return GetDB(ctx, r.db).Model(&model.Identity{}).Where("id = ?", id).Update("is_active", false).Error
}
