package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommunityRepository defines data access for communities and their
// per-community flag rows (module flags and guest permissions).
type CommunityRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Community, error)
	ListModuleFlags(ctx context.Context, communityID uuid.UUID) ([]model.ModuleFlag, error)
	UpsertModuleFlag(ctx context.Context, flag *model.ModuleFlag) error
	ListGuestPermissions(ctx context.Context, communityID uuid.UUID) ([]model.GuestPermission, error)
	UpsertGuestPermission(ctx context.Context, perm *model.GuestPermission) error
}

type communityRepository struct {
	db *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Community, error) {
	var community model.Community
	if err := GetDB(ctx, r.db).Preload("District").First(&community, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) ListModuleFlags(ctx context.Context, communityID uuid.UUID) ([]model.ModuleFlag, error) {
	var flags []model.ModuleFlag
	if err := GetDB(ctx, r.db).Where("community_id = ?", communityID).Order("module_name asc").Find(&flags).Error; err != nil {
		return nil, err
	}
	return flags, nil
}

func (r *communityRepository) UpsertModuleFlag(ctx context.Context, flag *model.ModuleFlag) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}, {Name: "module_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_enabled", "created_by", "updated_at"}),
	}).Create(flag).Error
}

func (r *communityRepository) ListGuestPermissions(ctx context.Context, communityID uuid.UUID) ([]model.GuestPermission, error) {
	var perms []model.GuestPermission
	if err := GetDB(ctx, r.db).Where("community_id = ?", communityID).Order("feature_name asc").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *communityRepository) UpsertGuestPermission(ctx context.Context, perm *model.GuestPermission) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}, {Name: "feature_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_enabled", "updated_at"}),
	}).Create(perm).Error
}
