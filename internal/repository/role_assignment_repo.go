package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoleAssignmentRepository defines data access for role assignments. Writes
// use the (identity_id, role) conflict key so re-assigning a role an
// identity already holds reactivates the existing row.
type RoleAssignmentRepository interface {
	Upsert(ctx context.Context, assignment *model.RoleAssignment) error
	Deactivate(ctx context.Context, identityID uuid.UUID, role string) error
	ListActiveByIdentity(ctx context.Context, identityID uuid.UUID) ([]model.RoleAssignment, error)
	ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]model.RoleAssignment, error)
}

type roleAssignmentRepository struct {
	db *gorm.DB
}

func NewRoleAssignmentRepository(db *gorm.DB) RoleAssignmentRepository {
	return &roleAssignmentRepository{db: db}
}

func (r *roleAssignmentRepository) Upsert(ctx context.Context, assignment *model.RoleAssignment) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "identity_id"}, {Name: "role"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_active", "assigned_by", "notes", "expires_at", "district_id", "updated_at",
		}),
	}).Create(assignment).Error
}

func (r *roleAssignmentRepository) Deactivate(ctx context.Context, identityID uuid.UUID, role string) error {
	return GetDB(ctx, r.db).
		Model(&model.RoleAssignment{}).
		Where("identity_id = ? AND role = ?", identityID, role).
		Update("is_active", false).Error
}

// ListActiveByIdentity returns only assignments that may contribute to
// access decisions: active and not past their expiry.
func (r *roleAssignmentRepository) ListActiveByIdentity(ctx context.Context, identityID uuid.UUID) ([]model.RoleAssignment, error) {
	var assignments []model.RoleAssignment
	err := GetDB(ctx, r.db).
		Where("identity_id = ? AND is_active = ?", identityID, true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *roleAssignmentRepository) ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]model.RoleAssignment, error) {
	var assignments []model.RoleAssignment
	err := GetDB(ctx, r.db).
		Preload("Assigner").
		Where("identity_id = ?", identityID).
		Order("created_at asc").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}
