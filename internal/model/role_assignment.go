package model

import (
	"time"

	"github.com/google/uuid"
)

// RoleAssignment grants one role tag to one identity. An identity may hold
// many simultaneous assignments; the resolver unions permissions across all
// of them. Inactive or expired assignments never contribute to any access
// decision. The (identity, role) pair is the conflict key: re-assigning an
// existing role reactivates the row instead of duplicating it.
type RoleAssignment struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	IdentityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_identity_role;index" json:"identity_id"`
	Identity   *Identity `gorm:"foreignKey:IdentityID" json:"identity,omitempty"`
	Role       string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_identity_role" json:"role"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`

	AssignedBy *uuid.UUID `gorm:"type:uuid" json:"assigned_by"`
	Assigner   *Identity  `gorm:"foreignKey:AssignedBy" json:"assigner,omitempty"`
	Notes      string     `gorm:"type:text" json:"notes"`

	// ExpiresAt supports guest/tenant-style temporary access. A past expiry
	// is treated the same as is_active=false.
	ExpiresAt *time.Time `json:"expires_at"`

	// DistrictID optionally scopes the assignment to a district, which also
	// satisfies district scope checks below coordinator level.
	DistrictID *uuid.UUID `gorm:"type:uuid" json:"district_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
