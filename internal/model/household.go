package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RelationshipSpouse = "spouse"
	RelationshipTenant = "tenant"
)

// HouseholdPermissions are the per-feature grants a primary extends to a
// linked account. They gate a fixed, small set of community-facing features
// for resident-tier linked identities; everything else is governed by the
// linked identity's own role assignments.
type HouseholdPermissions struct {
	Marketplace   bool `gorm:"default:false" json:"marketplace"`
	Bookings      bool `gorm:"default:false" json:"bookings"`
	Announcements bool `gorm:"default:false" json:"announcements"`
	Complaints    bool `gorm:"default:false" json:"complaints"`
	Discussions   bool `gorm:"default:false" json:"discussions"`
}

// DefaultTenantPermissions is the base grant set applied when a tenant
// account is provisioned, before caller overrides are merged.
func DefaultTenantPermissions() HouseholdPermissions {
	return HouseholdPermissions{
		Marketplace:   false,
		Bookings:      true,
		Announcements: true,
		Complaints:    true,
		Discussions:   false,
	}
}

// DefaultSpousePermissions grants a spouse every household-gated feature.
func DefaultSpousePermissions() HouseholdPermissions {
	return HouseholdPermissions{
		Marketplace:   true,
		Bookings:      true,
		Announcements: true,
		Complaints:    true,
		Discussions:   true,
	}
}

// HouseholdLink connects a primary identity to a spouse or tenant account.
// At most one active spouse link per primary; any number of tenants. The
// linked identity copies the primary's community/district at creation time
// and does not follow later moves.
type HouseholdLink struct {
	ID               uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PrimaryID        uuid.UUID            `gorm:"type:uuid;not null;index" json:"primary_id"`
	Primary          *Identity            `gorm:"foreignKey:PrimaryID" json:"primary,omitempty"`
	LinkedID         uuid.UUID            `gorm:"type:uuid;not null;index" json:"linked_id"`
	Linked           *Identity            `gorm:"foreignKey:LinkedID" json:"linked,omitempty"`
	RelationshipType string               `gorm:"type:varchar(20);not null" json:"relationship_type"`
	Permissions      HouseholdPermissions `gorm:"embedded;embeddedPrefix:perm_" json:"permissions"`
	IsActive         bool                 `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}
