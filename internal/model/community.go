package model

import (
	"time"

	"github.com/google/uuid"
)

// District is the administrative tier above communities.
type District struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Code      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Community is a single residential estate within a district.
type Community struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	DistrictID uuid.UUID `gorm:"type:uuid;not null;index" json:"district_id"`
	District   *District `gorm:"foreignKey:DistrictID" json:"district,omitempty"`
	Address    string    `gorm:"type:text" json:"address"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ModuleFlag toggles a community-controlled module per community. Absence of
// a row for a (community, module) pair means the module is disabled.
type ModuleFlag struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CommunityID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_community_module" json:"community_id"`
	ModuleName  string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_community_module" json:"module_name"`
	IsEnabled   bool       `gorm:"default:false" json:"is_enabled"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// GuestPermission further restricts guest-rooted identities per community.
// Only consulted when the evaluating role set contains guest; a missing row
// means the feature is disabled for guests.
type GuestPermission struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CommunityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_community_guest_feature" json:"community_id"`
	FeatureName string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_community_guest_feature" json:"feature_name"`
	IsEnabled   bool      `gorm:"default:false" json:"is_enabled"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
