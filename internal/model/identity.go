package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity represents a registered account: profile, preferences and the
// geographic scope (district/community) the resolver gates views on.
// Deactivation is a status flag; rows are never hard-deleted.
type Identity struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FullName string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Email    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone    string    `gorm:"type:varchar(20)" json:"phone"`
	Password string    `gorm:"type:varchar(255);not null" json:"-"` // Omit password hash from JSON

	Language string `gorm:"type:varchar(10);default:'en'" json:"language"`
	Theme    string `gorm:"type:varchar(20);default:'light'" json:"theme"`

	// Auxiliary profile fields
	Address          string `gorm:"type:text" json:"address"`
	VehiclePlates    string `gorm:"type:varchar(255)" json:"vehicle_plates"` // Comma-separated registrations
	EmergencyContact string `gorm:"type:varchar(255)" json:"emergency_contact"`

	DistrictID  *uuid.UUID `gorm:"type:uuid;index" json:"district_id"`
	CommunityID *uuid.UUID `gorm:"type:uuid;index" json:"community_id"`
	District    *District  `gorm:"foreignKey:DistrictID" json:"district,omitempty"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`

	// ActingRole selects which dashboard renders for a multi-role identity.
	// Guards never consult it; permission checks always use the union of
	// active role assignments.
	ActingRole string `gorm:"type:varchar(50)" json:"acting_role"`

	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RefreshToken stores long-lived tokens allowing identities to request new
// access tokens
type RefreshToken struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	IdentityID uuid.UUID `gorm:"type:uuid;not null;index" json:"identity_id"`
	Identity   Identity  `gorm:"foreignKey:IdentityID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt  time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
