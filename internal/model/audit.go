package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionAssignRole         = "ASSIGN_ROLE"
	ActionDeactivateRole     = "DEACTIVATE_ROLE"
	ActionSetModuleFlag      = "SET_MODULE_FLAG"
	ActionSetGuestPermission = "SET_GUEST_PERMISSION"

	// Household delegation actions
	ActionCreateHouseholdLink     = "CREATE_HOUSEHOLD_LINK"
	ActionUpdateHouseholdGrants   = "UPDATE_HOUSEHOLD_GRANTS"
	ActionDeactivateHouseholdLink = "DEACTIVATE_HOUSEHOLD_LINK"
)

// AuditLog tracks Who, What, and When for permission-affecting changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	IdentityID *uuid.UUID `gorm:"type:uuid;index" json:"identity_id"` // Nullable gracefully if automated
	Identity   *Identity  `gorm:"foreignKey:IdentityID" json:"identity"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/module name)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the change
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
