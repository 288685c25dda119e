package access

import "github.com/google/uuid"

// Snapshot is an immutable view of everything the resolver needs for one
// identity: its active roles, geographic scope, and the community's feature
// flag state. All checks are pure set/table lookups over this view and every
// missing input resolves to deny.
type Snapshot struct {
	IdentityID  uuid.UUID
	Roles       []Role
	CommunityID *uuid.UUID
	DistrictID  *uuid.UUID
	// HasDistrictAssignment is true when any active role assignment is
	// explicitly scoped to a district, independent of role level.
	HasDistrictAssignment bool
	// ModuleFlags holds the community-controlled flag rows. A missing key
	// means the module is disabled.
	ModuleFlags map[string]bool
	// GuestPermissions is the per-community overlay consulted only when the
	// role set contains guest. A missing key means the feature is disabled
	// for guests.
	GuestPermissions map[string]bool
}

// HasRole reports set membership over the active role set.
func (s Snapshot) HasRole(tag Role) bool {
	for _, r := range s.Roles {
		if r == tag {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether any of the given tags is held.
func (s Snapshot) HasAnyRole(tags ...Role) bool {
	for _, t := range tags {
		if s.HasRole(t) {
			return true
		}
	}
	return false
}

// MaxLevel returns the highest level across all active roles, 0 when none.
func (s Snapshot) MaxLevel() int {
	max := 0
	for _, r := range s.Roles {
		if lvl := Level(r); lvl > max {
			max = lvl
		}
	}
	return max
}

// CanAccessLevel reports whether any active role reaches the required level.
// The permission union covers all active roles; the acting role chosen for
// dashboard display never narrows it.
func (s Snapshot) CanAccessLevel(required int) bool {
	return s.MaxLevel() >= required
}

// CanAccessFunction reports whether the union of the role set's function
// grants contains fn.
func (s Snapshot) CanAccessFunction(fn Function) bool {
	for _, r := range s.Roles {
		for _, f := range GrantFor(r).Functions {
			if f == fn {
				return true
			}
		}
	}
	return false
}

// CanAccessScope gates community/district/state views. Community needs any
// role; district needs district-coordinator level or an explicit district
// assignment; state needs a state-tier role.
func (s Snapshot) CanAccessScope(scope Scope) bool {
	switch scope {
	case ScopeCommunity:
		return len(s.Roles) > 0
	case ScopeDistrict:
		return s.MaxLevel() >= LevelDistrictCoordinator || s.HasDistrictAssignment
	case ScopeState:
		return s.HasAnyRole(RoleStateAdmin, RoleStateServiceManager)
	default:
		return false
	}
}

// IsModuleEnabled resolves module visibility:
//
//  1. A module in any active role's unconditional grant set is enabled
//     regardless of community flags. The guest overlay does not apply here:
//     it is an overlay on community-controlled features only (deliberate
//     resolution of a guest who also holds a granting role).
//  2. Otherwise the community flag row decides; a missing row is disabled.
//  3. If the role set includes guest, the flag result is AND-ed with the
//     guest permission for the feature, which also defaults to disabled.
func (s Snapshot) IsModuleEnabled(module string) bool {
	for _, r := range s.Roles {
		for _, m := range GrantFor(r).Modules {
			if m == module {
				return true
			}
		}
	}

	enabled := s.ModuleFlags[module]
	if s.HasRole(RoleGuest) {
		enabled = enabled && s.GuestPermissions[module]
	}
	return enabled
}

// EnabledModules lists every registry module visible to this identity.
func (s Snapshot) EnabledModules() []string {
	out := make([]string, 0, len(Registry))
	for _, m := range Registry {
		if s.IsModuleEnabled(m.Name) {
			out = append(out, m.Name)
		}
	}
	return out
}
