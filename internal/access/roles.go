package access

// Role is a fixed-vocabulary tag assigned to an identity, granting a bundle
// of permissions. Tags outside this vocabulary never contribute to access.
type Role string

const (
	RoleGuest               Role = "guest"
	RoleResident            Role = "resident"
	RoleSecurityOfficer     Role = "security_officer"
	RoleFacilityManager     Role = "facility_manager"
	RoleMaintenanceStaff    Role = "maintenance_staff"
	RoleCommunityLeader     Role = "community_leader"
	RoleServiceProvider     Role = "service_provider"
	RoleCommunityAdmin      Role = "community_admin"
	RoleDistrictCoordinator Role = "district_coordinator"
	RoleStateAdmin          Role = "state_admin"
	RoleStateServiceManager Role = "state_service_manager"
)

// Function is a functional area of the platform gated independently of
// permission levels.
type Function string

const (
	FunctionSecurity       Function = "security"
	FunctionFacilities     Function = "facilities"
	FunctionServices       Function = "services"
	FunctionAdministration Function = "administration"
	FunctionMaintenance    Function = "maintenance"
	FunctionCommunity      Function = "community"
)

// Scope is the geographic/administrative breadth of a view.
type Scope string

const (
	ScopeCommunity Scope = "community"
	ScopeDistrict  Scope = "district"
	ScopeState     Scope = "state"
)

// Permission levels. facility_manager/maintenance_staff tie at 4 and
// community_leader/service_provider tie at 5; the ordering is intentionally
// flattened, not a strict hierarchy.
const (
	LevelGuest               = 1
	LevelResident            = 2
	LevelSecurityOfficer     = 3
	LevelFacilityManager     = 4
	LevelCommunityLeader     = 5
	LevelCommunityAdmin      = 6
	LevelDistrictCoordinator = 7
	LevelStateAdmin          = 8
)

// Grant bundles everything a single role confers: its permission level, the
// functional areas it may operate in, and the modules it enables
// unconditionally (regardless of community feature flags).
type Grant struct {
	Level     int
	Functions []Function
	Modules   []string
}

// grants is the role table. Kept as data rather than control flow so the
// mapping is testable in isolation.
var grants = map[Role]Grant{
	RoleGuest: {
		Level: LevelGuest,
	},
	RoleResident: {
		Level:     LevelResident,
		Functions: []Function{FunctionCommunity},
	},
	RoleSecurityOfficer: {
		Level:     LevelSecurityOfficer,
		Functions: []Function{FunctionSecurity},
		Modules:   []string{ModuleCCTV, ModuleVisitorManagement, ModuleSecurity},
	},
	RoleFacilityManager: {
		Level:     LevelFacilityManager,
		Functions: []Function{FunctionFacilities, FunctionMaintenance},
		Modules:   []string{ModuleFacilities, ModuleBookings, ModuleMaintenance, ModuleAssets},
	},
	RoleMaintenanceStaff: {
		Level:     LevelFacilityManager,
		Functions: []Function{FunctionMaintenance},
		Modules:   []string{ModuleMaintenance, ModuleComplaints},
	},
	RoleCommunityLeader: {
		Level:     LevelCommunityLeader,
		Functions: []Function{FunctionCommunity},
		Modules:   []string{ModuleAnnouncements, ModuleDiscussions, ModuleEvents},
	},
	RoleServiceProvider: {
		Level:     LevelCommunityLeader,
		Functions: []Function{FunctionServices},
		Modules:   []string{ModuleServiceRequests},
	},
	RoleCommunityAdmin: {
		Level: LevelCommunityAdmin,
		Functions: []Function{
			FunctionAdministration, FunctionCommunity, FunctionServices,
			FunctionFacilities, FunctionSecurity,
		},
		Modules: []string{ModuleAdministration},
	},
	RoleDistrictCoordinator: {
		Level:     LevelDistrictCoordinator,
		Functions: []Function{FunctionAdministration, FunctionCommunity},
		Modules:   []string{ModuleAdministration},
	},
	RoleStateAdmin: {
		Level: LevelStateAdmin,
		Functions: []Function{
			FunctionAdministration, FunctionCommunity, FunctionServices,
			FunctionFacilities, FunctionSecurity, FunctionMaintenance,
		},
		Modules: []string{ModuleAdministration},
	},
	RoleStateServiceManager: {
		Level:     LevelStateAdmin,
		Functions: []Function{FunctionServices, FunctionAdministration},
		Modules:   []string{ModuleAdministration, ModuleServiceRequests},
	},
}

// Valid reports whether tag is a known role.
func Valid(tag Role) bool {
	_, ok := grants[tag]
	return ok
}

// Level returns the permission level of a role, or 0 for unknown tags so
// they never satisfy any level check.
func Level(tag Role) int {
	return grants[tag].Level
}

// GrantFor returns the full grant for a role. Unknown tags get a zero grant.
func GrantFor(tag Role) Grant {
	return grants[tag]
}

// AllRoles lists the role vocabulary in ascending level order.
func AllRoles() []Role {
	return []Role{
		RoleGuest, RoleResident, RoleSecurityOfficer,
		RoleFacilityManager, RoleMaintenanceStaff,
		RoleCommunityLeader, RoleServiceProvider,
		RoleCommunityAdmin, RoleDistrictCoordinator,
		RoleStateAdmin, RoleStateServiceManager,
	}
}
