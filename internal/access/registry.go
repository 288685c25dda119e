package access

// Module name constants. Navigation and feature gating refer to modules by
// these names; community feature flags and guest permissions key on them too.
const (
	ModuleMarketplace       = "marketplace"
	ModuleBookings          = "bookings"
	ModuleFacilities        = "facilities"
	ModuleAnnouncements     = "announcements"
	ModuleDiscussions       = "discussions"
	ModuleComplaints        = "complaints"
	ModuleEvents            = "events"
	ModuleDirectory         = "directory"
	ModuleCCTV              = "cctv"
	ModuleVisitorManagement = "visitor_management"
	ModuleSecurity          = "security"
	ModuleMaintenance       = "maintenance"
	ModuleAssets            = "assets"
	ModuleServiceRequests   = "service_requests"
	ModuleAdministration    = "administration"
)

// ModuleInfo describes one feature area of the platform.
type ModuleInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	// CommunityControlled modules are toggled per community by an admin;
	// the rest are only ever enabled by role grants.
	CommunityControlled bool `json:"community_controlled"`
}

// Registry is the static module catalog.
var Registry = []ModuleInfo{
	{Name: ModuleMarketplace, DisplayName: "Marketplace", Category: "community", CommunityControlled: true},
	{Name: ModuleBookings, DisplayName: "Facility Bookings", Category: "facilities", CommunityControlled: true},
	{Name: ModuleFacilities, DisplayName: "Facilities", Category: "facilities", CommunityControlled: true},
	{Name: ModuleAnnouncements, DisplayName: "Announcements", Category: "community", CommunityControlled: true},
	{Name: ModuleDiscussions, DisplayName: "Discussions", Category: "community", CommunityControlled: true},
	{Name: ModuleComplaints, DisplayName: "Complaints", Category: "community", CommunityControlled: true},
	{Name: ModuleEvents, DisplayName: "Events", Category: "community", CommunityControlled: true},
	{Name: ModuleDirectory, DisplayName: "Resident Directory", Category: "community", CommunityControlled: true},
	{Name: ModuleServiceRequests, DisplayName: "Service Requests", Category: "services", CommunityControlled: true},
	{Name: ModuleCCTV, DisplayName: "CCTV", Category: "security", CommunityControlled: false},
	{Name: ModuleVisitorManagement, DisplayName: "Visitor Management", Category: "security", CommunityControlled: false},
	{Name: ModuleSecurity, DisplayName: "Security", Category: "security", CommunityControlled: false},
	{Name: ModuleMaintenance, DisplayName: "Maintenance", Category: "facilities", CommunityControlled: false},
	{Name: ModuleAssets, DisplayName: "Asset Management", Category: "facilities", CommunityControlled: false},
	{Name: ModuleAdministration, DisplayName: "Administration", Category: "admin", CommunityControlled: false},
}

// LookupModule returns the registry entry for a module name.
func LookupModule(name string) (ModuleInfo, bool) {
	for _, m := range Registry {
		if m.Name == name {
			return m, true
		}
	}
	return ModuleInfo{}, false
}
