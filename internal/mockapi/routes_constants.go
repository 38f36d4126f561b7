package mockapi

// Route path constants
const (
	// Credential routes
	RouteAuthLogin   = "/auth/login"
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthSwitch  = "/auth/switch"

	// API routes
	RouteAPIWhoAmI    = "/api/whoami"
	RouteAPIEmployees = "/api/employees"
	RouteAPICompanies = "/api/companies"
)
