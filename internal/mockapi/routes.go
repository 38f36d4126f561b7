package mockapi

func (s *Server) initRoutes() {
	// Credential endpoints
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthSwitch, ChainMiddleware(s.SwitchHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Business API
	s.RegisterRouteFunc("GET "+RouteAPIWhoAmI, ChainMiddleware(s.WhoAmIHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("GET "+RouteAPICompanies, ChainMiddleware(s.CompaniesHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("GET "+RouteAPIEmployees, ChainMiddleware(s.ListEmployeesHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireTenant())...))
	s.RegisterRouteFunc("POST "+RouteAPIEmployees, ChainMiddleware(s.CreateEmployeeHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireTenant())...))

	s.RegisterRouteFunc("OPTIONS /", ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
}
