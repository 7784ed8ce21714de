package routes

import "github.com/jrsteele09/go-hrms-client/users"

// Destination is a navigation target within the application.
type Destination string

const (
	Home           Destination = "/"
	Login          Destination = "/auth/login"
	Register       Destination = "/auth/register"
	ForgotPassword Destination = "/auth/forgot-password"

	// Role landing dashboards
	SuperAdminDashboard   Destination = "/super-admin"
	CompanyAdminDashboard Destination = "/company-admin"
	HRDashboard           Destination = "/hr"
	ManagerDashboard      Destination = "/manager"
	EmployeeDashboard     Destination = "/employee"
)

// landingOrder fixes the precedence of role landing pages. A user holding
// several roles always lands on the page of the highest-precedence role.
var landingOrder = []struct {
	role users.RoleType
	dest Destination
}{
	{users.RoleSuperAdmin, SuperAdminDashboard},
	{users.RoleCompanyAdmin, CompanyAdminDashboard},
	{users.RoleHRAdmin, HRDashboard},
	{users.RoleManager, ManagerDashboard},
}

// ForRoles maps a role set to its landing destination. The function is pure:
// the same role set always yields the same destination. An empty or
// unrecognised role set lands on the employee dashboard.
func ForRoles(roles []users.RoleType) Destination {
	held := make(map[users.RoleType]struct{}, len(roles))
	for _, r := range roles {
		held[r] = struct{}{}
	}
	for _, entry := range landingOrder {
		if _, ok := held[entry.role]; ok {
			return entry.dest
		}
	}
	return EmployeeDashboard
}
