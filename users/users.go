package users

import "strings"

// RoleType represents a permission-class label attached to a user.
// Roles drive the landing destination after login (see the routes package).
type RoleType string

const (
	RoleSuperAdmin   RoleType = "SUPER_ADMIN"   // Platform-level administrator across all tenants
	RoleCompanyAdmin RoleType = "COMPANY_ADMIN" // Administrator of a single tenant
	RoleHRAdmin      RoleType = "HR_ADMIN"      // HR administrator within a tenant
	RoleManager      RoleType = "MANAGER"       // Line manager
	RoleEmployee     RoleType = "EMPLOYEE"      // Regular employee
)

// User is the profile snapshot returned by the backend. It is replaced
// wholesale on login, profile refresh, and profile update; it is never
// mutated field by field.
type User struct {
	ID             string     `json:"id,omitempty"`              // Unique identifier for the user
	Email          string     `json:"email,omitempty"`           // User's email address
	FirstName      string     `json:"first_name,omitempty"`      // First name of the user
	LastName       string     `json:"last_name,omitempty"`       // Last name of the user
	FullName       string     `json:"full_name,omitempty"`       // Server-computed display name
	Phone          string     `json:"phone,omitempty"`           // Contact phone number
	ProfilePicture string     `json:"profile_picture,omitempty"` // URL of the profile picture
	IsActive       bool       `json:"is_active,omitempty"`       // Whether the account is active
	DateJoined     string     `json:"date_joined,omitempty"`     // When the user registered (backend formatted)
	LastLogin      string     `json:"last_login,omitempty"`      // Last time the user logged in (backend formatted)
	TenantName     string     `json:"tenant_name,omitempty"`     // Display name of the user's tenant, if any
	Roles          []RoleType `json:"roles,omitempty"`           // Roles held by the user
}

// DisplayName returns the server-computed full name, falling back to
// first/last name and finally the email address.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return u.Email
}

// HasRole checks if the user holds a specific role
func (u *User) HasRole(role RoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if the user holds any of the given roles
func (u *User) HasAnyRole(roles ...RoleType) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}
