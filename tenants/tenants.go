package tenants

// Tenant is the cached snapshot of the organisation a user belongs to.
// Platform-level accounts (super admins) carry no tenant at all.
type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
