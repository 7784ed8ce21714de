package store

import (
	"github.com/jrsteele09/go-hrms-client/tenants"
	"github.com/jrsteele09/go-hrms-client/users"
)

// Session is the access/refresh token pair. The two tokens are always
// written and cleared together; no caller ever observes one without the
// other.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Store is the durable key/value boundary holding the credential pair and
// the cached user/tenant snapshots. Implementations never fail outward:
// missing or malformed state reads back as absent (nil), and writes that
// cannot be persisted are dropped rather than surfaced. No implementation
// performs network access.
type Store interface {
	// Read returns the current token pair, or nil when absent.
	Read() *Session
	// Write replaces both tokens atomically from the caller's point of view.
	Write(session Session)
	// Clear removes the tokens and the cached user/tenant snapshots.
	Clear()

	CachedUser() *users.User
	WriteCachedUser(user *users.User)
	CachedTenant() *tenants.Tenant
	WriteCachedTenant(tenant *tenants.Tenant)
}
