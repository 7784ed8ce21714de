package config

// Auth API endpoint paths consumed by the client. The backend versions its
// API under /api/v1 and terminates every path with a trailing slash.
const (
	LoginEndpoint          = "/api/v1/auth/login/"
	LogoutEndpoint         = "/api/v1/auth/logout/"
	RefreshEndpoint        = "/api/v1/auth/refresh/"
	ProfileEndpoint        = "/api/v1/auth/profile/"
	ChangePasswordEndpoint = "/api/v1/auth/change-password/"
)
