package common

const (
	// AuthorizationHeaderName carries the bearer token on HTTP requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the JWT in the Authorization header.
	BearerPrefix = "Bearer "

	// APIPrefix is the path every persistence endpoint lives under.
	APIPrefix = "/api"
)
