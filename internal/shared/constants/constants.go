package constants

// Context keys set by the authentication middleware once a request has been
// authenticated. Handlers and gates read these instead of re-parsing cookies.
const (
	ContextKeyUserSID        = "user_sid"
	ContextKeyAccessToken    = "access_token"
	ContextKeyRefreshTokenID = "refresh_token_id"
	ContextKeyUserRole       = "user_role"
)

// Default store timeout bounds every repository call issued while deciding a
// request, so an unavailable database degrades to a fast failure.
const StoreTimeoutSeconds = 5
