package errors

import (
	"net/http"
)

// Authentication and session lifecycle error types
const (
	ErrorTypeRouteProtected            ErrorType = "route_protected"
	ErrorTypeAccountInactive           ErrorType = "account_inactive"
	ErrorTypeEmailNotVerified          ErrorType = "email_not_verified"
	ErrorTypeEmailAlreadyVerified      ErrorType = "email_already_verified"
	ErrorTypeUserAlreadyLoggedIn       ErrorType = "user_already_logged_in"
	ErrorTypeUserAlreadyLoggedOut      ErrorType = "user_already_logged_out"
	ErrorTypeUserNotFound              ErrorType = "user_not_found"
	ErrorTypeRefreshTokenRevoked       ErrorType = "refresh_token_revoked"
	ErrorTypeRefreshTokenNotFound      ErrorType = "refresh_token_not_found"
	ErrorTypeRefreshTokenCurrentRevoke ErrorType = "refresh_token_current_revoke"
	ErrorTypePasswordWrong             ErrorType = "password_wrong"
	ErrorTypePasswordMismatch          ErrorType = "password_mismatch"
	ErrorTypeClientIPNotFound          ErrorType = "client_ip_not_found"
	ErrorTypeHashVerification          ErrorType = "hash_verification_failed"
)

// AuthError represents authentication-specific errors with enhanced security context
type AuthError struct {
	*AppError
	// ShouldLog determines if this error should be logged
	// Some auth errors (like a wrong password) are expected and don't need error-level logging
	ShouldLog bool
	// SecurityEvent indicates if this should be tracked as a security event
	SecurityEvent bool
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return e.AppError.Error()
}

// Unwrap allows errors.Is and errors.As to work correctly
func (e *AuthError) Unwrap() error {
	return e.AppError
}

// NewRouteProtectedError signals that no usable credential accompanied the
// request at all.
func NewRouteProtectedError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeRouteProtected,
			Message: "This route is protected. Please login first",
			Code:    http.StatusUnauthorized,
		},
		ShouldLog:     false, // Expected for anonymous callers
		SecurityEvent: false,
	}
}

// NewUnauthorizedRoleError signals an authenticated caller whose role or
// permissions do not cover the requested operation.
func NewUnauthorizedRoleError(details ...string) *AuthError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeForbidden,
			Message: "You are not authorized to perform this action",
			Code:    http.StatusForbidden,
			Details: detail,
		},
		ShouldLog:     true, // Privilege probing is worth noticing
		SecurityEvent: true,
	}
}

// NewAccountInactiveError creates an error for deactivated accounts
func NewAccountInactiveError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeAccountInactive,
			Message: "Your account is inactive. Please contact support",
			Code:    http.StatusForbidden,
		},
		ShouldLog:     false, // Expected state
		SecurityEvent: false,
	}
}

// NewEmailNotVerifiedError creates an error for unverified email addresses
func NewEmailNotVerifiedError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeEmailNotVerified,
			Message: "Please verify your email address first",
			Code:    http.StatusUnauthorized,
		},
		ShouldLog:     false,
		SecurityEvent: false,
	}
}

// NewEmailAlreadyVerifiedError creates an error for repeated verification attempts
func NewEmailAlreadyVerifiedError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeEmailAlreadyVerified,
			Message: "Your email address is already verified",
			Code:    http.StatusBadRequest,
		},
		ShouldLog:     false,
		SecurityEvent: false,
	}
}

// NewUserAlreadyLoggedInError rejects a login attempt from a caller that
// already holds a live session.
func NewUserAlreadyLoggedInError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeUserAlreadyLoggedIn,
			Message: "You are already logged in",
			Code:    http.StatusBadRequest,
		},
		ShouldLog:     false,
		SecurityEvent: false,
	}
}

// NewUserAlreadyLoggedOutError rejects a logout attempt with no live session.
func NewUserAlreadyLoggedOutError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeUserAlreadyLoggedOut,
			Message: "You are already logged out",
			Code:    http.StatusBadRequest,
		},
		ShouldLog:     false,
		SecurityEvent: false,
	}
}

// NewRefreshTokenRevokedError signals that the caller presented a refresh
// token whose record has already been consumed or revoked.
func NewRefreshTokenRevokedError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeRefreshTokenRevoked,
			Message: "Your session has been revoked. Please login again",
			Code:    http.StatusBadRequest,
		},
		ShouldLog:     true, // Replay of a consumed token may indicate theft
		SecurityEvent: true,
	}
}

// NewRefreshTokenNotFoundError signals a refresh token id with no backing record
func NewRefreshTokenNotFoundError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeRefreshTokenNotFound,
			Message: "Session not found",
			Code:    http.StatusNotFound,
		},
		ShouldLog:     false,
		SecurityEvent: false,
	}
}

// NewRefreshTokenCurrentRevokeError rejects revoking the session the caller
// is currently using; that path is a logout, not a revoke.
func NewRefreshTokenCurrentRevokeError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeRefreshTokenCurrentRevoke,
			Message: "You cannot revoke your current session. Use logout instead",
			Code:    http.StatusBadRequest,
		},
		ShouldLog:     false,
		SecurityEvent: false,
	}
}

// NewUserNotFoundError signals a lookup for a principal that does not exist
func NewUserNotFoundError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeUserNotFound,
			Message: "User not found",
			Code:    http.StatusNotFound,
		},
		ShouldLog:     false,
		SecurityEvent: true, // Track for account enumeration probing
	}
}

// NewPasswordWrongError creates an error for a failed password check
func NewPasswordWrongError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypePasswordWrong,
			Message: "Wrong password provided",
			Code:    http.StatusUnauthorized,
		},
		ShouldLog:     false, // Expected error, don't clutter logs
		SecurityEvent: true,  // Track for brute force detection
	}
}

// NewPasswordMismatchError creates an error for non-matching password pairs
func NewPasswordMismatchError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypePasswordMismatch,
			Message: "Passwords do not match",
			Code:    http.StatusBadRequest,
		},
		ShouldLog:     false,
		SecurityEvent: false,
	}
}

// NewClientIPNotFoundError signals that no client IP could be resolved.
// Audit metadata is mandatory when a session record is created.
func NewClientIPNotFoundError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeClientIPNotFound,
			Message: "Could not determine client address",
			Code:    http.StatusBadRequest,
		},
		ShouldLog:     true,
		SecurityEvent: false,
	}
}

// NewHashVerificationError wraps internal failures of the credential verifier
func NewHashVerificationError(details ...string) *AuthError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeHashVerification,
			Message: "Credential verification failed",
			Code:    http.StatusInternalServerError,
			Details: detail,
		},
		ShouldLog:     true,
		SecurityEvent: true,
	}
}
