package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/entry-inc/entry/internal/shared/config"
)

const (
	UserIDCookie         = "userId"
	AccessTokenCookie    = "accessToken"
	RefreshTokenIDCookie = "refreshTokenId"
)

// ErrCookieTampered is returned when a signed cookie fails HMAC verification.
// Callers treat it the same as a missing cookie.
var ErrCookieTampered = fmt.Errorf("cookie signature mismatch")

// SignCookieValue appends an HMAC-SHA256 signature so the server can detect
// client-side tampering. Format: value.signature (base64url, no padding).
func SignCookieValue(value, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return value + "." + sig
}

// VerifyCookieValue strips and checks the signature produced by SignCookieValue.
func VerifyCookieValue(signed, secret string) (string, error) {
	idx := strings.LastIndex(signed, ".")
	if idx <= 0 || idx == len(signed)-1 {
		return "", ErrCookieTampered
	}
	value := signed[:idx]
	gotSig, err := base64.RawURLEncoding.DecodeString(signed[idx+1:])
	if err != nil {
		return "", ErrCookieTampered
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	if !hmac.Equal(gotSig, mac.Sum(nil)) {
		return "", ErrCookieTampered
	}
	return value, nil
}

// SetSessionCookies writes the full cookie triple after a login or rotation:
// the plain userId cookie plus the two signed HttpOnly credential cookies.
func SetSessionCookies(c *gin.Context, cookieConfig config.CookieConfig, ownerID, accessToken, refreshTokenID string, accessMaxAge, refreshMaxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)

	c.SetCookie(
		UserIDCookie,
		ownerID,
		refreshMaxAge,
		cookieConfig.Path,
		cookieConfig.Domain,
		cookieConfig.Secure,
		false, // readable by the client for UI state
	)

	c.SetCookie(
		AccessTokenCookie,
		SignCookieValue(accessToken, cookieConfig.Secret),
		accessMaxAge,
		cookieConfig.Path,
		cookieConfig.Domain,
		cookieConfig.Secure,
		true, // HttpOnly
	)

	c.SetCookie(
		RefreshTokenIDCookie,
		SignCookieValue(refreshTokenID, cookieConfig.Secret),
		refreshMaxAge,
		cookieConfig.Path,
		cookieConfig.Domain,
		cookieConfig.Secure,
		true, // HttpOnly
	)
}

// SetUserIDCookie re-issues only the userId cookie. Used to self-heal a
// partially-set cookie state when the credential cookies are still valid.
func SetUserIDCookie(c *gin.Context, cookieConfig config.CookieConfig, ownerID string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)

	c.SetCookie(
		UserIDCookie,
		ownerID,
		maxAge,
		cookieConfig.Path,
		cookieConfig.Domain,
		cookieConfig.Secure,
		false,
	)
}

// ClearSessionCookies removes all three session cookies
func ClearSessionCookies(c *gin.Context, cookieConfig config.CookieConfig) {
	c.SetSameSite(http.SameSiteStrictMode)

	for _, name := range []string{UserIDCookie, AccessTokenCookie, RefreshTokenIDCookie} {
		httpOnly := name != UserIDCookie
		c.SetCookie(
			name,
			"",
			-1,
			cookieConfig.Path,
			cookieConfig.Domain,
			cookieConfig.Secure,
			httpOnly,
		)
	}
}

// GetSignedCookie reads a cookie and verifies its signature. A missing cookie
// returns ("", nil); a present but tampered cookie returns ErrCookieTampered.
func GetSignedCookie(c *gin.Context, cookieConfig config.CookieConfig, name string) (string, error) {
	signed, err := c.Cookie(name)
	if err != nil || signed == "" {
		return "", nil
	}
	return VerifyCookieValue(signed, cookieConfig.Secret)
}

// GetPlainCookie reads an unsigned cookie, returning "" when absent.
func GetPlainCookie(c *gin.Context, name string) string {
	value, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return value
}
