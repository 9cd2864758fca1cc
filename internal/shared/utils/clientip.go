package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/entry-inc/entry/internal/shared/errors"
)

// ClientMetadata carries the audit fields recorded on every session.
type ClientMetadata struct {
	IP        string
	UserAgent string
}

// GetClientMetadata resolves the caller's IP and user agent. Session records
// require an IP, so an unresolvable address is an error rather than a blank.
func GetClientMetadata(c *gin.Context) (ClientMetadata, error) {
	ip := c.ClientIP()
	if ip == "" {
		return ClientMetadata{}, errors.NewClientIPNotFoundError()
	}
	return ClientMetadata{
		IP:        ip,
		UserAgent: c.Request.UserAgent(),
	}, nil
}
