package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userIDKey    = "user_id"
	UserIDHeader = "X-User-ID"

	// Requests without an identity header act as the shared demo user,
	// matching the upstream gateway's behavior in development.
	demoUser = "demo-user"
)

// Identity resolves the caller from the X-User-ID header. The header
// may carry a UUID or an opaque account name; names are mapped to a
// stable UUID so the same caller always owns the same rows.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if raw == "" {
			raw = demoUser
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(raw))
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// UserID returns the identity resolved by the Identity middleware.
func UserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(demoUser))
}
