package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zenithhr/expensio/internal/principal"
)

const (
	// Identity is resolved upstream; the engine trusts these headers the way
	// a service behind an API gateway trusts its forwarded identity.
	HeaderEmployeeID   = "X-Employee-ID"
	HeaderEmployeeRole = "X-Employee-Role"
)

// PrincipalMiddleware copies the forwarded identity headers into the request
// context. Requests without a parseable employee ID pass through anonymous;
// handlers that need an actor reject them.
func PrincipalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderEmployeeID)
		if id, ok := principal.ParseEmployeeID(raw); ok {
			ctx := principal.WithPrincipal(c.Request.Context(), principal.Principal{
				EmployeeID: id,
				Role:       strings.TrimSpace(c.GetHeader(HeaderEmployeeRole)),
			})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// RequirePrincipal gates routes that must have an authenticated actor.
func RequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := principal.FromContext(c.Request.Context()); !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}
