// Package principal carries the already-authenticated caller through request context.
// Authentication itself happens upstream; this core only trusts what it is handed.
package principal

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Principal identifies the authenticated employee making a request.
type Principal struct {
	EmployeeID snowflake.ID
	Role       string
}

type principalContextKey struct{}

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// FromContext returns the principal from context, if set.
func FromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}

	value := ctx.Value(principalContextKey{})
	if value == nil {
		return Principal{}, false
	}

	p, ok := value.(Principal)
	if !ok || p.EmployeeID == 0 {
		return Principal{}, false
	}
	return p, true
}

// EmployeeIDFromContext returns the caller's employee ID from context, if set.
func EmployeeIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	p, ok := FromContext(ctx)
	if !ok {
		return 0, false
	}
	return p.EmployeeID, true
}

// ParseEmployeeID parses a raw employee ID header value.
func ParseEmployeeID(raw string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
