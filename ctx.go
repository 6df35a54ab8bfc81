package backoffice

import (
	"context"

	"github.com/goliatone/go-router"
	"github.com/proveeduria/backoffice/middleware/sessionware"
)

var principalCtxKey = &contextKey{"principal"}

type contextKey struct {
	name string
}

// WithPrincipal sets the Principal in the given context
func WithPrincipal(r context.Context, principal Principal) context.Context {
	return context.WithValue(r, principalCtxKey, principal)
}

// PrincipalFromContext finds the principal from the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	raw, ok := ctx.Value(principalCtxKey).(Principal)
	return raw, ok
}

// PrincipalFromRouterContext extracts the Principal the session middleware
// stored in the router context under key.
func PrincipalFromRouterContext(ctx router.Context, key string) (Principal, bool) {
	if key == "" {
		key = "principal"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return Principal{}, false
	}
	// The middleware stores its own principal type to avoid an import
	// cycle; accept both shapes.
	switch p := raw.(type) {
	case Principal:
		return p, true
	case sessionware.Principal:
		return Principal{
			UserID:    p.UserID,
			Role:      UserRole(p.Role),
			SessionID: p.SessionID,
		}, true
	default:
		return Principal{}, false
	}
}

// HasRoleFromRouter checks the authenticated principal's role directly from
// the router context.
func HasRoleFromRouter(ctx router.Context, role UserRole) bool {
	principal, ok := PrincipalFromRouterContext(ctx, "")
	if !ok {
		return false
	}
	return principal.HasRole(role)
}
