package backoffice

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/proveeduria/backoffice/middleware/sessionware"
)

// RouteAuthenticator is the HTTP boundary for sessions. It captures the
// request wall-clock once, hands it to the core, and translates rejections
// into JSON responses. Core types never read the clock themselves.
type RouteAuthenticator struct {
	auth         Authenticator
	guard        *Guard
	cfg          Config
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, guard *Guard, cfg Config) (*RouteAuthenticator, error) {
	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		guard:  guard,
		Logger: defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	a.Logger = logger
	return a
}

// ProtectedRoute guards a route group. An empty roles list admits any
// authenticated session.
func (a *RouteAuthenticator) ProtectedRoute(roles ...UserRole) router.MiddlewareFunc {
	return sessionware.New(sessionware.Config{
		ErrorHandler:  a.RejectionHandler,
		Guard:         guardAdapter{guard: a.guard},
		RequiredRoles: roles,
		AuthScheme:    a.cfg.GetAuthScheme(),
		ContextKey:    a.cfg.GetContextKey(),
		TokenLookup:   a.cfg.GetTokenLookup(),
		ContextEnricher: func(c context.Context, p sessionware.Principal) context.Context {
			return WithPrincipal(c, Principal{
				UserID:    p.UserID,
				Role:      p.Role,
				SessionID: p.SessionID,
			})
		},
	})
}

// Login authenticates the payload and sets the session cookie. The token is
// also returned so JSON clients can send it as a bearer header instead.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (string, Principal, error) {
	now := time.Now()

	token, principal, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword(), now)
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return "", Principal{}, err
	}

	a.setCookieToken(ctx, token, a.guard.IdleTimeout())
	return token, principal, nil
}

// Logout destroys the current session, wherever the token came from, and
// clears the cookie. Always succeeds.
func (a *RouteAuthenticator) Logout(ctx router.Context) {
	token, err := sessionware.ExtractRawTokenFromContext(ctx, sessionware.GetExtractors(
		a.cfg.GetTokenLookup(),
		a.cfg.GetAuthScheme(),
	))
	if err == nil && token != "" {
		a.auth.Logout(ctx.Context(), token, time.Now())
	}

	a.cookieDel(ctx, a.cfg.GetContextKey())
}

// RejectionHandler maps guard rejections to JSON. Expired sessions keep
// their distinct code so clients can tell "log in again" apart from a
// generic bad token.
func (a *RouteAuthenticator) RejectionHandler(c router.Context, err error) error {
	if err != nil && err.Error() == sessionware.ErrTokenMissingOrMalformed.Error() {
		return c.JSON(router.StatusUnauthorized, router.ViewContext{
			"error": "Autenticación requerida",
			"code":  TextCodeUnauthenticated,
		})
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		a.Logger.Error("unexpected rejection type: %v", err)
		return c.JSON(router.StatusUnauthorized, router.ViewContext{
			"error": "Autenticación requerida",
			"code":  TextCodeUnauthenticated,
		})
	}

	a.Logger.Info(
		"request rejected: %s code=%s details=%s",
		richErr.Message,
		richErr.TextCode,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return c.JSON(richErr.Code, router.ViewContext{
			"error": richErr.Message,
			"code":  richErr.TextCode,
		})
	default:
		return a.ErrorHandler(c, richErr)
	}
}

func (a *RouteAuthenticator) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Error(
		"internal error: %s category=%s details=%s",
		richErr.Message,
		richErr.Category,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	return c.JSON(errors.CodeInternal, router.ViewContext{
		"error": "Error interno del servidor",
		"code":  TextCodeInternalFailure,
	})
}

// guardAdapter bridges the root Guard to the middleware's local interface.
type guardAdapter struct {
	guard *Guard
}

func (g guardAdapter) Authorize(ctx context.Context, token string, requiredRoles []string, now time.Time) (sessionware.Principal, error) {
	principal, err := g.guard.Authorize(ctx, token, requiredRoles, now)
	if err != nil {
		return sessionware.Principal{}, err
	}

	return sessionware.Principal{
		UserID:    principal.UserID,
		Role:      principal.Role,
		SessionID: principal.SessionID,
	}, nil
}

var _ sessionware.Guard = guardAdapter{}
