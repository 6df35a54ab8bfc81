package backoffice

import (
	"context"
	"time"
)

// Guard authorizes requests against the session registry. It owns the idle
// timeout policy: expiry is checked on every authorization and enforced
// destructively, and successful checks refresh the session's activity marker.
type Guard struct {
	registry     *Registry
	idleTimeout  time.Duration
	logger       Logger
	activitySink ActivitySink
}

// NewGuard returns a Guard bound to a registry and the configured idle timeout.
func NewGuard(registry *Registry, opts Config) *Guard {
	return &Guard{
		registry:     registry,
		idleTimeout:  opts.GetIdleTimeout(),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (g *Guard) WithLogger(logger Logger) *Guard {
	g.logger = logger
	return g
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (g *Guard) WithActivitySink(sink ActivitySink) *Guard {
	g.activitySink = normalizeActivitySink(sink)
	return g
}

// IdleTimeout returns the configured inactivity threshold.
func (g *Guard) IdleTimeout() time.Duration {
	return g.idleTimeout
}

// Authorize validates the session behind the token and checks role
// membership. The order of checks matters:
//
//  1. Missing or unknown tokens are unauthenticated.
//  2. Expiry runs before the role check so a stale session is never reported
//     as forbidden, which would leak that the session still exists. Expiry
//     removes the session; a retry with the same token is unauthenticated.
//  3. Role checks never touch or remove the session: a forbidden request
//     leaves the session live and its activity marker untouched.
//  4. Success refreshes the activity marker with the caller-supplied now.
//
// An empty requiredRoles set admits any authenticated session.
func (g *Guard) Authorize(ctx context.Context, sessionID string, requiredRoles []UserRole, now time.Time) (Principal, error) {
	if sessionID == "" {
		return Principal{}, ErrUnauthenticated
	}

	session, ok := g.registry.Get(sessionID)
	if !ok {
		g.logger.Debug("authorize: unknown session token")
		return Principal{}, ErrUnauthenticated
	}

	if IsExpired(session, now, g.idleTimeout) {
		g.registry.Remove(sessionID)
		g.logger.Info("authorize: session for user %s expired after %s idle", session.UserID, session.IdleFor(now))
		g.emitEvent(ctx, ActivityEventSessionExpired, session, now, map[string]any{
			"idle":         session.IdleFor(now).String(),
			"idle_timeout": g.idleTimeout.String(),
		})
		return Principal{}, rejectionWithMetadata(ErrSessionExpired, map[string]any{
			"idle": session.IdleFor(now).String(),
		})
	}

	if !RoleIn(session.Role, requiredRoles) {
		g.logger.Warn("authorize: user %s role %s not allowed", session.UserID, session.Role)
		g.emitEvent(ctx, ActivityEventAccessDenied, session, now, map[string]any{
			"role":           session.Role,
			"required_roles": requiredRoles,
		})
		return Principal{}, rejectionWithMetadata(ErrForbidden, map[string]any{
			"role": session.Role,
		})
	}

	g.registry.Touch(sessionID, now)

	return principalFromSession(session), nil
}

func (g *Guard) emitEvent(ctx context.Context, eventType ActivityEventType, session Session, now time.Time, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      ActorRef{ID: session.UserID, Type: "user"},
		UserID:     session.UserID,
		SessionID:  session.ID,
		Metadata:   metadata,
		OccurredAt: now,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := g.activitySink.Record(ctx, event); err != nil {
		g.logger.Warn("activity sink record error: %v", err)
	}
}
