package backoffice

import (
	"context"
	"reflect"
	"time"

	"github.com/goliatone/go-errors"
)

// Auther authenticates credentials and manages the session lifecycle around
// the registry. It implements Authenticator.
type Auther struct {
	provider     IdentityProvider
	registry     *Registry
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator backed by the given identity
// provider and session registry.
func NewAuthenticator(provider IdentityProvider, registry *Registry) *Auther {
	return &Auther{
		provider:     provider,
		registry:     registry,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// Login verifies credentials and creates a session. The returned token is
// the opaque session identifier; the principal snapshots the user's role at
// login time. Failures are normalized to ErrInvalidCredentials before they
// leave this method so callers cannot distinguish unknown emails from wrong
// passwords or inactive accounts; the provider logs the real cause.
func (s *Auther) Login(ctx context.Context, email, password string, now time.Time) (string, Principal, error) {
	identity, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.logger.Error("Login verify identity error: %v", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", "", now, map[string]any{
			"email": email,
			"error": err.Error(),
		})

		if IsAuthRejection(err) {
			return "", Principal{}, ErrInvalidCredentials
		}

		// Internal failures (store down, malformed hash) also fail closed:
		// the caller sees the same rejection, the logs keep the cause.
		return "", Principal{}, errors.Wrap(err, errors.CategoryInternal, "identity verification failed").
			WithTextCode(TextCodeInternalFailure)
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", "", now, map[string]any{
			"email": email,
		})
		return "", Principal{}, ErrInvalidCredentials
	}

	session := s.registry.Create(identity.ID(), identity.Role(), now)
	principal := principalFromSession(session)

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, ActorRef{ID: identity.ID(), Type: "user"}, identity.ID(), session.ID, now, map[string]any{
		"email": email,
		"role":  identity.Role(),
	})

	return session.ID, principal, nil
}

// Logout destroys the session immediately, bypassing the idle-timeout
// calculation. It always succeeds and is idempotent: logging out an unknown
// or already-removed token is a no-op.
func (s *Auther) Logout(ctx context.Context, token string, now time.Time) {
	if token == "" {
		return
	}

	session, ok := s.registry.Get(token)
	s.registry.Remove(token)

	if !ok {
		return
	}

	s.emitAuthEvent(ctx, ActivityEventLogout, ActorRef{ID: session.UserID, Type: "user"}, session.UserID, session.ID, now, nil)
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID, sessionID string, now time.Time, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      actor,
		UserID:     userID,
		SessionID:  sessionID,
		Metadata:   metadata,
		OccurredAt: now,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := s.activitySink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

var _ Authenticator = (*Auther)(nil)
