// Package backoffice implements the session and access-control core of the
// proveeduría administrative backend, plus the user administration surface
// built on top of it.
//
// Sessions:
//   - Login verifies credentials through an IdentityProvider and creates an
//     opaque server-held session in the Registry. The session snapshots the
//     user's role at login time; authorization decisions use that snapshot.
//   - Every guarded request runs through Guard.Authorize, which enforces the
//     idle timeout lazily: a session past the threshold is removed on the
//     spot, so expiry is destructive and cannot be revived by later activity.
//   - The Registry is the only owner of session state. All mutations go
//     through its API and are safe under concurrent request handlers.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and Guard
//     to describe login, logout, expiry, and rejection events. Sinks run
//     best-effort (errors are logged) so you can forward to a database or
//     queue without blocking authentication.
//
// Time:
//   - Registry and Guard never read the system clock. Callers capture `now`
//     once per request (the sessionware middleware does this) and thread it
//     through, which keeps expiry behavior deterministic in tests.
package backoffice
