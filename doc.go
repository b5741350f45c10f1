// Package goDash is the session and authentication core of the Task dashboard
// client: it owns the current bearer token and user identity, persists them
// across restarts, and tells the rest of the client when the session begins or
// ends.
//
// The package is designed for concurrent client workloads: [Manager] methods
// are safe to call from multiple goroutines after construction through
// [Builder.Build].
//
// # Architecture boundaries
//
// goDash exposes [Manager], [Builder], [Config] and value types (Transition,
// MetricsSnapshot, AuditEvent). Persistence lives in the session package, the
// request pipeline in transport, view gating in guard, and the API calls in
// client. Those packages depend on goDash; goDash depends only on session.
//
// # Session lifecycle
//
// The Manager has two states, [StateAnonymous] and [StateAuthenticated]. Its
// initial state is read from the persistent store. Login moves to
// Authenticated; Logout and Invalidate move to Anonymous. Every transition is
// published exactly once to subscribers in commit order, and a transition to
// Anonymous triggers the injected [Navigator] exactly once.
//
// # What this package must NOT do
//
//   - Parse, validate or refresh tokens: their validity is decided by the server.
//   - Make authorization decisions beyond authenticated or anonymous.
//   - Perform navigation directly; redirects go through [Navigator].
package goDash
