// Package session provides durable persistence for the dashboard client session:
// the opaque bearer token and the identity of the signed-in user.
//
// # Storage layout
//
// A session occupies two string keys in a [Backend]: "task_token" holds the
// opaque credential and "task_user" holds the JSON-encoded [Identity]. The
// absence of "task_token" is the canonical anonymous marker; "task_user" is
// ignored whenever the token is missing.
//
// # Corruption policy
//
// A malformed identity record never raises an error. [Store.Read] returns the
// token with a nil identity so storage corruption degrades to "identity
// unknown" instead of forcing the user out.
//
// # Architecture boundaries
//
// This package owns the [Store], its backends and the [Session] model. It does
// NOT track transitions, notify subscribers or talk to the API; those belong to
// the goDash Manager.
//
// # What this package must NOT do
//
//   - Import goDash, transport or guard (no upward imports).
//   - Parse, validate or inspect the token.
//   - Encrypt or otherwise transform persisted values.
package session
