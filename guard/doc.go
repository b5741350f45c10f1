// Package guard decides which views may render for the current session.
//
// [Policy] is the pure decision: public views always render, protected views
// render only while authenticated, everything else redirects to the entry
// view. [Router] applies a Policy to a current location and re-applies it on
// every session transition, so a forced logout moves a protected view to the
// entry view without user action. [Middleware] applies the same Policy to
// HTTP requests.
//
// # What this package must NOT do
//
//   - Read or write the session store.
//   - Distinguish between authenticated users.
package guard
