// Package taskapi is an in-process stand-in for the remote Task API.
//
// It serves the two endpoints the dashboard client talks to, POST /api/login
// and GET /api/dashboard, with HS256 bearer tokens that can be revoked or
// expired on demand so tests can drive the client through credential
// rejection. With [ThrottleOptions] set, repeated failed logins for one email
// are answered with 429 until the Redis window expires.
package taskapi
