// Package transport is the request pipeline between API calls and the
// network.
//
// [Decorate] and [IsCredentialRejected] are stateless helpers. [Transport]
// combines them into an [http.RoundTripper] that reads the session from a
// [SessionSource] at send time and ends that session when the server answers
// 401. Any number of concurrent rejections of one token end the session once.
//
// # What this package must NOT do
//
//   - Retry, refresh or re-issue credentials.
//   - Impose timeouts; requests run under the caller's context.
//   - Inspect the token.
package transport
