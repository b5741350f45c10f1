package goDash

import "context"

type withoutCredentialsContextKey struct{}

// WithoutCredentials marks ctx so the request pipeline sends the request
// undecorated even when a session exists. The login call uses it.
//
//	Docs: docs/transport.md
func WithoutCredentials(ctx context.Context) context.Context {
	return context.WithValue(ctx, withoutCredentialsContextKey{}, true)
}

// CredentialsDisabled reports whether ctx was marked by [WithoutCredentials].
func CredentialsDisabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(withoutCredentialsContextKey{}).(bool)
	return v
}
