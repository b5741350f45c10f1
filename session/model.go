package session

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Identity describes the authenticated principal for display purposes.
//
// Name is optional: the login endpoint does not return one, so views call
// [Identity.DisplayName] instead of reading it directly.
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// DisplayName returns Name when set, otherwise the capitalized local part of
// Email ("user1@example.com" yields "User1").
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}

	local, _, _ := strings.Cut(i.Email, "@")
	if local == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(local)
	return string(unicode.ToUpper(r)) + local[size:]
}

// Session is the (token, identity) pair representing a signed-in user.
//
// A zero Session is anonymous. Values are replaced wholesale, never merged.
type Session struct {
	Token    string
	Identity *Identity
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Clone returns a copy that shares no memory with s.
func (s Session) Clone() Session {
	out := Session{Token: s.Token}
	if s.Identity != nil {
		id := *s.Identity
		out.Identity = &id
	}
	return out
}

// Equal reports whether both sessions carry the same token and identity.
func (s Session) Equal(other Session) bool {
	if s.Token != other.Token {
		return false
	}
	switch {
	case s.Identity == nil && other.Identity == nil:
		return true
	case s.Identity == nil || other.Identity == nil:
		return false
	default:
		return *s.Identity == *other.Identity
	}
}
