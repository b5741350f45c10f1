package session

import (
	"context"
	"errors"
	"strings"
)

const (
	// DefaultTokenKey holds the opaque credential.
	DefaultTokenKey = "task_token"
	// DefaultUserKey holds the JSON-encoded identity.
	DefaultUserKey = "task_user"
)

// ErrIncompleteSession is returned by [Store.Write] when the token or the
// identity is missing; a persisted session always carries both.
var ErrIncompleteSession = errors.New("session requires token and identity")

// Keys names the two backend keys a session occupies.
type Keys struct {
	Token string
	User  string
}

// DefaultKeys returns the task_token / task_user pair.
func DefaultKeys() Keys {
	return Keys{Token: DefaultTokenKey, User: DefaultUserKey}
}

// CorruptionHook observes persisted identity records that failed to decode.
// The error wraps [ErrIdentityCorrupt].
type CorruptionHook func(ctx context.Context, err error)

// Store reads and writes the current [Session] through a [Backend].
//
// Store performs no validation of the token and owns no in-memory state; the
// goDash Manager is its only writer.
//
//	Docs: docs/session.md
type Store struct {
	backend   Backend
	keys      Keys
	onCorrupt CorruptionHook
}

// NewStore creates a Store on backend. Empty key names fall back to
// [DefaultKeys].
func NewStore(backend Backend, keys Keys) *Store {
	def := DefaultKeys()
	if strings.TrimSpace(keys.Token) == "" {
		keys.Token = def.Token
	}
	if strings.TrimSpace(keys.User) == "" {
		keys.User = def.User
	}
	return &Store{backend: backend, keys: keys}
}

// WithCorruptionHook registers h and returns s.
func (s *Store) WithCorruptionHook(h CorruptionHook) *Store {
	s.onCorrupt = h
	return s
}

// Keys returns the key names in use.
func (s *Store) Keys() Keys {
	return s.keys
}

// Read loads the persisted session. ok is false when no token is stored.
//
// A token whose identity record is missing or malformed is returned with a nil
// Identity; the corruption hook, if any, is told about malformed records.
// Only backend I/O failures are returned as errors.
func (s *Store) Read(ctx context.Context) (Session, bool, error) {
	token, found, err := s.backend.Get(ctx, s.keys.Token)
	if err != nil {
		return Session{}, false, err
	}
	if !found || token == "" {
		return Session{}, false, nil
	}

	sess := Session{Token: token}

	raw, found, err := s.backend.Get(ctx, s.keys.User)
	if err != nil {
		return Session{}, false, err
	}
	if !found {
		return sess, true, nil
	}

	id, err := DecodeIdentity(raw)
	if err != nil {
		if s.onCorrupt != nil {
			s.onCorrupt(ctx, err)
		}
		return sess, true, nil
	}
	sess.Identity = id
	return sess, true, nil
}

// Write replaces the persisted session with sess in one atomic backend call.
func (s *Store) Write(ctx context.Context, sess Session) error {
	if sess.Token == "" || sess.Identity == nil {
		return ErrIncompleteSession
	}
	user, err := EncodeIdentity(sess.Identity)
	if err != nil {
		return err
	}
	return s.backend.SetAll(ctx, map[string]string{
		s.keys.Token: sess.Token,
		s.keys.User:  user,
	})
}

// Clear removes both keys. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Delete(ctx, s.keys.Token, s.keys.User)
}
