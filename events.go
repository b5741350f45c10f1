package goDash

import (
	"context"
	"sync"
	"time"

	"github.com/MrEthical07/goDash/session"
	"github.com/google/uuid"
)

// State is the coarse session state observed by guards and views.
type State uint8

const (
	// StateAnonymous means no token is held.
	StateAnonymous State = iota
	// StateAuthenticated means a token is held.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

func stateOf(sess session.Session) State {
	if sess.Authenticated() {
		return StateAuthenticated
	}
	return StateAnonymous
}

// Reason explains why a transition happened.
type Reason string

const (
	// ReasonLogin is an explicit Manager.Login.
	ReasonLogin Reason = "login"
	// ReasonLogout is an explicit Manager.Logout.
	ReasonLogout Reason = "logout"
	// ReasonCredentialRejected is a forced logout after a 401.
	ReasonCredentialRejected Reason = "credential_rejected"
)

// Transition is one committed change of the current session.
//
// Seq increases by one per committed change and is the delivery order.
// Session is the value after the change; it is anonymous for logouts.
type Transition struct {
	From    State
	To      State
	Session session.Session
	Reason  Reason
	Seq     uint64
	At      time.Time
}

// EndedSession reports whether t moved an authenticated session to anonymous.
func (t Transition) EndedSession() bool {
	return t.From == StateAuthenticated && t.To == StateAnonymous
}

// Navigator sends the user to the entry view. The Manager calls it once per
// transition that ends a session, after the transition committed.
//
//	Docs: docs/guard.md
type Navigator interface {
	NavigateToEntry(ctx context.Context, t Transition)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(ctx context.Context, t Transition)

// NavigateToEntry calls f.
func (f NavigatorFunc) NavigateToEntry(ctx context.Context, t Transition) {
	f(ctx, t)
}

type subscriber struct {
	id uuid.UUID
	fn func(Transition)
}

// subscriberSet is a copy-on-write list so delivery never holds its lock
// while calling out.
type subscriberSet struct {
	mu   sync.Mutex
	list []subscriber
}

func (s *subscriberSet) add(fn func(Transition)) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	next := make([]subscriber, len(s.list), len(s.list)+1)
	copy(next, s.list)
	s.list = append(next, subscriber{id: id, fn: fn})
	s.mu.Unlock()
	return id
}

func (s *subscriberSet) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.list {
		if sub.id != id {
			continue
		}
		next := make([]subscriber, 0, len(s.list)-1)
		next = append(next, s.list[:i]...)
		s.list = append(next, s.list[i+1:]...)
		return
	}
}

func (s *subscriberSet) snapshot() []subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list
}

type pendingTransition struct {
	ctx context.Context
	t   Transition
}
