package guard

import (
	"context"
	"sync"

	goDash "github.com/MrEthical07/goDash"
)

// StateSource is what a Router observes. [*goDash.Manager] implements it.
type StateSource interface {
	State() goDash.State
	Subscribe(fn func(goDash.Transition)) (unsubscribe func())
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithOnDecision sets the renderer called with every emitted decision.
// Decisions reach fn one at a time in the order they were committed; fn may
// call back into the Router.
func WithOnDecision(fn func(Decision)) RouterOption {
	return func(r *Router) { r.onDecision = fn }
}

// WithMetrics counts decisions in m.
func WithMetrics(m *goDash.Metrics) RouterOption {
	return func(r *Router) { r.metrics = m }
}

// Router tracks the current location and keeps it consistent with the
// session.
//
// Navigate always emits its decision. A session transition emits only when
// the decision for the current location changes.
//
//	Docs: docs/guard.md
type Router struct {
	policy     Policy
	source     StateSource
	metrics    *goDash.Metrics
	onDecision func(Decision)

	mu      sync.Mutex
	view    string
	last    Decision
	hasLast bool
	unsub   func()

	emitMu sync.Mutex
	outMu  sync.Mutex
	out    []Decision
}

// NewRouter returns a Router at the entry view subscribed to source.
func NewRouter(source StateSource, policy Policy, opts ...RouterOption) *Router {
	r := &Router{
		policy: policy,
		source: source,
		view:   policy.Entry(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if source != nil {
		r.unsub = source.Subscribe(r.onTransition)
	}
	return r
}

// Attach creates a Router for mgr and installs it as mgr's navigator.
func Attach(mgr *goDash.Manager, policy Policy, opts ...RouterOption) *Router {
	opts = append([]RouterOption{WithMetrics(mgr.Metrics())}, opts...)
	r := NewRouter(mgr, policy, opts...)
	mgr.SetNavigator(r)
	return r
}

// Navigate requests view and returns the decision. A redirect moves the
// current location to the entry view.
func (r *Router) Navigate(view string) Decision {
	d, _ := r.evaluate(CleanView(view), true)
	return d
}

// Current returns the location and the last decision. Before any
// evaluation it evaluates the entry view.
func (r *Router) Current() Decision {
	r.mu.Lock()
	if r.hasLast {
		d := r.last
		r.mu.Unlock()
		return d
	}
	view := r.view
	r.mu.Unlock()
	return r.Navigate(view)
}

// NavigateToEntry implements goDash.Navigator.
func (r *Router) NavigateToEntry(_ context.Context, _ goDash.Transition) {
	r.Navigate(r.policy.Entry())
}

// Close unsubscribes from the session source.
func (r *Router) Close() {
	r.mu.Lock()
	unsub := r.unsub
	r.unsub = nil
	r.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (r *Router) onTransition(goDash.Transition) {
	r.evaluate("", false)
}

// evaluate decides view against the current state. An empty view means the
// current location. emit forces the decision out even when unchanged.
//
// The state is read under r.mu so a decision can never be committed from a
// state that a concurrent transition already replaced.
func (r *Router) evaluate(view string, emit bool) (Decision, bool) {
	r.mu.Lock()
	if view == "" {
		view = r.view
	}
	authenticated := r.source != nil && r.source.State() == goDash.StateAuthenticated
	d := r.policy.Decide(view, authenticated)
	changed := !r.hasLast || r.last != d
	r.view = d.View
	r.last = d
	r.hasLast = true
	queued := (emit || changed) && r.onDecision != nil
	if queued {
		r.outMu.Lock()
		r.out = append(r.out, d)
		r.outMu.Unlock()
	}
	r.mu.Unlock()

	if d.Render() {
		r.metrics.Inc(goDash.MetricGuardRender)
	} else {
		r.metrics.Inc(goDash.MetricGuardRedirect)
	}
	if queued {
		r.flush()
	}
	return d, changed
}

// flush hands queued decisions to onDecision in commit order. A call made
// while another goroutine (or onDecision itself) is delivering leaves its
// decision to that loop.
func (r *Router) flush() {
	for r.emitMu.TryLock() {
		for {
			d, ok := r.pop()
			if !ok {
				break
			}
			r.onDecision(d)
		}
		r.emitMu.Unlock()

		r.outMu.Lock()
		more := len(r.out) > 0
		r.outMu.Unlock()
		if !more {
			return
		}
	}
}

func (r *Router) pop() (Decision, bool) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	if len(r.out) == 0 {
		return Decision{}, false
	}
	d := r.out[0]
	r.out = r.out[1:]
	return d, true
}
