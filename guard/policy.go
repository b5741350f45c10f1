package guard

import (
	"path"
	"strings"

	goDash "github.com/MrEthical07/goDash"
)

// Action is what a Decision asks the caller to do.
type Action uint8

const (
	// ActionRender shows the requested view.
	ActionRender Action = iota
	// ActionRedirect replaces the location with Decision.View.
	ActionRedirect
)

func (a Action) String() string {
	if a == ActionRedirect {
		return "redirect"
	}
	return "render"
}

// Decision is the outcome of evaluating one view.
type Decision struct {
	Action Action
	View   string
}

// Render reports whether d renders its view.
func (d Decision) Render() bool {
	return d.Action == ActionRender
}

// Policy is the view access rule set.
type Policy struct {
	entry  string
	public map[string]struct{}
}

// NewPolicy returns a Policy redirecting anonymous users to entry. entry is
// always public.
func NewPolicy(entry string, public ...string) Policy {
	p := Policy{
		entry:  CleanView(entry),
		public: make(map[string]struct{}, len(public)+1),
	}
	p.public[p.entry] = struct{}{}
	for _, v := range public {
		p.public[CleanView(v)] = struct{}{}
	}
	return p
}

// PolicyFromConfig builds a Policy from cfg.
func PolicyFromConfig(cfg goDash.GuardConfig) Policy {
	return NewPolicy(cfg.EntryView, cfg.PublicViews...)
}

// Entry returns the entry view.
func (p Policy) Entry() string {
	return p.entry
}

// IsPublic reports whether view renders without a session.
func (p Policy) IsPublic(view string) bool {
	_, ok := p.public[CleanView(view)]
	return ok
}

// Decide renders public views, renders protected views when authenticated
// and redirects to the entry view otherwise.
func (p Policy) Decide(view string, authenticated bool) Decision {
	view = CleanView(view)
	if authenticated || p.IsPublic(view) {
		return Decision{Action: ActionRender, View: view}
	}
	return Decision{Action: ActionRedirect, View: p.entry}
}

// CleanView normalizes a view path: leading slash, no trailing slash, no dot
// segments, query and fragment dropped.
func CleanView(view string) string {
	if i := strings.IndexAny(view, "?#"); i >= 0 {
		view = view[:i]
	}
	if view == "" {
		return "/"
	}
	return path.Clean("/" + view)
}
