package client

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Overview holds the headline project counters.
type Overview struct {
	TotalProjects   int     `json:"totalProjects"`
	EndedProjects   int     `json:"endedProjects"`
	RunningProjects int     `json:"runningProjects"`
	PendingProjects int     `json:"pendingProjects"`
	Growth          float64 `json:"growth"`
}

// AnalyticsPoint is one day of traffic.
type AnalyticsPoint struct {
	Date   string `json:"date"`
	Views  int    `json:"views"`
	Clicks int    `json:"clicks"`
}

// Member is a team member row.
type Member struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	JoinDate string `json:"joinDate"`
}

// Initials returns the first letter of each word of Name, upper-cased.
func (m Member) Initials() string {
	var b strings.Builder
	for _, part := range strings.Fields(m.Name) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Active reports whether Status is "active".
func (m Member) Active() bool {
	return strings.EqualFold(m.Status, "active")
}

// Joined parses JoinDate. It accepts a date or an RFC 3339 timestamp.
func (m Member) Joined() (time.Time, bool) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, m.JoinDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Product is an entry of the task list.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// Dashboard is the GET /api/dashboard payload.
type Dashboard struct {
	Overview  Overview         `json:"overview"`
	Analytics []AnalyticsPoint `json:"analytics"`
	Users     []Member         `json:"users"`
	Products  []Product        `json:"products"`
}

// TotalClicks sums clicks across all analytics points.
func (d *Dashboard) TotalClicks() int {
	if d == nil {
		return 0
	}
	total := 0
	for _, p := range d.Analytics {
		total += p.Clicks
	}
	return total
}

// TotalViews sums views across all analytics points.
func (d *Dashboard) TotalViews() int {
	if d == nil {
		return 0
	}
	total := 0
	for _, p := range d.Analytics {
		total += p.Views
	}
	return total
}
