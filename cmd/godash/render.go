package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/MrEthical07/goDash/client"
	"github.com/MrEthical07/goDash/session"
)

const (
	viewDashboard = "/dashboard"
	viewTeam      = "/dashboard/team"
	viewAnalytics = "/dashboard/analytics"
	viewTasks     = "/dashboard/tasks"
)

func isDashboardView(view string) bool {
	switch view {
	case viewDashboard, viewTeam, viewAnalytics, viewTasks:
		return true
	}
	return false
}

func renderEntry(w io.Writer, sess session.Session, ok bool) {
	fmt.Fprintln(w, "goDash")
	if ok {
		fmt.Fprintf(w, "Signed in as %s. Open a view with: godash view /dashboard\n", displayName(sess))
		return
	}
	fmt.Fprintln(w, "Not signed in. Run: godash login --demo")
}

func renderDashboardView(w io.Writer, view string, sess session.Session, d *client.Dashboard) error {
	switch view {
	case viewDashboard:
		renderOverview(w, sess, d)
	case viewTeam:
		renderTeam(w, d)
	case viewAnalytics:
		renderAnalytics(w, d)
	case viewTasks:
		renderTasks(w, d)
	default:
		return fmt.Errorf("no such view %q", view)
	}
	return nil
}

func renderOverview(w io.Writer, sess session.Session, d *client.Dashboard) {
	fmt.Fprintf(w, "Welcome back, %s\n\n", displayName(sess))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total Projects\t%d\t(+%.0f%%)\n", d.Overview.TotalProjects, d.Overview.Growth)
	fmt.Fprintf(tw, "Ended Projects\t%d\n", d.Overview.EndedProjects)
	fmt.Fprintf(tw, "Running Projects\t%d\n", d.Overview.RunningProjects)
	fmt.Fprintf(tw, "Pending Projects\t%d\n", d.Overview.PendingProjects)
	tw.Flush()
}

func renderTeam(w io.Writer, d *client.Dashboard) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tNAME\tEMAIL\tSTATUS\tJOINED")
	for _, m := range d.Users {
		status := "inactive"
		if m.Active() {
			status = "active"
		}
		joined := m.JoinDate
		if t, ok := m.Joined(); ok {
			joined = t.Format("Jan 2, 2006")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.Initials(), m.Name, m.Email, status, joined)
	}
	tw.Flush()
}

func renderAnalytics(w io.Writer, d *client.Dashboard) {
	fmt.Fprintf(w, "Total clicks: %d\nTotal views: %d\n\n", d.TotalClicks(), d.TotalViews())
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tVIEWS\tCLICKS")
	for _, p := range d.Analytics {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", p.Date, p.Views, p.Clicks)
	}
	tw.Flush()
}

func renderTasks(w io.Writer, d *client.Dashboard) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tCATEGORY\tPRICE")
	for _, p := range d.Products {
		fmt.Fprintf(tw, "%s\t%s\t$%.2f\n", p.Name, p.Category, p.Price)
	}
	tw.Flush()
}

// displayName falls back to a generic label when the persisted identity was
// unreadable.
func displayName(sess session.Session) string {
	if name := sess.Identity.DisplayName(); name != "" {
		return name
	}
	return "user"
}
