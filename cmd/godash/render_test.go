package main

import (
	"bytes"
	"testing"

	"github.com/MrEthical07/goDash/client"
	"github.com/MrEthical07/goDash/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOverviewWithoutIdentity(t *testing.T) {
	var buf bytes.Buffer
	d := &client.Dashboard{Overview: client.Overview{TotalProjects: 3, Growth: 12}}

	require.NoError(t, renderDashboardView(&buf, viewDashboard, session.Session{Token: "tok"}, d))
	assert.Contains(t, buf.String(), "Welcome back, user")
	assert.Contains(t, buf.String(), "(+12%)")
}

func TestRenderTeamFallsBackToRawJoinDate(t *testing.T) {
	var buf bytes.Buffer
	d := &client.Dashboard{Users: []client.Member{
		{Name: "ada lovelace", Email: "ada@example.com", Status: "ACTIVE", JoinDate: "someday"},
	}}

	require.NoError(t, renderDashboardView(&buf, viewTeam, session.Session{}, d))
	out := buf.String()
	assert.Contains(t, out, "AL")
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "someday")
}

func TestRenderUnknownView(t *testing.T) {
	var buf bytes.Buffer
	err := renderDashboardView(&buf, "/dashboard/other", session.Session{}, &client.Dashboard{})
	require.ErrorContains(t, err, "no such view")
}
