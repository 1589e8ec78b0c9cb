package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matchmaker/internal/db"
	"github.com/oggyb/muzz-matchmaker/internal/engine"
)

var t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func TestPolicyCooldown(t *testing.T) {
	pol := engine.DefaultPolicy
	p := &db.Profile{}

	first := pol.Apply(p, t0)
	require.True(t, first.Allowed)
	assert.Equal(t, 49, first.Remaining)

	second := pol.Apply(p, t0.Add(time.Second))
	assert.False(t, second.Allowed)
	assert.Equal(t, engine.DenyCooldown, second.Reason)
	assert.Equal(t, 4*time.Second, second.RetryAfter)

	// denial leaves state untouched
	assert.Equal(t, 1, p.BrowseCount)
	assert.True(t, p.LastBrowseAt.Equal(t0))

	third := pol.Apply(p, t0.Add(5*time.Second))
	assert.True(t, third.Allowed)
}

func TestPolicyHourlyQuota(t *testing.T) {
	pol := engine.DefaultPolicy
	p := &db.Profile{}
	now := t0

	for i := 0; i < 50; i++ {
		d := pol.Apply(p, now)
		require.True(t, d.Allowed, "browse %d", i+1)
		now = now.Add(pol.Cooldown)
	}

	d := pol.Apply(p, now)
	assert.False(t, d.Allowed)
	assert.Equal(t, engine.DenyQuota, d.Reason)
	assert.Equal(t, pol.Window-now.Sub(t0), d.RetryAfter)

	// first call after the window resets the counter to one
	later := t0.Add(pol.Window)
	d = pol.Apply(p, later)
	require.True(t, d.Allowed)
	assert.Equal(t, 1, p.BrowseCount)
	assert.True(t, p.WindowStartAt.Equal(later))
	assert.Equal(t, 49, d.Remaining)
}

func TestPolicyBannedIsDenied(t *testing.T) {
	p := &db.Profile{Status: db.StatusBanned}
	d := engine.DefaultPolicy.Apply(p, t0)
	assert.False(t, d.Allowed)
	assert.Equal(t, engine.DenyBanned, d.Reason)
	assert.Nil(t, p.LastBrowseAt)
}

func TestPolicyClockSkew(t *testing.T) {
	future := t0.Add(time.Minute)
	p := &db.Profile{LastBrowseAt: &future}
	d := engine.DefaultPolicy.Apply(p, t0)
	assert.False(t, d.Allowed)
	assert.Equal(t, engine.DefaultPolicy.Cooldown, d.RetryAfter)
}

func TestUsedInWindow(t *testing.T) {
	pol := engine.DefaultPolicy
	start := t0
	p := &db.Profile{WindowStartAt: &start, BrowseCount: 7}

	assert.Equal(t, 7, pol.UsedInWindow(p, t0.Add(time.Minute)))
	assert.Equal(t, 0, pol.UsedInWindow(p, t0.Add(pol.Window)))
	assert.Equal(t, 0, pol.UsedInWindow(&db.Profile{}, t0))
}

func TestOnlineStatus(t *testing.T) {
	w := 15 * time.Minute
	assert.Equal(t, engine.PresenceOnline, engine.OnlineStatus(t0.Add(-time.Minute), t0, w))
	assert.Equal(t, engine.PresenceRecently, engine.OnlineStatus(t0.Add(-2*time.Hour), t0, w))
	assert.Equal(t, engine.PresenceOffline, engine.OnlineStatus(t0.Add(-48*time.Hour), t0, w))
	assert.Equal(t, engine.PresenceOffline, engine.OnlineStatus(time.Time{}, t0, w))
}
