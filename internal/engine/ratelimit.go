package engine

import (
	"context"
	"errors"
	"time"

	"github.com/oggyb/muzz-matchmaker/internal/db"
)

// Policy bounds how often a profile may browse.
type Policy struct {
	Cooldown time.Duration // minimum gap between two browses
	Window   time.Duration // quota window length
	Quota    int           // browses allowed per window
}

var DefaultPolicy = Policy{Cooldown: 5 * time.Second, Window: time.Hour, Quota: 50}

// DenyReason says why a browse was refused. Empty means allowed.
type DenyReason string

const (
	DenyNone          DenyReason = ""
	DenyCooldown      DenyReason = "cooldown"
	DenyQuota         DenyReason = "quota"
	DenyBanned        DenyReason = "banned"
	DenyNotRegistered DenyReason = "not_registered"
)

// RateDecision is the outcome of one check-and-consume.
type RateDecision struct {
	Allowed    bool
	Reason     DenyReason
	RetryAfter time.Duration
	// Remaining is the quota left in the current window after this call.
	Remaining int
}

func deny(reason DenyReason, retry time.Duration) RateDecision {
	return RateDecision{Reason: reason, RetryAfter: retry}
}

// Apply evaluates both gates against p at now. On allow it updates the
// rate-limit fields of p in place; on deny p is untouched.
//
// Window expiry resets the counter to 1 with a fresh window start.
func (pol Policy) Apply(p *db.Profile, now time.Time) RateDecision {
	if p.Status.Has(db.StatusBanned) {
		return deny(DenyBanned, 0)
	}

	if p.LastBrowseAt != nil {
		elapsed := max(now.Sub(*p.LastBrowseAt), 0)
		if elapsed < pol.Cooldown {
			return deny(DenyCooldown, pol.Cooldown-elapsed)
		}
	}

	switch {
	case p.WindowStartAt == nil || now.Sub(*p.WindowStartAt) >= pol.Window:
		start := now
		p.WindowStartAt = &start
		p.BrowseCount = 1
	case p.BrowseCount >= pol.Quota:
		return deny(DenyQuota, pol.Window-now.Sub(*p.WindowStartAt))
	default:
		p.BrowseCount++
	}

	last := now
	p.LastBrowseAt = &last
	return RateDecision{Allowed: true, Remaining: pol.Quota - p.BrowseCount}
}

// UsedInWindow reports how many browses count against the window at now.
func (pol Policy) UsedInWindow(p *db.Profile, now time.Time) int {
	if p.WindowStartAt == nil || now.Sub(*p.WindowStartAt) >= pol.Window {
		return 0
	}
	return p.BrowseCount
}

// CheckRateLimit consumes one browse for viewerID if both gates pass.
// The check and the write happen in one locked read-modify-write.
//
// An unknown viewer is a denial with DenyNotRegistered, not an error.
func (e *Engine) CheckRateLimit(ctx context.Context, viewerID uint64) (RateDecision, error) {
	now := e.clock()
	var decision RateDecision
	_, err := e.profiles.ConsumeBrowse(ctx, viewerID, func(p *db.Profile) bool {
		decision = e.policy.Apply(p, now)
		return decision.Allowed
	})
	if err != nil {
		err = storeErr(err)
		if errors.Is(err, ErrNotRegistered) {
			return deny(DenyNotRegistered, 0), nil
		}
		return RateDecision{}, err
	}
	return decision, nil
}
