package engine

import (
	"context"

	"github.com/oggyb/muzz-matchmaker/internal/logger"
)

// BrowseResult is what a viewer gets back from one browse.
type BrowseResult struct {
	Decision  RateDecision
	Candidate *Candidate // nil when denied or nobody is eligible
	Presence  Presence   // candidate's presence, empty without a candidate
}

// Browse gates viewerID through the rate limiter and, when allowed, picks
// the next candidate and bumps its view counter.
//
// The browse is consumed even when no candidate turns up.
func (e *Engine) Browse(ctx context.Context, viewerID uint64) (BrowseResult, error) {
	decision, err := e.CheckRateLimit(ctx, viewerID)
	if err != nil {
		return BrowseResult{}, err
	}
	res := BrowseResult{Decision: decision}
	if !decision.Allowed {
		return res, nil
	}

	if err := e.profiles.Touch(ctx, viewerID, e.clock()); err != nil {
		return res, storeErr(err)
	}

	cand, err := e.SelectNext(ctx, viewerID)
	if err != nil {
		return res, err
	}
	if cand == nil {
		return res, nil
	}

	if err := e.profiles.IncrementViewCount(ctx, cand.Profile.UserID); err != nil {
		// approximate counter; a failed bump does not hide the candidate
		e.log.Warn("view count not incremented", "candidate", cand.Profile.UserID, logger.Err(err))
	}
	res.Candidate = cand
	res.Presence = e.OnlineStatus(&cand.Profile)
	return res, nil
}
