package engine

import (
	"context"

	"github.com/oggyb/muzz-matchmaker/internal/db"
	"github.com/oggyb/muzz-matchmaker/internal/repository"
)

// Tier labels the fallback bucket a candidate was drawn from.
type Tier string

const (
	TierSameCityReciprocal Tier = "A"
	TierSameCity           Tier = "B"
	TierReciprocal         Tier = "C"
	TierAny                Tier = "D"
)

var tiers = []struct {
	tier       Tier
	sameCity   bool
	reciprocal bool
}{
	{TierSameCityReciprocal, true, true},
	{TierSameCity, true, false},
	{TierReciprocal, false, true},
	{TierAny, false, false},
}

// Candidate is one pick of SelectNext.
type Candidate struct {
	Profile db.Profile
	Tier    Tier
}

// SelectNext picks the next profile to show viewerID, or nil when nobody is
// eligible anywhere. It never writes.
//
// Tiers are tried in order A to D. Inside the first non-empty tier the
// closest age wins; equal distances are broken uniformly at random.
func (e *Engine) SelectNext(ctx context.Context, viewerID uint64) (*Candidate, error) {
	viewer, err := e.profiles.Get(ctx, viewerID)
	if err != nil {
		return nil, storeErr(err)
	}
	return e.selectFor(ctx, viewer)
}

func (e *Engine) selectFor(ctx context.Context, viewer *db.Profile) (*Candidate, error) {
	now := e.clock()
	for _, t := range tiers {
		pool, err := e.candidates.ClosestCandidates(ctx, repository.CandidateQuery{
			Viewer:     viewer,
			SameCity:   t.sameCity,
			Reciprocal: t.reciprocal,
			Now:        now,
		})
		if err != nil {
			return nil, storeErr(err)
		}
		if len(pool) == 0 {
			continue
		}
		pick := pool[0]
		if len(pool) > 1 {
			pick = pool[e.intn(len(pool))]
		}
		return &Candidate{Profile: pick, Tier: t.tier}, nil
	}
	return nil, nil
}
