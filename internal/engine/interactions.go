package engine

import (
	"context"

	"github.com/oggyb/muzz-matchmaker/internal/db"
	"github.com/oggyb/muzz-matchmaker/internal/notify"
)

// LikeResult reports what RecordLike observed.
type LikeResult struct {
	// Matched is true whenever the reverse like exists, on every call.
	Matched bool
	// Created is true only for the call whose insert produced the Match row.
	Created bool
}

// RecordLike stores from → to and creates the match when to already liked from.
//
// The like is committed before the reverse like is read. Of two concurrent
// mutual likes, the later commit always sees both rows; the match insert is
// unique on the canonical pair, so the row is written exactly once and only
// its writer emits match notifications.
func (e *Engine) RecordLike(ctx context.Context, from, to uint64) (LikeResult, error) {
	if err := requireDistinct(from, to); err != nil {
		return LikeResult{}, err
	}
	if err := e.requireRegistered(ctx, from, to); err != nil {
		return LikeResult{}, err
	}
	blocked, err := e.blocks.IsBlocked(ctx, from, to)
	if err != nil {
		return LikeResult{}, storeErr(err)
	}
	if blocked {
		return LikeResult{}, ErrBlocked
	}

	already, err := e.likes.Exists(ctx, from, to)
	if err != nil {
		return LikeResult{}, storeErr(err)
	}
	if err := e.likes.Upsert(ctx, from, to); err != nil {
		return LikeResult{}, storeErr(err)
	}

	reverse, err := e.likes.Exists(ctx, to, from)
	if err != nil {
		return LikeResult{}, storeErr(err)
	}
	if !reverse {
		if !already {
			e.emit(ctx, notify.KindLiked, to, from)
		}
		return LikeResult{}, nil
	}

	created, err := e.matches.Create(ctx, from, to)
	if err != nil {
		return LikeResult{}, storeErr(err)
	}
	if created {
		e.emit(ctx, notify.KindMatch, from, to)
		e.emit(ctx, notify.KindMatch, to, from)
		e.log.Debug("match created", "user1", from, "user2", to)
	}
	return LikeResult{Matched: true, Created: created}, nil
}

// RecordSkip hides to from from for the skip TTL. If to had liked from, that
// like is revoked; revoked reports whether it happened.
func (e *Engine) RecordSkip(ctx context.Context, from, to uint64) (revoked bool, err error) {
	if err := requireDistinct(from, to); err != nil {
		return false, err
	}
	if err := e.requireRegistered(ctx, from, to); err != nil {
		return false, err
	}
	revoked, err = e.skips.SkipAndRevoke(ctx, from, to, e.clock().Add(e.skipTTL))
	if err != nil {
		return false, storeErr(err)
	}
	return revoked, nil
}

// PurgeExpiredSkips drops skip rows whose TTL has passed. Expired skips
// already stop excluding anyone; this only reclaims space.
func (e *Engine) PurgeExpiredSkips(ctx context.Context) (int64, error) {
	n, err := e.skips.PurgeExpired(ctx, e.clock())
	return n, storeErr(err)
}

// Block stores a → b. Blocking twice is a no-op; created is false then.
func (e *Engine) Block(ctx context.Context, a, b uint64) (created bool, err error) {
	if err := requireDistinct(a, b); err != nil {
		return false, err
	}
	if err := e.requireRegistered(ctx, a, b); err != nil {
		return false, err
	}
	created, err = e.blocks.Create(ctx, a, b)
	return created, storeErr(err)
}

// Unblock removes a → b only. A block placed by b stays in force.
func (e *Engine) Unblock(ctx context.Context, a, b uint64) (removed bool, err error) {
	if err := requireDistinct(a, b); err != nil {
		return false, err
	}
	removed, err = e.blocks.Delete(ctx, a, b)
	return removed, storeErr(err)
}

// IsBlocked checks both directions.
func (e *Engine) IsBlocked(ctx context.Context, a, b uint64) (bool, error) {
	if err := requireDistinct(a, b); err != nil {
		return false, err
	}
	blocked, err := e.blocks.IsBlocked(ctx, a, b)
	return blocked, storeErr(err)
}

func (e *Engine) ListBlocked(ctx context.Context, userID uint64) ([]uint64, error) {
	if err := e.requireRegistered(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := e.blocks.ListBlocked(ctx, userID)
	return ids, storeErr(err)
}

// CreateMatch pairs a and b regardless of likes. A blocked pair is refused.
func (e *Engine) CreateMatch(ctx context.Context, a, b uint64) (created bool, err error) {
	if err := requireDistinct(a, b); err != nil {
		return false, err
	}
	if err := e.requireRegistered(ctx, a, b); err != nil {
		return false, err
	}
	blocked, err := e.blocks.IsBlocked(ctx, a, b)
	if err != nil {
		return false, storeErr(err)
	}
	if blocked {
		return false, ErrBlocked
	}
	created, err = e.matches.Create(ctx, a, b)
	return created, storeErr(err)
}

// DeleteMatch unmatches the pair. Likes are kept.
func (e *Engine) DeleteMatch(ctx context.Context, a, b uint64) (removed bool, err error) {
	if err := requireDistinct(a, b); err != nil {
		return false, err
	}
	removed, err = e.matches.Delete(ctx, a, b)
	return removed, storeErr(err)
}

func (e *Engine) HasMatch(ctx context.Context, a, b uint64) (bool, error) {
	if err := requireDistinct(a, b); err != nil {
		return false, err
	}
	ok, err := e.matches.Exists(ctx, a, b)
	return ok, storeErr(err)
}

// ListMatches returns the peers userID is matched with, newest first.
func (e *Engine) ListMatches(ctx context.Context, userID uint64) ([]uint64, error) {
	if err := e.requireRegistered(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := e.matches.ListPeers(ctx, userID)
	return ids, storeErr(err)
}

// GetPendingLikers returns who liked userID and has not been liked back yet.
func (e *Engine) GetPendingLikers(ctx context.Context, userID uint64) ([]uint64, error) {
	if err := e.requireRegistered(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := e.likes.PendingLikers(ctx, userID)
	return ids, storeErr(err)
}

// Page size bounds for PendingLikersPage.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PendingLikersPage is the paginated form of GetPendingLikers. A limit of
// zero or less means DefaultPageSize; larger limits are capped at MaxPageSize.
func (e *Engine) PendingLikersPage(ctx context.Context, userID uint64, token *string, limit int) ([]db.Like, *string, error) {
	if err := e.requireRegistered(ctx, userID); err != nil {
		return nil, nil, err
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	likes, next, err := e.likes.PendingLikersPage(ctx, userID, token, limit)
	return likes, next, storeErr(err)
}

// CountPendingLikers reads the count straight from storage.
func (e *Engine) CountPendingLikers(ctx context.Context, userID uint64) (int64, error) {
	if err := e.requireRegistered(ctx, userID); err != nil {
		return 0, err
	}
	n, err := e.likes.CountPending(ctx, userID)
	return n, storeErr(err)
}
