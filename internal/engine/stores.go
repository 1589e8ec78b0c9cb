package engine

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matchmaker/internal/db"
	"github.com/oggyb/muzz-matchmaker/internal/repository"
)

type ProfileStore interface {
	Get(ctx context.Context, userID uint64) (*db.Profile, error)
	Exists(ctx context.Context, userIDs ...uint64) (bool, error)
	Upsert(ctx context.Context, p *db.Profile) error
	ConsumeBrowse(ctx context.Context, userID uint64, decide func(p *db.Profile) bool) (*db.Profile, error)
	IncrementViewCount(ctx context.Context, userID uint64) error
	SetStatus(ctx context.Context, userID uint64, flag db.Status, on bool) error
	Touch(ctx context.Context, userID uint64, now time.Time) error
	ArchiveInactive(ctx context.Context, before time.Time) (int64, error)
	Purge(ctx context.Context, userID uint64) ([]uint64, error)
}

type LikeStore interface {
	Upsert(ctx context.Context, fromID, toID uint64) error
	Exists(ctx context.Context, fromID, toID uint64) (bool, error)
	PendingLikers(ctx context.Context, recipientID uint64) ([]uint64, error)
	PendingLikersPage(ctx context.Context, recipientID uint64, token *string, limit int) ([]db.Like, *string, error)
	CountPending(ctx context.Context, recipientID uint64) (int64, error)
	CountSent(ctx context.Context, userID uint64) (int64, error)
	CountReceived(ctx context.Context, userID uint64) (int64, error)
}

type SkipStore interface {
	SkipAndRevoke(ctx context.Context, fromID, toID uint64, expiresAt time.Time) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type BlockStore interface {
	Create(ctx context.Context, blockerID, blockedID uint64) (bool, error)
	Delete(ctx context.Context, blockerID, blockedID uint64) (bool, error)
	IsBlocked(ctx context.Context, a, b uint64) (bool, error)
	ListBlocked(ctx context.Context, blockerID uint64) ([]uint64, error)
}

type MatchStore interface {
	Create(ctx context.Context, a, b uint64) (bool, error)
	Delete(ctx context.Context, a, b uint64) (bool, error)
	Exists(ctx context.Context, a, b uint64) (bool, error)
	ListPeers(ctx context.Context, userID uint64) ([]uint64, error)
	Count(ctx context.Context, userID uint64) (int64, error)
}

type CandidateStore interface {
	ClosestCandidates(ctx context.Context, q repository.CandidateQuery) ([]db.Profile, error)
}

type StatsStore interface {
	Global(ctx context.Context, now time.Time) (*repository.GlobalStats, error)
}

// Stores bundles every persistence dependency of the Engine.
type Stores struct {
	Profiles   ProfileStore
	Likes      LikeStore
	Skips      SkipStore
	Blocks     BlockStore
	Matches    MatchStore
	Candidates CandidateStore
	Stats      StatsStore
}

// NewStores wires the gorm-backed repositories.
func NewStores(gdb *gorm.DB) Stores {
	return Stores{
		Profiles:   repository.NewProfileRepository(gdb),
		Likes:      repository.NewLikeRepository(gdb),
		Skips:      repository.NewSkipRepository(gdb),
		Blocks:     repository.NewBlockRepository(gdb),
		Matches:    repository.NewMatchRepository(gdb),
		Candidates: repository.NewCandidateRepository(gdb),
		Stats:      repository.NewStatsRepository(gdb),
	}
}
