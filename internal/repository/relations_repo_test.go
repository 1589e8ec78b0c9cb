package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matchmaker/internal/db"
	"github.com/oggyb/muzz-matchmaker/internal/db/dbtest"
	"github.com/oggyb/muzz-matchmaker/internal/repository"
	"github.com/oggyb/muzz-matchmaker/internal/utils/pagination"
)

func TestLikeUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	repo := repository.NewLikeRepository(gdb)

	require.NoError(t, repo.Upsert(ctx, 1, 2))
	require.NoError(t, repo.Upsert(ctx, 1, 2))

	var count int64
	gdb.Model(&db.Like{}).Count(&count)
	assert.EqualValues(t, 1, count)

	ok, err := repo.Exists(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestPendingLikers uses the minimal seed: 2 ↔ 1 is mutual, 3 → 1 is pending.
func TestPendingLikers(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	require.NoError(t, db.SeedMinimalTestData(gdb))
	repo := repository.NewLikeRepository(gdb)

	ids, err := repo.PendingLikers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, ids)

	count, err := repo.CountPending(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// a block in either direction hides the liker
	blocks := repository.NewBlockRepository(gdb)
	_, err = blocks.Create(ctx, 3, 1)
	require.NoError(t, err)

	ids, err = repo.PendingLikers(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPendingLikersPage(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	likes := make([]db.Like, 0, 7)
	for i := uint64(2); i <= 8; i++ {
		likes = append(likes, db.Like{
			FromUserID: i,
			ToUserID:   1,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}
	require.NoError(t, gdb.Create(&likes).Error)
	repo := repository.NewLikeRepository(gdb)

	var seen []uint64
	var token *string
	pages := 0
	for {
		page, next, err := repo.PendingLikersPage(ctx, 1, token, 3)
		require.NoError(t, err)
		for _, l := range page {
			seen = append(seen, l.FromUserID)
		}
		pages++
		if next == nil {
			break
		}
		token = next
	}

	assert.Equal(t, 3, pages)
	assert.Equal(t, []uint64{8, 7, 6, 5, 4, 3, 2}, seen)

	bad := "!!not-a-token"
	_, _, err := repo.PendingLikersPage(ctx, 1, &bad, 3)
	assert.ErrorIs(t, err, pagination.ErrInvalidToken)
}

// Likes written back to back usually share a millisecond; the cursor must
// still walk through every one of them.
func TestPendingLikersPageSameMillisecond(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewLikeRepository(dbtest.Open(t))
	for id := uint64(2); id <= 6; id++ {
		require.NoError(t, repo.Upsert(ctx, id, 1))
	}

	all, err := repo.PendingLikers(ctx, 1)
	require.NoError(t, err)

	var paged []uint64
	var token *string
	for range 10 {
		page, next, err := repo.PendingLikersPage(ctx, 1, token, 1)
		require.NoError(t, err)
		for _, l := range page {
			paged = append(paged, l.FromUserID)
		}
		if next == nil {
			break
		}
		token = next
	}

	assert.Equal(t, []uint64{6, 5, 4, 3, 2}, all)
	assert.Equal(t, all, paged)
}

func TestPendingLikersPageNonPositiveLimit(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewLikeRepository(dbtest.Open(t))
	require.NoError(t, repo.Upsert(ctx, 2, 1))
	require.NoError(t, repo.Upsert(ctx, 3, 1))

	page, next, err := repo.PendingLikersPage(ctx, 1, nil, 0)
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.NotNil(t, next)
}

func TestSkipAndRevoke(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	likes := repository.NewLikeRepository(gdb)
	skips := repository.NewSkipRepository(gdb)
	now := time.Now().UTC()

	require.NoError(t, likes.Upsert(ctx, 2, 1)) // 2 liked 1
	require.NoError(t, likes.Upsert(ctx, 1, 2)) // 1 liked 2 as well

	revoked, err := skips.SkipAndRevoke(ctx, 1, 2, now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, revoked)

	ok, _ := likes.Exists(ctx, 2, 1)
	assert.False(t, ok, "reverse like must be revoked")
	ok, _ = likes.Exists(ctx, 1, 2)
	assert.True(t, ok, "own like is kept")

	revoked, err = skips.SkipAndRevoke(ctx, 1, 2, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, revoked)

	var rows []db.Skip
	gdb.Find(&rows)
	require.Len(t, rows, 1)
	assert.WithinDuration(t, now.Add(2*time.Hour), rows[0].ExpiresAt, time.Second)

	active, err := skips.Active(ctx, 1, 2, now)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = skips.Active(ctx, 1, 2, now.Add(3*time.Hour))
	require.NoError(t, err)
	assert.False(t, active)

	n, err := skips.PurgeExpired(ctx, now.Add(3*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestBlockRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewBlockRepository(dbtest.Open(t))

	created, err := repo.Create(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, created)

	for _, pair := range [][2]uint64{{1, 2}, {2, 1}} {
		blocked, err := repo.IsBlocked(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, blocked)
	}

	ids, err := repo.ListBlocked(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, ids)

	// unblocking from the wrong side does nothing
	removed, err := repo.Delete(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = repo.Delete(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, removed)

	blocked, err := repo.IsBlocked(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestMatchRepositoryCanonical(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	repo := repository.NewMatchRepository(gdb)

	created, err := repo.Create(ctx, 9, 4)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, 4, 9)
	require.NoError(t, err)
	assert.False(t, created)

	var rows []db.Match
	gdb.Find(&rows)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 4, rows[0].User1ID)
	assert.EqualValues(t, 9, rows[0].User2ID)

	peers, err := repo.ListPeers(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, []uint64{4}, peers)

	peers, err = repo.ListPeers(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, []uint64{9}, peers)

	ok, err := repo.Exists(ctx, 9, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := repo.Delete(ctx, 9, 4)
	require.NoError(t, err)
	assert.True(t, removed)

	n, err := repo.Count(ctx, 4)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGlobalStats(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	require.NoError(t, db.SeedMinimalTestData(gdb))
	require.NoError(t, repository.NewProfileRepository(gdb).SetStatus(ctx, 3, db.StatusBanned, true))

	s, err := repository.NewStatsRepository(gdb).Global(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 3, s.Profiles)
	assert.EqualValues(t, 1, s.Banned)
	assert.EqualValues(t, 3, s.Likes)
	assert.EqualValues(t, 3, s.LikesToday)
	assert.EqualValues(t, 1, s.Matches)
	assert.EqualValues(t, 1, s.MatchesToday)
}
