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
)

func TestProfileUpsertKeepsStatusAndRateLimit(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	repo := repository.NewProfileRepository(gdb)

	p := dbtest.Profile(1, 25, db.GenderMale, "london", db.PreferFemale)
	require.NoError(t, repo.Upsert(ctx, &p))
	require.NoError(t, repo.SetStatus(ctx, 1, db.StatusBanned, true))
	require.NoError(t, gdb.Model(&db.Profile{}).Where("user_id = 1").Update("browse_count", 7).Error)

	p2 := dbtest.Profile(1, 26, db.GenderMale, "leeds", db.PreferBoth)
	require.NoError(t, repo.Upsert(ctx, &p2))

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 26, got.Age)
	assert.Equal(t, "leeds", got.City)
	assert.True(t, got.Status.Has(db.StatusBanned))
	assert.Equal(t, 7, got.BrowseCount)
}

func TestProfileGetMissing(t *testing.T) {
	repo := repository.NewProfileRepository(dbtest.Open(t))
	_, err := repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProfileExists(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	dbtest.Insert(t, gdb,
		dbtest.Profile(1, 25, db.GenderMale, "london", db.PreferFemale),
		dbtest.Profile(2, 24, db.GenderFemale, "london", db.PreferMale),
	)
	repo := repository.NewProfileRepository(gdb)

	ok, err := repo.Exists(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, 1, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileConsumeBrowse(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	dbtest.Insert(t, gdb, dbtest.Profile(1, 25, db.GenderMale, "london", db.PreferFemale))
	repo := repository.NewProfileRepository(gdb)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := repo.ConsumeBrowse(ctx, 1, func(p *db.Profile) bool {
		p.LastBrowseAt = &now
		p.WindowStartAt = &now
		p.BrowseCount = 1
		return true
	})
	require.NoError(t, err)

	// a denied decision writes nothing
	_, err = repo.ConsumeBrowse(ctx, 1, func(p *db.Profile) bool {
		p.BrowseCount = 99
		return false
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.BrowseCount)
	require.NotNil(t, got.LastBrowseAt)
	assert.True(t, got.LastBrowseAt.Equal(now))

	_, err = repo.ConsumeBrowse(ctx, 9, func(*db.Profile) bool { return true })
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProfileStatusAndTouch(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	dbtest.Insert(t, gdb, dbtest.Profile(1, 25, db.GenderMale, "london", db.PreferFemale))
	repo := repository.NewProfileRepository(gdb)

	require.NoError(t, repo.SetStatus(ctx, 1, db.StatusArchived, true))
	require.NoError(t, repo.SetStatus(ctx, 1, db.StatusBanned, true))
	require.NoError(t, repo.SetStatus(ctx, 1, db.StatusBanned, false))

	got, _ := repo.Get(ctx, 1)
	assert.Equal(t, db.StatusArchived, got.Status)

	require.NoError(t, repo.Touch(ctx, 1, time.Now().UTC()))
	got, _ = repo.Get(ctx, 1)
	assert.Equal(t, db.Status(0), got.Status)

	assert.ErrorIs(t, repo.SetStatus(ctx, 2, db.StatusBanned, true), repository.ErrNotFound)
	assert.ErrorIs(t, repo.Touch(ctx, 2, time.Now()), repository.ErrNotFound)
}

func TestProfileArchiveInactive(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	old := dbtest.Profile(1, 25, db.GenderMale, "london", db.PreferFemale)
	old.LastActive = time.Now().UTC().Add(-60 * 24 * time.Hour)
	fresh := dbtest.Profile(2, 24, db.GenderFemale, "london", db.PreferMale)
	dbtest.Insert(t, gdb, old, fresh)
	repo := repository.NewProfileRepository(gdb)

	n, err := repo.ArchiveInactive(ctx, time.Now().UTC().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, _ := repo.Get(ctx, 1)
	assert.True(t, got.Status.Has(db.StatusArchived))
}

func TestProfilePurgeRemovesRelations(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	require.NoError(t, db.SeedMinimalTestData(gdb))
	repo := repository.NewProfileRepository(gdb)

	liked, err := repo.Purge(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, liked)

	var likes, matches int64
	gdb.Model(&db.Like{}).Count(&likes)
	gdb.Model(&db.Match{}).Count(&matches)
	assert.Zero(t, likes)
	assert.Zero(t, matches)

	_, err = repo.Purge(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProfileMaxUserIDAndBulkInsert(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProfileRepository(dbtest.Open(t))

	maxID, err := repo.MaxUserID(ctx)
	require.NoError(t, err)
	assert.Zero(t, maxID)

	n, err := repo.BulkInsert(ctx, []db.Profile{
		dbtest.Profile(10, 25, db.GenderMale, "london", db.PreferFemale),
		dbtest.Profile(11, 24, db.GenderFemale, "london", db.PreferMale),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	maxID, err = repo.MaxUserID(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 11, maxID)
}

func TestProfileIncrementViewCount(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	dbtest.Insert(t, gdb, dbtest.Profile(1, 25, db.GenderMale, "london", db.PreferFemale))
	repo := repository.NewProfileRepository(gdb)

	require.NoError(t, repo.IncrementViewCount(ctx, 1))
	require.NoError(t, repo.IncrementViewCount(ctx, 1))

	got, _ := repo.Get(ctx, 1)
	assert.EqualValues(t, 2, got.ViewCount)
}
