package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matchmaker/internal/db"
)

// GlobalStats is an admin snapshot of table sizes and today's activity.
type GlobalStats struct {
	Profiles     int64
	ActiveDay    int64
	Banned       int64
	Archived     int64
	Likes        int64
	LikesToday   int64
	Matches      int64
	MatchesToday int64
	Blocks       int64
}

// StatsRepository answers aggregate questions across tables.
type StatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new repository bound to the given DB connection.
func NewStatsRepository(database *gorm.DB) *StatsRepository {
	return &StatsRepository{db: database}
}

// Global counts rows per table. "Today" starts at midnight UTC of now.
func (r *StatsRepository) Global(ctx context.Context, now time.Time) (*GlobalStats, error) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var s GlobalStats
	counts := []struct {
		dst   *int64
		model any
		where string
		args  []any
	}{
		{&s.Profiles, &db.Profile{}, "", nil},
		{&s.ActiveDay, &db.Profile{}, "last_active >= ?", []any{now.Add(-24 * time.Hour)}},
		{&s.Banned, &db.Profile{}, "(status & ?) <> 0", []any{uint8(db.StatusBanned)}},
		{&s.Archived, &db.Profile{}, "(status & ?) <> 0", []any{uint8(db.StatusArchived)}},
		{&s.Likes, &db.Like{}, "", nil},
		{&s.LikesToday, &db.Like{}, "created_at >= ?", []any{dayStart}},
		{&s.Matches, &db.Match{}, "", nil},
		{&s.MatchesToday, &db.Match{}, "created_at >= ?", []any{dayStart}},
		{&s.Blocks, &db.Block{}, "", nil},
	}
	tx := r.db.WithContext(ctx)
	for _, c := range counts {
		q := tx.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, wrapDB(err)
		}
	}
	return &s, nil
}
