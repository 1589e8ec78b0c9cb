package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matchmaker/internal/db"
)

// MatchRepository stores unordered pairs in canonical (min, max) form.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// Create inserts the pair if absent. created is true only for the caller whose
// insert landed, which makes it the single owner of any follow-up side effects.
func (r *MatchRepository) Create(ctx context.Context, a, b uint64) (created bool, err error) {
	lo, hi := db.CanonicalPair(a, b)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.Match{User1ID: lo, User2ID: hi})
	return res.RowsAffected > 0, wrapDB(res.Error)
}

// Delete removes the pair regardless of argument order.
func (r *MatchRepository) Delete(ctx context.Context, a, b uint64) (bool, error) {
	lo, hi := db.CanonicalPair(a, b)
	res := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", lo, hi).
		Delete(&db.Match{})
	return res.RowsAffected > 0, wrapDB(res.Error)
}

// Exists reports whether a and b are matched.
func (r *MatchRepository) Exists(ctx context.Context, a, b uint64) (bool, error) {
	lo, hi := db.CanonicalPair(a, b)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user1_id = ? AND user2_id = ?", lo, hi).
		Count(&count).Error
	return count > 0, wrapDB(err)
}

// ListPeers returns the other side of every match involving userID, newest first.
func (r *MatchRepository) ListPeers(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Select("CASE WHEN user1_id = ? THEN user2_id ELSE user1_id END AS peer_id", userID).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Scan(&ids).Error
	if err != nil {
		return nil, wrapDB(err)
	}
	return ids, nil
}

// Count returns the number of matches involving userID.
func (r *MatchRepository) Count(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Count(&count).Error
	return count, wrapDB(err)
}
