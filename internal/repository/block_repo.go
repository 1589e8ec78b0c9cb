package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matchmaker/internal/db"
)

// BlockRepository provides data access for the Block relation.
type BlockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new repository bound to the given DB connection.
func NewBlockRepository(database *gorm.DB) *BlockRepository {
	return &BlockRepository{db: database}
}

// Create stores blocker → blocked. created is false when it already existed.
func (r *BlockRepository) Create(ctx context.Context, blockerID, blockedID uint64) (created bool, err error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.Block{BlockerID: blockerID, BlockedID: blockedID})
	return res.RowsAffected > 0, wrapDB(res.Error)
}

// Delete removes blocker → blocked only; the reverse direction is untouched.
func (r *BlockRepository) Delete(ctx context.Context, blockerID, blockedID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&db.Block{})
	return res.RowsAffected > 0, wrapDB(res.Error)
}

// IsBlocked checks both directions.
func (r *BlockRepository) IsBlocked(ctx context.Context, a, b uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, wrapDB(err)
}

// ListBlocked returns ids blocked by blocker, most recent first.
func (r *BlockRepository) ListBlocked(ctx context.Context, blockerID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Block{}).
		Where("blocker_id = ?", blockerID).
		Order("created_at DESC, blocked_id DESC").
		Pluck("blocked_id", &ids).Error
	if err != nil {
		return nil, wrapDB(err)
	}
	return ids, nil
}
