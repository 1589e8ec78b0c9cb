package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matchmaker/internal/db"
)

// SkipRepository provides data access for the time-boxed Skip relation.
type SkipRepository struct {
	db *gorm.DB
}

// NewSkipRepository creates a new repository bound to the given DB connection.
func NewSkipRepository(database *gorm.DB) *SkipRepository {
	return &SkipRepository{db: database}
}

// upsertSkip writes from → to with the given expiry, refreshing it on repeat.
func upsertSkip(tx *gorm.DB, fromID, toID uint64, expiresAt time.Time) error {
	skip := db.Skip{FromUserID: fromID, ToUserID: toID, ExpiresAt: expiresAt}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"expires_at", "updated_at"}),
	}).Create(&skip).Error
}

// Upsert records a skip without touching likes.
func (r *SkipRepository) Upsert(ctx context.Context, fromID, toID uint64, expiresAt time.Time) error {
	return wrapDB(upsertSkip(r.db.WithContext(ctx), fromID, toID, expiresAt))
}

// SkipAndRevoke records from → to and deletes a pending to → from like in one
// transaction. revoked reports whether such a like existed.
//
// from's own like of to is left alone; a later RecordLike by either side can
// still form a match.
func (r *SkipRepository) SkipAndRevoke(
	ctx context.Context,
	fromID, toID uint64,
	expiresAt time.Time,
) (revoked bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertSkip(tx, fromID, toID, expiresAt); err != nil {
			return err
		}
		res := tx.Where("from_user_id = ? AND to_user_id = ?", toID, fromID).Delete(&db.Like{})
		if res.Error != nil {
			return res.Error
		}
		revoked = res.RowsAffected > 0
		return nil
	})
	return revoked, wrapDB(err)
}

// Active reports whether from has an unexpired skip on to.
func (r *SkipRepository) Active(ctx context.Context, fromID, toID uint64, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Skip{}).
		Where("from_user_id = ? AND to_user_id = ? AND expires_at > ?", fromID, toID, now).
		Count(&count).Error
	return count > 0, wrapDB(err)
}

// PurgeExpired drops skips that no longer exclude anyone.
func (r *SkipRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&db.Skip{})
	return res.RowsAffected, wrapDB(res.Error)
}
