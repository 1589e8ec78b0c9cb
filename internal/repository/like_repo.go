package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matchmaker/internal/db"
	"github.com/oggyb/muzz-matchmaker/internal/utils/pagination"
)

// LikeRepository provides data access methods for the Like relation.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// Upsert records from → to.
//
// Behavior:
//   - If the (from, to) pair exists → only updated_at is refreshed.
//   - If it doesn't exist → a new row is inserted.
//   - Composite PK makes repeat likes a no-op.
//
// The write commits on its own (no enclosing transaction) so a concurrent
// reverse like is guaranteed to observe it; see InteractionService.RecordLike.
func (r *LikeRepository) Upsert(ctx context.Context, fromID, toID uint64) error {
	like := db.Like{FromUserID: fromID, ToUserID: toID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		}).
		Create(&like).Error
	return wrapDB(err)
}

// Exists checks whether from has liked to.
//
// Example:
//
//	repo.Exists(ctx, 1, 2) // -> true if user 1 liked user 2
func (r *LikeRepository) Exists(ctx context.Context, fromID, toID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("from_user_id = ? AND to_user_id = ?", fromID, toID).
		Count(&count).Error
	return count > 0, wrapDB(err)
}

// Delete removes from → to and reports whether a row was there.
func (r *LikeRepository) Delete(ctx context.Context, fromID, toID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromID, toID).
		Delete(&db.Like{})
	return res.RowsAffected > 0, wrapDB(res.Error)
}

// pendingQuery selects likes received by recipient that are still one-way:
// the recipient has not liked back and neither side blocked the other.
func (r *LikeRepository) pendingQuery(ctx context.Context, recipientID uint64) *gorm.DB {
	likedBack := r.db.
		Table("likes").
		Select("1").
		Where("from_user_id = l.to_user_id AND to_user_id = l.from_user_id")

	return r.db.WithContext(ctx).
		Table("likes l").
		Where("l.to_user_id = ? AND NOT EXISTS (?)", recipientID, likedBack).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM blocks b
				WHERE (b.blocker_id = l.to_user_id AND b.blocked_id = l.from_user_id)
				   OR (b.blocker_id = l.from_user_id AND b.blocked_id = l.to_user_id)
			)`)
}

// PendingLikers returns ids of users who liked recipient and are still waiting
// for an answer, newest first.
func (r *LikeRepository) PendingLikers(ctx context.Context, recipientID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.pendingQuery(ctx, recipientID).
		Order("l.created_at DESC, l.from_user_id DESC").
		Pluck("l.from_user_id", &ids).Error
	if err != nil {
		return nil, wrapDB(err)
	}
	return ids, nil
}

// PendingLikersPage is the cursor-paginated form of PendingLikers.
//
// Behavior:
//   - Ordered by created_at DESC, from_user_id DESC.
//   - Fetches limit+1 rows to know whether another page exists.
//   - Returns a nil token on the last page.
//   - A limit below 1 is treated as 1.
func (r *LikeRepository) PendingLikersPage(
	ctx context.Context,
	recipientID uint64,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	limit = max(limit, 1)
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.pendingQuery(ctx, recipientID).
		Select("l.*").
		Order("l.created_at DESC, l.from_user_id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.UserID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix).UTC()
		query = query.Where(
			"(l.created_at < ? OR (l.created_at = ? AND l.from_user_id < ?))",
			ts, ts, cursor.UserID,
		)
	}

	var likes []db.Like
	if err := query.Find(&likes).Error; err != nil {
		return nil, nil, wrapDB(err)
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(likes) > limit {
		last := likes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			UserID:      last.FromUserID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		likes = likes[:limit]
	}

	return likes, nextToken, nil
}

// CountPending returns how many pending likers recipient has.
// Used in conjunction with the Redis cache (DB is the fallback).
func (r *LikeRepository) CountPending(ctx context.Context, recipientID uint64) (int64, error) {
	var count int64
	err := r.pendingQuery(ctx, recipientID).Count(&count).Error
	return count, wrapDB(err)
}

// CountSent returns how many likes the user has given.
func (r *LikeRepository) CountSent(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Like{}).Where("from_user_id = ?", userID).Count(&count).Error
	return count, wrapDB(err)
}

// CountReceived returns how many likes the user has received.
func (r *LikeRepository) CountReceived(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Like{}).Where("to_user_id = ?", userID).Count(&count).Error
	return count, wrapDB(err)
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
