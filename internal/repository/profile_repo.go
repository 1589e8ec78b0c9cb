package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matchmaker/internal/db"
)

// ProfileRepository provides data access for the profiles table.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// Get loads a single profile. Missing rows yield ErrNotFound.
func (r *ProfileRepository) Get(ctx context.Context, userID uint64) (*db.Profile, error) {
	var p db.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, wrapDB(err)
	}
	return &p, nil
}

// Exists reports whether a profile row exists for every given id.
func (r *ProfileRepository) Exists(ctx context.Context, userIDs ...uint64) (bool, error) {
	want := make(map[uint64]struct{}, len(userIDs))
	for _, id := range userIDs {
		want[id] = struct{}{}
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("user_id IN ?", userIDs).
		Count(&count).Error
	if err != nil {
		return false, wrapDB(err)
	}
	return count == int64(len(want)), nil
}

// Upsert creates the profile or replaces its user-editable attributes.
//
// Status, view count and rate-limit fields are never overwritten here, so
// re-registering cannot lift a ban or reset a browse window.
func (r *ProfileRepository) Upsert(ctx context.Context, p *db.Profile) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username", "age", "gender", "city", "preference", "bio",
				"filter_min_age", "filter_max_age", "last_active", "updated_at",
			}),
		}).
		Create(p).Error
	return wrapDB(err)
}

// BulkInsert inserts new profiles in batches; existing ids are left untouched.
func (r *ProfileRepository) BulkInsert(ctx context.Context, profiles []db.Profile) (int64, error) {
	if len(profiles) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&profiles, 200)
	return res.RowsAffected, wrapDB(res.Error)
}

// MaxUserID returns the highest id in use, 0 for an empty table.
func (r *ProfileRepository) MaxUserID(ctx context.Context) (uint64, error) {
	var maxID uint64
	err := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Select("COALESCE(MAX(user_id), 0)").
		Row().
		Scan(&maxID)
	return maxID, wrapDB(err)
}

// ConsumeBrowse runs decide against the locked profile row and, when it returns
// true, persists the rate-limit fields it modified in the same transaction.
//
// This is the only write path for LastBrowseAt/BrowseCount/WindowStartAt, which
// keeps the browse gate a single read-modify-write per row.
func (r *ProfileRepository) ConsumeBrowse(
	ctx context.Context,
	userID uint64,
	decide func(p *db.Profile) bool,
) (*db.Profile, error) {
	var p db.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&p).Error; err != nil {
			return err
		}
		if !decide(&p) {
			return nil
		}
		return tx.Model(&db.Profile{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{
				"last_browse_at":  p.LastBrowseAt,
				"browse_count":    p.BrowseCount,
				"window_start_at": p.WindowStartAt,
			}).Error
	})
	if err != nil {
		return nil, wrapDB(err)
	}
	return &p, nil
}

// IncrementViewCount bumps the candidate's view counter. Lost updates under
// concurrent viewers are tolerated.
func (r *ProfileRepository) IncrementViewCount(ctx context.Context, userID uint64) error {
	err := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("user_id = ?", userID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	return wrapDB(err)
}

// SetStatus sets or clears flag on the profile.
func (r *ProfileRepository) SetStatus(ctx context.Context, userID uint64, flag db.Status, on bool) error {
	expr := gorm.Expr("status | ?", uint8(flag))
	if !on {
		expr = gorm.Expr("status & ?", uint8(^flag))
	}
	res := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("user_id = ?", userID).
		UpdateColumn("status", expr)
	return r.checkAffected(ctx, res, userID)
}

// checkAffected turns a zero-row update into ErrNotFound when the row is missing.
// MySQL reports rows whose values did not change as unaffected, hence the lookup.
func (r *ProfileRepository) checkAffected(ctx context.Context, res *gorm.DB, userID uint64) error {
	if res.Error != nil {
		return wrapDB(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	ok, err := r.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Touch records activity and lifts the archived flag.
func (r *ProfileRepository) Touch(ctx context.Context, userID uint64, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("user_id = ?", userID).
		UpdateColumns(map[string]any{
			"last_active": now,
			"status":      gorm.Expr("status & ?", uint8(^db.StatusArchived)),
		})
	return r.checkAffected(ctx, res, userID)
}

// ArchiveInactive flags every visible profile idle since before.
func (r *ProfileRepository) ArchiveInactive(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("last_active < ? AND (status & ?) = 0", before, uint8(db.StatusArchived)).
		UpdateColumn("status", gorm.Expr("status | ?", uint8(db.StatusArchived)))
	return res.RowsAffected, wrapDB(res.Error)
}

// Purge hard-deletes the profile together with every relation row that
// references it. It returns the users the profile had liked, whose pending
// likers lists shrink with it.
func (r *ProfileRepository) Purge(ctx context.Context, userID uint64) ([]uint64, error) {
	var liked []uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Like{}).
			Where("from_user_id = ?", userID).
			Pluck("to_user_id", &liked).Error; err != nil {
			return err
		}
		steps := []struct {
			model any
			where string
		}{
			{&db.Like{}, "from_user_id = ? OR to_user_id = ?"},
			{&db.Skip{}, "from_user_id = ? OR to_user_id = ?"},
			{&db.Block{}, "blocker_id = ? OR blocked_id = ?"},
			{&db.Match{}, "user1_id = ? OR user2_id = ?"},
		}
		for _, s := range steps {
			if err := tx.Where(s.where, userID, userID).Delete(s.model).Error; err != nil {
				return err
			}
		}
		res := tx.Where("user_id = ?", userID).Delete(&db.Profile{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, wrapDB(err)
	}
	return liked, nil
}
