package repository

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matchmaker/internal/db"
)

// CandidateQuery narrows the eligible pool to one selection tier.
type CandidateQuery struct {
	Viewer *db.Profile
	// SameCity restricts candidates to the viewer's city.
	SameCity bool
	// Reciprocal requires the candidate's own preference to accept the viewer's gender.
	Reciprocal bool
	// Now is compared against skip expiry.
	Now time.Time
}

// CandidateRepository runs the read-only eligibility queries behind browsing.
type CandidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository creates a new repository bound to the given DB connection.
func NewCandidateRepository(database *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db: database}
}

// eligible builds the filter shared by every tier.
//
// A profile p is eligible for viewer v when:
//   - p is not v and carries no hidden status flag
//   - v has not liked p and they are not already matched
//   - no block exists between them in either direction
//   - v has no unexpired skip on p
//   - p's gender fits v's preference and p's age fits v's filters
func (r *CandidateRepository) eligible(ctx context.Context, q CandidateQuery) *gorm.DB {
	v := q.Viewer
	query := r.db.WithContext(ctx).
		Table("profiles p").
		Where("p.user_id <> ?", v.UserID).
		Where("(p.status & ?) = 0", uint8(db.StatusHidden)).
		Where("NOT EXISTS (SELECT 1 FROM likes l WHERE l.from_user_id = ? AND l.to_user_id = p.user_id)", v.UserID).
		Where(`NOT EXISTS (
			SELECT 1 FROM blocks b
			WHERE (b.blocker_id = ? AND b.blocked_id = p.user_id)
			   OR (b.blocker_id = p.user_id AND b.blocked_id = ?)
		)`, v.UserID, v.UserID).
		Where(`NOT EXISTS (
			SELECT 1 FROM skips s
			WHERE s.from_user_id = ? AND s.to_user_id = p.user_id AND s.expires_at > ?
		)`, v.UserID, q.Now).
		Where(`NOT EXISTS (
			SELECT 1 FROM matches m
			WHERE (m.user1_id = ? AND m.user2_id = p.user_id)
			   OR (m.user1_id = p.user_id AND m.user2_id = ?)
		)`, v.UserID, v.UserID)

	if v.Preference != db.PreferBoth {
		query = query.Where("p.gender = ?", string(v.Preference))
	}
	if v.FilterMinAge != nil {
		query = query.Where("p.age >= ?", *v.FilterMinAge)
	}
	if v.FilterMaxAge != nil {
		query = query.Where("p.age <= ?", *v.FilterMaxAge)
	}
	if q.SameCity {
		query = query.Where("p.city = ?", v.City)
	}
	if q.Reciprocal {
		query = query.Where("(p.preference = ? OR p.preference = ?)", string(db.PreferBoth), string(v.Gender))
	}
	return query
}

// ClosestCandidates returns every eligible profile sharing the smallest age
// distance to the viewer. An empty slice means the tier has no one.
//
// Ties are returned as a set; picking one is left to the caller.
func (r *CandidateRepository) ClosestCandidates(ctx context.Context, q CandidateQuery) ([]db.Profile, error) {
	var best sql.NullInt64
	err := r.eligible(ctx, q).
		Select("MIN(ABS(p.age - ?))", q.Viewer.Age).
		Row().
		Scan(&best)
	if err != nil {
		return nil, wrapDB(err)
	}
	if !best.Valid {
		return nil, nil
	}

	var out []db.Profile
	err = r.eligible(ctx, q).
		Select("p.*").
		Where("ABS(p.age - ?) = ?", q.Viewer.Age, best.Int64).
		Order("p.user_id").
		Find(&out).Error
	if err != nil {
		return nil, wrapDB(err)
	}
	return out, nil
}
