package engine

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oggyb/muzz-matchmaker/internal/db"
	"github.com/oggyb/muzz-matchmaker/internal/repository"
)

const (
	MinAge    = 16
	MaxAge    = 99
	maxBioLen = 1024
)

// Registration is the user-editable part of a profile.
type Registration struct {
	UserID       uint64
	Username     string
	Age          int
	Gender       db.Gender
	City         string
	Preference   db.Preference
	Bio          string
	FilterMinAge *int
	FilterMaxAge *int
}

// NormalizeCity trims, lowercases and collapses inner whitespace.
func NormalizeCity(city string) string {
	return strings.Join(strings.Fields(strings.ToLower(city)), " ")
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidProfile}, args...)...)
}

// ValidAge reports whether age is accepted for registration.
func ValidAge(age int) bool { return age >= MinAge && age <= MaxAge }

func (r *Registration) validate() error {
	switch {
	case r.UserID == 0:
		return invalid("user id is required")
	case !ValidAge(r.Age):
		return invalid("age must be between %d and %d", MinAge, MaxAge)
	case !r.Gender.Valid():
		return invalid("unknown gender %q", r.Gender)
	case !r.Preference.Valid():
		return invalid("unknown preference %q", r.Preference)
	case r.City == "":
		return invalid("city is required")
	case utf8.RuneCountInString(r.Bio) > maxBioLen:
		return invalid("bio longer than %d characters", maxBioLen)
	}
	if r.FilterMinAge != nil && r.FilterMaxAge != nil && *r.FilterMinAge > *r.FilterMaxAge {
		return invalid("filter_min_age above filter_max_age")
	}
	return nil
}

// RegisterProfile creates the profile or replaces its attributes. Status,
// view count and browse state survive re-registration.
func (e *Engine) RegisterProfile(ctx context.Context, r Registration) (*db.Profile, error) {
	r.City = NormalizeCity(r.City)
	r.Bio = strings.TrimSpace(r.Bio)
	if err := r.validate(); err != nil {
		return nil, err
	}

	p := &db.Profile{
		UserID:       r.UserID,
		Username:     r.Username,
		Age:          r.Age,
		Gender:       r.Gender,
		City:         r.City,
		Preference:   r.Preference,
		Bio:          r.Bio,
		FilterMinAge: r.FilterMinAge,
		FilterMaxAge: r.FilterMaxAge,
		LastActive:   e.clock(),
	}
	if err := e.profiles.Upsert(ctx, p); err != nil {
		return nil, storeErr(err)
	}
	return e.GetProfile(ctx, r.UserID)
}

func (e *Engine) GetProfile(ctx context.Context, userID uint64) (*db.Profile, error) {
	p, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return p, nil
}

// TouchActivity marks the user active now and lifts an archived flag.
func (e *Engine) TouchActivity(ctx context.Context, userID uint64) error {
	return storeErr(e.profiles.Touch(ctx, userID, e.clock()))
}

func (e *Engine) Ban(ctx context.Context, userID uint64) error {
	return storeErr(e.profiles.SetStatus(ctx, userID, db.StatusBanned, true))
}

func (e *Engine) Unban(ctx context.Context, userID uint64) error {
	return storeErr(e.profiles.SetStatus(ctx, userID, db.StatusBanned, false))
}

func (e *Engine) Archive(ctx context.Context, userID uint64) error {
	return storeErr(e.profiles.SetStatus(ctx, userID, db.StatusArchived, true))
}

// ArchiveInactive archives every profile idle since before.
func (e *Engine) ArchiveInactive(ctx context.Context, before time.Time) (int64, error) {
	n, err := e.profiles.ArchiveInactive(ctx, before)
	return n, storeErr(err)
}

// Purge hard-deletes the user and all relations referencing them.
// liked lists the users the purged profile had liked.
func (e *Engine) Purge(ctx context.Context, userID uint64) (liked []uint64, err error) {
	liked, err = e.profiles.Purge(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	e.log.Info("profile purged", "user", userID, "likes_removed", len(liked))
	return liked, nil
}

// Presence is a coarse label derived from last activity.
type Presence string

const (
	PresenceOnline   Presence = "online"
	PresenceRecently Presence = "recently"
	PresenceOffline  Presence = "offline"
)

// OnlineStatus classifies lastActive relative to now.
func OnlineStatus(lastActive, now time.Time, window time.Duration) Presence {
	if lastActive.IsZero() {
		return PresenceOffline
	}
	idle := now.Sub(lastActive)
	switch {
	case idle <= window:
		return PresenceOnline
	case idle <= 24*time.Hour:
		return PresenceRecently
	default:
		return PresenceOffline
	}
}

// OnlineStatus classifies p using the engine clock and window.
func (e *Engine) OnlineStatus(p *db.Profile) Presence {
	return OnlineStatus(p.LastActive, e.clock(), e.onlineWindow)
}

// UserStats summarizes one profile's activity.
type UserStats struct {
	ViewCount     int64
	LikesSent     int64
	LikesReceived int64
	Matches       int64
	BrowsesUsed   int
	BrowseQuota   int
}

func (e *Engine) UserStats(ctx context.Context, userID uint64) (*UserStats, error) {
	p, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	s := &UserStats{
		ViewCount:   p.ViewCount,
		BrowsesUsed: e.policy.UsedInWindow(p, e.clock()),
		BrowseQuota: e.policy.Quota,
	}
	if s.LikesSent, err = e.likes.CountSent(ctx, userID); err != nil {
		return nil, storeErr(err)
	}
	if s.LikesReceived, err = e.likes.CountReceived(ctx, userID); err != nil {
		return nil, storeErr(err)
	}
	if s.Matches, err = e.matches.Count(ctx, userID); err != nil {
		return nil, storeErr(err)
	}
	return s, nil
}

func (e *Engine) GlobalStats(ctx context.Context) (*repository.GlobalStats, error) {
	s, err := e.stats.Global(ctx, e.clock())
	return s, storeErr(err)
}
