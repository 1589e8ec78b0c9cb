package db

import (
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool { return g == GenderMale || g == GenderFemale }

// Preference is who a profile wants to see.
type Preference string

const (
	PreferMale   Preference = "male"
	PreferFemale Preference = "female"
	PreferBoth   Preference = "both"
)

func (p Preference) Valid() bool {
	return p == PreferMale || p == PreferFemale || p == PreferBoth
}

// Accepts reports whether a profile with this preference wants to see gender g.
func (p Preference) Accepts(g Gender) bool {
	return p == PreferBoth || string(p) == string(g)
}

// Status is a bit set; zero means active.
type Status uint8

const (
	StatusBanned Status = 1 << iota
	StatusArchived
)

// StatusHidden covers every flag that removes a profile from browsing.
const StatusHidden = StatusBanned | StatusArchived

func (s Status) Has(f Status) bool { return s&f != 0 }

// Profile is the single row per user. UserID is assigned by the chat transport.
//
// Rate-limit state (LastBrowseAt, BrowseCount, WindowStartAt) lives on the row so the
// browse gate can be a single read-modify-write under a row lock.
type Profile struct {
	UserID        uint64     `gorm:"primaryKey;autoIncrement:false"`
	Username      string     `gorm:"size:64;index"`
	Age           int        `gorm:"not null;index:idx_profile_city_gender_age,priority:3"`
	Gender        Gender     `gorm:"size:8;not null;index:idx_profile_city_gender_age,priority:2"`
	City          string     `gorm:"size:128;not null;index:idx_profile_city_gender_age,priority:1"`
	Preference    Preference `gorm:"size:8;not null"`
	Bio           string     `gorm:"size:1024"`
	FilterMinAge  *int
	FilterMaxAge  *int
	Status        Status    `gorm:"not null;default:0;index"`
	ViewCount     int64     `gorm:"not null;default:0"`
	LastActive    time.Time `gorm:"index"`
	LastBrowseAt  *time.Time
	BrowseCount   int `gorm:"not null;default:0"`
	WindowStartAt *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (p *Profile) Hidden() bool { return p.Status.Has(StatusHidden) }

// Like is a directed edge. Composite PK gives one row per ordered pair.
//
// Indexes:
//   - idx_like_to_created(to_user_id, created_at DESC, from_user_id)
//     serves "who liked me" listings with cursor pagination.
type Like struct {
	FromUserID uint64    `gorm:"primaryKey;autoIncrement:false"`
	ToUserID   uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_like_to_created,priority:1"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_like_to_created,priority:2,sort:desc"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// Skip is a directed, time-boxed exclusion. Expired rows stay until purged.
type Skip struct {
	FromUserID uint64    `gorm:"primaryKey;autoIncrement:false"`
	ToUserID   uint64    `gorm:"primaryKey;autoIncrement:false"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// Block is stored directed but checked in both directions.
type Block struct {
	BlockerID uint64    `gorm:"primaryKey;autoIncrement:false"`
	BlockedID uint64    `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Match is an unordered pair kept canonical: User1ID < User2ID.
type Match struct {
	User1ID   uint64    `gorm:"primaryKey;autoIncrement:false"`
	User2ID   uint64    `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

// CanonicalPair orders a and b so the smaller id comes first.
func CanonicalPair(a, b uint64) (uint64, uint64) {
	if a > b {
		return b, a
	}
	return a, b
}

// AllModels lists every table for migrations.
func AllModels() []any {
	return []any{&Profile{}, &Like{}, &Skip{}, &Block{}, &Match{}}
}
