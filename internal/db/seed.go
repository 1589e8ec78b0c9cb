package db

import (
	"fmt"
	"math/rand/v2"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matchmaker/internal/logger"
)

var seedCities = []string{"london", "manchester", "leeds", "bristol"}

// relationTables are cleared before profiles so a reseed never leaves orphans.
var relationTables = []string{"likes", "skips", "blocks", "matches"}

// Reset deletes every row from every table.
func Reset(db *gorm.DB) error {
	for _, t := range append(relationTables, "profiles") {
		if err := db.Exec("DELETE FROM " + t).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", t, err)
		}
	}
	return nil
}

// SeedTestData resets the database and populates it with demo profiles and likes.
//
// Behavior:
//  1. Clears every table.
//  2. Creates n profiles spread over a handful of cities, alternating gender.
//  3. Each profile likes ~8 random opposite-gender profiles; every 3rd like is
//     made mutual and recorded as a match.
func SeedTestData(db *gorm.DB, n int, r *rand.Rand) error {
	if err := Reset(db); err != nil {
		return err
	}
	logger.Info("cleared existing data")

	now := time.Now().UTC()
	profiles := make([]Profile, 0, n)
	for i := 1; i <= n; i++ {
		gender := GenderMale
		pref := PreferFemale
		if i%2 == 0 {
			gender, pref = GenderFemale, PreferMale
		}
		if i%7 == 0 {
			pref = PreferBoth
		}
		profiles = append(profiles, Profile{
			UserID:     uint64(i),
			Username:   fmt.Sprintf("user%d", i),
			Age:        18 + r.IntN(30),
			Gender:     gender,
			City:       seedCities[r.IntN(len(seedCities))],
			Preference: pref,
			Bio:        fmt.Sprintf("demo profile %d", i),
			LastActive: now.Add(-time.Duration(r.IntN(500)) * time.Hour),
		})
	}
	if err := db.CreateInBatches(&profiles, 200).Error; err != nil {
		return fmt.Errorf("failed to seed profiles: %w", err)
	}
	logger.Info("seeded profiles", "count", n)

	counter := 0
	for i := range profiles {
		from := &profiles[i]
		for j := 0; j < 8; j++ {
			to := &profiles[r.IntN(len(profiles))]
			if to.UserID == from.UserID || !from.Preference.Accepts(to.Gender) {
				continue
			}
			if err := seedLike(db, from.UserID, to.UserID); err != nil {
				return err
			}
			if counter%3 == 0 {
				if err := seedLike(db, to.UserID, from.UserID); err != nil {
					return err
				}
				lo, hi := CanonicalPair(from.UserID, to.UserID)
				if err := db.Clauses(clause.OnConflict{DoNothing: true}).
					Create(&Match{User1ID: lo, User2ID: hi}).Error; err != nil {
					return fmt.Errorf("failed to seed match: %w", err)
				}
			}
			counter++
		}
	}
	logger.Info("seeded likes", "count", counter)
	return nil
}

func seedLike(db *gorm.DB, from, to uint64) error {
	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Like{FromUserID: from, ToUserID: to}).Error
	if err != nil {
		return fmt.Errorf("failed to seed like: %w", err)
	}
	return nil
}

// SeedMinimalTestData resets the database and inserts a small deterministic set.
//
// Dataset:
//   - 1 male/london/25 wants female
//   - 2 female/london/24 wants male
//   - 3 female/leeds/30 wants both
//   - likes: 1 → 2, 2 → 1 (matched), 3 → 1 (pending for 1)
func SeedMinimalTestData(db *gorm.DB) error {
	if err := Reset(db); err != nil {
		return err
	}

	now := time.Now().UTC()
	profiles := []Profile{
		{UserID: 1, Username: "user1", Age: 25, Gender: GenderMale, City: "london", Preference: PreferFemale, LastActive: now},
		{UserID: 2, Username: "user2", Age: 24, Gender: GenderFemale, City: "london", Preference: PreferMale, LastActive: now},
		{UserID: 3, Username: "user3", Age: 30, Gender: GenderFemale, City: "leeds", Preference: PreferBoth, LastActive: now},
	}
	if err := db.Create(&profiles).Error; err != nil {
		return err
	}

	likes := []Like{
		{FromUserID: 1, ToUserID: 2},
		{FromUserID: 2, ToUserID: 1},
		{FromUserID: 3, ToUserID: 1},
	}
	if err := db.Create(&likes).Error; err != nil {
		return err
	}
	return db.Create(&Match{User1ID: 1, User2ID: 2}).Error
}
