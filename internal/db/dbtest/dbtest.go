// Package dbtest opens isolated in-memory databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/muzz-matchmaker/internal/db"
)

// Open spins up an in-memory SQLite DB private to t and applies migrations.
//
// A single connection is used so the shared-cache database behaves like one
// serialized MySQL session under concurrent test goroutines.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		NowFunc:                db.NowFunc,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// Profile builds a visible profile with sensible defaults.
func Profile(id uint64, age int, gender db.Gender, city string, pref db.Preference) db.Profile {
	return db.Profile{
		UserID:     id,
		Username:   fmt.Sprintf("user%d", id),
		Age:        age,
		Gender:     gender,
		City:       city,
		Preference: pref,
		LastActive: time.Now().UTC(),
	}
}

// Insert writes profiles directly, bypassing validation.
func Insert(t *testing.T, gdb *gorm.DB, profiles ...db.Profile) {
	t.Helper()
	require.NoError(t, gdb.Create(&profiles).Error)
}
