package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, 5*time.Second, cfg.Engine.BrowseCooldown)
	assert.Equal(t, time.Hour, cfg.Engine.BrowseWindow)
	assert.Equal(t, 50, cfg.Engine.BrowseQuota)
	assert.Equal(t, 7*24*time.Hour, cfg.Engine.SkipTTL)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Empty(t, cfg.Notify.KafkaBrokers)
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("BROWSE_COOLDOWN", "10")
	t.Setenv("BROWSE_WINDOW", "30m")
	t.Setenv("BROWSE_QUOTA", "7")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("MYSQL_DSN", "u:p@tcp(db:3306)/x")

	cfg := New()

	assert.Equal(t, 10*time.Second, cfg.Engine.BrowseCooldown)
	assert.Equal(t, 30*time.Minute, cfg.Engine.BrowseWindow)
	assert.Equal(t, 7, cfg.Engine.BrowseQuota)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Notify.KafkaBrokers)
	assert.Equal(t, "u:p@tcp(db:3306)/x", cfg.DB.DSN)
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " on "} {
		assert.True(t, isTruthy(v), v)
	}
	for _, v := range []string{"", "0", "off", "nope"} {
		assert.False(t, isTruthy(v), v)
	}
}
