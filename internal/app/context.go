package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matchmaker/internal/cache"
	"github.com/oggyb/muzz-matchmaker/internal/config"
	"github.com/oggyb/muzz-matchmaker/internal/engine"
	"github.com/oggyb/muzz-matchmaker/internal/metrics"
)

// AppContext holds shared dependencies (DB, Redis, Engine, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Engine     *engine.Engine
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(
	cfg *config.Config,
	db *gorm.DB,
	rdb *cache.RedisCache,
	eng *engine.Engine,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Engine:     eng,
		Metrics:    m,
		Logger:     logger,
	}
}
