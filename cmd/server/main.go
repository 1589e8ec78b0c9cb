package main

import (
	"context"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oggyb/muzz-matchmaker/internal/app"
	"github.com/oggyb/muzz-matchmaker/internal/cache"
	"github.com/oggyb/muzz-matchmaker/internal/config"
	"github.com/oggyb/muzz-matchmaker/internal/db"
	"github.com/oggyb/muzz-matchmaker/internal/engine"
	"github.com/oggyb/muzz-matchmaker/internal/logger"
	"github.com/oggyb/muzz-matchmaker/internal/metrics"
	"github.com/oggyb/muzz-matchmaker/internal/notify"
	"github.com/oggyb/muzz-matchmaker/internal/server"
	"github.com/oggyb/muzz-matchmaker/internal/service/explore"
)

const skipSweepInterval = time.Hour

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", logger.Err(err))
		return
	}
	sqlDB, err := database.DB()
	if err != nil {
		log.Error("failed to get sql handle", logger.Err(err))
		return
	}
	defer sqlDB.Close()

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", logger.Err(err))
		return
	}
	defer redisCache.Close()

	m := metrics.New()

	// Notifications: Kafka when brokers are configured, logs otherwise
	var sink notify.Notifier = notify.NewLogNotifier(log)
	if len(cfg.Notify.KafkaBrokers) > 0 {
		kn := notify.NewKafkaNotifier(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
		defer kn.Close()
		sink = kn
		log.Info("publishing notifications to kafka", "brokers", cfg.Notify.KafkaBrokers, "topic", cfg.Notify.KafkaTopic)
	}
	dispatcher, err := notify.NewDispatcher(sink, notify.Options{
		PoolSize: cfg.Notify.PoolSize,
		Rate:     cfg.Notify.Rate,
		Burst:    cfg.Notify.Burst,
		Timeout:  cfg.Notify.Timeout,
	}, log, m)
	if err != nil {
		log.Error("failed to start notification dispatcher", logger.Err(err))
		return
	}
	defer func() {
		if err := dispatcher.Close(cfg.Notify.Timeout); err != nil {
			log.Warn("notification dispatcher did not drain", logger.Err(err))
		}
	}()

	eng := engine.New(engine.NewStores(database),
		engine.WithConfig(cfg),
		engine.WithNotifier(dispatcher),
		engine.WithLogger(log),
	)

	appCtx := app.New(cfg, database, redisCache, eng, m, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database, 200, rand.New(rand.NewPCG(1, 2))); err != nil {
			log.Error("failed to seed", logger.Err(err))
		}
	}

	go sweepSkips(ctx, eng)

	// ops HTTP: health + metrics
	router := server.NewOpsRouter(m.Registry, map[string]server.Pinger{
		"db":    sqlDB.PingContext,
		"redis": redisCache.Ping,
	})
	go func() {
		log.Info("starting ops http server", "addr", cfg.HTTP.Addr)
		if err := server.StartHTTPServer(ctx, cfg.HTTP.Addr, router, log); err != nil {
			log.Error("ops http server failed", logger.Err(err))
			stop()
		}
	}()

	grpcServer := server.NewGRPCServer(server.Options{
		Logger:         log,
		Metrics:        m,
		AdminTokenHash: cfg.Admin.TokenHash,
	}, explore.NewRegistrar(appCtx))

	addr := cfg.GRPC.Host + ":" + cfg.GRPC.Port
	log.Info("starting gRPC server", "addr", addr)

	if err := server.StartGRPCServer(ctx, cfg, grpcServer); err != nil {
		log.Error("failed to start gRPC server", logger.Err(err))
	}
	log.Info("shutting down")
}

// sweepSkips periodically drops expired skip rows until ctx is done.
func sweepSkips(ctx context.Context, eng *engine.Engine) {
	t := time.NewTicker(skipSweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := eng.PurgeExpiredSkips(ctx)
			if err != nil {
				logger.Warn("skip sweep failed", logger.Err(err))
				continue
			}
			if n > 0 {
				logger.Info("purged expired skips", "count", n)
			}
		}
	}
}
