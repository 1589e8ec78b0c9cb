package main

import (
	"flag"
	"math/rand/v2"
	"os"
	"time"

	"github.com/oggyb/muzz-matchmaker/internal/config"
	"github.com/oggyb/muzz-matchmaker/internal/db"
	"github.com/oggyb/muzz-matchmaker/internal/logger"
)

func main() {
	n := flag.Int("n", 200, "number of profiles to create")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	flag.Parse()

	// Load configuration
	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", logger.Err(err))
		os.Exit(1)
	}

	if err := db.SeedTestData(database, *n, rand.New(rand.NewPCG(*seed, *seed))); err != nil {
		log.Error("failed to seed", logger.Err(err))
		os.Exit(1)
	}

	log.Info("seeding completed", "profiles", *n, "seed", *seed)
}
