package main

import (
	"context"
	"flag"
	"os"

	"github.com/oggyb/muzz-matchmaker/internal/config"
	"github.com/oggyb/muzz-matchmaker/internal/db"
	"github.com/oggyb/muzz-matchmaker/internal/importer"
	"github.com/oggyb/muzz-matchmaker/internal/logger"
	"github.com/oggyb/muzz-matchmaker/internal/repository"
)

func main() {
	path := flag.String("file", "", "CSV file with columns age,city,bio,gender,preference")
	flag.Parse()

	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	if *path == "" {
		log.Error("missing -file")
		os.Exit(2)
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Error("failed to open csv", "path", *path, logger.Err(err))
		os.Exit(1)
	}
	defer f.Close()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", logger.Err(err))
		os.Exit(1)
	}

	im := importer.New(repository.NewProfileRepository(database), log)
	if _, err := im.Import(context.Background(), f); err != nil {
		log.Error("import failed", logger.Err(err))
		os.Exit(1)
	}
}
