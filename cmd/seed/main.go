package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/devtree/devtree/backend/api/internal/app"
	"github.com/devtree/devtree/backend/api/internal/config"
	"github.com/devtree/devtree/backend/api/internal/database"
	"github.com/devtree/devtree/backend/api/internal/seed"
	"github.com/devtree/devtree/backend/api/internal/storage"
	"github.com/devtree/devtree/backend/api/pkg/logger"
)

func main() {
	demo := flag.Bool("demo", false, "also create the demo account and its public trees")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		logger.Fatalf("cannot connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDB.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Fatalf("failed to ensure indexes: %v", err)
	}

	var icons storage.IconStore
	if s, err := storage.NewMinIOStorage(ctx, cfg.MinIO); err == nil {
		icons = s
	} else {
		logger.Warnf("icon store unavailable: %v", err)
	}
	svc := app.NewServices(app.MongoRepos(db), icons)

	res, err := seed.Badges(ctx, svc)
	if err != nil {
		logger.Fatalf("seed badges: %v", err)
	}
	logger.Infof("badges seeded, %d icons uploaded", res.Icons)

	if *demo {
		res, err := seed.Demo(ctx, svc)
		if err != nil {
			logger.Fatalf("seed demo: %v", err)
		}
		logger.Infof("demo seeded: %d trees, %d nodes", res.Trees, res.Nodes)
	}
}
