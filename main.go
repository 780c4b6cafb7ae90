// package main provides the entry point for the dha-backend microservice,
// wiring the npm registry clients, the scoring core, the report store and the
// HTTP surface together.
package main

import (
	"context"
	"log"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/joho/godotenv"

	"github.com/dephealth/dha-backend/advisories"
	"github.com/dephealth/dha-backend/config"
	"github.com/dephealth/dha-backend/database"
	"github.com/dephealth/dha-backend/events"
	"github.com/dephealth/dha-backend/internal/api"
	"github.com/dephealth/dha-backend/registry"
	"github.com/dephealth/dha-backend/restapi/modules/audits"
	"github.com/dephealth/dha-backend/restapi/modules/github"
	"github.com/dephealth/dha-backend/scoring"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Reloadable settings. The config watch updates these in place; everything
	// else is boot-time.
	var concurrency atomic.Int32
	concurrency.Store(int32(cfg.Analyzer.Concurrency))
	database.SetLogLevel(cfg.Server.LogLevel)

	go func() {
		err := config.Watch(context.Background(), config.ConfigPath(), func(updated *config.Config) {
			concurrency.Store(int32(updated.Analyzer.Concurrency))
			database.SetLogLevel(updated.Server.LogLevel)
		})
		if err != nil {
			log.Printf("WARNING: config watch disabled: %v", err)
		}
	}()

	// Report store
	store, err := database.NewStore(cfg.Store.Backend)
	if err != nil {
		log.Fatalf("Failed to initialize report store: %v", err)
	}

	// Registry clients
	regClient := registry.NewClient(cfg.Registry.BaseURL, cfg.Registry.DownloadsURL, cfg.Registry.Timeout())
	waitForRegistry(regClient)

	var advClient scoring.AdvisoryFetcher
	if cfg.Advisories.Enabled {
		advClient = advisories.NewClient(cfg.Advisories.BaseURL, cfg.Registry.Timeout())
	}

	// Scoring core and HTTP surface
	svc := &audits.Service{
		Scorer:      scoring.NewScorer(regClient, advClient, nil),
		Store:       store,
		Hub:         events.NewHub(),
		GitHub:      github.NewService("", "", cfg.Registry.Timeout()),
		Concurrency: func() int { return int(concurrency.Load()) },
	}

	app := api.NewFiberApp(cfg, svc, svc.Hub)

	// Start server
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Starting server on port %s", port)
	log.Printf("GraphQL endpoint available at /api/v1/graphql")
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// waitForRegistry blocks until the registry answers, retrying with
// exponential backoff. A registry that stays unreachable for the whole
// window is a fatal startup error.
func waitForRegistry(client *registry.Client) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 2 * time.Minute

	err := backoff.RetryNotify(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return client.Ping(ctx)
	}, bo, func(err error, _ time.Duration) {
		log.Printf("Retrying registry probe: %v", err)
	})

	if err != nil {
		log.Fatalf("Registry unreachable: %v", err)
	}
}
