package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mdsetiawan/facility-directory/internal/adapters/database"
	"github.com/mdsetiawan/facility-directory/internal/adapters/search"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/clients/postgres"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/clients/typesense"
	"github.com/mdsetiawan/facility-directory/pkg/config"
)

const indexBatchSize = 500

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	facilityRepo := database.NewFacilityAdapter(pgClient)

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Println("Deleting facilities collection before reindexing")
		_, err := tsClient.Client().Collection(typesense.FacilitiesCollection).Delete(ctx)
		if err != nil {
			log.Printf("Warning: failed to delete collection: %v", err)
		}
	}

	if err := tsClient.InitSchema(ctx); err != nil {
		return err
	}

	adapter := search.NewTypesenseAdapter(tsClient)

	indexed := 0
	for offset := 0; ; offset += indexBatchSize {
		facilities, err := facilityRepo.List(ctx, repositories.FacilityFilter{
			Limit:  indexBatchSize,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		if len(facilities) == 0 {
			break
		}

		for _, f := range facilities {
			if f == nil {
				continue
			}
			if err := adapter.Index(ctx, f); err != nil {
				log.Printf("Warning: failed to index facility %s: %v", f.ID, err)
				continue
			}
			indexed++
		}

		if len(facilities) < indexBatchSize {
			break
		}
	}

	log.Printf("Indexed %d facilities", indexed)
	return nil
}
