// Command export writes one experience snapshot to object storage and
// exits. It is meant for external schedulers (Kubernetes CronJob, systemd
// timers) when EXPORT_SCHEDULE is not used in the API process.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/workexp/workexp-api/internal/config"
	"github.com/workexp/workexp-api/internal/database"
	experienceservice "github.com/workexp/workexp-api/internal/experience/service"
	"github.com/workexp/workexp-api/internal/export"
	"github.com/workexp/workexp-api/internal/storage"
	"github.com/workexp/workexp-api/pkg/logger"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "abort the export after this long")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, *timeout)
	stop()
	if err != nil {
		logger.Fatalf("export failed: %v", err)
	}
}

// run owns every resource it opens, so all deferred cleanup happens before
// main decides the exit code.
func run(ctx context.Context, cfg *config.Config, timeout time.Duration) error {
	if !cfg.MinIO.Enabled() {
		return errors.New("MINIO_ENDPOINT is not set")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// an export of an empty in-memory store is useless, so Mongo is required here
	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		_ = client.Disconnect(dctx)
	}()
	db := client.Database(cfg.MongoDB.Database)

	exps, err := experienceservice.NewMongoService(ctx, db.Collection("experiences"))
	if err != nil {
		return fmt.Errorf("experience store: %w", err)
	}
	records, err := export.NewMongoRecordStore(ctx, db.Collection("exports"))
	if err != nil {
		return fmt.Errorf("export records: %w", err)
	}
	objects, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("object storage: %w", err)
	}

	rec, err := export.NewExporter(exps, objects, records, cfg.Export.URLTTL).Run(ctx, export.TriggerSchedule)
	if err != nil {
		return err
	}
	logger.Infof("export %s ready: %d experiences at %s", rec.ID, rec.Count, rec.URL)
	return nil
}
