package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/workexp/workexp-api/handlers"
	"github.com/workexp/workexp-api/internal/config"
	"github.com/workexp/workexp-api/internal/database"
	experienceservice "github.com/workexp/workexp-api/internal/experience/service"
	"github.com/workexp/workexp-api/internal/export"
	"github.com/workexp/workexp-api/internal/oidc"
	projectservice "github.com/workexp/workexp-api/internal/project/service"
	"github.com/workexp/workexp-api/internal/server"
	"github.com/workexp/workexp-api/internal/sessions"
	"github.com/workexp/workexp-api/internal/storage"
	"github.com/workexp/workexp-api/internal/tokens"
	"github.com/workexp/workexp-api/internal/users"
	"github.com/workexp/workexp-api/pkg/logger"
	"github.com/workexp/workexp-api/pkg/metrics"
	"github.com/workexp/workexp-api/pkg/middleware"
	"github.com/workexp/workexp-api/pkg/scheduler"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	mongoAttempts = 5
	exportTimeout = 5 * time.Minute
)

func main() {
	// LOG_LEVEL is applied again once config is loaded (it may come from .env)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	started := time.Now()
	health := handlers.HealthDeps{Checks: map[string]handlers.Check{}, Started: started}

	// MongoDB is optional: without it every store falls back to memory
	var db *mongo.Database
	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoAttempts, time.Second)
	if err != nil {
		logger.Warnf("could not connect to MongoDB after %d attempts, using in-memory storage: %v", mongoAttempts, err)
	} else {
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		db = client.Database(cfg.MongoDB.Database)
		health.DB = database.Pinger(client)
		logger.Infof("connected to MongoDB database %s", cfg.MongoDB.Database)
	}

	rdb := connectRedis(ctx, cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
		health.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	exps, projects, err := resourceServices(ctx, db)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Config:      cfg,
		Experiences: exps,
		Projects:    projects,
		Redis:       rdb,
		Health:      health,
	}

	if err := wireAuth(ctx, cfg, db, rdb, &deps); err != nil {
		return err
	}

	if cfg.MinIO.Enabled() {
		ex, objects, err := newExporter(ctx, cfg, db, exps)
		if err != nil {
			logger.Warnf("exports disabled: %v", err)
		} else {
			deps.Exporter = ex
			health.Checks["minio"] = objects.Ping
			if cfg.Export.Schedule != "" {
				sched, err := scheduler.New("export", cfg.Export.Schedule, ex.Job, exportTimeout)
				if err != nil {
					return fmt.Errorf("EXPORT_SCHEDULE: %w", err)
				}
				if err := sched.Start(ctx); err != nil {
					return err
				}
				defer sched.Stop()
			}
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	router := server.NewRouter(deps)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	logger.Infof("config summary: mongo=%v redis=%v jwt_secret_set=%v oidc=%v minio=%v auth_required=%v",
		db != nil, rdb != nil, cfg.JWT.Secret != "", cfg.OIDC.Enabled(), deps.Exporter != nil, cfg.JWT.AuthRequired)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr() == "" {
		return nil
	}
	c := redis.NewClient(&redis.Options{Addr: cfg.Addr(), Password: cfg.Password, DB: cfg.DB})
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pctx).Err(); err != nil {
		logger.Warnf("failed to connect to Redis (%s): %v", cfg.Addr(), err)
		_ = c.Close()
		return nil
	}
	logger.Infof("connected to Redis %s", cfg.Addr())
	return c
}

func resourceServices(ctx context.Context, db *mongo.Database) (experienceservice.Service, projectservice.Service, error) {
	if db == nil {
		return experienceservice.NewMemoryService(), projectservice.NewMemoryService(), nil
	}
	exps, err := experienceservice.NewMongoService(ctx, db.Collection("experiences"))
	if err != nil {
		return nil, nil, err
	}
	return exps, projectservice.NewMongoService(db.Collection("projects")), nil
}

// wireAuth sets up local accounts (JWT_SECRET) and the optional OIDC issuer.
func wireAuth(ctx context.Context, cfg *config.Config, db *mongo.Database, rdb *redis.Client, deps *server.Deps) error {
	var verifiers []middleware.Verifier
	if cfg.JWT.Secret != "" {
		verifiers = append(verifiers, tokens.NewVerifier(cfg.JWT.Secret))
	}
	if cfg.OIDC.Enabled() {
		ver, err := oidc.NewVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifiers = append(verifiers, ver)
		}
	}
	if len(verifiers) > 0 {
		deps.Verifier = middleware.AnyVerifier(verifiers...)
	}

	var (
		userRepo    users.UserRepository = users.NewMemoryUserRepository()
		sessionRepo sessions.Repository  = sessions.NewMemoryRepository()
		blacklist   sessions.Blacklist   = sessions.NewMemoryBlacklist()
	)
	if db != nil {
		ur, err := users.NewMongoUserRepository(ctx, db.Collection("users"))
		if err != nil {
			return err
		}
		sr, err := sessions.NewMongoRepository(ctx, db.Collection("sessions"))
		if err != nil {
			return err
		}
		userRepo, sessionRepo = ur, sr
	}
	// Redis wins for sessions and revocation when available
	if rdb != nil {
		sessionRepo = sessions.NewRedisRepository(rdb, "")
		blacklist = sessions.NewRedisBlacklist(rdb)
	}
	deps.Denylist = blacklist

	if cfg.JWT.Secret != "" {
		deps.Auth = handlers.NewAuthHandler(cfg.JWT, users.NewService(userRepo), sessions.NewService(sessionRepo), blacklist)
	}
	return nil
}

func newExporter(ctx context.Context, cfg *config.Config, db *mongo.Database, src export.Source) (*export.Exporter, *storage.MinIOStorage, error) {
	objects, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		return nil, nil, err
	}
	var records export.RecordStore = export.NewMemoryRecordStore()
	if db != nil {
		rs, err := export.NewMongoRecordStore(ctx, db.Collection("exports"))
		if err != nil {
			return nil, nil, err
		}
		records = rs
	}
	logger.Infof("exports enabled: bucket=%s schedule=%q", objects.Bucket(), cfg.Export.Schedule)
	return export.NewExporter(src, objects, records, cfg.Export.URLTTL), objects, nil
}
