// @title                       User Accounts API
// @version                     1.0
// @description                 Registration, login and self-service profile management for admin and superadmin accounts.
// @host                        localhost:4006
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/adminhub/user-accounts/internal/api"
	"github.com/adminhub/user-accounts/internal/api/handler"
	"github.com/adminhub/user-accounts/internal/core/service"
	"github.com/adminhub/user-accounts/internal/infrastructure/config"
	"github.com/adminhub/user-accounts/internal/infrastructure/db/mongo"
	"github.com/adminhub/user-accounts/internal/infrastructure/db/redis"
	"github.com/adminhub/user-accounts/internal/infrastructure/queue"
	"github.com/adminhub/user-accounts/internal/infrastructure/storage"
	"github.com/adminhub/user-accounts/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
		File:   cfg.LogFile,
	})
	defer logger.Close()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	store, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "user-accounts",
	})
	if err != nil {
		return err
	}
	defer closeMongo(store, log)

	users := mongo.NewUserRepository(store.DB)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}()

	images, err := storage.NewLocalImageStore(cfg.Uploads.Dir, cfg.Uploads.BaseURL)
	if err != nil {
		return err
	}

	// --- Background workers ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	janitor := queue.NewImageJanitor(cfg.Uploads.JanitorWorkers, images, log.With().Str("component", "janitor").Logger())
	janitor.Start(workerCtx)
	defer func() {
		stopWorkers()
		janitor.Wait()
	}()

	// --- Services ---
	tokens := service.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	accounts := service.NewAccountService(
		users,
		service.NewBcryptHasher(cfg.Auth.BcryptCost),
		tokens,
		images,
		janitor,
		redis.NewRegistrationLock(rdb),
		log.With().Str("component", "accounts").Logger(),
	)

	e := api.NewRouter(api.Deps{
		Accounts:  accounts,
		Tokens:    tokens,
		UploadDir: cfg.Uploads.Dir,
		Log:       log,
		Health: map[string]handler.Pinger{
			"mongodb": handler.PingFunc(func(ctx context.Context) error {
				return store.Client.Ping(ctx, readpref.Primary())
			}),
			"redis": handler.PingFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}),
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func closeMongo(store *mongo.Store, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("mongo disconnect failed")
	}
}
