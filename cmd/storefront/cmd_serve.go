package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/storefront/storefront-api/internal/api"
	"github.com/storefront/storefront-api/internal/api/handler"
	"github.com/storefront/storefront-api/internal/core/service"
	"github.com/storefront/storefront-api/internal/infrastructure/db/mongo"
	"github.com/storefront/storefront-api/internal/infrastructure/db/redis"
	"github.com/storefront/storefront-api/internal/infrastructure/mail"
	"github.com/storefront/storefront-api/internal/infrastructure/queue"
	"github.com/storefront/storefront-api/internal/infrastructure/storage/s3"
	"github.com/storefront/storefront-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// storefront serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func runServer(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := boot(ctx)
	if err != nil {
		return err
	}

	// --- Infrastructure ---
	mongoClient, db, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
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
			log.Error().Err(err).Msg("redis close")
		}
	}()

	storage, err := s3.New(ctx, s3.Config{
		Bucket:    cfg.S3.Bucket,
		Region:    cfg.S3.Region,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Endpoint:  cfg.S3.Endpoint,
		PublicURL: cfg.S3.PublicURL,
	})
	if err != nil {
		return err
	}

	mailer := mail.NewMailer(mail.Config{
		Host:               cfg.SMTP.Host,
		Port:               cfg.SMTP.Port,
		Username:           cfg.SMTP.Username,
		Password:           cfg.SMTP.Password,
		From:               cfg.SMTP.From,
		FromName:           cfg.SMTP.FromName,
		InsecureSkipVerify: cfg.SMTP.Insecure,
	})

	// Workers outlive the signal context so queued deletions can drain
	// after the HTTP server stops.
	dispatcher := queue.NewDispatcher(cfg.CleanupWorkers, storage, logger.Component("cleanup"))
	dispatcher.Start(context.Background())
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := dispatcher.Shutdown(drainCtx); err != nil {
			log.Warn().Err(err).Msg("cleanup queue not drained")
		}
	}()

	// --- Services ---
	userRepo := mongo.NewUserRepository(db)
	orderRepo := mongo.NewOrderRepository(db)
	productRepo := mongo.NewProductRepository(db)

	authService := service.NewAuthService(userRepo, mailer, redis.NewDenylist(rdb), service.AuthConfig{
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.JWTExpires,
		FrontendURL: cfg.FrontendURL,
	}, logger.Component("auth"))

	router := api.NewRouter(api.Dependencies{
		Auth:    authService,
		Users:   service.NewUserService(userRepo, storage, dispatcher, logger.Component("users")),
		Orders:  service.NewOrderService(orderRepo, userRepo, logger.Component("orders")),
		Sales:   service.NewSalesService(orderRepo, redis.NewSalesCache(rdb, cfg.SalesCacheTTL), logger.Component("sales")),
		Catalog: service.NewCatalogService(productRepo, logger.Component("catalog")),
		Checks: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Cookie: handler.CookieConfig{
			TTL:    cfg.CookieTTL(),
			Secure: cfg.IsProduction(),
		},
		FrontendURL: cfg.FrontendURL,
		Log:         logger.Component("http"),
	})

	// --- Serve ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := router.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("server stopped")
	return nil
}
