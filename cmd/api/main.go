package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/marketprime/marketplace-api/internal/api"
	"github.com/marketprime/marketplace-api/internal/core/service"
	"github.com/marketprime/marketplace-api/internal/infrastructure/config"
	mongodb "github.com/marketprime/marketplace-api/internal/infrastructure/db/mongo"
	redisdb "github.com/marketprime/marketplace-api/internal/infrastructure/db/redis"
	"github.com/marketprime/marketplace-api/internal/infrastructure/storage"
	"github.com/marketprime/marketplace-api/pkg/logger"
)

// @title        MarketPrime Marketplace API
// @version      1.0
// @description  Classifieds marketplace backend: accounts, listing moderation and lead capture.
// @BasePath     /api
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(cfg.LogLevel, cfg.Development(), nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	userRepo := mongodb.NewUserRepository(db)
	adminRepo := mongodb.NewAdminRepository(db)
	listingRepo := mongodb.NewListingRepository(db)
	leadRepo := mongodb.NewLeadRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users":    userRepo.EnsureIndexes,
		"admins":   adminRepo.EnsureIndexes,
		"listings": listingRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	images, err := storage.NewLocalStore(cfg.Upload.Dir, logger.With("storage"))
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Upload.Dir).Msg("image store init failed")
	}

	tokens := service.NewTokenManager(cfg.JWTSecret, 0, 0)
	revocation := redisdb.NewRevocationStore(rdb)
	authService := service.NewAuthService(userRepo, adminRepo, tokens, revocation, logger.With("auth"))
	listingService := service.NewListingService(listingRepo, images, logger.With("listings"))
	leadService := service.NewLeadService(leadRepo, logger.With("leads"))

	if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("admin seeding failed")
	}

	e := api.NewRouter(api.Dependencies{
		Config:   cfg,
		Auth:     authService,
		Listings: listingService,
		Leads:    leadService,
		Images:   images,
		Mongo:    db,
		Redis:    rdb,
		Logger:   log,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
