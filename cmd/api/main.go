package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/userhive/account-api/internal/api"
	"github.com/userhive/account-api/internal/core/auth"
	"github.com/userhive/account-api/internal/core/authz"
	"github.com/userhive/account-api/internal/core/domain"
	"github.com/userhive/account-api/internal/core/service"
	"github.com/userhive/account-api/internal/infrastructure/config"
	mongodb "github.com/userhive/account-api/internal/infrastructure/db/mongo"
	redisdb "github.com/userhive/account-api/internal/infrastructure/db/redis"
	"github.com/userhive/account-api/internal/infrastructure/queue"
	"github.com/userhive/account-api/pkg/logger"
)

func main() {
	cfg := config.Load(slog.Default())

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	if err := mongodb.Bootstrap(ctx, db, mongodb.BootstrapConfig{
		AnonymousID:   cfg.Anonymous.ID,
		AnonymousName: cfg.Anonymous.Name,
		AdminName:     cfg.Bootstrap.AdminName,
		AdminEmail:    cfg.Bootstrap.AdminEmail,
		AdminPassword: cfg.Bootstrap.AdminPassword,
	}, log); err != nil {
		log.Fatal().Err(err).Msg("database bootstrap failed")
	}

	// --- Repositories ---
	userRepo := redisdb.NewUserCache(mongodb.NewUserRepository(db), rdb)
	versionRepo := mongodb.NewVersionRepository(db)

	// --- Auth core ---
	codec := auth.NewTokenCodec(
		auth.TokenConfig{Secret: cfg.Token.Access.Secret, TTL: cfg.Token.Access.TTL, Issuer: cfg.Token.Issuer},
		auth.TokenConfig{Secret: cfg.Token.Refresh.Secret, TTL: cfg.Token.Refresh.TTL, Issuer: cfg.Token.Issuer},
	)
	identity := auth.NewIdentity(codec, userRepo, auth.AnonymousConfig{
		ID:   cfg.Anonymous.ID,
		Name: cfg.Anonymous.Name,
		Role: domain.DefaultRole(),
	})
	verifier := auth.NewCredentialVerifier(identity, userRepo)
	policy := authz.NewPolicy(cfg.Anonymous.ID)
	enforcer := authz.NewEnforcer(policy)

	// --- Services ---
	dispatcher := queue.NewDispatcher(0, versionRepo, log)
	dispatcher.Start(ctx)

	authService := service.NewAuthService(verifier, identity, log)
	userService := service.NewUserService(userRepo, versionRepo, dispatcher, enforcer, log)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Identity:    identity,
		Policy:      policy,
		AuthService: authService,
		UserService: userService,
		Mongo:       db,
		Redis:       rdb,
		Logger:      log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
