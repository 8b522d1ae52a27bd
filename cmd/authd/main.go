package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/vireoco/authgate"
	"github.com/vireoco/authgate/gql"
	"github.com/vireoco/authgate/middleware/reqlog"
	"github.com/vireoco/authgate/provider"
	"github.com/vireoco/authgate/stores"
)

func main() {
	// .env is a development convenience, absence is fine
	_ = godotenv.Load()

	cfg, err := authgate.LoadConfig()
	if err != nil {
		log.Fatalf("authd: %s", err)
	}

	logger := authgate.DefaultLogger()

	store, err := sessionStore(cfg)
	if err != nil {
		log.Fatalf("authd: session store: %s", err)
	}

	users, err := provider.DemoStore()
	if err != nil {
		log.Fatalf("authd: identity store: %s", err)
	}

	tokens := authgate.NewTokenService(cfg, logger)
	sessions := authgate.NewSessionManager(store).
		WithCookieName(cfg.SessionCookie).
		WithTTL(cfg.SessionTTL).
		WithLogger(logger)
	validator := authgate.NewCredentialValidator(users).WithLogger(logger)

	guards := authgate.NewGuards(validator, tokens, sessions).WithLogger(logger)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	srv.Router().Use(reqlog.New(reqlog.Config{
		Logger: logger,
		Decoder: func(token string) reqlog.Claims {
			if claims := tokens.DecodeBestEffort(token); claims != nil {
				return claims
			}
			return nil
		},
	}))

	authgate.RegisterAuthRoutes(srv.Router().Group("/"),
		authgate.WithGuards(guards),
		authgate.WithControllerLogger(logger),
	)

	executor := gql.NewExecutor(guards).WithLogger(logger)

	executor.Register("user",
		authgate.GuardConfig{Method: authgate.JwtAccess, Roles: []string{"test"}},
		func(ctx context.Context, identity authgate.Identity, _ map[string]any) (any, error) {
			return identity, nil
		})

	executor.Register("ping",
		authgate.GuardConfig{Public: true},
		func(context.Context, authgate.Identity, map[string]any) (any, error) {
			return "pong", nil
		})

	srv.Router().Post("/graphql", executor.Handler()).SetName("gql.execute")

	logger.Info("authd listening on %s", cfg.ServerAddress)

	srv.Serve(cfg.ServerAddress)

	waitExitSignal()
}

func sessionStore(cfg *authgate.EnvConfig) (authgate.SessionStore, error) {
	if cfg.SessionStoreURL == "" {
		return stores.NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(cfg.SessionStoreURL)
	if err != nil {
		return nil, err
	}

	return stores.NewRedisStore(redis.NewClient(opts)), nil
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
