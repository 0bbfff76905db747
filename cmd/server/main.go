package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-session-service/internal/config"
	"github.com/iliyamo/auth-session-service/internal/database"
	"github.com/iliyamo/auth-session-service/internal/handler"
	appmw "github.com/iliyamo/auth-session-service/internal/middleware"
	"github.com/iliyamo/auth-session-service/internal/oauth"
	"github.com/iliyamo/auth-session-service/internal/queue"
	"github.com/iliyamo/auth-session-service/internal/repository"
	"github.com/iliyamo/auth-session-service/internal/router"
	"github.com/iliyamo/auth-session-service/internal/service"
	"github.com/iliyamo/auth-session-service/internal/tasks"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	tokens := repository.NewTokenRepo(db)

	svc := service.NewAuthService(cfg, users, sessions, tokens, service.NewAMQPPublisher())
	providers := oauth.NewProviders(cfg.OAuth)

	// Background reconciliation: daily deletion sweep plus hourly
	// staleness sweep, independent of request traffic.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tasks.Start(ctx, tokens, sessions)

	// Audit trail consumer; reconnects on its own.
	go func() {
		if err := queue.StartAuthConsumer(); err != nil {
			log.Printf("auth consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient()))
	router.RegisterRoutes(e)
	router.RegisterAuth(e,
		handler.NewAuthHandler(svc),
		handler.NewSessionHandler(svc),
		handler.NewOAuthHandler(svc, providers, cfg.FrontendURL),
		cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
