package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/minhvo/cafe-pos/internal/config"
	"github.com/minhvo/cafe-pos/internal/database"
	"github.com/minhvo/cafe-pos/internal/handler"
	"github.com/minhvo/cafe-pos/internal/middleware"
	"github.com/minhvo/cafe-pos/internal/queue"
	"github.com/minhvo/cafe-pos/internal/repository"
	"github.com/minhvo/cafe-pos/internal/router"
	"github.com/minhvo/cafe-pos/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	// Repositories
	tableRepo := repository.NewTableRepo(db)
	areaRepo := repository.NewAreaRepo(db)
	menuRepo := repository.NewMenuRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	lineRepo := repository.NewOrderLineRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	// Services carrying the lifecycle guarantees
	registry := service.NewTableRegistry(tableRepo)
	orders := service.NewOrderManager(tableRepo, orderRepo)
	lines := service.NewLineBook(lineRepo)
	checkout := service.NewPaymentFinalizer(paymentRepo)

	// Handlers
	authH := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	orderH := handler.NewOrderHandler(cfg, registry, orders, lines, checkout, menuRepo, paymentRepo)
	floorH := handler.NewFloorHandler(areaRepo, tableRepo)
	menuH := handler.NewMenuHandler(menuRepo)
	historyH := handler.NewHistoryHandler(paymentRepo)

	e := echo.New()

	// Redis-backed middleware degrades to pass-through when Redis is
	// down.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPOS(e, orderH, floorH, menuH, historyH, cfg.JWTSecret, cacheMW)

	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartPaymentConsumer(cfg.AMQPURL, cfg.PaymentLogPath); err != nil {
				log.Printf("payment consumer stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
