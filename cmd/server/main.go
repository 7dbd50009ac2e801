package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/example/school-meeting-booking/internal/config"
	"github.com/example/school-meeting-booking/internal/database"
	"github.com/example/school-meeting-booking/internal/handler"
	"github.com/example/school-meeting-booking/internal/logger"
	"github.com/example/school-meeting-booking/internal/middleware"
	"github.com/example/school-meeting-booking/internal/notifier"
	"github.com/example/school-meeting-booking/internal/repository"
	"github.com/example/school-meeting-booking/internal/router"
	"github.com/example/school-meeting-booking/internal/verification"
	"github.com/example/school-meeting-booking/internal/workflow"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName,
		cfg.DBMaxConns, time.Duration(cfg.DBConnLifeMin)*time.Minute)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}

	// Rate limiting degrades to pass-through when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting disabled")
	}
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	events := repository.NewEventRepo(db)
	bookings := repository.NewBookingRepo(db, cfg.AbandonedAfterMin)
	codeRepo := repository.NewCodeRepo(db)

	codes := verification.New(codeRepo, cfg.BcryptCost)
	notify := notifier.NewAMQP(cfg.AMQPURL, log)
	wf := workflow.New(bookings, events, notify, log)

	// The consumer drains the notifications queue into the delivery log.
	go func() {
		if err := notifier.StartConsumer(cfg.AMQPURL, log); err != nil {
			log.Warn("notification consumer stopped", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterPublic(e,
		handler.NewPublicEventHandler(events),
		handler.NewPublicBookingHandler(cfg, events, bookings, codes, notify, log),
		limit)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, codes, notify, log), limit)
	router.RegisterAdmin(e,
		handler.NewAdminEventHandler(events),
		handler.NewAdminBookingHandler(bookings, events, wf),
		cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
