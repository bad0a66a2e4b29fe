package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-class-booking/internal/config"
	"github.com/iliyamo/fitness-class-booking/internal/database"
	"github.com/iliyamo/fitness-class-booking/internal/handler"
	"github.com/iliyamo/fitness-class-booking/internal/middleware"
	"github.com/iliyamo/fitness-class-booking/internal/queue"
	"github.com/iliyamo/fitness-class-booking/internal/repository"
	"github.com/iliyamo/fitness-class-booking/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the limiter and cache disable
	// themselves and the API still works.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	classRepo := repository.NewClassRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	statsRepo := repository.NewStatsRepo(db)

	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, userRepo, tokenRepo),
		Class:   handler.NewClassHandler(classRepo),
		Admin:   handler.NewAdminClassHandler(classRepo),
		Booking: handler.NewBookingHandler(bookingRepo),
		Stats:   handler.NewStatsHandler(statsRepo),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Timezone(cfg.DefaultTimezone))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cache := middleware.CacheResponse(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e, handlers, cfg.JWTSecret, cache)

	// Background consumer appending booking events to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
