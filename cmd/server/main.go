package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ventech/venue-locator/internal/booking"
	"github.com/ventech/venue-locator/internal/cache"
	"github.com/ventech/venue-locator/internal/config"
	"github.com/ventech/venue-locator/internal/database"
	"github.com/ventech/venue-locator/internal/handler"
	"github.com/ventech/venue-locator/internal/queue"
	"github.com/ventech/venue-locator/internal/repository"
	"github.com/ventech/venue-locator/internal/router"
	queue_publisher "github.com/ventech/venue-locator/internal/service"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; counts cache, rate limiting and response caching disabled")
	}

	venueRepo := repository.NewVenueRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	availabilityRepo := repository.NewAvailabilityRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	var counts booking.CountsCache
	if rdb != nil {
		counts = cache.NewCountsCache(rdb, time.Minute)
	}

	manager := booking.NewManager(
		venueRepo,
		reservationRepo,
		availabilityRepo,
		counts,
		queue_publisher.NewPublisher(),
	)

	// Delivery leg of the notification sink: consumes lifecycle events
	// and appends them to the reservation log.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Cfg:       cfg,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Redis:     rdb,
		Auth: &handler.AuthHandler{
			Cfg:    cfg,
			Users:  userRepo,
			Tokens: tokenRepo,
		},
		Venues: &handler.VenueHandler{
			Venues:       venueRepo,
			Availability: availabilityRepo,
			Manager:      manager,
		},
		Reservations: &handler.ReservationHandler{
			Manager:      manager,
			Reservations: reservationRepo,
		},
		Owner: &handler.OwnerHandler{
			Manager:      manager,
			Venues:       venueRepo,
			Reservations: reservationRepo,
			Availability: availabilityRepo,
		},
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
