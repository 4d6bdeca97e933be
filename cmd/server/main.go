package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads environment variables from a .env file
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/brian/tmov-booking/internal/config"     // Internal config loader
	"github.com/brian/tmov-booking/internal/database"   // MySQL connection pool
	"github.com/brian/tmov-booking/internal/handler"    // HTTP handlers
	"github.com/brian/tmov-booking/internal/middleware" // JWT and rate limit middleware
	"github.com/brian/tmov-booking/internal/queue"      // RabbitMQ publisher and consumer
	"github.com/brian/tmov-booking/internal/repository" // Data access layer
	"github.com/brian/tmov-booking/internal/router"     // Internal router setup
	"github.com/brian/tmov-booking/internal/service"    // Booking coordinator
)

func main() {
	// Load variables from .env when present.  In production the environment
	// is injected directly, so a missing file is not an error.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err) // Cannot serve bookings without the ledger
	}
	defer db.Close()

	// Redis is optional.  When it is unreachable the rate limiter degrades to
	// a pass-through and booking creation still works.
	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	members := repository.NewMemberRepo(db)
	bookings := repository.NewBookingRepo(db)

	events := queue.NewEventPublisher()
	svc := service.NewBookingService(bookings, members, events)

	authH := handler.NewAuthHandler(cfg, members)
	bookingH := handler.NewBookingHandler(svc)

	// Consume booking events in the background.  The consumer reconnects on
	// broker failures, so a startup error here only means the first dial
	// failed and is logged rather than fatal.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance

	limit := middleware.NewBookingRateLimit(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e)                               // Health check
	router.RegisterAuth(e, authH, cfg.JWTSecret)           // Register, login, profile
	router.RegisterBookings(e, bookingH, cfg.JWTSecret, limit) // Booking lifecycle

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
