package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/room-booking-backend/internal/api"
	"github.com/nekogravitycat/room-booking-backend/internal/booking"
	"github.com/nekogravitycat/room-booking-backend/internal/event"
	"github.com/nekogravitycat/room-booking-backend/internal/resource"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction     bool
	AllowedOrigins   []string
	EnforceConflicts bool
	EventBuffer      int
	SeedDemoData     bool
	// SeedDemoBookings adds two sample bookings relative to Now.
	SeedDemoBookings bool
	Logger           *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router    *gin.Engine
	Bus       *event.Bus
	Bookings  booking.Store
	Resources resource.Store
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	bus := event.NewBus(cfg.EventBuffer, cfg.Logger)

	// Resource Module
	var seed []resource.Resource
	if cfg.SeedDemoData {
		seed = resource.DefaultCatalog(cfg.Now())
	}
	resRepo := resource.NewMemoryRepository(seed...)
	resStore := resource.NewStore(resRepo, bus, cfg.Logger)

	// Booking Module
	bookingOpts := []booking.Option{
		booking.WithLogger(cfg.Logger),
		booking.WithClock(cfg.Now),
	}
	if cfg.EnforceConflicts {
		bookingOpts = append(bookingOpts, booking.WithConflictEnforcement())
	}
	bookingRepo := booking.NewMemoryRepository()
	bookingStore := booking.NewStore(bookingRepo, bus, bookingOpts...)

	seededBookings := 0
	if cfg.SeedDemoBookings {
		for _, req := range booking.DemoBookings(cfg.Now()) {
			if _, err := bookingStore.Create(context.Background(), req); err != nil {
				return nil, fmt.Errorf("seed demo booking: %w", err)
			}
			seededBookings++
		}
	}

	// Router
	router, err := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         cfg.Logger,
		BookingStore:   bookingStore,
		ResourceStore:  resStore,
		Bus:            bus,
	})
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	cfg.Logger.Info("container initialized",
		"seeded_resources", len(seed),
		"seeded_bookings", seededBookings,
		"enforce_conflicts", cfg.EnforceConflicts,
	)

	return &Container{
		Router:    router,
		Bus:       bus,
		Bookings:  bookingStore,
		Resources: resStore,
	}, nil
}
