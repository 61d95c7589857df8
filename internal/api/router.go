package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/room-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/room-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/room-booking-backend/internal/event"
	eventHttp "github.com/nekogravitycat/room-booking-backend/internal/event/http"
	"github.com/nekogravitycat/room-booking-backend/internal/resource"
	resHttp "github.com/nekogravitycat/room-booking-backend/internal/resource/http"
)

// Config holds the dependencies the router needs.
type Config struct {
	IsProduction   bool
	AllowedOrigins []string
	Logger         *slog.Logger

	BookingStore  booking.Store
	ResourceStore resource.Store
	Bus           *event.Bus
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (request id, access log, recovery, CORS) and registers routes for each module.
func NewRouter(cfg Config) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if err := resHttp.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	r := gin.New()
	r.Use(RequestID(), AccessLog(cfg.Logger), gin.Recovery())

	// Configure CORS for the browser UI.
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:4200", // UI dev server
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	if len(corsConfig.AllowOrigins) > 0 {
		r.Use(cors.New(corsConfig))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Initialize HTTP Handlers for each module.
	resHandler := resHttp.NewHandler(cfg.ResourceStore)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingStore, cfg.ResourceStore)
	eventHandler := eventHttp.NewHandler(cfg.Bus)

	v1 := r.Group("/v1")
	{
		resHttp.RegisterRoutes(v1, resHandler)
		bookingHttp.RegisterRoutes(v1, bookingHandler)
		eventHttp.RegisterRoutes(v1, eventHandler)
	}

	return r, nil
}
