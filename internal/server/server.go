package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farellandr/ticketbook/config"
	"github.com/farellandr/ticketbook/internal/apperror"
	"github.com/farellandr/ticketbook/internal/clock"
	"github.com/farellandr/ticketbook/internal/handlers"
	"github.com/farellandr/ticketbook/internal/helpers"
	"github.com/farellandr/ticketbook/internal/middleware"
	"github.com/farellandr/ticketbook/internal/repository"
	"github.com/farellandr/ticketbook/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	apiPrefix       = "/api/v1"
	shutdownTimeout = 10 * time.Second
	healthTimeout   = 2 * time.Second
)

// Services bundles the application services behind the HTTP API.
type Services struct {
	Identity *services.IdentityService
	Events   *services.EventService
	Bookings *services.BookingService
	Reports  *services.ReportService
}

func NewServices(db *gorm.DB, cfg *config.Config, clk clock.Clock, opts ...services.IdentityServiceOption) (*Services, error) {
	tx := repository.NewTransactor(db)

	opts = append([]services.IdentityServiceOption{services.WithTokenTTL(cfg.TokenExpiry)}, opts...)
	identity, err := services.NewIdentityService(repository.NewUserRepository(db), clk, cfg.JWTSecret, opts...)
	if err != nil {
		return nil, err
	}

	return &Services{
		Identity: identity,
		Events:   services.NewEventService(repository.NewEventRepository(db), tx, clk),
		Bookings: services.NewBookingService(tx, clk),
		Reports:  services.NewReportService(repository.NewBookingRepository(db)),
	}, nil
}

func NewRouter(db *gorm.DB, svc *Services, corsOrigins []string) (*gin.Engine, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CORS(corsOrigins))

	setupRoutes(r, db, svc)
	return r, nil
}

func setupRoutes(r *gin.Engine, db *gorm.DB, svc *Services) {
	authHandler := handlers.NewAuthHandler(svc.Identity)
	eventHandler := handlers.NewEventHandler(svc.Events)
	bookingHandler := handlers.NewBookingHandler(svc.Bookings, svc.Reports)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "Event management system"})
	})
	r.GET("/health", healthHandler(db))
	r.NoRoute(func(c *gin.Context) {
		helpers.RespondWithError(c, apperror.NotFound("route_not_found", "Not found"))
	})

	authenticated := middleware.JWTAuthMiddleware(svc.Identity)

	public := r.Group(apiPrefix)
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", authenticated, authHandler.Me)
		}

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("", eventHandler.ListEvents)
			eventPublic.GET("/:id", eventHandler.GetEvent)
		}
	}

	protected := r.Group(apiPrefix)
	protected.Use(authenticated)
	{
		eventProtected := protected.Group("/events")
		{
			eventProtected.POST("/:id/book", bookingHandler.BookEvent)
			eventProtected.DELETE("/:id/cancel", bookingHandler.CancelBooking)
			eventProtected.POST("/history", bookingHandler.History)
		}
	}

	admin := r.Group(apiPrefix + "/admin")
	admin.Use(authenticated, middleware.AdminOnly())
	{
		admin.GET("/events", eventHandler.ListAllEvents)
		admin.POST("/events", eventHandler.CreateEvent)
		admin.PUT("/events/:id", eventHandler.UpdateEvent)
		admin.DELETE("/events/:id", eventHandler.DeleteEvent)
		admin.GET("/events/:id/booking", bookingHandler.ListEventBookings)
		admin.GET("/booking", bookingHandler.ListBookings)
	}
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			log.Printf("health check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Start serves the API until SIGINT or SIGTERM, then drains in-flight
// requests.
func Start(cfg *config.Config, db *gorm.DB) error {
	svc, err := NewServices(db, cfg, clock.NewSystem())
	if err != nil {
		return fmt.Errorf("failed to build services: %w", err)
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := svc.Identity.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to create bootstrap admin: %w", err)
		}
	}

	router, err := NewRouter(db, svc, cfg.CORSOrigins)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}

	log.Println("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
