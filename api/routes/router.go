package routes

import (
	"net/http"
	"time"

	"cinetix/internal/bookings"
	"cinetix/internal/movies"
	"cinetix/internal/notifications"
	"cinetix/internal/payments"
	"cinetix/internal/scheduler"
	"cinetix/internal/seatmap"
	"cinetix/internal/shared/config"
	"cinetix/internal/shared/database"
	"cinetix/internal/shared/middleware"
	"cinetix/internal/shows"
	"cinetix/internal/tickets"
	"cinetix/internal/users"
	"cinetix/pkg/cache"
	"cinetix/pkg/logger"
	"cinetix/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config      *config.Config
	db          *database.DB
	scheduler   scheduler.Scheduler
	publisher   notifications.Publisher
	rateLimiter *ratelimit.RateLimiter

	// BookingService is exposed so main can wire the expiry worker to it
	BookingService bookings.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, sched scheduler.Scheduler, publisher notifications.Publisher, rateLimiter *ratelimit.RateLimiter) *Router {
	return &Router{
		config:      cfg,
		db:          db,
		scheduler:   sched,
		publisher:   publisher,
		rateLimiter: rateLimiter,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) error {
	r.setupHealthRoutes(engine)

	pg := r.db.GetPostgreSQL()

	// Repositories
	userRepo := users.NewRepository(pg)
	movieRepo := movies.NewRepository(pg)
	showRepo := shows.NewRepository(pg)
	seatRepo := seatmap.NewRepository(pg)
	bookingRepo := bookings.NewRepository(pg)

	// Movie catalog provider
	catalogClient, err := movies.NewHTTPCatalogClient(r.config.Catalog)
	if err != nil {
		return err
	}

	// Services
	cacheService := cache.NewService(r.db.GetRedisClient())
	movieService := movies.NewService(movieRepo, catalogClient, cacheService, r.config.Redis.CacheTTL)
	bookingService := bookings.NewService(
		bookingRepo,
		seatRepo,
		userRepo,
		payments.NewMockGateway(""),
		r.scheduler,
		r.publisher,
		r.config.Booking,
	)
	showService := shows.NewService(showRepo, movieService, bookingService)
	ticketService := tickets.NewService(bookingRepo, userRepo, r.config.Booking.EntryWindowBefore)

	r.BookingService = bookingService

	// Controllers
	movieController := movies.NewController(movieService)
	showController := shows.NewController(showService)
	bookingController := bookings.NewController(bookingService)
	ticketController := tickets.NewController(ticketService)

	api := engine.Group(r.config.GetAPIBasePath())

	// Public routes: catalog browsing and seat availability
	public := api.Group("")
	public.Use(r.limit(ratelimit.RateLimitTypePublic))
	{
		movies.SetupMovieRoutes(public, movieController)
		shows.SetupShowRoutes(public, showController)
		bookings.SetupPublicBookingRoutes(public, bookingController)
	}

	// Payment provider callback
	webhook := api.Group("")
	webhook.Use(r.limit(ratelimit.RateLimitTypeDefault))
	{
		bookings.SetupWebhookRoutes(webhook, bookingController)
	}

	// Authenticated routes
	authed := api.Group("")
	authed.Use(
		r.limit(ratelimit.RateLimitTypeBooking),
		middleware.JWTAuthWithConfig(r.config),
		syncUser(userRepo),
	)
	{
		bookings.SetupBookingRoutes(authed, bookingController)
	}

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(
		r.limit(ratelimit.RateLimitTypeAdmin),
		middleware.JWTAuthWithConfig(r.config),
		middleware.RequireAdmin(),
	)
	{
		shows.SetupAdminShowRoutes(admin, showController)
		bookings.SetupAdminBookingRoutes(admin, bookingController)
		tickets.SetupTicketRoutes(admin, ticketController)
	}

	return nil
}

func (r *Router) limit(limitType ratelimit.RateLimitType) gin.HandlerFunc {
	return ratelimit.Middleware(r.rateLimiter, limitType)
}

// syncUser mirrors the identity provider's claims into the local users table
// so bookings and emails have a record to join against.
func syncUser(repo users.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.CurrentClaims(c)
		if ok {
			user := &users.User{
				ID:      claims.UserID,
				Email:   claims.Email,
				Name:    claims.Name,
				IsAdmin: claims.IsAdmin,
			}
			if err := repo.Upsert(c.Request.Context(), user); err != nil {
				logger.GetDefault().ErrorWithContext(c.Request.Context(), "failed to sync user record", err, map[string]interface{}{
					"user_id": claims.UserID,
				})
			}
		}
		c.Next()
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "cinetix-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "cinetix-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}
