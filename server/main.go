package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinetix/api/routes"
	"cinetix/internal/notifications"
	"cinetix/internal/scheduler"
	"cinetix/internal/shared/config"
	"cinetix/internal/shared/database"
	"cinetix/pkg/logger"
	"cinetix/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		appLogger.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to initialize databases", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Rate limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Notification pipeline
	publisher, consumer := setupNotifications(cfg, appLogger)
	defer publisher.Close()

	// Durable expiry scheduler for seat holds
	expiryScheduler := scheduler.NewRedisScheduler(db.GetRedisClient(), cfg.Booking.SchedulerPollInterval)

	// Router
	engine, appRouter, err := setupRouter(cfg, db, expiryScheduler, publisher, rateLimiter)
	if err != nil {
		appLogger.Error("failed to set up routes", slog.Any("error", err))
		os.Exit(1)
	}

	// Background workers
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	expiryScheduler.Start(workerCtx, appRouter.BookingService.OnExpire)
	defer expiryScheduler.Stop()

	if consumer != nil {
		consumer.Start(workerCtx)
		defer consumer.Stop()
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("api_base", cfg.GetAPIBasePath()),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
			slog.Bool("kafka", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// setupNotifications builds the notification publisher and, when Kafka is
// enabled, the email-sending consumer.
func setupNotifications(cfg *config.Config, appLogger *logger.Logger) (notifications.Publisher, *notifications.Consumer) {
	if !cfg.Kafka.Enabled {
		appLogger.Info("Kafka disabled, notifications will be logged only")
		return notifications.NewLogPublisher(), nil
	}

	publisher, err := notifications.NewKafkaPublisher(notifications.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.NotificationTopic,
	})
	if err != nil {
		appLogger.Error("failed to create Kafka publisher, falling back to log publisher", slog.Any("error", err))
		return notifications.NewLogPublisher(), nil
	}

	var emailService notifications.EmailService
	emailService, err = notifications.NewSMTPEmailService(cfg.Email)
	if err != nil {
		appLogger.Info("SMTP not configured, emails will be logged only", slog.String("reason", err.Error()))
		emailService = notifications.NewMockEmailService()
	}

	consumer, err := notifications.NewConsumer(notifications.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.ConsumerGroup,
		Topic:   cfg.Kafka.NotificationTopic,
	}, emailService)
	if err != nil {
		appLogger.Error("failed to create notification consumer", slog.Any("error", err))
		return publisher, nil
	}

	return publisher, consumer
}

func setupRouter(cfg *config.Config, db *database.DB, sched *scheduler.RedisScheduler, publisher notifications.Publisher, rateLimiter *ratelimit.RateLimiter) (*gin.Engine, *routes.Router, error) {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(requestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	appRouter := routes.NewRouter(cfg, db, sched, publisher, rateLimiter)
	if err := appRouter.SetupRoutes(engine); err != nil {
		return nil, nil, err
	}

	return engine, appRouter, nil
}

func requestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
	}
}
