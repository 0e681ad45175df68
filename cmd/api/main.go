package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitformula/fitformula-backend/internal/config"
	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/handler"
	"github.com/fitformula/fitformula-backend/internal/mail"
	"github.com/fitformula/fitformula-backend/internal/messaging"
	"github.com/fitformula/fitformula-backend/internal/middleware"
	"github.com/fitformula/fitformula-backend/internal/repository/postgres"
	"github.com/fitformula/fitformula-backend/internal/repository/storage"
	"github.com/fitformula/fitformula-backend/internal/service"
	"github.com/fitformula/fitformula-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(context.Background(), pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	trainerRepo := postgres.NewTrainerRepository(pool)
	gymRepo := postgres.NewGymRepository(pool)
	workoutRepo := postgres.NewWorkoutRepository(pool)
	enrollmentRepo := postgres.NewEnrollmentRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	commentRepo := postgres.NewCommentRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)

	// Notification sink with its delivery channels
	hub := websocket.NewHub()
	notificationService := service.NewNotificationService(notificationRepo, websocket.NewNotificationPublisher(hub))

	var producer *messaging.KafkaProducer
	if cfg.Kafka.Enabled() {
		producer = messaging.NewKafkaProducer(cfg.Kafka.Brokers)
		notificationService.AddPublisher(messaging.NewNotificationPublisher(producer, cfg.Kafka.NotificationTopic))
		log.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.NotificationTopic).
			Msg("Streaming notification events to Kafka")
	}
	if cfg.SMTP.Enabled() {
		notificationService.AddPublisher(mail.NewNotificationMailer(cfg.SMTP, userRepo))
		log.Info().Str("host", cfg.SMTP.Host).Msg("E-mail notifications enabled")
	}

	// Initialize S3 storage (optional - images disabled if not configured)
	var imageService *service.ImageService
	if cfg.S3.Enabled() {
		s3Repo, err := storage.NewS3ImageRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize S3 storage - workout images disabled")
		} else {
			imageService = service.NewImageService(s3Repo)
			log.Info().Str("bucket", cfg.S3.Bucket).Msg("S3 storage initialized")
		}
	} else {
		log.Info().Msg("S3 not configured - workout images disabled")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, sessionRepo, trainerRepo, cfg.SessionTTL)
	workoutService := service.NewWorkoutService(workoutRepo, trainerRepo, gymRepo, imageService)
	registrationService := service.NewRegistrationService(userRepo, workoutRepo, enrollmentRepo, notificationService)
	registrationService.SetImageService(imageService)
	feedbackService := service.NewFeedbackService(commentRepo, reviewRepo, workoutRepo, trainerRepo, enrollmentRepo)
	catalogService := service.NewCatalogService(trainerRepo, gymRepo, reviewRepo)

	// Auth: session tokens always, Auth0 JWTs when configured
	var jwtAuth *middleware.AuthMiddleware
	var wsJWT websocket.JWTResolver
	if cfg.Auth0Enabled() {
		jwtAuth, err = middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, &userProviderAdapter{authService: authService})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth middleware")
		}
		wsJWT = jwtAuth
	}
	sessionAuth := middleware.NewSessionAuthMiddleware(authService)
	dualAuth := middleware.NewDualAuthMiddleware(jwtAuth, sessionAuth, service.IsSessionToken)
	trainerProvider := &trainerProviderAdapter{authService: authService}

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RegistrationRateLimit, middleware.DefaultBurstSize)
	defer rateLimiter.Stop()

	// Initialize handlers
	handlers := handler.Handlers{
		Account:      handler.NewAccountHandler(authService),
		Workout:      handler.NewWorkoutHandler(workoutService, registrationService),
		Registration: handler.NewRegistrationHandler(registrationService),
		Notification: handler.NewNotificationHandler(notificationService, hub),
		Feedback:     handler.NewFeedbackHandler(feedbackService),
		Catalog:      handler.NewCatalogHandler(catalogService),
		WebSocket: handler.NewWebSocketHandler(hub,
			websocket.NewSessionTokenValidator(authService, service.IsSessionToken, wsJWT),
			cfg.CORSOrigins),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API docs
	servers := []handler.APIServer{{URL: "http://localhost:" + cfg.Port + "/api/v1", Description: "Local Development"}}
	if cfg.PublicURL != "" {
		servers = append(servers, handler.APIServer{URL: cfg.PublicURL + "/api/v1", Description: "Production"})
	}
	e.GET("/swagger/openapi3.json", handler.NewOpenAPIHandler(servers...).Serve)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Register API routes
	handler.RegisterRoutes(e, dualAuth, trainerProvider, rateLimiter, handlers)

	// Reminder worker
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	reminderWorker := service.NewReminderWorker(workoutRepo, notificationService, log.Logger, service.ReminderWorkerConfig{
		Interval:  cfg.Reminder.Interval,
		Lookahead: cfg.Reminder.Lookahead,
	})
	reminderWorker.Start(workerCtx)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	reminderWorker.Stop()
	hub.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Kafka producer")
		}
	}

	log.Info().Msg("Server exited")
}

// userProviderAdapter adapts AuthService to middleware.UserProvider
type userProviderAdapter struct {
	authService *service.AuthService
}

// ResolveIdentity implements middleware.UserProvider
func (a *userProviderAdapter) ResolveIdentity(ctx context.Context, identity middleware.Identity) (int32, error) {
	user, err := a.authService.ResolveExternalUser(ctx, domain.ExternalIdentity{
		Subject: identity.Subject,
		Email:   identity.Email,
		Name:    identity.Name,
	})
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// trainerProviderAdapter adapts AuthService to middleware.TrainerProvider
type trainerProviderAdapter struct {
	authService *service.AuthService
}

// GetTrainerIDByUserID implements middleware.TrainerProvider
func (a *trainerProviderAdapter) GetTrainerIDByUserID(ctx context.Context, userID int32) (int32, error) {
	trainer, err := a.authService.GetTrainerProfile(ctx, userID)
	if err != nil {
		return 0, err
	}
	if trainer == nil {
		return 0, domain.ErrTrainerNotFound
	}
	return trainer.ID, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
