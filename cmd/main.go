package main

import (
	"time"

	"accounts-service/internal/captcha"
	"accounts-service/internal/event"
	"accounts-service/internal/handler"
	"accounts-service/internal/mailer"
	"accounts-service/internal/middleware"
	authprovider "accounts-service/internal/provider"
	"accounts-service/internal/ratelimit"
	"accounts-service/internal/service"
	"accounts-service/internal/store"
	"accounts-service/pkg/config"
	"accounts-service/pkg/database"
	"accounts-service/pkg/jwtutil"
	"accounts-service/pkg/logger"
	"accounts-service/prometheus"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting accounts service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	st := store.New(database.GetDB())

	// Attempt limiter is optional; it activates when Redis is configured
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Info("Attempt limiter enabled", zap.String("redis_addr", cfg.Redis.Addr))
	}
	limiter := ratelimit.New(rdb, 10, 15*time.Minute)

	// Background dispatcher for activity logs, email and the audit stream
	mail := mailer.New(&cfg.Mail, log)
	auditWriter := event.NewKafkaWriter(&cfg.Kafka)
	var audit event.AuditWriter
	if auditWriter != nil {
		audit = auditWriter
		log.Info("Audit stream enabled", zap.String("topic", cfg.Kafka.Topic))
	}
	dispatcher := event.NewDispatcher(st, mail, audit, log)
	defer dispatcher.Close()

	providers := func(name string) (authprovider.Provider, error) {
		return authprovider.New(name, &cfg.Provider)
	}
	svc := service.NewAuthService(st, dispatcher, providers, cfg, log)
	verifier := captcha.NewVerifier(&cfg.Captcha)

	authHandler := handler.NewAuthHandler(svc, verifier, limiter)
	passwordHandler := handler.NewPasswordHandler(svc, limiter)
	verifyHandler := handler.NewVerifyHandler(svc)
	accountHandler := handler.NewAccountHandler(svc)
	captchaHandler := handler.NewCaptchaHandler(verifier)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStore(rate.Limit(20))))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)
	e.POST("/captcha/verify", captchaHandler.Verify)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/sign-in", authHandler.SignIn)
	auth.POST("/sign-up", authHandler.SignUp)
	auth.GET("/oauth/:social", authHandler.OAuthStart)
	auth.POST("/forgot-password", passwordHandler.ForgotPassword)
	auth.GET("/reset-password/:token", passwordHandler.VerifyResetToken)
	auth.POST("/reset-password", passwordHandler.ResetPassword)
	auth.GET("/verify-email/:token", verifyHandler.VerifyEmail)
	auth.POST("/resend-verification", verifyHandler.ResendVerification)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)
	api.POST("/sign-out", authHandler.SignOut)

	account := api.Group("/account")
	account.GET("", accountHandler.GetAccount)
	account.PATCH("", accountHandler.UpdateAccount)
	account.DELETE("", accountHandler.DeleteAccount)
	account.POST("/password", passwordHandler.ChangePassword)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
