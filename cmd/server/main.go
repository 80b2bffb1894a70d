package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/pressroom/backend/internal/auth"
	"github.com/anonto42/pressroom/backend/internal/cache"
	"github.com/anonto42/pressroom/backend/internal/handlers"
	"github.com/anonto42/pressroom/backend/internal/repositories"
	"github.com/anonto42/pressroom/backend/internal/router"
	"github.com/anonto42/pressroom/backend/internal/services"
	"github.com/anonto42/pressroom/backend/pkg/config"
	"github.com/anonto42/pressroom/backend/pkg/firebase"
	"github.com/anonto42/pressroom/backend/pkg/logger"
	"github.com/anonto42/pressroom/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var zl *zap.Logger
	var syncLog func()
	if cfg.LogFile != "" {
		zl, syncLog = logger.NewWithRotate(cfg.LogLevel, cfg.IsProduction(), cfg.LogFile)
	} else {
		zl, syncLog = logger.New(cfg.LogLevel, cfg.IsProduction())
	}
	defer syncLog()
	defer logger.RedirectStdLog(zl)()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	mdb := db.Mongo.Database(cfg.MongoDB)
	if err := repositories.EnsureIndexes(ctx, mdb); err != nil {
		zl.Fatal("failed to create indexes", zap.Error(err))
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(mdb)
	requestRepo := repositories.NewMongoPublisherRequestRepository(mdb)
	commentRepo := repositories.NewMongoCommentRepository(mdb)
	notificationRepo := repositories.NewMongoNotificationRepository(mdb)
	postRepo := repositories.NewMongoPostRepository(mdb)
	storyRepo := repositories.NewMongoStoryRepository(mdb)
	tx := repositories.NewMongoTransactor(db.Mongo, cfg.MongoTransactions)

	var logRepo repositories.ModerationLogRepository
	if db.Postgres != nil {
		logRepo = repositories.NewPostgresModerationLogRepository(db.Postgres)
	}

	var verifier services.IdentityVerifier
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			zl.Fatal("failed to initialize Firebase", zap.Error(err))
		}
		verifier = app
	} else {
		zl.Warn("FIREBASE_CREDENTIALS_PATH not set, Google sign-in disabled")
	}

	pingers := map[string]handlers.Pinger{
		"mongo": func(ctx context.Context) error { return db.Mongo.Ping(ctx, nil) },
	}
	if db.Postgres != nil {
		pingers["postgres"] = func(ctx context.Context) error {
			sqlDB, err := db.Postgres.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}

	var profiles *cache.Cache
	if cfg.RedisAddr != "" {
		profiles = cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer profiles.Close()
		if err := profiles.Ping(ctx); err != nil {
			zl.Warn("redis unreachable, profile reads will hit MongoDB", zap.Error(err))
		}
		pingers["redis"] = profiles.Ping
	}

	// --- Initialize Services ---
	tokens := auth.NewJWTIssuer(cfg.JWTSecret)
	notifier := services.NewNotifier(notificationRepo, zl.Named("notify"), cfg.NotifyConcurrency)

	userService := services.NewUserService(services.UserDeps{
		Users:    userRepo,
		Tokens:   tokens,
		Verifier: verifier,
		Profiles: profiles,
		CacheTTL: cfg.ProfileCacheTTL,
		Log:      zl.Named("users"),
	})
	moderationService := services.NewModerationService(services.ModerationDeps{
		Users:    userRepo,
		Requests: requestRepo,
		Logs:     logRepo,
		Tx:       tx,
		Notifier: notifier,
		Tokens:   tokens,
		Profiles: profiles,
		Log:      zl.Named("moderation"),
	})
	commentService := services.NewCommentService(services.CommentDeps{
		Comments: commentRepo,
		Logs:     logRepo,
		Log:      zl.Named("comments"),
	})
	postService := services.NewPostService(services.PostDeps{
		Posts: postRepo,
		Logs:  logRepo,
		Log:   zl.Named("posts"),
	})
	storyService := services.NewStoryService(services.StoryDeps{
		Stories:  storyRepo,
		Logs:     logRepo,
		Notifier: notifier,
		Log:      zl.Named("stories"),
	})
	notificationService := services.NewNotificationService(notificationRepo, userRepo)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(zl.Named("http"))

	deps := router.Dependencies{
		Users:          userService,
		Moderation:     moderationService,
		Comments:       commentService,
		Posts:          postService,
		Stories:        storyService,
		Notifications:  notificationService,
		Tokens:         tokens,
		Pingers:        pingers,
		Log:            zl,
		SecureCookies:  cfg.IsProduction(),
		AllowedOrigins: cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}
	router.SetupMiddleware(e, deps)
	router.SetupRoutes(e, deps)

	metricsSrv := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          logger.ToStdLogger(zl, zapcore.ErrorLevel),
	}
	go func() {
		zl.Info("metrics server listening", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("metrics server stopped", zap.Error(err))
		}
	}()

	// Start server
	go func() {
		zl.Info("api server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("api server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("api server shutdown", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		zl.Error("metrics server shutdown", zap.Error(err))
	}
}
