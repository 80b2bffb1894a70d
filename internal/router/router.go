package router

import (
	"net/http"

	"github.com/anonto42/pressroom/backend/internal/handlers"
	"github.com/anonto42/pressroom/backend/internal/middleware"
	"github.com/anonto42/pressroom/backend/internal/services"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Dependencies carries everything the HTTP layer needs.
type Dependencies struct {
	Users         *services.UserService
	Moderation    *services.ModerationService
	Comments      *services.CommentService
	Posts         *services.PostService
	Stories       *services.StoryService
	Notifications *services.NotificationService
	Tokens        middleware.TokenParser
	Pingers       map[string]handlers.Pinger
	Log           *zap.Logger

	SecureCookies  bool
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, d Dependencies) {
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e.Use(middleware.RequestID())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowCredentials: true,
	}))
	e.Use(middleware.Metrics())
	e.Use(middleware.AccessLog(d.Log))
	if d.RateLimitRPS > 0 {
		e.Use(middleware.RateLimitPerIP(rate.Limit(d.RateLimitRPS), d.RateLimitBurst))
	}
	d.Log.Info("global middleware configured")
}

// SetupRoutes mounts every API route on e.
func SetupRoutes(e *echo.Echo, d Dependencies) {
	cookie := handlers.SessionCookie{Secure: d.SecureCookies}
	authed := middleware.JWTAuthMiddleware(d.Tokens)

	e.GET("/health", handlers.HealthCheck(d.Pingers))

	api := e.Group("/api")

	handlers.NewAuthHandler(d.Users, cookie).RegisterAuthRoutes(api.Group("/auth"))
	handlers.NewUserHandler(d.Users, cookie).RegisterUserRoutes(api.Group("/user"), authed)

	users := api.Group("/users")
	handlers.NewModerationHandler(d.Moderation, cookie).RegisterModerationRoutes(users, authed)
	handlers.NewFollowHandler(d.Moderation, d.Users).RegisterFollowRoutes(users, authed)

	handlers.NewPublisherRequestHandler(d.Moderation, cookie).RegisterPublisherRequestRoutes(api.Group("/publisher-requests", authed))
	handlers.NewPostHandler(d.Posts).RegisterPostRoutes(api.Group("/post"), authed)
	handlers.NewStoryHandler(d.Stories).RegisterStoryRoutes(api.Group("/story"), authed)
	handlers.NewCommentHandler(d.Comments).RegisterCommentRoutes(api.Group("/comments"), authed)
	handlers.NewNotificationHandler(d.Notifications).RegisterNotificationRoutes(api.Group("/notifications", authed))

	d.Log.Info("routes registered", zap.Int("count", len(e.Routes())))
}
