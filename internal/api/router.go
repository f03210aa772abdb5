package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/propstay/property-api/internal/api/handler"
	"github.com/propstay/property-api/internal/api/middleware"
	"github.com/propstay/property-api/internal/core/domain"
	"github.com/propstay/property-api/internal/core/ports"
	"github.com/propstay/property-api/internal/core/service"
	"github.com/propstay/property-api/internal/infrastructure/config"
	mongodb "github.com/propstay/property-api/internal/infrastructure/db/mongo"
	redisdb "github.com/propstay/property-api/internal/infrastructure/db/redis"
	"github.com/propstay/property-api/internal/infrastructure/security"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	cfg *config.Config,
	notifier ports.Notifier,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("property"))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	roleRepo := mongodb.NewRoleRepository(db)
	resetStore := redisdb.NewResetTokenStore(rdb)
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens := security.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL)

	authService := service.NewAuthService(
		userRepo, roleRepo, hasher, tokens, notifier, resetStore,
		cfg.ResetLinkBase, cfg.ResetTokenTTL, log,
	)
	authHandler := handler.NewAuthHandler(authService)
	authMiddleware := middleware.Auth(tokens)

	// --- Auth routes ---
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password", authHandler.ResetPassword)
	e.GET("/auth/me", authHandler.Me, authMiddleware)
	e.GET("/auth/users", authHandler.ListUsers, authMiddleware, middleware.RBAC(domain.RoleAdmin))

	// --- Static uploads (profile images) ---
	e.Static("/uploads", cfg.UploadDir)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
