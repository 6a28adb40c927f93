package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/fieldserve/servicetrack/docs"
	"github.com/fieldserve/servicetrack/internal/api/handler"
	"github.com/fieldserve/servicetrack/internal/api/middleware"
	"github.com/fieldserve/servicetrack/internal/core/domain"
	"github.com/fieldserve/servicetrack/internal/core/service"
	"github.com/fieldserve/servicetrack/internal/infrastructure/config"
	mongorepo "github.com/fieldserve/servicetrack/internal/infrastructure/db/mongo"
	redisinfra "github.com/fieldserve/servicetrack/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log, cfg.Production())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{cfg.CORSOrigin},
	}))
	e.Use(echoprometheus.NewMiddleware("servicetrack"))

	limiter := redisinfra.NewRateLimiter(rdb, cfg.RateLimit.Window, cfg.RateLimit.Max)
	e.Use(middleware.RateLimit(limiter, log))

	// --- Dependencies ---
	userRepo := mongorepo.NewUserRepository(db)
	clientRepo := mongorepo.NewClientRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)
	clientService := service.NewClientService(clientRepo, userRepo, log)
	statsService := service.NewStatsService(clientRepo, userRepo, log)
	userService := service.NewUserService(userRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	clientHandler := handler.NewClientHandler(clientService)
	statsHandler := handler.NewStatsHandler(statsService)
	userHandler := handler.NewUserHandler(userService)

	auth := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Client routes ---
	clients := e.Group("/clients", auth)
	clients.GET("", clientHandler.List, middleware.RBAC(domain.RoleSupervisor, domain.RoleManager))
	clients.POST("", clientHandler.Create, middleware.RBAC(domain.RoleManager, domain.RoleSupervisor))
	clients.GET("/soon-expiring", clientHandler.SoonExpiring, middleware.RBAC(domain.RoleManager))
	clients.GET("/:id", clientHandler.Get, middleware.RBAC(domain.RoleSupervisor, domain.RoleManager))
	clients.PATCH("/:id", clientHandler.Update, middleware.RBAC(domain.RoleSupervisor, domain.RoleManager))
	clients.DELETE("/:id", clientHandler.Delete, middleware.RBAC(domain.RoleAdmin))
	clients.DELETE("/:id/soft-delete", clientHandler.SoftDelete, middleware.RBAC(domain.RoleSupervisor))
	clients.PATCH("/:id/assign", clientHandler.Assign, middleware.RBAC(domain.RoleSupervisor))
	clients.PATCH("/:clientId/equipment/:equipmentId/service-action", clientHandler.ServiceAction,
		middleware.RBAC(domain.RoleSupervisor, domain.RoleManager))

	// --- Stats routes (supervisor only) ---
	stats := e.Group("/stats", auth, middleware.RBAC(domain.RoleSupervisor))
	stats.GET("/total-clients", statsHandler.TotalClients)
	stats.GET("/expiring", statsHandler.Expiring)
	stats.GET("/total-managers", statsHandler.TotalManagers)
	stats.GET("/clients-summary-per-manager", statsHandler.SummaryPerManager)
	stats.GET("/manager/:id/details", statsHandler.ManagerDetails)

	// --- User routes ---
	users := e.Group("/users", auth)
	users.GET("", userHandler.List, middleware.RBAC(domain.RoleAdmin))
	users.GET("/profile", userHandler.Profile)
	users.PATCH("/:id/role", userHandler.ChangeRole, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/healthz", healthHandler.Liveness)
	e.GET("/healthz/ready", readinessHandler.Readiness)

	// --- Operability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
