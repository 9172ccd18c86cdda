package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/freelancehub/tracker/docs"
	"github.com/freelancehub/tracker/internal/api/handler"
	"github.com/freelancehub/tracker/internal/api/middleware"
	"github.com/freelancehub/tracker/internal/api/ws"
	"github.com/freelancehub/tracker/internal/core/domain"
	"github.com/freelancehub/tracker/internal/core/ports"
)

// Dependencies is everything the router needs to build its handlers.
type Dependencies struct {
	JWTSecret string
	Session   *domain.Session

	Auth     ports.AuthService
	Clients  ports.ClientService
	Projects ports.ProjectService
	Audit    ports.AuditService
	Hub      *ws.Hub

	Mongo *mongo.Database
	Redis redis.Cmdable // nil when login throttling is off

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddleware("freelance"))

	authHandler := handler.NewAuthHandler(deps.Auth)
	clientHandler := handler.NewClientHandler(deps.Clients)
	projectHandler := handler.NewProjectHandler(deps.Projects)
	auditHandler := handler.NewAuditHandler(deps.Audit)
	reminderHandler := handler.NewReminderHandler(deps.Hub, deps.Log)

	authn := middleware.Auth(deps.JWTSecret, deps.Session)
	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleFreelancer)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authn)

	// --- User management ---
	users := e.Group("/users", authn, adminOnly)
	users.GET("", authHandler.ListUsers)
	users.POST("", authHandler.CreateUser)
	users.DELETE("/:id", authHandler.DeleteUser)

	// --- Clients ---
	clients := e.Group("/clients", authn, anyRole)
	clients.GET("", clientHandler.List)
	clients.POST("", clientHandler.Create)
	clients.GET("/:id", clientHandler.Get)
	clients.PUT("/:id", clientHandler.Update)
	clients.DELETE("/:id", clientHandler.Delete)

	// --- Projects ---
	projects := e.Group("/projects", authn, anyRole)
	projects.GET("", projectHandler.List)
	projects.POST("", projectHandler.Create)
	projects.GET("/:id", projectHandler.Get)
	projects.PUT("/:id", projectHandler.Update)
	projects.DELETE("/:id", projectHandler.Delete)

	// --- Audit log ---
	e.GET("/audit", auditHandler.List, authn, adminOnly)

	// --- Reminder feed ---
	e.GET("/reminders/ws", reminderHandler.Subscribe, authn, anyRole)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
