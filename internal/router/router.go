package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/production-manager/internal/audit"
	"github.com/iliyamo/production-manager/internal/auth"
	"github.com/iliyamo/production-manager/internal/config"
	"github.com/iliyamo/production-manager/internal/handler"
	"github.com/iliyamo/production-manager/internal/logging"
	"github.com/iliyamo/production-manager/internal/middleware"
	"github.com/iliyamo/production-manager/internal/model"
)

// Cached client routes; writes purge both.
const (
	routeClients  = "/api/clientes"
	routeClientID = "/api/clientes/:id"
)

// ClientRoutes lists the route templates whose cached responses a client
// write invalidates.
func ClientRoutes() []string { return []string{routeClients, routeClientID} }

// Deps is everything the routes need.  Redis may be nil.
type Deps struct {
	Guard   *auth.Guard
	Auth    *handler.AuthHandler
	Users   *handler.UserHandler
	Clients *handler.ClientHandler
	Health  *handler.HealthHandler
	Audit   *audit.Logger

	Redis          *redis.Client
	RateLimit      config.RateLimitConfig
	Cache          config.CacheConfig
	Routes         middleware.RouteMatcher
	CookieFallback bool
	DevMode        bool
}

// New builds the echo instance with the global middleware chain: request
// id, access log, panic recovery, then the routing-layer authentication.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = JSONSerializer{}
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(d.DevMode)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
		},
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			ev := logging.Info()
			if v.Error != nil {
				ev = logging.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	}))
	e.Use(echomw.Recover())

	routes := d.Routes
	if len(routes.Protected) == 0 {
		routes = middleware.DefaultRouteMatcher()
	}
	e.Use(middleware.Authenticate(middleware.AuthConfig{
		Guard:          d.Guard,
		Routes:         routes,
		CookieFallback: d.CookieFallback,
	}))

	RegisterRoutes(e, d)
	return e
}

// RegisterRoutes maps every endpoint.  Handlers perform their own
// permission checks; group middleware only adds gates that must run before
// the response cache or for a whole group.
func RegisterRoutes(e *echo.Echo, d Deps) {
	if d.Health != nil {
		e.GET("/healthz", d.Health.Health)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	a := e.Group("/api/auth")
	a.POST("/login", d.Auth.Login, middleware.NewTokenBucket(d.RateLimit, d.Redis))
	a.POST("/refresh", d.Auth.Refresh)
	a.POST("/logout", d.Auth.Logout)
	a.GET("/me", d.Auth.Me)

	u := e.Group("/api/usuarios", middleware.RequirePermission(d.Guard, model.PermManageUsers))
	u.GET("", d.Users.List)
	u.POST("", d.Users.Create)
	u.PUT("/:id/rol", d.Users.UpdateRole)
	u.DELETE("/:id", d.Users.Delete)

	// cached reads are gated and audited before the cache so a hit is
	// never served to a caller without read:all and is still recorded
	readGate := middleware.RequirePermission(d.Guard, model.PermReadAll)
	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	e.GET(routeClients, d.Clients.List,
		readGate,
		middleware.AuditOperation(d.Audit, "Listar clientes", func(c echo.Context) []string {
			page := c.QueryParam("page")
			if page == "" {
				page = "1"
			}
			return []string{"page=" + page}
		}),
		cache,
	)
	e.GET(routeClientID, d.Clients.Get,
		readGate,
		middleware.AuditOperation(d.Audit, "Consultar cliente", func(c echo.Context) []string {
			return []string{"id=" + c.Param("id")}
		}),
		cache,
	)
	e.POST(routeClients, d.Clients.Create)
	e.PUT(routeClientID, d.Clients.Update)
	e.DELETE(routeClientID, d.Clients.Delete)
}
