package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/adminhub/user-accounts/docs"
	"github.com/adminhub/user-accounts/internal/api/handler"
	"github.com/adminhub/user-accounts/internal/api/middleware"
	"github.com/adminhub/user-accounts/internal/core/domain"
	"github.com/adminhub/user-accounts/internal/core/ports"
)

// bodyLimit leaves room for ten 10MB images plus form fields.
const bodyLimit = "110M"

// Deps holds everything the router wires into handlers.
type Deps struct {
	Accounts  ports.AccountService
	Tokens    ports.TokenService
	Health    map[string]handler.Pinger
	UploadDir string
	Log       zerolog.Logger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	// Outside the request logger so it observes the status the error handler wrote.
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/health")
		},
	}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit(bodyLimit))

	// --- Operational routes (no auth required) ---
	healthHandler := handler.NewHealthHandler(d.Health)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello, world!")
	})
	e.Static("/public/images", d.UploadDir)

	// --- Account routes ---
	userHandler := handler.NewUserHandler(d.Accounts)
	auth := middleware.Auth(d.Tokens)
	roleParam := middleware.RoleParam("role", domain.Roles...)

	user := e.Group("/user")
	user.POST("/register_user", userHandler.Register)
	user.POST("/login_user", userHandler.Login)
	user.PUT("/update_user_profile", userHandler.UpdateProfile, auth)
	user.POST("/changePassword", userHandler.ChangePassword, auth)
	user.GET("/get_user_details/:role", userHandler.GetUserDetails, auth, roleParam)
	user.DELETE("/remove_user/:role", userHandler.RemoveUser, auth, roleParam)

	return e
}
