package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"sitecms/internal/auth"
	"sitecms/internal/config"
	"sitecms/internal/handler"
)

// Handlers groups every HTTP handler mounted by Register.
type Handlers struct {
	Auth       *handler.AuthHandler
	Content    *handler.ContentHandler
	Versioning *handler.VersioningHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, gate *auth.Gate, h Handlers) {
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	requireAuth := gate.RequireAuth()

	// Auth
	api.POST("/auth/login", h.Auth.Login, loginLimiter(cfg.LoginRatePerMinute))
	api.POST("/auth/logout", h.Auth.Logout)
	api.GET("/auth/verify", h.Auth.Verify, requireAuth)

	// Draft content
	var draftWrites []echo.MiddlewareFunc
	if cfg.ProtectDraftWrites {
		draftWrites = append(draftWrites, requireAuth)
	}
	api.GET("/content/:page", h.Content.GetDraft)
	api.POST("/content/:page", h.Content.SaveDraft, draftWrites...)
	api.POST("/init-content/:page", h.Content.InitFromLive, draftWrites...)
	api.GET("/published/:page", h.Content.GetPublished)

	// Versioning
	secured := api.Group("", requireAuth)
	secured.POST("/backup/:page", h.Versioning.Backup)
	secured.POST("/publish/:page", h.Versioning.Publish)
	secured.GET("/history/:page", h.Versioning.History)
	secured.POST("/undo/:page", h.Versioning.Undo)
}

// requestLogger logs one structured line per request through slog.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelWarn
			}
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			slog.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// loginLimiter throttles login attempts per client IP. perMinute <= 0 disables it.
func loginLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			slog.WarnContext(c.Request().Context(), "login rate limit exceeded", "ip", identifier)
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts")
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
