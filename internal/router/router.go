package router

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"blogapi/internal/config"
	apperrors "blogapi/internal/errors"
	"blogapi/internal/handler"
	"blogapi/internal/middleware"
	"blogapi/internal/model"
	"blogapi/internal/validation"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Category *handler.CategoryHandler
	Post     *handler.PostHandler
	User     *handler.UserHandler
	Health   *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, log *zap.Logger, authn *middleware.Authenticator, h Handlers) {
	e.HideBanner = true
	e.Validator = validation.NewEchoValidator()
	e.HTTPErrorHandler = ErrorHandler(log, cfg.ShowErrors())

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.HTTP.FrontendURL},
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	}))

	e.GET("/", h.Health.Index)
	e.GET("/healthz", h.Health.Healthz)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	requireAuth := authn.RequireAuth()
	requireActive := middleware.RequireActiveUser()

	// Auth
	var signinMW []echo.MiddlewareFunc
	if cfg.HTTP.SigninRateLimit > 0 {
		signinMW = append(signinMW, signinLimiter(cfg.HTTP.SigninRateLimit))
	}
	api.POST("/auth/signin", h.Auth.Signin, signinMW...)
	api.POST("/auth/refresh-token", h.Auth.RefreshToken)
	api.POST("/auth/signout", h.Auth.Signout)

	// Categories: any authenticated user reads, admins write
	categories := api.Group("/categories")
	categories.GET("", h.Category.List, requireAuth)
	categories.GET("/:id", h.Category.Get, requireAuth)
	adminOnly := []echo.MiddlewareFunc{requireAuth, requireActive, middleware.RequireSystemRole(model.RoleAdmin)}
	categories.POST("", h.Category.Create, adminOnly...)
	categories.PUT("/:id", h.Category.Update, adminOnly...)
	categories.PATCH("/:id", h.Category.Update, adminOnly...)
	categories.DELETE("/:id", h.Category.Delete, adminOnly...)

	// Posts: public reads, active users write
	attachUser := authn.AttachUser()
	posts := api.Group("/posts")
	posts.GET("", h.Post.List, attachUser)
	posts.GET("/:id", h.Post.Get, attachUser)
	posts.POST("", h.Post.Create, requireAuth, requireActive)
	posts.PUT("/:id", h.Post.Update, requireAuth, requireActive)
	posts.PATCH("/:id", h.Post.Update, requireAuth, requireActive)
	posts.DELETE("/:id", h.Post.Delete, requireAuth, requireActive)

	// Users
	users := api.Group("/users", requireAuth, requireActive,
		middleware.RequireSystemRole(model.RoleAdmin, model.RoleModerator, model.RoleUser))
	users.GET("/:id/profile", h.User.GetProfile)
	users.PUT("/:id/profile", h.User.UpdateProfile)
}

// signinLimiter throttles signin attempts per client IP, in requests per second.
func signinLimiter(perSecond float64) echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     int(perSecond*2) + 1,
			ExpiresIn: 3 * time.Minute,
		}),
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.Forbidden("Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return apperrors.NewHTTPError(http.StatusTooManyRequests, "Too many signin attempts, try again later", "RATE_LIMITED")
		},
	})
}

// ErrorHandler renders every error as errors.ErrorResponse and logs server faults.
func ErrorHandler(log *zap.Logger, showErrors bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var httpErr *apperrors.HTTPError
		switch {
		case errors.Is(err, echo.ErrNotFound):
			httpErr = apperrors.NotFound(fmt.Sprintf("Route not found: [%s]", c.Request().URL.Path))
		default:
			httpErr = apperrors.MapErrorToHTTP(err)
		}

		if httpErr.StatusCode >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(err),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(httpErr.StatusCode)
		} else {
			writeErr = c.JSON(httpErr.StatusCode, httpErr.Public(showErrors))
		}
		if writeErr != nil {
			log.Warn("write error response", zap.Error(writeErr))
		}
	}
}
