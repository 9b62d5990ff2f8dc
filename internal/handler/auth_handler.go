package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"blogapi/internal/auth"
	"blogapi/internal/errors"
	"blogapi/internal/model"
	"blogapi/internal/service"
)

const refreshCookieName = "refreshToken"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService  service.AuthService
	jwtService   *auth.JWTService
	cookieSecure bool
	log          *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, jwtService *auth.JWTService, cookieSecure bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		jwtService:   jwtService,
		cookieSecure: cookieSecure,
		log:          log.With(zap.String("handler", "auth")),
	}
}

// SigninRequest represents a signin request.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthData is returned by signin and refresh.
type AuthData struct {
	AccessToken string             `json:"accessToken"`
	User        *model.RequestUser `json:"user"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	Message string   `json:"message"`
	Data    AuthData `json:"data"`
}

// Signin godoc
// @Summary Sign in with email and password
// @Description Returns an access token and sets the refreshToken cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SigninRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) Signin(c echo.Context) error {
	var req SigninRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Signin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user)
	if err != nil {
		return errors.Internal(err)
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return errors.Internal(err)
	}

	c.SetCookie(h.refreshCookie(refreshToken, h.jwtService.RefreshTTL()))
	h.log.Info("signin", zap.String("user_id", user.ID.String()))

	return c.JSON(http.StatusOK, AuthResponse{
		Message: "Signin successful",
		Data:    AuthData{AccessToken: accessToken, User: user},
	})
}

// RefreshToken godoc
// @Summary Issue a new access token
// @Description Reads the refreshToken cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return errors.BadRequest("No refresh token provided")
	}

	user, err := h.authService.RefreshToken(c.Request().Context(), cookie.Value)
	if err != nil {
		return err
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user)
	if err != nil {
		return errors.Internal(err)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Message: "Refresh token successful",
		Data:    AuthData{AccessToken: accessToken, User: user},
	})
}

// Signout godoc
// @Summary Sign out
// @Description Revokes the refresh token and clears its cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /auth/signout [post]
func (h *AuthHandler) Signout(c echo.Context) error {
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		h.authService.Signout(c.Request().Context(), cookie.Value)
	}
	c.SetCookie(h.refreshCookie("", -1))
	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// refreshCookie builds the refresh cookie. A negative ttl expires it.
func (h *AuthHandler) refreshCookie(value string, ttl time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
	if ttl < 0 {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	} else {
		cookie.MaxAge = int(ttl.Seconds())
		cookie.Expires = time.Now().Add(ttl)
	}
	return cookie
}
