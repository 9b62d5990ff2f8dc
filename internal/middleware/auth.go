package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"blogapi/internal/auth"
	apperrors "blogapi/internal/errors"
	"blogapi/internal/model"
)

const userContextKey = "user"

// UserLookup resolves a token subject. A nil user with a nil error means the subject no longer exists.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.RequestUser, error)
}

var errUnknownSubject = errors.New("token subject not found")

// Authenticator builds the attach and require stages over one bearer token parser.
type Authenticator struct {
	jwt   *auth.JWTService
	users UserLookup
}

func NewAuthenticator(jwt *auth.JWTService, users UserLookup) *Authenticator {
	return &Authenticator{jwt: jwt, users: users}
}

// CurrentUser returns the user attached to the request, or nil.
func CurrentUser(c echo.Context) *model.RequestUser {
	u, _ := c.Get(userContextKey).(*model.RequestUser)
	return u
}

// SetCurrentUser attaches u to the request.
func SetCurrentUser(c echo.Context, u *model.RequestUser) {
	c.Set(userContextKey, u)
}

// parseToken is the echo-jwt ParseTokenFunc. The stored value is the freshly loaded *model.RequestUser.
func (a *Authenticator) parseToken(c echo.Context, token string) (interface{}, error) {
	claims, err := a.jwt.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	user, err := a.users.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUnknownSubject
	}
	return user, nil
}

func (a *Authenticator) config(errorHandler func(echo.Context, error) error, continueOnError bool) echojwt.Config {
	return echojwt.Config{
		TokenLookup:            "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:             userContextKey,
		ParseTokenFunc:         a.parseToken,
		ErrorHandler:           errorHandler,
		ContinueOnIgnoredError: continueOnError,
	}
}

// AttachUser sets the current user when a valid bearer token is present and never rejects.
func (a *Authenticator) AttachUser() echo.MiddlewareFunc {
	return echojwt.WithConfig(a.config(func(c echo.Context, err error) error {
		return nil
	}, true))
}

// RequireAuth rejects requests without a valid bearer token for an existing user.
func (a *Authenticator) RequireAuth() echo.MiddlewareFunc {
	return echojwt.WithConfig(a.config(func(c echo.Context, err error) error {
		var httpErr *apperrors.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode >= http.StatusInternalServerError {
			return httpErr
		}
		return apperrors.Unauthorized("Unauthorized")
	}, false))
}

// RequireActiveUser rejects accounts that are not active. It must run after RequireAuth.
func RequireActiveUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return apperrors.Unauthorized("Unauthorized")
			}
			switch user.Status {
			case model.StatusActive:
				return next(c)
			case model.StatusInactive:
				return apperrors.Forbidden("Your account is deactivated")
			case model.StatusSuspended:
				return apperrors.Forbidden("Your account is suspended")
			case model.StatusPending:
				return apperrors.Forbidden("Your account is pending activation")
			default:
				return apperrors.Forbidden("Forbidden")
			}
		}
	}
}
