package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogapi/internal/auth"
	apperrors "blogapi/internal/errors"
	"blogapi/internal/model"
)

type fakeUsers map[uuid.UUID]*model.RequestUser

func (f fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (*model.RequestUser, error) {
	return f[id], nil
}

type failingUsers struct{}

func (failingUsers) GetUserByID(context.Context, uuid.UUID) (*model.RequestUser, error) {
	return nil, apperrors.Internal(assert.AnError)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		httpErr := apperrors.MapErrorToHTTP(err)
		_ = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return e
}

// whoami echoes the attached user's email, or "anonymous".
func whoami(c echo.Context) error {
	if u := CurrentUser(c); u != nil {
		return c.String(http.StatusOK, u.Email)
	}
	return c.String(http.StatusOK, "anonymous")
}

func do(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func setup(t *testing.T, status model.Status, role model.Role) (*auth.JWTService, fakeUsers, *model.RequestUser, string) {
	t.Helper()
	jwtService := auth.NewJWTService("access", "refresh", time.Minute, time.Hour)
	user := &model.RequestUser{ID: uuid.New(), Email: "ada@example.com", FirstName: "Ada", SystemRole: role, Status: status}
	token, err := jwtService.GenerateAccessToken(user)
	require.NoError(t, err)
	return jwtService, fakeUsers{user.ID: user}, user, token
}

func TestAttachUser(t *testing.T) {
	jwtService, users, _, token := setup(t, model.StatusActive, model.RoleUser)
	e := newEcho()
	e.GET("/", whoami, NewAuthenticator(jwtService, users).AttachUser())

	ghost, err := jwtService.GenerateAccessToken(&model.RequestUser{ID: uuid.New(), SystemRole: model.RoleUser})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"no token", "", "anonymous"},
		{"valid token", token, "ada@example.com"},
		{"garbage token", "garbage", "anonymous"},
		{"unknown subject", ghost, "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.token)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRequireAuth(t *testing.T) {
	jwtService, users, _, token := setup(t, model.StatusActive, model.RoleUser)
	e := newEcho()
	e.GET("/", whoami, NewAuthenticator(jwtService, users).RequireAuth())

	ghost, err := jwtService.GenerateAccessToken(&model.RequestUser{ID: uuid.New(), SystemRole: model.RoleUser})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		code  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "garbage", http.StatusUnauthorized},
		{"unknown subject", ghost, http.StatusUnauthorized},
		{"valid token", token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.token)
			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusUnauthorized {
				var body apperrors.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, "Unauthorized", body.Message)
			}
		})
	}
}

func TestRequireAuth_LookupFailureIsNotUnauthorized(t *testing.T) {
	jwtService, _, _, token := setup(t, model.StatusActive, model.RoleUser)
	e := newEcho()
	e.GET("/", whoami, NewAuthenticator(jwtService, failingUsers{}).RequireAuth())

	rec := do(e, token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireActiveUser(t *testing.T) {
	tests := []struct {
		status model.Status
		code   int
		msg    string
	}{
		{model.StatusActive, http.StatusOK, ""},
		{model.StatusInactive, http.StatusForbidden, "Your account is deactivated"},
		{model.StatusSuspended, http.StatusForbidden, "Your account is suspended"},
		{model.StatusPending, http.StatusForbidden, "Your account is pending activation"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			jwtService, users, _, token := setup(t, tt.status, model.RoleUser)
			e := newEcho()
			a := NewAuthenticator(jwtService, users)
			e.GET("/", whoami, a.RequireAuth(), RequireActiveUser())

			rec := do(e, token)
			assert.Equal(t, tt.code, rec.Code)
			if tt.msg != "" {
				assert.Contains(t, rec.Body.String(), tt.msg)
			}
		})
	}

	// without a prior auth stage
	e := newEcho()
	e.GET("/", whoami, RequireActiveUser())
	assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
}

func TestRequireSystemRole(t *testing.T) {
	assert.Panics(t, func() { RequireSystemRole("superuser") })
	assert.Panics(t, func() { RequireSystemRole() })

	tests := []struct {
		role model.Role
		code int
	}{
		{model.RoleAdmin, http.StatusOK},
		{model.RoleModerator, http.StatusForbidden},
		{model.RoleUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			jwtService, users, _, token := setup(t, model.StatusActive, tt.role)
			e := newEcho()
			e.GET("/", whoami, NewAuthenticator(jwtService, users).RequireAuth(), RequireSystemRole(model.RoleAdmin))
			assert.Equal(t, tt.code, do(e, token).Code)
		})
	}

	e := newEcho()
	e.GET("/", whoami, RequireSystemRole(model.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
}
