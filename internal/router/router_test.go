package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"blogapi/internal/auth"
	"blogapi/internal/config"
	"blogapi/internal/db/dbtest"
	"blogapi/internal/events"
	"blogapi/internal/handler"
	"blogapi/internal/middleware"
	"blogapi/internal/model"
	"blogapi/internal/repository"
	"blogapi/internal/service"
)

const testPassword = "Asdf@123#"

type testServer struct {
	e   *echo.Echo
	db  *gorm.DB
	jwt *auth.JWTService
}

func newTestServer(t *testing.T, signinRate float64) *testServer {
	t.Helper()

	gdb := dbtest.New(t)
	log := zap.NewNop()
	cfg := &config.Config{
		App:  config.AppConfig{Name: "blogapi", Env: "test", Version: "test"},
		HTTP: config.HTTPConfig{FrontendURL: "http://localhost:5173", SigninRateLimit: signinRate},
	}

	userRepo := repository.NewUserRepository(gdb)
	categoryRepo := repository.NewCategoryRepository(gdb)
	postRepo := repository.NewPostRepository(gdb)

	jwtService := auth.NewJWTService("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	tokenStore := auth.NewTokenStore(nil)

	userService := service.NewUserService(userRepo)
	e := echo.New()
	Register(e, cfg, log, middleware.NewAuthenticator(jwtService, userService), Handlers{
		Auth:     handler.NewAuthHandler(service.NewAuthService(userRepo, jwtService, tokenStore, log), jwtService, false, log),
		Category: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo)),
		Post:     handler.NewPostHandler(service.NewPostService(postRepo, categoryRepo, events.NopPublisher{}, log)),
		User:     handler.NewUserHandler(userService),
		Health:   handler.NewHealthHandler(cfg.App, gdb, nil),
	})

	return &testServer{e: e, db: gdb, jwt: jwtService}
}

func (s *testServer) createUser(t *testing.T, email string, role model.Role, status model.Status) *model.User {
	t.Helper()
	hash, err := service.HashPassword(testPassword)
	require.NoError(t, err)
	u := &model.User{FirstName: "Test", Email: email, Password: hash, SystemRole: role, Status: status}
	require.NoError(t, repository.NewUserRepository(s.db).Create(context.Background(), u))
	return u
}

func (s *testServer) token(t *testing.T, u *model.User) string {
	t.Helper()
	tok, err := s.jwt.GenerateAccessToken(u.ToRequestUser())
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, body, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	return nil
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, 0)
	s.createUser(t, "ada@example.com", model.RoleUser, model.StatusActive)

	rec := s.do(http.MethodPost, "/api/auth/signin", `{"email":"ada@example.com","password":"`+testPassword+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	var signin handler.AuthResponse
	decode(t, rec, &signin)
	assert.Equal(t, "Signin successful", signin.Message)
	assert.NotEmpty(t, signin.Data.AccessToken)
	assert.Equal(t, "ada@example.com", signin.Data.User.Email)

	cookie := refreshCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.NotEmpty(t, cookie.Value)

	rec = s.do(http.MethodPost, "/api/auth/refresh-token", "", "", &http.Cookie{Name: "refreshToken", Value: cookie.Value})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var refreshed handler.AuthResponse
	decode(t, rec, &refreshed)
	assert.Equal(t, "Refresh token successful", refreshed.Message)
	assert.NotEmpty(t, refreshed.Data.AccessToken)

	rec = s.do(http.MethodPost, "/api/auth/signout", "", "", &http.Cookie{Name: "refreshToken", Value: cookie.Value})
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := refreshCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Contains(t, rec.Body.String(), "Logged out successfully")
}

func TestAuthErrors(t *testing.T) {
	s := newTestServer(t, 0)
	s.createUser(t, "ada@example.com", model.RoleUser, model.StatusActive)
	s.createUser(t, "off@example.com", model.RoleUser, model.StatusInactive)

	tests := []struct {
		name    string
		path    string
		body    string
		code    int
		message string
	}{
		{"wrong password", "/api/auth/signin", `{"email":"ada@example.com","password":"nope"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"unknown email", "/api/auth/signin", `{"email":"who@example.com","password":"nope"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"inactive account", "/api/auth/signin", `{"email":"off@example.com","password":"` + testPassword + `"}`, http.StatusForbidden, ""},
		{"invalid email", "/api/auth/signin", `{"email":"ada","password":"x"}`, http.StatusUnprocessableEntity, "Validation failed"},
		{"malformed body", "/api/auth/signin", `{`, http.StatusBadRequest, "Invalid request body"},
		{"refresh without cookie", "/api/auth/refresh-token", "", http.StatusBadRequest, "No refresh token provided"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, tt.path, tt.body, "")
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			if tt.message != "" {
				var body map[string]interface{}
				decode(t, rec, &body)
				assert.Equal(t, tt.message, body["message"])
			}
		})
	}

	t.Run("refresh with garbage cookie", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/auth/refresh-token", "", "", &http.Cookie{Name: "refreshToken", Value: "garbage"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("signout without cookie still succeeds", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/auth/signout", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestProfile(t *testing.T) {
	s := newTestServer(t, 0)
	ada := s.createUser(t, "ada@example.com", model.RoleUser, model.StatusActive)
	bob := s.createUser(t, "bob@example.com", model.RoleUser, model.StatusActive)
	adaToken := s.token(t, ada)

	rec := s.do(http.MethodPut, "/api/users/"+bob.ID.String()+"/profile", `{"firstName":"Mallory"}`, adaToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	stored, err := repository.NewUserRepository(s.db).FindByID(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test", stored.FirstName)

	rec = s.do(http.MethodPut, "/api/users/"+ada.ID.String()+"/profile", `{"firstName":"Ada","lastName":"Lovelace","settings":{"timezone":"Europe/London"}}`, adaToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "User profile updated successfully")

	rec = s.do(http.MethodGet, "/api/users/"+ada.ID.String()+"/profile", "", adaToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Profile service.UserProfile `json:"profile"`
		} `json:"data"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "Ada", resp.Data.Profile.FirstName)
	require.NotNil(t, resp.Data.Profile.LastName)
	assert.Equal(t, "Lovelace", *resp.Data.Profile.LastName)
	assert.Equal(t, "Europe/London", resp.Data.Profile.Settings.Timezone)

	rec = s.do(http.MethodPut, "/api/users/"+ada.ID.String()+"/profile", `{"firstName":"A","settings":{"timezone":"Mars/Olympus"}}`, adaToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/"+ada.ID.String()+"/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccessControl(t *testing.T) {
	s := newTestServer(t, 0)
	admin := s.createUser(t, "admin@example.com", model.RoleAdmin, model.StatusActive)
	user := s.createUser(t, "user@example.com", model.RoleUser, model.StatusActive)
	pending := s.createUser(t, "new@example.com", model.RoleUser, model.StatusPending)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		token  string
		code   int
	}{
		{"categories need a token", http.MethodGet, "/api/categories", "", "", http.StatusUnauthorized},
		{"users read categories", http.MethodGet, "/api/categories", "", s.token(t, user), http.StatusOK},
		{"users cannot create categories", http.MethodPost, "/api/categories", `{"name":"Go"}`, s.token(t, user), http.StatusForbidden},
		{"admins create categories", http.MethodPost, "/api/categories", `{"name":"Go"}`, s.token(t, admin), http.StatusCreated},
		{"deleting a missing category", http.MethodDelete, "/api/categories/" + uuid.NewString(), "", s.token(t, admin), http.StatusNotFound},
		{"bad category id", http.MethodGet, "/api/categories/nope", "", s.token(t, admin), http.StatusBadRequest},
		{"posts are public", http.MethodGet, "/api/posts", "", "", http.StatusOK},
		{"a bad token is ignored on public reads", http.MethodGet, "/api/posts", "", "garbage", http.StatusOK},
		{"writing posts needs a token", http.MethodPost, "/api/posts", `{}`, "", http.StatusUnauthorized},
		{"pending users cannot write", http.MethodPost, "/api/posts", `{}`, s.token(t, pending), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestPosts(t *testing.T) {
	s := newTestServer(t, 0)
	admin := s.createUser(t, "admin@example.com", model.RoleAdmin, model.StatusActive)
	author := s.createUser(t, "author@example.com", model.RoleUser, model.StatusActive)
	other := s.createUser(t, "other@example.com", model.RoleUser, model.StatusActive)

	category := &model.Category{Name: "Go", UserID: &admin.ID}
	require.NoError(t, repository.NewCategoryRepository(s.db).Create(context.Background(), category))

	authorToken := s.token(t, author)
	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		body := `{"title":"` + title + `","content":"body","tags":["go"],"categoryId":"` + category.ID.String() + `"}`
		rec := s.do(http.MethodPost, "/api/posts", body, authorToken)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct {
			Message string `json:"message"`
			Data    struct {
				Post service.PostDetail `json:"post"`
			} `json:"data"`
		}
		decode(t, rec, &resp)
		assert.Equal(t, "Post created successfully", resp.Message)
		assert.True(t, resp.Data.Post.CanEdit)
		assert.Equal(t, author.ID, resp.Data.Post.User.ID)
		ids = append(ids, resp.Data.Post.ID.String())
	}

	rec := s.do(http.MethodPost, "/api/posts", `{"title":"x","content":"y","categoryId":"`+uuid.NewString()+`"}`, authorToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	t.Run("pages through every post once", func(t *testing.T) {
		seen := map[string]bool{}
		cursor := ""
		for i := 0; i < 5; i++ {
			path := "/api/posts?limit=2"
			if cursor != "" {
				path += "&cursor=" + cursor
			}
			rec := s.do(http.MethodGet, path, "", "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp struct {
				Data service.PostPage `json:"data"`
			}
			decode(t, rec, &resp)
			for _, p := range resp.Data.Posts {
				assert.False(t, seen[p.ID.String()], "post %s returned twice", p.ID)
				seen[p.ID.String()] = true
				assert.False(t, p.CanEdit)
			}
			if !resp.Data.Meta.HasMore {
				assert.Empty(t, resp.Data.Meta.NextCursor)
				break
			}
			cursor = resp.Data.Meta.NextCursor
		}
		assert.Len(t, seen, len(ids))
	})

	t.Run("rejects bad query parameters", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/posts?limit=abc", "", "").Code)
		assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodGet, "/api/posts?sortOrder=sideways", "", "").Code)
	})

	t.Run("only the owner edits", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/api/posts/"+ids[0], `{"title":"hijacked"}`, s.token(t, other))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.do(http.MethodPut, "/api/posts/"+ids[0], `{"title":"renamed"}`, authorToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"title":"renamed"`)
	})

	t.Run("category with posts cannot be deleted", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/api/categories/"+category.ID.String(), "", s.token(t, admin))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/api/posts/"+ids[1], "", authorToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/posts/"+ids[1], "", "").Code)
	})
}

func TestRouteNotFound(t *testing.T) {
	s := newTestServer(t, 0)

	rec := s.do(http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, "Route not found: [/api/nope]", body["message"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 0)

	rec := s.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health handler.HealthResponse
	decode(t, rec, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "up", health.Database)
	assert.Equal(t, "down", health.Redis)

	rec = s.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"blogapi"`)
}

func TestSigninRateLimit(t *testing.T) {
	s := newTestServer(t, 1)

	var codes []int
	for i := 0; i < 5; i++ {
		codes = append(codes, s.do(http.MethodPost, "/api/auth/signin", `{`, "").Code)
	}
	assert.Equal(t, http.StatusBadRequest, codes[0])
	assert.Equal(t, http.StatusTooManyRequests, codes[len(codes)-1])
}
