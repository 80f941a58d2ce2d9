package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devfolio/backend/internal/config"
	"github.com/devfolio/backend/internal/middleware"
	"github.com/devfolio/backend/internal/models"
	"github.com/devfolio/backend/internal/services"
	"github.com/devfolio/backend/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestAPI wires a minimal router with real services over an in-memory
// database: the auth endpoints plus one protected and one admin route.
func newTestAPI(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := models.InitDB(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Auth.BcryptCost = bcrypt.MinCost
	codec := utils.NewJWTCodec("handler-test-secret", 15*time.Minute)

	authService := services.NewAuthService(db, codec, cfg)
	authHandler := NewAuthHandler(authService)
	postHandler := NewPostHandler(services.NewPostService(db))
	userHandler := NewUserHandler(services.NewUserService(db))

	if err := authService.CreateAdminIfNotExists(&config.AdminConfig{
		Email:    "admin@example.com",
		Password: "admin-password",
	}); err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	protected := api.Group("", middleware.AuthRequired(db, codec))
	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/posts", postHandler.Create)

	admin := api.Group("", middleware.AuthRequired(db, codec), middleware.AdminRequired())
	admin.GET("/users", userHandler.List)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return env
}

func TestAuthFlowOverHTTP(t *testing.T) {
	r := newTestAPI(t)

	// Register.
	w := doJSON(t, r, "POST", "/api/auth/register", "", gin.H{
		"email":       "flow@example.com",
		"displayName": "Flow",
		"password":    "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}

	// Duplicate register carries the stable conflict code.
	w = doJSON(t, r, "POST", "/api/auth/register", "", gin.H{
		"email":       "flow@example.com",
		"displayName": "Flow II",
		"password":    "password456",
	})
	if w.Code != http.StatusConflict || decodeEnvelope(t, w).Code != "EMAIL_TAKEN" {
		t.Fatalf("duplicate register = %d %s", w.Code, w.Body.String())
	}

	// Short password fails validation before reaching the service.
	w = doJSON(t, r, "POST", "/api/auth/register", "", gin.H{
		"email":       "short@example.com",
		"displayName": "Short",
		"password":    "short",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short password status = %d", w.Code)
	}

	// Login.
	w = doJSON(t, r, "POST", "/api/auth/login", "", gin.H{
		"email":    "flow@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	var session struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		TokenType    string `json:"tokenType"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &session); err != nil {
		t.Fatal(err)
	}
	if session.TokenType != "bearer" || session.AccessToken == "" || session.RefreshToken == "" {
		t.Fatalf("session = %+v", session)
	}

	// Me.
	w = doJSON(t, r, "GET", "/api/auth/me", session.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d", w.Code)
	}

	// Refresh rotates; the old refresh token dies.
	w = doJSON(t, r, "POST", "/api/auth/refresh", "", gin.H{"refreshToken": session.RefreshToken})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body = %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, "POST", "/api/auth/refresh", "", gin.H{"refreshToken": session.RefreshToken})
	if w.Code != http.StatusUnauthorized || decodeEnvelope(t, w).Code != "TOKEN_REVOKED" {
		t.Fatalf("reused refresh = %d %s", w.Code, w.Body.String())
	}

	// Logout is 204 even for a token that no longer exists.
	w = doJSON(t, r, "POST", "/api/auth/logout", session.AccessToken, gin.H{"refreshToken": session.RefreshToken})
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", w.Code)
	}
	w = doJSON(t, r, "POST", "/api/auth/logout", session.AccessToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("empty-body logout status = %d", w.Code)
	}
}

func TestAdminRouteOverHTTP(t *testing.T) {
	r := newTestAPI(t)

	// Regular users get 403 on admin routes.
	doJSON(t, r, "POST", "/api/auth/register", "", gin.H{
		"email":       "pleb@example.com",
		"displayName": "Pleb",
		"password":    "password123",
	})
	w := doJSON(t, r, "POST", "/api/auth/login", "", gin.H{
		"email":    "pleb@example.com",
		"password": "password123",
	})
	var userSession struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &userSession); err != nil {
		t.Fatal(err)
	}

	w = doJSON(t, r, "GET", "/api/users", userSession.AccessToken, nil)
	if w.Code != http.StatusForbidden || decodeEnvelope(t, w).Code != "FORBIDDEN" {
		t.Fatalf("non-admin list users = %d %s", w.Code, w.Body.String())
	}

	// The seeded admin gets through.
	w = doJSON(t, r, "POST", "/api/auth/login", "", gin.H{
		"email":    "admin@example.com",
		"password": "admin-password",
	})
	var adminSession struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &adminSession); err != nil {
		t.Fatal(err)
	}

	w = doJSON(t, r, "GET", "/api/users", adminSession.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin list users = %d %s", w.Code, w.Body.String())
	}
}

func TestPostOwnershipOverHTTP(t *testing.T) {
	r := newTestAPI(t)

	doJSON(t, r, "POST", "/api/auth/register", "", gin.H{
		"email":       "writer@example.com",
		"displayName": "Writer",
		"password":    "password123",
	})
	w := doJSON(t, r, "POST", "/api/auth/login", "", gin.H{
		"email":    "writer@example.com",
		"password": "password123",
	})
	var session struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &session); err != nil {
		t.Fatal(err)
	}

	w = doJSON(t, r, "POST", "/api/posts", session.AccessToken, gin.H{
		"title": "Hello",
		"image": "https://example.com/cover.png",
		"body":  "first post",
		"tags":  []string{"go"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post = %d %s", w.Code, w.Body.String())
	}

	// Anonymous create is rejected.
	w = doJSON(t, r, "POST", "/api/posts", "", gin.H{
		"title": "Nope",
		"image": "https://example.com/cover.png",
		"body":  "anon",
		"tags":  []string{"go"},
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create post = %d", w.Code)
	}
}
