package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devfolio/backend/internal/config"
	"github.com/devfolio/backend/internal/models"
	"github.com/devfolio/backend/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGuardTestEnv(t *testing.T) (*gorm.DB, *utils.JWTCodec) {
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

	return db, utils.NewJWTCodec("guard-test-secret", 15*time.Minute)
}

func createGuardUser(t *testing.T, db *gorm.DB, email string, admin bool) models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		DisplayName:  "Test",
		PasswordHash: "x",
		IsActive:     true,
		IsAdmin:      admin,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	return user
}

func issueToken(t *testing.T, codec *utils.JWTCodec, user models.User) string {
	t.Helper()
	token, err := codec.Issue(user.ID, user.Email, user.DisplayName)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func protectedRouter(db *gorm.DB, codec *utils.JWTCodec, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired(db, codec)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		user, _ := GetCurrentUser(c)
		c.JSON(200, gin.H{"id": user.ID, "email": user.Email})
	})
	r.GET("/protected", handlers...)
	return r
}

func get(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredRejectsMissingOrMalformedHeader(t *testing.T) {
	db, codec := newGuardTestEnv(t)
	router := protectedRouter(db, codec)

	cases := []string{
		"",
		"not-a-bearer-token",
		"Basic dXNlcjpwYXNz",
		"Bearer",
		"bearer lowercase-scheme",
	}
	for _, header := range cases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	db, codec := newGuardTestEnv(t)
	user := createGuardUser(t, db, "valid@example.com", false)
	router := protectedRouter(db, codec)

	w := get(router, "/protected", issueToken(t, codec, user))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["email"] != "valid@example.com" {
		t.Errorf("email = %v", body["email"])
	}
}

func TestAuthRequiredRechecksUserState(t *testing.T) {
	db, codec := newGuardTestEnv(t)
	user := createGuardUser(t, db, "stale@example.com", false)
	router := protectedRouter(db, codec)
	token := issueToken(t, codec, user)

	// Deactivation kills the session even though the JWT is still valid.
	if err := db.Model(&user).Update("is_active", false).Error; err != nil {
		t.Fatal(err)
	}
	if w := get(router, "/protected", token); w.Code != http.StatusUnauthorized {
		t.Errorf("deactivated user: status = %d, want 401", w.Code)
	}

	// So does deletion.
	if err := db.Unscoped().Delete(&models.User{}, user.ID).Error; err != nil {
		t.Fatal(err)
	}
	if w := get(router, "/protected", token); w.Code != http.StatusUnauthorized {
		t.Errorf("deleted user: status = %d, want 401", w.Code)
	}
}

func TestAuthRequiredRejectsWrongSecret(t *testing.T) {
	db, codec := newGuardTestEnv(t)
	user := createGuardUser(t, db, "spoof@example.com", false)
	router := protectedRouter(db, codec)

	forged := utils.NewJWTCodec("different-secret", 15*time.Minute)
	w := get(router, "/protected", issueToken(t, forged, user))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("forged token: status = %d, want 401", w.Code)
	}
}

func TestAdminRequired(t *testing.T) {
	db, codec := newGuardTestEnv(t)
	admin := createGuardUser(t, db, "admin@example.com", true)
	regular := createGuardUser(t, db, "user@example.com", false)
	router := protectedRouter(db, codec, AdminRequired())

	if w := get(router, "/protected", issueToken(t, codec, admin)); w.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", w.Code)
	}
	if w := get(router, "/protected", issueToken(t, codec, regular)); w.Code != http.StatusForbidden {
		t.Errorf("non-admin: status = %d, want 403", w.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	db, codec := newGuardTestEnv(t)
	user := createGuardUser(t, db, "opt@example.com", false)

	r := gin.New()
	r.GET("/feed", OptionalAuth(db, codec), func(c *gin.Context) {
		c.JSON(200, gin.H{"uid": GetUserID(c)})
	})

	// Anonymous, garbage token, and valid token all get a 200.
	for header, wantUID := range map[string]float64{
		"":               0,
		"Bearer garbage": 0,
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/feed", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("header %q: status = %d", header, w.Code)
		}
		var body map[string]float64
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body["uid"] != wantUID {
			t.Errorf("header %q: uid = %v, want %v", header, body["uid"], wantUID)
		}
	}

	w := get(r, "/feed", issueToken(t, codec, user))
	var body map[string]float64
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if uint(body["uid"]) != user.ID {
		t.Errorf("uid = %v, want %d", body["uid"], user.ID)
	}
}
