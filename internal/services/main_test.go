package services

import (
	"testing"
	"time"

	"github.com/devfolio/backend/internal/config"
	"github.com/devfolio/backend/internal/middleware"
	"github.com/devfolio/backend/internal/models"
	"github.com/devfolio/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// newTestDB opens an isolated in-memory database. The connection pool is
// capped at one so every query sees the same in-memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := models.InitDB(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	// MinCost keeps the bcrypt work factor out of the test runtime.
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return cfg
}

func newTestAuthService(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()
	codec := utils.NewJWTCodec("test-secret", 15*time.Minute)
	return NewAuthService(db, codec, testConfig())
}

func registerUser(t *testing.T, svc *AuthService, email, name, password string) *models.UserView {
	t.Helper()
	view, err := svc.Register(&RegisterRequest{
		Email:       email,
		DisplayName: name,
		Password:    password,
	})
	if err != nil {
		t.Fatalf("registering %s: %v", email, err)
	}
	return view
}

func currentUserFromView(v models.UserView) middleware.CurrentUser {
	return middleware.CurrentUser{
		ID:          v.ID,
		Email:       v.Email,
		DisplayName: v.DisplayName,
		IsActive:    true,
		IsAdmin:     v.IsAdmin,
	}
}

func loginUser(t *testing.T, svc *AuthService, email, password string) *TokenResult {
	t.Helper()
	result, err := svc.Login(&LoginRequest{Email: email, Password: password}, ClientMeta{})
	if err != nil {
		t.Fatalf("logging in %s: %v", email, err)
	}
	return result
}
