package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devfolio/backend/internal/config"
	"github.com/devfolio/backend/internal/models"
	"github.com/devfolio/backend/internal/utils"
	"github.com/devfolio/backend/pkg/logger"
	"github.com/devfolio/backend/pkg/response"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService implements registration, login, logout, token refresh and the
// refresh-token lifecycle. It is a stateless wrapper around the database;
// conflicting writes are serialized by the store, not by in-process locks.
type AuthService struct {
	db         *gorm.DB
	codec      *utils.JWTCodec
	bcryptCost int
	refreshTTL time.Duration
}

func NewAuthService(db *gorm.DB, codec *utils.JWTCodec, cfg *config.Config) *AuthService {
	return &AuthService{
		db:         db,
		codec:      codec,
		bcryptCost: cfg.Auth.BcryptCost,
		refreshTTL: cfg.RefreshTTL(),
	}
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"displayName" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ClientMeta carries optional audit metadata recorded with refresh tokens.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

type TokenResult struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	TokenType    string          `json:"tokenType"`
	User         models.UserView `json:"user"`
}

// Register creates a new account. It does not create a session; the caller
// must log in separately.
func (s *AuthService) Register(req *RegisterRequest) (*models.UserView, error) {
	email := normalizeEmail(req.Email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if count > 0 {
		return nil, response.ErrEmailTaken
	}

	hash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: hash,
		IsActive:     true,
		IsAdmin:      false,
	}
	if err := s.db.Create(&user).Error; err != nil {
		// Two concurrent registrations can both pass the count check;
		// the unique index decides the winner.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	view := user.View()
	return &view, nil
}

// Login verifies credentials and issues an access + refresh token pair.
// "No such user" and "wrong password" are indistinguishable to the caller,
// and both paths perform exactly one bcrypt comparison.
func (s *AuthService) Login(req *LoginRequest, meta ClientMeta) (*TokenResult, error) {
	var user models.User
	err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.BurnPasswordCheck(req.Password)
			return nil, response.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return nil, response.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, response.ErrAccountInactive
	}

	rawRefresh, _, err := s.issueRefreshToken(s.db, user.ID, meta)
	if err != nil {
		return nil, err
	}

	return s.buildTokenResult(&user, rawRefresh)
}

// Logout revokes the presented refresh token. It never surfaces an error:
// revoking an unknown or already-revoked token is a no-op, and storage
// failures are logged but swallowed.
func (s *AuthService) Logout(refreshToken string) {
	if refreshToken == "" {
		return
	}

	hash := hashRefreshToken(refreshToken)
	err := s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", time.Now()).Error
	if err != nil {
		logger.Error().Err(err).Msg("revoking refresh token on logout")
	}
}

// RevokeAll revokes every active refresh token of a user ("log out everywhere").
func (s *AuthService) RevokeAll(userID uint) error {
	err := s.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("revoking user tokens: %w", err)
	}
	return nil
}

// Refresh rotates the presented refresh token and issues a fresh access
// token. The revoke step is a single conditional update, so of two
// concurrent calls with the same token exactly one wins; the loser sees
// TOKEN_REVOKED. Revoke and issue run in one transaction: a failure at any
// point leaves the old token revoked and no dangling session.
func (s *AuthService) Refresh(req *RefreshRequest, meta ClientMeta) (*TokenResult, error) {
	hash := hashRefreshToken(req.RefreshToken)

	var stored models.RefreshToken
	err := s.db.
		Where("token_hash = ? AND revoked_at IS NULL AND expires_at > ?", hash, time.Now()).
		First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown, revoked, and expired all collapse into one error.
			return nil, response.ErrTokenRevoked
		}
		return nil, fmt.Errorf("loading refresh token: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, stored.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrInvalidToken
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if !user.IsActive {
		return nil, response.ErrInvalidToken
	}

	var rawRefresh string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", stored.ID).
			Update("revoked_at", time.Now())
		if res.Error != nil {
			return fmt.Errorf("revoking refresh token: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost a rotation race; the other caller already revoked it.
			return response.ErrTokenRevoked
		}

		raw, record, err := s.issueRefreshToken(tx, user.ID, meta)
		if err != nil {
			return err
		}
		rawRefresh = raw

		return tx.Model(&models.RefreshToken{}).
			Where("id = ?", stored.ID).
			Update("replaced_by_token_id", record.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return s.buildTokenResult(&user, rawRefresh)
}

// GetMe returns the public view of a user resolved from a validated access
// token. A user that no longer exists means the session is dead, not that a
// resource is missing.
func (s *AuthService) GetMe(userID uint) (*models.UserView, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrInvalidToken
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	view := user.View()
	return &view, nil
}

// PurgeExpiredTokens deletes refresh-token rows whose expiry predates the
// cutoff. Revocation audit rows inside the retention window survive.
func (s *AuthService) PurgeExpiredTokens(cutoff time.Time) (int64, error) {
	res := s.db.Where("expires_at < ?", cutoff).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("purging refresh tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CreateAdminIfNotExists seeds the configured admin account on first start.
func (s *AuthService) CreateAdminIfNotExists(cfg *config.AdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(cfg.Password, s.bcryptCost)
	if err != nil {
		return err
	}

	displayName := cfg.DisplayName
	if displayName == "" {
		displayName = "Administrator"
	}

	admin := models.User{
		Email:        normalizeEmail(cfg.Email),
		DisplayName:  displayName,
		PasswordHash: hash,
		IsActive:     true,
		IsAdmin:      true,
	}
	return s.db.Create(&admin).Error
}

func (s *AuthService) buildTokenResult(user *models.User, rawRefresh string) (*TokenResult, error) {
	accessToken, err := s.codec.Issue(user.ID, user.Email, user.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	return &TokenResult{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		TokenType:    "bearer",
		User:         user.View(),
	}, nil
}

// issueRefreshToken generates a random opaque token, stores its SHA-256
// digest and returns the raw value. The raw token is shown to the client
// once and cannot be recovered from storage.
func (s *AuthService) issueRefreshToken(tx *gorm.DB, userID uint, meta ClientMeta) (string, *models.RefreshToken, error) {
	raw := uuid.NewString()
	record := models.RefreshToken{
		UserID:    userID,
		TokenHash: hashRefreshToken(raw),
		ExpiresAt: time.Now().Add(s.refreshTTL),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := tx.Create(&record).Error; err != nil {
		return "", nil, fmt.Errorf("storing refresh token: %w", err)
	}
	return raw, &record, nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
