package middleware

import (
	"errors"
	"strings"

	"github.com/devfolio/backend/internal/models"
	"github.com/devfolio/backend/internal/utils"
	"github.com/devfolio/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const contextUserKey = "current_user"

// CurrentUser is the immutable identity attached to an authenticated
// request. It carries exactly the fields authorization checks need.
type CurrentUser struct {
	ID          uint
	Email       string
	DisplayName string
	IsActive    bool
	IsAdmin     bool
}

// AuthRequired decodes the bearer access token and re-loads the user from
// the store on every request. A token for a deleted or deactivated user is
// rejected even if it is still cryptographically valid.
func AuthRequired(db *gorm.DB, codec *utils.JWTCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveUser(c, db, codec)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// AdminRequired allows only admin users through. It must run after
// AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok || !user.IsAdmin {
			response.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the current user when a valid bearer token is
// present and silently continues anonymously otherwise. Used by public
// endpoints that personalize output for logged-in callers.
func OptionalAuth(db *gorm.DB, codec *utils.JWTCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := resolveUser(c, db, codec); err == nil {
			c.Set(contextUserKey, user)
		}
		c.Next()
	}
}

// GetCurrentUser returns the authenticated user attached to the request.
func GetCurrentUser(c *gin.Context) (CurrentUser, bool) {
	v, exists := c.Get(contextUserKey)
	if !exists {
		return CurrentUser{}, false
	}
	user, ok := v.(CurrentUser)
	return user, ok
}

// GetUserID returns the current user id, or 0 for anonymous requests.
func GetUserID(c *gin.Context) uint {
	if user, ok := GetCurrentUser(c); ok {
		return user.ID
	}
	return 0
}

func resolveUser(c *gin.Context, db *gorm.DB, codec *utils.JWTCodec) (CurrentUser, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return CurrentUser{}, response.ErrInvalidToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return CurrentUser{}, response.ErrInvalidToken
	}

	claims, err := codec.Decode(parts[1])
	if err != nil {
		return CurrentUser{}, response.ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return CurrentUser{}, response.ErrInvalidToken
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CurrentUser{}, response.ErrInvalidToken
		}
		return CurrentUser{}, err
	}
	if !user.IsActive {
		return CurrentUser{}, response.ErrInvalidToken
	}

	return CurrentUser{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsActive:    user.IsActive,
		IsAdmin:     user.IsAdmin,
	}, nil
}
