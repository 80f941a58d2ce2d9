package handlers

import (
	"github.com/devfolio/backend/internal/middleware"
	"github.com/devfolio/backend/internal/services"
	"github.com/gin-gonic/gin"

	"github.com/devfolio/backend/pkg/response"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func clientMeta(c *gin.Context) services.ClientMeta {
	return services.ClientMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// Register creates a new account.
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := h.auth.Register(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Login verifies credentials and starts a session.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.auth.Login(&req, clientMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Refresh rotates a refresh token and issues a new access token.
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.auth.Refresh(&req, clientMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Logout revokes the presented refresh token. Always 204, even for
// unknown tokens or a missing body.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req services.LogoutRequest
	_ = c.ShouldBindJSON(&req)
	h.auth.Logout(req.RefreshToken)
	response.NoContent(c)
}

// LogoutAll revokes every refresh token of the current user.
// POST /api/auth/logout-all
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	if err := h.auth.RevokeAll(middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me returns the current user.
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	view, err := h.auth.GetMe(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}
