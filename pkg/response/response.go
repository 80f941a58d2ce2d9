package response

import (
	"errors"
	"net/http"

	"github.com/devfolio/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Response is the unified API response format.
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AppError is an expected, caller-recoverable failure with a stable
// machine-readable code. Anything else that reaches the boundary is
// treated as an internal error and not exposed to the client.
type AppError struct {
	HTTPStatus int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Auth / session errors. INVALID_CREDENTIALS and TOKEN_REVOKED deliberately
// cover multiple underlying causes (enumeration resistance).
var (
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect."}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "The provided token is invalid or has expired."}
	ErrTokenRevoked       = &AppError{http.StatusUnauthorized, "TOKEN_REVOKED", "The refresh token has been revoked."}
	ErrAccountInactive    = &AppError{http.StatusForbidden, "ACCOUNT_INACTIVE", "This account has been deactivated."}
	ErrForbidden          = &AppError{http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action."}
	ErrEmailTaken         = &AppError{http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists."}
)

// Resource errors.
var (
	ErrPostNotFound    = &AppError{http.StatusNotFound, "POST_NOT_FOUND", "The requested post was not found."}
	ErrCommentNotFound = &AppError{http.StatusNotFound, "COMMENT_NOT_FOUND", "The requested comment was not found."}
	ErrProjectNotFound = &AppError{http.StatusNotFound, "PROJECT_NOT_FOUND", "The requested project was not found."}
	ErrUserNotFound    = &AppError{http.StatusNotFound, "USER_NOT_FOUND", "The requested user was not found."}
	ErrSlugTaken       = &AppError{http.StatusConflict, "SLUG_TAKEN", "A project with this slug already exists."}
)

// ErrImageAIUnavailable is returned when no Gemini API key is configured.
var ErrImageAIUnavailable = &AppError{http.StatusServiceUnavailable, "IMAGE_AI_UNAVAILABLE", "Image generation is not configured."}

func NewBadRequest(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Code: "BAD_REQUEST", Message: msg}
}

func NewServerError(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: msg}
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    "OK",
		Message: "ok",
		Data:    data,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    "OK",
		Message: "created",
		Data:    data,
	})
}

// NoContent sends an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response. Expected *AppError values are surfaced with
// their code and status; everything else is logged with full context and
// collapsed into a generic internal error that leaks no detail.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, Response{
			Code:    appErr.Code,
			Message: appErr.Message,
		})
		return
	}
	logger.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("unexpected error")
	c.JSON(http.StatusInternalServerError, Response{
		Code:    "INTERNAL_ERROR",
		Message: "An unexpected error occurred.",
	})
}

// BadRequest sends a 400 response for malformed input (binding failures).
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: "BAD_REQUEST", Message: msg})
}

// Unauthorized sends a 401 INVALID_TOKEN response.
func Unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, Response{Code: ErrInvalidToken.Code, Message: ErrInvalidToken.Message})
}

// Forbidden sends a 403 FORBIDDEN response.
func Forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, Response{Code: ErrForbidden.Code, Message: ErrForbidden.Message})
}
