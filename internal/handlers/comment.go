package handlers

import (
	"github.com/devfolio/backend/internal/middleware"
	"github.com/devfolio/backend/internal/services"
	"github.com/devfolio/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// List returns a post's top-level comments with reply counts.
// GET /api/posts/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.comments.ListByPost(postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// ListReplies returns the direct replies of one comment.
// GET /api/comments/:id/replies
func (h *CommentHandler) ListReplies(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.comments.ListReplies(commentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// Create adds a comment (or a reply, when parentId is set).
// POST /api/posts/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	current, _ := middleware.GetCurrentUser(c)
	comment, err := h.comments.Create(postID, &req, current)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// Delete removes an owned comment.
// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	current, _ := middleware.GetCurrentUser(c)
	if err := h.comments.Delete(commentID, current); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
