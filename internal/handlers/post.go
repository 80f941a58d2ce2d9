package handlers

import (
	"strconv"

	"github.com/devfolio/backend/internal/middleware"
	"github.com/devfolio/backend/internal/services"
	"github.com/devfolio/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// List returns a page of posts. Anonymous callers get likedByMe=false.
// GET /api/posts?q=tag&uid=1&page=1&size=20
func (h *PostHandler) List(c *gin.Context) {
	var req services.PostListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.posts.List(&req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get returns a single post.
// GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	post, err := h.posts.Get(id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// Create stores a new post for the current user.
// POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req services.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	current, _ := middleware.GetCurrentUser(c)
	post, err := h.posts.Create(&req, current)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// Update modifies an owned post.
// PUT /api/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	current, _ := middleware.GetCurrentUser(c)
	post, err := h.posts.Update(id, &req, current)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// Delete removes an owned post.
// DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	current, _ := middleware.GetCurrentUser(c)
	if err := h.posts.Delete(id, current); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Like marks the post as liked by the current user.
// POST /api/posts/:id/like
func (h *PostHandler) Like(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.posts.Like(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Unlike removes the current user's like.
// DELETE /api/posts/:id/like
func (h *PostHandler) Unlike(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.posts.Unlike(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
