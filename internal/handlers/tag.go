package handlers

import (
	"github.com/devfolio/backend/internal/services"
	"github.com/devfolio/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	tags *services.TagService
}

func NewTagHandler(tags *services.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

// List returns every tag with its post count.
// GET /api/tags
func (h *TagHandler) List(c *gin.Context) {
	list, err := h.tags.ListWithCounts()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
