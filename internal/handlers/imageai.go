package handlers

import (
	"github.com/devfolio/backend/internal/services"
	"github.com/devfolio/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// ImageAIHandler exposes the Gemini-backed cover image workflow. Admin only.
type ImageAIHandler struct {
	imageAI *services.ImageAIService
}

func NewImageAIHandler(imageAI *services.ImageAIService) *ImageAIHandler {
	return &ImageAIHandler{imageAI: imageAI}
}

// GeneratePrompt writes an image-generation prompt from content fields.
// POST /api/image-ai/generate-prompt
func (h *ImageAIHandler) GeneratePrompt(c *gin.Context) {
	var req services.GeneratePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.imageAI.GeneratePrompt(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GenerateImage renders a prompt into a base64-encoded PNG.
// POST /api/image-ai/generate-image
func (h *ImageAIHandler) GenerateImage(c *gin.Context) {
	var req services.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.imageAI.GenerateImage(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
