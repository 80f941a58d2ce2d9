package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/devfolio/backend/internal/config"
	"github.com/devfolio/backend/pkg/response"
	"google.golang.org/genai"
)

// ImageAIService wraps the Gemini API for cover image workflows: a text
// model writes the image prompt, an image model renders it.
type ImageAIService struct {
	client     *genai.Client
	model      string
	imageModel string
}

// NewImageAIService builds the Gemini client once at startup. With no API
// key configured the service stays disabled and both operations return
// ErrImageAIUnavailable.
func NewImageAIService(ctx context.Context, cfg *config.GeminiConfig) (*ImageAIService, error) {
	svc := &ImageAIService{
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}
	if cfg.APIKey == "" {
		return svc, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	svc.client = client
	return svc, nil
}

func (s *ImageAIService) Enabled() bool {
	return s.client != nil
}

type GeneratePromptRequest struct {
	Title    string   `json:"title" binding:"required"`
	Body     string   `json:"body"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
}

type GeneratePromptResponse struct {
	Prompt string `json:"prompt"`
}

type GenerateImageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type GenerateImageResponse struct {
	ImageData string `json:"imageData"`
}

const promptSystemInstruction = "You are an expert at writing prompts for AI image generation. " +
	"Your prompts produce artistic, high-quality images suitable for " +
	"technical blog posts and portfolio covers. " +
	"Images must be abstract or conceptual, with no text, no UI mockups, " +
	"no faces. Emphasise mood, colour palette, and visual metaphor."

// GeneratePrompt asks the text model for an optimised image-generation
// prompt describing the given content.
func (s *ImageAIService) GeneratePrompt(ctx context.Context, req *GeneratePromptRequest) (*GeneratePromptResponse, error) {
	if !s.Enabled() {
		return nil, response.ErrImageAIUnavailable
	}

	contextParts := []string{"Title: " + req.Title}
	if len(req.Tags) > 0 {
		contextParts = append(contextParts, "Tags: "+strings.Join(req.Tags, ", "))
	}
	if req.Category != "" {
		contextParts = append(contextParts, "Category: "+req.Category)
	}
	if req.Body != "" {
		body := req.Body
		if len(body) > 600 {
			body = body[:600]
		}
		contextParts = append(contextParts, "Content summary: "+body)
	}

	userPrompt := fmt.Sprintf(
		"Write a detailed image generation prompt in English for a cover image "+
			"that visually represents the following content.\n\n%s\n\n"+
			"Return ONLY the prompt text, no explanation or preamble.",
		strings.Join(contextParts, "\n"))

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(userPrompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(promptSystemInstruction, genai.RoleUser),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini prompt generation: %w", err)
	}

	return &GeneratePromptResponse{Prompt: strings.TrimSpace(resp.Text())}, nil
}

// GenerateImage renders the prompt with the image model and returns the
// result as a base64-encoded PNG.
func (s *ImageAIService) GenerateImage(ctx context.Context, req *GenerateImageRequest) (*GenerateImageResponse, error) {
	if !s.Enabled() {
		return nil, response.ErrImageAIUnavailable
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.imageModel, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini image generation: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &GenerateImageResponse{
					ImageData: base64.StdEncoding.EncodeToString(part.InlineData.Data),
				}, nil
			}
		}
	}
	return nil, response.NewServerError("The model did not return an image. Try adjusting the prompt.")
}
