package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/devfolio/backend/internal/models"
	"github.com/devfolio/backend/pkg/response"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProjectListRequest struct {
	Featured bool `form:"featured"`
	Page     int  `form:"page" binding:"omitempty,min=1"`
	Size     int  `form:"size" binding:"omitempty,min=1,max=100"`
}

type ProjectListResponse struct {
	Items []models.Project `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

type CreateProjectRequest struct {
	Slug        string                 `json:"slug" binding:"required"`
	Title       string                 `json:"title" binding:"required"`
	Tagline     string                 `json:"tagline" binding:"required"`
	Description string                 `json:"description" binding:"required"`
	Category    string                 `json:"category" binding:"required"`
	URL         string                 `json:"url" binding:"omitempty,url"`
	GithubURL   string                 `json:"githubUrl" binding:"omitempty,url"`
	Image       string                 `json:"image"`
	Tags        models.StringList      `json:"tags"`
	TechStack   models.TechStackList   `json:"techStack"`
	Stats       models.StatList        `json:"stats"`
	Features    models.StringList      `json:"features"`
	Year        int                    `json:"year" binding:"required,min=2000,max=2100"`
	Featured    bool                   `json:"featured"`
}

type UpdateProjectRequest struct {
	Title       *string               `json:"title"`
	Tagline     *string               `json:"tagline"`
	Description *string               `json:"description"`
	Category    *string               `json:"category"`
	URL         *string               `json:"url" binding:"omitempty,url"`
	GithubURL   *string               `json:"githubUrl" binding:"omitempty,url"`
	Image       *string               `json:"image"`
	Tags        *models.StringList    `json:"tags"`
	TechStack   *models.TechStackList `json:"techStack"`
	Stats       *models.StatList      `json:"stats"`
	Features    *models.StringList    `json:"features"`
	Year        *int                  `json:"year" binding:"omitempty,min=2000,max=2100"`
	Featured    *bool                 `json:"featured"`
}

// List returns projects newest-first, optionally restricted to featured ones.
func (s *ProjectService) List(req *ProjectListRequest) (*ProjectListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Size == 0 {
		req.Size = 50
	}

	query := s.db.Model(&models.Project{})
	if req.Featured {
		query = query.Where("featured = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting projects: %w", err)
	}

	var projects []models.Project
	err := query.
		Order("year DESC, created_at DESC").
		Offset((req.Page - 1) * req.Size).
		Limit(req.Size).
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	return &ProjectListResponse{
		Items: projects,
		Total: total,
		Page:  req.Page,
		Size:  req.Size,
	}, nil
}

// GetBySlug returns a single project.
func (s *ProjectService) GetBySlug(slug string) (*models.Project, error) {
	var project models.Project
	err := s.db.Where("slug = ?", strings.ToLower(slug)).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrProjectNotFound
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return &project, nil
}

// Create stores a new project. Slugs are lowercased URL path segments and
// must be unique.
func (s *ProjectService) Create(req *CreateProjectRequest) (*models.Project, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, response.NewBadRequest("slug must contain only lowercase letters, digits and hyphens")
	}

	project := models.Project{
		Slug:        slug,
		Title:       strings.TrimSpace(req.Title),
		Tagline:     req.Tagline,
		Description: req.Description,
		Category:    req.Category,
		URL:         req.URL,
		GithubURL:   req.GithubURL,
		Image:       req.Image,
		Tags:        req.Tags,
		TechStack:   req.TechStack,
		Stats:       req.Stats,
		Features:    req.Features,
		Year:        req.Year,
		Featured:    req.Featured,
	}

	if err := s.db.Create(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.ErrSlugTaken
		}
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return &project, nil
}

// Update applies a partial update to a project identified by slug.
// The slug itself is immutable.
func (s *ProjectService) Update(slug string, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.GetBySlug(slug)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Tagline != nil {
		updates["tagline"] = *req.Tagline
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.URL != nil {
		updates["url"] = *req.URL
	}
	if req.GithubURL != nil {
		updates["github_url"] = *req.GithubURL
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}
	if req.TechStack != nil {
		updates["tech_stack"] = *req.TechStack
	}
	if req.Stats != nil {
		updates["stats"] = *req.Stats
	}
	if req.Features != nil {
		updates["features"] = *req.Features
	}
	if req.Year != nil {
		updates["year"] = *req.Year
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}

	if len(updates) > 0 {
		if err := s.db.Model(project).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("updating project: %w", err)
		}
	}
	return project, nil
}

// Delete removes a project by slug.
func (s *ProjectService) Delete(slug string) error {
	project, err := s.GetBySlug(slug)
	if err != nil {
		return err
	}
	if err := s.db.Delete(project).Error; err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}
