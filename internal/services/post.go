package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devfolio/backend/internal/middleware"
	"github.com/devfolio/backend/internal/models"
	"github.com/devfolio/backend/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxTagsPerPost = 10

type PostService struct {
	db *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

type PostListRequest struct {
	Page int    `form:"page" binding:"omitempty,min=1"`
	Size int    `form:"size" binding:"omitempty,min=1,max=100"`
	Tag  string `form:"q"`
	UID  uint   `form:"uid"`
}

type PostListResponse struct {
	Items []PostResponse `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Pages int            `json:"pages"`
}

type CreatePostRequest struct {
	Title string   `json:"title" binding:"required"`
	Image string   `json:"image" binding:"required,url"`
	Body  string   `json:"body" binding:"required"`
	Tags  []string `json:"tags" binding:"required"`
}

type UpdatePostRequest struct {
	Title *string  `json:"title"`
	Image *string  `json:"image" binding:"omitempty,url"`
	Body  *string  `json:"body"`
	Tags  []string `json:"tags"`
}

// PostResponse keeps the field names the frontend already consumes:
// uid is the author id and createdBy the author's display name.
type PostResponse struct {
	ID           uint     `json:"id"`
	Title        string   `json:"title"`
	Image        string   `json:"image"`
	Body         string   `json:"body"`
	Tags         []string `json:"tags"`
	UID          uint     `json:"uid"`
	CreatedBy    string   `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	LikeCount    int64    `json:"likeCount"`
	CommentCount int64    `json:"commentCount"`
	LikedByMe    bool     `json:"likedByMe"`
}

// List returns a page of posts, optionally filtered by tag name or author.
// currentUserID is 0 for anonymous callers; when set, likedByMe is filled in.
func (s *PostService) List(req *PostListRequest, currentUserID uint) (*PostListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Size == 0 {
		req.Size = 20
	}

	query := s.db.Model(&models.Post{})
	if req.Tag != "" {
		query = query.
			Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name = ?", strings.ToLower(strings.TrimSpace(req.Tag)))
	}
	if req.UID != 0 {
		query = query.Where("posts.author_id = ?", req.UID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}

	var posts []models.Post
	err := query.
		Preload("Tags").
		Preload("Author").
		Order("posts.created_at DESC").
		Offset((req.Page - 1) * req.Size).
		Limit(req.Size).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	items, err := s.buildResponses(posts, currentUserID)
	if err != nil {
		return nil, err
	}

	pages := int(total) / req.Size
	if int(total)%req.Size != 0 {
		pages++
	}

	return &PostListResponse{
		Items: items,
		Total: total,
		Page:  req.Page,
		Size:  req.Size,
		Pages: pages,
	}, nil
}

// Get returns a single post by id.
func (s *PostService) Get(id uint, currentUserID uint) (*PostResponse, error) {
	var post models.Post
	err := s.db.Preload("Tags").Preload("Author").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrPostNotFound
		}
		return nil, fmt.Errorf("loading post: %w", err)
	}

	items, err := s.buildResponses([]models.Post{post}, currentUserID)
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Create stores a new post for the authenticated author. Tag names are
// normalized and shared across posts.
func (s *PostService) Create(req *CreatePostRequest, author middleware.CurrentUser) (*PostResponse, error) {
	tagNames, err := normalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		Title:    strings.TrimSpace(req.Title),
		Image:    req.Image,
		Body:     req.Body,
		AuthorID: author.ID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		tags, err := upsertTags(tx, tagNames)
		if err != nil {
			return err
		}
		post.Tags = tags
		return tx.Create(&post).Error
	})
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	return &PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Image:     post.Image,
		Body:      post.Body,
		Tags:      tagNames,
		UID:       author.ID,
		CreatedBy: author.DisplayName,
		CreatedAt: post.CreatedAt,
	}, nil
}

// Update modifies a post. Existence is checked before ownership, so a
// missing post reports not-found even to a non-owner.
func (s *PostService) Update(id uint, req *UpdatePostRequest, current middleware.CurrentUser) (*PostResponse, error) {
	var post models.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrPostNotFound
		}
		return nil, fmt.Errorf("loading post: %w", err)
	}
	if post.AuthorID != current.ID {
		return nil, response.ErrForbidden
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, response.NewBadRequest("title cannot be empty")
		}
		updates["title"] = title
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.Body != nil {
		updates["body"] = *req.Body
	}

	var tagNames []string
	if req.Tags != nil {
		var err error
		tagNames, err = normalizeTags(req.Tags)
		if err != nil {
			return nil, err
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&post).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Tags != nil {
			tags, err := upsertTags(tx, tagNames)
			if err != nil {
				return err
			}
			if err := tx.Model(&post).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}

	return s.Get(id, current.ID)
}

// Delete removes a post and, through cascades, its tags links, likes and
// comments. Owner only.
func (s *PostService) Delete(id uint, current middleware.CurrentUser) error {
	var post models.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.ErrPostNotFound
		}
		return fmt.Errorf("loading post: %w", err)
	}
	if post.AuthorID != current.ID {
		return response.ErrForbidden
	}

	if err := s.db.Delete(&post).Error; err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return nil
}

// Like records that a user likes a post. Liking twice is a no-op.
func (s *PostService) Like(postID, userID uint) error {
	if err := s.ensureExists(postID); err != nil {
		return err
	}

	like := models.PostLike{PostID: postID, UserID: userID}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error
	if err != nil {
		return fmt.Errorf("liking post: %w", err)
	}
	return nil
}

// Unlike removes a user's like. Removing an absent like is a no-op.
func (s *PostService) Unlike(postID, userID uint) error {
	if err := s.ensureExists(postID); err != nil {
		return err
	}

	err := s.db.Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{}).Error
	if err != nil {
		return fmt.Errorf("unliking post: %w", err)
	}
	return nil
}

func (s *PostService) ensureExists(postID uint) error {
	var count int64
	if err := s.db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return fmt.Errorf("checking post: %w", err)
	}
	if count == 0 {
		return response.ErrPostNotFound
	}
	return nil
}

type postCount struct {
	PostID uint
	Count  int64
}

func (s *PostService) buildResponses(posts []models.Post, currentUserID uint) ([]PostResponse, error) {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	likeCounts := make(map[uint]int64)
	commentCounts := make(map[uint]int64)
	likedByMe := make(map[uint]bool)

	if len(ids) > 0 {
		var rows []postCount
		err := s.db.Model(&models.PostLike{}).
			Select("post_id, COUNT(*) AS count").
			Where("post_id IN ?", ids).
			Group("post_id").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("counting likes: %w", err)
		}
		for _, r := range rows {
			likeCounts[r.PostID] = r.Count
		}

		rows = nil
		err = s.db.Model(&models.Comment{}).
			Select("post_id, COUNT(*) AS count").
			Where("post_id IN ?", ids).
			Group("post_id").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("counting comments: %w", err)
		}
		for _, r := range rows {
			commentCounts[r.PostID] = r.Count
		}

		if currentUserID != 0 {
			var likedIDs []uint
			err = s.db.Model(&models.PostLike{}).
				Where("user_id = ? AND post_id IN ?", currentUserID, ids).
				Pluck("post_id", &likedIDs).Error
			if err != nil {
				return nil, fmt.Errorf("loading like status: %w", err)
			}
			for _, id := range likedIDs {
				likedByMe[id] = true
			}
		}
	}

	items := make([]PostResponse, len(posts))
	for i, p := range posts {
		tags := make([]string, len(p.Tags))
		for j, t := range p.Tags {
			tags[j] = t.Name
		}
		items[i] = PostResponse{
			ID:           p.ID,
			Title:        p.Title,
			Image:        p.Image,
			Body:         p.Body,
			Tags:         tags,
			UID:          p.AuthorID,
			CreatedBy:    p.Author.DisplayName,
			CreatedAt:    p.CreatedAt,
			LikeCount:    likeCounts[p.ID],
			CommentCount: commentCounts[p.ID],
			LikedByMe:    likedByMe[p.ID],
		}
	}
	return items, nil
}

// normalizeTags trims, lowercases and de-duplicates tag names.
func normalizeTags(raw []string) ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	for _, tag := range raw {
		name := strings.ToLower(strings.TrimSpace(tag))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, response.NewBadRequest("at least one tag is required")
	}
	if len(names) > maxTagsPerPost {
		return nil, response.NewBadRequest(fmt.Sprintf("maximum of %d tags allowed", maxTagsPerPost))
	}
	return names, nil
}

func upsertTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		var tag models.Tag
		if err := tx.Where("name = ?", name).FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
