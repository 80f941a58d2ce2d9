package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/devfolio/backend/internal/middleware"
	"github.com/devfolio/backend/internal/models"
	"github.com/devfolio/backend/pkg/response"
	"gorm.io/gorm"
)

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

type CreateCommentRequest struct {
	Body     string `json:"body" binding:"required"`
	ParentID *uint  `json:"parentId"`
}

type CommentResponse struct {
	ID         uint      `json:"id"`
	Body       string    `json:"body"`
	PostID     uint      `json:"postId"`
	AuthorID   uint      `json:"authorId"`
	AuthorName string    `json:"authorName"`
	ParentID   *uint     `json:"parentId"`
	ReplyCount int64     `json:"replyCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListByPost returns the top-level comments of a post, oldest first,
// each carrying the number of direct replies.
func (s *CommentService) ListByPost(postID uint) ([]CommentResponse, error) {
	if err := s.ensurePostExists(postID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	err := s.db.Preload("Author").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	replyCounts := make(map[uint]int64)
	if len(comments) > 0 {
		ids := make([]uint, len(comments))
		for i, c := range comments {
			ids[i] = c.ID
		}
		var rows []struct {
			ParentID uint
			Count    int64
		}
		err = s.db.Model(&models.Comment{}).
			Select("parent_id, COUNT(*) AS count").
			Where("parent_id IN ?", ids).
			Group("parent_id").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("counting replies: %w", err)
		}
		for _, r := range rows {
			replyCounts[r.ParentID] = r.Count
		}
	}

	out := make([]CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = toCommentResponse(&c)
		out[i].ReplyCount = replyCounts[c.ID]
	}
	return out, nil
}

// ListReplies returns the direct replies of a comment, oldest first.
func (s *CommentService) ListReplies(commentID uint) ([]CommentResponse, error) {
	var parent models.Comment
	if err := s.db.First(&parent, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrCommentNotFound
		}
		return nil, fmt.Errorf("loading comment: %w", err)
	}

	var replies []models.Comment
	err := s.db.Preload("Author").
		Where("parent_id = ?", commentID).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, fmt.Errorf("listing replies: %w", err)
	}

	out := make([]CommentResponse, len(replies))
	for i, c := range replies {
		out[i] = toCommentResponse(&c)
	}
	return out, nil
}

// Create adds a comment to a post. When ParentID is set the parent must
// be an existing comment on the same post.
func (s *CommentService) Create(postID uint, req *CreateCommentRequest, author middleware.CurrentUser) (*CommentResponse, error) {
	if err := s.ensurePostExists(postID); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		var parent models.Comment
		if err := s.db.First(&parent, *req.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, response.ErrCommentNotFound
			}
			return nil, fmt.Errorf("loading parent comment: %w", err)
		}
		if parent.PostID != postID {
			return nil, response.ErrCommentNotFound
		}
	}

	comment := models.Comment{
		Body:     req.Body,
		PostID:   postID,
		AuthorID: author.ID,
		ParentID: req.ParentID,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	resp := toCommentResponse(&comment)
	resp.AuthorName = author.DisplayName
	return &resp, nil
}

// Delete removes a comment. Owner only; replies keep their rows but lose
// the parent reference through the database constraint.
func (s *CommentService) Delete(commentID uint, current middleware.CurrentUser) error {
	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.ErrCommentNotFound
		}
		return fmt.Errorf("loading comment: %w", err)
	}
	if comment.AuthorID != current.ID {
		return response.ErrForbidden
	}

	if err := s.db.Delete(&comment).Error; err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return nil
}

func (s *CommentService) ensurePostExists(postID uint) error {
	var count int64
	if err := s.db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return fmt.Errorf("checking post: %w", err)
	}
	if count == 0 {
		return response.ErrPostNotFound
	}
	return nil
}

func toCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		Body:       c.Body,
		PostID:     c.PostID,
		AuthorID:   c.AuthorID,
		AuthorName: c.Author.DisplayName,
		ParentID:   c.ParentID,
		CreatedAt:  c.CreatedAt,
	}
}
