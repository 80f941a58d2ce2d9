package services

import (
	"fmt"

	"gorm.io/gorm"
)

type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

type TagCount struct {
	Name      string `json:"name"`
	PostCount int64  `json:"postCount"`
}

// ListWithCounts returns every tag with the number of posts using it,
// alphabetically. Tags whose posts were all deleted report zero.
func (s *TagService) ListWithCounts() ([]TagCount, error) {
	var out []TagCount
	err := s.db.Table("tags").
		Select("tags.name AS name, COUNT(post_tags.post_id) AS post_count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id").
		Order("tags.name ASC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	if out == nil {
		out = []TagCount{}
	}
	return out, nil
}
