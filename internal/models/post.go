package models

import "time"

// Post is a blog post. Tags are shared across posts through the post_tags
// join table; likes and comments cascade with the post.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Image     string    `gorm:"size:500;not null" json:"image"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	AuthorID  uint      `gorm:"index;not null" json:"authorId"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tags      []Tag     `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Post) TableName() string { return "posts" }

type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:64;not null" json:"name"`
}

func (Tag) TableName() string { return "tags" }

// PostLike marks that a user liked a post. The composite key makes likes
// naturally idempotent.
type PostLike struct {
	PostID    uint      `gorm:"primaryKey" json:"postId"`
	UserID    uint      `gorm:"primaryKey" json:"userId"`
	Post      Post      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

func (PostLike) TableName() string { return "post_likes" }
