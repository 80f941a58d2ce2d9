package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList is stored as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

type TechStackItem struct {
	Name string `json:"name"`
}

type TechStackList []TechStackItem

func (l TechStackList) Value() (driver.Value, error) {
	if l == nil {
		l = TechStackList{}
	}
	return json.Marshal(l)
}

func (l *TechStackList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

type StatItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type StatList []StatItem

func (l StatList) Value() (driver.Value, error) {
	if l == nil {
		l = StatList{}
	}
	return json.Marshal(l)
}

func (l *StatList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

func scanJSON(value, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}

// Project is a portfolio showcase entry. Projects are site-owned and
// managed by admins only, so they carry no owner column.
type Project struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Slug        string        `gorm:"uniqueIndex;size:100;not null" json:"slug"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Tagline     string        `gorm:"size:255;not null" json:"tagline"`
	Description string        `gorm:"type:text;not null" json:"description"`
	Category    string        `gorm:"size:100;not null" json:"category"`
	URL         string        `gorm:"size:500;not null" json:"url"`
	GithubURL   string        `gorm:"size:500" json:"githubUrl,omitempty"`
	Image       string        `gorm:"size:500;not null" json:"image"`
	Tags        StringList    `gorm:"type:text" json:"tags"`
	TechStack   TechStackList `gorm:"type:text" json:"techStack"`
	Stats       StatList      `gorm:"type:text" json:"stats"`
	Features    StringList    `gorm:"type:text" json:"features"`
	Year        int           `gorm:"index;not null" json:"year"`
	Featured    bool          `gorm:"index;default:false" json:"featured"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (Project) TableName() string { return "projects" }
