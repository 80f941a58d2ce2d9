// Seeds the portfolio projects table from a YAML file.
//
// Usage:
//	go run ./cmd/scripts/seed_projects [projects.yaml]
//
// Existing projects (matched by slug) are left untouched.
package main

import (
	"fmt"
	"os"

	"github.com/devfolio/backend/internal/config"
	"github.com/devfolio/backend/internal/models"
	"gopkg.in/yaml.v3"
)

type seedProject struct {
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Tagline     string   `yaml:"tagline"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	URL         string   `yaml:"url"`
	GithubURL   string   `yaml:"github_url"`
	Image       string   `yaml:"image"`
	Tags        []string `yaml:"tags"`
	TechStack   []string `yaml:"tech_stack"`
	Stats       []struct {
		Label string `yaml:"label"`
		Value string `yaml:"value"`
	} `yaml:"stats"`
	Features []string `yaml:"features"`
	Year     int      `yaml:"year"`
	Featured bool     `yaml:"featured"`
}

func main() {
	path := "projects.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Failed to read %s: %v\n", path, err)
		os.Exit(1)
	}

	var seeds []seedProject
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		fmt.Printf("Failed to parse %s: %v\n", path, err)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := models.InitDB(&cfg.Database)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	if err := models.AutoMigrate(db); err != nil {
		fmt.Printf("Failed to migrate database: %v\n", err)
		os.Exit(1)
	}

	created, skipped := 0, 0
	for _, seed := range seeds {
		var count int64
		if err := db.Model(&models.Project{}).Where("slug = ?", seed.Slug).Count(&count).Error; err != nil {
			fmt.Printf("Failed to check %s: %v\n", seed.Slug, err)
			os.Exit(1)
		}
		if count > 0 {
			skipped++
			continue
		}

		project := toModel(seed)
		if err := db.Create(&project).Error; err != nil {
			fmt.Printf("Failed to create %s: %v\n", seed.Slug, err)
			os.Exit(1)
		}
		created++
		fmt.Printf("Created project %s (%s)\n", seed.Title, seed.Slug)
	}

	fmt.Printf("\nDone: %d created, %d already present.\n", created, skipped)
}

func toModel(seed seedProject) models.Project {
	stack := make(models.TechStackList, len(seed.TechStack))
	for i, name := range seed.TechStack {
		stack[i] = models.TechStackItem{Name: name}
	}
	stats := make(models.StatList, len(seed.Stats))
	for i, s := range seed.Stats {
		stats[i] = models.StatItem{Label: s.Label, Value: s.Value}
	}
	return models.Project{
		Slug:        seed.Slug,
		Title:       seed.Title,
		Tagline:     seed.Tagline,
		Description: seed.Description,
		Category:    seed.Category,
		URL:         seed.URL,
		GithubURL:   seed.GithubURL,
		Image:       seed.Image,
		Tags:        models.StringList(seed.Tags),
		TechStack:   stack,
		Stats:       stats,
		Features:    models.StringList(seed.Features),
		Year:        seed.Year,
		Featured:    seed.Featured,
	}
}
