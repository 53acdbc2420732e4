package domain

import "time"

// Project is a portfolio entry. Slug is unique and owned by the store.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Year        *int      `json:"year,omitempty"`
	Area        string    `json:"area"`
	Client      string    `json:"client"`
	Status      string    `json:"status"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	CoverImage  string    `json:"cover_image"`
	Gallery     []string  `json:"gallery"`
	Featured    bool      `json:"is_featured"`
	Published   bool      `json:"is_published"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Project status values
const (
	StatusCompleted  = "completed"
	StatusInProgress = "in_progress"
	StatusConcept    = "concept"
)

// IsValidStatus reports whether s is one of the known project statuses.
func IsValidStatus(s string) bool {
	return s == StatusCompleted || s == StatusInProgress || s == StatusConcept
}

// ProjectInput carries the editable fields of a project.
type ProjectInput struct {
	Name        string   `json:"name" yaml:"name"`
	Slug        string   `json:"slug" yaml:"slug"`
	Category    string   `json:"category" yaml:"category"`
	Location    string   `json:"location" yaml:"location"`
	Year        *int     `json:"year" yaml:"year"`
	Area        string   `json:"area" yaml:"area"`
	Client      string   `json:"client" yaml:"client"`
	Status      string   `json:"status" yaml:"status"`
	Summary     string   `json:"summary" yaml:"summary"`
	Description string   `json:"description" yaml:"description"`
	CoverImage  string   `json:"cover_image" yaml:"cover_image"`
	Gallery     []string `json:"gallery" yaml:"gallery"`
	Featured    bool     `json:"is_featured" yaml:"is_featured"`
	Published   bool     `json:"is_published" yaml:"is_published"`
	SortOrder   int      `json:"sort_order" yaml:"sort_order"`
}

// ListFilter mirrors the published/featured/category scopes.
type ListFilter struct {
	PublishedOnly bool
	FeaturedOnly  bool
	Category      string
	Limit         int
	Offset        int
}
