// Package seed loads demo content into an empty database.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/studio-atelier/site-backend/internal/content/repository"
	"github.com/studio-atelier/site-backend/internal/logging"
	"github.com/studio-atelier/site-backend/internal/projects/domain"
)

//go:embed demo.yaml
var demoYAML []byte

// ErrAlreadySeeded is returned when projects exist and force is not set.
var ErrAlreadySeeded = errors.New("database already has projects")

// Data is the seed file layout. Content items may name a project under
// "project"; it is replaced with that project's id.
type Data struct {
	Projects []domain.ProjectInput `yaml:"projects"`
	Content  []Section             `yaml:"content"`
}

type Section struct {
	Resource string           `yaml:"resource"`
	Items    []map[string]any `yaml:"items"`
}

type ProjectWriter interface {
	Create(ctx context.Context, in domain.ProjectInput) (*domain.Project, error)
	List(ctx context.Context, f domain.ListFilter) ([]domain.Project, error)
}

type ContentWriter interface {
	Create(ctx context.Context, name string, input map[string]any) (repository.Record, error)
}

// Result counts created rows per resource.
type Result map[string]int

func Demo() (*Data, error) {
	return Parse(demoYAML)
}

func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &d, nil
}

type Seeder struct {
	projects ProjectWriter
	content  ContentWriter
}

func NewSeeder(projects ProjectWriter, content ContentWriter) *Seeder {
	return &Seeder{projects: projects, content: content}
}

// Run writes d through the services so slugs and validation behave as they do
// for admin writes.
func (s *Seeder) Run(ctx context.Context, d *Data, force bool) (Result, error) {
	logger := logging.NewLogger(ctx)

	if !force {
		existing, err := s.projects.List(ctx, domain.ListFilter{Limit: 1})
		if err != nil {
			return nil, fmt.Errorf("check existing projects: %w", err)
		}
		if len(existing) > 0 {
			return nil, ErrAlreadySeeded
		}
	}

	res := Result{}
	ids := make(map[string]int64, len(d.Projects))
	for _, in := range d.Projects {
		p, err := s.projects.Create(ctx, in)
		if err != nil {
			return res, fmt.Errorf("seed project %q: %w", in.Name, err)
		}
		ids[in.Name] = p.ID
		res["projects"]++
		logger.LogInfof("seed.project", "created %s (%s)", p.Name, p.Slug)
	}

	for _, sec := range d.Content {
		for i, item := range sec.Items {
			input, err := resolveProject(item, ids)
			if err != nil {
				return res, fmt.Errorf("seed %s[%d]: %w", sec.Resource, i, err)
			}
			if _, err := s.content.Create(ctx, sec.Resource, input); err != nil {
				return res, fmt.Errorf("seed %s[%d]: %w", sec.Resource, i, err)
			}
			res[sec.Resource]++
		}
	}
	return res, nil
}

func resolveProject(item map[string]any, ids map[string]int64) (map[string]any, error) {
	name, ok := item["project"]
	if !ok {
		return item, nil
	}

	out := make(map[string]any, len(item))
	for k, v := range item {
		if k != "project" {
			out[k] = v
		}
	}
	id, found := ids[fmt.Sprint(name)]
	if !found {
		return nil, fmt.Errorf("unknown project %q", name)
	}
	out["project_id"] = id
	return out, nil
}
