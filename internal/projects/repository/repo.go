package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/studio-atelier/site-backend/internal/projects/domain"
	"github.com/studio-atelier/site-backend/internal/storage/postgres"
)

const slugConstraint = "projects_slug_key"

const projectColumns = `id, name, slug, category, location, year, area, client, status, summary,
       description, cover_image, gallery, is_featured, is_published, sort_order, created_at, updated_at`

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*domain.Project, error) {
	var (
		p       domain.Project
		year    sql.NullInt64
		gallery pq.StringArray
	)
	err := s.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Category, &p.Location, &year, &p.Area, &p.Client, &p.Status, &p.Summary,
		&p.Description, &p.CoverImage, &gallery, &p.Featured, &p.Published, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if year.Valid {
		y := int(year.Int64)
		p.Year = &y
	}
	p.Gallery = []string(gallery)
	if p.Gallery == nil {
		p.Gallery = []string{}
	}
	return &p, nil
}

func inputArgs(in domain.ProjectInput, slug string) []any {
	var year sql.NullInt64
	if in.Year != nil {
		year = sql.NullInt64{Int64: int64(*in.Year), Valid: true}
	}
	gallery := in.Gallery
	if gallery == nil {
		gallery = []string{}
	}
	return []any{
		in.Name, slug, in.Category, in.Location, year, in.Area, in.Client, in.Status, in.Summary,
		in.Description, in.CoverImage, pq.Array(gallery), in.Featured, in.Published, in.SortOrder,
	}
}

// Create inserts a project with an already resolved slug. A slug that lost a
// race to a concurrent writer yields domain.ErrSlugConflict.
func (r *ProjectRepository) Create(ctx context.Context, in domain.ProjectInput, slug string) (*domain.Project, error) {
	q := `
INSERT INTO projects (name, slug, category, location, year, area, client, status, summary,
                      description, cover_image, gallery, is_featured, is_published, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING ` + projectColumns

	p, err := scanProject(r.db.QueryRowContext(ctx, q, inputArgs(in, slug)...))
	if err != nil {
		if postgres.IsUniqueViolation(err, slugConstraint) {
			return nil, domain.ErrSlugConflict
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// Update overwrites the editable fields of project id.
func (r *ProjectRepository) Update(ctx context.Context, id int64, in domain.ProjectInput, slug string) (*domain.Project, error) {
	q := `
UPDATE projects
SET name = $1, slug = $2, category = $3, location = $4, year = $5, area = $6, client = $7, status = $8,
    summary = $9, description = $10, cover_image = $11, gallery = $12, is_featured = $13,
    is_published = $14, sort_order = $15, updated_at = now()
WHERE id = $16
RETURNING ` + projectColumns

	args := append(inputArgs(in, slug), id)
	p, err := scanProject(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if postgres.IsUniqueViolation(err, slugConstraint) {
			return nil, domain.ErrSlugConflict
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return p, nil
}

// GetByID returns a project regardless of its published flag.
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// GetBySlug resolves a public URL segment to a project.
func (r *ProjectRepository) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE slug = $1`
	if publishedOnly {
		q += ` AND is_published`
	}

	p, err := scanProject(r.db.QueryRowContext(ctx, q, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// List returns projects matching f ordered by sort_order, newest first on ties.
func (r *ProjectRepository) List(ctx context.Context, f domain.ListFilter) ([]domain.Project, error) {
	var (
		where []string
		args  []any
	)
	if f.PublishedOnly {
		where = append(where, "is_published")
	}
	if f.FeaturedOnly {
		where = append(where, "is_featured")
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	q := `SELECT ` + projectColumns + ` FROM projects`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY sort_order ASC, created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes project id.
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SlugExists reports whether slug belongs to a project other than excludeID.
func (r *ProjectRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM projects WHERE slug = $1 AND id <> $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, q, slug, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
