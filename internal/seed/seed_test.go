package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studio-atelier/site-backend/internal/content/repository"
	"github.com/studio-atelier/site-backend/internal/content/service"
	"github.com/studio-atelier/site-backend/internal/content/schema"
	"github.com/studio-atelier/site-backend/internal/projects/domain"
	"github.com/studio-atelier/site-backend/internal/slug"
)

type fakeProjects struct {
	created []domain.Project
}

func (f *fakeProjects) Create(_ context.Context, in domain.ProjectInput) (*domain.Project, error) {
	p := domain.Project{ID: int64(len(f.created) + 1), Name: in.Name, Slug: slug.Slugify(in.Name)}
	f.created = append(f.created, p)
	return &p, nil
}

func (f *fakeProjects) List(_ context.Context, _ domain.ListFilter) ([]domain.Project, error) {
	return f.created, nil
}

type recordingStore struct {
	rows map[string][]map[string]any
}

func (r *recordingStore) List(context.Context, schema.Resource, repository.ListQuery) (repository.Page, error) {
	return repository.Page{}, nil
}

func (r *recordingStore) Get(context.Context, schema.Resource, string) (repository.Record, error) {
	return nil, repository.ErrNotFound
}

func (r *recordingStore) Create(_ context.Context, res schema.Resource, values map[string]any) (repository.Record, error) {
	r.rows[res.Name] = append(r.rows[res.Name], values)
	return repository.Record(values), nil
}

func (r *recordingStore) Update(context.Context, schema.Resource, string, map[string]any) (repository.Record, error) {
	return nil, repository.ErrNotFound
}

func (r *recordingStore) Delete(context.Context, schema.Resource, string) error {
	return repository.ErrNotFound
}

func TestDemo_Parses(t *testing.T) {
	d, err := Demo()
	require.NoError(t, err)

	require.NotEmpty(t, d.Projects)
	assert.Equal(t, "Sky Garden", d.Projects[0].Name)
	require.NotNil(t, d.Projects[0].Year)
	assert.Equal(t, 2021, *d.Projects[0].Year)
	assert.Len(t, d.Projects[0].Gallery, 2)

	for _, sec := range d.Content {
		_, err := schema.Lookup(sec.Resource)
		assert.NoError(t, err, sec.Resource)
	}
}

func TestSeeder_RunDemo(t *testing.T) {
	d, err := Demo()
	require.NoError(t, err)

	projects := &fakeProjects{}
	store := &recordingStore{rows: map[string][]map[string]any{}}
	s := NewSeeder(projects, service.NewContentService(store, nil))

	res, err := s.Run(context.Background(), d, false)
	require.NoError(t, err)

	assert.Equal(t, len(d.Projects), res["projects"])
	assert.Equal(t, "cafe-muller-pavilion", projects.created[1].Slug)

	awards := store.rows["awards"]
	require.Len(t, awards, 2)
	assert.Equal(t, int64(1), awards[0]["project_id"])
	assert.Equal(t, int64(2), awards[1]["project_id"])
	assert.NotContains(t, awards[0], "project")

	assert.Equal(t, 2, res["team"])
	assert.Equal(t, `{"linkedin":"https://www.linkedin.com"}`, store.rows["team"][0]["links"])
}

func TestSeeder_SkipsPopulatedDatabase(t *testing.T) {
	projects := &fakeProjects{created: []domain.Project{{ID: 1, Name: "Existing"}}}
	s := NewSeeder(projects, service.NewContentService(&recordingStore{rows: map[string][]map[string]any{}}, nil))

	_, err := s.Run(context.Background(), &Data{}, false)
	assert.ErrorIs(t, err, ErrAlreadySeeded)

	_, err = s.Run(context.Background(), &Data{}, true)
	assert.NoError(t, err)
}

func TestSeeder_UnknownProjectReference(t *testing.T) {
	d, err := Parse([]byte(`
content:
  - resource: awards
    items:
      - title: Orphan
        year: 2020
        project: Nowhere
`))
	require.NoError(t, err)

	s := NewSeeder(&fakeProjects{}, service.NewContentService(&recordingStore{rows: map[string][]map[string]any{}}, nil))
	_, err = s.Run(context.Background(), d, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown project "Nowhere"`)
}

func TestSeeder_InvalidContentFails(t *testing.T) {
	d, err := Parse([]byte(`
content:
  - resource: testimonials
    items:
      - author: Nobody
`))
	require.NoError(t, err)

	s := NewSeeder(&fakeProjects{}, service.NewContentService(&recordingStore{rows: map[string][]map[string]any{}}, nil))
	_, err = s.Run(context.Background(), d, false)
	var verr *schema.ValidationError
	assert.ErrorAs(t, err, &verr)
}
