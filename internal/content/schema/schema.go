package schema

import (
	"errors"

	"github.com/samber/lo"
)

// FieldType tells the admin renderer which input to draw and the repository
// how to coerce submitted values.
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeText      FieldType = "text"
	TypeInt       FieldType = "int"
	TypeBool      FieldType = "bool"
	TypeDate      FieldType = "date"
	TypeURL       FieldType = "url"
	TypeImage     FieldType = "image"
	TypeEmail     FieldType = "email"
	TypeSelect    FieldType = "select"
	TypeJSON      FieldType = "json"
	TypeList      FieldType = "list"
	TypeReference FieldType = "reference"
)

// IDType is the primary key type of a resource table.
type IDType string

const (
	IDSerial IDType = "serial"
	IDUUID   IDType = "uuid"
)

var ErrUnknownResource = errors.New("unknown resource")

// Field describes one column as both a form input and a table column.
type Field struct {
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	Type       FieldType `json:"type"`
	Required   bool      `json:"required,omitempty"`
	ReadOnly   bool      `json:"read_only,omitempty"`
	MaxLength  int       `json:"max_length,omitempty"`
	Options    []string  `json:"options,omitempty"`
	References string    `json:"references,omitempty"`
	Help       string    `json:"help,omitempty"`

	// Table settings
	InTable    bool `json:"in_table,omitempty"`
	Sortable   bool `json:"sortable,omitempty"`
	Searchable bool `json:"searchable,omitempty"`
	Filterable bool `json:"filterable,omitempty"`
}

// Resource is the declarative description of one admin-managed entity.
type Resource struct {
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Table       string  `json:"table"`
	IDType      IDType  `json:"id_type"`
	Fields      []Field `json:"fields"`
	DefaultSort string  `json:"default_sort"`
	SortDesc    bool    `json:"sort_desc,omitempty"`

	// PublicPath is the segment under /api/v1 serving published rows; empty
	// means the resource is admin only.
	PublicPath string `json:"public_path,omitempty"`
	// PublishedColumn limits public reads; empty means every row is public.
	PublishedColumn string `json:"published_column,omitempty"`

	Creatable bool `json:"creatable"`
	// Endpoint is set when writes go through a dedicated admin API instead of
	// the generic resource routes.
	Endpoint string `json:"endpoint,omitempty"`
}

// Field returns the named field.
func (r Resource) Field(name string) (Field, bool) {
	return lo.Find(r.Fields, func(f Field) bool { return f.Name == name })
}

// Columns lists the selectable columns: id, every field, then timestamps.
func (r Resource) Columns() []string {
	cols := make([]string, 0, len(r.Fields)+3)
	cols = append(cols, "id")
	cols = append(cols, lo.Map(r.Fields, func(f Field, _ int) string { return f.Name })...)
	return append(cols, "created_at", "updated_at")
}

// Writable returns the fields an editor may submit.
func (r Resource) Writable() []Field {
	return lo.Filter(r.Fields, func(f Field, _ int) bool { return !f.ReadOnly })
}

// SortColumns lists the columns a listing may be ordered by.
func (r Resource) SortColumns() []string {
	sortable := lo.FilterMap(r.Fields, func(f Field, _ int) (string, bool) { return f.Name, f.Sortable })
	return lo.Uniq(append(sortable, "id", "created_at", r.DefaultSort))
}

// Generic reports whether the resource is written through the generic routes.
func (r Resource) Generic() bool {
	return r.Endpoint == ""
}

var (
	publishedField = Field{Name: "is_published", Label: "Published", Type: TypeBool, InTable: true, Filterable: true}
	sortOrderField = Field{Name: "sort_order", Label: "Order", Type: TypeInt, InTable: true, Sortable: true}
)

var registry = []Resource{
	{
		Name:            "projects",
		Label:           "Projects",
		Table:           "projects",
		IDType:          IDSerial,
		DefaultSort:     "sort_order",
		PublicPath:      "projects",
		PublishedColumn: "is_published",
		Creatable:       true,
		Endpoint:        "/api/v1/admin/projects",
		Fields: []Field{
			{Name: "name", Label: "Name", Type: TypeString, Required: true, MaxLength: 200, InTable: true, Sortable: true, Searchable: true},
			{Name: "slug", Label: "Slug", Type: TypeString, MaxLength: 200, InTable: true, Help: "Leave empty to derive from the name."},
			{Name: "category", Label: "Category", Type: TypeString, MaxLength: 100, InTable: true, Filterable: true},
			{Name: "location", Label: "Location", Type: TypeString, MaxLength: 200},
			{Name: "year", Label: "Year", Type: TypeInt, InTable: true, Sortable: true},
			{Name: "area", Label: "Area", Type: TypeString, MaxLength: 100},
			{Name: "client", Label: "Client", Type: TypeString, MaxLength: 200},
			{Name: "status", Label: "Status", Type: TypeSelect, Options: []string{"completed", "in_progress", "concept"}, InTable: true, Filterable: true},
			{Name: "summary", Label: "Summary", Type: TypeText, MaxLength: 500},
			{Name: "description", Label: "Description", Type: TypeText},
			{Name: "cover_image", Label: "Cover image", Type: TypeImage},
			{Name: "gallery", Label: "Gallery", Type: TypeList, Help: "Image paths, one per entry."},
			{Name: "is_featured", Label: "Featured", Type: TypeBool, InTable: true, Filterable: true},
			publishedField,
			sortOrderField,
		},
	},
	{
		Name:            "awards",
		Label:           "Awards",
		Table:           "awards",
		IDType:          IDSerial,
		DefaultSort:     "year",
		SortDesc:        true,
		PublicPath:      "awards",
		PublishedColumn: "is_published",
		Creatable:       true,
		Fields: []Field{
			{Name: "title", Label: "Title", Type: TypeString, Required: true, MaxLength: 200, InTable: true, Sortable: true, Searchable: true},
			{Name: "organisation", Label: "Organisation", Type: TypeString, MaxLength: 200, InTable: true, Searchable: true},
			{Name: "year", Label: "Year", Type: TypeInt, Required: true, InTable: true, Sortable: true, Filterable: true},
			{Name: "project_id", Label: "Project", Type: TypeReference, References: "projects"},
			{Name: "url", Label: "Link", Type: TypeURL},
			publishedField,
			sortOrderField,
		},
	},
	{
		Name:            "press",
		Label:           "Press",
		Table:           "press_articles",
		IDType:          IDSerial,
		DefaultSort:     "published_on",
		SortDesc:        true,
		PublicPath:      "press",
		PublishedColumn: "is_published",
		Creatable:       true,
		Fields: []Field{
			{Name: "title", Label: "Title", Type: TypeString, Required: true, MaxLength: 300, InTable: true, Sortable: true, Searchable: true},
			{Name: "publication", Label: "Publication", Type: TypeString, MaxLength: 200, InTable: true, Searchable: true},
			{Name: "published_on", Label: "Published on", Type: TypeDate, InTable: true, Sortable: true},
			{Name: "url", Label: "Link", Type: TypeURL},
			{Name: "excerpt", Label: "Excerpt", Type: TypeText, MaxLength: 1000},
			{Name: "image", Label: "Image", Type: TypeImage},
			publishedField,
			sortOrderField,
		},
	},
	{
		Name:            "testimonials",
		Label:           "Testimonials",
		Table:           "testimonials",
		IDType:          IDSerial,
		DefaultSort:     "sort_order",
		PublicPath:      "testimonials",
		PublishedColumn: "is_published",
		Creatable:       true,
		Fields: []Field{
			{Name: "author", Label: "Author", Type: TypeString, Required: true, MaxLength: 200, InTable: true, Sortable: true, Searchable: true},
			{Name: "role", Label: "Role", Type: TypeString, MaxLength: 200, InTable: true},
			{Name: "company", Label: "Company", Type: TypeString, MaxLength: 200, InTable: true, Searchable: true},
			{Name: "quote", Label: "Quote", Type: TypeText, Required: true, MaxLength: 2000, Searchable: true},
			publishedField,
			sortOrderField,
		},
	},
	{
		Name:            "team",
		Label:           "Team",
		Table:           "team_members",
		IDType:          IDSerial,
		DefaultSort:     "sort_order",
		PublicPath:      "team",
		PublishedColumn: "is_published",
		Creatable:       true,
		Fields: []Field{
			{Name: "name", Label: "Name", Type: TypeString, Required: true, MaxLength: 200, InTable: true, Sortable: true, Searchable: true},
			{Name: "role", Label: "Role", Type: TypeString, MaxLength: 200, InTable: true, Searchable: true},
			{Name: "bio", Label: "Bio", Type: TypeText, MaxLength: 4000},
			{Name: "photo", Label: "Photo", Type: TypeImage},
			{Name: "email", Label: "Email", Type: TypeEmail, InTable: true},
			{Name: "links", Label: "Links", Type: TypeJSON, Help: "Object of label to URL."},
			publishedField,
			sortOrderField,
		},
	},
	{
		Name:            "timeline",
		Label:           "Timeline",
		Table:           "timeline_entries",
		IDType:          IDSerial,
		DefaultSort:     "year",
		PublicPath:      "timeline",
		PublishedColumn: "is_published",
		Creatable:       true,
		Fields: []Field{
			{Name: "year", Label: "Year", Type: TypeInt, Required: true, InTable: true, Sortable: true},
			{Name: "title", Label: "Title", Type: TypeString, Required: true, MaxLength: 200, InTable: true, Searchable: true},
			{Name: "description", Label: "Description", Type: TypeText, MaxLength: 2000},
			publishedField,
			sortOrderField,
		},
	},
	{
		Name:        "enquiries",
		Label:       "Enquiries",
		Table:       "contact_enquiries",
		IDType:      IDUUID,
		DefaultSort: "created_at",
		SortDesc:    true,
		Fields: []Field{
			{Name: "name", Label: "Name", Type: TypeString, ReadOnly: true, InTable: true, Sortable: true, Searchable: true},
			{Name: "email", Label: "Email", Type: TypeEmail, ReadOnly: true, InTable: true, Searchable: true},
			{Name: "phone", Label: "Phone", Type: TypeString, ReadOnly: true},
			{Name: "company", Label: "Company", Type: TypeString, ReadOnly: true, Searchable: true},
			{Name: "subject", Label: "Subject", Type: TypeString, ReadOnly: true, InTable: true, Searchable: true},
			{Name: "message", Label: "Message", Type: TypeText, ReadOnly: true, Searchable: true},
			{Name: "project_type", Label: "Project type", Type: TypeString, ReadOnly: true, Filterable: true},
			{Name: "budget", Label: "Budget", Type: TypeString, ReadOnly: true},
			{Name: "status", Label: "Status", Type: TypeSelect, Required: true, Options: []string{"new", "read", "archived"}, InTable: true, Filterable: true},
			{Name: "ip_address", Label: "IP address", Type: TypeString, ReadOnly: true},
		},
	},
}

var byName = lo.KeyBy(registry, func(r Resource) string { return r.Name })

// All returns every resource descriptor in display order.
func All() []Resource {
	return append([]Resource(nil), registry...)
}

// Lookup returns the descriptor named name.
func Lookup(name string) (Resource, error) {
	r, ok := byName[name]
	if !ok {
		return Resource{}, ErrUnknownResource
	}
	return r, nil
}

// Public returns the resources served by the generic public routes.
func Public() []Resource {
	return lo.Filter(registry, func(r Resource, _ int) bool { return r.PublicPath != "" && r.Generic() })
}

// ReferencedBy returns the resources with a reference field pointing at table.
func ReferencedBy(table string) []Resource {
	return lo.Filter(registry, func(r Resource, _ int) bool {
		return lo.ContainsBy(r.Fields, func(f Field) bool {
			return f.Type == TypeReference && f.References == table
		})
	})
}
