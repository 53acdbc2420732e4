package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/studio-atelier/site-backend/internal/content/schema"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrNoFields = errors.New("no fields to update")

	// ErrInvalidQuery wraps listing parameters that do not fit the resource.
	ErrInvalidQuery = errors.New("invalid query")
)

// Record is one row keyed by column name.
type Record map[string]any

// ListQuery drives a generic listing.
type ListQuery struct {
	PublishedOnly bool
	Search        string
	Sort          string
	Desc          bool
	Filters       map[string]any
	Limit         int
	Offset        int
}

// Page is a window of records plus the total matching count.
type Page struct {
	Items []Record `json:"items"`
	Total int      `json:"total"`
}

// Repository reads and writes any resource described by a schema.Resource.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func quote(names []string) string {
	return strings.Join(lo.Map(names, func(n string, _ int) string { return pq.QuoteIdentifier(n) }), ", ")
}

func selectList(res schema.Resource) string {
	return quote(res.Columns())
}

// List returns a page of res rows matching q.
func (r *Repository) List(ctx context.Context, res schema.Resource, q ListQuery) (Page, error) {
	sortCol, desc := res.DefaultSort, res.SortDesc
	if q.Sort != "" {
		if !lo.Contains(res.SortColumns(), q.Sort) {
			return Page{}, fmt.Errorf("%w: cannot sort %s by %q", ErrInvalidQuery, res.Name, q.Sort)
		}
		sortCol, desc = q.Sort, q.Desc
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if q.PublishedOnly && res.PublishedColumn != "" {
		where = append(where, pq.QuoteIdentifier(res.PublishedColumn))
	}

	filterKeys := lo.Keys(q.Filters)
	sort.Strings(filterKeys)
	for _, k := range filterKeys {
		if _, ok := res.Field(k); !ok {
			return Page{}, fmt.Errorf("%w: unknown filter %q", ErrInvalidQuery, k)
		}
		where = append(where, pq.QuoteIdentifier(k)+" = "+arg(q.Filters[k]))
	}

	if s := strings.TrimSpace(q.Search); s != "" {
		searchable := lo.Filter(res.Fields, func(f schema.Field, _ int) bool { return f.Searchable })
		if len(searchable) > 0 {
			p := arg("%" + escapeLike(s) + "%")
			conds := lo.Map(searchable, func(f schema.Field, _ int) string {
				return pq.QuoteIdentifier(f.Name) + " ILIKE " + p
			})
			where = append(where, "("+strings.Join(conds, " OR ")+")")
		}
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}
	table := pq.QuoteIdentifier(res.Table)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+whereSQL, args...).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count %s: %w", res.Name, err)
	}

	query := "SELECT " + selectList(res) + " FROM " + table + whereSQL +
		" ORDER BY " + pq.QuoteIdentifier(sortCol) + " " + dir + " NULLS LAST, id ASC"
	if q.Limit > 0 {
		query += " LIMIT " + arg(q.Limit)
	}
	if q.Offset > 0 {
		query += " OFFSET " + arg(q.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Page{}, fmt.Errorf("list %s: %w", res.Name, err)
	}
	defer rows.Close()

	items := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows, res)
		if err != nil {
			return Page{}, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}
	return Page{Items: items, Total: total}, nil
}

// Get returns one row by id.
func (r *Repository) Get(ctx context.Context, res schema.Resource, id string) (Record, error) {
	key, err := parseID(res, id)
	if err != nil {
		return nil, ErrNotFound
	}

	query := "SELECT " + selectList(res) + " FROM " + pq.QuoteIdentifier(res.Table) + " WHERE id = $1"
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, key), res)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// Create inserts values and returns the stored row. values must already be
// validated against res.
func (r *Repository) Create(ctx context.Context, res schema.Resource, values map[string]any) (Record, error) {
	cols := lo.Keys(values)
	sort.Strings(cols)

	args := make([]any, 0, len(cols))
	placeholders := make([]string, 0, len(cols))
	for i, c := range cols {
		args = append(args, values[c])
		placeholders = append(placeholders, "$"+strconv.Itoa(i+1))
	}

	query := "INSERT INTO " + pq.QuoteIdentifier(res.Table) +
		" (" + quote(cols) + ") VALUES (" + strings.Join(placeholders, ", ") + ")" +
		" RETURNING " + selectList(res)

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, args...), res)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", res.Name, err)
	}
	return rec, nil
}

// Update sets values on row id and returns the stored row.
func (r *Repository) Update(ctx context.Context, res schema.Resource, id string, values map[string]any) (Record, error) {
	if len(values) == 0 {
		return nil, ErrNoFields
	}
	key, err := parseID(res, id)
	if err != nil {
		return nil, ErrNotFound
	}

	cols := lo.Keys(values)
	sort.Strings(cols)

	args := make([]any, 0, len(cols)+1)
	sets := make([]string, 0, len(cols)+1)
	for i, c := range cols {
		args = append(args, values[c])
		sets = append(sets, pq.QuoteIdentifier(c)+" = $"+strconv.Itoa(i+1))
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, key)

	query := "UPDATE " + pq.QuoteIdentifier(res.Table) + " SET " + strings.Join(sets, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) + " RETURNING " + selectList(res)

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, args...), res)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", res.Name, err)
	}
	return rec, nil
}

// Delete removes row id.
func (r *Repository) Delete(ctx context.Context, res schema.Resource, id string) error {
	key, err := parseID(res, id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM "+pq.QuoteIdentifier(res.Table)+" WHERE id = $1", key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", res.Name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func parseID(res schema.Resource, id string) (any, error) {
	if res.IDType == schema.IDUUID {
		u, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", id, err)
		}
		return u.String(), nil
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid id %q", id)
	}
	return n, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a row selected with selectList into a Record, picking a
// destination per field type.
func scanRecord(row scanner, res schema.Resource) (Record, error) {
	var (
		serialID             sql.NullInt64
		uuidID               sql.NullString
		createdAt, updatedAt time.Time
	)

	dest := make([]any, 0, len(res.Fields)+3)
	if res.IDType == schema.IDUUID {
		dest = append(dest, &uuidID)
	} else {
		dest = append(dest, &serialID)
	}

	holders := make([]any, len(res.Fields))
	for i, f := range res.Fields {
		switch f.Type {
		case schema.TypeInt, schema.TypeReference:
			holders[i] = new(sql.NullInt64)
		case schema.TypeBool:
			holders[i] = new(sql.NullBool)
		case schema.TypeDate:
			holders[i] = new(sql.NullTime)
		case schema.TypeList:
			holders[i] = new(pq.StringArray)
		default:
			holders[i] = new(sql.NullString)
		}
	}
	dest = append(dest, holders...)
	dest = append(dest, &createdAt, &updatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	rec := make(Record, len(res.Fields)+3)
	if res.IDType == schema.IDUUID {
		rec["id"] = uuidID.String
	} else {
		rec["id"] = serialID.Int64
	}
	for i, f := range res.Fields {
		rec[f.Name] = fieldValue(f, holders[i])
	}
	rec["created_at"] = createdAt
	rec["updated_at"] = updatedAt
	return rec, nil
}

func fieldValue(f schema.Field, holder any) any {
	switch h := holder.(type) {
	case *sql.NullInt64:
		if !h.Valid {
			return nil
		}
		return h.Int64
	case *sql.NullBool:
		return h.Valid && h.Bool
	case *sql.NullTime:
		if !h.Valid {
			return nil
		}
		return h.Time.Format("2006-01-02")
	case *pq.StringArray:
		if *h == nil {
			return []string{}
		}
		return []string(*h)
	case *sql.NullString:
		if f.Type == schema.TypeJSON {
			if !h.Valid || h.String == "" {
				return json.RawMessage("null")
			}
			return json.RawMessage(h.String)
		}
		return h.String
	}
	return nil
}
