package slug

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultMaxAttempts caps the number of candidates a Resolver tries.
const DefaultMaxAttempts = 1000

var (
	ErrEmptyName     = errors.New("name is required")
	ErrEmptySlug     = errors.New("name does not produce a usable slug")
	ErrSlugExhausted = errors.New("no free slug within the attempt limit")
)

// Checker reports whether slug is already owned by a record other than excludeID.
// excludeID is 0 when no record should be excluded.
type Checker interface {
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

// Request describes one resolution.
type Request struct {
	Name string
	// Slug is the caller supplied candidate; empty means derive from Name.
	Slug string
	// ExcludeID is the id of the record being updated, 0 on create.
	ExcludeID int64
	// Taken lists slugs known to be in use even if the store does not show them yet.
	Taken []string
}

// Result is a resolved slug and the number of candidates checked to find it.
type Result struct {
	Slug     string
	Attempts int
}

type Resolver struct {
	checker     Checker
	maxAttempts int
}

func NewResolver(checker Checker, maxAttempts int) *Resolver {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Resolver{checker: checker, maxAttempts: maxAttempts}
}

// Base returns the normalised candidate before any collision check. A supplied
// candidate wins over the name.
func Base(name, candidate string) (string, error) {
	name = strings.TrimSpace(name)
	candidate = strings.TrimSpace(candidate)
	if name == "" && candidate == "" {
		return "", ErrEmptyName
	}

	source := candidate
	if source == "" {
		source = name
	}
	base := Slugify(source)
	if base == "" {
		return "", ErrEmptySlug
	}
	return base, nil
}

// Resolve returns the first free slug among base, base-1, base-2, ...
func (r *Resolver) Resolve(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Name) == "" {
		return Result{}, ErrEmptyName
	}
	base, err := Base(req.Name, req.Slug)
	if err != nil {
		return Result{}, err
	}

	taken := make(map[string]struct{}, len(req.Taken))
	for _, s := range req.Taken {
		taken[s] = struct{}{}
	}

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		candidate := withSuffix(base, attempt)
		if _, ok := taken[candidate]; ok {
			continue
		}

		exists, err := r.checker.SlugExists(ctx, candidate, req.ExcludeID)
		if err != nil {
			return Result{}, fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !exists {
			return Result{Slug: candidate, Attempts: attempt + 1}, nil
		}
	}

	return Result{}, fmt.Errorf("%w: %q after %d attempts", ErrSlugExhausted, base, r.maxAttempts)
}

// withSuffix appends -n to base (n > 0), shortening base so the result stays
// within MaxLength.
func withSuffix(base string, n int) string {
	if n == 0 {
		return base
	}
	suffix := "-" + strconv.Itoa(n)
	return truncate(base, MaxLength-len(suffix)) + suffix
}
