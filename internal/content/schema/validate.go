package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lib/pq"
	"github.com/samber/lo"
)

const dateLayout = "2006-01-02"

// FieldError reports one invalid submitted value.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field of a submission.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := lo.Map(e.Fields, func(f FieldError, _ int) string { return f.Field + ": " + f.Message })
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate checks input against the writable fields of r and returns the
// values coerced to their column types. With partial set, absent fields are
// skipped instead of being reset or reported as missing.
func (r Resource) Validate(input map[string]any, partial bool) (map[string]any, error) {
	verr := &ValidationError{}
	out := make(map[string]any, len(input))

	for key := range input {
		f, ok := r.Field(key)
		if !ok {
			verr.add(key, "unknown field")
			continue
		}
		if f.ReadOnly {
			verr.add(key, "field is read only")
		}
	}

	for _, f := range r.Writable() {
		raw, present := input[f.Name]
		if !present && partial {
			continue
		}

		v, err := f.Coerce(raw)
		if err != nil {
			verr.add(f.Name, "%s", err.Error())
			continue
		}
		if f.Required && isBlank(v) {
			verr.add(f.Name, "is required")
			continue
		}
		out[f.Name] = v
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return out, nil
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

// Coerce converts a decoded JSON value into the Go value stored for f.
// A nil input yields the field's empty value.
func (f Field) Coerce(raw any) (any, error) {
	switch f.Type {
	case TypeString, TypeText, TypeImage:
		return f.coerceString(raw)
	case TypeURL:
		s, err := f.coerceString(raw)
		if err != nil || s == "" {
			return s, err
		}
		u, err := url.Parse(s)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("must be an http(s) URL")
		}
		return s, nil
	case TypeEmail:
		s, err := f.coerceString(raw)
		if err != nil || s == "" {
			return s, err
		}
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return nil, fmt.Errorf("must be an email address")
		}
		return s, nil
	case TypeSelect:
		s, err := f.coerceString(raw)
		if err != nil {
			return nil, err
		}
		if s == "" {
			if f.Required {
				return s, nil
			}
			return f.Options[0], nil
		}
		if !lo.Contains(f.Options, s) {
			return nil, fmt.Errorf("must be one of %s", strings.Join(f.Options, ", "))
		}
		return s, nil
	case TypeInt:
		if raw == nil {
			if f.Required {
				return nil, nil
			}
			return int64(0), nil
		}
		return coerceInt(raw)
	case TypeReference:
		if raw == nil {
			return nil, nil
		}
		id, err := coerceInt(raw)
		if err != nil {
			return nil, err
		}
		if id <= 0 {
			return nil, fmt.Errorf("must be a positive id")
		}
		return id, nil
	case TypeBool:
		switch t := raw.(type) {
		case nil:
			return false, nil
		case bool:
			return t, nil
		case string:
			b, err := strconv.ParseBool(t)
			if err != nil {
				return nil, fmt.Errorf("must be a boolean")
			}
			return b, nil
		}
		return nil, fmt.Errorf("must be a boolean")
	case TypeDate:
		s, err := f.coerceString(raw)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("must be a date (YYYY-MM-DD)")
		}
		return d, nil
	case TypeList:
		if raw == nil {
			return pq.StringArray{}, nil
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("must be a list of strings")
		}
		out := make(pq.StringArray, 0, len(items))
		for _, it := range items {
			s, ok := it.(string)
			if !ok {
				return nil, fmt.Errorf("must be a list of strings")
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case TypeJSON:
		if raw == nil {
			return "{}", nil
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("must be valid JSON")
		}
		return string(b), nil
	}
	return nil, fmt.Errorf("unsupported field type %q", f.Type)
}

func (f Field) coerceString(raw any) (string, error) {
	if raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("must be a string")
	}
	s = strings.TrimSpace(s)
	if f.MaxLength > 0 && utf8.RuneCountInString(s) > f.MaxLength {
		return "", fmt.Errorf("must be at most %d characters", f.MaxLength)
	}
	return s, nil
}

func coerceInt(raw any) (int64, error) {
	switch t := raw.(type) {
	case float64:
		if t != math.Trunc(t) || math.Abs(t) > math.MaxInt32 {
			return 0, fmt.Errorf("must be a whole number")
		}
		return int64(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("must be a whole number")
		}
		return n, nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("must be a whole number")
		}
		return n, nil
	}
	return 0, fmt.Errorf("must be a whole number")
}

// ParseFilter converts a query string value for a filterable field.
func (f Field) ParseFilter(value string) (any, error) {
	if !f.Filterable {
		return nil, fmt.Errorf("%s is not filterable", f.Name)
	}
	if f.Type == TypeInt || f.Type == TypeReference {
		return coerceInt(value)
	}
	v, err := f.Coerce(value)
	if err != nil {
		return nil, fmt.Errorf("%s %w", f.Name, err)
	}
	return v, nil
}
