package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/adrg/frontmatter"
)

// Keys recognized by FrontMatter. Anything else lands in Extra.
const (
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyDate        = "date"
	KeyOrder       = "order"
)

// ErrMissingTitle is returned by Validate when a document has no title.
var ErrMissingTitle = errors.New("title is required")

// FrontMatter is the metadata block at the head of a content file.
type FrontMatter struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Date        string         `json:"date,omitempty"`
	Order       *int           `json:"order,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// ParseError reports a malformed front matter block or a mistyped field.
type ParseError struct {
	Field string // empty when the block itself failed to decode
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("front matter: %v", e.Err)
	}
	return fmt.Sprintf("front matter field %q: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse splits a leading front matter block from src and decodes it.
//
// YAML (---), TOML (+++) and JSON (;;;) blocks are recognized. Input without a
// block yields an empty FrontMatter and the whole input as body.
func Parse(src []byte) (FrontMatter, []byte, error) {
	var raw map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &raw)
	if err != nil {
		return FrontMatter{}, nil, &ParseError{Err: err}
	}

	fm, err := FromMap(raw)
	if err != nil {
		return FrontMatter{}, nil, err
	}
	return fm, body, nil
}

// FromMap builds a FrontMatter from decoded key/value pairs.
func FromMap(raw map[string]any) (FrontMatter, error) {
	var fm FrontMatter
	for k, v := range raw {
		var err error
		switch k {
		case KeyTitle:
			fm.Title, err = scalarString(v)
		case KeyDescription:
			fm.Description, err = scalarString(v)
		case KeyDate:
			fm.Date, err = dateString(v)
		case KeyOrder:
			fm.Order, err = orderValue(v)
		default:
			if fm.Extra == nil {
				fm.Extra = make(map[string]any)
			}
			fm.Extra[k] = normalize(v)
		}
		if err != nil {
			return FrontMatter{}, &ParseError{Field: k, Err: err}
		}
	}
	return fm, nil
}

// Validate checks the required fields.
func (fm FrontMatter) Validate() error {
	if fm.Title == "" {
		return &ParseError{Field: KeyTitle, Err: ErrMissingTitle}
	}
	return nil
}

// Time parses Date. The second result is false when Date is empty or not a
// recognized date layout.
func (fm FrontMatter) Time() (time.Time, bool) {
	if fm.Date == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, fm.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Map flattens the typed fields and Extra into one map, the shape authors wrote.
func (fm FrontMatter) Map() map[string]any {
	out := make(map[string]any, len(fm.Extra)+4)
	for k, v := range fm.Extra {
		out[k] = v
	}
	out[KeyTitle] = fm.Title
	if fm.Description != "" {
		out[KeyDescription] = fm.Description
	}
	if fm.Date != "" {
		out[KeyDate] = fm.Date
	}
	if fm.Order != nil {
		out[KeyOrder] = *fm.Order
	}
	return out
}

// ExtraKeys returns the Extra keys in sorted order.
func (fm FrontMatter) ExtraKeys() []string {
	keys := make([]string, 0, len(fm.Extra))
	for k := range fm.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func scalarString(v any) (string, error) {
	switch vv := v.(type) {
	case nil:
		return "", nil
	case string:
		return vv, nil
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(vv), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}

func dateString(v any) (string, error) {
	switch vv := v.(type) {
	case nil:
		return "", nil
	case string:
		return vv, nil
	case time.Time:
		if vv.Hour() == 0 && vv.Minute() == 0 && vv.Second() == 0 && vv.Nanosecond() == 0 {
			return vv.Format("2006-01-02"), nil
		}
		return vv.Format(time.RFC3339), nil
	default:
		return "", fmt.Errorf("expected a date, got %T", v)
	}
}

func orderValue(v any) (*int, error) {
	var n int
	switch vv := v.(type) {
	case nil:
		return nil, nil
	case int:
		n = vv
	case int64:
		n = int(vv)
	case uint64:
		if vv > math.MaxInt {
			return nil, fmt.Errorf("order %d out of range", vv)
		}
		n = int(vv)
	case float64:
		if vv != math.Trunc(vv) || math.IsInf(vv, 0) {
			return nil, fmt.Errorf("expected an integer, got %v", vv)
		}
		n = int(vv)
	default:
		return nil, fmt.Errorf("expected an integer, got %T", v)
	}
	return &n, nil
}

// normalize converts nested YAML maps (map[any]any) into map[string]any so
// Extra values encode as JSON.
func normalize(v any) any {
	switch vv := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(vv))
		for k, val := range vv {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, val := range vv {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i, val := range vv {
			out[i] = normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(vv))
		for i, val := range vv {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
