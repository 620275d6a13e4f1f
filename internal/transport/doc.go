package transport

import (
	"errors"
	"fmt"
	"strings"
)

// ErrShape is returned when a parsed document does not have the structure a
// caller asked for.
var ErrShape = errors.New("transport: unexpected document shape")

const (
	// TextKey holds an element's character data when the element also carries
	// attributes.
	TextKey = "#text"
	// AttrPrefix is prepended to attribute names.
	AttrPrefix = "-"
)

// Doc is a parsed XML document, or any mapping nested inside one.
type Doc map[string]any

// Path walks nested mappings by key and returns the value found at the end.
// Every intermediate value must itself be a mapping.
func (d Doc) Path(keys ...string) (any, error) {
	var cur any = map[string]any(d)
	for i, k := range keys {
		m, ok := asMap(cur)
		if !ok {
			return nil, fmt.Errorf("%w: %s is %T, not an element",
				ErrShape, strings.Join(keys[:i], "/"), cur)
		}
		next, ok := m[k]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrShape, strings.Join(keys[:i+1], "/"))
		}
		cur = next
	}
	return cur, nil
}

// List coerces a repeated-element value into an ordered sequence of
// mappings. The XML conversion yields a bare mapping for a single occurrence
// and a []any for several; both come out as a slice here. A missing or empty
// element yields an empty slice.
func List(v any) ([]Doc, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: expected element list, got text %q", ErrShape, t)
	case []any:
		out := make([]Doc, 0, len(t))
		for i, item := range t {
			m, ok := asMap(item)
			if !ok {
				return nil, fmt.Errorf("%w: list item %d is %T, not an element", ErrShape, i, item)
			}
			out = append(out, Doc(m))
		}
		return out, nil
	default:
		m, ok := asMap(v)
		if !ok {
			return nil, fmt.Errorf("%w: expected element list, got %T", ErrShape, v)
		}
		return []Doc{Doc(m)}, nil
	}
}

// ListAt is Path followed by List on the final key. The final key may be
// absent, which is how an empty list is rendered; every key before it must
// exist.
func (d Doc) ListAt(keys ...string) ([]Doc, error) {
	if len(keys) == 0 {
		return List(map[string]any(d))
	}
	parent, err := d.Path(keys[:len(keys)-1]...)
	if err != nil {
		return nil, err
	}
	m, ok := asMap(parent)
	if !ok {
		// An empty container element decodes to "".
		if s, isStr := parent.(string); isStr && strings.TrimSpace(s) == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s is %T, not an element",
			ErrShape, strings.Join(keys[:len(keys)-1], "/"), parent)
	}
	return List(m[keys[len(keys)-1]])
}

// Text returns the character data of the child element key. The child may
// be a bare string (no attributes) or a mapping carrying TextKey.
func (d Doc) Text(key string) (string, error) {
	v, ok := d[key]
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", ErrShape, key)
	}
	switch t := v.(type) {
	case string:
		return t, nil
	default:
		m, ok := asMap(v)
		if !ok {
			return "", fmt.Errorf("%w: field %q is %T", ErrShape, key, v)
		}
		s, ok := m[TextKey]
		if !ok {
			// Attributes but no character data.
			return "", nil
		}
		str, ok := s.(string)
		if !ok {
			return "", fmt.Errorf("%w: field %q text is %T", ErrShape, key, s)
		}
		return str, nil
	}
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Doc:
		return t, true
	default:
		return nil, false
	}
}
