package models

import (
	"strconv"
	"strings"
)

// Frontmatter field names read by the sync core.
const (
	FieldType       = "type"
	FieldTitle      = "title"
	FieldCategories = "categories"
	FieldCategoryID = "categoryId"
	FieldMood       = "mood"
	FieldWeather    = "weather"
	FieldTopicID    = "topicId"
	FieldSlug       = "slug"
	FieldTags       = "tags"
)

// Frontmatter keys written back by the sync core after a successful publish.
// Everything else in a document header is passthrough.
const (
	KeyOID        = "oid"
	KeyID         = "id"
	KeySlug       = FieldSlug
	KeyCategoryID = FieldCategoryID
	KeyUpdated    = "updated"
	KeyType       = FieldType
)

// SyncKeys are the header keys stripped on delete/unlink. KeyType is
// deliberately preserved so a re-publish classifies the same way.
var SyncKeys = []string{KeyOID, KeyID, KeySlug, KeyCategoryID, KeyUpdated}

// Frontmatter is an insertion-ordered open key/value map parsed from a
// document header. Values are string, int64, float64, bool, or []string.
// Unknown keys are preserved verbatim through read-modify-write cycles.
type Frontmatter struct {
	keys []string
	vals map[string]any
}

// NewFrontmatter returns an empty frontmatter map.
func NewFrontmatter() *Frontmatter {
	return &Frontmatter{vals: make(map[string]any)}
}

// Len returns the number of keys.
func (f *Frontmatter) Len() int { return len(f.keys) }

// Keys returns the keys in insertion order.
func (f *Frontmatter) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Has reports whether key is present.
func (f *Frontmatter) Has(key string) bool {
	_, ok := f.vals[key]
	return ok
}

// Get returns the raw value for key.
func (f *Frontmatter) Get(key string) (any, bool) {
	v, ok := f.vals[key]
	return v, ok
}

// Set stores a value. An existing key keeps its position and is overwritten,
// so the last occurrence in a single-pass parse wins.
func (f *Frontmatter) Set(key string, value any) {
	if _, ok := f.vals[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.vals[key] = value
}

// Delete removes key if present.
func (f *Frontmatter) Delete(key string) {
	if _, ok := f.vals[key]; !ok {
		return
	}
	delete(f.vals, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy.
func (f *Frontmatter) Clone() *Frontmatter {
	out := NewFrontmatter()
	for _, k := range f.keys {
		v := f.vals[k]
		if list, ok := v.([]string); ok {
			cp := make([]string, len(list))
			copy(cp, list)
			v = cp
		}
		out.Set(k, v)
	}
	return out
}

// String returns the value for key if it is a string.
func (f *Frontmatter) String(key string) (string, bool) {
	v, ok := f.vals[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool returns the value for key if it is a bool.
func (f *Frontmatter) Bool(key string) (bool, bool) {
	v, ok := f.vals[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Int returns the value for key coerced to int64 (int64 or integral float64).
func (f *Frontmatter) Int(key string) (int64, bool) {
	v, ok := f.vals[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

// StringList returns the value for key if it is a list of strings.
func (f *Frontmatter) StringList(key string) ([]string, bool) {
	v, ok := f.vals[key]
	if !ok {
		return nil, false
	}
	list, ok := v.([]string)
	return list, ok
}

// Text returns a best-effort string form of the value for key: scalars are
// formatted, a list yields its first element. Useful for fields like
// categoryId that a lenient parse may have typed as a number.
func (f *Frontmatter) Text(key string) (string, bool) {
	v, ok := f.vals[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case []string:
		if len(t) == 0 {
			return "", false
		}
		return t[0], true
	default:
		s := FormatValue(v)
		return s, s != ""
	}
}

// FormatValue renders a scalar frontmatter value as text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []string:
		return strings.Join(t, ", ")
	default:
		return ""
	}
}

// Field is one header key/value update applied by a write-back merge.
type Field struct {
	Key   string
	Value any
}
