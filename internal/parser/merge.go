package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/ehwaz/internal/models"
)

// Merge applies updates to the document's header block in place, preserving
// key order and every unrelated key, and returns the rewritten document.
// The body bytes after the header are carried over verbatim. A document
// without a header gets one prepended.
func Merge(raw []byte, updates []models.Field) []byte {
	text := string(raw)
	res := Parse(raw)

	fm := res.Frontmatter.Clone()
	for _, u := range updates {
		fm.Set(u.Key, u.Value)
	}
	header := marker + "\n" + renderHeader(fm) + marker

	if sp, ok := findHeader(text); ok {
		return []byte(text[:sp.start] + header + text[sp.end:])
	}
	return []byte(header + "\n\n" + strings.TrimLeft(text, "\n\r"))
}

// Strip removes the given keys from the header block. A document without a
// header is returned unchanged; a header left empty is removed entirely.
func Strip(raw []byte, keys []string) []byte {
	text := string(raw)
	sp, ok := findHeader(text)
	if !ok {
		return raw
	}

	fm := Parse(raw).Frontmatter
	for _, k := range keys {
		fm.Delete(k)
	}
	if fm.Len() == 0 {
		return []byte(strings.TrimLeft(text[sp.end:], "\n\r"))
	}
	header := marker + "\n" + renderHeader(fm) + marker
	return []byte(text[:sp.start] + header + text[sp.end:])
}

func renderHeader(fm *models.Frontmatter) string {
	var b strings.Builder
	for _, key := range fm.Keys() {
		v, _ := fm.Get(key)
		list, isList := v.([]string)
		if !isList {
			fmt.Fprintf(&b, "%s: %s\n", key, renderScalar(v))
			continue
		}
		fmt.Fprintf(&b, "%s:\n", key)
		for _, item := range list {
			fmt.Fprintf(&b, "  - %s\n", item)
		}
	}
	return b.String()
}

// renderScalar writes a value so that re-parsing yields it back: strings
// that would be read as booleans, numbers, or an empty list are quoted.
func renderScalar(v any) string {
	s, isString := v.(string)
	if !isString {
		return models.FormatValue(v)
	}
	if s == "" {
		return `""`
	}
	if _, stillString := convertScalar(s).(string); !stillString {
		return strconv.Quote(s)
	}
	return s
}
