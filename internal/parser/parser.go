// Package parser extracts frontmatter and wikilinks from Markdown content.
//
// The frontmatter dialect is deliberately lenient: parsing never fails.
// Malformed or partial headers degrade to "no frontmatter" with the whole
// input kept as body, so a bad header can never block reading a document.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/ehwaz/internal/models"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	tagRe      = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
)

// Status reports how far the parse got. There is no error status.
type Status int

const (
	// StatusParsed means a well-formed header block was found.
	StatusParsed Status = iota
	// StatusNoFrontmatter means no usable header was found (missing or
	// adjacent markers included) and Body is the full original input.
	StatusNoFrontmatter
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter *models.Frontmatter
	Body        string
	Status      Status
	Links       []string
	Tags        []string
	Title       string
}

// Parse extracts frontmatter, body, wikilinks, and tags from raw Markdown
// bytes. It never fails: see Status for how the header was handled.
func Parse(data []byte) *Result {
	text := string(data)
	fm := models.NewFrontmatter()
	body := text
	status := StatusNoFrontmatter

	if sp, ok := findHeader(text); ok {
		parseHeader(fm, text[sp.innerStart:sp.innerEnd])
		body = strings.TrimSpace(text[sp.end:])
		status = StatusParsed
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Status:      status,
		Links:       extractLinks(body),
		Tags:        extractTags(body, fm),
		Title:       deriveTitle(fm, body),
	}
}

// headerSpan locates the header block inside the raw text. All offsets are
// byte positions into the original string:
//
//	start      — beginning of the opening marker line
//	innerStart — first byte after the opening marker line
//	innerEnd   — beginning of the closing marker line
//	end        — just past the closing "---" characters (body raw-tail start)
type headerSpan struct {
	start, innerStart, innerEnd, end int
}

const marker = "---"

// findHeader scans for a well-formed header. A closing marker on the line
// immediately after the opening one (empty header block) is treated as "no
// frontmatter", matching the lenient-parse policy.
func findHeader(text string) (headerSpan, bool) {
	lines := strings.SplitAfter(text, "\n")

	pos := 0
	i := 0
	for ; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r\n") != "" {
			break
		}
		pos += len(lines[i])
	}
	if i >= len(lines) || strings.TrimRight(lines[i], "\r\n") != marker {
		return headerSpan{}, false
	}

	sp := headerSpan{start: pos, innerStart: pos + len(lines[i])}
	pos = sp.innerStart
	for j := i + 1; j < len(lines); j++ {
		stripped := strings.TrimRight(lines[j], "\r\n")
		if stripped == marker {
			if j == i+1 {
				return headerSpan{}, false
			}
			sp.innerEnd = pos
			sp.end = pos + len(marker)
			return sp, true
		}
		pos += len(lines[j])
	}
	return headerSpan{}, false
}

// parseHeader fills fm from the line-oriented key/value block. Single pass;
// a repeated key overwrites, so the last occurrence wins.
func parseHeader(fm *models.Frontmatter, block string) {
	listKey := ""
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(strings.TrimRight(line, "\r"))
		if trimmed == "" {
			continue
		}

		// List item belonging to the most recently introduced key.
		if trimmed == "-" || strings.HasPrefix(trimmed, "- ") {
			if listKey == "" {
				continue
			}
			item := unquote(strings.TrimSpace(strings.TrimPrefix(trimmed, "-")))
			if item == "" {
				continue
			}
			list, _ := fm.StringList(listKey)
			fm.Set(listKey, append(list, item))
			continue
		}

		idx := strings.Index(trimmed, ":")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(trimmed[:idx])
		value := strings.TrimSpace(trimmed[idx+1:])
		if key == "" {
			continue
		}
		if value == "" {
			// Provisionally a list: dash lines that follow populate it;
			// otherwise the key stays an empty list.
			fm.Set(key, []string{})
			listKey = key
			continue
		}
		fm.Set(key, convertScalar(value))
		listKey = ""
	}
}

// convertScalar types a raw header value: quoted values stay strings with
// the quotes stripped, then booleans, then numbers, else string.
func convertScalar(s string) any {
	if quoted(s) {
		return s[1 : len(s)-1]
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func quoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '"' && last == '"') || (first == '\'' && last == '\'')
}

func unquote(s string) string {
	if quoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}

// extractLinks returns deduplicated wikilink targets, normalising aliases.
func extractLinks(body string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target := m[1]
		if i := strings.Index(target, "|"); i >= 0 {
			target = target[:i]
		}
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// extractTags collects #tags from the body and from the frontmatter "tags"
// field, which may be a list or a comma-separated string.
func extractTags(body string, fm *models.Frontmatter) []string {
	seen := make(map[string]struct{})
	var out []string

	if raw, ok := fm.Get(models.FieldTags); ok {
		for _, t := range models.NormalizeTags(raw) {
			if _, dup := seen[t]; !dup {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}

	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		t := m[1]
		if _, dup := seen[t]; !dup {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the
// first H1 heading, otherwise empty. This is display metadata for listings
// and search; the publish title is always the document's file name.
func deriveTitle(fm *models.Frontmatter, body string) string {
	if t, ok := fm.String(models.FieldTitle); ok && t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
