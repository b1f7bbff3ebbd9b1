package schema

import (
	"regexp"
	"strings"
)

var (
	frontmatterBlock = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---`)
	listItemLine     = regexp.MustCompile(`^\s{2,}- (.+)`)
	keyValueLine     = regexp.MustCompile(`^(\w[\w_]*)\s*:\s*(.*)`)
)

// Value is a single frontmatter field: either a scalar or a list.
type Value struct {
	Scalar string
	Items  []string
	IsList bool
}

// IsBlockPlaceholder reports whether the value is an unparsed `|` or `>`
// block scalar marker.
func (v Value) IsBlockPlaceholder() bool {
	return !v.IsList && (v.Scalar == "|" || v.Scalar == ">")
}

// Frontmatter maps keys to parsed values.
type Frontmatter map[string]Value

// Has returns true if the key was present in the block
func (fm Frontmatter) Has(key string) bool {
	_, ok := fm[key]
	return ok
}

// String returns a scalar field, or "" for lists and missing keys
func (fm Frontmatter) String(key string) string {
	v, ok := fm[key]
	if !ok || v.IsList || v.IsBlockPlaceholder() {
		return ""
	}
	return v.Scalar
}

// List returns a list field, or nil for scalars and missing keys
func (fm Frontmatter) List(key string) []string {
	v, ok := fm[key]
	if !ok || !v.IsList {
		return nil
	}
	return v.Items
}

// ParseFrontmatter extracts the `---` fenced header at the top of content.
// It understands `key: value` scalars and indented `  - item` lists; other
// lines are skipped. The second result is false when no fence pair exists.
func ParseFrontmatter(content string) (Frontmatter, bool) {
	m := frontmatterBlock.FindStringSubmatch(content)
	if m == nil {
		return nil, false
	}

	fm := make(Frontmatter)
	currentKey := ""

	for _, line := range strings.Split(m[1], "\n") {
		line = strings.TrimRight(line, "\r")

		if item := listItemLine.FindStringSubmatch(line); item != nil && currentKey != "" {
			v := fm[currentKey]
			if !v.IsList {
				v = Value{IsList: true, Items: []string{}}
			}
			v.Items = append(v.Items, unquote(strings.TrimSpace(item[1])))
			fm[currentKey] = v
			continue
		}

		if kv := keyValueLine.FindStringSubmatch(line); kv != nil {
			key := kv[1]
			val := strings.TrimSpace(kv[2])
			if val != "" && val != "|" && val != ">" {
				val = unquote(val)
			}
			fm[key] = Value{Scalar: val}
			currentKey = key
		}
	}

	return fm, true
}

// RawFrontmatter returns the text between the fences, unparsed
func RawFrontmatter(content string) (string, bool) {
	m := frontmatterBlock.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Body returns the content after the frontmatter block, or the whole
// content if there is none.
func Body(content string) string {
	loc := frontmatterBlock.FindStringIndex(content)
	if loc == nil {
		return content
	}
	return strings.TrimLeft(content[loc[1]:], "\r\n")
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
