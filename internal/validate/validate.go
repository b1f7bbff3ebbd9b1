// Package validate checks skill directories against the skill format:
// required frontmatter fields, field types, trigger syntax and the body
// sections every skill is expected to carry.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/config"
	"github.com/kennyg/lmagent/internal/schema"
)

// MinLines is the length below which a skill is considered a stub
const MinLines = 50

// Section is a body section a skill should carry, with accepted synonyms
type Section struct {
	Name     string
	Synonyms []string
}

// Sections are checked in order; a missing one is a warning
var Sections = []Section{
	{Name: "System Prompt", Synonyms: []string{"Persona", "Role Definition"}},
	{Name: "Definition of Done", Synonyms: []string{"Done", "Criterios de Aceptación"}},
}

// Result is the outcome for one skill directory
type Result struct {
	Name     string   `json:"name"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Extras   []string `json:"extras,omitempty"` // Optional subdirs present
}

// OK returns true if the skill has no errors
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

var markdown = goldmark.New(goldmark.WithExtensions(meta.Meta))

// ValidateSkill checks one skill directory
func ValidateSkill(dir string) *Result {
	r := &Result{Name: filepath.Base(dir), Errors: []string{}, Warnings: []string{}}

	data, err := os.ReadFile(filepath.Join(dir, artifact.SkillFilename))
	if err != nil {
		if os.IsNotExist(err) {
			r.errorf("missing %s", artifact.SkillFilename)
		} else {
			r.errorf("cannot read %s: %v", artifact.SkillFilename, err)
		}
		return r
	}
	content := string(data)

	fm, ok := schema.ParseFrontmatter(content)
	if !ok || len(fm) == 0 {
		r.errorf("missing or invalid frontmatter")
		return r
	}

	checkFields(r, fm)

	if raw, ok := schema.RawFrontmatter(content); ok {
		var strict map[string]any
		if err := yaml.Unmarshal([]byte(raw), &strict); err != nil {
			r.warnf("frontmatter is not strict YAML: %v", err)
		}
	}

	checkSections(r, data)

	if n := len(strings.Split(content, "\n")); n < MinLines {
		r.warnf("only %d lines, skills usually need at least %d", n, MinLines)
	}

	for _, sub := range artifact.OptionalSkillDirs {
		if info, err := os.Stat(filepath.Join(dir, sub)); err == nil && info.IsDir() {
			r.Extras = append(r.Extras, sub)
		}
	}

	return r
}

func checkFields(r *Result, fm schema.Frontmatter) {
	for _, field := range schema.RequiredFields {
		v, ok := fm[field]
		if !ok || v.IsBlockPlaceholder() || (!v.IsList && v.Scalar == "") {
			r.errorf("missing required field: %s", field)
		}
	}

	for _, field := range schema.ListFields {
		if v, ok := fm[field]; ok && !v.IsList && v.Scalar != "" && !v.IsBlockPlaceholder() {
			r.errorf("field %s must be a list, got scalar %q", field, v.Scalar)
		}
	}

	if t := fm.String(schema.FieldType); t != "" && !schema.SkillType(t).IsValid() {
		r.warnf("unknown type %q (want %s or %s)", t, schema.TypeAgentPersona, schema.TypeMethodology)
	}

	if v := fm.String(schema.FieldVersion); v != "" && v != config.FrameworkVersion {
		r.warnf("version %s differs from framework version %s", v, config.FrameworkVersion)
	}

	for _, trigger := range fm.List(schema.FieldTriggers) {
		if !strings.HasPrefix(trigger, "/") {
			r.warnf("trigger %q should start with /", trigger)
		}
	}
}

func checkSections(r *Result, src []byte) {
	headings := Headings(src)
	lowerBody := strings.ToLower(schema.Body(string(src)))

	for _, s := range Sections {
		names := append([]string{s.Name}, s.Synonyms...)
		if !matchAny(headings, names) && !containsAny(lowerBody, names) {
			r.warnf("missing section: %s", s.Name)
		}
	}
}

// Headings returns the text of every markdown heading in the document.
// The frontmatter block is consumed first so it is never read as a
// setext heading.
func Headings(src []byte) []string {
	doc := markdown.Parser().Parse(text.NewReader(src))

	var out []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			out = append(out, nodeText(h, src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(nodeText(c, src))
		}
	}
	return b.String()
}

func matchAny(headings, names []string) bool {
	for _, h := range headings {
		if containsAny(strings.ToLower(h), names) {
			return true
		}
	}
	return false
}

func containsAny(lower string, names []string) bool {
	for _, n := range names {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Summary is the outcome of validating a skills directory
type Summary struct {
	Results  []*Result `json:"results"`
	Errors   int       `json:"errors"`
	Warnings int       `json:"warnings"`
}

// Passed returns true when no skill has errors
func (s *Summary) Passed() bool {
	return s.Errors == 0
}

// ErrNoMatch is returned when a filter selects no skill
var ErrNoMatch = errors.New("no skills match the filter")

// ValidateAll validates every skill directory under skillsDir whose name
// matches filter. Filters with glob metacharacters match as doublestar
// patterns, others as case-insensitive substrings.
func ValidateAll(skillsDir, filter string) (*Summary, error) {
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read skills dir %s", skillsDir)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		ok, err := Matches(filter, e.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 && filter != "" {
		return nil, errors.Wrapf(ErrNoMatch, "%q", filter)
	}
	sort.Strings(names)

	s := &Summary{}
	for _, name := range names {
		r := ValidateSkill(filepath.Join(skillsDir, name))
		s.Results = append(s.Results, r)
		s.Errors += len(r.Errors)
		s.Warnings += len(r.Warnings)
	}
	return s, nil
}

// Matches reports whether a skill name passes the filter. An empty filter
// matches everything.
func Matches(filter, name string) (bool, error) {
	if filter == "" {
		return true, nil
	}
	if strings.ContainsAny(filter, "*?[{") {
		ok, err := doublestar.Match(filter, name)
		return ok, errors.Wrapf(err, "invalid filter %q", filter)
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(filter)), nil
}
