// Package scaffold creates new skill directories from the built-in
// SKILL.md template.
package scaffold

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/config"
	"github.com/kennyg/lmagent/internal/schema"
)

//go:embed templates/SKILL.md.tmpl
var templateFS embed.FS

var skillTemplate = template.Must(template.New("SKILL.md.tmpl").Funcs(template.FuncMap{
	"scalar": scalar,
	"lower":  strings.ToLower,
}).ParseFS(templateFS, "templates/SKILL.md.tmpl"))

// DefaultIcon is used when no icon is given
const DefaultIcon = "🔧"

// Options describe the skill to create
type Options struct {
	Name        string
	Description string
	Role        string
	Type        schema.SkillType
	Icon        string
	Expertise   []string
	ActivatesOn []string
	Triggers    []string
	// SubDirs creates scripts/, references/ and assets/
	SubDirs bool
}

var (
	nonSlug = regexp.MustCompile(`[^a-z0-9]+`)
	accents = strings.NewReplacer(
		"á", "a", "à", "a", "ä", "a", "â", "a",
		"é", "e", "è", "e", "ë", "e", "ê", "e",
		"í", "i", "ì", "i", "ï", "i", "î", "i",
		"ó", "o", "ò", "o", "ö", "o", "ô", "o",
		"ú", "u", "ù", "u", "ü", "u", "û", "u",
		"ñ", "n",
	)
)

// Slugify turns a display name into a directory name
func Slugify(name string) string {
	s := accents.Replace(strings.ToLower(name))
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// DefaultTrigger is "/" plus the first segment of the slug
func DefaultTrigger(slug string) string {
	first, _, _ := strings.Cut(slug, "-")
	return "/" + first
}

// WithDefaults fills empty options so the result passes validation
func (o Options) WithDefaults() Options {
	slug := Slugify(o.Name)
	if o.Description == "" {
		o.Description = o.Name + " skill"
	}
	if o.Role == "" {
		o.Role = "Expert in " + o.Name
	}
	if o.Type == "" {
		o.Type = schema.TypeAgentPersona
	}
	if o.Icon == "" {
		o.Icon = DefaultIcon
	}
	if len(o.Expertise) == 0 {
		o.Expertise = []string{o.Name}
	}
	if len(o.ActivatesOn) == 0 {
		o.ActivatesOn = []string{slug}
	}
	if len(o.Triggers) == 0 {
		o.Triggers = []string{DefaultTrigger(slug)}
	}
	o.Triggers = append([]string(nil), o.Triggers...)
	for i, t := range o.Triggers {
		if !strings.HasPrefix(t, "/") {
			o.Triggers[i] = "/" + t
		}
	}
	return o
}

// Render returns the SKILL.md content for the options
func Render(o Options) (string, error) {
	o = o.WithDefaults()
	data := struct {
		Options
		Version string
	}{o, config.FrameworkVersion}

	var buf bytes.Buffer
	if err := skillTemplate.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "failed to render SKILL.md")
	}
	return buf.String(), nil
}

// Create writes a new skill under skillsDir and returns its directory.
// An existing skill is never overwritten.
func Create(skillsDir string, o Options) (string, error) {
	if strings.TrimSpace(o.Name) == "" {
		return "", errors.New("skill name is required")
	}
	slug := Slugify(o.Name)
	if slug == "" {
		return "", errors.Errorf("skill name %q has no usable characters", o.Name)
	}

	dir := filepath.Join(skillsDir, slug)
	if _, err := os.Stat(dir); err == nil {
		return "", errors.Errorf("skill already exists: %s", dir)
	}

	content, err := Render(o)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dir)
	}
	if err := os.WriteFile(filepath.Join(dir, artifact.SkillFilename), []byte(content), 0644); err != nil {
		return "", errors.Wrap(err, "failed to write SKILL.md")
	}

	if o.SubDirs {
		for _, sub := range artifact.OptionalSkillDirs {
			if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
				return "", errors.Wrapf(err, "failed to create %s", sub)
			}
		}
	}

	return dir, nil
}

// scalar quotes values the frontmatter parser or YAML would misread
func scalar(s string) string {
	if !strings.ContainsAny(s, ":#[]{}&*!|>'\"%@`") && strings.TrimSpace(s) == s {
		return s
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	return s
}
