// Package tokens estimates how much context the installed framework costs
// an agent: entry documents read at startup, plus skills, rules and
// workflows loaded on demand.
package tokens

import (
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/config"
)

// CharsPerToken is the usual rule of thumb across model tokenizers
const CharsPerToken = 4

// ContentPattern selects the files counted inside content dirs
const ContentPattern = "**/*.{md,mdc,txt,toml,cursorrules}"

// ReportFilename is written into the content root by --report
const ReportFilename = "token-report.md"

// EntryFiles are the documents agents read at session start
var EntryFiles = []string{
	"AGENTS.md",
	"CLAUDE.md",
	"GEMINI.md",
	".cursorrules",
	".continuerules",
	".goosehints",
	".openhands/microagents/repo.md",
	".junie/guidelines.md",
	".github/copilot-instructions.md",
}

// Estimate returns ceil(chars/4)
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + CharsPerToken - 1) / CharsPerToken
}

// File is one counted file
type File struct {
	Path   string `json:"path"` // Relative to the project root when possible
	Bytes  int64  `json:"bytes"`
	Chars  int    `json:"chars"`
	Tokens int    `json:"tokens"`
}

// Category totals one kind of content
type Category struct {
	Files  int   `json:"files"`
	Tokens int   `json:"tokens"`
	Bytes  int64 `json:"bytes"`
}

func (c *Category) add(f File) {
	c.Files++
	c.Tokens += f.Tokens
	c.Bytes += f.Bytes
}

// Categories holds the per-kind totals
type Categories struct {
	EntryPoints Category `json:"entryPoints"`
	Skills      Category `json:"skills"`
	Rules       Category `json:"rules"`
	Workflows   Category `json:"workflows"`
}

// Session is the context an agent loads for one session: every entry
// document plus one active skill.
type Session struct {
	Tokens      int `json:"tokens"`
	EntryPoints int `json:"entryPoints"`
	AvgSkill    int `json:"avgSkill"`
}

// Report is the result of an analysis
type Report struct {
	Version    string     `json:"version"`
	Tools      []string   `json:"installedAgents"`
	Categories Categories `json:"categories"`
	Total      Category   `json:"total"`
	Session    Session    `json:"sessionOverhead"`
	Largest    []File     `json:"largest"`
}

// Options are the inputs of an analysis
type Options struct {
	ProjectRoot string
	ContentRoot string
	// Profiles are the tools detected in the project
	Profiles []config.ToolProfile
	// Largest caps the number of files listed; 0 means 5
	Largest int
}

type counter struct {
	root  string
	seen  map[string]bool // type:relative path, and abs:path
	files []File
}

// Analyze counts entry documents and the content of the content root and
// each profile. A file installed into several tools is counted once.
func Analyze(opts Options) (*Report, error) {
	r := &Report{Version: config.FrameworkVersion, Tools: []string{}}
	c := &counter{root: opts.ProjectRoot, seen: make(map[string]bool)}

	for _, rel := range EntryFiles {
		f, ok, err := c.read(filepath.Join(opts.ProjectRoot, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		if ok {
			r.Categories.EntryPoints.add(f)
		}
	}

	for _, p := range opts.Profiles {
		r.Tools = append(r.Tools, p.DisplayName)
	}

	skillTotals := make(map[string]int)
	for _, typ := range artifact.AllTypes() {
		dirs := []string{filepath.Join(opts.ContentRoot, typ.DirName())}
		for _, p := range opts.Profiles {
			if rel := p.Dir(typ); rel != "" && filepath.IsLocal(filepath.FromSlash(rel)) {
				dirs = append(dirs, filepath.Join(opts.ProjectRoot, filepath.FromSlash(rel)))
			}
		}

		cat := r.category(typ)
		for _, dir := range dirs {
			err := c.walk(typ, dir, func(rel string, f File) {
				cat.add(f)
				if typ == artifact.TypeSkill && path.Dir(rel) != "." {
					skillTotals[topDir(rel)] += f.Tokens
				}
			})
			if err != nil {
				return nil, err
			}
		}
	}

	for _, cat := range []Category{r.Categories.EntryPoints, r.Categories.Skills, r.Categories.Rules, r.Categories.Workflows} {
		r.Total.Files += cat.Files
		r.Total.Tokens += cat.Tokens
		r.Total.Bytes += cat.Bytes
	}

	r.Session.EntryPoints = r.Categories.EntryPoints.Tokens
	if len(skillTotals) > 0 {
		sum := 0
		for _, n := range skillTotals {
			sum += n
		}
		r.Session.AvgSkill = int(math.Round(float64(sum) / float64(len(skillTotals))))
	}
	r.Session.Tokens = r.Session.EntryPoints + r.Session.AvgSkill

	limit := opts.Largest
	if limit <= 0 {
		limit = 5
	}
	sort.SliceStable(c.files, func(i, j int) bool { return c.files[i].Tokens > c.files[j].Tokens })
	if len(c.files) > limit {
		c.files = c.files[:limit]
	}
	r.Largest = c.files

	return r, nil
}

func (r *Report) category(t artifact.Type) *Category {
	switch t {
	case artifact.TypeSkill:
		return &r.Categories.Skills
	case artifact.TypeRule:
		return &r.Categories.Rules
	default:
		return &r.Categories.Workflows
	}
}

// walk visits every unseen content file under dir
func (c *counter) walk(typ artifact.Type, dir string, visit func(rel string, f File)) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), ContentPattern)
	if err != nil {
		return errors.Wrapf(err, "failed to scan %s", dir)
	}
	sort.Strings(matches)

	for _, rel := range matches {
		key := string(typ) + ":" + rel
		if c.seen[key] {
			continue
		}
		c.seen[key] = true

		f, ok, err := c.read(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			return err
		}
		if ok {
			visit(rel, f)
		}
	}
	return nil
}

func (c *counter) read(path string) (File, bool, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return File{}, false, nil
	}
	abs := "abs:" + filepath.Clean(path)
	if c.seen[abs] {
		return File{}, false, nil
	}
	c.seen[abs] = true
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, false, errors.Wrapf(err, "failed to read %s", path)
	}

	display := path
	if rel, err := filepath.Rel(c.root, path); err == nil && filepath.IsLocal(rel) {
		display = filepath.ToSlash(rel)
	}
	text := string(data)
	f := File{
		Path:   display,
		Bytes:  info.Size(),
		Chars:  utf8.RuneCountInString(text),
		Tokens: Estimate(text),
	}
	c.files = append(c.files, f)
	return f, true, nil
}

// topDir returns the first element of a slash path: the skill name
func topDir(rel string) string {
	for {
		dir := path.Dir(rel)
		if dir == "." || dir == "/" {
			return rel
		}
		rel = dir
	}
}
