package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/logger"
)

// Sentinels delimiting the generated skills table
const (
	SectionStart = "<!-- LMAGENT_REGISTRY:SKILLS_START -->"
	SectionEnd   = "<!-- LMAGENT_REGISTRY:SKILLS_END -->"
)

// Layout selects the table columns rendered for a target document
type Layout string

const (
	LayoutFull    Layout = "full"    // Trigger, skill, icon & role, description
	LayoutCompact Layout = "compact" // Trigger and skill only
)

// Target is a document that may carry a catalog section
type Target struct {
	Path   string
	Layout Layout
}

// DefaultTargets returns the project's AGENTS.md and the master rules file
// of the content root.
func DefaultTargets(projectRoot, contentRoot string) []Target {
	return []Target{
		{Path: filepath.Join(projectRoot, artifact.CatalogDocument), Layout: LayoutFull},
		{Path: filepath.Join(contentRoot, artifact.RulesDirName, artifact.MasterRulesFilename), Layout: LayoutCompact},
	}
}

// Record is the catalog row for one skill
type Record struct {
	ID          string // Directory name
	Name        string
	Description string
	Role        string
	Icon        string
	Triggers    []string
}

// Trigger returns the first declared trigger, else "/" plus the first
// dash-separated segment of the skill ID.
func (r Record) Trigger() string {
	if len(r.Triggers) > 0 {
		return r.Triggers[0]
	}
	return "/" + strings.SplitN(r.ID, "-", 2)[0]
}

var (
	recordBlock = regexp.MustCompile(`(?s)^---\s*\n(.*?)\n---`)
	recordField = regexp.MustCompile(`^(\w[\w_]*)\s*:\s*(.*)$`)
	recordItem  = regexp.MustCompile(`^\s+-\s+(.+)$`)
)

// ExtractRecord pulls the catalog fields out of a SKILL.md. It is
// deliberately lenient and returns false only when there is no
// frontmatter or no name.
func ExtractRecord(id, content string) (Record, bool) {
	m := recordBlock.FindStringSubmatch(content)
	if m == nil {
		return Record{}, false
	}

	fields := make(map[string]string)
	var triggers []string
	lastKey := ""

	for _, line := range strings.Split(m[1], "\n") {
		line = strings.TrimRight(line, "\r")
		if item := recordItem.FindStringSubmatch(line); item != nil {
			if lastKey == "triggers" {
				triggers = append(triggers, trimQuotes(item[1]))
			}
			continue
		}
		if kv := recordField.FindStringSubmatch(line); kv != nil {
			lastKey = kv[1]
			fields[kv[1]] = trimQuotes(kv[2])
		}
	}

	if inline := fields["triggers"]; strings.HasPrefix(inline, "[") && strings.HasSuffix(inline, "]") {
		for _, t := range strings.Split(strings.Trim(inline, "[]"), ",") {
			if t = trimQuotes(t); t != "" {
				triggers = append(triggers, t)
			}
		}
	}

	if fields["name"] == "" {
		return Record{}, false
	}

	return Record{
		ID:          id,
		Name:        fields["name"],
		Description: orDefault(fields["description"], "No description"),
		Role:        orDefault(fields["role"], "-"),
		Icon:        orDefault(fields["icon"], "🔧"),
		Triggers:    triggers,
	}, true
}

func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

func orDefault(s, def string) string {
	// Block scalars are not followed; show the default instead of "|"
	if s == "" || s == "|" || s == ">" {
		return def
	}
	return s
}

// Records reads every skill under skillsDir, sorted by ID. Skills that
// cannot be read or parsed are skipped.
func Records(skillsDir string) ([]Record, error) {
	ids, err := Scan(skillsDir, true)
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, id := range ids {
		content, err := os.ReadFile(filepath.Join(skillsDir, id, artifact.SkillFilename))
		if err != nil {
			logger.L.WithError(err).WithField("skill", id).Debug("skipping unreadable skill")
			continue
		}
		if rec, ok := ExtractRecord(id, string(content)); ok {
			records = append(records, rec)
		} else {
			logger.L.WithField("skill", id).Debug("skipping skill without name")
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// Render builds the markdown table for a layout. The result has no
// trailing newline.
func Render(records []Record, layout Layout) string {
	var b strings.Builder
	if layout == LayoutCompact {
		b.WriteString("| Trigger | Skill |\n")
		b.WriteString("|:---|:---|")
		for _, r := range records {
			fmt.Fprintf(&b, "\n| `%s` | **%s** |", cell(r.Trigger()), cell(r.Name))
		}
		return b.String()
	}

	b.WriteString("| Trigger | Skill | Icon & Role | Description |\n")
	b.WriteString("|:---|:---|:---|:---|")
	for _, r := range records {
		fmt.Fprintf(&b, "\n| `%s` | **%s** | %s *%s* | %s |",
			cell(r.Trigger()), cell(r.Name), cell(r.Icon), cell(r.Role), cell(r.Description))
	}
	return b.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Splice replaces everything between the sentinels with table. The second
// result is false, and doc is returned unchanged, when either sentinel is
// missing or they are out of order.
func Splice(doc, table string) (string, bool) {
	start := strings.Index(doc, SectionStart)
	if start == -1 {
		return doc, false
	}
	head := start + len(SectionStart)
	end := strings.Index(doc[head:], SectionEnd)
	if end == -1 {
		return doc, false
	}
	return doc[:head] + "\n\n" + table + "\n\n" + doc[head+end:], true
}

// Status is the outcome of syncing one target
type Status string

const (
	StatusUpdated   Status = "updated"
	StatusUnchanged Status = "unchanged"
	StatusNoSection Status = "no-section"
	StatusMissing   Status = "missing"
	StatusError     Status = "error"
)

// Result reports what happened to one target
type Result struct {
	Path   string
	Status Status
	Diff   string // Unified diff, set on dry runs with changes
	Err    error
}

// Options control a sync run
type Options struct {
	DryRun bool // Compute diffs, write nothing
}

// Sync regenerates the skills table in every target. Targets are handled
// independently; per-target failures are reported in the results.
func Sync(skillsDir string, targets []Target, opts Options) ([]Result, error) {
	records, err := Records(skillsDir)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(targets))
	for _, target := range targets {
		results = append(results, syncTarget(target, Render(records, target.Layout), opts))
	}
	return results, nil
}

func syncTarget(target Target, table string, opts Options) Result {
	res := Result{Path: target.Path}

	data, err := os.ReadFile(target.Path)
	if err != nil {
		if os.IsNotExist(err) {
			res.Status = StatusMissing
			return res
		}
		res.Status, res.Err = StatusError, errors.Wrapf(err, "failed to read %s", target.Path)
		return res
	}

	old := string(data)
	updated, found := Splice(old, table)
	switch {
	case !found:
		res.Status = StatusNoSection
		return res
	case updated == old:
		res.Status = StatusUnchanged
		return res
	}

	res.Status = StatusUpdated
	if opts.DryRun {
		res.Diff = udiff.Unified(target.Path, target.Path, old, updated)
		return res
	}

	err = lockedfile.Transform(target.Path, func(current []byte) ([]byte, error) {
		spliced, _ := Splice(string(current), table)
		return []byte(spliced), nil
	})
	if err != nil {
		res.Status, res.Err = StatusError, errors.Wrapf(err, "failed to write %s", target.Path)
		return res
	}

	logger.L.WithField("path", target.Path).Debug("catalog section updated")
	return res
}
