// Package doctor inspects a project for a healthy lmagent setup: entry
// documents, content root, installed tools, environment hygiene and the
// runtimes and variables that installed skills depend on.
package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/catalog"
	"github.com/kennyg/lmagent/internal/config"
	"github.com/kennyg/lmagent/internal/detect"
)

// Status is the severity of a check
type Status string

const (
	StatusOK    Status = "ok"
	StatusInfo  Status = "info"
	StatusWarn  Status = "warn"
	StatusIssue Status = "issue"
)

// Group labels a set of related checks
type Group string

const (
	GroupEntry    Group = "Entry points"
	GroupContent  Group = "Content"
	GroupTools    Group = "Tools"
	GroupSecurity Group = "Security"
	GroupSetup    Group = "Skill requirements"
)

// Check is one diagnostic line
type Check struct {
	Group  Group  `json:"group"`
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report is the full diagnosis
type Report struct {
	Checks []Check `json:"checks"`
}

func (r *Report) add(g Group, name string, s Status, detail string) {
	r.Checks = append(r.Checks, Check{Group: g, Name: name, Status: s, Detail: detail})
}

// Count returns how many checks have the given status
func (r *Report) Count(s Status) int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == s {
			n++
		}
	}
	return n
}

// Issues returns the number of blocking problems
func (r *Report) Issues() int {
	return r.Count(StatusIssue)
}

// Groups returns the groups present, in check order
func (r *Report) Groups() []Group {
	var out []Group
	seen := make(map[Group]bool)
	for _, c := range r.Checks {
		if !seen[c.Group] {
			seen[c.Group] = true
			out = append(out, c.Group)
		}
	}
	return out
}

// InGroup returns the checks of one group
func (r *Report) InGroup(g Group) []Check {
	var out []Check
	for _, c := range r.Checks {
		if c.Group == g {
			out = append(out, c)
		}
	}
	return out
}

// Options are the inputs of a diagnosis
type Options struct {
	ProjectRoot string
	ContentRoot string
	Profiles    []config.ToolProfile
}

// EntryDocuments must exist in every initialized project
var EntryDocuments = []string{artifact.CatalogDocument, artifact.ContextDocument}

// OptionalDirs are project dirs `init` can provide
var OptionalDirs = []string{"config", "templates", "docs"}

// Run performs every check. It never modifies the project.
func Run(opts Options) *Report {
	r := &Report{}

	for _, doc := range EntryDocuments {
		if fileExists(filepath.Join(opts.ProjectRoot, doc)) {
			r.add(GroupEntry, doc, StatusOK, "")
		} else {
			r.add(GroupEntry, doc, StatusIssue, "missing, run `lmagent init`")
		}
	}

	cat, err := catalog.Load(opts.ContentRoot)
	switch {
	case !dirExists(opts.ContentRoot):
		r.add(GroupContent, "content root", StatusIssue, opts.ContentRoot+" not found")
	case err != nil:
		r.add(GroupContent, "content root", StatusIssue, err.Error())
	default:
		r.add(GroupContent, "content root", StatusOK, fmt.Sprintf("%s (%d skills, %d rules, %d workflows)",
			opts.ContentRoot, len(cat.Skills), len(cat.Rules), len(cat.Workflows)))
	}
	for _, dir := range OptionalDirs {
		if dirExists(filepath.Join(opts.ProjectRoot, dir)) {
			r.add(GroupContent, dir+"/", StatusOK, "")
		} else {
			r.add(GroupContent, dir+"/", StatusInfo, "optional")
		}
	}

	checkTools(r, opts, cat)
	checkSecurity(r, opts.ProjectRoot)
	if cat != nil {
		checkRequirements(r, opts.ProjectRoot, cat)
	}

	return r
}

func checkTools(r *Report, opts Options, cat *catalog.Catalog) {
	results := detect.Detect(opts.Profiles, opts.ProjectRoot)
	if len(results) == 0 {
		r.add(GroupTools, "detected tools", StatusIssue, "none, run `lmagent install`")
		return
	}

	expected := 0
	if cat != nil {
		expected = len(cat.Skills)
	}

	for _, res := range results {
		p := res.Profile
		name := p.DisplayName
		if p.SkillsDir == "" {
			r.add(GroupTools, name, StatusOK, res.Evidence)
			continue
		}
		installed, _ := catalog.Scan(filepath.Join(opts.ProjectRoot, filepath.FromSlash(p.SkillsDir)), true)
		switch {
		case len(installed) < expected:
			r.add(GroupTools, name, StatusWarn, fmt.Sprintf("only %d/%d skills installed, run `lmagent install`", len(installed), expected))
		default:
			r.add(GroupTools, name, StatusOK, fmt.Sprintf("%d skills installed", len(installed)))
		}
	}
}

func checkSecurity(r *Report, root string) {
	envExample := fileExists(filepath.Join(root, ".env.example"))
	env := fileExists(filepath.Join(root, ".env"))

	if envExample {
		r.add(GroupSecurity, ".env.example", StatusOK, "")
	} else {
		r.add(GroupSecurity, ".env.example", StatusWarn, "not found")
	}

	if env {
		r.add(GroupSecurity, ".env", StatusOK, "")
	} else {
		r.add(GroupSecurity, ".env", StatusInfo, "not found, needed to run the project")
	}

	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	switch {
	case err == nil && strings.Contains(string(data), ".env"):
		r.add(GroupSecurity, ".gitignore", StatusOK, ".env is ignored")
	case err == nil:
		r.add(GroupSecurity, ".gitignore", StatusIssue, ".env is NOT ignored, secrets may be committed")
	case env:
		r.add(GroupSecurity, ".gitignore", StatusIssue, "missing while .env exists")
	}
}

func checkRequirements(r *Report, root string, cat *catalog.Catalog) {
	var groups [][]Requirement
	for _, item := range cat.Skills {
		groups = append(groups, SkillRequirements(item.Path))
	}
	reqs := Merge(groups...)
	if len(reqs) == 0 {
		return
	}

	envExample, _ := os.ReadFile(filepath.Join(root, ".env.example"))
	for _, req := range reqs {
		res := Verify(req, string(envExample))
		name := fmt.Sprintf("%s: %s", req.Type, req.Value)
		if res.Satisfied {
			r.add(GroupSetup, name, StatusOK, req.Source)
		} else {
			r.add(GroupSetup, name, StatusWarn, res.Message+" ("+req.Source+")")
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
