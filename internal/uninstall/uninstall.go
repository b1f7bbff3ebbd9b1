// Package uninstall removes what the installer placed: catalog items,
// bridges, legacy files and the bootstrap section of config files. In
// full mode it also removes the tool directories and root entry files.
package uninstall

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/catalog"
	"github.com/kennyg/lmagent/internal/config"
	"github.com/kennyg/lmagent/internal/installer"
)

// Kind is what an entry removes
type Kind string

const (
	KindItem    Kind = "item"
	KindBridge  Kind = "bridge"
	KindLegacy  Kind = "legacy"
	KindSection Kind = "section" // Bootstrap section inside a config file
	KindDir     Kind = "dir"
	KindFile    Kind = "file"
)

// SharedRulesDirs are rules dirs other tooling owns; never removed wholesale
var SharedRulesDirs = []string{"rules", ".github/instructions"}

// RootFiles are the entry documents removed in full mode
var RootFiles = []string{
	"CLAUDE.md",
	"GEMINI.md",
	"AGENTS.md",
	".cursorrules",
	".windsurfrules",
	".continuerules",
	".goosehints",
	"openclaw.json",
}

// Entry is one path scheduled for removal
type Entry struct {
	Tool config.Tool
	Kind Kind
	Path string
}

// Status is the result of removing one entry
type Status string

const (
	StatusRemoved Status = "removed"
	StatusExcised Status = "excised" // Section cut, rest of the file kept
	StatusMissing Status = "missing"
	StatusError   Status = "error"
)

// Outcome records the result for one entry
type Outcome struct {
	Entry
	Status Status
	Err    error
}

// Report collects the outcomes of a run
type Report struct {
	Outcomes []Outcome
}

// Count returns how many outcomes have the given status
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Err aggregates every failed removal, or returns nil
func (r *Report) Err() error {
	var result *multierror.Error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			result = multierror.Append(result, errors.Wrap(o.Err, o.Path))
		}
	}
	return result.ErrorOrNil()
}

type planner struct {
	contentRoot string
	seen        map[string]bool
	entries     []Entry
}

// add schedules a path if it exists and does not overlap the content root.
// The parent is resolved so a tool dir linked into the content root is
// caught, while a link placed by install is removed as a link.
func (p *planner) add(tool config.Tool, kind Kind, path string) {
	resolved := filepath.Join(installer.ResolvePath(filepath.Dir(path)), filepath.Base(path))
	if p.seen[path] || overlaps(resolved, p.contentRoot) {
		return
	}
	if _, err := os.Lstat(path); err != nil {
		return
	}
	p.seen[path] = true
	p.entries = append(p.entries, Entry{Tool: tool, Kind: kind, Path: path})
}

// Plan lists what to remove for the given profiles. Only existing paths
// are returned. Nothing inside or above contentRoot is ever scheduled.
func Plan(root, contentRoot string, profiles []config.ToolProfile, cat *catalog.Catalog, all bool) []Entry {
	if contentRoot != "" {
		contentRoot = installer.ResolvePath(contentRoot)
	}
	p := &planner{contentRoot: contentRoot, seen: make(map[string]bool)}

	for _, prof := range profiles {
		for _, typ := range artifact.AllTypes() {
			rel := prof.Dir(typ)
			if rel == "" || !filepath.IsLocal(filepath.FromSlash(rel)) {
				continue
			}
			dir := filepath.Join(root, filepath.FromSlash(rel))

			if all && !(typ == artifact.TypeRule && isShared(rel)) {
				p.add(prof.ID, KindDir, dir)
				continue
			}
			for _, name := range cat.Names(typ) {
				p.add(prof.ID, KindItem, filepath.Join(dir, name))
			}
			if typ != artifact.TypeRule {
				continue
			}
			if bridge := prof.BridgeName(); bridge != "" {
				p.add(prof.ID, KindBridge, filepath.Join(dir, bridge))
			}
			for _, legacy := range artifact.LegacyRuleFiles {
				p.add(prof.ID, KindLegacy, filepath.Join(dir, legacy))
			}
		}

		if prof.ConfigFile != "" && !prof.HasStructuredConfig() && filepath.IsLocal(filepath.FromSlash(prof.ConfigFile)) {
			cfg := filepath.Join(root, filepath.FromSlash(prof.ConfigFile))
			if hasBootstrap(cfg) && !(all && isRootFile(prof.ConfigFile)) {
				p.add(prof.ID, KindSection, cfg)
			}
		}
	}

	if all {
		for _, name := range RootFiles {
			p.add("", KindFile, filepath.Join(root, name))
		}
	}

	return p.entries
}

// Execute removes every entry. Failures are recorded and never stop the run.
func Execute(entries []Entry) *Report {
	r := &Report{}
	for _, e := range entries {
		o := Outcome{Entry: e}
		if e.Kind == KindSection {
			o.Status, o.Err = excise(e.Path)
		} else {
			o.Status, o.Err = remove(e.Path)
		}
		if o.Err != nil {
			o.Status = StatusError
		}
		r.Outcomes = append(r.Outcomes, o)
	}
	return r
}

func remove(path string) (Status, error) {
	if _, err := os.Lstat(path); os.IsNotExist(err) {
		return StatusMissing, nil
	}
	if err := os.RemoveAll(path); err != nil {
		return StatusError, errors.Wrapf(err, "failed to remove %s", path)
	}
	return StatusRemoved, nil
}

// excise cuts the bootstrap section; a file left blank is deleted
func excise(path string) (Status, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return StatusMissing, nil
	}
	if err != nil {
		return StatusError, errors.Wrapf(err, "failed to read %s", path)
	}

	rest, ok := installer.StripBootstrap(string(data))
	if !ok {
		return StatusMissing, nil
	}
	if strings.TrimSpace(rest) == "" {
		return remove(path)
	}
	if err := os.WriteFile(path, []byte(rest), 0644); err != nil {
		return StatusError, errors.Wrapf(err, "failed to write %s", path)
	}
	return StatusExcised, nil
}

func hasBootstrap(path string) bool {
	data, err := os.ReadFile(path)
	return err == nil && strings.Contains(string(data), installer.BootstrapStart)
}

func isShared(rel string) bool {
	clean := path.Clean(filepath.ToSlash(rel))
	for _, s := range SharedRulesDirs {
		if clean == s {
			return true
		}
	}
	return false
}

func isRootFile(rel string) bool {
	for _, f := range RootFiles {
		if rel == f {
			return true
		}
	}
	return false
}

// overlaps reports whether a is b, lies inside b, or contains b
func overlaps(a, b string) bool {
	if b == "" {
		return false
	}
	return within(a, b) || within(b, a)
}

func within(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}
