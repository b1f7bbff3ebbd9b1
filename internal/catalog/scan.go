// Package catalog scans a content root for skills, rules and workflows and
// keeps generated skill tables in sync inside markdown documents.
package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/kennyg/lmagent/internal/artifact"
)

// Scan lists the items in dir. In nested mode it returns child directories
// holding a SKILL.md; otherwise child files with a recognized extension.
// A missing directory yields an empty list.
func Scan(dir string, nested bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", dir)
	}

	var names []string
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		// Stat follows symlinked skill dirs left by earlier installs
		info, err := os.Stat(full)
		if err != nil {
			continue
		}

		if nested {
			if !info.IsDir() {
				continue
			}
			if fi, err := os.Stat(filepath.Join(full, artifact.SkillFilename)); err == nil && !fi.IsDir() {
				names = append(names, entry.Name())
			}
			continue
		}

		if info.IsDir() {
			continue
		}
		if hasFlatExtension(entry.Name()) {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

func hasFlatExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range artifact.FlatExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Catalog is the content available under one content root
type Catalog struct {
	Root      string
	Skills    []artifact.Item
	Rules     []artifact.Item
	Workflows []artifact.Item
}

// Load scans all three content types under root
func Load(root string) (*Catalog, error) {
	c := &Catalog{Root: root}
	for _, t := range artifact.AllTypes() {
		dir := filepath.Join(root, t.DirName())
		names, err := Scan(dir, t.Nested())
		if err != nil {
			return nil, err
		}
		items := make([]artifact.Item, len(names))
		for i, name := range names {
			items[i] = artifact.Item{Name: name, Type: t, Path: filepath.Join(dir, name)}
		}
		switch t {
		case artifact.TypeSkill:
			c.Skills = items
		case artifact.TypeRule:
			c.Rules = items
		case artifact.TypeWorkflow:
			c.Workflows = items
		}
	}
	return c, nil
}

// Items returns the items of one type
func (c *Catalog) Items(t artifact.Type) []artifact.Item {
	switch t {
	case artifact.TypeSkill:
		return c.Skills
	case artifact.TypeRule:
		return c.Rules
	case artifact.TypeWorkflow:
		return c.Workflows
	default:
		return nil
	}
}

// Names returns the item names of one type
func (c *Catalog) Names(t artifact.Type) []string {
	items := c.Items(t)
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

// All returns a selection of every item in the catalog
func (c *Catalog) All() artifact.Selection {
	return artifact.Selection{
		Skills:    c.Names(artifact.TypeSkill),
		Rules:     c.Names(artifact.TypeRule),
		Workflows: c.Names(artifact.TypeWorkflow),
	}
}

// Len returns the total number of items
func (c *Catalog) Len() int {
	return len(c.Skills) + len(c.Rules) + len(c.Workflows)
}
