package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// customFile is the on-disk shape of tools.toml:
//
//	[[tool]]
//	id = "my-agent"
//	name = "My Agent"
//	skills_dir = ".my-agent/skills"
type customFile struct {
	Tools []ToolProfile `toml:"tool"`
}

// LoadCustomProfiles reads user-defined tool profiles. A missing file
// yields no profiles and no error.
func LoadCustomProfiles(path string) ([]ToolProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	var f customFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	seen := make(map[Tool]bool)
	for _, p := range KnownTools() {
		seen[p.ID] = true
	}

	for i := range f.Tools {
		p := &f.Tools[i]
		if p.ID == "" {
			return nil, errors.Errorf("%s: tool #%d has no id", path, i+1)
		}
		if seen[p.ID] {
			return nil, errors.Errorf("%s: tool id %q is already defined", path, p.ID)
		}
		seen[p.ID] = true

		if p.DisplayName == "" {
			p.DisplayName = string(p.ID)
		}
		for _, rel := range []string{p.RulesDir, p.SkillsDir, p.WorkflowsDir, p.Marker, p.ConfigFile} {
			if rel != "" && !filepath.IsLocal(filepath.FromSlash(rel)) {
				return nil, errors.Errorf("%s: tool %q path %q must be relative to the install root", path, p.ID, rel)
			}
		}
	}

	return f.Tools, nil
}

// Profiles returns the built-in table followed by any custom profiles
func Profiles(customPath string) ([]ToolProfile, error) {
	custom, err := LoadCustomProfiles(customPath)
	if err != nil {
		return nil, err
	}
	return append(KnownTools(), custom...), nil
}
