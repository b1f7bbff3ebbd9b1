// Package detect probes an installation root for the AI tools that live
// there. Detection only stats paths; it never creates or modifies anything.
package detect

import (
	"os"
	"path/filepath"

	"github.com/kennyg/lmagent/internal/config"
)

// Scope selects which marker set is probed
type Scope string

const (
	// ScopeProject checks each profile's marker, rules dir and skills dir
	ScopeProject Scope = "project"
	// ScopeHome checks only well-known top-level dot-dirs
	ScopeHome Scope = "home"
)

// Result records a detected tool and the path that gave it away
type Result struct {
	Profile  config.ToolProfile
	Evidence string // Relative path that exists under the root
}

// Detect returns the profiles present at a project root.
// Manual profiles are never auto-detected.
func Detect(profiles []config.ToolProfile, root string) []Result {
	var results []Result
	for _, p := range profiles {
		if p.Manual {
			continue
		}
		if evidence, ok := firstExisting(root, p.Marker, p.RulesDir, p.SkillsDir); ok {
			results = append(results, Result{Profile: p, Evidence: evidence})
		}
	}
	return results
}

// DetectHome returns the profiles present in a home directory. Generic
// paths such as rules/ or .agents/ are ignored there, so only the profile's
// home markers count.
func DetectHome(profiles []config.ToolProfile, home string) []Result {
	var results []Result
	for _, p := range profiles {
		if p.Manual {
			continue
		}
		if evidence, ok := firstExisting(home, p.HomeMarkers...); ok {
			results = append(results, Result{Profile: p, Evidence: evidence})
		}
	}
	return results
}

// In runs Detect or DetectHome depending on scope
func In(scope Scope, profiles []config.ToolProfile, root string) []Result {
	if scope == ScopeHome {
		return DetectHome(profiles, root)
	}
	return Detect(profiles, root)
}

// IsPresent reports whether a single profile is present at a project root
func IsPresent(p config.ToolProfile, root string) bool {
	_, ok := firstExisting(root, p.Marker, p.RulesDir, p.SkillsDir)
	return ok
}

// Profiles extracts the profiles from results
func Profiles(results []Result) []config.ToolProfile {
	out := make([]config.ToolProfile, len(results))
	for i, r := range results {
		out[i] = r.Profile
	}
	return out
}

func firstExisting(root string, rels ...string) (string, bool) {
	for _, rel := range rels {
		if rel == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err == nil {
			return rel, true
		}
	}
	return "", false
}
