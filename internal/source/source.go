// Package source parses the argument of `lmagent add`: a GitHub skill
// directory (shorthand or URL) or a local path.
package source

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Type is the kind of source
type Type string

const (
	TypeGitHub Type = "github"
	TypeLocal  Type = "local"
)

// DefaultRef is used when a GitHub source names no ref
const DefaultRef = "main"

// Source is a parsed skill source
type Source struct {
	Type     Type
	Host     string // github.com or a GHE hostname
	Owner    string
	Repo     string
	Path     string // Skill dir inside the repo, or the absolute local path
	Ref      string
	Original string
}

var (
	// owner/repo or owner/repo:path
	githubShorthand = regexp.MustCompile(`^([a-zA-Z0-9_-]+)/([a-zA-Z0-9_.-]+)(?::(.+))?$`)

	// owner/repo@ref or owner/repo:path@ref
	githubWithRef = regexp.MustCompile(`^([a-zA-Z0-9_-]+)/([a-zA-Z0-9_.-]+)(?::([^@]+))?@(.+)$`)
)

// Parse parses a source argument
func Parse(input string) (*Source, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("empty source")
	}

	if isLocalPath(input) {
		p := input
		if strings.HasPrefix(p, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				p = filepath.Join(home, p[2:])
			}
		}
		absPath, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrap(err, "invalid local path")
		}
		return &Source{Type: TypeLocal, Path: absPath, Original: input}, nil
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return parseURL(input)
	}

	if m := githubWithRef.FindStringSubmatch(input); m != nil {
		return &Source{
			Type:     TypeGitHub,
			Host:     "github.com",
			Owner:    m[1],
			Repo:     m[2],
			Path:     strings.Trim(m[3], "/"),
			Ref:      m[4],
			Original: input,
		}, nil
	}

	if m := githubShorthand.FindStringSubmatch(input); m != nil {
		return &Source{
			Type:     TypeGitHub,
			Host:     "github.com",
			Owner:    m[1],
			Repo:     m[2],
			Path:     strings.Trim(m[3], "/"),
			Ref:      DefaultRef,
			Original: input,
		}, nil
	}

	return nil, errors.Errorf("unable to parse source: %s", input)
}

func parseURL(input string) (*Source, error) {
	u, err := url.Parse(input)
	if err != nil {
		return nil, errors.Wrap(err, "invalid URL")
	}
	if !isGitHubHost(u.Host) {
		return nil, errors.Errorf("only GitHub URLs are supported: %s", input)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" {
		return nil, errors.Errorf("invalid GitHub URL: %s", input)
	}

	host := strings.ToLower(u.Host)
	if host == "raw.githubusercontent.com" {
		host = "github.com"
	}
	host = strings.TrimPrefix(host, "raw.")

	src := &Source{
		Type:     TypeGitHub,
		Host:     host,
		Owner:    parts[0],
		Repo:     strings.TrimSuffix(parts[1], ".git"),
		Ref:      DefaultRef,
		Original: input,
	}

	switch {
	// raw.githubusercontent.com/owner/repo/ref/path and raw.<ghe>/owner/repo/ref/path
	case strings.HasPrefix(strings.ToLower(u.Host), "raw.") && len(parts) >= 3:
		src.Ref = parts[2]
		src.Path = strings.Join(parts[3:], "/")
	// github.com/owner/repo/{tree,blob,raw}/ref/path
	case len(parts) >= 4 && (parts[2] == "tree" || parts[2] == "blob" || parts[2] == "raw"):
		src.Ref = parts[3]
		src.Path = strings.Join(parts[4:], "/")
	}

	// A link to SKILL.md means its directory
	if strings.EqualFold(path.Base(src.Path), "SKILL.md") {
		src.Path = strings.TrimSuffix(path.Dir(src.Path), ".")
	}
	return src, nil
}

// isGitHubHost reports whether host is GitHub or looks like GitHub Enterprise
func isGitHubHost(host string) bool {
	h := strings.ToLower(host)
	if h == "github.com" || h == "raw.githubusercontent.com" {
		return true
	}
	if strings.Contains(h, "github") {
		return true
	}
	return strings.HasPrefix(h, "git.") || strings.HasPrefix(h, "ghe.")
}

// isLocalPath reports whether input names a local path
func isLocalPath(input string) bool {
	if strings.HasPrefix(input, ".") ||
		strings.HasPrefix(input, "/") ||
		strings.HasPrefix(input, "~") ||
		(len(input) >= 2 && input[1] == ':') {
		return true
	}
	_, err := os.Stat(input)
	return err == nil
}

// SkillName is the directory name the skill is installed under: the last
// path element, or the repository name for a repo-root skill.
func (s *Source) SkillName() string {
	switch s.Type {
	case TypeLocal:
		return filepath.Base(s.Path)
	default:
		if s.Path != "" {
			return path.Base(s.Path)
		}
		return s.Repo
	}
}

// IsEnterprise reports whether the source is on a GitHub Enterprise host
func (s *Source) IsEnterprise() bool {
	return s.Type == TypeGitHub && s.Host != "" && s.Host != "github.com"
}

// String returns the canonical shorthand
func (s *Source) String() string {
	switch s.Type {
	case TypeGitHub:
		result := s.Owner + "/" + s.Repo
		if s.IsEnterprise() {
			result = s.Host + "/" + result
		}
		if s.Path != "" {
			result += ":" + s.Path
		}
		if s.Ref != "" && s.Ref != DefaultRef {
			result += "@" + s.Ref
		}
		return result
	case TypeLocal:
		return s.Path
	default:
		return s.Original
	}
}
