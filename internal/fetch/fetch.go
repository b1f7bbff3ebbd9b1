// Package fetch downloads a skill directory from GitHub, or copies one from
// a local path, into the content root's skills directory.
package fetch

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/google/go-github/v67/github"
	"github.com/pkg/errors"

	"github.com/kennyg/lmagent/internal/artifact"
	"github.com/kennyg/lmagent/internal/ghclient"
	"github.com/kennyg/lmagent/internal/logger"
	"github.com/kennyg/lmagent/internal/source"
)

// MaxFileSize is the largest single file accepted (100KB)
const MaxFileSize = 100 * 1024

// MaxTotalSize caps the whole skill (1MB)
const MaxTotalSize = 1024 * 1024

// Allowed file extensions inside a skill (security whitelist)
var allowedExtensions = map[string]bool{
	".md":   true,
	".mdc":  true,
	".txt":  true,
	".json": true,
	".yaml": true,
	".yml":  true,
	".toml": true,
	".tmpl": true,
	".csv":  true,
	// Scripts are written non-executable
	".py": true,
	".sh": true,
	".js": true,
	".ts": true,
	".rb": true,
}

// Contents is the part of the GitHub API a fetch needs
type Contents interface {
	GetContents(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
	ListContents(ctx context.Context, owner, repo, path, ref string) ([]*github.RepositoryContent, error)
}

// Fetcher installs skills from sources
type Fetcher struct {
	client func(host string) Contents
}

// New returns a fetcher backed by the GitHub API
func New() *Fetcher {
	return &Fetcher{client: func(host string) Contents { return ghclient.NewForHost(host) }}
}

// Options control a fetch
type Options struct {
	// Force replaces an existing skill of the same name
	Force bool
}

// Result describes an installed skill
type Result struct {
	Name    string
	Dir     string
	Files   []string // Slash paths relative to Dir
	Skipped []string // Files rejected by type or size
}

// ValidatePath checks that a path inside a skill is relative, stays inside
// the skill and has an allowed extension.
func ValidatePath(p string) error {
	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return errors.Errorf("absolute paths not allowed: %s", p)
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return errors.Errorf("path traversal not allowed: %s", p)
		}
	}
	ext := strings.ToLower(path.Ext(p))
	if !allowedExtensions[ext] {
		return errors.Errorf("file type not allowed: %s", p)
	}
	return nil
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// SanitizeName makes a skill name safe to use as a directory name
func SanitizeName(name string) string {
	safe := strings.Trim(unsafeName.ReplaceAllString(name, "-"), "-.")
	if safe == "" {
		return "unnamed"
	}
	return safe
}

// Skill fetches src into skillsDir/<name>. Files land in a staging
// directory first; the skill replaces any existing one only when the
// staged tree holds a SKILL.md, and the staging directory is removed on
// every failure.
func (f *Fetcher) Skill(ctx context.Context, src *source.Source, skillsDir string, opts Options) (*Result, error) {
	log := logger.G(ctx).WithField("source", src.String())

	name := SanitizeName(src.SkillName())
	dest := filepath.Join(skillsDir, name)
	if _, err := os.Stat(dest); err == nil && !opts.Force {
		return nil, errors.Errorf("skill %q already exists at %s (use --force to replace it)", name, dest)
	}

	if err := os.MkdirAll(skillsDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", skillsDir)
	}
	stage, err := os.MkdirTemp(skillsDir, ".add-"+name+"-")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create staging directory")
	}
	defer os.RemoveAll(stage)

	w := &writer{root: stage}
	switch src.Type {
	case source.TypeLocal:
		err = w.copyLocal(ctx, src.Path)
	case source.TypeGitHub:
		err = w.walkRemote(ctx, f.client(src.Host), src, src.Path, "")
	default:
		err = errors.Errorf("unsupported source type %q", src.Type)
	}
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(filepath.Join(stage, artifact.SkillFilename)); err != nil {
		return nil, errors.Errorf("%s has no %s", src, artifact.SkillFilename)
	}

	if err := os.RemoveAll(dest); err != nil {
		return nil, errors.Wrapf(err, "failed to replace %s", dest)
	}
	if err := os.Rename(stage, dest); err != nil {
		return nil, errors.Wrapf(err, "failed to move skill into %s", dest)
	}

	sort.Strings(w.files)
	log.WithField("files", len(w.files)).Debug("skill fetched")
	return &Result{Name: name, Dir: dest, Files: w.files, Skipped: w.skipped}, nil
}

// writer confines every write to root
type writer struct {
	root    string
	total   int64
	files   []string
	skipped []string
}

// accept reports whether a file should be fetched, recording a skip if not
func (w *writer) accept(rel string, size int64) bool {
	if err := ValidatePath(rel); err != nil || size > MaxFileSize {
		w.skipped = append(w.skipped, rel)
		return false
	}
	return true
}

func (w *writer) put(rel string, data []byte) error {
	if int64(len(data)) > MaxFileSize {
		w.skipped = append(w.skipped, rel)
		return nil
	}
	w.total += int64(len(data))
	if w.total > MaxTotalSize {
		return errors.Errorf("skill exceeds %d bytes", MaxTotalSize)
	}

	target, err := securejoin.SecureJoin(w.root, filepath.FromSlash(rel))
	if err != nil {
		return errors.Wrapf(err, "unsafe path %s", rel)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(target))
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", rel)
	}
	w.files = append(w.files, rel)
	return nil
}

func (w *writer) walkRemote(ctx context.Context, client Contents, src *source.Source, dir, rel string) error {
	entries, err := client.ListContents(ctx, src.Owner, src.Repo, dir, src.Ref)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "fetch interrupted")
		}
		childRel := path.Join(rel, e.GetName())

		switch e.GetType() {
		case "dir":
			if err := w.walkRemote(ctx, client, src, e.GetPath(), childRel); err != nil {
				return err
			}
		case "file":
			if !w.accept(childRel, int64(e.GetSize())) {
				continue
			}
			data, err := client.GetContents(ctx, src.Owner, src.Repo, e.GetPath(), src.Ref)
			if err != nil {
				return err
			}
			if err := w.put(childRel, data); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) copyLocal(ctx context.Context, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", root)
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", root)
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "copy interrupted")
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		fi, err := d.Info()
		if err != nil {
			return err
		}
		if !w.accept(rel, fi.Size()) {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", p)
		}
		return w.put(rel, data)
	})
}
