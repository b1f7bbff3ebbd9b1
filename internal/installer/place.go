package installer

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/kennyg/lmagent/internal/config"
)

// linkFunc creates dst pointing at src. dir is true for skill directories.
type linkFunc func(src, dst string, dir bool) error

// place replaces dst with src using the given method. A failed link falls
// back to a copy and reports StatusFallback.
func (in *Installer) place(src, dst string, method config.Method) (Status, error) {
	info, err := os.Stat(src)
	if err != nil {
		return StatusError, errors.Wrapf(err, "failed to stat %s", src)
	}

	// Lstat so dangling links are removed too
	if _, err := os.Lstat(dst); err == nil {
		if err := os.RemoveAll(dst); err != nil {
			return StatusError, errors.Wrapf(err, "failed to remove %s", dst)
		}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return StatusError, errors.Wrapf(err, "failed to create %s", filepath.Dir(dst))
	}

	if method == config.MethodSymlink {
		linkErr := in.link(src, dst, info.IsDir())
		if linkErr == nil {
			return StatusLinked, nil
		}
		in.log.WithError(linkErr).WithField("dst", dst).Debug("link failed, copying instead")
		// A half-made junction would block the copy
		_ = os.RemoveAll(dst)
		if err := copyPath(src, dst); err != nil {
			return StatusError, err
		}
		return StatusFallback, nil
	}

	if err := copyPath(src, dst); err != nil {
		return StatusError, err
	}
	return StatusCopied, nil
}

// copyPath copies a file or directory tree. Links inside the tree are
// followed so the copy is self-contained.
func copyPath(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "failed to stat %s", src)
	}
	if !info.IsDir() {
		return copyFile(src, dst, info.Mode().Perm())
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.Type()&fs.ModeSymlink != 0 {
			return copyPath(path, target)
		}
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, fi.Mode().Perm())
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", src)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(dst))
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0200)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "failed to copy %s", src)
	}
	return out.Close()
}

// samePath compares paths case-insensitively after resolving links, so a
// tool dir linked to the content root matches it, as do differently-cased
// spellings of one directory on macOS and Windows.
func samePath(a, b string) bool {
	return strings.EqualFold(ResolvePath(a), ResolvePath(b))
}

// sameEntry is samePath for directory entries. Only the parent is
// resolved, so a link placed by an earlier install is not the source
// it points at.
func sameEntry(a, b string) bool {
	return samePath(filepath.Dir(a), filepath.Dir(b)) &&
		strings.EqualFold(filepath.Base(a), filepath.Base(b))
}

// ResolvePath cleans p and evaluates links in its longest existing prefix.
// The missing tail is joined back unchanged.
func ResolvePath(p string) string {
	p = filepath.Clean(p)
	var tail []string
	for dir := p; ; {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return p
		}
		tail = append([]string{filepath.Base(dir)}, tail...)
		dir = parent
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
