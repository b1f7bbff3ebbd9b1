//go:build windows

package installer

import (
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// makeLink uses a junction for directories, which needs no elevation.
// Files still need symlink privileges and fall back to a copy without them.
func makeLink(src, dst string, dir bool) error {
	if !dir {
		return os.Symlink(src, dst)
	}
	out, err := exec.Command("cmd", "/c", "mklink", "/J", dst, src).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "mklink /J: %s", out)
	}
	return nil
}
