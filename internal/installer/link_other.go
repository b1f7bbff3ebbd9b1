//go:build !windows

package installer

import "os"

func makeLink(src, dst string, _ bool) error {
	return os.Symlink(src, dst)
}
