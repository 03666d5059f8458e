/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindRepoRoot searches upward from startPath for the nearest directory
// containing a .git marker, returning it as rootDir for extraction. If no
// .git is found before reaching the filesystem root, startPath itself
// (resolved to an absolute directory) is returned.
func FindRepoRoot(startPath string) (string, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.IsDir() {
		absPath = filepath.Dir(absPath)
	}

	current := absPath
	for {
		if isVCSRoot(current) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return absPath, nil
		}
		current = parent
	}
}

// isVCSRoot reports whether dir contains a .git entry (directory for a
// normal checkout, file for a worktree or submodule).
func isVCSRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
