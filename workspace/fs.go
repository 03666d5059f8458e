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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// codeExtensions is the fixed CodeFile extension set.
var codeExtensions = map[string]struct{}{
	".js":  {},
	".mjs": {},
	".cjs": {},
	".ts":  {},
	".mts": {},
	".cts": {},
}

// skipDirs is the mandatory set of directory names never descended into,
// regardless of .gitignore contents.
var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
}

// IsCodeFile reports whether path's lowercased extension is one of the
// CodeFile extensions.
func IsCodeFile(path string) bool {
	_, ok := codeExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ToRelative converts abs to a forward-slash-normalized path relative to
// root.
func ToRelative(root, abs string) (string, error) {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", fmt.Errorf("compute relative path: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// Walk depth-first walks root, visiting regular files in case-sensitive
// ascending order by name within each directory. Directories named exactly
// ".git" or "node_modules" are always skipped; a root-level ".gitignore"
// (if present and parseable) is additionally consulted as a superset of
// that mandatory skip list — its absence or malformedness is non-fatal.
// The returned paths are root-relative, forward-slash normalized.
func Walk(root string) ([]string, error) {
	ignorer := loadGitignore(root)

	var out []string
	var visit func(dir string) error
	visit = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("read dir %s: %w", dir, err)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			name := entry.Name()
			full := filepath.Join(dir, name)

			rel, relErr := ToRelative(root, full)
			if relErr != nil {
				continue
			}

			if entry.IsDir() {
				if _, skip := skipDirs[name]; skip {
					continue
				}
				if ignorer != nil && ignorer.MatchesPath(rel) {
					continue
				}
				if err := visit(full); err != nil {
					return err
				}
				continue
			}

			if ignorer != nil && ignorer.MatchesPath(rel) {
				continue
			}
			out = append(out, rel)
		}
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}
	return out, nil
}

// loadGitignore reads root/.gitignore if present. A missing or unparseable
// file yields a nil ignorer (matches nothing), never an error.
func loadGitignore(root string) *gitignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	ignorer, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return ignorer
}

// HashFile returns the lowercase hex SHA-256 digest of path's raw bytes.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes returns the lowercase hex SHA-256 digest of data, for callers
// that already hold a file's contents (e.g. read through an injected
// platform.FileSystem rather than directly off disk).
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
