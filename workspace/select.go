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
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandSelection turns a mix of literal relative paths and doublestar glob
// patterns (e.g. "src/**/*.mjs") into a sorted, deduplicated list of
// root-relative code-file paths that exist under root, then drops any path
// matching one of excludePatterns. A literal select pattern (no glob
// metacharacters) is required to exist and resolve under root, or
// ErrSelectionMissing is returned — matching §7's SelectionMissing
// contract; a glob pattern that matches nothing is not an error, it simply
// contributes no paths. A literal select pattern that also matches an
// exclude glob is still dropped: excludes win, since they represent the
// user's explicit narrowing of an otherwise-broader selection. A path that is
// not a code file (IsCodeFile) is dropped, whether named literally or
// matched by a glob.
func ExpandSelection(root string, patterns, excludePatterns []string) ([]string, error) {
	relFiles, err := Walk(root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	seen := make(map[string]struct{})
	var out []string

	for _, pattern := range patterns {
		if !isGlobPattern(pattern) {
			rel, ok, err := resolveLiteral(root, relFiles, pattern)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrSelectionMissing, pattern)
			}
			if !IsCodeFile(rel) {
				continue
			}
			if _, dup := seen[rel]; !dup {
				seen[rel] = struct{}{}
				out = append(out, rel)
			}
			continue
		}

		for _, rel := range relFiles {
			matched, err := doublestar.Match(pattern, rel)
			if err != nil {
				return nil, fmt.Errorf("glob pattern %q: %w", pattern, err)
			}
			if !matched || !IsCodeFile(rel) {
				continue
			}
			if _, dup := seen[rel]; dup {
				continue
			}
			seen[rel] = struct{}{}
			out = append(out, rel)
		}
	}

	out, err = excludeMatching(out, excludePatterns)
	if err != nil {
		return nil, err
	}

	sort.Strings(out)
	return out, nil
}

// excludeMatching drops every entry of selected that matches any of
// excludePatterns (doublestar glob syntax, same as the select patterns).
func excludeMatching(selected, excludePatterns []string) ([]string, error) {
	if len(excludePatterns) == 0 {
		return selected, nil
	}
	out := make([]string, 0, len(selected))
	for _, rel := range selected {
		excluded := false
		for _, pattern := range excludePatterns {
			matched, err := doublestar.Match(pattern, rel)
			if err != nil {
				return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
			}
			if matched {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, rel)
		}
	}
	return out, nil
}

// resolveLiteral normalizes pattern (which may be absolute, rooted, or
// already relative) against root and confirms it names one of the files the
// walker discovered.
func resolveLiteral(root string, relFiles []string, pattern string) (string, bool, error) {
	rel := pattern
	if filepath.IsAbs(pattern) {
		r, err := ToRelative(root, pattern)
		if err != nil {
			return "", false, nil
		}
		rel = r
	}
	rel = filepath.ToSlash(filepath.Clean(rel))

	for _, f := range relFiles {
		if f == rel {
			return rel, true, nil
		}
	}
	return "", false, nil
}

// isGlobPattern reports whether pattern contains glob metacharacters.
func isGlobPattern(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', ']', '{', '}':
			return true
		}
	}
	return false
}
