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
package modulegraph

import (
	"os"
	"path/filepath"
	"strings"
)

// resolveExtensions is the probe order appended to a base path that does
// not resolve as an exact file, tried both directly and under "/index".
var resolveExtensions = []string{".mjs", ".js", ".cjs", ".ts", ".mts", ".cts", ".json"}

// IsRelativeSpecifier reports whether spec is eligible for resolution at
// all: only "./", "../", and "/"-prefixed specifiers are ever pulled into
// the graph. Bare package specifiers are always external.
func IsRelativeSpecifier(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || strings.HasPrefix(spec, "/")
}

// Resolve resolves specifier, as written in baseFile, to an absolute path
// under rootDir. It returns ok=false for bare specifiers, for specifiers
// that resolve to nothing on disk, and for specifiers that would escape
// rootDir.
func Resolve(baseFile, specifier, rootDir string) (string, bool) {
	if !IsRelativeSpecifier(specifier) {
		return "", false
	}

	baseDir := filepath.Dir(baseFile)
	if strings.HasPrefix(specifier, "/") {
		baseDir = rootDir
	}

	joined := filepath.Join(baseDir, filepath.FromSlash(specifier))

	for _, candidate := range probeCandidates(joined) {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		abs, ok := underRoot(rootDir, candidate)
		if !ok {
			return "", false
		}
		return abs, true
	}
	return "", false
}

// probeCandidates enumerates, in §4.3 probe order, every path Resolve
// tries for a join of baseDir and the cleaned specifier: the exact path,
// then the path plus each extension, then the path plus "/index" plus each
// extension.
func probeCandidates(joined string) []string {
	candidates := make([]string, 0, 1+2*len(resolveExtensions))
	candidates = append(candidates, joined)
	for _, ext := range resolveExtensions {
		candidates = append(candidates, joined+ext)
	}
	for _, ext := range resolveExtensions {
		candidates = append(candidates, filepath.Join(joined, "index"+ext))
	}
	return candidates
}

// underRoot reports whether candidate is rootDir itself or a descendant of
// it, returning the absolute, filepath-cleaned form of candidate.
func underRoot(rootDir, candidate string) (string, bool) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return "", false
	}
	absCandidate, err := filepath.Abs(candidate)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absCandidate)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return absCandidate, true
}
