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
	"fmt"
	"path/filepath"
	"sort"

	"github.com/squeezejs/squeeze/set"
)

// FileImports is one selected file's resolved import records, retained for
// the manifest's importRegistry (traceability/audit — §4.8's DependencyBundle
// "imports" field plus the registry wanted by §6 of the manifest schema).
type FileImports struct {
	File    string // root-relative
	Records []ResolvedImport
}

// ResolvedImport pairs a parsed ImportRecord with the absolute path its
// specifier resolved to.
type ResolvedImport struct {
	Record ImportRecord
	Target string
}

// Aggregate builds the per-target UsageMap (C5) from the direct imports of
// entryRelPaths only — not the full transitive closure. entryRelPaths are
// scanned in caller order, and within each file import statements are
// scanned left to right, so the resulting insertion order is exactly the
// order Plan's ownership rule depends on.
func Aggregate(rootDir string, entryRelPaths []string, readFile ReadFileFunc) (*UsageMap, []FileImports, error) {
	um := NewUsageMap()
	registry := make([]FileImports, 0, len(entryRelPaths))

	for _, rel := range entryRelPaths {
		abs := filepath.Join(rootDir, rel)
		src, err := readFile(abs)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", abs, err)
		}

		var resolved []ResolvedImport
		for _, rec := range ParseImports(src) {
			target, ok := Resolve(abs, rec.Specifier, rootDir)
			if !ok {
				continue
			}
			resolved = append(resolved, ResolvedImport{Record: rec, Target: target})

			u := um.ensure(target)
			if rec.DefaultImport != "" {
				u.NeedsDefault = true
			}
			if rec.NamespaceImport != "" {
				u.NeedsNamespace = true
			}
			if len(rec.NamedImports) > 0 {
				if u.named == nil {
					u.named = set.NewSet[string]()
				}
				u.named.Add(rec.NamedImports...)
			}
			if rec.SideEffectOnly && rec.DefaultImport == "" && rec.NamespaceImport == "" && len(rec.NamedImports) == 0 {
				u.SideEffectOnly = true
			}
		}

		registry = append(registry, FileImports{File: rel, Records: resolved})
	}

	sort.Slice(registry, func(i, j int) bool { return registry[i].File < registry[j].File })
	return um, registry, nil
}
