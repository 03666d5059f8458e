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

	"github.com/squeezejs/squeeze/set"
)

// ReadFileFunc abstracts source retrieval so the closure walk can run
// against a real checkout or an in-memory fixture.
type ReadFileFunc func(absPath string) (string, error)

// Closure performs the breadth-first transitive closure of entryRelPaths
// (root-relative) over resolvable relative imports, per C4. The returned
// slice is in BFS visitation order (entries first, in caller order,
// followed by each newly discovered target); it is used for sourceHashes
// coverage (P10), not for bundling order. Bare and out-of-root specifiers
// are silently ignored, never an error. A read failure on a file already
// in the closure is an IOFailure and is propagated.
func Closure(rootDir string, entryRelPaths []string, readFile ReadFileFunc) ([]string, error) {
	visited := set.NewSet[string]()
	var queue []string

	for _, rel := range entryRelPaths {
		abs, ok := underRoot(rootDir, filepath.Join(rootDir, rel))
		if !ok {
			continue
		}
		if !visited.Has(abs) {
			visited.Add(abs)
			queue = append(queue, abs)
		}
	}

	var order []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)

		src, err := readFile(cur)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", cur, err)
		}

		for _, rec := range ParseImports(src) {
			target, ok := Resolve(cur, rec.Specifier, rootDir)
			if !ok {
				continue
			}
			if visited.Has(target) {
				continue
			}
			visited.Add(target)
			queue = append(queue, target)
		}
	}

	return order, nil
}
