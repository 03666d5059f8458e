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
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/squeezejs/squeeze/modulegraph"
)

// DependencyBundle is C8's output record (§3's DependencyBundle).
type DependencyBundle struct {
	// Output is the absolute path of the produced pulp.mjs on disk.
	Output string
	// Sources are root-relative planned-target paths, in bundle-index
	// order (Sources[i] is identifier index i+1).
	Sources []string
	Usage   *modulegraph.PlannedUsageMap
}

// BuildDependencyBundle synthesizes the aggregator entry described in §4.8
// and invokes the bundler adapter to produce outFile. The aggregator entry
// lives in a throwaway temp directory that is removed before this function
// returns, win or lose.
func BuildDependencyBundle(pm *modulegraph.PlannedUsageMap, rootDir, outFile string, minify bool) (*DependencyBundle, error) {
	tmpDir, err := os.MkdirTemp("", "squeeze-pulp-entry-*")
	if err != nil {
		return nil, fmt.Errorf("create aggregator temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	entryPath := filepath.Join(tmpDir, "aggregator-entry.mjs")
	if err := os.WriteFile(entryPath, []byte(renderAggregatorEntry(pm)), 0o644); err != nil {
		return nil, fmt.Errorf("write aggregator entry: %w", err)
	}

	if err := Build(Options{
		EntryFile: entryPath,
		OutFile:   outFile,
		WorkDir:   rootDir,
		Minify:    minify,
	}); err != nil {
		return nil, err
	}

	sources := make([]string, len(pm.Order))
	for i, target := range pm.Order {
		rel, err := filepath.Rel(rootDir, target)
		if err != nil {
			return nil, fmt.Errorf("relativize %s: %w", target, err)
		}
		sources[i] = filepath.ToSlash(rel)
	}

	return &DependencyBundle{Output: outFile, Sources: sources, Usage: pm}, nil
}

// renderAggregatorEntry renders the synthetic entry module described in
// §4.8 step 1: one import per planned target (absolute path, so the
// resulting module is insensitive to where the temp entry file lives), and
// one export per owned symbol under its bit-exact name.
func renderAggregatorEntry(pm *modulegraph.PlannedUsageMap) string {
	var b strings.Builder
	for i, target := range pm.Order {
		idx := i + 1
		pt := pm.ByTarget[target]
		absSpec := filepath.ToSlash(target)

		if pt.SideEffectOnly && !pt.NeedsDefault && !pt.NeedsNamespace && len(pt.Named) == 0 {
			fmt.Fprintf(&b, "import %q;\n", absSpec)
			continue
		}

		fmt.Fprintf(&b, "import * as dep_%d_ns from %q;\n", idx, absSpec)
		if pt.NeedsNamespace {
			fmt.Fprintf(&b, "export const dep_%d_namespace = dep_%d_ns;\n", idx, idx)
		}
		if pt.NeedsDefault {
			fmt.Fprintf(&b, "export const dep_%d_default_export = dep_%d_ns.default;\n", idx, idx)
		}
		for _, symbol := range pt.Named {
			fmt.Fprintf(&b, "export const %s = dep_%d_ns.%s;\n", symbol, idx, symbol)
		}
	}
	return b.String()
}
