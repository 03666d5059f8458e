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
package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// ReplayOptions configures C11: replaying a prior extraction's manifest
// against a (possibly updated) checkout.
type ReplayOptions struct {
	ManifestPath string
	RootDir      string
	OutputPath   string
}

// Replay parses the manifest at opts.ManifestPath, recovers the selected
// files and extraction flags it recorded, and re-invokes Run against
// opts.RootDir. Per §4.11, selectedRelativePaths is read from the "bundle"
// kind entry's sources, falling back to a top-level selectedRelativePaths
// array; minimizeMode, includeDependencies, and bundleDependencies fall back
// to their documented defaults when absent.
func Replay(ctx context.Context, opts ReplayOptions) (*Result, error) {
	data, err := os.ReadFile(opts.ManifestPath)
	if err != nil {
		return nil, ioFail(opts.ManifestPath, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("manifest at %s is not valid JSON", opts.ManifestPath)
	}
	root := gjson.ParseBytes(data)

	selected := selectedRelativePaths(root)
	if len(selected) == 0 {
		return nil, fmt.Errorf("manifest at %s names no selected files to replay", opts.ManifestPath)
	}

	includeDependencies := true
	if v := root.Get("includeDependencies"); v.Exists() {
		includeDependencies = v.Bool()
	}
	bundleDependencies := false
	if v := root.Get("bundleDependencies"); v.Exists() {
		bundleDependencies = v.Bool()
	}
	minimizeMode := normalizeMinimizeMode(root.Get("minimizeMode").String())

	return Run(ctx, Options{
		RootDir:             opts.RootDir,
		SelectedRelPaths:    selected,
		OutputPath:          opts.OutputPath,
		IncludeDependencies: includeDependencies,
		BundleDependencies:  bundleDependencies,
		MinimizeMode:        minimizeMode,
	})
}

// selectedRelativePaths recovers the original selection from a manifest:
// the "bundle" entry's sources array first, then a top-level
// selectedRelativePaths array as a fallback for older or hand-written
// manifests.
func selectedRelativePaths(root gjson.Result) []string {
	var out []string
	for _, entry := range root.Get("entries").Array() {
		if entry.Get("kind").String() != "bundle" {
			continue
		}
		for _, s := range entry.Get("sources").Array() {
			out = append(out, s.String())
		}
		if len(out) > 0 {
			return out
		}
	}

	for _, s := range root.Get("selectedRelativePaths").Array() {
		out = append(out, s.String())
	}
	return out
}

// normalizeMinimizeMode constrains a replayed manifest's recorded mode to
// the fixed set, defaulting to "none" for an absent or unrecognized value.
func normalizeMinimizeMode(mode string) string {
	switch mode {
	case "dependencies", "everything":
		return mode
	default:
		return "none"
	}
}
