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
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func zipEntryNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()
	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

func TestRun_SharedDependencyDeduplicatedAcrossEntries(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "lib/u.mjs", `export const x=1, y=2, z=3;`)
	writeTestFile(t, root, "a.mjs", `import { x, y } from "./lib/u.mjs"; console.log(x,y);`)
	writeTestFile(t, root, "b.mjs", `import { x, z } from "./lib/u.mjs"; console.log(x,z);`)

	out := filepath.Join(root, "out.zip")
	res, err := Run(context.Background(), Options{
		RootDir:             root,
		SelectedRelPaths:    []string{"a.mjs", "b.mjs"},
		OutputPath:          out,
		IncludeDependencies: true,
		BundleDependencies:  true,
		MinimizeMode:        "none",
	})
	require.NoError(t, err)

	require.Len(t, res.Manifest.BundledDependencies, 1)
	bd := res.Manifest.BundledDependencies[0]
	require.Equal(t, []string{"lib/u.mjs"}, bd.Sources)
	require.Len(t, bd.Imports, 1)
	require.ElementsMatch(t, []string{"x", "y", "z"}, bd.Imports[0].Imports.Named)
	require.Empty(t, bd.SkippedDuplicateNamedImports)

	names := zipEntryNames(t, out)
	require.Contains(t, names, "juiced.mjs")
	require.Contains(t, names, "pulp.mjs")
	require.Contains(t, names, "extract-manifest.json")
}

func TestRun_SameNameSymbolFromTwoDepsIsDeduplicated(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "p1.mjs", `export function parse(){return 1;}`)
	writeTestFile(t, root, "p2.mjs", `export function parse(){return 2;}`)
	writeTestFile(t, root, "a.mjs", `
import { parse } from "./p1.mjs";
import { parse as p2Parse } from "./p2.mjs";
console.log(parse, p2Parse);
`)

	out := filepath.Join(root, "out.zip")
	res, err := Run(context.Background(), Options{
		RootDir:             root,
		SelectedRelPaths:    []string{"a.mjs"},
		OutputPath:          out,
		IncludeDependencies: true,
		BundleDependencies:  true,
		MinimizeMode:        "none",
	})
	require.NoError(t, err)

	bd := res.Manifest.BundledDependencies[0]
	require.Len(t, bd.SkippedDuplicateNamedImports, 1)
	require.Equal(t, "parse", bd.SkippedDuplicateNamedImports[0].Symbol)
}

func TestRun_BareSpecifierPreservedAsExternal(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.mjs", `import fs from "node:fs"; console.log(fs);`)

	out := filepath.Join(root, "out.zip")
	_, err := Run(context.Background(), Options{
		RootDir:             root,
		SelectedRelPaths:    []string{"a.mjs"},
		OutputPath:          out,
		IncludeDependencies: true,
		BundleDependencies:  false,
		MinimizeMode:        "none",
	})
	require.NoError(t, err)
}

func TestRun_IncludeDependenciesFalseSkipsClosureDeps(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "lib/u.mjs", `export const x=1;`)
	writeTestFile(t, root, "a.mjs", `import { x } from "./lib/u.mjs"; console.log(x);`)

	out := filepath.Join(root, "out.zip")
	res, err := Run(context.Background(), Options{
		RootDir:             root,
		SelectedRelPaths:    []string{"a.mjs"},
		OutputPath:          out,
		IncludeDependencies: false,
		BundleDependencies:  false,
		MinimizeMode:        "none",
	})
	require.NoError(t, err)
	require.Empty(t, res.Manifest.BundledDependencies)
	names := zipEntryNames(t, out)
	require.Contains(t, names, "juiced.mjs")
	require.NotContains(t, names, "pulp.mjs")
}

func TestRun_CopyDependenciesMode(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "lib/u.mjs", `export const x=1;`)
	writeTestFile(t, root, "a.mjs", `import { x } from "./lib/u.mjs"; console.log(x);`)

	out := filepath.Join(root, "out.zip")
	res, err := Run(context.Background(), Options{
		RootDir:             root,
		SelectedRelPaths:    []string{"a.mjs"},
		OutputPath:          out,
		IncludeDependencies: true,
		BundleDependencies:  false,
		MinimizeMode:        "none",
	})
	require.NoError(t, err)
	require.Empty(t, res.Manifest.BundledDependencies)

	names := zipEntryNames(t, out)
	require.Contains(t, names, "juice/lib/u.mjs")
}

// TestRun_CopyDependenciesMode_TransitiveClosure guards against regressing to
// direct-imports-only staging: a.mjs imports lib/u.mjs, which itself imports
// lib/v.mjs, so both must land in juice/, not just the direct dependency.
func TestRun_CopyDependenciesMode_TransitiveClosure(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "lib/v.mjs", `export const y=2;`)
	writeTestFile(t, root, "lib/u.mjs", `import { y } from "./v.mjs"; export const x=y+1;`)
	writeTestFile(t, root, "a.mjs", `import { x } from "./lib/u.mjs"; console.log(x);`)

	out := filepath.Join(root, "out.zip")
	res, err := Run(context.Background(), Options{
		RootDir:             root,
		SelectedRelPaths:    []string{"a.mjs"},
		OutputPath:          out,
		IncludeDependencies: true,
		BundleDependencies:  false,
		MinimizeMode:        "none",
	})
	require.NoError(t, err)
	require.Empty(t, res.Manifest.BundledDependencies)

	names := zipEntryNames(t, out)
	require.Contains(t, names, "juice/lib/u.mjs")
	require.Contains(t, names, "juice/lib/v.mjs")
}

func TestRun_MultipleSelectedFilesSynthesizeAggregatorEntry(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.mjs", `export const a = 1;`)
	writeTestFile(t, root, "b.mjs", `export const b = 2;`)

	out := filepath.Join(root, "out.zip")
	_, err := Run(context.Background(), Options{
		RootDir:             root,
		SelectedRelPaths:    []string{"a.mjs", "b.mjs"},
		OutputPath:          out,
		IncludeDependencies: false,
		BundleDependencies:  false,
		MinimizeMode:        "none",
	})
	require.NoError(t, err)

	names := zipEntryNames(t, out)
	require.Contains(t, names, "juiced.mjs")
}

func TestRun_MinimizeEverythingShrinksJuicedBundle(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.mjs", `
export function verboseNamedFunction(argumentOne, argumentTwo) {
  const localVariable = argumentOne + argumentTwo;
  return localVariable;
}
`)

	noneOut := filepath.Join(root, "none.zip")
	_, err := Run(context.Background(), Options{
		RootDir: root, SelectedRelPaths: []string{"a.mjs"}, OutputPath: noneOut,
		IncludeDependencies: true, BundleDependencies: false, MinimizeMode: "none",
	})
	require.NoError(t, err)

	everythingOut := filepath.Join(root, "everything.zip")
	_, err = Run(context.Background(), Options{
		RootDir: root, SelectedRelPaths: []string{"a.mjs"}, OutputPath: everythingOut,
		IncludeDependencies: true, BundleDependencies: false, MinimizeMode: "everything",
	})
	require.NoError(t, err)

	noneInfo, err := os.Stat(noneOut)
	require.NoError(t, err)
	everythingInfo, err := os.Stat(everythingOut)
	require.NoError(t, err)
	require.LessOrEqual(t, everythingInfo.Size(), noneInfo.Size())
}

func TestRun_SelectionMissingIsFatalBeforeStaging(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out.zip")

	_, err := Run(context.Background(), Options{
		RootDir:          root,
		SelectedRelPaths: []string{"missing.mjs"},
		OutputPath:       out,
	})
	require.Error(t, err)
	var selErr *SelectionMissingError
	require.ErrorAs(t, err, &selErr)

	_, statErr := os.Stat(out)
	require.True(t, os.IsNotExist(statErr), "no ZIP should be written on SelectionMissing")
}

func TestRun_SourceHashesCoverEntireClosure(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "lib/u.mjs", `export const x=1;`)
	writeTestFile(t, root, "a.mjs", `import { x } from "./lib/u.mjs"; console.log(x);`)

	out := filepath.Join(root, "out.zip")
	res, err := Run(context.Background(), Options{
		RootDir:             root,
		SelectedRelPaths:    []string{"a.mjs"},
		OutputPath:          out,
		IncludeDependencies: true,
		BundleDependencies:  true,
		MinimizeMode:        "none",
	})
	require.NoError(t, err)
	require.Contains(t, res.Manifest.SourceHashes, "a.mjs")
	require.Contains(t, res.Manifest.SourceHashes, "lib/u.mjs")
	require.Len(t, res.Manifest.SourceHashes["a.mjs"], 64)
}

func TestRun_IdempotentManifestAcrossRuns(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "lib/u.mjs", `export const x=1;`)
	writeTestFile(t, root, "a.mjs", `import { x } from "./lib/u.mjs"; console.log(x);`)

	opts := Options{
		RootDir:             root,
		SelectedRelPaths:    []string{"a.mjs"},
		IncludeDependencies: true,
		BundleDependencies:  true,
		MinimizeMode:        "none",
	}
	opts.OutputPath = filepath.Join(root, "one.zip")
	res1, err := Run(context.Background(), opts)
	require.NoError(t, err)

	opts.OutputPath = filepath.Join(root, "two.zip")
	res2, err := Run(context.Background(), opts)
	require.NoError(t, err)

	require.Equal(t, res1.Manifest.SourceHashes, res2.Manifest.SourceHashes)
	require.Equal(t, res1.Manifest.BundledDependencies, res2.Manifest.BundledDependencies)
	require.Equal(t, res1.Manifest.Entries, res2.Manifest.Entries)
}
