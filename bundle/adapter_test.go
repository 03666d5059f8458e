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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuild_ProducesESModuleOutput(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "entry.mjs", `export const greeting = "hi";`)
	out := filepath.Join(root, "out", "bundle.mjs")

	err := Build(Options{
		EntryFile: filepath.Join(root, "entry.mjs"),
		OutFile:   out,
		WorkDir:   root,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), "greeting")
}

func TestBuild_MarksExternalsUntouched(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "dep.mjs", `export const x = 1;`)
	writeTestFile(t, root, "entry.mjs", `export { x } from "./dep.mjs";`)
	out := filepath.Join(root, "out", "bundle.mjs")

	err := Build(Options{
		EntryFile: filepath.Join(root, "entry.mjs"),
		OutFile:   out,
		WorkDir:   root,
		External:  []string{filepath.Join(root, "dep.mjs")},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), "dep.mjs")
}

func TestBuild_InvalidSyntaxFails(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "entry.mjs", `export const = ;`)
	out := filepath.Join(root, "out", "bundle.mjs")

	err := Build(Options{
		EntryFile: filepath.Join(root, "entry.mjs"),
		OutFile:   out,
		WorkDir:   root,
	})
	require.Error(t, err)
	var failure *FailureError
	require.ErrorAs(t, err, &failure)
	require.Equal(t, filepath.Join(root, "entry.mjs"), failure.EntryFile)
}

func TestBuild_MinifyShrinksOutput(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "entry.mjs", `
export function verboseNamedFunction(argumentOne, argumentTwo) {
  const localVariable = argumentOne + argumentTwo;
  return localVariable;
}
`)

	plain := filepath.Join(root, "plain.mjs")
	require.NoError(t, Build(Options{EntryFile: filepath.Join(root, "entry.mjs"), OutFile: plain, WorkDir: root, Minify: false}))

	minified := filepath.Join(root, "minified.mjs")
	require.NoError(t, Build(Options{EntryFile: filepath.Join(root, "entry.mjs"), OutFile: minified, WorkDir: root, Minify: true}))

	plainData, err := os.ReadFile(plain)
	require.NoError(t, err)
	minData, err := os.ReadFile(minified)
	require.NoError(t, err)
	require.Less(t, len(minData), len(plainData))
}

func TestTransformFile_MinifiesSingleFile(t *testing.T) {
	src := []byte(`export function verboseNamedFunction(argumentOne) { return argumentOne; }`)
	out, err := TransformFile(src, "x.mjs", true)
	require.NoError(t, err)
	require.Less(t, len(out), len(src))
}

func TestTransformFile_InvalidSyntaxFails(t *testing.T) {
	_, err := TransformFile([]byte(`export const = ;`), "x.mjs", false)
	require.Error(t, err)
}
