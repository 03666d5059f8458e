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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsCodeFile(t *testing.T) {
	cases := map[string]bool{
		"a.mjs":        true,
		"a.js":         true,
		"a.cjs":        true,
		"a.ts":         true,
		"a.mts":        true,
		"a.cts":        true,
		"a.MJS":        true,
		"a.json":       false,
		"a.css":        false,
		"README.md":    false,
		"noextension":  false,
	}
	for path, want := range cases {
		require.Equalf(t, want, IsCodeFile(path), "IsCodeFile(%q)", path)
	}
}

func TestWalk_SkipsGitAndNodeModules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.mjs", "")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main")
	writeFile(t, root, "node_modules/pkg/index.js", "")
	writeFile(t, root, "lib/b.mjs", "")

	files, err := Walk(root)
	require.NoError(t, err)
	require.Equal(t, []string{"a.mjs", "lib/b.mjs"}, files)
}

func TestWalk_HonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.mjs", "")
	writeFile(t, root, "dist/bundle.js", "")
	writeFile(t, root, ".gitignore", "dist/\n")

	files, err := Walk(root)
	require.NoError(t, err)
	require.Equal(t, []string{".gitignore", "a.mjs"}, files)
}

func TestWalk_DeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "z.mjs", "")
	writeFile(t, root, "a.mjs", "")
	writeFile(t, root, "m.mjs", "")

	first, err := Walk(root)
	require.NoError(t, err)
	second, err := Walk(root)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, []string{"a.mjs", "m.mjs", "z.mjs"}, first)
}

func TestHashFile_StableForSameContent(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.mjs", "export const x = 1;\n")

	h1, err := HashFile(path)
	require.NoError(t, err)
	h2, err := HashFile(path)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
	require.Len(t, h1, 64)
}

func TestToRelative_NormalizesSlashes(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(root, "lib", "u.mjs")
	rel, err := ToRelative(root, abs)
	require.NoError(t, err)
	require.Equal(t, "lib/u.mjs", rel)
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
