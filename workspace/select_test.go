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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandSelection_LiteralPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.mjs", "")
	writeFile(t, root, "src/b.mjs", "")

	got, err := ExpandSelection(root, []string{"src/b.mjs", "src/a.mjs"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"src/a.mjs", "src/b.mjs"}, got)
}

func TestExpandSelection_MissingLiteralIsFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.mjs", "")

	_, err := ExpandSelection(root, []string{"src/missing.mjs"}, nil)
	require.ErrorIs(t, err, ErrSelectionMissing)
}

func TestExpandSelection_GlobPattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.mjs", "")
	writeFile(t, root, "src/nested/b.mjs", "")
	writeFile(t, root, "src/c.json", "")

	got, err := ExpandSelection(root, []string{"src/**/*.mjs"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"src/a.mjs", "src/nested/b.mjs"}, got)
}

func TestExpandSelection_GlobMatchingNothingIsNotAnError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.mjs", "")

	got, err := ExpandSelection(root, []string{"other/**/*.mjs"}, nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestExpandSelection_DeduplicatesAcrossPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.mjs", "")

	got, err := ExpandSelection(root, []string{"src/a.mjs", "src/*.mjs"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"src/a.mjs"}, got)
}

func TestExpandSelection_ExcludePatternDropsMatches(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.mjs", "")
	writeFile(t, root, "src/a.test.mjs", "")

	got, err := ExpandSelection(root, []string{"src/*.mjs"}, []string{"**/*.test.mjs"})
	require.NoError(t, err)
	require.Equal(t, []string{"src/a.mjs"}, got)
}

func TestExpandSelection_ExcludeWinsOverLiteralSelect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.mjs", "")

	got, err := ExpandSelection(root, []string{"src/a.mjs"}, []string{"src/a.mjs"})
	require.NoError(t, err)
	require.Empty(t, got)
}
