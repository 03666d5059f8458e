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

func TestFindRepoRoot_ClimbsToGitMarker(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "src", "lib")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindRepoRoot(nested)
	require.NoError(t, err)

	wantAbs, err := filepath.Abs(root)
	require.NoError(t, err)
	require.Equal(t, wantAbs, found)
}

func TestFindRepoRoot_FallsBackToStartWhenNoGit(t *testing.T) {
	root := t.TempDir()
	leaf := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(leaf, 0o755))

	found, err := FindRepoRoot(leaf)
	require.NoError(t, err)

	// Without a .git marker anywhere above it, FindRepoRoot climbs all the
	// way to the filesystem root and returns the original start path.
	wantAbs, err := filepath.Abs(leaf)
	require.NoError(t, err)
	require.Equal(t, wantAbs, found)
}
