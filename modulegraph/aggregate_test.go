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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregate_UnionsUsageAcrossEntries(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.mjs", `import { x, y } from "./lib/u.mjs";`)
	writeTestFile(t, root, "b.mjs", `import { x, z } from "./lib/u.mjs";`)
	writeTestFile(t, root, "lib/u.mjs", `export const x=1,y=2,z=3;`)

	um, _, err := Aggregate(root, []string{"a.mjs", "b.mjs"}, diskReadFile)
	require.NoError(t, err)

	targets := um.Targets()
	require.Len(t, targets, 1)
	u, ok := um.Get(targets[0])
	require.True(t, ok)
	require.ElementsMatch(t, []string{"x", "y", "z"}, u.NamedSorted())
}

func TestAggregate_OnlyDirectImportsOfEntries(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.mjs", `import { x } from "./b.mjs";`)
	writeTestFile(t, root, "b.mjs", `import { y } from "./c.mjs"; export const x=1;`)
	writeTestFile(t, root, "c.mjs", `export const y=1;`)

	um, _, err := Aggregate(root, []string{"a.mjs"}, diskReadFile)
	require.NoError(t, err)
	require.Len(t, um.Targets(), 1, "only a.mjs's direct import (b.mjs) should be aggregated")
}

func TestAggregate_InsertionOrderFollowsCallerOrder(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.mjs", `import { x } from "./second.mjs";`)
	writeTestFile(t, root, "b.mjs", `import { y } from "./first.mjs";`)
	writeTestFile(t, root, "first.mjs", `export const y=1;`)
	writeTestFile(t, root, "second.mjs", `export const x=1;`)

	um, _, err := Aggregate(root, []string{"a.mjs", "b.mjs"}, diskReadFile)
	require.NoError(t, err)

	targets := um.Targets()
	require.Len(t, targets, 2)
	require.Equal(t, filepath.Join(root, "second.mjs"), targets[0])
	require.Equal(t, filepath.Join(root, "first.mjs"), targets[1])
}

func TestAggregate_SideEffectFlag(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.mjs", `import "./init.mjs";`)
	writeTestFile(t, root, "init.mjs", ``)

	um, _, err := Aggregate(root, []string{"a.mjs"}, diskReadFile)
	require.NoError(t, err)

	targets := um.Targets()
	require.Len(t, targets, 1)
	u, _ := um.Get(targets[0])
	require.True(t, u.SideEffectOnly)
	require.False(t, u.NeedsDefault)
	require.False(t, u.NeedsNamespace)
	require.Empty(t, u.NamedSorted())
}

func TestAggregate_DefaultAndNamespaceFlags(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.mjs", `import D from "./lib.mjs";`)
	writeTestFile(t, root, "b.mjs", `import * as ns from "./lib.mjs";`)
	writeTestFile(t, root, "lib.mjs", ``)

	um, _, err := Aggregate(root, []string{"a.mjs", "b.mjs"}, diskReadFile)
	require.NoError(t, err)

	targets := um.Targets()
	require.Len(t, targets, 1)
	u, _ := um.Get(targets[0])
	require.True(t, u.NeedsDefault)
	require.True(t, u.NeedsNamespace)
}

func TestAggregate_RegistrySortedByFile(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "b.mjs", `import { x } from "./lib.mjs";`)
	writeTestFile(t, root, "a.mjs", `import { y } from "./lib.mjs";`)
	writeTestFile(t, root, "lib.mjs", ``)

	_, registry, err := Aggregate(root, []string{"b.mjs", "a.mjs"}, diskReadFile)
	require.NoError(t, err)
	require.Len(t, registry, 2)
	require.Equal(t, "a.mjs", registry[0].File)
	require.Equal(t, "b.mjs", registry[1].File)
}

func TestAggregate_UnresolvedImportNotAggregated(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.mjs", `import x from "./missing.mjs";`)

	um, registry, err := Aggregate(root, []string{"a.mjs"}, diskReadFile)
	require.NoError(t, err)
	require.Empty(t, um.Targets())
	require.Len(t, registry, 1)
	require.Empty(t, registry[0].Records)
}
