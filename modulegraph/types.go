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

// Package modulegraph parses ES import forms, resolves relative specifiers,
// walks the transitive import graph, and plans deterministic named-symbol
// ownership for the dependency bundle.
package modulegraph

import (
	"github.com/squeezejs/squeeze/set"
)

// ImportRecord is one parsed import/export/require/dynamic-import
// expression.
type ImportRecord struct {
	// Specifier is the string exactly as written in source.
	Specifier string
	// DefaultImport is the bound identifier of a default import, or "".
	DefaultImport string
	// NamespaceImport is the bound identifier of a "* as X" clause, or "".
	NamespaceImport string
	// NamedImports holds the original (pre-alias) names of a named-import
	// clause; aliases are discarded per the parser's contract.
	NamedImports []string
	// SideEffectOnly is true for bare `import "spec"`, dynamic
	// import()/require() calls, and `export * from "spec"` with no
	// binding.
	SideEffectOnly bool
}

// Usage is the per-target aggregation record built by Aggregate. Target is
// an absolute canonical path.
type Usage struct {
	Target         string
	NeedsDefault   bool
	NeedsNamespace bool
	SideEffectOnly bool
	named          set.Set[string]
}

// NamedSorted returns the union of named imports referencing Target,
// sorted ascending.
func (u *Usage) NamedSorted() []string {
	if u.named == nil {
		return nil
	}
	return set.Sorted(u.named)
}

// UsageMap preserves the order in which targets were first referenced
// while scanning entry files in caller-supplied order, left to right
// within each file's import statements. Ownership assignment in Plan
// depends on this order being stable.
type UsageMap struct {
	order    []string
	byTarget map[string]*Usage
}

// NewUsageMap returns an empty UsageMap.
func NewUsageMap() *UsageMap {
	return &UsageMap{byTarget: make(map[string]*Usage)}
}

// Targets returns the insertion-ordered list of targets seen so far.
func (m *UsageMap) Targets() []string {
	return append([]string(nil), m.order...)
}

// Get returns the Usage recorded for target, if any.
func (m *UsageMap) Get(target string) (*Usage, bool) {
	u, ok := m.byTarget[target]
	return u, ok
}

// ensure returns the Usage for target, creating and appending it to the
// insertion order on first reference.
func (m *UsageMap) ensure(target string) *Usage {
	if u, ok := m.byTarget[target]; ok {
		return u
	}
	u := &Usage{Target: target}
	m.byTarget[target] = u
	m.order = append(m.order, target)
	return u
}

// SkippedNamedImport records a named symbol dropped from SkippedSource's
// planned Named set because KeptSource — an earlier target in insertion
// order — already owns that symbol name.
type SkippedNamedImport struct {
	Symbol        string
	SkippedSource string
	KeptSource    string
}

// PlannedTarget is one entry of a PlannedUsageMap: a Usage whose Named set
// has been filtered so each symbol belongs to at most one target.
type PlannedTarget struct {
	Target         string
	NeedsDefault   bool
	NeedsNamespace bool
	SideEffectOnly bool
	// Named holds this target's owned symbols, sorted ascending.
	Named []string
}

// PlannedUsageMap is the deterministic dedup-planning output of Plan. Order
// mirrors the source UsageMap's insertion order; index i (0-based) becomes
// bundle identifier index i+1.
type PlannedUsageMap struct {
	Order    []string
	ByTarget map[string]*PlannedTarget
}
