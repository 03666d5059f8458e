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

// Plan performs the deterministic dedup-ownership pass (C6) over um.
// Targets are visited in um's insertion order; within each target, named
// symbols are visited in ascending lexicographic order. The first target
// to claim a symbol owns it for the life of the PlannedUsageMap; every
// later claim is recorded as a SkippedNamedImport and dropped from that
// target's planned Named set. NeedsDefault, NeedsNamespace, and
// SideEffectOnly pass through unchanged.
func Plan(um *UsageMap) (*PlannedUsageMap, []SkippedNamedImport) {
	owner := make(map[string]string)
	var skipped []SkippedNamedImport

	pm := &PlannedUsageMap{ByTarget: make(map[string]*PlannedTarget, len(um.order))}

	for _, target := range um.Targets() {
		u, _ := um.Get(target)
		pt := &PlannedTarget{
			Target:         target,
			NeedsDefault:   u.NeedsDefault,
			NeedsNamespace: u.NeedsNamespace,
			SideEffectOnly: u.SideEffectOnly,
		}

		for _, symbol := range u.NamedSorted() {
			if keptSource, taken := owner[symbol]; taken {
				skipped = append(skipped, SkippedNamedImport{
					Symbol:        symbol,
					SkippedSource: target,
					KeptSource:    keptSource,
				})
				continue
			}
			owner[symbol] = target
			pt.Named = append(pt.Named, symbol)
		}

		pm.ByTarget[target] = pt
		pm.Order = append(pm.Order, target)
	}

	return pm, skipped
}
