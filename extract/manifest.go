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

// Package extract is C10 (the extraction orchestrator) and C11 (the
// manifest replayer): it composes modulegraph, bundle, rewrite, and
// workspace into the staged-payload/hash/manifest/zip pipeline described
// in §4.10-§4.11, bit-exact with the manifest shape in §6.
package extract

import "github.com/squeezejs/squeeze/workspace"

// Manifest is the bit-exact extract-manifest.json shape of §6.
type Manifest struct {
	CreatedAt           string                   `json:"createdAt"`
	RootDir             string                   `json:"rootDir"`
	Git                 workspace.GitSnapshot    `json:"git"`
	SelectedFiles       []string                 `json:"selectedFiles"`
	IncludeDependencies bool                     `json:"includeDependencies"`
	BundleDependencies  bool                     `json:"bundleDependencies"`
	FileCount           int                      `json:"fileCount"`
	SourceHashes        map[string]string        `json:"sourceHashes"`
	Entries             []ManifestEntry          `json:"entries"`
	BundledDependencies []BundledDependencyEntry `json:"bundledDependencies"`
	OutputFiles         []OutputFile             `json:"outputFiles"`
	ExpectedExportBytes int64                    `json:"expectedExportBytes"`
	OutputZipBytes      *int64                   `json:"outputZipBytes"`
}

// ManifestEntry is one of the §6 "entries" array: either the single
// "bundle" entry (juiced.mjs and its sources) or one "dependency" entry
// per individually-copied (non-bundled) dependency file.
type ManifestEntry struct {
	Kind    string   `json:"kind"`
	Output  string   `json:"output"`
	Sources []string `json:"sources,omitempty"`
	Source  string   `json:"source,omitempty"`
}

// BundledDependencyEntry is the §6 "bundledDependencies" array's single
// entry (when BundleDependencies is true), mirroring DependencyBundle.
type BundledDependencyEntry struct {
	Kind                         string                    `json:"kind"`
	Output                       string                    `json:"output"`
	Sources                      []string                  `json:"sources"`
	Imports                      []UsageEntry              `json:"imports"`
	ImportRegistry               ImportRegistry            `json:"importRegistry"`
	SkippedDuplicateNamedImports []SkippedDuplicateNamedImport `json:"skippedDuplicateNamedImports"`
}

// UsageEntry mirrors one PlannedUsageMap target, sorted by source.
type UsageEntry struct {
	Source  string     `json:"source"`
	Imports UsageFlags `json:"imports"`
}

type UsageFlags struct {
	Default        bool     `json:"default"`
	Namespace      bool     `json:"namespace"`
	SideEffectOnly bool     `json:"sideEffectOnly"`
	Named          []string `json:"named"`
}

// ImportRegistry is the per-selected-file import record listing plus the
// symbol-ownership index, both kept for traceability/audit per §3.
type ImportRegistry struct {
	Files        []FileImportEntry `json:"files"`
	MethodOwners []MethodOwner     `json:"methodOwners"`
}

type FileImportEntry struct {
	File    string             `json:"file"`
	Imports []FileImportRecord `json:"imports"`
}

type FileImportRecord struct {
	Source         string   `json:"source"`
	Default        bool     `json:"default"`
	Namespace      bool     `json:"namespace"`
	SideEffectOnly bool     `json:"sideEffectOnly"`
	Named          []string `json:"named"`
}

type MethodOwner struct {
	Symbol string `json:"symbol"`
	Source string `json:"source"`
}

type SkippedDuplicateNamedImport struct {
	Symbol        string `json:"symbol"`
	SkippedSource string `json:"skippedSource"`
	KeptSource    string `json:"keptSource"`
}

type OutputFile struct {
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}
