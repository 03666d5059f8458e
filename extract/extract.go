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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/squeezejs/squeeze/bundle"
	"github.com/squeezejs/squeeze/internal/platform"
	"github.com/squeezejs/squeeze/modulegraph"
	"github.com/squeezejs/squeeze/rewrite"
	"github.com/squeezejs/squeeze/workspace"
)

// Options configures one invocation of the extraction orchestrator (C10).
type Options struct {
	// RootDir is the checkout root. Every selected path must live under it.
	RootDir string
	// SelectedRelPaths are root-relative, in caller order — this order is
	// load-bearing: C5/C6's deterministic ownership assignment depends on
	// it, so callers must not re-sort it for "niceness".
	SelectedRelPaths []string
	// OutputPath is the destination ZIP file path.
	OutputPath string
	// IncludeDependencies, BundleDependencies, MinimizeMode mirror
	// cmd/config.ExtractConfig's fields of the same name.
	IncludeDependencies bool
	BundleDependencies  bool
	MinimizeMode        string
	// FS is the filesystem the staging and hashing steps read and write
	// through. Nil uses platform.NewOSFileSystem(). Tests use an in-memory
	// platform.FileSystem with the validation and hashing helpers; Run
	// itself always needs a real staging root on disk for the bundler.
	FS platform.FileSystem
}

func (o Options) fs() platform.FileSystem {
	if o.FS != nil {
		return o.FS
	}
	return platform.NewOSFileSystem()
}

// Result is what a caller gets back from a successful Run.
type Result struct {
	Manifest   *Manifest
	OutputPath string
	ZipBytes   int64
}

// Run executes the full §4.10 pipeline: validate, close the graph, stage,
// bundle, rewrite, hash, manifest, zip. The staging root is always removed,
// on every exit path, success or failure.
func Run(ctx context.Context, opts Options) (*Result, error) {
	rootDir, err := filepath.Abs(opts.RootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve root dir: %w", err)
	}

	fsys := opts.fs()

	if err := validateSelected(fsys, rootDir, opts.SelectedRelPaths); err != nil {
		return nil, err
	}

	readFile := func(abs string) (string, error) {
		b, err := fsys.ReadFile(abs)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	closureAbs, err := modulegraph.Closure(rootDir, opts.SelectedRelPaths, readFile)
	if err != nil {
		return nil, ioFail(rootDir, err)
	}

	sourceHashes, err := computeSourceHashes(fsys, rootDir, closureAbs)
	if err != nil {
		return nil, err
	}

	// esbuild's api.Build walks and resolves imports against real
	// filesystem paths, so the staging root itself must exist on disk
	// regardless of which platform.FileSystem the rest of this pipeline
	// uses for its own reads and writes.
	stagingRoot, err := os.MkdirTemp("", "squeeze-extract-*")
	if err != nil {
		return nil, fmt.Errorf("create staging root: %w", err)
	}
	defer os.RemoveAll(stagingRoot)

	payloadDir := filepath.Join(stagingRoot, "payload")
	if err := fsys.MkdirAll(payloadDir, 0o755); err != nil {
		return nil, ioFail(payloadDir, err)
	}

	effectiveBundle := opts.BundleDependencies && opts.IncludeDependencies
	effectiveCopy := opts.IncludeDependencies && !opts.BundleDependencies

	var (
		entries         []ManifestEntry
		bundledDeps     = []BundledDependencyEntry{}
		depBundlePath   string
		pm              *modulegraph.PlannedUsageMap
	)

	depMinify := opts.MinimizeMode == "dependencies" || opts.MinimizeMode == "everything"
	juicedMinify := opts.MinimizeMode == "everything"

	if effectiveBundle {
		um, registry, err := modulegraph.Aggregate(rootDir, opts.SelectedRelPaths, readFile)
		if err != nil {
			return nil, ioFail(rootDir, err)
		}
		plan, skipped := modulegraph.Plan(um)
		pm = plan

		depBundlePath = filepath.Join(payloadDir, "pulp.mjs")
		db, err := bundle.BuildDependencyBundle(pm, rootDir, depBundlePath, depMinify)
		if err != nil {
			return nil, err
		}
		bundledDeps = append(bundledDeps, buildBundledDependencyEntry(rootDir, db, registry, skipped))
	}

	// Bare specifiers in the selected files stay external; Closure read them above.
	var bareExternals []string
	for _, rel := range opts.SelectedRelPaths {
		src, _ := readFile(filepath.Join(rootDir, filepath.FromSlash(rel)))
		for _, rec := range modulegraph.ParseImports(src) {
			if !modulegraph.IsRelativeSpecifier(rec.Specifier) {
				bareExternals = append(bareExternals, rec.Specifier)
			}
		}
	}

	juicedOut := filepath.Join(payloadDir, "juiced.mjs")

	switch {
	case effectiveBundle:
		entryFile, err := stageRewrittenEntries(fsys, rootDir, stagingRoot, opts.SelectedRelPaths, pm, depBundlePath)
		if err != nil {
			return nil, err
		}
		if err := bundle.Build(bundle.Options{
			EntryFile: entryFile,
			OutFile:   juicedOut,
			WorkDir:   stagingRoot,
			External:  append([]string{depBundlePath}, bareExternals...),
			Minify:    juicedMinify,
		}); err != nil {
			return nil, err
		}
		entries = append(entries, ManifestEntry{Kind: "bundle", Output: "juiced.mjs", Sources: append([]string(nil), opts.SelectedRelPaths...)})

	case effectiveCopy:
		// Copy mode must materialize the entire transitive closure, not
		// just the selected entries' direct imports: a dependency that
		// itself imports a further file would otherwise be referenced by
		// juiced.mjs's external specifier but never copied into the
		// archive, producing a ZIP that is not self-contained (spec.md
		// §1/step 7). closureAbs already holds the full closure computed
		// above; only the selected entry files themselves are excluded,
		// since those become juiced.mjs, not juice/ payload.
		selected := make(map[string]struct{}, len(opts.SelectedRelPaths))
		for _, rel := range opts.SelectedRelPaths {
			selected[filepath.Join(rootDir, filepath.FromSlash(rel))] = struct{}{}
		}
		targets := make([]string, 0, len(closureAbs))
		for _, abs := range closureAbs {
			if _, isEntry := selected[abs]; isEntry {
				continue
			}
			targets = append(targets, abs)
		}

		juiceDir := filepath.Join(payloadDir, "juice")
		standins, err := stageStandins(fsys, rootDir, juiceDir, opts.SelectedRelPaths)
		if err != nil {
			return nil, err
		}

		entries = append(entries, ManifestEntry{Kind: "bundle", Output: "juiced.mjs", Sources: append([]string(nil), opts.SelectedRelPaths...)})

		externals := make([]string, 0, len(targets))
		depEntries := make([]ManifestEntry, 0, len(targets))
		for _, target := range targets {
			rel, err := workspace.ToRelative(rootDir, target)
			if err != nil {
				return nil, ioFail(target, err)
			}
			destPath := filepath.Join(juiceDir, filepath.FromSlash(rel))
			if err := copyOrTransform(fsys, target, destPath, depMinify); err != nil {
				return nil, err
			}
			externals = append(externals, destPath)
			depEntries = append(depEntries, ManifestEntry{Kind: "dependency", Output: "juice/" + rel, Source: rel})
		}
		sort.Slice(depEntries, func(i, j int) bool { return depEntries[i].Source < depEntries[j].Source })
		entries = append(entries, depEntries...)

		entryFile := standins.entryFile
		buildErr := bundle.Build(bundle.Options{
			EntryFile: entryFile,
			OutFile:   juicedOut,
			WorkDir:   stagingRoot,
			External:  append(externals, bareExternals...),
			Minify:    juicedMinify,
		})
		removeStandins(fsys, standins)
		if buildErr != nil {
			return nil, buildErr
		}

	default:
		entryFile, err := stagePassthroughEntries(fsys, rootDir, stagingRoot, opts.SelectedRelPaths)
		if err != nil {
			return nil, err
		}
		if err := bundle.Build(bundle.Options{
			EntryFile: entryFile,
			OutFile:   juicedOut,
			WorkDir:   rootDir,
			External:  bareExternals,
			Minify:    juicedMinify,
		}); err != nil {
			return nil, err
		}
		entries = append(entries, ManifestEntry{Kind: "bundle", Output: "juiced.mjs", Sources: append([]string(nil), opts.SelectedRelPaths...)})
	}

	outputFiles, err := walkPayloadFiles(fsys, payloadDir)
	if err != nil {
		return nil, err
	}
	var expectedExportBytes int64
	for _, f := range outputFiles {
		expectedExportBytes += f.Bytes
	}

	git := workspace.InspectGit(ctx, rootDir)

	manifest := &Manifest{
		CreatedAt:           time.Now().UTC().Format(time.RFC3339),
		RootDir:             rootDir,
		Git:                 git,
		SelectedFiles:       []string{"juiced.mjs"},
		IncludeDependencies: opts.IncludeDependencies,
		BundleDependencies:  opts.BundleDependencies,
		FileCount:           len(sourceHashes),
		SourceHashes:        sourceHashes,
		Entries:             entries,
		BundledDependencies: bundledDeps,
		OutputFiles:         outputFiles,
		ExpectedExportBytes: expectedExportBytes,
		OutputZipBytes:      nil,
	}

	if err := validateManifest(manifest); err != nil {
		return nil, err
	}

	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(payloadDir, "extract-manifest.json")
	if err := fsys.WriteFile(manifestPath, manifestData, 0o644); err != nil {
		return nil, ioFail(manifestPath, err)
	}

	zipFiles := append(outputFiles, OutputFile{Path: "extract-manifest.json"})
	zipBytes, err := writeZip(fsys, payloadDir, zipFiles, opts.OutputPath)
	if err != nil {
		return nil, err
	}

	return &Result{Manifest: manifest, OutputPath: opts.OutputPath, ZipBytes: zipBytes}, nil
}

// validateSelected enforces §4.10 step 1: every selected path must exist as
// a regular file under rootDir, checked before any staging directory is
// created.
func validateSelected(fsys platform.FileSystem, rootDir string, rel []string) error {
	for _, r := range rel {
		abs := filepath.Join(rootDir, filepath.FromSlash(r))
		relBack, err := filepath.Rel(rootDir, abs)
		if err != nil || relBack == ".." || strings.HasPrefix(relBack, ".."+string(filepath.Separator)) {
			return &SelectionMissingError{Path: r}
		}
		info, err := fsys.Stat(abs)
		if err != nil || info.IsDir() {
			return &SelectionMissingError{Path: r}
		}
	}
	return nil
}

// computeSourceHashes hashes every file the transitive closure visited
// (P10's hash-coverage property), keyed by root-relative path.
func computeSourceHashes(fsys platform.FileSystem, rootDir string, closureAbs []string) (map[string]string, error) {
	hashes := make(map[string]string, len(closureAbs))
	for _, abs := range closureAbs {
		rel, err := workspace.ToRelative(rootDir, abs)
		if err != nil {
			return nil, ioFail(abs, err)
		}
		data, err := fsys.ReadFile(abs)
		if err != nil {
			return nil, ioFail(abs, err)
		}
		hashes[rel] = workspace.HashBytes(data)
	}
	return hashes, nil
}

// stageRewrittenEntries writes a rewritten copy of each selected file (C9)
// under stagingRoot/rewritten, computing each copy's bundle-relative
// specifier to the already-finalized payload/pulp.mjs path, and returns the
// bundler entry file: the single staged copy, or a synthesized aggregator
// when there is more than one.
func stageRewrittenEntries(fsys platform.FileSystem, rootDir, stagingRoot string, selected []string, pm *modulegraph.PlannedUsageMap, depBundlePath string) (string, error) {
	entriesDir := filepath.Join(stagingRoot, "rewritten")
	staged := make([]string, len(selected))

	for i, rel := range selected {
		abs := filepath.Join(rootDir, filepath.FromSlash(rel))
		src, err := fsys.ReadFile(abs)
		if err != nil {
			return "", ioFail(abs, err)
		}
		stagedPath := filepath.Join(entriesDir, filepath.FromSlash(rel))
		bundleRel := relSpecifier(stagedPath, depBundlePath)
		rewritten := rewrite.Rewrite(string(src), abs, rootDir, pm, bundleRel)

		if err := fsys.MkdirAll(filepath.Dir(stagedPath), 0o755); err != nil {
			return "", ioFail(stagedPath, err)
		}
		if err := fsys.WriteFile(stagedPath, []byte(rewritten), 0o644); err != nil {
			return "", ioFail(stagedPath, err)
		}
		staged[i] = stagedPath
	}

	if len(staged) == 1 {
		return staged[0], nil
	}
	return writeAggregatorEntry(fsys, entriesDir, staged)
}

// stagePassthroughEntries returns the bundler entry when dependencies are
// not included: the single selected file itself, or, for several selected
// files, a synthesized aggregator in stagingRoot/rewritten that imports the
// originals in place. No selected file is copied.
func stagePassthroughEntries(fsys platform.FileSystem, rootDir, stagingRoot string, selected []string) (string, error) {
	if len(selected) == 1 {
		return filepath.Join(rootDir, filepath.FromSlash(selected[0])), nil
	}
	entriesDir := filepath.Join(stagingRoot, "rewritten")
	abs := make([]string, len(selected))
	for i, rel := range selected {
		abs[i] = filepath.Join(rootDir, filepath.FromSlash(rel))
	}
	return writeAggregatorEntry(fsys, entriesDir, abs)
}

// writeAggregatorEntry synthesizes __juiced-entry__.mjs (§4.10 step 6's
// multi-selection case): one re-export per selected file, referenced by
// absolute path so the aggregator's own location never matters.
func writeAggregatorEntry(fsys platform.FileSystem, dir string, targets []string) (string, error) {
	var b strings.Builder
	for i, t := range targets {
		fmt.Fprintf(&b, "export * as entry_%d from %q;\n", i+1, filepath.ToSlash(t))
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", ioFail(dir, err)
	}
	path := filepath.Join(dir, "__juiced-entry__.mjs")
	if err := fsys.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", ioFail(path, err)
	}
	return path, nil
}

// standinSet tracks the temporary entry-file copies staged inside
// payload/juice so they can be deleted before the payload is finalized.
type standinSet struct {
	entryFile string
	paths     []string
}

// stageStandins copies each selected file, unchanged, into juiceDir at its
// own rootDir-relative position. This is a deliberate staging trick: it
// places the bundler's entry file inside the very directory that will hold
// the individually-copied dependency files, at the same relative offsets
// rootDir itself uses, so that when those dependency files are marked
// external by their juiceDir path, esbuild's own relative-import resolution
// (computed from the entry file's directory) lands on exactly that path —
// the same mechanism pulp.mjs's external marking relies on, generalized to
// more than one external target. The standin files are removed once the
// bundle is built; only genuine dependency copies remain in juice/.
func stageStandins(fsys platform.FileSystem, rootDir, juiceDir string, selected []string) (*standinSet, error) {
	ss := &standinSet{}
	staged := make([]string, len(selected))

	for i, rel := range selected {
		abs := filepath.Join(rootDir, filepath.FromSlash(rel))
		data, err := fsys.ReadFile(abs)
		if err != nil {
			return nil, ioFail(abs, err)
		}
		standinPath := filepath.Join(juiceDir, filepath.FromSlash(rel))
		if err := fsys.MkdirAll(filepath.Dir(standinPath), 0o755); err != nil {
			return nil, ioFail(standinPath, err)
		}
		if err := fsys.WriteFile(standinPath, data, 0o644); err != nil {
			return nil, ioFail(standinPath, err)
		}
		staged[i] = standinPath
		ss.paths = append(ss.paths, standinPath)
	}

	if len(staged) == 1 {
		ss.entryFile = staged[0]
		return ss, nil
	}
	entryFile, err := writeAggregatorEntry(fsys, juiceDir, staged)
	if err != nil {
		return nil, err
	}
	ss.entryFile = entryFile
	ss.paths = append(ss.paths, entryFile)
	return ss, nil
}

func removeStandins(fsys platform.FileSystem, ss *standinSet) {
	for _, p := range ss.paths {
		fsys.Remove(p)
	}
}

// copyOrTransform materializes dest from src, byte-exact, unless minify is
// requested and src is a code file, in which case it passes through
// bundle.TransformFile's single-file minify transform (§4.10 step 7) — any
// transform failure propagates rather than silently falling back to a copy.
func copyOrTransform(fsys platform.FileSystem, src, dest string, minify bool) error {
	if err := fsys.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return ioFail(dest, err)
	}

	raw, err := fsys.ReadFile(src)
	if err != nil {
		return ioFail(src, err)
	}

	if minify && workspace.IsCodeFile(src) {
		transformed, err := bundle.TransformFile(raw, src, true)
		if err != nil {
			return err
		}
		raw = transformed
	}

	if err := fsys.WriteFile(dest, raw, 0o644); err != nil {
		return ioFail(dest, err)
	}
	return nil
}

// relSpecifier computes the forward-slash specifier, always prefixed with
// "./" or "../", that points from fromFile's own directory at toFile.
func relSpecifier(fromFile, toFile string) string {
	rel, err := filepath.Rel(filepath.Dir(fromFile), toFile)
	if err != nil {
		rel = toFile
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "./") && !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// walkPayloadFiles lists every regular file under payloadDir, sorted
// ascending by its payloadDir-relative, forward-slash path — the order
// manifest.outputFiles and the produced ZIP both use (§5's reproducibility
// guarantee).
func walkPayloadFiles(fsys platform.FileSystem, payloadDir string) ([]OutputFile, error) {
	var files []OutputFile
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := fsys.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, d := range entries {
			path := filepath.Join(dir, d.Name())
			if d.IsDir() {
				if err := walk(path); err != nil {
					return err
				}
				continue
			}
			rel, err := workspace.ToRelative(payloadDir, path)
			if err != nil {
				return err
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			files = append(files, OutputFile{Path: rel, Bytes: info.Size()})
		}
		return nil
	}
	if err := walk(payloadDir); err != nil {
		return nil, ioFail(payloadDir, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// writeZip zips the listed payloadDir-relative files, in the given order,
// into outPath, and returns the resulting archive's byte size.
func writeZip(fsys platform.FileSystem, payloadDir string, files []OutputFile, outPath string) (int64, error) {
	if err := fsys.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, ioFail(outPath, err)
	}
	// archive/zip.Writer needs a real io.Writer; os.Create is kept here
	// even though entry contents are read through fsys below.
	out, err := os.Create(outPath)
	if err != nil {
		return 0, ioFail(outPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, f := range files {
		src := filepath.Join(payloadDir, filepath.FromSlash(f.Path))
		data, err := fsys.ReadFile(src)
		if err != nil {
			zw.Close()
			return 0, ioFail(src, err)
		}
		w, err := zw.Create(f.Path)
		if err != nil {
			zw.Close()
			return 0, fmt.Errorf("create zip entry %s: %w", f.Path, err)
		}
		if _, err := w.Write(data); err != nil {
			zw.Close()
			return 0, fmt.Errorf("write zip entry %s: %w", f.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("close zip: %w", err)
	}

	info, err := fsys.Stat(outPath)
	if err != nil {
		return 0, ioFail(outPath, err)
	}
	return info.Size(), nil
}

// buildBundledDependencyEntry assembles the §6 "bundledDependencies" single
// entry from C8's DependencyBundle plus the aggregator's per-file registry
// and C6's skip list.
func buildBundledDependencyEntry(rootDir string, db *bundle.DependencyBundle, registry []modulegraph.FileImports, skipped []modulegraph.SkippedNamedImport) BundledDependencyEntry {
	pm := db.Usage

	imports := make([]UsageEntry, 0, len(pm.Order))
	methodOwners := make([]MethodOwner, 0)
	for _, target := range pm.Order {
		pt := pm.ByTarget[target]
		rel, err := workspace.ToRelative(rootDir, target)
		if err != nil {
			rel = filepath.ToSlash(target)
		}
		imports = append(imports, UsageEntry{
			Source: rel,
			Imports: UsageFlags{
				Default:        pt.NeedsDefault,
				Namespace:      pt.NeedsNamespace,
				SideEffectOnly: pt.SideEffectOnly,
				Named:          append([]string(nil), pt.Named...),
			},
		})
		for _, symbol := range pt.Named {
			methodOwners = append(methodOwners, MethodOwner{Symbol: symbol, Source: rel})
		}
	}
	sort.Slice(imports, func(i, j int) bool { return imports[i].Source < imports[j].Source })
	sort.Slice(methodOwners, func(i, j int) bool {
		if methodOwners[i].Symbol != methodOwners[j].Symbol {
			return methodOwners[i].Symbol < methodOwners[j].Symbol
		}
		return methodOwners[i].Source < methodOwners[j].Source
	})

	files := make([]FileImportEntry, 0, len(registry))
	for _, fi := range registry {
		records := make([]FileImportRecord, 0, len(fi.Records))
		for _, ri := range fi.Records {
			rel, err := workspace.ToRelative(rootDir, ri.Target)
			if err != nil {
				rel = filepath.ToSlash(ri.Target)
			}
			records = append(records, FileImportRecord{
				Source:         rel,
				Default:        ri.Record.DefaultImport != "",
				Namespace:      ri.Record.NamespaceImport != "",
				SideEffectOnly: ri.Record.SideEffectOnly,
				Named:          append([]string(nil), ri.Record.NamedImports...),
			})
		}
		files = append(files, FileImportEntry{File: fi.File, Imports: records})
	}

	skippedOut := make([]SkippedDuplicateNamedImport, 0, len(skipped))
	for _, s := range skipped {
		skippedRel, err := workspace.ToRelative(rootDir, s.SkippedSource)
		if err != nil {
			skippedRel = filepath.ToSlash(s.SkippedSource)
		}
		keptRel, err := workspace.ToRelative(rootDir, s.KeptSource)
		if err != nil {
			keptRel = filepath.ToSlash(s.KeptSource)
		}
		skippedOut = append(skippedOut, SkippedDuplicateNamedImport{
			Symbol:        s.Symbol,
			SkippedSource: skippedRel,
			KeptSource:    keptRel,
		})
	}

	return BundledDependencyEntry{
		Kind:    "dependency-bundle",
		Output:  "pulp.mjs",
		Sources: db.Sources,
		Imports: imports,
		ImportRegistry: ImportRegistry{
			Files:        files,
			MethodOwners: methodOwners,
		},
		SkippedDuplicateNamedImports: skippedOut,
	}
}
