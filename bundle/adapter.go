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

// Package bundle is the opaque ES-module bundler contract of §4.7 and the
// dependency-bundle synthesis of §4.8, both backed by esbuild.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Options configures a single bundler invocation (§4.7): one entry file in,
// one ES-module file out, with a fixed output configuration (ES-module
// format, neutral platform, tree-shaking on, no sourcemaps) layered with
// the caller's externals and minify flag.
type Options struct {
	EntryFile string
	OutFile   string
	WorkDir   string
	External  []string
	Minify    bool
}

// FailureError is the engine's BundlerFailure (§7): any bundler error is
// fatal and carries enough context (entry file, working directory, and a
// bounded diagnostic) for a caller to decide how to report it.
type FailureError struct {
	EntryFile  string
	WorkDir    string
	Diagnostic string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("bundler failed for %s (in %s): %s", e.EntryFile, e.WorkDir, e.Diagnostic)
}

// Build invokes esbuild's bundling API against opts.EntryFile, writing the
// single resulting ES module to opts.OutFile.
func Build(opts Options) error {
	result := api.Build(api.BuildOptions{
		EntryPoints:      []string{opts.EntryFile},
		Bundle:           true,
		Format:           api.FormatESModule,
		Platform:         api.PlatformNeutral,
		TreeShaking:      api.TreeShakingTrue,
		AbsWorkingDir:    opts.WorkDir,
		External:         opts.External,
		Write:            false,
		Sourcemap:        api.SourceMapNone,
		LegalComments:    legalComments(opts.Minify),
		MinifyWhitespace: opts.Minify,
		MinifyIdentifiers: opts.Minify,
		MinifySyntax:     opts.Minify,
	})

	if len(result.Errors) > 0 {
		return &FailureError{
			EntryFile:  opts.EntryFile,
			WorkDir:    opts.WorkDir,
			Diagnostic: formatMessages(result.Errors),
		}
	}
	if len(result.OutputFiles) == 0 {
		return &FailureError{EntryFile: opts.EntryFile, WorkDir: opts.WorkDir, Diagnostic: "bundler produced no output files"}
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutFile), 0o755); err != nil {
		return fmt.Errorf("create bundle output dir: %w", err)
	}
	return os.WriteFile(opts.OutFile, result.OutputFiles[0].Contents, 0o644)
}

// TransformFile runs esbuild's single-file transform (§4.10 step 7) used
// for minifying an individually-copied dependency when it is not being
// rolled into the dependency bundle.
func TransformFile(source []byte, path string, minify bool) ([]byte, error) {
	result := api.Transform(string(source), api.TransformOptions{
		Loader:           loaderForPath(path),
		Format:           api.FormatESModule,
		Sourcemap:        api.SourceMapNone,
		LegalComments:    legalComments(minify),
		MinifyWhitespace: minify,
		MinifyIdentifiers: minify,
		MinifySyntax:     minify,
	})
	if len(result.Errors) > 0 {
		return nil, &FailureError{EntryFile: path, Diagnostic: formatMessages(result.Errors)}
	}
	return result.Code, nil
}

func legalComments(minify bool) api.LegalComments {
	if minify {
		return api.LegalCommentsNone
	}
	return api.LegalCommentsDefault
}

func loaderForPath(path string) api.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".json":
		return api.LoaderJSON
	default:
		return api.LoaderJS
	}
}

// formatMessages renders esbuild diagnostics as a bounded preview for
// FailureError: the text of the first 50 messages, each followed by a
// newline, then one "... and N more" line when there are more.
func formatMessages(msgs []api.Message) string {
	var b strings.Builder
	const maxLines = 50
	for i, m := range msgs {
		if i >= maxLines {
			fmt.Fprintf(&b, "... and %d more\n", len(msgs)-maxLines)
			break
		}
		b.WriteString(m.Text)
		b.WriteString("\n")
	}
	return b.String()
}
