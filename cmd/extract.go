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
package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/gosimple/slug"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/squeezejs/squeeze/cmd/config"
	"github.com/squeezejs/squeeze/extract"
	"github.com/squeezejs/squeeze/workspace"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract selected files and their dependencies into a ZIP archive",
	Long: `Extract bundles the selected entry files (and, depending on
configuration, their transitive dependencies) into a single ZIP archive
alongside a manifest describing exactly how it was produced.`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringSlice("select", nil, "entry files or globs to select for bundling")
	extractCmd.Flags().StringSlice("exclude", nil, "file globs to exclude")
	extractCmd.Flags().String("output", "", "ZIP output path (default: derived from the project directory name)")
	extractCmd.Flags().Bool("include-dependencies", true, "include transitive dependencies in the archive")
	extractCmd.Flags().Bool("bundle-dependencies", false, "bundle dependencies into pulp.mjs instead of copying them individually")
	extractCmd.Flags().String("minimize-mode", "none", "one of none, dependencies, everything")

	viper.BindPFlag("extract.select", extractCmd.Flags().Lookup("select"))
	viper.BindPFlag("extract.exclude", extractCmd.Flags().Lookup("exclude"))
	viper.BindPFlag("extract.output", extractCmd.Flags().Lookup("output"))
	viper.BindPFlag("extract.includeDependencies", extractCmd.Flags().Lookup("include-dependencies"))
	viper.BindPFlag("extract.bundleDependencies", extractCmd.Flags().Lookup("bundle-dependencies"))
	viper.BindPFlag("extract.minimizeMode", extractCmd.Flags().Lookup("minimize-mode"))
}

func runExtract(cmd *cobra.Command, args []string) error {
	var cfg config.SqueezeConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rootDir := cfg.ProjectDir
	if rootDir == "" {
		rootDir = "."
	}

	selected, err := workspace.ExpandSelection(rootDir, cfg.Extract.Select, cfg.Extract.Exclude)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return fmt.Errorf("no entry files matched --select")
	}
	pterm.Debug.Printf("Selected %d entry file(s)\n", len(selected))

	outputPath := cfg.Extract.Output
	if outputPath == "" {
		outputPath = defaultOutputPath(rootDir)
	}

	result, err := extract.Run(context.Background(), extract.Options{
		RootDir:             rootDir,
		SelectedRelPaths:    selected,
		OutputPath:          outputPath,
		IncludeDependencies: cfg.Extract.IncludeDependencies,
		BundleDependencies:  cfg.Extract.BundleDependencies,
		MinimizeMode:        cfg.Extract.MinimizeMode,
	})
	if err != nil {
		return err
	}

	pterm.Success.Printf("Wrote %s (%d bytes, %d source files hashed)\n", result.OutputPath, result.ZipBytes, result.Manifest.FileCount)
	return nil
}

// defaultOutputPath derives a ZIP file name from the checkout's own
// directory name when the user doesn't supply --output, and places it under
// the user's XDG cache directory rather than the current directory, mirroring
// how the teacher project caches generated package artifacts under
// xdg.CacheHome.
func defaultOutputPath(rootDir string) string {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		abs = rootDir
	}
	name := slug.Make(filepath.Base(abs))
	if name == "" {
		name = "squeeze-export"
	}
	cacheFile, err := xdg.CacheFile(filepath.Join("squeeze", "exports", name+".zip"))
	if err != nil {
		return name + ".zip"
	}
	return cacheFile
}
