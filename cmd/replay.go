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

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/squeezejs/squeeze/extract"
)

var replayCmd = &cobra.Command{
	Use:   "replay <manifest>",
	Short: "Re-run a prior extraction against the current checkout",
	Long: `Replay reads a previously written extract-manifest.json, recovers
the files it selected and the flags it was produced with, and re-runs the
extraction pipeline against an (optionally updated) checkout.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().String("output", "", "ZIP output path (default: derived from the project directory name)")
	viper.BindPFlag("extract.output", replayCmd.Flags().Lookup("output"))
}

func runReplay(cmd *cobra.Command, args []string) error {
	rootDir := viper.GetString("projectDir")
	if rootDir == "" {
		rootDir = "."
	}

	outputPath := viper.GetString("extract.output")
	if outputPath == "" {
		outputPath = defaultOutputPath(rootDir)
	}

	result, err := extract.Replay(context.Background(), extract.ReplayOptions{
		ManifestPath: args[0],
		RootDir:      rootDir,
		OutputPath:   outputPath,
	})
	if err != nil {
		return fmt.Errorf("replay %s: %w", args[0], err)
	}

	pterm.Success.Printf("Replayed %s -> %s (%d bytes)\n", args[0], result.OutputPath, result.ZipBytes)
	return nil
}
