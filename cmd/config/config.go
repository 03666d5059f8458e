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
package config

import (
	"fmt"
	"strings"
)

// ExtractConfig holds the CLI-or-config settings shared by the extract and
// replay commands.
type ExtractConfig struct {
	// List of entry files or file globs to select for bundling.
	Select []string `mapstructure:"select" yaml:"select"`
	// List of file globs removed from the selected entry files.
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
	// File path to write the produced ZIP to. If omitted, a name is
	// derived from the checkout root.
	Output string `mapstructure:"output" yaml:"output"`
	// Whether the selected files' transitive dependencies are included in
	// the archive at all.
	IncludeDependencies bool `mapstructure:"includeDependencies" yaml:"includeDependencies"`
	// Whether included dependencies are bundled into a single pulp.mjs
	// rather than copied individually.
	BundleDependencies bool `mapstructure:"bundleDependencies" yaml:"bundleDependencies"`
	// One of "none", "dependencies", "everything".
	MinimizeMode string `mapstructure:"minimizeMode" yaml:"minimizeMode"`
}

type SqueezeConfig struct {
	ProjectDir string `mapstructure:"projectDir" yaml:"projectDir"`
	ConfigFile string `mapstructure:"configFile" yaml:"configFile"`
	// Extract command options
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`
	// Verbose logging output
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
}

func (c *SqueezeConfig) Clone() *SqueezeConfig {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Extract.Select != nil {
		clone.Extract.Select = make([]string, len(c.Extract.Select))
		copy(clone.Extract.Select, c.Extract.Select)
	}
	if c.Extract.Exclude != nil {
		clone.Extract.Exclude = make([]string, len(c.Extract.Exclude))
		copy(clone.Extract.Exclude, c.Extract.Exclude)
	}
	return &clone
}

// Validate rejects an unrecognized MinimizeMode before the extraction
// pipeline stages any files.
func (c *SqueezeConfig) Validate() error {
	switch c.Extract.MinimizeMode {
	case "", "none", "dependencies", "everything":
		return nil
	default:
		return fmt.Errorf("invalid minimizeMode %q: must be one of none, dependencies, everything", c.Extract.MinimizeMode)
	}
}

// IsPackageSpecifier reports whether spec carries the "npm:" package prefix.
// A bare package name without that prefix is not recognized.
func IsPackageSpecifier(spec string) bool {
	return strings.HasPrefix(spec, "npm:")
}
