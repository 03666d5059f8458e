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

// Package version exposes build-time version metadata, populated via
// -ldflags at release build time and falling back to Go's embedded build
// info for `go install`/`go run` builds.
package version

import "runtime/debug"

// Populated via -ldflags "-X github.com/squeezejs/squeeze/internal/version.version=..."
var version = "dev"

// BuildInfo is the JSON-friendly shape printed by `squeeze version -o json`.
type BuildInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	Revision  string `json:"revision,omitempty"`
	Modified  bool   `json:"modified"`
}

// GetVersion returns the release version string, or "dev" when built without
// ldflags (e.g. `go run .`).
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

// GetBuildInfo assembles version metadata from the Go runtime's embedded
// build info (VCS revision, dirty flag) alongside the release version.
func GetBuildInfo() BuildInfo {
	bi := BuildInfo{
		Version:   GetVersion(),
		GoVersion: runtimeVersion(),
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return bi
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			bi.Revision = setting.Value
		case "vcs.modified":
			bi.Modified = setting.Value == "true"
		}
	}
	return bi
}

func runtimeVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return info.GoVersion
}
