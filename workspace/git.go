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
package workspace

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// GitSnapshot is the read-only git metadata embedded in a manifest's "git"
// field. Every field is nil/false when rootDir is not a git checkout or the
// git binary is unavailable — inspection failures are never fatal to
// extraction, only degrade the manifest's provenance data.
type GitSnapshot struct {
	Head      *string `json:"head"`
	HeadShort *string `json:"headShort"`
	Branch    *string `json:"branch"`
	RemoteURL *string `json:"remoteUrl"`
	Dirty     bool    `json:"dirty"`
}

// InspectGit reads HEAD, short HEAD, branch name, origin remote URL, and
// dirty status for rootDir by shelling out to the git binary. This never
// clones, fetches, or mutates the checkout — strictly read-only inspection,
// per the engine's non-goal of owning git subprocess plumbing beyond
// snapshot metadata.
func InspectGit(ctx context.Context, rootDir string) GitSnapshot {
	snap := GitSnapshot{}

	if head, ok := runGit(ctx, rootDir, "rev-parse", "HEAD"); ok {
		snap.Head = &head
	}
	if short, ok := runGit(ctx, rootDir, "rev-parse", "--short", "HEAD"); ok {
		snap.HeadShort = &short
	}
	if branch, ok := runGit(ctx, rootDir, "rev-parse", "--abbrev-ref", "HEAD"); ok && branch != "HEAD" {
		snap.Branch = &branch
	}
	if remote, ok := runGit(ctx, rootDir, "remote", "get-url", "origin"); ok {
		snap.RemoteURL = &remote
	}
	if status, ok := runGit(ctx, rootDir, "status", "--porcelain"); ok {
		snap.Dirty = strings.TrimSpace(status) != ""
	}

	return snap
}

// runGit invokes git with args in dir, returning its trimmed stdout. ok is
// false on any execution failure (missing binary, not a repo, no remote,
// etc.) so callers can leave the corresponding manifest field nil.
func runGit(ctx context.Context, dir string, args ...string) (string, bool) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return "", false
	}
	return strings.TrimSpace(stdout.String()), true
}
