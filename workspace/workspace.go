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

// Package workspace resolves a checkout root, reads its read-only git
// snapshot, expands entry-file selections, and provides the path/FS
// primitives the rest of the engine walks over.
package workspace

import "errors"

// ErrSelectionMissing is returned when a caller-supplied path does not exist
// or does not live under the checkout root.
var ErrSelectionMissing = errors.New("selected path does not exist under root")

// ErrOutsideRoot is returned when a resolved or supplied path escapes the
// checkout root.
var ErrOutsideRoot = errors.New("path is outside checkout root")
