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

import "fmt"

// SelectionMissingError is §7's SelectionMissing: a caller-supplied path
// does not exist, or does not live under rootDir. Fatal, aborts before any
// staging directory is created.
type SelectionMissingError struct {
	Path string
}

func (e *SelectionMissingError) Error() string {
	return fmt.Sprintf("selected path does not exist under root: %s", e.Path)
}

// IOFailureError is §7's IOFailure: a filesystem error while reading,
// hashing, copying, or writing, carrying the offending path.
type IOFailureError struct {
	Path string
	Err  error
}

func (e *IOFailureError) Error() string {
	return fmt.Sprintf("io failure at %s: %v", e.Path, e.Err)
}

func (e *IOFailureError) Unwrap() error { return e.Err }

func ioFail(path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOFailureError{Path: path, Err: err}
}
