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
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var embeddedSchemas embed.FS

// validateManifest compiles the embedded manifest schema and validates m
// against it before it is written to disk. A schema violation here means
// this package produced a manifest that does not match §6's bit-exact
// shape — a bug in the orchestrator, not a caller error.
func validateManifest(m *Manifest) error {
	const manifestPath = "extract-manifest.json"

	schemaData, err := embeddedSchemas.ReadFile("schemas/extract-manifest.schema.json")
	if err != nil {
		return ioFail(manifestPath, fmt.Errorf("read embedded manifest schema: %w", err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extract-manifest.schema.json", bytes.NewReader(schemaData)); err != nil {
		return ioFail(manifestPath, fmt.Errorf("add schema resource: %w", err))
	}
	schema, err := compiler.Compile("extract-manifest.schema.json")
	if err != nil {
		return ioFail(manifestPath, fmt.Errorf("compile manifest schema: %w", err))
	}

	encoded, err := json.Marshal(m)
	if err != nil {
		return ioFail(manifestPath, fmt.Errorf("marshal manifest for validation: %w", err))
	}
	var v any
	if err := json.Unmarshal(encoded, &v); err != nil {
		return ioFail(manifestPath, fmt.Errorf("unmarshal manifest for validation: %w", err))
	}

	if err := schema.Validate(v); err != nil {
		return ioFail(manifestPath, fmt.Errorf("manifest failed schema validation: %w", err))
	}
	return nil
}
