// defschema writes a JSON schema for the effect definitions file, so
// editors can validate designer entries as they are typed.
//
// Usage:
//
//	go run ./cmd/defschema                          # docs/effects.schema.json
//	go run ./cmd/defschema tools/defs.schema.json
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/udisondev/alchemy/catalog"
)

const defaultPath = "docs/effects.schema.json"

func main() {
	path := defaultPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	if err := emit(path); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("schema written: %s\n", path)
}

// emit reflects the definitions file format and writes the schema via a
// sibling temp file, so a crash never leaves a half-written schema behind.
func emit(path string) error {
	r := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(new(catalog.File))
	schema.Title = "Alchemy Effect Definitions"
	schema.Description = "Schema for the effect definitions consumed by catalog.LoadFile"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("preparing %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}
