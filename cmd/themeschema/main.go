// Command themeschema emits the JSON schema for theme files so editors can
// validate designer-authored catalogs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/OCharnyshevich/dungeon-server/pkg/theme"
)

func main() {
	outPath := flag.String("out", "", "path to write the JSON schema")
	flag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "-out is required")
		os.Exit(1)
	}

	if err := writeSchema(*outPath, buildSchema()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	var reflector jsonschema.Reflector
	schema := reflector.Reflect(new(theme.Theme))
	schema.Title = "Dungeon Theme"
	schema.Description = "Validates designer-authored tile and prop catalogs in themes/*.yaml"
	return schema
}

// writeSchema replaces outPath atomically so a watching editor never
// observes a half-written schema.
func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp := outPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
