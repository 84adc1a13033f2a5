package rules

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemaMu sync.Mutex
	schemas  = make(map[string]*gojsonschema.Schema)
)

// schemaFor compiles and caches the embedded schema of a table
func schemaFor(table string) (*gojsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if s, ok := schemas[table]; ok {
		return s, nil
	}

	data, err := schemaFS.ReadFile("schemas/" + table + ".json")
	if err != nil {
		return nil, fmt.Errorf("no schema for table %q", table)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid schema for table %q: %w", table, err)
	}
	schemas[table] = s
	return s, nil
}

// ValidateTable checks a JSON document against the schema of its table
func ValidateTable(table string, data []byte) error {
	schema, err := schemaFor(table)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to validate %s: %w", table, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%s validation failed: %s", table, strings.Join(msgs, "; "))
	}
	return nil
}
