package rules

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ifc-cost/internal/errors"
)

// ErrSourceUnavailable is returned by a Source when a table cannot be read.
// The loader substitutes the built-in default for that table.
var ErrSourceUnavailable = stderrors.New("rule source unavailable")

// Source provides raw rule tables as JSON documents
type Source interface {
	// Name identifies the source in logs
	Name() string

	// Table returns the JSON encoding of the named table.
	// Missing or unreadable data is reported as ErrSourceUnavailable.
	Table(ctx context.Context, table string) ([]byte, error)
}

// NewSource picks the configured source: an HCL bundle when hclFile is set,
// else a rules directory, else no source at all (every table defaults)
func NewSource(dir, hclFile string) Source {
	switch {
	case hclFile != "":
		return NewHCLSource(hclFile)
	case dir != "":
		return NewDirSource(dir)
	}
	return StaticSource{}
}

// tableExtensions are tried in order for each table
var tableExtensions = []string{".json", ".yaml", ".yml"}

// DirSource reads <dir>/<table>.json, .yaml or .yml
type DirSource struct {
	dir string
}

// NewDirSource creates a directory-backed source
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Name returns the source name
func (s *DirSource) Name() string {
	return "dir:" + s.dir
}

// Dir returns the rules directory
func (s *DirSource) Dir() string {
	return s.dir
}

// Table reads and normalizes one table file
func (s *DirSource) Table(ctx context.Context, table string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.dir == "" {
		return nil, ErrSourceUnavailable
	}

	for _, ext := range tableExtensions {
		path := filepath.Join(s.dir, table+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
		}
		if ext == ".json" {
			return data, nil
		}
		out, err := yamlToJSON(data)
		if err != nil {
			return nil, errors.RuleDataMalformed(table, fmt.Errorf("%s: %w", path, err))
		}
		return out, nil
	}

	return nil, ErrSourceUnavailable
}

// yamlToJSON re-encodes a YAML document so a single JSON path handles validation and decoding
func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// StaticSource serves tables from memory
type StaticSource map[string][]byte

// Name returns the source name
func (s StaticSource) Name() string {
	return "static"
}

// Table returns a table or ErrSourceUnavailable
func (s StaticSource) Table(ctx context.Context, table string) ([]byte, error) {
	data, ok := s[table]
	if !ok {
		return nil, ErrSourceUnavailable
	}
	return data, nil
}
