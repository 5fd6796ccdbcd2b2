package cubeql

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// schemaFile is the on-disk layout of a schema document.
type schemaFile struct {
	Cubes []CubeDefinition `yaml:"cubes"`
}

// LoadSchema parses a YAML schema document and resolves it.
// Unknown keys are rejected.
//
//	cubes:
//	  - name: orders
//	    sql_table: public.orders
//	    dimensions:
//	      - name: status
//	        type: string
//	    measures:
//	      - name: count
//	        type: count
func LoadSchema(data []byte) (*Schema, error) {
	var file schemaFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse schema: empty document")
		}
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if len(file.Cubes) == 0 {
		return nil, fmt.Errorf("parse schema: no cubes defined")
	}
	return NewSchema(file.Cubes...)
}

// LoadSchemaFile reads and parses a YAML schema file.
func LoadSchemaFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	schema, err := LoadSchema(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return schema, nil
}
