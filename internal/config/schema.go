package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// configSchema constrains config files before unmarshalling so typos like
// a string worker count fail with a schema error instead of a zero value.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "ks-dep-fetcher configuration",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "ks": { "type": "string" },
    "repos": {
      "type": "array",
      "items": { "type": "string" }
    },
    "arch": { "type": "string" },
    "out": { "type": "string" },
    "format": { "enum": ["plain", "json", "yaml", "markdown"] },
    "show_groups": { "type": "boolean" },
    "mode": { "enum": ["base", "debug", "both"] },
    "derive_pairs": { "type": "boolean" },
    "with_debugsource": { "type": "boolean" },
    "include_noarch": { "type": "boolean" },
    "parallel": { "type": "integer", "minimum": 1 },
    "timeout": { "type": "number", "exclusiveMinimum": 0 },
    "retries": { "type": "integer", "minimum": 0 },
    "csv_out": { "type": "string" }
  }
}`

// ValidateConfigJSON checks a JSON document against the config schema.
func ValidateConfigJSON(data []byte) error {
	schema, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
