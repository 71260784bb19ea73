package relaybridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// configSchemaJSON is the structural shape of a config file: required
// fields, types, and basic numeric ranges. Semantic checks that a schema
// cannot express (name uniqueness, cross-field constraints) live in
// ValidateConfig.
const configSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["gateway", "providers"],
  "properties": {
    "gateway": {
      "type": "object",
      "required": ["circuit_breaker"],
      "properties": {
        "access_token": {"type": "string"},
        "timeout": {"type": "number", "minimum": 0},
        "circuit_breaker": {
          "type": "object",
          "properties": {
            "failure_threshold": {"type": "integer", "minimum": 1},
            "reset_timeout": {"type": "number", "exclusiveMinimum": 0},
            "probe_probability": {"type": "number", "minimum": 0, "maximum": 1}
          }
        },
        "request_log": {
          "type": "object",
          "properties": {
            "driver": {"type": "string", "enum": ["sqlite", "postgres", "none"]},
            "dsn": {"type": "string"}
          }
        }
      }
    },
    "providers": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "base_url"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "base_url": {"type": "string", "minLength": 1},
          "token": {"type": "string"},
          "model_override": {"type": "string"},
          "credential_mode": {"type": "string", "enum": ["static", "oauth2", "aws_sigv4"]}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("config.schema.json", strings.NewReader(configSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add config schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("config.schema.json")
	})
	return schema, schemaErr
}

// validateSchema checks a marshaled Config against the structural schema
// above. Numbers are decoded with UseNumber so integer/float constraints
// like "minimum" evaluate against the original numeric literal.
func validateSchema(configJSON []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(configJSON))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode config for schema validation: %w", err)
	}

	return s.Validate(v)
}
