package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is the JSON Schema every persisted report satisfies.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["url", "total_requests", "concurrency", "successful", "failed", "latency", "requests_per_sec", "total_duration_ms"],
  "properties": {
    "url": {"type": "string", "minLength": 1},
    "run_id": {"type": "string"},
    "date": {"type": "string"},
    "total_requests": {"type": "integer", "minimum": 0},
    "concurrency": {"type": "integer", "minimum": 1},
    "successful": {"type": "integer", "minimum": 0},
    "failed": {"type": "integer", "minimum": 0},
    "latency": {
      "type": "object",
      "required": ["avg_ms", "min_ms", "max_ms", "p50_ms", "p95_ms", "p99_ms"],
      "properties": {
        "avg_ms": {"type": "number", "minimum": 0},
        "min_ms": {"type": "number", "minimum": 0},
        "max_ms": {"type": "number", "minimum": 0},
        "p50_ms": {"type": "number", "minimum": 0},
        "p95_ms": {"type": "number", "minimum": 0},
        "p99_ms": {"type": "number", "minimum": 0}
      }
    },
    "requests_per_sec": {"type": "number", "minimum": 0},
    "total_duration_ms": {"type": "number", "minimum": 0},
    "partial": {"type": "boolean"},
    "status_codes": {"type": "object", "additionalProperties": {"type": "integer"}},
    "errors": {"type": "object", "additionalProperties": {"type": "integer"}}
  }
}`

var (
	compiled   *jsonschema.Schema
	compileErr error
	compileMu  sync.Once
)

func reportSchema() (*jsonschema.Schema, error) {
	compileMu.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("report.json", strings.NewReader(Schema)); err != nil {
			compileErr = fmt.Errorf("invalid report schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("report.json")
	})
	return compiled, compileErr
}

// Validate checks serialized report data against Schema.
func Validate(data []byte) error {
	schema, err := reportSchema()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("report does not match schema: %w", err)
	}
	return nil
}
