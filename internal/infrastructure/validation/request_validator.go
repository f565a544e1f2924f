// Package validation provides JSON Schema validation of request documents.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	apperrors "github.com/reglet-dev/qmcchain/internal/application/errors"
)

//go:embed request.schema.json
var requestSchema []byte

const requestSchemaURL = "request.schema.json"

// RequestValidator validates request documents against the embedded schema.
// The schema is compiled once on first use.
type RequestValidator struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// NewRequestValidator creates a new request validator.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{}
}

// Schema returns the raw request schema.
func Schema() []byte {
	return append([]byte(nil), requestSchema...)
}

func (v *RequestValidator) compile() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource(requestSchemaURL, bytes.NewReader(requestSchema)); err != nil {
			v.err = fmt.Errorf("failed to add request schema resource: %w", err)
			return
		}
		v.schema, v.err = compiler.Compile(requestSchemaURL)
		if v.err != nil {
			v.err = fmt.Errorf("failed to compile request schema: %w", v.err)
		}
	})
	return v.schema, v.err
}

// ValidateRequest validates doc. Schema failures are reported as an
// apperrors.ValidationError with one detail per violation.
func (v *RequestValidator) ValidateRequest(doc map[string]any) error {
	schema, err := v.compile()
	if err != nil {
		return apperrors.NewConfigurationError("schema", "request schema unavailable", err)
	}

	normalized, err := normalize(doc)
	if err != nil {
		return apperrors.NewValidationError("request", "request is not representable as JSON", err.Error())
	}

	if err := schema.Validate(normalized); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			return apperrors.NewValidationError("request", "schema validation failed", collectMessages(validationErr)...)
		}
		return apperrors.NewValidationError("request", "schema validation failed", err.Error())
	}
	return nil
}

// normalize round-trips doc through JSON so decoder-specific number types
// (uint64, int) become the float64 values the validator understands.
func normalize(doc map[string]any) (any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// collectMessages flattens a JSON Schema validation error into readable messages.
func collectMessages(err *jsonschema.ValidationError) []string {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		// Leaf errors carry the actual violation; parents only summarize.
		if e.Message != "" && len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		messages = append(messages, err.Error())
	}
	return messages
}
