// Package validation checks job variables and request bodies against JSON Schema.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON Schema document.
type Schema struct {
	schema *gojsonschema.Schema
}

func Compile(src string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// MustCompile panics on an invalid schema. Use it for package-level schemas.
func MustCompile(src string) *Schema {
	s, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return s
}

// FieldError is one schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error lists every violation found in a document.
type Error struct {
	Errors []FieldError `json:"errors"`
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidateBytes validates a raw JSON document.
func (s *Schema) ValidateBytes(doc []byte) error {
	return s.validate(gojsonschema.NewBytesLoader(doc))
}

// Validate validates a Go value as if it were marshalled to JSON.
func (s *Schema) Validate(doc interface{}) error {
	return s.validate(gojsonschema.NewGoLoader(doc))
}

func (s *Schema) validate(loader gojsonschema.JSONLoader) error {
	result, err := s.schema.Validate(loader)
	if err != nil {
		return &Error{Errors: []FieldError{{Field: "(root)", Message: err.Error(), Code: "invalid_json"}}}
	}
	if result.Valid() {
		return nil
	}

	out := &Error{}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return out
}
