// Package schemas validates rule files and reports against the embedded JSON Schemas.
package schemas

import (
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	embedded "github.com/jonathan/appdata-validator/schemas"
)

// Embedded schema names, re-exported for callers.
const (
	RulesSchema  = embedded.RulesSchema
	ReportSchema = embedded.ReportSchema
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateBytes validates a JSON document against the embedded schema called schemaName.
func ValidateBytes(schemaName string, doc []byte) error {
	schema, err := embedded.Read(schemaName)
	if err != nil {
		return &SchemaLoadError{
			Path:    schemaName,
			Message: "schema not embedded",
			Cause:   err,
		}
	}
	return validate(schemaName, gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(doc))
}

// ValidateFile validates the JSON file at path against an embedded schema.
func ValidateFile(schemaName, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ValidateBytes(schemaName, data)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	return validate("(string schema)",
		gojsonschema.NewStringLoader(schemaContent),
		gojsonschema.NewStringLoader(jsonContent))
}

func validate(schemaPath string, schemaLoader, documentLoader gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    schemaPath,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
