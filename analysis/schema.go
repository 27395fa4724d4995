package analysis

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const resultSchema = `{
  "type": "object",
  "required": ["skill_match", "fit_evaluation", "missing_competencies", "overall_score"],
  "properties": {
    "skill_match": {"type": "string"},
    "fit_evaluation": {"type": "string"},
    "missing_competencies": {"type": "array", "items": {"type": "string"}},
    "overall_score": {"type": "integer", "minimum": 0, "maximum": 100},
    "recommended_programs": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["program_name", "recommendation_reason"],
        "properties": {
          "program_name": {"type": "string"},
          "recommendation_reason": {"type": "string"}
        }
      }
    }
  }
}`

var resultSchemaLoader = gojsonschema.NewStringLoader(resultSchema)

// FieldError is one schema violation.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every way the model output deviates from the result schema.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "analysis output does not match schema: " + strings.Join(parts, "; ")
}

func validateResult(raw string) error {
	result, err := gojsonschema.Validate(resultSchemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("could not validate analysis output: %w", err)
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return validationErr
}
