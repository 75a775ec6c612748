// Package validation checks input at the record-authoring and request boundary.
//
// SYSTEM ARCHITECTURE ROLE:
// The text engine accepts any string, so nothing here is required for
// correctness. Validation keeps the library clean: record ids usable as file
// names, required fields present, and spintax mistakes surfaced as warnings
// before a record is stored.
//
// KEY RESPONSIBILITIES:
// - Schema-based validation with type conversion for CLI and HTTP parameters
// - Record validation with warnings for unbalanced braces and for masculine
//   and feminine variants that reference different placeholders
// - Conversion of failures into AppErrors
//
// INTEGRATION POINTS:
// - internal/service/service.go: AddRecord and UpdateRecord call ValidateRecord
// - internal/validation/middleware.go: HTTP middleware validates API requests
// - internal/cli/cli.go: compile and set arguments are checked against schemas
// - internal/errors/errors.go: ValidationResult.ToAppError() converts failures
//
// SCHEMA SYSTEM:
// - Field validators: type, length, pattern, options and custom functions
// - Schema rules: cross-field checks over the complete parameter map
// - Built-in schemas: record, spin, compile, set_variable, search, suggest
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dpshade/quick-hb/internal/errors"
	"github.com/dpshade/quick-hb/internal/models"
	"github.com/dpshade/quick-hb/internal/spintax"
	"github.com/dpshade/quick-hb/internal/variables"
)

// FieldValidator provides validation rules for individual fields
type FieldValidator struct {
	Name      string
	Required  bool
	Type      string
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Options   []string
	Custom    func(interface{}) error
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid    bool                      `json:"valid"`
	Errors   []ValidationError         `json:"errors,omitempty"`
	Warnings []ValidationWarning       `json:"warnings,omitempty"`
	Data     map[string]interface{}    `json:"data,omitempty"`
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationWarning represents a field validation warning
type ValidationWarning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Schema represents a validation schema
type Schema struct {
	Name      string
	Fields    map[string]FieldValidator
	Rules     []func(map[string]interface{}) error
}

// Validator provides centralized validation functionality
type Validator struct {
	schemas map[string]*Schema
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := &Validator{
		schemas: make(map[string]*Schema),
	}
	
	// Register built-in schemas
	v.registerBuiltinSchemas()
	
	return v
}

// RegisterSchema registers a validation schema
func (v *Validator) RegisterSchema(schema *Schema) {
	v.schemas[schema.Name] = schema
}

// Validate validates data against a schema
func (v *Validator) Validate(schemaName string, data map[string]interface{}) *ValidationResult {
	schema, exists := v.schemas[schemaName]
	if !exists {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "schema",
				Code:    "SCHEMA_NOT_FOUND",
				Message: fmt.Sprintf("Validation schema '%s' not found", schemaName),
			}},
		}
	}

	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
		Data:     make(map[string]interface{}),
	}

	// Validate individual fields in a stable order
	fieldNames := make([]string, 0, len(schema.Fields))
	for fieldName := range schema.Fields {
		fieldNames = append(fieldNames, fieldName)
	}
	sort.Strings(fieldNames)
	for _, fieldName := range fieldNames {
		v.validateField(fieldName, schema.Fields[fieldName], data, result)
	}

	// Apply schema-level rules
	for _, rule := range schema.Rules {
		if err := rule(data); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   "schema",
				Code:    "SCHEMA_RULE_VIOLATION",
				Message: err.Error(),
			})
		}
	}

	return result
}

// validateField validates a single field
func (v *Validator) validateField(fieldName string, validator FieldValidator, data map[string]interface{}, result *ValidationResult) {
	value, exists := data[fieldName]

	// Check required fields
	if validator.Required && (!exists || value == nil || value == "") {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldName,
			Code:    "REQUIRED_FIELD_MISSING",
			Message: fmt.Sprintf("Field '%s' is required", fieldName),
		})
		return
	}

	// Skip validation if field is not present and not required
	if !exists || value == nil {
		return
	}

	// Type validation and conversion
	convertedValue, err := v.validateAndConvertType(fieldName, validator.Type, value)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldName,
			Code:    "INVALID_TYPE",
			Message: err.Error(),
			Value:   value,
		})
		return
	}

	// Store converted value
	result.Data[fieldName] = convertedValue

	// Validate string-specific rules
	if validator.Type == "string" {
		strValue, ok := convertedValue.(string)
		if ok {
			length := len([]rune(strValue))
			if validator.MinLength > 0 && length < validator.MinLength {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   fieldName,
					Code:    "MIN_LENGTH_VIOLATION",
					Message: fmt.Sprintf("Field '%s' must be at least %d characters long", fieldName, validator.MinLength),
					Value:   strValue,
				})
			}

			if validator.MaxLength > 0 && length > validator.MaxLength {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   fieldName,
					Code:    "MAX_LENGTH_VIOLATION",
					Message: fmt.Sprintf("Field '%s' must be at most %d characters long", fieldName, validator.MaxLength),
					Value:   strValue,
				})
			}

			if validator.Pattern != nil && !validator.Pattern.MatchString(strValue) {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   fieldName,
					Code:    "PATTERN_MISMATCH",
					Message: fmt.Sprintf("Field '%s' does not match required pattern", fieldName),
					Value:   strValue,
				})
			}

			if len(validator.Options) > 0 {
				validOption := false
				for _, option := range validator.Options {
					if strValue == option {
						validOption = true
						break
					}
				}
				if !validOption {
					result.Valid = false
					result.Errors = append(result.Errors, ValidationError{
						Field:   fieldName,
						Code:    "INVALID_OPTION",
						Message: fmt.Sprintf("Field '%s' must be one of: %s", fieldName, strings.Join(validator.Options, ", ")),
						Value:   strValue,
					})
				}
			}
		}
	}

	// Custom validation
	if validator.Custom != nil {
		if err := validator.Custom(convertedValue); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   fieldName,
				Code:    "CUSTOM_VALIDATION_FAILED",
				Message: fmt.Sprintf("Field '%s': %s", fieldName, err.Error()),
				Value:   convertedValue,
			})
		}
	}
}

// validateAndConvertType validates and converts value to the specified type
func (v *Validator) validateAndConvertType(fieldName, expectedType string, value interface{}) (interface{}, error) {
	switch expectedType {
	case "string":
		if str, ok := value.(string); ok {
			return str, nil
		}
		return fmt.Sprintf("%v", value), nil

	case "int":
		switch val := value.(type) {
		case int:
			return val, nil
		case float64:
			return int(val), nil
		case string:
			if intVal, err := strconv.Atoi(val); err == nil {
				return intVal, nil
			}
		}
		return nil, fmt.Errorf("field '%s' must be an integer", fieldName)

	case "bool":
		switch val := value.(type) {
		case bool:
			return val, nil
		case string:
			if boolVal, err := strconv.ParseBool(val); err == nil {
				return boolVal, nil
			}
		}
		return nil, fmt.Errorf("field '%s' must be a boolean", fieldName)

	case "array":
		switch val := value.(type) {
		case []interface{}:
			return val, nil
		case []string:
			result := make([]interface{}, len(val))
			for i, v := range val {
				result[i] = v
			}
			return result, nil
		case string:
			// Handle comma-separated values
			if val != "" {
				parts := strings.Split(val, ",")
				result := make([]interface{}, len(parts))
				for i, part := range parts {
					result[i] = strings.TrimSpace(part)
				}
				return result, nil
			}
			return []interface{}{}, nil
		}
		return nil, fmt.Errorf("field '%s' must be an array", fieldName)

	default:
		return value, nil
	}
}

// identifierPattern allows the ids of the legacy editor ("sach_007") plus umlauts
var identifierPattern = regexp.MustCompile(`^[\p{L}\p{N}_.-]+$`)

// variableNamePattern is a placeholder name as it appears between brackets
var variableNamePattern = regexp.MustCompile(`^[^\[\]]+$`)

// registerBuiltinSchemas registers the schemas used by the CLI, API and service
func (v *Validator) registerBuiltinSchemas() {
	v.RegisterSchema(&Schema{
		Name: "record",
		Fields: map[string]FieldValidator{
			"id": {
				Name:      "id",
				Type:      "string",
				Required:  true,
				MaxLength: 200,
				Pattern:   identifierPattern,
			},
			"title": {
				Name:      "title",
				Type:      "string",
				MaxLength: 500,
			},
			"section": {
				Name:      "section",
				Type:      "string",
				MaxLength: 200,
			},
			"category": {
				Name:      "category",
				Type:      "string",
				MaxLength: 200,
			},
			"shortcut": {
				Name:      "shortcut",
				Type:      "string",
				MaxLength: 50,
				Custom: func(value interface{}) error {
					if s, _ := value.(string); strings.ContainsAny(s, " \t\n") {
						return fmt.Errorf("shortcut must be a single word")
					}
					return nil
				},
			},
			"spintax_m": {
				Name:      "spintax_m",
				Type:      "string",
				Required:  true,
				MaxLength: 100000,
			},
			"spintax_w": {
				Name:      "spintax_w",
				Type:      "string",
				MaxLength: 100000,
			},
			"spintax_p": {
				Name:      "spintax_p",
				Type:      "string",
				MaxLength: 100000,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "spin",
		Fields: map[string]FieldValidator{
			"text": {
				Name:      "text",
				Type:      "string",
				MaxLength: 100000,
			},
			"id": {
				Name:      "id",
				Type:      "string",
				MaxLength: 200,
				Pattern:   identifierPattern,
			},
			"gender": {
				Name:    "gender",
				Type:    "string",
				Options: []string{"m", "w"},
			},
			"limit": {
				Name: "limit",
				Type: "int",
				Custom: func(value interface{}) error {
					if n, _ := value.(int); n < 0 || n > 10000 {
						return fmt.Errorf("limit must be between 0 and 10000")
					}
					return nil
				},
			},
		},
		Rules: []func(map[string]interface{}) error{
			func(data map[string]interface{}) error {
				_, hasText := data["text"]
				_, hasID := data["id"]
				if !hasText && !hasID {
					return fmt.Errorf("either text or id is required")
				}
				return nil
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "compile",
		Fields: map[string]FieldValidator{
			"gender": {
				Name:    "gender",
				Type:    "string",
				Options: []string{"m", "w"},
			},
			"format": {
				Name:    "format",
				Type:    "string",
				Options: []string{"text", "json", "markdown", "html"},
			},
			"numbered": {
				Name: "numbered",
				Type: "bool",
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "set_variable",
		Fields: map[string]FieldValidator{
			"name": {
				Name:      "name",
				Type:      "string",
				Required:  true,
				MaxLength: 200,
				Pattern:   variableNamePattern,
			},
			"value": {
				Name:      "value",
				Type:      "string",
				MaxLength: 10000,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "structure",
		Fields: map[string]FieldValidator{
			"sections": {
				Name:     "sections",
				Type:     "array",
				Required: true,
			},
		},
		Rules: []func(map[string]interface{}) error{
			func(data map[string]interface{}) error {
				sections, _ := data["sections"].([]interface{})
				for i, s := range sections {
					if _, ok := s.(string); !ok {
						return fmt.Errorf("section at position %d is not a string", i)
					}
				}
				return nil
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "search",
		Fields: map[string]FieldValidator{
			"query": {
				Name:      "query",
				Type:      "string",
				Required:  true,
				MinLength: 1,
				MaxLength: 1000,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "suggest",
		Fields: map[string]FieldValidator{
			"word": {
				Name:      "word",
				Type:      "string",
				Required:  true,
				MaxLength: 200,
			},
			"limit": {
				Name: "limit",
				Type: "int",
			},
		},
	})
}

// RecordData converts a record to the parameter map the record schema expects
func RecordData(rec models.Record) map[string]interface{} {
	return map[string]interface{}{
		"id":        strings.TrimSpace(rec.ID),
		"title":     rec.Name,
		"section":   rec.Section,
		"category":  rec.Category,
		"shortcut":  rec.Shortcut,
		"spintax_m": rec.SpintaxM,
		"spintax_w": rec.SpintaxW,
		"spintax_p": rec.SpintaxP,
	}
}

// ValidateRecord runs the record schema and adds authoring warnings. Warnings
// never make a record invalid.
func (v *Validator) ValidateRecord(rec models.Record) *ValidationResult {
	result := v.Validate("record", RecordData(rec))

	for _, field := range []struct{ name, text string }{
		{"spintax_m", rec.SpintaxM},
		{"spintax_w", rec.SpintaxW},
		{"spintax_p", rec.SpintaxP},
	} {
		switch {
		case spintax.Balanced(field.text):
		case !spintax.HasGroups(field.text):
			result.Warnings = append(result.Warnings, ValidationWarning{
				Field:   field.name,
				Message: "braces never form an alternation group and will appear literally in the text",
			})
		default:
			result.Warnings = append(result.Warnings, ValidationWarning{
				Field:   field.name,
				Message: "unbalanced braces; unmatched braces will appear literally in the text",
			})
		}
	}

	onlyM, onlyW := variables.Parity(rec)
	if len(onlyM) > 0 {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "spintax_w",
			Message: fmt.Sprintf("feminine variant lacks placeholders: %s", strings.Join(onlyM, ", ")),
			Value:   onlyM,
		})
	}
	if len(onlyW) > 0 {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "spintax_m",
			Message: fmt.Sprintf("masculine variant lacks placeholders: %s", strings.Join(onlyW, ", ")),
			Value:   onlyW,
		})
	}

	return result
}

// ToAppError converts validation result to AppError
func (result *ValidationResult) ToAppError() *errors.AppError {
	if result.Valid {
		return nil
	}

	if len(result.Errors) == 0 {
		return errors.ValidationError("Validation failed")
	}

	firstError := result.Errors[0]
	appErr := errors.ValidationError(firstError.Message)
	if firstError.Code == "REQUIRED_FIELD_MISSING" {
		appErr = errors.MissingFieldError(firstError.Field)
	}

	var details []string
	for _, validationErr := range result.Errors {
		details = append(details, fmt.Sprintf("%s: %s", validationErr.Field, validationErr.Message))
	}
	appErr.WithDetails(strings.Join(details, "; "))

	appErr.WithContext("validation_errors", result.Errors)
	if len(result.Warnings) > 0 {
		appErr.WithContext("validation_warnings", result.Warnings)
	}

	return appErr
}

// WarningMessages returns the warnings as "field: message" lines
func (result *ValidationResult) WarningMessages() []string {
	msgs := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		msgs = append(msgs, fmt.Sprintf("%s: %s", w.Field, w.Message))
	}
	return msgs
}

// GetValidatedData returns the validated and converted data
func (result *ValidationResult) GetValidatedData() map[string]interface{} {
	if !result.Valid {
		return nil
	}
	return result.Data
}

// ParseIntParam converts an optional string parameter, falling back to def
func ParseIntParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.InvalidInputError(fmt.Sprintf("'%s' is not a number", s))
	}
	return n, nil
}
