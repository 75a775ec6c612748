// Package validation/middleware provides HTTP request validation middleware.
//
// HTTP VALIDATION FLOW:
// 1. A request arrives at a middleware-wrapped handler
// 2. Query, path and JSON body parameters are merged into one map
// 3. The map is validated against the named schema
// 4. Invalid requests get 400 with validation details
// 5. Valid requests reach the handler, which reads the converted values
//    through ValidatedData
//
// EXTRACTION PATTERNS:
// - Query parameters: /api/v1/document?gender=w&format=markdown
// - Path parameters: /api/v1/records/{id} and /api/v1/records/{id}/spin
// - JSON body: merged over query and path parameters
package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dpshade/quick-hb/internal/errors"
)

type contextKey struct{}

// RequestValidator provides middleware for HTTP request validation
type RequestValidator struct {
	validator *Validator
}

// NewRequestValidator creates a new request validator middleware
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		validator: NewValidator(),
	}
}

// ValidateRequest middleware validates HTTP requests based on schema
func (rv *RequestValidator) ValidateRequest(schemaName string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			data, err := rv.extractRequestData(r)
			if err != nil {
				rv.writeValidationError(w, errors.GetAppError(err))
				return
			}

			result := rv.validator.Validate(schemaName, data)
			if !result.Valid {
				rv.writeValidationError(w, result.ToAppError())
				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, result.GetValidatedData())
			next(w, r.WithContext(ctx))
		}
	}
}

// ValidatedData returns the converted parameters stored by ValidateRequest
func ValidatedData(r *http.Request) map[string]interface{} {
	data, _ := r.Context().Value(contextKey{}).(map[string]interface{})
	if data == nil {
		return map[string]interface{}{}
	}
	return data
}

// extractRequestData merges query, path and body parameters
func (rv *RequestValidator) extractRequestData(r *http.Request) (map[string]interface{}, error) {
	data := make(map[string]interface{})

	for key, values := range r.URL.Query() {
		if len(values) == 1 {
			data[key] = values[0]
		} else if len(values) > 1 {
			data[key] = values
		}
	}
	for key, value := range ValidateQueryParams(r.URL.Query()) {
		data[key] = value
	}

	if id := PathID(r.URL.Path); id != "" {
		data["id"] = id
	}

	if r.Method == http.MethodPost || r.Method == http.MethodPut {
		if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
			bodyData, err := rv.extractJSONBody(r)
			if err != nil {
				return nil, err
			}
			for key, value := range bodyData {
				data[key] = value
			}
		}
	}

	return data, nil
}

// PathID extracts {id} from /api/v1/records/{id}[/...]
func PathID(path string) string {
	const prefix = "/api/v1/records/"
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	id := strings.TrimPrefix(path, prefix)
	if idx := strings.Index(id, "/"); idx != -1 {
		id = id[:idx]
	}
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}
	return id
}

// extractJSONBody reads the JSON body and restores it for the handler
func (rv *RequestValidator) extractJSONBody(r *http.Request) (map[string]interface{}, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.ValidationError("Failed to read request body")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if len(body) == 0 {
		return make(map[string]interface{}), nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.ValidationError("Invalid JSON in request body")
	}

	return data, nil
}

// writeValidationError writes a validation error response
func (rv *RequestValidator) writeValidationError(w http.ResponseWriter, err *errors.AppError) {
	errors.NewHTTPErrorHandler(true).WriteHTTPError(w, err)
}

// GetValidator returns the underlying validator instance
func (rv *RequestValidator) GetValidator() *Validator {
	return rv.validator
}

// Common validation helper functions

// ValidateQueryParams maps the common query parameters of the API
func ValidateQueryParams(values url.Values) map[string]interface{} {
	params := make(map[string]interface{})

	if q := values.Get("q"); q != "" {
		params["query"] = q
	}
	if word := values.Get("word"); word != "" {
		params["word"] = word
	}
	if gender := values.Get("gender"); gender != "" {
		params["gender"] = gender
	}
	if format := values.Get("format"); format != "" {
		params["format"] = format
	}
	if limit := values.Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			params["limit"] = n
		}
	}
	if numbered := values.Get("numbered"); numbered != "" {
		if b, err := strconv.ParseBool(numbered); err == nil {
			params["numbered"] = b
		}
	}

	return params
}

// SanitizeString removes control characters except newlines and tabs
func SanitizeString(input string) string {
	var result strings.Builder
	for _, r := range input {
		if r == '\n' || r == '\t' || r == '\r' || r >= 32 {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateIdentifier validates that a string can serve as a record id
func ValidateIdentifier(id string) error {
	if id == "" {
		return errors.MissingFieldError("id")
	}
	if len([]rune(id)) > 200 {
		return errors.ValidationError("Identifier too long (max 200 characters)")
	}
	if !identifierPattern.MatchString(id) {
		return errors.ValidationError("Identifier contains invalid characters (letters, digits, '.', '-' and '_' allowed)")
	}
	return nil
}
