// Package api provides the RESTful HTTP API server for quick-hb.
//
// SYSTEM ARCHITECTURE ROLE:
// This module implements the HTTP interface layer. It exposes the record
// library, single-record resolution and whole-document compilation to other
// programs, for example a browser front end or an editor plugin.
//
// KEY RESPONSIBILITIES:
// - Expose record management, spin and compile operations via REST endpoints
// - Apply the middleware stack (logging, CORS, content type, panic recovery)
// - Validate request parameters through internal/validation before handlers run
// - Standardize responses with one JSON envelope
//
// INTEGRATION POINTS:
// - internal/service/service.go: all operations go through the Service
// - internal/errors/handlers.go: HTTPErrorHandler formats error responses
// - internal/validation/middleware.go: RequestValidator guards parameterized routes
// - internal/api/openapi.go: OpenAPI document at /api/openapi.json, UI at /api/docs
//
// ENDPOINT STRUCTURE:
// - /api/v1/records: list and create records
// - /api/v1/records/{id}: read, replace and delete one record
// - /api/v1/records/{id}/spin, /variants: resolve one record
// - /api/v1/spin: resolve an ad-hoc template
// - /api/v1/search, /api/v1/suggest: fuzzy search and autocomplete
// - /api/v1/variables, /structure, /draft: document state
// - /api/v1/document: the compiled document
// - /api/v1/health: liveness and library summary
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/dpshade/quick-hb/internal/compiler"
	"github.com/dpshade/quick-hb/internal/errors"
	"github.com/dpshade/quick-hb/internal/models"
	"github.com/dpshade/quick-hb/internal/service"
	"github.com/dpshade/quick-hb/internal/validation"
)

// APIServer provides the HTTP API with middleware support
type APIServer struct {
	service      *service.Service
	validator    *validation.RequestValidator
	errorHandler *errors.HTTPErrorHandler
	port         int
	server       *http.Server
	started      time.Time
}

// NewAPIServer creates a new API server instance
func NewAPIServer(svc *service.Service, port int) *APIServer {
	return &APIServer{
		service:      svc,
		validator:    validation.NewRequestValidator(),
		errorHandler: errors.NewHTTPErrorHandler(true), // Include details in responses
		port:         port,
		started:      time.Now(),
	}
}

// Handler returns the routed handler with all middleware applied
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	validate := s.validator.ValidateRequest

	mux.HandleFunc("/api/v1/records", s.withMiddleware(s.handleRecords))
	mux.HandleFunc("/api/v1/records/", s.withMiddleware(s.handleRecordsWithID))
	mux.HandleFunc("/api/v1/spin", s.withMiddleware(validate("spin")(s.handleSpin)))
	mux.HandleFunc("/api/v1/search", s.withMiddleware(validate("search")(s.handleSearch)))
	mux.HandleFunc("/api/v1/suggest", s.withMiddleware(validate("suggest")(s.handleSuggest)))
	mux.HandleFunc("/api/v1/variables", s.withMiddleware(s.handleVariables))
	mux.HandleFunc("/api/v1/structure", s.withMiddleware(s.handleStructure))
	mux.HandleFunc("/api/v1/draft", s.withMiddleware(s.handleDraft))
	mux.HandleFunc("/api/v1/document", s.withMiddleware(validate("compile")(s.handleDocument)))
	mux.HandleFunc("/api/v1/health", s.withMiddleware(s.handleHealth))

	// OpenAPI documentation
	mux.HandleFunc("/api/docs", s.withMiddleware(s.handleOpenAPI))
	mux.HandleFunc("/api/openapi.json", s.withMiddleware(s.handleOpenAPISpec))

	return mux
}

// Start begins serving HTTP requests and blocks until the server stops
func (s *APIServer) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("API server starting on http://localhost:%d", s.port)
	log.Printf("OpenAPI documentation: http://localhost:%d/api/docs", s.port)
	log.Printf("API specification: http://localhost:%d/api/openapi.json", s.port)

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server
func (s *APIServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// withMiddleware applies middleware to HTTP handlers
func (s *APIServer) withMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	return s.loggingMiddleware(
		s.corsMiddleware(
			s.contentTypeMiddleware(
				s.errorMiddleware(handler),
			),
		),
	)
}

// loggingMiddleware logs HTTP requests
func (s *APIServer) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		duration := time.Since(start)
		log.Printf("[%s] %s %s - %v", r.Method, r.URL.Path, r.RemoteAddr, duration)
	}
}

// corsMiddleware handles CORS headers
func (s *APIServer) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// contentTypeMiddleware sets default content type
func (s *APIServer) contentTypeMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next(w, r)
	}
}

// errorMiddleware recovers from panics in handlers
func (s *APIServer) errorMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Panic in handler: %v", err)
				s.writeError(w, errors.InternalError("Internal server error"))
			}
		}()
		next(w, r)
	}
}

// APIResponse represents a standardized API response
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Warnings  []string    `json:"warnings,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// writeResponse writes a standardized JSON response
func (s *APIServer) writeResponse(w http.ResponseWriter, data interface{}, message string, statusCode int) {
	s.writeResponseWithWarnings(w, data, message, nil, statusCode)
}

func (s *APIServer) writeResponseWithWarnings(w http.ResponseWriter, data interface{}, message string, warnings []string, statusCode int) {
	response := APIResponse{
		Success:   statusCode < 400,
		Data:      data,
		Message:   message,
		Warnings:  warnings,
		Timestamp: time.Now(),
	}

	w.WriteHeader(statusCode)

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		// Fallback to compact JSON if marshaling fails
		json.NewEncoder(w).Encode(response)
		return
	}

	w.Write(jsonData)
}

// writeError writes an error response using the error handler
func (s *APIServer) writeError(w http.ResponseWriter, err error) {
	s.errorHandler.WriteHTTPError(w, err)
}

func methodNotAllowed() *errors.AppError {
	return errors.NewAppError(errors.ErrCodeInvalidCommand, "Method not allowed")
}

// genderParam reads the validated gender, falling back to the draft or config
func (s *APIServer) genderParam(data map[string]interface{}) models.Gender {
	if g, ok := data["gender"].(string); ok && g != "" {
		if gender, err := models.ParseGender(g); err == nil {
			return gender
		}
	}
	return s.service.DefaultGender()
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.ValidationError("Invalid JSON in request body").WithDetails(err.Error())
	}
	return nil
}

// handleRecords handles /api/v1/records
func (s *APIServer) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListRecords(w, r)
	case http.MethodPost:
		s.handleCreateRecord(w, r)
	default:
		s.writeError(w, methodNotAllowed())
	}
}

// handleRecordsWithID handles /api/v1/records/{id}[/spin|/variants]
func (s *APIServer) handleRecordsWithID(w http.ResponseWriter, r *http.Request) {
	id := validation.PathID(r.URL.Path)
	if id == "" {
		s.writeError(w, errors.MissingFieldError("id"))
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/records/")
	action := ""
	if idx := strings.Index(rest, "/"); idx != -1 {
		action = rest[idx+1:]
	}

	switch action {
	case "spin":
		s.validator.ValidateRequest("spin")(s.handleSpin)(w, r)
		return
	case "variants":
		s.validator.ValidateRequest("spin")(s.handleVariants)(w, r)
		return
	case "":
	default:
		s.writeError(w, errors.NotFoundError(fmt.Sprintf("endpoint '%s'", r.URL.Path)))
		return
	}

	switch r.Method {
	case http.MethodGet:
		rec, err := s.service.GetRecord(id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, rec, "", http.StatusOK)
	case http.MethodPut:
		s.handleUpdateRecord(w, r, id)
	case http.MethodDelete:
		if err := s.service.DeleteRecord(id); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, nil, fmt.Sprintf("Deleted record %s", id), http.StatusOK)
	default:
		s.writeError(w, methodNotAllowed())
	}
}

// handleListRecords handles GET /api/v1/records[?section=...]
func (s *APIServer) handleListRecords(w http.ResponseWriter, r *http.Request) {
	var records models.Collection
	var err error
	if r.URL.Query().Has("section") {
		records, err = s.service.Sections(r.URL.Query().Get("section"))
	} else {
		records, err = s.service.ListRecords()
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = models.Collection{}
	}

	s.writeResponse(w, records, fmt.Sprintf("Found %d records", len(records)), http.StatusOK)
}

// handleCreateRecord handles POST /api/v1/records
func (s *APIServer) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var rec models.Record
	if err := decodeBody(r, &rec); err != nil {
		s.writeError(w, err)
		return
	}

	warnings, err := s.service.AddRecord(&rec)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponseWithWarnings(w, rec, fmt.Sprintf("Created record %s", rec.ID), warnings, http.StatusCreated)
}

// handleUpdateRecord handles PUT /api/v1/records/{id}
func (s *APIServer) handleUpdateRecord(w http.ResponseWriter, r *http.Request, id string) {
	var rec models.Record
	if err := decodeBody(r, &rec); err != nil {
		s.writeError(w, err)
		return
	}
	if rec.ID != "" && rec.ID != id {
		s.writeError(w, errors.InvalidInputError("Record ID in body does not match the URL"))
		return
	}
	rec.ID = id

	warnings, err := s.service.UpdateRecord(&rec)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponseWithWarnings(w, rec, fmt.Sprintf("Updated record %s", id), warnings, http.StatusOK)
}

// SpinResult is the payload of the spin endpoints
type SpinResult struct {
	ID     string        `json:"id,omitempty"`
	Gender models.Gender `json:"gender"`
	Text   string        `json:"text"`
}

// handleSpin handles /api/v1/spin and /api/v1/records/{id}/spin
func (s *APIServer) handleSpin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		s.writeError(w, methodNotAllowed())
		return
	}

	data := validation.ValidatedData(r)
	gender := s.genderParam(data)

	result := SpinResult{Gender: gender}
	var err error
	if text, ok := data["text"].(string); ok {
		result.Text, err = s.service.SpinText(text, gender)
	} else {
		result.ID, _ = data["id"].(string)
		result.Text, err = s.service.Spin(result.ID, gender)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, result, "", http.StatusOK)
}

// defaultVariantLimit caps variants when the request gives no positive limit
const defaultVariantLimit = 100

// handleVariants handles GET /api/v1/records/{id}/variants
func (s *APIServer) handleVariants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, methodNotAllowed())
		return
	}

	data := validation.ValidatedData(r)
	id, _ := data["id"].(string)
	// 0 would enumerate every combination
	limit := defaultVariantLimit
	if n, ok := data["limit"].(int); ok && n > 0 {
		limit = n
	}
	gender := s.genderParam(data)

	texts, total, err := s.service.Variants(id, gender, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, map[string]interface{}{
		"id":       id,
		"gender":   gender,
		"total":    total,
		"variants": texts,
	}, fmt.Sprintf("%d of %d variants", len(texts), total), http.StatusOK)
}

// handleSearch handles GET /api/v1/search?q=...
func (s *APIServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, methodNotAllowed())
		return
	}

	query, _ := validation.ValidatedData(r)["query"].(string)
	records, err := s.service.SearchRecords(query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = models.Collection{}
	}
	s.writeResponse(w, records, fmt.Sprintf("Found %d records", len(records)), http.StatusOK)
}

// handleSuggest handles GET /api/v1/suggest?word=...
func (s *APIServer) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, methodNotAllowed())
		return
	}

	data := validation.ValidatedData(r)
	word, _ := data["word"].(string)
	limit, _ := data["limit"].(int)

	records, err := s.service.Suggest(word, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = models.Collection{}
	}
	s.writeResponse(w, records, "", http.StatusOK)
}

// VariablesResult lists the placeholders of the library with their values
type VariablesResult struct {
	Names  []string           `json:"names"`
	Values models.VariableMap `json:"values"`
}

// handleVariables handles GET and PUT /api/v1/variables
func (s *APIServer) handleVariables(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		gender := s.genderParam(validation.ValidateQueryParams(r.URL.Query()))
		names, err := s.service.DiscoverVariables(gender)
		if err != nil {
			s.writeError(w, err)
			return
		}
		values, err := s.service.Variables()
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, VariablesResult{Names: names, Values: values}, "", http.StatusOK)

	case http.MethodPut, http.MethodPost:
		var body map[string]string
		if err := decodeBody(r, &body); err != nil {
			s.writeError(w, err)
			return
		}
		// Either {"name": "X", "value": "Y"} or a map of several values
		if name, ok := body["name"]; ok {
			body = map[string]string{name: body["value"]}
		}
		for name, value := range body {
			if err := s.service.SetVariable(name, value); err != nil {
				s.writeError(w, err)
				return
			}
		}
		values, err := s.service.Variables()
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, values, fmt.Sprintf("Updated %d variables", len(body)), http.StatusOK)

	default:
		s.writeError(w, methodNotAllowed())
	}
}

// handleStructure handles GET and PUT /api/v1/structure
func (s *APIServer) handleStructure(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		structure, err := s.service.Structure()
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, map[string]interface{}{"sections": structure}, "", http.StatusOK)

	case http.MethodPut, http.MethodPost:
		s.validator.ValidateRequest("structure")(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := validation.ValidatedData(r)["sections"].([]interface{})
			structure := make(models.Structure, 0, len(raw))
			for _, h := range raw {
				structure = append(structure, h.(string))
			}
			structure, err := s.service.SetStructure(structure)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeResponse(w, map[string]interface{}{"sections": structure}, "Structure updated", http.StatusOK)
		})(w, r)

	case http.MethodDelete:
		structure, err := s.service.SetStructure(nil)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, map[string]interface{}{"sections": structure}, "Structure reset", http.StatusOK)

	default:
		s.writeError(w, methodNotAllowed())
	}
}

// pickRequest is the body of POST /api/v1/draft
type pickRequest struct {
	Section string `json:"section"`
	ID      string `json:"id"`
}

// handleDraft handles /api/v1/draft
func (s *APIServer) handleDraft(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		draft, err := s.service.Draft()
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, draft, "", http.StatusOK)

	case http.MethodPost:
		var req pickRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		if strings.TrimSpace(req.Section) == "" {
			s.writeError(w, errors.MissingFieldError("section"))
			return
		}
		if err := s.service.PickRecord(req.Section, req.ID); err != nil {
			s.writeError(w, err)
			return
		}
		draft, err := s.service.Draft()
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, draft, fmt.Sprintf("Picked %s for %s", req.ID, req.Section), http.StatusOK)

	case http.MethodDelete:
		if err := s.service.ClearDraft(); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, nil, "Draft cleared", http.StatusOK)

	default:
		s.writeError(w, methodNotAllowed())
	}
}

// handleDocument handles GET /api/v1/document
func (s *APIServer) handleDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, methodNotAllowed())
		return
	}

	data := validation.ValidatedData(r)
	gender := s.genderParam(data)
	opts := compiler.Options{Numbered: s.service.Config().NumberedHeaders}
	if numbered, ok := data["numbered"].(bool); ok {
		opts.Numbered = numbered
	}

	format, _ := data["format"].(string)
	switch format {
	case "", service.FormatJSON:
		doc, err := s.service.BuildDocument(gender, opts)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, doc, "", http.StatusOK)
	default:
		text, err := s.service.CompileDocument(gender, format, opts)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeResponse(w, map[string]interface{}{
			"gender": gender,
			"format": format,
			"text":   text,
		}, "", http.StatusOK)
	}
}

// handleHealth handles GET /api/v1/health
func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, methodNotAllowed())
		return
	}

	stats, err := s.service.Stats(s.service.DefaultGender())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeResponse(w, map[string]interface{}{
		"status":  "healthy",
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"library": s.service.BaseDir(),
		"stats":   stats,
	}, "", http.StatusOK)
}
