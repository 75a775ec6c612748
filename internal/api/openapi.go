// Package api/openapi serves the OpenAPI 3.0 document of the quick-hb API
// and a Swagger UI page for exploring it.
//
// The document is assembled from the operation table below; keep it in sync
// with the routes registered in Handler().
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// handleOpenAPI serves the OpenAPI documentation interface
func (s *APIServer) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, methodNotAllowed())
		return
	}

	html := `<!DOCTYPE html>
<html>
<head>
    <title>quick-hb API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui.css" />
    <style>
        html { box-sizing: border-box; overflow-y: scroll; }
        *, *:before, *:after { box-sizing: inherit; }
        body { margin:0; background: #fafafa; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: '/api/openapi.json',
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [SwaggerUIBundle.presets.apis]
            });
        };
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// handleOpenAPISpec serves the OpenAPI JSON specification
func (s *APIServer) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, methodNotAllowed())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(getOpenAPISpec(s.port))
}

type apiParam struct {
	name, in, typ, description string
	enum                       []string
}

type apiOperation struct {
	path, method, summary string
	params                []apiParam
	body                  string // component schema of the request body
	result                string // component schema of the data field
}

var (
	genderQueryParam = apiParam{name: "gender", in: "query", typ: "string", description: "Gender variant", enum: []string{"m", "w"}}
	idParam          = apiParam{name: "id", in: "path", typ: "string", description: "Record ID"}
)

var apiOperations = []apiOperation{
	{path: "/records", method: "get", summary: "List records",
		params: []apiParam{{name: "section", in: "query", typ: "string", description: "Only candidates of this section header"}},
		result: "Records"},
	{path: "/records", method: "post", summary: "Create a record", body: "Record", result: "Record"},
	{path: "/records/{id}", method: "get", summary: "Get a record", params: []apiParam{idParam}, result: "Record"},
	{path: "/records/{id}", method: "put", summary: "Replace a record", params: []apiParam{idParam}, body: "Record", result: "Record"},
	{path: "/records/{id}", method: "delete", summary: "Delete a record", params: []apiParam{idParam}},
	{path: "/records/{id}/spin", method: "get", summary: "Resolve a random variant of a record",
		params: []apiParam{idParam, genderQueryParam}, result: "SpinResult"},
	{path: "/records/{id}/variants", method: "get", summary: "Enumerate the variants of a record",
		params: []apiParam{idParam, genderQueryParam, {name: "limit", in: "query", typ: "integer", description: "Maximum number of variants"}}},
	{path: "/spin", method: "post", summary: "Resolve an ad-hoc template", body: "SpinRequest", result: "SpinResult"},
	{path: "/search", method: "get", summary: "Fuzzy search records",
		params: []apiParam{{name: "q", in: "query", typ: "string", description: "Search query"}}, result: "Records"},
	{path: "/suggest", method: "get", summary: "Autocomplete suggestions",
		params: []apiParam{{name: "word", in: "query", typ: "string", description: "Word being typed"},
			{name: "limit", in: "query", typ: "integer", description: "Maximum suggestions (default 5)"}},
		result: "Records"},
	{path: "/variables", method: "get", summary: "Placeholders and their values", params: []apiParam{genderQueryParam}},
	{path: "/variables", method: "put", summary: "Set variable values", body: "VariableMap"},
	{path: "/structure", method: "get", summary: "Document structure"},
	{path: "/structure", method: "put", summary: "Replace the document structure", body: "Structure"},
	{path: "/structure", method: "delete", summary: "Return to the derived structure"},
	{path: "/draft", method: "get", summary: "Record picks per section"},
	{path: "/draft", method: "post", summary: "Pick a record for a section", body: "Pick"},
	{path: "/draft", method: "delete", summary: "Clear all picks"},
	{path: "/document", method: "get", summary: "Compile the document",
		params: []apiParam{genderQueryParam,
			{name: "format", in: "query", typ: "string", description: "Output format", enum: []string{"json", "text", "markdown", "html"}},
			{name: "numbered", in: "query", typ: "boolean", description: "Number section headers"}}},
	{path: "/health", method: "get", summary: "Health check"},
}

func schemaRef(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"application/json": map[string]interface{}{"schema": schema},
	}
}

func (op apiOperation) document() map[string]interface{} {
	params := make([]map[string]interface{}, 0, len(op.params))
	for _, p := range op.params {
		schema := map[string]interface{}{"type": p.typ}
		if len(p.enum) > 0 {
			schema["enum"] = p.enum
		}
		params = append(params, map[string]interface{}{
			"name":        p.name,
			"in":          p.in,
			"description": p.description,
			"required":    p.in == "path",
			"schema":      schema,
		})
	}

	response := schemaRef("APIResponse")
	if op.result != "" {
		response = map[string]interface{}{
			"allOf": []interface{}{
				schemaRef("APIResponse"),
				map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{"data": schemaRef(op.result)},
				},
			},
		}
	}

	doc := map[string]interface{}{
		"summary":    op.summary,
		"parameters": params,
		"responses": map[string]interface{}{
			"200": map[string]interface{}{"description": "Success", "content": jsonContent(response)},
			"400": map[string]interface{}{"description": "Invalid request", "content": jsonContent(schemaRef("ErrorResponse"))},
			"404": map[string]interface{}{"description": "Not found", "content": jsonContent(schemaRef("ErrorResponse"))},
		},
	}
	if op.body != "" {
		doc["requestBody"] = map[string]interface{}{
			"required": true,
			"content":  jsonContent(schemaRef(op.body)),
		}
	}
	return doc
}

func stringProps(names ...string) map[string]interface{} {
	props := make(map[string]interface{}, len(names))
	for _, n := range names {
		props[n] = map[string]interface{}{"type": "string"}
	}
	return props
}

// getOpenAPISpec returns the OpenAPI 3.0 specification
func getOpenAPISpec(port int) map[string]interface{} {
	paths := map[string]interface{}{}
	for _, op := range apiOperations {
		item, ok := paths[op.path].(map[string]interface{})
		if !ok {
			item = map[string]interface{}{}
			paths[op.path] = item
		}
		item[op.method] = op.document()
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       "quick-hb API",
			"description": "Spintax form-letter generator: records, spin, variables and document compilation",
			"version":     "1.0.0",
		},
		"servers": []map[string]interface{}{
			{
				"url":         "http://localhost:" + strconv.Itoa(port) + "/api/v1",
				"description": "Local server",
			},
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"APIResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"success":   map[string]interface{}{"type": "boolean"},
						"data":      map[string]interface{}{},
						"message":   map[string]interface{}{"type": "string"},
						"warnings":  map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
						"timestamp": map[string]interface{}{"type": "string", "format": "date-time"},
					},
				},
				"ErrorResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error": map[string]interface{}{
							"type":       "object",
							"properties": stringProps("code", "message", "details", "timestamp"),
						},
					},
				},
				"Record": map[string]interface{}{
					"type":       "object",
					"required":   []string{"id", "spintax_m"},
					"properties": stringProps("id", "section", "category", "title", "shortcut", "spintax_m", "spintax_w", "spintax_p"),
				},
				"Records": map[string]interface{}{
					"type":  "array",
					"items": schemaRef("Record"),
				},
				"SpinRequest": map[string]interface{}{
					"type":       "object",
					"required":   []string{"text"},
					"properties": stringProps("text", "gender"),
				},
				"SpinResult": map[string]interface{}{
					"type":       "object",
					"properties": stringProps("id", "gender", "text"),
				},
				"VariableMap": map[string]interface{}{
					"type":                 "object",
					"additionalProperties": map[string]interface{}{"type": "string"},
				},
				"Structure": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"sections": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					},
				},
				"Pick": map[string]interface{}{
					"type":       "object",
					"required":   []string{"section", "id"},
					"properties": stringProps("section", "id"),
				},
			},
		},
	}
}
