package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fitformula/fitformula-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/swaggo/swag"
)

const (
	swagger2RefPrefix = "#/definitions/"
	openAPI3RefPrefix = "#/components/schemas/"
)

// APIServer is one entry of the OpenAPI 3 servers list
type APIServer struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// OpenAPIDocument is the subset of an OpenAPI 3.0 document built from the swag output
type OpenAPIDocument struct {
	OpenAPI    string         `json:"openapi"`
	Info       map[string]any `json:"info"`
	Servers    []APIServer    `json:"servers"`
	Paths      map[string]any `json:"paths"`
	Components map[string]any `json:"components,omitempty"`
}

// OpenAPIHandler serves the generated Swagger 2.0 docs as OpenAPI 3.0
type OpenAPIHandler struct {
	servers []APIServer
}

// NewOpenAPIHandler creates a handler advertising the given servers
func NewOpenAPIHandler(servers ...APIServer) *OpenAPIHandler {
	return &OpenAPIHandler{servers: servers}
}

// Serve godoc
// @Summary OpenAPI 3.0 document
// @Tags docs
// @Produce json
// @Success 200 {object} OpenAPIDocument
// @Router /swagger/openapi3.json [get]
func (h *OpenAPIHandler) Serve(c echo.Context) error {
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		log.Error().Err(err).Msg("Failed to read swagger doc")
		return NewInternalError(c, "Failed to read API documentation")
	}

	doc, err := convertToOpenAPI3([]byte(raw), h.servers)
	if err != nil {
		log.Error().Err(err).Msg("Failed to convert swagger doc")
		return NewInternalError(c, "Failed to convert API documentation")
	}

	return c.JSON(http.StatusOK, doc)
}

func convertToOpenAPI3(raw []byte, servers []APIServer) (*OpenAPIDocument, error) {
	var swagger2 map[string]any
	if err := json.Unmarshal(raw, &swagger2); err != nil {
		return nil, fmt.Errorf("failed to parse swagger doc: %w", err)
	}

	info, _ := swagger2["info"].(map[string]any)
	paths, _ := swagger2["paths"].(map[string]any)

	components := map[string]any{}
	if schemes, ok := swagger2["securityDefinitions"].(map[string]any); ok {
		components["securitySchemes"] = schemes
	}
	if definitions, ok := swagger2["definitions"].(map[string]any); ok {
		components["schemas"] = rewriteNode(definitions)
	}

	converted := map[string]any{}
	for route, ops := range paths {
		converted[route] = convertOperations(ops)
	}

	return &OpenAPIDocument{
		OpenAPI:    "3.0.3",
		Info:       info,
		Servers:    servers,
		Paths:      converted,
		Components: components,
	}, nil
}

// convertOperations lifts body parameters of each operation into requestBody
func convertOperations(node any) any {
	ops, ok := node.(map[string]any)
	if !ok {
		return rewriteNode(node)
	}

	out := make(map[string]any, len(ops))
	for method, raw := range ops {
		op, ok := raw.(map[string]any)
		if !ok {
			out[method] = rewriteNode(raw)
			continue
		}

		rewritten := rewriteNode(op).(map[string]any)
		params, _ := op["parameters"].([]any)
		kept := make([]any, 0, len(params))
		for _, p := range params {
			param, _ := p.(map[string]any)
			if param["in"] == "body" {
				rewritten["requestBody"] = map[string]any{
					"required": param["required"],
					"content": map[string]any{
						echo.MIMEApplicationJSON: map[string]any{"schema": rewriteNode(param["schema"])},
					},
				}
				continue
			}
			kept = append(kept, convertParameter(param))
		}
		if len(params) > 0 {
			rewritten["parameters"] = kept
		}
		out[method] = rewritten
	}
	return out
}

// convertParameter moves type fields of a non-body parameter under schema
func convertParameter(param map[string]any) map[string]any {
	out := map[string]any{}
	schema := map[string]any{}
	for key, value := range param {
		switch key {
		case "name", "in", "description", "required":
			out[key] = value
		case "type", "format", "enum", "default", "minimum", "maximum", "items":
			schema[key] = rewriteNode(value)
		}
	}
	if len(schema) > 0 {
		out["schema"] = schema
	}
	return out
}

// rewriteNode points $ref values at components/schemas
func rewriteNode(node any) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				out[key] = strings.Replace(ref, swagger2RefPrefix, openAPI3RefPrefix, 1)
				continue
			}
			out[key] = rewriteNode(value)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = rewriteNode(item)
		}
		return out
	default:
		return node
	}
}
