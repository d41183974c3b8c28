package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

const swaggerUIVersion = "5.17.14"

// DocsHandler serves the OpenAPI description of the API and a Swagger UI page.
type DocsHandler struct {
	doc  *openapi3.T
	yaml []byte
}

// NewDocsHandler builds and validates the OpenAPI document once.
// serverURL may be empty.
func NewDocsHandler(serverURL string) (*DocsHandler, error) {
	doc := openAPIDoc(serverURL)
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi yaml: %w", err)
	}
	return &DocsHandler{doc: doc, yaml: out}, nil
}

// JSON handles GET /api/docs/openapi.json.
func (h *DocsHandler) JSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.doc)
}

// YAML handles GET /api/docs/openapi.yaml.
func (h *DocsHandler) YAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.yaml); err != nil {
		slog.Debug("docs write failed", "error", err)
	}
}

// UI handles GET /api/docs. The page pulls swagger-ui from a CDN, so it
// replaces the default CSP with one that allows that origin.
func (h *DocsHandler) UI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Security-Policy",
		"default-src 'none'; script-src 'self' 'unsafe-inline' https://unpkg.com; "+
			"style-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data:; connect-src 'self'")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(swaggerPage))
}

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>carlot API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@` + swaggerUIVersion + `/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@` + swaggerUIVersion + `/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({ url: "/api/docs/openapi.json", dom_id: "#swagger-ui" });
  </script>
</body>
</html>
`

// apiSchemas are the component schemas. refs point at them by name and
// carry the value so the document validates without a loader pass.
type apiSchemas map[string]*openapi3.SchemaRef

func (s apiSchemas) ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, s[name].Value)
}

func newAPISchemas() apiSchemas {
	s := apiSchemas{}
	add := func(name string, schema *openapi3.Schema) {
		s[name] = openapi3.NewSchemaRef("", schema)
	}
	str := openapi3.NewStringSchema

	add("Message", openapi3.NewObjectSchema().WithProperties(map[string]*openapi3.Schema{
		"message": str(),
	}))
	add("ServerError", openapi3.NewObjectSchema().WithProperties(map[string]*openapi3.Schema{
		"message": str(),
		"error":   str(),
	}))
	add("Credentials", openapi3.NewObjectSchema().WithProperties(map[string]*openapi3.Schema{
		"username": str(),
		"password": str(),
	}).WithRequired([]string{"username", "password"}))
	add("LoginResult", openapi3.NewObjectSchema().WithProperties(map[string]*openapi3.Schema{
		"token":    str(),
		"username": str(),
		"isAdmin":  openapi3.NewBoolSchema(),
	}))
	add("CarInput", openapi3.NewObjectSchema().WithProperties(map[string]*openapi3.Schema{
		"title":       str(),
		"description": str(),
		"images":      openapi3.NewArraySchema().WithItems(str()).WithMaxItems(10),
		"tags":        openapi3.NewArraySchema().WithItems(str()),
	}))
	add("Car", openapi3.NewObjectSchema().WithProperties(map[string]*openapi3.Schema{
		"_id":         str(),
		"owner":       str(),
		"title":       str(),
		"description": str(),
		"images":      openapi3.NewArraySchema().WithItems(str()).WithMaxItems(10),
		"tags":        openapi3.NewArraySchema().WithItems(str()),
		"createdAt":   openapi3.NewDateTimeSchema(),
	}))
	add("Deleted", openapi3.NewObjectSchema().WithProperties(map[string]*openapi3.Schema{
		"message": str(),
		"id":      str(),
	}))
	return s
}

func openAPIDoc(serverURL string) *openapi3.T {
	schemas := newAPISchemas()

	resp := func(description string, schema *openapi3.SchemaRef) *openapi3.ResponseRef {
		return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(description).WithJSONSchemaRef(schema)}
	}
	body := func(schema string) *openapi3.RequestBodyRef {
		return &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(schemas.ref(schema))}
	}
	message := schemas.ref("Message")
	serverError := openapi3.WithStatus(http.StatusInternalServerError, resp("Server error", schemas.ref("ServerError")))
	unauthorized := resp("Missing or invalid bearer token", message)
	carArray := openapi3.NewSchemaRef("", &openapi3.Schema{
		Type:  &openapi3.Types{openapi3.TypeArray},
		Items: schemas.ref("Car"),
	})
	bearer := openapi3.NewSecurityRequirements().With(openapi3.NewSecurityRequirement().Authenticate("bearerAuth"))

	op := func(tag, summary string, responses ...openapi3.NewResponsesOption) *openapi3.Operation {
		return &openapi3.Operation{
			Tags:      []string{tag},
			Summary:   summary,
			Responses: openapi3.NewResponses(append(responses, serverError)...),
		}
	}
	secured := func(o *openapi3.Operation) *openapi3.Operation {
		o.Security = bearer
		o.Responses.Set("401", unauthorized)
		return o
	}
	withBody := func(o *openapi3.Operation, schema string) *openapi3.Operation {
		o.RequestBody = body(schema)
		return o
	}

	paths := openapi3.NewPaths(
		openapi3.WithPath("/register", &openapi3.PathItem{
			Post: withBody(op("User", "Register a new user",
				openapi3.WithStatus(http.StatusCreated, resp("User created", message)),
				openapi3.WithStatus(http.StatusBadRequest, resp("Missing field", message)),
				openapi3.WithStatus(http.StatusConflict, resp("Username already exists", message)),
				openapi3.WithStatus(http.StatusRequestEntityTooLarge, resp("Request body too large", message)),
			), "Credentials"),
		}),
		openapi3.WithPath("/login", &openapi3.PathItem{
			Post: withBody(op("User", "Log in and receive a bearer token valid for one hour",
				openapi3.WithStatus(http.StatusOK, resp("Token issued", schemas.ref("LoginResult"))),
				openapi3.WithStatus(http.StatusBadRequest, resp("Malformed body", message)),
				openapi3.WithStatus(http.StatusUnauthorized, resp("User not found or invalid password", message)),
			), "Credentials"),
		}),
		openapi3.WithPath("/api/cars/all", &openapi3.PathItem{
			Get: op("Cars", "Fetch all cars (public)",
				openapi3.WithStatus(http.StatusOK, resp("All cars", carArray)),
			),
		}),
		openapi3.WithPath("/api/cars/create", &openapi3.PathItem{
			Post: secured(withBody(op("Cars", "Create a car owned by the caller",
				openapi3.WithStatus(http.StatusCreated, resp("Created car", schemas.ref("Car"))),
				openapi3.WithStatus(http.StatusBadRequest, resp("Image cap or missing field", message)),
			), "CarInput")),
		}),
		openapi3.WithPath("/api/cars", &openapi3.PathItem{
			Get: secured(op("Cars", "List the caller's cars",
				openapi3.WithStatus(http.StatusOK, resp("Caller's cars", carArray)),
			)),
		}),
		openapi3.WithPath("/api/cars/{id}", &openapi3.PathItem{
			Parameters: openapi3.Parameters{
				{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema())},
			},
			Get: secured(op("Cars", "Get one of the caller's cars",
				openapi3.WithStatus(http.StatusOK, resp("Car", schemas.ref("Car"))),
				openapi3.WithStatus(http.StatusForbidden, resp("Car not found or unauthorized (not owner)", message)),
				openapi3.WithStatus(http.StatusNotFound, resp("Car not found or unauthorized (missing)", message)),
			)),
			Put: secured(withBody(op("Cars", "Update a car; empty fields keep stored values",
				openapi3.WithStatus(http.StatusOK, resp("Updated car", schemas.ref("Car"))),
				openapi3.WithStatus(http.StatusBadRequest, resp("Image cap", message)),
				openapi3.WithStatus(http.StatusForbidden, resp("Not authorized to update this car", message)),
			), "CarInput")),
			Delete: secured(op("Cars", "Delete a car",
				openapi3.WithStatus(http.StatusOK, resp("Deleted", schemas.ref("Deleted"))),
				openapi3.WithStatus(http.StatusForbidden, resp("Not authorized to delete this car", message)),
				openapi3.WithStatus(http.StatusNotFound, resp("Car not found", message)),
			)),
		}),
	)

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "carlot API",
			Version:     "1.0.0",
			Description: "Car listings with per-user ownership and bearer token authentication.",
		},
		Tags:  openapi3.Tags{{Name: "User"}, {Name: "Cars"}},
		Paths: paths,
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas(schemas),
			SecuritySchemes: openapi3.SecuritySchemes{
				"bearerAuth": {Value: openapi3.NewJWTSecurityScheme()},
			},
		},
	}
	if serverURL != "" {
		doc.Servers = openapi3.Servers{{URL: serverURL}}
	}
	return doc
}
