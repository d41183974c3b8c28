package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

func TestDocsHandler(t *testing.T) {
	h, err := NewDocsHandler("http://localhost:5050")
	if err != nil {
		t.Fatalf("NewDocsHandler: %v", err)
	}

	t.Run("json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.JSON(rec, httptest.NewRequest(http.MethodGet, "/api/docs/openapi.json", nil))

		var doc struct {
			OpenAPI string                    `json:"openapi"`
			Paths   map[string]map[string]any `json:"paths"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if doc.OpenAPI != "3.0.3" {
			t.Errorf("unexpected openapi version %q", doc.OpenAPI)
		}
		for _, path := range []string{"/register", "/login", "/api/cars/all", "/api/cars/create", "/api/cars", "/api/cars/{id}"} {
			if _, ok := doc.Paths[path]; !ok {
				t.Errorf("path %s missing from document", path)
			}
		}
		for _, method := range []string{"get", "put", "delete"} {
			if _, ok := doc.Paths["/api/cars/{id}"][method]; !ok {
				t.Errorf("/api/cars/{id} missing %s", method)
			}
		}
	})

	t.Run("yaml", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.YAML(rec, httptest.NewRequest(http.MethodGet, "/api/docs/openapi.yaml", nil))

		if ct := rec.Header().Get("Content-Type"); ct != "application/yaml" {
			t.Errorf("unexpected content type %q", ct)
		}

		var doc map[string]any
		if err := yaml.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
			t.Fatalf("yaml does not parse: %v", err)
		}
		servers, ok := doc["servers"].([]any)
		if !ok || len(servers) != 1 {
			t.Fatalf("expected one server entry, got %v", doc["servers"])
		}
	})

	t.Run("ui", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.UI(rec, httptest.NewRequest(http.MethodGet, "/api/docs", nil))

		if !strings.Contains(rec.Body.String(), "/api/docs/openapi.json") {
			t.Error("page should load the JSON document")
		}
		if csp := rec.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "https://unpkg.com") {
			t.Errorf("page CSP must allow the swagger CDN, got %q", csp)
		}
	})
}

func TestOpenAPIDoc(t *testing.T) {
	doc := openAPIDoc("")
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("document is not valid OpenAPI: %v", err)
	}

	item := doc.Paths.Find("/api/cars/{id}")
	if item == nil {
		t.Fatal("/api/cars/{id} missing")
	}
	for method, op := range map[string]*openapi3.Operation{"GET": item.Get, "PUT": item.Put, "DELETE": item.Delete} {
		if op.Security == nil {
			t.Errorf("%s /api/cars/{id} must require a bearer token", method)
		}
		for _, status := range []int{http.StatusUnauthorized, http.StatusInternalServerError} {
			if op.Responses.Status(status) == nil {
				t.Errorf("%s /api/cars/{id} does not document %d", method, status)
			}
		}
	}
	if doc.Paths.Find("/api/cars/all").Get.Security != nil {
		t.Error("/api/cars/all is public")
	}

	car := doc.Components.Schemas["Car"].Value
	if maxItems := car.Properties["images"].Value.MaxItems; maxItems == nil || *maxItems != 10 {
		t.Errorf("images must cap at 10, got %v", maxItems)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"$ref":"#/components/schemas/Car"`) {
		t.Error("operations should reference component schemas")
	}
}
