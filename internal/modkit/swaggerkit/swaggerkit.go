// Package swaggerkit serves the swagger UI over an OpenAPI document built from the mounted routes
package swaggerkit

import (
	"net/http"
	"strings"

	"potluck/internal/core/version"
	phttp "potluck/internal/platform/net/http"

	json "github.com/goccy/go-json"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Op is one documented GET route; Path is relative to Base
type Op struct {
	Path    string
	Tag     string
	Summary string
	Auth    bool
}

// Options configures the served document
type Options struct {
	Enabled bool
	Title   string
	Base    string // server url, /api/v1 when empty
	Ops     []Op
}

type operation struct {
	Tags       []string              `json:"tags,omitempty"`
	Summary    string                `json:"summary,omitempty"`
	Parameters []parameter           `json:"parameters,omitempty"`
	Security   []map[string][]string `json:"security,omitempty"`
	Responses  map[string]response   `json:"responses"`
}

type parameter struct {
	Name     string         `json:"name"`
	In       string         `json:"in"`
	Required bool           `json:"required"`
	Schema   map[string]any `json:"schema"`
}

type response struct {
	Description string `json:"description"`
}

// Document renders opt as an OpenAPI 3 document
func Document(opt Options) ([]byte, error) {
	base := opt.Base
	if base == "" {
		base = "/api/v1"
	}
	paths := map[string]map[string]operation{}
	for _, op := range opt.Ops {
		o := operation{
			Summary:    op.Summary,
			Parameters: pathParams(op.Path),
			Responses: map[string]response{
				"200":     {Description: "ok"},
				"default": {Description: "error envelope"},
			},
		}
		if op.Tag != "" {
			o.Tags = []string{op.Tag}
		}
		if op.Auth {
			o.Security = []map[string][]string{{"bearer": {}}}
			o.Responses["401"] = response{Description: "missing or invalid token"}
		}
		paths[op.Path] = map[string]operation{"get": o}
	}
	return json.Marshal(map[string]any{
		"openapi": "3.0.3",
		"info":    map[string]string{"title": opt.Title, "version": version.Info().Version},
		"servers": []map[string]string{{"url": base}},
		"paths":   paths,
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"bearer": map[string]string{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"},
			},
		},
	})
}

// pathParams lists the {name} segments of a chi pattern
func pathParams(path string) []parameter {
	var out []parameter
	for seg := range strings.SplitSeq(path, "/") {
		if name, ok := strings.CutPrefix(seg, "{"); ok {
			out = append(out, parameter{
				Name: strings.TrimSuffix(name, "}"), In: "path", Required: true,
				Schema: map[string]any{"type": "string"},
			})
		}
	}
	return out
}

// Mount serves the UI at /api/docs and the document at /api/docs/doc.json
func Mount(r phttp.Router, opt Options) error {
	if !opt.Enabled {
		return nil
	}
	doc, err := Document(opt)
	if err != nil {
		return err
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(doc)
	})
	r.Handle("/api/docs/*", httpSwagger.Handler(httpSwagger.URL("/api/docs/doc.json")))
	return nil
}
