// Package contracts embeds the OpenAPI documents describing the HTTP API.
package contracts

import (
	"context"
	"embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed *.yaml
var documents embed.FS

// Names lists the published documents, one per resource.
var Names = []string{"employees", "tournaments", "users"}

// Raw returns the YAML source of the named document.
func Raw(name string) ([]byte, error) {
	data, err := documents.ReadFile(name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("contract %q: %w", name, err)
	}
	return data, nil
}

// Load parses and validates the named document.
func Load(ctx context.Context, name string) (*openapi3.T, error) {
	data, err := Raw(name)
	if err != nil {
		return nil, err
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("load contract %q: %w", name, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate contract %q: %w", name, err)
	}
	return doc, nil
}

// LoadAll loads every document in Names, keyed by name.
func LoadAll(ctx context.Context) (map[string]*openapi3.T, error) {
	docs := make(map[string]*openapi3.T, len(Names))
	for _, name := range Names {
		doc, err := Load(ctx, name)
		if err != nil {
			return nil, err
		}
		docs[name] = doc
	}
	return docs, nil
}
