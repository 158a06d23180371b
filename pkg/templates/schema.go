package templates

import (
	"fmt"
	"strings"

	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// schema describes a template document. Block types are taken from the model
// so new types need no schema edit.
func schema() map[string]any {
	types := make([]any, 0, len(models.BlockTypes()))
	for _, blockType := range models.BlockTypes() {
		types = append(types, string(blockType))
	}

	position := map[string]any{
		"type":     "object",
		"required": []any{"x", "y"},
		"properties": map[string]any{
			"x": map[string]any{"type": "number", "minimum": 0},
			"y": map[string]any{"type": "number", "minimum": 0},
		},
	}

	block := map[string]any{
		"type":     "object",
		"required": []any{"id", "type", "position"},
		"properties": map[string]any{
			"id":         map[string]any{"type": "string", "minLength": 1},
			"type":       map[string]any{"type": "string", "enum": types},
			"position":   position,
			"configured": map[string]any{"type": "boolean"},
			"config":     map[string]any{"type": "object"},
			"connections": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "minLength": 1},
				"uniqueItems": true,
			},
		},
	}

	return map[string]any{
		"type":     "object",
		"required": []any{"id", "name", "blocks"},
		"properties": map[string]any{
			"id":          map[string]any{"type": "string", "minLength": 1},
			"name":        map[string]any{"type": "string", "minLength": 1},
			"description": map[string]any{"type": "string"},
			"blocks":      map[string]any{"type": "array", "items": block},
		},
	}
}

// Validate checks a decoded template document against the template schema.
func Validate(document map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(schema())
	dataLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}

		return fmt.Errorf("%w: %s", ErrInvalidTemplate, strings.Join(errors, "; "))
	}

	return nil
}
