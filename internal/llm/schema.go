package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildReceiptJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. It is embedded in the prompt and used locally as an advisory
// check on the repaired model output. Nothing is required: the pipeline must
// still recover records that carry only a store and an item list.
func BuildReceiptJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"store":   map[string]any{"type": "string"},
			"date":    map[string]any{"type": "string"},
			"time":    map[string]any{"type": "string"},
			"payment": map[string]any{"type": "string"},
			"subtotal": map[string]any{
				"type": []any{"number", "string", "null"},
			},
			"tax": map[string]any{
				"type": []any{"number", "string", "null"},
			},
			"total": map[string]any{
				"type": []any{"number", "string", "null"},
			},
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
						"price": map[string]any{
							"type": []any{"number", "string", "null"},
						},
					},
				},
			},
		},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
