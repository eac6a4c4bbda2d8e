package tool

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SchemaFor derives a JSON schema object from a Go struct. The struct is
// inlined at the top level (no $ref indirection) so the result can be handed
// to model providers as a plain parameters object. Field names follow json
// tags; use jsonschema struct tags for descriptions and constraints.
func SchemaFor(structType any) map[string]any {
	reflector := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}

	data, err := reflector.Reflect(structType).MarshalJSON()
	if err != nil {
		return emptyObjectSchema()
	}

	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return emptyObjectSchema()
	}

	delete(schema, "$schema")
	delete(schema, "$id")

	return schema
}

func emptyObjectSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}
