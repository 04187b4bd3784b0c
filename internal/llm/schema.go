package llm

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
)

// GenerateSchema reflects T into a strict JSON schema accepted by OpenAI
// structured outputs.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	schemaObj, err := schemaToMap(schema)
	if err != nil {
		panic(err)
	}
	ensureOpenAICompliance(schemaObj)
	return schemaObj
}

func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ensureOpenAICompliance closes every object and marks all of its
// properties required, recursively.
func ensureOpenAICompliance(schema map[string]any) {
	if schemaType, ok := schema[typeKey].(string); ok && schemaType == "object" {
		schema[additionalPropertiesKey] = false

		if properties, ok := schema[propertiesKey].(map[string]any); ok {
			requiredFields := make([]string, 0, len(properties))
			for propName := range properties {
				requiredFields = append(requiredFields, propName)
			}
			if len(requiredFields) > 0 {
				schema[requiredKey] = requiredFields
			}
		}
	}

	if properties, ok := schema[propertiesKey].(map[string]any); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]any); ok {
				ensureOpenAICompliance(propMap)
			}
		}
	}

	if items, ok := schema[itemsKey].(map[string]any); ok {
		ensureOpenAICompliance(items)
	}

	if additionalProps, ok := schema[additionalPropertiesKey].(map[string]any); ok {
		ensureOpenAICompliance(additionalProps)
	}
}
