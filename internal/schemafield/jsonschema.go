package schemafield

import (
	"encoding/json"
	"reflect"
)

const draft = "https://json-schema.org/draft/2020-12/schema"

// JSONSchema converts the field tree into a JSON Schema document describing
// valid data files.
func (f *Field) JSONSchema() map[string]any {
	s := f.jsonSchema()
	s["$schema"] = draft
	return s
}

// MarshalJSONSchema renders JSONSchema as bytes
func (f *Field) MarshalJSONSchema() ([]byte, error) {
	return json.Marshal(f.JSONSchema())
}

func (f *Field) jsonSchema() map[string]any {
	switch f.kind {
	case KindObject:
		props := make(map[string]any, len(f.Fields))
		for _, nf := range f.Fields {
			props[nf.ID] = nf.Data.jsonSchema()
		}
		s := map[string]any{"type": "object", "properties": props}
		if nullable, _ := f.Config[OptNullable].(bool); nullable {
			s["type"] = []any{"object", "null"}
		}
		return s

	case KindArray:
		s := map[string]any{"type": "array"}
		if f.FieldSchema != nil {
			s["items"] = f.FieldSchema.jsonSchema()
		}
		return s

	case KindNumber:
		s := map[string]any{"type": "number"}
		if v, ok := toFloat(f.Config["min"]); ok {
			s["minimum"] = v
		}
		if v, ok := toFloat(f.Config["max"]); ok {
			s["maximum"] = v
		}
		return s

	case KindString:
		// minLen is an editor hint; the empty default must stay valid.
		str := map[string]any{"type": "string"}
		if n, ok := toInt(f.Config[OptMaxLen]); ok && n > 0 {
			str["maxLength"] = n
		}
		if i18n, _ := f.Config[OptNeedI18n].(bool); i18n {
			return map[string]any{
				"anyOf": []any{
					str,
					map[string]any{"type": "object", "additionalProperties": str},
				},
			}
		}
		return str

	case KindBoolean:
		return map[string]any{"type": "boolean"}

	case KindSelect:
		values := optionValues(f.Config[OptOptions])
		if len(values) == 0 {
			return map[string]any{}
		}
		if def, present := f.Config[OptDefaultValue]; present && !containsValue(values, def) {
			values = append(values, def)
		}
		return map[string]any{"enum": values}

	case KindFile:
		return map[string]any{"type": []any{"string", "null"}}

	default:
		return map[string]any{}
	}
}

// optionValues accepts plain option values or {label, value} objects
func optionValues(raw any) []any {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	values := make([]any, 0, len(list))
	for _, opt := range list {
		if m, ok := opt.(map[string]any); ok {
			if v, ok := m["value"]; ok {
				values = append(values, v)
			}
			continue
		}
		values = append(values, opt)
	}
	return values
}

func containsValue(values []any, v any) bool {
	for _, existing := range values {
		if reflect.DeepEqual(existing, v) {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
