package schemafield

import (
	"encoding/json"
	"fmt"
)

type wireField struct {
	Type        Kind            `json:"type"`
	Config      map[string]any  `json:"config"`
	Fields      *[]NamedField   `json:"fields,omitempty"`
	FieldSchema json.RawMessage `json:"fieldSchema,omitempty"`
}

// MarshalJSON encodes the field in the config file format
func (f *Field) MarshalJSON() ([]byte, error) {
	w := struct {
		Type        Kind           `json:"type"`
		Config      map[string]any `json:"config"`
		Fields      *[]NamedField  `json:"fields,omitempty"`
		FieldSchema *Field         `json:"fieldSchema,omitempty"`
	}{
		Type:   f.kind,
		Config: f.Config,
	}
	if w.Config == nil {
		w.Config = map[string]any{}
	}

	switch f.kind {
	case KindObject:
		fields := f.Fields
		if fields == nil {
			fields = []NamedField{}
		}
		w.Fields = &fields
	case KindArray:
		w.FieldSchema = f.FieldSchema
	}

	return json.Marshal(w)
}

// UnmarshalJSON decodes a field. Missing config keys take the kind's defaults.
func (f *Field) UnmarshalJSON(data []byte) error {
	var w wireField
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Type.Valid() {
		return UnknownKindError{Kind: string(w.Type)}
	}

	decoded := newField(w.Type)
	decoded.Setup(w.Config)

	switch w.Type {
	case KindObject:
		if w.Fields != nil {
			decoded.Fields = *w.Fields
		}
	case KindArray:
		if len(w.FieldSchema) > 0 && string(w.FieldSchema) != "null" {
			var tmpl Field
			if err := json.Unmarshal(w.FieldSchema, &tmpl); err != nil {
				return fmt.Errorf("fieldSchema: %w", err)
			}
			decoded.FieldSchema = &tmpl
		}
	}

	*f = *decoded
	return nil
}

// Decode parses a config file body and validates the resulting tree
func Decode(data []byte) (*Field, error) {
	var f Field
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, MalformedSchemaError{Err: err}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Encode renders the field as indented JSON, the layout used on disk
func Encode(f *Field) ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}

// DefaultSchema is the schema given to a newly created file: a list of
// objects with no fields yet.
func DefaultSchema() *Field {
	return NewArray(NewObject())
}

// DefaultDocument returns the default data document for a root schema.
// Objects fold their children, arrays use their configured defaultValue.
func DefaultDocument(root *Field) (any, error) {
	if root == nil {
		return nil, InvariantViolationError{Reason: "schema is nil"}
	}
	switch root.kind {
	case KindObject:
		return root.ConfigDefaultValue()
	default:
		return root.DefaultValue(), nil
	}
}
