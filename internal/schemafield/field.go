package schemafield

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/schemadesk/engine/internal/filter"
)

// Kind is the type tag of a schema field
type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	KindBoolean Kind = "boolean"
	KindSelect  Kind = "select"
	KindFile    Kind = "file"
)

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	switch k {
	case KindObject, KindArray, KindNumber, KindString, KindBoolean, KindSelect, KindFile:
		return true
	}
	return false
}

// NamedField is one child of an object field
type NamedField struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Data *Field `json:"data"`
}

// Field is a node of the schema tree. Fields is only meaningful for objects,
// FieldSchema only for arrays.
type Field struct {
	kind        Kind
	Config      map[string]any
	Fields      []NamedField
	FieldSchema *Field
}

func newField(kind Kind) *Field {
	return &Field{kind: kind, Config: defaultConfig(kind)}
}

// NewObject creates an object field with no children
func NewObject() *Field { return newField(KindObject) }

// NewArray creates an array field whose elements follow template.
// The template is forced to full width.
func NewArray(template *Field) *Field {
	f := newField(KindArray)
	if template == nil {
		template = NewObject()
	}
	template.Config[OptColSpan] = FullWidth
	f.FieldSchema = template
	return f
}

func NewNumber() *Field  { return newField(KindNumber) }
func NewString() *Field  { return newField(KindString) }
func NewBoolean() *Field { return newField(KindBoolean) }
func NewSelect() *Field  { return newField(KindSelect) }
func NewFile() *Field    { return newField(KindFile) }

// New creates a field of the given kind. Arrays get an empty object template.
func New(kind Kind) (*Field, error) {
	if !kind.Valid() {
		return nil, UnknownKindError{Kind: string(kind)}
	}
	if kind == KindArray {
		return NewArray(nil), nil
	}
	return newField(kind), nil
}

// Kind returns the field's type tag
func (f *Field) Kind() Kind {
	return f.kind
}

// Setup shallow-merges overrides into the configuration. Overrides win and
// unknown keys are kept as-is.
func (f *Field) Setup(overrides map[string]any) *Field {
	if f.Config == nil {
		f.Config = make(map[string]any, len(overrides))
	}
	for k, v := range overrides {
		f.Config[k] = v
	}
	return f
}

// ColSpan returns the configured column span, or 0 when it is missing or not
// an integer.
func (f *Field) ColSpan() int {
	n, ok := toInt(f.Config[OptColSpan])
	if !ok {
		return 0
	}
	return n
}

// EnableWhen returns the visibility expression, or "" when unset
func (f *Field) EnableWhen() string {
	s, _ := f.Config[OptEnableWhen].(string)
	return s
}

// AddField appends a child to an object field
func (f *Field) AddField(name, id string, data *Field) error {
	if f.kind != KindObject {
		return NotObjectError{Kind: f.kind}
	}
	if data == nil {
		return InvariantViolationError{Field: id, Reason: "child field is nil"}
	}
	for _, nf := range f.Fields {
		if nf.ID == id {
			return DuplicateFieldError{ID: id}
		}
	}
	f.Fields = append(f.Fields, NamedField{Name: name, ID: id, Data: data})
	return nil
}

// Child returns the object child with the given id
func (f *Field) Child(id string) (*Field, bool) {
	for _, nf := range f.Fields {
		if nf.ID == id {
			return nf.Data, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the field tree
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	c := &Field{
		kind:   f.kind,
		Config: cloneValue(f.Config).(map[string]any),
	}
	if len(f.Fields) > 0 {
		c.Fields = make([]NamedField, len(f.Fields))
		for i, nf := range f.Fields {
			c.Fields[i] = NamedField{Name: nf.Name, ID: nf.ID, Data: nf.Data.Clone()}
		}
	}
	c.FieldSchema = f.FieldSchema.Clone()
	return c
}

// ConfigDefaultValue derives the default document of an object field: a map
// from each direct child id to that child's default.
func (f *Field) ConfigDefaultValue() (map[string]any, error) {
	if f.kind != KindObject {
		return nil, NotObjectError{Kind: f.kind}
	}
	return f.defaultValue().(map[string]any), nil
}

// DefaultValue returns the default for any kind. Objects fold their children,
// file fields have no default and yield nil.
func (f *Field) DefaultValue() any {
	return f.defaultValue()
}

func (f *Field) defaultValue() any {
	switch f.kind {
	case KindObject:
		out := make(map[string]any, len(f.Fields))
		for _, nf := range f.Fields {
			out[nf.ID] = nf.Data.defaultValue()
		}
		return out
	case KindArray, KindString, KindNumber, KindBoolean, KindSelect:
		return cloneValue(f.Config[OptDefaultValue])
	case KindFile:
		return nil
	default:
		return nil
	}
}

// Validate checks the structural rules of the whole tree
func (f *Field) Validate() error {
	return f.validate("$")
}

func (f *Field) validate(path string) error {
	if f == nil {
		return InvariantViolationError{Field: path, Reason: "field is nil"}
	}
	if !f.kind.Valid() {
		return InvariantViolationError{Field: path, Reason: fmt.Sprintf("unknown kind %q", f.kind)}
	}

	span, ok := toInt(f.Config[OptColSpan])
	if !ok {
		return InvariantViolationError{Field: path, Reason: "colSpan must be an integer"}
	}
	if span < 1 || span > FullWidth {
		return InvariantViolationError{Field: path, Reason: fmt.Sprintf("colSpan %d out of range [1,12]", span)}
	}

	if v, present := f.Config[OptEnableWhen]; present && v != nil {
		expr, ok := v.(string)
		if !ok {
			return InvariantViolationError{Field: path, Reason: "enableWhen must be a string or null"}
		}
		if _, err := filter.Parse(expr); err != nil {
			return InvariantViolationError{Field: path, Reason: fmt.Sprintf("enableWhen: %v", err)}
		}
	}

	switch f.kind {
	case KindObject:
		seen := make(map[string]struct{}, len(f.Fields))
		for i, nf := range f.Fields {
			childPath := fmt.Sprintf("%s.fields[%d]", path, i)
			if nf.ID == "" {
				return InvariantViolationError{Field: childPath, Reason: "field id is empty"}
			}
			if _, dup := seen[nf.ID]; dup {
				return InvariantViolationError{Field: childPath, Reason: fmt.Sprintf("duplicate field id %q", nf.ID)}
			}
			seen[nf.ID] = struct{}{}
			if err := nf.Data.validate(childPath + ".data"); err != nil {
				return err
			}
		}
	case KindArray:
		if f.FieldSchema == nil {
			return InvariantViolationError{Field: path, Reason: "array has no fieldSchema"}
		}
		return f.FieldSchema.validate(path + ".fieldSchema")
	}

	return nil
}

// toInt accepts any numeric representation that holds a whole number
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// cloneValue deep-copies JSON-like values so defaults never alias config
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}
