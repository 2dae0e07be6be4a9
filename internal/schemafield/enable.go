package schemafield

import (
	"fmt"

	"github.com/schemadesk/engine/internal/filter"
)

// Enabled reports whether a field is active for the given sibling document.
// A field without an enableWhen expression is always enabled.
func Enabled(f *Field, siblings map[string]any) (bool, error) {
	expr := f.EnableWhen()
	if expr == "" {
		return true, nil
	}
	ok, err := filter.Eval(expr, filter.Context(siblings))
	if err != nil {
		return false, fmt.Errorf("invalid enableWhen %q: %w", expr, err)
	}
	return ok, nil
}

// EnabledFields returns the ids of the object's children that are enabled
// for doc, in declaration order.
func (f *Field) EnabledFields(doc map[string]any) ([]string, error) {
	if f.kind != KindObject {
		return nil, NotObjectError{Kind: f.kind}
	}
	ids := make([]string, 0, len(f.Fields))
	for _, nf := range f.Fields {
		ok, err := Enabled(nf.Data, doc)
		if err != nil {
			return nil, err
		}
		if ok {
			ids = append(ids, nf.ID)
		}
	}
	return ids, nil
}

// ActiveDocument returns a copy of doc without the values of fields disabled
// by their enableWhen expression. Values that do not match the field kind
// are returned as they are.
func (f *Field) ActiveDocument(doc any) (any, error) {
	switch f.kind {
	case KindObject:
		obj, ok := doc.(map[string]any)
		if !ok {
			return doc, nil
		}
		ids, err := f.EnabledFields(obj)
		if err != nil {
			return nil, err
		}
		enabled := make(map[string]bool, len(ids))
		for _, id := range ids {
			enabled[id] = true
		}
		out := make(map[string]any, len(obj))
		for k, v := range obj {
			out[k] = v
		}
		for _, nf := range f.Fields {
			val, present := obj[nf.ID]
			switch {
			case !present:
			case !enabled[nf.ID]:
				delete(out, nf.ID)
			default:
				if out[nf.ID], err = nf.Data.ActiveDocument(val); err != nil {
					return nil, err
				}
			}
		}
		return out, nil

	case KindArray:
		items, ok := doc.([]any)
		if !ok || f.FieldSchema == nil {
			return doc, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			active, err := f.FieldSchema.ActiveDocument(item)
			if err != nil {
				return nil, err
			}
			out[i] = active
		}
		return out, nil
	}
	return doc, nil
}
