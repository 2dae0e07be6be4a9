package schemafield

// Config option names shared by every kind
const (
	OptColSpan      = "colSpan"
	OptEnableWhen   = "enableWhen"
	OptDefaultValue = "defaultValue"
	OptOptions      = "options"
	OptNullable     = "nullable"
	OptNeedI18n     = "needI18n"
	OptMaxLen       = "maxLen"
	OptMinLen       = "minLen"
	OptType         = "type"
)

// String input modes
const (
	StringSingleLine = "singleline"
	StringMultiLine  = "multiline"
)

// FullWidth is the column span of a field occupying a whole row
const FullWidth = 12

// defaultConfig returns a fresh copy of the kind's full default configuration.
// Callers own the returned map.
func defaultConfig(kind Kind) map[string]any {
	switch kind {
	case KindObject:
		return map[string]any{
			OptColSpan:      FullWidth,
			OptEnableWhen:   nil,
			OptNullable:     false,
			"initialExpand": true,
			"summary":       "{{_key}}",
		}
	case KindArray:
		return map[string]any{
			OptColSpan:      FullWidth,
			OptDefaultValue: []any{},
			"clearable":     false,
			OptEnableWhen:   nil,
			"initialExpand": false,
		}
	case KindString:
		return map[string]any{
			OptColSpan:      3,
			OptDefaultValue: "",
			OptEnableWhen:   nil,
			OptType:         StringSingleLine,
			OptMinLen:       1,
			OptMaxLen:       10,
			"rows":          4,
			OptNeedI18n:     false,
		}
	case KindNumber:
		return map[string]any{
			OptColSpan:      3,
			OptEnableWhen:   nil,
			OptDefaultValue: 0,
			OptMinLen:       1,
			OptMaxLen:       10,
		}
	case KindBoolean:
		return map[string]any{
			OptColSpan:      1,
			OptEnableWhen:   nil,
			OptDefaultValue: false,
		}
	case KindSelect:
		return map[string]any{
			OptColSpan:      3,
			OptEnableWhen:   nil,
			OptDefaultValue: "",
			OptOptions:      []any{},
		}
	case KindFile:
		return map[string]any{
			OptColSpan:    3,
			OptEnableWhen: nil,
		}
	default:
		return map[string]any{}
	}
}

// ConfigDefaults returns the options a newly added field of the given kind
// starts with in the editor. This is a subset of the full default configuration.
func ConfigDefaults(kind Kind) map[string]any {
	switch kind {
	case KindObject:
		return map[string]any{
			OptColSpan:      FullWidth,
			"initialExpand": true,
			"summary":       "{{_key}}",
		}
	case KindArray:
		return map[string]any{
			OptColSpan:      FullWidth,
			"initialExpand": false,
		}
	case KindString:
		return map[string]any{
			OptColSpan:      3,
			OptDefaultValue: "",
			OptType:         StringSingleLine,
			OptNeedI18n:     false,
		}
	case KindNumber:
		return map[string]any{
			OptColSpan:      3,
			OptDefaultValue: 0,
		}
	case KindBoolean:
		return map[string]any{
			OptColSpan:      1,
			OptDefaultValue: false,
		}
	case KindSelect:
		return map[string]any{
			OptColSpan:      3,
			OptOptions:      []any{},
			OptDefaultValue: "",
		}
	case KindFile:
		return map[string]any{
			OptColSpan: 3,
		}
	default:
		return map[string]any{}
	}
}
