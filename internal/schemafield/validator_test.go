package schemafield

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookSchema(t *testing.T) *Field {
	t.Helper()

	book := NewObject()
	require.NoError(t, book.AddField("Title", "title", NewString().Setup(map[string]any{OptMaxLen: 20})))
	require.NoError(t, book.AddField("Pages", "pages", NewNumber().Setup(map[string]any{"min": 1})))
	require.NoError(t, book.AddField("Draft", "draft", NewBoolean()))
	require.NoError(t, book.AddField("Genre", "genre", NewSelect().Setup(map[string]any{
		OptOptions: []any{
			map[string]any{"label": "Fiction", "value": "fiction"},
			"poetry",
		},
	})))
	require.NoError(t, book.AddField("Cover", "cover", NewFile()))
	return NewArray(book)
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()
	schema := bookSchema(t)

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"empty list", `[]`, false},
		{"valid book", `[{"title":"Dune","pages":412,"draft":false,"genre":"fiction","cover":"covers/dune.png"}]`, false},
		{"null cover", `[{"title":"Dune","cover":null}]`, false},
		{"default genre allowed", `[{"genre":""}]`, false},
		{"title too long", `[{"title":"abcdefghijklmnopqrstuvwxyz"}]`, true},
		{"pages below minimum", `[{"pages":0}]`, true},
		{"wrong draft type", `[{"draft":"yes"}]`, true},
		{"unknown genre", `[{"genre":"horror"}]`, true},
		{"object instead of list", `{}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(schema, []byte(tt.doc))
			if tt.wantErr {
				var verr ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_DefaultDocumentIsValid(t *testing.T) {
	v := NewValidator()

	item := bookSchema(t).FieldSchema
	doc, err := item.ConfigDefaultValue()
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	// the zero page default only passes once the minimum allows it
	item.Fields[1].Data.Setup(map[string]any{"min": 0})
	assert.NoError(t, v.Validate(item, data))
}

func TestValidator_I18nString(t *testing.T) {
	v := NewValidator()
	s := NewString().Setup(map[string]any{OptNeedI18n: true})

	assert.NoError(t, v.Validate(s, []byte(`"hello"`)))
	assert.NoError(t, v.Validate(s, []byte(`{"en":"hello","nb":"hei"}`)))
	assert.Error(t, v.Validate(s, []byte(`{"en":1}`)))
}

func TestValidator_Cache(t *testing.T) {
	v := NewValidator()
	schema := DefaultSchema()

	require.NoError(t, v.Validate(schema, []byte(`[]`)))
	require.NoError(t, v.Validate(schema, []byte(`[{}]`)))
	assert.Equal(t, 1, v.CacheSize())

	v.ClearCache()
	assert.Equal(t, 0, v.CacheSize())
}

func TestValidator_InvalidJSON(t *testing.T) {
	err := NewValidator().Validate(DefaultSchema(), []byte(`[`))
	var verr ValidationError
	assert.ErrorAs(t, err, &verr)
}
