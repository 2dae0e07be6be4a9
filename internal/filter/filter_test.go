package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		ctx      Context
		expected bool
	}{
		{"simple equality", `kind == "advanced"`, Context{"kind": "advanced"}, true},
		{"single quoted string", `kind == 'advanced'`, Context{"kind": "advanced"}, true},
		{"simple inequality", `kind != "basic"`, Context{"kind": "advanced"}, true},
		{"number comparison is numeric", "count > 9", Context{"count": float64(10)}, true},
		{"int and float equal", "count == 3", Context{"count": 3}, true},
		{"negative literal", "offset < -1", Context{"offset": float64(-5)}, true},
		{"boolean identifier", "enabled", Context{"enabled": true}, true},
		{"boolean literal", "enabled == false", Context{"enabled": false}, true},
		{"negation", "!enabled", Context{"enabled": false}, true},
		{"null literal", "missing == null", Context{}, true},
		{"nested property", `address.city == "Oslo"`, Context{"address": map[string]any{"city": "Oslo"}}, true},
		{"deep property", `a.b.c == 1`, Context{"a": map[string]any{"b": map[string]any{"c": float64(1)}}}, true},
		{"property of missing object", `a.b == null`, Context{}, true},
		{"logical and", `kind == "x" && count >= 2`, Context{"kind": "x", "count": float64(2)}, true},
		{"logical or", `kind == "y" || count <= 2`, Context{"kind": "x", "count": float64(2)}, true},
		{"parentheses", `(kind == "y" || kind == "x") && !hidden`, Context{"kind": "x"}, true},
		{"contains string", `tags contains "urgent"`, Context{"tags": "urgent,important"}, true},
		{"contains list", `tags contains "b"`, Context{"tags": []any{"a", "b"}}, true},
		{"contains list miss", `tags contains "z"`, Context{"tags": []any{"a", "b"}}, false},
		{"empty string is falsy", "name", Context{"name": ""}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Eval(tc.expr, tc.ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	expr, err := Parse("   ")
	require.NoError(t, err)
	assert.Nil(t, expr)

	ok, err := Eval("", nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParse_Errors(t *testing.T) {
	for _, expr := range []string{
		`kind ==`,
		`(kind == "x"`,
		`kind == "x" extra`,
		`a.`,
		`- "x"`,
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := Parse(expr)
			assert.Error(t, err)
		})
	}
}

func TestShortCircuit(t *testing.T) {
	expr, err := Parse(`false && missing.deep == 1`)
	require.NoError(t, err)

	v, err := expr.Evaluate(Context{})
	require.NoError(t, err)
	assert.Equal(t, false, v)
}
