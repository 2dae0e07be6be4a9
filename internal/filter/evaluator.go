package filter

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Evaluate evaluates a binary expression. && and || short-circuit.
func (e *BinaryExpression) Evaluate(ctx Context) (any, error) {
	left, err := e.Left.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case OpAnd:
		if !Truthy(left) {
			return false, nil
		}
		right, err := e.Right.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		return Truthy(right), nil
	case OpOr:
		if Truthy(left) {
			return true, nil
		}
		right, err := e.Right.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		return Truthy(right), nil
	}

	right, err := e.Right.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case OpEqual:
		return isEqual(left, right), nil
	case OpNotEqual:
		return !isEqual(left, right), nil
	case OpGreaterThan:
		return compare(left, right) > 0, nil
	case OpLessThan:
		return compare(left, right) < 0, nil
	case OpGreaterOrEqual:
		return compare(left, right) >= 0, nil
	case OpLessOrEqual:
		return compare(left, right) <= 0, nil
	case OpContains:
		return contains(left, right), nil
	default:
		return nil, fmt.Errorf("unknown operator: %s", e.Operator)
	}
}

// Eval parses and evaluates expr, reducing the result to a boolean.
// An empty expression is true.
func Eval(expr string, ctx Context) (bool, error) {
	parsed, err := Parse(expr)
	if err != nil {
		return false, err
	}
	if parsed == nil {
		return true, nil
	}
	v, err := parsed.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

// Truthy reduces a value to a boolean the way the editor does: null, false,
// zero, and empty strings or collections are false.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	if n, ok := toNumber(v); ok {
		return n != 0
	}
	return true
}

func isEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if na, ok := toNumber(a); ok {
		if nb, ok := toNumber(b); ok {
			return na == nb
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return ba == bb
		}
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// compare orders numbers numerically and everything else as strings
func compare(a, b any) int {
	if na, ok := toNumber(a); ok {
		if nb, ok := toNumber(b); ok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func contains(container, item any) bool {
	switch c := container.(type) {
	case nil:
		return false
	case []any:
		for _, el := range c {
			if isEqual(el, item) {
				return true
			}
		}
		return false
	case map[string]any:
		_, ok := c[fmt.Sprintf("%v", item)]
		return ok
	}
	return strings.Contains(fmt.Sprintf("%v", container), fmt.Sprintf("%v", item))
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		if n == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
