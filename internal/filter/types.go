package filter

// Operator represents a logical or comparison operator
type Operator string

const (
	OpEqual          Operator = "=="
	OpNotEqual       Operator = "!="
	OpGreaterThan    Operator = ">"
	OpLessThan       Operator = "<"
	OpGreaterOrEqual Operator = ">="
	OpLessOrEqual    Operator = "<="
	OpContains       Operator = "contains"
	OpAnd            Operator = "&&"
	OpOr             Operator = "||"
	OpNot            Operator = "!"
)

// ValueType represents the type of a literal
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeNull    ValueType = "null"
)

// Expression is the interface for all AST nodes
type Expression interface {
	Evaluate(ctx Context) (any, error)
}

// Context holds the values identifiers resolve against, usually the sibling
// fields of a document object.
type Context map[string]any

// BinaryExpression represents a binary operation (e.g., A == B)
type BinaryExpression struct {
	Left     Expression
	Operator Operator
	Right    Expression
}

// UnaryExpression represents a negation (e.g., !enabled)
type UnaryExpression struct {
	Operator Operator
	Operand  Expression
}

func (u *UnaryExpression) Evaluate(ctx Context) (any, error) {
	v, err := u.Operand.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return !Truthy(v), nil
}

// Literal represents a constant value
type Literal struct {
	Value any
	Type  ValueType
}

func (l *Literal) Evaluate(ctx Context) (any, error) {
	return l.Value, nil
}

// Identifier represents a top-level field lookup
type Identifier struct {
	Name string
}

func (i *Identifier) Evaluate(ctx Context) (any, error) {
	if val, ok := ctx[i.Name]; ok {
		return val, nil
	}
	return nil, nil // missing is null
}

// PropertyAccess represents a nested lookup (e.g., address.city)
type PropertyAccess struct {
	Object   Expression
	Property string
}

func (p *PropertyAccess) Evaluate(ctx Context) (any, error) {
	obj, err := p.Object.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	switch m := obj.(type) {
	case map[string]any:
		return m[p.Property], nil
	case Context:
		return m[p.Property], nil
	case map[string]string:
		if val, ok := m[p.Property]; ok {
			return val, nil
		}
	}
	return nil, nil
}
