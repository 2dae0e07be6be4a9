package filter

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// tokOperator marks a two-character operator; it must not collide with
// scanner.EOF.
const tokOperator = -100

// Parse parses an expression string. An empty or blank expression yields a
// nil Expression and no error.
func Parse(expr string) (Expression, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	var s scanner.Scanner
	s.Init(strings.NewReader(expr))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings | scanner.ScanChars
	s.Error = func(s *scanner.Scanner, msg string) {}

	p := &parser{s: &s}
	p.next()

	res, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.tok != scanner.EOF {
		return nil, fmt.Errorf("unexpected token at end of expression: %s", p.lit)
	}

	return res, nil
}

type parser struct {
	s   *scanner.Scanner
	tok rune
	lit string
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.lit = p.s.TokenText()

	pairs := map[rune]rune{'=': '=', '!': '=', '<': '=', '>': '=', '&': '&', '|': '|'}
	if second, ok := pairs[p.tok]; ok && p.s.Peek() == second {
		p.s.Next()
		p.lit = string(p.tok) + string(second)
		p.tok = tokOperator
	}
}

func (p *parser) parseOr() (Expression, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.lit == string(OpOr) {
		p.next()
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = &BinaryExpression{Left: lhs, Operator: OpOr, Right: rhs}
	}

	return lhs, nil
}

func (p *parser) parseAnd() (Expression, error) {
	lhs, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for p.lit == string(OpAnd) {
		p.next()
		rhs, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		lhs = &BinaryExpression{Left: lhs, Operator: OpAnd, Right: rhs}
	}

	return lhs, nil
}

func (p *parser) parseComparison() (Expression, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	switch Operator(p.lit) {
	case OpEqual, OpNotEqual, OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual, OpContains:
		op := Operator(p.lit)
		p.next()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &BinaryExpression{Left: lhs, Operator: op, Right: rhs}, nil
	}

	return lhs, nil
}

func (p *parser) parseUnary() (Expression, error) {
	if p.tok == '!' {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpression{Operator: OpNot, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expression, error) {
	switch p.tok {
	case scanner.Ident:
		switch p.lit {
		case "true", "false":
			v := p.lit == "true"
			p.next()
			return &Literal{Value: v, Type: TypeBoolean}, nil
		case "null":
			p.next()
			return &Literal{Value: nil, Type: TypeNull}, nil
		}
		var expr Expression = &Identifier{Name: p.lit}
		p.next()
		for p.tok == '.' {
			p.next()
			if p.tok != scanner.Ident {
				return nil, fmt.Errorf("expected identifier after dot")
			}
			expr = &PropertyAccess{Object: expr, Property: p.lit}
			p.next()
		}
		return expr, nil

	case scanner.String:
		val, err := strconv.Unquote(p.lit)
		if err != nil {
			return nil, fmt.Errorf("invalid string literal %s", p.lit)
		}
		p.next()
		return &Literal{Value: val, Type: TypeString}, nil

	case scanner.Char:
		val := strings.TrimSuffix(strings.TrimPrefix(p.lit, "'"), "'")
		p.next()
		return &Literal{Value: val, Type: TypeString}, nil

	case scanner.Int, scanner.Float:
		return p.number(false)

	case '-':
		p.next()
		if p.tok != scanner.Int && p.tok != scanner.Float {
			return nil, fmt.Errorf("expected number after '-'")
		}
		return p.number(true)

	case '(':
		p.next()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok != ')' {
			return nil, fmt.Errorf("expected closing parenthesis")
		}
		p.next()
		return expr, nil

	case scanner.EOF:
		return nil, fmt.Errorf("unexpected end of expression")

	default:
		return nil, fmt.Errorf("unexpected token: %s", p.lit)
	}
}

func (p *parser) number(negative bool) (Expression, error) {
	v, err := strconv.ParseFloat(p.lit, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %s: %w", p.lit, err)
	}
	if negative {
		v = -v
	}
	p.next()
	return &Literal{Value: v, Type: TypeNumber}, nil
}
