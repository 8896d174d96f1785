package parser

import (
	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
	"github.com/fusejs/create-fuse-app/internal/compiler/errors"
	"github.com/fusejs/create-fuse-app/internal/compiler/lexer"
)

// parseBindingTarget parses an identifier, object pattern or array pattern
// in a declaration or parameter list
func (p *Parser) parseBindingTarget() ast.Pattern {
	tok := p.peek()
	switch {
	case tok.Type == lexer.TOKEN_IDENTIFIER:
		p.advance()
		return &ast.Identifier{Span: p.spanFrom(tok), Name: tok.Lexeme}
	case tok.Is("{"):
		return p.parseObjectPattern()
	case tok.Is("["):
		return p.parseArrayPattern()
	}
	p.fail(tok, errors.ErrExpectedToken, "Expected identifier or destructuring pattern")
	return nil
}

// parseBindingElement parses a binding target with an optional default
func (p *Parser) parseBindingElement() ast.Pattern {
	start := p.peek()
	target := p.parseBindingTarget()
	if !p.match("=") {
		return target
	}
	def := p.parseAssignmentNoIn()
	return &ast.AssignPattern{Span: p.spanFrom(start), Target: target, Default: def}
}

func (p *Parser) parseObjectPattern() ast.Pattern {
	start := p.advance()
	pat := &ast.ObjectPattern{Properties: make([]*ast.PatternProperty, 0)}
	for !p.check("}") {
		if p.check("...") {
			restTok := p.advance()
			target := p.parseBindingTarget()
			pat.Rest = &ast.RestElement{Span: p.spanFrom(restTok), Target: target}
			break
		}

		propTok := p.peek()
		key, computed := p.parsePropertyKey(false)
		prop := &ast.PatternProperty{Key: key, Computed: computed}
		if p.match(":") {
			prop.Value = p.parseBindingElement()
		} else {
			id, ok := key.(*ast.Identifier)
			if !ok || computed || propTok.Type != lexer.TOKEN_IDENTIFIER {
				p.fail(p.peek(), errors.ErrExpectedToken, "Expected ':' in object pattern")
			}
			prop.Shorthand = true
			var value ast.Pattern = &ast.Identifier{Span: id.Span, Name: id.Name}
			if p.match("=") {
				def := p.parseAssignmentNoIn()
				value = &ast.AssignPattern{Span: p.spanFrom(propTok), Target: value, Default: def}
			}
			prop.Value = value
		}
		prop.Span = p.spanFrom(propTok)
		pat.Properties = append(pat.Properties, prop)

		if !p.check("}") {
			p.expect(",", "between object pattern properties")
		}
	}
	p.expect("}", "to close object pattern")
	pat.Span = p.spanFrom(start)
	return pat
}

func (p *Parser) parseArrayPattern() ast.Pattern {
	start := p.advance()
	pat := &ast.ArrayPattern{Elements: make([]ast.Pattern, 0)}
	for !p.check("]") {
		if p.match(",") {
			pat.Elements = append(pat.Elements, nil)
			continue
		}
		if p.check("...") {
			restTok := p.advance()
			target := p.parseBindingTarget()
			pat.Elements = append(pat.Elements, &ast.RestElement{Span: p.spanFrom(restTok), Target: target})
			break
		}
		pat.Elements = append(pat.Elements, p.parseBindingElement())
		if !p.check("]") {
			p.expect(",", "between array pattern elements")
		}
	}
	p.expect("]", "to close array pattern")
	pat.Span = p.spanFrom(start)
	return pat
}

// parseParams parses a parenthesized formal parameter list
func (p *Parser) parseParams() []ast.Pattern {
	p.expect("(", "to open parameter list")
	params := make([]ast.Pattern, 0)
	for !p.check(")") {
		if p.check("...") {
			restTok := p.advance()
			target := p.parseBindingTarget()
			params = append(params, &ast.RestElement{Span: p.spanFrom(restTok), Target: target})
			break
		}
		params = append(params, p.parseBindingElement())
		if !p.match(",") {
			break
		}
	}
	p.expect(")", "to close parameter list")
	return params
}

// toPattern reinterprets an already parsed expression as the target of a
// destructuring assignment or for-in/of head
func (p *Parser) toPattern(expr ast.Expr) ast.Pattern {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e
	case *ast.MemberExpr:
		if e.Optional {
			p.failNode(e, errors.ErrInvalidAssignmentTarget, "Invalid left-hand side in assignment")
		}
		return e
	case *ast.ParenExpr:
		switch inner := ast.Unparen(e).(type) {
		case *ast.Identifier, *ast.MemberExpr:
			return p.toPattern(inner)
		}

	case *ast.ArrayLiteral:
		pat := &ast.ArrayPattern{Span: e.Span, Elements: make([]ast.Pattern, 0, len(e.Elements))}
		for i, el := range e.Elements {
			if el == nil {
				pat.Elements = append(pat.Elements, nil)
				continue
			}
			if spread, ok := el.(*ast.SpreadElement); ok {
				if i != len(e.Elements)-1 {
					p.failNode(spread, errors.ErrInvalidAssignmentTarget, "Rest element must be last element")
				}
				pat.Elements = append(pat.Elements, &ast.RestElement{Span: spread.Span, Target: p.toPattern(spread.Argument)})
				continue
			}
			pat.Elements = append(pat.Elements, p.toElementPattern(el))
		}
		return pat

	case *ast.ObjectLiteral:
		pat := &ast.ObjectPattern{Span: e.Span, Properties: make([]*ast.PatternProperty, 0, len(e.Properties))}
		for i, prop := range e.Properties {
			switch prop.Kind {
			case ast.PropertySpread:
				if i != len(e.Properties)-1 {
					p.failNode(prop, errors.ErrInvalidAssignmentTarget, "Rest element must be last element")
				}
				pat.Rest = &ast.RestElement{Span: prop.Span, Target: p.toPattern(prop.Value)}
			case ast.PropertyInit:
				pat.Properties = append(pat.Properties, &ast.PatternProperty{
					Span:      prop.Span,
					Key:       prop.Key,
					Computed:  prop.Computed,
					Shorthand: prop.Shorthand,
					Value:     p.toElementPattern(prop.Value),
				})
			default:
				p.failNode(prop, errors.ErrInvalidAssignmentTarget, "Invalid destructuring assignment target")
			}
		}
		return pat
	}

	p.failNode(expr, errors.ErrInvalidAssignmentTarget, "Invalid left-hand side in assignment")
	return nil
}

// toElementPattern converts an element of an array or object literal,
// where `target = default` becomes a pattern with a default
func (p *Parser) toElementPattern(expr ast.Expr) ast.Pattern {
	if assign, ok := expr.(*ast.AssignExpr); ok && assign.Operator == "=" {
		return &ast.AssignPattern{Span: assign.Span, Target: assign.Target, Default: assign.Value}
	}
	return p.toPattern(expr)
}

// toSimpleTarget checks the operand of a compound assignment or update
// expression, which must be a plain name or property access
func (p *Parser) toSimpleTarget(expr ast.Expr) ast.Pattern {
	switch e := ast.Unparen(expr).(type) {
	case *ast.Identifier:
		return e
	case *ast.MemberExpr:
		if !e.Optional {
			return e
		}
	}
	p.failNode(expr, errors.ErrInvalidAssignmentTarget, "Invalid left-hand side in assignment")
	return nil
}
