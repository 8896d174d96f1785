package parser

import (
	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
	"github.com/fusejs/create-fuse-app/internal/compiler/errors"
	"github.com/fusejs/create-fuse-app/internal/compiler/lexer"
)

// parseImportDecl parses every static import form:
//
//	import 'side-effect'
//	import def from 'mod'
//	import * as ns from 'mod'
//	import def, { a, b as c } from 'mod'
func (p *Parser) parseImportDecl() ast.Stmt {
	start := p.advance()
	decl := &ast.ImportDecl{}

	if p.peek().Type == lexer.TOKEN_STRING {
		decl.Source = p.parseModuleSpecifier()
		p.parseImportAttributes()
		p.consumeSemicolon()
		decl.Span = p.spanFrom(start)
		return decl
	}

	bindings := true
	if tok := p.peek(); tok.Type == lexer.TOKEN_IDENTIFIER {
		p.advance()
		decl.Default = &ast.Identifier{Span: p.spanFrom(tok), Name: tok.Lexeme}
		bindings = p.match(",")
	}

	if bindings {
		switch {
		case p.check("*"):
			p.advance()
			p.expectIdent("as", "after '*' in import")
			decl.Namespace = p.parseBindingIdentifier()
		case p.check("{"):
			decl.Specifiers = p.parseImportSpecifiers()
		default:
			p.fail(p.peek(), errors.ErrExpectedToken, "Expected import bindings")
		}
	}

	p.expectIdent("from", "after import bindings")
	decl.Source = p.parseModuleSpecifier()
	p.parseImportAttributes()
	p.consumeSemicolon()
	decl.Span = p.spanFrom(start)
	return decl
}

func (p *Parser) parseImportSpecifiers() []*ast.ImportSpecifier {
	p.expect("{", "to open import specifiers")
	specs := make([]*ast.ImportSpecifier, 0)
	for !p.check("}") {
		start := p.peek()
		imported := p.parseModuleExportName()
		spec := &ast.ImportSpecifier{Imported: imported}
		if p.checkIdent("as") {
			p.advance()
			spec.Local = p.parseBindingIdentifier()
		} else {
			if start.Type != lexer.TOKEN_IDENTIFIER {
				p.fail(p.peek(), errors.ErrExpectedToken, "Expected 'as' after import name")
			}
			spec.Local = &ast.Identifier{Span: p.spanFrom(start), Name: imported}
		}
		spec.Span = p.spanFrom(start)
		specs = append(specs, spec)
		if !p.check("}") {
			p.expect(",", "between import specifiers")
		}
	}
	p.expect("}", "to close import specifiers")
	return specs
}

// parseImportAttributes skips `with { type: 'json' }` and the older
// `assert { ... }` form
func (p *Parser) parseImportAttributes() {
	next := p.peek()
	if next.Is("with") || (next.Type == lexer.TOKEN_IDENTIFIER && next.Lexeme == "assert" && !next.NewlineBefore) {
		p.advance()
		p.parseObjectLiteral()
	}
}

// parseExportDecl parses every export form
func (p *Parser) parseExportDecl() ast.Stmt {
	start := p.advance()

	switch {
	case p.match("default"):
		return p.parseExportDefault(start)

	case p.check("*"):
		p.advance()
		decl := &ast.ExportAllDecl{}
		if p.checkIdent("as") {
			p.advance()
			decl.Exported = p.parseModuleExportName()
		}
		p.expectIdent("from", "after 'export *'")
		decl.Source = p.parseModuleSpecifier()
		p.parseImportAttributes()
		p.consumeSemicolon()
		decl.Span = p.spanFrom(start)
		return decl

	case p.check("{"):
		decl := &ast.ExportNamedDecl{Specifiers: p.parseExportSpecifiers()}
		if p.checkIdent("from") {
			p.advance()
			decl.Source = p.parseModuleSpecifier()
			p.parseImportAttributes()
		}
		p.consumeSemicolon()
		decl.Span = p.spanFrom(start)
		return decl
	}

	var declaration ast.Stmt
	switch tok := p.peek(); {
	case tok.Is("var") || tok.Is("const") || p.isLetDecl():
		d := p.parseVarDecl()
		p.consumeSemicolon()
		d.Span = p.spanFrom(tok)
		declaration = d
	case tok.Is("function") || p.isAsyncFunction():
		fn := p.parseFunction(true)
		declaration = &ast.FunctionDecl{Span: fn.Span, Function: fn}
	case tok.Is("class"):
		class := p.parseClass(true)
		declaration = &ast.ClassDecl{Span: class.Span, Class: class}
	default:
		p.fail(tok, errors.ErrUnexpectedToken, "Unexpected token after 'export'")
	}
	return &ast.ExportNamedDecl{Span: p.spanFrom(start), Declaration: declaration}
}

// parseExportDefault parses what follows `export default`. Function and
// class declarations there may be anonymous and take no semicolon.
func (p *Parser) parseExportDefault(start lexer.Token) ast.Stmt {
	decl := &ast.ExportDefaultDecl{}
	switch tok := p.peek(); {
	case tok.Is("function") || p.isAsyncFunction():
		decl.Value = p.parseFunction(false)
		decl.Declaration = true
	case tok.Is("class"):
		decl.Value = p.parseClass(false)
		decl.Declaration = true
	default:
		decl.Value = p.parseAssignment()
		p.consumeSemicolon()
	}
	decl.Span = p.spanFrom(start)
	return decl
}

func (p *Parser) parseExportSpecifiers() []*ast.ExportSpecifier {
	p.expect("{", "to open export specifiers")
	specs := make([]*ast.ExportSpecifier, 0)
	for !p.check("}") {
		start := p.peek()
		local := p.parseModuleExportName()
		spec := &ast.ExportSpecifier{Local: local, Exported: local}
		if p.checkIdent("as") {
			p.advance()
			spec.Exported = p.parseModuleExportName()
		}
		spec.Span = p.spanFrom(start)
		specs = append(specs, spec)
		if !p.check("}") {
			p.expect(",", "between export specifiers")
		}
	}
	p.expect("}", "to close export specifiers")
	return specs
}

// parseModuleExportName accepts an identifier name, reserved words
// included, or a string literal
func (p *Parser) parseModuleExportName() string {
	tok := p.peek()
	switch {
	case tok.IsName():
		p.advance()
		return tok.Lexeme
	case tok.Type == lexer.TOKEN_STRING:
		p.advance()
		s, _ := tok.Literal.(string)
		return s
	}
	p.fail(tok, errors.ErrExpectedToken, "Expected export name")
	return ""
}

func (p *Parser) parseBindingIdentifier() *ast.Identifier {
	tok := p.peek()
	if tok.Type != lexer.TOKEN_IDENTIFIER {
		p.fail(tok, errors.ErrExpectedToken, "Expected identifier")
	}
	p.advance()
	return &ast.Identifier{Span: p.spanFrom(tok), Name: tok.Lexeme}
}

func (p *Parser) parseModuleSpecifier() *ast.Literal {
	tok := p.peek()
	if tok.Type != lexer.TOKEN_STRING {
		p.fail(tok, errors.ErrExpectedToken, "Expected module specifier string")
	}
	p.advance()
	return &ast.Literal{Span: p.spanFrom(tok), Kind: ast.LiteralString, Raw: tok.Lexeme, Value: tok.Literal}
}
