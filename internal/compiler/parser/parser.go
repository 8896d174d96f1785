// Package parser implements a recursive descent parser for JavaScript
// configuration modules, covering the script and module goals of ES2022.
// Parsing stops at the first syntax error; config files are small and a
// partial tree is of no use to the rewriter.
package parser

import (
	"fmt"

	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
	"github.com/fusejs/create-fuse-app/internal/compiler/errors"
	"github.com/fusejs/create-fuse-app/internal/compiler/lexer"
)

// Parser transforms a stream of tokens into an Abstract Syntax Tree (AST)
type Parser struct {
	source  string
	tokens  []lexer.Token
	current int

	// function context for yield, await and return
	inFunction  bool
	inAsync     bool
	inGenerator bool

	// noIn suppresses `in` as a binary operator inside a for-loop head
	noIn bool
}

// bailout carries the first syntax error out of the descent
type bailout struct {
	err *errors.CompilerError
}

// New creates a parser for the given source
func New(source string) *Parser {
	return &Parser{source: source}
}

// ParseModule parses a config file. The module kind is ESModule when
// isModuleSyntax is set or the source contains an import or export
// declaration, and CommonJS otherwise.
func ParseModule(source string, isModuleSyntax bool) (*ast.Module, error) {
	mod, err := New(source).Parse()
	if err != nil {
		return nil, err
	}
	if isModuleSyntax {
		mod.Kind = ast.ESModule
	}
	return mod, nil
}

// ParseExpression parses source consisting of exactly one expression, such
// as the body of a JSON-with-comments file.
func ParseExpression(source string) (ast.Expr, error) {
	p := New(source)
	var expr ast.Expr
	err := p.run(func() {
		expr = p.parseAssignment()
		if !p.isAtEnd() {
			p.fail(p.peek(), errors.ErrUnexpectedToken, "Unexpected token after expression")
		}
	})
	if err != nil {
		return nil, err
	}
	return expr, nil
}

// Parse parses the whole source as a module body
func (p *Parser) Parse() (*ast.Module, error) {
	mod := &ast.Module{Kind: ast.CommonJS, Source: p.source}
	err := p.run(func() {
		for !p.isAtEnd() {
			stmt := p.parseStatementListItem(true)
			switch stmt.(type) {
			case *ast.ImportDecl, *ast.ExportDefaultDecl, *ast.ExportNamedDecl, *ast.ExportAllDecl:
				mod.Kind = ast.ESModule
			}
			mod.Statements = append(mod.Statements, stmt)
		}
	})
	if err != nil {
		return nil, err
	}
	return mod, nil
}

// run tokenizes the source and runs fn, converting a bailout into an error
func (p *Parser) run(fn func()) (err error) {
	tokens, lexErrs := lexer.New(p.source).ScanTokens()
	if len(lexErrs) > 0 {
		le := lexErrs[0]
		return errors.NewSyntaxError(errors.ErrLexical,
			ast.SourceLocation{Line: le.Line, Column: le.Column}, le.Message, le.Lexeme).
			WithSource(p.source)
	}
	p.tokens = tokens
	p.current = 0

	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			err = b.err
		}
	}()
	fn()
	return nil
}

// Statements

// parseStatementListItem parses a declaration or statement. Import and
// export declarations are only accepted at the top level.
func (p *Parser) parseStatementListItem(top bool) ast.Stmt {
	tok := p.peek()
	switch {
	case tok.Is("import") && !p.peekAt(1).Is("(") && !p.peekAt(1).Is("."):
		if !top {
			p.fail(tok, errors.ErrUnexpectedToken, "Import declarations may only appear at the top level")
		}
		return p.parseImportDecl()
	case tok.Is("export"):
		if !top {
			p.fail(tok, errors.ErrUnexpectedToken, "Export declarations may only appear at the top level")
		}
		return p.parseExportDecl()
	}
	return p.parseStatement()
}

func (p *Parser) parseStatement() ast.Stmt {
	tok := p.peek()

	switch tok.Type {
	case lexer.TOKEN_PUNCTUATOR:
		switch tok.Lexeme {
		case "{":
			return p.parseBlock()
		case ";":
			p.advance()
			return &ast.EmptyStmt{Span: p.spanFrom(tok)}
		}
	case lexer.TOKEN_KEYWORD:
		switch tok.Lexeme {
		case "var", "const":
			decl := p.parseVarDecl()
			p.consumeSemicolon()
			decl.Span = p.spanFrom(tok)
			return decl
		case "function":
			fn := p.parseFunction(true)
			return &ast.FunctionDecl{Span: fn.Span, Function: fn}
		case "class":
			class := p.parseClass(true)
			return &ast.ClassDecl{Span: class.Span, Class: class}
		case "if":
			return p.parseIf()
		case "for":
			return p.parseFor()
		case "while":
			return p.parseWhile()
		case "do":
			return p.parseDoWhile()
		case "return":
			return p.parseReturn()
		case "break", "continue":
			return p.parseBranch()
		case "throw":
			return p.parseThrow()
		case "try":
			return p.parseTry()
		case "switch":
			return p.parseSwitch()
		case "with":
			return p.parseWith()
		case "debugger":
			p.advance()
			p.consumeSemicolon()
			return &ast.DebuggerStmt{Span: p.spanFrom(tok)}
		}
	case lexer.TOKEN_IDENTIFIER:
		switch {
		case p.isLetDecl():
			decl := p.parseVarDecl()
			p.consumeSemicolon()
			decl.Span = p.spanFrom(tok)
			return decl
		case p.isAsyncFunction():
			fn := p.parseFunction(true)
			return &ast.FunctionDecl{Span: fn.Span, Function: fn}
		case p.peekAt(1).Is(":"):
			p.advance()
			p.advance()
			body := p.parseStatement()
			return &ast.LabeledStmt{Span: p.spanFrom(tok), Label: tok.Lexeme, Body: body}
		}
	}

	expr := p.parseExpression()
	p.consumeSemicolon()
	return &ast.ExprStmt{Span: p.spanFrom(tok), Expr: expr}
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.expect("{", "to open block")
	block := &ast.BlockStmt{Body: make([]ast.Stmt, 0)}
	for !p.check("}") && !p.isAtEnd() {
		block.Body = append(block.Body, p.parseStatementListItem(false))
	}
	p.expect("}", "to close block")
	block.Span = p.spanFrom(start)
	return block
}

// parseVarDecl parses `var|let|const declarator, ...` without the
// terminating semicolon
func (p *Parser) parseVarDecl() *ast.VarDecl {
	kw := p.advance()
	decl := &ast.VarDecl{Kind: ast.VarKind(kw.Lexeme)}
	for {
		start := p.peek()
		target := p.parseBindingTarget()
		d := &ast.Declarator{Target: target}
		if p.match("=") {
			d.Init = p.parseAssignment()
		}
		d.Span = p.spanFrom(start)
		decl.Declarations = append(decl.Declarations, d)
		if !p.match(",") {
			break
		}
	}
	decl.Span = p.spanFrom(kw)
	return decl
}

// isLetDecl reports whether the identifier `let` starts a declaration
// rather than naming a variable
func (p *Parser) isLetDecl() bool {
	tok := p.peek()
	if tok.Type != lexer.TOKEN_IDENTIFIER || tok.Lexeme != "let" {
		return false
	}
	next := p.peekAt(1)
	return next.Type == lexer.TOKEN_IDENTIFIER || next.Is("[") || next.Is("{") ||
		(next.Type == lexer.TOKEN_KEYWORD && !next.Is("in") && !next.Is("instanceof"))
}

// isAsyncFunction reports whether the next tokens are `async function`
// on one line
func (p *Parser) isAsyncFunction() bool {
	tok := p.peek()
	next := p.peekAt(1)
	return tok.Type == lexer.TOKEN_IDENTIFIER && tok.Lexeme == "async" &&
		next.Is("function") && !next.NewlineBefore
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.advance()
	p.expect("(", "after 'if'")
	test := p.parseExpression()
	p.expect(")", "after if condition")
	stmt := &ast.IfStmt{Test: test, Consequent: p.parseStatement()}
	if p.match("else") {
		stmt.Alternate = p.parseStatement()
	}
	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.advance()
	await := false
	if p.checkIdent("await") {
		p.advance()
		await = true
	}
	p.expect("(", "after 'for'")

	var init ast.Node
	saved := p.noIn
	p.noIn = true
	switch {
	case p.check(";"):
	case p.check("var") || p.check("const") || p.isLetDecl():
		init = p.parseVarDecl()
	default:
		init = p.parseExpression()
	}
	p.noIn = saved

	if init != nil && (p.checkIdent("of") || p.check("in")) {
		of := p.advance().Lexeme == "of"
		var left ast.Node
		switch n := init.(type) {
		case *ast.VarDecl:
			if len(n.Declarations) != 1 {
				p.fail(p.previous(), errors.ErrUnexpectedToken, "Only one binding is allowed in a for-in/of head")
			}
			left = n
		case ast.Expr:
			left = p.toPattern(n)
		}
		var right ast.Expr
		if of {
			right = p.parseAssignment()
		} else {
			right = p.parseExpression()
		}
		p.expect(")", "after for-in/of head")
		body := p.parseStatement()
		return &ast.ForInStmt{Span: p.spanFrom(start), Left: left, Right: right, Body: body, Of: of, Await: await}
	}

	stmt := &ast.ForStmt{Init: init}
	p.expect(";", "after for-loop initializer")
	if !p.check(";") {
		stmt.Test = p.parseExpression()
	}
	p.expect(";", "after for-loop condition")
	if !p.check(")") {
		stmt.Update = p.parseExpression()
	}
	p.expect(")", "after for-loop clauses")
	stmt.Body = p.parseStatement()
	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.advance()
	p.expect("(", "after 'while'")
	test := p.parseExpression()
	p.expect(")", "after while condition")
	body := p.parseStatement()
	return &ast.WhileStmt{Span: p.spanFrom(start), Test: test, Body: body}
}

func (p *Parser) parseDoWhile() ast.Stmt {
	start := p.advance()
	body := p.parseStatement()
	p.expect("while", "after do-while body")
	p.expect("(", "after 'while'")
	test := p.parseExpression()
	p.expect(")", "after do-while condition")
	// a semicolon is always optional here
	p.match(";")
	return &ast.DoWhileStmt{Span: p.spanFrom(start), Body: body, Test: test}
}

func (p *Parser) parseReturn() ast.Stmt {
	// CommonJS module bodies run inside a function, so a top-level return
	// is accepted.
	start := p.advance()
	stmt := &ast.ReturnStmt{}
	if !p.atStatementEnd() {
		stmt.Value = p.parseExpression()
	}
	p.consumeSemicolon()
	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseBranch() ast.Stmt {
	start := p.advance()
	stmt := &ast.BranchStmt{Keyword: start.Lexeme}
	if next := p.peek(); next.Type == lexer.TOKEN_IDENTIFIER && !next.NewlineBefore {
		stmt.Label = p.advance().Lexeme
	}
	p.consumeSemicolon()
	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseThrow() ast.Stmt {
	start := p.advance()
	if p.peek().NewlineBefore {
		p.fail(p.peek(), errors.ErrUnexpectedToken, "Illegal newline after throw")
	}
	value := p.parseExpression()
	p.consumeSemicolon()
	return &ast.ThrowStmt{Span: p.spanFrom(start), Value: value}
}

func (p *Parser) parseTry() ast.Stmt {
	start := p.advance()
	stmt := &ast.TryStmt{Block: p.parseBlock()}
	if p.match("catch") {
		if p.match("(") {
			stmt.Param = p.parseBindingTarget()
			p.expect(")", "after catch parameter")
		}
		stmt.Handler = p.parseBlock()
	}
	if p.match("finally") {
		stmt.Finalizer = p.parseBlock()
	}
	if stmt.Handler == nil && stmt.Finalizer == nil {
		p.fail(p.peek(), errors.ErrExpectedToken, "Missing catch or finally after try")
	}
	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseSwitch() ast.Stmt {
	start := p.advance()
	p.expect("(", "after 'switch'")
	disc := p.parseExpression()
	p.expect(")", "after switch discriminant")
	p.expect("{", "to open switch body")

	stmt := &ast.SwitchStmt{Discriminant: disc}
	sawDefault := false
	for !p.check("}") && !p.isAtEnd() {
		caseTok := p.peek()
		c := &ast.SwitchCase{}
		switch {
		case p.match("case"):
			c.Test = p.parseExpression()
		case p.match("default"):
			if sawDefault {
				p.fail(caseTok, errors.ErrUnexpectedToken, "More than one default clause in switch statement")
			}
			sawDefault = true
		default:
			p.fail(caseTok, errors.ErrExpectedToken, "Expected 'case' or 'default'")
		}
		p.expect(":", "after case label")
		for !p.check("case") && !p.check("default") && !p.check("}") && !p.isAtEnd() {
			c.Body = append(c.Body, p.parseStatementListItem(false))
		}
		c.Span = p.spanFrom(caseTok)
		stmt.Cases = append(stmt.Cases, c)
	}
	p.expect("}", "to close switch body")
	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseWith() ast.Stmt {
	start := p.advance()
	p.expect("(", "after 'with'")
	obj := p.parseExpression()
	p.expect(")", "after with object")
	body := p.parseStatement()
	return &ast.WithStmt{Span: p.spanFrom(start), Object: obj, Body: body}
}

// Helper methods

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

// peekAt looks n tokens ahead, clamping at EOF
func (p *Parser) peekAt(n int) lexer.Token {
	i := p.current + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) previous() lexer.Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.current]
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

// check reports whether the next token is the given punctuator or keyword
func (p *Parser) check(text string) bool {
	return p.peek().Is(text)
}

// checkIdent reports whether the next token is the contextual keyword name
func (p *Parser) checkIdent(name string) bool {
	tok := p.peek()
	return tok.Type == lexer.TOKEN_IDENTIFIER && tok.Lexeme == name
}

func (p *Parser) match(texts ...string) bool {
	for _, text := range texts {
		if p.check(text) {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes the given punctuator or keyword or fails
func (p *Parser) expect(text, context string) lexer.Token {
	if p.check(text) {
		return p.advance()
	}
	p.fail(p.peek(), errors.ErrExpectedToken, fmt.Sprintf("Expected '%s' %s", text, context))
	return lexer.Token{}
}

// expectIdent consumes the contextual keyword name or fails
func (p *Parser) expectIdent(name, context string) lexer.Token {
	if p.checkIdent(name) {
		return p.advance()
	}
	p.fail(p.peek(), errors.ErrExpectedToken, fmt.Sprintf("Expected '%s' %s", name, context))
	return lexer.Token{}
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TOKEN_EOF
}

// atStatementEnd reports whether a statement may end before the next token
func (p *Parser) atStatementEnd() bool {
	tok := p.peek()
	return tok.Is(";") || tok.Is("}") || tok.Type == lexer.TOKEN_EOF || tok.NewlineBefore
}

// consumeSemicolon applies automatic semicolon insertion
func (p *Parser) consumeSemicolon() {
	if p.match(";") {
		return
	}
	if p.atStatementEnd() {
		return
	}
	p.fail(p.peek(), errors.ErrUnexpectedToken, fmt.Sprintf("Unexpected token '%s'", p.peek().Lexeme))
}

// spanFrom covers from the start token through the last consumed token
func (p *Parser) spanFrom(start lexer.Token) ast.Span {
	return ast.Span{Start: start.Start, End: p.previous().End, Loc: ast.TokenLocation(start)}
}

// spanFromNode covers from the start of n through the last consumed token
func (p *Parser) spanFromNode(n ast.Node) ast.Span {
	s := n.Pos()
	return ast.Span{Start: s.Start, End: p.previous().End, Loc: s.Loc}
}

// fail aborts parsing with a syntax error at tok
func (p *Parser) fail(tok lexer.Token, code errors.ErrorCode, message string) {
	if tok.Type == lexer.TOKEN_EOF {
		code = errors.ErrUnexpectedEOF
		message = "Unexpected end of input"
	}
	err := errors.NewSyntaxError(code, ast.TokenLocation(tok), message, tok.Lexeme).WithSource(p.source)
	panic(bailout{err: err})
}

// failNode aborts parsing with a syntax error at the start of n
func (p *Parser) failNode(n ast.Node, code errors.ErrorCode, message string) {
	s := n.Pos()
	near := ""
	if !s.Synthetic() && s.End <= len(p.source) {
		near = p.source[s.Start:s.End]
		if len(near) > 20 {
			near = near[:20]
		}
	}
	err := errors.NewSyntaxError(code, s.Loc, message, near).WithSource(p.source)
	panic(bailout{err: err})
}
