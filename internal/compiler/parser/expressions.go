package parser

import (
	"fmt"

	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
	"github.com/fusejs/create-fuse-app/internal/compiler/errors"
	"github.com/fusejs/create-fuse-app/internal/compiler/lexer"
)

// binaryPrecedence gives the binding power of each binary operator.
// Exponentiation is the only right-associative entry.
var binaryPrecedence = map[string]int{
	"??": 1,
	"||": 2,
	"&&": 3,
	"|":  4,
	"^":  5,
	"&":  6,
	"==": 7, "!=": 7, "===": 7, "!==": 7,
	"<": 8, ">": 8, "<=": 8, ">=": 8, "instanceof": 8, "in": 8,
	"<<": 9, ">>": 9, ">>>": 9,
	"+": 10, "-": 10,
	"*": 11, "/": 11, "%": 11,
	"**": 12,
}

var assignmentOperators = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "<<=": true, ">>=": true, ">>>=": true, "&=": true,
	"|=": true, "^=": true, "&&=": true, "||=": true, "??=": true,
}

// parseExpression parses a comma-separated expression
func (p *Parser) parseExpression() ast.Expr {
	first := p.parseAssignment()
	if !p.check(",") {
		return first
	}
	seq := &ast.SequenceExpr{Exprs: []ast.Expr{first}}
	for p.match(",") {
		seq.Exprs = append(seq.Exprs, p.parseAssignment())
	}
	seq.Span = p.spanFromNode(first)
	return seq
}

// parseAssignment parses an AssignmentExpression, including arrow
// functions and yield
func (p *Parser) parseAssignment() ast.Expr {
	if arrow := p.tryArrowFunction(); arrow != nil {
		return arrow
	}
	if p.inGenerator && p.checkIdent("yield") {
		return p.parseYield()
	}

	left := p.parseConditional()

	op := p.peek()
	if op.Type != lexer.TOKEN_PUNCTUATOR || !assignmentOperators[op.Lexeme] {
		return left
	}

	var target ast.Pattern
	if op.Lexeme == "=" {
		target = p.toPattern(left)
	} else {
		target = p.toSimpleTarget(left)
	}
	p.advance()
	value := p.parseAssignment()
	return &ast.AssignExpr{Span: p.spanFromNode(left), Operator: op.Lexeme, Target: target, Value: value}
}

func (p *Parser) parseYield() ast.Expr {
	start := p.advance()
	y := &ast.YieldExpr{}
	next := p.peek()
	if !next.NewlineBefore {
		if next.Is("*") {
			p.advance()
			y.Delegate = true
			y.Argument = p.parseAssignment()
		} else if p.startsExpression(next) {
			y.Argument = p.parseAssignment()
		}
	}
	y.Span = p.spanFrom(start)
	return y
}

// startsExpression reports whether tok can begin an expression operand
func (p *Parser) startsExpression(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TOKEN_EOF:
		return false
	case lexer.TOKEN_PUNCTUATOR:
		switch tok.Lexeme {
		case "(", "[", "{", "+", "-", "!", "~", "++", "--", "/", "/=":
			return true
		}
		return false
	case lexer.TOKEN_KEYWORD:
		return !tok.Is("in") && !tok.Is("instanceof")
	}
	return true
}

// tryArrowFunction parses an arrow function if one starts at the current
// token, and returns nil otherwise without consuming anything
func (p *Parser) tryArrowFunction() ast.Expr {
	start := p.peek()
	async := false
	offset := 0

	if start.Type == lexer.TOKEN_IDENTIFIER && start.Lexeme == "async" {
		next := p.peekAt(1)
		if !next.NewlineBefore && (next.Type == lexer.TOKEN_IDENTIFIER || next.Is("(")) {
			async = true
			offset = 1
		}
	}

	head := p.peekAt(offset)
	switch {
	case head.Type == lexer.TOKEN_IDENTIFIER:
		arrow := p.peekAt(offset + 1)
		if !arrow.Is("=>") || arrow.NewlineBefore {
			return nil
		}
		for i := 0; i < offset; i++ {
			p.advance()
		}
		paramTok := p.advance()
		param := &ast.Identifier{Span: p.spanFrom(paramTok), Name: paramTok.Lexeme}
		p.advance() // =>
		return p.finishArrow(start, []ast.Pattern{param}, async)

	case head.Is("("):
		closing := p.matchingClose(p.current + offset)
		if closing < 0 {
			return nil
		}
		arrow := p.tokenAt(closing + 1)
		if !arrow.Is("=>") || arrow.NewlineBefore {
			return nil
		}
		for i := 0; i < offset; i++ {
			p.advance()
		}
		params := p.parseParams()
		p.expect("=>", "after arrow function parameters")
		return p.finishArrow(start, params, async)
	}
	return nil
}

func (p *Parser) finishArrow(start lexer.Token, params []ast.Pattern, async bool) ast.Expr {
	fn := &ast.ArrowFunction{Params: params, Async: async}

	savedFn, savedAsync, savedGen, savedNoIn := p.inFunction, p.inAsync, p.inGenerator, p.noIn
	p.inFunction, p.inAsync, p.inGenerator = true, async, false
	if p.check("{") {
		p.noIn = false
		fn.Body = p.parseBlock()
	} else {
		fn.Body = p.parseAssignment()
	}
	p.inFunction, p.inAsync, p.inGenerator, p.noIn = savedFn, savedAsync, savedGen, savedNoIn

	fn.Span = p.spanFrom(start)
	return fn
}

// matchingClose returns the index of the token closing the bracket at
// index open, or -1 when the brackets are unbalanced
func (p *Parser) matchingClose(open int) int {
	depth := 0
	for i := open; i < len(p.tokens); i++ {
		tok := p.tokens[i]
		switch {
		case tok.Is("(") || tok.Is("[") || tok.Is("{"):
			depth++
		case tok.Is(")") || tok.Is("]") || tok.Is("}"):
			depth--
			if depth == 0 {
				return i
			}
		case tok.Type == lexer.TOKEN_EOF:
			return -1
		}
	}
	return -1
}

func (p *Parser) tokenAt(i int) lexer.Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) parseConditional() ast.Expr {
	test := p.parseBinary(1)
	if !p.check("?") {
		return test
	}
	p.advance()
	saved := p.noIn
	p.noIn = false
	consequent := p.parseAssignment()
	p.noIn = saved
	p.expect(":", "in conditional expression")
	alternate := p.parseAssignment()
	return &ast.ConditionalExpr{
		Span:       p.spanFromNode(test),
		Test:       test,
		Consequent: consequent,
		Alternate:  alternate,
	}
}

// parseBinary implements precedence climbing over binaryPrecedence
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		op := p.peek()
		if op.Type != lexer.TOKEN_PUNCTUATOR && op.Type != lexer.TOKEN_KEYWORD {
			return left
		}
		prec, ok := binaryPrecedence[op.Lexeme]
		if !ok || prec < minPrec || (op.Lexeme == "in" && p.noIn) {
			return left
		}
		p.advance()
		var right ast.Expr
		if op.Lexeme == "**" {
			right = p.parseBinary(prec)
		} else {
			right = p.parseBinary(prec + 1)
		}
		left = &ast.BinaryExpr{Span: p.spanFromNode(left), Left: left, Operator: op.Lexeme, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	tok := p.peek()

	if tok.Type == lexer.TOKEN_PUNCTUATOR || tok.Type == lexer.TOKEN_KEYWORD {
		switch tok.Lexeme {
		case "!", "~", "+", "-", "typeof", "void", "delete":
			p.advance()
			operand := p.parseUnary()
			return &ast.UnaryExpr{Span: p.spanFrom(tok), Operator: tok.Lexeme, Operand: operand}
		case "++", "--":
			p.advance()
			operand := p.parseUnary()
			p.toSimpleTarget(operand)
			return &ast.UpdateExpr{Span: p.spanFrom(tok), Operator: tok.Lexeme, Prefix: true, Operand: operand}
		}
	}

	if p.isAwait() {
		p.advance()
		arg := p.parseUnary()
		return &ast.AwaitExpr{Span: p.spanFrom(tok), Argument: arg}
	}

	expr := p.parseLeftHandSide()
	if next := p.peek(); (next.Is("++") || next.Is("--")) && !next.NewlineBefore {
		p.toSimpleTarget(expr)
		p.advance()
		return &ast.UpdateExpr{Span: p.spanFromNode(expr), Operator: next.Lexeme, Operand: expr}
	}
	return expr
}

// isAwait reports whether `await` at the current token is an operator.
// Outside any function it is treated as top-level await when an operand
// follows on the same line.
func (p *Parser) isAwait() bool {
	if !p.checkIdent("await") {
		return false
	}
	if p.inAsync {
		return true
	}
	if p.inFunction {
		return false
	}
	next := p.peekAt(1)
	return !next.NewlineBefore && p.startsExpression(next) && !next.Is("(") && !next.Is("[") &&
		!next.Is("+") && !next.Is("-") && !next.Is("/") && !next.Is("/=")
}

// parseLeftHandSide parses member access, calls, new and tagged templates
func (p *Parser) parseLeftHandSide() ast.Expr {
	var expr ast.Expr
	if p.check("new") {
		expr = p.parseNew()
	} else {
		expr = p.parseSpecialOrPrimary()
	}
	return p.parseMemberTail(expr, true)
}

// parseSpecialOrPrimary handles super, import() and import.meta before
// falling back to primary expressions
func (p *Parser) parseSpecialOrPrimary() ast.Expr {
	tok := p.peek()
	switch {
	case tok.Is("super"):
		p.advance()
		next := p.peek()
		if !next.Is("(") && !next.Is(".") && !next.Is("[") {
			p.fail(next, errors.ErrUnexpectedToken, "'super' keyword unexpected here")
		}
		return &ast.SuperExpr{Span: p.spanFrom(tok)}
	case tok.Is("import"):
		p.advance()
		if p.match(".") {
			prop := p.expectIdent("meta", "after 'import.'")
			return &ast.MetaProperty{Span: p.spanFrom(tok), Meta: "import", Property: prop.Lexeme}
		}
		p.expect("(", "after 'import'")
		call := &ast.ImportCall{Source: p.parseAssignmentNoIn()}
		if p.match(",") && !p.check(")") {
			call.Options = p.parseAssignmentNoIn()
			p.match(",")
		}
		p.expect(")", "to close import()")
		call.Span = p.spanFrom(tok)
		return call
	}
	return p.parsePrimary()
}

func (p *Parser) parseNew() ast.Expr {
	start := p.advance()
	if p.match(".") {
		prop := p.expectIdent("target", "after 'new.'")
		return &ast.MetaProperty{Span: p.spanFrom(start), Meta: "new", Property: prop.Lexeme}
	}

	var callee ast.Expr
	if p.check("new") {
		callee = p.parseNew()
	} else {
		callee = p.parseSpecialOrPrimary()
	}
	callee = p.parseMemberTail(callee, false)

	expr := &ast.NewExpr{Callee: callee}
	if p.check("(") {
		expr.Arguments = p.parseArguments()
	}
	expr.Span = p.spanFrom(start)
	return expr
}

// parseMemberTail applies property access, calls and tagged templates to
// expr. Calls and optional chains are skipped when allowCall is false, as
// in the callee of a new expression.
func (p *Parser) parseMemberTail(expr ast.Expr, allowCall bool) ast.Expr {
	for {
		tok := p.peek()
		switch {
		case tok.Is("."):
			p.advance()
			prop := p.parseMemberName()
			expr = &ast.MemberExpr{Span: p.spanFromNode(expr), Object: expr, Property: prop}

		case tok.Is("?.") && allowCall:
			p.advance()
			switch {
			case p.check("("):
				args := p.parseArguments()
				expr = &ast.CallExpr{Span: p.spanFromNode(expr), Callee: expr, Arguments: args, Optional: true}
			case p.check("["):
				p.advance()
				prop := p.parseExpressionNoIn()
				p.expect("]", "to close computed member")
				expr = &ast.MemberExpr{Span: p.spanFromNode(expr), Object: expr, Property: prop, Computed: true, Optional: true}
			default:
				prop := p.parseMemberName()
				expr = &ast.MemberExpr{Span: p.spanFromNode(expr), Object: expr, Property: prop, Optional: true}
			}

		case tok.Is("["):
			p.advance()
			prop := p.parseExpressionNoIn()
			p.expect("]", "to close computed member")
			expr = &ast.MemberExpr{Span: p.spanFromNode(expr), Object: expr, Property: prop, Computed: true}

		case tok.Is("(") && allowCall:
			args := p.parseArguments()
			expr = &ast.CallExpr{Span: p.spanFromNode(expr), Callee: expr, Arguments: args}

		case tok.Type == lexer.TOKEN_TEMPLATE || tok.Type == lexer.TOKEN_TEMPLATE_HEAD:
			quasi := p.parseTemplate()
			expr = &ast.TaggedTemplate{Span: p.spanFromNode(expr), Tag: expr, Quasi: quasi}

		default:
			return expr
		}
	}
}

// parseMemberName parses the name after a dot, which may be a reserved
// word or a private name
func (p *Parser) parseMemberName() ast.Expr {
	tok := p.peek()
	switch {
	case tok.IsName():
		p.advance()
		return &ast.Identifier{Span: p.spanFrom(tok), Name: tok.Lexeme}
	case tok.Type == lexer.TOKEN_PRIVATE_NAME:
		p.advance()
		return &ast.PrivateName{Span: p.spanFrom(tok), Name: tok.Lexeme[1:]}
	}
	p.fail(tok, errors.ErrExpectedToken, "Expected property name after '.'")
	return nil
}

// parseArguments parses a parenthesized argument list
func (p *Parser) parseArguments() []ast.Expr {
	p.expect("(", "to open arguments")
	args := make([]ast.Expr, 0)
	for !p.check(")") {
		if p.check("...") {
			start := p.advance()
			arg := p.parseAssignmentNoIn()
			args = append(args, &ast.SpreadElement{Span: p.spanFrom(start), Argument: arg})
		} else {
			args = append(args, p.parseAssignmentNoIn())
		}
		if !p.match(",") {
			break
		}
	}
	p.expect(")", "to close arguments")
	return args
}

// parseAssignmentNoIn parses an assignment expression with `in` restored
// as an operator, for bracketed contexts inside a for-loop head
func (p *Parser) parseAssignmentNoIn() ast.Expr {
	saved := p.noIn
	p.noIn = false
	expr := p.parseAssignment()
	p.noIn = saved
	return expr
}

func (p *Parser) parseExpressionNoIn() ast.Expr {
	saved := p.noIn
	p.noIn = false
	expr := p.parseExpression()
	p.noIn = saved
	return expr
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()

	switch tok.Type {
	case lexer.TOKEN_IDENTIFIER:
		if p.isAsyncFunction() {
			return p.parseFunction(false)
		}
		p.advance()
		return &ast.Identifier{Span: p.spanFrom(tok), Name: tok.Lexeme}

	case lexer.TOKEN_STRING:
		p.advance()
		return &ast.Literal{Span: p.spanFrom(tok), Kind: ast.LiteralString, Raw: tok.Lexeme, Value: tok.Literal}

	case lexer.TOKEN_NUMBER:
		p.advance()
		return &ast.Literal{Span: p.spanFrom(tok), Kind: ast.LiteralNumber, Raw: tok.Lexeme, Value: tok.Literal}

	case lexer.TOKEN_BIGINT:
		p.advance()
		return &ast.Literal{Span: p.spanFrom(tok), Kind: ast.LiteralBigInt, Raw: tok.Lexeme, Value: tok.Literal}

	case lexer.TOKEN_REGEXP:
		p.advance()
		return &ast.Literal{Span: p.spanFrom(tok), Kind: ast.LiteralRegExp, Raw: tok.Lexeme, Value: tok.Lexeme}

	case lexer.TOKEN_TEMPLATE, lexer.TOKEN_TEMPLATE_HEAD:
		return p.parseTemplate()

	case lexer.TOKEN_PRIVATE_NAME:
		// only valid as the left operand of `in`
		p.advance()
		if !p.check("in") {
			p.fail(p.peek(), errors.ErrExpectedToken, "Expected 'in' after private name")
		}
		return &ast.PrivateName{Span: p.spanFrom(tok), Name: tok.Lexeme[1:]}

	case lexer.TOKEN_KEYWORD:
		switch tok.Lexeme {
		case "this":
			p.advance()
			return &ast.ThisExpr{Span: p.spanFrom(tok)}
		case "null":
			p.advance()
			return &ast.Literal{Span: p.spanFrom(tok), Kind: ast.LiteralNull, Raw: tok.Lexeme}
		case "true", "false":
			p.advance()
			return &ast.Literal{Span: p.spanFrom(tok), Kind: ast.LiteralBoolean, Raw: tok.Lexeme, Value: tok.Lexeme == "true"}
		case "function":
			return p.parseFunction(false)
		case "class":
			return p.parseClass(false)
		}

	case lexer.TOKEN_PUNCTUATOR:
		switch tok.Lexeme {
		case "(":
			p.advance()
			inner := p.parseExpressionNoIn()
			p.expect(")", "to close parenthesized expression")
			return &ast.ParenExpr{Span: p.spanFrom(tok), Expr: inner}
		case "[":
			return p.parseArrayLiteral()
		case "{":
			return p.parseObjectLiteral()
		}
	}

	p.fail(tok, errors.ErrUnexpectedToken, fmt.Sprintf("Unexpected token '%s'", tok.Lexeme))
	return nil
}

// parseTemplate parses a template literal from its head token through the
// tail, recording the raw text of each quasi
func (p *Parser) parseTemplate() *ast.TemplateLiteral {
	start := p.advance()
	tmpl := &ast.TemplateLiteral{}

	if start.Type == lexer.TOKEN_TEMPLATE {
		tmpl.Quasis = []string{start.Lexeme[1 : len(start.Lexeme)-1]}
		tmpl.Span = p.spanFrom(start)
		return tmpl
	}

	tmpl.Quasis = append(tmpl.Quasis, start.Lexeme[1:len(start.Lexeme)-2])
	for {
		tmpl.Exprs = append(tmpl.Exprs, p.parseExpressionNoIn())
		part := p.advance()
		switch part.Type {
		case lexer.TOKEN_TEMPLATE_MIDDLE:
			tmpl.Quasis = append(tmpl.Quasis, part.Lexeme[1:len(part.Lexeme)-2])
		case lexer.TOKEN_TEMPLATE_TAIL:
			tmpl.Quasis = append(tmpl.Quasis, part.Lexeme[1:len(part.Lexeme)-1])
			tmpl.Span = p.spanFrom(start)
			return tmpl
		default:
			p.fail(part, errors.ErrExpectedToken, "Expected '}' to close template substitution")
		}
	}
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	start := p.advance()
	arr := &ast.ArrayLiteral{Elements: make([]ast.Expr, 0)}
	for !p.check("]") {
		if p.check(",") {
			p.advance()
			arr.Elements = append(arr.Elements, nil)
			continue
		}
		if p.check("...") {
			spreadTok := p.advance()
			arg := p.parseAssignmentNoIn()
			arr.Elements = append(arr.Elements, &ast.SpreadElement{Span: p.spanFrom(spreadTok), Argument: arg})
		} else {
			arr.Elements = append(arr.Elements, p.parseAssignmentNoIn())
		}
		if !p.check("]") {
			p.expect(",", "between array elements")
		}
	}
	p.expect("]", "to close array literal")
	arr.Span = p.spanFrom(start)
	return arr
}

func (p *Parser) parseObjectLiteral() ast.Expr {
	start := p.advance()
	obj := &ast.ObjectLiteral{Properties: make([]*ast.Property, 0)}
	saved := p.noIn
	p.noIn = false
	for !p.check("}") {
		obj.Properties = append(obj.Properties, p.parseProperty())
		if !p.check("}") {
			p.expect(",", "between object properties")
		}
	}
	p.noIn = saved
	p.expect("}", "to close object literal")
	obj.Span = p.spanFrom(start)
	return obj
}

func (p *Parser) parseProperty() *ast.Property {
	start := p.peek()

	if p.match("...") {
		arg := p.parseAssignment()
		return &ast.Property{Span: p.spanFrom(start), Kind: ast.PropertySpread, Value: arg}
	}

	mods := p.parseMethodModifiers()
	key, computed := p.parsePropertyKey(false)
	prop := &ast.Property{Key: key, Computed: computed}

	switch {
	case p.check("("):
		prop.Kind = mods.kind
		if prop.Kind == ast.PropertyInit {
			prop.Kind = ast.PropertyMethod
		}
		prop.Value = p.parseMethod(start, mods)
	case mods.any():
		p.fail(p.peek(), errors.ErrExpectedToken, "Expected '(' after method name")
	case p.match(":"):
		prop.Kind = ast.PropertyInit
		prop.Value = p.parseAssignment()
	default:
		// shorthand, possibly with a default that only a destructuring
		// assignment can use
		id, ok := key.(*ast.Identifier)
		if !ok || computed || start.Type != lexer.TOKEN_IDENTIFIER {
			p.fail(p.peek(), errors.ErrExpectedToken, "Expected ':' after property name")
		}
		prop.Kind = ast.PropertyInit
		prop.Shorthand = true
		prop.Value = &ast.Identifier{Span: id.Span, Name: id.Name}
		if p.check("=") {
			p.advance()
			def := p.parseAssignment()
			prop.Value = &ast.AssignExpr{Span: p.spanFromNode(id), Operator: "=", Target: prop.Value.(*ast.Identifier), Value: def}
		}
	}
	prop.Span = p.spanFrom(start)
	return prop
}

// methodModifiers records the async, generator and accessor prefixes of
// an object or class method
type methodModifiers struct {
	kind      ast.PropertyKind
	async     bool
	generator bool
}

func (m methodModifiers) any() bool {
	return m.async || m.generator || m.kind != ast.PropertyInit
}

// parseMethodModifiers consumes get, set, async and * when they prefix a
// method name rather than being the name themselves
func (p *Parser) parseMethodModifiers() methodModifiers {
	mods := methodModifiers{kind: ast.PropertyInit}
	tok := p.peek()
	if tok.Type == lexer.TOKEN_IDENTIFIER {
		next := p.peekAt(1)
		if p.startsPropertyKey(next) || next.Is("*") {
			switch tok.Lexeme {
			case "get", "set":
				if !next.Is("*") {
					p.advance()
					mods.kind = ast.PropertyGet
					if tok.Lexeme == "set" {
						mods.kind = ast.PropertySet
					}
					return mods
				}
			case "async":
				if !next.NewlineBefore {
					p.advance()
					mods.async = true
				}
			}
		}
	}
	if p.match("*") {
		mods.generator = true
	}
	return mods
}

// startsPropertyKey reports whether tok can begin a property name
func (p *Parser) startsPropertyKey(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TOKEN_IDENTIFIER, lexer.TOKEN_KEYWORD, lexer.TOKEN_STRING,
		lexer.TOKEN_NUMBER, lexer.TOKEN_BIGINT, lexer.TOKEN_PRIVATE_NAME:
		return true
	}
	return tok.Is("[")
}

// parsePropertyKey parses a literal, identifier, computed or (in classes)
// private property name
func (p *Parser) parsePropertyKey(class bool) (ast.Expr, bool) {
	tok := p.peek()
	switch {
	case tok.IsName():
		p.advance()
		return &ast.Identifier{Span: p.spanFrom(tok), Name: tok.Lexeme}, false
	case tok.Type == lexer.TOKEN_STRING:
		p.advance()
		return &ast.Literal{Span: p.spanFrom(tok), Kind: ast.LiteralString, Raw: tok.Lexeme, Value: tok.Literal}, false
	case tok.Type == lexer.TOKEN_NUMBER:
		p.advance()
		return &ast.Literal{Span: p.spanFrom(tok), Kind: ast.LiteralNumber, Raw: tok.Lexeme, Value: tok.Literal}, false
	case tok.Type == lexer.TOKEN_BIGINT:
		p.advance()
		return &ast.Literal{Span: p.spanFrom(tok), Kind: ast.LiteralBigInt, Raw: tok.Lexeme, Value: tok.Literal}, false
	case tok.Type == lexer.TOKEN_PRIVATE_NAME && class:
		p.advance()
		return &ast.PrivateName{Span: p.spanFrom(tok), Name: tok.Lexeme[1:]}, false
	case tok.Is("["):
		p.advance()
		key := p.parseAssignmentNoIn()
		p.expect("]", "to close computed property name")
		return key, true
	}
	p.fail(tok, errors.ErrExpectedToken, "Expected property name")
	return nil, false
}

// parseMethod parses the parameter list and body of a method whose name
// has been consumed
func (p *Parser) parseMethod(start lexer.Token, mods methodModifiers) *ast.FunctionExpr {
	fn := &ast.FunctionExpr{Async: mods.async, Generator: mods.generator}
	p.parseFunctionRest(fn)
	fn.Span = p.spanFrom(start)
	return fn
}

// parseFunction parses a function declaration or expression starting at
// `function` or `async function`
func (p *Parser) parseFunction(declaration bool) *ast.FunctionExpr {
	start := p.peek()
	fn := &ast.FunctionExpr{}
	if p.checkIdent("async") {
		p.advance()
		fn.Async = true
	}
	p.expect("function", "to start function")
	if p.match("*") {
		fn.Generator = true
	}
	if tok := p.peek(); tok.Type == lexer.TOKEN_IDENTIFIER {
		p.advance()
		fn.Name = &ast.Identifier{Span: p.spanFrom(tok), Name: tok.Lexeme}
	} else if declaration {
		p.fail(tok, errors.ErrExpectedToken, "Expected function name")
	}
	p.parseFunctionRest(fn)
	fn.Span = p.spanFrom(start)
	return fn
}

// parseFunctionRest parses parameters and body into fn
func (p *Parser) parseFunctionRest(fn *ast.FunctionExpr) {
	savedFn, savedAsync, savedGen, savedNoIn := p.inFunction, p.inAsync, p.inGenerator, p.noIn
	p.inFunction, p.inAsync, p.inGenerator, p.noIn = true, fn.Async, fn.Generator, false
	fn.Params = p.parseParams()
	fn.Body = p.parseBlock()
	p.inFunction, p.inAsync, p.inGenerator, p.noIn = savedFn, savedAsync, savedGen, savedNoIn
}

// parseClass parses a class declaration or expression
func (p *Parser) parseClass(declaration bool) *ast.ClassExpr {
	start := p.advance()
	class := &ast.ClassExpr{}
	if tok := p.peek(); tok.Type == lexer.TOKEN_IDENTIFIER {
		p.advance()
		class.Name = &ast.Identifier{Span: p.spanFrom(tok), Name: tok.Lexeme}
	} else if declaration {
		p.fail(tok, errors.ErrExpectedToken, "Expected class name")
	}
	if p.match("extends") {
		class.SuperClass = p.parseLeftHandSide()
	}

	p.expect("{", "to open class body")
	for !p.check("}") && !p.isAtEnd() {
		if p.match(";") {
			continue
		}
		class.Members = append(class.Members, p.parseClassMember())
	}
	p.expect("}", "to close class body")
	class.Span = p.spanFrom(start)
	return class
}

func (p *Parser) parseClassMember() *ast.ClassMember {
	start := p.peek()
	member := &ast.ClassMember{Kind: ast.PropertyInit}

	if p.checkIdent("static") {
		next := p.peekAt(1)
		switch {
		case next.Is("{"):
			p.advance()
			savedFn, savedAsync, savedGen := p.inFunction, p.inAsync, p.inGenerator
			p.inFunction, p.inAsync, p.inGenerator = true, false, false
			member.Static = true
			member.Block = p.parseBlock()
			p.inFunction, p.inAsync, p.inGenerator = savedFn, savedAsync, savedGen
			member.Span = p.spanFrom(start)
			return member
		case p.startsPropertyKey(next) || next.Is("*"):
			p.advance()
			member.Static = true
		}
	}

	mods := p.parseMethodModifiers()
	member.Key, member.Computed = p.parsePropertyKey(true)

	if p.check("(") {
		member.Kind = mods.kind
		if member.Kind == ast.PropertyInit {
			member.Kind = ast.PropertyMethod
		}
		member.Value = p.parseMethod(start, mods)
		member.Span = p.spanFrom(start)
		return member
	}
	if mods.any() {
		p.fail(p.peek(), errors.ErrExpectedToken, "Expected '(' after method name")
	}

	// field
	if p.match("=") {
		savedFn, savedAsync, savedGen := p.inFunction, p.inAsync, p.inGenerator
		p.inFunction, p.inAsync, p.inGenerator = true, false, false
		member.Value = p.parseAssignmentNoIn()
		p.inFunction, p.inAsync, p.inGenerator = savedFn, savedAsync, savedGen
	}
	p.consumeSemicolon()
	member.Span = p.spanFrom(start)
	return member
}
