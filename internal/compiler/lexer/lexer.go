// Package lexer provides lexical analysis for JavaScript configuration modules.
// It tokenizes source text into a stream of tokens for the parser, keeping the
// byte span of every token so later stages can splice the original text.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// Lexer tokenizes JavaScript source code.
//
// Thread Safety: Lexer instances are NOT thread-safe. Each goroutine must
// create its own Lexer instance via New().
type Lexer struct {
	source    string     // Source code to tokenize
	start     int        // Start position of current token
	current   int        // Current position in source
	line      int        // Current line number (1-indexed)
	lineStart int        // Byte offset where the current line begins
	tokens    []Token    // Collected tokens
	errors    []LexError // Collected errors

	tokenLine     int  // Line of the token being scanned
	tokenColumn   int  // Column of the token being scanned
	newlineBefore bool // A line terminator was skipped since the last token

	// braceDepth tracks open braces inside each active template
	// substitution so that the closing } can resume the template.
	braceDepth []int
}

// New creates a new Lexer for the given source code
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		tokens: make([]Token, 0),
		errors: make([]LexError, 0),
	}
}

// ScanTokens tokenizes the entire source and returns tokens and errors.
// Scanning stops at the first error because the rest of the stream cannot be
// trusted once a string, comment or template is malformed.
func (l *Lexer) ScanTokens() ([]Token, []LexError) {
	l.skipHashbang()

	for len(l.errors) == 0 {
		l.skipTrivia()
		if l.isAtEnd() || len(l.errors) > 0 {
			break
		}
		l.start = l.current
		l.tokenLine = l.line
		l.tokenColumn = l.current - l.lineStart + 1
		l.scanToken()
	}

	if len(l.errors) == 0 && len(l.braceDepth) > 0 {
		l.addError("Unterminated template literal")
	}

	l.tokens = append(l.tokens, Token{
		Type:          TOKEN_EOF,
		Start:         len(l.source),
		End:           len(l.source),
		Line:          l.line,
		Column:        l.current - l.lineStart + 1,
		NewlineBefore: l.newlineBefore,
	})

	return l.tokens, l.errors
}

// scanToken dispatches on the first character of the next token.
func (l *Lexer) scanToken() {
	c := l.peek()

	switch {
	case c == '`':
		l.advance()
		l.template(TOKEN_TEMPLATE, TOKEN_TEMPLATE_HEAD)
	case c == '}' && len(l.braceDepth) > 0 && l.braceDepth[len(l.braceDepth)-1] == 0:
		l.braceDepth = l.braceDepth[:len(l.braceDepth)-1]
		l.advance()
		l.template(TOKEN_TEMPLATE_TAIL, TOKEN_TEMPLATE_MIDDLE)
	case c == '"' || c == '\'':
		l.string(c)
	case isDigit(c) || (c == '.' && isDigit(l.peekNext())):
		l.number()
	case c == '#':
		l.privateName()
	case c == '/' && l.regexAllowed():
		l.regexp()
	case c == '\\' || c >= utf8.RuneSelf || isASCIIIdentStart(c):
		l.identifier()
	default:
		l.punctuator()
	}
}

// skipHashbang skips a #! line at the very start of the file, after an
// optional byte order mark.
func (l *Lexer) skipHashbang() {
	if strings.HasPrefix(l.source, "\ufeff") {
		l.current = len("\ufeff")
		l.lineStart = l.current
	}
	if strings.HasPrefix(l.source[l.current:], "#!") {
		for !l.isAtEnd() && !l.atLineTerminator() {
			l.current++
		}
	}
}

// skipTrivia consumes whitespace, line terminators and comments.
func (l *Lexer) skipTrivia() {
	for !l.isAtEnd() {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\v' || c == '\f':
			l.current++
		case c == '\n' || c == '\r':
			l.newline()
		case c == '/' && l.peekNext() == '/':
			l.lineComment()
		case c == '/' && l.peekNext() == '*':
			l.blockComment()
			if len(l.errors) > 0 {
				return
			}
		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRuneInString(l.source[l.current:])
			switch {
			case r == '\u2028' || r == '\u2029':
				l.current += size
				l.markNewline()
			case r == '\uFEFF' || r == '\u00A0' || unicode.Is(unicode.Zs, r):
				l.current += size
			default:
				return
			}
		default:
			return
		}
	}
}

// lineComment skips a // comment up to (not including) the line terminator
func (l *Lexer) lineComment() {
	for !l.isAtEnd() && !l.atLineTerminator() {
		l.current++
	}
}

// blockComment skips a /* */ comment, tracking the lines it spans
func (l *Lexer) blockComment() {
	startLine := l.line
	startColumn := l.current - l.lineStart + 1
	l.current += 2

	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.current += 2
			return
		}
		if l.atLineTerminator() {
			l.newline()
			continue
		}
		l.current++
	}

	l.errors = append(l.errors, LexError{
		Message: "Unterminated comment",
		Line:    startLine,
		Column:  startColumn,
		Lexeme:  "/*",
	})
}

// template scans the body of a template literal after its opening ` or }.
// It emits whole when the closing backtick is found and open when a
// substitution starts.
func (l *Lexer) template(whole, open TokenType) {
	for !l.isAtEnd() {
		c := l.peek()
		switch {
		case c == '`':
			l.advance()
			l.addToken(whole)
			return
		case c == '$' && l.peekNext() == '{':
			l.current += 2
			l.braceDepth = append(l.braceDepth, 0)
			l.addToken(open)
			return
		case c == '\\':
			l.advance()
			if l.atLineTerminator() {
				l.newline()
			} else if !l.isAtEnd() {
				l.advanceRune()
			}
		case c == '\n' || c == '\r':
			l.newline()
		default:
			l.advanceRune()
		}
	}
	l.addError("Unterminated template literal")
}

// string scans a quoted string literal and cooks its escape sequences
func (l *Lexer) string(quote byte) {
	l.advance() // opening quote
	var value strings.Builder

	for {
		if l.isAtEnd() || l.peek() == '\n' || l.peek() == '\r' {
			l.addError("Unterminated string literal")
			return
		}
		c := l.peek()
		if c == quote {
			l.advance()
			break
		}
		if c == '\\' {
			l.advance()
			if !l.escape(&value) {
				return
			}
			continue
		}
		value.WriteByte(l.advance())
	}

	l.addTokenWithLiteral(TOKEN_STRING, value.String())
}

// escape decodes one escape sequence after the backslash. It returns false
// when an error was recorded.
func (l *Lexer) escape(value *strings.Builder) bool {
	if l.isAtEnd() {
		l.addError("Unterminated string literal")
		return false
	}

	c := l.peek()
	switch c {
	case 'n':
		value.WriteByte('\n')
	case 't':
		value.WriteByte('\t')
	case 'r':
		value.WriteByte('\r')
	case 'b':
		value.WriteByte('\b')
	case 'f':
		value.WriteByte('\f')
	case 'v':
		value.WriteByte('\v')
	case '0':
		if isDigit(l.peekNext()) {
			// Legacy octal escape; keep the digits as written.
			value.WriteByte('0')
		} else {
			value.WriteByte(0)
		}
	case '\n', '\r':
		// Line continuation contributes nothing to the value.
		l.newline()
		return true
	case 'x':
		l.advance()
		r, ok := l.hexDigits(2)
		if !ok {
			l.addError("Invalid hexadecimal escape sequence")
			return false
		}
		value.WriteRune(r)
		return true
	case 'u':
		l.advance()
		r, ok := l.unicodeEscape()
		if !ok {
			l.addError("Invalid Unicode escape sequence")
			return false
		}
		value.WriteRune(r)
		return true
	default:
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(l.source[l.current:])
			l.current += size
			if r == '\u2028' || r == '\u2029' {
				l.markNewline()
				return true
			}
			value.WriteRune(r)
			return true
		}
		value.WriteByte(c)
	}

	l.advance()
	return true
}

// unicodeEscape decodes the body of a \u escape (after the 'u'), combining
// surrogate pairs written as two consecutive escapes.
func (l *Lexer) unicodeEscape() (rune, bool) {
	var r rune
	if l.peek() == '{' {
		l.advance()
		end := strings.IndexByte(l.source[l.current:], '}')
		if end <= 0 {
			return 0, false
		}
		v, err := strconv.ParseUint(l.source[l.current:l.current+end], 16, 32)
		if err != nil || v > unicode.MaxRune {
			return 0, false
		}
		l.current += end + 1
		return rune(v), true
	}

	r, ok := l.hexDigits(4)
	if !ok {
		return 0, false
	}

	if utf16.IsSurrogate(r) && l.peek() == '\\' && l.peekNext() == 'u' {
		save := l.current
		l.current += 2
		if low, ok := l.hexDigits(4); ok {
			if combined := utf16.DecodeRune(r, low); combined != unicode.ReplacementChar {
				return combined, true
			}
		}
		l.current = save
	}

	return r, true
}

// hexDigits consumes exactly n hex digits and returns their value
func (l *Lexer) hexDigits(n int) (rune, bool) {
	if l.current+n > len(l.source) {
		return 0, false
	}
	v, err := strconv.ParseUint(l.source[l.current:l.current+n], 16, 32)
	if err != nil {
		return 0, false
	}
	l.current += n
	return rune(v), true
}

// number handles numeric literals: decimal, hex, octal, binary, bigint and
// numeric separators
func (l *Lexer) number() {
	if radixDigit := radixDigits(l.peek(), l.peekNext()); radixDigit != nil {
		l.current += 2
		if !l.digits(radixDigit) {
			l.addError("Invalid number: expected digits after radix prefix")
			return
		}
	} else {
		l.digits(isDigit)
		if l.peek() == '.' {
			l.advance()
			l.digits(isDigit)
		}
		if l.peek() == 'e' || l.peek() == 'E' {
			l.advance()
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
			if !l.digits(isDigit) {
				l.addError("Invalid number: expected digits after exponent")
				return
			}
		}
	}

	tokenType := TOKEN_NUMBER
	if l.peek() == 'n' {
		l.advance()
		tokenType = TOKEN_BIGINT
	}

	if !l.isAtEnd() && (isASCIIIdentStart(l.peek()) || isDigit(l.peek())) {
		l.addError("Identifier starts immediately after numeric literal")
		return
	}

	cleaned := strings.ReplaceAll(l.source[l.start:l.current], "_", "")
	l.addTokenWithLiteral(tokenType, cleaned)
}

// digits consumes a run of digits accepted by valid, allowing separators.
// It reports whether at least one digit was consumed.
func (l *Lexer) digits(valid func(byte) bool) bool {
	consumed := false
	for !l.isAtEnd() {
		c := l.peek()
		if valid(c) {
			consumed = true
			l.advance()
			continue
		}
		if c == '_' && consumed && valid(l.peekNext()) {
			l.advance()
			continue
		}
		break
	}
	return consumed
}

// privateName handles #name in class bodies
func (l *Lexer) privateName() {
	l.advance()
	if l.isAtEnd() || !l.identStartAt(l.current) {
		l.addError("Unexpected character: '#'")
		return
	}
	l.identifierChars()
	l.addToken(TOKEN_PRIVATE_NAME)
}

// identifier handles identifiers and reserved words
func (l *Lexer) identifier() {
	if !l.identStartAt(l.current) {
		r, _ := utf8.DecodeRuneInString(l.source[l.current:])
		l.addError(fmt.Sprintf("Unexpected character: '%c'", r))
		return
	}
	l.identifierChars()

	if l.current == l.start {
		return
	}

	text := l.source[l.start:l.current]
	if Keywords[text] {
		l.addToken(TOKEN_KEYWORD)
		return
	}
	l.addToken(TOKEN_IDENTIFIER)
}

// identifierChars consumes identifier characters, including \u escapes
func (l *Lexer) identifierChars() {
	for !l.isAtEnd() {
		c := l.peek()
		if c == '\\' {
			if l.peekNext() != 'u' {
				l.addError("Invalid escape in identifier")
				return
			}
			l.current += 2
			if _, ok := l.unicodeEscape(); !ok {
				l.addError("Invalid Unicode escape sequence")
				return
			}
			continue
		}
		if c < utf8.RuneSelf {
			if !isASCIIIdentPart(c) {
				return
			}
			l.current++
			continue
		}
		r, size := utf8.DecodeRuneInString(l.source[l.current:])
		if !isIdentPartRune(r) {
			return
		}
		l.current += size
	}
}

// regexp scans a regular expression literal including its flags
func (l *Lexer) regexp() {
	l.advance() // opening /
	inClass := false

	for {
		if l.isAtEnd() || l.atLineTerminator() {
			l.addError("Unterminated regular expression")
			return
		}
		c := l.advance()
		switch {
		case c == '\\':
			if l.isAtEnd() || l.atLineTerminator() {
				l.addError("Unterminated regular expression")
				return
			}
			l.advanceRune()
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			for !l.isAtEnd() && isASCIIIdentPart(l.peek()) {
				l.advance()
			}
			l.addToken(TOKEN_REGEXP)
			return
		}
	}
}

// punctuator takes the longest operator or delimiter at the current position
func (l *Lexer) punctuator() {
	rest := l.source[l.current:]
	for _, p := range punctuators {
		if !strings.HasPrefix(rest, p) {
			continue
		}
		// a?.5:b is a conditional, not optional chaining
		if p == "?." && len(rest) > 2 && isDigit(rest[2]) {
			continue
		}
		l.current += len(p)
		l.trackBraces(p)
		l.addToken(TOKEN_PUNCTUATOR)
		return
	}

	r, size := utf8.DecodeRuneInString(rest)
	l.current += size
	l.addError(fmt.Sprintf("Unexpected character: '%c'", r))
}

// trackBraces keeps the brace counter of the innermost template
// substitution in sync
func (l *Lexer) trackBraces(p string) {
	if len(l.braceDepth) == 0 {
		return
	}
	top := len(l.braceDepth) - 1
	switch p {
	case "{":
		l.braceDepth[top]++
	case "}":
		l.braceDepth[top]--
	}
}

// regexAllowed decides whether a / starts a regular expression by looking
// at the previous significant token.
func (l *Lexer) regexAllowed() bool {
	if len(l.tokens) == 0 {
		return true
	}
	prev := l.tokens[len(l.tokens)-1]
	switch prev.Type {
	case TOKEN_IDENTIFIER, TOKEN_PRIVATE_NAME, TOKEN_NUMBER, TOKEN_BIGINT,
		TOKEN_STRING, TOKEN_REGEXP, TOKEN_TEMPLATE, TOKEN_TEMPLATE_TAIL:
		return false
	case TOKEN_KEYWORD:
		switch prev.Lexeme {
		case "this", "super", "null", "true", "false":
			return false
		}
		return true
	case TOKEN_PUNCTUATOR:
		switch prev.Lexeme {
		case ")", "]", "}", "++", "--":
			return false
		}
		return true
	}
	return true
}

// Helper methods

// isAtEnd checks if we've reached the end of the source
func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

// advance consumes and returns the current byte
func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	c := l.source[l.current]
	l.current++
	return c
}

// advanceRune consumes one full UTF-8 character
func (l *Lexer) advanceRune() {
	if l.isAtEnd() {
		return
	}
	if l.source[l.current] < utf8.RuneSelf {
		l.current++
		return
	}
	_, size := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += size
}

// peek returns the current byte without consuming it
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

// peekNext returns the next byte without consuming
func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

// atLineTerminator reports whether the current character ends a line
func (l *Lexer) atLineTerminator() bool {
	c := l.peek()
	if c == '\n' || c == '\r' {
		return true
	}
	if c == 0xE2 && strings.HasPrefix(l.source[l.current:], "\u2028") ||
		c == 0xE2 && strings.HasPrefix(l.source[l.current:], "\u2029") {
		return true
	}
	return false
}

// newline consumes one line terminator (\r\n counts once)
func (l *Lexer) newline() {
	switch {
	case l.peek() == '\r' && l.peekNext() == '\n':
		l.current += 2
	case l.peek() == '\n' || l.peek() == '\r':
		l.current++
	default:
		_, size := utf8.DecodeRuneInString(l.source[l.current:])
		l.current += size
	}
	l.markNewline()
}

// markNewline records that a line ended at the current position
func (l *Lexer) markNewline() {
	l.line++
	l.lineStart = l.current
	l.newlineBefore = true
}

// identStartAt reports whether an identifier can start at offset i
func (l *Lexer) identStartAt(i int) bool {
	if i >= len(l.source) {
		return false
	}
	c := l.source[i]
	if c == '\\' {
		return i+1 < len(l.source) && l.source[i+1] == 'u'
	}
	if c < utf8.RuneSelf {
		return isASCIIIdentStart(c)
	}
	r, _ := utf8.DecodeRuneInString(l.source[i:])
	return unicode.IsLetter(r) || unicode.Is(unicode.Nl, r)
}

// addToken adds a token with the current lexeme
func (l *Lexer) addToken(tokenType TokenType) {
	l.addTokenWithLiteral(tokenType, nil)
}

// addTokenWithLiteral adds a token with a literal value
func (l *Lexer) addTokenWithLiteral(tokenType TokenType, literal interface{}) {
	l.tokens = append(l.tokens, Token{
		Type:          tokenType,
		Lexeme:        l.source[l.start:l.current],
		Literal:       literal,
		Start:         l.start,
		End:           l.current,
		Line:          l.tokenLine,
		Column:        l.tokenColumn,
		NewlineBefore: l.newlineBefore,
	})
	l.newlineBefore = false
}

// addError records a lexical error at the start of the current token
func (l *Lexer) addError(message string) {
	lexeme := ""
	if l.start < len(l.source) {
		end := l.current
		if end > l.start+20 {
			end = l.start + 20
		}
		if end > len(l.source) {
			end = len(l.source)
		}
		lexeme = l.source[l.start:end]
	}

	l.errors = append(l.errors, LexError{
		Message: message,
		Line:    l.tokenLine,
		Column:  l.tokenColumn,
		Offset:  l.start,
		Lexeme:  lexeme,
	})
}

// radixDigits returns the digit class for a 0x, 0o or 0b prefix, or nil
func radixDigits(first, second byte) func(byte) bool {
	if first != '0' {
		return nil
	}
	switch second {
	case 'x', 'X':
		return isHexDigit
	case 'o', 'O':
		return isOctalDigit
	case 'b', 'B':
		return isBinaryDigit
	}
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isOctalDigit(c byte) bool {
	return c >= '0' && c <= '7'
}

func isBinaryDigit(c byte) bool {
	return c == '0' || c == '1'
}

func isASCIIIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
}

func isASCIIIdentPart(c byte) bool {
	return isASCIIIdentStart(c) || isDigit(c)
}

func isIdentPartRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		unicode.In(r, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc, unicode.Nl) ||
		r == '\u200C' || r == '\u200D'
}

// IsValidIdentifier checks if a string can be used as a binding name
func IsValidIdentifier(s string) bool {
	if s == "" || IsKeyword(s) {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !(r == '$' || r == '_' || unicode.IsLetter(r)) {
				return false
			}
			continue
		}
		if !(r == '$' || isIdentPartRune(r)) {
			return false
		}
	}
	return true
}
