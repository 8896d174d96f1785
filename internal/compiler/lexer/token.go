package lexer

import "fmt"

// TokenType represents the type of a token in JavaScript source
type TokenType int

const (
	// TOKEN_EOF marks the end of the token stream.
	TOKEN_EOF TokenType = iota
	// TOKEN_IDENTIFIER is any identifier name that is not a reserved word.
	// Contextual keywords (let, async, of, get, set, static, as, from) are
	// identifiers; the parser decides their meaning.
	TOKEN_IDENTIFIER
	// TOKEN_KEYWORD is a reserved word (function, return, export, ...).
	TOKEN_KEYWORD
	// TOKEN_PRIVATE_NAME is a class private name such as #count.
	TOKEN_PRIVATE_NAME

	// Literals
	TOKEN_NUMBER // 42, 0x1f, 1_000, .5, 1e3
	TOKEN_BIGINT // 10n
	TOKEN_STRING // 'single' or "double"
	TOKEN_REGEXP // /pattern/flags

	// Template literals
	TOKEN_TEMPLATE        // `no substitutions`
	TOKEN_TEMPLATE_HEAD   // `head ${
	TOKEN_TEMPLATE_MIDDLE // } middle ${
	TOKEN_TEMPLATE_TAIL   // } tail`

	// TOKEN_PUNCTUATOR covers operators and delimiters; the Lexeme holds
	// the exact punctuator text.
	TOKEN_PUNCTUATOR
)

// TokenTypeNames maps token types to their string representations
var TokenTypeNames = map[TokenType]string{
	TOKEN_EOF:             "EOF",
	TOKEN_IDENTIFIER:      "IDENTIFIER",
	TOKEN_KEYWORD:         "KEYWORD",
	TOKEN_PRIVATE_NAME:    "PRIVATE_NAME",
	TOKEN_NUMBER:          "NUMBER",
	TOKEN_BIGINT:          "BIGINT",
	TOKEN_STRING:          "STRING",
	TOKEN_REGEXP:          "REGEXP",
	TOKEN_TEMPLATE:        "TEMPLATE",
	TOKEN_TEMPLATE_HEAD:   "TEMPLATE_HEAD",
	TOKEN_TEMPLATE_MIDDLE: "TEMPLATE_MIDDLE",
	TOKEN_TEMPLATE_TAIL:   "TEMPLATE_TAIL",
	TOKEN_PUNCTUATOR:      "PUNCTUATOR",
}

// String returns the string representation of a TokenType
func (t TokenType) String() string {
	if name, ok := TokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", t)
}

// Token represents a single lexical token in JavaScript source
type Token struct {
	Type    TokenType   // The type of the token
	Lexeme  string      // The raw text of the token
	Literal interface{} // Cooked value for strings, cleaned digits for numbers
	Start   int         // Byte offset of the first character
	End     int         // Byte offset one past the last character
	Line    int         // Line number (1-indexed)
	Column  int         // Column number (1-indexed, in bytes)

	// NewlineBefore reports whether a line terminator separates this token
	// from the previous one. Automatic semicolon insertion depends on it.
	NewlineBefore bool
}

// String returns a string representation of the token
func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s '%s' (%v) at %d:%d",
			t.Type.String(), t.Lexeme, t.Literal, t.Line, t.Column)
	}
	return fmt.Sprintf("%s '%s' at %d:%d",
		t.Type.String(), t.Lexeme, t.Line, t.Column)
}

// Is reports whether the token is the punctuator or keyword with the given text.
func (t Token) Is(text string) bool {
	return (t.Type == TOKEN_PUNCTUATOR || t.Type == TOKEN_KEYWORD) && t.Lexeme == text
}

// IsName reports whether the token can be used as a property name, which
// includes reserved words.
func (t Token) IsName() bool {
	return t.Type == TOKEN_IDENTIFIER || t.Type == TOKEN_KEYWORD
}

// Keywords lists the reserved words of the language. Contextual keywords
// are deliberately absent.
var Keywords = map[string]bool{
	"break":      true,
	"case":       true,
	"catch":      true,
	"class":      true,
	"const":      true,
	"continue":   true,
	"debugger":   true,
	"default":    true,
	"delete":     true,
	"do":         true,
	"else":       true,
	"export":     true,
	"extends":    true,
	"false":      true,
	"finally":    true,
	"for":        true,
	"function":   true,
	"if":         true,
	"import":     true,
	"in":         true,
	"instanceof": true,
	"new":        true,
	"null":       true,
	"return":     true,
	"super":      true,
	"switch":     true,
	"this":       true,
	"throw":      true,
	"true":       true,
	"try":        true,
	"typeof":     true,
	"var":        true,
	"void":       true,
	"while":      true,
	"with":       true,
}

// punctuators is ordered longest first so the scanner can take the
// longest match.
var punctuators = []string{
	">>>=",
	"...", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "**", "<<", ">>",
	"{", "}", "(", ")", "[", "]", ";", ",", "<", ">", "+", "-", "*",
	"/", "%", "&", "|", "^", "!", "~", "?", ":", "=", ".", "@",
}

// LexError represents an error encountered during lexical analysis
type LexError struct {
	Message string // Error message
	Line    int    // Line number where error occurred
	Column  int    // Column number where error occurred
	Offset  int    // Byte offset where error occurred
	Lexeme  string // The problematic text
}

// Error implements the error interface
func (e LexError) Error() string {
	return fmt.Sprintf("Lexical error at %d:%d: %s (near '%s')",
		e.Line, e.Column, e.Message, e.Lexeme)
}

// IsKeyword checks if a string is a reserved word
func IsKeyword(s string) bool {
	return Keywords[s]
}
