package scaffold

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
	"github.com/fusejs/create-fuse-app/internal/compiler/parser"
)

// Object is a JSON object that keeps its keys in source order, so files
// such as tsconfig.json come back out the way they went in
type Object struct {
	keys   []string
	values map[string]interface{}
}

// NewObject creates an empty object
func NewObject() *Object {
	return &Object{values: map[string]interface{}{}}
}

// Get returns the value stored under key
func (o *Object) Get(key string) (interface{}, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set stores value under key; a new key goes last
func (o *Object) Set(key string, value interface{}) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Keys returns the keys in order
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of keys
func (o *Object) Len() int {
	return len(o.keys)
}

// MarshalJSON encodes the object with its keys in order
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, o, "", ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseJSONC parses a JSON document that may carry comments and trailing
// commas, as VS Code settings and tsconfig.json commonly do. The top level
// must be an object; an empty document yields an empty object.
func ParseJSONC(data []byte) (*Object, error) {
	source := string(data)
	if strings.TrimSpace(source) == "" {
		return NewObject(), nil
	}

	// a leading { would start a block statement, so parse an expression
	expr, err := parser.ParseExpression(source)
	if err != nil {
		return nil, err
	}
	value, err := jsonValue(expr)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(*Object)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object at the top level")
	}
	return obj, nil
}

// jsonValue converts a parsed literal into Go values: *Object,
// []interface{}, string, json.Number, bool or nil
func jsonValue(expr ast.Expr) (interface{}, error) {
	switch e := expr.(type) {
	case *ast.ObjectLiteral:
		obj := NewObject()
		for _, prop := range e.Properties {
			if prop.Kind != ast.PropertyInit || prop.Computed || prop.Shorthand || prop.Key == nil {
				return nil, fmt.Errorf("line %d: unsupported object member", prop.Location().Line)
			}
			key, ok := prop.KeyName()
			if !ok {
				return nil, fmt.Errorf("line %d: unsupported object key", prop.Location().Line)
			}
			value, err := jsonValue(prop.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(key, value)
		}
		return obj, nil

	case *ast.ArrayLiteral:
		items := make([]interface{}, 0, len(e.Elements))
		for _, el := range e.Elements {
			if el == nil {
				return nil, fmt.Errorf("line %d: empty array element", e.Location().Line)
			}
			value, err := jsonValue(el)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil

	case *ast.Literal:
		switch e.Kind {
		case ast.LiteralString:
			s, _ := e.StringValue()
			return s, nil
		case ast.LiteralNumber:
			if !json.Valid([]byte(e.Raw)) {
				return nil, fmt.Errorf("line %d: invalid JSON number %s", e.Location().Line, e.Raw)
			}
			return json.Number(e.Raw), nil
		case ast.LiteralBoolean:
			return e.Value, nil
		case ast.LiteralNull:
			return nil, nil
		}

	case *ast.UnaryExpr:
		if lit, ok := e.Operand.(*ast.Literal); ok && e.Operator == "-" && lit.Kind == ast.LiteralNumber {
			raw := "-" + lit.Raw
			if json.Valid([]byte(raw)) {
				return json.Number(raw), nil
			}
		}
	}
	return nil, fmt.Errorf("line %d: unsupported JSON value", expr.Location().Line)
}

// MarshalIndented encodes v with a two-space indent and a trailing newline.
// HTML characters are left unescaped, as JSON.stringify leaves them.
func MarshalIndented(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, "  ", "\n"); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// encodeValue writes v into buf. Objects and arrays are walked here so
// their contents never pass through the encoder's Marshaler handling, which
// escapes HTML characters regardless of options.
func encodeValue(buf *bytes.Buffer, v interface{}, indent, prefix string) error {
	nested := prefix + indent
	sep := ":"
	if indent != "" {
		sep = ": "
	}

	switch value := v.(type) {
	case *Object:
		if value.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		for i, key := range value.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(nested)
			if err := encodeScalar(buf, key); err != nil {
				return err
			}
			buf.WriteString(sep)
			if err := encodeValue(buf, value.values[key], indent, nested); err != nil {
				return fmt.Errorf("failed to encode %q: %w", key, err)
			}
		}
		buf.WriteString(prefix)
		buf.WriteByte('}')
		return nil

	case []interface{}:
		if len(value) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, item := range value {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(nested)
			if err := encodeValue(buf, item, indent, nested); err != nil {
				return err
			}
		}
		buf.WriteString(prefix)
		buf.WriteByte(']')
		return nil
	}
	return encodeScalar(buf, v)
}

func encodeScalar(buf *bytes.Buffer, v interface{}) error {
	data, err := json.MarshalWithOption(v, json.DisableHTMLEscape())
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}
