package ast

// ObjectPattern represents { a, b: c, ...rest } as a binding target
type ObjectPattern struct {
	Span
	Properties []*PatternProperty
	Rest       Pattern // nil without a rest element
}

func (o *ObjectPattern) node()        {}
func (o *ObjectPattern) patternNode() {}

// PatternProperty is one `key: value` entry of an object pattern
type PatternProperty struct {
	Span
	Key       Expr
	Computed  bool
	Shorthand bool
	Value     Pattern
}

func (p *PatternProperty) node() {}

// KeyName returns the static name of a non-computed key
func (p *PatternProperty) KeyName() (string, bool) {
	if p.Computed {
		return "", false
	}
	switch k := p.Key.(type) {
	case *Identifier:
		return k.Name, true
	case *Literal:
		return k.StringValue()
	}
	return "", false
}

// ArrayPattern represents [a, , b, ...rest]; holes are nil
type ArrayPattern struct {
	Span
	Elements []Pattern
}

func (a *ArrayPattern) node()        {}
func (a *ArrayPattern) patternNode() {}

// AssignPattern represents a target with a default value: a = 1
type AssignPattern struct {
	Span
	Target  Pattern
	Default Expr
}

func (a *AssignPattern) node()        {}
func (a *AssignPattern) patternNode() {}

// RestElement represents ...target inside patterns and parameter lists
type RestElement struct {
	Span
	Target Pattern
}

func (r *RestElement) node()        {}
func (r *RestElement) patternNode() {}

// BoundNames returns the identifiers a binding pattern introduces, in
// source order
func BoundNames(p Pattern) []string {
	var names []string
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch t := p.(type) {
		case *Identifier:
			names = append(names, t.Name)
		case *ObjectPattern:
			for _, prop := range t.Properties {
				walk(prop.Value)
			}
			if t.Rest != nil {
				walk(t.Rest)
			}
		case *ArrayPattern:
			for _, el := range t.Elements {
				if el != nil {
					walk(el)
				}
			}
		case *AssignPattern:
			walk(t.Target)
		case *RestElement:
			walk(t.Target)
		}
	}
	walk(p)
	return names
}

// DeclaredNames returns the names a top-level statement binds in module
// scope
func DeclaredNames(stmt Stmt) []string {
	switch s := stmt.(type) {
	case *VarDecl:
		var names []string
		for _, d := range s.Declarations {
			names = append(names, BoundNames(d.Target)...)
		}
		return names
	case *FunctionDecl:
		if s.Function.Name != nil {
			return []string{s.Function.Name.Name}
		}
	case *ClassDecl:
		if s.Class.Name != nil {
			return []string{s.Class.Name.Name}
		}
	case *ImportDecl:
		var names []string
		if s.Default != nil {
			names = append(names, s.Default.Name)
		}
		if s.Namespace != nil {
			names = append(names, s.Namespace.Name)
		}
		for _, spec := range s.Specifiers {
			names = append(names, spec.Local.Name)
		}
		return names
	case *ExportNamedDecl:
		if s.Declaration != nil {
			return DeclaredNames(s.Declaration)
		}
	case *ExportDefaultDecl:
		switch v := s.Value.(type) {
		case *FunctionExpr:
			if s.Declaration && v.Name != nil {
				return []string{v.Name.Name}
			}
		case *ClassExpr:
			if s.Declaration && v.Name != nil {
				return []string{v.Name.Name}
			}
		}
	}
	return nil
}
