package ast

import (
	"strings"

	"github.com/tgc-lang/tgc/lexer"
)

// ============================================================================
// FUNCTION RELATED NODES
// ============================================================================

// Parameter represents a function parameter.
type Parameter struct {
	Name           *Identifier // parameter name
	TypeAnnotation TypeNode    // type annotation (optional)
	DefaultValue   Expression  // default value (optional)
}

func (p *Parameter) Pos() lexer.Position { return p.Name.Pos() }
func (p *Parameter) End() lexer.Position {
	if p.DefaultValue != nil {
		return p.DefaultValue.End()
	}
	if p.TypeAnnotation != nil {
		return p.TypeAnnotation.End()
	}
	return p.Name.End()
}
func (p *Parameter) String() string {
	result := p.Name.String()
	if p.TypeAnnotation != nil {
		result += ": " + p.TypeAnnotation.String()
	}
	if p.DefaultValue != nil {
		result += " = " + p.DefaultValue.String()
	}
	return result
}

// FunctionExpression represents a function expression (also the carrier
// for method bodies).
type FunctionExpression struct {
	FunctionPos lexer.Position  // position of 'function' (or the method name)
	Name        *Identifier     // function name (optional)
	LParen      lexer.Position  // position of '('
	Parameters  []*Parameter    // parameters
	RParen      lexer.Position  // position of ')'
	ReturnType  TypeNode        // return type annotation (optional)
	Body        *BlockStatement // function body
	Async       bool            // true for async functions
}

func (fe *FunctionExpression) Pos() lexer.Position { return fe.FunctionPos }
func (fe *FunctionExpression) End() lexer.Position { return fe.Body.End() }
func (fe *FunctionExpression) String() string {
	result := ""
	if fe.Async {
		result += "async "
	}
	result += "function"
	if fe.Name != nil {
		result += " " + fe.Name.String()
	}
	result += paramListString(fe.Parameters)
	if fe.ReturnType != nil {
		result += ": " + fe.ReturnType.String()
	}
	result += " " + fe.Body.String()
	return result
}
func (fe *FunctionExpression) expressionNode() {}

// FunctionDeclaration represents a function declaration, possibly generic.
type FunctionDeclaration struct {
	FunctionPos    lexer.Position   // position of 'function' (or 'async')
	Name           *Identifier      // function name
	TypeParameters []*TypeParameter // generic type parameters (optional)
	LParen         lexer.Position   // position of '('
	Parameters     []*Parameter     // parameters
	RParen         lexer.Position   // position of ')'
	ReturnType     TypeNode         // return type annotation (optional)
	Body           *BlockStatement  // function body
	Async          bool             // true for async functions
}

func (fd *FunctionDeclaration) Pos() lexer.Position { return fd.FunctionPos }
func (fd *FunctionDeclaration) End() lexer.Position { return fd.Body.End() }
func (fd *FunctionDeclaration) String() string {
	result := ""
	if fd.Async {
		result += "async "
	}
	result += "function " + fd.Name.String()
	result += typeParamListString(fd.TypeParameters)
	result += paramListString(fd.Parameters)
	if fd.ReturnType != nil {
		result += ": " + fd.ReturnType.String()
	}
	result += " " + fd.Body.String()
	return result
}
func (fd *FunctionDeclaration) statementNode()   {}
func (fd *FunctionDeclaration) declarationNode() {}

// ArrowFunctionExpression represents an arrow function (lambda).
type ArrowFunctionExpression struct {
	LParen     lexer.Position  // position of '(' (zero for single bare param)
	Parameters []*Parameter    // parameters
	RParen     lexer.Position  // position of ')' (zero for single bare param)
	Arrow      lexer.Position  // position of '=>'
	ReturnType TypeNode        // return type annotation (optional)
	Body       *BlockStatement // body (expression bodies are wrapped in a return)
}

func (afe *ArrowFunctionExpression) Pos() lexer.Position {
	if afe.LParen.Line > 0 {
		return afe.LParen
	}
	if len(afe.Parameters) > 0 {
		return afe.Parameters[0].Pos()
	}
	return afe.Arrow
}
func (afe *ArrowFunctionExpression) End() lexer.Position { return afe.Body.End() }
func (afe *ArrowFunctionExpression) String() string {
	result := ""
	if len(afe.Parameters) == 1 && afe.LParen.Line == 0 {
		result += afe.Parameters[0].String()
	} else {
		result += paramListString(afe.Parameters)
	}
	if afe.ReturnType != nil {
		result += ": " + afe.ReturnType.String()
	}
	result += " => " + afe.Body.String()
	return result
}
func (afe *ArrowFunctionExpression) expressionNode() {}

func paramListString(params []*Parameter) string {
	var parts []string
	for _, param := range params {
		parts = append(parts, param.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func typeParamListString(params []*TypeParameter) string {
	if len(params) == 0 {
		return ""
	}
	var parts []string
	for _, param := range params {
		parts = append(parts, param.String())
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// ============================================================================
// CLASS RELATED NODES
// ============================================================================

// Visibility of a class member.
type Visibility int

const (
	Public Visibility = iota
	Private
)

func (v Visibility) String() string {
	if v == Private {
		return "private"
	}
	return "public"
}

// FieldDefinition represents a field in a class. The key is an Identifier,
// or a StringLiteral for quoted names ("my-field": int). Field order is
// observable: positional object-literal construction and serialization
// both follow declaration order.
type FieldDefinition struct {
	Key            Expression // field name (Identifier or StringLiteral)
	TypeAnnotation TypeNode   // type annotation (optional when a default is given)
	Value          Expression // default value (optional; required for const)
	Visibility     Visibility // public or private
	Static         bool       // true for static fields
	Const          bool       // true for const fields (compile-time discriminants)
	Readonly       bool       // true for readonly fields
	Weak           bool       // true for weak (non-owning) reference fields
}

func (fd *FieldDefinition) Pos() lexer.Position { return fd.Key.Pos() }
func (fd *FieldDefinition) End() lexer.Position {
	if fd.Value != nil {
		return fd.Value.End()
	}
	if fd.TypeAnnotation != nil {
		return fd.TypeAnnotation.End()
	}
	return fd.Key.End()
}
func (fd *FieldDefinition) String() string {
	result := ""
	if fd.Visibility == Private {
		result += "private "
	}
	if fd.Static {
		result += "static "
	}
	if fd.Const {
		result += "const "
	}
	if fd.Readonly {
		result += "readonly "
	}
	if fd.Weak {
		result += "weak "
	}
	result += fd.Key.String()
	if fd.TypeAnnotation != nil {
		result += ": " + fd.TypeAnnotation.String()
	}
	if fd.Value != nil {
		result += " = " + fd.Value.String()
	}
	return result
}

// Name returns the field's declared name, unquoting quoted keys.
func (fd *FieldDefinition) Name() string {
	return memberKeyName(fd.Key)
}

// MethodDefinition represents a method in a class.
type MethodDefinition struct {
	Key        Expression          // method name
	Value      *FunctionExpression // method function
	Visibility Visibility          // public or private
	Static     bool                // true for static methods
	Async      bool                // true for async methods
}

func (md *MethodDefinition) Pos() lexer.Position { return md.Key.Pos() }
func (md *MethodDefinition) End() lexer.Position { return md.Value.End() }
func (md *MethodDefinition) String() string {
	result := ""
	if md.Visibility == Private {
		result += "private "
	}
	if md.Static {
		result += "static "
	}
	if md.Async {
		result += "async "
	}
	result += md.Key.String()
	result += paramListString(md.Value.Parameters)
	if md.Value.ReturnType != nil {
		result += ": " + md.Value.ReturnType.String()
	}
	result += " " + md.Value.Body.String()
	return result
}

// Name returns the method's declared name.
func (md *MethodDefinition) Name() string {
	return memberKeyName(md.Key)
}

func memberKeyName(key Expression) string {
	switch k := key.(type) {
	case *Identifier:
		return k.Name
	case *StringLiteral:
		return k.Value
	default:
		return key.String()
	}
}

// ClassDeclaration represents a class declaration, possibly generic.
// There is no subclassing; class subtype relations exist only through
// interface desugaring.
type ClassDeclaration struct {
	ClassPos       lexer.Position   // position of 'class'
	Name           *Identifier      // class name
	TypeParameters []*TypeParameter // generic type parameters (optional)
	LBrace         lexer.Position   // position of '{'
	Body           []Node           // fields and methods, in declaration order
	RBrace         lexer.Position   // position of '}'
}

func (cd *ClassDeclaration) Pos() lexer.Position { return cd.ClassPos }
func (cd *ClassDeclaration) End() lexer.Position { return endAfter(cd.RBrace, 1) }
func (cd *ClassDeclaration) String() string {
	result := "class " + cd.Name.String() + typeParamListString(cd.TypeParameters) + " {\n"
	for _, member := range cd.Body {
		result += "  " + member.String() + "\n"
	}
	result += "}"
	return result
}
func (cd *ClassDeclaration) statementNode()   {}
func (cd *ClassDeclaration) declarationNode() {}

// Fields returns the class's fields in declaration order.
func (cd *ClassDeclaration) Fields() []*FieldDefinition {
	var fields []*FieldDefinition
	for _, member := range cd.Body {
		if f, ok := member.(*FieldDefinition); ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// Methods returns the class's methods in declaration order.
func (cd *ClassDeclaration) Methods() []*MethodDefinition {
	var methods []*MethodDefinition
	for _, member := range cd.Body {
		if m, ok := member.(*MethodDefinition); ok {
			methods = append(methods, m)
		}
	}
	return methods
}

// FieldNamed returns the field with the given name, or nil.
func (cd *ClassDeclaration) FieldNamed(name string) *FieldDefinition {
	for _, f := range cd.Fields() {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// MethodNamed returns the method with the given name, or nil.
func (cd *ClassDeclaration) MethodNamed(name string) *MethodDefinition {
	for _, m := range cd.Methods() {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

// ============================================================================
// EXTERN CLASSES
// ============================================================================

// ExternBinding maps a backend tag to its header/module reference.
type ExternBinding struct {
	Backend string // backend tag ("cpp", "js", ...); empty for the shared form
	Header  string // header file or module path
}

// ExternMethod is a method signature on an extern class; extern methods
// never carry bodies.
type ExternMethod struct {
	Key        Expression   // method name
	Parameters []*Parameter // parameters
	ReturnType TypeNode     // return type (optional)
	Static     bool         // true for static methods (factories)
}

func (em *ExternMethod) Pos() lexer.Position { return em.Key.Pos() }
func (em *ExternMethod) End() lexer.Position {
	if em.ReturnType != nil {
		return em.ReturnType.End()
	}
	return em.Key.End()
}
func (em *ExternMethod) String() string {
	result := ""
	if em.Static {
		result += "static "
	}
	result += em.Key.String() + paramListString(em.Parameters)
	if em.ReturnType != nil {
		result += ": " + em.ReturnType.String()
	}
	return result
}

// Name returns the method's declared name.
func (em *ExternMethod) Name() string { return memberKeyName(em.Key) }

// ExternField is a field declaration on an extern class.
type ExternField struct {
	Key            Expression // field name
	TypeAnnotation TypeNode   // field type
	Static         bool       // true for static fields
}

func (ef *ExternField) Pos() lexer.Position { return ef.Key.Pos() }
func (ef *ExternField) End() lexer.Position { return ef.TypeAnnotation.End() }
func (ef *ExternField) String() string {
	result := ""
	if ef.Static {
		result += "static "
	}
	return result + ef.Key.String() + ": " + ef.TypeAnnotation.String()
}

// Name returns the field's declared name.
func (ef *ExternField) Name() string { return memberKeyName(ef.Key) }

// ExternClassDeclaration declares a host-provided type:
//
//	extern class Foo from "foo.h" { ... }
//	extern class Foo from { cpp: "foo.h", js: "./foo.js" } { ... }
//
// Extern classes cannot be constructed via object literals and their
// methods have no bodies; static factories are the only constructors.
type ExternClassDeclaration struct {
	ExternPos lexer.Position   // position of 'extern'
	Name      *Identifier      // class name
	Bindings  []*ExternBinding // per-backend header/module bindings
	LBrace    lexer.Position   // position of '{'
	Fields    []*ExternField   // field declarations
	Methods   []*ExternMethod  // method signatures
	RBrace    lexer.Position   // position of '}'
}

func (ec *ExternClassDeclaration) Pos() lexer.Position { return ec.ExternPos }
func (ec *ExternClassDeclaration) End() lexer.Position { return endAfter(ec.RBrace, 1) }
func (ec *ExternClassDeclaration) String() string {
	result := "extern class " + ec.Name.String() + " from "
	if len(ec.Bindings) == 1 && ec.Bindings[0].Backend == "" {
		result += "\"" + ec.Bindings[0].Header + "\""
	} else {
		var parts []string
		for _, b := range ec.Bindings {
			parts = append(parts, b.Backend+": \""+b.Header+"\"")
		}
		result += "{ " + strings.Join(parts, ", ") + " }"
	}
	result += " {\n"
	for _, f := range ec.Fields {
		result += "  " + f.String() + ";\n"
	}
	for _, m := range ec.Methods {
		result += "  " + m.String() + ";\n"
	}
	result += "}"
	return result
}
func (ec *ExternClassDeclaration) statementNode()   {}
func (ec *ExternClassDeclaration) declarationNode() {}

// HeaderFor returns the header bound to the given backend tag, falling
// back to the shared (untagged) binding.
func (ec *ExternClassDeclaration) HeaderFor(backend string) string {
	shared := ""
	for _, b := range ec.Bindings {
		if b.Backend == backend {
			return b.Header
		}
		if b.Backend == "" {
			shared = b.Header
		}
	}
	return shared
}
