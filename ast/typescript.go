package ast

import (
	"strings"

	"github.com/tgc-lang/tgc/lexer"
)

// ============================================================================
// TYPE NODES
// ============================================================================

// BasicType represents a built-in primitive type keyword.
type BasicType struct {
	TypePos lexer.Position // position of the keyword
	Kind    lexer.Token    // INT_T, FLOAT_T, DOUBLE_T, CHAR_T, BOOL_T, STRING_T, VOID, NULL
}

func (bt *BasicType) Pos() lexer.Position { return bt.TypePos }
func (bt *BasicType) End() lexer.Position { return endAfter(bt.TypePos, len(bt.Kind.String())) }
func (bt *BasicType) String() string      { return bt.Kind.String() }
func (bt *BasicType) typeNode()           {}

// TypeReference represents a named type reference (MyClass, Color,
// Array<T>, Map<K, V>, Set<T>, or a generic type parameter).
type TypeReference struct {
	Name     *Identifier // type name
	TypeArgs []TypeNode  // type arguments (for generics)
}

func (tr *TypeReference) Pos() lexer.Position { return tr.Name.Pos() }
func (tr *TypeReference) End() lexer.Position {
	if len(tr.TypeArgs) > 0 {
		return tr.TypeArgs[len(tr.TypeArgs)-1].End()
	}
	return tr.Name.End()
}
func (tr *TypeReference) String() string {
	result := tr.Name.String()
	if len(tr.TypeArgs) > 0 {
		var args []string
		for _, arg := range tr.TypeArgs {
			args = append(args, arg.String())
		}
		result += "<" + strings.Join(args, ", ") + ">"
	}
	return result
}
func (tr *TypeReference) typeNode() {}

// ArrayType represents the suffix array form (T[]).
type ArrayType struct {
	ElementType TypeNode       // element type
	LBracket    lexer.Position // position of '['
	RBracket    lexer.Position // position of ']'
}

func (at *ArrayType) Pos() lexer.Position { return at.ElementType.Pos() }
func (at *ArrayType) End() lexer.Position { return endAfter(at.RBracket, 1) }
func (at *ArrayType) String() string      { return at.ElementType.String() + "[]" }
func (at *ArrayType) typeNode()           {}

// UnionType represents a union type (A | B | null).
type UnionType struct {
	Types []TypeNode // union member types
}

func (ut *UnionType) Pos() lexer.Position { return ut.Types[0].Pos() }
func (ut *UnionType) End() lexer.Position { return ut.Types[len(ut.Types)-1].End() }
func (ut *UnionType) String() string {
	var types []string
	for _, t := range ut.Types {
		types = append(types, t.String())
	}
	return strings.Join(types, " | ")
}
func (ut *UnionType) typeNode() {}

// OptionalType represents the shorthand T? (equivalent to T | null).
type OptionalType struct {
	Inner    TypeNode       // the non-null type
	Question lexer.Position // position of '?'
}

func (ot *OptionalType) Pos() lexer.Position { return ot.Inner.Pos() }
func (ot *OptionalType) End() lexer.Position { return endAfter(ot.Question, 1) }
func (ot *OptionalType) String() string      { return ot.Inner.String() + "?" }
func (ot *OptionalType) typeNode()           {}

// WeakType represents `weak T`, a non-owning reference to a class
// instance. Dereference requires a null guard.
type WeakType struct {
	WeakPos lexer.Position // position of 'weak'
	Inner   TypeNode       // referenced class type
}

func (wt *WeakType) Pos() lexer.Position { return wt.WeakPos }
func (wt *WeakType) End() lexer.Position { return wt.Inner.End() }
func (wt *WeakType) String() string      { return "weak " + wt.Inner.String() }
func (wt *WeakType) typeNode()           {}

// FunctionType represents a function type ((x: int) => string).
type FunctionType struct {
	LParen     lexer.Position // position of '('
	Parameters []*Parameter   // parameters
	RParen     lexer.Position // position of ')'
	Arrow      lexer.Position // position of '=>'
	ReturnType TypeNode       // return type
}

func (ft *FunctionType) Pos() lexer.Position { return ft.LParen }
func (ft *FunctionType) End() lexer.Position { return ft.ReturnType.End() }
func (ft *FunctionType) String() string {
	return paramListString(ft.Parameters) + " => " + ft.ReturnType.String()
}
func (ft *FunctionType) typeNode() {}

// TypeMember represents a member in an interface. Method members carry a
// FunctionType; field members carry any other type node.
type TypeMember struct {
	Key      Expression // member name
	Type     TypeNode   // member type
	Optional bool       // true for optional members (name?: T)
	Readonly bool       // true for readonly fields
}

func (tm *TypeMember) Pos() lexer.Position { return tm.Key.Pos() }
func (tm *TypeMember) End() lexer.Position { return tm.Type.End() }
func (tm *TypeMember) String() string {
	result := ""
	if tm.Readonly {
		result += "readonly "
	}
	result += tm.Key.String()
	if tm.Optional {
		result += "?"
	}
	if ft, ok := tm.Type.(*FunctionType); ok {
		result += paramListString(ft.Parameters) + ": " + ft.ReturnType.String()
	} else {
		result += ": " + tm.Type.String()
	}
	return result
}

// Name returns the member's declared name.
func (tm *TypeMember) Name() string { return memberKeyName(tm.Key) }

// ============================================================================
// TYPE DECLARATIONS
// ============================================================================

// TypeParameter represents a generic type parameter.
type TypeParameter struct {
	Name *Identifier // parameter name
}

func (tp *TypeParameter) Pos() lexer.Position { return tp.Name.Pos() }
func (tp *TypeParameter) End() lexer.Position { return tp.Name.End() }
func (tp *TypeParameter) String() string      { return tp.Name.String() }

// InterfaceDeclaration represents an interface declaration. Interfaces
// are parsed as first-class nodes; in closed-world mode the desugarer
// replaces each satisfied interface with a union type alias over the
// classes that structurally satisfy it.
type InterfaceDeclaration struct {
	InterfacePos lexer.Position // position of 'interface'
	Name         *Identifier    // interface name
	Extends      []TypeNode     // extended interfaces
	LBrace       lexer.Position // position of '{'
	Body         []*TypeMember  // interface members
	RBrace       lexer.Position // position of '}'
}

func (id *InterfaceDeclaration) Pos() lexer.Position { return id.InterfacePos }
func (id *InterfaceDeclaration) End() lexer.Position { return endAfter(id.RBrace, 1) }
func (id *InterfaceDeclaration) String() string {
	result := "interface " + id.Name.String()
	if len(id.Extends) > 0 {
		var extends []string
		for _, ext := range id.Extends {
			extends = append(extends, ext.String())
		}
		result += " extends " + strings.Join(extends, ", ")
	}
	result += " {\n"
	for _, member := range id.Body {
		result += "  " + member.String() + ";\n"
	}
	result += "}"
	return result
}
func (id *InterfaceDeclaration) statementNode()   {}
func (id *InterfaceDeclaration) declarationNode() {}

// TypeAliasDeclaration represents a type alias declaration. Union aliases
// whose members all carry a distinct-valued const field of the same name
// form discriminated unions.
type TypeAliasDeclaration struct {
	TypePos lexer.Position // position of 'type'
	Name    *Identifier    // alias name
	Assign  lexer.Position // position of '='
	Type    TypeNode       // aliased type
}

func (tad *TypeAliasDeclaration) Pos() lexer.Position { return tad.TypePos }
func (tad *TypeAliasDeclaration) End() lexer.Position { return tad.Type.End() }
func (tad *TypeAliasDeclaration) String() string {
	return "type " + tad.Name.String() + " = " + tad.Type.String()
}
func (tad *TypeAliasDeclaration) statementNode()   {}
func (tad *TypeAliasDeclaration) declarationNode() {}

// EnumDeclaration represents an enum declaration.
type EnumDeclaration struct {
	EnumPos lexer.Position // position of 'enum'
	Name    *Identifier    // enum name
	LBrace  lexer.Position // position of '{'
	Members []*EnumMember  // enum members
	RBrace  lexer.Position // position of '}'
}

func (ed *EnumDeclaration) Pos() lexer.Position { return ed.EnumPos }
func (ed *EnumDeclaration) End() lexer.Position { return endAfter(ed.RBrace, 1) }
func (ed *EnumDeclaration) String() string {
	result := "enum " + ed.Name.String() + " {\n"
	for i, member := range ed.Members {
		result += "  " + member.String()
		if i < len(ed.Members)-1 {
			result += ","
		}
		result += "\n"
	}
	result += "}"
	return result
}
func (ed *EnumDeclaration) statementNode()   {}
func (ed *EnumDeclaration) declarationNode() {}

// EnumMember represents a member in an enum.
type EnumMember struct {
	Name  *Identifier // member name
	Value Expression  // member value (optional)
}

func (em *EnumMember) Pos() lexer.Position { return em.Name.Pos() }
func (em *EnumMember) End() lexer.Position {
	if em.Value != nil {
		return em.Value.End()
	}
	return em.Name.End()
}
func (em *EnumMember) String() string {
	result := em.Name.String()
	if em.Value != nil {
		result += " = " + em.Value.String()
	}
	return result
}

// ============================================================================
// TYPE EXPRESSIONS
// ============================================================================

// CastExpression represents an explicit conversion (value as Type). A
// redundant cast (target equals source) is elided during validation.
type CastExpression struct {
	Expression Expression     // expression being converted
	AsPos      lexer.Position // position of 'as'
	Type       TypeNode       // target type
}

func (ce *CastExpression) Pos() lexer.Position { return ce.Expression.Pos() }
func (ce *CastExpression) End() lexer.Position { return ce.Type.End() }
func (ce *CastExpression) String() string {
	return ce.Expression.String() + " as " + ce.Type.String()
}
func (ce *CastExpression) expressionNode() {}

// NonNullAssertion represents a non-null assertion (value!).
type NonNullAssertion struct {
	Expression Expression     // expression being asserted
	Bang       lexer.Position // position of '!'
}

func (nna *NonNullAssertion) Pos() lexer.Position { return nna.Expression.Pos() }
func (nna *NonNullAssertion) End() lexer.Position { return endAfter(nna.Bang, 1) }
func (nna *NonNullAssertion) String() string      { return nna.Expression.String() + "!" }
func (nna *NonNullAssertion) expressionNode()     {}
