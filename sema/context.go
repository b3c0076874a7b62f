package sema

import (
	"github.com/tgc-lang/tgc/ast"
)

// DiscriminantInfo describes a discriminated union: a const field of the
// same name on every member class, each with a distinct compile-time
// value. Backends use ByValue for tag-based dispatch and deserialization.
type DiscriminantInfo struct {
	UnionName string
	Field     string
	ByValue   map[string]string // discriminant value -> member class name
}

// Instantiation is one monomorphization request: a generic declaration
// plus a ground type-argument tuple, keyed by its mangled name.
type Instantiation struct {
	DeclName string
	Args     []Type
	Mangled  string
}

// GlobalContext is the shared symbol universe of a compilation set. All
// files of a project compile against one GlobalContext.
type GlobalContext struct {
	Global *Scope

	Classes    map[string]*ast.ClassDeclaration
	Externs    map[string]*ast.ExternClassDeclaration
	Enums      map[string]*ast.EnumDeclaration
	Interfaces map[string]*ast.InterfaceDeclaration
	Functions  map[string]*ast.FunctionDeclaration
	Aliases    map[string]Type

	// Discriminants maps union alias names to their discriminant layout.
	Discriminants map[string]*DiscriminantInfo

	// Instantiations collects generic call sites for the monomorphizer,
	// keyed by mangled name.
	Instantiations map[string]*Instantiation

	Info *Info
}

// NewGlobalContext creates an empty context with builtins installed.
func NewGlobalContext() *GlobalContext {
	ctx := &GlobalContext{
		Global:         NewScope(nil),
		Classes:        make(map[string]*ast.ClassDeclaration),
		Externs:        make(map[string]*ast.ExternClassDeclaration),
		Enums:          make(map[string]*ast.EnumDeclaration),
		Interfaces:     make(map[string]*ast.InterfaceDeclaration),
		Functions:      make(map[string]*ast.FunctionDeclaration),
		Aliases:        make(map[string]Type),
		Discriminants:  make(map[string]*DiscriminantInfo),
		Instantiations: make(map[string]*Instantiation),
		Info:           NewInfo(),
	}
	ctx.defineBuiltins()
	return ctx
}

// defineBuiltins installs the built-in functions every program sees.
func (ctx *GlobalContext) defineBuiltins() {
	builtins := map[string]Type{
		"println": &FunctionType{ReturnType: VoidT, Variadic: true},
		"print":   &FunctionType{ReturnType: VoidT, Variadic: true},
		"len":     &FunctionType{Parameters: []Type{UnknownT}, ReturnType: IntT},
	}
	for name, typ := range builtins {
		ctx.Global.Define(&Symbol{
			Name: name,
			Type: typ,
			Kind: FunctionSymbol,
		})
	}
}

// Info carries the validator's per-node artifacts: inferred types,
// narrowing facts, scope-tracker notes and codegen hints. Backends read
// it; nothing mutates it after validation completes.
type Info struct {
	// Types maps every expression to its inferred type.
	Types map[ast.Expression]Type

	// Narrowed maps expressions (identifier uses inside guarded blocks)
	// to their refined types, for backend downcast insertion.
	Narrowed map[ast.Expression]Type

	// ImplicitThis marks identifiers that resolved to an instance member
	// so the backend prepends the qualified access; the value is the
	// enclosing class name.
	ImplicitThis map[*ast.Identifier]string

	// StaticAccess marks identifiers that resolved to a class static.
	StaticAccess map[*ast.Identifier]string

	// ElidedCasts marks redundant casts (target equals source) that
	// backends must not emit.
	ElidedCasts map[*ast.CastExpression]bool

	// InlineConsts marks static const integer fields for inline emission.
	InlineConsts map[*ast.FieldDefinition]bool

	// WrappedStrings marks string literals that take part in literal
	// concatenation and need an explicit string-constructor wrap to keep
	// the C++ backend off pointer arithmetic.
	WrappedStrings map[*ast.StringLiteral]bool

	// MapLiterals marks object literals whose contextual type is a map;
	// SetLiterals marks array literals whose contextual type is a set.
	// Backends lower them to map/set construction instead of class or
	// array construction.
	MapLiterals map[*ast.ObjectLiteral]bool
	SetLiterals map[*ast.ArrayLiteral]bool

	// GenericCalls maps each generic call site to its instantiation. Args
	// may still contain type parameters when the call sits inside another
	// generic body; the monomorphizer grounds them during specialization.
	GenericCalls map[*ast.CallExpression]*Instantiation
}

// NewInfo creates an empty Info.
func NewInfo() *Info {
	return &Info{
		Types:          make(map[ast.Expression]Type),
		Narrowed:       make(map[ast.Expression]Type),
		ImplicitThis:   make(map[*ast.Identifier]string),
		StaticAccess:   make(map[*ast.Identifier]string),
		ElidedCasts:    make(map[*ast.CastExpression]bool),
		InlineConsts:   make(map[*ast.FieldDefinition]bool),
		WrappedStrings: make(map[*ast.StringLiteral]bool),
		MapLiterals:    make(map[*ast.ObjectLiteral]bool),
		SetLiterals:    make(map[*ast.ArrayLiteral]bool),
		GenericCalls:   make(map[*ast.CallExpression]*Instantiation),
	}
}

// TypeOf returns the recorded type of an expression, preferring the
// narrowed refinement when one exists. Unrecorded expressions are
// Unknown.
func (i *Info) TypeOf(expr ast.Expression) Type {
	if t, ok := i.Narrowed[expr]; ok {
		return t
	}
	if t, ok := i.Types[expr]; ok {
		return t
	}
	return UnknownT
}
