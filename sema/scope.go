package sema

import (
	"fmt"

	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/lexer"
)

// Symbol represents a symbol in the symbol table.
type Symbol struct {
	Name            string
	Type            Type
	Kind            SymbolKind
	DeclarationKind lexer.Token // LET or CONST for variables
	Position        lexer.Position
	Scope           *Scope

	// Decl points back at the declaring AST node (function, class, enum,
	// alias, extern class) when one exists.
	Decl ast.Node
}

// IsConst reports whether the symbol was declared with const.
func (s *Symbol) IsConst() bool {
	return s.DeclarationKind == lexer.CONST
}

type SymbolKind int

const (
	VariableSymbol SymbolKind = iota
	ParameterSymbol
	FunctionSymbol
	ClassSymbol
	ExternClassSymbol
	EnumSymbol
	InterfaceSymbol
	TypeAliasSymbol
	TypeParamSymbol
)

func (s SymbolKind) String() string {
	switch s {
	case VariableSymbol:
		return "variable"
	case ParameterSymbol:
		return "parameter"
	case FunctionSymbol:
		return "function"
	case ClassSymbol:
		return "class"
	case ExternClassSymbol:
		return "extern class"
	case EnumSymbol:
		return "enum"
	case InterfaceSymbol:
		return "interface"
	case TypeAliasSymbol:
		return "type alias"
	case TypeParamSymbol:
		return "type parameter"
	default:
		return "unknown"
	}
}

// Scope represents a lexical scope. Narrowing facts live beside the
// symbol table: a guarded block pushes a child scope whose narrowed map
// shadows the symbols' declared types for its extent.
type Scope struct {
	Parent   *Scope
	Symbols  map[string]*Symbol
	Children []*Scope

	// Narrowed maps symbols to their refined types inside this scope.
	Narrowed map[*Symbol]Type

	// EnclosingClass and EnclosingFunc give name resolution its context:
	// unqualified identifiers fall back to instance members, then statics,
	// then outer scopes.
	EnclosingClass *ast.ClassDeclaration
	EnclosingFunc  *ast.FunctionDeclaration
}

// NewScope creates a new scope, inheriting class/function context.
func NewScope(parent *Scope) *Scope {
	scope := &Scope{
		Parent:   parent,
		Symbols:  make(map[string]*Symbol),
		Narrowed: make(map[*Symbol]Type),
	}
	if parent != nil {
		parent.Children = append(parent.Children, scope)
		scope.EnclosingClass = parent.EnclosingClass
		scope.EnclosingFunc = parent.EnclosingFunc
	}
	return scope
}

// Define defines a symbol in the current scope. Shadowing by inner scopes
// is allowed; redeclaration in the same scope is an error.
func (s *Scope) Define(symbol *Symbol) error {
	if _, exists := s.Symbols[symbol.Name]; exists {
		return fmt.Errorf("'%s' has already been declared in this scope", symbol.Name)
	}
	symbol.Scope = s
	s.Symbols[symbol.Name] = symbol
	return nil
}

// Lookup looks up a symbol in the current scope and parent scopes.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	if symbol, exists := s.Symbols[name]; exists {
		return symbol, true
	}
	if s.Parent != nil {
		return s.Parent.Lookup(name)
	}
	return nil, false
}

// LookupLocal looks up a symbol only in the current scope.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	symbol, exists := s.Symbols[name]
	return symbol, exists
}

// NarrowedType returns the innermost narrowing fact recorded for the
// symbol, walking outward through enclosing scopes.
func (s *Scope) NarrowedType(sym *Symbol) (Type, bool) {
	if t, ok := s.Narrowed[sym]; ok {
		return t, true
	}
	if s.Parent != nil {
		return s.Parent.NarrowedType(sym)
	}
	return nil, false
}

// IsGlobal reports whether this is the root scope.
func (s *Scope) IsGlobal() bool { return s.Parent == nil }
