package sema

import (
	"fmt"
	"strings"
)

// Type represents a type in the surface language's type system.
type Type interface {
	String() string
	Equals(other Type) bool
	IsAssignableTo(other Type) bool
}

// ============================================================================
// PRIMITIVE TYPES
// ============================================================================

// PrimitiveType represents primitive types.
type PrimitiveType struct {
	Kind PrimitiveKind
}

type PrimitiveKind int

const (
	IntKind PrimitiveKind = iota
	FloatKind
	DoubleKind
	CharKind
	BoolKind
	StringKind
	VoidKind
	NullKind
)

func (p *PrimitiveType) String() string {
	switch p.Kind {
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case DoubleKind:
		return "double"
	case CharKind:
		return "char"
	case BoolKind:
		return "bool"
	case StringKind:
		return "string"
	case VoidKind:
		return "void"
	case NullKind:
		return "null"
	default:
		return "unknown"
	}
}

func (p *PrimitiveType) Equals(other Type) bool {
	if otherPrim, ok := other.(*PrimitiveType); ok {
		return p.Kind == otherPrim.Kind
	}
	return false
}

func (p *PrimitiveType) IsAssignableTo(other Type) bool {
	if isUnknown(other) {
		return true
	}
	if p.Equals(other) {
		return true
	}

	// Numeric widening: int <: float <: double. Narrowing requires an
	// explicit cast.
	if otherPrim, ok := other.(*PrimitiveType); ok {
		switch p.Kind {
		case IntKind:
			return otherPrim.Kind == FloatKind || otherPrim.Kind == DoubleKind
		case FloatKind:
			return otherPrim.Kind == DoubleKind
		}
		return false
	}

	if union, ok := other.(*UnionType); ok {
		return union.Accepts(p)
	}
	return false
}

// ============================================================================
// ARRAY, MAP AND SET TYPES
// ============================================================================

// ArrayType represents array types (T[]).
type ArrayType struct {
	ElementType Type
}

func (a *ArrayType) String() string {
	return fmt.Sprintf("%s[]", a.ElementType.String())
}

func (a *ArrayType) Equals(other Type) bool {
	if otherArray, ok := other.(*ArrayType); ok {
		return a.ElementType.Equals(otherArray.ElementType)
	}
	return false
}

func (a *ArrayType) IsAssignableTo(other Type) bool {
	if isUnknown(other) {
		return true
	}
	if otherArray, ok := other.(*ArrayType); ok {
		return a.ElementType.Equals(otherArray.ElementType) ||
			a.ElementType.IsAssignableTo(otherArray.ElementType)
	}
	if union, ok := other.(*UnionType); ok {
		return union.Accepts(a)
	}
	return false
}

// MapType represents map types (Map<K, V>). Keys are constrained to the
// admissible key set (int, string, bool, char, enum).
type MapType struct {
	KeyType   Type
	ValueType Type
}

func (m *MapType) String() string {
	return fmt.Sprintf("Map<%s, %s>", m.KeyType.String(), m.ValueType.String())
}

func (m *MapType) Equals(other Type) bool {
	if otherMap, ok := other.(*MapType); ok {
		return m.KeyType.Equals(otherMap.KeyType) && m.ValueType.Equals(otherMap.ValueType)
	}
	return false
}

func (m *MapType) IsAssignableTo(other Type) bool {
	if isUnknown(other) {
		return true
	}
	if m.Equals(other) {
		return true
	}
	if union, ok := other.(*UnionType); ok {
		return union.Accepts(m)
	}
	return false
}

// SetType represents set types (Set<T>), with the same element constraint
// as map keys.
type SetType struct {
	ElementType Type
}

func (s *SetType) String() string {
	return fmt.Sprintf("Set<%s>", s.ElementType.String())
}

func (s *SetType) Equals(other Type) bool {
	if otherSet, ok := other.(*SetType); ok {
		return s.ElementType.Equals(otherSet.ElementType)
	}
	return false
}

func (s *SetType) IsAssignableTo(other Type) bool {
	if isUnknown(other) {
		return true
	}
	if s.Equals(other) {
		return true
	}
	if union, ok := other.(*UnionType); ok {
		return union.Accepts(s)
	}
	return false
}

// ============================================================================
// CLASS, ENUM AND WEAK TYPES
// ============================================================================

// ClassType represents an instance of a declared (or extern) class,
// possibly a generic instantiation.
type ClassType struct {
	Name   string
	Args   []Type // type arguments for generic classes
	Extern bool   // true for extern classes
}

func (c *ClassType) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	var args []string
	for _, a := range c.Args {
		args = append(args, a.String())
	}
	return c.Name + "<" + strings.Join(args, ", ") + ">"
}

func (c *ClassType) Equals(other Type) bool {
	otherClass, ok := other.(*ClassType)
	if !ok || c.Name != otherClass.Name || len(c.Args) != len(otherClass.Args) {
		return false
	}
	for i, a := range c.Args {
		if !a.Equals(otherClass.Args[i]) {
			return false
		}
	}
	return true
}

func (c *ClassType) IsAssignableTo(other Type) bool {
	if isUnknown(other) {
		return true
	}
	if c.Equals(other) {
		return true
	}
	// Class subtype relations exist only via interface desugaring, which
	// turns the interface into a union the class is a member of.
	if union, ok := other.(*UnionType); ok {
		return union.Accepts(c)
	}
	if weak, ok := other.(*WeakType); ok {
		return c.IsAssignableTo(weak.Inner)
	}
	return false
}

// EnumType represents a declared enum.
type EnumType struct {
	Name string
}

func (e *EnumType) String() string { return e.Name }

func (e *EnumType) Equals(other Type) bool {
	if otherEnum, ok := other.(*EnumType); ok {
		return e.Name == otherEnum.Name
	}
	return false
}

func (e *EnumType) IsAssignableTo(other Type) bool {
	if isUnknown(other) {
		return true
	}
	if e.Equals(other) {
		return true
	}
	if union, ok := other.(*UnionType); ok {
		return union.Accepts(e)
	}
	return false
}

// WeakType represents a non-owning reference to a class instance. A weak
// field may be null at any time, so dereference requires a null guard.
type WeakType struct {
	Inner Type
}

func (w *WeakType) String() string { return "weak " + w.Inner.String() }

func (w *WeakType) Equals(other Type) bool {
	if otherWeak, ok := other.(*WeakType); ok {
		return w.Inner.Equals(otherWeak.Inner)
	}
	return false
}

func (w *WeakType) IsAssignableTo(other Type) bool {
	if isUnknown(other) {
		return true
	}
	return w.Equals(other) || w.Inner.IsAssignableTo(other)
}

// ============================================================================
// FUNCTION TYPE
// ============================================================================

// FunctionType represents function types.
type FunctionType struct {
	Parameters []Type
	ReturnType Type
	Variadic   bool // true if the function accepts any number of arguments
}

func (f *FunctionType) String() string {
	var params []string
	for _, param := range f.Parameters {
		params = append(params, param.String())
	}
	if f.Variadic {
		params = append(params, "...")
	}
	return fmt.Sprintf("(%s) => %s", strings.Join(params, ", "), f.ReturnType.String())
}

func (f *FunctionType) Equals(other Type) bool {
	otherFunc, ok := other.(*FunctionType)
	if !ok || len(f.Parameters) != len(otherFunc.Parameters) {
		return false
	}
	for i, param := range f.Parameters {
		if !param.Equals(otherFunc.Parameters[i]) {
			return false
		}
	}
	return f.ReturnType.Equals(otherFunc.ReturnType)
}

func (f *FunctionType) IsAssignableTo(other Type) bool {
	if isUnknown(other) {
		return true
	}
	otherFunc, ok := other.(*FunctionType)
	if !ok || len(f.Parameters) != len(otherFunc.Parameters) {
		return false
	}
	// Contravariant parameters, covariant return.
	for i, param := range f.Parameters {
		if !otherFunc.Parameters[i].IsAssignableTo(param) {
			return false
		}
	}
	return f.ReturnType.IsAssignableTo(otherFunc.ReturnType)
}

// ============================================================================
// UNION TYPES
// ============================================================================

// UnionType represents a union of multiple types (T | U). Members are
// deduplicated; null is an admissible member, making T | null the
// representation of Optional<T>.
type UnionType struct {
	Types []Type
}

func (u *UnionType) String() string {
	var types []string
	for _, t := range u.Types {
		types = append(types, t.String())
	}
	return strings.Join(types, " | ")
}

func (u *UnionType) Equals(other Type) bool {
	otherUnion, ok := other.(*UnionType)
	if !ok || len(u.Types) != len(otherUnion.Types) {
		return false
	}
	// Member order is irrelevant.
	for _, t1 := range u.Types {
		found := false
		for _, t2 := range otherUnion.Types {
			if t1.Equals(t2) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (u *UnionType) IsAssignableTo(other Type) bool {
	if isUnknown(other) {
		return true
	}
	for _, t := range u.Types {
		if !t.IsAssignableTo(other) {
			return false
		}
	}
	return true
}

// Accepts reports whether a value of type t may flow into this union.
func (u *UnionType) Accepts(t Type) bool {
	for _, member := range u.Types {
		if t.Equals(member) || t.IsAssignableTo(member) {
			return true
		}
	}
	return false
}

// Contains reports whether the union has a member equal to t.
func (u *UnionType) Contains(t Type) bool {
	for _, member := range u.Types {
		if t.Equals(member) {
			return true
		}
	}
	return false
}

// Without returns the union minus the given member, collapsing to a
// single type when one member remains.
func (u *UnionType) Without(t Type) Type {
	var rest []Type
	for _, member := range u.Types {
		if !member.Equals(t) {
			rest = append(rest, member)
		}
	}
	switch len(rest) {
	case 0:
		return UnknownT
	case 1:
		return rest[0]
	default:
		return &UnionType{Types: rest}
	}
}

// ============================================================================
// GENERIC AND UNKNOWN TYPES
// ============================================================================

// GenericType is an unresolved generic type parameter.
type GenericType struct {
	Name string
}

func (g *GenericType) String() string { return g.Name }

func (g *GenericType) Equals(other Type) bool {
	if otherGeneric, ok := other.(*GenericType); ok {
		return g.Name == otherGeneric.Name
	}
	return false
}

// IsAssignableTo is permissive for unresolved parameters; the
// monomorphizer substitutes ground types before codegen.
func (g *GenericType) IsAssignableTo(other Type) bool { return true }

// UnknownType is the sink for errors. It participates in assignability as
// both top and bottom so one diagnostic does not cascade.
type UnknownType struct{}

func (u *UnknownType) String() string               { return "unknown" }
func (u *UnknownType) Equals(other Type) bool       { _, ok := other.(*UnknownType); return ok }
func (u *UnknownType) IsAssignableTo(other Type) bool { return true }

func isUnknown(t Type) bool {
	_, ok := t.(*UnknownType)
	return ok
}

// ============================================================================
// PREDEFINED TYPES
// ============================================================================

var (
	IntT    = &PrimitiveType{Kind: IntKind}
	FloatT  = &PrimitiveType{Kind: FloatKind}
	DoubleT = &PrimitiveType{Kind: DoubleKind}
	CharT   = &PrimitiveType{Kind: CharKind}
	BoolT   = &PrimitiveType{Kind: BoolKind}
	StringT = &PrimitiveType{Kind: StringKind}
	VoidT   = &PrimitiveType{Kind: VoidKind}
	NullT   = &PrimitiveType{Kind: NullKind}

	UnknownT = &UnknownType{}
)

// ============================================================================
// TYPE UTILITIES
// ============================================================================

// NewUnion builds a union from the given members, flattening nested
// unions and deduplicating. A single surviving member is returned as-is.
func NewUnion(types ...Type) Type {
	var members []Type
	var add func(t Type)
	add = func(t Type) {
		if inner, ok := t.(*UnionType); ok {
			for _, m := range inner.Types {
				add(m)
			}
			return
		}
		for _, existing := range members {
			if existing.Equals(t) {
				return
			}
		}
		members = append(members, t)
	}
	for _, t := range types {
		add(t)
	}
	if len(members) == 1 {
		return members[0]
	}
	return &UnionType{Types: members}
}

// NewOptional returns T | null.
func NewOptional(inner Type) Type {
	return NewUnion(inner, NullT)
}

// IsNullable reports whether t admits null.
func IsNullable(t Type) bool {
	if t.Equals(NullT) {
		return true
	}
	if union, ok := t.(*UnionType); ok {
		return union.Contains(NullT)
	}
	if _, ok := t.(*WeakType); ok {
		return true
	}
	return false
}

// NonNull strips null from t.
func NonNull(t Type) Type {
	if union, ok := t.(*UnionType); ok && union.Contains(NullT) {
		return union.Without(NullT)
	}
	if weak, ok := t.(*WeakType); ok {
		return weak.Inner
	}
	return t
}

// IsNumeric reports whether t is int, float or double.
func IsNumeric(t Type) bool {
	if prim, ok := t.(*PrimitiveType); ok {
		switch prim.Kind {
		case IntKind, FloatKind, DoubleKind:
			return true
		}
	}
	return false
}

// IsString reports whether t is string.
func IsString(t Type) bool {
	return t.Equals(StringT)
}

// IsAdmissibleKey reports whether t may key a map or populate a set
// (int, string, bool, char, enum).
func IsAdmissibleKey(t Type) bool {
	if prim, ok := t.(*PrimitiveType); ok {
		switch prim.Kind {
		case IntKind, StringKind, BoolKind, CharKind:
			return true
		}
		return false
	}
	_, isEnum := t.(*EnumType)
	return isEnum
}

// WiderNumeric returns the wider of two numeric types
// (int < float < double).
func WiderNumeric(a, b Type) Type {
	rank := func(t Type) int {
		if prim, ok := t.(*PrimitiveType); ok {
			switch prim.Kind {
			case IntKind:
				return 1
			case FloatKind:
				return 2
			case DoubleKind:
				return 3
			}
		}
		return 0
	}
	if rank(a) >= rank(b) {
		return a
	}
	return b
}

// Mangle produces the canonical mangled suffix of a type for
// monomorphized declaration names (e.g. identity__primitive_int).
func Mangle(t Type) string {
	switch tt := t.(type) {
	case *PrimitiveType:
		return "primitive_" + tt.String()
	case *ClassType:
		name := "class_" + tt.Name
		for _, a := range tt.Args {
			name += "__" + Mangle(a)
		}
		return name
	case *EnumType:
		return "enum_" + tt.Name
	case *ArrayType:
		return "array_" + Mangle(tt.ElementType)
	case *MapType:
		return "map_" + Mangle(tt.KeyType) + "_" + Mangle(tt.ValueType)
	case *SetType:
		return "set_" + Mangle(tt.ElementType)
	case *UnionType:
		var parts []string
		for _, m := range tt.Types {
			parts = append(parts, Mangle(m))
		}
		return "union_" + strings.Join(parts, "_")
	case *WeakType:
		return "weak_" + Mangle(tt.Inner)
	case *GenericType:
		return "generic_" + tt.Name
	default:
		return "unknown"
	}
}

// IsGround reports whether none of the types contain an unresolved
// generic parameter.
func IsGround(types ...Type) bool {
	for _, t := range types {
		switch tt := t.(type) {
		case *GenericType:
			return false
		case *ArrayType:
			if !IsGround(tt.ElementType) {
				return false
			}
		case *MapType:
			if !IsGround(tt.KeyType, tt.ValueType) {
				return false
			}
		case *SetType:
			if !IsGround(tt.ElementType) {
				return false
			}
		case *WeakType:
			if !IsGround(tt.Inner) {
				return false
			}
		case *UnionType:
			if !IsGround(tt.Types...) {
				return false
			}
		case *ClassType:
			if !IsGround(tt.Args...) {
				return false
			}
		case *FunctionType:
			if !IsGround(tt.Parameters...) || !IsGround(tt.ReturnType) {
				return false
			}
		}
	}
	return true
}

// MangledName joins a declaration name with its type arguments.
func MangledName(base string, args []Type) string {
	name := base
	for _, a := range args {
		name += "__" + Mangle(a)
	}
	return name
}
