package sema

import (
	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/diag"
	"github.com/tgc-lang/tgc/lexer"
)

// declareProgram installs type and symbol stubs for every top-level
// declaration before any body is checked, so cyclic references between
// classes and recursive functions resolve.
func (v *Validator) declareProgram(program *ast.Program) {
	// First wave: nominal declarations.
	for _, stmt := range program.Body {
		switch decl := stmt.(type) {
		case *ast.ClassDeclaration:
			if _, exists := v.ctx.Classes[decl.Name.Name]; exists {
				v.bag.Errorf(diag.KindResolution, decl.Name.NamePos,
					"class '%s' has already been declared", decl.Name.Name)
				continue
			}
			v.ctx.Classes[decl.Name.Name] = decl
			v.define(&Symbol{
				Name:     decl.Name.Name,
				Type:     &ClassType{Name: decl.Name.Name},
				Kind:     ClassSymbol,
				Position: decl.Name.NamePos,
				Decl:     decl,
			})
		case *ast.ExternClassDeclaration:
			if _, exists := v.ctx.Externs[decl.Name.Name]; exists {
				v.bag.Errorf(diag.KindResolution, decl.Name.NamePos,
					"extern class '%s' has already been declared", decl.Name.Name)
				continue
			}
			v.ctx.Externs[decl.Name.Name] = decl
			v.define(&Symbol{
				Name:     decl.Name.Name,
				Type:     &ClassType{Name: decl.Name.Name, Extern: true},
				Kind:     ExternClassSymbol,
				Position: decl.Name.NamePos,
				Decl:     decl,
			})
		case *ast.EnumDeclaration:
			if _, exists := v.ctx.Enums[decl.Name.Name]; exists {
				v.bag.Errorf(diag.KindResolution, decl.Name.NamePos,
					"enum '%s' has already been declared", decl.Name.Name)
				continue
			}
			v.ctx.Enums[decl.Name.Name] = decl
			v.define(&Symbol{
				Name:     decl.Name.Name,
				Type:     &EnumType{Name: decl.Name.Name},
				Kind:     EnumSymbol,
				Position: decl.Name.NamePos,
				Decl:     decl,
			})
		case *ast.InterfaceDeclaration:
			v.ctx.Interfaces[decl.Name.Name] = decl
			v.define(&Symbol{
				Name:     decl.Name.Name,
				Type:     UnknownT,
				Kind:     InterfaceSymbol,
				Position: decl.Name.NamePos,
				Decl:     decl,
			})
		}
	}

	// Second wave: aliases and function signatures, which may reference
	// the nominal declarations in any order.
	for _, stmt := range program.Body {
		switch decl := stmt.(type) {
		case *ast.TypeAliasDeclaration:
			aliased := v.resolveTypeNode(decl.Type)
			v.ctx.Aliases[decl.Name.Name] = aliased
			v.define(&Symbol{
				Name:     decl.Name.Name,
				Type:     aliased,
				Kind:     TypeAliasSymbol,
				Position: decl.Name.NamePos,
				Decl:     decl,
			})
			v.analyzeDiscriminants(decl, aliased)
		case *ast.FunctionDeclaration:
			if _, exists := v.ctx.Functions[decl.Name.Name]; exists {
				v.bag.Errorf(diag.KindResolution, decl.Name.NamePos,
					"function '%s' has already been declared", decl.Name.Name)
				continue
			}
			v.ctx.Functions[decl.Name.Name] = decl
			v.define(&Symbol{
				Name:     decl.Name.Name,
				Type:     v.functionType(decl),
				Kind:     FunctionSymbol,
				Position: decl.Name.NamePos,
				Decl:     decl,
			})
		}
	}
}

// define installs a symbol in the global scope, reporting collisions.
func (v *Validator) define(sym *Symbol) {
	if err := v.ctx.Global.Define(sym); err != nil {
		v.bag.Errorf(diag.KindResolution, sym.Position, "%s", err.Error())
	}
}

// functionType resolves a function declaration's signature. Generic
// parameters resolve to GenericType placeholders.
func (v *Validator) functionType(decl *ast.FunctionDeclaration) *FunctionType {
	savedParams := v.typeParams
	v.typeParams = typeParamSet(decl.TypeParameters)
	defer func() { v.typeParams = savedParams }()

	ft := &FunctionType{ReturnType: VoidT}
	for _, param := range decl.Parameters {
		if param.TypeAnnotation != nil {
			ft.Parameters = append(ft.Parameters, v.resolveTypeNode(param.TypeAnnotation))
		} else {
			ft.Parameters = append(ft.Parameters, UnknownT)
		}
	}
	if decl.ReturnType != nil {
		ft.ReturnType = v.resolveTypeNode(decl.ReturnType)
	}
	return ft
}

func typeParamSet(params []*ast.TypeParameter) map[string]bool {
	if len(params) == 0 {
		return nil
	}
	set := make(map[string]bool, len(params))
	for _, p := range params {
		set[p.Name.Name] = true
	}
	return set
}

// resolveTypeNode converts a syntactic type annotation into a semantic
// type, enforcing map-key and set-element admissibility.
func (v *Validator) resolveTypeNode(node ast.TypeNode) Type {
	switch t := node.(type) {
	case *ast.BasicType:
		switch t.Kind {
		case lexer.INT_T:
			return IntT
		case lexer.FLOAT_T:
			return FloatT
		case lexer.DOUBLE_T:
			return DoubleT
		case lexer.CHAR_T:
			return CharT
		case lexer.BOOL_T:
			return BoolT
		case lexer.STRING_T:
			return StringT
		case lexer.VOID:
			return VoidT
		case lexer.NULL:
			return NullT
		default:
			return UnknownT
		}
	case *ast.ArrayType:
		return &ArrayType{ElementType: v.resolveTypeNode(t.ElementType)}
	case *ast.OptionalType:
		return NewOptional(v.resolveTypeNode(t.Inner))
	case *ast.WeakType:
		inner := v.resolveTypeNode(t.Inner)
		if _, ok := inner.(*ClassType); !ok && !isUnknown(inner) {
			v.bag.Errorf(diag.KindType, t.WeakPos,
				"weak references require a class type, got '%s'", inner.String())
			return UnknownT
		}
		return &WeakType{Inner: inner}
	case *ast.UnionType:
		var members []Type
		for _, m := range t.Types {
			members = append(members, v.resolveTypeNode(m))
		}
		return NewUnion(members...)
	case *ast.FunctionType:
		ft := &FunctionType{ReturnType: VoidT}
		for _, param := range t.Parameters {
			if param.TypeAnnotation != nil {
				ft.Parameters = append(ft.Parameters, v.resolveTypeNode(param.TypeAnnotation))
			} else {
				ft.Parameters = append(ft.Parameters, UnknownT)
			}
		}
		if t.ReturnType != nil {
			ft.ReturnType = v.resolveTypeNode(t.ReturnType)
		}
		return ft
	case *ast.TypeReference:
		return v.resolveTypeReference(t)
	default:
		return UnknownT
	}
}

// resolveTypeReference resolves a named type: a generic parameter, one of
// the built-in generic containers, or a declared class/enum/alias.
func (v *Validator) resolveTypeReference(ref *ast.TypeReference) Type {
	name := ref.Name.Name

	if v.typeParams[name] {
		return &GenericType{Name: name}
	}

	switch name {
	case "Array":
		if len(ref.TypeArgs) != 1 {
			v.bag.Errorf(diag.KindType, ref.Name.NamePos, "Array takes exactly one type argument")
			return UnknownT
		}
		return &ArrayType{ElementType: v.resolveTypeNode(ref.TypeArgs[0])}
	case "Map":
		if len(ref.TypeArgs) != 2 {
			v.bag.Errorf(diag.KindType, ref.Name.NamePos, "Map takes exactly two type arguments")
			return UnknownT
		}
		key := v.resolveTypeNode(ref.TypeArgs[0])
		if !IsAdmissibleKey(key) && !isUnknown(key) {
			v.bag.Errorf(diag.KindType, ref.Name.NamePos,
				"'%s' is not an admissible map key type (int, string, bool, char, enum)", key.String())
		}
		return &MapType{KeyType: key, ValueType: v.resolveTypeNode(ref.TypeArgs[1])}
	case "Set":
		if len(ref.TypeArgs) != 1 {
			v.bag.Errorf(diag.KindType, ref.Name.NamePos, "Set takes exactly one type argument")
			return UnknownT
		}
		elem := v.resolveTypeNode(ref.TypeArgs[0])
		if !IsAdmissibleKey(elem) && !isUnknown(elem) {
			v.bag.Errorf(diag.KindType, ref.Name.NamePos,
				"'%s' is not an admissible set element type (int, string, bool, char, enum)", elem.String())
		}
		return &SetType{ElementType: elem}
	}

	if decl, ok := v.ctx.Classes[name]; ok {
		var args []Type
		for _, a := range ref.TypeArgs {
			args = append(args, v.resolveTypeNode(a))
		}
		if len(args) != len(decl.TypeParameters) {
			if len(decl.TypeParameters) > 0 && len(args) == 0 {
				v.bag.Errorf(diag.KindGeneric, ref.Name.NamePos,
					"generic class '%s' used without type arguments", name)
				return UnknownT
			}
			if len(args) != len(decl.TypeParameters) {
				v.bag.Errorf(diag.KindGeneric, ref.Name.NamePos,
					"class '%s' expects %d type arguments, got %d",
					name, len(decl.TypeParameters), len(args))
				return UnknownT
			}
		}
		if len(args) > 0 && IsGround(args...) {
			mangled := MangledName(name, args)
			if _, exists := v.ctx.Instantiations[mangled]; !exists {
				v.ctx.Instantiations[mangled] = &Instantiation{
					DeclName: name,
					Args:     args,
					Mangled:  mangled,
				}
			}
		}
		return &ClassType{Name: name, Args: args}
	}
	if _, ok := v.ctx.Externs[name]; ok {
		return &ClassType{Name: name, Extern: true}
	}
	if _, ok := v.ctx.Enums[name]; ok {
		return &EnumType{Name: name}
	}
	if aliased, ok := v.ctx.Aliases[name]; ok {
		return aliased
	}
	if _, ok := v.ctx.Interfaces[name]; ok {
		// Interfaces survive to validation only in open-world mode or when
		// desugaring failed; treat the reference nominally.
		return &ClassType{Name: name}
	}

	v.bag.Errorf(diag.KindResolution, ref.Name.NamePos, "undefined type '%s'", name)
	return UnknownT
}

// fieldType resolves a field's declared or inferred type.
func (v *Validator) fieldType(field *ast.FieldDefinition) Type {
	if field.TypeAnnotation != nil {
		t := v.resolveTypeNode(field.TypeAnnotation)
		if field.Weak {
			if _, ok := t.(*WeakType); !ok {
				if class, isClass := t.(*ClassType); isClass {
					return &WeakType{Inner: class}
				}
			}
		}
		return t
	}
	if field.Value != nil {
		return v.checkExpression(field.Value, nil)
	}
	return UnknownT
}

// classMemberType resolves the type of a named member on a class,
// returning the field or method and whether it is private/static.
type memberInfo struct {
	typ     Type
	private bool
	static  bool
	isConst bool
	readonly bool
	field   *ast.FieldDefinition
	method  *ast.MethodDefinition
}

// lookupClassMember finds a member on a declared class, applying the
// given substitution for generic class instantiations.
func (v *Validator) lookupClassMember(decl *ast.ClassDeclaration, name string, subst map[string]Type) *memberInfo {
	savedParams := v.typeParams
	v.typeParams = typeParamSet(decl.TypeParameters)
	defer func() { v.typeParams = savedParams }()

	if field := decl.FieldNamed(name); field != nil {
		t := v.fieldType(field)
		if subst != nil {
			t = Substitute(t, subst)
		}
		return &memberInfo{
			typ:      t,
			private:  field.Visibility == ast.Private,
			static:   field.Static,
			isConst:  field.Const,
			readonly: field.Readonly,
			field:    field,
		}
	}
	if method := decl.MethodNamed(name); method != nil {
		ft := &FunctionType{ReturnType: VoidT}
		for _, param := range method.Value.Parameters {
			if param.TypeAnnotation != nil {
				ft.Parameters = append(ft.Parameters, v.resolveTypeNode(param.TypeAnnotation))
			} else {
				ft.Parameters = append(ft.Parameters, UnknownT)
			}
		}
		if method.Value.ReturnType != nil {
			ft.ReturnType = v.resolveTypeNode(method.Value.ReturnType)
		}
		var t Type = ft
		if subst != nil {
			t = Substitute(t, subst)
		}
		return &memberInfo{
			typ:     t,
			private: method.Visibility == ast.Private,
			static:  method.Static,
			method:  method,
		}
	}
	return nil
}

// lookupExternMember finds a member on an extern class declaration.
func (v *Validator) lookupExternMember(decl *ast.ExternClassDeclaration, name string) *memberInfo {
	for _, field := range decl.Fields {
		if field.Name() == name {
			return &memberInfo{
				typ:    v.resolveTypeNode(field.TypeAnnotation),
				static: field.Static,
			}
		}
	}
	for _, method := range decl.Methods {
		if method.Name() == name {
			ft := &FunctionType{ReturnType: VoidT}
			for _, param := range method.Parameters {
				if param.TypeAnnotation != nil {
					ft.Parameters = append(ft.Parameters, v.resolveTypeNode(param.TypeAnnotation))
				} else {
					ft.Parameters = append(ft.Parameters, UnknownT)
				}
			}
			if method.ReturnType != nil {
				ft.ReturnType = v.resolveTypeNode(method.ReturnType)
			}
			return &memberInfo{typ: ft, static: method.Static}
		}
	}
	return nil
}

// Substitute replaces generic type parameters with their bindings.
func Substitute(t Type, subst map[string]Type) Type {
	switch tt := t.(type) {
	case *GenericType:
		if bound, ok := subst[tt.Name]; ok {
			return bound
		}
		return tt
	case *ArrayType:
		return &ArrayType{ElementType: Substitute(tt.ElementType, subst)}
	case *MapType:
		return &MapType{
			KeyType:   Substitute(tt.KeyType, subst),
			ValueType: Substitute(tt.ValueType, subst),
		}
	case *SetType:
		return &SetType{ElementType: Substitute(tt.ElementType, subst)}
	case *WeakType:
		return &WeakType{Inner: Substitute(tt.Inner, subst)}
	case *UnionType:
		var members []Type
		for _, m := range tt.Types {
			members = append(members, Substitute(m, subst))
		}
		return NewUnion(members...)
	case *ClassType:
		if len(tt.Args) == 0 {
			return tt
		}
		var args []Type
		for _, a := range tt.Args {
			args = append(args, Substitute(a, subst))
		}
		return &ClassType{Name: tt.Name, Args: args, Extern: tt.Extern}
	case *FunctionType:
		ft := &FunctionType{ReturnType: Substitute(tt.ReturnType, subst), Variadic: tt.Variadic}
		for _, p := range tt.Parameters {
			ft.Parameters = append(ft.Parameters, Substitute(p, subst))
		}
		return ft
	default:
		return t
	}
}
