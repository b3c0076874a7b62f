package sema

import (
	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/diag"
)

// analyzeDiscriminants inspects a union type alias for the discriminated
// pattern: every member is a class carrying a const field of the same
// name with a distinct compile-time value. When found, the value-to-class
// map is recorded for narrowing and for backend tag dispatch.
func (v *Validator) analyzeDiscriminants(decl *ast.TypeAliasDeclaration, aliased Type) {
	union, ok := aliased.(*UnionType)
	if !ok {
		return
	}

	var members []*ast.ClassDeclaration
	for _, member := range union.Types {
		class, isClass := member.(*ClassType)
		if !isClass {
			return
		}
		classDecl, exists := v.ctx.Classes[class.Name]
		if !exists {
			return
		}
		members = append(members, classDecl)
	}
	if len(members) < 2 {
		return
	}

	// Candidate discriminants are the const fields of the first member.
	for _, field := range members[0].Fields() {
		if !field.Const || field.Value == nil {
			continue
		}
		info := v.tryDiscriminant(decl, members, field.Name())
		if info != nil {
			v.ctx.Discriminants[decl.Name.Name] = info
			return
		}
	}
}

// tryDiscriminant checks whether every member carries a const field of
// the given name with pairwise-distinct values.
func (v *Validator) tryDiscriminant(decl *ast.TypeAliasDeclaration, members []*ast.ClassDeclaration, fieldName string) *DiscriminantInfo {
	byValue := make(map[string]string, len(members))

	for _, member := range members {
		field := member.FieldNamed(fieldName)
		if field == nil || !field.Const || field.Value == nil {
			return nil
		}
		value := field.Value.String()
		if other, dup := byValue[value]; dup {
			v.bag.Errorf(diag.KindType, field.Value.Pos(),
				"discriminant '%s' value %s of class '%s' collides with class '%s' in union '%s'",
				fieldName, value, member.Name.Name, other, decl.Name.Name)
			return nil
		}
		byValue[value] = member.Name.Name
	}

	return &DiscriminantInfo{
		UnionName: decl.Name.Name,
		Field:     fieldName,
		ByValue:   byValue,
	}
}
