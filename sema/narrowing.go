package sema

import (
	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/lexer"
)

// narrowingFact refines a symbol's type in the branches of a guard: the
// consequent sees thenType, the alternate sees elseType. Either side may
// be nil when the guard says nothing about it.
type narrowingFact struct {
	sym      *Symbol
	thenType Type
	elseType Type
}

// analyzeGuard extracts narrowing facts from an if/while condition:
//
//	x is T                  narrows x to T in the consequent
//	x.kind == "Tag"         narrows x to the union member carrying the tag
//	x == null / x != null   splits the nullable/non-null halves
//	!guard                  swaps the branches
func (v *Validator) analyzeGuard(test ast.Expression) []narrowingFact {
	switch e := test.(type) {
	case *ast.TypeTestExpression:
		return v.typeTestFacts(e)
	case *ast.BinaryExpression:
		switch e.Operator {
		case lexer.EQ:
			return v.equalityFacts(e, false)
		case lexer.NE:
			return v.equalityFacts(e, true)
		case lexer.LOGICAL_AND:
			// Both sides hold in the consequent; nothing is known in the
			// alternate.
			facts := append(v.analyzeGuard(e.Left), v.analyzeGuard(e.Right)...)
			for i := range facts {
				facts[i].elseType = nil
			}
			return facts
		}
	case *ast.UnaryExpression:
		if e.Operator == lexer.BANG && !e.Postfix {
			return invertFacts(v.analyzeGuard(e.Operand))
		}
	}
	return nil
}

func invertFacts(facts []narrowingFact) []narrowingFact {
	for i := range facts {
		facts[i].thenType, facts[i].elseType = facts[i].elseType, facts[i].thenType
	}
	return facts
}

// typeTestFacts narrows `x is T` when x is a union containing T.
func (v *Validator) typeTestFacts(e *ast.TypeTestExpression) []narrowingFact {
	id, ok := e.Expr.(*ast.Identifier)
	if !ok {
		return nil
	}
	sym, found := v.lookupSymbol(id.Name)
	if !found {
		return nil
	}

	tested := v.resolveTypeNode(e.Type)
	union, isUnion := sym.Type.(*UnionType)
	if !isUnion || !union.Contains(tested) {
		return nil
	}

	return []narrowingFact{{
		sym:      sym,
		thenType: tested,
		elseType: union.Without(tested),
	}}
}

// equalityFacts handles null guards and discriminant-tag guards.
func (v *Validator) equalityFacts(e *ast.BinaryExpression, negated bool) []narrowingFact {
	// x == null / null == x
	if fact := v.nullGuardFact(e.Left, e.Right); fact != nil {
		if negated {
			return invertFacts([]narrowingFact{*fact})
		}
		return []narrowingFact{*fact}
	}
	if fact := v.nullGuardFact(e.Right, e.Left); fact != nil {
		if negated {
			return invertFacts([]narrowingFact{*fact})
		}
		return []narrowingFact{*fact}
	}

	// x.kind == "Tag"
	if fact := v.discriminantFact(e.Left, e.Right); fact != nil {
		if negated {
			return invertFacts([]narrowingFact{*fact})
		}
		return []narrowingFact{*fact}
	}
	if fact := v.discriminantFact(e.Right, e.Left); fact != nil {
		if negated {
			return invertFacts([]narrowingFact{*fact})
		}
		return []narrowingFact{*fact}
	}

	return nil
}

// nullGuardFact narrows `x == null`: null in the consequent, non-null in
// the alternate.
func (v *Validator) nullGuardFact(subject, literal ast.Expression) *narrowingFact {
	if _, isNull := literal.(*ast.NullLiteral); !isNull {
		return nil
	}
	id, ok := subject.(*ast.Identifier)
	if !ok {
		return nil
	}
	sym, found := v.lookupSymbol(id.Name)
	if !found || !IsNullable(sym.Type) {
		return nil
	}
	return &narrowingFact{
		sym:      sym,
		thenType: NullT,
		elseType: NonNull(sym.Type),
	}
}

// discriminantFact narrows `x.kind == "Tag"` when x is a union of classes
// that all declare a const field named kind with distinct values. The
// consequent sees the single member whose tag matches; the alternate
// excludes it.
func (v *Validator) discriminantFact(memberAccess, literal ast.Expression) *narrowingFact {
	access, ok := memberAccess.(*ast.MemberExpression)
	if !ok || access.Computed {
		return nil
	}
	id, ok := access.Object.(*ast.Identifier)
	if !ok {
		return nil
	}

	var tagValue string
	switch lit := literal.(type) {
	case *ast.StringLiteral:
		tagValue = lit.String()
	case *ast.IntegerLiteral:
		tagValue = lit.String()
	default:
		return nil
	}

	sym, found := v.lookupSymbol(id.Name)
	if !found {
		return nil
	}
	subjectType := sym.Type
	if narrowed, ok := v.scope.NarrowedType(sym); ok {
		subjectType = narrowed
	}
	union, isUnion := subjectType.(*UnionType)
	if !isUnion {
		return nil
	}

	fieldName := memberName(access.Property)
	var matched Type
	for _, member := range union.Types {
		class, isClass := member.(*ClassType)
		if !isClass {
			return nil
		}
		decl, exists := v.ctx.Classes[class.Name]
		if !exists {
			return nil
		}
		field := decl.FieldNamed(fieldName)
		if field == nil || !field.Const || field.Value == nil {
			return nil
		}
		if field.Value.String() == tagValue {
			if matched != nil {
				// Tag values are not distinct; no narrowing possible.
				return nil
			}
			matched = member
		}
	}
	if matched == nil {
		return nil
	}

	return &narrowingFact{
		sym:      sym,
		thenType: matched,
		elseType: union.Without(matched),
	}
}
