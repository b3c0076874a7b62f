package sema

import (
	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/diag"
)

// checkAsyncCall enforces the isolation rule on a scheduled call's
// arguments: each must be a primitive, a string, or a deeply-immutable
// class instance, since the callee runs on a worker with no shared
// mutable state. The check is transitive over reachable fields.
func (v *Validator) checkAsyncCall(e *ast.CallExpression) {
	for _, arg := range e.Arguments {
		argType := v.ctx.Info.TypeOf(arg)
		if isUnknown(argType) {
			continue
		}
		if reason := v.isolationViolation(argType, make(map[string]bool)); reason != "" {
			v.bag.Errorf(diag.KindIsolation, arg.Pos(),
				"argument of type '%s' cannot cross an async boundary: %s; "+
					"async arguments must be primitives or deeply immutable",
				argType.String(), reason)
		}
	}
}

// isolationViolation returns a human-readable reason when t is not safe
// to hand to a worker, or "" when it is. visited breaks class cycles.
func (v *Validator) isolationViolation(t Type, visited map[string]bool) string {
	switch tt := t.(type) {
	case *PrimitiveType:
		return ""
	case *EnumType:
		return ""
	case *ArrayType:
		return "arrays are mutable"
	case *MapType:
		return "maps are mutable"
	case *SetType:
		return "sets are mutable"
	case *WeakType:
		return "weak references are not owned"
	case *FunctionType:
		return "functions may capture mutable state"
	case *UnionType:
		for _, member := range tt.Types {
			if reason := v.isolationViolation(member, visited); reason != "" {
				return reason
			}
		}
		return ""
	case *ClassType:
		if visited[tt.Name] {
			return ""
		}
		visited[tt.Name] = true

		decl, exists := v.ctx.Classes[tt.Name]
		if !exists {
			if _, isExtern := v.ctx.Externs[tt.Name]; isExtern {
				return "extern class '" + tt.Name + "' is host-owned"
			}
			return ""
		}
		for _, field := range decl.Fields() {
			if field.Static {
				continue
			}
			if !field.Const && !field.Readonly {
				return "field '" + field.Name() + "' of class '" + tt.Name + "' is mutable"
			}
			if reason := v.isolationViolation(v.fieldType(field), visited); reason != "" {
				return reason
			}
		}
		return ""
	default:
		return ""
	}
}
