package generics

import (
	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/lexer"
	"github.com/tgc-lang/tgc/sema"
)

// rewriteProgram rewrites the non-generic portions of a program in
// place: generic call sites get their mangled callee names, and ground
// generic type references flatten to the specialized class names.
// Generic declarations themselves are left untouched; they are dropped
// from emission instead.
func (m *Monomorphizer) rewriteProgram(program *ast.Program) {
	emptySubst := map[string]sema.Type{}
	for _, stmt := range program.Body {
		switch d := stmt.(type) {
		case *ast.FunctionDeclaration:
			if len(d.TypeParameters) > 0 {
				continue
			}
		case *ast.ClassDeclaration:
			if len(d.TypeParameters) > 0 {
				continue
			}
		}
		m.rewriteStmt(stmt, emptySubst)
	}
}

func (m *Monomorphizer) rewriteStmt(stmt ast.Statement, subst map[string]sema.Type) {
	switch s := stmt.(type) {
	case *ast.BlockStatement:
		for _, inner := range s.Body {
			m.rewriteStmt(inner, subst)
		}
	case *ast.ExpressionStatement:
		s.Expression = m.rewriteExpr(s.Expression, subst)
	case *ast.VariableDeclaration:
		for _, d := range s.Declarations {
			d.TypeAnnotation = m.rewriteType(d.TypeAnnotation)
			d.Init = m.rewriteExpr(d.Init, subst)
		}
	case *ast.FunctionDeclaration:
		for _, p := range s.Parameters {
			p.TypeAnnotation = m.rewriteType(p.TypeAnnotation)
			p.DefaultValue = m.rewriteExpr(p.DefaultValue, subst)
		}
		s.ReturnType = m.rewriteType(s.ReturnType)
		m.rewriteStmt(s.Body, subst)
	case *ast.ClassDeclaration:
		for _, member := range s.Body {
			switch mem := member.(type) {
			case *ast.FieldDefinition:
				mem.TypeAnnotation = m.rewriteType(mem.TypeAnnotation)
				mem.Value = m.rewriteExpr(mem.Value, subst)
			case *ast.MethodDefinition:
				for _, p := range mem.Value.Parameters {
					p.TypeAnnotation = m.rewriteType(p.TypeAnnotation)
				}
				mem.Value.ReturnType = m.rewriteType(mem.Value.ReturnType)
				m.rewriteStmt(mem.Value.Body, subst)
			}
		}
	case *ast.TypeAliasDeclaration:
		s.Type = m.rewriteType(s.Type)
	case *ast.IfStatement:
		s.Test = m.rewriteExpr(s.Test, subst)
		m.rewriteStmt(s.Consequent, subst)
		if s.Alternate != nil {
			m.rewriteStmt(s.Alternate, subst)
		}
	case *ast.WhileStatement:
		s.Test = m.rewriteExpr(s.Test, subst)
		m.rewriteStmt(s.Body, subst)
	case *ast.ForStatement:
		if s.Init != nil {
			m.rewriteStmt(s.Init, subst)
		}
		s.Test = m.rewriteExpr(s.Test, subst)
		s.Update = m.rewriteExpr(s.Update, subst)
		m.rewriteStmt(s.Body, subst)
	case *ast.ForOfStatement:
		s.Right = m.rewriteExpr(s.Right, subst)
		m.rewriteStmt(s.Body, subst)
	case *ast.SwitchStatement:
		s.Discriminant = m.rewriteExpr(s.Discriminant, subst)
		for _, c := range s.Cases {
			for i, t := range c.Tests {
				c.Tests[i] = m.rewriteExpr(t, subst)
			}
			for _, b := range c.Body {
				m.rewriteStmt(b, subst)
			}
		}
	case *ast.ReturnStatement:
		s.Argument = m.rewriteExpr(s.Argument, subst)
	}
}

func (m *Monomorphizer) rewriteExpr(expr ast.Expression, subst map[string]sema.Type) ast.Expression {
	switch e := expr.(type) {
	case nil:
		return nil
	case *ast.CallExpression:
		for i, a := range e.Arguments {
			e.Arguments[i] = m.rewriteExpr(a, subst)
		}
		e.Callee = m.rewriteExpr(e.Callee, subst)
		if inst, ok := m.ctx.Info.GenericCalls[e]; ok {
			if grounded := m.ground(inst, subst); grounded != nil {
				if id, isIdent := e.Callee.(*ast.Identifier); isIdent {
					id.Name = grounded.Mangled
				}
				e.TypeArgs = nil
			}
		}
		return e
	case *ast.NewExpression:
		for i, a := range e.Arguments {
			e.Arguments[i] = m.rewriteExpr(a, subst)
		}
		return m.rewriteNew(e)
	case *ast.BinaryExpression:
		e.Left = m.rewriteExpr(e.Left, subst)
		e.Right = m.rewriteExpr(e.Right, subst)
		return e
	case *ast.UnaryExpression:
		e.Operand = m.rewriteExpr(e.Operand, subst)
		return e
	case *ast.AssignmentExpression:
		e.Left = m.rewriteExpr(e.Left, subst)
		e.Right = m.rewriteExpr(e.Right, subst)
		return e
	case *ast.MemberExpression:
		e.Object = m.rewriteExpr(e.Object, subst)
		if e.Computed {
			e.Property = m.rewriteExpr(e.Property, subst)
		}
		return e
	case *ast.ConditionalExpression:
		e.Test = m.rewriteExpr(e.Test, subst)
		e.Consequent = m.rewriteExpr(e.Consequent, subst)
		e.Alternate = m.rewriteExpr(e.Alternate, subst)
		return e
	case *ast.RangeExpression:
		e.Start = m.rewriteExpr(e.Start, subst)
		e.Stop = m.rewriteExpr(e.Stop, subst)
		return e
	case *ast.AwaitExpression:
		e.Argument = m.rewriteExpr(e.Argument, subst)
		return e
	case *ast.TypeTestExpression:
		e.Expr = m.rewriteExpr(e.Expr, subst)
		e.Type = m.rewriteType(e.Type)
		return e
	case *ast.CastExpression:
		e.Expression = m.rewriteExpr(e.Expression, subst)
		e.Type = m.rewriteType(e.Type)
		return e
	case *ast.NonNullAssertion:
		e.Expression = m.rewriteExpr(e.Expression, subst)
		return e
	case *ast.ArrayLiteral:
		for i, el := range e.Elements {
			e.Elements[i] = m.rewriteExpr(el, subst)
		}
		return e
	case *ast.ObjectLiteral:
		for _, p := range e.Properties {
			p.Value = m.rewriteExpr(p.Value, subst)
		}
		return e
	case *ast.TemplateLiteral:
		for i, x := range e.Exprs {
			e.Exprs[i] = m.rewriteExpr(x, subst)
		}
		return e
	case *ast.ArrowFunctionExpression:
		for _, p := range e.Parameters {
			p.TypeAnnotation = m.rewriteType(p.TypeAnnotation)
		}
		e.ReturnType = m.rewriteType(e.ReturnType)
		m.rewriteStmt(e.Body, subst)
		return e
	case *ast.FunctionExpression:
		for _, p := range e.Parameters {
			p.TypeAnnotation = m.rewriteType(p.TypeAnnotation)
		}
		e.ReturnType = m.rewriteType(e.ReturnType)
		m.rewriteStmt(e.Body, subst)
		return e
	default:
		return expr
	}
}

func (m *Monomorphizer) rewriteType(node ast.TypeNode) ast.TypeNode {
	switch t := node.(type) {
	case nil:
		return nil
	case *ast.TypeReference:
		for i, a := range t.TypeArgs {
			t.TypeArgs[i] = m.rewriteType(a)
		}
		return m.rewriteTypeRef(t)
	case *ast.ArrayType:
		t.ElementType = m.rewriteType(t.ElementType)
		return t
	case *ast.OptionalType:
		t.Inner = m.rewriteType(t.Inner)
		return t
	case *ast.WeakType:
		t.Inner = m.rewriteType(t.Inner)
		return t
	case *ast.UnionType:
		for i, member := range t.Types {
			t.Types[i] = m.rewriteType(member)
		}
		return t
	case *ast.FunctionType:
		for _, p := range t.Parameters {
			p.TypeAnnotation = m.rewriteType(p.TypeAnnotation)
		}
		t.ReturnType = m.rewriteType(t.ReturnType)
		return t
	default:
		return node
	}
}

// typeToNode converts a resolved semantic type back into a syntactic
// annotation, used when substituting type parameters in cloned bodies.
func typeToNode(t sema.Type, pos lexer.Position) ast.TypeNode {
	switch tt := t.(type) {
	case *sema.PrimitiveType:
		var kind lexer.Token
		switch tt.Kind {
		case sema.IntKind:
			kind = lexer.INT_T
		case sema.FloatKind:
			kind = lexer.FLOAT_T
		case sema.DoubleKind:
			kind = lexer.DOUBLE_T
		case sema.CharKind:
			kind = lexer.CHAR_T
		case sema.BoolKind:
			kind = lexer.BOOL_T
		case sema.StringKind:
			kind = lexer.STRING_T
		case sema.VoidKind:
			kind = lexer.VOID
		case sema.NullKind:
			kind = lexer.NULL
		default:
			kind = lexer.VOID
		}
		return &ast.BasicType{TypePos: pos, Kind: kind}
	case *sema.ClassType:
		name := tt.Name
		if len(tt.Args) > 0 {
			name = sema.MangledName(tt.Name, tt.Args)
		}
		return &ast.TypeReference{Name: &ast.Identifier{NamePos: pos, Name: name}}
	case *sema.EnumType:
		return &ast.TypeReference{Name: &ast.Identifier{NamePos: pos, Name: tt.Name}}
	case *sema.ArrayType:
		return &ast.ArrayType{ElementType: typeToNode(tt.ElementType, pos)}
	case *sema.MapType:
		return &ast.TypeReference{
			Name: &ast.Identifier{NamePos: pos, Name: "Map"},
			TypeArgs: []ast.TypeNode{
				typeToNode(tt.KeyType, pos),
				typeToNode(tt.ValueType, pos),
			},
		}
	case *sema.SetType:
		return &ast.TypeReference{
			Name:     &ast.Identifier{NamePos: pos, Name: "Set"},
			TypeArgs: []ast.TypeNode{typeToNode(tt.ElementType, pos)},
		}
	case *sema.WeakType:
		return &ast.WeakType{WeakPos: pos, Inner: typeToNode(tt.Inner, pos)}
	case *sema.UnionType:
		out := &ast.UnionType{}
		for _, member := range tt.Types {
			out.Types = append(out.Types, typeToNode(member, pos))
		}
		return out
	case *sema.FunctionType:
		out := &ast.FunctionType{ReturnType: typeToNode(tt.ReturnType, pos)}
		for i, p := range tt.Parameters {
			out.Parameters = append(out.Parameters, &ast.Parameter{
				Name:           &ast.Identifier{NamePos: pos, Name: paramName(i)},
				TypeAnnotation: typeToNode(p, pos),
			})
		}
		return out
	case *sema.GenericType:
		return &ast.TypeReference{Name: &ast.Identifier{NamePos: pos, Name: tt.Name}}
	default:
		return &ast.BasicType{TypePos: pos, Kind: lexer.VOID}
	}
}

func paramName(i int) string {
	return string(rune('a' + i%26))
}
