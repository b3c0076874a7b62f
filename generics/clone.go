package generics

import (
	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/sema"
)

// cloner deep-copies a generic declaration body while substituting its
// type parameters, rewriting nested generic call sites to their mangled
// names and feeding newly discovered instantiations back to the
// monomorphizer's worklist.
type cloner struct {
	m     *Monomorphizer
	subst map[string]sema.Type
}

func (c *cloner) cloneStmt(stmt ast.Statement) ast.Statement {
	switch s := stmt.(type) {
	case nil:
		return nil
	case *ast.BlockStatement:
		return c.cloneBlock(s)
	case *ast.ExpressionStatement:
		return &ast.ExpressionStatement{
			Expression: c.cloneExpr(s.Expression),
			Semicolon:  s.Semicolon,
		}
	case *ast.VariableDeclaration:
		out := &ast.VariableDeclaration{DeclPos: s.DeclPos, Kind: s.Kind, Semicolon: s.Semicolon}
		for _, d := range s.Declarations {
			out.Declarations = append(out.Declarations, &ast.VariableDeclarator{
				Id:             c.cloneExpr(d.Id).(ast.BindingTarget),
				TypeAnnotation: c.cloneType(d.TypeAnnotation),
				Init:           c.cloneExpr(d.Init),
			})
		}
		return out
	case *ast.IfStatement:
		return &ast.IfStatement{
			IfPos:      s.IfPos,
			LParen:     s.LParen,
			Test:       c.cloneExpr(s.Test),
			RParen:     s.RParen,
			Consequent: c.cloneStmt(s.Consequent),
			ElsePos:    s.ElsePos,
			Alternate:  c.cloneStmt(s.Alternate),
		}
	case *ast.WhileStatement:
		return &ast.WhileStatement{
			WhilePos: s.WhilePos,
			LParen:   s.LParen,
			Test:     c.cloneExpr(s.Test),
			RParen:   s.RParen,
			Body:     c.cloneStmt(s.Body),
		}
	case *ast.ForStatement:
		return &ast.ForStatement{
			ForPos: s.ForPos,
			LParen: s.LParen,
			Init:   c.cloneStmt(s.Init),
			Test:   c.cloneExpr(s.Test),
			Update: c.cloneExpr(s.Update),
			RParen: s.RParen,
			Body:   c.cloneStmt(s.Body),
		}
	case *ast.ForOfStatement:
		return &ast.ForOfStatement{
			ForPos: s.ForPos,
			LParen: s.LParen,
			Kind:   s.Kind,
			Left:   c.cloneExpr(s.Left).(ast.BindingTarget),
			OfPos:  s.OfPos,
			Right:  c.cloneExpr(s.Right),
			RParen: s.RParen,
			Body:   c.cloneStmt(s.Body),
		}
	case *ast.SwitchStatement:
		out := &ast.SwitchStatement{
			SwitchPos:    s.SwitchPos,
			LParen:       s.LParen,
			Discriminant: c.cloneExpr(s.Discriminant),
			RParen:       s.RParen,
			LBrace:       s.LBrace,
			RBrace:       s.RBrace,
		}
		for _, sc := range s.Cases {
			nc := &ast.SwitchCase{CasePos: sc.CasePos, Colon: sc.Colon}
			for _, t := range sc.Tests {
				nc.Tests = append(nc.Tests, c.cloneExpr(t))
			}
			for _, b := range sc.Body {
				nc.Body = append(nc.Body, c.cloneStmt(b))
			}
			out.Cases = append(out.Cases, nc)
		}
		return out
	case *ast.ReturnStatement:
		return &ast.ReturnStatement{
			ReturnPos: s.ReturnPos,
			Argument:  c.cloneExpr(s.Argument),
			Semicolon: s.Semicolon,
		}
	case *ast.BreakStatement:
		cp := *s
		return &cp
	case *ast.ContinueStatement:
		cp := *s
		return &cp
	case *ast.EmptyStatement:
		cp := *s
		return &cp
	case *ast.CommentStatement:
		cp := *s
		return &cp
	case *ast.BlankStatement:
		cp := *s
		return &cp
	default:
		return stmt
	}
}

func (c *cloner) cloneBlock(block *ast.BlockStatement) *ast.BlockStatement {
	if block == nil {
		return nil
	}
	out := &ast.BlockStatement{LBrace: block.LBrace, RBrace: block.RBrace}
	for _, s := range block.Body {
		out.Body = append(out.Body, c.cloneStmt(s))
	}
	return out
}

func (c *cloner) cloneExpr(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case nil:
		return nil
	case *ast.Identifier:
		cp := *e
		return &cp
	case *ast.IntegerLiteral:
		cp := *e
		return &cp
	case *ast.FloatLiteral:
		cp := *e
		return &cp
	case *ast.StringLiteral:
		cp := *e
		return &cp
	case *ast.CharLiteral:
		cp := *e
		return &cp
	case *ast.BooleanLiteral:
		cp := *e
		return &cp
	case *ast.NullLiteral:
		cp := *e
		return &cp
	case *ast.TemplateLiteral:
		out := &ast.TemplateLiteral{
			Backtick: e.Backtick,
			Raw:      e.Raw,
			EndPos:   e.EndPos,
			Chunks:   append([]string(nil), e.Chunks...),
		}
		if e.Tag != nil {
			tag := *e.Tag
			out.Tag = &tag
		}
		for _, x := range e.Exprs {
			out.Exprs = append(out.Exprs, c.cloneExpr(x))
		}
		return out
	case *ast.BinaryExpression:
		return &ast.BinaryExpression{
			Left:     c.cloneExpr(e.Left),
			OpPos:    e.OpPos,
			Operator: e.Operator,
			Right:    c.cloneExpr(e.Right),
		}
	case *ast.UnaryExpression:
		return &ast.UnaryExpression{
			OpPos:    e.OpPos,
			Operator: e.Operator,
			Operand:  c.cloneExpr(e.Operand),
			Postfix:  e.Postfix,
		}
	case *ast.AssignmentExpression:
		return &ast.AssignmentExpression{
			Left:     c.cloneExpr(e.Left),
			OpPos:    e.OpPos,
			Operator: e.Operator,
			Right:    c.cloneExpr(e.Right),
		}
	case *ast.CallExpression:
		return c.cloneCall(e)
	case *ast.MemberExpression:
		return &ast.MemberExpression{
			Object:   c.cloneExpr(e.Object),
			Property: c.cloneExpr(e.Property),
			Computed: e.Computed,
			Quoted:   e.Quoted,
			LBracket: e.LBracket,
			RBracket: e.RBracket,
			Dot:      e.Dot,
		}
	case *ast.ConditionalExpression:
		return &ast.ConditionalExpression{
			Test:       c.cloneExpr(e.Test),
			Question:   e.Question,
			Consequent: c.cloneExpr(e.Consequent),
			Colon:      e.Colon,
			Alternate:  c.cloneExpr(e.Alternate),
		}
	case *ast.RangeExpression:
		return &ast.RangeExpression{
			Start:     c.cloneExpr(e.Start),
			OpPos:     e.OpPos,
			Exclusive: e.Exclusive,
			Stop:      c.cloneExpr(e.Stop),
		}
	case *ast.AwaitExpression:
		return &ast.AwaitExpression{AwaitPos: e.AwaitPos, Argument: c.cloneExpr(e.Argument)}
	case *ast.NewExpression:
		out := &ast.NewExpression{
			NewPos: e.NewPos,
			Callee: c.cloneExpr(e.Callee),
			LParen: e.LParen,
			RParen: e.RParen,
		}
		for _, t := range e.TypeArgs {
			out.TypeArgs = append(out.TypeArgs, c.cloneType(t))
		}
		for _, a := range e.Arguments {
			out.Arguments = append(out.Arguments, c.cloneExpr(a))
		}
		return c.m.rewriteNew(out)
	case *ast.EnumShorthandExpression:
		member := *e.Member
		return &ast.EnumShorthandExpression{DotPos: e.DotPos, Member: &member}
	case *ast.TypeTestExpression:
		return &ast.TypeTestExpression{
			Expr:  c.cloneExpr(e.Expr),
			IsPos: e.IsPos,
			Type:  c.cloneType(e.Type),
		}
	case *ast.CastExpression:
		return &ast.CastExpression{
			Expression: c.cloneExpr(e.Expression),
			AsPos:      e.AsPos,
			Type:       c.cloneType(e.Type),
		}
	case *ast.NonNullAssertion:
		return &ast.NonNullAssertion{Expression: c.cloneExpr(e.Expression), Bang: e.Bang}
	case *ast.ArrayLiteral:
		out := &ast.ArrayLiteral{LBracket: e.LBracket, RBracket: e.RBracket}
		for _, el := range e.Elements {
			out.Elements = append(out.Elements, c.cloneExpr(el))
		}
		return out
	case *ast.ObjectLiteral:
		out := &ast.ObjectLiteral{LBrace: e.LBrace, RBrace: e.RBrace}
		if e.Class != nil {
			class := *e.Class
			out.Class = &class
		}
		for _, p := range e.Properties {
			out.Properties = append(out.Properties, &ast.Property{
				Key:   c.cloneExpr(p.Key),
				Colon: p.Colon,
				Value: c.cloneExpr(p.Value),
			})
		}
		return out
	case *ast.ArrowFunctionExpression:
		out := &ast.ArrowFunctionExpression{
			LParen:     e.LParen,
			RParen:     e.RParen,
			Arrow:      e.Arrow,
			ReturnType: c.cloneType(e.ReturnType),
			Body:       c.cloneBlock(e.Body),
		}
		for _, p := range e.Parameters {
			out.Parameters = append(out.Parameters, c.cloneParam(p))
		}
		return out
	case *ast.FunctionExpression:
		return c.cloneFunctionExpr(e)
	default:
		return expr
	}
}

// cloneCall clones a call, rewriting generic call sites to their mangled
// specializations. The symbolic instantiation recorded at validation is
// grounded through the cloner's substitution; new ground tuples join the
// monomorphizer worklist.
func (c *cloner) cloneCall(e *ast.CallExpression) ast.Expression {
	out := &ast.CallExpression{
		AsyncPos: e.AsyncPos,
		Async:    e.Async,
		Callee:   c.cloneExpr(e.Callee),
		LParen:   e.LParen,
		RParen:   e.RParen,
	}
	for _, a := range e.Arguments {
		out.Arguments = append(out.Arguments, c.cloneExpr(a))
	}

	if inst, ok := c.m.ctx.Info.GenericCalls[e]; ok {
		grounded := c.m.ground(inst, c.subst)
		if grounded != nil {
			if id, isIdent := out.Callee.(*ast.Identifier); isIdent {
				id.Name = grounded.Mangled
			}
			out.TypeArgs = nil
			return out
		}
	}

	for _, t := range e.TypeArgs {
		out.TypeArgs = append(out.TypeArgs, c.cloneType(t))
	}
	return out
}

func (c *cloner) cloneParam(p *ast.Parameter) *ast.Parameter {
	name := *p.Name
	return &ast.Parameter{
		Name:           &name,
		TypeAnnotation: c.cloneType(p.TypeAnnotation),
		DefaultValue:   c.cloneExpr(p.DefaultValue),
	}
}

func (c *cloner) cloneFunctionExpr(fn *ast.FunctionExpression) *ast.FunctionExpression {
	out := &ast.FunctionExpression{
		FunctionPos: fn.FunctionPos,
		LParen:      fn.LParen,
		RParen:      fn.RParen,
		ReturnType:  c.cloneType(fn.ReturnType),
		Body:        c.cloneBlock(fn.Body),
		Async:       fn.Async,
	}
	if fn.Name != nil {
		name := *fn.Name
		out.Name = &name
	}
	for _, p := range fn.Parameters {
		out.Parameters = append(out.Parameters, c.cloneParam(p))
	}
	return out
}

// cloneType copies a type annotation, substituting type parameters with
// their bound ground types and flattening ground generic class
// references to their mangled names.
func (c *cloner) cloneType(node ast.TypeNode) ast.TypeNode {
	switch t := node.(type) {
	case nil:
		return nil
	case *ast.BasicType:
		cp := *t
		return &cp
	case *ast.TypeReference:
		if bound, ok := c.subst[t.Name.Name]; ok {
			return typeToNode(bound, t.Name.NamePos)
		}
		name := *t.Name
		out := &ast.TypeReference{Name: &name}
		for _, a := range t.TypeArgs {
			out.TypeArgs = append(out.TypeArgs, c.cloneType(a))
		}
		return c.m.rewriteTypeRef(out)
	case *ast.ArrayType:
		return &ast.ArrayType{
			ElementType: c.cloneType(t.ElementType),
			LBracket:    t.LBracket,
			RBracket:    t.RBracket,
		}
	case *ast.OptionalType:
		return &ast.OptionalType{Inner: c.cloneType(t.Inner), Question: t.Question}
	case *ast.WeakType:
		return &ast.WeakType{WeakPos: t.WeakPos, Inner: c.cloneType(t.Inner)}
	case *ast.UnionType:
		out := &ast.UnionType{}
		for _, m := range t.Types {
			out.Types = append(out.Types, c.cloneType(m))
		}
		return out
	case *ast.FunctionType:
		out := &ast.FunctionType{
			LParen:     t.LParen,
			RParen:     t.RParen,
			Arrow:      t.Arrow,
			ReturnType: c.cloneType(t.ReturnType),
		}
		for _, p := range t.Parameters {
			out.Parameters = append(out.Parameters, c.cloneParam(p))
		}
		return out
	default:
		return node
	}
}
