package ast

import (
	"strings"

	"github.com/tgc-lang/tgc/lexer"
)

// ============================================================================
// STATEMENTS
// ============================================================================

// Program represents the root node of an AST.
type Program struct {
	Body []Statement // top-level statements
}

func (p *Program) Pos() lexer.Position {
	if len(p.Body) > 0 {
		return p.Body[0].Pos()
	}
	return lexer.Position{}
}
func (p *Program) End() lexer.Position {
	if len(p.Body) > 0 {
		return p.Body[len(p.Body)-1].End()
	}
	return lexer.Position{}
}
func (p *Program) String() string {
	var stmts []string
	for _, stmt := range p.Body {
		stmts = append(stmts, stmt.String())
	}
	return strings.Join(stmts, "\n")
}

// BlockStatement represents a block statement.
type BlockStatement struct {
	LBrace lexer.Position // position of '{'
	Body   []Statement    // statements in the block
	RBrace lexer.Position // position of '}'
}

func (bs *BlockStatement) Pos() lexer.Position { return bs.LBrace }
func (bs *BlockStatement) End() lexer.Position { return endAfter(bs.RBrace, 1) }
func (bs *BlockStatement) String() string {
	var stmts []string
	for _, stmt := range bs.Body {
		stmts = append(stmts, stmt.String())
	}
	return "{\n" + strings.Join(stmts, "\n") + "\n}"
}
func (bs *BlockStatement) statementNode() {}

// ExpressionStatement represents an expression statement.
type ExpressionStatement struct {
	Expression Expression     // the expression
	Semicolon  lexer.Position // position of ';' (optional)
}

func (es *ExpressionStatement) Pos() lexer.Position { return es.Expression.Pos() }
func (es *ExpressionStatement) End() lexer.Position {
	if es.Semicolon.Line > 0 {
		return endAfter(es.Semicolon, 1)
	}
	return es.Expression.End()
}
func (es *ExpressionStatement) String() string {
	if es.Expression == nil {
		return ""
	}
	return es.Expression.String() + ";"
}
func (es *ExpressionStatement) statementNode() {}

// ============================================================================
// TRIVIA STATEMENTS
// ============================================================================

// CommentStatement is a standalone comment preserved as a first-class
// statement so source formatting round-trips through codegen.
type CommentStatement struct {
	TextPos  lexer.Position // position of the comment
	Text     string         // comment text, delimiters included
	Block    bool           // true for /* ... */
	Trailing bool           // true when the comment shares the previous statement's line
}

func (cs *CommentStatement) Pos() lexer.Position { return cs.TextPos }
func (cs *CommentStatement) End() lexer.Position { return endAfter(cs.TextPos, len(cs.Text)) }
func (cs *CommentStatement) String() string      { return cs.Text }
func (cs *CommentStatement) statementNode()      {}

// BlankStatement records a run of blank lines between statements.
type BlankStatement struct {
	BlankPos lexer.Position // position where the run starts
	Count    int            // number of blank lines
}

func (bs *BlankStatement) Pos() lexer.Position { return bs.BlankPos }
func (bs *BlankStatement) End() lexer.Position { return bs.BlankPos }
func (bs *BlankStatement) String() string      { return "" }
func (bs *BlankStatement) statementNode()      {}

// ============================================================================
// VARIABLE DECLARATIONS
// ============================================================================

// VariableDeclarator represents a single variable declarator.
type VariableDeclarator struct {
	Id             BindingTarget // variable name
	TypeAnnotation TypeNode      // type annotation (optional)
	Init           Expression    // initializer (optional; required for const)
}

func (vd *VariableDeclarator) Pos() lexer.Position { return vd.Id.Pos() }
func (vd *VariableDeclarator) End() lexer.Position {
	if vd.Init != nil {
		return vd.Init.End()
	}
	if vd.TypeAnnotation != nil {
		return vd.TypeAnnotation.End()
	}
	return vd.Id.End()
}
func (vd *VariableDeclarator) String() string {
	result := vd.Id.String()
	if vd.TypeAnnotation != nil {
		result += ": " + vd.TypeAnnotation.String()
	}
	if vd.Init != nil {
		result += " = " + vd.Init.String()
	}
	return result
}

// VariableDeclaration represents a variable declaration.
type VariableDeclaration struct {
	DeclPos      lexer.Position        // position of 'let' or 'const'
	Kind         lexer.Token           // LET or CONST
	Declarations []*VariableDeclarator // variable declarators
	Semicolon    lexer.Position        // position of ';' (optional)
}

func (vd *VariableDeclaration) Pos() lexer.Position { return vd.DeclPos }
func (vd *VariableDeclaration) End() lexer.Position {
	if vd.Semicolon.Line > 0 {
		return endAfter(vd.Semicolon, 1)
	}
	if len(vd.Declarations) > 0 {
		return vd.Declarations[len(vd.Declarations)-1].End()
	}
	return vd.DeclPos
}
func (vd *VariableDeclaration) String() string {
	var decls []string
	for _, decl := range vd.Declarations {
		decls = append(decls, decl.String())
	}
	return vd.Kind.String() + " " + strings.Join(decls, ", ") + ";"
}
func (vd *VariableDeclaration) statementNode()   {}
func (vd *VariableDeclaration) declarationNode() {}

// ============================================================================
// CONTROL FLOW STATEMENTS
// ============================================================================

// IfStatement represents an if statement.
type IfStatement struct {
	IfPos      lexer.Position // position of 'if'
	LParen     lexer.Position // position of '('
	Test       Expression     // condition
	RParen     lexer.Position // position of ')'
	Consequent Statement      // then branch
	ElsePos    lexer.Position // position of 'else' (optional)
	Alternate  Statement      // else branch (optional)
}

func (is *IfStatement) Pos() lexer.Position { return is.IfPos }
func (is *IfStatement) End() lexer.Position {
	if is.Alternate != nil {
		return is.Alternate.End()
	}
	return is.Consequent.End()
}
func (is *IfStatement) String() string {
	result := "if (" + is.Test.String() + ") " + is.Consequent.String()
	if is.Alternate != nil {
		result += " else " + is.Alternate.String()
	}
	return result
}
func (is *IfStatement) statementNode() {}

// WhileStatement represents a while loop.
type WhileStatement struct {
	WhilePos lexer.Position // position of 'while'
	LParen   lexer.Position // position of '('
	Test     Expression     // condition
	RParen   lexer.Position // position of ')'
	Body     Statement      // loop body
}

func (ws *WhileStatement) Pos() lexer.Position { return ws.WhilePos }
func (ws *WhileStatement) End() lexer.Position { return ws.Body.End() }
func (ws *WhileStatement) String() string {
	return "while (" + ws.Test.String() + ") " + ws.Body.String()
}
func (ws *WhileStatement) statementNode() {}

// ForStatement represents a C-style for loop.
type ForStatement struct {
	ForPos lexer.Position // position of 'for'
	LParen lexer.Position // position of '('
	Init   Statement      // initialization (optional)
	Test   Expression     // condition (optional)
	Update Expression     // update (optional)
	RParen lexer.Position // position of ')'
	Body   Statement      // loop body
}

func (fs *ForStatement) Pos() lexer.Position { return fs.ForPos }
func (fs *ForStatement) End() lexer.Position { return fs.Body.End() }
func (fs *ForStatement) String() string {
	init := ""
	if fs.Init != nil {
		init = fs.Init.String()
	}
	test := ""
	if fs.Test != nil {
		test = fs.Test.String()
	}
	update := ""
	if fs.Update != nil {
		update = fs.Update.String()
	}
	return "for (" + init + "; " + test + "; " + update + ") " + fs.Body.String()
}
func (fs *ForStatement) statementNode() {}

// ForOfStatement represents a range-based loop over a collection or a
// range expression: `for (const i of a..b)` / `for (const x of xs)`.
type ForOfStatement struct {
	ForPos lexer.Position // position of 'for'
	LParen lexer.Position // position of '('
	Kind   lexer.Token    // LET or CONST
	Left   BindingTarget  // loop variable
	OfPos  lexer.Position // position of 'of'
	Right  Expression     // range or collection to iterate
	RParen lexer.Position // position of ')'
	Body   Statement      // loop body
}

func (fos *ForOfStatement) Pos() lexer.Position { return fos.ForPos }
func (fos *ForOfStatement) End() lexer.Position { return fos.Body.End() }
func (fos *ForOfStatement) String() string {
	return "for (" + fos.Kind.String() + " " + fos.Left.String() + " of " + fos.Right.String() + ") " + fos.Body.String()
}
func (fos *ForOfStatement) statementNode() {}

// SwitchCase represents one case (or default) clause. A case test may be a
// literal, null, or a numeric RangeExpression (`case 0..5:`).
type SwitchCase struct {
	CasePos lexer.Position // position of 'case' or 'default'
	Tests   []Expression   // test values (nil for default)
	Colon   lexer.Position // position of ':'
	Body    []Statement    // clause body
}

func (sc *SwitchCase) Pos() lexer.Position { return sc.CasePos }
func (sc *SwitchCase) End() lexer.Position {
	if len(sc.Body) > 0 {
		return sc.Body[len(sc.Body)-1].End()
	}
	return endAfter(sc.Colon, 1)
}
func (sc *SwitchCase) String() string {
	var sb strings.Builder
	if len(sc.Tests) == 0 {
		sb.WriteString("default:")
	} else {
		var tests []string
		for _, t := range sc.Tests {
			tests = append(tests, t.String())
		}
		sb.WriteString("case " + strings.Join(tests, ", ") + ":")
	}
	for _, stmt := range sc.Body {
		sb.WriteString("\n" + stmt.String())
	}
	return sb.String()
}

// SwitchStatement represents a switch statement.
type SwitchStatement struct {
	SwitchPos    lexer.Position // position of 'switch'
	LParen       lexer.Position // position of '('
	Discriminant Expression     // switched expression
	RParen       lexer.Position // position of ')'
	LBrace       lexer.Position // position of '{'
	Cases        []*SwitchCase  // case clauses
	RBrace       lexer.Position // position of '}'
}

func (ss *SwitchStatement) Pos() lexer.Position { return ss.SwitchPos }
func (ss *SwitchStatement) End() lexer.Position { return endAfter(ss.RBrace, 1) }
func (ss *SwitchStatement) String() string {
	var sb strings.Builder
	sb.WriteString("switch (" + ss.Discriminant.String() + ") {")
	for _, c := range ss.Cases {
		sb.WriteString("\n" + c.String())
	}
	sb.WriteString("\n}")
	return sb.String()
}
func (ss *SwitchStatement) statementNode() {}

// ============================================================================
// JUMP STATEMENTS
// ============================================================================

// ReturnStatement represents a return statement.
type ReturnStatement struct {
	ReturnPos lexer.Position // position of 'return'
	Argument  Expression     // return value (optional)
	Semicolon lexer.Position // position of ';' (optional)
}

func (rs *ReturnStatement) Pos() lexer.Position { return rs.ReturnPos }
func (rs *ReturnStatement) End() lexer.Position {
	if rs.Semicolon.Line > 0 {
		return endAfter(rs.Semicolon, 1)
	}
	if rs.Argument != nil {
		return rs.Argument.End()
	}
	return endAfter(rs.ReturnPos, 6)
}
func (rs *ReturnStatement) String() string {
	if rs.Argument != nil {
		return "return " + rs.Argument.String() + ";"
	}
	return "return;"
}
func (rs *ReturnStatement) statementNode() {}

// BreakStatement represents a break statement.
type BreakStatement struct {
	BreakPos  lexer.Position // position of 'break'
	Semicolon lexer.Position // position of ';' (optional)
}

func (bs *BreakStatement) Pos() lexer.Position { return bs.BreakPos }
func (bs *BreakStatement) End() lexer.Position {
	if bs.Semicolon.Line > 0 {
		return endAfter(bs.Semicolon, 1)
	}
	return endAfter(bs.BreakPos, 5)
}
func (bs *BreakStatement) String() string { return "break;" }
func (bs *BreakStatement) statementNode() {}

// ContinueStatement represents a continue statement.
type ContinueStatement struct {
	ContinuePos lexer.Position // position of 'continue'
	Semicolon   lexer.Position // position of ';' (optional)
}

func (cs *ContinueStatement) Pos() lexer.Position { return cs.ContinuePos }
func (cs *ContinueStatement) End() lexer.Position {
	if cs.Semicolon.Line > 0 {
		return endAfter(cs.Semicolon, 1)
	}
	return endAfter(cs.ContinuePos, 8)
}
func (cs *ContinueStatement) String() string { return "continue;" }
func (cs *ContinueStatement) statementNode() {}

// EmptyStatement represents an empty statement (just a semicolon).
type EmptyStatement struct {
	Semicolon lexer.Position // position of ';'
}

func (es *EmptyStatement) Pos() lexer.Position { return es.Semicolon }
func (es *EmptyStatement) End() lexer.Position { return endAfter(es.Semicolon, 1) }
func (es *EmptyStatement) String() string      { return ";" }
func (es *EmptyStatement) statementNode()      {}

// ============================================================================
// IMPORTS
// ============================================================================

// ImportDeclaration represents `import { a, b } from "path"`.
type ImportDeclaration struct {
	ImportPos lexer.Position // position of 'import'
	Names     []*Identifier  // imported names
	FromPos   lexer.Position // position of 'from'
	Path      *StringLiteral // module path
	Semicolon lexer.Position // position of ';' (optional)
}

func (id *ImportDeclaration) Pos() lexer.Position { return id.ImportPos }
func (id *ImportDeclaration) End() lexer.Position {
	if id.Semicolon.Line > 0 {
		return endAfter(id.Semicolon, 1)
	}
	return id.Path.End()
}
func (id *ImportDeclaration) String() string {
	var names []string
	for _, n := range id.Names {
		names = append(names, n.Name)
	}
	return "import { " + strings.Join(names, ", ") + " } from " + id.Path.String() + ";"
}
func (id *ImportDeclaration) statementNode()   {}
func (id *ImportDeclaration) declarationNode() {}
