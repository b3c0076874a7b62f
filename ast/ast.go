package ast

import (
	"strings"

	"github.com/tgc-lang/tgc/lexer"
)

// Node represents a node in the AST.
// All AST nodes implement this interface.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() lexer.Position
	// End returns the position of the first character immediately after the node.
	End() lexer.Position
	// String returns a string representation of the node.
	String() string
}

// Expression represents all expression nodes.
type Expression interface {
	Node
	expressionNode()
}

// Statement represents all statement nodes.
type Statement interface {
	Node
	statementNode()
}

// Declaration represents all declaration nodes.
type Declaration interface {
	Statement
	declarationNode()
}

// BindingTarget represents nodes that can be used as binding targets.
type BindingTarget interface {
	Expression
	bindingTarget()
}

// TypeNode represents type annotations.
type TypeNode interface {
	Node
	typeNode()
}

func endAfter(pos lexer.Position, n int) lexer.Position {
	return lexer.Position{
		File:   pos.File,
		Line:   pos.Line,
		Column: pos.Column + n,
		Offset: pos.Offset + n,
	}
}

// ============================================================================
// BASIC NODES
// ============================================================================

// Identifier represents an identifier.
type Identifier struct {
	NamePos lexer.Position // position of the identifier
	Name    string         // identifier name
}

func (i *Identifier) Pos() lexer.Position { return i.NamePos }
func (i *Identifier) End() lexer.Position { return endAfter(i.NamePos, len(i.Name)) }
func (i *Identifier) String() string      { return i.Name }
func (i *Identifier) expressionNode()     {}
func (i *Identifier) bindingTarget()      {}

// ============================================================================
// LITERALS
// ============================================================================

// IntegerLiteral represents an integer literal.
type IntegerLiteral struct {
	ValuePos lexer.Position // position of the literal
	Value    int64          // the integer value
	Raw      string         // the raw literal string
}

func (il *IntegerLiteral) Pos() lexer.Position { return il.ValuePos }
func (il *IntegerLiteral) End() lexer.Position { return endAfter(il.ValuePos, len(il.Raw)) }
func (il *IntegerLiteral) String() string      { return il.Raw }
func (il *IntegerLiteral) expressionNode()     {}

// FloatLiteral represents a fractional literal.
type FloatLiteral struct {
	ValuePos lexer.Position // position of the literal
	Value    float64        // the float value
	Raw      string         // the raw literal string
}

func (fl *FloatLiteral) Pos() lexer.Position { return fl.ValuePos }
func (fl *FloatLiteral) End() lexer.Position { return endAfter(fl.ValuePos, len(fl.Raw)) }
func (fl *FloatLiteral) String() string      { return fl.Raw }
func (fl *FloatLiteral) expressionNode()     {}

// StringLiteral represents a string literal.
type StringLiteral struct {
	ValuePos lexer.Position // position of the literal
	Value    string         // the string value (unescaped)
	Raw      string         // the raw literal string (with quotes)
}

func (sl *StringLiteral) Pos() lexer.Position { return sl.ValuePos }
func (sl *StringLiteral) End() lexer.Position { return endAfter(sl.ValuePos, len(sl.Raw)) }
func (sl *StringLiteral) String() string      { return sl.Raw }
func (sl *StringLiteral) expressionNode()     {}

// CharLiteral represents a single-quoted one-character literal ('x').
// Chars and strings are distinct types; assigning one to the other is a
// validation error.
type CharLiteral struct {
	ValuePos lexer.Position // position of the literal
	Value    rune           // the character value (unescaped)
	Raw      string         // the raw literal string (with quotes)
}

func (cl *CharLiteral) Pos() lexer.Position { return cl.ValuePos }
func (cl *CharLiteral) End() lexer.Position { return endAfter(cl.ValuePos, len(cl.Raw)) }
func (cl *CharLiteral) String() string      { return cl.Raw }
func (cl *CharLiteral) expressionNode()     {}

// BooleanLiteral represents a boolean literal.
type BooleanLiteral struct {
	ValuePos lexer.Position // position of the literal
	Value    bool           // the boolean value
	Raw      string         // the raw literal string ("true" or "false")
}

func (bl *BooleanLiteral) Pos() lexer.Position { return bl.ValuePos }
func (bl *BooleanLiteral) End() lexer.Position { return endAfter(bl.ValuePos, len(bl.Raw)) }
func (bl *BooleanLiteral) String() string      { return bl.Raw }
func (bl *BooleanLiteral) expressionNode()     {}

// NullLiteral represents a null literal.
type NullLiteral struct {
	ValuePos lexer.Position // position of the literal
}

func (nl *NullLiteral) Pos() lexer.Position { return nl.ValuePos }
func (nl *NullLiteral) End() lexer.Position { return endAfter(nl.ValuePos, 4) }
func (nl *NullLiteral) String() string      { return "null" }
func (nl *NullLiteral) expressionNode()     {}

// TemplateLiteral represents a template string, optionally tagged. The
// literal alternates between raw text chunks and interpolated expressions:
// len(Chunks) == len(Exprs) + 1 always holds.
type TemplateLiteral struct {
	Backtick lexer.Position // position of the opening backtick (or quote, for tagged strings)
	Tag      *Identifier    // tag function (nil for plain templates)
	Chunks   []string       // raw text chunks around interpolations
	Exprs    []Expression   // interpolated expressions, in source order
	Raw      string         // raw literal body, without delimiters
	EndPos   lexer.Position // position just after the closing delimiter
}

func (tl *TemplateLiteral) Pos() lexer.Position {
	if tl.Tag != nil {
		return tl.Tag.Pos()
	}
	return tl.Backtick
}
func (tl *TemplateLiteral) End() lexer.Position { return tl.EndPos }
func (tl *TemplateLiteral) String() string {
	var sb strings.Builder
	if tl.Tag != nil {
		sb.WriteString(tl.Tag.Name)
	}
	sb.WriteString("`")
	for i, chunk := range tl.Chunks {
		sb.WriteString(chunk)
		if i < len(tl.Exprs) {
			sb.WriteString("${")
			sb.WriteString(tl.Exprs[i].String())
			sb.WriteString("}")
		}
	}
	sb.WriteString("`")
	return sb.String()
}
func (tl *TemplateLiteral) expressionNode() {}

// ============================================================================
// EXPRESSIONS
// ============================================================================

// BinaryExpression represents a binary expression.
type BinaryExpression struct {
	Left     Expression     // left operand
	OpPos    lexer.Position // position of the operator
	Operator lexer.Token    // operator
	Right    Expression     // right operand
}

func (be *BinaryExpression) Pos() lexer.Position { return be.Left.Pos() }
func (be *BinaryExpression) End() lexer.Position { return be.Right.End() }
func (be *BinaryExpression) String() string {
	return "(" + be.Left.String() + " " + be.Operator.String() + " " + be.Right.String() + ")"
}
func (be *BinaryExpression) expressionNode() {}

// UnaryExpression represents a unary expression.
type UnaryExpression struct {
	OpPos    lexer.Position // position of the operator
	Operator lexer.Token    // operator
	Operand  Expression     // operand
	Postfix  bool           // true if postfix (e.g., x++)
}

func (ue *UnaryExpression) Pos() lexer.Position {
	if ue.Postfix {
		return ue.Operand.Pos()
	}
	return ue.OpPos
}
func (ue *UnaryExpression) End() lexer.Position {
	if ue.Postfix {
		return endAfter(ue.OpPos, len(ue.Operator.String()))
	}
	return ue.Operand.End()
}
func (ue *UnaryExpression) String() string {
	if ue.Postfix {
		return ue.Operand.String() + ue.Operator.String()
	}
	return "(" + ue.Operator.String() + ue.Operand.String() + ")"
}
func (ue *UnaryExpression) expressionNode() {}

// AssignmentExpression represents an assignment expression.
type AssignmentExpression struct {
	Left     Expression     // left-hand side
	OpPos    lexer.Position // position of the operator
	Operator lexer.Token    // assignment operator
	Right    Expression     // right-hand side
}

func (ae *AssignmentExpression) Pos() lexer.Position { return ae.Left.Pos() }
func (ae *AssignmentExpression) End() lexer.Position { return ae.Right.End() }
func (ae *AssignmentExpression) String() string {
	return ae.Left.String() + " " + ae.Operator.String() + " " + ae.Right.String()
}
func (ae *AssignmentExpression) expressionNode() {}

// CallExpression represents a function call. Async marks the scheduled
// form `async f(args)`; TypeArgs carries explicit generic arguments
// (`identity<int>(7)`), rewritten away by monomorphization.
type CallExpression struct {
	AsyncPos  lexer.Position // position of 'async' (if Async)
	Async     bool           // true for `async f(args)`
	Callee    Expression     // function being called
	TypeArgs  []TypeNode     // explicit type arguments (optional)
	LParen    lexer.Position // position of '('
	Arguments []Expression   // arguments
	RParen    lexer.Position // position of ')'
}

func (ce *CallExpression) Pos() lexer.Position {
	if ce.Async {
		return ce.AsyncPos
	}
	return ce.Callee.Pos()
}
func (ce *CallExpression) End() lexer.Position { return endAfter(ce.RParen, 1) }
func (ce *CallExpression) String() string {
	var sb strings.Builder
	if ce.Async {
		sb.WriteString("async ")
	}
	sb.WriteString(ce.Callee.String())
	if len(ce.TypeArgs) > 0 {
		var args []string
		for _, a := range ce.TypeArgs {
			args = append(args, a.String())
		}
		sb.WriteString("<" + strings.Join(args, ", ") + ">")
	}
	var args []string
	for _, arg := range ce.Arguments {
		args = append(args, arg.String())
	}
	sb.WriteString("(" + strings.Join(args, ", ") + ")")
	return sb.String()
}
func (ce *CallExpression) expressionNode() {}

// MemberExpression represents property access: obj.prop, obj[prop], or the
// quoted form obj."my-field" for fields whose names are not identifiers.
type MemberExpression struct {
	Object   Expression     // object being accessed
	Property Expression     // property name
	Computed bool           // true for obj[prop]
	Quoted   bool           // true for obj."my-field"
	LBracket lexer.Position // position of '[' (if computed)
	RBracket lexer.Position // position of ']' (if computed)
	Dot      lexer.Position // position of '.' (if not computed)
}

func (me *MemberExpression) Pos() lexer.Position { return me.Object.Pos() }
func (me *MemberExpression) End() lexer.Position {
	if me.Computed {
		return endAfter(me.RBracket, 1)
	}
	return me.Property.End()
}
func (me *MemberExpression) String() string {
	if me.Computed {
		return me.Object.String() + "[" + me.Property.String() + "]"
	}
	return me.Object.String() + "." + me.Property.String()
}
func (me *MemberExpression) expressionNode() {}

// ConditionalExpression represents a ternary conditional (test ? a : b).
type ConditionalExpression struct {
	Test       Expression     // condition
	Question   lexer.Position // position of '?'
	Consequent Expression     // value if true
	Colon      lexer.Position // position of ':'
	Alternate  Expression     // value if false
}

func (ce *ConditionalExpression) Pos() lexer.Position { return ce.Test.Pos() }
func (ce *ConditionalExpression) End() lexer.Position { return ce.Alternate.End() }
func (ce *ConditionalExpression) String() string {
	return ce.Test.String() + " ? " + ce.Consequent.String() + " : " + ce.Alternate.String()
}
func (ce *ConditionalExpression) expressionNode() {}

// RangeExpression represents a..b (inclusive) or a..<b (exclusive).
type RangeExpression struct {
	Start     Expression     // range start
	OpPos     lexer.Position // position of the range operator
	Exclusive bool           // true for ..<
	Stop      Expression     // range end
}

func (re *RangeExpression) Pos() lexer.Position { return re.Start.Pos() }
func (re *RangeExpression) End() lexer.Position { return re.Stop.End() }
func (re *RangeExpression) String() string {
	op := ".."
	if re.Exclusive {
		op = "..<"
	}
	return re.Start.String() + op + re.Stop.String()
}
func (re *RangeExpression) expressionNode() {}

// AwaitExpression retrieves the result of a scheduled async call.
type AwaitExpression struct {
	AwaitPos lexer.Position // position of 'await'
	Argument Expression     // the handle expression
}

func (ae *AwaitExpression) Pos() lexer.Position { return ae.AwaitPos }
func (ae *AwaitExpression) End() lexer.Position { return ae.Argument.End() }
func (ae *AwaitExpression) String() string      { return "await " + ae.Argument.String() }
func (ae *AwaitExpression) expressionNode()     {}

// NewExpression represents instantiation via `new Callee(args)`.
type NewExpression struct {
	NewPos    lexer.Position // position of 'new'
	Callee    Expression     // class being constructed
	TypeArgs  []TypeNode     // explicit type arguments (optional)
	LParen    lexer.Position // position of '('
	Arguments []Expression   // constructor arguments
	RParen    lexer.Position // position of ')'
}

func (ne *NewExpression) Pos() lexer.Position { return ne.NewPos }
func (ne *NewExpression) End() lexer.Position { return endAfter(ne.RParen, 1) }
func (ne *NewExpression) String() string {
	var args []string
	for _, arg := range ne.Arguments {
		args = append(args, arg.String())
	}
	return "new " + ne.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}
func (ne *NewExpression) expressionNode() {}

// EnumShorthandExpression represents the contextual `.Member` form, whose
// enum is inferred from the expected type.
type EnumShorthandExpression struct {
	DotPos lexer.Position // position of '.'
	Member *Identifier    // member name
}

func (es *EnumShorthandExpression) Pos() lexer.Position { return es.DotPos }
func (es *EnumShorthandExpression) End() lexer.Position { return es.Member.End() }
func (es *EnumShorthandExpression) String() string      { return "." + es.Member.Name }
func (es *EnumShorthandExpression) expressionNode()     {}

// TypeTestExpression represents `x is T`.
type TypeTestExpression struct {
	Expr  Expression     // value under test
	IsPos lexer.Position // position of 'is'
	Type  TypeNode       // tested type
}

func (tt *TypeTestExpression) Pos() lexer.Position { return tt.Expr.Pos() }
func (tt *TypeTestExpression) End() lexer.Position { return tt.Type.End() }
func (tt *TypeTestExpression) String() string {
	return tt.Expr.String() + " is " + tt.Type.String()
}
func (tt *TypeTestExpression) expressionNode() {}

// ============================================================================
// ARRAY, OBJECT, MAP AND SET LITERALS
// ============================================================================

// ArrayLiteral represents an array literal.
type ArrayLiteral struct {
	LBracket lexer.Position // position of '['
	Elements []Expression   // array elements
	RBracket lexer.Position // position of ']'
}

func (al *ArrayLiteral) Pos() lexer.Position { return al.LBracket }
func (al *ArrayLiteral) End() lexer.Position { return endAfter(al.RBracket, 1) }
func (al *ArrayLiteral) String() string {
	var elements []string
	for _, elem := range al.Elements {
		elements = append(elements, elem.String())
	}
	return "[" + strings.Join(elements, ", ") + "]"
}
func (al *ArrayLiteral) expressionNode() {}

// Property represents a property in an object literal. Quoted keys are
// StringLiteral expressions; everything else is an Identifier.
type Property struct {
	Key   Expression     // property key
	Colon lexer.Position // position of ':'
	Value Expression     // property value
}

func (p *Property) Pos() lexer.Position { return p.Key.Pos() }
func (p *Property) End() lexer.Position { return p.Value.End() }
func (p *Property) String() string {
	return p.Key.String() + ": " + p.Value.String()
}

// ObjectLiteral represents object-literal construction. Class names the
// constructed class in the `Point { x: 1, y: 2 }` form; it is nil for a
// free-standing literal, which must inherit its class from context.
type ObjectLiteral struct {
	Class      *Identifier    // target class (optional)
	LBrace     lexer.Position // position of '{'
	Properties []*Property    // object properties, in declaration order
	RBrace     lexer.Position // position of '}'
}

func (ol *ObjectLiteral) Pos() lexer.Position {
	if ol.Class != nil {
		return ol.Class.Pos()
	}
	return ol.LBrace
}
func (ol *ObjectLiteral) End() lexer.Position { return endAfter(ol.RBrace, 1) }
func (ol *ObjectLiteral) String() string {
	var props []string
	for _, prop := range ol.Properties {
		props = append(props, prop.String())
	}
	prefix := ""
	if ol.Class != nil {
		prefix = ol.Class.Name + " "
	}
	return prefix + "{" + strings.Join(props, ", ") + "}"
}
func (ol *ObjectLiteral) expressionNode() {}

// MapEntry is a single key/value pair in a map literal.
type MapEntry struct {
	Key   Expression
	Value Expression
}

// MapLiteral represents a map literal. The parser produces ObjectLiteral
// nodes for `{...}`; validation rewrites them into MapLiteral when the
// contextual type is a map.
type MapLiteral struct {
	LBrace  lexer.Position // position of '{'
	Entries []*MapEntry    // entries in source order
	RBrace  lexer.Position // position of '}'
}

func (ml *MapLiteral) Pos() lexer.Position { return ml.LBrace }
func (ml *MapLiteral) End() lexer.Position { return endAfter(ml.RBrace, 1) }
func (ml *MapLiteral) String() string {
	var entries []string
	for _, e := range ml.Entries {
		entries = append(entries, e.Key.String()+": "+e.Value.String())
	}
	return "{" + strings.Join(entries, ", ") + "}"
}
func (ml *MapLiteral) expressionNode() {}

// SetLiteral represents a set literal. The parser produces ArrayLiteral
// nodes for `[...]`; validation rewrites them into SetLiteral when the
// contextual type is a set.
type SetLiteral struct {
	LBracket lexer.Position // position of '['
	Elements []Expression   // elements in source order
	RBracket lexer.Position // position of ']'
}

func (sl *SetLiteral) Pos() lexer.Position { return sl.LBracket }
func (sl *SetLiteral) End() lexer.Position { return endAfter(sl.RBracket, 1) }
func (sl *SetLiteral) String() string {
	var elements []string
	for _, elem := range sl.Elements {
		elements = append(elements, elem.String())
	}
	return "[" + strings.Join(elements, ", ") + "]"
}
func (sl *SetLiteral) expressionNode() {}
