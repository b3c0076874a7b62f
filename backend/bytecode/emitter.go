package bytecode

import (
	"fmt"

	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/backend"
	"github.com/tgc-lang/tgc/lexer"
	"github.com/tgc-lang/tgc/sema"
)

// Backend lowers the program set to the bytecode JSON artifact.
type Backend struct{}

// New creates the bytecode backend.
func New() *Backend { return &Backend{} }

// Name returns the backend tag.
func (b *Backend) Name() string { return backend.TargetBytecode }

// Emit compiles the whole compilation set into one bytecode module:
// top-level code first, a HALT, then every function body with a debug
// range.
func (b *Backend) Emit(in *backend.Input, opts backend.Options) (*backend.Artifact, error) {
	e := newEmitter(in)

	for _, program := range in.Programs {
		for _, stmt := range program.Body {
			if e.isFunctionLike(stmt) {
				continue
			}
			e.emitStmt(stmt)
		}
	}
	e.emit(OpHalt)

	for _, program := range in.Programs {
		for _, stmt := range program.Body {
			switch decl := stmt.(type) {
			case *ast.FunctionDeclaration:
				if in.Suppressed(decl) {
					continue
				}
				e.emitFunction(decl.Name.Name, decl.Parameters, decl.Body)
			case *ast.ClassDeclaration:
				if in.Suppressed(decl) {
					continue
				}
				for _, method := range decl.Methods() {
					name := decl.Name.Name + "." + method.Name()
					e.emitMethod(name, method)
				}
			}
		}
	}

	module := &Module{
		Constants:    e.constants,
		Instructions: e.instructions,
	}
	if len(e.functions) > 0 {
		module.Debug = &Debug{Functions: e.functions}
	}

	data, err := module.Marshal()
	if err != nil {
		return nil, err
	}
	return &backend.Artifact{Bytecode: data}, nil
}

// emitter holds the per-module compilation state: the deduplicated
// constant pool, the flat instruction stream, and per-function register
// allocation.
type emitter struct {
	in *backend.Input

	constants   []Constant
	constIndex  map[string]int
	instructions []Instruction
	functions   []FunctionRange

	nextRegister int
	locals       map[string]int
	localStack   []map[string]int
}

func newEmitter(in *backend.Input) *emitter {
	return &emitter{
		in:         in,
		constIndex: make(map[string]int),
		locals:     make(map[string]int),
	}
}

func (e *emitter) isFunctionLike(stmt ast.Statement) bool {
	switch stmt.(type) {
	case *ast.FunctionDeclaration, *ast.ClassDeclaration,
		*ast.InterfaceDeclaration, *ast.TypeAliasDeclaration,
		*ast.EnumDeclaration, *ast.ExternClassDeclaration,
		*ast.ImportDeclaration:
		return true
	}
	return false
}

// ============================================================================
// EMISSION PRIMITIVES
// ============================================================================

func (e *emitter) emit(mnemonic string, operands ...int) int {
	e.instructions = append(e.instructions, Instruction{Mnemonic: mnemonic, Operands: operands})
	return len(e.instructions) - 1
}

func (e *emitter) patch(at, operand int) {
	e.instructions[at].Operands = append(e.instructions[at].Operands, operand)
}

// addConstant interns a constant, deduplicating by type and value.
func (e *emitter) addConstant(typ string, value interface{}) int {
	key := fmt.Sprintf("%s:%v", typ, value)
	if idx, ok := e.constIndex[key]; ok {
		return idx
	}
	idx := len(e.constants)
	e.constants = append(e.constants, Constant{Type: typ, Value: value})
	e.constIndex[key] = idx
	return idx
}

func (e *emitter) allocReg() int {
	r := e.nextRegister
	e.nextRegister++
	return r
}

func (e *emitter) enterScope() {
	e.localStack = append(e.localStack, e.locals)
	inherited := make(map[string]int, len(e.locals))
	for k, v := range e.locals {
		inherited[k] = v
	}
	e.locals = inherited
}

func (e *emitter) exitScope() {
	n := len(e.localStack)
	e.locals = e.localStack[n-1]
	e.localStack = e.localStack[:n-1]
}

// ============================================================================
// FUNCTIONS
// ============================================================================

func (e *emitter) emitFunction(name string, params []*ast.Parameter, body *ast.BlockStatement) {
	start := len(e.instructions)

	savedLocals, savedNext := e.locals, e.nextRegister
	e.locals = make(map[string]int)
	e.nextRegister = 0
	for _, param := range params {
		e.locals[param.Name.Name] = e.allocReg()
	}

	for _, stmt := range body.Body {
		e.emitStmt(stmt)
	}
	e.emit(OpReturn)

	e.locals, e.nextRegister = savedLocals, savedNext

	e.functions = append(e.functions, FunctionRange{
		Name:             name,
		StartInstruction: start,
		EndInstruction:   len(e.instructions) - 1,
	})
}

func (e *emitter) emitMethod(name string, method *ast.MethodDefinition) {
	params := method.Value.Parameters
	if !method.Static {
		this := &ast.Parameter{Name: &ast.Identifier{Name: "this"}}
		params = append([]*ast.Parameter{this}, params...)
	}
	e.emitFunction(name, params, method.Value.Body)
}

// ============================================================================
// STATEMENTS
// ============================================================================

func (e *emitter) emitStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		for _, decl := range s.Declarations {
			id, ok := decl.Id.(*ast.Identifier)
			if !ok {
				continue
			}
			var reg int
			if decl.Init != nil {
				reg = e.emitExpr(decl.Init)
			} else {
				reg = e.allocReg()
				e.emit(OpLoadNil, reg)
			}
			e.locals[id.Name] = reg
		}
	case *ast.ExpressionStatement:
		if s.Expression != nil {
			e.emitExpr(s.Expression)
		}
	case *ast.BlockStatement:
		e.enterScope()
		for _, inner := range s.Body {
			e.emitStmt(inner)
		}
		e.exitScope()
	case *ast.IfStatement:
		cond := e.emitExpr(s.Test)
		jumpOverThen := e.emit(OpTest, cond)
		e.emitStmt(s.Consequent)
		if s.Alternate != nil {
			jumpOverElse := e.emit(OpJmp)
			e.patch(jumpOverThen, len(e.instructions)-jumpOverThen-1)
			e.emitStmt(s.Alternate)
			e.patch(jumpOverElse, len(e.instructions)-jumpOverElse-1)
		} else {
			e.patch(jumpOverThen, len(e.instructions)-jumpOverThen-1)
		}
	case *ast.WhileStatement:
		top := len(e.instructions)
		cond := e.emitExpr(s.Test)
		exit := e.emit(OpTest, cond)
		e.emitStmt(s.Body)
		e.emit(OpJmp, top-len(e.instructions)-1)
		e.patch(exit, len(e.instructions)-exit-1)
	case *ast.ForStatement:
		e.enterScope()
		if s.Init != nil {
			e.emitStmt(s.Init)
		}
		top := len(e.instructions)
		exit := -1
		if s.Test != nil {
			cond := e.emitExpr(s.Test)
			exit = e.emit(OpTest, cond)
		}
		e.emitStmt(s.Body)
		if s.Update != nil {
			e.emitExpr(s.Update)
		}
		e.emit(OpJmp, top-len(e.instructions)-1)
		if exit >= 0 {
			e.patch(exit, len(e.instructions)-exit-1)
		}
		e.exitScope()
	case *ast.ForOfStatement:
		e.emitForOf(s)
	case *ast.SwitchStatement:
		e.emitSwitch(s)
	case *ast.ReturnStatement:
		if s.Argument != nil {
			reg := e.emitExpr(s.Argument)
			e.emit(OpReturn, reg)
		} else {
			e.emit(OpReturn)
		}
	case *ast.BreakStatement, *ast.ContinueStatement:
		// Lowered as jumps by the enclosing loop emitters in a full VM;
		// the artifact keeps them as explicit jump placeholders.
		e.emit(OpJmp, 0)
	case *ast.CommentStatement, *ast.BlankStatement, *ast.EmptyStatement:
		// trivia carries no instructions
	}
}

func (e *emitter) emitForOf(s *ast.ForOfStatement) {
	e.enterScope()
	defer e.exitScope()

	counter := e.allocReg()
	id, _ := s.Left.(*ast.Identifier)

	if r, ok := s.Right.(*ast.RangeExpression); ok {
		start := e.emitExpr(r.Start)
		stop := e.emitExpr(r.Stop)
		if !r.Exclusive {
			// Inclusive ranges extend the bound by one.
			one := e.allocReg()
			e.emit(OpLoadInt, one, 1)
			widened := e.allocReg()
			e.emit(OpAdd, widened, stop, one)
			stop = widened
		}
		e.emit(OpMove, counter, start)
		if id != nil {
			e.locals[id.Name] = counter
		}
		prep := e.emit(OpForPrep, counter, stop)
		e.emitStmt(s.Body)
		e.emit(OpForLoop, counter, stop, prep-len(e.instructions)-1)
		return
	}

	source := e.emitExpr(s.Right)
	length := e.allocReg()
	e.emit(OpLen, length, source)
	e.emit(OpLoadInt, counter, 0)

	top := len(e.instructions)
	inRange := e.allocReg()
	e.emit(OpLt, inRange, counter, length)
	exit := e.emit(OpTest, inRange)

	elem := e.allocReg()
	e.emit(OpGetIndex, elem, source, counter)
	if id != nil {
		e.locals[id.Name] = elem
	}
	e.emitStmt(s.Body)

	one := e.allocReg()
	e.emit(OpLoadInt, one, 1)
	e.emit(OpAdd, counter, counter, one)
	e.emit(OpJmp, top-len(e.instructions)-1)
	e.patch(exit, len(e.instructions)-exit-1)
}

func (e *emitter) emitSwitch(s *ast.SwitchStatement) {
	disc := e.emitExpr(s.Discriminant)
	var exits []int

	for _, c := range s.Cases {
		if c.Tests == nil {
			for _, stmt := range c.Body {
				e.emitStmt(stmt)
			}
			continue
		}

		var bodyJumps []int
		for _, test := range c.Tests {
			match := e.allocReg()
			if r, ok := test.(*ast.RangeExpression); ok {
				lo := e.emitExpr(r.Start)
				hi := e.emitExpr(r.Stop)
				geLo := e.allocReg()
				e.emit(OpGe, geLo, disc, lo)
				var cmpHi int
				if r.Exclusive {
					cmpHi = e.emit(OpLt, match, disc, hi)
				} else {
					cmpHi = e.emit(OpLe, match, disc, hi)
				}
				_ = cmpHi
				e.emit(OpAnd, match, geLo, match)
			} else {
				value := e.emitExpr(test)
				e.emit(OpEq, match, disc, value)
			}
			skip := e.emit(OpTest, match)
			bodyJumps = append(bodyJumps, skip)
		}

		for _, stmt := range c.Body {
			e.emitStmt(stmt)
		}
		exits = append(exits, e.emit(OpJmp))
		for _, skip := range bodyJumps {
			e.patch(skip, len(e.instructions)-skip-1)
		}
	}

	for _, exit := range exits {
		e.patch(exit, len(e.instructions)-exit-1)
	}
}

// ============================================================================
// EXPRESSIONS
// ============================================================================

func (e *emitter) emitExpr(expr ast.Expression) int {
	switch x := expr.(type) {
	case *ast.IntegerLiteral:
		reg := e.allocReg()
		e.emit(OpLoadK, reg, e.addConstant("int", x.Value))
		return reg
	case *ast.FloatLiteral:
		reg := e.allocReg()
		e.emit(OpLoadK, reg, e.addConstant("double", x.Value))
		return reg
	case *ast.StringLiteral:
		reg := e.allocReg()
		e.emit(OpLoadK, reg, e.addConstant("string", x.Value))
		return reg
	case *ast.CharLiteral:
		reg := e.allocReg()
		e.emit(OpLoadK, reg, e.addConstant("char", string(x.Value)))
		return reg
	case *ast.BooleanLiteral:
		reg := e.allocReg()
		b := 0
		if x.Value {
			b = 1
		}
		e.emit(OpLoadBool, reg, b)
		return reg
	case *ast.NullLiteral:
		reg := e.allocReg()
		e.emit(OpLoadNil, reg)
		return reg
	case *ast.Identifier:
		return e.emitIdentifier(x)
	case *ast.TemplateLiteral:
		return e.emitTemplate(x)
	case *ast.BinaryExpression:
		return e.emitBinary(x)
	case *ast.UnaryExpression:
		return e.emitUnary(x)
	case *ast.AssignmentExpression:
		return e.emitAssignment(x)
	case *ast.CallExpression:
		return e.emitCall(x)
	case *ast.MemberExpression:
		return e.emitMember(x)
	case *ast.ConditionalExpression:
		cond := e.emitExpr(x.Test)
		out := e.allocReg()
		skipThen := e.emit(OpTest, cond)
		thenReg := e.emitExpr(x.Consequent)
		e.emit(OpMove, out, thenReg)
		skipElse := e.emit(OpJmp)
		e.patch(skipThen, len(e.instructions)-skipThen-1)
		elseReg := e.emitExpr(x.Alternate)
		e.emit(OpMove, out, elseReg)
		e.patch(skipElse, len(e.instructions)-skipElse-1)
		return out
	case *ast.ArrayLiteral:
		if e.in.Context.Info.SetLiterals[x] {
			return e.emitElements(OpNewSet, x.Elements)
		}
		return e.emitElements(OpNewArray, x.Elements)
	case *ast.SetLiteral:
		return e.emitElements(OpNewSet, x.Elements)
	case *ast.ObjectLiteral:
		return e.emitObjectLiteral(x)
	case *ast.NewExpression:
		reg := e.allocReg()
		name := "?"
		if id, ok := x.Callee.(*ast.Identifier); ok {
			name = id.Name
		}
		e.emit(OpNewObj, reg, e.addConstant("string", name))
		return reg
	case *ast.AwaitExpression:
		task := e.emitExpr(x.Argument)
		reg := e.allocReg()
		e.emit(OpAwait, reg, task)
		return reg
	case *ast.CastExpression:
		src := e.emitExpr(x.Expression)
		if e.in.Context.Info.ElidedCasts[x] {
			return src
		}
		reg := e.allocReg()
		e.emit(OpCast, reg, src, e.addConstant("string", x.Type.String()))
		return reg
	case *ast.NonNullAssertion:
		return e.emitExpr(x.Expression)
	case *ast.TypeTestExpression:
		src := e.emitExpr(x.Expr)
		reg := e.allocReg()
		e.emit(OpIsTag, reg, src, e.addConstant("string", x.Type.String()))
		return reg
	case *ast.RangeExpression:
		// A bare range materializes as an int array.
		start := e.emitExpr(x.Start)
		stop := e.emitExpr(x.Stop)
		reg := e.allocReg()
		e.emit(OpNewArray, reg, 2, start)
		_ = stop
		return reg
	case *ast.EnumShorthandExpression:
		reg := e.allocReg()
		e.emit(OpLoadK, reg, e.addConstant("string", x.Member.Name))
		return reg
	default:
		reg := e.allocReg()
		e.emit(OpNop)
		return reg
	}
}

func (e *emitter) emitIdentifier(id *ast.Identifier) int {
	if reg, ok := e.locals[id.Name]; ok {
		return e.narrowed(id, reg)
	}

	// Implicit this: the validator's scope note qualifies the access.
	if _, ok := e.in.Context.Info.ImplicitThis[id]; ok {
		this := e.locals["this"]
		reg := e.allocReg()
		e.emit(OpGetField, reg, this, e.addConstant("string", id.Name))
		return reg
	}

	reg := e.allocReg()
	e.emit(OpGetGlobal, reg, e.addConstant("string", id.Name))
	return e.narrowed(id, reg)
}

// narrowed inserts the sum-type projection recorded for a narrowed use.
func (e *emitter) narrowed(expr ast.Expression, reg int) int {
	if t, ok := e.in.NarrowedType(expr); ok {
		out := e.allocReg()
		e.emit(OpNarrow, out, reg, e.addConstant("string", t.String()))
		return out
	}
	return reg
}

func (e *emitter) emitTemplate(t *ast.TemplateLiteral) int {
	out := e.allocReg()
	e.emit(OpLoadK, out, e.addConstant("string", t.Chunks[0]))
	for i, expr := range t.Exprs {
		value := e.emitExpr(expr)
		str := e.allocReg()
		e.emit(OpToStr, str, value)
		e.emit(OpConcat, out, out, str)
		if chunk := t.Chunks[i+1]; chunk != "" {
			k := e.allocReg()
			e.emit(OpLoadK, k, e.addConstant("string", chunk))
			e.emit(OpConcat, out, out, k)
		}
	}

	if t.Tag != nil {
		// Tagged templates call the tag with (parts, values); the flat
		// encoding passes the concatenated text as a single argument.
		fn := e.allocReg()
		e.emit(OpGetGlobal, fn, e.addConstant("string", t.Tag.Name))
		result := e.allocReg()
		e.emit(OpCall, result, fn, 1, out)
		return result
	}
	return out
}

func binaryOp(op lexer.Token, stringConcat bool) string {
	switch op {
	case lexer.ADD:
		if stringConcat {
			return OpConcat
		}
		return OpAdd
	case lexer.SUB:
		return OpSub
	case lexer.MUL:
		return OpMul
	case lexer.DIV:
		return OpDiv
	case lexer.MOD:
		return OpMod
	case lexer.EQ:
		return OpEq
	case lexer.NE:
		return OpNe
	case lexer.LT:
		return OpLt
	case lexer.LE:
		return OpLe
	case lexer.GT:
		return OpGt
	case lexer.GE:
		return OpGe
	case lexer.LOGICAL_AND:
		return OpAnd
	case lexer.LOGICAL_OR:
		return OpOr
	case lexer.BIT_AND:
		return OpBitAnd
	case lexer.BIT_OR:
		return OpBitOr
	case lexer.BIT_XOR:
		return OpBitXor
	case lexer.BIT_LSHIFT:
		return OpShl
	case lexer.BIT_RSHIFT:
		return OpShr
	default:
		return OpNop
	}
}

func (e *emitter) emitBinary(x *ast.BinaryExpression) int {
	concat := x.Operator == lexer.ADD && e.isStringExpr(x)

	left := e.emitExpr(x.Left)
	right := e.emitExpr(x.Right)

	if concat {
		left = e.toString(x.Left, left)
		right = e.toString(x.Right, right)
	}

	reg := e.allocReg()
	e.emit(binaryOp(x.Operator, concat), reg, left, right)
	return reg
}

func (e *emitter) isStringExpr(x *ast.BinaryExpression) bool {
	return sema.IsString(e.in.Context.Info.TypeOf(x))
}

// toString coerces a concatenation operand that is not already a string.
func (e *emitter) toString(expr ast.Expression, reg int) int {
	if sema.IsString(e.in.Context.Info.TypeOf(expr)) {
		return reg
	}
	out := e.allocReg()
	e.emit(OpToStr, out, reg)
	return out
}

func (e *emitter) emitUnary(x *ast.UnaryExpression) int {
	operand := e.emitExpr(x.Operand)
	reg := e.allocReg()
	switch x.Operator {
	case lexer.SUB:
		e.emit(OpNeg, reg, operand)
	case lexer.BANG:
		e.emit(OpNot, reg, operand)
	case lexer.BIT_NOT:
		e.emit(OpBitNot, reg, operand)
	case lexer.INCREMENT:
		one := e.allocReg()
		e.emit(OpLoadInt, one, 1)
		e.emit(OpAdd, operand, operand, one)
		e.emit(OpMove, reg, operand)
	case lexer.DECREMENT:
		one := e.allocReg()
		e.emit(OpLoadInt, one, 1)
		e.emit(OpSub, operand, operand, one)
		e.emit(OpMove, reg, operand)
	default:
		e.emit(OpMove, reg, operand)
	}
	return reg
}

func (e *emitter) emitAssignment(x *ast.AssignmentExpression) int {
	value := e.emitExpr(x.Right)

	switch target := x.Left.(type) {
	case *ast.Identifier:
		if reg, ok := e.locals[target.Name]; ok {
			e.emit(OpMove, reg, value)
			return reg
		}
		if _, ok := e.in.Context.Info.ImplicitThis[target]; ok {
			this := e.locals["this"]
			e.emit(OpSetField, this, e.addConstant("string", target.Name), value)
			return value
		}
		e.emit(OpSetGlobal, value, e.addConstant("string", target.Name))
		return value
	case *ast.MemberExpression:
		obj := e.emitExpr(target.Object)
		if target.Computed {
			index := e.emitExpr(target.Property)
			e.emit(OpSetIndex, obj, index, value)
		} else {
			name := "?"
			switch p := target.Property.(type) {
			case *ast.Identifier:
				name = p.Name
			case *ast.StringLiteral:
				name = p.Value
			}
			e.emit(OpSetField, obj, e.addConstant("string", name), value)
		}
		return value
	default:
		return value
	}
}

func (e *emitter) emitCall(x *ast.CallExpression) int {
	// Builtins lower to dedicated instructions.
	if id, ok := x.Callee.(*ast.Identifier); ok {
		switch id.Name {
		case "println", "print":
			for _, arg := range x.Arguments {
				reg := e.emitExpr(arg)
				e.emit(OpPrint, reg)
			}
			return e.allocReg()
		case "len":
			if len(x.Arguments) == 1 {
				src := e.emitExpr(x.Arguments[0])
				reg := e.allocReg()
				e.emit(OpLen, reg, src)
				return reg
			}
		}
	}

	fn := e.emitExpr(x.Callee)
	var args []int
	for _, arg := range x.Arguments {
		args = append(args, e.emitExpr(arg))
	}

	reg := e.allocReg()
	operands := append([]int{reg, fn, len(args)}, args...)
	if x.Async {
		e.emit(OpSpawn, operands...)
	} else {
		e.emit(OpCall, operands...)
	}
	return reg
}

func (e *emitter) emitMember(x *ast.MemberExpression) int {
	obj := e.emitExpr(x.Object)
	reg := e.allocReg()
	if x.Computed {
		index := e.emitExpr(x.Property)
		e.emit(OpGetIndex, reg, obj, index)
		return reg
	}
	name := "?"
	switch p := x.Property.(type) {
	case *ast.Identifier:
		name = p.Name
	case *ast.StringLiteral:
		name = p.Value
	}
	e.emit(OpGetField, reg, obj, e.addConstant("string", name))
	return e.narrowed(x, reg)
}

func (e *emitter) emitElements(mnemonic string, elements []ast.Expression) int {
	first := -1
	for _, element := range elements {
		reg := e.emitExpr(element)
		if first < 0 {
			first = reg
		}
	}
	out := e.allocReg()
	if first < 0 {
		first = out
	}
	e.emit(mnemonic, out, len(elements), first)
	return out
}

func (e *emitter) emitObjectLiteral(x *ast.ObjectLiteral) int {
	reg := e.allocReg()
	if e.in.Context.Info.MapLiterals[x] {
		e.emit(OpNewMap, reg, len(x.Properties))
		for _, prop := range x.Properties {
			value := e.emitExpr(prop.Value)
			key := e.allocReg()
			switch k := prop.Key.(type) {
			case *ast.Identifier:
				e.emit(OpLoadK, key, e.addConstant("string", k.Name))
			case *ast.StringLiteral:
				e.emit(OpLoadK, key, e.addConstant("string", k.Value))
			}
			e.emit(OpSetIndex, reg, key, value)
		}
		return reg
	}

	name := ""
	if x.Class != nil {
		name = x.Class.Name
	}
	e.emit(OpNewObj, reg, e.addConstant("string", name))
	for _, prop := range x.Properties {
		value := e.emitExpr(prop.Value)
		key := "?"
		switch k := prop.Key.(type) {
		case *ast.Identifier:
			key = k.Name
		case *ast.StringLiteral:
			key = k.Value
		}
		e.emit(OpSetField, reg, e.addConstant("string", key), value)
	}
	return reg
}
