// Package sema implements the validator: a single top-down pass that
// builds nested scopes, resolves identifiers, infers types, checks every
// rule, and records narrowing facts and codegen hints for the backends.
package sema

import (
	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/diag"
	"github.com/tgc-lang/tgc/lexer"
)

// Validator performs semantic validation of a program against a shared
// GlobalContext. Errors accumulate in the diagnostic bag; validation
// always runs to completion over a traversable AST.
type Validator struct {
	ctx *GlobalContext
	bag *diag.Bag

	scope *Scope

	// typeParams names the generic parameters in scope of the declaration
	// currently being resolved.
	typeParams map[string]bool

	// currentClass/currentMethod track method-body context for implicit
	// this, private access and static resolution.
	currentClass  *ast.ClassDeclaration
	currentMethod *ast.MethodDefinition

	// returnType is the expected return type of the enclosing function.
	returnType Type

	// inAsync is true inside the body of an async function, where the
	// isolation rules apply.
	inAsync bool

	// inLoop tracks whether break/continue are legal.
	inLoop bool

	// allowTopLevel permits executable statements outside any function.
	allowTopLevel bool
}

// NewValidator creates a validator writing into ctx and bag.
func NewValidator(ctx *GlobalContext, bag *diag.Bag) *Validator {
	return &Validator{
		ctx:           ctx,
		bag:           bag,
		scope:         ctx.Global,
		allowTopLevel: true,
	}
}

// SetAllowTopLevelStatements configures whether executable statements may
// appear outside functions.
func (v *Validator) SetAllowTopLevelStatements(allow bool) {
	v.allowTopLevel = allow
}

// Validate runs the two-phase validation over the program: a declaration
// pass installs all stubs, then a body pass checks every statement.
func (v *Validator) Validate(program *ast.Program) {
	v.declareProgram(program)

	for _, stmt := range program.Body {
		v.checkTopLevel(stmt)
	}
}

// Declare runs only the declaration pass, installing stubs without
// checking bodies. The desugarer and the module loader use it to resolve
// types over a compilation set before full validation.
func (v *Validator) Declare(program *ast.Program) {
	v.declareProgram(program)
}

// ResolveType exposes annotation resolution against the declared stubs.
func (v *Validator) ResolveType(node ast.TypeNode) Type {
	return v.resolveTypeNode(node)
}

// CheckBodies runs the body pass only; Declare must have run over every
// file of the compilation set first.
func (v *Validator) CheckBodies(program *ast.Program) {
	for _, stmt := range program.Body {
		v.checkTopLevel(stmt)
	}
}

func (v *Validator) checkTopLevel(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.FunctionDeclaration:
		v.checkFunctionDeclaration(s)
	case *ast.ClassDeclaration:
		v.checkClassDeclaration(s)
	case *ast.ExternClassDeclaration:
		v.checkExternClassDeclaration(s)
	case *ast.EnumDeclaration:
		v.checkEnumDeclaration(s)
	case *ast.TypeAliasDeclaration, *ast.InterfaceDeclaration, *ast.ImportDeclaration:
		// handled in the declaration pass / by the loader
	case *ast.VariableDeclaration:
		v.checkVariableDeclaration(s)
	case *ast.CommentStatement, *ast.BlankStatement, *ast.EmptyStatement:
		// trivia
	default:
		if !v.allowTopLevel {
			v.bag.Errorf(diag.KindParse, stmt.Pos(),
				"executable statements are not allowed at the top level")
			return
		}
		v.checkStatement(stmt)
	}
}

// enterScope pushes a child scope.
func (v *Validator) enterScope() {
	v.scope = NewScope(v.scope)
}

// exitScope pops back to the parent scope.
func (v *Validator) exitScope() {
	if v.scope.Parent != nil {
		v.scope = v.scope.Parent
	}
}

// ============================================================================
// DECLARATION BODIES
// ============================================================================

func (v *Validator) checkFunctionDeclaration(decl *ast.FunctionDeclaration) {
	savedParams := v.typeParams
	v.typeParams = typeParamSet(decl.TypeParameters)
	defer func() { v.typeParams = savedParams }()

	ft := v.functionType(decl)

	v.enterScope()
	v.scope.EnclosingFunc = decl
	savedReturn, savedAsync := v.returnType, v.inAsync
	v.returnType = ft.ReturnType
	v.inAsync = decl.Async
	defer func() { v.returnType, v.inAsync = savedReturn, savedAsync }()

	for i, param := range decl.Parameters {
		if param.TypeAnnotation == nil && param.DefaultValue == nil {
			v.bag.Errorf(diag.KindType, param.Name.NamePos,
				"parameter '%s' needs a type annotation or default value", param.Name.Name)
		}
		paramType := ft.Parameters[i]
		if isUnknown(paramType) && param.DefaultValue != nil {
			paramType = v.checkExpression(param.DefaultValue, nil)
		} else if param.DefaultValue != nil {
			v.checkExpectedExpression(param.DefaultValue, paramType)
		}
		v.defineLocal(&Symbol{
			Name:     param.Name.Name,
			Type:     paramType,
			Kind:     ParameterSymbol,
			Position: param.Name.NamePos,
		})
	}

	v.checkBlockInCurrentScope(decl.Body)
	v.exitScope()
}

func (v *Validator) checkClassDeclaration(decl *ast.ClassDeclaration) {
	savedParams := v.typeParams
	v.typeParams = typeParamSet(decl.TypeParameters)
	savedClass := v.currentClass
	v.currentClass = decl
	defer func() {
		v.typeParams = savedParams
		v.currentClass = savedClass
	}()

	seen := make(map[string]lexer.Position)
	for _, member := range decl.Body {
		var name string
		var pos lexer.Position
		switch m := member.(type) {
		case *ast.FieldDefinition:
			name, pos = m.Name(), m.Pos()
			v.checkFieldDefinition(decl, m)
		case *ast.MethodDefinition:
			name, pos = m.Name(), m.Pos()
		}
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			v.bag.Errorf(diag.KindResolution, pos,
				"duplicate member '%s' in class '%s'", name, decl.Name.Name)
		}
		seen[name] = pos
	}

	for _, method := range decl.Methods() {
		v.checkMethodDefinition(decl, method)
	}
}

func (v *Validator) checkFieldDefinition(class *ast.ClassDeclaration, field *ast.FieldDefinition) {
	if field.Const && field.Readonly {
		v.bag.Errorf(diag.KindAccess, field.Pos(),
			"field '%s' cannot be both const and readonly", field.Name())
	}
	if field.Const && field.Value == nil {
		v.bag.Errorf(diag.KindAccess, field.Pos(),
			"const field '%s' requires a default value", field.Name())
	}
	if field.Static && field.Const && field.Value == nil {
		v.bag.Errorf(diag.KindAccess, field.Pos(),
			"static const field '%s' requires a default value", field.Name())
	}

	declared := v.fieldType(field)
	if field.Value != nil {
		valueType := v.checkExpression(field.Value, declared)
		if field.TypeAnnotation != nil && !valueType.IsAssignableTo(declared) {
			v.bag.Errorf(diag.KindType, field.Value.Pos(),
				"cannot use '%s' as default for field '%s' of type '%s'",
				valueType.String(), field.Name(), declared.String())
		}
	}

	// Integer static consts are compile-time constants eligible for
	// inline emission; other types stay out-of-line.
	if field.Static && field.Const {
		if lit, ok := field.Value.(*ast.IntegerLiteral); ok && lit != nil {
			v.ctx.Info.InlineConsts[field] = true
		}
	}
}

func (v *Validator) checkMethodDefinition(class *ast.ClassDeclaration, method *ast.MethodDefinition) {
	savedMethod := v.currentMethod
	v.currentMethod = method
	defer func() { v.currentMethod = savedMethod }()

	fn := method.Value

	ret := Type(VoidT)
	if fn.ReturnType != nil {
		ret = v.resolveTypeNode(fn.ReturnType)
	}

	v.enterScope()
	v.scope.EnclosingClass = class
	savedReturn, savedAsync := v.returnType, v.inAsync
	v.returnType = ret
	v.inAsync = method.Async
	defer func() {
		v.returnType, v.inAsync = savedReturn, savedAsync
		v.exitScope()
	}()

	if !method.Static {
		v.defineLocal(&Symbol{
			Name: "this",
			Type: v.selfType(class),
			Kind: ParameterSymbol,
		})
	}

	for _, param := range fn.Parameters {
		paramType := Type(UnknownT)
		if param.TypeAnnotation != nil {
			paramType = v.resolveTypeNode(param.TypeAnnotation)
		} else if param.DefaultValue != nil {
			paramType = v.checkExpression(param.DefaultValue, nil)
		} else {
			v.bag.Errorf(diag.KindType, param.Name.NamePos,
				"parameter '%s' needs a type annotation or default value", param.Name.Name)
		}
		v.defineLocal(&Symbol{
			Name:     param.Name.Name,
			Type:     paramType,
			Kind:     ParameterSymbol,
			Position: param.Name.NamePos,
		})
	}

	v.checkBlockInCurrentScope(fn.Body)
}

// selfType is the type of `this` inside a class body; generic classes see
// their own parameters as type arguments.
func (v *Validator) selfType(class *ast.ClassDeclaration) Type {
	if len(class.TypeParameters) == 0 {
		return &ClassType{Name: class.Name.Name}
	}
	var args []Type
	for _, p := range class.TypeParameters {
		args = append(args, &GenericType{Name: p.Name.Name})
	}
	return &ClassType{Name: class.Name.Name, Args: args}
}

func (v *Validator) checkExternClassDeclaration(decl *ast.ExternClassDeclaration) {
	if len(decl.Bindings) == 0 {
		v.bag.Errorf(diag.KindResolution, decl.Pos(),
			"extern class '%s' declares no backend binding", decl.Name.Name)
	}
	for _, field := range decl.Fields {
		v.resolveTypeNode(field.TypeAnnotation)
	}
	for _, method := range decl.Methods {
		for _, param := range method.Parameters {
			if param.TypeAnnotation != nil {
				v.resolveTypeNode(param.TypeAnnotation)
			}
		}
		if method.ReturnType != nil {
			v.resolveTypeNode(method.ReturnType)
		}
	}
}

func (v *Validator) checkEnumDeclaration(decl *ast.EnumDeclaration) {
	seen := make(map[string]bool)
	for _, member := range decl.Members {
		if seen[member.Name.Name] {
			v.bag.Errorf(diag.KindResolution, member.Name.NamePos,
				"duplicate enum member '%s'", member.Name.Name)
		}
		seen[member.Name.Name] = true
		if member.Value != nil {
			if _, ok := member.Value.(*ast.IntegerLiteral); !ok {
				v.bag.Errorf(diag.KindType, member.Value.Pos(),
					"enum member values must be integer literals")
			}
		}
	}
}

// ============================================================================
// STATEMENTS
// ============================================================================

func (v *Validator) checkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		v.checkVariableDeclaration(s)
	case *ast.FunctionDeclaration:
		v.checkFunctionDeclaration(s)
	case *ast.ExpressionStatement:
		if s.Expression != nil {
			v.checkExpression(s.Expression, nil)
		}
	case *ast.BlockStatement:
		v.checkBlockStatement(s)
	case *ast.IfStatement:
		v.checkIfStatement(s)
	case *ast.WhileStatement:
		v.checkWhileStatement(s)
	case *ast.ForStatement:
		v.checkForStatement(s)
	case *ast.ForOfStatement:
		v.checkForOfStatement(s)
	case *ast.SwitchStatement:
		v.checkSwitchStatement(s)
	case *ast.ReturnStatement:
		v.checkReturnStatement(s)
	case *ast.BreakStatement:
		if !v.inLoop {
			v.bag.Errorf(diag.KindParse, s.Pos(), "break outside of a loop or switch")
		}
	case *ast.ContinueStatement:
		if !v.inLoop {
			v.bag.Errorf(diag.KindParse, s.Pos(), "continue outside of a loop")
		}
	case *ast.CommentStatement, *ast.BlankStatement, *ast.EmptyStatement:
		// trivia
	}
}

func (v *Validator) checkBlockStatement(stmt *ast.BlockStatement) {
	v.enterScope()
	v.checkBlockInCurrentScope(stmt)
	v.exitScope()
}

// checkBlockInCurrentScope checks a block's statements without opening a
// fresh scope (function and method bodies share the parameter scope).
func (v *Validator) checkBlockInCurrentScope(stmt *ast.BlockStatement) {
	for _, s := range stmt.Body {
		v.checkStatement(s)
	}
}

func (v *Validator) checkVariableDeclaration(stmt *ast.VariableDeclaration) {
	for _, decl := range stmt.Declarations {
		id, ok := decl.Id.(*ast.Identifier)
		if !ok {
			continue
		}

		if stmt.Kind == lexer.CONST && decl.Init == nil {
			v.bag.Errorf(diag.KindAccess, id.NamePos,
				"const declaration '%s' requires an initializer", id.Name)
		}

		var declared Type
		if decl.TypeAnnotation != nil {
			declared = v.resolveTypeNode(decl.TypeAnnotation)
		}

		var initType Type
		if decl.Init != nil {
			initType = v.checkExpression(decl.Init, declared)
		}

		varType := declared
		switch {
		case declared != nil && initType != nil:
			if !initType.IsAssignableTo(declared) {
				v.bag.Errorf(diag.KindType, decl.Init.Pos(),
					"cannot assign '%s' to variable of type '%s'",
					initType.String(), declared.String())
			}
		case declared == nil && initType != nil:
			varType = initType
			if initType.Equals(NullT) {
				v.bag.Errorf(diag.KindType, decl.Init.Pos(),
					"cannot infer a type from a bare null initializer")
				varType = UnknownT
			}
		case declared == nil:
			v.bag.Errorf(diag.KindType, id.NamePos,
				"variable '%s' needs a type annotation or initializer", id.Name)
			varType = UnknownT
		}

		if varType == nil {
			varType = UnknownT
		}

		sym := &Symbol{
			Name:            id.Name,
			Type:            varType,
			Kind:            VariableSymbol,
			DeclarationKind: stmt.Kind,
			Position:        id.NamePos,
		}
		v.defineLocal(sym)
		v.ctx.Info.Types[id] = varType
	}
}

// defineLocal installs a symbol in the current scope, reporting
// same-scope redeclarations.
func (v *Validator) defineLocal(sym *Symbol) {
	if err := v.scope.Define(sym); err != nil {
		v.bag.Errorf(diag.KindResolution, sym.Position, "%s", err.Error())
	}
}

func (v *Validator) checkIfStatement(stmt *ast.IfStatement) {
	testType := v.checkExpression(stmt.Test, BoolT)
	if !testType.IsAssignableTo(BoolT) && !isUnknown(testType) {
		v.bag.Errorf(diag.KindType, stmt.Test.Pos(),
			"if condition must be bool, got '%s'", testType.String())
	}

	facts := v.analyzeGuard(stmt.Test)

	v.enterScope()
	for _, f := range facts {
		if f.thenType != nil {
			v.scope.Narrowed[f.sym] = f.thenType
		}
	}
	v.checkStatement(stmt.Consequent)
	v.exitScope()

	if stmt.Alternate != nil {
		v.enterScope()
		for _, f := range facts {
			if f.elseType != nil {
				v.scope.Narrowed[f.sym] = f.elseType
			}
		}
		v.checkStatement(stmt.Alternate)
		v.exitScope()
	}
}

func (v *Validator) checkWhileStatement(stmt *ast.WhileStatement) {
	testType := v.checkExpression(stmt.Test, BoolT)
	if !testType.IsAssignableTo(BoolT) && !isUnknown(testType) {
		v.bag.Errorf(diag.KindType, stmt.Test.Pos(),
			"while condition must be bool, got '%s'", testType.String())
	}

	savedLoop := v.inLoop
	v.inLoop = true
	v.checkStatement(stmt.Body)
	v.inLoop = savedLoop
}

func (v *Validator) checkForStatement(stmt *ast.ForStatement) {
	v.enterScope()
	if stmt.Init != nil {
		v.checkStatement(stmt.Init)
	}
	if stmt.Test != nil {
		testType := v.checkExpression(stmt.Test, BoolT)
		if !testType.IsAssignableTo(BoolT) && !isUnknown(testType) {
			v.bag.Errorf(diag.KindType, stmt.Test.Pos(),
				"for condition must be bool, got '%s'", testType.String())
		}
	}
	if stmt.Update != nil {
		v.checkExpression(stmt.Update, nil)
	}

	savedLoop := v.inLoop
	v.inLoop = true
	v.checkStatement(stmt.Body)
	v.inLoop = savedLoop
	v.exitScope()
}

func (v *Validator) checkForOfStatement(stmt *ast.ForOfStatement) {
	var elemType Type = UnknownT

	if rangeExpr, ok := stmt.Right.(*ast.RangeExpression); ok {
		v.checkRangeBounds(rangeExpr)
		elemType = IntT
	} else {
		sourceType := v.checkExpression(stmt.Right, nil)
		switch st := sourceType.(type) {
		case *ArrayType:
			elemType = st.ElementType
		case *SetType:
			elemType = st.ElementType
		case *MapType:
			// Iterating a map yields its keys.
			elemType = st.KeyType
		case *PrimitiveType:
			if st.Kind == StringKind {
				elemType = CharT
			} else {
				v.bag.Errorf(diag.KindType, stmt.Right.Pos(),
					"cannot iterate over '%s'", sourceType.String())
			}
		case *UnknownType:
			// error already reported
		default:
			v.bag.Errorf(diag.KindType, stmt.Right.Pos(),
				"cannot iterate over '%s'", sourceType.String())
		}
	}

	v.enterScope()
	if id, ok := stmt.Left.(*ast.Identifier); ok {
		v.defineLocal(&Symbol{
			Name:            id.Name,
			Type:            elemType,
			Kind:            VariableSymbol,
			DeclarationKind: stmt.Kind,
			Position:        id.NamePos,
		})
		v.ctx.Info.Types[id] = elemType
	}

	savedLoop := v.inLoop
	v.inLoop = true
	v.checkStatement(stmt.Body)
	v.inLoop = savedLoop
	v.exitScope()
}

// checkRangeBounds validates both ends of a range as integers.
func (v *Validator) checkRangeBounds(expr *ast.RangeExpression) {
	start := v.checkExpression(expr.Start, IntT)
	stop := v.checkExpression(expr.Stop, IntT)
	if !start.IsAssignableTo(IntT) && !isUnknown(start) {
		v.bag.Errorf(diag.KindType, expr.Start.Pos(),
			"range bounds must be int, got '%s'", start.String())
	}
	if !stop.IsAssignableTo(IntT) && !isUnknown(stop) {
		v.bag.Errorf(diag.KindType, expr.Stop.Pos(),
			"range bounds must be int, got '%s'", stop.String())
	}
	v.ctx.Info.Types[expr] = &ArrayType{ElementType: IntT}
}

func (v *Validator) checkSwitchStatement(stmt *ast.SwitchStatement) {
	discType := v.checkExpression(stmt.Discriminant, nil)

	defaults := 0
	for _, c := range stmt.Cases {
		if c.Tests == nil {
			defaults++
			if defaults > 1 {
				v.bag.Errorf(diag.KindParse, c.Pos(), "duplicate default case")
			}
		}
		for _, test := range c.Tests {
			switch te := test.(type) {
			case *ast.RangeExpression:
				v.checkRangeBounds(te)
				if !discType.Equals(IntT) && !isUnknown(discType) {
					v.bag.Errorf(diag.KindType, te.Pos(),
						"range cases require an int discriminant, got '%s'", discType.String())
				}
			case *ast.NullLiteral:
				v.ctx.Info.Types[te] = NullT
				if !IsNullable(discType) && !isUnknown(discType) {
					v.bag.Errorf(diag.KindType, te.Pos(),
						"null case on non-nullable discriminant '%s'", discType.String())
				}
			default:
				testType := v.checkExpression(test, NonNull(discType))
				if !testType.IsAssignableTo(NonNull(discType)) && !isUnknown(testType) && !isUnknown(discType) {
					v.bag.Errorf(diag.KindType, test.Pos(),
						"case value of type '%s' does not match discriminant type '%s'",
						testType.String(), discType.String())
				}
			}
		}

		v.enterScope()
		savedLoop := v.inLoop
		v.inLoop = true // break is legal inside a case
		for _, s := range c.Body {
			v.checkStatement(s)
		}
		v.inLoop = savedLoop
		v.exitScope()
	}
}

func (v *Validator) checkReturnStatement(stmt *ast.ReturnStatement) {
	if v.returnType == nil {
		if stmt.Argument != nil {
			v.checkExpression(stmt.Argument, nil)
		}
		return
	}

	if stmt.Argument == nil {
		if !v.returnType.Equals(VoidT) && !isUnknown(v.returnType) {
			v.bag.Errorf(diag.KindType, stmt.Pos(),
				"missing return value; expected '%s'", v.returnType.String())
		}
		return
	}

	argType := v.checkExpression(stmt.Argument, v.returnType)
	if !argType.IsAssignableTo(v.returnType) && !isUnknown(argType) {
		v.bag.Errorf(diag.KindType, stmt.Argument.Pos(),
			"cannot return '%s' from a function returning '%s'",
			argType.String(), v.returnType.String())
	}
}
