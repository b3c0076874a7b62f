package parser

import (
	"testing"

	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.NewFile("test.tgs", input))
	program := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	return program
}

func TestVariableDeclarations(t *testing.T) {
	tests := []struct {
		input   string
		kind    lexer.Token
		name    string
		hasType bool
		hasInit bool
	}{
		{"let x = 5;", lexer.LET, "x", false, true},
		{"const y: int = 10;", lexer.CONST, "y", true, true},
		{"let z: float[];", lexer.LET, "z", true, false},
		{"let m: Map<string, int> = {};", lexer.LET, "m", true, true},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		stmt, ok := program.Body[0].(*ast.VariableDeclaration)
		if !ok {
			t.Fatalf("%q: expected VariableDeclaration, got %T", tt.input, program.Body[0])
		}
		if stmt.Kind != tt.kind {
			t.Errorf("%q: kind = %s, want %s", tt.input, stmt.Kind, tt.kind)
		}
		decl := stmt.Declarations[0]
		if decl.Id.(*ast.Identifier).Name != tt.name {
			t.Errorf("%q: name = %s, want %s", tt.input, decl.Id.(*ast.Identifier).Name, tt.name)
		}
		if (decl.TypeAnnotation != nil) != tt.hasType {
			t.Errorf("%q: type annotation presence = %v, want %v", tt.input, decl.TypeAnnotation != nil, tt.hasType)
		}
		if (decl.Init != nil) != tt.hasInit {
			t.Errorf("%q: initializer presence = %v, want %v", tt.input, decl.Init != nil, tt.hasInit)
		}
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"let a = 1 + 2 * 3;", "(1 + (2 * 3))"},
		{"let a = (1 + 2) * 3;", "((1 + 2) * 3)"},
		{"let a = x == y && z != w;", "((x == y) && (z != w))"},
		{"let a = b ?? c;", "(b ?? c)"},
		{"let a = -x * y;", "((-x) * y)"},
	}

	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		stmt := program.Body[0].(*ast.VariableDeclaration)
		got := stmt.Declarations[0].Init.String()
		if got != tt.expected {
			t.Errorf("%q: got %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestFunctionDeclaration(t *testing.T) {
	input := `function add(a: int, b: int): int {
	return a + b;
}`
	program := parseProgram(t, input)
	fn, ok := program.Body[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration, got %T", program.Body[0])
	}
	if fn.Name.Name != "add" {
		t.Errorf("name = %s, want add", fn.Name.Name)
	}
	if len(fn.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(fn.Parameters))
	}
	if fn.Parameters[1].Name.Name != "b" {
		t.Errorf("second parameter = %s, want b", fn.Parameters[1].Name.Name)
	}
	if fn.ReturnType == nil {
		t.Error("missing return type")
	}
}

func TestGenericFunctionDeclaration(t *testing.T) {
	input := `function identity<T>(v: T): T { return v; }`
	program := parseProgram(t, input)
	fn := program.Body[0].(*ast.FunctionDeclaration)
	if len(fn.TypeParameters) != 1 || fn.TypeParameters[0].Name.Name != "T" {
		t.Fatalf("expected type parameter T, got %v", fn.TypeParameters)
	}
}

func TestGenericCallExpression(t *testing.T) {
	input := `let a = identity<int>(7);`
	program := parseProgram(t, input)
	stmt := program.Body[0].(*ast.VariableDeclaration)
	call, ok := stmt.Declarations[0].Init.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected CallExpression, got %T", stmt.Declarations[0].Init)
	}
	if len(call.TypeArgs) != 1 {
		t.Fatalf("expected 1 type argument, got %d", len(call.TypeArgs))
	}
	if len(call.Arguments) != 1 {
		t.Fatalf("expected 1 argument, got %d", len(call.Arguments))
	}
}

func TestLessThanIsNotGenericCall(t *testing.T) {
	input := `let a = x < y;`
	program := parseProgram(t, input)
	stmt := program.Body[0].(*ast.VariableDeclaration)
	bin, ok := stmt.Declarations[0].Init.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("expected BinaryExpression, got %T", stmt.Declarations[0].Init)
	}
	if bin.Operator != lexer.LT {
		t.Errorf("operator = %s, want <", bin.Operator)
	}
}

func TestClassDeclaration(t *testing.T) {
	input := `class Point {
	const kind = "point";
	x: int;
	y: int;
	private secret: string = "s";
	static readonly origin: Point;
	"my-field": int;
	dist(other: Point): float {
		return 0.0;
	}
	static make(): Point {
		return Point { x: 0, y: 0 };
	}
}`
	program := parseProgram(t, input)
	class, ok := program.Body[0].(*ast.ClassDeclaration)
	if !ok {
		t.Fatalf("expected ClassDeclaration, got %T", program.Body[0])
	}

	fields := class.Fields()
	if len(fields) != 6 {
		t.Fatalf("expected 6 fields, got %d", len(fields))
	}
	if !fields[0].Const || fields[0].Name() != "kind" {
		t.Errorf("first field should be const kind, got %s", fields[0].String())
	}
	if fields[3].Visibility != ast.Private {
		t.Errorf("field secret should be private")
	}
	if !fields[4].Static || !fields[4].Readonly {
		t.Errorf("field origin should be static readonly")
	}
	if fields[5].Name() != "my-field" {
		t.Errorf("quoted field name = %q, want my-field", fields[5].Name())
	}

	methods := class.Methods()
	if len(methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(methods))
	}
	if !methods[1].Static {
		t.Errorf("method make should be static")
	}
}

func TestFieldOrderIsPreserved(t *testing.T) {
	input := `class C { b: int; a: int; c: int; }`
	program := parseProgram(t, input)
	class := program.Body[0].(*ast.ClassDeclaration)
	var names []string
	for _, f := range class.Fields() {
		names = append(names, f.Name())
	}
	want := []string{"b", "a", "c"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("field order = %v, want %v", names, want)
		}
	}
}

func TestInterfaceDeclaration(t *testing.T) {
	input := `interface Drivable {
	wheels: int;
	name?: string;
	readonly id: int;
	drive(speed: int): void;
}`
	program := parseProgram(t, input)
	iface, ok := program.Body[0].(*ast.InterfaceDeclaration)
	if !ok {
		t.Fatalf("expected InterfaceDeclaration, got %T", program.Body[0])
	}
	if len(iface.Body) != 4 {
		t.Fatalf("expected 4 members, got %d", len(iface.Body))
	}
	if !iface.Body[1].Optional {
		t.Error("member name? should be optional")
	}
	if !iface.Body[2].Readonly {
		t.Error("member id should be readonly")
	}
	if _, ok := iface.Body[3].Type.(*ast.FunctionType); !ok {
		t.Errorf("member drive should be a method, got %T", iface.Body[3].Type)
	}
}

func TestTypeAliasUnion(t *testing.T) {
	input := `type Person = Adult | Child;`
	program := parseProgram(t, input)
	alias := program.Body[0].(*ast.TypeAliasDeclaration)
	union, ok := alias.Type.(*ast.UnionType)
	if !ok {
		t.Fatalf("expected UnionType, got %T", alias.Type)
	}
	if len(union.Types) != 2 {
		t.Fatalf("expected 2 union members, got %d", len(union.Types))
	}
}

func TestOptionalTypeSuffix(t *testing.T) {
	input := `let x: Point?;`
	program := parseProgram(t, input)
	decl := program.Body[0].(*ast.VariableDeclaration).Declarations[0]
	if _, ok := decl.TypeAnnotation.(*ast.OptionalType); !ok {
		t.Fatalf("expected OptionalType, got %T", decl.TypeAnnotation)
	}
}

func TestEnumDeclaration(t *testing.T) {
	input := `enum Color { Red, Green = 5, Blue }`
	program := parseProgram(t, input)
	enum := program.Body[0].(*ast.EnumDeclaration)
	if len(enum.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(enum.Members))
	}
	if enum.Members[1].Value == nil {
		t.Error("Green should carry an explicit value")
	}
}

func TestExternClassDeclaration(t *testing.T) {
	input := `extern class StringBuilder from { cpp: "sstream", js: "./sb.js" } {
	length: int;
	static create(): StringBuilder;
	append(s: string): StringBuilder;
}`
	program := parseProgram(t, input)
	decl, ok := program.Body[0].(*ast.ExternClassDeclaration)
	if !ok {
		t.Fatalf("expected ExternClassDeclaration, got %T", program.Body[0])
	}
	if decl.HeaderFor("cpp") != "sstream" {
		t.Errorf("cpp header = %q, want sstream", decl.HeaderFor("cpp"))
	}
	if decl.HeaderFor("js") != "./sb.js" {
		t.Errorf("js header = %q", decl.HeaderFor("js"))
	}
	if len(decl.Fields) != 1 || len(decl.Methods) != 2 {
		t.Fatalf("got %d fields / %d methods", len(decl.Fields), len(decl.Methods))
	}
	if !decl.Methods[0].Static {
		t.Error("create should be static")
	}
}

func TestExternClassSingleHeader(t *testing.T) {
	input := `extern class FileIO from "fileio.h" { static open(path: string): FileIO; }`
	program := parseProgram(t, input)
	decl := program.Body[0].(*ast.ExternClassDeclaration)
	if decl.HeaderFor("cpp") != "fileio.h" {
		t.Errorf("shared header = %q, want fileio.h", decl.HeaderFor("cpp"))
	}
}

func TestSwitchStatementWithRanges(t *testing.T) {
	input := `switch (n) {
	case 0..5:
		low();
	case 6..<10:
		mid();
	case null:
		none();
	default:
		high();
}`
	program := parseProgram(t, input)
	sw, ok := program.Body[0].(*ast.SwitchStatement)
	if !ok {
		t.Fatalf("expected SwitchStatement, got %T", program.Body[0])
	}
	if len(sw.Cases) != 4 {
		t.Fatalf("expected 4 cases, got %d", len(sw.Cases))
	}
	r, ok := sw.Cases[0].Tests[0].(*ast.RangeExpression)
	if !ok {
		t.Fatalf("first case should test a range, got %T", sw.Cases[0].Tests[0])
	}
	if r.Exclusive {
		t.Error("0..5 should be inclusive")
	}
	r2 := sw.Cases[1].Tests[0].(*ast.RangeExpression)
	if !r2.Exclusive {
		t.Error("6..<10 should be exclusive")
	}
	if _, ok := sw.Cases[2].Tests[0].(*ast.NullLiteral); !ok {
		t.Error("third case should test null")
	}
	if sw.Cases[3].Tests != nil {
		t.Error("default case should have no tests")
	}
}

func TestForOfRange(t *testing.T) {
	input := `for (const i of 0..<10) { body(); }`
	program := parseProgram(t, input)
	fos, ok := program.Body[0].(*ast.ForOfStatement)
	if !ok {
		t.Fatalf("expected ForOfStatement, got %T", program.Body[0])
	}
	if fos.Kind != lexer.CONST {
		t.Errorf("kind = %s, want const", fos.Kind)
	}
	r, ok := fos.Right.(*ast.RangeExpression)
	if !ok {
		t.Fatalf("expected RangeExpression source, got %T", fos.Right)
	}
	if !r.Exclusive {
		t.Error("0..<10 should be exclusive")
	}
}

func TestForOfCollection(t *testing.T) {
	input := `for (const x of items) { use(x); }`
	program := parseProgram(t, input)
	fos := program.Body[0].(*ast.ForOfStatement)
	if _, ok := fos.Right.(*ast.Identifier); !ok {
		t.Fatalf("expected identifier source, got %T", fos.Right)
	}
}

func TestCStyleForLoop(t *testing.T) {
	input := `for (let i = 0; i < 10; i++) { body(); }`
	program := parseProgram(t, input)
	fs, ok := program.Body[0].(*ast.ForStatement)
	if !ok {
		t.Fatalf("expected ForStatement, got %T", program.Body[0])
	}
	if fs.Init == nil || fs.Test == nil || fs.Update == nil {
		t.Error("all three clauses should be present")
	}
}

func TestTemplateLiteral(t *testing.T) {
	input := "let s = `hello ${name} and ${1 + 2}!`;"
	program := parseProgram(t, input)
	stmt := program.Body[0].(*ast.VariableDeclaration)
	tl, ok := stmt.Declarations[0].Init.(*ast.TemplateLiteral)
	if !ok {
		t.Fatalf("expected TemplateLiteral, got %T", stmt.Declarations[0].Init)
	}
	if tl.Tag != nil {
		t.Error("untagged template should have nil tag")
	}
	if len(tl.Chunks) != 3 || len(tl.Exprs) != 2 {
		t.Fatalf("chunks/exprs = %d/%d, want 3/2", len(tl.Chunks), len(tl.Exprs))
	}
	if tl.Chunks[0] != "hello " || tl.Chunks[1] != " and " || tl.Chunks[2] != "!" {
		t.Errorf("unexpected chunks: %q", tl.Chunks)
	}
	if _, ok := tl.Exprs[1].(*ast.BinaryExpression); !ok {
		t.Errorf("second interpolation should be a binary expression, got %T", tl.Exprs[1])
	}
}

func TestTaggedTemplate(t *testing.T) {
	input := "let s = html`<b>${x}</b>`;"
	program := parseProgram(t, input)
	stmt := program.Body[0].(*ast.VariableDeclaration)
	tl, ok := stmt.Declarations[0].Init.(*ast.TemplateLiteral)
	if !ok {
		t.Fatalf("expected TemplateLiteral, got %T", stmt.Declarations[0].Init)
	}
	if tl.Tag == nil || tl.Tag.Name != "html" {
		t.Fatalf("expected tag html, got %v", tl.Tag)
	}
}

func TestWhitespaceDisablesTagging(t *testing.T) {
	input := "let s = html;\nlet q = `tpl`;"
	program := parseProgram(t, input)
	first := program.Body[0].(*ast.VariableDeclaration)
	if _, ok := first.Declarations[0].Init.(*ast.Identifier); !ok {
		t.Fatalf("html followed by ';' should stay an identifier, got %T",
			first.Declarations[0].Init)
	}
}

func TestAsyncCallAndAwait(t *testing.T) {
	input := `let h = async work(1, 2);
let r = await h;`
	program := parseProgram(t, input)
	first := program.Body[0].(*ast.VariableDeclaration)
	call, ok := first.Declarations[0].Init.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected CallExpression, got %T", first.Declarations[0].Init)
	}
	if !call.Async {
		t.Error("call should be marked async")
	}

	second := program.Body[1].(*ast.VariableDeclaration)
	if _, ok := second.Declarations[0].Init.(*ast.AwaitExpression); !ok {
		t.Fatalf("expected AwaitExpression, got %T", second.Declarations[0].Init)
	}
}

func TestTypeTestExpression(t *testing.T) {
	input := `let b = person is Adult;`
	program := parseProgram(t, input)
	stmt := program.Body[0].(*ast.VariableDeclaration)
	tt, ok := stmt.Declarations[0].Init.(*ast.TypeTestExpression)
	if !ok {
		t.Fatalf("expected TypeTestExpression, got %T", stmt.Declarations[0].Init)
	}
	ref, ok := tt.Type.(*ast.TypeReference)
	if !ok || ref.Name.Name != "Adult" {
		t.Errorf("tested type should be Adult")
	}
}

func TestCastExpression(t *testing.T) {
	input := `let i = f as int;`
	program := parseProgram(t, input)
	stmt := program.Body[0].(*ast.VariableDeclaration)
	if _, ok := stmt.Declarations[0].Init.(*ast.CastExpression); !ok {
		t.Fatalf("expected CastExpression, got %T", stmt.Declarations[0].Init)
	}
}

func TestClassObjectLiteral(t *testing.T) {
	input := `let p = Point { kind: "pointy", x: 1, y: 2 };`
	program := parseProgram(t, input)
	stmt := program.Body[0].(*ast.VariableDeclaration)
	obj, ok := stmt.Declarations[0].Init.(*ast.ObjectLiteral)
	if !ok {
		t.Fatalf("expected ObjectLiteral, got %T", stmt.Declarations[0].Init)
	}
	if obj.Class == nil || obj.Class.Name != "Point" {
		t.Fatalf("expected class Point, got %v", obj.Class)
	}
	if len(obj.Properties) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(obj.Properties))
	}
}

func TestConditionDoesNotEatBlockAsObjectLiteral(t *testing.T) {
	input := `if (ready) { go(); }`
	program := parseProgram(t, input)
	ifStmt, ok := program.Body[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected IfStatement, got %T", program.Body[0])
	}
	if _, ok := ifStmt.Test.(*ast.Identifier); !ok {
		t.Fatalf("condition should be identifier, got %T", ifStmt.Test)
	}
}

func TestQuotedMemberAccess(t *testing.T) {
	input := `let v = obj."my-field";`
	program := parseProgram(t, input)
	stmt := program.Body[0].(*ast.VariableDeclaration)
	mem, ok := stmt.Declarations[0].Init.(*ast.MemberExpression)
	if !ok {
		t.Fatalf("expected MemberExpression, got %T", stmt.Declarations[0].Init)
	}
	if !mem.Quoted {
		t.Error("access should be quoted")
	}
	if sl, ok := mem.Property.(*ast.StringLiteral); !ok || sl.Value != "my-field" {
		t.Errorf("property = %v", mem.Property)
	}
}

func TestEnumShorthand(t *testing.T) {
	input := `let c: Color = .Red;`
	program := parseProgram(t, input)
	stmt := program.Body[0].(*ast.VariableDeclaration)
	sh, ok := stmt.Declarations[0].Init.(*ast.EnumShorthandExpression)
	if !ok {
		t.Fatalf("expected EnumShorthandExpression, got %T", stmt.Declarations[0].Init)
	}
	if sh.Member.Name != "Red" {
		t.Errorf("member = %s, want Red", sh.Member.Name)
	}
}

func TestImportDeclaration(t *testing.T) {
	input := `import { identity, Pair } from "./util";`
	program := parseProgram(t, input)
	imp, ok := program.Body[0].(*ast.ImportDeclaration)
	if !ok {
		t.Fatalf("expected ImportDeclaration, got %T", program.Body[0])
	}
	if len(imp.Names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(imp.Names))
	}
	if imp.Path.Value != "./util" {
		t.Errorf("path = %q, want ./util", imp.Path.Value)
	}
}

func TestArrowFunctions(t *testing.T) {
	tests := []string{
		`let f = (a: int, b: int) => a + b;`,
		`let g = x => x * 2;`,
		`let h = () => { return 1; };`,
	}
	for _, input := range tests {
		program := parseProgram(t, input)
		stmt := program.Body[0].(*ast.VariableDeclaration)
		if _, ok := stmt.Declarations[0].Init.(*ast.ArrowFunctionExpression); !ok {
			t.Errorf("%q: expected ArrowFunctionExpression, got %T", input, stmt.Declarations[0].Init)
		}
	}
}

func TestCommentsBecomeStatements(t *testing.T) {
	input := `// leading comment
let a = 1;

// standalone between
let b = 2;`
	program := parseProgram(t, input)

	if _, ok := program.Body[0].(*ast.CommentStatement); !ok {
		t.Fatalf("expected leading CommentStatement, got %T", program.Body[0])
	}

	var sawBlank, sawBetween bool
	for _, stmt := range program.Body {
		if bs, ok := stmt.(*ast.BlankStatement); ok && bs.Count >= 1 {
			sawBlank = true
		}
		if cs, ok := stmt.(*ast.CommentStatement); ok && cs.Text == "// standalone between" {
			sawBetween = true
		}
	}
	if !sawBlank {
		t.Error("blank line not preserved as BlankStatement")
	}
	if !sawBetween {
		t.Error("standalone comment not preserved")
	}
}

func TestBlockCommentInsideBlock(t *testing.T) {
	input := `function f(): void {
	/* setup */
	init();
}`
	program := parseProgram(t, input)
	fn := program.Body[0].(*ast.FunctionDeclaration)
	if _, ok := fn.Body.Body[0].(*ast.CommentStatement); !ok {
		t.Fatalf("expected CommentStatement first in block, got %T", fn.Body.Body[0])
	}
}

func TestErrorRecoverySynchronizes(t *testing.T) {
	input := `let = 5;
let ok = 1;`
	p := New(lexer.NewFile("test.tgs", input))
	program := p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected at least one parse error")
	}
	var found bool
	for _, stmt := range program.Body {
		if vd, ok := stmt.(*ast.VariableDeclaration); ok {
			for _, d := range vd.Declarations {
				if id, ok := d.Id.(*ast.Identifier); ok && id.Name == "ok" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("parser did not recover to parse the following statement")
	}
}

func TestParseErrorsCarryPositions(t *testing.T) {
	p := New(lexer.NewFile("bad.tgs", "let = 1;"))
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected errors")
	}
	if got := p.Errors()[0]; len(got) < 8 || got[:8] != "bad.tgs:" {
		t.Errorf("error not prefixed with position: %q", got)
	}
}

func TestStringConcatenationParse(t *testing.T) {
	input := `let s = "a" + "b" + 1;`
	program := parseProgram(t, input)
	stmt := program.Body[0].(*ast.VariableDeclaration)
	bin, ok := stmt.Declarations[0].Init.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("expected BinaryExpression, got %T", stmt.Declarations[0].Init)
	}
	// Left-to-right: (("a" + "b") + 1)
	if _, ok := bin.Left.(*ast.BinaryExpression); !ok {
		t.Errorf("expected left-nested concatenation, got %T", bin.Left)
	}
}

func TestNonNullAssertionPostfix(t *testing.T) {
	input := `let v = maybe!;`
	program := parseProgram(t, input)
	stmt := program.Body[0].(*ast.VariableDeclaration)
	if _, ok := stmt.Declarations[0].Init.(*ast.NonNullAssertion); !ok {
		t.Fatalf("expected NonNullAssertion, got %T", stmt.Declarations[0].Init)
	}
}

func TestWeakFieldType(t *testing.T) {
	input := `class Node { parent: weak Node; next: Node?; }`
	program := parseProgram(t, input)
	class := program.Body[0].(*ast.ClassDeclaration)
	fields := class.Fields()
	if _, ok := fields[0].TypeAnnotation.(*ast.WeakType); !ok {
		t.Fatalf("expected WeakType, got %T", fields[0].TypeAnnotation)
	}
}
