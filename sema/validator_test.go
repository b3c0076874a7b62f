package sema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgc-lang/tgc/diag"
	"github.com/tgc-lang/tgc/lexer"
	"github.com/tgc-lang/tgc/parser"
)

func validate(t *testing.T, src string) (*GlobalContext, *diag.Bag) {
	t.Helper()
	p := parser.New(lexer.NewFile("test.tgs", src))
	program := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors")

	ctx := NewGlobalContext()
	bag := diag.NewBag()
	NewValidator(ctx, bag).Validate(program)
	return ctx, bag
}

func errorMessages(bag *diag.Bag) []string {
	var msgs []string
	for _, d := range bag.Errors() {
		msgs = append(msgs, d.Message)
	}
	return msgs
}

func assertOneErrorContaining(t *testing.T, bag *diag.Bag, substr string) {
	t.Helper()
	msgs := errorMessages(bag)
	require.NotEmpty(t, msgs, "expected an error mentioning %q", substr)
	for _, msg := range msgs {
		if strings.Contains(msg, substr) {
			return
		}
	}
	t.Fatalf("no error mentions %q; got %v", substr, msgs)
}

func TestValidProgramHasNoErrors(t *testing.T) {
	_, bag := validate(t, `
let numbers: int[] = [1, 2, 3];
println(numbers);
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

func TestUndefinedIdentifierSuppresesCascade(t *testing.T) {
	_, bag := validate(t, `
let a = missing;
let b = a + 1;
let c = b * 2;
`)
	assert.Len(t, errorMessages(bag), 1, "Unknown must absorb dependent errors")
	assertOneErrorContaining(t, bag, "undefined identifier 'missing'")
}

func TestNumericLiteralNarrowing(t *testing.T) {
	ctx, bag := validate(t, `
let x: float = 3;
let y: double = 1.5;
let z: float = 1 + 2;
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
	_ = ctx
}

func TestFloatToIntNeedsCast(t *testing.T) {
	_, bag := validate(t, `
let f: float = 1.5;
let i: int = f;
`)
	assertOneErrorContaining(t, bag, "cannot assign 'float'")
}

func TestExplicitNarrowingCast(t *testing.T) {
	_, bag := validate(t, `
let f: float = 1.5;
let i: int = f as int;
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

func TestRedundantCastIsElided(t *testing.T) {
	ctx, bag := validate(t, `
let i: int = 1;
let j: int = i as int;
`)
	assert.False(t, bag.HasErrors())
	assert.Len(t, ctx.Info.ElidedCasts, 1)
}

func TestCharAndStringAreDistinct(t *testing.T) {
	_, bag := validate(t, `
let c: char = 'x';
let s: string = c;
`)
	assertOneErrorContaining(t, bag, "cannot assign 'char'")
}

func TestIntegerDivisionPreservesType(t *testing.T) {
	_, bag := validate(t, `
let q: int = 7 / 2;
let r: double = 7.0 / 2.0;
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

func TestStringPlusCoercesOperands(t *testing.T) {
	ctx, bag := validate(t, `
let s: string = "n=" + 42 + ' ' + true;
let lit: string = "a" + "b";
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
	assert.Len(t, ctx.Info.WrappedStrings, 2, "adjacent string literals get wrapped")
}

func TestNullSafety(t *testing.T) {
	_, bag := validate(t, `
class Box { value: int; }
let b: Box? = null;
let v = b.value;
`)
	assertOneErrorContaining(t, bag, "possibly null")
}

func TestNullGuardNarrows(t *testing.T) {
	_, bag := validate(t, `
class Box { value: int; }
function get(b: Box?): int {
	if (b != null) {
		return b.value;
	}
	return 0;
}
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

func TestNonNullVariableRejectsNull(t *testing.T) {
	_, bag := validate(t, `
let x: int = 1;
x = null;
`)
	assertOneErrorContaining(t, bag, "cannot assign 'null'")
}

func TestCoalescingOperator(t *testing.T) {
	_, bag := validate(t, `
function pick(name: string?): string {
	return name ?? "anonymous";
}
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

// Discriminated-union narrowing: inside the tag-guarded branch the
// subject has the single member type, so member-only accesses succeed;
// outside they error.
func TestDiscriminatedUnionNarrowing(t *testing.T) {
	src := `
class Adult {
	const kind = "Adult";
	job: string;
}
class Child {
	const kind = "Child";
	school: string;
}
type Person = Adult | Child;

function describe(person: Person): string {
	if (person.kind == "Adult") {
		return person.job;
	} else {
		return person.school;
	}
}
`
	ctx, bag := validate(t, src)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))

	info, ok := ctx.Discriminants["Person"]
	require.True(t, ok, "Person should be discriminated")
	assert.Equal(t, "kind", info.Field)
	assert.Equal(t, "Adult", info.ByValue[`"Adult"`])
	assert.Equal(t, "Child", info.ByValue[`"Child"`])

	var narrowedToAdult bool
	for _, typ := range ctx.Info.Narrowed {
		if class, ok := typ.(*ClassType); ok && class.Name == "Adult" {
			narrowedToAdult = true
		}
	}
	assert.True(t, narrowedToAdult, "a use of person should be narrowed to Adult")
}

func TestUnionMemberAccessWithoutGuardFails(t *testing.T) {
	_, bag := validate(t, `
class Adult { const kind = "Adult"; job: string; }
class Child { const kind = "Child"; school: string; }
type Person = Adult | Child;

function describe(person: Person): string {
	return person.job;
}
`)
	require.True(t, bag.HasErrors())
}

func TestDiscriminantValuesMustBeDistinct(t *testing.T) {
	_, bag := validate(t, `
class A { const kind = "same"; }
class B { const kind = "same"; }
type U = A | B;
`)
	assertOneErrorContaining(t, bag, "collides")
}

func TestIsNarrowing(t *testing.T) {
	_, bag := validate(t, `
class Adult { const kind = "Adult"; job: string; }
class Child { const kind = "Child"; school: string; }
type Person = Adult | Child;

function job(person: Person): string {
	if (person is Adult) {
		return person.job;
	}
	return "";
}
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

// Const field override: object-literal construction may repeat the
// default but never change it.
func TestConstFieldOverrideRejection(t *testing.T) {
	_, bag := validate(t, `
class Point {
	const kind = "point";
	x: int;
	y: int;
}
let p = Point { kind: "pointy", x: 1, y: 2 };
`)
	msgs := errorMessages(bag)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "const field 'kind'")
}

func TestConstFieldIdenticalOverrideAllowed(t *testing.T) {
	_, bag := validate(t, `
class Point {
	const kind = "point";
	x: int;
}
let p = Point { kind: "point", x: 1 };
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

func TestConstVariableReassignment(t *testing.T) {
	_, bag := validate(t, `
const limit: int = 10;
limit = 11;
`)
	assertOneErrorContaining(t, bag, "cannot reassign const variable 'limit'")
}

func TestConstRequiresInitializer(t *testing.T) {
	_, bag := validate(t, `const broken: int;`)
	assertOneErrorContaining(t, bag, "requires an initializer")
}

func TestReadonlyFieldReassignment(t *testing.T) {
	_, bag := validate(t, `
class Config {
	readonly url: string = "http://localhost";
}
let c = Config {};
c.url = "other";
`)
	assertOneErrorContaining(t, bag, "readonly field 'url'")
}

func TestPrivateFieldAccess(t *testing.T) {
	_, bag := validate(t, `
class Vault {
	private secret: string = "s";
	reveal(): string { return secret; }
}
let v = Vault {};
let s = v.secret;
`)
	assertOneErrorContaining(t, bag, "private")
}

func TestPrivateFieldInObjectLiteral(t *testing.T) {
	_, bag := validate(t, `
class Vault { private secret: string = "s"; }
let v = Vault { secret: "x" };
`)
	assertOneErrorContaining(t, bag, "private field 'secret'")
}

func TestImplicitThisHint(t *testing.T) {
	ctx, bag := validate(t, `
class Counter {
	count: int;
	bump(): int {
		count = count + 1;
		return count;
	}
}
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
	assert.NotEmpty(t, ctx.Info.ImplicitThis, "implicit-this uses should be recorded")
}

// Async isolation, both halves of the rule.
func TestAsyncGlobalAccess(t *testing.T) {
	_, bag := validate(t, `
let counter: int = 0;
async function work(): int {
	return counter;
}
`)
	assertOneErrorContaining(t, bag, "cannot access global variables")
}

func TestAsyncMutableArgument(t *testing.T) {
	_, bag := validate(t, `
class State { value: int; }
async function work(s: State): int { return 1; }
function run(): void {
	let s = State { value: 1 };
	let h = async work(s);
}
`)
	assertOneErrorContaining(t, bag, "immutable")
}

func TestAsyncImmutableArgumentAllowed(t *testing.T) {
	_, bag := validate(t, `
class Frozen {
	readonly label: string = "ok";
	const tag = 1;
}
async function work(f: Frozen, n: int, s: string): int { return n; }
function run(): int {
	let f = Frozen {};
	let h = async work(f, 1, "x");
	return await h;
}
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

func TestAwaitYieldsResultType(t *testing.T) {
	_, bag := validate(t, `
async function work(n: int): int { return n; }
function run(): int {
	let h = async work(1);
	let r: int = await h;
	return r;
}
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

func TestMapKeyConstraint(t *testing.T) {
	_, bag := validate(t, `let bad: Map<float, int>;`)
	assertOneErrorContaining(t, bag, "admissible map key")
}

func TestSetElementConstraint(t *testing.T) {
	_, bag := validate(t, `
class C { x: int; }
let bad: Set<C>;
`)
	assertOneErrorContaining(t, bag, "admissible set element")
}

func TestGenericInstantiationRecorded(t *testing.T) {
	ctx, bag := validate(t, `
function identity<T>(v: T): T { return v; }
let a = identity<int>(7);
let b = identity<string>("g");
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
	assert.Contains(t, ctx.Instantiations, "identity__primitive_int")
	assert.Contains(t, ctx.Instantiations, "identity__primitive_string")
}

func TestGenericInferenceFromArguments(t *testing.T) {
	ctx, bag := validate(t, `
function first<T>(xs: T[]): T { return xs[0]; }
let v = first([1, 2, 3]);
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
	assert.Contains(t, ctx.Instantiations, "first__primitive_int")
}

func TestTaggedTemplateSignature(t *testing.T) {
	_, bag := validate(t, `
function html(parts: string[], values: int[]): string { return ""; }
let s = html` + "`" + `count: ${42}` + "`" + `;
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

func TestTaggedTemplateWrongArity(t *testing.T) {
	_, bag := validate(t, `
function bad(parts: string[]): string { return ""; }
let s = bad` + "`" + `x${1}y` + "`" + `;
`)
	assertOneErrorContaining(t, bag, "exactly two parameters")
}

func TestTaggedTemplateValueMismatch(t *testing.T) {
	_, bag := validate(t, `
class C { x: int; }
function tag(parts: string[], values: int[]): string { return ""; }
function f(c: C): string {
	return tag` + "`" + `v=${c}` + "`" + `;
}
`)
	require.True(t, bag.HasErrors())
}

func TestSwitchRangeRequiresIntDiscriminant(t *testing.T) {
	_, bag := validate(t, `
let s: string = "x";
switch (s) {
	case 0..5:
		break;
}
`)
	assertOneErrorContaining(t, bag, "int discriminant")
}

func TestForOfRangeBindsInt(t *testing.T) {
	_, bag := validate(t, `
let total: int = 0;
for (const i of 0..<10) {
	total = total + i;
}
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

func TestRedeclarationInSameScope(t *testing.T) {
	_, bag := validate(t, `
let x = 1;
let x = 2;
`)
	assertOneErrorContaining(t, bag, "already been declared")
}

func TestShadowingInInnerScopeAllowed(t *testing.T) {
	_, bag := validate(t, `
let x = 1;
function f(): int {
	let x = 2;
	return x;
}
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

func TestWeakFieldNeedsGuard(t *testing.T) {
	_, bag := validate(t, `
class Node {
	name: string;
	parent: weak Node;
}
function parentName(n: Node): string {
	return n.parent.name;
}
`)
	assertOneErrorContaining(t, bag, "possibly null")
}

func TestExternClassLiteralConstructionRejected(t *testing.T) {
	_, bag := validate(t, `
extern class FileIO from "fileio.h" {
	static open(path: string): FileIO;
}
let f = FileIO {};
`)
	assertOneErrorContaining(t, bag, "static factories")
}

func TestExternStaticFactory(t *testing.T) {
	_, bag := validate(t, `
extern class StringBuilder from "sstream" {
	static create(): StringBuilder;
	append(s: string): StringBuilder;
}
function build(): StringBuilder {
	let sb = StringBuilder.create();
	return sb.append("hi");
}
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

func TestEnumShorthand(t *testing.T) {
	_, bag := validate(t, `
enum Color { Red, Green, Blue }
let c: Color = .Red;
let d: Color = Color.Green;
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

func TestEnumAsMapKey(t *testing.T) {
	_, bag := validate(t, `
enum Color { Red, Green }
let names: Map<Color, string>;
`)
	assert.False(t, bag.HasErrors(), "errors: %v", errorMessages(bag))
}

func TestFreeObjectLiteralWithoutContextFails(t *testing.T) {
	_, bag := validate(t, `let o = { x: 1 };`)
	assertOneErrorContaining(t, bag, "class context")
}

func TestEveryExpressionGetsAType(t *testing.T) {
	ctx, bag := validate(t, `
function add(a: int, b: int): int { return a + b; }
let r = add(1, 2) * 3;
`)
	assert.False(t, bag.HasErrors())
	assert.NotEmpty(t, ctx.Info.Types)
	for expr, typ := range ctx.Info.Types {
		require.NotNil(t, typ, "expression %T has nil type", expr)
	}
}

func TestMangledNames(t *testing.T) {
	assert.Equal(t, "identity__primitive_int", MangledName("identity", []Type{IntT}))
	assert.Equal(t, "Foo__primitive_int__class_Bar",
		MangledName("Foo", []Type{IntT, &ClassType{Name: "Bar"}}))
	assert.Equal(t, "first__array_primitive_int", MangledName("first", []Type{&ArrayType{ElementType: IntT}}))
}
