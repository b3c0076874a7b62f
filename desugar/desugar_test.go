package desugar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/diag"
	"github.com/tgc-lang/tgc/lexer"
	"github.com/tgc-lang/tgc/parser"
	"github.com/tgc-lang/tgc/sema"
)

func desugarSource(t *testing.T, src string) (*ast.Program, *sema.GlobalContext, *diag.Bag) {
	t.Helper()
	p := parser.New(lexer.NewFile("test.tgs", src))
	program := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors")

	ctx := sema.NewGlobalContext()
	bag := diag.NewBag()
	sema.NewValidator(ctx, bag).Declare(program)
	New(ctx, bag).Run(program)
	return program, ctx, bag
}

func findAlias(program *ast.Program, name string) *ast.TypeAliasDeclaration {
	for _, stmt := range program.Body {
		if alias, ok := stmt.(*ast.TypeAliasDeclaration); ok && alias.Name.Name == name {
			return alias
		}
	}
	return nil
}

func TestInterfaceBecomesUnionOfSatisfyingClasses(t *testing.T) {
	src := `
interface Drivable {
	drive(speed: int): void;
}
class Car {
	drive(speed: int): void { }
}
class Truck {
	drive(speed: int): void { }
}
class House {
	paint(): void { }
}
type Fleet = Drivable;
`
	program, ctx, bag := desugarSource(t, src)
	assert.False(t, bag.HasErrors(), "errors: %v", bag.Errors())

	alias := findAlias(program, "Drivable")
	require.NotNil(t, alias, "interface should be replaced by a type alias")

	union, ok := alias.Type.(*ast.UnionType)
	require.True(t, ok, "alias should be a union, got %T", alias.Type)
	require.Len(t, union.Types, 2)
	assert.Equal(t, "Car", union.Types[0].(*ast.TypeReference).Name.Name)
	assert.Equal(t, "Truck", union.Types[1].(*ast.TypeReference).Name.Name)

	resolved, ok := ctx.Aliases["Drivable"]
	require.True(t, ok)
	resolvedUnion, ok := resolved.(*sema.UnionType)
	require.True(t, ok)
	assert.Len(t, resolvedUnion.Types, 2)
}

func TestSingleMatchAliasesClassDirectly(t *testing.T) {
	src := `
interface Named {
	name: string;
}
class User {
	name: string;
	age: int;
}
`
	program, _, bag := desugarSource(t, src)
	assert.False(t, bag.HasErrors())

	alias := findAlias(program, "Named")
	require.NotNil(t, alias)
	ref, ok := alias.Type.(*ast.TypeReference)
	require.True(t, ok, "single match should alias the class directly, got %T", alias.Type)
	assert.Equal(t, "User", ref.Name.Name)
}

func TestUnsatisfiedInterfaceReportsAndKeepsNode(t *testing.T) {
	src := `
interface Flyable {
	fly(): void;
}
class Rock { }
`
	program, _, bag := desugarSource(t, src)
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Errors()[0].Message, "Flyable")

	var stillThere bool
	for _, stmt := range program.Body {
		if iface, ok := stmt.(*ast.InterfaceDeclaration); ok && iface.Name.Name == "Flyable" {
			stillThere = true
		}
	}
	assert.True(t, stillThere, "unsatisfied interface node must remain")
}

func TestFieldTypeMustBeInvariant(t *testing.T) {
	src := `
interface Sized {
	size: int;
}
class Narrow {
	size: float;
}
`
	_, _, bag := desugarSource(t, src)
	// float is not an invariant match for int, so Narrow does not satisfy.
	require.True(t, bag.HasErrors())
}

func TestReadonlyRequiredIffInterfaceMarksIt(t *testing.T) {
	src := `
interface Tagged {
	readonly tag: string;
}
class Mutable {
	tag: string;
}
class Frozen {
	readonly tag: string = "f";
}
`
	program, _, bag := desugarSource(t, src)
	assert.False(t, bag.HasErrors())

	alias := findAlias(program, "Tagged")
	require.NotNil(t, alias)
	ref, ok := alias.Type.(*ast.TypeReference)
	require.True(t, ok, "only Frozen should satisfy, got %T", alias.Type)
	assert.Equal(t, "Frozen", ref.Name.Name)
}

func TestOptionalMembersMayBeAbsent(t *testing.T) {
	src := `
interface Labeled {
	label: string;
	hint?: string;
}
class Plain {
	label: string;
}
`
	program, _, bag := desugarSource(t, src)
	assert.False(t, bag.HasErrors())
	require.NotNil(t, findAlias(program, "Labeled"))
}

func TestExtendsChainIsIncluded(t *testing.T) {
	src := `
interface Base {
	id: int;
}
interface Extended extends Base {
	name: string;
}
class Full {
	id: int;
	name: string;
}
class Partial {
	name: string;
}
`
	program, _, bag := desugarSource(t, src)
	assert.False(t, bag.HasErrors(), "errors: %v", bag.Errors())

	alias := findAlias(program, "Extended")
	require.NotNil(t, alias)
	ref, ok := alias.Type.(*ast.TypeReference)
	require.True(t, ok, "only Full satisfies Extended, got %T", alias.Type)
	assert.Equal(t, "Full", ref.Name.Name)
}

func TestMethodArityMustMatchExactly(t *testing.T) {
	src := `
interface Runner {
	run(speed: int): void;
}
class TwoArg {
	run(speed: int, extra: int): void { }
}
`
	_, _, bag := desugarSource(t, src)
	require.True(t, bag.HasErrors(), "arity mismatch should leave Runner unsatisfied")
}

func TestDesugaredUnionValidates(t *testing.T) {
	src := `
interface Drivable {
	drive(): void;
}
class Car {
	drive(): void { }
}
class Truck {
	drive(): void { }
}
function park(d: Drivable): void {
	d.drive();
}
`
	p := parser.New(lexer.NewFile("test.tgs", src))
	program := p.ParseProgram()
	require.Empty(t, p.Errors())

	ctx := sema.NewGlobalContext()
	bag := diag.NewBag()
	sema.NewValidator(ctx, bag).Declare(program)
	New(ctx, bag).Run(program)
	sema.NewValidator(ctx, bag).CheckBodies(program)

	assert.False(t, bag.HasErrors(), "errors: %v", bag.Errors())
}
