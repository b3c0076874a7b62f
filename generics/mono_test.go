package generics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/diag"
	"github.com/tgc-lang/tgc/lexer"
	"github.com/tgc-lang/tgc/parser"
	"github.com/tgc-lang/tgc/sema"
)

func monomorphize(t *testing.T, src string) (*ast.Program, *sema.GlobalContext, *Result, *diag.Bag) {
	t.Helper()
	p := parser.New(lexer.NewFile("test.tgs", src))
	program := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors")

	ctx := sema.NewGlobalContext()
	bag := diag.NewBag()
	sema.NewValidator(ctx, bag).Validate(program)
	require.False(t, bag.HasErrors(), "validation errors: %v", bag.Errors())

	result := Monomorphize([]*ast.Program{program}, ctx, bag)
	return program, ctx, result, bag
}

func declNames(program *ast.Program) []string {
	var names []string
	for _, stmt := range program.Body {
		switch d := stmt.(type) {
		case *ast.FunctionDeclaration:
			names = append(names, d.Name.Name)
		case *ast.ClassDeclaration:
			names = append(names, d.Name.Name)
		}
	}
	return names
}

func TestIdentitySpecialization(t *testing.T) {
	src := `
function identity<T>(v: T): T { return v; }
let a = identity<int>(7);
let b = identity<string>("g");
`
	program, _, result, bag := monomorphize(t, src)
	assert.False(t, bag.HasErrors(), "errors: %v", bag.Errors())

	names := declNames(program)
	assert.Contains(t, names, "identity__primitive_int")
	assert.Contains(t, names, "identity__primitive_string")

	// Both call sites are rewritten; no identity<int>/identity<string>
	// textual form remains.
	text := program.String()
	assert.NotContains(t, text, "identity<int>")
	assert.NotContains(t, text, "identity<string>")
	assert.Contains(t, text, "identity__primitive_int(7)")
	assert.Contains(t, text, `identity__primitive_string("g")`)

	require.Len(t, result.Specialized, 2)
	assert.Len(t, result.Suppressed, 1, "the generic original is suppressed from emission")
}

func TestSpecializedBodySubstitutesAnnotations(t *testing.T) {
	src := `
function identity<T>(v: T): T { return v; }
let a = identity<int>(7);
`
	program, _, _, _ := monomorphize(t, src)

	var spec *ast.FunctionDeclaration
	for _, stmt := range program.Body {
		if fn, ok := stmt.(*ast.FunctionDeclaration); ok && fn.Name.Name == "identity__primitive_int" {
			spec = fn
		}
	}
	require.NotNil(t, spec)
	assert.Empty(t, spec.TypeParameters)

	paramType, ok := spec.Parameters[0].TypeAnnotation.(*ast.BasicType)
	require.True(t, ok, "parameter should be a basic type, got %T", spec.Parameters[0].TypeAnnotation)
	assert.Equal(t, lexer.INT_T, paramType.Kind)

	retType, ok := spec.ReturnType.(*ast.BasicType)
	require.True(t, ok)
	assert.Equal(t, lexer.INT_T, retType.Kind)
}

func TestNestedGenericDiscovery(t *testing.T) {
	src := `
function inner<T>(v: T): T { return v; }
function outer<T>(v: T): T { return inner(v); }
let a = outer<int>(1);
`
	program, ctx, _, bag := monomorphize(t, src)
	assert.False(t, bag.HasErrors(), "errors: %v", bag.Errors())

	names := declNames(program)
	assert.Contains(t, names, "outer__primitive_int")
	assert.Contains(t, names, "inner__primitive_int",
		"specializing outer must discover inner's instantiation")
	assert.Contains(t, ctx.Instantiations, "inner__primitive_int")

	// The specialized outer body calls the specialized inner.
	var outerSpec *ast.FunctionDeclaration
	for _, stmt := range program.Body {
		if fn, ok := stmt.(*ast.FunctionDeclaration); ok && fn.Name.Name == "outer__primitive_int" {
			outerSpec = fn
		}
	}
	require.NotNil(t, outerSpec)
	assert.Contains(t, outerSpec.String(), "inner__primitive_int")
}

func TestGenericClassSpecialization(t *testing.T) {
	src := `
class Pair<K, V> {
	key: K;
	value: V;
}
let p: Pair<int, string> = new Pair<int, string>();
`
	program, _, _, bag := monomorphize(t, src)
	assert.False(t, bag.HasErrors(), "errors: %v", bag.Errors())

	names := declNames(program)
	assert.Contains(t, names, "Pair__primitive_int__primitive_string")

	text := program.String()
	assert.NotContains(t, text, "Pair<int", "generic references must be flattened")
	assert.NotContains(t, text, "new Pair<", "constructor sites must be rewritten")
}

func TestMonomorphizationIsAFixedPoint(t *testing.T) {
	src := `
function identity<T>(v: T): T { return v; }
let a = identity<int>(7);
`
	p := parser.New(lexer.NewFile("test.tgs", src))
	program := p.ParseProgram()
	require.Empty(t, p.Errors())

	ctx := sema.NewGlobalContext()
	bag := diag.NewBag()
	sema.NewValidator(ctx, bag).Validate(program)

	Monomorphize([]*ast.Program{program}, ctx, bag)
	before := len(ctx.Instantiations)
	specCount := len(declNames(program))

	Monomorphize([]*ast.Program{program}, ctx, bag)
	assert.Equal(t, before, len(ctx.Instantiations), "second run must add no instantiations")

	// Splicing must not duplicate specializations either.
	var count int
	for _, name := range declNames(program) {
		if strings.HasPrefix(name, "identity__") {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, specCount, len(declNames(program)))
}
