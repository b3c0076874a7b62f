package tgc

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgc-lang/tgc/backend"
	"github.com/tgc-lang/tgc/diag"
)

// Scenario: array printability. A valid program compiles without errors
// and the C++ emission prints the array and pulls in the vector header.
func TestArrayPrintability(t *testing.T) {
	result := Transpile(`let numbers: int[] = [1, 2, 3];
println(numbers);
`, "main.tgs", DefaultOptions())

	require.False(t, result.HasErrors(), "errors: %v", result.Errors)
	assert.Contains(t, result.Source, "println(numbers)")
	assert.Contains(t, result.Source, "#include <vector>")
}

func TestValidationErrorsSuppressOutput(t *testing.T) {
	result := Transpile(`let x: int = "not an int";`, "main.tgs", DefaultOptions())
	require.True(t, result.HasErrors())
	assert.Empty(t, result.Source, "validation errors must not produce code output")
	assert.Empty(t, result.Header)
}

func TestParseErrorsStillProduceOutput(t *testing.T) {
	src := `let = broken;
let ok: int = 1;
`
	result := Transpile(src, "main.tgs", DefaultOptions())
	require.True(t, result.HasErrors())
	assert.NotEmpty(t, result.Source, "parse errors still produce code output")
}

func TestNoValidationForcesOutput(t *testing.T) {
	opts := DefaultOptions()
	opts.Validate = false
	result := Transpile(`let x: int = "wrong";`, "main.tgs", opts)
	assert.False(t, result.HasErrors(), "validation is off; no semantic errors recorded")
	assert.NotEmpty(t, result.Source)
}

func TestUnknownTargetErrors(t *testing.T) {
	opts := DefaultOptions()
	opts.Target = "fortran"
	result := Transpile(`let x = 1;`, "main.tgs", opts)
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Errors[len(result.Errors)-1].Message, "unknown target")
}

func TestDiagnosticFormatting(t *testing.T) {
	result := Transpile(`let x: int = "s";`, "main.tgs", DefaultOptions())
	require.True(t, result.HasErrors())
	first := result.Errors[0]
	line := first.Error()
	assert.True(t, strings.HasPrefix(line, "main.tgs:"), "got %q", line)
	assert.Regexp(t, `^main\.tgs:\d+:\d+: `, line)
}

func TestNamespaceWrapping(t *testing.T) {
	opts := DefaultOptions()
	opts.Namespace = "demo"
	result := Transpile(`let x: int = 1;`, "main.tgs", opts)
	require.False(t, result.HasErrors())
	assert.Contains(t, result.Source, "namespace demo {")
	assert.Contains(t, result.Header, "namespace demo {")
}

func TestLineDirectives(t *testing.T) {
	opts := DefaultOptions()
	opts.EmitLineDirectives = true
	result := Transpile("let a: int = 1;\nlet b: int = 2;\n", "main.tgs", opts)
	require.False(t, result.HasErrors())
	assert.Contains(t, result.Source, `#line 1 "main.tgs"`)
	assert.Contains(t, result.Source, `#line 2 "main.tgs"`)

	opts.EmitLineDirectives = false
	result = Transpile("let a: int = 1;\n", "main.tgs", opts)
	assert.NotContains(t, result.Source, "#line")
}

// Scenario: generic specialization across files. identity is declared in
// one file, imported and instantiated twice elsewhere; both call sites
// are rewritten and both specializations exist.
func TestProjectGenericSpecialization(t *testing.T) {
	files := map[string]string{
		"util.tgs": `function identity<T>(v: T): T { return v; }`,
		"main.tgs": `import { identity } from "./util";
let a = identity<int>(7);
let b = identity<string>("g");
`,
	}

	result := TranspileProject(files, DefaultOptions())
	require.NotNil(t, result.GlobalContext)
	for _, d := range result.Errors {
		assert.NotEqual(t, diag.SeverityError, d.Severity, "unexpected error: %s", d.Error())
	}

	assert.Contains(t, result.GlobalContext.Instantiations, "identity__primitive_int")
	assert.Contains(t, result.GlobalContext.Instantiations, "identity__primitive_string")

	artifact := result.Files["main.tgs"]
	require.NotNil(t, artifact)
	assert.Contains(t, artifact.Source, "identity__primitive_int(7)")
	assert.NotContains(t, artifact.Source, "identity<int>")
}

func TestProjectSharesOneSymbolTable(t *testing.T) {
	files := map[string]string{
		"types.tgs": `class Point { x: int; y: int; }`,
		"main.tgs": `import { Point } from "./types";
let p = Point { x: 1, y: 2 };
`,
	}
	result := TranspileProject(files, DefaultOptions())
	for _, d := range result.Errors {
		assert.NotEqual(t, diag.SeverityError, d.Severity, "unexpected error: %s", d.Error())
	}
}

func TestExternMetadataSurfaces(t *testing.T) {
	result := Transpile(`
extern class FileIO from { cpp: "fileio.h", js: "./fileio.js" } {
	static open(path: string): FileIO;
}
let x = 1;
`, "main.tgs", DefaultOptions())
	require.False(t, result.HasErrors(), "errors: %v", result.Errors)

	var names []string
	for _, record := range result.ExternMetadata {
		names = append(names, record.Name)
	}
	assert.Contains(t, names, "FileIO")
	assert.Contains(t, names, "StringBuilder", "curated builtins are merged")
}

// bytecodeModule mirrors the artifact JSON for assertions.
type bytecodeModule struct {
	Constants []struct {
		Type  string      `json:"type"`
		Value interface{} `json:"value"`
	} `json:"constants"`
	Instructions []struct {
		Mnemonic string `json:"mnemonic"`
		Operands []int  `json:"operands"`
	} `json:"instructions"`
	Debug *struct {
		Functions []struct {
			Name             string `json:"name"`
			StartInstruction int    `json:"startInstruction"`
			EndInstruction   int    `json:"endInstruction"`
		} `json:"functions"`
	} `json:"debug"`
}

func TestBytecodeArtifact(t *testing.T) {
	opts := DefaultOptions()
	opts.Target = backend.TargetBytecode
	result := Transpile(`
function twice(n: int): int {
	return n * 2;
}
let a: int = 2;
let b: int = twice(a);
println(b);
`, "main.tgs", opts)
	require.False(t, result.HasErrors(), "errors: %v", result.Errors)
	require.NotEmpty(t, result.Bytecode)

	var module bytecodeModule
	require.NoError(t, json.Unmarshal(result.Bytecode, &module))

	// Constants are deduplicated: the literal 2 appears twice in source
	// but once in the pool.
	var twos int
	for _, c := range module.Constants {
		if c.Type == "int" && fmt.Sprintf("%v", c.Value) == "2" {
			twos++
		}
	}
	assert.Equal(t, 1, twos, "constant pool must deduplicate")

	// Debug ranges index valid instructions.
	require.NotNil(t, module.Debug)
	require.Len(t, module.Debug.Functions, 1)
	fn := module.Debug.Functions[0]
	assert.Equal(t, "twice", fn.Name)
	assert.GreaterOrEqual(t, fn.StartInstruction, 0)
	assert.Less(t, fn.EndInstruction, len(module.Instructions))
	assert.LessOrEqual(t, fn.StartInstruction, fn.EndInstruction)

	var sawPrint, sawHalt bool
	for _, ins := range module.Instructions {
		switch ins.Mnemonic {
		case "PRINT":
			sawPrint = true
		case "HALT":
			sawHalt = true
		}
	}
	assert.True(t, sawPrint)
	assert.True(t, sawHalt)
}

func TestBytecodeArtifactSnapshot(t *testing.T) {
	opts := DefaultOptions()
	opts.Target = backend.TargetBytecode
	result := Transpile(`
function greet(name: string): string {
	return "hello " + name;
}
let message: string = greet("world");
println(message);
`, "main.tgs", opts)
	require.False(t, result.HasErrors(), "errors: %v", result.Errors)
	snaps.MatchSnapshot(t, string(result.Bytecode))
}

func TestDesugaredProgramSnapshot(t *testing.T) {
	files := map[string]string{
		"main.tgs": `interface Drivable {
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
`,
	}
	result := TranspileProject(files, DefaultOptions())
	for _, d := range result.Errors {
		require.NotEqual(t, diag.SeverityError, d.Severity, "unexpected error: %s", d.Error())
	}
	require.NotNil(t, result.Files["main.tgs"])
	snaps.MatchSnapshot(t, result.Files["main.tgs"].Source)
}

// Comment and blank-line round trip: a file differing only in trivia
// yields an emission that preserves those comments and blanks.
func TestTriviaRoundTrip(t *testing.T) {
	src := `// configuration block
let a: int = 1;

// a standalone note
let b: int = 2;
`
	result := Transpile(src, "main.tgs", DefaultOptions())
	require.False(t, result.HasErrors(), "errors: %v", result.Errors)
	assert.Contains(t, result.Source, "// configuration block")
	assert.Contains(t, result.Source, "// a standalone note")
}

func TestHeaderOnlyAndSourceOnly(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputSource = false
	result := Transpile(`let x: int = 1;`, "main.tgs", opts)
	assert.NotEmpty(t, result.Header)
	assert.Empty(t, result.Source)

	opts = DefaultOptions()
	opts.OutputHeader = false
	result = Transpile(`let x: int = 1;`, "main.tgs", opts)
	assert.Empty(t, result.Header)
	assert.NotEmpty(t, result.Source)
}
