package externmeta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/lexer"
	"github.com/tgc-lang/tgc/parser"
)

func collect(t *testing.T, src string) []*Record {
	t.Helper()
	p := parser.New(lexer.NewFile("test.tgs", src))
	program := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors")
	return Collect([]*ast.Program{program})
}

func find(records []*Record, name string) *Record {
	for _, r := range records {
		if r.Name == name {
			return r
		}
	}
	return nil
}

func TestCollectExternClass(t *testing.T) {
	records := collect(t, `
extern class FileIO from { cpp: "fileio.h", js: "./fileio.js" } {
	path: string;
	static open(path: string): FileIO;
	read(): string;
}
`)
	record := find(records, "FileIO")
	require.NotNil(t, record)
	assert.False(t, record.Builtin)
	assert.Equal(t, "fileio.h", record.HeaderFor("cpp"))
	assert.Equal(t, "./fileio.js", record.HeaderFor("js"))

	require.Len(t, record.Fields, 1)
	assert.Equal(t, "path", record.Fields[0].Name)
	assert.Equal(t, "string", record.Fields[0].Type)

	require.Len(t, record.Methods, 2)
	assert.True(t, record.Methods[0].Static)
	assert.Equal(t, "FileIO", record.Methods[0].Return)
	require.Len(t, record.Methods[0].Params, 1)
	assert.Equal(t, "string", record.Methods[0].Params[0].Type)
}

func TestSharedHeaderFallback(t *testing.T) {
	records := collect(t, `
extern class Math from "cmath" {
	static sqrt(x: double): double;
}
`)
	record := find(records, "Math")
	require.NotNil(t, record)
	assert.Equal(t, "cmath", record.HeaderFor("cpp"))
	assert.Equal(t, "cmath", record.HeaderFor("js"), "shared binding covers every backend")
}

func TestBuiltinsAreMerged(t *testing.T) {
	records := collect(t, `let x = 1;`)
	for _, name := range []string{"StringBuilder", "Console", "JSON", "Task"} {
		record := find(records, name)
		require.NotNil(t, record, "builtin %s missing", name)
		assert.True(t, record.Builtin)
	}
}

func TestUserDeclarationOverridesBuiltin(t *testing.T) {
	records := collect(t, `
extern class StringBuilder from "my_sb.h" {
	static create(): StringBuilder;
}
`)
	record := find(records, "StringBuilder")
	require.NotNil(t, record)
	assert.False(t, record.Builtin)
	assert.Equal(t, "my_sb.h", record.HeaderFor("cpp"))
}

func TestRecordsAreSorted(t *testing.T) {
	records := collect(t, `
extern class Zeta from "z.h" { }
extern class Alpha from "a.h" { }
`)
	var prev string
	for _, r := range records {
		assert.Greater(t, r.Name, prev)
		prev = r.Name
	}
}
