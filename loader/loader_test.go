package loader

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgc-lang/tgc/diag"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestLoadProjectOrdersDependenciesFirst(t *testing.T) {
	files := map[string]string{
		"main.tgs": `import { identity } from "./util";
let a = identity(1);`,
		"util.tgs": `function identity(v: int): int { return v; }`,
	}

	bag := diag.NewBag()
	units, err := New(bag, WithFiles(files), WithLogger(quietLogger())).LoadProject(files)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "util.tgs", units[0].Path, "imported file must come first")
	assert.Equal(t, "main.tgs", units[1].Path)
	assert.False(t, bag.HasErrors(), "errors: %v", bag.Errors())
}

func TestRelativeImportResolution(t *testing.T) {
	files := map[string]string{
		"src/app/main.tgs": `import { helper } from "../lib/helper";
let x = helper();`,
		"src/lib/helper.tgs": `function helper(): int { return 1; }`,
	}

	bag := diag.NewBag()
	units, err := New(bag, WithFiles(files), WithLogger(quietLogger())).LoadProject(files)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "src/lib/helper.tgs", units[0].Path)
}

func TestMissingImportReportsError(t *testing.T) {
	files := map[string]string{
		"main.tgs": `import { nope } from "./missing";`,
	}

	bag := diag.NewBag()
	_, err := New(bag, WithFiles(files), WithLogger(quietLogger())).LoadProject(files)
	require.NoError(t, err, "a missing import accumulates a diagnostic, not a hard failure")
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Errors()[0].Message, "missing")
}

func TestImportCycleIsReportedAndBroken(t *testing.T) {
	files := map[string]string{
		"a.tgs": `import { b } from "./b";
function a(): int { return 1; }`,
		"b.tgs": `import { a } from "./a";
function b(): int { return 2; }`,
	}

	bag := diag.NewBag()
	units, err := New(bag, WithFiles(files), WithLogger(quietLogger())).LoadProject(files)
	require.NoError(t, err)
	assert.Len(t, units, 2, "both sides of the cycle still compile")
	assert.False(t, bag.HasErrors(), "cycles warn, they do not error")

	var sawCycleWarning bool
	for _, d := range bag.All() {
		if d.Severity == diag.SeverityWarning {
			sawCycleWarning = true
		}
	}
	assert.True(t, sawCycleWarning, "cycle must be reported")
}

func TestParseErrorsCarryStructuredPositions(t *testing.T) {
	files := map[string]string{
		"bad.tgs": `let = 5;`,
	}

	bag := diag.NewBag()
	_, err := New(bag, WithFiles(files), WithLogger(quietLogger())).LoadProject(files)
	require.NoError(t, err)
	require.True(t, bag.HasErrors())

	d := bag.Errors()[0]
	assert.Equal(t, "bad.tgs", d.Pos.File)
	assert.Equal(t, 1, d.Pos.Line)
	assert.Equal(t, diag.KindParse, d.Kind)
	assert.NotContains(t, d.Message, "bad.tgs:", "position is structured, not embedded")
}

func TestDeterministicOrder(t *testing.T) {
	files := map[string]string{
		"c.tgs": `let c = 1;`,
		"a.tgs": `let a = 1;`,
		"b.tgs": `let b = 1;`,
	}

	for i := 0; i < 5; i++ {
		bag := diag.NewBag()
		units, err := New(bag, WithFiles(files), WithLogger(quietLogger())).LoadProject(files)
		require.NoError(t, err)
		require.Len(t, units, 3)
		assert.Equal(t, "a.tgs", units[0].Path)
		assert.Equal(t, "b.tgs", units[1].Path)
		assert.Equal(t, "c.tgs", units[2].Path)
	}
}
