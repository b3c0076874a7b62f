package diag

import (
	"strings"
	"testing"

	"github.com/tgc-lang/tgc/lexer"
)

func TestDiagnosticError(t *testing.T) {
	d := &Diagnostic{
		Pos:     lexer.Position{File: "main.tgs", Line: 3, Column: 7},
		Message: "undefined identifier 'foo'",
		Kind:    KindResolution,
	}

	want := "main.tgs:3:7: undefined identifier 'foo'"
	if got := d.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFormatCaret(t *testing.T) {
	d := &Diagnostic{
		Pos:     lexer.Position{File: "main.tgs", Line: 2, Column: 5},
		Message: "cannot assign 'string' to 'int'",
		Kind:    KindType,
		Source:  "let a: int = 1;\nlet b: int = \"x\";\n",
	}

	out := d.Format(false)
	if !strings.Contains(out, "   2 | let b: int = \"x\";") {
		t.Errorf("Format missing source line:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("Format missing caret:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	var srcIdx, caretIdx int
	for i, l := range lines {
		if strings.Contains(l, "let b") {
			srcIdx = i
		}
		if strings.TrimSpace(l) == "^" {
			caretIdx = i
		}
	}
	if caretIdx != srcIdx+1 {
		t.Errorf("caret not directly under source line:\n%s", out)
	}
	caretCol := strings.Index(lines[caretIdx], "^")
	wantCol := len("   2 | ") + d.Pos.Column - 1
	if caretCol != wantCol {
		t.Errorf("caret at column %d, want %d", caretCol, wantCol)
	}
}

func TestBagOrderingAndErrors(t *testing.T) {
	b := NewBag()
	b.Errorf(KindType, lexer.Position{File: "b.tgs", Line: 1, Column: 1}, "second file")
	b.Errorf(KindParse, lexer.Position{File: "a.tgs", Line: 9, Column: 2}, "later line")
	b.Errorf(KindLex, lexer.Position{File: "a.tgs", Line: 1, Column: 4}, "first")
	b.Warnf(KindType, lexer.Position{File: "a.tgs", Line: 1, Column: 1}, "just a warning")

	all := b.All()
	if len(all) != 4 {
		t.Fatalf("expected 4 diagnostics, got %d", len(all))
	}
	if all[0].Message != "just a warning" || all[1].Message != "first" {
		t.Errorf("unexpected sort order: %q then %q", all[0].Message, all[1].Message)
	}
	if all[3].Message != "second file" {
		t.Errorf("file ordering broken, last = %q", all[3].Message)
	}

	errs := b.Errors()
	if len(errs) != 3 {
		t.Errorf("expected 3 errors, got %d", len(errs))
	}
	if !b.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
}

func TestWarningsOnlyBagHasNoErrors(t *testing.T) {
	b := NewBag()
	b.Warnf(KindType, lexer.Position{File: "a.tgs", Line: 1, Column: 1}, "hint")
	if b.HasErrors() {
		t.Error("warnings must not count as errors")
	}
}

func TestMerge(t *testing.T) {
	a := NewBag()
	a.Errorf(KindLex, lexer.Position{File: "a.tgs", Line: 1, Column: 1}, "one")
	c := NewBag()
	c.Errorf(KindParse, lexer.Position{File: "a.tgs", Line: 2, Column: 1}, "two")
	a.Merge(c)
	if a.Len() != 2 {
		t.Errorf("merged bag length = %d, want 2", a.Len())
	}
	a.Merge(nil)
	if a.Len() != 2 {
		t.Errorf("nil merge changed length to %d", a.Len())
	}
}
