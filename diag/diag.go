// Package diag collects and formats compiler diagnostics. Every pipeline
// stage appends to a shared Bag; the CLI prints each diagnostic on its own
// line as "filename:line:column: message".
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tgc-lang/tgc/lexer"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// Kind is the taxonomy bucket a diagnostic belongs to.
type Kind int

const (
	KindLex Kind = iota
	KindParse
	KindResolution
	KindType
	KindAccess
	KindStructural
	KindIsolation
	KindGeneric
)

func (k Kind) String() string {
	switch k {
	case KindLex:
		return "lex"
	case KindParse:
		return "parse"
	case KindResolution:
		return "resolution"
	case KindType:
		return "type"
	case KindAccess:
		return "access"
	case KindStructural:
		return "structural"
	case KindIsolation:
		return "isolation"
	case KindGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Diagnostic is a single compiler message with position and classification.
type Diagnostic struct {
	Pos      lexer.Position
	Message  string
	Severity Severity
	Kind     Kind

	// Source holds the full source text of the file the diagnostic refers
	// to, when available. Used only by Format for the caret rendering.
	Source string
}

// Error implements the error interface with the canonical one-line form.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.Pos.File, d.Pos.Line, d.Pos.Column, d.Message)
}

// Format renders the diagnostic with source context and a caret under the
// offending column. If color is true, ANSI codes highlight the caret and
// message for terminal output.
func (d *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	if d.Pos.File != "" {
		sb.WriteString(fmt.Sprintf("%s in %s:%d:%d\n", titleSeverity(d.Severity), d.Pos.File, d.Pos.Line, d.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("%s at line %d:%d\n", titleSeverity(d.Severity), d.Pos.Line, d.Pos.Column))
	}

	sourceLine := d.sourceLine(d.Pos.Line)
	if sourceLine != "" {
		lineNumStr := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(sourceLine)
		sb.WriteString("\n")

		col := d.Pos.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+col-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(d.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}

func titleSeverity(s Severity) string {
	if s == SeverityWarning {
		return "Warning"
	}
	return "Error"
}

func (d *Diagnostic) sourceLine(line int) string {
	if d.Source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(d.Source, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}

// Bag accumulates diagnostics across pipeline stages. Compilation proceeds
// as long as the AST is traversable; code generation is skipped when the
// bag holds at least one error.
type Bag struct {
	diags []*Diagnostic
}

// NewBag returns an empty diagnostic bag.
func NewBag() *Bag {
	return &Bag{}
}

// Add appends a diagnostic.
func (b *Bag) Add(d *Diagnostic) {
	b.diags = append(b.diags, d)
}

// Errorf records an error diagnostic of the given kind at pos.
func (b *Bag) Errorf(kind Kind, pos lexer.Position, format string, args ...interface{}) {
	b.Add(&Diagnostic{
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
		Kind:     kind,
	})
}

// Warnf records a warning diagnostic of the given kind at pos.
func (b *Bag) Warnf(kind Kind, pos lexer.Position, format string, args ...interface{}) {
	b.Add(&Diagnostic{
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityWarning,
		Kind:     kind,
	})
}

// All returns every accumulated diagnostic in source order (file, then
// line, then column; insertion order breaks ties).
func (b *Bag) All() []*Diagnostic {
	out := make([]*Diagnostic, len(b.diags))
	copy(out, b.diags)
	sort.SliceStable(out, func(i, j int) bool {
		a, c := out[i].Pos, out[j].Pos
		if a.File != c.File {
			return a.File < c.File
		}
		if a.Line != c.Line {
			return a.Line < c.Line
		}
		return a.Column < c.Column
	})
	return out
}

// Errors returns only error-severity diagnostics, in source order.
func (b *Bag) Errors() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range b.All() {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether at least one error-severity diagnostic exists.
// Warnings do not count.
func (b *Bag) HasErrors() bool {
	for _, d := range b.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Len returns the number of accumulated diagnostics.
func (b *Bag) Len() int { return len(b.diags) }

// Merge appends every diagnostic from other.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.diags = append(b.diags, other.diags...)
}
