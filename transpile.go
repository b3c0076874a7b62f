// Package tgc is the compiler frontend and mid-end for a statically
// typed, class-based, TypeScript-flavored surface language. Transpile
// and TranspileProject run the full pipeline (lex, parse, load, desugar,
// validate, monomorphize, collect extern metadata) and hand the
// validated program set to the selected backend.
package tgc

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/backend"
	"github.com/tgc-lang/tgc/backend/bytecode"
	"github.com/tgc-lang/tgc/backend/cppstub"
	"github.com/tgc-lang/tgc/backend/jsstub"
	"github.com/tgc-lang/tgc/desugar"
	"github.com/tgc-lang/tgc/diag"
	"github.com/tgc-lang/tgc/externmeta"
	"github.com/tgc-lang/tgc/generics"
	"github.com/tgc-lang/tgc/lexer"
	"github.com/tgc-lang/tgc/loader"
	"github.com/tgc-lang/tgc/sema"
)

// Options selects the target and the emission knobs.
type Options struct {
	// Target is one of the backend tags: "cpp", "bytecode", "js".
	Target string

	// Namespace optionally wraps the emitted code.
	Namespace string

	// IncludeHeaders lists extra textual includes for the target.
	IncludeHeaders []string

	// OutputHeader and OutputSource select which artifacts to emit.
	OutputHeader bool
	OutputSource bool

	// Validate, when false, skips semantic checks (still parses).
	Validate bool

	// EmitLineDirectives requests line-origin markers (#line for C++).
	EmitLineDirectives bool

	// AllowTopLevelStatements permits executable statements outside any
	// function.
	AllowTopLevelStatements bool

	// SourceRoots are the directories resolvable for import lookups.
	SourceRoots []string

	// ClosedWorld enables interface-to-union desugaring.
	ClosedWorld bool
}

// DefaultOptions returns the options the CLI starts from.
func DefaultOptions() Options {
	return Options{
		Target:                  backend.TargetCpp,
		OutputHeader:            true,
		OutputSource:            true,
		Validate:                true,
		EmitLineDirectives:      true,
		AllowTopLevelStatements: true,
		ClosedWorld:             true,
	}
}

// Result is the outcome of a single-source compilation.
type Result struct {
	Header         string
	Source         string
	Bytecode       []byte
	SourceMap      string
	Errors         []*diag.Diagnostic
	ExternMetadata []*externmeta.Record
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (r *Result) HasErrors() bool {
	for _, d := range r.Errors {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

// ProjectResult is the outcome of a multi-file compilation sharing one
// symbol table.
type ProjectResult struct {
	Files          map[string]*backend.Artifact
	Errors         []*diag.Diagnostic
	GlobalContext  *sema.GlobalContext
	ExternMetadata []*externmeta.Record
}

// Transpile compiles one source string and returns the backend
// artifacts. Parse errors still produce output; validation errors
// suppress it (unless validation is disabled).
func Transpile(source, filename string, opts Options) Result {
	bag := diag.NewBag()

	files := map[string]string{filename: source}
	units, err := loader.New(bag, loader.WithFiles(files), loader.WithSourceRoots(opts.SourceRoots)).
		LoadProject(files)
	if err != nil {
		bag.Errorf(diag.KindResolution, lexerPos(filename), "%s", err.Error())
		return resultFromBag(bag)
	}

	pipeline, perr := run(units, bag, opts)
	result := resultFromBag(bag)
	if pipeline != nil {
		result.ExternMetadata = pipeline.externs
	}
	if perr != nil {
		bag.Errorf(diag.KindResolution, lexerPos(filename), "%s", perr.Error())
		return resultFromBag(bag)
	}

	if skipCodegen(bag, opts) {
		return result
	}

	artifact, err := pipeline.emit(basenameOf(filename), opts)
	if err != nil {
		bag.Errorf(diag.KindResolution, lexerPos(filename), "%s", err.Error())
		return resultFromBag(bag)
	}

	result.Errors = bag.All()
	result.Header = artifact.Header
	result.Source = artifact.Source
	result.Bytecode = artifact.Bytecode
	result.SourceMap = artifact.SourceMap
	return result
}

// TranspileProject compiles a set of files sharing one symbol table and
// returns per-file artifacts.
func TranspileProject(files map[string]string, opts Options) ProjectResult {
	bag := diag.NewBag()
	out := ProjectResult{Files: make(map[string]*backend.Artifact)}

	units, err := loader.New(bag, loader.WithFiles(files), loader.WithSourceRoots(opts.SourceRoots)).
		LoadProject(files)
	if err != nil {
		bag.Errorf(diag.KindResolution, lexerPos(""), "%s", err.Error())
		out.Errors = bag.All()
		return out
	}

	pipeline, perr := run(units, bag, opts)
	if pipeline != nil {
		out.GlobalContext = pipeline.ctx
		out.ExternMetadata = pipeline.externs
	}
	if perr != nil {
		bag.Errorf(diag.KindResolution, lexerPos(""), "%s", perr.Error())
		out.Errors = bag.All()
		return out
	}

	if !skipCodegen(bag, opts) {
		for _, unit := range pipeline.units {
			artifact, err := pipeline.emitUnit(unit, opts)
			if err != nil {
				bag.Errorf(diag.KindResolution, lexerPos(unit.Path), "%s", err.Error())
				continue
			}
			out.Files[unit.Path] = artifact
		}
	}

	out.Errors = bag.All()
	return out
}

// pipelineState carries the mid-end products between stages.
type pipelineState struct {
	units   []*loader.Unit
	ctx     *sema.GlobalContext
	mono    *generics.Result
	externs []*externmeta.Record
}

// run executes desugaring, validation and monomorphization over the
// loaded units.
func run(units []*loader.Unit, bag *diag.Bag, opts Options) (*pipelineState, error) {
	state := &pipelineState{
		units: units,
		ctx:   sema.NewGlobalContext(),
	}

	programs := state.programs()
	state.externs = externmeta.Collect(programs)

	if !opts.Validate {
		return state, nil
	}

	// Declaration stubs for the whole set first, so cross-file and
	// cyclic references resolve (two-phase validation).
	declarer := sema.NewValidator(state.ctx, bag)
	declarer.SetAllowTopLevelStatements(opts.AllowTopLevelStatements)
	for _, unit := range units {
		declarer.Declare(unit.Program)
	}

	if opts.ClosedWorld {
		desugar.New(state.ctx, bag).RunSet(programs)
	}

	for _, unit := range units {
		checker := sema.NewValidator(state.ctx, bag)
		checker.SetAllowTopLevelStatements(opts.AllowTopLevelStatements)
		checker.CheckBodies(unit.Program)
	}

	state.mono = generics.Monomorphize(programs, state.ctx, bag)
	return state, nil
}

func (p *pipelineState) programs() []*ast.Program {
	var programs []*ast.Program
	for _, unit := range p.units {
		programs = append(programs, unit.Program)
	}
	return programs
}

func (p *pipelineState) emit(basename string, opts Options) (*backend.Artifact, error) {
	be, err := backendFor(opts.Target)
	if err != nil {
		return nil, err
	}
	in := &backend.Input{
		Context:  p.ctx,
		Mono:     p.mono,
		Externs:  p.externs,
		Basename: basename,
	}
	for _, unit := range p.units {
		in.Programs = append(in.Programs, unit.Program)
	}
	return be.Emit(in, backendOptions(opts))
}

func (p *pipelineState) emitUnit(unit *loader.Unit, opts Options) (*backend.Artifact, error) {
	be, err := backendFor(opts.Target)
	if err != nil {
		return nil, err
	}
	in := &backend.Input{
		Programs: []*ast.Program{unit.Program},
		Context:  p.ctx,
		Mono:     p.mono,
		Externs:  p.externs,
		Basename: basenameOf(unit.Path),
	}
	return be.Emit(in, backendOptions(opts))
}

func backendFor(target string) (backend.Backend, error) {
	switch target {
	case backend.TargetCpp, "":
		return cppstub.New(), nil
	case backend.TargetBytecode, "vm":
		return bytecode.New(), nil
	case backend.TargetJs:
		return jsstub.New(), nil
	default:
		return nil, errors.Errorf("unknown target '%s'", target)
	}
}

func backendOptions(opts Options) backend.Options {
	return backend.Options{
		Namespace:          opts.Namespace,
		IncludeHeaders:     opts.IncludeHeaders,
		OutputHeader:       opts.OutputHeader,
		OutputSource:       opts.OutputSource,
		EmitLineDirectives: opts.EmitLineDirectives,
	}
}

// skipCodegen: validation errors suppress output; parse errors do not.
func skipCodegen(bag *diag.Bag, opts Options) bool {
	if !opts.Validate {
		return false
	}
	for _, d := range bag.Errors() {
		if d.Kind != diag.KindParse && d.Kind != diag.KindLex {
			return true
		}
	}
	return false
}

func resultFromBag(bag *diag.Bag) Result {
	return Result{Errors: bag.All()}
}

func lexerPos(file string) lexer.Position {
	return lexer.Position{File: file}
}

func basenameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
