// Package backend defines the contract between the validated mid-end and
// the code generators. A backend receives the desugared, validated,
// monomorphized program set plus the hint tables, and may assume: types
// are fully resolved; narrowing facts are available per node; private,
// const/readonly, null-safety and isolation rules have held; generic
// references have been rewritten to monomorphic names; and interface uses
// have been replaced by union types (closed-world).
package backend

import (
	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/externmeta"
	"github.com/tgc-lang/tgc/generics"
	"github.com/tgc-lang/tgc/sema"
)

// Target tags name the backends.
const (
	TargetCpp      = "cpp"
	TargetBytecode = "bytecode"
	TargetJs       = "js"
)

// Options carries the caller-selected emission knobs.
type Options struct {
	Namespace          string
	IncludeHeaders     []string
	OutputHeader       bool
	OutputSource       bool
	EmitLineDirectives bool
}

// Input is everything a backend receives. Programs are in compilation
// order; Mono lists the specialized declarations and the generic
// originals to drop from emission.
type Input struct {
	Programs []*ast.Program
	Context  *sema.GlobalContext
	Mono     *generics.Result
	Externs  []*externmeta.Record
	Basename string
}

// Suppressed reports whether a declaration is a generic original that
// must not be emitted.
func (in *Input) Suppressed(node ast.Node) bool {
	return in.Mono != nil && in.Mono.Suppressed[node]
}

// NarrowedType returns the refined type recorded for an expression, if
// any; backends insert the sum-type projection at these sites.
func (in *Input) NarrowedType(expr ast.Expression) (sema.Type, bool) {
	t, ok := in.Context.Info.Narrowed[expr]
	return t, ok
}

// Artifact is a backend's output.
type Artifact struct {
	Header    string // header text (C++)
	Source    string // source text
	Bytecode  []byte // bytecode JSON (VM backend)
	SourceMap string // source map JSON, when line origins were requested
}

// Backend turns a validated Input into an Artifact.
type Backend interface {
	Name() string
	Emit(in *Input, opts Options) (*Artifact, error)
}
