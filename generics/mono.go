// Package generics implements monomorphization: every generic function
// and class instantiation becomes a concrete specialized copy under a
// mangled name, and call sites are rewritten to reference it. Backends
// without first-class generics then see only monomorphic declarations.
package generics

import (
	"sort"

	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/diag"
	"github.com/tgc-lang/tgc/lexer"
	"github.com/tgc-lang/tgc/sema"
)

// maxExpansionsPerDecl bounds runaway recursive instantiation (a generic
// class referencing itself with ever-larger argument tuples). Any real
// program stays far below it.
const maxExpansionsPerDecl = 64

// Result is what the monomorphizer hands the backend: the specialized
// copies in deterministic order, and the original generic declarations
// that must be dropped from emission (they stay in the AST for tooling).
type Result struct {
	Specialized []ast.Declaration
	Suppressed  map[ast.Node]bool
}

// Monomorphizer expands the instantiation worklist to a fixed point.
type Monomorphizer struct {
	ctx *sema.GlobalContext
	bag *diag.Bag

	resolver *sema.Validator

	done     map[string]bool
	worklist []*sema.Instantiation
	perDecl  map[string]int

	result *Result
}

// New creates a monomorphizer over the validated context.
func New(ctx *sema.GlobalContext, bag *diag.Bag) *Monomorphizer {
	return &Monomorphizer{
		ctx:      ctx,
		bag:      bag,
		resolver: sema.NewValidator(ctx, bag),
		done:     make(map[string]bool),
		perDecl:  make(map[string]int),
		result: &Result{
			Suppressed: make(map[ast.Node]bool),
		},
	}
}

// Monomorphize runs the worklist to its fixed point over a compilation
// set: seed from validation's call sites, specialize, discover nested
// instantiations, repeat until no new entries appear. Call sites in the
// original programs are rewritten to the mangled names and specialized
// declarations are spliced in after their generic originals.
func Monomorphize(programs []*ast.Program, ctx *sema.GlobalContext, bag *diag.Bag) *Result {
	m := New(ctx, bag)

	// Deterministic seeding order.
	var seeds []string
	for mangled := range ctx.Instantiations {
		seeds = append(seeds, mangled)
	}
	sort.Strings(seeds)
	for _, mangled := range seeds {
		m.enqueue(ctx.Instantiations[mangled])
	}

	m.drain()

	for _, program := range programs {
		m.rewriteProgram(program)
	}
	// Rewriting may surface instantiations reachable only through
	// annotations; drain those before splicing.
	m.drain()

	for _, program := range programs {
		m.spliceSpecializations(program)
	}

	return m.result
}

func (m *Monomorphizer) drain() {
	for len(m.worklist) > 0 {
		inst := m.worklist[0]
		m.worklist = m.worklist[1:]
		m.specialize(inst)
	}
}

// enqueue schedules an instantiation unless it is already done, applying
// the per-declaration expansion-depth guard.
func (m *Monomorphizer) enqueue(inst *sema.Instantiation) {
	if m.done[inst.Mangled] {
		return
	}
	m.done[inst.Mangled] = true

	m.perDecl[inst.DeclName]++
	if m.perDecl[inst.DeclName] > maxExpansionsPerDecl {
		if m.perDecl[inst.DeclName] == maxExpansionsPerDecl+1 {
			m.bag.Errorf(diag.KindGeneric, lexer.Position{},
				"generic expansion depth exceeded for '%s'; recursive instantiation produces unbounded types",
				inst.DeclName)
		}
		return
	}

	if _, exists := m.ctx.Instantiations[inst.Mangled]; !exists {
		m.ctx.Instantiations[inst.Mangled] = inst
	}
	m.worklist = append(m.worklist, inst)
}

// ground substitutes outer bindings into a symbolic instantiation,
// returning the ground version (enqueued as a side effect) or nil when
// parameters remain unresolved.
func (m *Monomorphizer) ground(inst *sema.Instantiation, subst map[string]sema.Type) *sema.Instantiation {
	var args []sema.Type
	for _, a := range inst.Args {
		args = append(args, sema.Substitute(a, subst))
	}
	if !sema.IsGround(args...) {
		return nil
	}
	grounded := &sema.Instantiation{
		DeclName: inst.DeclName,
		Args:     args,
		Mangled:  sema.MangledName(inst.DeclName, args),
	}
	m.enqueue(grounded)
	return grounded
}

// specialize materializes one instantiation.
func (m *Monomorphizer) specialize(inst *sema.Instantiation) {
	if fn, ok := m.ctx.Functions[inst.DeclName]; ok && len(fn.TypeParameters) > 0 {
		m.result.Suppressed[fn] = true
		m.result.Specialized = append(m.result.Specialized, m.specializeFunction(fn, inst))
		return
	}
	if class, ok := m.ctx.Classes[inst.DeclName]; ok && len(class.TypeParameters) > 0 {
		m.result.Suppressed[class] = true
		m.result.Specialized = append(m.result.Specialized, m.specializeClass(class, inst))
		return
	}
	m.bag.Errorf(diag.KindGeneric, lexer.Position{},
		"instantiation of '%s' has no generic declaration", inst.DeclName)
}

func substFor(params []*ast.TypeParameter, args []sema.Type) map[string]sema.Type {
	subst := make(map[string]sema.Type, len(params))
	for i, p := range params {
		if i < len(args) {
			subst[p.Name.Name] = args[i]
		}
	}
	return subst
}

func (m *Monomorphizer) specializeFunction(decl *ast.FunctionDeclaration, inst *sema.Instantiation) *ast.FunctionDeclaration {
	c := &cloner{m: m, subst: substFor(decl.TypeParameters, inst.Args)}

	out := &ast.FunctionDeclaration{
		FunctionPos: decl.FunctionPos,
		Name:        &ast.Identifier{NamePos: decl.Name.NamePos, Name: inst.Mangled},
		LParen:      decl.LParen,
		RParen:      decl.RParen,
		ReturnType:  c.cloneType(decl.ReturnType),
		Body:        c.cloneBlock(decl.Body),
		Async:       decl.Async,
	}
	for _, p := range decl.Parameters {
		out.Parameters = append(out.Parameters, c.cloneParam(p))
	}
	return out
}

func (m *Monomorphizer) specializeClass(decl *ast.ClassDeclaration, inst *sema.Instantiation) *ast.ClassDeclaration {
	c := &cloner{m: m, subst: substFor(decl.TypeParameters, inst.Args)}

	out := &ast.ClassDeclaration{
		ClassPos: decl.ClassPos,
		Name:     &ast.Identifier{NamePos: decl.Name.NamePos, Name: inst.Mangled},
		LBrace:   decl.LBrace,
		RBrace:   decl.RBrace,
	}
	for _, member := range decl.Body {
		switch mem := member.(type) {
		case *ast.FieldDefinition:
			out.Body = append(out.Body, &ast.FieldDefinition{
				Key:            c.cloneExpr(mem.Key),
				TypeAnnotation: c.cloneType(mem.TypeAnnotation),
				Value:          c.cloneExpr(mem.Value),
				Visibility:     mem.Visibility,
				Static:         mem.Static,
				Const:          mem.Const,
				Readonly:       mem.Readonly,
				Weak:           mem.Weak,
			})
		case *ast.MethodDefinition:
			out.Body = append(out.Body, &ast.MethodDefinition{
				Key:        c.cloneExpr(mem.Key),
				Value:      c.cloneFunctionExpr(mem.Value),
				Visibility: mem.Visibility,
				Static:     mem.Static,
				Async:      mem.Async,
			})
		}
	}
	return out
}

// rewriteTypeRef flattens a ground generic class reference
// (Pair<int, string>) into its mangled monomorphic name.
func (m *Monomorphizer) rewriteTypeRef(ref *ast.TypeReference) ast.TypeNode {
	if len(ref.TypeArgs) == 0 {
		return ref
	}
	decl, ok := m.ctx.Classes[ref.Name.Name]
	if !ok || len(decl.TypeParameters) == 0 {
		return ref
	}

	var args []sema.Type
	for _, a := range ref.TypeArgs {
		args = append(args, m.resolver.ResolveType(a))
	}
	if !sema.IsGround(args...) {
		return ref
	}

	inst := &sema.Instantiation{
		DeclName: ref.Name.Name,
		Args:     args,
		Mangled:  sema.MangledName(ref.Name.Name, args),
	}
	m.enqueue(inst)
	return &ast.TypeReference{
		Name: &ast.Identifier{NamePos: ref.Name.NamePos, Name: inst.Mangled},
	}
}

// rewriteNew redirects `new Pair<int, string>()` to the specialized
// class.
func (m *Monomorphizer) rewriteNew(ne *ast.NewExpression) ast.Expression {
	id, ok := ne.Callee.(*ast.Identifier)
	if !ok || len(ne.TypeArgs) == 0 {
		return ne
	}
	decl, exists := m.ctx.Classes[id.Name]
	if !exists || len(decl.TypeParameters) == 0 {
		return ne
	}

	var args []sema.Type
	for _, a := range ne.TypeArgs {
		args = append(args, m.resolver.ResolveType(a))
	}
	if !sema.IsGround(args...) {
		return ne
	}

	inst := &sema.Instantiation{
		DeclName: id.Name,
		Args:     args,
		Mangled:  sema.MangledName(id.Name, args),
	}
	m.enqueue(inst)
	id.Name = inst.Mangled
	ne.TypeArgs = nil
	return ne
}

// spliceSpecializations inserts each specialized declaration right after
// its generic original in the program body.
func (m *Monomorphizer) spliceSpecializations(program *ast.Program) {
	if len(m.result.Specialized) == 0 {
		return
	}

	// Idempotence: a specialization already present (from a prior run)
	// must not be spliced twice.
	existing := make(map[string]bool)
	for _, stmt := range program.Body {
		switch d := stmt.(type) {
		case *ast.FunctionDeclaration:
			existing[d.Name.Name] = true
		case *ast.ClassDeclaration:
			existing[d.Name.Name] = true
		}
	}

	byOriginal := make(map[string][]ast.Declaration)
	for _, spec := range m.result.Specialized {
		switch d := spec.(type) {
		case *ast.FunctionDeclaration:
			if inst, ok := m.ctx.Instantiations[d.Name.Name]; ok && !existing[d.Name.Name] {
				byOriginal[inst.DeclName] = append(byOriginal[inst.DeclName], d)
			}
		case *ast.ClassDeclaration:
			if inst, ok := m.ctx.Instantiations[d.Name.Name]; ok && !existing[d.Name.Name] {
				byOriginal[inst.DeclName] = append(byOriginal[inst.DeclName], d)
			}
		}
	}

	var body []ast.Statement
	for _, stmt := range program.Body {
		body = append(body, stmt)
		var name string
		switch d := stmt.(type) {
		case *ast.FunctionDeclaration:
			if len(d.TypeParameters) > 0 {
				name = d.Name.Name
			}
		case *ast.ClassDeclaration:
			if len(d.TypeParameters) > 0 {
				name = d.Name.Name
			}
		}
		if name == "" {
			continue
		}
		for _, spec := range byOriginal[name] {
			body = append(body, spec)
		}
		delete(byOriginal, name)
	}
	program.Body = body
}
