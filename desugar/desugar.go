// Package desugar rewrites structural interfaces into tagged unions of
// the classes that satisfy them. The rewrite is closed-world only: it
// needs the full set of classes in the compilation set.
package desugar

import (
	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/diag"
	"github.com/tgc-lang/tgc/sema"
)

// Desugarer replaces each satisfied interface declaration with a type
// alias over its satisfying classes, in class declaration order. An
// interface no class satisfies keeps its original node and is reported;
// later references to it will error during validation.
type Desugarer struct {
	ctx *sema.GlobalContext
	bag *diag.Bag

	resolver *sema.Validator
}

// New creates a desugarer resolving types against ctx.
func New(ctx *sema.GlobalContext, bag *diag.Bag) *Desugarer {
	return &Desugarer{
		ctx:      ctx,
		bag:      bag,
		resolver: sema.NewValidator(ctx, bag),
	}
}

// Run desugars every interface in the program in place. The context must
// already hold the declaration stubs of the full compilation set.
func (d *Desugarer) Run(program *ast.Program) {
	d.RunSet([]*ast.Program{program})
}

// RunSet desugars every interface across a compilation set; candidate
// classes come from all files, in file-then-declaration order.
func (d *Desugarer) RunSet(programs []*ast.Program) {
	var classes []*ast.ClassDeclaration
	for _, program := range programs {
		for _, stmt := range program.Body {
			if class, ok := stmt.(*ast.ClassDeclaration); ok && len(class.TypeParameters) == 0 {
				classes = append(classes, class)
			}
		}
	}

	// Flatten every interface's member set first: extends chains must
	// resolve against the full interface universe, before any interface
	// is replaced by its alias.
	flattened := make(map[string][]*ast.TypeMember)
	for _, program := range programs {
		for _, stmt := range program.Body {
			if iface, ok := stmt.(*ast.InterfaceDeclaration); ok {
				if members, ok := d.collectMembers(iface, make(map[string]bool)); ok {
					flattened[iface.Name.Name] = members
				}
			}
		}
	}

	for _, program := range programs {
		for i, stmt := range program.Body {
			iface, ok := stmt.(*ast.InterfaceDeclaration)
			if !ok {
				continue
			}
			members, ok := flattened[iface.Name.Name]
			if !ok {
				continue
			}
			if alias := d.desugarInterface(classes, iface, members); alias != nil {
				program.Body[i] = alias
			}
		}
	}
}

// desugarInterface builds the replacement alias for one interface, or
// nil when no class satisfies it.
func (d *Desugarer) desugarInterface(classes []*ast.ClassDeclaration, iface *ast.InterfaceDeclaration, members []*ast.TypeMember) *ast.TypeAliasDeclaration {

	var satisfying []*ast.ClassDeclaration
	for _, class := range classes {
		if d.satisfies(class, members) {
			satisfying = append(satisfying, class)
		}
	}

	if len(satisfying) == 0 {
		d.bag.Errorf(diag.KindStructural, iface.Pos(),
			"no class satisfies interface '%s'", iface.Name.Name)
		return nil
	}

	var aliased ast.TypeNode
	if len(satisfying) == 1 {
		// A single match aliases the class directly, not a union.
		aliased = &ast.TypeReference{Name: satisfying[0].Name}
	} else {
		union := &ast.UnionType{}
		for _, class := range satisfying {
			union.Types = append(union.Types, &ast.TypeReference{Name: class.Name})
		}
		aliased = union
	}

	alias := &ast.TypeAliasDeclaration{
		TypePos: iface.InterfacePos,
		Name:    iface.Name,
		Type:    aliased,
	}

	// Install the alias in the shared context so later files of the
	// compilation set resolve it.
	delete(d.ctx.Interfaces, iface.Name.Name)
	resolved := d.resolver.ResolveType(aliased)
	d.ctx.Aliases[iface.Name.Name] = resolved

	return alias
}

// collectMembers flattens an interface's members, following extends
// chains. Returns false on an unresolvable or cyclic extends.
func (d *Desugarer) collectMembers(iface *ast.InterfaceDeclaration, seen map[string]bool) ([]*ast.TypeMember, bool) {
	if seen[iface.Name.Name] {
		d.bag.Errorf(diag.KindStructural, iface.Pos(),
			"interface '%s' extends itself", iface.Name.Name)
		return nil, false
	}
	seen[iface.Name.Name] = true

	var members []*ast.TypeMember
	for _, ext := range iface.Extends {
		ref, ok := ext.(*ast.TypeReference)
		if !ok {
			d.bag.Errorf(diag.KindStructural, ext.Pos(),
				"interface '%s' extends a non-interface type", iface.Name.Name)
			return nil, false
		}
		parent, exists := d.ctx.Interfaces[ref.Name.Name]
		if !exists {
			d.bag.Errorf(diag.KindStructural, ref.Pos(),
				"interface '%s' extends undefined interface '%s'", iface.Name.Name, ref.Name.Name)
			return nil, false
		}
		inherited, ok := d.collectMembers(parent, seen)
		if !ok {
			return nil, false
		}
		members = append(members, inherited...)
	}
	members = append(members, iface.Body...)
	return members, true
}

// satisfies reports whether a class structurally satisfies the member
// set: every required member present with an invariant type match,
// readonly required iff the interface marks it readonly, and method
// signatures matching exactly. Extra members on the class are permitted.
func (d *Desugarer) satisfies(class *ast.ClassDeclaration, members []*ast.TypeMember) bool {
	for _, member := range members {
		name := member.Name()

		if methodType, isMethod := member.Type.(*ast.FunctionType); isMethod {
			method := class.MethodNamed(name)
			if method == nil {
				if member.Optional {
					continue
				}
				return false
			}
			if !d.methodMatches(method, methodType) {
				return false
			}
			continue
		}

		field := class.FieldNamed(name)
		if field == nil {
			if member.Optional {
				continue
			}
			return false
		}
		if member.Readonly != (field.Readonly || field.Const) {
			return false
		}
		if field.TypeAnnotation == nil {
			return false
		}
		if !d.typesInvariant(field.TypeAnnotation, member.Type) {
			return false
		}
	}
	return true
}

// methodMatches requires exact parameter arity and types and an exact
// return type.
func (d *Desugarer) methodMatches(method *ast.MethodDefinition, sig *ast.FunctionType) bool {
	if method.Static {
		return false
	}
	params := method.Value.Parameters
	if len(params) != len(sig.Parameters) {
		return false
	}
	for i, param := range params {
		want := sig.Parameters[i].TypeAnnotation
		if param.TypeAnnotation == nil || want == nil {
			return false
		}
		if !d.typesInvariant(param.TypeAnnotation, want) {
			return false
		}
	}

	methodRet := method.Value.ReturnType
	sigRet := sig.ReturnType
	if methodRet == nil && sigRet == nil {
		return true
	}
	if methodRet == nil || sigRet == nil {
		// An omitted return type means void.
		return d.resolvesToVoid(methodRet) == d.resolvesToVoid(sigRet)
	}
	return d.typesInvariant(methodRet, sigRet)
}

func (d *Desugarer) resolvesToVoid(node ast.TypeNode) bool {
	if node == nil {
		return true
	}
	return d.resolver.ResolveType(node).Equals(sema.VoidT)
}

// typesInvariant compares two annotations with the same type-equality
// routine assignability uses, but requiring invariance.
func (d *Desugarer) typesInvariant(a, b ast.TypeNode) bool {
	return d.resolver.ResolveType(a).Equals(d.resolver.ResolveType(b))
}
