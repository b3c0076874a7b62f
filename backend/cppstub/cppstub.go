// Package cppstub is a thin reference C++ backend. It demonstrates the
// backend contract end-to-end (include selection, namespace wrapping,
// line directives, hint consumption) without claiming to be a production
// pretty-printer; the real C++ emitter is an external collaborator
// consuming the same Input.
package cppstub

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/backend"
	"github.com/tgc-lang/tgc/sema"
)

// Backend is the reference C++ emitter.
type Backend struct{}

// New creates the C++ stub backend.
func New() *Backend { return &Backend{} }

// Name returns the backend tag.
func (b *Backend) Name() string { return backend.TargetCpp }

// Emit renders a header/source pair for the compilation set.
func (b *Backend) Emit(in *backend.Input, opts backend.Options) (*backend.Artifact, error) {
	artifact := &backend.Artifact{}
	if opts.OutputHeader {
		artifact.Header = b.emitHeader(in, opts)
	}
	if opts.OutputSource {
		artifact.Source = b.emitSource(in, opts)
	}
	return artifact, nil
}

func (b *Backend) emitHeader(in *backend.Input, opts backend.Options) string {
	var sb strings.Builder
	guard := strings.ToUpper(strings.ReplaceAll(in.Basename, ".", "_")) + "_H"
	fmt.Fprintf(&sb, "#ifndef %s\n#define %s\n\n", guard, guard)

	for _, include := range b.includes(in, opts) {
		fmt.Fprintf(&sb, "#include %s\n", include)
	}
	sb.WriteString("\n")

	if opts.Namespace != "" {
		fmt.Fprintf(&sb, "namespace %s {\n\n", opts.Namespace)
	}

	for _, program := range in.Programs {
		for _, stmt := range program.Body {
			if in.Suppressed(stmt) {
				continue
			}
			switch decl := stmt.(type) {
			case *ast.ClassDeclaration:
				fmt.Fprintf(&sb, "struct %s;\n", decl.Name.Name)
			case *ast.FunctionDeclaration:
				fmt.Fprintf(&sb, "// %s\n", signatureOf(decl))
			}
		}
	}

	if opts.Namespace != "" {
		fmt.Fprintf(&sb, "\n} // namespace %s\n", opts.Namespace)
	}
	fmt.Fprintf(&sb, "\n#endif // %s\n", guard)
	return sb.String()
}

func (b *Backend) emitSource(in *backend.Input, opts backend.Options) string {
	var sb strings.Builder

	for _, include := range b.includes(in, opts) {
		fmt.Fprintf(&sb, "#include %s\n", include)
	}
	sb.WriteString("\n")

	if opts.Namespace != "" {
		fmt.Fprintf(&sb, "namespace %s {\n\n", opts.Namespace)
	}

	for _, program := range in.Programs {
		for _, stmt := range program.Body {
			if in.Suppressed(stmt) {
				continue
			}
			if opts.EmitLineDirectives {
				pos := stmt.Pos()
				if pos.Line > 0 {
					fmt.Fprintf(&sb, "#line %d \"%s\"\n", pos.Line, pos.File)
				}
			}
			sb.WriteString(stmt.String())
			sb.WriteString("\n")
		}
	}

	if opts.Namespace != "" {
		fmt.Fprintf(&sb, "\n} // namespace %s\n", opts.Namespace)
	}
	return sb.String()
}

// includes selects the standard headers the program's inferred types
// need, the extern-class headers in use, and the caller's extra
// includes.
func (b *Backend) includes(in *backend.Input, opts backend.Options) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(header string) {
		if header == "" || seen[header] {
			return
		}
		seen[header] = true
		out = append(out, header)
	}

	usedExterns := make(map[string]bool)
	for _, t := range in.Context.Info.Types {
		b.typeIncludes(t, add, usedExterns)
	}

	for _, record := range in.Externs {
		if usedExterns[record.Name] {
			if h := record.HeaderFor(backend.TargetCpp); h != "" {
				add("<" + h + ">")
			}
		}
	}

	for _, header := range opts.IncludeHeaders {
		if strings.HasPrefix(header, "<") || strings.HasPrefix(header, "\"") {
			add(header)
		} else {
			add("\"" + header + "\"")
		}
	}

	// Info.Types is a map; keep the include list deterministic.
	sort.Strings(out)
	return out
}

func (b *Backend) typeIncludes(t sema.Type, add func(string), usedExterns map[string]bool) {
	switch tt := t.(type) {
	case *sema.ArrayType:
		add("<vector>")
		b.typeIncludes(tt.ElementType, add, usedExterns)
	case *sema.MapType:
		add("<unordered_map>")
		b.typeIncludes(tt.KeyType, add, usedExterns)
		b.typeIncludes(tt.ValueType, add, usedExterns)
	case *sema.SetType:
		add("<unordered_set>")
		b.typeIncludes(tt.ElementType, add, usedExterns)
	case *sema.PrimitiveType:
		if tt.Kind == sema.StringKind {
			add("<string>")
		}
	case *sema.WeakType:
		add("<memory>")
		b.typeIncludes(tt.Inner, add, usedExterns)
	case *sema.ClassType:
		if tt.Extern {
			usedExterns[tt.Name] = true
		}
		add("<memory>")
		for _, a := range tt.Args {
			b.typeIncludes(a, add, usedExterns)
		}
	case *sema.UnionType:
		add("<variant>")
		for _, m := range tt.Types {
			b.typeIncludes(m, add, usedExterns)
		}
	}
}

func signatureOf(decl *ast.FunctionDeclaration) string {
	var params []string
	for _, p := range decl.Parameters {
		params = append(params, p.String())
	}
	ret := "void"
	if decl.ReturnType != nil {
		ret = decl.ReturnType.String()
	}
	return fmt.Sprintf("%s %s(%s)", ret, decl.Name.Name, strings.Join(params, ", "))
}
