// Package jsstub is a thin reference JavaScript backend: extern-module
// imports plus a faithful statement-level rendering of the validated
// program. Like the C++ stub it exists to exercise the backend contract,
// not to be a production emitter.
package jsstub

import (
	"fmt"
	"strings"

	"github.com/tgc-lang/tgc/backend"
	"github.com/tgc-lang/tgc/sema"
)

// Backend is the reference JavaScript emitter.
type Backend struct{}

// New creates the JavaScript stub backend.
func New() *Backend { return &Backend{} }

// Name returns the backend tag.
func (b *Backend) Name() string { return backend.TargetJs }

// Emit renders one module source for the compilation set.
func (b *Backend) Emit(in *backend.Input, opts backend.Options) (*backend.Artifact, error) {
	var sb strings.Builder

	used := usedExternClasses(in)
	for _, record := range in.Externs {
		module := record.HeaderFor(backend.TargetJs)
		if module == "" || !used[record.Name] {
			continue
		}
		fmt.Fprintf(&sb, "import { %s } from %q;\n", record.Name, module)
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}

	if opts.Namespace != "" {
		fmt.Fprintf(&sb, "const %s = (() => {\n", opts.Namespace)
	}

	for _, program := range in.Programs {
		for _, stmt := range program.Body {
			if in.Suppressed(stmt) {
				continue
			}
			sb.WriteString(stmt.String())
			sb.WriteString("\n")
		}
	}

	if opts.Namespace != "" {
		fmt.Fprintf(&sb, "})();\nexport default %s;\n", opts.Namespace)
	}

	return &backend.Artifact{Source: sb.String()}, nil
}

func usedExternClasses(in *backend.Input) map[string]bool {
	used := make(map[string]bool)
	var walk func(t sema.Type)
	walk = func(t sema.Type) {
		switch tt := t.(type) {
		case *sema.ClassType:
			if tt.Extern {
				used[tt.Name] = true
			}
			for _, a := range tt.Args {
				walk(a)
			}
		case *sema.ArrayType:
			walk(tt.ElementType)
		case *sema.MapType:
			walk(tt.KeyType)
			walk(tt.ValueType)
		case *sema.SetType:
			walk(tt.ElementType)
		case *sema.WeakType:
			walk(tt.Inner)
		case *sema.UnionType:
			for _, m := range tt.Types {
				walk(m)
			}
		}
	}
	for _, t := range in.Context.Info.Types {
		walk(t)
	}
	return used
}
