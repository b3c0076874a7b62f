// Package externmeta gathers the shape of every extern class for backend
// glue generation. A curated built-in set is merged in so backends treat
// library primitives (StringBuilder, Console, JSON, Task) uniformly with
// user-declared extern classes.
package externmeta

import (
	"sort"

	"github.com/tgc-lang/tgc/ast"
)

// Param is one parameter of an extern method signature.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Field is an extern class field.
type Field struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Static bool   `json:"static,omitempty"`
}

// Method is an extern method signature; extern methods have no bodies.
type Method struct {
	Name   string  `json:"name"`
	Static bool    `json:"static,omitempty"`
	Return string  `json:"return,omitempty"`
	Params []Param `json:"params,omitempty"`
}

// Record is the collected shape of one extern class.
type Record struct {
	Name    string            `json:"name"`
	Headers map[string]string `json:"headers"` // backend tag -> header/module; "" keys the shared binding
	Fields  []Field           `json:"fields,omitempty"`
	Methods []Method          `json:"methods,omitempty"`
	Builtin bool              `json:"builtin,omitempty"`
}

// HeaderFor resolves the header for a backend tag, falling back to the
// shared binding.
func (r *Record) HeaderFor(backend string) string {
	if h, ok := r.Headers[backend]; ok {
		return h
	}
	return r.Headers[""]
}

// Collect walks every extern class declaration in the compilation set
// and merges the curated built-in records. Records are sorted by name;
// a user declaration overrides the builtin of the same name.
func Collect(programs []*ast.Program) []*Record {
	byName := make(map[string]*Record)
	for _, builtin := range Builtins() {
		byName[builtin.Name] = builtin
	}

	for _, program := range programs {
		for _, stmt := range program.Body {
			decl, ok := stmt.(*ast.ExternClassDeclaration)
			if !ok {
				continue
			}
			byName[decl.Name.Name] = fromDecl(decl)
		}
	}

	records := make([]*Record, 0, len(byName))
	for _, r := range byName {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records
}

func fromDecl(decl *ast.ExternClassDeclaration) *Record {
	record := &Record{
		Name:    decl.Name.Name,
		Headers: make(map[string]string),
	}
	for _, binding := range decl.Bindings {
		record.Headers[binding.Backend] = binding.Header
	}
	for _, field := range decl.Fields {
		record.Fields = append(record.Fields, Field{
			Name:   field.Name(),
			Type:   field.TypeAnnotation.String(),
			Static: field.Static,
		})
	}
	for _, method := range decl.Methods {
		record.Methods = append(record.Methods, methodFromDecl(method))
	}
	return record
}

func methodFromDecl(method *ast.ExternMethod) Method {
	out := Method{
		Name:   method.Name(),
		Static: method.Static,
	}
	if method.ReturnType != nil {
		out.Return = method.ReturnType.String()
	}
	for _, param := range method.Parameters {
		p := Param{Name: param.Name.Name}
		if param.TypeAnnotation != nil {
			p.Type = param.TypeAnnotation.String()
		}
		out.Params = append(out.Params, p)
	}
	return out
}

// Builtins returns the curated library primitives every backend binds.
func Builtins() []*Record {
	return []*Record{
		{
			Name:    "StringBuilder",
			Builtin: true,
			Headers: map[string]string{"cpp": "sstream", "js": "./runtime/stringbuilder.js"},
			Fields: []Field{
				{Name: "length", Type: "int"},
			},
			Methods: []Method{
				{Name: "create", Static: true, Return: "StringBuilder"},
				{Name: "append", Return: "StringBuilder", Params: []Param{{Name: "s", Type: "string"}}},
				{Name: "toString", Return: "string"},
			},
		},
		{
			Name:    "Console",
			Builtin: true,
			Headers: map[string]string{"cpp": "iostream", "js": ""},
			Methods: []Method{
				{Name: "log", Static: true, Params: []Param{{Name: "message", Type: "string"}}},
				{Name: "error", Static: true, Params: []Param{{Name: "message", Type: "string"}}},
			},
		},
		{
			Name:    "JSON",
			Builtin: true,
			Headers: map[string]string{"cpp": "nlohmann/json.hpp", "js": ""},
			Methods: []Method{
				{Name: "stringify", Static: true, Return: "string", Params: []Param{{Name: "value", Type: "string"}}},
				{Name: "parse", Static: true, Return: "string", Params: []Param{{Name: "text", Type: "string"}}},
			},
		},
		{
			Name:    "Task",
			Builtin: true,
			Headers: map[string]string{"cpp": "future", "js": ""},
			Methods: []Method{
				{Name: "done", Return: "bool"},
			},
		},
	}
}
