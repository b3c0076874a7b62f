// Package loader resolves import references across files and produces an
// ordered compilation set sharing one global symbol table. Traversal of
// the import DAG is deterministic: dependencies first, then importers,
// ties broken by path.
package loader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/diag"
	"github.com/tgc-lang/tgc/lexer"
	"github.com/tgc-lang/tgc/parser"
)

// SourceExt is the canonical source-file extension.
const SourceExt = ".tgs"

// Unit is one parsed file of the compilation set.
type Unit struct {
	Path    string
	Source  string
	Program *ast.Program
}

// Loader loads a compilation set either from an in-memory file map or
// from disk, resolving imports against the configured source roots.
type Loader struct {
	bag   *diag.Bag
	log   *logrus.Logger
	roots []string

	// files, when non-nil, is the in-memory project (path -> source);
	// disk access is skipped entirely.
	files map[string]string

	units   map[string]*Unit
	loading map[string]bool
	order   []*Unit
}

// Option configures a Loader.
type Option func(*Loader)

// WithSourceRoots sets the directories searched for import targets.
func WithSourceRoots(roots []string) Option {
	return func(l *Loader) { l.roots = roots }
}

// WithLogger sets the logger used for module-resolution tracing.
func WithLogger(log *logrus.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// WithFiles provides an in-memory project instead of disk access.
func WithFiles(files map[string]string) Option {
	return func(l *Loader) { l.files = files }
}

// New creates a loader reporting into bag.
func New(bag *diag.Bag, opts ...Option) *Loader {
	l := &Loader{
		bag:     bag,
		log:     logrus.StandardLogger(),
		units:   make(map[string]*Unit),
		loading: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves the entry file and its transitive imports, returning the
// units in dependency order (imported files before their importers).
func (l *Loader) Load(entry string) ([]*Unit, error) {
	if _, err := l.load(entry, ""); err != nil {
		return nil, err
	}
	return l.order, nil
}

// LoadProject parses every provided file and orders the whole set by the
// import DAG. Files are visited in path order and each one's imports are
// placed before it; files never imported still compile.
func (l *Loader) LoadProject(files map[string]string) ([]*Unit, error) {
	if l.files == nil {
		l.files = files
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if _, err := l.load(path, ""); err != nil {
			return nil, err
		}
	}
	return l.order, nil
}

// load parses one file and, depth-first, its imports. A nil unit with a
// nil error means the import cycle was broken at this edge.
func (l *Loader) load(path, importer string) (*Unit, error) {
	resolved, err := l.resolve(path, importer)
	if err != nil {
		return nil, err
	}

	if l.loading[resolved] {
		// Import cycles are reported; compilation proceeds on the broken
		// edge. The shared declare-then-check validation makes the other
		// side's symbols visible without body-level ordering.
		l.bag.Warnf(diag.KindResolution, lexer.Position{File: importer},
			"import cycle detected at '%s'; continuing with the edge broken", resolved)
		return nil, nil
	}
	if unit, done := l.units[resolved]; done {
		return unit, nil
	}
	l.loading[resolved] = true
	defer delete(l.loading, resolved)

	source, err := l.read(resolved)
	if err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{"file": resolved, "importer": importer}).
		Debug("loading module")

	p := parser.New(lexer.NewFile(resolved, source))
	program := p.ParseProgram()
	for _, msg := range p.Errors() {
		l.bag.Add(parseDiagnostic(msg, resolved, source))
	}

	unit := &Unit{Path: resolved, Source: source, Program: program}
	l.units[resolved] = unit

	for _, stmt := range program.Body {
		imp, ok := stmt.(*ast.ImportDeclaration)
		if !ok {
			continue
		}
		if _, err := l.load(imp.Path.Value, resolved); err != nil {
			l.bag.Errorf(diag.KindResolution, imp.Pos(), "%s", err.Error())
		}
	}

	l.order = append(l.order, unit)
	return unit, nil
}

// resolve maps an import path to a canonical unit key. Relative imports
// resolve against the importer's directory, then against each source
// root; the extension is appended when missing.
func (l *Loader) resolve(path, importer string) (string, error) {
	candidates := l.candidates(path, importer)
	for _, candidate := range candidates {
		if l.exists(candidate) {
			return candidate, nil
		}
	}
	if len(candidates) > 0 {
		// Fall back to the first candidate so the read error names a
		// concrete path.
		return candidates[0], nil
	}
	return path, nil
}

func (l *Loader) candidates(path, importer string) []string {
	withExt := path
	if filepath.Ext(withExt) == "" {
		withExt += SourceExt
	}

	var out []string
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") {
		if importer != "" {
			out = append(out, normalize(filepath.Join(filepath.Dir(importer), withExt)))
		}
		out = append(out, normalize(withExt))
	} else {
		out = append(out, normalize(withExt))
		for _, root := range l.roots {
			out = append(out, normalize(filepath.Join(root, withExt)))
		}
	}
	return out
}

func normalize(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

func (l *Loader) exists(path string) bool {
	if l.files != nil {
		_, ok := l.files[path]
		return ok
	}
	_, err := os.Stat(path)
	return err == nil
}

func (l *Loader) read(path string) (string, error) {
	if l.files != nil {
		source, ok := l.files[path]
		if !ok {
			return "", errors.Errorf("module '%s' not found in project", path)
		}
		return source, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "reading module '%s'", path)
	}
	return string(data), nil
}

// parseDiagnostic converts a parser error line ("file:line:col: msg")
// back into a structured diagnostic.
func parseDiagnostic(msg, file, source string) *diag.Diagnostic {
	d := &diag.Diagnostic{
		Pos:      lexer.Position{File: file},
		Message:  msg,
		Severity: diag.SeverityError,
		Kind:     diag.KindParse,
		Source:   source,
	}

	rest := msg
	if strings.HasPrefix(rest, file+":") {
		rest = rest[len(file)+1:]
		var line, col int
		var tail string
		if n, _ := sscanfPos(rest, &line, &col, &tail); n == 3 {
			d.Pos.Line = line
			d.Pos.Column = col
			d.Message = tail
		}
	}
	return d
}

// sscanfPos parses "line:col: message" without pulling fmt.Sscanf's
// whitespace quirks into the message text.
func sscanfPos(s string, line, col *int, tail *string) (int, error) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return 0, nil
	}
	j := strings.Index(s[i+1:], ": ")
	if j < 0 {
		return 1, nil
	}
	j += i + 1

	var err error
	if *line, err = atoi(s[:i]); err != nil {
		return 0, nil
	}
	if *col, err = atoi(s[i+1 : j]); err != nil {
		return 1, nil
	}
	*tail = s[j+2:]
	return 3, nil
}

func atoi(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, errors.New("empty number")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.New("not a number")
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
