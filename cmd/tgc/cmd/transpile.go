package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	tgc "github.com/tgc-lang/tgc"
	"github.com/tgc-lang/tgc/backend"
	"github.com/tgc-lang/tgc/diag"
	"github.com/tgc-lang/tgc/externmeta"
)

var (
	outputDir        string
	namespace        string
	target           string
	headerOnly       bool
	sourceOnly       bool
	noValidation     bool
	noLineDirectives bool
	vmGlue           bool
	vmGlueDir        string
	includeHeaders   []string
	sourceRoots      []string
	openWorld        bool
)

var transpileCmd = &cobra.Command{
	Use:   "transpile [files]",
	Short: "Transpile source files to the selected target",
	Long: `Transpile one or more source files. All files compile as one project
sharing a single symbol table; imports resolve against their directories
and the configured source roots.

Examples:
  # Compile to C++ next to the input
  tgc transpile main.tgs

  # Compile a project into a build directory, namespaced
  tgc transpile -o build -n demo src/main.tgs src/util.tgs

  # Emit the bytecode JSON artifact
  tgc transpile --target bytecode main.tgs

  # Generate host-side VM glue for extern classes
  tgc transpile --vm-glue --vm-glue-dir glue main.tgs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranspile,
}

func init() {
	rootCmd.AddCommand(transpileCmd)

	transpileCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: alongside inputs)")
	transpileCmd.Flags().StringVarP(&namespace, "namespace", "n", "", "wrapper namespace for the emitted code")
	transpileCmd.Flags().StringVarP(&target, "target", "t", "", "backend target: cpp, bytecode, js (default cpp)")
	transpileCmd.Flags().BoolVar(&headerOnly, "header-only", false, "emit only the header artifact")
	transpileCmd.Flags().BoolVar(&sourceOnly, "source-only", false, "emit only the source artifact")
	transpileCmd.Flags().BoolVar(&noValidation, "no-validation", false, "skip semantic checks (still parses)")
	transpileCmd.Flags().BoolVar(&noLineDirectives, "no-line-directives", false, "suppress line-origin markers")
	transpileCmd.Flags().BoolVar(&noLineDirectives, "no-lines", false, "alias of --no-line-directives")
	transpileCmd.Flags().BoolVar(&vmGlue, "vm-glue", false, "write host-side bridge metadata for extern classes")
	transpileCmd.Flags().StringVar(&vmGlueDir, "vm-glue-dir", "", "directory for generated VM glue files")
	transpileCmd.Flags().StringSliceVarP(&includeHeaders, "include", "I", nil, "extra textual includes for the target")
	transpileCmd.Flags().StringSliceVar(&sourceRoots, "source-root", nil, "directories resolvable for import lookups")
	transpileCmd.Flags().BoolVar(&openWorld, "open-world", false, "disable interface-to-union desugaring")
}

func buildOptions() tgc.Options {
	opts := tgc.DefaultOptions()

	if target == "" {
		target = viper.GetString("target")
	}
	if target != "" {
		opts.Target = target
	}
	if namespace == "" {
		namespace = viper.GetString("namespace")
	}
	opts.Namespace = namespace
	opts.IncludeHeaders = includeHeaders
	opts.Validate = !noValidation
	opts.EmitLineDirectives = !noLineDirectives
	opts.ClosedWorld = !openWorld

	roots := sourceRoots
	if len(roots) == 0 {
		roots = viper.GetStringSlice("sourceRoots")
	}
	opts.SourceRoots = roots

	if headerOnly {
		opts.OutputSource = false
	}
	if sourceOnly {
		opts.OutputHeader = false
	}
	return opts
}

func runTranspile(_ *cobra.Command, args []string) error {
	files := make(map[string]string, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}
		files[filepath.ToSlash(path)] = string(data)
	}

	opts := buildOptions()
	log.WithField("target", opts.Target).Debug("dispatching backend")

	result := tgc.TranspileProject(files, opts)
	printDiagnostics(result.Errors)

	hasErrors := false
	for _, d := range result.Errors {
		if d.Severity == diag.SeverityError {
			hasErrors = true
		}
	}

	for path, artifact := range result.Files {
		if err := writeArtifact(path, artifact, opts); err != nil {
			return err
		}
	}

	if vmGlue {
		if err := writeVMGlue(result.ExternMetadata); err != nil {
			return err
		}
	}

	if hasErrors {
		return errors.New("compilation failed")
	}
	return nil
}

// printDiagnostics prints each diagnostic on its own line in the
// canonical filename:line:column: message form.
func printDiagnostics(diags []*diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.Error())
	}
}

func writeArtifact(inputPath string, artifact *backend.Artifact, opts tgc.Options) error {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory %s", dir)
	}

	write := func(name, content string) error {
		if content == "" {
			return nil
		}
		path := filepath.Join(dir, name)
		log.WithField("file", path).Info("writing artifact")
		return errors.Wrapf(os.WriteFile(path, []byte(content), 0o644), "writing %s", path)
	}

	switch opts.Target {
	case backend.TargetBytecode, "vm":
		if len(artifact.Bytecode) > 0 {
			return write(base+".bc.json", string(artifact.Bytecode))
		}
		return nil
	case backend.TargetJs:
		return write(base+".js", artifact.Source)
	default:
		if err := write(base+".h", artifact.Header); err != nil {
			return err
		}
		return write(base+".cpp", artifact.Source)
	}
}

// writeVMGlue dumps the extern-class metadata as one JSON file per
// class, the input the host-side bridge writers consume.
func writeVMGlue(records []*externmeta.Record) error {
	dir := vmGlueDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating glue directory %s", dir)
	}
	for _, record := range records {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return errors.Wrapf(err, "encoding glue for %s", record.Name)
		}
		path := filepath.Join(dir, record.Name+".glue.json")
		log.WithField("file", path).Info("writing VM glue")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	return nil
}
