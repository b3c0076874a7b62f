package cmd

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	tgc "github.com/tgc-lang/tgc"
)

var vmGlueCmd = &cobra.Command{
	Use:   "vm-glue [files]",
	Short: "Generate host-side bridge metadata for extern classes",
	Long: `Collect the shape of every extern class (and the curated built-in
set) and write one JSON metadata file per class. Host-side glue writers
consume these to bind the VM to native implementations.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVMGlue,
}

func init() {
	rootCmd.AddCommand(vmGlueCmd)

	vmGlueCmd.Flags().StringVar(&vmGlueDir, "vm-glue-dir", "", "directory for generated glue files (default .)")
	vmGlueCmd.Flags().StringSliceVar(&sourceRoots, "source-root", nil, "directories resolvable for import lookups")
}

func runVMGlue(_ *cobra.Command, args []string) error {
	files := make(map[string]string, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}
		files[filepath.ToSlash(path)] = string(data)
	}

	opts := buildOptions()
	opts.OutputHeader = false
	opts.OutputSource = false

	result := tgc.TranspileProject(files, opts)
	printDiagnostics(result.Errors)

	return writeVMGlue(result.ExternMetadata)
}
