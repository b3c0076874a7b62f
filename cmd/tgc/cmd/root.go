// Package cmd implements the tgc command-line driver.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tgc-lang/tgc/debug"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	verbose  bool
	logLevel string

	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tgc",
	Short: "Transpiler for the TG surface language",
	Long: `tgc compiles a statically-typed, class-based, TypeScript-flavored
surface language to C++ (principal), a bytecode VM format, or JavaScript.

The frontend and mid-end cover lexing with trivia preservation, parsing,
semantic validation (type checking, narrowing, structural interface
matching, generic monomorphization, const/readonly enforcement, async
isolation analysis), and the transformations feeding each backend.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := debug.ParseLevel(logLevel)
		if verbose {
			level = debug.Verbose
		}
		log = debug.NewLogger(level, os.Stderr)
	},
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "verbose tracing of module resolution and backend dispatch")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (off, error, warn, info, verbose, trace)")

	// Unknown flags exit non-zero with the canonical message.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		msg := err.Error()
		if strings.HasPrefix(msg, "unknown flag: ") {
			return fmt.Errorf("Unknown option: %s", strings.TrimPrefix(msg, "unknown flag: "))
		}
		if strings.HasPrefix(msg, "unknown shorthand flag: ") {
			return fmt.Errorf("Unknown option: %s", strings.TrimPrefix(msg, "unknown shorthand flag: "))
		}
		return err
	})

	cobra.OnInitialize(initConfig)
}

// initConfig reads an optional tgc.config.yaml from the working
// directory: sourceRoots, default namespace, default target.
func initConfig() {
	viper.SetConfigName("tgc.config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("TGC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && log != nil {
		log.WithField("file", viper.ConfigFileUsed()).Debug("loaded project config")
	}
}

func exitWithError(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
