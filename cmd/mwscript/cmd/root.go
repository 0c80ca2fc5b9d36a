package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mwscript",
	Short: "Front-end compiler for the legacy scripting language",
	Long: `mwscript is a standalone front-end and bytecode generator for the
legacy, case-insensitive, line-oriented scripting language used by an
external quest/world engine.

It tokenizes, parses, type-checks, and emits bytecode for a script unit
without embedding the engine itself: the Context (global/member/journal/id
oracle) and Extensions (builtin instruction/function registry) collaborators
are supplied by the host and only a stand-in, in-memory implementation is
built in here for standalone use.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("warning-mode", "normal", "warning handling: ignore, normal, or strict")
}
