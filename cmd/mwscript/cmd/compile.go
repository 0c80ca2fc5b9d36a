package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwscript-go/mwsc/internal/bytecode"
	"github.com/mwscript-go/mwsc/internal/context"
	"github.com/mwscript-go/mwsc/internal/errors"
	"github.com/mwscript-go/mwsc/internal/extensions"
	"github.com/mwscript-go/mwsc/pkg/mwscript"
	"github.com/spf13/cobra"
)

var (
	compileOutputFile  string
	compileDisassemble bool
	compileVerbose     bool
	compileConsoleMode bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a script to bytecode",
	Long: `Compile a script to bytecode and save it to a .mwc file.

This drives the full pipeline: scanner, parser, local-scan, semantic
analyzer, and code generator. The Context and Extensions collaborators used
here are the in-memory stand-ins built into this CLI; a host engine wiring
its own world-data store would supply its own instead.

Examples:
  mwscript compile quest.txt
  mwscript compile quest.txt -o quest.mwc
  mwscript compile quest.txt --disassemble
  mwscript compile quest.txt --console-mode`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileOutputFile, "output", "o", "", "output file (default: <input>.mwc)")
	compileCmd.Flags().BoolVar(&compileDisassemble, "disassemble", false, "show disassembled bytecode after compilation")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
	compileCmd.Flags().BoolVar(&compileConsoleMode, "console-mode", false, "auto-report unconsumed function-call results, as the interactive console does")
}

func compileScript(cmd *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	input := string(content)

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	warnMode, err := parseWarningMode(cmd)
	if err != nil {
		return err
	}

	driver := mwscript.NewDriver(context.NewMapContext(), extensions.NewDefaultRegistry(), warnMode, compileConsoleMode)

	out, ok, h := driver.Compile(input, filename)
	if len(h.Warnings()) > 0 {
		fmt.Fprint(os.Stderr, h.FormatAll())
		fmt.Fprintln(os.Stderr)
	}
	if !ok {
		fmt.Fprint(os.Stderr, formatErrorsOnly(h))
		return fmt.Errorf("compilation failed with %d error(s)", len(h.Errors()))
	}

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Instructions: %d\n", len(out.Chunk.Code))
		fmt.Fprintf(os.Stderr, "Locals: %d\n", out.Locals.Len())
	}

	if compileDisassemble {
		fmt.Fprintf(os.Stderr, "\n")
		bytecode.NewDisassembler(out.Chunk, os.Stderr).Disassemble()
		fmt.Fprintln(os.Stderr)
	}

	data, err := bytecode.NewSerializer().SerializeChunk(out.Chunk)
	if err != nil {
		return fmt.Errorf("failed to serialize bytecode: %w", err)
	}

	outFile := compileOutputFile
	if outFile == "" {
		ext := filepath.Ext(filename)
		if ext != "" {
			outFile = strings.TrimSuffix(filename, ext) + ".mwc"
		} else {
			outFile = filename + ".mwc"
		}
	}

	if err := os.WriteFile(outFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outFile, err)
	}

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Bytecode written to %s (%d bytes)\n", outFile, len(data))
	} else {
		fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	}
	return nil
}

func parseWarningMode(cmd *cobra.Command) (errors.WarningMode, error) {
	raw, _ := cmd.Flags().GetString("warning-mode")
	switch strings.ToLower(raw) {
	case "", "normal":
		return errors.WarningNormal, nil
	case "ignore":
		return errors.WarningIgnore, nil
	case "strict":
		return errors.WarningStrict, nil
	default:
		return errors.WarningNormal, fmt.Errorf("unknown warning mode %q (want ignore, normal, or strict)", raw)
	}
}

func formatErrorsOnly(h *errors.Handler) string {
	var sb strings.Builder
	for _, e := range h.Errors() {
		sb.WriteString(e.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}
