package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mwscript-go/mwsc/internal/lexer"
	"github.com/spf13/cobra"
)

var (
	lexEvalExpr  string
	lexShowPos   bool
	lexShowType  bool
	lexOnlyBad   bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a script and print the resulting tokens",
	Long: `Tokenize a script and print the resulting tokens.

If no file is given, reads from stdin. Useful for debugging the scanner and
understanding how a line of the legacy script grammar is split into tokens.

Examples:
  mwscript lex quest.txt
  mwscript lex -e 'set x to 5'
  mwscript lex --show-type --show-pos quest.txt
  mwscript lex --only-illegal quest.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline text instead of reading from a file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexShowType, "show-type", false, "show token type names")
	lexCmd.Flags().BoolVar(&lexOnlyBad, "only-illegal", false, "show only illegal tokens")
}

func lexScript(cmd *cobra.Command, args []string) error {
	input, name, err := readSource(lexEvalExpr, args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Fprintf(os.Stderr, "Tokenizing: %s\n", name)
	}

	l := lexer.New(input, name)

	var tokenCount, illegalCount int
	for {
		tok := l.NextToken()
		if lexOnlyBad && tok.Type != lexer.ILLEGAL {
			if tok.Type == lexer.EOF {
				break
			}
			continue
		}

		tokenCount++
		if tok.Type == lexer.ILLEGAL {
			illegalCount++
		}
		printToken(tok)

		if tok.Type == lexer.EOF {
			break
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Total tokens: %d, illegal: %d\n", tokenCount, illegalCount)
	}

	if illegalCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", illegalCount)
	}
	return nil
}

func printToken(tok lexer.Token) {
	var out string
	if lexShowType {
		out = fmt.Sprintf("[%-10s]", tok.Type)
	}
	switch {
	case tok.Type == lexer.EOF:
		out += " EOF"
	case tok.Literal == "":
		out += fmt.Sprintf(" %s", tok.Type)
	default:
		out += fmt.Sprintf(" %q", tok.Literal)
	}
	if lexShowPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(out)
}

// readSource resolves a command's input: inline text via -e, a file
// argument, or stdin when neither is given. It returns the text and the
// source name to attach to diagnostics.
func readSource(inline string, args []string) (input, name string, err error) {
	switch {
	case inline != "":
		return inline, "<eval>", nil
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	default:
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(content), "<stdin>", nil
	}
}
