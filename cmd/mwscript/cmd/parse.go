package cmd

import (
	"fmt"
	"os"

	"github.com/mwscript-go/mwsc/internal/ast"
	"github.com/mwscript-go/mwsc/internal/errors"
	"github.com/mwscript-go/mwsc/internal/lexer"
	"github.com/mwscript-go/mwsc/internal/parser"
	"github.com/spf13/cobra"
)

var parseEvalExpr string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a script and dump its syntax tree",
	Long: `Parse a script and display its syntax tree.

If no file is given, reads from stdin. Use -e to parse inline text instead.
This runs only the scanner and parser; it never resolves identifiers, so
bare atoms still appear as unclassified ExprItems exactly as the parser
left them for the analyzer.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEvalExpr, "eval", "e", "", "parse inline text instead of reading from a file")
}

func runParse(cmd *cobra.Command, args []string) error {
	input, name, err := readSource(parseEvalExpr, args)
	if err != nil {
		return err
	}

	h := errors.NewHandler(errors.WarningNormal)
	h.SetSource(input)

	l := lexer.New(input, name)
	p := parser.New(l, h)
	mod := p.ParseModule(name)
	p.FlushDeferred()
	for _, le := range l.Errors() {
		h.Error(le.Message, le.Pos)
	}

	if !h.IsGood() {
		fmt.Fprint(os.Stderr, h.FormatAll())
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("parsing failed with %d error(s)", len(h.Errors()))
	}
	if len(h.Warnings()) > 0 {
		fmt.Fprint(os.Stderr, h.FormatAll())
		fmt.Fprintln(os.Stderr)
	}

	dumpModule(mod)
	return nil
}

func dumpModule(mod *ast.Module) {
	fmt.Printf("Module %s (%d statements)\n", mod.Name, len(mod.Statements))
	for _, stmt := range mod.Statements {
		dumpStatement(stmt, 1)
	}
}

func dumpStatement(stmt ast.Statement, indent int) {
	pad := indentStr(indent)
	switch s := stmt.(type) {
	case *ast.TypeDecl:
		fmt.Printf("%sTypeDecl %s %s\n", pad, s.Type, s.Name)
	case *ast.SetStatement:
		fmt.Printf("%sSet (ignored=%v)\n", pad, s.Ignored)
		dumpExprLabeled(s.Target, "Target", indent+1)
		dumpExprLabeled(s.Value, "Value", indent+1)
	case *ast.IfStatement:
		fmt.Printf("%sIf\n", pad)
		dumpExprLabeled(s.Cond, "Cond", indent+1)
		fmt.Printf("%sThen:\n", indentStr(indent+1))
		for _, body := range s.Then {
			dumpStatement(body, indent+2)
		}
		for _, ei := range s.ElseIfs {
			fmt.Printf("%sElseIf:\n", indentStr(indent+1))
			dumpExprLabeled(ei.Cond, "Cond", indent+2)
			for _, body := range ei.Body {
				dumpStatement(body, indent+2)
			}
		}
		if len(s.Else) > 0 {
			fmt.Printf("%sElse:\n", indentStr(indent+1))
			for _, body := range s.Else {
				dumpStatement(body, indent+2)
			}
		}
	case *ast.WhileStatement:
		fmt.Printf("%sWhile\n", pad)
		dumpExprLabeled(s.Cond, "Cond", indent+1)
		for _, body := range s.Body {
			dumpStatement(body, indent+1)
		}
	case *ast.ReturnStatement:
		fmt.Printf("%sReturn\n", pad)
	case *ast.StatementExpr:
		fmt.Printf("%sStatementExpr\n", pad)
		dumpExpr(s.Expr, indent+1)
	case *ast.NoOp:
		fmt.Printf("%sNoOp\n", pad)
	default:
		fmt.Printf("%s%T\n", pad, stmt)
	}
}

func dumpExprLabeled(e ast.Expression, label string, indent int) {
	fmt.Printf("%s%s:\n", indentStr(indent), label)
	dumpExpr(e, indent+1)
}

func dumpExpr(e ast.Expression, indent int) {
	pad := indentStr(indent)
	switch n := e.(type) {
	case *ast.FloatLit:
		fmt.Printf("%sFloatLit %g\n", pad, n.Value)
	case *ast.LongLit:
		fmt.Printf("%sLongLit %d\n", pad, n.Value)
	case *ast.StringLit:
		fmt.Printf("%sStringLit %q\n", pad, n.Value)
	case *ast.GlobalVar:
		fmt.Printf("%sGlobalVar %s\n", pad, n.Name)
	case *ast.LocalVar:
		fmt.Printf("%sLocalVar %s (index=%d)\n", pad, n.Name, n.Index)
	case *ast.MemberVar:
		fmt.Printf("%sMemberVar %s.%s\n", pad, n.Owner, n.Member)
	case *ast.Journal:
		fmt.Printf("%sJournal %s\n", pad, n.Name)
	case *ast.MathExpr:
		fmt.Printf("%sMathExpr %s\n", pad, n.Op)
		dumpExpr(n.Left, indent+1)
		dumpExpr(n.Right, indent+1)
	case *ast.LogicExpr:
		fmt.Printf("%sLogicExpr %s\n", pad, n.Op)
		dumpExpr(n.Left, indent+1)
		dumpExpr(n.Right, indent+1)
	case *ast.NegateExpr:
		fmt.Printf("%sNegateExpr\n", pad)
		dumpExpr(n.Operand, indent+1)
	case *ast.CastExpr:
		fmt.Printf("%sCastExpr %s->%s\n", pad, n.From, n.To)
		dumpExpr(n.Operand, indent+1)
	case *ast.RefExpr:
		fmt.Printf("%sRefExpr base=%q(%v) op=%s offset=%q\n", pad, n.Base, n.HasBase, n.Op, n.Offset)
	case *ast.ExprItems:
		fmt.Printf("%sExprItems (%d unresolved items)\n", pad, len(n.Items))
		for _, item := range n.Items {
			dumpExpr(item, indent+1)
		}
	case *ast.CallExpr:
		fmt.Printf("%sCallExpr\n", pad)
		dumpExprLabeled(n.Callee, "Callee", indent+1)
		for _, a := range n.Args.Args {
			dumpExpr(a, indent+1)
		}
	default:
		fmt.Printf("%s%T\n", pad, e)
	}
}

func indentStr(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += "  "
	}
	return out
}
