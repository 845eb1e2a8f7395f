package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/serin-lang/serin/astio"
	"github.com/serin-lang/serin/frontend"
	"github.com/serin-lang/serin/frontend/cst"
	"github.com/serin-lang/serin/frontend/serr"
	"github.com/serin-lang/serin/internal/log"
	"github.com/spf13/cobra"
)

var ExpandCmd = &cobra.Command{
	Use:          "expand file.yaml|-",
	Short:        "Desugar an AST dump and print the resulting tree",
	RunE:         runExpand,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var logLevel *int

func init() {
	logLevel = ExpandCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
}

var errHeader = color.New(color.Bold, color.FgRed)
var errSpan = color.New(color.FgYellow)

func runExpand(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*logLevel))

	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("could not read AST dump: %w", err)
	}

	expr, err := astio.Decode(data)
	if err != nil {
		return fmt.Errorf("could not decode AST dump: %w", err)
	}

	desugared, err := frontend.Desugar(expr)
	if err != nil {
		if syntaxErr, isSyntax := serr.FromError(err); isSyntax {
			_, _ = errHeader.Fprint(os.Stderr, "syntax error")
			_, _ = errSpan.Fprintf(os.Stderr, " at %v-%v\n", syntaxErr.Pos(), syntaxErr.End())
			_, _ = fmt.Fprintln(os.Stderr, serr.FormatWithCode(syntaxErr))
			return fmt.Errorf("desugaring failed")
		}
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), cst.ExprString(desugared))
	return nil
}
