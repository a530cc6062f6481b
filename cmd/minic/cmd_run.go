package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"minic/pkg/compiler"
)

var (
	runShowEnv bool
	runFold    bool
)

// runCmd evaluates a whole program
var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Evaluate a program and print its result",
	Long: `Evaluates a program and prints the value it returns. A program with
no return statement yields 0. Reads from stdin when file is "-".

With --env the final variable environment is printed after the result,
one variable per line. --fold runs constant folding first; it never
changes the result and exists to exercise the folder from the command
line.`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

// evalCmd evaluates a single expression
var evalCmd = &cobra.Command{
	Use:   "eval [expression]",
	Short: "Evaluate a single expression",
	Long: `Evaluates one expression with no variables in scope and prints its
value. The arguments are joined with spaces, so the expression may be
quoted as a whole or split:

  minic eval '(1 + 2) * 3'
  minic eval '1 << 33'`,
	Args: cobra.MinimumNArgs(1),
	RunE: evalExpression,
}

func init() {
	runCmd.Flags().BoolVar(&runShowEnv, "env", false, "Print the final environment after the result")
	runCmd.Flags().BoolVar(&runFold, "fold", false, "Constant-fold before evaluation")
}

func runProgram(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	tokens, err := compiler.Lex(src)
	if err != nil {
		return fmt.Errorf("lex error: %w", err)
	}
	stmts, err := compiler.Parse(tokens, src)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	if runFold {
		stmts = compiler.Fold(stmts)
		logger.Debug("constant folding applied", zap.String("file", args[0]))
	}

	env, result, err := compiler.Evaluate(stmts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result)
	if runShowEnv {
		printEnv(out, env)
	}
	return nil
}

func evalExpression(cmd *cobra.Command, args []string) error {
	result, err := compiler.RunExpr(strings.Join(args, " "), nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}
