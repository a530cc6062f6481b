package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"minic/pkg/compiler"
)

var astFold bool

// tokensCmd dumps the lexer output
var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Print the token stream of a program",
	Args:  cobra.ExactArgs(1),
	RunE:  dumpTokens,
}

// astCmd dumps the parsed statements
var astCmd = &cobra.Command{
	Use:   "ast [file]",
	Short: "Print the parsed statements of a program",
	Long: `Parses a program and prints one statement per line, with
parenthesisation making the precedence explicit. With --fold, constant
subexpressions are folded first.`,
	Args: cobra.ExactArgs(1),
	RunE: dumpAST,
}

func init() {
	astCmd.Flags().BoolVar(&astFold, "fold", false, "Constant-fold before printing")
}

func dumpTokens(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	tokens, err := compiler.Lex(src)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, tok := range tokens {
		fmt.Fprintln(out, tok)
	}
	return nil
}

func dumpAST(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	tokens, err := compiler.Lex(src)
	if err != nil {
		return err
	}
	stmts, err := compiler.Parse(tokens, src)
	if err != nil {
		return err
	}
	if astFold {
		stmts = compiler.Fold(stmts)
	}

	out := cmd.OutOrStdout()
	for _, stmt := range stmts {
		fmt.Fprintln(out, stmt)
	}
	return nil
}
