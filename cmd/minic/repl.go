package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"minic/pkg/compiler"
)

// replCmd is the interactive loop
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive statement and expression loop",
	Long: `Reads statements and expressions interactively, keeping declared
variables across lines. Trailing semicolons are optional. A return
prints its value and ends the program, clearing the session.

  minic> int a = 6
  minic> a * 7
  42

Commands: :env prints the variables, :reset clears them, :quit exits.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	env := compiler.Env{}

	fmt.Fprintln(out, `straight-line C repl, ":quit" leaves`)
	for {
		fmt.Fprint(out, "minic> ")
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}

		line := strings.TrimSpace(in.Text())
		switch line {
		case "":
			continue
		case ":quit", ":q":
			return nil
		case ":env":
			printEnv(out, env)
			continue
		case ":reset":
			env = compiler.Env{}
			continue
		}

		if err := replLine(out, line, env); err != nil {
			fmt.Fprintln(out, err)
		}
	}
}

// replLine evaluates one line as a statement when it reads like one and as
// an expression otherwise. Statement results print only for return.
func replLine(out io.Writer, line string, env compiler.Env) error {
	tokens, err := compiler.Lex(line)
	if err != nil {
		return err
	}

	if isStatementLike(tokens) {
		// The grammar wants a terminating semicolon; typing one at a
		// prompt is a chore, so a missing one is spliced in.
		if n := len(tokens); n >= 2 && tokens[n-2].Type != compiler.SEMICOLON {
			eof := tokens[n-1]
			tokens = append(tokens[:n-1],
				compiler.Token{Type: compiler.SEMICOLON, Lexeme: ";", Line: eof.Line}, eof)
		}

		stmt, err := compiler.ParseStmt(tokens, line)
		if err != nil {
			return err
		}
		if stmt == nil {
			return nil
		}
		ret, err := compiler.EvalStmt(stmt, env)
		if err != nil {
			return err
		}
		if ret != nil {
			fmt.Fprintln(out, *ret)
			// A return ends the program, so the session starts over.
			for name := range env {
				delete(env, name)
			}
		}
		return nil
	}

	expr, err := compiler.ParseExpr(tokens, line)
	if err != nil {
		return err
	}
	val, err := compiler.EvalExpr(expr, env)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, val)
	return nil
}

// isStatementLike reports whether the tokens open a declaration, a return
// or an assignment. Anything else is treated as an expression, so "a == 1"
// prints a value while "a = 1" binds one.
func isStatementLike(tokens []compiler.Token) bool {
	if len(tokens) == 0 {
		return false
	}
	switch tokens[0].Type {
	case compiler.INT, compiler.RETURN, compiler.SEMICOLON:
		return true
	case compiler.IDENTIFIER:
		return len(tokens) > 1 && tokens[1].Type == compiler.ASSIGN
	}
	return false
}
