package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"minic/pkg/compiler"
	"minic/pkg/tac"
)

var (
	tacFold bool

	execLimit   int
	execShowEnv bool
	execTrace   bool
)

// tacCmd lowers a program to three-address code
var tacCmd = &cobra.Command{
	Use:   "tac [file]",
	Short: "Lower a program to a three-address listing",
	Long: `Lowers a program to three-address code and prints the listing.
Logical && and || become explicit jumps, so the listing has no
short-circuit operators left. Listings can be saved and executed later
with the exec command. With --fold, constant subexpressions are folded
before lowering.`,
	Args: cobra.ExactArgs(1),
	RunE: lowerProgram,
}

// execCmd runs a listing on the register machine
var execCmd = &cobra.Command{
	Use:   "exec [listing]",
	Short: "Execute a three-address listing",
	Long: `Parses a listing produced by the tac command, or written by hand,
and executes it on the register machine, printing the result. A listing
that falls off its end yields 0.

With --env the final variables are printed after the result; compiler
temporaries (tmp.N) are hidden. --trace logs every instruction at debug
level, so it only shows together with --verbose.`,
	Args: cobra.ExactArgs(1),
	RunE: execListing,
}

func init() {
	tacCmd.Flags().BoolVar(&tacFold, "fold", false, "Constant-fold before lowering")
	execCmd.Flags().IntVar(&execLimit, "limit", tac.DefaultStepLimit, "Maximum machine steps before giving up")
	execCmd.Flags().BoolVar(&execShowEnv, "env", false, "Print the final variables after the result")
	execCmd.Flags().BoolVar(&execTrace, "trace", false, "Log each executed instruction at debug level")
}

func lowerProgram(cmd *cobra.Command, args []string) error {
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
	if tacFold {
		stmts = compiler.Fold(stmts)
	}

	prog, err := tac.Lower(stmts)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), prog)
	return nil
}

func execListing(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	prog, err := tac.ParseListing(src)
	if err != nil {
		return err
	}

	var (
		vars   map[string]int32
		result int32
	)
	if execTrace {
		vars, result, err = traceListing(prog)
	} else {
		vars, result, err = tac.Execute(prog, execLimit)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result)
	if execShowEnv {
		printEnv(out, vars)
	}
	return nil
}

// traceListing mirrors tac.Execute but logs each instruction before it runs.
func traceListing(prog *tac.Program) (map[string]int32, int32, error) {
	m, err := tac.NewMachine(prog)
	if err != nil {
		return nil, 0, err
	}

	limit := execLimit
	if limit <= 0 {
		limit = tac.DefaultStepLimit
	}
	for steps := 0; !m.Halted; steps++ {
		if steps >= limit {
			return nil, 0, fmt.Errorf("machine did not halt after %d steps", limit)
		}
		if m.PC >= 0 && m.PC < len(prog.Instrs) {
			logger.Debug("step",
				zap.Int("pc", m.PC),
				zap.Stringer("instr", prog.Instrs[m.PC]))
		}
		if err := m.Step(); err != nil {
			return nil, 0, err
		}
	}
	return m.Vars(), m.Result, nil
}
