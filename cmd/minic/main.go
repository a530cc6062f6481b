package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "minic",
	Short: "minic - straight-line C expression toolchain",
	Long: `minic evaluates the straight-line subset of C: int declarations,
assignments and return statements over 32-bit two's-complement integers.

Programs are either a bare statement list or a single main wrapper:

  int main(void) { int a = 6; int b = 7; return a * b; }

Beyond direct evaluation the toolchain lowers programs to three-address
listings, executes listings on a small register machine, runs YAML fixture
suites, and re-evaluates files as they change on disk.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Add commands to root
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(astCmd)
	rootCmd.AddCommand(tacCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(fixturesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(replCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readSource loads a program from path, or from stdin when path is "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// printEnv writes one "name = value" line per variable, sorted by name.
func printEnv(w io.Writer, env map[string]int32) {
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s = %d\n", name, env[name])
	}
}
