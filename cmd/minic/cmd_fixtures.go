package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"minic/pkg/fixture"
)

var fixturesParallel int

// fixturesCmd runs YAML suites of programs with expectations
var fixturesCmd = &cobra.Command{
	Use:   "fixtures [manifest...]",
	Short: "Run YAML fixture suites",
	Long: `Loads YAML suites of programs with expected results and runs every
case, printing one line per case and a summary per suite. Case order in
the output follows the manifest even when cases run in parallel. The
exit status is non-zero when any case fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFixtures,
}

func init() {
	fixturesCmd.Flags().IntVar(&fixturesParallel, "parallel", 0, "Maximum cases run at once (0 means no limit)")
}

func runFixtures(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	totalCases, totalFailed := 0, 0
	for _, path := range args {
		suite, err := fixture.Load(path)
		if err != nil {
			return err
		}

		results := fixture.Run(cmd.Context(), suite, fixturesParallel)

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(out, "FAIL %s: %v\n", r.Name, r.Err)
			} else {
				fmt.Fprintf(out, "ok   %s\n", r.Name)
			}
		}
		fmt.Fprintf(out, "%s: %d passed, %d failed\n", suite.Name, len(results)-failed, failed)

		totalCases += len(results)
		totalFailed += failed
	}

	if totalFailed > 0 {
		return fmt.Errorf("%d of %d cases failed", totalFailed, totalCases)
	}
	return nil
}
