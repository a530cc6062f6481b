package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"minic/pkg/watch"
)

// watchCmd re-evaluates programs as they change
var watchCmd = &cobra.Command{
	Use:   "watch [target]",
	Short: "Re-run programs when they change on disk",
	Long: `Watches a file, or every .c file in a directory, evaluates each
program once at startup, and re-evaluates it whenever its changes
settle. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: watchTarget,
}

func watchTarget(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	w, err := watch.New(args[0], logger, func(o watch.Outcome) {
		if o.Err != nil {
			fmt.Fprintf(out, "%s: %v\n", o.Path, o.Err)
			return
		}
		fmt.Fprintf(out, "%s => %d\n", o.Path, o.Result)
	})
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return err
	}
	if err := w.RunAll(); err != nil {
		return err
	}

	<-ctx.Done()
	fmt.Fprintln(out, "stopped")
	return nil
}
