package fixture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"minic/pkg/compiler"
)

// Result reports one case. A nil Err is a pass.
type Result struct {
	Name string
	Err  error
}

// Run evaluates every case in the suite, up to parallel at once (0 means no
// limit). Results keep manifest order regardless of completion order, and a
// failing case never stops the others. Cancelling ctx fails the cases that
// have not started yet.
func Run(ctx context.Context, suite *Suite, parallel int) []Result {
	results := make([]Result, len(suite.Cases))

	eg, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		eg.SetLimit(parallel)
	}
	for i := range suite.Cases {
		c := &suite.Cases[i]
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = Result{Name: c.Name, Err: ctx.Err()}
				return nil
			default:
			}
			results[i] = Result{Name: c.Name, Err: runCase(c, suite.dir)}
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

func runCase(c *Case, dir string) error {
	src := c.Source
	if c.File != "" {
		data, err := os.ReadFile(filepath.Join(dir, c.File))
		if err != nil {
			return fmt.Errorf("read %s: %w", c.File, err)
		}
		src = string(data)
	}

	env, result, err := compiler.Run(src)

	if c.Error != "" {
		if err == nil {
			return fmt.Errorf("expected error containing %q, program succeeded with result %d", c.Error, result)
		}
		if !strings.Contains(err.Error(), c.Error) {
			return fmt.Errorf("expected error containing %q, got %q", c.Error, err.Error())
		}
		return nil
	}

	if err != nil {
		return err
	}
	if c.Result != nil && result != *c.Result {
		return fmt.Errorf("result = %d, want %d", result, *c.Result)
	}
	if len(c.Env) > 0 {
		got := make(map[string]int32, len(c.Env))
		for name := range c.Env {
			v, ok := env[name]
			if !ok {
				return fmt.Errorf("variable %q absent from the final environment", name)
			}
			got[name] = v
		}
		if diff := cmp.Diff(c.Env, got); diff != "" {
			return fmt.Errorf("environment mismatch (-want +got):\n%s", diff)
		}
	}
	return nil
}
