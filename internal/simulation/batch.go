package simulation

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunBatch replays independent runs concurrently, at most parallelism at a time
// (unbounded when parallelism <= 0). Runs share no state. A failed run records its error in
// its Result and does not stop the others; only context cancellation aborts the batch.
func RunBatch(ctx context.Context, inputs []RunInput, parallelism int) ([]*Result, error) {
	results := make([]*Result, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, _ := Run(in)
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
