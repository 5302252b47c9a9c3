// Package processing runs per-file work in fixed-size batches. Each batch is
// started together and fully awaited before the next one begins, which keeps
// the number of open file handles bounded without a long-lived pool.
package processing

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is used when a caller passes a non-positive size.
const DefaultBatchSize = 10

// Batches calls fn for every index in [0, n), size calls at a time. fn
// reports its own outcome through captured state; an error from fn stops
// later batches and is returned, while calls already started run to
// completion.
func Batches(ctx context.Context, n, size int, fn func(ctx context.Context, i int) error) error {
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start := 0; start < n; start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+size, n)
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				return fn(gctx, i)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// Map applies fn to every item in batches and returns the results in input
// order.
func Map[T, R any](ctx context.Context, items []T, size int, fn func(ctx context.Context, item T) R) ([]R, error) {
	out := make([]R, len(items))
	err := Batches(ctx, len(items), size, func(ctx context.Context, i int) error {
		out[i] = fn(ctx, items[i])
		return nil
	})
	return out, err
}
