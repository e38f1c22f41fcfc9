package concurrent

import (
	"context"
	"runtime"

	"github.com/zeusync/provision/pkg/sequence"
	"golang.org/x/sync/errgroup"
)

// ParallelMap applies mapFn to each element of the iterator on at most workers
// goroutines and returns the results in input order. The first error cancels
// the context passed to the remaining calls and is returned.
// A workers value of zero or less uses GOMAXPROCS.
func ParallelMap[T any, R any](ctx context.Context, i *sequence.Iterator[T], workers int, mapFn func(context.Context, T) (R, error)) ([]R, error) {
	in := i.Collect()
	out := make([]R, len(in))
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for idx, val := range in {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := mapFn(gctx, val)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
