package parallel

import (
	"context"
	"golang.org/x/sync/errgroup"
)

// ForEach runs fn for every item, honouring the provided concurrency limit.
func ForEach[T any](ctx context.Context, items []T, limit int, fn func(context.Context, T) error) error {
	if fn == nil || len(items) == 0 {
		return nil
	}

	group, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}

	for _, item := range items {
		item := item
		group.Go(func() error {
			return fn(ctx, item)
		})
	}

	return group.Wait()
}
