package transpile

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// TranslateAll translates inputs concurrently with at most workers in
// flight (workers <= 0 means no limit). Results keep input order. The
// first failure cancels the remaining requests.
func (t *Transpiler) TranslateAll(ctx context.Context, inputs []Options, workers int) ([]string, error) {
	results := make([]string, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, opts := range inputs {
		g.Go(func() error {
			code, err := t.Translate(ctx, opts)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			results[i] = code
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
