package parser

import (
	"context"
	"fmt"

	"github.com/steveyegge/partsbin/internal/types"
	"golang.org/x/sync/errgroup"
)

// ParseBatch parses lines with at most concurrency parses in flight.
// Results are in input order. The first error cancels the rest.
func ParseBatch(ctx context.Context, p Parser, lines []string, concurrency int) ([]*types.Component, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]*types.Component, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, line := range lines {
		g.Go(func() error {
			component, err := p.Parse(gctx, line)
			if err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			results[i] = component
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
