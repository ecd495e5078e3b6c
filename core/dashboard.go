package core

import (
	"context"

	"github.com/sentinelhq/sentinel/core/agg"
	"github.com/sentinelhq/sentinel/schema"
	"golang.org/x/sync/errgroup"
)

// minPartitionSize keeps tiny portfolios on a single goroutine.
const minPartitionSize = 64

// span is a half-open index range [lo, hi) over the deal slice.
type span struct {
	lo, hi int
}

// partition splits n records into at most workers contiguous spans of at
// least minSize records each. The spans cover [0, n) in order.
func partition(n, workers, minSize int) []span {
	if n == 0 {
		return nil
	}
	workers = max(workers, 1)
	minSize = max(minSize, 1)
	parts := min(workers, max(n/minSize, 1))

	spans := make([]span, 0, parts)
	size, extra := n/parts, n%parts
	lo := 0
	for i := range parts {
		hi := lo + size
		if i < extra {
			hi++
		}
		spans = append(spans, span{lo: lo, hi: hi})
		lo = hi
	}
	return spans
}

// BuildDashboard folds deals into the portfolio dashboard. Partitions are
// folded concurrently and merged in partition order, so the result matches
// a sequential fold exactly, including first-occurrence key order.
func BuildDashboard(ctx context.Context, deals []schema.DealRisk, workers int) (schema.Dashboard, error) {
	spans := partition(len(deals), workers, minPartitionSize)
	if len(spans) <= 1 {
		if err := ctx.Err(); err != nil {
			return schema.Dashboard{}, err
		}
		return agg.Summarize(deals), nil
	}

	partials := make([]agg.Partial, len(spans))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range spans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			partials[i] = agg.Fold(deals[s.lo:s.hi])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return schema.Dashboard{}, err
	}

	var total agg.Partial
	for _, p := range partials {
		total = total.Merge(p)
	}
	return total.Dashboard(), nil
}
