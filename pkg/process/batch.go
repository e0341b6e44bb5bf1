package process

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/stagehand/stagehand/pkg/types"
)

// Request is one entry of a batch run: a target plus optional run
// options. A nil Options gets the defaults applied.
type Request struct {
	Target  string
	Options *types.RunOptions
}

// NewRequest builds a request with default options
func NewRequest(target string) Request {
	return Request{Target: target}
}

// BatchOptions configures a batch run
type BatchOptions struct {
	// Limit bounds the number of simultaneously running processes.
	// Zero or negative keeps the historical unbounded fan-out.
	Limit int
}

// RunAll launches every request concurrently and joins the results.
//
// Results are positional: results[i] corresponds to requests[i]
// regardless of completion order. The join is all-or-nothing: the first
// rejected run fails the batch and the sibling results are discarded,
// but siblings are not cancelled — they run to completion in the
// background. There is no throttling unless opts.Limit is set.
func (r *Runner) RunAll(ctx context.Context, requests []Request, opts BatchOptions) ([]types.Completion, error) {
	results := make([]types.Completion, len(requests))

	// A plain errgroup (no derived context) so a failing run does not
	// cancel its siblings.
	var g errgroup.Group
	if opts.Limit > 0 {
		g.SetLimit(opts.Limit)
	}

	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			c, err := r.Run(ctx, req.Target, req.Options).Wait(ctx)
			results[i] = c
			if err != nil {
				return fmt.Errorf("%s: %w", req.Target, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
