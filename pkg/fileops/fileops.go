// Package fileops provides batch copy/move built on the process runner
package fileops

import (
	"context"
	"fmt"

	"github.com/stagehand/stagehand/pkg/process"
	"github.com/stagehand/stagehand/pkg/types"
)

// Item is one source/destination pair
type Item struct {
	Target string
	Dest   string
}

// Ops shells out to the archive-preserving copy and rename utilities.
// No path validation, no collision detection.
type Ops struct {
	runner *process.Runner
	batch  process.BatchOptions
}

// New creates file ops on top of the given runner
func New(runner *process.Runner, batch process.BatchOptions) *Ops {
	return &Ops{runner: runner, batch: batch}
}

// Copy copies every item concurrently via `cp -a`, joined with the
// all-or-nothing batch policy
func (o *Ops) Copy(ctx context.Context, items []Item) ([]types.Completion, error) {
	return o.transfer(ctx, "cp -a", items)
}

// Move renames every item concurrently via `mv`
func (o *Ops) Move(ctx context.Context, items []Item) ([]types.Completion, error) {
	return o.transfer(ctx, "mv", items)
}

func (o *Ops) transfer(ctx context.Context, utility string, items []Item) ([]types.Completion, error) {
	requests := make([]process.Request, 0, len(items))
	for _, item := range items {
		requests = append(requests, process.Request{
			Target:  fmt.Sprintf("%s %s %s", utility, item.Target, item.Dest),
			Options: &types.RunOptions{Strategy: types.StrategyShell},
		})
	}
	return o.runner.RunAll(ctx, requests, o.batch)
}
