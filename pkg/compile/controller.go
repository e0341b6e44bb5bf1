// Package compile drives the build engine in one-shot or watch mode
package compile

import (
	"context"
	"sync"

	"github.com/stagehand/stagehand/pkg/diag"
	"github.com/stagehand/stagehand/pkg/logger"
	"github.com/stagehand/stagehand/pkg/notify"
	"github.com/stagehand/stagehand/pkg/types"
)

// Engine is the opaque bundling/compilation engine. The config value is
// handed to it unmodified; stagehand never inspects it.
type Engine interface {
	// Build runs a single pass to completion.
	Build(ctx context.Context, cfg any) types.BuildOutcome
	// Watch delivers an outcome for the initial pass and for every
	// subsequent rebuild, blocking until ctx ends. A non-nil error means
	// the watch session could not be established.
	Watch(ctx context.Context, cfg any, deliver func(types.BuildOutcome)) error
}

// Controller owns the compilation lifecycle and its single-resolution
// guarantee
type Controller struct {
	engine   Engine
	reporter *diag.Reporter
	notifier *notify.Notifier
	log      logger.Logger
}

// NewController creates a controller. The notifier is optional.
func NewController(engine Engine, reporter *diag.Reporter, notifier *notify.Notifier, log logger.Logger) *Controller {
	if log == nil {
		log = logger.CreateLoggerWithOutput("info", nil)
	}
	if reporter == nil {
		reporter = diag.NewReporter(log)
	}
	return &Controller{
		engine:   engine,
		reporter: reporter,
		notifier: notifier,
		log:      log,
	}
}

// Compile runs one build pass. The returned outcome carries any engine
// error; it is reported through diagnostics but never returned as an
// error — Compile completes unconditionally once the pass finishes.
func (c *Controller) Compile(ctx context.Context, cfg any) types.BuildOutcome {
	c.log.Info("Compiling bundles...")
	outcome := c.engine.Build(ctx, cfg)
	c.report(outcome)
	return outcome
}

// CompileAndWatch starts a continuous watch session and returns after
// the first build pass only. Subsequent rebuilds are reported through
// diagnostics but produce no further signal — the first resolution is
// the only one. The session keeps running on its own goroutine until
// ctx ends. The error return covers only ctx expiry before the first
// pass; engine build errors ride in the outcome.
func (c *Controller) CompileAndWatch(ctx context.Context, cfg any) (types.BuildOutcome, error) {
	c.log.Info("Compiling bundles and watching for changes...")

	first := make(chan types.BuildOutcome, 1)
	var once sync.Once

	go func() {
		err := c.engine.Watch(ctx, cfg, func(outcome types.BuildOutcome) {
			c.report(outcome)
			once.Do(func() { first <- outcome })
		})
		if err != nil {
			// The session never produced a first pass; surface the
			// failure as that pass's outcome.
			outcome := types.BuildOutcome{Err: err}
			c.report(outcome)
			once.Do(func() { first <- outcome })
		}
	}()

	select {
	case outcome := <-first:
		return outcome, nil
	case <-ctx.Done():
		return types.BuildOutcome{}, ctx.Err()
	}
}

func (c *Controller) report(outcome types.BuildOutcome) {
	c.reporter.Report(outcome)

	if c.notifier == nil {
		return
	}
	if outcome.Err != nil {
		c.notifier.BuildFailed(outcome.Err)
		return
	}
	if outcome.Stats != nil {
		c.notifier.BuildSucceeded(outcome.Stats.Duration, len(outcome.Stats.Artifacts))
	}
}
