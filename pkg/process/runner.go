// Package process launches external commands under a uniform
// awaitable contract
package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/stagehand/stagehand/pkg/logger"
	"github.com/stagehand/stagehand/pkg/types"
)

// Environment is the explicit environment configuration for spawned
// children. The zero value snapshots the ambient process environment
// per run and injects RUNTIME_MODE=development when unset.
type Environment struct {
	// Base replaces the ambient environment when non-nil.
	Base []string
	// RuntimeMode overrides the RUNTIME_MODE value when non-empty.
	RuntimeMode string
}

// Runner launches external commands using a selectable strategy
type Runner struct {
	log logger.Logger
	env Environment
}

// NewRunner creates a runner with the ambient environment
func NewRunner(log logger.Logger) *Runner {
	return NewRunnerWithEnv(log, Environment{})
}

// NewRunnerWithEnv creates a runner with an explicit environment
func NewRunnerWithEnv(log logger.Logger, env Environment) *Runner {
	if log == nil {
		log = logger.CreateLoggerWithOutput("info", nil)
	}
	return &Runner{log: log, env: env}
}

// Pending is the single-resolution future of one process run
type Pending struct {
	runID string
	await types.CompletionKind

	once       sync.Once
	done       chan struct{}
	completion types.Completion
}

func newPending(runID string, await types.CompletionKind) *Pending {
	return &Pending{
		runID: runID,
		await: await,
		done:  make(chan struct{}),
	}
}

// RunID returns the identifier attached to this run
func (p *Pending) RunID() string { return p.runID }

// Done returns a channel closed when the run has resolved
func (p *Pending) Done() <-chan struct{} { return p.done }

// resolve records the completion. Exactly one resolution wins; later
// calls are dropped.
func (p *Pending) resolve(c types.Completion) {
	p.once.Do(func() {
		c.RunID = p.runID
		p.completion = c
		close(p.done)
	})
}

// Wait blocks until the run resolves or ctx ends.
//
// A non-zero exit is not an error: the completion carries the code and
// err is nil. An Errored completion (the OS could not create or wait on
// the process) is returned as an error unless the caller awaited
// CompletionErrored, in which case the cause arrives as a value. A run
// never hangs: whichever completion kind actually occurs is delivered
// even when it is not the awaited kind.
func (p *Pending) Wait(ctx context.Context) (types.Completion, error) {
	select {
	case <-p.done:
		c := p.completion
		if c.Kind == types.CompletionErrored && p.await != types.CompletionErrored {
			return c, c.Err
		}
		return c, nil
	case <-ctx.Done():
		return types.Completion{}, ctx.Err()
	}
}

// Run launches target and returns the pending completion. The target
// must be non-empty; opts may be nil for defaults (Foreground, no args,
// await Exited). No timeout is applied; ctx is the caller's explicit
// opt-in to cancellation.
func (r *Runner) Run(ctx context.Context, target string, opts *types.RunOptions) *Pending {
	var o types.RunOptions
	if opts != nil {
		o = *opts
	}
	o = o.Normalized()

	pending := newPending(uuid.New().String(), o.Await)

	if target == "" {
		pending.resolve(types.Completion{
			Kind: types.CompletionErrored,
			Err:  errors.New("empty run target"),
		})
		return pending
	}

	l, err := launcherFor(o.Strategy)
	if err != nil {
		pending.resolve(types.Completion{Kind: types.CompletionErrored, Err: err})
		return pending
	}

	cmd := l.command(ctx, target, o.Args)
	cmd.Env = r.environment()

	if err := cmd.Start(); err != nil {
		r.log.Error("Failed to spawn process",
			logger.WithField("target", target),
			logger.WithField("error", err))
		pending.resolve(types.Completion{
			Kind: types.CompletionErrored,
			Err:  fmt.Errorf("spawning %s: %w", target, err),
		})
		return pending
	}

	r.log.Debug("Process spawned",
		logger.WithField("run_id", pending.runID),
		logger.WithField("target", target),
		logger.WithField("strategy", string(o.Strategy)),
		logger.WithField("pid", cmd.Process.Pid))

	go func() {
		pending.resolve(completionOf(cmd, cmd.Wait()))
	}()

	return pending
}

// environment builds the per-run environment snapshot. The snapshot is
// copied per invocation; concurrent runs never share a mutable slice.
func (r *Runner) environment() []string {
	base := r.env.Base
	if base == nil {
		base = os.Environ()
	}

	env := make([]string, 0, len(base)+1)
	mode := ""
	prefix := types.RuntimeModeVar + "="
	for _, kv := range base {
		if len(kv) > len(prefix) && kv[:len(prefix)] == prefix {
			mode = kv[len(prefix):]
			continue
		}
		env = append(env, kv)
	}

	if r.env.RuntimeMode != "" {
		mode = r.env.RuntimeMode
	}
	if mode == "" {
		mode = types.RuntimeModeDefault
	}

	return append(env, prefix+mode)
}

// completionOf classifies the result of cmd.Wait into a typed completion
func completionOf(cmd *exec.Cmd, waitErr error) types.Completion {
	c := types.Completion{Kind: types.CompletionExited}
	if cmd.Process != nil {
		c.PID = cmd.Process.Pid
	}

	if waitErr == nil {
		return c
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			c.Kind = types.CompletionSignaled
			c.Signal = ws.Signal().String()
			return c
		}
		c.ExitCode = exitErr.ExitCode()
		return c
	}

	c.Kind = types.CompletionErrored
	c.Err = waitErr
	return c
}
