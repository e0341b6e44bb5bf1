package process

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/stagehand/stagehand/pkg/types"
)

// launcher builds the exec.Cmd for one launch strategy. Strategy
// selection happens once per run, not inline at every call site.
type launcher interface {
	command(ctx context.Context, target string, args []string) *exec.Cmd
}

func launcherFor(s types.Strategy) (launcher, error) {
	switch s {
	case types.StrategyBackground:
		return backgroundLauncher{}, nil
	case types.StrategyShell:
		return shellLauncher{}, nil
	case types.StrategyForeground:
		return foregroundLauncher{}, nil
	default:
		return nil, fmt.Errorf("unknown launch strategy: %q", s)
	}
}

// backgroundLauncher runs the target as a managed child. Output is not
// silenced; stdin stays with the parent.
type backgroundLauncher struct{}

func (backgroundLauncher) command(ctx context.Context, target string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, target, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// shellLauncher executes the target string through a command shell.
// The args list is ignored; the target is the full command line.
type shellLauncher struct{}

func (shellLauncher) command(ctx context.Context, target string, _ []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "sh", "-c", target)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// foregroundLauncher runs the target as a direct child inheriting all
// of the caller's stdio streams.
type foregroundLauncher struct{}

func (foregroundLauncher) command(ctx context.Context, target string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, target, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}
