// Package types provides core types and configuration for stagehand
package types

import (
	"time"
)

// Strategy selects the mechanism used to create a child process
type Strategy string

const (
	// StrategyBackground launches the target as a managed child with its
	// own process group; output is not silenced.
	StrategyBackground Strategy = "background"
	// StrategyShell executes the target string through a command shell;
	// the args list is ignored.
	StrategyShell Strategy = "shell"
	// StrategyForeground launches the target as a direct child inheriting
	// the caller's stdio streams.
	StrategyForeground Strategy = "foreground"
)

// CompletionKind identifies the lifecycle moment a caller can await
type CompletionKind string

const (
	CompletionExited   CompletionKind = "exited"
	CompletionSignaled CompletionKind = "signaled"
	CompletionErrored  CompletionKind = "errored"
)

// RunOptions configures a single process run.
// The zero value means: Foreground strategy, no args, await Exited.
type RunOptions struct {
	Strategy Strategy       `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Args     []string       `json:"args,omitempty" yaml:"args,omitempty"`
	Await    CompletionKind `json:"await,omitempty" yaml:"await,omitempty"`
}

// Normalized returns a copy with defaults applied
func (o RunOptions) Normalized() RunOptions {
	if o.Strategy == "" {
		o.Strategy = StrategyForeground
	}
	if o.Await == "" {
		o.Await = CompletionExited
	}
	return o
}

// Completion is the single resolution of a process run
type Completion struct {
	RunID    string
	Kind     CompletionKind
	ExitCode int
	Signal   string
	Err      error
	PID      int
}

// BuildStats is the engine's per-pass result, rendered by the
// diagnostics reporter and then discarded
type BuildStats struct {
	StartedAt    time.Time
	Duration     time.Duration
	Artifacts    []string
	Warnings     []string
	ChangedFiles []string
}

// BuildOutcome is produced by the build engine on every pass.
// Err never propagates out of the compile controller; it is surfaced
// through diagnostics and carried here for callers that want it.
type BuildOutcome struct {
	Err   error
	Stats *BuildStats
}

// BundleDescriptor names one buildable server unit. Transient; exists
// only within a single discovery call.
type BundleDescriptor struct {
	Name string `json:"name" yaml:"name"`
}

// RuntimeModeVar is injected into every spawned child's environment,
// defaulting to RuntimeModeDefault when the ambient value is unset.
const (
	RuntimeModeVar     = "RUNTIME_MODE"
	RuntimeModeDefault = "development"
)

// NotificationConfig controls desktop build notifications
type NotificationConfig struct {
	Enabled      *bool  `mapstructure:"enabled" yaml:"enabled,omitempty"`
	SuccessSound string `mapstructure:"success_sound" yaml:"success_sound,omitempty"`
	FailureSound string `mapstructure:"failure_sound" yaml:"failure_sound,omitempty"`
}

// WatchConfig controls the fsnotify watch engine
type WatchConfig struct {
	Roots    []string `mapstructure:"roots" yaml:"roots,omitempty"`
	SettleMs int      `mapstructure:"settle_ms" yaml:"settle_ms,omitempty"`
}

// Config is the orchestrator configuration
type Config struct {
	RuntimeMode     string              `mapstructure:"runtime_mode" yaml:"runtime_mode"`
	BundleDir       string              `mapstructure:"bundle_dir" yaml:"bundle_dir"`
	HotWrapper      string              `mapstructure:"hot_wrapper" yaml:"hot_wrapper"`
	ArtifactPattern string              `mapstructure:"artifact_pattern" yaml:"artifact_pattern"`
	BatchLimit      int                 `mapstructure:"batch_limit" yaml:"batch_limit"`
	LogLevel        string              `mapstructure:"log_level" yaml:"log_level"`
	LogFile         string              `mapstructure:"log_file" yaml:"log_file,omitempty"`
	Notifications   *NotificationConfig `mapstructure:"notifications" yaml:"notifications,omitempty"`
	Watch           *WatchConfig        `mapstructure:"watch" yaml:"watch,omitempty"`
}
