// Package diag formats and emits build engine diagnostics
package diag

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/stagehand/stagehand/pkg/logger"
	"github.com/stagehand/stagehand/pkg/types"
)

// Reporter renders build outcomes at a fixed verbosity: a one-line
// summary plus warnings, with per-chunk and hash breakdowns suppressed.
// Reporting is a pure side effect; it never fails the caller.
type Reporter struct {
	log    logger.Logger
	out    io.Writer
	errOut io.Writer
}

// NewReporter creates a reporter writing to stdout/stderr
func NewReporter(log logger.Logger) *Reporter {
	return NewReporterWithOutput(log, os.Stdout, os.Stderr)
}

// NewReporterWithOutput creates a reporter with explicit streams
// (used by tests)
func NewReporterWithOutput(log logger.Logger, out, errOut io.Writer) *Reporter {
	if log == nil {
		log = logger.CreateLoggerWithOutput("info", nil)
	}
	return &Reporter{log: log, out: out, errOut: errOut}
}

// Report emits the outcome. An engine error goes to the error channel;
// stats, when present, always get a human-readable rendering.
func (r *Reporter) Report(outcome types.BuildOutcome) {
	if outcome.Err != nil {
		fmt.Fprintln(r.errOut, color.New(color.FgRed, color.Bold).Sprint("build error:"), outcome.Err)
		r.log.Error("Build failed", logger.WithField("error", outcome.Err))
	}

	if outcome.Stats == nil {
		return
	}

	fmt.Fprintln(r.out, renderStats(outcome.Stats))
	for _, w := range outcome.Stats.Warnings {
		fmt.Fprintln(r.out, color.YellowString("warning:"), w)
	}
}

func renderStats(stats *types.BuildStats) string {
	return fmt.Sprintf("built %d artifact(s) in %s",
		len(stats.Artifacts), formatDuration(stats.Duration))
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
