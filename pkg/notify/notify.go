// Package notify provides desktop notifications for build results
package notify

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/stagehand/stagehand/pkg/logger"
	"github.com/stagehand/stagehand/pkg/types"
)

// Notifier sends desktop notifications when enabled. Notification
// failures are logged at debug level and never surface to callers.
type Notifier struct {
	enabled      bool
	successSound string
	failureSound string
	log          logger.Logger
}

// New creates a notifier from configuration. A nil config or unset
// Enabled flag disables notifications.
func New(cfg *types.NotificationConfig, log logger.Logger) *Notifier {
	n := &Notifier{log: log}
	if cfg != nil {
		n.enabled = cfg.Enabled != nil && *cfg.Enabled
		n.successSound = cfg.SuccessSound
		n.failureSound = cfg.FailureSound
	}
	return n
}

// BuildSucceeded announces a successful build pass
func (n *Notifier) BuildSucceeded(duration time.Duration, artifacts int) {
	if !n.enabled {
		return
	}
	n.send("✅ Build Succeeded",
		fmt.Sprintf("%d artifact(s) in %s", artifacts, formatDuration(duration)),
		n.successSound)
}

// BuildFailed announces a failed build pass
func (n *Notifier) BuildFailed(err error) {
	if !n.enabled {
		return
	}
	n.send("❌ Build Failed", err.Error(), n.failureSound)
}

func (n *Notifier) send(title, message, soundName string) {
	if err := beeep.Notify(title, message, ""); err != nil && n.log != nil {
		n.log.Debug("Failed to send notification", logger.WithField("error", err))
	}
	if soundName != "" {
		if err := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil && n.log != nil {
			n.log.Debug("Failed to play sound", logger.WithField("error", err))
		}
	}
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
