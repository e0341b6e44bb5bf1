// Package watchengine provides an fsnotify-backed build engine
package watchengine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stagehand/stagehand/pkg/logger"
	"github.com/stagehand/stagehand/pkg/types"
)

// BuildFunc performs one build pass. changed lists the files that
// triggered the pass; it is nil for the initial pass.
type BuildFunc func(ctx context.Context, changed []string) types.BuildOutcome

// Config is this engine's build configuration. The compile controller
// hands it through opaquely.
type Config struct {
	// Roots are the directories watched recursively in watch mode.
	Roots []string
	// Settle is the debounce window applied to change bursts.
	// Zero uses DefaultSettle.
	Settle time.Duration
	// Build performs the actual compilation pass.
	Build BuildFunc
}

// DefaultSettle is the debounce window applied when Config.Settle is zero
const DefaultSettle = 100 * time.Millisecond

// Engine implements the compile.Engine contract on top of fsnotify
type Engine struct {
	log logger.Logger
}

// New creates a watch engine
func New(log logger.Logger) *Engine {
	if log == nil {
		log = logger.CreateLoggerWithOutput("info", nil)
	}
	return &Engine{log: log}
}

// Build runs a single pass to completion
func (e *Engine) Build(ctx context.Context, cfg any) types.BuildOutcome {
	c, err := coerce(cfg)
	if err != nil {
		return types.BuildOutcome{Err: err}
	}
	return c.Build(ctx, nil)
}

// Watch runs an initial pass, then rebuilds on every settled change
// burst under the configured roots, delivering each outcome. It blocks
// until ctx ends. The returned error covers only session setup; build
// errors ride in the delivered outcomes.
func (e *Engine) Watch(ctx context.Context, cfg any, deliver func(types.BuildOutcome)) error {
	c, err := coerce(cfg)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, root := range c.Roots {
		if err := addTree(watcher, root); err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
		e.log.Debug("Watching directory tree", logger.WithField("root", root))
	}

	deliver(c.Build(ctx, nil))

	settle := c.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}

	var mu sync.Mutex
	pending := make(map[string]bool)
	timer := time.NewTimer(settle)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories join the watch set.
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := addTree(watcher, event.Name); addErr != nil {
						e.log.Warn("Failed to watch new directory",
							logger.WithField("path", event.Name),
							logger.WithField("error", addErr))
					}
					continue
				}
			}
			mu.Lock()
			pending[event.Name] = true
			mu.Unlock()
			timer.Reset(settle)

		case <-timer.C:
			mu.Lock()
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			pending = make(map[string]bool)
			mu.Unlock()

			if len(changed) == 0 {
				continue
			}
			e.log.Debug(fmt.Sprintf("Rebuilding after %d change(s)", len(changed)))
			deliver(c.Build(ctx, changed))

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.log.Error("Watcher error", logger.WithField("error", watchErr))
		}
	}
}

func coerce(cfg any) (*Config, error) {
	switch c := cfg.(type) {
	case *Config:
		if c.Build == nil {
			return nil, fmt.Errorf("watchengine: config has no build function")
		}
		return c, nil
	case Config:
		return coerce(&c)
	default:
		return nil, fmt.Errorf("watchengine: unsupported config type %T", cfg)
	}
}

// addTree adds root and every subdirectory to the watcher
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
