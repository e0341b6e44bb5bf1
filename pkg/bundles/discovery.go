// Package bundles resolves the set of server bundles to run
package bundles

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/stagehand/stagehand/pkg/logger"
	"github.com/stagehand/stagehand/pkg/process"
	"github.com/stagehand/stagehand/pkg/types"
)

// Defaults for the discovery conventions
const (
	DefaultBundleDir       = "app/bundles"
	DefaultHotWrapper      = "scripts/nodemon"
	DefaultArtifactPattern = "build/%s.js"
)

// Params selects which servers to resolve and how they should run
type Params struct {
	// Bundles is the explicit ordered list of bundle names. When empty,
	// bundles are discovered by listing the bundle directory.
	Bundles []string
	// Hot wraps each bundle in the hot-reload watcher script instead of
	// running the built artifact directly.
	Hot bool
}

// Discovery maps bundle names to run requests
type Discovery struct {
	dir     string
	wrapper string
	pattern string
	log     logger.Logger
}

// NewDiscovery creates a discovery using the configured conventions.
// A nil config uses the defaults.
func NewDiscovery(cfg *types.Config, log logger.Logger) *Discovery {
	d := &Discovery{
		dir:     DefaultBundleDir,
		wrapper: DefaultHotWrapper,
		pattern: DefaultArtifactPattern,
		log:     log,
	}
	if cfg != nil {
		if cfg.BundleDir != "" {
			d.dir = cfg.BundleDir
		}
		if cfg.HotWrapper != "" {
			d.wrapper = cfg.HotWrapper
		}
		if cfg.ArtifactPattern != "" {
			d.pattern = cfg.ArtifactPattern
		}
	}
	return d
}

// Servers resolves run requests for every bundle.
//
// Hot bundles run the watcher wrapper with the artifact path as its
// single argument (Foreground default). Non-hot bundles run the built
// artifact directly as a Background child so the parent keeps a
// management handle on it. A missing or unreadable bundle directory
// propagates unwrapped.
func (d *Discovery) Servers(params Params) ([]process.Request, error) {
	names := params.Bundles
	if len(names) == 0 {
		discovered, err := d.list()
		if err != nil {
			return nil, err
		}
		names = discovered
	}

	requests := make([]process.Request, 0, len(names))
	for _, name := range names {
		artifact := fmt.Sprintf(d.pattern, name)
		if params.Hot {
			requests = append(requests, process.Request{
				Target:  d.wrapper,
				Options: &types.RunOptions{Args: []string{artifact}},
			})
		} else {
			requests = append(requests, process.Request{
				Target:  artifact,
				Options: &types.RunOptions{Strategy: types.StrategyBackground},
			})
		}
	}

	if d.log != nil {
		d.log.Info(fmt.Sprintf("Resolved %d server bundle(s)", len(requests)),
			logger.WithField("hot", params.Hot))
	}
	return requests, nil
}

// list reads the non-recursive contents of the bundle directory. Each
// entry becomes a bundle name; a file extension is trimmed so that an
// entry x.js maps to the artifact build/x.js rather than build/x.js.js.
func (d *Discovery) list() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() {
			name = name[:len(name)-len(filepath.Ext(name))]
		}
		names = append(names, name)
	}
	return names, nil
}
