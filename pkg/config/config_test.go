package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehand/stagehand/pkg/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stagehand.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadExplicitFile(t *testing.T) {
	path := writeConfig(t, `
runtime_mode: production
bundle_dir: services/bundles
hot_wrapper: scripts/watch.sh
artifact_pattern: "dist/%s.js"
batch_limit: 4
log_level: debug
watch:
  settle_ms: 250
  roots:
    - app
    - shared
notifications:
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.RuntimeMode)
	assert.Equal(t, "services/bundles", cfg.BundleDir)
	assert.Equal(t, "scripts/watch.sh", cfg.HotWrapper)
	assert.Equal(t, "dist/%s.js", cfg.ArtifactPattern)
	assert.Equal(t, 4, cfg.BatchLimit)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NotNil(t, cfg.Watch)
	assert.Equal(t, 250, cfg.Watch.SettleMs)
	assert.Equal(t, []string{"app", "shared"}, cfg.Watch.Roots)
	require.NotNil(t, cfg.Notifications)
	require.NotNil(t, cfg.Notifications.Enabled)
	assert.True(t, *cfg.Notifications.Enabled)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "log_level: warn\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, types.RuntimeModeDefault, cfg.RuntimeMode)
	assert.Equal(t, "app/bundles", cfg.BundleDir)
	assert.Equal(t, "scripts/nodemon", cfg.HotWrapper)
	assert.Equal(t, "build/%s.js", cfg.ArtifactPattern)
	assert.Equal(t, 0, cfg.BatchLimit)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadEnvOverridesRuntimeMode(t *testing.T) {
	t.Setenv(types.RuntimeModeVar, "production")
	path := writeConfig(t, "runtime_mode: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.RuntimeMode)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *types.Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *types.Config) {},
		},
		{
			name:    "empty bundle dir",
			mutate:  func(cfg *types.Config) { cfg.BundleDir = "" },
			wantErr: "bundle_dir",
		},
		{
			name:    "artifact pattern without placeholder",
			mutate:  func(cfg *types.Config) { cfg.ArtifactPattern = "build/app.js" },
			wantErr: "artifact_pattern",
		},
		{
			name:    "negative batch limit",
			mutate:  func(cfg *types.Config) { cfg.BatchLimit = -1 },
			wantErr: "batch_limit",
		},
		{
			name:    "bogus log level",
			mutate:  func(cfg *types.Config) { cfg.LogLevel = "loud" },
			wantErr: "log_level",
		},
		{
			name:    "negative settle",
			mutate:  func(cfg *types.Config) { cfg.Watch.SettleMs = -5 },
			wantErr: "settle_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stagehand.yaml")

	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().BundleDir, cfg.BundleDir)
	assert.Equal(t, Default().ArtifactPattern, cfg.ArtifactPattern)

	// Refuses to clobber an existing file.
	require.Error(t, WriteDefault(path))
}
