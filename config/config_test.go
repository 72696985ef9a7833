package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/interact"
	"github.com/TFMV/forcegraph/physics"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, physics.DefaultConfig(), cfg.PhysicsConfig())
	assert.Equal(t, interact.DefaultConfig(), cfg.InteractConfig())
	assert.Equal(t, 800.0, cfg.Render.Width)
	assert.Equal(t, "network", cfg.Render.Palette)
	assert.Equal(t, 30*time.Second, cfg.Render.Timeout)
	assert.Equal(t, "localhost:8080", cfg.Server.Address)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.WatchDebounce)
	assert.Contains(t, cfg.Server.AllowedOrigins, "http://localhost")
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[physics]
repulsion_base = 250
seed = 42

[interact]
scale_max = 8

[render]
palette = "vivid"
width = 1024
timeout = "5s"

[server]
address = ":9000"
fps = 60
allowed_origins = ["https://example.org"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, 250.0, cfg.Physics.RepulsionBase)
	assert.Equal(t, int64(42), cfg.Physics.Seed)
	assert.Equal(t, physics.DefaultConfig().DecayRate, cfg.Physics.DecayRate, "unset keys keep defaults")
	assert.Equal(t, 8.0, cfg.Interact.ScaleMax)
	assert.Equal(t, "vivid", cfg.Render.Palette)
	assert.Equal(t, 1024.0, cfg.Render.Width)
	assert.Equal(t, 5*time.Second, cfg.Render.Timeout)
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, []string{"https://example.org"}, cfg.Server.AllowedOrigins)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[physics]\ncentering_strength = 0.2\n")
	t.Setenv("FORCEGRAPH_PHYSICS_CENTERING_STRENGTH", "0.3")
	t.Setenv("FORCEGRAPH_SERVER_FPS", "12")
	t.Setenv("FORCEGRAPH_LOG_DEBUG", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.Physics.CenteringStrength)
	assert.Equal(t, 12, cfg.Server.FPS)
	assert.True(t, cfg.Log.Debug)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--config")

	_, err = Load(writeConfig(t, "[physics\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[physics]\ndecay_rate = 1.5\n"))
	assert.True(t, errors.IsInvalidConfigError(err))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"physics", func(c *Config) { c.Physics.VelocityDamping = 0 }},
		{"interact", func(c *Config) { c.Interact.ScaleMin = 5 }},
		{"viewport", func(c *Config) { c.Render.Height = 0 }},
		{"palette", func(c *Config) { c.Render.Palette = "neon" }},
		{"max steps", func(c *Config) { c.Render.MaxSteps = -1 }},
		{"fps", func(c *Config) { c.Server.FPS = 0 }},
		{"address", func(c *Config) { c.Server.Address = "" }},
		{"event buffer", func(c *Config) { c.Server.EventBuffer = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsInvalidConfigError(err), "got %v", err)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestProjections(t *testing.T) {
	cfg := Default()
	cfg.Render.Width, cfg.Render.Height = 640, 480
	cfg.Render.MaxSteps = 10

	opts := cfg.OutputOptions("png")
	assert.Equal(t, "png", opts.Format)
	assert.Equal(t, 640.0, opts.Width)
	assert.Equal(t, 10, opts.MaxSteps)

	vopts, err := cfg.ViewOptions()
	require.NoError(t, err)
	assert.Equal(t, 480.0, vopts.Height)
	assert.Equal(t, "network", vopts.Palette.Name)

	scfg, err := cfg.ServerConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg.Server.Address, scfg.Address)
	assert.Equal(t, "html", scfg.Output.Format)
	assert.Equal(t, 640.0, scfg.View.Width)
}
