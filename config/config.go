// Package config loads forcegraph settings with viper.
//
// Precedence, lowest to highest: built-in defaults, the TOML config file,
// FORCEGRAPH_* environment variables. Keys are dotted section paths, so
// physics.decay_rate is overridden by FORCEGRAPH_PHYSICS_DECAY_RATE.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/interact"
	"github.com/TFMV/forcegraph/physics"
	"github.com/TFMV/forcegraph/render"
	"github.com/TFMV/forcegraph/server"
	"github.com/TFMV/forcegraph/view"
)

// FileName is the config file looked up when no path is given
const FileName = "forcegraph.toml"

// EnvPrefix prefixes every environment override
const EnvPrefix = "FORCEGRAPH"

// Config is the complete forcegraph configuration
type Config struct {
	Physics  physics.Config  `mapstructure:"physics"`
	Interact interact.Config `mapstructure:"interact"`
	Render   RenderConfig    `mapstructure:"render"`
	Server   ServerConfig    `mapstructure:"server"`
	Log      LogConfig       `mapstructure:"log"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// RenderConfig holds viewport and export settings
type RenderConfig struct {
	Width          float64       `mapstructure:"width"`
	Height         float64       `mapstructure:"height"`
	Palette        string        `mapstructure:"palette"`
	ShowLabels     bool          `mapstructure:"show_labels"`
	ShowEdgeLabels bool          `mapstructure:"show_edge_labels"`
	Timestamp      bool          `mapstructure:"timestamp"`
	Fit            bool          `mapstructure:"fit"`
	MaxSteps       int           `mapstructure:"max_steps"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds the live view server settings
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	FPS            int           `mapstructure:"fps"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	EventBuffer    int           `mapstructure:"event_buffer"`
	WatchDebounce  time.Duration `mapstructure:"watch_debounce"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

// LogConfig selects the logger flavour
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	p := physics.DefaultConfig()
	v.SetDefault("physics.link_distance_base", p.LinkDistanceBase)
	v.SetDefault("physics.link_distance_factor", p.LinkDistanceFactor)
	v.SetDefault("physics.min_link_distance", p.MinLinkDistance)
	v.SetDefault("physics.link_strength_scale", p.LinkStrengthScale)
	v.SetDefault("physics.repulsion_base", p.RepulsionBase)
	v.SetDefault("physics.repulsion_factor", p.RepulsionFactor)
	v.SetDefault("physics.min_distance", p.MinDistance)
	v.SetDefault("physics.barnes_hut_threshold", p.BarnesHutThreshold)
	v.SetDefault("physics.theta", p.Theta)
	v.SetDefault("physics.centering_strength", p.CenteringStrength)
	v.SetDefault("physics.collision_padding", p.CollisionPadding)
	v.SetDefault("physics.collision_strength", p.CollisionStrength)
	v.SetDefault("physics.velocity_damping", p.VelocityDamping)
	v.SetDefault("physics.decay_rate", p.DecayRate)
	v.SetDefault("physics.min_temperature", p.MinTemperature)
	v.SetDefault("physics.seed", p.Seed)

	i := interact.DefaultConfig()
	v.SetDefault("interact.scale_min", i.ScaleMin)
	v.SetDefault("interact.scale_max", i.ScaleMax)
	v.SetDefault("interact.wheel_sensitivity", i.WheelSensitivity)
	v.SetDefault("interact.click_tolerance", i.ClickTolerance)
	v.SetDefault("interact.drag_reheat", i.DragReheat)
	v.SetDefault("interact.drag_temperature", i.DragTemperature)

	v.SetDefault("render.width", 800.0)
	v.SetDefault("render.height", 600.0)
	v.SetDefault("render.palette", "network")
	v.SetDefault("render.show_labels", true)
	v.SetDefault("render.show_edge_labels", false)
	v.SetDefault("render.timestamp", false)
	v.SetDefault("render.fit", true)
	v.SetDefault("render.max_steps", 1000)
	v.SetDefault("render.timeout", 30*time.Second)

	v.SetDefault("server.address", "localhost:8080")
	v.SetDefault("server.fps", 30)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	})
	v.SetDefault("server.event_buffer", view.DefaultEventBuffer)
	v.SetDefault("server.watch_debounce", 250*time.Millisecond)
	v.SetDefault("server.max_upload_bytes", int64(16<<20))

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// NewViper returns a viper instance with defaults and environment binding.
// No file is read.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// findConfigFile looks for forcegraph.toml in the working directory and its
// parents, then in the user config directory
func findConfigFile() string {
	if dir, err := os.Getwd(); err == nil {
		for {
			path := filepath.Join(dir, FileName)
			if _, err := os.Stat(path); err == nil {
				return path
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(dir, "forcegraph", FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads the configuration. An explicit path must exist; with an empty
// path the file is searched for and optional.
func Load(path string) (*Config, error) {
	v := NewViper()
	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "config file %s", path),
			"omit --config to run with defaults",
		)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	cfg.File = path
	return cfg, nil
}

// LoadWithViper unmarshals and validates configuration from a prepared
// viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading files or env
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		panic(errors.Wrap(err, "built-in defaults are invalid"))
	}
	return cfg
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return errors.Wrap(err, "physics")
	}
	if err := c.Interact.Validate(); err != nil {
		return errors.Wrap(err, "interact")
	}
	if !(c.Render.Width > 0) || !(c.Render.Height > 0) {
		return errors.NewInvalidConfigError("render viewport %vx%v must be positive", c.Render.Width, c.Render.Height)
	}
	if _, err := render.GetPalette(c.Render.Palette); err != nil {
		return errors.Wrap(err, "render")
	}
	if c.Render.MaxSteps < 0 {
		return errors.NewInvalidConfigError("render.max_steps = %d, must be >= 0", c.Render.MaxSteps)
	}
	if c.Server.FPS <= 0 || c.Server.FPS > 240 {
		return errors.NewInvalidConfigError("server.fps = %d, must be in [1,240]", c.Server.FPS)
	}
	if c.Server.Address == "" {
		return errors.NewInvalidConfigError("server.address must not be empty")
	}
	if c.Server.EventBuffer <= 0 {
		return errors.NewInvalidConfigError("server.event_buffer = %d, must be > 0", c.Server.EventBuffer)
	}
	return nil
}

// PhysicsConfig returns the simulation configuration
func (c *Config) PhysicsConfig() physics.Config {
	return c.Physics
}

// InteractConfig returns the controller configuration
func (c *Config) InteractConfig() interact.Config {
	return c.Interact
}

// OutputOptions returns export options for format
func (c *Config) OutputOptions(format string) *render.OutputOptions {
	opts := render.NewDefaultOptions(format)
	opts.Width = c.Render.Width
	opts.Height = c.Render.Height
	opts.Palette = c.Render.Palette
	opts.ShowLabels = c.Render.ShowLabels
	opts.ShowEdgeLabels = c.Render.ShowEdgeLabels
	opts.Timestamp = c.Render.Timestamp
	opts.Fit = c.Render.Fit
	opts.MaxSteps = c.Render.MaxSteps
	opts.Timeout = c.Render.Timeout
	return opts
}

// ViewOptions returns the options for one live view
func (c *Config) ViewOptions() (view.Options, error) {
	palette, err := render.GetPalette(c.Render.Palette)
	if err != nil {
		return view.Options{}, err
	}
	return view.Options{
		Width:       c.Render.Width,
		Height:      c.Render.Height,
		Physics:     c.Physics,
		Interact:    c.Interact,
		Palette:     palette,
		EventBuffer: c.Server.EventBuffer,
	}, nil
}

// ServerConfig returns the live server configuration
func (c *Config) ServerConfig() (server.Config, error) {
	opts, err := c.ViewOptions()
	if err != nil {
		return server.Config{}, err
	}
	return server.Config{
		Address:        c.Server.Address,
		FPS:            c.Server.FPS,
		AllowedOrigins: c.Server.AllowedOrigins,
		WatchDebounce:  c.Server.WatchDebounce,
		MaxUploadBytes: c.Server.MaxUploadBytes,
		View:           opts,
		Output:         c.OutputOptions("html"),
	}, nil
}
