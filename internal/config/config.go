// Package config loads, validates and guards the bot configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/ConserveLee/orbit-idle/internal/constants"
	"github.com/ConserveLee/orbit-idle/internal/engine/actuator"
	"github.com/ConserveLee/orbit-idle/internal/engine/patrol"
	"github.com/ConserveLee/orbit-idle/internal/engine/screen"
)

// ErrConfigInvalid is returned when a configuration fails validation.
var ErrConfigInvalid = errors.New("invalid configuration")

// EnvPrefix is prepended to environment overrides, e.g. ORBIT_VITALITY_THRESHOLD.
const EnvPrefix = "ORBIT"

// Config is the full bot configuration.
type Config struct {
	Vitality VitalityConfig `mapstructure:"vitality" yaml:"vitality"`
	Patrol   PatrolConfig   `mapstructure:"patrol" yaml:"patrol"`
	Actuator ActuatorConfig `mapstructure:"actuator" yaml:"actuator"`
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Engine   EngineConfig   `mapstructure:"engine" yaml:"engine"`
}

// VitalityConfig drives the status bar loop.
type VitalityConfig struct {
	Bar       screen.Rectangle `mapstructure:"bar" yaml:"bar"`
	Palette   screen.Palette   `mapstructure:"palette" yaml:"palette"`
	Threshold int              `mapstructure:"threshold" yaml:"threshold"` // percent
	Key       string           `mapstructure:"key" yaml:"key"`
	Interval  time.Duration    `mapstructure:"interval" yaml:"interval"`
	Cooldown  time.Duration    `mapstructure:"cooldown" yaml:"cooldown"`
	Hold      time.Duration    `mapstructure:"hold" yaml:"hold"`
}

// PatrolConfig drives the minimap loop.
type PatrolConfig struct {
	Minimap          screen.Rectangle `mapstructure:"minimap" yaml:"minimap"`
	Circle           patrol.Circle    `mapstructure:"circle" yaml:"circle"`
	Interval         time.Duration    `mapstructure:"interval" yaml:"interval"`
	Hold             time.Duration    `mapstructure:"hold" yaml:"hold"`
	MovementCooldown time.Duration    `mapstructure:"movement_cooldown" yaml:"movement_cooldown"`
	NoRegionWait     time.Duration    `mapstructure:"no_region_wait" yaml:"no_region_wait"`
	AngularSpeed     float64          `mapstructure:"angular_speed" yaml:"angular_speed"`
	RadiusOffset     float64          `mapstructure:"radius_offset" yaml:"radius_offset"`
	BoundaryRatio    float64          `mapstructure:"boundary_ratio" yaml:"boundary_ratio"`
	Keys             patrol.Keymap    `mapstructure:"keys" yaml:"keys"`
}

// ActuatorConfig selects the key injection backend.
type ActuatorConfig struct {
	Backend    string `mapstructure:"backend" yaml:"backend"` // robotgo, serial or dryrun
	SerialPort string `mapstructure:"serial_port" yaml:"serial_port"`
	Baud       int    `mapstructure:"baud" yaml:"baud"`
}

// Options converts to actuator options.
func (a ActuatorConfig) Options() actuator.Options {
	return actuator.Options{Backend: a.Backend, SerialPort: a.SerialPort, Baud: a.Baud}
}

// LoggerConfig configures console and file logging.
type LoggerConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	LogFile    string `mapstructure:"log_file" yaml:"log_file"` // empty disables the file core
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// EngineConfig holds scheduler timings shared by both loops.
type EngineConfig struct {
	ErrorBackoff time.Duration `mapstructure:"error_backoff" yaml:"error_backoff"`
	StopTimeout  time.Duration `mapstructure:"stop_timeout" yaml:"stop_timeout"`
	EventBuffer  int           `mapstructure:"event_buffer" yaml:"event_buffer"`
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	// -- Vitality --
	v.SetDefault("vitality.threshold", constants.VitalityThreshold)
	v.SetDefault("vitality.key", "1")
	v.SetDefault("vitality.interval", constants.VitalityScanInterval)
	v.SetDefault("vitality.cooldown", constants.VitalityCooldown)
	v.SetDefault("vitality.hold", constants.VitalityKeyHold)

	// -- Patrol --
	v.SetDefault("patrol.interval", constants.PatrolScanInterval)
	v.SetDefault("patrol.hold", constants.PatrolKeyHold)
	v.SetDefault("patrol.movement_cooldown", constants.PatrolMovementCooldown)
	v.SetDefault("patrol.no_region_wait", constants.PatrolNoRegionWait)
	v.SetDefault("patrol.angular_speed", constants.OrbitAngularSpeed)
	v.SetDefault("patrol.radius_offset", constants.OrbitRadiusOffset)
	v.SetDefault("patrol.boundary_ratio", constants.BoundaryRatio)
	keys := patrol.DefaultKeymap()
	v.SetDefault("patrol.keys.forward", keys.Forward)
	v.SetDefault("patrol.keys.up", keys.Up)
	v.SetDefault("patrol.keys.down", keys.Down)
	v.SetDefault("patrol.keys.left", keys.Left)
	v.SetDefault("patrol.keys.right", keys.Right)

	// -- Actuator --
	v.SetDefault("actuator.backend", actuator.BackendRobotgo)
	v.SetDefault("actuator.baud", 9600)

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)

	// -- Engine --
	v.SetDefault("engine.error_backoff", constants.ErrorBackoff)
	v.SetDefault("engine.stop_timeout", constants.StopJoinTimeout)
	v.SetDefault("engine.event_buffer", constants.EventBuffer)
}

// NewViper returns a viper instance with defaults and ORBIT_ env overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// NewDefaultConfig returns the configuration with only defaults applied.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads path (or ./config.yaml when path is empty) into a new viper
// instance. A missing default file is not an error.
func Load(path string) (*Config, *viper.Viper, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := FromViper(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Validate checks the configuration and reports every problem at once.
// Regions and the circle may be unset; the loops refuse to start then.
func (c *Config) Validate() error {
	var errs error
	add := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf(format, args...))
	}

	v := c.Vitality
	if v.Threshold < 0 || v.Threshold > 100 {
		add("vitality.threshold must be between 0 and 100, got %d", v.Threshold)
	}
	if err := actuator.ValidateKey(v.Key); err != nil {
		add("vitality.key: %w", err)
	}
	if v.Interval <= 0 {
		add("vitality.interval must be positive")
	}
	if v.Cooldown < 0 || v.Hold < 0 {
		add("vitality.cooldown and vitality.hold must not be negative")
	}
	errs = multierr.Append(errs, validatePalette("vitality.palette", v.Palette))

	p := c.Patrol
	if p.Interval <= 0 {
		add("patrol.interval must be positive")
	}
	if p.Hold < 0 || p.MovementCooldown < 0 || p.NoRegionWait < 0 {
		add("patrol timings must not be negative")
	}
	if p.Circle.Radius < 0 {
		add("patrol.circle.radius must not be negative")
	}
	if p.RadiusOffset <= 0 || p.RadiusOffset > 1 {
		add("patrol.radius_offset must be in (0, 1], got %g", p.RadiusOffset)
	}
	if p.BoundaryRatio <= 0 || p.BoundaryRatio > 1 {
		add("patrol.boundary_ratio must be in (0, 1], got %g", p.BoundaryRatio)
	}
	for name, key := range map[string]string{
		"forward": p.Keys.Forward, "up": p.Keys.Up, "down": p.Keys.Down,
		"left": p.Keys.Left, "right": p.Keys.Right,
	} {
		if err := actuator.ValidateKey(key); err != nil {
			add("patrol.keys.%s: %w", name, err)
		}
	}

	switch c.Actuator.Backend {
	case actuator.BackendRobotgo, actuator.BackendDryRun:
	case actuator.BackendSerial:
		if c.Actuator.SerialPort == "" {
			add("actuator.serial_port is required for the serial backend")
		}
		if c.Actuator.Baud <= 0 {
			add("actuator.baud must be positive")
		}
	default:
		add("actuator.backend %q is not one of robotgo, serial, dryrun", c.Actuator.Backend)
	}

	if c.Engine.ErrorBackoff <= 0 || c.Engine.StopTimeout <= 0 {
		add("engine.error_backoff and engine.stop_timeout must be positive")
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, errs)
	}
	return nil
}

func validatePalette(field string, p screen.Palette) error {
	var errs error
	for name, r := range map[string]screen.ColorRange{"healthy": p.Healthy, "low": p.Low} {
		for _, ch := range []struct {
			name     string
			min, max int
		}{
			{"r", r.Min.R, r.Max.R},
			{"g", r.Min.G, r.Max.G},
			{"b", r.Min.B, r.Max.B},
		} {
			if ch.min < 0 || ch.max > 255 || ch.min > ch.max {
				errs = multierr.Append(errs, fmt.Errorf("%s.%s.%s range [%d, %d] is invalid", field, name, ch.name, ch.min, ch.max))
			}
		}
	}
	return errs
}

// Ready reports why the vitality loop cannot run, or nil.
func (v VitalityConfig) Ready() error {
	if v.Bar.Empty() {
		return fmt.Errorf("%w: vitality.bar region is not set", ErrConfigInvalid)
	}
	return nil
}

// Ready reports why the patrol loop cannot run, or nil.
func (p PatrolConfig) Ready() error {
	if p.Minimap.Empty() || !p.Circle.Valid() {
		return fmt.Errorf("%w: patrol.minimap region or patrol.circle is not set", ErrConfigInvalid)
	}
	return nil
}
