package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server and CLI configuration.
type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Transport   TransportConfig `yaml:"transport"`
	Store       StoreConfig     `yaml:"store"`
	Log         LogConfig       `yaml:"log"`
	Tracking    TrackingConfig  `yaml:"tracking"`
	Reports     ReportsConfig   `yaml:"reports"`
	Reminders   RemindersConfig `yaml:"reminders"`
	Notify      NotifyConfig    `yaml:"notify"`
	DefaultUser string          `yaml:"default_user"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how MCP is served: "stdio" or "http". REST is only
// served in http mode.
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type StoreConfig struct {
	// Driver is "sqlite" or "buntdb".
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	// Watch enables the file watcher that picks up writes from other processes.
	Watch bool `yaml:"watch"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type TrackingConfig struct {
	Timezone         string  `yaml:"timezone"`
	StaleClosePolicy string  `yaml:"stale_close_policy"`
	MaxShiftHours    float64 `yaml:"max_shift_hours"`
}

type ReportsConfig struct {
	WeekStart string `yaml:"week_start"`
}

type RemindersConfig struct {
	Enabled       bool          `yaml:"enabled"`
	CheckInterval time.Duration `yaml:"check_interval"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type NotifyConfig struct {
	// Command is run per reminder, e.g. "notify-send {title} {message}".
	// "desktop" picks the platform notifier; empty logs only.
	Command string `yaml:"command"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "timeclock.db",
			Watch:  true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Tracking: TrackingConfig{
			Timezone:         "Local",
			StaleClosePolicy: "end_of_day",
			MaxShiftHours:    10,
		},
		Reports: ReportsConfig{
			WeekStart: "sunday",
		},
		Reminders: RemindersConfig{
			Enabled:       true,
			CheckInterval: time.Minute,
			SweepInterval: 15 * time.Minute,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("TIMECLOCK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("TIMECLOCK_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("TIMECLOCK_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid TIMECLOCK_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("TIMECLOCK_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if driver := os.Getenv("TIMECLOCK_STORE_DRIVER"); driver != "" {
		cfg.Store.Driver = driver
	}
	if path := os.Getenv("TIMECLOCK_STORE_PATH"); path != "" {
		cfg.Store.Path = path
	}
	if watch := os.Getenv("TIMECLOCK_STORE_WATCH"); watch != "" {
		v, err := strconv.ParseBool(watch)
		if err != nil {
			return fmt.Errorf("invalid TIMECLOCK_STORE_WATCH: %w", err)
		}
		cfg.Store.Watch = v
	}
	if level := os.Getenv("TIMECLOCK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if path := os.Getenv("TIMECLOCK_LOG_PATH"); path != "" {
		cfg.Log.Path = path
	}
	if tz := os.Getenv("TIMECLOCK_TIMEZONE"); tz != "" {
		cfg.Tracking.Timezone = tz
	}
	if policy := os.Getenv("TIMECLOCK_STALE_CLOSE_POLICY"); policy != "" {
		cfg.Tracking.StaleClosePolicy = policy
	}
	if enabled := os.Getenv("TIMECLOCK_REMINDERS_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid TIMECLOCK_REMINDERS_ENABLED: %w", err)
		}
		cfg.Reminders.Enabled = v
	}
	if cmd := os.Getenv("TIMECLOCK_NOTIFY_COMMAND"); cmd != "" {
		cfg.Notify.Command = cmd
	}
	if user := os.Getenv("TIMECLOCK_USER"); user != "" {
		cfg.DefaultUser = user
	}
	return nil
}

// Validate rejects settings the services cannot run with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q: want stdio or http", c.Transport.Mode)
	}
	switch c.Store.Driver {
	case "sqlite", "buntdb":
	default:
		return fmt.Errorf("invalid store driver %q: want sqlite or buntdb", c.Store.Driver)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store path is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Tracking.MaxShiftHours < 0 {
		return fmt.Errorf("max_shift_hours must not be negative")
	}
	if c.Reminders.CheckInterval < 0 || c.Reminders.SweepInterval < 0 {
		return fmt.Errorf("reminder intervals must not be negative")
	}
	return nil
}

// Location resolves the tracking timezone.
func (c Config) Location() (*time.Location, error) {
	switch c.Tracking.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Tracking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Tracking.Timezone, err)
	}
	return loc, nil
}

// MaxShift returns the max_shift policy cap as a duration.
func (c Config) MaxShift() time.Duration {
	return time.Duration(c.Tracking.MaxShiftHours * float64(time.Hour))
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
