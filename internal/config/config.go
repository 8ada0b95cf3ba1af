package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/internal/hours"
)

// Config represents application configuration
type Config struct {
	Calendar CalendarConfig `mapstructure:"calendar"`
	Hours    HoursConfig    `mapstructure:"hours"`
	Slots    SlotsConfig    `mapstructure:"slots"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// CalendarConfig represents jurisdiction and override configuration
type CalendarConfig struct {
	State         string `mapstructure:"state"`          // Two-letter German state code, default HE
	OverridesFile string `mapstructure:"overrides_file"` // Optional company closures file
	Timezone      string `mapstructure:"timezone"`       // IANA zone of the business, e.g. Europe/Berlin; empty means local
}

// HoursConfig represents business hours (HH:MM)
type HoursConfig struct {
	OpenTime   string `mapstructure:"open_time"`
	CloseTime  string `mapstructure:"close_time"`
	LunchStart string `mapstructure:"lunch_start"`
	LunchEnd   string `mapstructure:"lunch_end"`
	LunchCheck string `mapstructure:"lunch_check"` // "hour" or "range"
}

// SlotsConfig represents appointment slot generation
type SlotsConfig struct {
	DurationMinutes  int `mapstructure:"duration_minutes"`
	MinNoticeMinutes int `mapstructure:"min_notice_minutes"`
}

// RemoteConfig represents the holiday API used for cross-checks
type RemoteConfig struct {
	URL      string `mapstructure:"url"`
	CacheTTL string `mapstructure:"cache_ttl"`
	Timeout  string `mapstructure:"timeout"`
}

// ServerConfig represents HTTP API configuration
type ServerConfig struct {
	Addr            string `mapstructure:"addr"`
	ReadTimeout     string `mapstructure:"read_timeout"`
	WriteTimeout    string `mapstructure:"write_timeout"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
	MetricsEnabled  bool   `mapstructure:"metrics_enabled"`
	MetricsPath     string `mapstructure:"metrics_path"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	std := hours.StandardHours()

	v.SetDefault("calendar.state", calendar.DefaultState)
	v.SetDefault("calendar.overrides_file", "")
	v.SetDefault("calendar.timezone", "")
	v.SetDefault("hours.open_time", std.OpenTime)
	v.SetDefault("hours.close_time", std.CloseTime)
	v.SetDefault("hours.lunch_start", std.LunchStart)
	v.SetDefault("hours.lunch_end", std.LunchEnd)
	v.SetDefault("hours.lunch_check", string(std.LunchCheck))
	v.SetDefault("slots.duration_minutes", 30)
	v.SetDefault("slots.min_notice_minutes", 60)
	v.SetDefault("remote.url", calendar.DefaultRemoteURL)
	v.SetDefault("remote.cache_ttl", "24h")
	v.SetDefault("remote.timeout", "10s")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.metrics_enabled", true)
	v.SetDefault("server.metrics_path", "/metrics")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Load loads configuration from file.
// An explicit path must exist; without one the default locations are searched
// and defaults apply when no file is found.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.business-calendar")
		v.AddConfigPath("/etc/business-calendar")
	}

	// Read environment variables, e.g. BUSINESS_CALENDAR_CALENDAR_STATE=BY
	v.SetEnvPrefix("BUSINESS_CALENDAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Calendar.State = strings.ToUpper(strings.TrimSpace(config.Calendar.State))

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := calendar.ParseJurisdiction(c.Calendar.State); err != nil {
		return fmt.Errorf("calendar.state: %w", err)
	}
	if c.Calendar.Timezone != "" {
		if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
			return fmt.Errorf("calendar.timezone: %w", err)
		}
	}

	if err := c.Hours.Policy().Validate(); err != nil {
		return fmt.Errorf("hours: %w", err)
	}

	if c.Slots.DurationMinutes <= 0 {
		return fmt.Errorf("slots.duration_minutes must be positive")
	}
	if c.Slots.MinNoticeMinutes < 0 {
		return fmt.Errorf("slots.min_notice_minutes must not be negative")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MetricsEnabled && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		return fmt.Errorf("server.metrics_path must start with '/', got '%s'", c.Server.MetricsPath)
	}

	return nil
}

// Jurisdiction returns the configured state
func (c *CalendarConfig) Jurisdiction() calendar.Jurisdiction {
	return calendar.Jurisdiction{State: c.State}
}

// Location returns the configured time zone, falling back to the local zone
func (c *CalendarConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Policy converts the configured hours into a business hours policy
func (h *HoursConfig) Policy() hours.Policy {
	return hours.Policy{
		OpenTime:   h.OpenTime,
		CloseTime:  h.CloseTime,
		LunchStart: h.LunchStart,
		LunchEnd:   h.LunchEnd,
		LunchCheck: hours.LunchCheck(h.LunchCheck),
	}
}

// GetCacheTTL returns remote cache TTL duration
func (c *RemoteConfig) GetCacheTTL() time.Duration {
	return parseDuration(c.CacheTTL, 24*time.Hour)
}

// GetTimeout returns remote HTTP timeout
func (c *RemoteConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 10*time.Second)
}

// GetReadTimeout returns the HTTP server read timeout
func (c *ServerConfig) GetReadTimeout() time.Duration {
	return parseDuration(c.ReadTimeout, 5*time.Second)
}

// GetWriteTimeout returns the HTTP server write timeout
func (c *ServerConfig) GetWriteTimeout() time.Duration {
	return parseDuration(c.WriteTimeout, 10*time.Second)
}

// GetShutdownTimeout returns the graceful shutdown timeout
func (c *ServerConfig) GetShutdownTimeout() time.Duration {
	return parseDuration(c.ShutdownTimeout, 10*time.Second)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}
