package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	GIS       GISConfig       `mapstructure:"gis"`
	Plots     PlotsConfig     `mapstructure:"plots"`
	Review    ReviewConfig    `mapstructure:"review"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	BodyLimitMB  int `mapstructure:"body_limit_mb"`
}

type DatabaseConfig struct {
	// URL, when set, wins over the discrete fields.
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// AuthConfig carries the admin login pair. There are no defaults on
// purpose: a deployment that does not set them does not start.
type AuthConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type CORSConfig struct {
	AllowOrigins string `mapstructure:"allow_origins"`
}

// GISConfig holds the basemap calibration offsets, applied in the
// projected system before re-projection. Both the plot listing and the
// submission response read this one pair.
type GISConfig struct {
	NudgeX float64 `mapstructure:"nudge_x"`
	NudgeY float64 `mapstructure:"nudge_y"`
}

// PlotsConfig controls which legacy/test plot numbers are hidden from
// the listing.
type PlotsConfig struct {
	Exclude []string `mapstructure:"exclude"`
}

// ReviewConfig names the derived-status labels that vary between
// deployments: the label for a rejected-or-pending review flag (false)
// and for a submitted-but-unreviewed one (NULL).
type ReviewConfig struct {
	PendingLabel    string `mapstructure:"pending_label"`
	UnreviewedLabel string `mapstructure:"unreviewed_label"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 10000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.body_limit_mb", 50)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "ministry")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "ministry")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("cors.allow_origins", "http://localhost:5173")
	v.SetDefault("gis.nudge_x", 71.69)
	v.SetDefault("gis.nudge_y", -57.74)
	v.SetDefault("plots.exclude", []string{"PLOT-001"})
	v.SetDefault("review.pending_label", "PENDING")
	v.SetDefault("review.unreviewed_label", "NOT_APPROVED")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: MINISTRY_DATABASE_HOST → database.host
	v.SetEnvPrefix("MINISTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.BodyLimitMB <= 0 {
		errs = append(errs, "server.body_limit_mb must be positive")
	}
	if c.Database.URL == "" {
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	}
	if c.Review.PendingLabel == "" {
		errs = append(errs, "review.pending_label is required")
	}
	if c.Review.UnreviewedLabel == "" {
		errs = append(errs, "review.unreviewed_label is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// RequireAuth checks the admin credential pair. There are no defaults
// on purpose: the API refuses to start without them. Maintenance
// commands that never serve a login do not call this.
func (c *Config) RequireAuth() error {
	if c.Auth.Username == "" || c.Auth.Password == "" {
		return fmt.Errorf("auth.username and auth.password are required (no default is shipped)")
	}
	return nil
}
