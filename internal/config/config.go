package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/soulbound/soulbound-server/internal/game"
)

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Game      game.Config     `mapstructure:"game"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Journal   JournalConfig   `mapstructure:"journal"`
}

// ServerConfig configures the network listeners.
type ServerConfig struct {
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	// JoinPasswordHash is an optional bcrypt hash clients must match to join.
	JoinPasswordHash string        `mapstructure:"join_password_hash"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
}

// WebSocketConfig configures the game transport.
type WebSocketConfig struct {
	Address        string        `mapstructure:"address"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	RequestBuffer  int           `mapstructure:"request_buffer"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	PongTimeout    time.Duration `mapstructure:"pong_timeout"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

// GRPCConfig configures the health/admin listener.
type GRPCConfig struct {
	Address              string `mapstructure:"address"`
	MaxConcurrentStreams int    `mapstructure:"max_concurrent_streams"`
	Reflection           bool   `mapstructure:"reflection"`
}

// CatalogConfig selects where card definitions are loaded from.
type CatalogConfig struct {
	Source string `mapstructure:"source"` // "file" or "postgres"
	Path   string `mapstructure:"path"`
}

// DatabaseConfig configures the PostgreSQL card catalog.
type DatabaseConfig struct {
	URL         string        `mapstructure:"url"`
	MaxConns    int32         `mapstructure:"max_conns"`
	ConnTimeout time.Duration `mapstructure:"conn_timeout"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File enables a rotating log file next to stderr output.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	ServiceName  string  `mapstructure:"service_name"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"` // full URL, e.g. http://localhost:4318
	SampleRatio  float64 `mapstructure:"sample_ratio"` // >= 1 samples all, <= 0 none
}

// JournalConfig configures the session event journal.
type JournalConfig struct {
	// Dir receives <session>.journal files; empty disables the journal.
	Dir string `mapstructure:"dir"`
}

const envPrefix = "SOULBOUND"

// Load reads configuration from path (optional) and SOULBOUND_* environment
// variables on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case "file":
		if c.Catalog.Path == "" {
			return fmt.Errorf("invalid config: catalog.path is required for the file source")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("invalid config: database.url is required for the postgres source")
		}
	default:
		return fmt.Errorf("invalid config: unknown catalog.source %q", c.Catalog.Source)
	}
	if c.Game.MinPlayers < 1 {
		return fmt.Errorf("invalid config: game.min_players must be at least 1")
	}
	if c.Game.HandLimit < 0 || c.Game.BonusHandLimit < c.Game.HandLimit {
		return fmt.Errorf("invalid config: game.bonus_hand_limit must be at least game.hand_limit")
	}
	if c.Server.WebSocket.SendBuffer < 1 || c.Server.WebSocket.RequestBuffer < 1 {
		return fmt.Errorf("invalid config: websocket buffers must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.send_buffer", 64)
	v.SetDefault("server.websocket.request_buffer", 128)
	v.SetDefault("server.websocket.write_timeout", 10*time.Second)
	v.SetDefault("server.websocket.pong_timeout", 60*time.Second)
	v.SetDefault("server.websocket.max_message_size", 4096)
	v.SetDefault("server.grpc.address", ":9090")
	v.SetDefault("server.grpc.max_concurrent_streams", 100)
	v.SetDefault("server.grpc.reflection", true)
	v.SetDefault("server.join_password_hash", "")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	defaults := game.DefaultConfig()
	v.SetDefault("game.min_players", defaults.MinPlayers)
	v.SetDefault("game.starting_hand", defaults.StartingHand)
	v.SetDefault("game.turn_draw", defaults.TurnDraw)
	v.SetDefault("game.hand_limit", defaults.HandLimit)
	v.SetDefault("game.bonus_hand_limit", defaults.BonusHandLimit)

	v.SetDefault("catalog.source", "file")
	v.SetDefault("catalog.path", "config/cards.yaml")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.conn_timeout", 5*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 7)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "soulbound-server")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.sample_ratio", 1.0)

	v.SetDefault("journal.dir", "")
}
