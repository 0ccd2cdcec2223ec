package bootstrap

import (
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when read from the environment.
const EnvPrefix = "OTHELLO"

type Config struct {
    ServerHost        string        `mapstructure:"SERVER_HOST"`
    ServerPort        int           `mapstructure:"SERVER_PORT"`
    LogLevel          string        `mapstructure:"LOG_LEVEL"`
    Dev               bool          `mapstructure:"DEV"`
    HeartbeatInterval time.Duration `mapstructure:"HEARTBEAT_INTERVAL"`
    SubscriberBuffer  int           `mapstructure:"SUBSCRIBER_BUFFER"`
    ShutdownTimeout   time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var ErrInvalidConfig = errors.New("invalid config")

func defaults(v *viper.Viper) {
    v.SetDefault("SERVER_HOST", "localhost")
    v.SetDefault("SERVER_PORT", 8080)
    v.SetDefault("LOG_LEVEL", "info")
    v.SetDefault("DEV", false)
    v.SetDefault("HEARTBEAT_INTERVAL", 15*time.Second)
    v.SetDefault("SUBSCRIBER_BUFFER", 1)
    v.SetDefault("SHUTDOWN_TIMEOUT", 5*time.Second)
}

// Setup reads cfgPath (skipped when empty), then OTHELLO_* environment
// variables, on top of the defaults.
func Setup(cfgPath string) (*Config, error) {
    v := viper.New()
    defaults(v)

    v.SetEnvPrefix(EnvPrefix)
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
    v.AutomaticEnv()

    if cfgPath != "" {
        v.SetConfigFile(cfgPath)
        if err := v.ReadInConfig(); err != nil {
            return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
        }
    }

    var cfg Config
    if err := v.Unmarshal(&cfg); err != nil {
        return nil, fmt.Errorf("decode config: %w", err)
    }
    if err := cfg.Validate(); err != nil {
        return nil, err
    }
    return &cfg, nil
}

func (c *Config) Validate() error {
    if c.ServerPort < 1 || c.ServerPort > 65535 {
        return fmt.Errorf("%w: SERVER_PORT %d out of range", ErrInvalidConfig, c.ServerPort)
    }
    if c.SubscriberBuffer < 1 {
        return fmt.Errorf("%w: SUBSCRIBER_BUFFER must be at least 1", ErrInvalidConfig)
    }
    if c.HeartbeatInterval <= 0 {
        return fmt.Errorf("%w: HEARTBEAT_INTERVAL must be positive", ErrInvalidConfig)
    }
    if c.ShutdownTimeout <= 0 {
        return fmt.Errorf("%w: SHUTDOWN_TIMEOUT must be positive", ErrInvalidConfig)
    }
    return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
    return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}
