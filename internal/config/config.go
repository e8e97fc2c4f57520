// Package config turns viper settings into a typed, validated Config and
// builds the process logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Viper keys and their defaults.
const (
	KeyWorkers      = "workers"
	KeyAddress      = "address"
	KeyPort         = "port"
	KeyLogLevel     = "log_level"
	KeyWorkDir      = "work_dir"
	KeyPython       = "python"
	KeyOTelEndpoint = "otel_endpoint"

	DefaultWorkers = 1
	DefaultAddress = "127.0.0.1"
	DefaultPort    = 8080
	DefaultPython  = "python3"
)

var (
	ErrInvalidWorkers = errors.New("workers must be at least 1")
	ErrInvalidPort    = errors.New("port must be between 1 and 65535")
)

// Config holds application configuration.
type Config struct {
	Workers      int
	Address      string
	Port         int
	LogLevel     slog.Level
	WorkDir      string
	Python       string
	OTelEndpoint string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyWorkers, DefaultWorkers)
	v.SetDefault(KeyAddress, DefaultAddress)
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyPython, DefaultPython)
}

// Load reads all values from the given viper instance.
func Load(v *viper.Viper) Config {
	return Config{
		Workers:      v.GetInt(KeyWorkers),
		Address:      v.GetString(KeyAddress),
		Port:         v.GetInt(KeyPort),
		LogLevel:     parseLogLevel(v.GetString(KeyLogLevel)),
		WorkDir:      v.GetString(KeyWorkDir),
		Python:       v.GetString(KeyPython),
		OTelEndpoint: v.GetString(KeyOTelEndpoint),
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Port)
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
