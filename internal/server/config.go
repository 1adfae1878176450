package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"taskhub/internal/domain/errors"
	"taskhub/internal/logger"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type Config struct {
	ServiceName     string
	Addr            string
	Port            int
	Env             string
	LogLevel        string
	EnableGzip      bool
	ShutdownTimeout time.Duration
}

// fileConfig is the on-disk shape. Unset keys leave the defaults alone.
type fileConfig struct {
	ServiceName     string `json:"service_name" toml:"service_name"`
	Addr            string `json:"addr" toml:"addr"`
	Port            int    `json:"port" toml:"port"`
	Env             string `json:"env" toml:"env"`
	LogLevel        string `json:"log_level" toml:"log_level"`
	EnableGzip      *bool  `json:"enable_gzip" toml:"enable_gzip"`
	ShutdownTimeout string `json:"shutdown_timeout" toml:"shutdown_timeout"`
}

const (
	defaultServiceName     = "taskhub"
	defaultAddr            = "0.0.0.0"
	defaultPort            = 8080
	defaultEnv             = "development"
	defaultLogLevel        = "info"
	defaultShutdownTimeout = 30 * time.Second
)

// DefaultConfig is used when no configuration source sets a value.
var DefaultConfig = Config{
	ServiceName:     defaultServiceName,
	Addr:            defaultAddr,
	Port:            defaultPort,
	Env:             defaultEnv,
	LogLevel:        defaultLogLevel,
	EnableGzip:      true,
	ShutdownTimeout: defaultShutdownTimeout,
}

// ListenAddr is the host:port the HTTP server binds.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Addr, c.Port)
}

// ReadConfig layers defaults, a config file, .env, the environment and
// command-line flags, later sources winning.
func ReadConfig(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("taskhub", pflag.ContinueOnError)
	addr := fs.String("addr", defaultAddr, "server address")
	port := fs.Int("port", defaultPort, "server port")
	env := fs.String("env", defaultEnv, "environment (development or production)")
	logLevel := fs.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	gzipOn := fs.Bool("gzip", true, "enable gzip request and response compression")
	shutdown := fs.Duration("shutdown-timeout", defaultShutdownTimeout, "graceful shutdown timeout")
	configFile := fs.StringP("config", "c", "", "path to a JSON or TOML config file")
	envFile := fs.String("env-file", ".env", "path to a dotenv file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := DefaultConfig

	path := *configFile
	if path == "" {
		path = os.Getenv("CONFIG")
	}
	if path != "" {
		fileCfg, err := loadConfigFile(path)
		if err != nil {
			logger.Warn("config file ignored", zap.String("path", path), zap.Error(err))
		} else {
			mergeConfig(&cfg, fileCfg)
		}
	}

	if err := godotenv.Load(*envFile); err != nil {
		logger.Debug("dotenv file not loaded", zap.String("path", *envFile), zap.Error(err))
	}
	applyEnvOverrides(&cfg)

	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "port":
			cfg.Port = *port
		case "env":
			cfg.Env = *env
		case "log-level":
			cfg.LogLevel = *logLevel
		case "gzip":
			cfg.EnableGzip = *gzipOn
		case "shutdown-timeout":
			cfg.ShutdownTimeout = *shutdown
		}
	})

	return &cfg, nil
}

func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", errors.ErrConfigFileReadFailed, path, err)
	}

	var fileCfg fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &fileCfg); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrConfigParseFailed, err)
		}
	default:
		if err := json.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrConfigParseFailed, err)
		}
	}
	logger.Info("config file loaded", zap.String("path", path))
	return &fileCfg, nil
}

func mergeConfig(dst *Config, src *fileConfig) {
	if src.ServiceName != "" {
		dst.ServiceName = src.ServiceName
	}
	if src.Addr != "" {
		dst.Addr = src.Addr
	}
	if src.Port != 0 {
		dst.Port = src.Port
	}
	if src.Env != "" {
		dst.Env = src.Env
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.EnableGzip != nil {
		dst.EnableGzip = *src.EnableGzip
	}
	if src.ShutdownTimeout != "" {
		if d, err := time.ParseDuration(src.ShutdownTimeout); err != nil {
			logger.Warn(errors.ErrConfigInvalidFormat.Error(), zap.String("shutdown_timeout", src.ShutdownTimeout))
		} else {
			dst.ShutdownTimeout = d
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	if name := os.Getenv("SERVICE_NAME"); name != "" {
		cfg.ServiceName = name
	}
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err != nil {
			logger.Warn(errors.ErrConfigInvalidFormat.Error(), zap.String("PORT", port))
		} else if p < 1 || p > 65535 {
			logger.Warn(errors.ErrConfigInvalidFormat.Error()+": port must be between 1 and 65535", zap.Int("PORT", p))
		} else {
			cfg.Port = p
		}
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.Env = env
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if gz := os.Getenv("ENABLE_GZIP"); gz != "" {
		if on, err := strconv.ParseBool(gz); err != nil {
			logger.Warn(errors.ErrConfigInvalidFormat.Error(), zap.String("ENABLE_GZIP", gz))
		} else {
			cfg.EnableGzip = on
		}
	}
	if timeout := os.Getenv("SHUTDOWN_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err != nil {
			logger.Warn(errors.ErrConfigInvalidFormat.Error(), zap.String("SHUTDOWN_TIMEOUT", timeout))
		} else {
			cfg.ShutdownTimeout = d
		}
	}
}
