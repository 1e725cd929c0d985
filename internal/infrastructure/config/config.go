package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Shell       Shell       `mapstructure:"shell"`
	Backend     Backend     `mapstructure:"backend"`
	Readiness   Readiness   `mapstructure:"readiness"`
	API         API         `mapstructure:"api"`
	Preferences Preferences `mapstructure:"preferences"`
}

// Shell configuration
type Shell struct {
	RootDir  string `mapstructure:"rootDir"`
	BasePort int    `mapstructure:"basePort"`
	MaxPort  int    `mapstructure:"maxPort"`
}

// Backend describes where the backend lives in both layouts
type Backend struct {
	DistDir     string `mapstructure:"distDir"`
	Binary      string `mapstructure:"binary"`
	Interpreter string `mapstructure:"interpreter"`
	Script      string `mapstructure:"script"`
}

// Readiness configuration
type Readiness struct {
	Attempts    int           `mapstructure:"attempts"`
	Interval    time.Duration `mapstructure:"-"`
	Backoff     bool          `mapstructure:"backoff"`
	MaxInterval time.Duration `mapstructure:"-"`
}

// API configuration
type API struct {
	URL string `mapstructure:"url"`
}

// Preferences configuration
type Preferences struct {
	Path string `mapstructure:"path"`
}

const (
	DefaultBasePort          = 8000
	DefaultMaxPort           = 65000
	DefaultReadinessAttempts = 30
	DefaultReadinessInterval = time.Second
	DefaultDistDir           = "dist"
	DefaultBinary            = "perfi"
	DefaultInterpreter       = "python"
	DefaultScript            = "app_main.py"
)

// LoadConfig loads configuration from YAML file
// Uses CONFIG_ENV environment variable to determine which config file to load
func LoadConfig(configDir string) (*Config, error) {
	configEnv := os.Getenv("CONFIG_ENV")
	if configEnv == "" {
		configEnv = "local"
	}

	// A .env next to the config files fills variables the OS does not set
	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Load base app-config.yaml as template/defaults (if it exists)
	baseConfigPath := filepath.Join(configDir, "app-config.yaml")
	baseConfigExists := false
	if _, err := os.Stat(baseConfigPath); err == nil {
		v.SetConfigFile(baseConfigPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read base config file: %w", err)
		}
		baseConfigExists = true
	}

	// Load environment-specific config (e.g., local.yaml when CONFIG_ENV=local)
	envConfigPath := filepath.Join(configDir, configEnv+".yaml")
	if _, err := os.Stat(envConfigPath); err == nil {
		v.SetConfigFile(envConfigPath)
		if baseConfigExists {
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to merge env config file: %w", err)
			}
		} else if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read env config file: %w", err)
		}
	}

	v.SetEnvPrefix("PERFI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("shell.rootDir", "PERFI_SHELL_ROOT_DIR", "PERFI_ROOT")
	_ = v.BindEnv("shell.basePort", "PERFI_SHELL_BASE_PORT")
	_ = v.BindEnv("shell.maxPort", "PERFI_SHELL_MAX_PORT")
	_ = v.BindEnv("readiness.attempts", "PERFI_READINESS_ATTEMPTS")
	_ = v.BindEnv("readiness.interval", "PERFI_READINESS_INTERVAL")
	_ = v.BindEnv("readiness.backoff", "PERFI_READINESS_BACKOFF")
	_ = v.BindEnv("readiness.maxInterval", "PERFI_READINESS_MAX_INTERVAL")
	_ = v.BindEnv("api.url", "PERFI_API_URL", "VITE_BACKEND_URL")
	_ = v.BindEnv("preferences.path", "PERFI_PREFERENCES_PATH")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set defaults if not provided
	if cfg.Shell.BasePort == 0 {
		cfg.Shell.BasePort = DefaultBasePort
	}
	if cfg.Shell.MaxPort == 0 {
		cfg.Shell.MaxPort = DefaultMaxPort
	}
	if cfg.Shell.BasePort > cfg.Shell.MaxPort {
		return nil, fmt.Errorf("shell.basePort %d is above shell.maxPort %d", cfg.Shell.BasePort, cfg.Shell.MaxPort)
	}
	if cfg.Shell.RootDir == "" {
		cfg.Shell.RootDir = defaultRootDir()
	}
	if cfg.Backend.DistDir == "" {
		cfg.Backend.DistDir = DefaultDistDir
	}
	if cfg.Backend.Binary == "" {
		cfg.Backend.Binary = DefaultBinary
	}
	if cfg.Backend.Interpreter == "" {
		cfg.Backend.Interpreter = DefaultInterpreter
	}
	if cfg.Backend.Script == "" {
		cfg.Backend.Script = DefaultScript
	}
	if cfg.Readiness.Attempts <= 0 {
		cfg.Readiness.Attempts = DefaultReadinessAttempts
	}
	if cfg.Preferences.Path == "" {
		cfg.Preferences.Path = defaultPreferencesPath()
	}

	// Durations come either as "1s" style strings or as plain seconds
	cfg.Readiness.Interval = DefaultReadinessInterval
	if d, ok := parseDuration(v.GetString("readiness.interval")); ok {
		cfg.Readiness.Interval = d
	}
	cfg.Readiness.MaxInterval = cfg.Readiness.Interval
	if d, ok := parseDuration(v.GetString("readiness.maxInterval")); ok {
		cfg.Readiness.MaxInterval = d
	}
	if cfg.Readiness.MaxInterval < cfg.Readiness.Interval {
		cfg.Readiness.MaxInterval = cfg.Readiness.Interval
	}

	return &cfg, nil
}

func parseDuration(s string) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}
	if parsed, err := time.ParseDuration(s); err == nil && parsed > 0 {
		return parsed, true
	}
	if seconds, err := strconv.Atoi(s); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second, true
	}
	return 0, false
}

// defaultRootDir is the directory holding the shell executable, which is
// where the packaged layout keeps its dist directory.
func defaultRootDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func defaultPreferencesPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "perfi", "preferences.yaml")
}
