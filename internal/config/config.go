package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Cookie  CookieConfig  `mapstructure:"cookie"`
	Stub    StubConfig    `mapstructure:"stub"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig locates the remote CarePoint backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ChatConfig carries the send-flow pacing knobs.
type ChatConfig struct {
	ReplyDelay     time.Duration `mapstructure:"reply_delay"`
	MedicinePacing time.Duration `mapstructure:"medicine_pacing"`
}

// CookieConfig controls the auth cookie.
type CookieConfig struct {
	// Secure marks the cookie secure; set in production-like environments.
	Secure bool `mapstructure:"secure"`
	// JarPath is where the CLI keeps its cookie jar file.
	JarPath string `mapstructure:"jar_path"`
}

// StubConfig configures the local stub backend.
type StubConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	DatabasePath string        `mapstructure:"database_path"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the stub's listen address.
func (c StubConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// API
	v.SetDefault("api.base_url", "http://localhost:5000")
	v.SetDefault("api.timeout", "30s")

	// Chat pacing
	v.SetDefault("chat.reply_delay", "500ms")
	v.SetDefault("chat.medicine_pacing", "1s")

	// Cookie
	v.SetDefault("cookie.secure", false)
	v.SetDefault("cookie.jar_path", defaultJarPath())

	// Stub backend
	v.SetDefault("stub.host", "0.0.0.0")
	v.SetDefault("stub.port", 5000)
	v.SetDefault("stub.database_path", "carepoint-stub.db")
	v.SetDefault("stub.read_timeout", "30s")
	v.SetDefault("stub.write_timeout", "30s")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("api.base_url", "CAREPOINT_API_URL")
	v.BindEnv("cookie.secure", "CAREPOINT_COOKIE_SECURE")
	v.BindEnv("cookie.jar_path", "CAREPOINT_COOKIE_JAR")
	v.BindEnv("stub.port", "CAREPOINT_STUB_PORT")
	v.BindEnv("stub.database_path", "CAREPOINT_STUB_DB")
	v.BindEnv("logging.level", "LOG_LEVEL")
}

func defaultJarPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".carepoint/cookies.json"
	}
	return filepath.Join(home, ".carepoint", "cookies.json")
}
