package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

type Config struct {
	Sync   SyncConfig   `mapstructure:"sync"`
	Tasks  TasksConfig  `mapstructure:"tasks"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Server ServerConfig `mapstructure:"server"`
}

type SyncConfig struct {
	// LookaheadDays is how far past now the events window extends.
	LookaheadDays int `mapstructure:"lookahead_days"`
}

type TasksConfig struct {
	// Lists is the allow-list of task-list names. Lists not named here
	// contribute no tasks at all.
	Lists []string `mapstructure:"lists"`
}

type AuthConfig struct {
	// CredentialsFile overrides the default credentials.json location.
	CredentialsFile string `mapstructure:"credentials_file"`
	// CallbackTimeoutMinutes bounds the wait for the OAuth redirect.
	CallbackTimeoutMinutes int `mapstructure:"callback_timeout_minutes"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

var defaultConfig = Config{
	Sync: SyncConfig{
		LookaheadDays: 60,
	},
	Tasks: TasksConfig{
		Lists: []string{},
	},
	Auth: AuthConfig{
		CredentialsFile:        "",
		CallbackTimeoutMinutes: 5,
	},
	Server: ServerConfig{
		Listen: "127.0.0.1:8275",
	},
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigName("config")

	if configPath == "" {
		configPath = DefaultConfigDir()
	}

	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createDefaultConfig(configPath); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
			if err := v.ReadInConfig(); err != nil {
				// Still unreadable, fall back to compiled-in defaults
				cfg := defaultConfig
				return &cfg, nil
			}
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sync.lookahead_days", defaultConfig.Sync.LookaheadDays)
	v.SetDefault("tasks.lists", defaultConfig.Tasks.Lists)
	v.SetDefault("auth.credentials_file", defaultConfig.Auth.CredentialsFile)
	v.SetDefault("auth.callback_timeout_minutes", defaultConfig.Auth.CallbackTimeoutMinutes)
	v.SetDefault("server.listen", defaultConfig.Server.Listen)
}

func createDefaultConfig(configPath string) error {
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.toml")

	if _, err := os.Stat(configFile); err == nil {
		return nil // already exists
	}

	configContent := `# calwid configuration

[sync]
lookahead_days = 60  # events window extends this many days past now

[tasks]
lists = []           # task-list names to include, e.g. ["My Tasks"]

[auth]
credentials_file = ""          # default: <config dir>/credentials.json
callback_timeout_minutes = 5   # how long to wait for the OAuth redirect

[server]
listen = "127.0.0.1:8275"
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfigDir is where config.toml and credentials.json live.
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "calwid")
}

// DefaultDataDir is where token.json and cache.json live.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "calwid")
}
