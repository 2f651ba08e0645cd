package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix             = "COMMENTGUESSER"
	defaultHTTPAddress    = "0.0.0.0:8000"
	defaultDatabasePath   = "game_data.db"
	defaultLogLevel       = "info"
	defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"
	defaultPoolTargetSize = 20
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress    string
	DatabasePath   string
	LogLevel       string
	YouTubeAPIKey  string
	YouTubeBaseURL string
	PoolTargetSize int
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("youtube.base_url", defaultYouTubeBaseURL)
	configViper.SetDefault("pool.target_size", defaultPoolTargetSize)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:    configViper.GetString("http.address"),
		DatabasePath:   configViper.GetString("database.path"),
		LogLevel:       configViper.GetString("log.level"),
		YouTubeAPIKey:  configViper.GetString("youtube.api_key"),
		YouTubeBaseURL: configViper.GetString("youtube.base_url"),
		PoolTargetSize: configViper.GetInt("pool.target_size"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.YouTubeAPIKey) == "" {
		return fmt.Errorf("youtube.api_key is required")
	}
	if strings.TrimSpace(c.YouTubeBaseURL) == "" {
		return fmt.Errorf("youtube.base_url is required")
	}
	if c.PoolTargetSize <= 0 {
		return fmt.Errorf("pool.target_size must be positive")
	}
	return nil
}
