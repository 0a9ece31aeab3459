// Package config loads settings from ~/.entertainbot/config.toml and the
// EB_ environment, with defaults for everything except the API key.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configDirName  = ".entertainbot"
	configName     = "config"
	configType     = "toml"
	envPrefix      = "EB"
	EnvAPIKey      = "EB_OPENROUTER_API_KEY"
	DefaultModel   = "openai/gpt-4o-mini"
	DefaultBaseURL = "https://openrouter.ai/api/v1"
)

// OpenRouter holds the model endpoint settings.
type OpenRouter struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
}

// Source holds the settings for one outbound entertainment API.
type Source struct {
	BaseURL      string
	MinInterval  time.Duration
	Timeout      time.Duration
	MaxAttempts  int
	CacheTTL     time.Duration
	CacheMaxSize int
}

// Memory holds the Chroma connection settings. An empty URL disables the
// memory collaborator.
type Memory struct {
	URL        string
	Collection string
	MaxResults int
}

// Sessions holds session table settings.
type Sessions struct {
	TTL        time.Duration
	MaxHistory int
}

type Config struct {
	OpenRouter  OpenRouter
	Jikan       Source
	TVMaze      Source
	OpenLibrary Source
	Memory      Memory
	Sessions    Sessions
	// LogDir receives per-session conversation logs.
	LogDir string
	// LogLevel is debug, info, warn, or error.
	LogLevel string
}

// Load reads the config file if present and applies EB_ environment
// overrides. A missing config file is not an error; a malformed one is.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, configDirName)

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		OpenRouter: OpenRouter{
			APIKey:      v.GetString("openrouter.api_key"),
			Model:       v.GetString("openrouter.model"),
			BaseURL:     v.GetString("openrouter.base_url"),
			Timeout:     v.GetDuration("openrouter.timeout"),
			MaxAttempts: v.GetInt("openrouter.max_attempts"),
		},
		Jikan:       sourceFromKeys(v, "jikan"),
		TVMaze:      sourceFromKeys(v, "tvmaze"),
		OpenLibrary: sourceFromKeys(v, "openlibrary"),
		Memory: Memory{
			URL:        v.GetString("memory.url"),
			Collection: v.GetString("memory.collection"),
			MaxResults: v.GetInt("memory.max_results"),
		},
		Sessions: Sessions{
			TTL:        v.GetDuration("sessions.ttl"),
			MaxHistory: v.GetInt("sessions.max_history"),
		},
		LogDir:   v.GetString("log.dir"),
		LogLevel: v.GetString("log.level"),
	}
	return cfg, nil
}

// Validate checks the settings a conversation actually needs.
func (c Config) Validate() error {
	if c.OpenRouter.APIKey == "" {
		return fmt.Errorf("openrouter api key is not set (set %s or openrouter.api_key in the config file)", EnvAPIKey)
	}
	if c.OpenRouter.Model == "" {
		return errors.New("openrouter model is not set")
	}
	return nil
}

func sourceFromKeys(v *viper.Viper, prefix string) Source {
	return Source{
		BaseURL:      v.GetString(prefix + ".base_url"),
		MinInterval:  v.GetDuration(prefix + ".min_interval"),
		Timeout:      v.GetDuration(prefix + ".timeout"),
		MaxAttempts:  v.GetInt(prefix + ".max_attempts"),
		CacheTTL:     v.GetDuration(prefix + ".cache_ttl"),
		CacheMaxSize: v.GetInt(prefix + ".cache_max_size"),
	}
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("openrouter.model", DefaultModel)
	v.SetDefault("openrouter.base_url", DefaultBaseURL)
	v.SetDefault("openrouter.timeout", "60s")
	v.SetDefault("openrouter.max_attempts", 2)

	v.SetDefault("jikan.base_url", "https://api.jikan.moe/v4")
	v.SetDefault("jikan.min_interval", "1s")
	v.SetDefault("tvmaze.base_url", "https://api.tvmaze.com")
	v.SetDefault("tvmaze.min_interval", "500ms")
	v.SetDefault("openlibrary.base_url", "https://openlibrary.org")
	v.SetDefault("openlibrary.min_interval", "1s")

	for _, prefix := range []string{"jikan", "tvmaze", "openlibrary"} {
		v.SetDefault(prefix+".timeout", "30s")
		v.SetDefault(prefix+".max_attempts", 3)
		v.SetDefault(prefix+".cache_ttl", "300s")
		v.SetDefault(prefix+".cache_max_size", 256)
	}

	v.SetDefault("memory.url", "")
	v.SetDefault("memory.collection", "conversations")
	v.SetDefault("memory.max_results", 3)

	v.SetDefault("sessions.ttl", "1h")
	v.SetDefault("sessions.max_history", 20)

	v.SetDefault("log.dir", filepath.Join(configDir, "conversations"))
	v.SetDefault("log.level", "info")
}
