package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	internal "github.com/tswee5/reader-app-web-sub000/reader"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Provider ProviderConfig `mapstructure:"provider"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Server   ServerConfig   `mapstructure:"server"`
}

// DatabaseConfig stores the embedded database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ProviderConfig stores completion provider settings.
type ProviderConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	APIVersion     string        `mapstructure:"api_version"`
	Model          string        `mapstructure:"model"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ChatConfig stores the conversation core's budgets and limits.
type ChatConfig struct {
	TokenHardCeiling     int           `mapstructure:"token_hard_ceiling"`     // hard request ceiling in estimated tokens
	TokenWarnFraction    float64       `mapstructure:"token_warn_fraction"`    // fraction of the ceiling triggering truncation
	TruncateTargetTokens int           `mapstructure:"truncate_target_tokens"` // truncation target below the ceiling
	MaxWebSnippets       int           `mapstructure:"max_web_snippets"`       // rolling snippet cap per conversation
	MemoryWindow         int           `mapstructure:"memory_window"`          // recent messages excluded from compression
	MaxMemoryKeywords    int           `mapstructure:"max_memory_keywords"`    // keyword cap in the memory summary
	SearchCooldown       time.Duration `mapstructure:"search_cooldown"`        // floor between web searches
	ArticleContentLimit  int           `mapstructure:"article_content_limit"`  // chars of article content sent for summarization
	DegradedSummaryLimit int           `mapstructure:"degraded_summary_limit"` // chars kept for the degraded fallback
	TitleLimit           int           `mapstructure:"title_limit"`            // chars of the first message used as title
}

// ServerConfig stores the HTTP entrypoint settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("database.path", internal.DefaultDatabasePath)

	viper.SetDefault("provider.base_url", "https://api.anthropic.com")
	viper.SetDefault("provider.api_version", "2023-06-01")
	viper.SetDefault("provider.model", "claude-3-5-sonnet-latest")
	viper.SetDefault("provider.max_tokens", 4096)
	viper.SetDefault("provider.request_timeout", "60s")

	viper.SetDefault("chat.token_hard_ceiling", 90000)
	viper.SetDefault("chat.token_warn_fraction", 0.8)
	viper.SetDefault("chat.truncate_target_tokens", 80000)
	viper.SetDefault("chat.max_web_snippets", 5)
	viper.SetDefault("chat.memory_window", 10)
	viper.SetDefault("chat.max_memory_keywords", 5)
	viper.SetDefault("chat.search_cooldown", "5m")
	viper.SetDefault("chat.article_content_limit", 50000)
	viper.SetDefault("chat.degraded_summary_limit", 1000)
	viper.SetDefault("chat.title_limit", 50)

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.shutdown_timeout", "10s")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults and environment are enough.
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
