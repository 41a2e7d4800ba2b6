package config

import (
	"fmt"
	"strings"

	"github.com/focuscope/focuscope/providers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config represents the structure of the configuration file.
type Config struct {
	Version               string                      `mapstructure:"version" yaml:"version"`
	Theme                 string                      `mapstructure:"theme" yaml:"theme"`
	UpdateIntervalSeconds int                         `mapstructure:"update_interval" yaml:"update_interval"`
	MaxDepth              int                         `mapstructure:"max_depth" yaml:"max_depth"`
	MaxFileSizeBytes      int64                       `mapstructure:"max_file_size_bytes" yaml:"max_file_size_bytes"`
	MinDuplicateTokens    int                         `mapstructure:"min_duplicate_tokens" yaml:"min_duplicate_tokens"`
	ContextCharLimit      int                         `mapstructure:"context_char_limit" yaml:"context_char_limit"`
	IgnoredDirectories    []string                    `mapstructure:"ignored_directories" yaml:"ignored_directories"`
	IgnoredFiles          []string                    `mapstructure:"ignored_files" yaml:"ignored_files"`
	BinaryExtensions      []string                    `mapstructure:"binary_extensions" yaml:"binary_extensions"`
	LengthStandards       map[string]int              `mapstructure:"length_standards" yaml:"length_standards"`
	LengthThresholds      LengthThresholds            `mapstructure:"length_thresholds" yaml:"length_thresholds"`
	Projects              []ProjectConfig             `mapstructure:"projects" yaml:"projects,omitempty"`
	AIProviderConfig      *providers.AIProviderConfig `mapstructure:"ai_provider_config" yaml:"ai_provider_config"`
}

// LengthThresholds holds the alert multipliers applied to a category's
// recommended maximum line count.
type LengthThresholds struct {
	Warning  float64 `mapstructure:"warning" yaml:"warning"`
	Critical float64 `mapstructure:"critical" yaml:"critical"`
	Severe   float64 `mapstructure:"severe" yaml:"severe"`
}

// ProjectConfig describes one monitored project. Zero values for interval
// and depth inherit the global setting.
type ProjectConfig struct {
	Name                  string `mapstructure:"name" yaml:"name"`
	Path                  string `mapstructure:"path" yaml:"path"`
	Type                  string `mapstructure:"type" yaml:"type,omitempty"`
	Watch                 bool   `mapstructure:"watch" yaml:"watch"`
	UpdateIntervalSeconds int    `mapstructure:"update_interval" yaml:"update_interval,omitempty"`
	MaxDepth              int    `mapstructure:"max_depth" yaml:"max_depth,omitempty"`
}

// DefaultConfig values. Configured ignore lists are additive on top of the
// built-in defaults in the scanner, never replacing them.
var DefaultConfig = Config{
	Version:               "1.0.0",
	Theme:                 "dracula",
	UpdateIntervalSeconds: 60,
	MaxDepth:              3,
	MaxFileSizeBytes:      100 * 1024,
	MinDuplicateTokens:    10,
	ContextCharLimit:      60000,
	IgnoredDirectories:    []string{"__pycache__", "node_modules", "venv", "dist", "build", "coverage"},
	IgnoredFiles:          []string{".DS_Store", "Thumbs.db", "*.pyc", "*.pyo", "package-lock.json", "yarn.lock"},
	BinaryExtensions:      []string{".png", ".jpg", ".jpeg", ".gif", ".ico", ".pdf", ".exe", ".bin", ".zip", ".gz", ".tar", ".so", ".dylib", ".dll"},
	LengthStandards: map[string]int{
		"script":     400,
		"style":      400,
		"markup":     300,
		"structured": 100,
		"docs":       500,
		"other":      300,
	},
	LengthThresholds: LengthThresholds{Warning: 1.0, Critical: 1.5, Severe: 2.0},
	AIProviderConfig: &providers.AIProviderConfig{
		Provider:    "ollama",
		BaseURL:     "",
		Model:       "qwen2.5-coder",
		Temperature: nil,
		ApiKey:      "",
	},
}

// cfgFile holds the path to the configuration file (set via CLI).
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and
// environment variables, and returns the final config. A malformed
// configuration file is a startup-fatal error for the caller.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	var config *Config

	setDefaults()

	viper.AutomaticEnv()
	bindEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	} else {
		viper.SetConfigName("focus-config")
		viper.AddConfigPath(cwd)

		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			viper.SetConfigType("json")
			if err := viper.ReadInConfig(); err != nil {
				// No config file present; defaults apply.
				if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
					return nil, fmt.Errorf("error reading config file: %w", err)
				}
			}
		}
	}

	bindFlags(rootCmd)

	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects configurations the scanner cannot run with.
func Validate(config *Config) error {
	if config.UpdateIntervalSeconds <= 0 {
		return fmt.Errorf("invalid config: update_interval must be positive, got %d", config.UpdateIntervalSeconds)
	}
	if config.MaxDepth < 0 {
		return fmt.Errorf("invalid config: max_depth must be >= 0, got %d", config.MaxDepth)
	}
	if config.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("invalid config: max_file_size_bytes must be positive, got %d", config.MaxFileSizeBytes)
	}
	th := config.LengthThresholds
	if th.Warning <= 0 || th.Critical < th.Warning || th.Severe < th.Critical {
		return fmt.Errorf("invalid config: length_thresholds must satisfy 0 < warning <= critical <= severe")
	}
	for i, project := range config.Projects {
		if strings.TrimSpace(project.Path) == "" {
			return fmt.Errorf("invalid config: projects[%d] has empty path", i)
		}
	}
	return nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	viper.SetDefault("version", DefaultConfig.Version)
	viper.SetDefault("theme", DefaultConfig.Theme)
	viper.SetDefault("update_interval", DefaultConfig.UpdateIntervalSeconds)
	viper.SetDefault("max_depth", DefaultConfig.MaxDepth)
	viper.SetDefault("max_file_size_bytes", DefaultConfig.MaxFileSizeBytes)
	viper.SetDefault("min_duplicate_tokens", DefaultConfig.MinDuplicateTokens)
	viper.SetDefault("context_char_limit", DefaultConfig.ContextCharLimit)
	viper.SetDefault("ignored_directories", DefaultConfig.IgnoredDirectories)
	viper.SetDefault("ignored_files", DefaultConfig.IgnoredFiles)
	viper.SetDefault("binary_extensions", DefaultConfig.BinaryExtensions)
	viper.SetDefault("length_standards", DefaultConfig.LengthStandards)
	viper.SetDefault("length_thresholds.warning", DefaultConfig.LengthThresholds.Warning)
	viper.SetDefault("length_thresholds.critical", DefaultConfig.LengthThresholds.Critical)
	viper.SetDefault("length_thresholds.severe", DefaultConfig.LengthThresholds.Severe)
	viper.SetDefault("ai_provider_config.provider", DefaultConfig.AIProviderConfig.Provider)
	viper.SetDefault("ai_provider_config.base_url", DefaultConfig.AIProviderConfig.BaseURL)
	viper.SetDefault("ai_provider_config.model", DefaultConfig.AIProviderConfig.Model)
	viper.SetDefault("ai_provider_config.api_key", DefaultConfig.AIProviderConfig.ApiKey)
}

// bindEnv explicitly binds environment variables to configuration keys.
func bindEnv() {
	_ = viper.BindEnv("theme", "THEME")
	_ = viper.BindEnv("update_interval", "UPDATE_INTERVAL")
	_ = viper.BindEnv("max_depth", "MAX_DEPTH")
	_ = viper.BindEnv("ai_provider_config.provider", "PROVIDER")
	_ = viper.BindEnv("ai_provider_config.base_url", "BASE_URL")
	_ = viper.BindEnv("ai_provider_config.model", "MODEL")
	_ = viper.BindEnv("ai_provider_config.api_key", "API_KEY")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	_ = viper.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
	_ = viper.BindPFlag("update_interval", rootCmd.PersistentFlags().Lookup("interval"))
	_ = viper.BindPFlag("max_depth", rootCmd.PersistentFlags().Lookup("max_depth"))
	_ = viper.BindPFlag("ai_provider_config.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("ai_provider_config.base_url", rootCmd.PersistentFlags().Lookup("base_url"))
	_ = viper.BindPFlag("ai_provider_config.model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("ai_provider_config.api_key", rootCmd.PersistentFlags().Lookup("api_key"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to a configuration file (JSON or YAML).")

	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Theme for rendering AI responses (e.g. 'dracula', 'light', 'dark').")
	rootCmd.PersistentFlags().Int("interval", DefaultConfig.UpdateIntervalSeconds, "Seconds between scan cycles in watch mode.")
	rootCmd.PersistentFlags().Int("max_depth", DefaultConfig.MaxDepth, "Maximum directory depth to descend into.")

	rootCmd.Flags().BoolP("version", "v", false, "Print the application version.")

	rootCmd.PersistentFlags().String("provider", DefaultConfig.AIProviderConfig.Provider, "The name of the AI provider (e.g. 'ollama').")
	rootCmd.PersistentFlags().String("base_url", DefaultConfig.AIProviderConfig.BaseURL, "The base URL of the AI provider.")
	rootCmd.PersistentFlags().String("model", DefaultConfig.AIProviderConfig.Model, "The model used for chat completions.")
	rootCmd.PersistentFlags().String("api_key", DefaultConfig.AIProviderConfig.ApiKey, "The API key used to authenticate with the AI provider.")
}

// Default returns a copy of the built-in defaults, safe for a caller to
// adjust without touching the shared DefaultConfig value.
func Default() *Config {
	cfg := DefaultConfig
	cfg.IgnoredDirectories = append([]string(nil), DefaultConfig.IgnoredDirectories...)
	cfg.IgnoredFiles = append([]string(nil), DefaultConfig.IgnoredFiles...)
	cfg.BinaryExtensions = append([]string(nil), DefaultConfig.BinaryExtensions...)
	standards := make(map[string]int, len(DefaultConfig.LengthStandards))
	for category, limit := range DefaultConfig.LengthStandards {
		standards[category] = limit
	}
	cfg.LengthStandards = standards
	providerCfg := *DefaultConfig.AIProviderConfig
	cfg.AIProviderConfig = &providerCfg
	return &cfg
}

// IntervalFor resolves the effective update interval for a project.
func (c *Config) IntervalFor(project ProjectConfig) int {
	if project.UpdateIntervalSeconds > 0 {
		return project.UpdateIntervalSeconds
	}
	return c.UpdateIntervalSeconds
}

// DepthFor resolves the effective max depth for a project.
func (c *Config) DepthFor(project ProjectConfig) int {
	if project.MaxDepth > 0 {
		return project.MaxDepth
	}
	return c.MaxDepth
}

// LengthLimitFor returns the recommended line count for a file category.
func (c *Config) LengthLimitFor(category string) int {
	if limit, ok := c.LengthStandards[category]; ok {
		return limit
	}
	if limit, ok := c.LengthStandards["other"]; ok {
		return limit
	}
	return 300
}
