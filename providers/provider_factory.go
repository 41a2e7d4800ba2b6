package providers

import (
	"fmt"

	"github.com/focuscope/focuscope/providers/contracts"
	"github.com/focuscope/focuscope/providers/ollama"
)

// AIProviderConfig holds the provider settings from configuration.
type AIProviderConfig struct {
	Provider    string   `mapstructure:"provider" yaml:"provider"`
	BaseURL     string   `mapstructure:"base_url" yaml:"base_url"`
	Model       string   `mapstructure:"model" yaml:"model"`
	Temperature *float32 `mapstructure:"temperature" yaml:"temperature,omitempty"`
	ApiKey      string   `mapstructure:"api_key" yaml:"api_key"`
}

// ChatProviderFactory returns the chat provider named in the config.
func ChatProviderFactory(config *AIProviderConfig) (contracts.IChatAIProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("ai provider config is missing")
	}
	switch config.Provider {
	case "", "ollama":
		return ollama.NewOllamaChatProvider(&ollama.OllamaConfig{
			BaseURL:     config.BaseURL,
			Model:       config.Model,
			Temperature: config.Temperature,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}
}
