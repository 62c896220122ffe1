package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Prompts maps prompt types to their configuration.
type Prompts map[string]PromptConfig

// PromptConfig holds one prompt template pair and its generation settings.
type PromptConfig struct {
	SystemPrompt       string      `yaml:"system_prompt"`
	UserPromptTemplate string      `yaml:"user_prompt_template"`
	Model              ModelConfig `yaml:"model"`
}

// ModelConfig holds typed generation model settings.
type ModelConfig struct {
	Model           string  `yaml:"model"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	Temperature     float32 `yaml:"temperature"`
}

// LoadPrompts reads prompt configurations from a YAML file.
func LoadPrompts(path string) (Prompts, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts %s: %w", path, err)
	}

	var prompts Prompts
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}

	for name, p := range prompts {
		if p.SystemPrompt == "" {
			return nil, fmt.Errorf("prompt %q: system_prompt is required", name)
		}
		if p.Model.Model == "" {
			return nil, fmt.Errorf("prompt %q: model.model is required", name)
		}
	}

	return prompts, nil
}

// Get returns the configuration for a prompt type.
func (p Prompts) Get(promptType string) (PromptConfig, error) {
	cfg, ok := p[promptType]
	if !ok {
		return PromptConfig{}, fmt.Errorf("prompt type %q not found in configuration", promptType)
	}
	return cfg, nil
}
