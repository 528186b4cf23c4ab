package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/tubesieve/tubesieve/internal/biz/usecase"
)

// PromptsConfig contains all prompt configurations loaded from YAML
type PromptsConfig struct {
	Filter  FilterPrompts `yaml:"filter"`
	Chat    ChatPrompts   `yaml:"chat"`
	History HistoryConfig `yaml:"history"`
}

// FilterPrompts contains title filtering prompts
type FilterPrompts struct {
	Template               string `yaml:"template"`
	ContextSectionTemplate string `yaml:"context_section_template"`
}

// ChatPrompts contains chat reply prompts
type ChatPrompts struct {
	Template      string `yaml:"template"`
	HistoryMarker string `yaml:"history_marker"`
}

// HistoryConfig contains history truncation settings
type HistoryConfig struct {
	MaxCount int `yaml:"max_count"`
}

// LoadPromptsConfig loads prompts configuration from YAML file
func LoadPromptsConfig(configPath string) (*PromptsConfig, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/prompts.yaml",
			"/etc/tubesieve/prompts.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "prompts.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	var err error

	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			loadedPath = p
			break
		}
	}

	if data == nil {
		if configPath != "" {
			return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
		}
		log.Debug().Str("component", "config").Msg("No prompts.yaml found, using defaults")
		return DefaultPromptsConfig(), nil
	}

	log.Info().Str("component", "config").Str("path", loadedPath).Msg("Loading prompts")

	// History starts from defaults so an explicit max_count: 0 survives
	config := PromptsConfig{History: DefaultPromptsConfig().History}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse prompts.yaml: %w", err)
	}

	// Fill in defaults for empty values
	config.fillDefaults()

	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *PromptsConfig) fillDefaults() {
	defaults := DefaultPromptsConfig()

	if c.Filter.Template == "" {
		c.Filter.Template = defaults.Filter.Template
	}
	if c.Filter.ContextSectionTemplate == "" {
		c.Filter.ContextSectionTemplate = defaults.Filter.ContextSectionTemplate
	}
	if c.Chat.Template == "" {
		c.Chat.Template = defaults.Chat.Template
	}
	if c.Chat.HistoryMarker == "" {
		c.Chat.HistoryMarker = defaults.Chat.HistoryMarker
	}
}

// DefaultPromptsConfig returns the default prompts configuration
func DefaultPromptsConfig() *PromptsConfig {
	d := usecase.DefaultPromptConfig
	return &PromptsConfig{
		Filter: FilterPrompts{
			Template:               d.FilterTemplate,
			ContextSectionTemplate: d.ContextSectionTemplate,
		},
		Chat: ChatPrompts{
			Template:      d.ChatTemplate,
			HistoryMarker: d.HistoryMarker,
		},
		History: HistoryConfig{
			MaxCount: d.MaxHistoryCount,
		},
	}
}
