// Package config loads visionboard configuration from
// .visionboard/config.json. This is the single source of truth for
// provider credentials, model overrides, and logging settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoggingConfig controls the categorized file logging subsystem.
type LoggingConfig struct {
	DebugMode  bool            `json:"debug_mode"`
	Categories map[string]bool `json:"categories,omitempty"`
	Level      string          `json:"level,omitempty"`
}

// UserConfig holds all configuration from .visionboard/config.json.
//
// Supported models:
//   - gemini: gemini-2.5-flash (default), gemini-2.5-pro
//   - openai: gpt-4o (default), gpt-4o-mini
//   - image:  imagen-3.0-generate-002 (default)
type UserConfig struct {
	// API keys. The Gemini key powers the primary backend and image
	// generation; the OpenAI key powers the fallback backend and is
	// optional - fallback personas fail with a configuration error when
	// it is absent.
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`
	OpenAIAPIKey string `json:"openai_api_key,omitempty"`

	// Optional model overrides.
	GeminiModel string `json:"gemini_model,omitempty"`
	OpenAIModel string `json:"openai_model,omitempty"`
	ImageModel  string `json:"image_model,omitempty"`

	// Optional path to a YAML agent-family file overriding the built-in
	// persona catalog.
	FamilyFile string `json:"family_file,omitempty"`

	// Path to the SQLite database. Defaults to .visionboard/board.db
	// under the workspace.
	DBPath string `json:"db_path,omitempty"`

	Logging LoggingConfig `json:"logging,omitempty"`
}

// DefaultUserConfigPath returns the default path to .visionboard/config.json
// in the current working directory.
func DefaultUserConfigPath() string {
	return filepath.Join(".visionboard", "config.json")
}

// DefaultDBPath returns the default SQLite path under the workspace.
func DefaultDBPath(workspace string) string {
	return filepath.Join(workspace, ".visionboard", "board.db")
}

// LoadUserConfig reads the config file at path and applies environment
// overrides. A missing file is not an error; env vars alone are a valid
// configuration.
func LoadUserConfig(path string) (*UserConfig, error) {
	cfg := &UserConfig{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Fall through to env overrides.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets environment variables win over the config file,
// matching the usual deployment pattern for API keys.
func (c *UserConfig) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.GeminiAPIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.OpenAIAPIKey = key
	}
}

// Save writes the config back to path, creating the directory if needed.
func (c *UserConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
