package provider

import (
	"fmt"

	"visionboard/internal/config"
	"visionboard/internal/logging"
	"visionboard/internal/types"
)

// Providers bundles the configured backends. Primary is always present
// (it fails with ErrNotConfigured when called without a key); Images is
// nil when the Gemini key is absent.
type Providers struct {
	Primary  Client
	Fallback Client
	Images   ImageGenerator
}

// NewProviders builds the backend set from user config.
func NewProviders(cfg *config.UserConfig) *Providers {
	geminiCfg := DefaultGeminiConfig(cfg.GeminiAPIKey)
	if cfg.GeminiModel != "" {
		geminiCfg.Model = cfg.GeminiModel
	}
	openaiCfg := DefaultOpenAIConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIModel != "" {
		openaiCfg.Model = cfg.OpenAIModel
	}

	p := &Providers{
		Primary:  NewGeminiClientWithConfig(geminiCfg),
		Fallback: NewOpenAIClientWithConfig(openaiCfg),
	}

	if cfg.GeminiAPIKey != "" {
		images, err := NewImagenClient(cfg.GeminiAPIKey, cfg.ImageModel)
		if err != nil {
			logging.ProviderError("[Factory] Imagen client unavailable: %v", err)
		} else {
			p.Images = images
		}
	}

	logging.Boot("Providers initialized: gemini_model=%s openai_model=%s images=%t",
		geminiCfg.Model, openaiCfg.Model, p.Images != nil)
	return p
}

// ForEngine returns the client behind an engine tag.
func (p *Providers) ForEngine(engine types.Engine) (Client, error) {
	switch engine {
	case types.EngineGemini:
		return p.Primary, nil
	case types.EngineOpenAI:
		return p.Fallback, nil
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
}

// Close releases backend resources.
func (p *Providers) Close() error {
	if closer, ok := p.Images.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
