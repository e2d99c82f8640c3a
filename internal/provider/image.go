package provider

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"visionboard/internal/logging"
)

// ImagenClient generates images through the Google GenAI SDK. It rides the
// same credential as the primary text backend; there is no image path on
// the fallback backend.
type ImagenClient struct {
	client *genai.Client
	model  string
}

// NewImagenClient creates an Imagen client.
func NewImagenClient(apiKey, model string) (*ImagenClient, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = "imagen-3.0-generate-002"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &ImagenClient{client: client, model: model}, nil
}

// GenerateImage produces JPEG bytes for the prompt, 16:9 single image.
func (c *ImagenClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	startTime := time.Now()
	logging.ProviderDebug("[Imagen] GenerateImage: model=%s prompt_len=%d", c.model, len(prompt))

	result, err := c.client.Models.GenerateImages(ctx,
		c.model,
		prompt,
		&genai.GenerateImagesConfig{
			NumberOfImages: 1,
			OutputMIMEType: "image/jpeg",
			AspectRatio:    "16:9",
		},
	)
	if err != nil {
		logging.ProviderError("[Imagen] GenerateImage: failed after %v: %v", time.Since(startTime), err)
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	if len(result.GeneratedImages) == 0 || result.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("no image returned")
	}

	data := result.GeneratedImages[0].Image.ImageBytes
	logging.Provider("[Imagen] GenerateImage: completed in %v bytes=%d", time.Since(startTime), len(data))
	return data, nil
}

// Close releases the client. The GenAI SDK client holds no resources
// that need explicit shutdown; the method exists so image backends can
// be closed uniformly.
func (c *ImagenClient) Close() error {
	return nil
}
