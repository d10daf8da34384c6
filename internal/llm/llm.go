// Package llm wraps the Gemini SDK behind the two capabilities the
// pipeline needs: text completion (with an optional structured-JSON mode
// and search grounding) and image generation. Provider status codes are
// surfaced through retry.HTTPError so callers can classify failures.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"google.golang.org/genai"

	"seoforge/internal/retry"
)

const (
	// DefaultModel is the completion model used for every text stage.
	DefaultModel = "gemini-flash-lite-latest"
	// DefaultImageModel generates article imagery.
	DefaultImageModel = "imagen-3.0-generate-002"
)

// CompleteOptions controls one completion call.
type CompleteOptions struct {
	JSONMode  bool   // Ask the provider for structured JSON output
	Grounding bool   // Enable search grounding for factual stages
	Model     string // Override the client's default model
}

// ImageOptions controls one image-generation call.
type ImageOptions struct {
	Count       int    // Number of images; defaults to 1
	AspectRatio string // e.g. "16:9"; provider default when empty
}

// Client talks to the Gemini API.
type Client struct {
	modelName string
	gClient   *genai.Client
}

// NewClient creates an LLM client. The API key is read from the
// GEMINI_API_KEY environment variable, with ai.gemini.api_key in the
// config file as a fallback.
func NewClient(ctx context.Context, modelName string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = viper.GetString("ai.gemini.api_key")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required: set GEMINI_API_KEY or ai.gemini.api_key in the config file")
	}

	if modelName == "" {
		modelName = viper.GetString("ai.gemini.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{modelName: modelName, gClient: gClient}, nil
}

// Complete sends a system/user message pair and returns the response
// text.
func (c *Client) Complete(ctx context.Context, systemInstruction, userPrompt string, opts CompleteOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.modelName
	}

	config := &genai.GenerateContentConfig{}
	if systemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}
	if opts.JSONMode {
		config.ResponseMIMEType = "application/json"
	}
	if opts.Grounding {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: userPrompt}},
		Role:  "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", classifyError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", model)
	}
	return text, nil
}

// GenerateImages produces opts.Count images for the prompt and returns
// their raw bytes.
func (c *Client) GenerateImages(ctx context.Context, prompt string, opts ImageOptions) ([][]byte, error) {
	count := opts.Count
	if count <= 0 {
		count = 1
	}

	config := &genai.GenerateImagesConfig{
		NumberOfImages: int32(count),
	}
	if opts.AspectRatio != "" {
		config.AspectRatio = opts.AspectRatio
	}

	resp, err := c.gClient.Models.GenerateImages(ctx, DefaultImageModel, prompt, config)
	if err != nil {
		return nil, classifyError(err)
	}
	if len(resp.GeneratedImages) == 0 {
		return nil, fmt.Errorf("image model returned no images")
	}

	images := make([][]byte, 0, len(resp.GeneratedImages))
	for _, img := range resp.GeneratedImages {
		if img.Image != nil {
			images = append(images, img.Image.ImageBytes)
		}
	}
	return images, nil
}

// ModelName reports the completion model this client targets.
func (c *Client) ModelName() string {
	return c.modelName
}

// classifyError converts SDK errors into retry.HTTPError so the retrying
// invoker can distinguish caller mistakes from transient provider issues.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &retry.HTTPError{StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	return err
}
