package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/genai"

	"curator/internal/logger"
)

const (
	// DefaultModel is the default Gemini model used by every stage.
	DefaultModel = "gemini-flash-lite-latest"

	maxRequestAttempts = 3
	retryBackoff       = 500 * time.Millisecond
)

// ModelResponseError reports that the model returned output that could not
// be parsed into the requested structure. Stages catch it at their boundary
// and switch to their deterministic fallback; it is never retried here and
// never surfaced past a stage.
type ModelResponseError struct {
	Model string
	Err   error
}

func (e *ModelResponseError) Error() string {
	return fmt.Sprintf("model %s returned unparsable structured output: %v", e.Model, e.Err)
}

func (e *ModelResponseError) Unwrap() error {
	return e.Err
}

// Client wraps the Gemini SDK behind the single call contract every
// pipeline stage uses. One client is constructed at process start and
// injected into each stage constructor.
type Client struct {
	apiKey    string
	modelName string
	gClient   *genai.Client
}

// Options configures a single generation call.
type Options struct {
	MaxTokens   int32   // Maximum number of tokens to generate
	Temperature float32 // Temperature for randomness (0.0 to 1.0)
	Model       string  // Model override (defaults to the client's model)
}

// NewClient creates a new LLM client.
// The API key is resolved from (in order): GEMINI_API_KEY,
// GOOGLE_GEMINI_API_KEY, GOOGLE_AI_API_KEY, then viper's gemini.api_key.
func NewClient(modelName string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		if apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey == "" {
			if apiKey = os.Getenv("GOOGLE_AI_API_KEY"); apiKey == "" {
				apiKey = viper.GetString("gemini.api_key")
			}
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or gemini.api_key in the config file")
	}

	if modelName == "" {
		modelName = viper.GetString("gemini.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}

	ctx := context.Background()
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		apiKey:    apiKey,
		modelName: modelName,
		gClient:   gClient,
	}, nil
}

// GetModelName returns the model name used by this client.
func (c *Client) GetModelName() string {
	return c.modelName
}

// GenerateText generates free-form text for a prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string, options Options) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	return c.generate(ctx, prompt, options, nil)
}

// GenerateStructured asks the model for JSON conforming to schema and
// unmarshals the response into out. A schema instruction is attached to
// the request so the provider enforces the shape; if the returned text
// still fails to parse, the error is a *ModelResponseError and the caller
// is expected to fall back rather than retry.
func (c *Client) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any, options Options) error {
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	text, err := c.generate(ctx, prompt, options, schema)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return &ModelResponseError{Model: c.resolveModel(options), Err: err}
	}
	return nil
}

func (c *Client) resolveModel(options Options) string {
	if options.Model != "" {
		return options.Model
	}
	return c.modelName
}

func (c *Client) generate(ctx context.Context, prompt string, options Options, schema *genai.Schema) (string, error) {
	modelName := c.resolveModel(options)

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	var config *genai.GenerateContentConfig
	if options.MaxTokens > 0 || options.Temperature > 0 || schema != nil {
		config = &genai.GenerateContentConfig{}
		if options.MaxTokens > 0 {
			config.MaxOutputTokens = options.MaxTokens
		}
		if options.Temperature > 0 {
			temp := options.Temperature
			config.Temperature = &temp
		}
		if schema != nil {
			config.ResponseMIMEType = "application/json"
			config.ResponseSchema = schema
		}
	}

	// Transport failures get a bounded retry. Parse failures do not; those
	// are ModelResponseErrors handled by the caller's fallback.
	var resp *genai.GenerateContentResponse
	var err error
	start := time.Now()
	for attempt := 1; attempt <= maxRequestAttempts; attempt++ {
		resp, err = c.gClient.Models.GenerateContent(ctx, modelName, contents, config)
		if err == nil {
			break
		}
		if attempt == maxRequestAttempts {
			break
		}
		logger.Warn("llm request failed, retrying", "model", modelName, "attempt", attempt, "error", err.Error())
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	elapsed := time.Since(start)
	if err != nil {
		logger.Error("llm request failed", err, "model", modelName, "attempts", maxRequestAttempts, "latency_ms", elapsed.Milliseconds())
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}

	// Usage telemetry stays inside logging; no stage depends on it.
	logger.Debug("llm request completed",
		"model", modelName,
		"latency_ms", elapsed.Milliseconds(),
		"input_tokens_est", EstimateTokenCount(prompt),
		"output_tokens_est", EstimateTokenCount(text),
	)

	return text, nil
}

// Close cleans up resources used by the client.
func (c *Client) Close() {
	// The genai SDK client does not require explicit close.
}
