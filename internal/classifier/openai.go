package classifier

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures the completion client. BaseURL lets the same client
// talk to any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAICaller implements Caller on top of the chat completions API.
type OpenAICaller struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAICaller builds a caller from config, applying defaults for the
// model and timeout.
func NewOpenAICaller(cfg OpenAIConfig) *OpenAICaller {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAICaller{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Complete sends a single user message and returns the first choice's text.
func (c *OpenAICaller) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("classifier: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("classifier: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// CredentialEnv maps a model name to the environment variable that should
// hold its API key, by provider prefix convention.
func CredentialEnv(model string) string {
	switch {
	case strings.HasPrefix(model, "claude"):
		return "ANTHROPIC_API_KEY"
	case strings.HasPrefix(model, "gemini"):
		return "GEMINI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// HasCredentials reports whether the credential the model's provider needs is
// present. Callers check this before invoking the adapter; the adapter itself
// does not.
func HasCredentials(model string) bool {
	return os.Getenv(CredentialEnv(model)) != ""
}
