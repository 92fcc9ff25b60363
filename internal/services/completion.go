package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ollama/ollama/api"
	"github.com/rentfolio/rentfolio/internal/config"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// CompletionClient is the single point of contact with the external
// text-completion service. Credentials and timeout come from explicit
// config passed at construction. Every call is bounded by the configured
// timeout; exceeding it surfaces as an ordinary transport error.
type CompletionClient struct {
	cfg *config.CompletionConfig
}

func NewCompletionClient(cfg *config.CompletionConfig) *CompletionClient {
	return &CompletionClient{cfg: cfg}
}

// CompletionResponse carries the response text plus token accounting for
// the usage ledger.
type CompletionResponse struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

func (r *CompletionResponse) TotalTokens() int {
	return r.PromptTokens + r.CompletionTokens
}

// Complete sends one prompt and returns the raw response text.
func (c *CompletionClient) Complete(ctx context.Context, prompt string) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	switch c.cfg.Provider {
	case "anthropic":
		return c.callAnthropic(ctx, prompt)
	case "ollama":
		return c.callOllama(ctx, prompt)
	case "gemini":
		return c.callGemini(ctx, prompt)
	case "azure":
		return c.callAzure(ctx, prompt)
	default:
		// openai and other OpenAI-compatible services
		return c.callOpenAI(ctx, prompt)
	}
}

// callOpenAI handles OpenAI and OpenAI-compatible APIs (including custom endpoints)
func (c *CompletionClient) callOpenAI(ctx context.Context, prompt string) (*CompletionResponse, error) {
	clientConfig := openai.DefaultConfig(c.cfg.APIKey)
	if c.cfg.BaseURL != "" {
		clientConfig.BaseURL = c.cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	temperature := float32(0.3)
	if c.cfg.Temperature > 0 {
		temperature = float32(c.cfg.Temperature)
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return &CompletionResponse{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// callAnthropic handles Anthropic Claude API using the native SDK
func (c *CompletionClient) callAnthropic(ctx context.Context, prompt string) (*CompletionResponse, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(c.cfg.APIKey),
	)

	maxTokens := int64(c.cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	model := c.cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("Anthropic API error: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &CompletionResponse{
		Content:          content.String(),
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
	}, nil
}

// callOllama handles Ollama API using the native SDK
func (c *CompletionClient) callOllama(ctx context.Context, prompt string) (*CompletionResponse, error) {
	baseURL := c.cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	model := c.cfg.Model
	if model == "" {
		model = "llama3"
	}

	var content strings.Builder
	var promptTokens, completionTokens int
	err = client.Chat(ctx, &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Options: map[string]interface{}{
			"temperature": c.cfg.Temperature,
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		if resp.Done {
			promptTokens = resp.Metrics.PromptEvalCount
			completionTokens = resp.Metrics.EvalCount
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Ollama API error: %w", err)
	}

	result := content.String()
	if promptTokens == 0 && completionTokens == 0 {
		promptTokens = estimateTokens(prompt)
		completionTokens = estimateTokens(result)
	}

	return &CompletionResponse{
		Content:          result,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	}, nil
}

// callGemini handles Google Gemini API using the native SDK
func (c *CompletionClient) callGemini(ctx context.Context, prompt string) (*CompletionResponse, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: c.cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini client error: %w", err)
	}

	model := c.cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	content := resp.Text()
	promptTokens := estimateTokens(prompt)
	completionTokens := estimateTokens(content)
	if resp.UsageMetadata != nil {
		promptTokens = int(resp.UsageMetadata.PromptTokenCount)
		completionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return &CompletionResponse{
		Content:          content,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	}, nil
}

// callAzure handles Azure OpenAI API using special configuration
func (c *CompletionClient) callAzure(ctx context.Context, prompt string) (*CompletionResponse, error) {
	// Azure requires BaseURL format: https://{resource-name}.openai.azure.com
	// Model field is used as deployment name
	clientConfig := openai.DefaultAzureConfig(c.cfg.APIKey, c.cfg.BaseURL)
	client := openai.NewClientWithConfig(clientConfig)

	temperature := float32(0.3)
	if c.cfg.Temperature > 0 {
		temperature = float32(c.cfg.Temperature)
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("Azure OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from Azure OpenAI")
	}

	return &CompletionResponse{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// estimateTokens approximates token usage when the provider does not
// report it (roughly 4 chars per token for English/HTML).
func estimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		n = 1
	}
	return n
}
