package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// OllamaConfig configures the local Ollama backend.
type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature *float32
	MaxTokens   *int
	Timeout     time.Duration
}

// OllamaChatModel adapts Ollama's /api/generate endpoint to the eino chat
// model interface so the coaching chain can run against a local model.
type OllamaChatModel struct {
	config     *OllamaConfig
	httpClient *http.Client
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewOllamaChatModel creates an Ollama-backed chat model.
func NewOllamaChatModel(_ context.Context, config *OllamaConfig) (*OllamaChatModel, error) {
	if config == nil || strings.TrimSpace(config.Model) == "" {
		return nil, fmt.Errorf("ollama model name is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cfg := *config
	cfg.BaseURL = baseURL
	return &OllamaChatModel{
		config:     &cfg,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Generate flattens the chat messages into a single completion prompt and
// runs one non-streaming generation.
func (m *OllamaChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	payload := ollamaGenerateRequest{
		Model:  m.config.Model,
		Prompt: flattenPrompt(input),
		Stream: false,
	}
	if m.config.Temperature != nil {
		payload.Options.Temperature = *m.config.Temperature
	}
	if m.config.MaxTokens != nil {
		payload.Options.NumPredict = *m.config.MaxTokens
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("ollama error %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", out.Error)
	}

	return schema.AssistantMessage(out.Response, nil), nil
}

// Stream satisfies the chat model interface. Ollama's generate endpoint is
// invoked non-streaming and the single message is wrapped in a reader.
func (m *OllamaChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	message, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{message}), nil
}

// flattenPrompt renders a chat transcript as a plain completion prompt.
func flattenPrompt(input []*schema.Message) string {
	var builder strings.Builder
	for _, message := range input {
		if message == nil || message.Content == "" {
			continue
		}
		switch message.Role {
		case schema.System:
			builder.WriteString(message.Content)
			builder.WriteString("\n\n")
		case schema.User:
			builder.WriteString("User: ")
			builder.WriteString(message.Content)
			builder.WriteString("\n")
		case schema.Assistant:
			builder.WriteString("Assistant: ")
			builder.WriteString(message.Content)
			builder.WriteString("\n")
		}
	}
	builder.WriteString("Assistant:")
	return builder.String()
}
