package suggest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestOllamaGenerate(t *testing.T) {
	var got ollamaGenerateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"response":"{\"bullets\":[\"tip\"],\"follow_up\":\"\"}","done":true}`)
	}))
	defer server.Close()

	temperature := float32(0.7)
	maxTokens := 200
	chatModel, err := NewOllamaChatModel(context.Background(), &OllamaConfig{
		BaseURL:     server.URL,
		Model:       "llama2",
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		t.Fatalf("NewOllamaChatModel: %v", err)
	}

	message, err := chatModel.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("You are a coach."),
		schema.UserMessage("Tell me about yourself."),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if message.Role != schema.Assistant || !strings.Contains(message.Content, "bullets") {
		t.Errorf("message = %+v", message)
	}

	if got.Model != "llama2" || got.Stream {
		t.Errorf("request = %+v, want model llama2 with stream disabled", got)
	}
	if got.Options.Temperature != 0.7 || got.Options.NumPredict != 200 {
		t.Errorf("options = %+v", got.Options)
	}
	if !strings.HasPrefix(got.Prompt, "You are a coach.") {
		t.Errorf("prompt does not lead with system text: %q", got.Prompt)
	}
	if !strings.Contains(got.Prompt, "User: Tell me about yourself.") ||
		!strings.HasSuffix(got.Prompt, "Assistant:") {
		t.Errorf("prompt = %q", got.Prompt)
	}
}

func TestOllamaGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"response":"","error":"model 'llama2' not found"}`)
	}))
	defer server.Close()

	chatModel, err := NewOllamaChatModel(context.Background(), &OllamaConfig{BaseURL: server.URL, Model: "llama2"})
	if err != nil {
		t.Fatalf("NewOllamaChatModel: %v", err)
	}

	_, err = chatModel.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want ollama error detail", err)
	}
}

func TestOllamaRequiresModelName(t *testing.T) {
	if _, err := NewOllamaChatModel(context.Background(), &OllamaConfig{BaseURL: "http://localhost:11434"}); err == nil {
		t.Error("expected error for missing model name")
	}
	if _, err := NewOllamaChatModel(context.Background(), nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestOllamaStreamWrapsSingleMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"response":"done","done":true}`)
	}))
	defer server.Close()

	chatModel, err := NewOllamaChatModel(context.Background(), &OllamaConfig{BaseURL: server.URL, Model: "llama2"})
	if err != nil {
		t.Fatalf("NewOllamaChatModel: %v", err)
	}

	stream, err := chatModel.Stream(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer stream.Close()

	message, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if message.Content != "done" {
		t.Errorf("content = %q", message.Content)
	}
	if _, err := stream.Recv(); err != io.EOF {
		t.Errorf("second Recv err = %v, want io.EOF", err)
	}
}
