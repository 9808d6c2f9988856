package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Engineernoob/ai-interview-buddy/internal/model/interview"
)

const transcriptionPath = "/v1/audio/transcriptions"

// whisperClient talks to a Whisper-compatible HTTP server (whisper.cpp,
// faster-whisper-server, or the OpenAI audio API) over multipart uploads.
type whisperClient struct {
	baseURL    string
	model      string
	language   string
	apiKey     string
	sampleRate int
	channels   int
	httpClient *http.Client
}

type whisperResponse struct {
	Text string `json:"text"`
}

func newWhisperClient(opts Options) *whisperClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	sampleRate := opts.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	channels := opts.Channels
	if channels <= 0 {
		channels = 1
	}
	return &whisperClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		model:      opts.Model,
		language:   opts.Language,
		apiKey:     opts.APIKey,
		sampleRate: sampleRate,
		channels:   channels,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Transcribe wraps the chunk's PCM samples in a WAV container and posts it
// to the transcription endpoint.
func (c *whisperClient) Transcribe(ctx context.Context, chunk *interview.AudioChunk) (string, error) {
	if chunk == nil || len(chunk.Data) == 0 {
		return "", nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "chunk.wav")
	if err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}
	if _, err := part.Write(encodeWAV(chunk.Data, c.sampleRate, c.channels)); err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}
	if c.model != "" {
		if err := writer.WriteField("model", c.model); err != nil {
			return "", fmt.Errorf("failed to build transcription request: %w", err)
		}
	}
	if c.language != "" {
		if err := writer.WriteField("language", c.language); err != nil {
			return "", fmt.Errorf("failed to build transcription request: %w", err)
		}
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+transcriptionPath, &body)
	if err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call transcription API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("transcription API error %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var out whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode transcription response: %w", err)
	}
	return strings.TrimSpace(out.Text), nil
}
