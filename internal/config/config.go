// Package config loads every runtime setting from the environment.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/Engineernoob/ai-interview-buddy/internal/service/suggest"
)

// Config aggregates the full service configuration.
type Config struct {
	Server     ServerConfig
	Pipeline   PipelineConfig
	Transcribe TranscribeConfig
	Suggest    SuggestConfig
	Upload     UploadConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	pipeline, err := loadPipelineConfig()
	if err != nil {
		return nil, err
	}

	transcribe, err := loadTranscribeConfig()
	if err != nil {
		return nil, err
	}

	suggestCfg, err := loadSuggestConfig()
	if err != nil {
		return nil, err
	}

	upload, err := loadUploadConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:     server,
		Pipeline:   pipeline,
		Transcribe: transcribe,
		Suggest:    suggestCfg,
		Upload:     upload,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}

	addr := port
	if !strings.Contains(port, ":") {
		// Accept both ":8000" and bare "8000" forms.
		if strings.Contains(port, " ") {
			return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
		}
		addr = ":" + port
	}

	var origins []string
	for _, origin := range strings.Split(getEnvOrDefault("CORS_ORIGINS", "http://localhost:3000"), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	return ServerConfig{Addr: addr, CORSOrigins: origins}, nil
}

// PipelineConfig carries the tunable parameters of the coaching pipeline.
type PipelineConfig struct {
	ChunkDuration   time.Duration
	SampleRate      int
	Channels        int
	BytesPerSample  int
	QueueDepth      int
	HistoryWindow   int
	HistoryCapacity int
}

// BytesPerSecond is the PCM byte rate implied by the audio format.
func (c PipelineConfig) BytesPerSecond() int {
	return c.SampleRate * c.Channels * c.BytesPerSample
}

// ChunkBytes is the buffered byte count that completes one audio chunk.
func (c PipelineConfig) ChunkBytes() int {
	return int(int64(c.BytesPerSecond()) * int64(c.ChunkDuration) / int64(time.Second))
}

func loadPipelineConfig() (PipelineConfig, error) {
	cfg := PipelineConfig{
		ChunkDuration:   3 * time.Second,
		SampleRate:      16000,
		Channels:        1,
		BytesPerSample:  2,
		QueueDepth:      2,
		HistoryWindow:   5,
		HistoryCapacity: 20,
	}

	if chunkDuration, err := parseOptionalDurationEnv("CHUNK_DURATION"); err != nil {
		return PipelineConfig{}, err
	} else if chunkDuration != nil && *chunkDuration > 0 {
		cfg.ChunkDuration = *chunkDuration
	}

	if err := overrideIntEnv("SAMPLE_RATE", &cfg.SampleRate, 1); err != nil {
		return PipelineConfig{}, err
	}
	if err := overrideIntEnv("AUDIO_CHANNELS", &cfg.Channels, 1); err != nil {
		return PipelineConfig{}, err
	}
	if err := overrideIntEnv("BYTES_PER_SAMPLE", &cfg.BytesPerSample, 1); err != nil {
		return PipelineConfig{}, err
	}
	if err := overrideIntEnv("QUEUE_DEPTH", &cfg.QueueDepth, 1); err != nil {
		return PipelineConfig{}, err
	}
	if err := overrideIntEnv("HISTORY_WINDOW", &cfg.HistoryWindow, 1); err != nil {
		return PipelineConfig{}, err
	}
	if err := overrideIntEnv("HISTORY_CAPACITY", &cfg.HistoryCapacity, 1); err != nil {
		return PipelineConfig{}, err
	}

	return cfg, nil
}

// TranscribeConfig describes the speech-to-text backend. An empty BaseURL
// selects the offline canned transcriber.
type TranscribeConfig struct {
	BaseURL  string
	Model    string
	Language string
	APIKey   string
}

// Enabled reports whether a real transcription endpoint is configured.
func (c TranscribeConfig) Enabled() bool {
	return c.BaseURL != ""
}

func loadTranscribeConfig() (TranscribeConfig, error) {
	return TranscribeConfig{
		BaseURL:  strings.TrimSpace(os.Getenv("WHISPER_URL")),
		Model:    getEnvOrDefault("WHISPER_MODEL", "base"),
		Language: getEnvOrDefault("WHISPER_LANGUAGE", "en"),
		APIKey:   strings.TrimSpace(os.Getenv("WHISPER_API_KEY")),
	}, nil
}

// SuggestConfig describes the suggestion-generation backend. The local
// Ollama path is preferred; the hosted Ark endpoint is used when local
// inference is disabled and credentials are present.
type SuggestConfig struct {
	UseLocalLLM bool
	OllamaURL   string
	LocalModel  string
	MaxTokens   *int
	Temperature *float64
	Timeout     time.Duration
	Ark         ArkConfig
}

// ArkConfig carries credentials for the hosted model endpoint.
type ArkConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required hosted-model credentials are present.
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds the configured chat model. It returns (nil, nil) when
// no backend is configured, in which case canned suggestions are served.
func (c SuggestConfig) NewChatModel(ctx context.Context) (model.BaseChatModel, error) {
	if c.UseLocalLLM {
		var temperature *float32
		if c.Temperature != nil {
			val := float32(*c.Temperature)
			temperature = &val
		}

		return suggest.NewOllamaChatModel(ctx, &suggest.OllamaConfig{
			BaseURL:     c.OllamaURL,
			Model:       c.LocalModel,
			Temperature: temperature,
			MaxTokens:   c.MaxTokens,
		})
	}

	if !c.Ark.Enabled() {
		return nil, nil
	}

	var temperature *float32
	if c.Ark.Temperature != nil {
		val := float32(*c.Ark.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.Ark.TopP != nil {
		val := float32(*c.Ark.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.Ark.MaxTokens != nil {
		val := *c.Ark.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.Ark.BaseURL,
		Region:      c.Ark.Region,
		APIKey:      c.Ark.APIKey,
		AccessKey:   c.Ark.AccessKey,
		SecretKey:   c.Ark.SecretKey,
		Model:       c.Ark.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadSuggestConfig() (SuggestConfig, error) {
	useLocal, err := parseBoolEnv("USE_LOCAL_LLM", true)
	if err != nil {
		return SuggestConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("LLM_MAX_TOKENS")
	if err != nil {
		return SuggestConfig{}, err
	}
	if maxTokens == nil {
		defaultTokens := 500
		maxTokens = &defaultTokens
	}

	temperature, err := parseOptionalFloatEnv("LLM_TEMPERATURE")
	if err != nil {
		return SuggestConfig{}, err
	}
	if temperature == nil {
		defaultTemperature := 0.7
		temperature = &defaultTemperature
	}

	timeout := suggest.DefaultTimeout
	if override, err := parseOptionalDurationEnv("GENERATION_TIMEOUT"); err != nil {
		return SuggestConfig{}, err
	} else if override != nil && *override > 0 {
		timeout = *override
	}

	arkTemperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return SuggestConfig{}, err
	}

	arkTopP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return SuggestConfig{}, err
	}

	arkMaxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return SuggestConfig{}, err
	}

	return SuggestConfig{
		UseLocalLLM: useLocal,
		OllamaURL:   getEnvOrDefault("OLLAMA_URL", "http://localhost:11434"),
		LocalModel:  getEnvOrDefault("LLM_MODEL", "llama2"),
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Timeout:     timeout,
		Ark: ArkConfig{
			APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
			BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
			Temperature: arkTemperature,
			TopP:        arkTopP,
			MaxTokens:   arkMaxTokens,
		},
	}, nil
}

// UploadConfig bounds resume and job-description uploads.
type UploadConfig struct {
	MaxFileSize int64
}

func loadUploadConfig() (UploadConfig, error) {
	cfg := UploadConfig{MaxFileSize: 10 * 1024 * 1024}

	raw, ok := os.LookupEnv("MAX_FILE_SIZE")
	if !ok || strings.TrimSpace(raw) == "" {
		return cfg, nil
	}

	size, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return UploadConfig{}, fmt.Errorf("invalid MAX_FILE_SIZE value %q: %w", raw, err)
	}
	if size > 0 {
		cfg.MaxFileSize = size
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// overrideIntEnv replaces *dst when the variable is set, clamping to min.
func overrideIntEnv(key string, dst *int, min int) error {
	value, err := parseOptionalIntEnv(key)
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	if *value < min {
		*dst = min
	} else {
		*dst = *value
	}
	return nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalDurationEnv(key string) (*time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
