// Package transcribe converts buffered audio chunks into text.
package transcribe

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Engineernoob/ai-interview-buddy/internal/model/interview"
)

// Transcriber is the interface for speech-to-text backends. An empty string
// with a nil error means the chunk contained no recognizable speech.
type Transcriber interface {
	Transcribe(ctx context.Context, chunk *interview.AudioChunk) (string, error)
}

// Options configures the transcription backend.
type Options struct {
	// BaseURL is the root of a Whisper-compatible server. Empty selects the
	// canned offline transcriber.
	BaseURL    string
	Model      string
	Language   string
	APIKey     string
	SampleRate int
	Channels   int
	Timeout    time.Duration
}

// New selects a backend from the options. Without an endpoint it falls back
// to canned transcripts so the pipeline stays usable offline.
func New(opts Options) Transcriber {
	if strings.TrimSpace(opts.BaseURL) == "" {
		log.Printf("[ASR] no endpoint configured, using canned transcripts")
		return newMock()
	}
	return newWhisperClient(opts)
}
