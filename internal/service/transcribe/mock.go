package transcribe

import (
	"context"
	"sync"

	"github.com/Engineernoob/ai-interview-buddy/internal/model/interview"
)

// cannedQuestions cycle through typical interviewer prompts so the full
// pipeline can be exercised without a speech backend.
var cannedQuestions = []string{
	"Tell me about yourself and your background.",
	"Describe a challenging project you worked on recently.",
	"What are your greatest strengths?",
	"Why do you want to work at this company?",
	"Where do you see yourself in five years?",
	"Tell me about a time you had a conflict with a teammate.",
}

type mockTranscriber struct {
	mu   sync.Mutex
	next int
}

func newMock() *mockTranscriber {
	return &mockTranscriber{}
}

func (m *mockTranscriber) Transcribe(_ context.Context, chunk *interview.AudioChunk) (string, error) {
	if chunk == nil || len(chunk.Data) == 0 {
		return "", nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	text := cannedQuestions[m.next%len(cannedQuestions)]
	m.next++
	return text, nil
}
