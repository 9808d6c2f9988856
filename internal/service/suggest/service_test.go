package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/Engineernoob/ai-interview-buddy/internal/analysis/intent"
	"github.com/Engineernoob/ai-interview-buddy/internal/analysis/retrieve"
	"github.com/Engineernoob/ai-interview-buddy/internal/model/interview"
)

type fakeChatModel struct {
	reply    string
	err      error
	delay    time.Duration
	gotInput []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.gotInput = input
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	message, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{message}), nil
}

func newTestService(t *testing.T, fake *fakeChatModel, opts Options) *Service {
	t.Helper()
	s, err := NewService(context.Background(), fake, opts)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func TestGenerateParsesModelOutput(t *testing.T) {
	fake := &fakeChatModel{reply: `{"bullets":["Use STAR","Be concrete"],"follow_up":"What metrics matter?"}`}
	s := newTestService(t, fake, Options{})

	req := Request{
		SessionID:  "s1",
		Transcript: "Tell me about a conflict you resolved.",
		Label:      intent.Behavioral,
		Snippets: []retrieve.Snippet{
			{Text: "Led a team of five", Source: retrieve.SourceResume},
			{Text: "Requires cross-team collaboration", Source: retrieve.SourceJob},
		},
		History: []interview.HistoryEntry{
			{Transcript: "Tell me about yourself.", Bullets: []string{"Keep it brief"}, FollowUp: "What does the team do?"},
		},
	}

	result, err := s.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Bullets) != 2 || result.Bullets[0] != "Use STAR" {
		t.Errorf("bullets = %v", result.Bullets)
	}
	if result.FollowUp != "What metrics matter?" {
		t.Errorf("follow_up = %q", result.FollowUp)
	}
	if result.OriginalText != req.Transcript {
		t.Errorf("original_text = %q", result.OriginalText)
	}

	// system + one history exchange (user, assistant) + query
	if len(fake.gotInput) != 4 {
		t.Fatalf("model saw %d messages, want 4", len(fake.gotInput))
	}
	system := fake.gotInput[0]
	if system.Role != schema.System {
		t.Errorf("first message role = %s, want system", system.Role)
	}
	if !strings.Contains(system.Content, "Question type: behavioral") {
		t.Error("system prompt missing question type")
	}
	if !strings.Contains(system.Content, "Led a team of five") ||
		!strings.Contains(system.Content, "Requires cross-team collaboration") {
		t.Error("system prompt missing retrieved context")
	}
	query := fake.gotInput[3]
	if query.Role != schema.User || !strings.Contains(query.Content, "conflict you resolved") {
		t.Errorf("query message = %+v", query)
	}
}

func TestGenerateWindowsHistory(t *testing.T) {
	fake := &fakeChatModel{reply: `{"bullets":["tip"],"follow_up":""}`}
	s := newTestService(t, fake, Options{HistoryWindow: 2})

	var entries []interview.HistoryEntry
	for i := 0; i < 6; i++ {
		entries = append(entries, interview.HistoryEntry{
			Transcript: fmt.Sprintf("question %d", i),
			Bullets:    []string{"tip"},
		})
	}

	if _, err := s.Generate(context.Background(), Request{Transcript: "q", History: entries}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// system + 2 windowed exchanges + query
	if len(fake.gotInput) != 6 {
		t.Fatalf("model saw %d messages, want 6", len(fake.gotInput))
	}
	if !strings.Contains(fake.gotInput[1].Content, "question 4") {
		t.Errorf("oldest windowed entry = %q, want question 4", fake.gotInput[1].Content)
	}
}

func TestGenerateFallsBackOnModelError(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("upstream unavailable")}
	s := newTestService(t, fake, Options{})

	result, err := s.Generate(context.Background(), Request{
		Transcript: "What are your strengths?",
		Label:      intent.StrengthsWeaknesses,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.FollowUp != "" {
		t.Errorf("fallback follow_up = %q, want empty", result.FollowUp)
	}
	want := fallbackTips[intent.StrengthsWeaknesses]
	if len(result.Bullets) != len(want) || result.Bullets[0] != want[0] {
		t.Errorf("bullets = %v, want canned set for %s", result.Bullets, intent.StrengthsWeaknesses)
	}
	if result.OriginalText != "What are your strengths?" {
		t.Errorf("original_text = %q", result.OriginalText)
	}
}

func TestGenerateFallsBackOnGarbageOutput(t *testing.T) {
	fake := &fakeChatModel{reply: "I am unable to provide advice right now."}
	s := newTestService(t, fake, Options{})

	result, err := s.Generate(context.Background(), Request{Transcript: "q", Label: intent.Technical})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Bullets[0] != fallbackTips[intent.Technical][0] {
		t.Errorf("bullets = %v, want canned technical set", result.Bullets)
	}
}

func TestGenerateFallsBackOnTimeout(t *testing.T) {
	fake := &fakeChatModel{reply: `{"bullets":["late"],"follow_up":""}`, delay: 5 * time.Second}
	s := newTestService(t, fake, Options{Timeout: 50 * time.Millisecond})

	start := time.Now()
	result, err := s.Generate(context.Background(), Request{Transcript: "q", Label: intent.Behavioral})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Generate took %v, timeout not enforced", elapsed)
	}
	if result.Bullets[0] != fallbackTips[intent.Behavioral][0] {
		t.Errorf("bullets = %v, want canned set after timeout", result.Bullets)
	}
}

func TestGenerateHonorsCallerCancellation(t *testing.T) {
	fake := &fakeChatModel{reply: `{"bullets":["tip"],"follow_up":""}`, delay: 100 * time.Millisecond}
	s := newTestService(t, fake, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Generate(ctx, Request{Transcript: "q"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Generate with cancelled context = %v, want context.Canceled", err)
	}
}

func TestNilModelServesCannedSuggestions(t *testing.T) {
	s, err := NewService(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if s.Enabled() {
		t.Error("Enabled() = true without a model")
	}

	result, err := s.Generate(context.Background(), Request{Transcript: "q", Label: intent.Unknown})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Bullets[0] != genericTips[0] {
		t.Errorf("bullets = %v, want generic set", result.Bullets)
	}
}

func TestFallbackResultCopiesBullets(t *testing.T) {
	first := fallbackResult(intent.Behavioral)
	first.Bullets[0] = "mutated"

	second := fallbackResult(intent.Behavioral)
	if second.Bullets[0] == "mutated" {
		t.Error("fallback bullets share backing storage across calls")
	}
}
