// Package suggest turns transcribed interviewer questions into coaching
// suggestions via an LLM chain, with a deterministic offline fallback.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/Engineernoob/ai-interview-buddy/internal/analysis/intent"
	"github.com/Engineernoob/ai-interview-buddy/internal/analysis/retrieve"
	"github.com/Engineernoob/ai-interview-buddy/internal/model/interview"
)

const (
	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 8 * time.Second
	// DefaultHistoryWindow is how many past exchanges feed the prompt.
	DefaultHistoryWindow = 5
)

// Options tunes the generation chain.
type Options struct {
	Timeout       time.Duration
	HistoryWindow int
}

// Request carries one transcribed question through generation.
type Request struct {
	SessionID  string
	Transcript string
	Label      intent.Label
	Snippets   []retrieve.Snippet
	History    []interview.HistoryEntry
}

// Service encapsulates prompt assembly and model invocation. A nil chat
// model is allowed; the service then serves canned per-label suggestions.
type Service struct {
	chatModel     model.BaseChatModel
	chain         compose.Runnable[map[string]any, *schema.Message]
	timeout       time.Duration
	historyWindow int
}

// NewService compiles the coaching chain over the given chat model. Pass a
// nil model to run in fallback-only mode.
func NewService(ctx context.Context, chatModel model.BaseChatModel, opts Options) (*Service, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	window := opts.HistoryWindow
	if window <= 0 {
		window = DefaultHistoryWindow
	}

	s := &Service{
		chatModel:     chatModel,
		timeout:       timeout,
		historyWindow: window,
	}

	if chatModel == nil {
		log.Printf("[AI] no chat model configured, serving canned suggestions")
		return s, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile coaching chain: %w", err)
	}
	s.chain = runnable
	return s, nil
}

// Enabled reports whether a real model backs the service.
func (s *Service) Enabled() bool {
	return s.chain != nil
}

// Generate produces a coaching result for one question. Model errors,
// timeouts, and unparsable output all degrade to the per-label fallback; the
// only error returned is the caller's own context cancellation.
func (s *Service) Generate(ctx context.Context, req Request) (*interview.CoachingResult, error) {
	if s.chain == nil {
		return s.fallback(req), nil
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.chain.Invoke(genCtx, s.buildChainInput(req))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("[AI] generation failed for session=%s intent=%s: %v, using fallback", req.SessionID, req.Label, err)
		return s.fallback(req), nil
	}

	result, ok := parseCoaching(response.Content)
	if !ok {
		log.Printf("[AI] unparsable model output for session=%s (%d bytes), using fallback", req.SessionID, len(response.Content))
		return s.fallback(req), nil
	}

	result.OriginalText = req.Transcript
	log.Printf("[AI] generated %d bullets for session=%s intent=%s", len(result.Bullets), req.SessionID, req.Label)
	return result, nil
}

func (s *Service) fallback(req Request) *interview.CoachingResult {
	result := fallbackResult(req.Label)
	result.OriginalText = req.Transcript
	return result
}

func (s *Service) buildChainInput(req Request) map[string]any {
	return map[string]any{
		"system":  s.buildSystemPrompt(req),
		"history": s.buildHistoryMessages(req.History),
		"query":   fmt.Sprintf("Interviewer said: %q\n\nProvide coaching tips in the JSON format above.", req.Transcript),
	}
}

const systemPreamble = `You are an expert interview coach helping a job candidate during a live interview. For each interviewer question you receive, provide practical coaching advice.

Respond in JSON format:
{
  "bullets": ["specific tip 1", "specific tip 2", "specific tip 3"],
  "follow_up": "a good follow-up question the candidate can ask"
}

Keep bullets short, specific, and immediately applicable. Respond with JSON only.`

func (s *Service) buildSystemPrompt(req Request) string {
	var builder strings.Builder
	builder.WriteString(systemPreamble)
	builder.WriteString("\n\nQuestion type: ")
	builder.WriteString(string(req.Label))

	if background := snippetTexts(req.Snippets, retrieve.SourceResume); len(background) > 0 {
		builder.WriteString("\nCandidate background: ")
		builder.WriteString(strings.Join(background, "; "))
	}
	if job := snippetTexts(req.Snippets, retrieve.SourceJob); len(job) > 0 {
		builder.WriteString("\nJob context: ")
		builder.WriteString(strings.Join(job, "; "))
	}
	return builder.String()
}

func (s *Service) buildHistoryMessages(entries []interview.HistoryEntry) []*schema.Message {
	if len(entries) == 0 {
		return nil
	}

	startIdx := 0
	if len(entries) > s.historyWindow {
		startIdx = len(entries) - s.historyWindow
	}

	history := make([]*schema.Message, 0, 2*(len(entries)-startIdx))
	for _, entry := range entries[startIdx:] {
		history = append(history, schema.UserMessage(fmt.Sprintf("Interviewer asked: %q", entry.Transcript)))

		reply, err := json.Marshal(coachingPayload{Bullets: entry.Bullets, FollowUp: entry.FollowUp})
		if err != nil {
			continue
		}
		history = append(history, schema.AssistantMessage(string(reply), nil))
	}
	return history
}

func snippetTexts(snippets []retrieve.Snippet, source string) []string {
	var texts []string
	for _, snippet := range snippets {
		if snippet.Source == source {
			texts = append(texts, snippet.Text)
		}
	}
	return texts
}
