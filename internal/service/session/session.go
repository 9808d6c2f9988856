package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Engineernoob/ai-interview-buddy/internal/analysis/intent"
	"github.com/Engineernoob/ai-interview-buddy/internal/analysis/retrieve"
	"github.com/Engineernoob/ai-interview-buddy/internal/model/interview"
	"github.com/Engineernoob/ai-interview-buddy/internal/model/profile"
	"github.com/Engineernoob/ai-interview-buddy/internal/model/wire"
	"github.com/Engineernoob/ai-interview-buddy/internal/service/audio"
	"github.com/Engineernoob/ai-interview-buddy/internal/service/history"
	"github.com/Engineernoob/ai-interview-buddy/internal/service/suggest"
)

// ErrSessionClosed is returned by ingest operations after the session has
// been torn down.
var ErrSessionClosed = errors.New("session closed")

// Session owns all state for one open coaching channel: the audio buffer,
// the conversation history, the run queue, and the outbound event stream.
// Audio ingestion may run concurrently with an in-flight pipeline run; the
// run loop itself processes one chunk at a time.
type Session struct {
	id        string
	createdAt time.Time

	transcriber   Transcriber
	suggester     Suggester
	buffer        *audio.IngestBuffer
	history       *history.Store
	profile       profile.Profile
	historyWindow int
	queueDepth    int

	mu    sync.Mutex
	state interview.State
	queue []*interview.AudioChunk

	events  chan wire.ServerMessage
	emitter *orderedEmitter
	wake    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was opened.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the current lifecycle state.
func (s *Session) State() interview.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot reports the session's identity and lifecycle state.
func (s *Session) Snapshot() interview.Session {
	return interview.Session{
		ID:        s.id,
		State:     s.State(),
		CreatedAt: s.createdAt,
	}
}

// Events is the ordered outbound event stream. It is never closed; consumers
// select on Done to detect teardown.
func (s *Session) Events() <-chan wire.ServerMessage { return s.events }

// Done is closed when the session has been torn down.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// HistoryLen reports how many exchanges the session has retained.
func (s *Session) HistoryLen() int { return s.history.Len() }

// Send queues a connection-scoped event (pong, validation error, lifecycle
// status) on the outbound stream. Chunk results never go through here.
func (s *Session) Send(msg wire.ServerMessage) { s.send(msg) }

// OnAudio feeds one decoded audio fragment into the session's buffer and
// enqueues a pipeline run when a chunk completes. Never blocks on pipeline
// work.
func (s *Session) OnAudio(p []byte) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.markListening()

	if chunk := s.buffer.Push(p); chunk != nil {
		s.enqueue(chunk)
	}
	return nil
}

// Flush drains any partial audio accumulation into a final chunk, as when
// the client stops recording.
func (s *Session) Flush() error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if chunk := s.buffer.Flush(); chunk != nil {
		s.enqueue(chunk)
	}
	return nil
}

// ClearHistory empties the conversation history and acknowledges with a
// status event. Idempotent; in-flight work is unaffected.
func (s *Session) ClearHistory() error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.history.Clear()
	s.send(wire.NewStatus(wire.StatusHistoryCleared, "Conversation history cleared"))
	return nil
}

func (s *Session) markListening() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == interview.StateIdle {
		s.state = interview.StateListening
	}
}

// enqueue adds a completed chunk to the run queue. At capacity the oldest
// not-yet-started chunk is dropped and announced, never the in-flight one.
func (s *Session) enqueue(chunk *interview.AudioChunk) {
	s.mu.Lock()
	var dropped *interview.AudioChunk
	if len(s.queue) >= s.queueDepth {
		dropped = s.queue[0]
		s.queue = s.queue[1:]
	}
	s.queue = append(s.queue, chunk)
	s.mu.Unlock()

	if dropped != nil {
		log.Printf("[session] %s dropped queued audio chunk %d, backlog at capacity", s.id, dropped.Seq)
		s.emitter.Emit(dropped.Seq, wire.NewStatus(wire.StatusChunkDropped, "Audio backlog full, dropped oldest pending chunk"))
		s.emitter.Complete(dropped.Seq)
	}

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Session) dequeue() *interview.AudioChunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil
	}
	chunk := s.queue[0]
	s.queue = s.queue[1:]
	return chunk
}

// run is the session's single pipeline loop. One chunk is processed at a
// time, which keeps per-chunk events in order without further locking.
func (s *Session) run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
		}

		for {
			chunk := s.dequeue()
			if chunk == nil {
				break
			}
			s.process(chunk)

			if s.ctx.Err() != nil {
				return
			}
		}
	}
}

// process runs one chunk through transcription, classification, retrieval,
// and suggestion generation, emitting events through the ordered emitter.
func (s *Session) process(chunk *interview.AudioChunk) {
	seq := chunk.Seq
	s.emitter.Emit(seq, wire.NewStatus(wire.StatusTranscribing, "Processing audio..."))

	text, err := s.transcriber.Transcribe(s.ctx, chunk)
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		log.Printf("[session] %s transcription failed for chunk %d: %v", s.id, seq, err)
		s.emitter.Emit(seq, wire.NewStatus(wire.StatusTranscriptionFailed, "Audio transcription failed, still listening"))
		s.emitter.Complete(seq)
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		s.emitter.Emit(seq, wire.NewStatus(wire.StatusNoSpeech, "No speech detected in audio"))
		s.emitter.Complete(seq)
		return
	}

	s.emitter.Emit(seq, wire.NewTranscription(text, time.Now()))
	s.emitter.Emit(seq, wire.NewStatus(wire.StatusGenerating, "Generating response suggestion..."))

	label := intent.Classify(text)
	snippets := retrieve.Retrieve(label, s.profile.ResumeText, s.profile.JobDescription)

	result, err := s.suggester.Generate(s.ctx, suggest.Request{
		SessionID:  s.id,
		Transcript: text,
		Label:      label,
		Snippets:   snippets,
		History:    s.history.Recent(s.historyWindow),
	})
	if err != nil {
		// Generation only errors on session teardown.
		return
	}

	s.history.Append(interview.HistoryEntry{
		Transcript: text,
		Bullets:    result.Bullets,
		FollowUp:   result.FollowUp,
		CreatedAt:  time.Now(),
	})
	s.emitter.Emit(seq, wire.NewAIResponse(result.Bullets, result.FollowUp, result.OriginalText, time.Now()))
	s.emitter.Complete(seq)
}

// send delivers one event to the outbound stream, giving up when the
// session is torn down.
func (s *Session) send(msg wire.ServerMessage) {
	select {
	case s.events <- msg:
	case <-s.ctx.Done():
	}
}

// close makes the session terminal: the queue is discarded, in-flight
// collaborator calls are cancelled, and no further events are attempted.
func (s *Session) close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	s.mu.Lock()
	s.state = interview.StateClosed
	s.queue = nil
	s.mu.Unlock()

	s.cancel()
	log.Printf("[session] %s closed", s.id)
}
