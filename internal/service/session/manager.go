// Package session coordinates per-connection coaching pipelines: audio
// buffering, the single-runner execution queue, ordered event emission, and
// session lifecycle.
package session

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Engineernoob/ai-interview-buddy/internal/model/interview"
	"github.com/Engineernoob/ai-interview-buddy/internal/model/profile"
	"github.com/Engineernoob/ai-interview-buddy/internal/model/wire"
	"github.com/Engineernoob/ai-interview-buddy/internal/service/audio"
	"github.com/Engineernoob/ai-interview-buddy/internal/service/history"
	"github.com/Engineernoob/ai-interview-buddy/internal/service/suggest"
)

// Transcriber converts one audio chunk into text.
type Transcriber interface {
	Transcribe(ctx context.Context, chunk *interview.AudioChunk) (string, error)
}

// Suggester produces a coaching result for one transcribed question.
type Suggester interface {
	Generate(ctx context.Context, req suggest.Request) (*interview.CoachingResult, error)
}

// Options carries the tunable pipeline parameters.
type Options struct {
	// ChunkBytes is the buffered byte count that completes a chunk.
	ChunkBytes int
	// BytesPerSecond converts chunk sizes into durations.
	BytesPerSecond int
	// QueueDepth bounds not-yet-started chunks per session.
	QueueDepth int
	// HistoryWindow is how many past exchanges feed each generation.
	HistoryWindow int
	// HistoryCapacity bounds retained exchanges per session.
	HistoryCapacity int
}

const defaultEventBuffer = 64

// Manager owns every live session and the collaborators they share. The
// collaborator clients are safe for concurrent use across sessions; all
// per-session state lives in the Session itself.
type Manager struct {
	transcriber Transcriber
	suggester   Suggester
	profiles    profile.Store
	opts        Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager wires the pipeline collaborators into a session registry.
func NewManager(transcriber Transcriber, suggester Suggester, profiles profile.Store, opts Options) *Manager {
	if opts.QueueDepth < 1 {
		opts.QueueDepth = 2
	}
	if opts.HistoryWindow < 1 {
		opts.HistoryWindow = suggest.DefaultHistoryWindow
	}
	if opts.HistoryCapacity < 1 {
		opts.HistoryCapacity = history.DefaultCapacity
	}

	return &Manager{
		transcriber: transcriber,
		suggester:   suggester,
		profiles:    profiles,
		opts:        opts,
		sessions:    make(map[string]*Session),
	}
}

// Open creates a session, snapshotting the currently uploaded resume and
// job description as its immutable context, and starts its run loop.
func (m *Manager) Open() *Session {
	prof, _ := m.profiles.Current()

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:            uuid.New().String(),
		createdAt:     time.Now(),
		transcriber:   m.transcriber,
		suggester:     m.suggester,
		buffer:        audio.NewIngestBuffer(m.opts.ChunkBytes, m.opts.BytesPerSecond),
		history:       history.NewStore(m.opts.HistoryCapacity),
		profile:       prof,
		historyWindow: m.opts.HistoryWindow,
		queueDepth:    m.opts.QueueDepth,
		state:         interview.StateIdle,
		events:        make(chan wire.ServerMessage, defaultEventBuffer),
		wake:          make(chan struct{}, 1),
		ctx:           ctx,
		cancel:        cancel,
	}
	s.emitter = newOrderedEmitter(s.send)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	go s.run()

	log.Printf("[session] %s opened (resume=%t, job=%t)", s.id, prof.HasResume(), prof.JobDescription != "")
	return s
}

// Get looks up a live session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close tears down one session and removes it from the registry. Closing an
// unknown or already-closed session is a no-op.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		s.close()
	}
}

// CloseAll tears down every live session, as on server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sessions returns a point-in-time snapshot of every live session, oldest
// first.
func (m *Manager) Sessions() []interview.Session {
	m.mu.RLock()
	out := make([]interview.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Snapshot())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
