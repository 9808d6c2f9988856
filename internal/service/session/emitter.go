package session

import (
	"sync"

	"github.com/Engineernoob/ai-interview-buddy/internal/model/wire"
)

// orderedEmitter releases per-chunk events in chunk sequence order. Events
// for chunk N are held until every chunk below N has completed, so a dropped
// chunk's notice or a finished run can never overtake an earlier chunk.
type orderedEmitter struct {
	mu        sync.Mutex
	send      func(wire.ServerMessage)
	next      uint64
	pending   map[uint64][]wire.ServerMessage
	completed map[uint64]bool
}

func newOrderedEmitter(send func(wire.ServerMessage)) *orderedEmitter {
	return &orderedEmitter{
		send:      send,
		next:      1,
		pending:   make(map[uint64][]wire.ServerMessage),
		completed: make(map[uint64]bool),
	}
}

// Emit sends one event for chunk seq, buffering it while an earlier chunk is
// still open.
func (e *orderedEmitter) Emit(seq uint64, msg wire.ServerMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq == e.next {
		e.send(msg)
		return
	}
	e.pending[seq] = append(e.pending[seq], msg)
}

// Complete marks chunk seq as finished. When the current chunk completes,
// buffered events of consecutively completed successors are flushed.
func (e *orderedEmitter) Complete(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq == e.next {
		e.next++
	} else {
		e.completed[seq] = true
	}

	for e.completed[e.next] {
		for _, msg := range e.pending[e.next] {
			e.send(msg)
		}
		delete(e.pending, e.next)
		delete(e.completed, e.next)
		e.next++
	}
}
