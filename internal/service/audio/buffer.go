// Package audio accumulates inbound audio fragments into transcription chunks.
package audio

import (
	"bytes"
	"sync"
	"time"

	"github.com/Engineernoob/ai-interview-buddy/internal/model/interview"
)

// IngestBuffer collects audio fragments until a full chunk's worth of bytes
// has arrived. Push never blocks and is safe to call while a pipeline run is
// in flight. Chunk sequence numbers start at 1 and are gapless.
type IngestBuffer struct {
	mu             sync.Mutex
	buf            bytes.Buffer
	thresholdBytes int
	bytesPerSecond int
	nextSeq        uint64
}

// NewIngestBuffer creates a buffer that emits a chunk once thresholdBytes
// have accumulated. bytesPerSecond converts byte counts into durations.
func NewIngestBuffer(thresholdBytes, bytesPerSecond int) *IngestBuffer {
	if thresholdBytes < 1 {
		thresholdBytes = 1
	}
	if bytesPerSecond < 1 {
		bytesPerSecond = 1
	}
	return &IngestBuffer{
		thresholdBytes: thresholdBytes,
		bytesPerSecond: bytesPerSecond,
	}
}

// Push appends a fragment. When the accumulated bytes reach the threshold the
// whole accumulation is returned as one chunk and the buffer resets;
// otherwise Push returns nil.
func (b *IngestBuffer) Push(p []byte) *interview.AudioChunk {
	if len(p) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf.Write(p)
	if b.buf.Len() < b.thresholdBytes {
		return nil
	}
	return b.takeLocked()
}

// Flush returns whatever has accumulated as a partial chunk, or nil when the
// buffer is empty. Zero-length chunks are never produced.
func (b *IngestBuffer) Flush() *interview.AudioChunk {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.buf.Len() == 0 {
		return nil
	}
	return b.takeLocked()
}

// Len reports the currently buffered byte count.
func (b *IngestBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *IngestBuffer) takeLocked() *interview.AudioChunk {
	data := make([]byte, b.buf.Len())
	copy(data, b.buf.Bytes())
	b.buf.Reset()

	b.nextSeq++
	return &interview.AudioChunk{
		Seq:      b.nextSeq,
		Data:     data,
		Duration: byteDuration(len(data), b.bytesPerSecond),
	}
}

func byteDuration(n, bytesPerSecond int) time.Duration {
	return time.Duration(n) * time.Second / time.Duration(bytesPerSecond)
}
