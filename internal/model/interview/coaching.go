package interview

import "time"

// AudioChunk is one buffered slice of audio ready for transcription.
// Seq starts at 1 and increases without gaps for the life of a session.
type AudioChunk struct {
	Seq      uint64
	Data     []byte
	Duration time.Duration
}

// CoachingResult is the suggestion produced for one transcribed chunk.
type CoachingResult struct {
	Bullets      []string `json:"bullets"`
	FollowUp     string   `json:"followUp"`
	OriginalText string   `json:"originalText"`
}
