// Package wire defines the JSON envelopes exchanged over the coaching channel.
// Every frame in either direction is {"type": ..., "data": {...}}.
package wire

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Client message types.
const (
	TypeAudio        = "audio"
	TypePing         = "ping"
	TypeClearHistory = "clear_history"
	TypeStop         = "stop"
)

// Server message types.
const (
	TypeStatus        = "status"
	TypeTranscription = "transcription"
	TypeAIResponse    = "ai_response"
	TypeError         = "error"
	TypePong          = "pong"
)

// Status values carried by status events.
const (
	StatusConnected           = "connected"
	StatusTranscribing        = "transcribing"
	StatusGenerating          = "generating"
	StatusNoSpeech            = "no_speech"
	StatusHistoryCleared      = "history_cleared"
	StatusChunkDropped        = "chunk_dropped"
	StatusTranscriptionFailed = "transcription_failed"
)

// Envelope is the raw frame shape before per-type decoding.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// DecodeError describes a malformed client frame. The connection stays open;
// the handler reports it back as an error event.
type DecodeError struct {
	Message string
}

func (e *DecodeError) Error() string {
	return e.Message
}

func badMessage(format string, args ...any) *DecodeError {
	return &DecodeError{Message: fmt.Sprintf(format, args...)}
}

// AudioMessage carries one decoded audio fragment.
type AudioMessage struct {
	Audio []byte
}

// PingMessage is a liveness probe. The client timestamp is echoed nowhere;
// the pong reply carries server time.
type PingMessage struct {
	Timestamp json.RawMessage
}

// ClearHistoryMessage empties the session's conversation history.
type ClearHistoryMessage struct{}

// StopMessage flushes any partially buffered audio.
type StopMessage struct{}

// DecodeClientMessage parses a raw client frame into one of the typed
// client messages. A nil DecodeError means the first return value is one of
// AudioMessage, PingMessage, ClearHistoryMessage, or StopMessage.
func DecodeClientMessage(raw []byte) (any, *DecodeError) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, badMessage("invalid JSON message")
	}

	switch env.Type {
	case TypeAudio:
		return decodeAudio(env.Data)
	case TypePing:
		var payload struct {
			Timestamp json.RawMessage `json:"timestamp"`
		}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &payload); err != nil {
				return nil, badMessage("invalid ping data")
			}
		}
		return PingMessage{Timestamp: payload.Timestamp}, nil
	case TypeClearHistory:
		return ClearHistoryMessage{}, nil
	case TypeStop:
		return StopMessage{}, nil
	case "":
		return nil, badMessage("missing message type")
	default:
		return nil, badMessage("unknown type: %s", env.Type)
	}
}

func decodeAudio(data json.RawMessage) (any, *DecodeError) {
	var payload struct {
		Audio string `json:"audio"`
	}
	if len(data) == 0 {
		return nil, badMessage("audio data is required")
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, badMessage("invalid audio data")
	}
	if strings.TrimSpace(payload.Audio) == "" {
		return nil, badMessage("audio data is required")
	}

	decoded, err := base64.StdEncoding.DecodeString(payload.Audio)
	if err != nil {
		return nil, badMessage("invalid audio data: %v", err)
	}
	return AudioMessage{Audio: decoded}, nil
}

// ServerMessage is an outbound frame ready for WriteJSON.
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// StatusPayload reports session lifecycle changes and warnings.
type StatusPayload struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// TranscriptionPayload carries the decoded text for one completed chunk.
type TranscriptionPayload struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// AIResponsePayload carries the coaching suggestion for one completed chunk.
type AIResponsePayload struct {
	Bullets      []string  `json:"bullets"`
	FollowUp     string    `json:"follow_up"`
	OriginalText string    `json:"original_text"`
	Timestamp    time.Time `json:"timestamp"`
}

// ErrorPayload reports a recoverable failure. The connection stays open.
type ErrorPayload struct {
	Message string `json:"message"`
}

// PongPayload answers a ping with server time.
type PongPayload struct {
	Timestamp time.Time `json:"timestamp"`
}

// NewStatus builds a status event.
func NewStatus(status, message string) ServerMessage {
	return ServerMessage{Type: TypeStatus, Data: StatusPayload{Status: status, Message: message}}
}

// NewConnected builds the greeting status sent right after the upgrade.
func NewConnected(sessionID string) ServerMessage {
	return ServerMessage{Type: TypeStatus, Data: StatusPayload{
		Status:    StatusConnected,
		SessionID: sessionID,
		Message:   "Connected to AI Interview Buddy",
	}}
}

// NewTranscription builds a transcription event.
func NewTranscription(text string, ts time.Time) ServerMessage {
	return ServerMessage{Type: TypeTranscription, Data: TranscriptionPayload{Text: text, Timestamp: ts}}
}

// NewAIResponse builds a coaching suggestion event.
func NewAIResponse(bullets []string, followUp, originalText string, ts time.Time) ServerMessage {
	return ServerMessage{Type: TypeAIResponse, Data: AIResponsePayload{
		Bullets:      bullets,
		FollowUp:     followUp,
		OriginalText: originalText,
		Timestamp:    ts,
	}}
}

// NewError builds an error event.
func NewError(message string) ServerMessage {
	return ServerMessage{Type: TypeError, Data: ErrorPayload{Message: message}}
}

// NewPong builds a pong reply.
func NewPong(ts time.Time) ServerMessage {
	return ServerMessage{Type: TypePong, Data: PongPayload{Timestamp: ts}}
}
