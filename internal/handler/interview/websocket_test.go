package interview

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	interviewmodel "github.com/Engineernoob/ai-interview-buddy/internal/model/interview"
	"github.com/Engineernoob/ai-interview-buddy/internal/model/profile"
	"github.com/Engineernoob/ai-interview-buddy/internal/service/session"
	"github.com/Engineernoob/ai-interview-buddy/internal/service/suggest"
)

type stubTranscriber struct {
	mu    sync.Mutex
	texts []string
	calls int
}

func (f *stubTranscriber) Transcribe(ctx context.Context, chunk *interviewmodel.AudioChunk) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text := "What are your strengths?"
	if f.calls < len(f.texts) {
		text = f.texts[f.calls]
	}
	f.calls++
	return text, nil
}

type stubSuggester struct{}

func (stubSuggester) Generate(ctx context.Context, req suggest.Request) (*interviewmodel.CoachingResult, error) {
	return &interviewmodel.CoachingResult{
		Bullets:      []string{"Lead with impact", "Quantify results"},
		FollowUp:     "What metrics did you move?",
		OriginalText: req.Transcript,
	}, nil
}

func newChannelServer(t *testing.T, tr session.Transcriber) (*httptest.Server, *session.Manager) {
	t.Helper()
	m := session.NewManager(tr, stubSuggester{}, profile.NewMemoryStore(), session.Options{
		ChunkBytes:      8,
		BytesPerSecond:  8,
		QueueDepth:      2,
		HistoryWindow:   5,
		HistoryCapacity: 20,
	})

	r := chi.NewRouter()
	New(m).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		m.CloseAll()
		srv.Close()
	})
	return srv, m
}

func dialChannel(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/audio"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type serverFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) serverFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var frame serverFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func decodeData(t *testing.T, frame serverFrame, dst any) {
	t.Helper()
	if err := json.Unmarshal(frame.Data, dst); err != nil {
		t.Fatalf("decode %s data: %v", frame.Type, err)
	}
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	conn.SetWriteDeadline(time.Now().Add(3 * time.Second))
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func sendAudio(t *testing.T, conn *websocket.Conn, payload []byte) {
	t.Helper()
	sendJSON(t, conn, map[string]any{
		"type": "audio",
		"data": map[string]string{"audio": base64.StdEncoding.EncodeToString(payload)},
	})
}

func expectConnected(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	frame := readFrame(t, conn)
	if frame.Type != "status" {
		t.Fatalf("first frame type = %s, want status", frame.Type)
	}
	var payload struct {
		Status    string `json:"status"`
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	decodeData(t, frame, &payload)
	if payload.Status != "connected" {
		t.Fatalf("greeting status = %s, want connected", payload.Status)
	}
	if payload.SessionID == "" {
		t.Fatal("greeting carries no session id")
	}
	if payload.Message != "Connected to AI Interview Buddy" {
		t.Fatalf("greeting message = %q", payload.Message)
	}
	return payload.SessionID
}

func expectStatus(t *testing.T, conn *websocket.Conn, want string) {
	t.Helper()
	frame := readFrame(t, conn)
	if frame.Type != "status" {
		t.Fatalf("frame type = %s, want status %s", frame.Type, want)
	}
	var payload struct {
		Status string `json:"status"`
	}
	decodeData(t, frame, &payload)
	if payload.Status != want {
		t.Fatalf("status = %s, want %s", payload.Status, want)
	}
}

func TestChannelHandshakeAndPing(t *testing.T) {
	srv, _ := newChannelServer(t, &stubTranscriber{})
	conn := dialChannel(t, srv)

	expectConnected(t, conn)

	sendJSON(t, conn, map[string]any{"type": "ping", "data": map[string]any{"timestamp": 123}})
	frame := readFrame(t, conn)
	if frame.Type != "pong" {
		t.Fatalf("frame type = %s, want pong", frame.Type)
	}
	var payload struct {
		Timestamp time.Time `json:"timestamp"`
	}
	decodeData(t, frame, &payload)
	if payload.Timestamp.IsZero() {
		t.Fatal("pong carries no server timestamp")
	}
}

func TestChannelRejectsUnknownType(t *testing.T) {
	srv, _ := newChannelServer(t, &stubTranscriber{})
	conn := dialChannel(t, srv)

	expectConnected(t, conn)

	sendJSON(t, conn, map[string]any{"type": "bogus", "data": map[string]any{}})
	frame := readFrame(t, conn)
	if frame.Type != "error" {
		t.Fatalf("frame type = %s, want error", frame.Type)
	}
	var payload struct {
		Message string `json:"message"`
	}
	decodeData(t, frame, &payload)
	if payload.Message != "unknown type: bogus" {
		t.Fatalf("error message = %q, want %q", payload.Message, "unknown type: bogus")
	}

	// The channel stays usable after a rejected frame.
	sendJSON(t, conn, map[string]any{"type": "ping"})
	if frame := readFrame(t, conn); frame.Type != "pong" {
		t.Fatalf("frame type after error = %s, want pong", frame.Type)
	}
}

func TestChannelRejectsInvalidJSON(t *testing.T) {
	srv, _ := newChannelServer(t, &stubTranscriber{})
	conn := dialChannel(t, srv)

	expectConnected(t, conn)

	conn.SetWriteDeadline(time.Now().Add(3 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write raw frame: %v", err)
	}

	frame := readFrame(t, conn)
	if frame.Type != "error" {
		t.Fatalf("frame type = %s, want error", frame.Type)
	}
	var payload struct {
		Message string `json:"message"`
	}
	decodeData(t, frame, &payload)
	if payload.Message != "invalid JSON message" {
		t.Fatalf("error message = %q", payload.Message)
	}
}

func TestChannelAudioPipeline(t *testing.T) {
	tr := &stubTranscriber{texts: []string{"Tell me about a challenging project."}}
	srv, _ := newChannelServer(t, tr)
	conn := dialChannel(t, srv)

	expectConnected(t, conn)
	sendAudio(t, conn, make([]byte, 8))

	expectStatus(t, conn, "transcribing")

	frame := readFrame(t, conn)
	if frame.Type != "transcription" {
		t.Fatalf("frame type = %s, want transcription", frame.Type)
	}
	var transcription struct {
		Text string `json:"text"`
	}
	decodeData(t, frame, &transcription)
	if transcription.Text != "Tell me about a challenging project." {
		t.Fatalf("transcription text = %q", transcription.Text)
	}

	expectStatus(t, conn, "generating")

	frame = readFrame(t, conn)
	if frame.Type != "ai_response" {
		t.Fatalf("frame type = %s, want ai_response", frame.Type)
	}
	var response struct {
		Bullets      []string `json:"bullets"`
		FollowUp     string   `json:"follow_up"`
		OriginalText string   `json:"original_text"`
	}
	decodeData(t, frame, &response)
	if len(response.Bullets) != 2 || response.Bullets[0] != "Lead with impact" {
		t.Fatalf("bullets = %v", response.Bullets)
	}
	if response.FollowUp != "What metrics did you move?" {
		t.Fatalf("follow_up = %q", response.FollowUp)
	}
	if response.OriginalText != "Tell me about a challenging project." {
		t.Fatalf("original_text = %q", response.OriginalText)
	}
}

func TestChannelStopFlushesPartialAudio(t *testing.T) {
	tr := &stubTranscriber{texts: []string{"Why this company?"}}
	srv, _ := newChannelServer(t, tr)
	conn := dialChannel(t, srv)

	expectConnected(t, conn)

	// Half a chunk, then an explicit stop.
	sendAudio(t, conn, make([]byte, 4))
	sendJSON(t, conn, map[string]any{"type": "stop", "data": map[string]any{}})

	expectStatus(t, conn, "transcribing")
	frame := readFrame(t, conn)
	if frame.Type != "transcription" {
		t.Fatalf("frame type = %s, want transcription", frame.Type)
	}
}

func TestChannelClearHistory(t *testing.T) {
	srv, _ := newChannelServer(t, &stubTranscriber{})
	conn := dialChannel(t, srv)

	expectConnected(t, conn)

	sendJSON(t, conn, map[string]any{"type": "clear_history", "data": map[string]any{}})
	frame := readFrame(t, conn)
	if frame.Type != "status" {
		t.Fatalf("frame type = %s, want status", frame.Type)
	}
	var payload struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	decodeData(t, frame, &payload)
	if payload.Status != "history_cleared" {
		t.Fatalf("status = %s, want history_cleared", payload.Status)
	}
	if payload.Message != "Conversation history cleared" {
		t.Fatalf("message = %q", payload.Message)
	}
}

func TestChannelServerCloseSendsCloseFrame(t *testing.T) {
	srv, m := newChannelServer(t, &stubTranscriber{})
	conn := dialChannel(t, srv)

	id := expectConnected(t, conn)
	m.Close(id)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := conn.ReadMessage()
	if err == nil {
		t.Fatal("expected the server to close the connection")
	}
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("close error = %v, want normal closure", err)
	}
}

func TestChannelClientDisconnectClosesSession(t *testing.T) {
	srv, m := newChannelServer(t, &stubTranscriber{})
	conn := dialChannel(t, srv)

	id := expectConnected(t, conn)
	if _, ok := m.Get(id); !ok {
		t.Fatal("session not registered while connected")
	}

	conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for {
		if _, ok := m.Get(id); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("session still registered after client disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
