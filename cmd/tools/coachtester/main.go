// coachtester drives the realtime coaching channel by hand: it streams a raw
// PCM file as audio frames and prints every server event.
package main

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Engineernoob/ai-interview-buddy/internal/model/wire"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	url := flag.String("url", "ws://localhost:8000/ws/audio", "coaching channel URL")
	audioPath := flag.String("audio", "", "raw PCM file streamed to the channel")
	frameBytes := flag.Int("frame-bytes", 16000, "bytes sent per audio frame")
	interval := flag.Duration("interval", 250*time.Millisecond, "delay between audio frames")
	sendStop := flag.Bool("stop", true, "send a stop frame after streaming")
	clearHistory := flag.Bool("clear", false, "send clear_history after streaming")
	wait := flag.Duration("wait", 15*time.Second, "how long to wait for server events before exiting")
	flag.Parse()

	if *audioPath == "" {
		flag.Usage()
		log.Fatal("provide -audio with a raw PCM file to stream")
	}

	data, err := os.ReadFile(*audioPath)
	if err != nil {
		log.Fatalf("failed to read audio file: %v", err)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Fatalf("failed to dial %s: %v", *url, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	done := make(chan struct{})
	go readEvents(conn, done)

	sendFrame(conn, wire.TypePing, map[string]int64{"timestamp": time.Now().Unix()})
	streamAudio(conn, data, *frameBytes, *interval)

	if *sendStop {
		sendFrame(conn, wire.TypeStop, nil)
	}
	if *clearHistory {
		sendFrame(conn, wire.TypeClearHistory, nil)
	}

	select {
	case <-done:
	case <-time.After(*wait):
		log.Printf("done waiting after %s", *wait)
	}

	deadline := time.Now().Add(time.Second)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}

func readEvents(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Printf("[event] read ended: %v", err)
			}
			return
		}

		var env wire.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("[event] unparsable frame: %s", raw)
			continue
		}
		log.Printf("[event] %s %s", env.Type, env.Data)
	}
}

func streamAudio(conn *websocket.Conn, data []byte, frameBytes int, interval time.Duration) {
	if frameBytes < 1 {
		frameBytes = 1
	}

	frames := 0
	for offset := 0; offset < len(data); offset += frameBytes {
		end := offset + frameBytes
		if end > len(data) {
			end = len(data)
		}
		sendFrame(conn, wire.TypeAudio, map[string]string{
			"audio": base64.StdEncoding.EncodeToString(data[offset:end]),
		})
		frames++
		time.Sleep(interval)
	}
	log.Printf("streamed %d audio frames (%d bytes)", frames, len(data))
}

func sendFrame(conn *websocket.Conn, frameType string, data any) {
	msg := map[string]any{"type": frameType}
	if data != nil {
		msg["data"] = data
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Fatalf("write %s frame failed: %v", frameType, err)
	}
}
