package device

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/rfidkiosk/internal/errors"
	"github.com/abrezinsky/rfidkiosk/internal/logger"
)

// recordingHandler collects link events
type recordingHandler struct {
	mu       sync.Mutex
	opened   int
	closed   int
	messages []string
	events   chan string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{events: make(chan string, 64)}
}

func (h *recordingHandler) LinkOpened() {
	h.mu.Lock()
	h.opened++
	h.mu.Unlock()
	h.emit("open")
}

func (h *recordingHandler) LinkClosed(err error) {
	h.mu.Lock()
	h.closed++
	h.mu.Unlock()
	h.emit("close")
}

func (h *recordingHandler) LinkMessage(data []byte) {
	h.mu.Lock()
	h.messages = append(h.messages, string(data))
	h.mu.Unlock()
	h.emit("message")
}

func (h *recordingHandler) emit(event string) {
	select {
	case h.events <- event:
	default:
	}
}

func (h *recordingHandler) waitFor(t *testing.T, event string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-h.events:
			if e == event {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", event)
		}
	}
}

var upgrader = websocket.Upgrader{}

// newReaderServer starts a fake reader; onConn runs for every accepted connection
func newReaderServer(t *testing.T, onConn func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		onConn(conn)
	}))
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func TestBackoff_Delay(t *testing.T) {
	tests := []struct {
		name    string
		backoff Backoff
		attempt int
		want    time.Duration
	}{
		{"fixed first", Backoff{Initial: 2 * time.Second}, 1, 2 * time.Second},
		{"fixed tenth", Backoff{Initial: 2 * time.Second}, 10, 2 * time.Second},
		{"max below initial is fixed", Backoff{Initial: 2 * time.Second, Max: time.Second}, 5, 2 * time.Second},
		{"capped first", Backoff{Initial: time.Second, Max: 10 * time.Second}, 1, time.Second},
		{"capped second", Backoff{Initial: time.Second, Max: 10 * time.Second}, 2, 2 * time.Second},
		{"capped fourth", Backoff{Initial: time.Second, Max: 10 * time.Second}, 4, 8 * time.Second},
		{"capped at max", Backoff{Initial: time.Second, Max: 10 * time.Second}, 5, 10 * time.Second},
		{"capped far out", Backoff{Initial: time.Second, Max: 10 * time.Second}, 100, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.backoff.Delay(tt.attempt); got != tt.want {
				t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestLink_ReceivesMessages(t *testing.T) {
	server := newReaderServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"UID_SCAN","uid":"aabb"}`))
		// Keep the connection open until the client goes away
		conn.ReadMessage()
	})

	handler := newRecordingHandler()
	link := New(wsURL(server), handler, logger.Nop{}, Backoff{Initial: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- link.Run(ctx) }()

	handler.waitFor(t, "open")
	handler.waitFor(t, "message")

	handler.mu.Lock()
	got := handler.messages[0]
	handler.mu.Unlock()
	if got != `{"type":"UID_SCAN","uid":"aabb"}` {
		t.Errorf("unexpected message %q", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil error on shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLink_ReconnectsAfterClose(t *testing.T) {
	var mu sync.Mutex
	connections := 0
	server := newReaderServer(t, func(conn *websocket.Conn) {
		mu.Lock()
		connections++
		mu.Unlock()
		conn.Close()
	})

	handler := newRecordingHandler()
	link := New(wsURL(server), handler, logger.Nop{}, Backoff{Initial: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go link.Run(ctx)

	handler.waitFor(t, "open")
	handler.waitFor(t, "close")
	handler.waitFor(t, "open")
	handler.waitFor(t, "close")

	mu.Lock()
	defer mu.Unlock()
	if connections < 2 {
		t.Errorf("expected at least 2 connections, got %d", connections)
	}
}

func TestLink_DialFailureReportsClose(t *testing.T) {
	server := newReaderServer(t, func(conn *websocket.Conn) {})
	url := wsURL(server)
	server.Close()

	handler := newRecordingHandler()
	link := New(url, handler, logger.Nop{}, Backoff{Initial: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go link.Run(ctx)

	handler.waitFor(t, "close")
	handler.waitFor(t, "close")

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if handler.opened != 0 {
		t.Errorf("expected no opens against a dead reader, got %d", handler.opened)
	}
}

func TestLink_SendWhileDisconnected(t *testing.T) {
	link := New("ws://127.0.0.1:1/ws", newRecordingHandler(), logger.Nop{}, Backoff{Initial: time.Second})

	err := link.Send(map[string]string{"type": "REGISTER"})
	if !errors.IsKind(err, errors.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if link.Connected() {
		t.Error("expected link to report disconnected")
	}
}

func TestLink_SendDeliversJSON(t *testing.T) {
	received := make(chan string, 1)
	server := newReaderServer(t, func(conn *websocket.Conn) {
		_, msg, err := conn.ReadMessage()
		if err == nil {
			received <- string(msg)
		}
		conn.ReadMessage()
	})

	handler := newRecordingHandler()
	link := New(wsURL(server), handler, logger.Nop{}, Backoff{Initial: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go link.Run(ctx)

	handler.waitFor(t, "open")
	if !link.Connected() {
		t.Fatal("expected link to be connected after open")
	}
	if err := link.Send(map[string]string{"type": "REGISTER", "uid": "CCDD"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case msg := <-received:
		if !strings.Contains(msg, `"uid":"CCDD"`) || !strings.Contains(msg, `"type":"REGISTER"`) {
			t.Errorf("unexpected frame %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reader never received the frame")
	}
}
