// Package device maintains the WebSocket session to the RFID reader.
package device

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/rfidkiosk/internal/errors"
	"github.com/abrezinsky/rfidkiosk/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Handler receives link lifecycle events. Calls come from the link goroutine.
type Handler interface {
	LinkOpened()
	LinkClosed(err error)
	LinkMessage(data []byte)
}

// Backoff computes the delay before a reconnect attempt.
// With Max <= Initial the delay is fixed at Initial.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
}

// Delay returns the wait before the given consecutive attempt (1-based)
func (b Backoff) Delay(attempt int) time.Duration {
	if b.Max <= b.Initial || attempt <= 1 {
		return b.Initial
	}
	d := b.Initial
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= b.Max {
			return b.Max
		}
	}
	return d
}

// Link owns the single connection to the reader and reconnects it forever
type Link struct {
	url     string
	dialer  *websocket.Dialer
	handler Handler
	log     logger.Logger
	backoff Backoff

	mu   sync.Mutex
	conn *websocket.Conn
}

// New creates a Link to the reader WebSocket at url
func New(url string, handler Handler, log logger.Logger, backoff Backoff) *Link {
	return &Link{
		url:     url,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		handler: handler,
		log:     log,
		backoff: backoff,
	}
}

// URL returns the reader endpoint
func (l *Link) URL() string {
	return l.url
}

// Run connects and keeps reconnecting until ctx is cancelled
func (l *Link) Run(ctx context.Context) error {
	failures := 0
	for {
		l.log.Info("Opening reader connection", "url", l.url)
		opened, err := l.session(ctx)
		if ctx.Err() != nil {
			return nil
		}

		if opened {
			failures = 0
		}
		failures++
		delay := l.backoff.Delay(failures)

		l.log.Info("Reader connection closed, reconnecting", "delay", delay, "error", err)
		l.handler.LinkClosed(err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// session dials once and pumps inbound frames until the connection drops
func (l *Link) session(ctx context.Context) (bool, error) {
	conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return false, errors.Connection("failed to dial reader", err)
	}

	done := make(chan struct{})
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()

	defer func() {
		close(done)
		l.mu.Lock()
		l.conn = nil
		l.mu.Unlock()
		conn.Close()
	}()

	l.log.Info("Reader connection opened", "url", l.url)
	l.handler.LinkOpened()

	go l.keepalive(ctx, conn, done)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				l.log.Warn("Reader link error", "error", err)
			}
			return true, errors.Connection("reader connection closed", err)
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
		l.handler.LinkMessage(message)
	}
}

// keepalive pings the reader and closes the connection on shutdown
func (l *Link) keepalive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "kiosk shutting down"),
				time.Now().Add(writeWait))
			conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				l.log.Debug("Reader ping failed", "error", err)
				return
			}
		}
	}
}

// Connected reports whether a connection is currently open
func (l *Link) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn != nil
}

// Send writes v as a JSON text frame. It fails with ErrNotConnected when the link is down.
func (l *Link) Send(v any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return errors.NotConnected("connection to the reader is closed, reload the page")
	}

	l.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := l.conn.WriteJSON(v); err != nil {
		return errors.Connection("failed to send to reader", err)
	}
	return nil
}
