// Package ws pushes live charging snapshots to the browser so the monitor
// page keeps ticking without polling.
package ws

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chargeflow/internal/charging"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

// Stream upgrades monitor requests and pushes snapshots at a fixed cadence.
type Stream struct {
	charging *charging.Service
	interval time.Duration
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewStream builds a stream pushing every interval (default 1s).
func NewStream(charging *charging.Service, interval time.Duration, logger *zap.Logger) *Stream {
	if interval <= 0 {
		interval = time.Second
	}
	return &Stream{
		charging: charging,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The gateway terminates the browser session itself; the JWT
			// guard already ran before the upgrade.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeSession handles GET /ws/sessions/{id}: one snapshot per tick until
// the session stops or the client goes away.
func (s *Stream) ServeSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	if _, err := s.charging.Snapshot(sessionID); err != nil {
		http.Error(w, "no active session", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	go s.writeLoop(conn, sessionID)
	s.readLoop(conn)
}

func (s *Stream) writeLoop(conn *websocket.Conn, sessionID int64) {
	ticker := time.NewTicker(s.interval)
	pinger := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		pinger.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-ticker.C:
			snap, err := s.charging.Snapshot(sessionID)
			if err != nil {
				// Session was stopped and deregistered; tell the client to
				// move on to the payment page.
				deadline := time.Now().Add(writeWait)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"), deadline)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
			if snap.Stopped {
				deadline := time.Now().Add(writeWait)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"), deadline)
				return
			}
		case <-pinger.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so pongs are processed and close is noticed.
func (s *Stream) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
