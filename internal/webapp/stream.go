package webapp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/docwright/docwright/internal/activity"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = pongWait * 9 / 10
	clientQueue = 64
)

// frame is one websocket message. A client first receives a snapshot of the
// whole log, then one record frame per append or update.
type frame struct {
	Type    string            `json:"type"`
	Record  *activity.Record  `json:"record,omitempty"`
	Records []activity.Record `json:"records,omitempty"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("webapp: websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	// Subscribe before taking the snapshot so nothing falls between them.
	// A record may then arrive twice; clients key records by id.
	queue := make(chan activity.Record, clientQueue)
	overflow := make(chan struct{})
	var closed bool
	cancel := s.log.Subscribe(func(rec activity.Record) {
		if closed {
			return
		}
		select {
		case queue <- rec:
		default:
			closed = true
			close(overflow)
		}
	})
	defer cancel()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(frame{Type: "snapshot", Records: s.log.Records()}); err != nil {
		return
	}

	done := make(chan struct{})
	go s.readPump(conn, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case rec := <-queue:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame{Type: "record", Record: &rec}); err != nil {
				slog.Debug("webapp: websocket write failed", "err", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-overflow:
			slog.Warn("webapp: websocket client too slow, dropping")
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow"), time.Now().Add(writeWait))
			return
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// readPump drains client frames so control messages are processed, and
// closes done when the client goes away.
func (s *Server) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
