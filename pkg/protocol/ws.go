package protocol

import (
	"context"
	log "log/slog"
	"time"

	ws "github.com/gorilla/websocket"
)

type WebSocket struct {
	conn    *ws.Conn
	url     string
	timeout time.Duration
}

func DialWebSocket(ctx context.Context, url string, timeout time.Duration) (*WebSocket, error) {
	log.Debug("Dial websocket", "url", url)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, _, err := ws.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &WebSocket{conn: conn, url: url, timeout: timeout}, nil
}

func (web *WebSocket) Write(payload []byte) error {
	log.Debug("Write ws", "msg", string(payload))
	if web.timeout > 0 {
		web.conn.SetWriteDeadline(time.Now().Add(web.timeout))
	}
	return web.conn.WriteMessage(ws.TextMessage, payload)
}

// Close sends a normal closure frame before dropping the connection.
func (web *WebSocket) Close() error {
	msg := ws.FormatCloseMessage(ws.CloseNormalClosure, "")
	web.conn.WriteControl(ws.CloseMessage, msg, time.Now().Add(time.Second))
	return web.conn.Close()
}

func WsIsClosed(err error) bool {
	return ws.IsCloseError(err,
		ws.CloseNormalClosure,
		ws.CloseGoingAway,
		ws.CloseAbnormalClosure)
}
