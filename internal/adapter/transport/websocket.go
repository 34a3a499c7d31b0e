package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-coach/internal/usecase/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// NewUpgrader accepts connections from the given origins. "*" allows any origin.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed["*"] {
				return true
			}
			return allowed[strings.TrimRight(origin, "/")]
		},
	}
}

// Conn relays session events and commands over one websocket
type Conn struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	logger    *zap.Logger
	closeOnce sync.Once
	closed    chan struct{}
}

var _ session.Sender = (*Conn)(nil)

// NewConn wraps an upgraded connection
func NewConn(conn *websocket.Conn, logger *zap.Logger) *Conn {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conn{conn: conn, logger: logger, closed: make(chan struct{})}
}

// Send writes cmd as one JSON text frame. Writes are serialized.
func (c *Conn) Send(ctx context.Context, cmd session.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-c.closed:
		return websocket.ErrCloseSent
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(cmd)
}

// ReadLoop decodes client events onto bus until the peer goes away or the bus is
// unsubscribed. It always signals Hangup on return.
func (c *Conn) ReadLoop(bus *session.Bus) error {
	defer bus.Hangup()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("websocket closed unexpectedly", zap.Error(err))
				return err
			}
			return nil
		}

		var ev session.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.logger.Warn("dropping malformed session event", zap.Error(err))
			continue
		}
		if ev.Type == "" {
			continue
		}
		if !bus.Publish(ev) {
			return nil
		}
	}
}

// KeepAlive pings the peer until ctx is done or the connection is closed
func (c *Conn) KeepAlive(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				c.logger.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}

// Close sends a normal close frame and releases the connection
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session finished")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}
