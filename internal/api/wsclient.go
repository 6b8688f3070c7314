package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-edge/internal/jsondoc"
)

// sendQueueSize is the per-client outbound frame buffer.
const sendQueueSize = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is read-only and bound to a local address.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsClient is one upgraded connection. Its send queue is written only while
// holding the hub lock and closed only by the hub.
type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func newWSClient(hub *Hub, conn *websocket.Conn) *wsClient {
	return &wsClient{hub: hub, conn: conn, send: make(chan []byte, sendQueueSize)}
}

// enqueue reports whether data fit in the send queue.
func (c *wsClient) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// keepalive holds the connection timing derived from config.
type keepalive struct {
	ping time.Duration
	pong time.Duration
}

func (k keepalive) readDeadline() time.Time {
	return time.Now().Add(k.ping + k.pong)
}

func (k keepalive) writeDeadline() time.Time {
	return time.Now().Add(k.pong)
}

// handleWebSocket upgrades the request. A new client receives nothing until
// it subscribes to a channel.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	ka := keepalive{
		ping: time.Duration(s.wsCfg.PingInterval) * time.Second,
		pong: time.Duration(s.wsCfg.PongTimeout) * time.Second,
	}
	c := newWSClient(s.hub, conn)
	s.hub.register(c)

	go c.writeLoop(ka)
	go c.readLoop(ka, int64(s.wsCfg.MaxMessageSize))
}

func (c *wsClient) readLoop(ka keepalive, limit int64) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(limit)
	c.conn.SetReadDeadline(ka.readDeadline()) //nolint:errcheck // Enforced by the next read
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(ka.readDeadline())
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		// Application frames count as liveness too.
		c.conn.SetReadDeadline(ka.readDeadline()) //nolint:errcheck // Enforced by the next read
		c.dispatch(data)
	}
}

func (c *wsClient) writeLoop(ka keepalive) {
	ticker := time.NewTicker(ka.ping)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		var (
			kind int
			data []byte
		)
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil) //nolint:errcheck // Peer may be gone
				return
			}
			kind, data = websocket.TextMessage, msg
		case <-ticker.C:
			kind = websocket.PingMessage
		}

		c.conn.SetWriteDeadline(ka.writeDeadline()) //nolint:errcheck // Surfaces as a write error
		if err := c.conn.WriteMessage(kind, data); err != nil {
			return
		}
	}
}

// dispatch handles one inbound frame.
func (c *wsClient) dispatch(data []byte) {
	doc, err := jsondoc.Parse(data)
	if err != nil {
		c.hub.reply(c, Frame{Type: FrameError, Payload: errorBody("invalid JSON")})
		return
	}
	defer doc.Release()

	typ, _ := doc.GetString("type")
	id, _ := doc.GetString("id")

	switch typ {
	case FramePing:
		c.hub.reply(c, Frame{Type: FramePong, ID: id})
	case FrameSubscribe, FrameUnsubscribe:
		channels, ok := channelsOf(doc)
		if !ok {
			c.hub.reply(c, Frame{Type: FrameError, ID: id, Payload: errorBody("payload.channels must be an array of strings")})
			return
		}
		if typ == FrameSubscribe {
			c.hub.subscribe(c, channels...)
			c.hub.logger.Debug("websocket client subscribed", "channels", channels)
		} else {
			c.hub.unsubscribe(c, channels...)
		}
		c.hub.reply(c, Frame{Type: FrameAck, ID: id, Payload: ChannelList{Channels: channels}})
	default:
		c.hub.reply(c, Frame{Type: FrameError, ID: id, Payload: errorBody("unknown frame type: " + typ)})
	}
}

func channelsOf(doc *jsondoc.Document) ([]string, bool) {
	payload, ok := doc.Object("payload")
	if !ok {
		return nil, false
	}
	return payload.GetStrings("channels")
}

func errorBody(msg string) map[string]string {
	return map[string]string{"message": msg}
}
