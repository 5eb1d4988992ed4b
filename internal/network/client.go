package network

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/duskfall-games/salem/server/internal/game"
	"github.com/duskfall-games/salem/server/internal/platform/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer. Setup submissions carry a
	// full constraint table, so this is roomier than a chat line needs.
	maxMessageSize = 64 * 1024
)

// ClientMessage is one inbound frame. Only Type is always present; the
// rest are read per type and stay zero otherwise.
type ClientMessage struct {
	Type     string               `json:"type"`
	Title    string               `json:"title"`
	Password string               `json:"password"`
	RoomID   int                  `json:"id"`
	Text     string               `json:"text"`
	Setup    game.SetupSubmission `json:"setup"`
	SaveSlot int                  `json:"save_slot"`
}

// Client is one websocket connection: the session's sink on the way out,
// the dispatcher's feeder on the way in.
type Client struct {
	registry *Registry
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	once     sync.Once
	log      *logger.Logger
}

// NewClient wraps an upgraded connection. The pumps are started by the
// caller: WritePump on its own goroutine, ReadPump on the handler's.
func NewClient(reg *Registry, conn *websocket.Conn, log *logger.Logger) *Client {
	return &Client{
		registry: reg,
		conn:     conn,
		send:     make(chan []byte, 256),
		done:     make(chan struct{}),
		log:      log,
	}
}

// topLevelFrames are delivered with their content keys spread across the
// top level of the frame instead of nested under "content". The lobby
// protocol predates the uniform envelope and clients parse these flat.
var topLevelFrames = map[game.EventType]bool{
	game.EventInitialInformation: true,
	game.EventNewRoom:            true,
	game.EventDeletedRoom:        true,
	game.EventRoomStatus:         true,
}

// Deliver implements game.Sink. It never blocks: a consumer that cannot
// drain its buffer loses frames rather than stalling a room.
func (c *Client) Deliver(typ game.EventType, content game.Content) {
	frame := make(map[string]any, len(content)+2)
	frame["type"] = string(typ)
	if topLevelFrames[typ] {
		for k, v := range content {
			frame[k] = v
		}
	} else if content != nil {
		frame["content"] = content
	}
	data, err := json.Marshal(frame)
	if err != nil {
		c.log.Errorf("unencodable %s frame: %v", typ, err)
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		c.log.Warnf("dropping %s frame: send buffer full", typ)
	}
}

// shutdown releases the write pump. Safe to call more than once and from
// any goroutine; queued frames are flushed before the close handshake.
func (c *Client) shutdown() {
	c.once.Do(func() { close(c.done) })
}

// ReadPump owns the inbound side: it signs the identity in, feeds frames
// to the dispatcher and tears the session down when the connection drops.
func (c *Client) ReadPump(identity string) {
	session := c.registry.Connect(identity, c)
	defer func() {
		c.registry.Disconnect(session)
		c.shutdown()
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warnf("session %s: read failed: %v", session.ID, err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.log.Warnf("session %s: undecodable frame: %v", session.ID, err)
			continue
		}
		c.registry.Dispatch(session, msg)
	}
}

// WritePump owns the outbound side. One writer per connection; frames
// queued while a write is in flight are batched into the same message.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued frames to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			for {
				select {
				case message := <-c.send:
					c.conn.WriteMessage(websocket.TextMessage, message)
				default:
					c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
