package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Team-Elite-2025/midas/defense"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// isValidOrigin checks if the origin is allowed to connect
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No origin header - could be a non-browser client
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		log.Printf("Invalid origin URL: %s", origin)
		return false
	}

	// Allow same-origin connections
	if r.Host == originURL.Host {
		return true
	}

	// Allow localhost connections for development
	if strings.HasPrefix(originURL.Host, "localhost:") ||
		strings.HasPrefix(originURL.Host, "127.0.0.1:") ||
		originURL.Host == "localhost" ||
		originURL.Host == "127.0.0.1" {
		return true
	}

	log.Printf("Rejected WebSocket connection from origin: %s", origin)
	return false
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       isValidOrigin,
	EnableCompression: true, // Enable per-message deflate compression
}

// Message types
const (
	MsgTypeWelcome = "welcome"
	MsgTypeField   = "field"
	MsgTypeTrace   = "trace"
	MsgTypeFrame   = "frame"
	MsgTypeReset   = "reset"
	MsgTypeError   = "error"
)

var errSimFeedActive = errors.New("frames refused: server is running the sim feed")

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one connected dashboard or vision process. Clients that
// connect with ?format=msgpack receive field snapshots as binary frames;
// everything else is JSON.
type Client struct {
	ID      int
	conn    *websocket.Conn
	send    chan ServerMessage
	server  *Server
	msgpack bool
}

// welcomePayload is sent once on connect so clients can label the run
// and draw the pitch before the first snapshot arrives.
type welcomePayload struct {
	RunID    string                 `json:"runId"`
	TickHz   int                    `json:"tickHz"`
	Feed     string                 `json:"feed"`
	Geometry defense.TargetGeometry `json:"geometry"`
}

// HandleWebSocket upgrades a connection and starts its pumps.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	s.mu.Lock()
	s.nextID++
	client := &Client{
		ID:      s.nextID,
		conn:    conn,
		send:    make(chan ServerMessage, 64),
		server:  s,
		msgpack: r.URL.Query().Get("format") == "msgpack",
	}
	s.mu.Unlock()

	s.register <- client

	go client.writePump()
	go client.readPump()

	client.send <- ServerMessage{Type: MsgTypeWelcome, Data: welcomePayload{
		RunID:    s.runID,
		TickHz:   s.cfg.TickHz,
		Feed:     s.cfg.Feed,
		Geometry: s.cfg.Sim.Geometry(),
	}}
}

// readPump handles inbound control messages until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.server.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Client %d read error: %v", c.ID, err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("malformed message: " + err.Error())
			continue
		}

		switch msg.Type {
		case MsgTypeFrame:
			if err := c.server.ingestFrame(msg.Data); err != nil {
				c.sendError(err.Error())
			}
		case MsgTypeReset:
			c.server.Reset()
		default:
			c.sendError("unknown message type: " + msg.Type)
		}
	}
}

// writePump delivers queued messages, encoding field snapshots as msgpack
// binary frames for clients that asked for them.
func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

		if c.msgpack && msg.Type == MsgTypeField {
			data, err := msgpack.Marshal(msg.Data)
			if err != nil {
				log.Printf("Client %d msgpack encode: %v", c.ID, err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
			continue
		}

		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}

	// Channel closed by the server: say goodbye cleanly.
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *Client) sendError(detail string) {
	select {
	case c.send <- ServerMessage{Type: MsgTypeError, Data: detail}:
	default:
	}
}

// decodeFrame parses a schema-validated frame into a TickInput. Geometry
// is filled in by the remote feed.
func decodeFrame(data []byte) (defense.TickInput, error) {
	var in defense.TickInput
	if err := json.Unmarshal(data, &in); err != nil {
		return defense.TickInput{}, err
	}
	return in, nil
}
