package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	UserID         string
	rooms          map[string]bool
	maxMessageSize int64
}

// command is what a connected client may send.
type command struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string, maxMessageSize int64) *Client {
	return &Client{
		hub:            hub,
		conn:           conn,
		send:           make(chan []byte, sendBuffer),
		UserID:         userID,
		rooms:          make(map[string]bool),
		maxMessageSize: maxMessageSize,
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithUserID(c.UserID).WithError(err).Warn("Realtime connection closed unexpectedly")
			}
			break
		}

		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One frame per envelope so clients can parse each as JSON
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(message []byte) {
	var cmd command
	if err := json.Unmarshal(message, &cmd); err != nil {
		c.reply("error", map[string]string{"message": "invalid message"})
		return
	}

	switch cmd.Type {
	case "subscribe":
		if !CanSubscribe(c.UserID, cmd.Channel) {
			c.reply("error", map[string]string{"message": "subscription not allowed", "channel": cmd.Channel})
			return
		}
		c.hub.Join(c, cmd.Channel)
		c.reply("subscribed", map[string]string{"channel": cmd.Channel})

	case "unsubscribe":
		c.hub.Leave(c, cmd.Channel)
		c.reply("unsubscribed", map[string]string{"channel": cmd.Channel})

	case "ping":
		c.reply("pong", nil)

	default:
		c.reply("error", map[string]string{"message": "unknown message type"})
	}
}

func (c *Client) reply(event string, data interface{}) {
	msg, err := NewMessage("", event, data)
	if err != nil {
		return
	}

	c.hub.mutex.RLock()
	defer c.hub.mutex.RUnlock()

	// send is closed once the client is unregistered
	if _, ok := c.hub.clients[c]; ok {
		c.hub.sendToClient(c, msg)
	}
}
