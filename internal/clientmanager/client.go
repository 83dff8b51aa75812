package clientmanager

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Conn is the part of a websocket connection the registry needs.
// *websocket.Conn from gorilla satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Client interface {
	GetID() uuid.UUID

	ReadMessage() ([]byte, error)
	WriteJSON(v any) error
	WriteRaw(data []byte) error
	Close() error
	// Shutdown sends a normal closure frame before closing.
	Shutdown() error

	// Allow reports whether a message of the given kind passes the rate limit at now.
	// When it does not, the returned duration is the time left in the window.
	Allow(kind string, now time.Time) (time.Duration, bool)
}

type client struct {
	id      uuid.UUID
	conn    Conn
	manager *clientManagerImpl

	writeMu sync.Mutex

	limitMu  sync.Mutex
	limiters map[string]*rate.Limiter
}

func (c *client) GetID() uuid.UUID {
	return c.id
}

func (c *client) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *client) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.WriteRaw(data)
}

func (c *client) WriteRaw(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *client) Close() error {
	c.manager.clients.Remove(c.id)
	return c.conn.Close()
}

func (c *client) Shutdown() error {
	c.writeMu.Lock()
	err := c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	if cerr := c.Close(); err == nil {
		err = cerr
	}
	return err
}

func (c *client) Allow(kind string, now time.Time) (time.Duration, bool) {
	c.limitMu.Lock()
	defer c.limitMu.Unlock()

	l, ok := c.limiters[kind]
	if !ok {
		// One message per window, the first one always passes.
		l = rate.NewLimiter(rate.Every(c.manager.window), 1)
		c.limiters[kind] = l
	}

	tokens := l.TokensAt(now)
	if tokens >= 1 {
		l.AllowN(now, 1)
		return 0, true
	}
	left := time.Duration((1 - tokens) * float64(c.manager.window))
	return left, false
}
