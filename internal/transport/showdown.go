package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ronakgh97/pokebrains/internal/constants"
)

// ErrNotConnected is returned when a command is sent before Connect.
var ErrNotConnected = errors.New("showdown connection not established")

// Client maintains one websocket connection to a Showdown simulator. Writes
// are serialized through a mutex; reads happen on the Listen loop only.
type Client struct {
	url    string
	logger zerolog.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

func NewClient(url string, logger zerolog.Logger) *Client {
	return &Client{
		url:    url,
		logger: logger,
	}
}

// Connect dials the simulator. The context bounds the handshake only.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: constants.DialTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	c.conn = conn
	c.connected = true
	c.logger.Info().Str("url", c.url).Msg("connection established")
	return nil
}

// JoinRoom asks the simulator to stream the given room's log.
func (c *Client) JoinRoom(room string) error {
	return c.Send("|/join " + room)
}

// Send writes one raw command frame.
func (c *Client) Send(command string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(command)); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// Listen reads frames until the connection drops or the context is canceled,
// passing each text frame to handle. A frame may bundle many protocol lines;
// splitting is the caller's concern.
func (c *Client) Listen(ctx context.Context, handle func(text string) error) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	conn.SetPingHandler(func(data string) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		return conn.WriteMessage(websocket.PongMessage, []byte(data))
	})

	defer c.close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		kind, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info().Msg("connection closed by server")
				return nil
			}
			return fmt.Errorf("websocket read failed: %w", err)
		}
		if kind != websocket.TextMessage {
			continue
		}

		if err := handle(string(payload)); err != nil {
			return err
		}
	}
}

// IsConnected reports the connection state.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Close shuts the connection down.
func (c *Client) Close() error {
	return c.close()
}

func (c *Client) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	err := c.conn.Close()
	c.conn = nil
	return err
}
