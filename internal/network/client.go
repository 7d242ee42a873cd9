// Package network maintains the websocket connection to a Showdown server
// and hands every received frame to the session layer.
package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/energizer-project/showtrack/internal/config"
	"github.com/energizer-project/showtrack/internal/events"
	"github.com/energizer-project/showtrack/internal/util"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 75 * time.Second
	writeWait      = 10 * time.Second
	connectTimeout = 30 * time.Second
)

// ErrNotConnected is returned by Send while no connection is open.
var ErrNotConnected = errors.New("not connected to server")

// FrameHandler receives one websocket message, which is one protocol frame.
type FrameHandler func(ctx context.Context, raw string)

// Client is a reconnecting websocket client. Frames are delivered to the
// handler in the order they are read.
type Client struct {
	mu      sync.Mutex
	writeMu sync.Mutex

	url     string
	rooms   []string
	handler FrameHandler
	bus     *events.EventBus
	dialer  *websocket.Dialer
	logger  zerolog.Logger

	minBackoff time.Duration
	maxBackoff time.Duration

	conn  *websocket.Conn
	state events.ConnectionState
}

// NewClient creates a client for the server section of the config.
func NewClient(cfg config.ServerConfig, bus *events.EventBus, handler FrameHandler) *Client {
	return &Client{
		url:        cfg.URL,
		rooms:      append([]string(nil), cfg.Rooms...),
		handler:    handler,
		bus:        bus,
		dialer:     &websocket.Dialer{HandshakeTimeout: connectTimeout, Proxy: http.ProxyFromEnvironment},
		logger:     util.ComponentLogger("network").With().Str("url", cfg.URL).Logger(),
		minBackoff: time.Duration(cfg.ReconnectMinSec) * time.Second,
		maxBackoff: time.Duration(cfg.ReconnectMaxSec) * time.Second,
	}
}

// Run keeps the connection open until ctx is cancelled, reconnecting with
// exponential backoff after every failure.
func (c *Client) Run(ctx context.Context) error {
	c.logger.Info().Msg("starting connection manager")
	backoff := c.minBackoff

	for {
		if ctx.Err() != nil {
			c.disconnect(ctx, nil)
			return nil
		}

		if err := c.connect(ctx); err != nil {
			c.logger.Error().Err(err).Dur("retry_in", backoff).Msg("connection failed")
			c.setState(ctx, events.ConnectionLost, err)
		} else {
			backoff = c.minBackoff
			err := c.readLoop(ctx)
			if ctx.Err() != nil {
				c.disconnect(ctx, nil)
				return nil
			}
			c.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("disconnected from server, reconnecting")
			c.disconnect(ctx, err)
		}

		select {
		case <-ctx.Done():
			c.disconnect(ctx, nil)
			return nil
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff, c.minBackoff, c.maxBackoff)
	}
}

// nextBackoff doubles the delay within [min, max].
func nextBackoff(cur, min, max time.Duration) time.Duration {
	next := cur * 2
	if next < min {
		next = min
	}
	if max > 0 && next > max {
		next = max
	}
	return next
}

func (c *Client) connect(ctx context.Context) error {
	c.setState(ctx, events.ConnectionDialing, nil)

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c.mu.Lock()
	c.conn = conn
	rooms := append([]string(nil), c.rooms...)
	c.mu.Unlock()

	c.logger.Info().Msg("connected to server")
	c.setState(ctx, events.ConnectionOpen, nil)

	for _, room := range rooms {
		if err := c.Send("", "/join "+room); err != nil {
			return fmt.Errorf("failed to join %s: %w", room, err)
		}
	}

	go c.keepAlive(ctx, conn)
	return nil
}

// keepAlive pings the server until the connection changes.
func (c *Client) keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			current := c.conn
			c.mu.Unlock()
			if current != conn {
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.logger.Warn().Err(err).Msg("failed to send ping")
				return
			}
		}
	}
}

// readLoop delivers text messages to the handler until the connection fails.
func (c *Client) readLoop(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info().Msg("server closed connection")
			}
			return err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		c.handler(ctx, string(data))
	}
}

// Send writes "room|text". An empty room targets the global room.
func (c *Client) Send(room, text string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(room+"|"+text)); err != nil {
		return fmt.Errorf("failed to send to %s: %w", c.url, err)
	}
	return nil
}

// SetRooms replaces the rooms joined on connect and joins the new ones on
// the open connection.
func (c *Client) SetRooms(rooms []string) error {
	c.mu.Lock()
	known := make(map[string]bool, len(c.rooms))
	for _, r := range c.rooms {
		known[r] = true
	}
	c.rooms = append([]string(nil), rooms...)
	connected := c.conn != nil
	c.mu.Unlock()

	if !connected {
		return nil
	}
	for _, r := range rooms {
		if known[r] {
			continue
		}
		if err := c.Send("", "/join "+r); err != nil {
			return err
		}
	}
	return nil
}

// disconnect closes the current connection, if any.
func (c *Client) disconnect(ctx context.Context, cause error) {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return
	}

	c.writeMu.Lock()
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	c.writeMu.Unlock()
	conn.Close()

	if cause != nil {
		c.setState(ctx, events.ConnectionLost, cause)
	} else {
		c.setState(ctx, events.ConnectionClosed, nil)
	}
}

func (c *Client) setState(ctx context.Context, state events.ConnectionState, err error) {
	c.mu.Lock()
	changed := c.state != state
	c.state = state
	c.mu.Unlock()

	if !changed || c.bus == nil {
		return
	}
	payload := events.ConnectionPayload{State: state, URL: c.url}
	if err != nil {
		payload.Error = err.Error()
	}
	c.bus.Emit(ctx, events.Event{Type: events.EventConnection, Source: "network", Payload: payload})
}

// State returns the current connection state.
func (c *Client) State() events.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected returns whether a connection is open.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}
