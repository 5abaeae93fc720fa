package debugserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/normanking/anty/internal/logging"
	"github.com/normanking/anty/internal/mascot"
)

// Reconnect backoff bounds.
const (
	InitialBackoff = 1 * time.Second
	MaxBackoff     = 30 * time.Second
)

// Client connects to a debug server and keeps the WebSocket stream alive
// across restarts of the character process.
type Client struct {
	baseURL string
	logger  zerolog.Logger
	http    *http.Client

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	cancel    context.CancelFunc
	done      chan struct{}

	onMessage func(Message)
	backoff   time.Duration
}

// NewClient creates a client for baseURL, e.g. http://127.0.0.1:7717.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.With().Str("component", "debug-client").Logger(),
		http:    &http.Client{Timeout: 5 * time.Second},
		backoff: InitialBackoff,
	}
}

// OnMessage sets the callback for every message from the server. It runs on
// the connection goroutine.
func (c *Client) OnMessage(fn func(Message)) {
	c.mu.Lock()
	c.onMessage = fn
	c.mu.Unlock()
}

// SetInitialBackoff changes the first reconnect delay.
func (c *Client) SetInitialBackoff(d time.Duration) { c.backoff = d }

// Connect starts the connection loop in the background.
func (c *Client) Connect(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.connectLoop(ctx)
	}()
}

// Disconnect stops the connection loop and waits for it to exit.
func (c *Client) Disconnect() {
	c.mu.Lock()
	cancel, done, conn := c.cancel, c.done, c.conn
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	if done != nil {
		<-done
	}
	c.mu.Lock()
	c.conn = nil
	c.connected = false
	c.mu.Unlock()
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Send writes cmd on the WebSocket.
func (c *Client) Send(cmd Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected || c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}

func (c *Client) connectLoop(ctx context.Context) {
	backoff := c.backoff
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := c.connectWS(ctx)
		c.mu.Lock()
		c.connected = false
		c.conn = nil
		c.mu.Unlock()
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			failures++
			if failures == 3 {
				c.logger.Warn().Err(err).Int("failures", failures).Msg("debug server not available, will retry less frequently")
			} else if failures > 3 {
				c.logger.Debug().Int("failures", failures).Msg("debug server still unavailable")
			} else {
				c.logger.Warn().Err(err).Msg("debug connection failed, reconnecting")
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		if err == nil {
			backoff = c.backoff
			failures = 0
			continue
		}
		backoff *= 2
		if backoff > MaxBackoff {
			backoff = MaxBackoff
		}
	}
}

// connectWS dials and reads until the connection breaks. A session that
// connected and later dropped returns nil.
func (c *Client) connectWS(ctx context.Context) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.logger.Info().Str("url", u.String()).Msg("connected to debug server")

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			c.logger.Debug().Err(err).Msg("debug connection closed")
			return nil
		}
		c.mu.RLock()
		fn := c.onMessage
		c.mu.RUnlock()
		if fn != nil {
			fn(msg)
		}
	}
}

// CheckHealth checks the health endpoint
func (c *Client) CheckHealth(ctx context.Context) error {
	resp, err := c.get(ctx, "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// State fetches the current snapshot over HTTP.
func (c *Client) State(ctx context.Context) (*mascot.Snapshot, error) {
	resp, err := c.get(ctx, "/api/v1/state")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var snap mascot.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &snap, nil
}

// Logs fetches up to limit recent log entries; zero means all kept.
func (c *Client) Logs(ctx context.Context, limit int) ([]logging.LogEntry, error) {
	resp, err := c.get(ctx, "/api/v1/logs?limit="+strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var entries []logging.LogEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode logs: %w", err)
	}
	return entries, nil
}

// Do posts cmd over HTTP, for one-shot callers that do not hold a stream.
func (c *Client) Do(ctx context.Context, cmd Command) (*Ack, error) {
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/command", strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var ack Ack
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, fmt.Errorf("decode ack: %w", err)
	}
	if ack.Error != "" {
		return &ack, fmt.Errorf("%s: %s", cmd.Type, ack.Error)
	}
	return &ack, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s failed: %d", path, resp.StatusCode)
	}
	return resp, nil
}
