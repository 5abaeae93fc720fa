package debugserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/normanking/anty/internal/bus"
	"github.com/normanking/anty/internal/emotion"
	"github.com/normanking/anty/internal/logging"
	"github.com/normanking/anty/internal/mascot"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64

	defaultLogLimit = 200
)

// Character is what the server drives. *mascot.Character satisfies it.
type Character interface {
	Emote(t emotion.Type, opts mascot.EmoteOptions) bool
	WakeUp() bool
	PowerOff() bool
	EnterSearch() bool
	ExitSearch() bool
	Pause() bool
	Resume() bool
	Recover()
	SetSize(px float64)
	SetSuperMode(scale float64)
	Snapshot() mascot.Snapshot
	Catalog() *emotion.Catalog
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

// Server serves the debug API for one character.
type Server struct {
	ch       Character
	bus      *bus.EventBus
	log      zerolog.Logger
	upgrader websocket.Upgrader
	history  LogHistory

	mu      sync.RWMutex
	clients map[*client]struct{}
	addr    net.Addr
}

// New creates a server. Events published on b are streamed to every
// WebSocket client; b may be nil.
func New(ch Character, b *bus.EventBus, logger zerolog.Logger) *Server {
	return &Server{
		ch:  ch,
		bus: b,
		log: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// LogHistory is the in-memory log a Server can expose and stream.
type LogHistory interface {
	GetHistory(limit int) []logging.LogEntry
	SetOnLog(fn func(logging.LogEntry))
}

// SetLogHistory serves h on the logs route and streams new entries to
// WebSocket clients. Call before Run.
func (s *Server) SetLogHistory(h LogHistory) {
	s.history = h
	if h != nil {
		h.SetOnLog(func(e logging.LogEntry) {
			s.broadcast(Message{Type: MessageLog, Log: &e})
		})
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", s.handleHealth)
	mux.HandleFunc("/api/v1/state", s.handleState)
	mux.HandleFunc("/api/v1/emotions", s.handleEmotions)
	mux.HandleFunc("/api/v1/command", s.handleCommand)
	mux.HandleFunc("/api/v1/logs", s.handleLogs)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Run listens on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	unsubscribe := s.subscribe()
	defer unsubscribe()

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.log.Info().Str("addr", ln.Addr().String()).Msg("debug server listening")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		return srv.Shutdown(shutdownCtx)
	}
}

// Addr is the bound address once Run is listening.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Clients is the number of connected WebSocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// subscribe forwards bus events to the clients until the returned func is
// called.
func (s *Server) subscribe() func() {
	if s.bus == nil {
		return func() {}
	}
	return s.bus.SubscribeAll(func(e bus.Event) {
		s.broadcast(Message{Type: MessageEvent, Event: &e})
	})
}

func (s *Server) broadcast(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			// slow consumer
			s.log.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("debug client dropped")
			delete(s.clients, c)
			close(c.send)
		}
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Health{
		App:     AppName,
		Status:  "ok",
		State:   string(s.ch.Snapshot().State),
		Clients: s.Clients(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ch.Snapshot())
}

func (s *Server) handleEmotions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ch.Catalog().Configs())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "log history not available"})
		return
	}
	limit := defaultLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad limit " + v})
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.history.GetHistory(limit))
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST required"})
		return
	}
	var cmd Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ack := s.Execute(cmd)
	status := http.StatusOK
	if ack.Error != "" {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, ack)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan Message, sendBuffer)}

	snap := s.ch.Snapshot()
	c.send <- Message{Type: MessageSnapshot, Snapshot: &snap}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("debug client connected")

	go s.writePump(c)
	s.readPump(c)
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.mu.Lock()
		if _, ok := s.clients[c]; ok {
			delete(s.clients, c)
			close(c.send)
		}
		s.mu.Unlock()
		c.conn.Close()
		s.log.Debug().Msg("debug client disconnected")
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			var syntax *json.SyntaxError
			if errors.As(err, &syntax) {
				s.reply(c, Message{Type: MessageError, Error: err.Error()})
				continue
			}
			return
		}
		ack := s.Execute(cmd)
		s.reply(c, Message{Type: MessageAck, Ack: &ack})
		if cmd.Type == CommandSnapshot {
			snap := s.ch.Snapshot()
			s.reply(c, Message{Type: MessageSnapshot, Snapshot: &snap})
		}
	}
}

func (s *Server) reply(c *client, msg Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
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

// Execute runs cmd against the character.
func (s *Server) Execute(cmd Command) Ack {
	ack := Ack{ID: cmd.ID, Command: cmd.Type}
	switch cmd.Type {
	case CommandEmote:
		t, ok := MapEmotion(cmd.Emotion)
		if !ok {
			ack.Error = fmt.Sprintf("unknown emotion %q", cmd.Emotion)
			break
		}
		ack.OK = s.ch.Emote(t, mascot.EmoteOptions{Priority: cmd.Priority, Force: cmd.Force})
	case CommandPowerOff:
		ack.OK = s.ch.PowerOff()
	case CommandWakeUp:
		ack.OK = s.ch.WakeUp()
	case CommandSearch:
		ack.OK = s.ch.EnterSearch()
	case CommandExitSearch:
		ack.OK = s.ch.ExitSearch()
	case CommandPause:
		ack.OK = s.ch.Pause()
	case CommandResume:
		ack.OK = s.ch.Resume()
	case CommandRecover:
		s.ch.Recover()
		ack.OK = true
	case CommandSize:
		if cmd.Value <= 0 {
			ack.Error = "size must be positive"
			break
		}
		s.ch.SetSize(cmd.Value)
		ack.OK = true
	case CommandSuper:
		s.ch.SetSuperMode(cmd.Value)
		ack.OK = true
	case CommandSnapshot:
		ack.OK = true
	default:
		ack.Error = fmt.Sprintf("unknown command %q", cmd.Type)
	}
	s.log.Debug().
		Str("command", string(cmd.Type)).
		Str("emotion", cmd.Emotion).
		Bool("ok", ack.OK).
		Str("error", ack.Error).
		Msg("command executed")
	return ack
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
