package debugserver

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/anty/internal/avatar"
	"github.com/normanking/anty/internal/bus"
	"github.com/normanking/anty/internal/emotion"
	"github.com/normanking/anty/internal/logging"
	"github.com/normanking/anty/internal/mascot"
)

func newServer(t *testing.T) (*Server, *mascot.Character, *bus.EventBus) {
	t.Helper()
	b := bus.NewEventBus()
	ch := mascot.New(mascot.Options{Bus: b, Logger: zerolog.Nop(), Rand: rand.New(rand.NewSource(1))})
	t.Cleanup(ch.Destroy)
	return New(ch, b, zerolog.Nop()), ch, b
}

func TestMapEmotion(t *testing.T) {
	tests := []struct {
		in   string
		want emotion.Type
		ok   bool
	}{
		{"happy", emotion.Happy, true},
		{" Celebrate ", emotion.Celebrate, true},
		{"look_left", emotion.LookLeft, true},
		{"joy", emotion.Happy, true},
		{"surprise", emotion.Shocked, true},
		{"no", emotion.Headshake, true},
		{"thinking", emotion.Idea, true},
		{"moonwalk", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := MapEmotion(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	look, ok := MapGaze(-0.8)
	assert.True(t, ok)
	assert.Equal(t, emotion.LookLeft, look)
	_, ok = MapGaze(0.1)
	assert.False(t, ok)
}

func TestExecute(t *testing.T) {
	s, ch, _ := newServer(t)

	ack := s.Execute(Command{ID: "1", Type: CommandEmote, Emotion: "happy"})
	assert.Equal(t, Ack{ID: "1", Command: CommandEmote, OK: true}, ack)
	assert.Equal(t, emotion.Happy, ch.Emotion())

	ack = s.Execute(Command{Type: CommandEmote, Emotion: "moonwalk"})
	assert.False(t, ack.OK)
	assert.Contains(t, ack.Error, "moonwalk")

	ack = s.Execute(Command{Type: CommandSize, Value: 0})
	assert.NotEmpty(t, ack.Error)

	ack = s.Execute(Command{Type: "dance"})
	assert.Contains(t, ack.Error, "unknown command")

	assert.True(t, s.Execute(Command{Type: CommandPowerOff}).OK)
	assert.Equal(t, avatar.StateTransitionOut, ch.State())

	ack = s.Execute(Command{Type: CommandEmote, Emotion: "sad"})
	assert.False(t, ack.OK)
	assert.Empty(t, ack.Error)
}

func TestHTTPEndpoints(t *testing.T) {
	s, _, _ := newServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx := context.Background()
	c := NewClient(ts.URL, zerolog.Nop())
	require.NoError(t, c.CheckHealth(ctx))

	snap, err := c.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, avatar.StateIdle, snap.State)
	assert.Equal(t, 1.0, snap.SizeScale)

	ack, err := c.Do(ctx, Command{Type: CommandEmote, Emotion: "joy"})
	require.NoError(t, err)
	assert.True(t, ack.OK)

	snap, err = c.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, emotion.Happy, snap.Emotion)

	_, err = c.Do(ctx, Command{Type: CommandEmote, Emotion: "moonwalk"})
	assert.Error(t, err)

	resp, err := http.Get(ts.URL + "/api/v1/emotions")
	require.NoError(t, err)
	defer resp.Body.Close()
	var configs []emotion.Config
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&configs))
	assert.Len(t, configs, len(emotion.Types()))

	resp2, err := http.Get(ts.URL + "/api/v1/command")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestLogHistory(t *testing.T) {
	s, _, _ := newServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	ctx := context.Background()
	c := NewClient(ts.URL, zerolog.Nop())

	_, err := c.Logs(ctx, 10)
	assert.Error(t, err, "no history attached")

	l, err := logging.New(&logging.Config{Level: logging.LevelDebug, Output: io.Discard})
	require.NoError(t, err)
	s.SetLogHistory(l)
	ctrlLog := l.Component("controller")
	ctrlLog.Info().Msg("timeline started")
	glowLog := l.Component("glow")
	glowLog.Warn().Msg("glow lagging")

	entries, err := c.Logs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "controller", entries[0].Component)
	assert.Equal(t, "timeline started", entries[0].Message)
	assert.Equal(t, "warn", entries[1].Level)

	resp, err := http.Get(ts.URL + "/api/v1/logs?limit=nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogEntriesAreStreamed(t *testing.T) {
	s, _, _ := newServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	l, err := logging.New(&logging.Config{Level: logging.LevelDebug, Output: io.Discard})
	require.NoError(t, err)
	s.SetLogHistory(l)

	msgs := make(chan Message, 64)
	c := NewClient(ts.URL, zerolog.Nop())
	c.OnMessage(func(m Message) { msgs <- m })
	c.Connect(context.Background())
	defer c.Disconnect()
	require.Eventually(t, func() bool { return s.Clients() == 1 }, 5*time.Second, 5*time.Millisecond)

	ctrlLog := l.Component("controller")
	ctrlLog.Info().Msg("state changed")
	deadline := time.After(5 * time.Second)
	for {
		select {
		case m := <-msgs:
			if m.Type == MessageLog && m.Log.Message == "state changed" {
				assert.Equal(t, "controller", m.Log.Component)
				return
			}
		case <-deadline:
			t.Fatal("no log message")
		}
	}
}

func TestWebSocketStream(t *testing.T) {
	s, _, _ := newServer(t)
	defer s.subscribe()()
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	msgs := make(chan Message, 64)
	c := NewClient(ts.URL, zerolog.Nop())
	c.OnMessage(func(m Message) { msgs <- m })
	c.Connect(context.Background())
	defer c.Disconnect()

	next := func() Message {
		select {
		case m := <-msgs:
			return m
		case <-time.After(5 * time.Second):
			t.Fatal("no message")
			return Message{}
		}
	}

	first := next()
	require.Equal(t, MessageSnapshot, first.Type)
	require.NotNil(t, first.Snapshot)
	assert.Equal(t, avatar.StateIdle, first.Snapshot.State)
	assert.Eventually(t, c.IsConnected, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, s.Clients())

	require.NoError(t, c.Send(Command{ID: "a", Type: CommandEmote, Emotion: "celebrate"}))

	var acked, started bool
	for !(acked && started) {
		m := next()
		switch m.Type {
		case MessageAck:
			assert.Equal(t, "a", m.Ack.ID)
			assert.True(t, m.Ack.OK)
			acked = true
		case MessageEvent:
			if m.Event.Type == bus.EventTypeEmotionStarted {
				assert.Equal(t, "celebrate", m.Event.Data["emotion"])
				started = true
			}
		}
	}
}

func TestClientRetriesWhileServerIsDown(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := NewClient(url, zerolog.Nop())
	c.SetInitialBackoff(10 * time.Millisecond)
	c.Connect(context.Background())
	time.Sleep(50 * time.Millisecond)
	assert.False(t, c.IsConnected())
	assert.Error(t, c.Send(Command{Type: CommandSnapshot}))

	done := make(chan struct{})
	go func() {
		c.Disconnect()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect hung")
	}
}

func TestRunServesUntilCancelled(t *testing.T) {
	s, _, _ := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, "127.0.0.1:0") }()

	require.Eventually(t, func() bool { return s.Addr() != nil }, 2*time.Second, 5*time.Millisecond)
	c := NewClient("http://"+s.Addr().String(), zerolog.Nop())
	assert.NoError(t, c.CheckHealth(context.Background()))

	cancel()
	assert.NoError(t, <-errCh)
}
