// Package debugserver exposes a running character over HTTP and WebSocket:
// a state endpoint, the emotion catalog, a command endpoint and a live
// stream of bus events.
package debugserver

import (
	"strings"

	"github.com/normanking/anty/internal/bus"
	"github.com/normanking/anty/internal/emotion"
	"github.com/normanking/anty/internal/logging"
	"github.com/normanking/anty/internal/mascot"
)

// Message types sent by the server.
const (
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"
	MessageAck      = "ack"
	MessageError    = "error"
	MessageLog      = "log"
)

// CommandType names an operation a client can request.
type CommandType string

const (
	CommandEmote      CommandType = "emote"
	CommandPowerOff   CommandType = "power_off"
	CommandWakeUp     CommandType = "wake_up"
	CommandSearch     CommandType = "search"
	CommandExitSearch CommandType = "exit_search"
	CommandPause      CommandType = "pause"
	CommandResume     CommandType = "resume"
	CommandRecover    CommandType = "recover"
	CommandSize       CommandType = "size"
	CommandSuper      CommandType = "super"
	CommandSnapshot   CommandType = "snapshot"
)

// Command is a client request. Emotion accepts catalog names and the
// aliases understood by MapEmotion; Value carries the size or super scale.
type Command struct {
	ID       string      `json:"id,omitempty"`
	Type     CommandType `json:"type"`
	Emotion  string      `json:"emotion,omitempty"`
	Priority int         `json:"priority,omitempty"`
	Force    bool        `json:"force,omitempty"`
	Value    float64     `json:"value,omitempty"`
}

// Ack answers a Command. OK false with an empty Error means the character
// declined, e.g. an emotion that was queued rather than started.
type Ack struct {
	ID      string      `json:"id,omitempty"`
	Command CommandType `json:"command"`
	OK      bool        `json:"ok"`
	Error   string      `json:"error,omitempty"`
}

// AppName identifies an anty debug server in Health replies.
const AppName = "anty"

// Health is the reply of the health endpoint.
type Health struct {
	App     string `json:"app"`
	Status  string `json:"status"`
	State   string `json:"state"`
	Clients int    `json:"clients"`
}

// Message is one server-to-client frame.
type Message struct {
	Type     string            `json:"type"`
	Snapshot *mascot.Snapshot  `json:"snapshot,omitempty"`
	Event    *bus.Event        `json:"event,omitempty"`
	Ack      *Ack              `json:"ack,omitempty"`
	Log      *logging.LogEntry `json:"log,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// MapEmotion resolves a catalog name or a loose mood word to an emotion.
func MapEmotion(name string) (emotion.Type, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	if t := emotion.Type(n); t.Valid() {
		return t, true
	}
	switch n {
	case "joy", "glad":
		return emotion.Happy, true
	case "party", "yay", "success":
		return emotion.Celebrate, true
	case "excitement":
		return emotion.Excited, true
	case "content", "satisfied":
		return emotion.Pleased, true
	case "sadness", "unhappy":
		return emotion.Sad, true
	case "anger", "mad", "frustrated":
		return emotion.Angry, true
	case "surprise", "surprised", "shock":
		return emotion.Shocked, true
	case "thinking", "eureka", "lightbulb":
		return emotion.Idea, true
	case "yes", "agree":
		return emotion.Nod, true
	case "no", "disagree":
		return emotion.Headshake, true
	case "confused", "confusion", "searching":
		return emotion.LookAround, true
	case "left":
		return emotion.LookLeft, true
	case "right":
		return emotion.LookRight, true
	case "backforth", "back-and-forth":
		return emotion.BackForth, true
	}
	return "", false
}

// MapGaze turns a horizontal gaze in [-1,1] into a look emotion; near the
// centre there is none.
func MapGaze(x float64) (emotion.Type, bool) {
	switch {
	case x < -0.3:
		return emotion.LookLeft, true
	case x > 0.3:
		return emotion.LookRight, true
	}
	return "", false
}
