package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/normanking/anty/internal/avatar"
	"github.com/normanking/anty/internal/bus"
	"github.com/normanking/anty/internal/config"
	"github.com/normanking/anty/internal/debugserver"
	"github.com/normanking/anty/internal/emotion"
	"github.com/normanking/anty/internal/mascot"
)

const refreshInterval = 100 * time.Millisecond

// monitorKeys maps keys to script words.
var monitorKeys = map[rune]string{
	'1': "happy",
	'2': "celebrate",
	'3': "excited",
	'4': "sad",
	'5': "angry",
	'6': "shocked",
	'7': "spin",
	'8': "idea",
	'9': "look-around",
	'0': "wink",
	'p': "off",
	'w': "wake",
	's': "search",
	'x': "exit-search",
	'r': "recover",
}

var eyeGlyphs = map[string][2]rune{
	"idle":       {'█', '█'},
	"happy":      {'^', '^'},
	"smize":      {'~', '~'},
	"angry":      {'\\', '/'},
	"sad":        {'/', '\\'},
	"look-left":  {'◀', '◀'},
	"look-right": {'▶', '▶'},
	"closed":     {'-', '-'},
	"half":       {'▄', '▄'},
	"wide":       {'O', 'O'},
	"arrow":      {'>', '<'},
	"triangle":   {'▲', '▲'},
}

// source is what the monitor watches: a local headless character or a
// remote debug server.
type source interface {
	Snapshot(ctx context.Context) (*mascot.Snapshot, error)
	Execute(ctx context.Context, cmd debugserver.Command) (debugserver.Ack, error)
	Close()
}

type localSource struct {
	ch     *mascot.Character
	exec   *debugserver.Server
	cancel context.CancelFunc
	done   chan struct{}
}

func newLocalSource(cfg *config.Config, logger zerolog.Logger) *localSource {
	ch := mascot.New(mascot.Options{
		Config:  cfg,
		Catalog: emotion.Default(),
		Bus:     bus.NewEventBus(),
		Logger:  logger,
		Rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	})
	ctx, cancel := context.WithCancel(context.Background())
	s := &localSource{
		ch:     ch,
		exec:   debugserver.New(ch, nil, logger),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		ch.Run(ctx, mascot.DefaultFPS)
	}()
	return s
}

func (s *localSource) Snapshot(context.Context) (*mascot.Snapshot, error) {
	snap := s.ch.Snapshot()
	return &snap, nil
}

func (s *localSource) Execute(_ context.Context, cmd debugserver.Command) (debugserver.Ack, error) {
	return s.exec.Execute(cmd), nil
}

func (s *localSource) Close() {
	s.cancel()
	<-s.done
	s.ch.Destroy()
}

type remoteSource struct {
	client *debugserver.Client
}

func (s *remoteSource) Snapshot(ctx context.Context) (*mascot.Snapshot, error) {
	return s.client.State(ctx)
}

func (s *remoteSource) Execute(ctx context.Context, cmd debugserver.Command) (debugserver.Ack, error) {
	ack, err := s.client.Do(ctx, cmd)
	if err != nil {
		return debugserver.Ack{Command: cmd.Type, Error: err.Error()}, err
	}
	return *ack, nil
}

func (s *remoteSource) Close() {}

func newMonitorCmd() *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch the character in the terminal",
		Long: `Show the character state, queue and a sketch of the character.

Without --remote a headless character runs inside antyctl; with --remote the
monitor follows the preview at --url. Keys: 0-9 emote, p off, w wake,
s search, x exit search, space pause, r recover, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var src source
			if remote {
				url, err := resolveURL(commandContext(cmd), nil)
				if err != nil {
					return err
				}
				src = &remoteSource{client: debugserver.NewClient(url, zerolog.Nop())}
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				src = newLocalSource(cfg, zerolog.Nop())
			}
			defer src.Close()

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()
			return runMonitor(commandContext(cmd), screen, src)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "follow the debug server at --url")
	return cmd
}

func runMonitor(ctx context.Context, screen tcell.Screen, src source) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	var (
		snap   *mascot.Snapshot
		status string
	)
	refresh := func() {
		reqCtx, cancel := context.WithTimeout(ctx, refreshInterval*5)
		s, err := src.Snapshot(reqCtx)
		cancel()
		if err != nil {
			status = "disconnected: " + err.Error()
		} else {
			snap = s
		}
		drawMonitor(screen, snap, status)
	}
	refresh()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			refresh()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return nil
				}
				if ev.Key() != tcell.KeyRune {
					continue
				}
				word, ok := keyWord(ev.Rune(), snap)
				if !ok {
					continue
				}
				status = runWord(ctx, src, word)
				refresh()
			case *tcell.EventResize:
				screen.Sync()
				refresh()
			}
		}
	}
}

// keyWord resolves a key press; space toggles pause.
func keyWord(r rune, snap *mascot.Snapshot) (string, bool) {
	if r == ' ' {
		if snap != nil && snap.State == avatar.StatePaused {
			return "resume", true
		}
		return "pause", true
	}
	word, ok := monitorKeys[r]
	return word, ok
}

func runWord(ctx context.Context, src source, word string) string {
	s, err := parseStep(word)
	if err != nil {
		return err.Error()
	}
	reqCtx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()
	ack, err := src.Execute(reqCtx, s.Command)
	if err != nil {
		return err.Error()
	}
	switch {
	case ack.Error != "":
		return word + ": " + ack.Error
	case ack.OK:
		return word
	}
	return word + " (declined or queued)"
}

var (
	labelStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	valueStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	stateColor  = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	spriteStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// drawMonitor renders one frame. snap may be nil before the first
// successful refresh.
func drawMonitor(screen tcell.Screen, snap *mascot.Snapshot, status string) {
	screen.Clear()
	w, h := screen.Size()
	drawText(screen, 1, 0, stateColor, "anty monitor")
	if status != "" {
		drawText(screen, 1, h-2, statusStyle, status)
	}
	drawText(screen, 1, h-1, labelStyle, "0-9 emote  p off  w wake  s/x search  space pause  r recover  q quit")
	if snap == nil {
		drawText(screen, 1, 2, labelStyle, "waiting for state...")
		screen.Show()
		return
	}

	rows := []struct{ label, value string }{
		{"state", string(snap.State)},
		{"previous", string(snap.Previous)},
		{"emotion", string(snap.Emotion)},
		{"progress", fmt.Sprintf("%.0f%%", snap.Progress*100)},
		{"eyes", snap.Eyes},
		{"blinks", fmt.Sprint(snap.Blinks)},
		{"size", fmt.Sprintf("%.2fx", snap.SizeScale)},
		{"scale", fmt.Sprintf("%.2f", snap.Character.Scale)},
		{"rotation", fmt.Sprintf("%.1f", snap.Character.Rotation)},
		{"frame", fmt.Sprint(snap.Frame)},
	}
	for i, row := range rows {
		drawText(screen, 1, 2+i, labelStyle, row.label)
		style := valueStyle
		if row.label == "state" {
			style = stateColor
		}
		drawText(screen, 11, 2+i, style, row.value)
	}
	y := 3 + len(rows)
	drawText(screen, 1, y, labelStyle, fmt.Sprintf("queue (%d)", len(snap.Queue)))
	for i, q := range snap.Queue {
		if y+1+i >= h-2 {
			break
		}
		drawText(screen, 3, y+1+i, valueStyle, fmt.Sprintf("%s p%d", q.Label, q.Priority))
	}

	drawSprite(screen, w, h, snap)
	screen.Show()
}

func drawSprite(screen tcell.Screen, w, h int, snap *mascot.Snapshot) {
	if snap.State == avatar.StateOff {
		drawText(screen, w*2/3-3, h/2, labelStyle, "[ z z ]")
		return
	}
	eyes, ok := eyeGlyphs[snap.Eyes]
	if !ok {
		eyes = eyeGlyphs["idle"]
	}
	cx := w*2/3 + int(math.Round(snap.Character.X/4))
	cy := h/2 + int(math.Round(snap.Character.Y/8))
	sprite := fmt.Sprintf("[ %c %c ]", eyes[0], eyes[1])
	drawText(screen, cx-3, cy, spriteStyle, sprite)
	drawText(screen, w*2/3-3, h/2+2, labelStyle, "‾‾‾‾‾‾‾")
}
