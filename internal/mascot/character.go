// Package mascot wires the animation core into one Character: the shared
// ticker, controller, interpreter, idle loop and trackers, plus bus events
// for tooling.
package mascot

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/anty/internal/animation"
	"github.com/normanking/anty/internal/avatar"
	"github.com/normanking/anty/internal/bus"
	"github.com/normanking/anty/internal/config"
	"github.com/normanking/anty/internal/emotion"
	"github.com/normanking/anty/internal/idle"
	"github.com/normanking/anty/internal/tracker"
	"github.com/normanking/anty/internal/transition"
)

// DefaultFPS drives Run.
const DefaultFPS = 60

// Options configures a Character. Zero values select defaults.
type Options struct {
	Config   *config.Config
	Catalog  *emotion.Catalog
	Elements *animation.Elements
	Bus      *bus.EventBus
	Logger   zerolog.Logger
	Rand     *rand.Rand
}

// EmoteOptions qualifies an Emote request. A zero Priority uses the
// configured default priority.
type EmoteOptions struct {
	Priority int
	Force    bool
}

// Character is safe for concurrent use; every method takes its lock, and the
// controller callbacks run under it.
type Character struct {
	mu sync.Mutex

	cfg     *config.Config
	catalog *emotion.Catalog
	ticker  *animation.Ticker
	els     *animation.Elements
	ctl     *avatar.Controller
	in      *emotion.Interpreter
	idle    *idle.Animation
	glow    *tracker.Glow
	shadow  *tracker.Shadow
	bus     *bus.EventBus
	log     zerolog.Logger
	rng     *rand.Rand

	sizeScale   float64
	pendingSize float64
	destroyed   bool
}

// New builds a character and starts its idle loop and trackers, or leaves
// it in the powered-off pose when character.start_asleep is set.
func New(opts Options) *Character {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = emotion.Default()
	}
	els := opts.Elements
	if els == nil {
		els = animation.NewElements()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	c := &Character{
		cfg:       cfg,
		catalog:   catalog,
		ticker:    animation.NewTicker(),
		els:       els,
		bus:       opts.Bus,
		log:       opts.Logger,
		rng:       rng,
		sizeScale: cfg.SizeScale(),
	}

	smOpts := []avatar.StateMachineOption{avatar.WithHistorySize(cfg.Controller.HistorySize)}
	if cfg.Character.StartAsleep {
		smOpts = append(smOpts, avatar.WithInitialState(avatar.StateOff))
	}
	c.ctl = avatar.NewController(c.ticker, c.component("controller"), avatar.Options{
		MaxQueueSize: cfg.Controller.MaxQueueSize,
		BaseScale:    cfg.Character.BaseScale,
		StateMachine: smOpts,
		Callbacks: avatar.Callbacks{
			OnStateChange:     c.stateChanged,
			OnEmotionStart:    c.emotionStarted,
			OnEmotionComplete: c.emotionCompleted,
			OnSequenceChange:  c.sequenceChanged,
			OnQueueDrop:       c.queueDropped,
			OnTransitionStart: c.transitionStarted,
		},
	})
	c.in = emotion.NewInterpreter(c.ticker, c.component("interpreter"))
	c.in.SetBaseScale(c.ctl.BaseScale())

	c.glow = tracker.NewGlow(c.ticker, els, c.glowOptions())
	c.shadow = tracker.NewShadow(c.ticker, els, c.shadowOptions())

	c.startIdle()
	c.glow.Start()
	c.shadow.Start()
	if cfg.Character.StartAsleep {
		transition.ApplyOffPose(els, c.transitionOptions())
		c.shadow.Pause()
	} else {
		c.glow.Show()
	}

	c.log.Info().
		Float64("sizeScale", c.sizeScale).
		Str("state", string(c.ctl.State())).
		Int("emotions", catalog.Len()).
		Msg("character created")
	return c
}

func (c *Character) component(name string) zerolog.Logger {
	return c.log.With().Str("component", name).Logger()
}

func (c *Character) glowOptions() tracker.GlowOptions {
	g := c.cfg.Glow
	return tracker.GlowOptions{
		Stiffness:  g.Stiffness,
		Damping:    g.Damping,
		Amplitude:  g.Amplitude,
		Frequency:  g.Frequency,
		InnerPhase: g.InnerPhase,
		FadeIn:     g.FadeIn,
		FadeOut:    g.FadeOut,
		SizeScale:  c.sizeScale,
		Logger:     c.component("glow"),
	}
}

func (c *Character) shadowOptions() tracker.ShadowOptions {
	s := c.cfg.Shadow
	return tracker.ShadowOptions{
		MaxHeight:  s.MaxHeight,
		MinScale:   s.MinScale,
		MinOpacity: s.MinOpacity,
		MaxOpacity: s.MaxOpacity,
		SizeScale:  c.sizeScale,
		Logger:     c.component("shadow"),
	}
}

func (c *Character) transitionOptions() transition.Options {
	return transition.Options{
		SizeScale:     c.sizeScale,
		BaseScale:     c.ctl.BaseScale(),
		ShadowOpacity: c.cfg.Shadow.MaxOpacity,
		Logger:        c.component("transition"),
	}
}

func (c *Character) startIdle() {
	ic := c.cfg.Idle
	c.idle = idle.Create(c.ticker, c.els, idle.Options{
		BaseScale:    c.ctl.BaseScale(),
		SizeScale:    c.sizeScale,
		Amplitude:    ic.Amplitude,
		Rotation:     ic.Rotation,
		Breathe:      ic.Breathe,
		Duration:     ic.Duration,
		BlinkMin:     ic.BlinkMinInterval,
		BlinkMax:     ic.BlinkMaxInterval,
		DoubleChance: ic.DoubleBlinkChance,
		Rand:         c.rng,
		Logger:       c.component("idle"),
	})
	c.ctl.StartIdle(c.idle.Timeline, c.els, c.idle)
}

// Emote plays emotion t. It returns true if the emotion started now; false
// means it was queued, or rejected because t is unknown or the character is
// powered off.
func (c *Character) Emote(t emotion.Type, opts EmoteOptions) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return false
	}

	cfg, ok := c.catalog.Lookup(t)
	if !ok {
		c.log.Warn().Str("emotion", string(t)).Msg("unknown emotion")
		c.publish(bus.EventTypeEmotionRejected, map[string]any{"emotion": string(t), "reason": "unknown"})
		return false
	}
	if st := c.ctl.State(); st == avatar.StateOff || st == avatar.StateTransitionOut {
		c.log.Debug().Str("emotion", string(t)).Str("state", string(st)).Msg("emotion ignored while powered off")
		c.publish(bus.EventTypeEmotionRejected, map[string]any{"emotion": string(t), "reason": "powered off"})
		return false
	}
	if opts.Priority == 0 {
		opts.Priority = c.cfg.Controller.DefaultPriority
	}

	tl := c.in.Interpret(cfg, c.els, c.sizeScale)
	return c.ctl.PlayEmotion(t, tl, c.els, avatar.PlayOptions{
		Priority:        opts.Priority,
		Force:           opts.Force,
		PreserveIdle:    cfg.PreserveIdle,
		SkipIdleRestart: !cfg.ShouldResetIdle(),
	})
}

// WakeUp plays the wake-up sequence. Only legal while powered off.
func (c *Character) WakeUp() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || c.ctl.State() != avatar.StateOff {
		return false
	}
	c.shadow.Pause()
	tl := transition.CreateWakeUp(c.els, c.transitionOptions())
	return c.ctl.TransitionTo(avatar.StateTransitionIn, "", tl, c.els, avatar.PlayOptions{Force: true})
}

// PowerOff plays the power-off sequence and leaves the character in OFF.
func (c *Character) PowerOff() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || !avatar.CanTransition(c.ctl.State(), avatar.StateTransitionOut) {
		return false
	}
	c.shadow.Pause()
	tl := transition.CreatePowerOff(c.els, c.transitionOptions())
	return c.ctl.TransitionTo(avatar.StateTransitionOut, "", tl, c.els, avatar.PlayOptions{Force: true})
}

// EnterSearch morphs the character into the search bar.
func (c *Character) EnterSearch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || !avatar.CanTransition(c.ctl.State(), avatar.StateSearch) {
		return false
	}
	tl := transition.CreateSearchMorph(c.els, c.transitionOptions())
	return c.ctl.TransitionTo(avatar.StateSearch, "", tl, c.els, avatar.PlayOptions{Force: true})
}

// ExitSearch morphs back to idle. Requests queued during search play
// afterwards.
func (c *Character) ExitSearch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || c.ctl.State() != avatar.StateSearch {
		return false
	}
	tl := transition.CreateSearchRestore(c.els, c.transitionOptions())
	return c.ctl.TransitionTo(avatar.StateIdle, "", tl, c.els, avatar.PlayOptions{Force: true})
}

// SetSize changes the rendered character size in pixels. Outside a settled
// idle the change waits until the character returns to IDLE.
func (c *Character) SetSize(px float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || px <= 0 {
		return
	}
	c.pendingSize = px
	if c.settled() {
		c.applySize()
	}
}

func (c *Character) settled() bool {
	return c.ctl.State() == avatar.StateIdle && c.ctl.ActiveTimeline() == nil
}

func (c *Character) applySize() {
	px := c.pendingSize
	c.pendingSize = 0
	scale := emotion.SizeScale(px)
	if ref := c.cfg.Character.ReferenceSize; ref > 0 {
		scale = px / ref
	}
	if scale == c.sizeScale {
		return
	}
	c.sizeScale = scale
	c.glow.SetOptions(c.glowOptions())
	c.shadow.SetOptions(c.shadowOptions())

	c.startIdle()
	c.log.Debug().Float64("px", px).Float64("sizeScale", scale).Msg("size changed")
	c.publish(bus.EventTypeSizeChanged, map[string]any{"px": px, "sizeScale": scale})
}

// SetSuperMode overrides the resting scale; zero or less turns it off.
func (c *Character) SetSuperMode(scale float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.ctl.SetSuperMode(scale)
	c.in.SetBaseScale(c.ctl.BaseScale())
	if c.settled() {
		c.els.Character.Set(animation.PropScale, c.ctl.BaseScale())
		c.ctl.RestartIdle()
	}
	c.publish(bus.EventTypeSuperMode, map[string]any{"scale": scale, "baseScale": c.ctl.BaseScale()})
}

// Pause freezes the character, trackers included.
func (c *Character) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ctl.Pause() {
		return false
	}
	c.glow.Pause()
	c.shadow.Pause()
	return true
}

// Resume undoes Pause.
func (c *Character) Resume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ctl.Resume() {
		return false
	}
	c.glow.Resume()
	c.shadow.Resume()
	return true
}

// Recover kills everything and returns to a clean idle pose.
func (c *Character) Recover() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.ctl.KillAll()
	c.ctl.Reset()
	c.in.CancelPendingReset()
	c.in.ResetNeutral(c.els, c.sizeScale)
	c.els.Character.SetProps(map[animation.Prop]float64{
		animation.PropX:        0,
		animation.PropY:        0,
		animation.PropRotation: 0,
		animation.PropScale:    c.ctl.BaseScale(),
		animation.PropOpacity:  1,
	})
	for _, eye := range c.els.Eyes() {
		eye.Set(animation.PropScaleY, 1)
	}
	for _, b := range c.els.Brackets() {
		b.Set(animation.PropX, 0)
	}
	c.ctl.RestartIdle()
	c.ctl.ResumeIdle()
	c.glow.SetFollow(true)
	c.glow.Show()
	c.glow.Resume()
	c.shadow.Resume()
	c.log.Info().Msg("character recovered")
}

// ApplyConfig re-applies tunables from a reloaded config. Size changes go
// through SetSize rules.
func (c *Character) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	size := cfg.Character.Size
	sizeChanged := cfg.SizeScale() != c.sizeScale
	c.cfg = cfg
	c.ctl.SetBaseScale(cfg.Character.BaseScale)
	c.in.SetBaseScale(c.ctl.BaseScale())
	c.glow.SetOptions(c.glowOptions())
	c.shadow.SetOptions(c.shadowOptions())
	if sizeChanged {
		c.pendingSize = size
		if c.settled() {
			c.applySize()
		}
	}
	c.publish(bus.EventTypeConfigReload, nil)
}

// Tick advances the character by dt seconds.
func (c *Character) Tick(dt float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.ticker.Tick(dt)
}

// Run ticks at fps in real time until ctx is done.
func (c *Character) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	interval := time.Second / time.Duration(fps)
	t := time.NewTicker(interval)
	defer t.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			c.Tick(now.Sub(last).Seconds())
			last = now
		}
	}
}

// Destroy stops everything. The character ignores calls afterwards.
func (c *Character) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.ctl.Destroy()
	c.in.CancelPendingReset()
	c.glow.Stop()
	c.shadow.Stop()
	c.destroyed = true
	c.log.Info().Msg("character destroyed")
	c.publish(bus.EventTypeDestroyed, nil)
}

// State returns the controller state.
func (c *Character) State() avatar.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctl.State()
}

// Emotion returns the emotion playing, if any.
func (c *Character) Emotion() emotion.Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctl.Emotion()
}

// IsIdle reports whether the character is in IDLE.
func (c *Character) IsIdle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctl.IsIdle()
}

// IsIdlePlaying reports whether the float loop is running.
func (c *Character) IsIdlePlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctl.IsIdlePlaying()
}

// SizeScale returns the current size relative to the reference size.
func (c *Character) SizeScale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sizeScale
}

// Elements returns the element bundle the renderer draws. Element reads
// are safe alongside Tick.
func (c *Character) Elements() *animation.Elements { return c.els }

// Catalog returns the emotion catalog in use.
func (c *Character) Catalog() *emotion.Catalog { return c.catalog }

// DebugInfo snapshots the controller.
func (c *Character) DebugInfo() avatar.DebugInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctl.GetDebugInfo()
}

// Snapshot is the controller state plus the character transform.
type Snapshot struct {
	avatar.DebugInfo
	SizeScale float64             `json:"sizeScale"`
	Character animation.Transform `json:"character"`
	Eyes      string              `json:"eyes"`
	Blinks    int                 `json:"blinks"`
}

// Snapshot captures the state tooling displays.
func (c *Character) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		DebugInfo: c.ctl.GetDebugInfo(),
		SizeScale: c.sizeScale,
		Character: c.els.Character.Transform(),
		Eyes:      c.els.LeftPath.Shape().Name,
		Blinks:    c.idle.Blinks.Count(),
	}
}

// Controller callbacks; they run with c.mu held.

func (c *Character) stateChanged(from, to avatar.State) {
	c.log.Debug().Str("from", string(from)).Str("to", string(to)).Msg("state changed")
	if from == avatar.StateTransitionIn && to == avatar.StateIdle {
		c.shadow.Resume()
	}
	// a forced emotion can leave PAUSED without Resume
	if from == avatar.StatePaused && to != avatar.StatePaused {
		c.glow.Resume()
		c.shadow.Resume()
	}
	if to == avatar.StateIdle {
		c.glow.SetFollow(true)
	}
	c.publish(bus.EventTypeStateChanged, map[string]any{"from": string(from), "to": string(to)})
}

func (c *Character) emotionStarted(e emotion.Type) {
	data := map[string]any{"emotion": string(e)}
	if cfg, ok := c.catalog.Lookup(e); ok {
		c.glow.SetFollow(cfg.Glow)
		data["lightbulb"] = cfg.ShowLightbulb
		data["teardrop"] = cfg.ShowTeardrop
	}
	c.publish(bus.EventTypeEmotionStarted, data)
}

// transitionStarted drops a post-hold eye reset so it cannot land on the
// transition's eye shapes.
func (c *Character) transitionStarted(avatar.State) {
	c.in.CancelPendingReset()
}

func (c *Character) emotionCompleted(e emotion.Type, timelineID string, duration float64) {
	c.publish(bus.EventTypeEmotionComplete, map[string]any{
		"emotion":  string(e),
		"timeline": timelineID,
		"duration": duration,
	})
}

func (c *Character) sequenceChanged(seq string) {
	// idle has been restarted by now; a deferred size change can rebuild it
	if seq == "idle" && c.pendingSize > 0 {
		c.applySize()
	}
	c.publish(bus.EventTypeSequenceChanged, map[string]any{"sequence": seq})
}

func (c *Character) queueDropped(req avatar.QueuedRequest) {
	c.log.Debug().Str("label", req.Label).Int("priority", req.Priority).Msg("request dropped")
	c.publish(bus.EventTypeQueueDropped, map[string]any{
		"state":    string(req.State),
		"emotion":  string(req.Emotion),
		"label":    req.Label,
		"priority": req.Priority,
	})
}

func (c *Character) publish(t bus.EventType, data map[string]any) {
	if c.bus != nil {
		c.bus.Publish(bus.NewEvent(t, data))
	}
}
