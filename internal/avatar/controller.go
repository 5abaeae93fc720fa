package avatar

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/normanking/anty/internal/animation"
	"github.com/normanking/anty/internal/emotion"
)

// Controller defaults.
const (
	DefaultMaxQueueSize = 5
	DefaultPriority     = 1
)

// BlinkControls pauses and resumes the idle blink scheduler.
type BlinkControls interface {
	PauseBlinks()
	ResumeBlinks()
	KillBlinks()
}

// PlayOptions qualifies a play request.
type PlayOptions struct {
	// Priority orders requests of the same state; a running emotion can
	// only be displaced by an equal or higher priority unless forced.
	Priority int
	// Force bypasses priorities but never the transition table.
	Force bool
	// PreserveIdle keeps the idle loop running underneath the timeline.
	PreserveIdle bool
	// SkipIdleRestart resumes idle where it was paused instead of
	// restarting it from the origin.
	SkipIdleRestart bool
}

// Callbacks are invoked synchronously from the goroutine driving the
// controller. Any of them may be nil.
type Callbacks struct {
	OnStateChange     func(from, to State)
	OnEmotionStart    func(e emotion.Type)
	OnEmotionComplete func(e emotion.Type, timelineID string, duration float64)
	OnSequenceChange  func(sequence string)
	OnQueueDrop       func(req QueuedRequest)
	// OnTransitionStart runs when a non-emotion timeline takes over.
	OnTransitionStart func(to State)
}

// Options configures a Controller.
type Options struct {
	MaxQueueSize int
	BaseScale    float64
	Callbacks    Callbacks
	StateMachine []StateMachineOption
}

// QueuedRequest describes a waiting request.
type QueuedRequest struct {
	State    State        `json:"state"`
	Emotion  emotion.Type `json:"emotion,omitempty"`
	Label    string       `json:"label"`
	Priority int          `json:"priority"`
	Force    bool         `json:"force,omitempty"`
}

type request struct {
	QueuedRequest
	seq  uint64
	tl   *animation.Timeline
	els  *animation.Elements
	opts PlayOptions
}

func (r *request) sequence() string {
	switch r.State {
	case StateEmotion:
		return "emotion:" + string(r.Emotion)
	case StateIdle:
		return "idle:" + r.Label
	default:
		return "transition:" + string(r.State)
	}
}

// DebugInfo is a point-in-time snapshot for tooling. It is not
// authoritative.
type DebugInfo struct {
	State        State           `json:"state"`
	Previous     State           `json:"previous"`
	Emotion      emotion.Type    `json:"emotion,omitempty"`
	Active       string          `json:"active,omitempty"`
	ActiveID     string          `json:"activeId,omitempty"`
	Progress     float64         `json:"progress"`
	Queue        []QueuedRequest `json:"queue"`
	IdlePlaying  bool            `json:"idlePlaying"`
	BlinksPaused bool            `json:"blinksPaused"`
	BaseScale    float64         `json:"baseScale"`
	SuperMode    bool            `json:"superMode"`
	Frame        uint64          `json:"frame"`
	Time         float64         `json:"time"`
	History      []HistoryEntry  `json:"history"`
}

// Controller decides which timeline owns the character. At most one
// emotion or transition timeline is active; the previous owner is killed
// before the next one plays. Not safe for concurrent use.
type Controller struct {
	ticker *animation.Ticker
	sm     *StateMachine
	log    zerolog.Logger
	cb     Callbacks

	maxQueue   int
	baseScale  float64
	superScale float64

	els     *animation.Elements
	active  *request
	emotion emotion.Type
	queue   []*request
	seq     uint64

	idle         *animation.Timeline
	blinks       BlinkControls
	blinksPaused bool

	pausedFrom State
	destroyed  bool
}

// NewController creates a controller in IDLE driving timelines on ticker.
func NewController(ticker *animation.Ticker, logger zerolog.Logger, opts Options) *Controller {
	if opts.MaxQueueSize <= 0 {
		opts.MaxQueueSize = DefaultMaxQueueSize
	}
	if opts.BaseScale <= 0 {
		opts.BaseScale = 1
	}
	return &Controller{
		ticker:    ticker,
		sm:        NewStateMachine(opts.StateMachine...),
		log:       logger,
		cb:        opts.Callbacks,
		maxQueue:  opts.MaxQueueSize,
		baseScale: opts.BaseScale,
	}
}

// State returns the current state.
func (c *Controller) State() State { return c.sm.State() }

// StateMachine exposes the underlying machine for inspection.
func (c *Controller) StateMachine() *StateMachine { return c.sm }

// Emotion returns the emotion currently playing, if any.
func (c *Controller) Emotion() emotion.Type { return c.emotion }

// IsIdle reports whether the controller is in IDLE.
func (c *Controller) IsIdle() bool { return c.sm.State() == StateIdle }

// IsIdlePlaying reports whether the idle loop is advancing.
func (c *Controller) IsIdlePlaying() bool { return c.idle != nil && c.idle.IsActive() }

// ActiveTimeline returns the emotion or transition timeline that owns the
// character, or nil.
func (c *Controller) ActiveTimeline() *animation.Timeline {
	if c.active == nil {
		return nil
	}
	return c.active.tl
}

// QueueLen is the number of waiting requests.
func (c *Controller) QueueLen() int { return len(c.queue) }

// BaseScale is the scale the character rests at: the super mode override
// when set, otherwise the configured base.
func (c *Controller) BaseScale() float64 {
	if c.superScale > 0 {
		return c.superScale
	}
	return c.baseScale
}

// SetBaseScale changes the configured resting scale.
func (c *Controller) SetBaseScale(scale float64) {
	if scale > 0 {
		c.baseScale = scale
	}
}

// SetSuperMode stores a scale override used as the idle baseline; zero or
// negative clears it.
func (c *Controller) SetSuperMode(scale float64) {
	if scale <= 0 {
		scale = 0
	}
	c.superScale = scale
	c.log.Debug().Float64("scale", scale).Msg("super mode")
}

// SuperMode reports whether a super mode override is set.
func (c *Controller) SuperMode() bool { return c.superScale > 0 }

// PlayEmotion plays tl as emotion e. It returns true if the timeline started
// now and false if it was queued or rejected.
func (c *Controller) PlayEmotion(e emotion.Type, tl *animation.Timeline, els *animation.Elements, opts PlayOptions) bool {
	return c.TransitionTo(StateEmotion, e, tl, els, opts)
}

// TransitionTo plays tl while in state. The state settles when tl
// completes: TRANSITION_IN and IDLE into IDLE, TRANSITION_OUT into OFF,
// EMOTION into IDLE, SEARCH stays.
func (c *Controller) TransitionTo(state State, e emotion.Type, tl *animation.Timeline, els *animation.Elements, opts PlayOptions) bool {
	if c.destroyed || tl == nil || tl.Killed() {
		return false
	}
	c.seq++
	req := &request{
		QueuedRequest: QueuedRequest{
			State:    state,
			Emotion:  e,
			Label:    tl.Label(),
			Priority: opts.Priority,
			Force:    opts.Force,
		},
		seq:  c.seq,
		tl:   tl,
		els:  els,
		opts: opts,
	}
	if c.runnable(req) {
		c.start(req)
		return true
	}
	c.enqueue(req)
	return false
}

func (c *Controller) runnable(req *request) bool {
	cur := c.sm.State()
	if !CanTransition(cur, req.State) {
		return false
	}
	if req.opts.Force {
		return true
	}
	if !c.sm.CanInterrupt(req.State, false) {
		return false
	}
	if c.active != nil && c.active.State == req.State && req.Priority < c.active.Priority {
		return false
	}
	return true
}

func (c *Controller) start(req *request) {
	c.killActive()
	if req.els != nil {
		c.els = req.els
	}

	c.pauseBlinks()
	if req.State == StateEmotion && req.opts.PreserveIdle {
		if !c.IsIdlePlaying() {
			c.resetCharacter()
			c.restartIdle()
		}
	} else if c.idle != nil {
		c.idle.Pause()
	}

	c.setState(req.State)
	c.active = req
	if req.State == StateEmotion {
		c.emotion = req.Emotion
	} else {
		c.emotion = ""
	}

	req.tl.OnComplete(func() { c.complete(req) })
	c.ticker.Add(req.tl)
	req.tl.Play()

	c.log.Debug().
		Str("state", string(req.State)).
		Str("emotion", string(req.Emotion)).
		Str("timeline", req.tl.ID()).
		Int("priority", req.Priority).
		Bool("force", req.opts.Force).
		Msg("timeline started")
	if req.State == StateEmotion {
		if c.cb.OnEmotionStart != nil {
			c.cb.OnEmotionStart(req.Emotion)
		}
	} else if c.cb.OnTransitionStart != nil {
		c.cb.OnTransitionStart(req.State)
	}
	c.sequenceChanged(req.sequence())
}

func (c *Controller) complete(req *request) {
	if c.active != req {
		return
	}
	c.active = nil

	switch req.State {
	case StateEmotion:
		c.emotion = ""
		if c.cb.OnEmotionComplete != nil {
			c.cb.OnEmotionComplete(req.Emotion, req.tl.ID(), req.tl.Duration())
		}
		c.settleIdle(req.opts)
	case StateTransitionIn, StateIdle:
		c.settleIdle(PlayOptions{})
	case StateTransitionOut:
		c.setState(StateOff)
		c.sequenceChanged("off")
		c.dropQueue("powered off")
	case StateSearch:
		c.sequenceChanged("search")
	}
}

func (c *Controller) settleIdle(opts PlayOptions) {
	c.setState(StateIdle)
	switch {
	case opts.PreserveIdle:
		if !c.IsIdlePlaying() {
			c.resumeIdleTimeline()
		}
	case opts.SkipIdleRestart:
		c.resumeIdleTimeline()
	default:
		c.resetCharacter()
		c.restartIdle()
	}
	c.resumeBlinks()
	c.sequenceChanged("idle")
	c.processQueue()
}

func (c *Controller) setState(to State) bool {
	from := c.sm.State()
	if !c.sm.Transition(to, true) {
		c.log.Warn().Str("from", string(from)).Str("to", string(to)).Msg("illegal transition")
		return false
	}
	if from != to && c.cb.OnStateChange != nil {
		c.cb.OnStateChange(from, to)
	}
	return true
}

func (c *Controller) sequenceChanged(seq string) {
	if c.cb.OnSequenceChange != nil {
		c.cb.OnSequenceChange(seq)
	}
}

func (c *Controller) killActive() {
	if c.active == nil {
		return
	}
	req := c.active
	c.active = nil
	req.tl.Kill()
	c.log.Debug().Str("timeline", req.tl.ID()).Str("label", req.Label).Msg("timeline interrupted")
}

func (c *Controller) resetCharacter() {
	if c.els == nil {
		return
	}
	c.els.Character.SetProps(map[animation.Prop]float64{
		animation.PropX:        0,
		animation.PropY:        0,
		animation.PropRotation: 0,
		animation.PropScale:    c.BaseScale(),
	})
}

func (c *Controller) enqueue(req *request) {
	c.queue = append(c.queue, req)
	sort.SliceStable(c.queue, func(i, j int) bool {
		if c.queue[i].Priority != c.queue[j].Priority {
			return c.queue[i].Priority > c.queue[j].Priority
		}
		return c.queue[i].seq < c.queue[j].seq
	})
	c.log.Debug().
		Str("state", string(req.State)).
		Str("emotion", string(req.Emotion)).
		Int("priority", req.Priority).
		Int("queued", len(c.queue)).
		Msg("request queued")

	if len(c.queue) <= c.maxQueue {
		return
	}
	victim := 0
	for i, r := range c.queue {
		v := c.queue[victim]
		if r.Priority < v.Priority || (r.Priority == v.Priority && r.seq < v.seq) {
			victim = i
		}
	}
	dropped := c.queue[victim]
	c.queue = append(c.queue[:victim], c.queue[victim+1:]...)
	c.drop(dropped, "queue full")
}

func (c *Controller) drop(req *request, reason string) {
	req.tl.Kill()
	c.log.Debug().
		Str("state", string(req.State)).
		Str("emotion", string(req.Emotion)).
		Str("reason", reason).
		Msg("request dropped")
	if c.cb.OnQueueDrop != nil {
		c.cb.OnQueueDrop(req.QueuedRequest)
	}
}

func (c *Controller) dropQueue(reason string) {
	queue := c.queue
	c.queue = nil
	for _, req := range queue {
		c.drop(req, reason)
	}
}

// processQueue starts the head request once the controller is back in IDLE.
// Requests that can never start from IDLE are dropped.
func (c *Controller) processQueue() {
	for len(c.queue) > 0 && c.active == nil && c.sm.State() == StateIdle {
		head := c.queue[0]
		c.queue = c.queue[1:]
		if !CanTransition(StateIdle, head.State) {
			c.drop(head, "unreachable from idle")
			continue
		}
		c.start(head)
	}
}

// StartIdle registers and plays the idle loop. A previous idle loop is
// killed. Outside IDLE the loop is registered paused and starts when the
// controller settles.
func (c *Controller) StartIdle(tl *animation.Timeline, els *animation.Elements, blinks BlinkControls) {
	if c.destroyed || tl == nil {
		return
	}
	if c.idle != nil && c.idle != tl {
		c.idle.Kill()
	}
	if c.blinks != nil && blinks != nil && c.blinks != blinks {
		c.blinks.KillBlinks()
	}
	c.idle = tl
	c.blinks = blinks
	c.blinksPaused = false
	if els != nil {
		c.els = els
	}
	c.ticker.Add(tl)

	if c.sm.State() == StateIdle && c.active == nil {
		tl.Play()
		return
	}
	tl.Pause()
	c.pauseBlinks()
}

// PauseIdle pauses the idle loop and its blinks.
func (c *Controller) PauseIdle() {
	if c.idle != nil {
		c.idle.Pause()
	}
	c.pauseBlinks()
}

// ResumeIdle resumes the idle loop and its blinks.
func (c *Controller) ResumeIdle() {
	c.resumeIdleTimeline()
	c.resumeBlinks()
}

// RestartIdle makes the idle loop recapture its start values from the
// character's current transform and play from the beginning.
func (c *Controller) RestartIdle() { c.restartIdle() }

func (c *Controller) restartIdle() {
	if c.idle == nil || c.idle.Killed() {
		return
	}
	c.idle.Invalidate()
	c.idle.Restart()
}

func (c *Controller) resumeIdleTimeline() {
	if c.idle != nil {
		c.idle.Resume()
	}
}

func (c *Controller) pauseBlinks() {
	if c.blinks != nil && !c.blinksPaused {
		c.blinks.PauseBlinks()
	}
	c.blinksPaused = true
}

func (c *Controller) resumeBlinks() {
	if c.blinks != nil && c.blinksPaused {
		c.blinks.ResumeBlinks()
	}
	c.blinksPaused = false
}

// Pause freezes everything and enters PAUSED. It returns false if the
// current state cannot be paused.
func (c *Controller) Pause() bool {
	if c.destroyed {
		return false
	}
	from := c.sm.State()
	if !c.sm.CanInterrupt(StatePaused, false) || !CanTransition(from, StatePaused) {
		return false
	}
	c.setState(StatePaused)
	c.pausedFrom = from
	if c.active != nil {
		c.active.tl.Pause()
	}
	c.PauseIdle()
	return true
}

// Resume leaves PAUSED and restores the state it interrupted.
func (c *Controller) Resume() bool {
	if c.destroyed || c.sm.State() != StatePaused {
		return false
	}
	target := c.pausedFrom
	if target == StateEmotion && c.active == nil {
		target = StateIdle
	}
	c.setState(target)
	if c.active != nil {
		c.active.tl.Resume()
		if c.active.opts.PreserveIdle {
			c.resumeIdleTimeline()
		}
	}
	if target == StateIdle {
		c.ResumeIdle()
		c.processQueue()
	}
	return true
}

// KillAll kills the active timeline and every queued one and clears the
// queue. The state is left alone.
func (c *Controller) KillAll() {
	c.killActive()
	for _, req := range c.queue {
		req.tl.Kill()
	}
	c.queue = nil
	c.emotion = ""
}

// Reset forces the state machine back to IDLE.
func (c *Controller) Reset() {
	from := c.sm.State()
	c.sm.Reset()
	c.emotion = ""
	if from != StateIdle && c.cb.OnStateChange != nil {
		c.cb.OnStateChange(from, StateIdle)
	}
}

// Destroy kills every timeline and the blink scheduler and resets the state
// machine. The controller ignores further requests.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.KillAll()
	if c.idle != nil {
		c.idle.Kill()
		c.idle = nil
	}
	if c.blinks != nil {
		c.blinks.KillBlinks()
		c.blinks = nil
	}
	c.Reset()
	c.destroyed = true
	c.log.Debug().Msg("controller destroyed")
}

// Destroyed reports whether Destroy has run.
func (c *Controller) Destroyed() bool { return c.destroyed }

// GetDebugInfo snapshots the controller for tooling.
func (c *Controller) GetDebugInfo() DebugInfo {
	info := DebugInfo{
		State:        c.sm.State(),
		Previous:     c.sm.Previous(),
		Emotion:      c.emotion,
		Queue:        make([]QueuedRequest, 0, len(c.queue)),
		IdlePlaying:  c.IsIdlePlaying(),
		BlinksPaused: c.blinksPaused,
		BaseScale:    c.BaseScale(),
		SuperMode:    c.SuperMode(),
		Frame:        c.ticker.Frame(),
		Time:         c.ticker.Now(),
		History:      c.sm.History(),
	}
	if c.active != nil {
		info.Active = c.active.Label
		info.ActiveID = c.active.tl.ID()
		info.Progress = c.active.tl.Progress()
	}
	for _, req := range c.queue {
		info.Queue = append(info.Queue, req.QueuedRequest)
	}
	return info
}
