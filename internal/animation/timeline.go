package animation

import (
	"fmt"
	"math"
	"sync/atomic"
)

const epsilon = 1e-9

var timelineSeq atomic.Uint64

type animatable interface {
	totalDuration() float64
	render(t float64, frame uint64, owner string)
	invalidate()
	resetRender()
	describe(offset float64, out *[]TweenSpec)
}

type child struct {
	start    float64
	anim     animatable
	rendered bool
	last     float64
}

// Option configures a Timeline.
type Option func(*Timeline)

// Repeat sets the number of extra iterations; -1 repeats forever.
func Repeat(n int) Option {
	return func(tl *Timeline) { tl.repeat = n }
}

// Yoyo makes every other iteration play backwards.
func Yoyo() Option {
	return func(tl *Timeline) { tl.yoyo = true }
}

// Delay postpones the first render after Play.
func Delay(seconds float64) Option {
	return func(tl *Timeline) {
		if seconds > 0 {
			tl.delay = seconds
		}
	}
}

// Timeline sequences tweens, calls and nested timelines. A new timeline is
// paused; it advances only after Play once it has been added to a Ticker.
// Timelines are driven from a single goroutine.
type Timeline struct {
	id    string
	label string

	children  []*child
	prevStart float64
	prevEnd   float64
	err       error

	repeat int
	yoyo   bool
	delay  float64

	ticker    *Ticker
	time      float64
	lastLocal float64
	iteration int

	played    bool
	paused    bool
	killed    bool
	completed bool

	onComplete  []func()
	onInterrupt []func()
}

// NewTimeline creates an empty, paused timeline.
func NewTimeline(label string, opts ...Option) *Timeline {
	tl := &Timeline{
		id:     fmt.Sprintf("tl-%d", timelineSeq.Add(1)),
		label:  label,
		paused: true,
	}
	for _, opt := range opts {
		opt(tl)
	}
	return tl
}

func (tl *Timeline) ID() string    { return tl.id }
func (tl *Timeline) Label() string { return tl.label }

// Err returns the first construction error (bad position), if any.
func (tl *Timeline) Err() error { return tl.err }

func (tl *Timeline) place(pos Position, anim animatable) {
	start, err := pos.Resolve(tl.Duration(), tl.prevStart, tl.prevEnd)
	if err != nil {
		if tl.err == nil {
			tl.err = err
		}
		start = tl.Duration()
	}
	tl.children = append(tl.children, &child{start: start, anim: anim})
	tl.prevStart = start
	tl.prevEnd = start + anim.totalDuration()
}

// To tweens target's props over duration. A nil target is skipped.
func (tl *Timeline) To(target *Element, props Props, duration float64, ease Ease, pos Position) *Timeline {
	if target == nil || len(props) == 0 {
		return tl
	}
	tl.place(pos, newTween(target, props, nil, duration, ease))
	return tl
}

// Set applies props instantly at pos.
func (tl *Timeline) Set(target *Element, props Props, pos Position) *Timeline {
	return tl.To(target, props, 0, EaseNone, pos)
}

// Morph changes target's eye shape over duration.
func (tl *Timeline) Morph(target *Element, shape Shape, duration float64, ease Ease, pos Position) *Timeline {
	if target == nil {
		return tl
	}
	s := shape
	tl.place(pos, newTween(target, nil, &s, duration, ease))
	return tl
}

// Add nests sub at pos. Nested timelines are rendered by their parent; their
// own completion and interrupt hooks are not fired.
func (tl *Timeline) Add(sub *Timeline, pos Position) *Timeline {
	if sub == nil || sub == tl {
		return tl
	}
	tl.place(pos, sub)
	return tl
}

// Call invokes fn when the playhead reaches pos.
func (tl *Timeline) Call(fn func(), pos Position) *Timeline {
	if fn == nil {
		return tl
	}
	tl.place(pos, &call{fn: fn})
	return tl
}

// OnComplete registers a hook run once when the timeline finishes naturally.
func (tl *Timeline) OnComplete(fn func()) *Timeline {
	if fn != nil {
		tl.onComplete = append(tl.onComplete, fn)
	}
	return tl
}

// OnInterrupt registers a hook run when a started timeline is killed before
// completing.
func (tl *Timeline) OnInterrupt(fn func()) *Timeline {
	if fn != nil {
		tl.onInterrupt = append(tl.onInterrupt, fn)
	}
	return tl
}

// Duration is the length of one iteration.
func (tl *Timeline) Duration() float64 {
	var end float64
	for _, c := range tl.children {
		if e := c.start + c.anim.totalDuration(); e > end {
			end = e
		}
	}
	return end
}

// TotalDuration includes repeats; infinite for repeat -1.
func (tl *Timeline) TotalDuration() float64 {
	if tl.repeat < 0 {
		return math.Inf(1)
	}
	return tl.Duration() * float64(tl.repeat+1)
}

func (tl *Timeline) totalDuration() float64 { return tl.TotalDuration() }

// Time is the playhead position.
func (tl *Timeline) Time() float64 { return tl.time }

// Progress is the playhead position as a fraction of TotalDuration.
func (tl *Timeline) Progress() float64 {
	total := tl.TotalDuration()
	if math.IsInf(total, 1) || total <= 0 {
		if tl.completed {
			return 1
		}
		return 0
	}
	return Clamp(tl.time/total, 0, 1)
}

func (tl *Timeline) Paused() bool    { return tl.paused }
func (tl *Timeline) Killed() bool    { return tl.killed }
func (tl *Timeline) Completed() bool { return tl.completed }

// IsActive reports whether the timeline is playing on a ticker.
func (tl *Timeline) IsActive() bool {
	return tl.played && !tl.paused && !tl.completed && !tl.killed && tl.ticker != nil
}

// Play starts or resumes playback.
func (tl *Timeline) Play() {
	if tl.killed || tl.completed {
		return
	}
	if !tl.played {
		tl.time = -tl.delay
	}
	tl.played = true
	tl.paused = false
	tl.attach()
}

// Pause freezes the playhead.
func (tl *Timeline) Pause() {
	tl.paused = true
}

// Resume is Play for a paused timeline.
func (tl *Timeline) Resume() {
	tl.Play()
}

// Restart rewinds to zero (skipping any delay) and plays.
func (tl *Timeline) Restart() {
	if tl.killed {
		return
	}
	tl.time = 0
	tl.completed = false
	tl.resetRender()
	tl.played = true
	tl.paused = false
	tl.attach()
}

// Invalidate drops every captured start value so the next render re-reads
// the targets' current properties.
func (tl *Timeline) Invalidate() {
	tl.invalidate()
}

func (tl *Timeline) invalidate() {
	for _, c := range tl.children {
		c.anim.invalidate()
	}
	tl.resetRender()
}

func (tl *Timeline) resetRender() {
	tl.lastLocal = 0
	tl.iteration = 0
	for _, c := range tl.children {
		c.rendered = false
		c.last = 0
		c.anim.resetRender()
	}
}

// Kill stops the timeline for good. Interrupt hooks run if it had been
// played and had not completed.
func (tl *Timeline) Kill() {
	if tl.killed {
		return
	}
	tl.killed = true
	interrupted := tl.played && !tl.completed
	if tl.ticker != nil {
		tl.ticker.remove(tl)
	}
	if interrupted {
		for _, fn := range tl.onInterrupt {
			fn()
		}
	}
}

// Describe flattens the timeline into tween specs with absolute start times.
func (tl *Timeline) Describe() []TweenSpec {
	var out []TweenSpec
	tl.describe(0, &out)
	return out
}

func (tl *Timeline) describe(offset float64, out *[]TweenSpec) {
	for _, c := range tl.children {
		c.anim.describe(offset+c.start, out)
	}
}

func (tl *Timeline) attach() {
	if tl.ticker != nil {
		tl.ticker.attach(tl)
	}
}

// advance moves a root timeline by dt and reports whether it is finished.
func (tl *Timeline) advance(dt float64, frame uint64) bool {
	if tl.killed || tl.completed {
		return true
	}
	if tl.paused {
		return false
	}
	tl.time += dt
	if tl.time < 0 {
		return false
	}

	total := tl.TotalDuration()
	t := tl.time
	finished := !math.IsInf(total, 1) && t >= total-epsilon
	if finished {
		t = total
		tl.time = total
	}
	tl.render(t, frame, tl.id)
	if tl.killed {
		return true
	}
	if finished {
		tl.completed = true
		for _, fn := range tl.onComplete {
			fn()
		}
		// a hook may have restarted us
		return tl.completed || tl.killed
	}
	return false
}

func (tl *Timeline) localTime(total, dur float64) (float64, int) {
	if total < 0 {
		return -1, 0
	}
	if dur <= 0 {
		return 0, 0
	}
	if tl.repeat >= 0 && total >= tl.TotalDuration()-epsilon {
		local := dur
		if tl.yoyo && tl.repeat%2 == 1 {
			local = 0
		}
		return local, tl.repeat
	}
	iter := int(math.Floor(total / dur))
	local := total - float64(iter)*dur
	if iter > 0 && local < epsilon {
		// an exact boundary belongs to the iteration that just ended
		iter--
		local = dur
	}
	if tl.yoyo && iter%2 == 1 {
		local = dur - local
	}
	return local, iter
}

func (tl *Timeline) render(total float64, frame uint64, owner string) {
	local, iter := tl.localTime(total, tl.Duration())
	if iter > tl.iteration && !tl.yoyo {
		tl.renderChildren(-1, true, frame, owner)
		tl.lastLocal = -1
	}
	tl.iteration = iter
	backward := local < tl.lastLocal
	tl.lastLocal = local
	tl.renderChildren(local, backward, frame, owner)
}

func (tl *Timeline) renderChildren(local float64, backward bool, frame uint64, owner string) {
	n := len(tl.children)
	for i := 0; i < n; i++ {
		c := tl.children[i]
		if backward {
			c = tl.children[n-1-i]
		}
		t := local - c.start
		if local < 0 || t < 0 {
			if !c.rendered {
				continue
			}
			t = -1
		} else if td := c.anim.totalDuration(); t > td {
			t = td
		}
		if c.rendered && t == c.last {
			continue
		}
		c.rendered = true
		c.last = t
		c.anim.render(t, frame, owner)
	}
}
