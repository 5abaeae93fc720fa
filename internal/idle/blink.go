package idle

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/anty/internal/animation"
)

const (
	blinkClose  = 0.08
	blinkHold   = 0.04
	blinkOpen   = 0.1
	blinkGap    = 0.12
	blinkClosed = 0.1
)

// BlinkOptions tunes the blink scheduler. Intervals are seconds.
type BlinkOptions struct {
	MinInterval  float64
	MaxInterval  float64
	DoubleChance float64
	Rand         *rand.Rand
	Logger       zerolog.Logger
}

// Blinker is the self-rescheduling spontaneous blink task. Blinks squash the
// eye containers vertically and never touch the eye shape.
type Blinker struct {
	ticker *animation.Ticker
	els    *animation.Elements
	opts   BlinkOptions
	rng    *rand.Rand
	log    zerolog.Logger

	task    *animation.Task
	current *animation.Timeline

	paused bool
	killed bool
	count  int
}

// NewBlinker creates a stopped scheduler.
func NewBlinker(ticker *animation.Ticker, els *animation.Elements, opts BlinkOptions) *Blinker {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = DefaultBlinkMin
	}
	if opts.MaxInterval < opts.MinInterval {
		opts.MaxInterval = opts.MinInterval
	}
	return &Blinker{
		ticker: ticker,
		els:    els,
		opts:   opts,
		rng:    rng,
		log:    opts.Logger,
	}
}

// Start schedules the first blink.
func (b *Blinker) Start() {
	if b == nil || b.killed || b.paused || b.task.Active() {
		return
	}
	b.schedule()
}

// Pause cancels the pending blink and stops one in flight.
func (b *Blinker) Pause() {
	if b == nil || b.killed {
		return
	}
	b.paused = true
	b.task.Cancel()
	b.task = nil
	b.stopCurrent()
}

// Resume schedules the next blink after a Pause.
func (b *Blinker) Resume() {
	if b == nil || b.killed || !b.paused {
		return
	}
	b.paused = false
	b.schedule()
}

// Kill stops the scheduler permanently.
func (b *Blinker) Kill() {
	if b == nil || b.killed {
		return
	}
	b.killed = true
	b.task.Cancel()
	b.task = nil
	b.stopCurrent()
}

func (b *Blinker) Paused() bool { return b != nil && b.paused }
func (b *Blinker) Killed() bool { return b != nil && b.killed }

// Scheduled reports whether a blink is waiting to fire.
func (b *Blinker) Scheduled() bool { return b != nil && b.task.Active() }

// NextDue is the ticker time of the next blink, or zero if none is pending.
func (b *Blinker) NextDue() float64 {
	if !b.Scheduled() {
		return 0
	}
	return b.task.Due()
}

// Count is the number of blinks started.
func (b *Blinker) Count() int {
	if b == nil {
		return 0
	}
	return b.count
}

// Blinking reports whether a blink timeline is playing.
func (b *Blinker) Blinking() bool {
	return b != nil && b.current != nil && b.current.IsActive()
}

func (b *Blinker) schedule() {
	b.task.Cancel()
	span := b.opts.MaxInterval - b.opts.MinInterval
	interval := b.opts.MinInterval + b.rng.Float64()*span
	b.task = b.ticker.After(interval, b.fire)
}

func (b *Blinker) fire() {
	b.task = nil
	if b.paused || b.killed {
		return
	}
	double := b.rng.Float64() < b.opts.DoubleChance
	b.Blink(double)
	b.schedule()
}

// Blink plays one blink now, or two when double is set. It reports false
// when there are no eyes to blink.
func (b *Blinker) Blink(double bool) bool {
	eyes := b.els.Eyes()
	if len(eyes) == 0 {
		return false
	}
	b.stopCurrent()

	tl := animation.NewTimeline("blink")
	once := func(at float64) {
		for _, eye := range eyes {
			tl.To(eye, animation.Props{animation.PropScaleY: animation.To(blinkClosed)}, blinkClose, animation.EasePower2In, animation.At(at))
		}
		for _, eye := range eyes {
			tl.To(eye, animation.Props{animation.PropScaleY: animation.To(1)}, blinkOpen, animation.EasePower2Out, animation.At(at+blinkClose+blinkHold))
		}
	}
	once(0)
	if double {
		once(blinkClose + blinkHold + blinkOpen + blinkGap)
	}
	tl.OnComplete(func() {
		if b.current == tl {
			b.current = nil
		}
	})

	b.current = tl
	b.count++
	b.ticker.Play(tl)
	b.log.Debug().Bool("double", double).Int("count", b.count).Msg("blink")
	return true
}

func (b *Blinker) stopCurrent() {
	if b.current == nil {
		return
	}
	b.current.Kill()
	b.current = nil
	for _, eye := range b.els.Eyes() {
		eye.Set(animation.PropScaleY, 1)
	}
}
