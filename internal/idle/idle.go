// Package idle builds the perpetual float/rotate/breathe loop and its
// spontaneous blink scheduler.
package idle

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/normanking/anty/internal/animation"
	"github.com/normanking/anty/internal/emotion"
)

// Defaults for Options fields left at zero.
const (
	DefaultAmplitude    = 8.0
	DefaultRotation     = 2.0
	DefaultBreathe      = 1.02
	DefaultDuration     = 2.5
	DefaultBlinkMin     = 8.0
	DefaultBlinkMax     = 15.0
	DefaultDoubleChance = 0.2
)

// Options configures the idle loop. Amplitude is in reference pixels and is
// multiplied by SizeScale.
type Options struct {
	Delay     float64
	BaseScale float64
	SizeScale float64

	Amplitude float64
	Rotation  float64
	Breathe   float64
	Duration  float64
	Ease      animation.Ease

	BlinkMin     float64
	BlinkMax     float64
	DoubleChance float64
	// DisableBlinks creates the loop without a blink scheduler.
	DisableBlinks bool

	Rand   *rand.Rand
	Logger zerolog.Logger
}

func (o *Options) withDefaults() {
	if o.SizeScale <= 0 {
		o.SizeScale = 1
	}
	if o.Amplitude == 0 {
		o.Amplitude = DefaultAmplitude
	}
	if o.Rotation == 0 {
		o.Rotation = DefaultRotation
	}
	if o.Breathe <= 0 {
		o.Breathe = DefaultBreathe
	}
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if o.Ease == "" {
		o.Ease = animation.EaseSineInOut
	}
	if o.BlinkMin <= 0 {
		o.BlinkMin = DefaultBlinkMin
	}
	if o.BlinkMax <= 0 {
		o.BlinkMax = DefaultBlinkMax
	}
	if o.BlinkMax < o.BlinkMin {
		o.BlinkMax = o.BlinkMin
	}
	// negative disables double blinks
	switch {
	case o.DoubleChance == 0:
		o.DoubleChance = DefaultDoubleChance
	case o.DoubleChance < 0:
		o.DoubleChance = 0
	}
}

// Animation is the idle loop plus its blink scheduler. It satisfies the
// controller's blink control interface.
type Animation struct {
	Timeline *animation.Timeline
	Blinks   *Blinker
}

// PauseBlinks stops spontaneous blinks until ResumeBlinks.
func (a *Animation) PauseBlinks() { a.Blinks.Pause() }

// ResumeBlinks restarts the blink scheduler.
func (a *Animation) ResumeBlinks() { a.Blinks.Resume() }

// KillBlinks tears the blink scheduler down for good.
func (a *Animation) KillBlinks() { a.Blinks.Kill() }

// Create builds the idle loop for els. The eyes are snapped to the idle
// shape and the character to BaseScale immediately; the returned timeline is
// registered on ticker but not played. Blinks start scheduling right away.
func Create(ticker *animation.Ticker, els *animation.Elements, opts Options) *Animation {
	opts.withDefaults()

	emotion.SetIdleEyes(els, opts.SizeScale)
	if els != nil && opts.BaseScale > 0 {
		els.Character.Set(animation.PropScale, opts.BaseScale)
	}

	tl := animation.NewTimeline("idle", animation.Repeat(-1), animation.Yoyo(), animation.Delay(opts.Delay))
	if els != nil {
		// one tween so float, sway and breath share duration and ease
		tl.To(els.Character, animation.Props{
			animation.PropY:        animation.To(-opts.Amplitude * opts.SizeScale),
			animation.PropRotation: animation.To(opts.Rotation),
			animation.PropScale:    animation.Times(opts.Breathe),
		}, opts.Duration, opts.Ease, "0")
	}
	ticker.Add(tl)

	a := &Animation{Timeline: tl}
	if !opts.DisableBlinks {
		a.Blinks = NewBlinker(ticker, els, BlinkOptions{
			MinInterval:  opts.BlinkMin,
			MaxInterval:  opts.BlinkMax,
			DoubleChance: opts.DoubleChance,
			Rand:         opts.Rand,
			Logger:       opts.Logger,
		})
		a.Blinks.Start()
	}

	opts.Logger.Debug().
		Float64("amplitude", opts.Amplitude*opts.SizeScale).
		Float64("baseScale", opts.BaseScale).
		Str("timeline", tl.ID()).
		Msg("idle animation created")
	return a
}
