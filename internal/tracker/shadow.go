package tracker

import (
	"github.com/rs/zerolog"

	"github.com/normanking/anty/internal/animation"
)

// ShadowOptions maps character height to shadow size and opacity. MaxHeight
// is in reference pixels.
type ShadowOptions struct {
	MaxHeight  float64
	MinScale   float64
	MinOpacity float64
	MaxOpacity float64
	SizeScale  float64
	Logger     zerolog.Logger
}

// DefaultShadowOptions returns the stock tuning.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		MaxHeight:  50,
		MinScale:   0.6,
		MinOpacity: 0.25,
		MaxOpacity: 1,
		SizeScale:  1,
	}
}

// Shadow shrinks and fades the ground shadow as the character rises.
type Shadow struct {
	loop
	character *animation.Element
	shadow    *animation.Element
	opts      ShadowOptions
	log       zerolog.Logger
}

// NewShadow creates a stopped shadow tracker.
func NewShadow(ticker *animation.Ticker, els *animation.Elements, opts ShadowOptions) *Shadow {
	if opts.SizeScale <= 0 {
		opts.SizeScale = 1
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = DefaultShadowOptions().MaxHeight
	}
	s := &Shadow{opts: opts, log: opts.Logger}
	if els != nil {
		s.character, s.shadow = els.Character, els.Shadow
	}
	s.loop = loop{ticker: ticker, obs: s}
	return s
}

// Start begins tracking and applies the current height at once.
func (s *Shadow) Start() {
	if s.start() {
		s.apply(0)
		s.log.Debug().Msg("shadow tracker started")
	}
}

// Stop unregisters the tracker.
func (s *Shadow) Stop() { s.stop() }

// Pause freezes the shadow where it is.
func (s *Shadow) Pause() { s.pause() }

// Resume continues tracking.
func (s *Shadow) Resume() { s.resume() }

// SetOptions swaps the tuning, e.g. after a config reload or a resize.
func (s *Shadow) SetOptions(opts ShadowOptions) {
	if opts.SizeScale <= 0 {
		opts.SizeScale = s.opts.SizeScale
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = s.opts.MaxHeight
	}
	opts.Logger = s.opts.Logger
	s.opts = opts
}

// Height is the character's normalized height above ground in [0,1].
func (s *Shadow) Height() float64 {
	lift := -s.character.Get(animation.PropY)
	return animation.Clamp(lift/(s.opts.MaxHeight*s.opts.SizeScale), 0, 1)
}

// Observe implements animation.Observer.
func (s *Shadow) Observe(f animation.Frame) {
	if s.skip(f) {
		return
	}
	s.apply(f.Index)
}

func (s *Shadow) apply(frame uint64) {
	if s.character == nil || s.shadow == nil {
		return
	}
	h := s.Height()
	s.shadow.Write(animation.PropScale, animation.Lerp(1, s.opts.MinScale, h), ShadowOwner, frame)
	s.shadow.Write(animation.PropOpacity, animation.Lerp(s.opts.MaxOpacity, s.opts.MinOpacity, h), ShadowOwner, frame)
}
