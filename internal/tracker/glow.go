package tracker

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/normanking/anty/internal/animation"
)

// maxSpringStep bounds the integration step so long frames stay stable.
const maxSpringStep = 1.0 / 120

// GlowOptions tunes the glow chain. Amplitude is in reference pixels,
// Frequency in Hz and InnerPhase in radians.
type GlowOptions struct {
	Stiffness  float64
	Damping    float64
	Amplitude  float64
	Frequency  float64
	InnerPhase float64
	FadeIn     float64
	FadeOut    float64
	Opacity    float64
	SizeScale  float64
	Logger     zerolog.Logger
}

// DefaultGlowOptions returns the stock tuning.
func DefaultGlowOptions() GlowOptions {
	return GlowOptions{
		Stiffness:  120,
		Damping:    14,
		Amplitude:  3,
		Frequency:  0.4,
		InnerPhase: math.Pi / 3,
		FadeIn:     0.4,
		FadeOut:    0.3,
		Opacity:    1,
		SizeScale:  1,
	}
}

func (o *GlowOptions) fill(base GlowOptions) {
	if o.Stiffness <= 0 {
		o.Stiffness = base.Stiffness
	}
	if o.Damping < 0 {
		o.Damping = base.Damping
	}
	if o.FadeIn <= 0 {
		o.FadeIn = base.FadeIn
	}
	if o.FadeOut <= 0 {
		o.FadeOut = base.FadeOut
	}
	if o.Opacity <= 0 {
		o.Opacity = base.Opacity
	}
	if o.SizeScale <= 0 {
		o.SizeScale = base.SizeScale
	}
}

type spring struct {
	pos, vel mgl64.Vec2
}

func (s *spring) step(target mgl64.Vec2, k, c, dt float64) {
	for dt > 0 {
		h := math.Min(dt, maxSpringStep)
		acc := target.Sub(s.pos).Mul(k).Sub(s.vel.Mul(c))
		s.vel = s.vel.Add(acc.Mul(h))
		s.pos = s.pos.Add(s.vel.Mul(h))
		dt -= h
	}
}

// Glow makes the outer glow spring after the character and the inner glow
// spring after the outer one, each with its own sine wobble.
type Glow struct {
	loop
	ticker    *animation.Ticker
	character *animation.Element
	inner     *animation.Element
	outer     *animation.Element
	opts      GlowOptions
	log       zerolog.Logger

	innerSpring spring
	outerSpring spring
	clock       float64
	follow      bool
	fade        *animation.Timeline
}

// NewGlow creates a stopped glow tracker.
func NewGlow(ticker *animation.Ticker, els *animation.Elements, opts GlowOptions) *Glow {
	opts.fill(DefaultGlowOptions())
	g := &Glow{ticker: ticker, opts: opts, log: opts.Logger, follow: true}
	if els != nil {
		g.character, g.inner, g.outer = els.Character, els.InnerGlow, els.OuterGlow
	}
	g.loop = loop{ticker: ticker, obs: g}
	return g
}

// Start snaps both layers onto the character and begins following.
func (g *Glow) Start() {
	if g.start() {
		g.SnapToCharacter()
		g.log.Debug().Msg("glow tracker started")
	}
}

// Stop unregisters the tracker and cancels any fade.
func (g *Glow) Stop() {
	g.stop()
	g.killFade()
}

// Pause freezes both layers in place.
func (g *Glow) Pause() { g.pause() }

// Resume continues following from where the layers were left.
func (g *Glow) Resume() { g.resume() }

// SetFollow switches between chasing the character and settling at the
// origin.
func (g *Glow) SetFollow(follow bool) { g.follow = follow }

// Following reports whether the glow chases the character.
func (g *Glow) Following() bool { return g.follow }

// SetOptions swaps the tuning without resetting the springs.
func (g *Glow) SetOptions(opts GlowOptions) {
	opts.fill(g.opts)
	opts.Logger = g.opts.Logger
	g.opts = opts
}

// SnapToCharacter moves both layers onto the character and zeroes their
// velocity.
func (g *Glow) SnapToCharacter() {
	target := g.target()
	g.outerSpring = spring{pos: target}
	g.innerSpring = spring{pos: target}
	g.write(0)
}

// FadeIn tweens both layers to full glow opacity.
func (g *Glow) FadeIn() *animation.Timeline {
	return g.fadeTo(g.opts.Opacity, g.opts.FadeIn, animation.EasePower2Out)
}

// FadeOut tweens both layers to transparent.
func (g *Glow) FadeOut() *animation.Timeline {
	return g.fadeTo(0, g.opts.FadeOut, animation.EasePower2In)
}

// Show sets full glow opacity immediately.
func (g *Glow) Show() { g.setOpacity(g.opts.Opacity) }

// Hide makes both layers transparent immediately.
func (g *Glow) Hide() { g.setOpacity(0) }

// Visible reports whether the outer layer has any opacity.
func (g *Glow) Visible() bool { return g.outer.Get(animation.PropOpacity) > 0 }

// Offset returns the outer and inner spring positions.
func (g *Glow) Offset() (outer, inner mgl64.Vec2) {
	return g.outerSpring.pos, g.innerSpring.pos
}

// Observe implements animation.Observer.
func (g *Glow) Observe(f animation.Frame) {
	if g.skip(f) {
		return
	}
	k, c := g.opts.Stiffness, g.opts.Damping
	g.outerSpring.step(g.target(), k, c, f.Delta)
	g.innerSpring.step(g.outerSpring.pos, k, c, f.Delta)
	g.clock += f.Delta
	g.write(f.Index)
}

func (g *Glow) target() mgl64.Vec2 {
	if !g.follow {
		return mgl64.Vec2{}
	}
	return mgl64.Vec2{g.character.Get(animation.PropX), g.character.Get(animation.PropY)}
}

// wobble is the sine oscillation for a layer at the given phase offset.
func (g *Glow) wobble(phase float64) mgl64.Vec2 {
	amp := g.opts.Amplitude * g.opts.SizeScale
	a := 2*math.Pi*g.opts.Frequency*g.clock + phase
	return mgl64.Vec2{math.Sin(a), math.Cos(a) * 0.5}.Mul(amp)
}

func (g *Glow) write(frame uint64) {
	outer := g.outerSpring.pos.Add(g.wobble(0))
	inner := g.innerSpring.pos.Add(g.wobble(g.opts.InnerPhase))
	g.outer.Write(animation.PropX, outer.X(), GlowOwner, frame)
	g.outer.Write(animation.PropY, outer.Y(), GlowOwner, frame)
	g.inner.Write(animation.PropX, inner.X(), GlowOwner, frame)
	g.inner.Write(animation.PropY, inner.Y(), GlowOwner, frame)
}

func (g *Glow) fadeTo(opacity, duration float64, ease animation.Ease) *animation.Timeline {
	g.killFade()
	tl := animation.NewTimeline("glow-fade")
	for _, layer := range []*animation.Element{g.outer, g.inner} {
		tl.To(layer, animation.Props{animation.PropOpacity: animation.To(opacity)}, duration, ease, "0")
	}
	g.fade = tl
	g.ticker.Play(tl)
	return tl
}

func (g *Glow) setOpacity(opacity float64) {
	g.killFade()
	g.outer.Set(animation.PropOpacity, opacity)
	g.inner.Set(animation.PropOpacity, opacity)
}

func (g *Glow) killFade() {
	if g.fade != nil {
		g.fade.Kill()
		g.fade = nil
	}
}
