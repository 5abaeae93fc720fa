// Package transition builds the fixed wake-up, power-off and search-bar
// choreographies. Unlike emotions they animate opacity and the glow and
// shadow layers, so they are not catalog data.
//
// Every offset below was tuned against its partner sequence. Changing one
// timing usually means retuning the other sequence too.
package transition

import (
	"github.com/rs/zerolog"

	"github.com/normanking/anty/internal/animation"
	"github.com/normanking/anty/internal/emotion"
	"github.com/normanking/anty/internal/eyeshape"
)

// Wake-up sequence, seconds from the start of the timeline.
const (
	WakeFadeDuration   = 0.3
	WakeGlowAt         = 0.1
	WakeGlowDuration   = 0.4
	WakeShadowAt       = 0.1
	WakeShadowDuration = 0.4
	WakeSquintAt       = 0.2
	WakeSquintDuration = 0.15
	WakeBlinkAt        = 0.45
	WakeBlinkDuration  = 0.1
	WakeLiftAt         = 0.45
	WakeLiftDuration   = 0.2
	WakeLiftHeight     = 12.0
	WakeLiftScale      = 1.05
	WakeLandAt         = 0.65
	WakeLandDuration   = 0.25
	WakeOpenAt         = 0.75
	WakeOpenDuration   = 0.2

	WakeUpDuration = WakeOpenAt + WakeOpenDuration
)

// Power-off sequence.
const (
	OffTriangleDuration = 0.2
	OffLiftAt           = 0.3
	OffLiftDuration     = 0.15
	OffLiftHeight       = 10.0
	OffDropAt           = 0.45
	OffDropDuration     = 0.25
	OffScale            = 0.85
	OffCollapseAt       = 0.55
	OffCollapseDuration = 0.15
	OffGlowAt           = 0.5
	OffGlowDuration     = 0.3
	OffShadowAt         = 0.5
	OffShadowDuration   = 0.3
	OffDimAt            = 0.7
	OffDimDuration      = 0.2
	OffOpacity          = 0.35

	PowerOffDuration = OffDimAt + OffDimDuration
)

// Search-bar morph.
const (
	SearchDuration    = 0.35
	SearchEyeDuration = 0.2
	SearchScale       = 0.6
	SearchLift        = 20.0
	SearchSpread      = 30.0
	SearchGlowOpacity = 0.4
)

// Options sizes the choreographies for one character.
type Options struct {
	SizeScale     float64
	BaseScale     float64
	GlowOpacity   float64
	ShadowOpacity float64
	Logger        zerolog.Logger
}

func (o *Options) withDefaults() {
	if o.SizeScale <= 0 {
		o.SizeScale = 1
	}
	if o.BaseScale <= 0 {
		o.BaseScale = 1
	}
	if o.GlowOpacity <= 0 {
		o.GlowOpacity = 1
	}
	if o.ShadowOpacity <= 0 {
		o.ShadowOpacity = 1
	}
}

func opacity(v float64) animation.Props {
	return animation.Props{animation.PropOpacity: animation.To(v)}
}

func centerBrackets(els *animation.Elements) {
	for _, b := range els.Brackets() {
		b.Set(animation.PropX, 0)
	}
}

// CreateWakeUp returns a paused timeline that brings the character from the
// powered-off pose to idle: fade in, squint, blink, hop, open eyes.
func CreateWakeUp(els *animation.Elements, opts Options) *animation.Timeline {
	opts.withDefaults()
	s := opts.SizeScale
	tl := animation.NewTimeline("wake-up")
	if els == nil {
		return tl
	}

	for _, eye := range els.Eyes() {
		tl.Set(eye, animation.Props{animation.PropScaleY: animation.To(1)}, "0")
	}
	for _, b := range els.Brackets() {
		tl.Set(b, animation.Props{animation.PropX: animation.To(0)}, "0")
	}
	emotion.MorphEyes(tl, els, eyeshape.Closed, s, 0, animation.EaseNone, "0")
	tl.To(els.Character, opacity(1), WakeFadeDuration, animation.EasePower2Out, "0")

	for _, glow := range els.Glows() {
		tl.To(glow, opacity(opts.GlowOpacity), WakeGlowDuration, animation.EasePower2Out, animation.At(WakeGlowAt))
	}
	tl.To(els.Shadow, opacity(opts.ShadowOpacity), WakeShadowDuration, animation.EasePower2Out, animation.At(WakeShadowAt))

	emotion.MorphEyes(tl, els, eyeshape.Arrow, s, WakeSquintDuration, animation.EasePower2Out, animation.At(WakeSquintAt))
	emotion.MorphEyes(tl, els, eyeshape.Closed, s, WakeBlinkDuration, animation.EasePower2In, animation.At(WakeBlinkAt))

	tl.To(els.Character, animation.Props{
		animation.PropY:        animation.To(-WakeLiftHeight * s),
		animation.PropRotation: animation.To(0),
		animation.PropScale:    animation.To(opts.BaseScale * WakeLiftScale),
	}, WakeLiftDuration, animation.EasePower2Out, animation.At(WakeLiftAt))
	tl.To(els.Character, animation.Props{
		animation.PropY:     animation.To(0),
		animation.PropScale: animation.To(opts.BaseScale),
	}, WakeLandDuration, animation.EaseBounceOut, animation.At(WakeLandAt))

	emotion.MorphEyes(tl, els, eyeshape.Idle, s, WakeOpenDuration, animation.EaseBackOut, animation.At(WakeOpenAt))

	opts.Logger.Debug().Str("timeline", tl.ID()).Float64("duration", tl.Duration()).Msg("wake-up built")
	return tl
}

// CreatePowerOff returns a paused timeline that takes the character from
// idle to the powered-off pose: triangle eyes, a small lift, drop, collapse
// and dim.
func CreatePowerOff(els *animation.Elements, opts Options) *animation.Timeline {
	opts.withDefaults()
	s := opts.SizeScale
	tl := animation.NewTimeline("power-off")
	if els == nil {
		return tl
	}

	emotion.MorphEyes(tl, els, eyeshape.Triangle, s, OffTriangleDuration, animation.EasePower2Both, "0")
	tl.To(els.Character, animation.Props{animation.PropRotation: animation.To(0)}, OffTriangleDuration, animation.EasePower2Both, "0")
	for _, b := range els.Brackets() {
		tl.To(b, animation.Props{animation.PropX: animation.To(0)}, OffTriangleDuration, animation.EasePower2Both, "0")
	}

	tl.To(els.Character, animation.Props{
		animation.PropY: animation.To(-OffLiftHeight * s),
	}, OffLiftDuration, animation.EasePower2Out, animation.At(OffLiftAt))
	tl.To(els.Character, animation.Props{
		animation.PropY:     animation.To(0),
		animation.PropScale: animation.To(opts.BaseScale * OffScale),
	}, OffDropDuration, animation.EasePower2In, animation.At(OffDropAt))

	for _, glow := range els.Glows() {
		tl.To(glow, opacity(0), OffGlowDuration, animation.EasePower2In, animation.At(OffGlowAt))
	}
	tl.To(els.Shadow, opacity(0), OffShadowDuration, animation.EasePower2In, animation.At(OffShadowAt))

	for _, eye := range els.Eyes() {
		tl.To(eye, animation.Props{animation.PropScaleY: animation.To(0)}, OffCollapseDuration, animation.EasePower2In, animation.At(OffCollapseAt))
	}
	tl.To(els.Character, opacity(OffOpacity), OffDimDuration, animation.EaseNone, animation.At(OffDimAt))

	opts.Logger.Debug().Str("timeline", tl.ID()).Float64("duration", tl.Duration()).Msg("power-off built")
	return tl
}

// ApplyOffPose snaps els to where CreatePowerOff ends, for characters that
// start asleep.
func ApplyOffPose(els *animation.Elements, opts Options) {
	opts.withDefaults()
	if els == nil {
		return
	}
	els.Character.SetProps(map[animation.Prop]float64{
		animation.PropX:        0,
		animation.PropY:        0,
		animation.PropRotation: 0,
		animation.PropScale:    opts.BaseScale * OffScale,
		animation.PropOpacity:  OffOpacity,
	})
	els.LeftPath.SetShape(eyeshape.Of(eyeshape.Triangle, eyeshape.Left))
	els.RightPath.SetShape(eyeshape.Of(eyeshape.Triangle, eyeshape.Right))
	dims := eyeshape.MustDimensions(eyeshape.Triangle)
	for _, svg := range []*animation.Element{els.LeftSvg, els.RightSvg} {
		svg.Set(animation.PropWidth, dims.Width*opts.SizeScale)
		svg.Set(animation.PropHeight, dims.Height*opts.SizeScale)
	}
	for _, eye := range els.Eyes() {
		eye.Set(animation.PropScaleY, 0)
	}
	centerBrackets(els)
	for _, glow := range els.Glows() {
		glow.Set(animation.PropOpacity, 0)
	}
	els.Shadow.Set(animation.PropOpacity, 0)
}

// CreateSearchMorph shrinks and lifts the character into the search bar and
// spreads the brackets around it. Interrupting it re-centers the brackets.
func CreateSearchMorph(els *animation.Elements, opts Options) *animation.Timeline {
	opts.withDefaults()
	s := opts.SizeScale
	tl := animation.NewTimeline("search-morph")
	if els == nil {
		return tl
	}
	tl.OnInterrupt(func() { centerBrackets(els) })

	tl.To(els.Character, animation.Props{
		animation.PropY:        animation.To(-SearchLift * s),
		animation.PropRotation: animation.To(0),
		animation.PropScale:    animation.To(opts.BaseScale * SearchScale),
	}, SearchDuration, animation.EasePower2Both, "0")
	emotion.MorphEyes(tl, els, eyeshape.Half, s, SearchEyeDuration, animation.EasePower2Out, "0")
	tl.To(els.LeftBody, animation.Props{animation.PropX: animation.To(-SearchSpread * s)}, SearchDuration, animation.EasePower2Both, "0")
	tl.To(els.RightBody, animation.Props{animation.PropX: animation.To(SearchSpread * s)}, SearchDuration, animation.EasePower2Both, "0")
	for _, glow := range els.Glows() {
		tl.To(glow, opacity(SearchGlowOpacity), SearchDuration, animation.EasePower2Both, "0")
	}
	return tl
}

// CreateSearchRestore reverses CreateSearchMorph back to the idle pose.
func CreateSearchRestore(els *animation.Elements, opts Options) *animation.Timeline {
	opts.withDefaults()
	s := opts.SizeScale
	tl := animation.NewTimeline("search-restore")
	if els == nil {
		return tl
	}
	tl.OnInterrupt(func() { centerBrackets(els) })

	tl.To(els.Character, animation.Props{
		animation.PropY:     animation.To(0),
		animation.PropScale: animation.To(opts.BaseScale),
	}, SearchDuration, animation.EasePower2Both, "0")
	emotion.MorphEyes(tl, els, eyeshape.Idle, s, SearchEyeDuration, animation.EasePower2Out, animation.At(SearchDuration-SearchEyeDuration))
	for _, b := range els.Brackets() {
		tl.To(b, animation.Props{animation.PropX: animation.To(0)}, SearchDuration, animation.EasePower2Both, "0")
	}
	for _, glow := range els.Glows() {
		tl.To(glow, opacity(opts.GlowOpacity), SearchDuration, animation.EasePower2Both, "0")
	}
	return tl
}
