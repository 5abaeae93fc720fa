package emotion

import (
	"github.com/rs/zerolog"

	"github.com/normanking/anty/internal/animation"
	"github.com/normanking/anty/internal/eyeshape"
)

// Interpreter compiles catalog entries into timelines. Each character owns
// one; it holds the single pending post-hold reset for that character.
type Interpreter struct {
	ticker    *animation.Ticker
	log       zerolog.Logger
	baseScale float64
	pending   *animation.Task
}

// NewInterpreter creates an interpreter that schedules holds on ticker.
func NewInterpreter(ticker *animation.Ticker, logger zerolog.Logger) *Interpreter {
	return &Interpreter{
		ticker:    ticker,
		log:       logger,
		baseScale: 1,
	}
}

// SetBaseScale sets the scale that phase scale multipliers apply to.
func (in *Interpreter) SetBaseScale(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	in.baseScale = scale
}

// BaseScale returns the current base scale.
func (in *Interpreter) BaseScale() float64 { return in.baseScale }

// HasPendingReset reports whether a post-hold reset is waiting to fire.
func (in *Interpreter) HasPendingReset() bool { return in.pending.Active() }

// CancelPendingReset drops the outstanding post-hold reset, if any.
func (in *Interpreter) CancelPendingReset() {
	if in.pending != nil {
		in.pending.Cancel()
		in.pending = nil
	}
}

// Interpret builds a paused timeline for cfg against els. It never plays the
// timeline. Missing elements drop the parts that would animate them. The
// timeline lasts exactly cfg.TotalDuration when the content is shorter.
func (in *Interpreter) Interpret(cfg *Config, els *animation.Elements, sizeScale float64) *animation.Timeline {
	if cfg == nil {
		return nil
	}
	if sizeScale <= 0 {
		sizeScale = 1
	}

	tl := in.compile(cfg, els, sizeScale)
	if cfg.TotalDuration > tl.Duration() {
		tl.Call(func() {}, animation.At(cfg.TotalDuration))
	}

	tl.OnComplete(func() { in.complete(cfg, els, sizeScale) })
	tl.OnInterrupt(func() { in.ResetTransforms(els) })

	in.log.Debug().
		Str("emotion", string(cfg.ID)).
		Str("timeline", tl.ID()).
		Float64("duration", tl.Duration()).
		Float64("sizeScale", sizeScale).
		Msg("compiled emotion")
	return tl
}

func (in *Interpreter) compile(cfg *Config, els *animation.Elements, s float64) *animation.Timeline {
	tl := animation.NewTimeline("emotion:" + string(cfg.ID))

	// a reset left over from the previous emotion must not land on this one
	tl.Call(in.CancelPendingReset, "0")

	if eyes := buildEyes(cfg, els, s); eyes != nil {
		tl.Add(eyes, "0")
	}
	if motion := in.buildCharacter(cfg, els, s); motion != nil {
		tl.Add(motion, "0")
	}
	if brackets := buildBrackets(cfg, els, s); brackets != nil {
		tl.Add(brackets, "0")
	}
	return tl
}

// ContentDuration is the end time of the latest phase in cfg, ignoring
// TotalDuration padding.
func (in *Interpreter) ContentDuration(cfg *Config) float64 {
	if cfg == nil {
		return 0
	}
	return in.compile(cfg, animation.NewElements(), 1).Duration()
}

// MorphEyes adds a morph of both eyes to shape, resizing the eye boxes for
// sizeScale. Missing eye elements are skipped.
func MorphEyes(tl *animation.Timeline, els *animation.Elements, shape eyeshape.Name, sizeScale, duration float64, ease animation.Ease, pos animation.Position) bool {
	if tl == nil || els == nil {
		return false
	}
	return shapeTweens(tl, els, shape, shape, sizeScale, duration, ease, pos)
}

// shapeTweens morphs both eyes starting at pos and reports whether anything
// was placed, so later tweens can start alongside it.
func shapeTweens(tl *animation.Timeline, els *animation.Elements, left, right eyeshape.Name, s, duration float64, ease animation.Ease, pos animation.Position) bool {
	placed := false
	next := func() animation.Position {
		if placed {
			return animation.WithPrevious
		}
		return pos
	}

	sides := []struct {
		name eyeshape.Name
		side eyeshape.Side
		path *animation.Element
		svg  *animation.Element
	}{
		{left, eyeshape.Left, els.LeftPath, els.LeftSvg},
		{right, eyeshape.Right, els.RightPath, els.RightSvg},
	}
	for _, sd := range sides {
		if sd.name == "" || !eyeshape.Valid(sd.name) {
			continue
		}
		if sd.path != nil {
			tl.Morph(sd.path, eyeshape.Of(sd.name, sd.side), duration, ease, next())
			placed = true
		}
		if sd.svg != nil {
			dims := eyeshape.MustDimensions(sd.name)
			tl.To(sd.svg, animation.Props{
				animation.PropWidth:  animation.To(dims.Width * s),
				animation.PropHeight: animation.To(dims.Height * s),
			}, duration, ease, next())
			placed = true
		}
	}
	return placed
}

func eyeProps(t *EyeTransform, bunch, s float64) animation.Props {
	p := animation.Props{}
	if t != nil {
		p[animation.PropRotation] = animation.To(t.Rotation)
		p[animation.PropX] = animation.To(t.X * s)
		p[animation.PropY] = animation.To(t.Y * s)
		if t.Scale != 0 {
			p[animation.PropScale] = animation.To(t.Scale)
		}
	}
	if bunch != 0 {
		x := 0.0
		if t != nil {
			x = t.X
		}
		p[animation.PropX] = animation.To((x + bunch) * s)
	}
	return p
}

func buildEyes(cfg *Config, els *animation.Elements, s float64) *animation.Timeline {
	if els == nil || (cfg.Eyes == nil && len(cfg.EyePhases) == 0) {
		return nil
	}
	tl := animation.NewTimeline("eyes")

	if e := cfg.Eyes; e != nil {
		start := animation.At(e.Delay)
		left, right := e.Shapes()
		placed := shapeTweens(tl, els, left, right, s, e.Duration, e.Ease, start)

		leftProps := eyeProps(e.LeftTransform, e.Bunch, s)
		rightProps := eyeProps(e.RightTransform, -e.Bunch, s)
		for _, side := range []struct {
			el    *animation.Element
			props animation.Props
		}{{els.LeftEye, leftProps}, {els.RightEye, rightProps}} {
			if side.el == nil || len(side.props) == 0 {
				continue
			}
			at := start
			if placed {
				at = animation.WithPrevious
			}
			tl.To(side.el, side.props, e.Duration, e.Ease, at)
			placed = true
		}

		if e.ReturnDuration > 0 {
			back := e.ReturnScale
			if back == 0 {
				back = 1
			}
			end := animation.At(e.Delay + e.Duration)
			tl.To(els.LeftEye, animation.Props{animation.PropScale: animation.To(back)}, e.ReturnDuration, e.Ease, end)
			tl.To(els.RightEye, animation.Props{animation.PropScale: animation.To(back)}, e.ReturnDuration, e.Ease, end)
		}
	}

	for i := range cfg.EyePhases {
		ph := &cfg.EyePhases[i]
		at := animation.At(ph.At)
		left, right := ph.Shapes()
		placed := shapeTweens(tl, els, left, right, s, ph.Duration, ph.Ease, at)

		offset := animation.Props{}
		if ph.X != nil {
			offset[animation.PropX] = animation.To(*ph.X * s)
		}
		if ph.Y != nil {
			offset[animation.PropY] = animation.To(*ph.Y * s)
		}
		if len(offset) == 0 {
			continue
		}
		for _, el := range []*animation.Element{els.LeftEye, els.RightEye} {
			if el == nil {
				continue
			}
			pos := at
			if placed {
				pos = animation.WithPrevious
			}
			tl.To(el, offset, ph.Duration, ph.Ease, pos)
			placed = true
		}
	}

	if len(tl.Describe()) == 0 {
		return nil
	}
	return tl
}

func (in *Interpreter) buildCharacter(cfg *Config, els *animation.Elements, s float64) *animation.Timeline {
	if els == nil || els.Character == nil || len(cfg.Character) == 0 {
		return nil
	}
	tl := animation.NewTimeline("character")
	for _, ph := range cfg.Character {
		p := make(animation.Props, len(ph.Props))
		for prop, v := range ph.Props {
			switch {
			case IsPixel(prop):
				v *= s
			case IsScale(prop):
				v *= in.baseScale
			}
			p[prop] = animation.To(v)
		}
		tl.To(els.Character, p, ph.Duration, ph.Ease, ph.Position)
	}
	return tl
}

func buildBrackets(cfg *Config, els *animation.Elements, s float64) *animation.Timeline {
	b := cfg.Body
	if b == nil || els == nil || (els.LeftBody == nil && els.RightBody == nil) {
		return nil
	}
	tl := animation.NewTimeline("brackets")

	offsets := func(sign float64) (left, right animation.Props) {
		left = animation.Props{
			animation.PropX: animation.To(sign * b.LeftX * s),
			animation.PropY: animation.To(sign * b.LeftY * s),
		}
		right = animation.Props{
			animation.PropX: animation.To(sign * b.RightX * s),
			animation.PropY: animation.To(sign * b.RightY * s),
		}
		return left, right
	}

	pair := func(left, right animation.Props, duration float64, ease animation.Ease, pos animation.Position) {
		tl.To(els.LeftBody, left, duration, ease, pos)
		if els.LeftBody != nil {
			pos = animation.WithPrevious
		}
		tl.To(els.RightBody, right, duration, ease, pos)
	}

	l, r := offsets(1)
	pair(l, r, b.Duration, b.Ease, animation.At(b.At))
	sign := 1.0
	for i := 0; i < b.Shakes; i++ {
		sign = -sign
		l, r = offsets(sign)
		pair(l, r, b.Duration, b.Ease, "")
	}

	l, r = offsets(0)
	ret := animation.Position("")
	if b.Hold > 0 {
		ret = animation.Gap(b.Hold)
	}
	pair(l, r, b.ReturnDuration, b.ReturnEase, ret)
	return tl
}

func (in *Interpreter) complete(cfg *Config, els *animation.Elements, s float64) {
	if els != nil {
		if cfg.ResetRotation {
			els.Character.Set(animation.PropRotation, 0)
		}
		if cfg.ResetRotationY {
			els.Character.Set(animation.PropRotationY, 0)
		}
	}

	if cfg.HoldDuration > 0 && in.ticker != nil {
		in.CancelPendingReset()
		in.pending = in.ticker.After(cfg.HoldDuration, func() {
			in.pending = nil
			in.ResetNeutral(els, s)
		})
		return
	}
	in.ResetNeutral(els, s)
}

// ResetTransforms zeroes eye rotation, offset and scale and the bracket
// offsets. Runs when an emotion is interrupted.
func (in *Interpreter) ResetTransforms(els *animation.Elements) {
	for _, eye := range els.Eyes() {
		eye.Set(animation.PropRotation, 0)
		eye.Set(animation.PropX, 0)
		eye.Set(animation.PropY, 0)
		eye.Set(animation.PropScale, 1)
	}
	for _, b := range els.Brackets() {
		b.Set(animation.PropX, 0)
		b.Set(animation.PropY, 0)
	}
}

// ResetNeutral restores the idle eye shape as well as ResetTransforms.
func (in *Interpreter) ResetNeutral(els *animation.Elements, sizeScale float64) {
	in.ResetTransforms(els)
	SetIdleEyes(els, sizeScale)
}

// SetIdleEyes snaps both eyes to the idle silhouette.
func SetIdleEyes(els *animation.Elements, sizeScale float64) {
	if els == nil {
		return
	}
	dims := eyeshape.MustDimensions(eyeshape.Idle)
	els.LeftPath.SetShape(eyeshape.Of(eyeshape.Idle, eyeshape.Left))
	els.RightPath.SetShape(eyeshape.Of(eyeshape.Idle, eyeshape.Right))
	for _, svg := range []*animation.Element{els.LeftSvg, els.RightSvg} {
		svg.Set(animation.PropWidth, dims.Width*sizeScale)
		svg.Set(animation.PropHeight, dims.Height*sizeScale)
	}
}
