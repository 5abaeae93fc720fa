// Package scene projects an element bundle into flat screen geometry that a
// renderer can draw without knowing about timelines.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/normanking/anty/internal/animation"
)

// ReferenceSize is the character size the layout constants are given at.
const ReferenceSize = 160.0

// Layout places the parts relative to the character origin, in pixels at
// ReferenceSize.
type Layout struct {
	EyeSpacing     float64
	EyeY           float64
	BracketSpacing float64
	BracketWidth   float64
	BracketHeight  float64
	GlowRadius     float64
	InnerGlowRatio float64
	ShadowOffset   float64
	ShadowWidth    float64
	ShadowHeight   float64
}

// DefaultLayout matches the reference artwork.
func DefaultLayout() Layout {
	return Layout{
		EyeSpacing:     22,
		EyeY:           -4,
		BracketSpacing: 48,
		BracketWidth:   14,
		BracketHeight:  72,
		GlowRadius:     88,
		InnerGlowRatio: 0.6,
		ShadowOffset:   70,
		ShadowWidth:    96,
		ShadowHeight:   14,
	}
}

// Eye is one eye in screen space.
type Eye struct {
	Center   mgl64.Vec2
	Width    float64
	Height   float64
	Rotation float64 // degrees
	Shape    string
	From     string
	Morph    float64
}

// Bracket is one half of the body.
type Bracket struct {
	Center   mgl64.Vec2
	Width    float64
	Height   float64
	Rotation float64
	Left     bool
}

// Glow is a soft disc.
type Glow struct {
	Center  mgl64.Vec2
	Radius  float64
	Opacity float64
}

// Shadow is the ground ellipse.
type Shadow struct {
	Center  mgl64.Vec2
	RadiusX float64
	RadiusY float64
	Opacity float64
}

// Scene is everything a frame draws, back to front: shadow, outer glow,
// inner glow, brackets, eyes.
type Scene struct {
	Origin   mgl64.Vec2
	Center   mgl64.Vec2
	Scale    float64
	Rotation float64
	Opacity  float64

	Shadow    Shadow
	OuterGlow Glow
	InnerGlow Glow
	Brackets  []Bracket
	Eyes      []Eye
}

// Build projects els for a character of size px drawn with its resting
// centre at origin. Missing elements are left out.
func Build(els *animation.Elements, layout Layout, size float64, origin mgl64.Vec2) Scene {
	k := size / ReferenceSize
	if size <= 0 {
		k = 1
	}
	sc := Scene{Origin: origin, Scale: 1, Opacity: 1}
	if els == nil {
		return sc
	}

	ch := els.Character.Transform()
	sc.Center = origin.Add(mgl64.Vec2{ch.X, ch.Y})
	sc.Scale = ch.Scale
	sc.Rotation = ch.Rotation
	sc.Opacity = els.Container.Get(animation.PropOpacity) * els.Character.Get(animation.PropOpacity)
	rot := mgl64.Rotate2D(mgl64.DegToRad(ch.Rotation))
	place := func(local mgl64.Vec2) mgl64.Vec2 {
		return sc.Center.Add(rot.Mul2x1(local.Mul(k * ch.Scale)))
	}

	if els.Shadow != nil {
		s := els.Shadow.Get(animation.PropScale)
		sc.Shadow = Shadow{
			Center:  origin.Add(mgl64.Vec2{0, layout.ShadowOffset * k}),
			RadiusX: layout.ShadowWidth / 2 * k * s,
			RadiusY: layout.ShadowHeight / 2 * k * s,
			Opacity: els.Shadow.Get(animation.PropOpacity),
		}
	}
	if els.OuterGlow != nil {
		sc.OuterGlow = glow(els.OuterGlow, origin, layout.GlowRadius*k*ch.Scale)
	}
	if els.InnerGlow != nil {
		sc.InnerGlow = glow(els.InnerGlow, origin, layout.GlowRadius*layout.InnerGlowRatio*k*ch.Scale)
	}

	for i, b := range []*animation.Element{els.LeftBody, els.RightBody} {
		if b == nil {
			continue
		}
		side := sign(i)
		t := b.Transform()
		sc.Brackets = append(sc.Brackets, Bracket{
			Center:   place(mgl64.Vec2{side*layout.BracketSpacing + t.X/k, t.Y / k}),
			Width:    layout.BracketWidth * k * ch.Scale * t.Scale,
			Height:   layout.BracketHeight * k * ch.Scale * t.Scale,
			Rotation: ch.Rotation + t.Rotation,
			Left:     i == 0,
		})
	}

	eyes := []struct{ eye, path, svg *animation.Element }{
		{els.LeftEye, els.LeftPath, els.LeftSvg},
		{els.RightEye, els.RightPath, els.RightSvg},
	}
	for i, e := range eyes {
		if e.eye == nil {
			continue
		}
		t := e.eye.Transform()
		scaleX := t.Scale * e.eye.Get(animation.PropScaleX)
		scaleY := t.Scale * e.eye.Get(animation.PropScaleY)
		m := e.path.Morph()
		sc.Eyes = append(sc.Eyes, Eye{
			// eye offsets are already size-scaled pixels
			Center:   place(mgl64.Vec2{sign(i)*layout.EyeSpacing + t.X/k, layout.EyeY + t.Y/k}),
			Width:    e.svg.Get(animation.PropWidth) * scaleX * ch.Scale,
			Height:   e.svg.Get(animation.PropHeight) * scaleY * ch.Scale,
			Rotation: ch.Rotation + t.Rotation,
			Shape:    m.To.Name,
			From:     m.From.Name,
			Morph:    m.T,
		})
	}
	return sc
}

func glow(el *animation.Element, origin mgl64.Vec2, radius float64) Glow {
	return Glow{
		Center:  origin.Add(mgl64.Vec2{el.Get(animation.PropX), el.Get(animation.PropY)}),
		Radius:  radius,
		Opacity: el.Get(animation.PropOpacity),
	}
}

func sign(i int) float64 {
	if i == 0 {
		return -1
	}
	return 1
}

// Bounds returns the axis-aligned box around the body and eyes.
func (s Scene) Bounds() (min, max mgl64.Vec2) {
	min = mgl64.Vec2{math.Inf(1), math.Inf(1)}
	max = mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	grow := func(c mgl64.Vec2, w, h float64) {
		min = mgl64.Vec2{math.Min(min.X(), c.X()-w/2), math.Min(min.Y(), c.Y()-h/2)}
		max = mgl64.Vec2{math.Max(max.X(), c.X()+w/2), math.Max(max.Y(), c.Y()+h/2)}
	}
	for _, b := range s.Brackets {
		grow(b.Center, b.Width, b.Height)
	}
	for _, e := range s.Eyes {
		grow(e.Center, e.Width, e.Height)
	}
	if len(s.Brackets)+len(s.Eyes) == 0 {
		return s.Center, s.Center
	}
	return min, max
}
