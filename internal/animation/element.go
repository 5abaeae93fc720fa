package animation

import (
	"sort"
	"sync"
)

// Prop names an animatable property of an Element.
type Prop string

const (
	PropX         Prop = "x"
	PropY         Prop = "y"
	PropRotation  Prop = "rotation"
	PropRotationX Prop = "rotationX"
	PropRotationY Prop = "rotationY"
	PropScale     Prop = "scale"
	PropScaleX    Prop = "scaleX"
	PropScaleY    Prop = "scaleY"
	PropOpacity   Prop = "opacity"
	PropWidth     Prop = "width"
	PropHeight    Prop = "height"

	// PropMorph is the progress of the current shape morph.
	PropMorph Prop = "morph"
)

// DefaultValue is what an Element reports for a property never written.
func DefaultValue(p Prop) float64 {
	switch p {
	case PropScale, PropScaleX, PropScaleY, PropOpacity, PropMorph:
		return 1
	}
	return 0
}

// Shape is a named eye silhouette and its path data.
type Shape struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// Morph describes an in-flight (or settled) shape change.
type Morph struct {
	From Shape   `json:"from"`
	To   Shape   `json:"to"`
	T    float64 `json:"t"`
}

// Current returns the shape the morph is closest to.
func (m Morph) Current() Shape {
	if m.T < 0.5 && m.From.Name != "" {
		return m.From
	}
	return m.To
}

// Conflict records two writers touching the same property in one frame.
type Conflict struct {
	Element string
	Prop    Prop
	Frame   uint64
	Owners  [2]string
}

type writeMark struct {
	frame uint64
	owner string
}

// Element is a renderer-agnostic handle for one visual node: a bag of
// transform properties plus an optional eye shape. All methods are safe on a
// nil receiver so partially populated element bundles degrade silently.
type Element struct {
	Name string

	mu        sync.RWMutex
	props     map[Prop]float64
	morph     Morph
	marks     map[Prop]writeMark
	conflicts []Conflict
}

// NewElement creates an element at its default transform.
func NewElement(name string) *Element {
	return &Element{
		Name:  name,
		props: make(map[Prop]float64),
		marks: make(map[Prop]writeMark),
	}
}

// Get returns the current value of p.
func (e *Element) Get(p Prop) float64 {
	if e == nil {
		return DefaultValue(p)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if v, ok := e.props[p]; ok {
		return v
	}
	return DefaultValue(p)
}

// Set writes p without taking part in the ownership audit. Used by one-shot
// resets that run between frames.
func (e *Element) Set(p Prop, v float64) {
	e.Write(p, v, "", 0)
}

// SetProps writes several properties at once.
func (e *Element) SetProps(props map[Prop]float64) {
	for p, v := range props {
		e.Set(p, v)
	}
}

// Write sets p on behalf of owner during frame. Two distinct non-empty owners
// writing the same property in the same frame are recorded as a conflict.
func (e *Element) Write(p Prop, v float64, owner string, frame uint64) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.props[p] = v
	if owner == "" || frame == 0 {
		return
	}
	if last, ok := e.marks[p]; ok && last.frame == frame && last.owner != owner {
		e.conflicts = append(e.conflicts, Conflict{
			Element: e.Name,
			Prop:    p,
			Frame:   frame,
			Owners:  [2]string{last.owner, owner},
		})
	}
	e.marks[p] = writeMark{frame: frame, owner: owner}
}

// Conflicts returns every recorded ownership conflict.
func (e *Element) Conflicts() []Conflict {
	if e == nil {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Conflict, len(e.conflicts))
	copy(out, e.conflicts)
	return out
}

// SetShape snaps the element to shape with no morph in progress.
func (e *Element) SetShape(s Shape) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.morph = Morph{From: s, To: s, T: 1}
	e.props[PropMorph] = 1
}

func (e *Element) writeMorph(from, to Shape, t float64, owner string, frame uint64) {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.morph = Morph{From: from, To: to, T: t}
	e.mu.Unlock()
	e.Write(PropMorph, t, owner, frame)
}

// Morph returns the element's shape state.
func (e *Element) Morph() Morph {
	if e == nil {
		return Morph{}
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.morph
}

// Shape returns the shape the element currently shows.
func (e *Element) Shape() Shape {
	return e.Morph().Current()
}

// Snapshot copies every written property.
func (e *Element) Snapshot() map[Prop]float64 {
	if e == nil {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[Prop]float64, len(e.props))
	for p, v := range e.props {
		out[p] = v
	}
	return out
}

// Transform is the core 2D transform of an element.
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
}

// Transform reads x, y, rotation and scale.
func (e *Element) Transform() Transform {
	return Transform{
		X:        e.Get(PropX),
		Y:        e.Get(PropY),
		Rotation: e.Get(PropRotation),
		Scale:    e.Get(PropScale),
	}
}

// Elements is the bundle of handles the presentation layer owns and passes to
// the animation core. Any field may be nil.
type Elements struct {
	Container *Element
	Character *Element
	Shadow    *Element
	LeftEye   *Element
	RightEye  *Element
	LeftPath  *Element
	RightPath *Element
	LeftSvg   *Element
	RightSvg  *Element
	InnerGlow *Element
	OuterGlow *Element
	LeftBody  *Element
	RightBody *Element
}

// NewElements allocates a full bundle.
func NewElements() *Elements {
	return &Elements{
		Container: NewElement("container"),
		Character: NewElement("character"),
		Shadow:    NewElement("shadow"),
		LeftEye:   NewElement("leftEye"),
		RightEye:  NewElement("rightEye"),
		LeftPath:  NewElement("leftEyePath"),
		RightPath: NewElement("rightEyePath"),
		LeftSvg:   NewElement("leftEyeSvg"),
		RightSvg:  NewElement("rightEyeSvg"),
		InnerGlow: NewElement("innerGlow"),
		OuterGlow: NewElement("outerGlow"),
		LeftBody:  NewElement("leftBody"),
		RightBody: NewElement("rightBody"),
	}
}

// Eyes returns the eye containers that are present.
func (els *Elements) Eyes() []*Element {
	if els == nil {
		return nil
	}
	return present(els.LeftEye, els.RightEye)
}

// HasEyes reports whether both eye containers are present.
func (els *Elements) HasEyes() bool {
	return els != nil && els.LeftEye != nil && els.RightEye != nil
}

// Brackets returns the body bracket halves that are present.
func (els *Elements) Brackets() []*Element {
	if els == nil {
		return nil
	}
	return present(els.LeftBody, els.RightBody)
}

// Glows returns the glow layers that are present.
func (els *Elements) Glows() []*Element {
	if els == nil {
		return nil
	}
	return present(els.InnerGlow, els.OuterGlow)
}

// All returns every present element.
func (els *Elements) All() []*Element {
	if els == nil {
		return nil
	}
	return present(els.Container, els.Character, els.Shadow,
		els.LeftEye, els.RightEye, els.LeftPath, els.RightPath,
		els.LeftSvg, els.RightSvg, els.InnerGlow, els.OuterGlow,
		els.LeftBody, els.RightBody)
}

// Conflicts gathers ownership conflicts across the bundle, ordered by frame.
func (els *Elements) Conflicts() []Conflict {
	var out []Conflict
	for _, el := range els.All() {
		out = append(out, el.Conflicts()...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Frame < out[j].Frame })
	return out
}

func present(in ...*Element) []*Element {
	out := make([]*Element, 0, len(in))
	for _, el := range in {
		if el != nil {
			out = append(out, el)
		}
	}
	return out
}
