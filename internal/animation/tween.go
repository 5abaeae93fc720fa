package animation

// Op says how a tween target value relates to the value captured at start.
type Op uint8

const (
	OpSet Op = iota
	OpAdd
	OpMul
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+="
	case OpMul:
		return "*="
	default:
		return "="
	}
}

// Value is a tween end value.
type Value struct {
	Op Op
	V  float64
}

// To is an absolute end value.
func To(v float64) Value { return Value{Op: OpSet, V: v} }

// By is an end value relative to the start by addition.
func By(v float64) Value { return Value{Op: OpAdd, V: v} }

// Times is an end value relative to the start by multiplication.
func Times(v float64) Value { return Value{Op: OpMul, V: v} }

func (v Value) resolve(from float64) float64 {
	switch v.Op {
	case OpAdd:
		return from + v.V
	case OpMul:
		return from * v.V
	default:
		return v.V
	}
}

// Props is a set of tween end values keyed by property.
type Props map[Prop]Value

// Abs builds Props of absolute values.
func Abs(values map[Prop]float64) Props {
	out := make(Props, len(values))
	for p, v := range values {
		out[p] = To(v)
	}
	return out
}

// TweenSpec is a flattened, read-only description of one tween, used by
// tooling and tests to inspect compiled timelines.
type TweenSpec struct {
	Target   string  `json:"target"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Ease     Ease    `json:"ease"`
	Props    Props   `json:"props,omitempty"`
	Shape    string  `json:"shape,omitempty"`
}

// End is the absolute end time of the tween.
func (s TweenSpec) End() float64 { return s.Start + s.Duration }

type tween struct {
	target   *Element
	props    Props
	shape    *Shape
	duration float64
	ease     Ease
	easeFn   EaseFunc

	captured  bool
	from      map[Prop]float64
	to        map[Prop]float64
	fromShape Shape
}

func newTween(target *Element, props Props, shape *Shape, duration float64, ease Ease) *tween {
	if duration < 0 {
		duration = 0
	}
	fn, err := ease.Func()
	if err != nil {
		fn = linear
	}
	return &tween{
		target:   target,
		props:    props,
		shape:    shape,
		duration: duration,
		ease:     ease,
		easeFn:   fn,
	}
}

func (tw *tween) totalDuration() float64 { return tw.duration }

func (tw *tween) capture() {
	tw.from = make(map[Prop]float64, len(tw.props))
	tw.to = make(map[Prop]float64, len(tw.props))
	for p, v := range tw.props {
		start := tw.target.Get(p)
		tw.from[p] = start
		tw.to[p] = v.resolve(start)
	}
	if tw.shape != nil {
		tw.fromShape = tw.target.Shape()
	}
	tw.captured = true
}

func (tw *tween) render(t float64, frame uint64, owner string) {
	if !tw.captured {
		if t < 0 {
			return
		}
		tw.capture()
	}

	var progress float64
	switch {
	case t < 0:
		progress = 0
	case tw.duration <= 0:
		progress = 1
	default:
		progress = Clamp(t/tw.duration, 0, 1)
	}
	e := tw.easeFn(progress)
	if progress >= 1 {
		e = 1
	}

	for p := range tw.props {
		tw.target.Write(p, Lerp(tw.from[p], tw.to[p], e), owner, frame)
	}
	if tw.shape != nil {
		tw.target.writeMorph(tw.fromShape, *tw.shape, Clamp(e, 0, 1), owner, frame)
	}
}

func (tw *tween) invalidate() {
	tw.captured = false
	tw.from = nil
	tw.to = nil
}

func (tw *tween) resetRender() {}

func (tw *tween) describe(offset float64, out *[]TweenSpec) {
	spec := TweenSpec{
		Start:    offset,
		Duration: tw.duration,
		Ease:     tw.ease,
		Props:    tw.props,
	}
	if tw.target != nil {
		spec.Target = tw.target.Name
	}
	if tw.shape != nil {
		spec.Shape = tw.shape.Name
	}
	*out = append(*out, spec)
}

type call struct {
	fn    func()
	fired bool
}

func (c *call) totalDuration() float64 { return 0 }

func (c *call) render(t float64, _ uint64, _ string) {
	if t < 0 {
		c.fired = false
		return
	}
	if !c.fired {
		c.fired = true
		c.fn()
	}
}

func (c *call) invalidate()                     {}
func (c *call) resetRender()                    { c.fired = false }
func (c *call) describe(float64, *[]TweenSpec) {}
