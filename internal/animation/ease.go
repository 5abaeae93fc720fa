package animation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// EaseFunc maps linear progress t in [0,1] to eased progress.
type EaseFunc func(t float64) float64

// Ease is a named easing curve using the "family.variant(param)" notation,
// e.g. "power2.out", "sine.inOut", "back.out(1.7)". The zero value is the
// default ease (power1.out).
type Ease string

const (
	EaseNone       Ease = "none"
	EaseDefault    Ease = "power1.out"
	EasePower2Out  Ease = "power2.out"
	EasePower2In   Ease = "power2.in"
	EasePower2Both Ease = "power2.inOut"
	EaseSineInOut  Ease = "sine.inOut"
	EaseBackOut    Ease = "back.out"
	EaseElasticOut Ease = "elastic.out"
	EaseBounceOut  Ease = "bounce.out"
)

var (
	easeCacheMu sync.RWMutex
	easeCache   = map[Ease]EaseFunc{}
)

// Func resolves the curve. Unknown names return an error.
func (e Ease) Func() (EaseFunc, error) {
	easeCacheMu.RLock()
	fn, ok := easeCache[e]
	easeCacheMu.RUnlock()
	if ok {
		return fn, nil
	}

	fn, err := parseEase(e)
	if err != nil {
		return nil, err
	}

	easeCacheMu.Lock()
	easeCache[e] = fn
	easeCacheMu.Unlock()
	return fn, nil
}

// Apply evaluates the curve at t, falling back to linear for unknown names.
func (e Ease) Apply(t float64) float64 {
	fn, err := e.Func()
	if err != nil {
		return t
	}
	return fn(t)
}

func parseEase(e Ease) (EaseFunc, error) {
	name := strings.TrimSpace(string(e))
	if name == "" {
		name = string(EaseDefault)
	}
	if name == "none" || name == "linear" {
		return linear, nil
	}

	var param float64
	hasParam := false
	if open := strings.IndexByte(name, '('); open >= 0 {
		if !strings.HasSuffix(name, ")") {
			return nil, fmt.Errorf("ease %q: unterminated parameter", e)
		}
		p, err := strconv.ParseFloat(name[open+1:len(name)-1], 64)
		if err != nil {
			return nil, fmt.Errorf("ease %q: bad parameter: %w", e, err)
		}
		param, hasParam = p, true
		name = name[:open]
	}

	family, variant, found := strings.Cut(name, ".")
	if !found {
		variant = "out"
	}

	var in EaseFunc
	switch family {
	case "power0":
		return linear, nil
	case "power1", "quad":
		in = powIn(2)
	case "power2", "cubic":
		in = powIn(3)
	case "power3", "quart":
		in = powIn(4)
	case "power4", "quint", "strong":
		in = powIn(5)
	case "sine":
		in = func(t float64) float64 { return 1 - math.Cos(t*math.Pi/2) }
	case "expo":
		in = func(t float64) float64 {
			if t <= 0 {
				return 0
			}
			return math.Pow(2, 10*t-10)
		}
	case "circ":
		in = func(t float64) float64 { return 1 - math.Sqrt(1-t*t) }
	case "back":
		overshoot := 1.70158
		if hasParam {
			overshoot = param
		}
		in = func(t float64) float64 { return (overshoot+1)*t*t*t - overshoot*t*t }
	case "elastic":
		c4 := 2 * math.Pi / 3
		in = func(t float64) float64 {
			if t <= 0 {
				return 0
			}
			if t >= 1 {
				return 1
			}
			return -math.Pow(2, 10*t-10) * math.Sin((t*10-10.75)*c4)
		}
	case "bounce":
		in = func(t float64) float64 { return 1 - bounceOut(1-t) }
	default:
		return nil, fmt.Errorf("unknown ease family %q", family)
	}

	switch variant {
	case "in":
		return in, nil
	case "out":
		return func(t float64) float64 { return 1 - in(1-t) }, nil
	case "inOut":
		return func(t float64) float64 {
			if t < 0.5 {
				return in(2*t) / 2
			}
			return 1 - in(2*(1-t))/2
		}, nil
	default:
		return nil, fmt.Errorf("unknown ease variant %q", variant)
	}
}

func linear(t float64) float64 { return t }

func powIn(p float64) EaseFunc {
	return func(t float64) float64 { return math.Pow(t, p) }
}

func bounceOut(t float64) float64 {
	const n1, d1 = 7.5625, 2.75
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

// Lerp linearly interpolates between a and b. It returns b exactly at t=1.
func Lerp(a, b, t float64) float64 {
	if t == 1 {
		return b
	}
	return a + (b-a)*t
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
