package emotion

import (
	"sort"

	"github.com/normanking/anty/internal/animation"
	"github.com/normanking/anty/internal/eyeshape"
)

const (
	pX     = animation.PropX
	pY     = animation.PropY
	pRot   = animation.PropRotation
	pRotX  = animation.PropRotationX
	pRotY  = animation.PropRotationY
	pScale = animation.PropScale
)

type props = map[animation.Prop]float64

func phase(duration float64, ease animation.Ease, p props) Phase {
	return Phase{Props: p, Duration: duration, Ease: ease}
}

func phaseAt(pos animation.Position, duration float64, ease animation.Ease, p props) Phase {
	return Phase{Props: p, Duration: duration, Ease: ease, Position: pos}
}

func eyesTo(shape eyeshape.Name, at, duration float64) EyePhase {
	return EyePhase{Shape: shape, At: at, Duration: duration, Ease: animation.EasePower2Both}
}

func px(v float64) *float64 { return &v }

func builtin() []*Config {
	return []*Config{
		{
			ID:        Happy,
			Eyes:      &EyeSpec{Shape: eyeshape.Happy, Duration: 0.2, Ease: animation.EasePower2Out},
			EyePhases: []EyePhase{eyesTo(eyeshape.Idle, 1.0, 0.2)},
			Character: []Phase{
				phase(0.2, animation.EasePower2Out, props{pY: -20}),
				phase(0.3, animation.EaseBounceOut, props{pY: 0}),
			},
			Glow:          true,
			TotalDuration: 1.3,
		},
		{
			ID:        Celebrate,
			Eyes:      &EyeSpec{Shape: eyeshape.Happy, Duration: 0.2, Ease: animation.EasePower2Out},
			EyePhases: []EyePhase{eyesTo(eyeshape.Idle, 1.25, 0.2)},
			Character: []Phase{
				phase(0.3, animation.EasePower2Out, props{pY: -40, pRot: -8, pScale: 1.1}),
				phase(0.5, animation.EasePower2Both, props{pRot: 360}),
				phase(0.35, animation.EaseBounceOut, props{pY: 0, pScale: 1}),
			},
			Body: &BodySpec{
				LeftX: -6, RightX: 6,
				Duration: 0.3, Ease: animation.EasePower2Out,
				Hold:           0.5,
				ReturnDuration: 0.3, ReturnEase: animation.EasePower2Both,
			},
			Glow:          true,
			TotalDuration: 1.5,
			ResetRotation: true,
		},
		{
			ID:        Excited,
			Eyes:      &EyeSpec{Shape: eyeshape.Happy, Duration: 0.15, Ease: animation.EasePower2Out},
			EyePhases: []EyePhase{eyesTo(eyeshape.Idle, 0.95, 0.2)},
			Character: []Phase{
				phase(0.18, animation.EasePower2Out, props{pY: -25}),
				phase(0.18, animation.EasePower2In, props{pY: 0}),
				phase(0.18, animation.EasePower2Out, props{pY: -25}),
				phase(0.18, animation.EasePower2In, props{pY: 0}),
			},
			Body: &BodySpec{
				LeftY: -3, RightY: -3,
				Duration: 0.18, Ease: animation.EaseSineInOut,
				Shakes:         3,
				ReturnDuration: 0.15,
			},
			Glow:          true,
			TotalDuration: 1.2,
		},
		{
			ID:        Pleased,
			Eyes:      &EyeSpec{Shape: eyeshape.Happy, Duration: 0.25, Ease: "sine.out"},
			EyePhases: []EyePhase{eyesTo(eyeshape.Idle, 0.75, 0.2)},
			Character: []Phase{
				phase(0.3, animation.EaseSineInOut, props{pY: -6, pRot: -4}),
				phase(0.3, animation.EaseSineInOut, props{pY: 0, pRot: 0}),
			},
			TotalDuration: 1.0,
		},
		{
			ID: Smize,
			Eyes: &EyeSpec{
				Shape: eyeshape.Smize, Duration: 0.3, Ease: animation.EasePower2Out,
				LeftTransform:  &EyeTransform{Y: -2},
				RightTransform: &EyeTransform{Y: -2},
			},
			TotalDuration: 0.5,
			HoldDuration:  1.2,
			PreserveIdle:  true,
		},
		{
			ID: Sad,
			Eyes: &EyeSpec{
				Shape: eyeshape.Sad, Duration: 0.4, Ease: animation.EasePower2Out,
				LeftTransform:  &EyeTransform{Rotation: -10, Y: 4},
				RightTransform: &EyeTransform{Rotation: 10, Y: 4},
			},
			EyePhases: []EyePhase{eyesTo(eyeshape.Idle, 1.6, 0.3)},
			Character: []Phase{
				phase(0.6, animation.EasePower2Out, props{pY: 8, pScale: 0.95}),
				phaseAt("1.3", 0.5, animation.EasePower2Both, props{pY: 0, pScale: 1}),
			},
			TotalDuration: 2.0,
			ShowTeardrop:  true,
		},
		{
			ID:        Angry,
			Eyes:      &EyeSpec{Shape: eyeshape.Angry, Duration: 0.2, Ease: animation.EasePower2Out, Bunch: 3},
			EyePhases: []EyePhase{eyesTo(eyeshape.Idle, 1.1, 0.2)},
			Character: []Phase{
				phase(0.07, animation.EaseSineInOut, props{pX: -6}),
				phase(0.07, animation.EaseSineInOut, props{pX: 6}),
				phase(0.07, animation.EaseSineInOut, props{pX: -6}),
				phase(0.07, animation.EaseSineInOut, props{pX: 6}),
				phase(0.07, animation.EaseSineInOut, props{pX: -6}),
				phase(0.07, animation.EaseSineInOut, props{pX: 6}),
				phase(0.07, animation.EaseSineInOut, props{pX: 0}),
			},
			Body: &BodySpec{
				LeftX: -4, RightX: 4,
				Duration: 0.08, Ease: animation.EaseSineInOut,
				Shakes:         4,
				Hold:           0.2,
				ReturnDuration: 0.2, ReturnEase: animation.EasePower2Out,
			},
			TotalDuration: 1.4,
		},
		{
			ID: Shocked,
			Eyes: &EyeSpec{
				Shape: eyeshape.Wide, Duration: 0.1, Ease: animation.EasePower2Out,
				LeftTransform:  &EyeTransform{Scale: 1.25},
				RightTransform: &EyeTransform{Scale: 1.25},
				ReturnScale:    1,
				ReturnDuration: 0.3,
			},
			EyePhases: []EyePhase{eyesTo(eyeshape.Idle, 0.9, 0.2)},
			Character: []Phase{
				phase(0.12, animation.EasePower2Out, props{pY: -15}),
				phase(0.4, animation.EaseBounceOut, props{pY: 0}),
			},
			Body: &BodySpec{
				LeftX: -10, LeftY: -4, RightX: 10, RightY: -4,
				Duration: 0.12, Ease: animation.EasePower2Out,
				Hold:           0.3,
				ReturnDuration: 0.3, ReturnEase: "back.out(1.7)",
			},
			TotalDuration: 1.2,
		},
		{
			ID:        Spin,
			Eyes:      &EyeSpec{Shape: eyeshape.Happy, Duration: 0.15, Ease: animation.EasePower2Out},
			EyePhases: []EyePhase{eyesTo(eyeshape.Idle, 0.85, 0.2)},
			Character: []Phase{
				phase(0.9, animation.EasePower2Both, props{pRot: 360}),
				phaseAt(animation.WithPrevious, 0.45, "sine.out", props{pY: -12}),
				phaseAt(">", 0.45, "sine.in", props{pY: 0}),
			},
			Glow:          true,
			TotalDuration: 1.1,
			ResetRotation: true,
		},
		{
			ID:        Jump,
			Eyes:      &EyeSpec{Shape: eyeshape.Happy, Duration: 0.15, Delay: 0.1, Ease: animation.EasePower2Out},
			EyePhases: []EyePhase{eyesTo(eyeshape.Idle, 0.75, 0.15)},
			Character: []Phase{
				phase(0.1, animation.EasePower2In, props{pScale: 0.92}),
				phase(0.3, animation.EasePower2Out, props{pY: -45, pScale: 1.05}),
				phase(0.3, animation.EasePower2In, props{pY: 0, pScale: 1}),
				phase(0.08, animation.EasePower2Out, props{pScale: 0.95}),
				phase(0.12, animation.EasePower2Out, props{pScale: 1}),
			},
			Glow:          true,
			TotalDuration: 1.0,
		},
		{
			ID: Idea,
			Eyes: &EyeSpec{
				Shape: eyeshape.Wide, Duration: 0.2, Ease: animation.EaseBackOut,
				LeftTransform:  &EyeTransform{Y: -4},
				RightTransform: &EyeTransform{Y: -4},
			},
			EyePhases: []EyePhase{{Shape: eyeshape.Idle, At: 1.2, Duration: 0.2, Ease: animation.EasePower2Both, Y: px(0)}},
			TotalDuration: 1.5,
			PreserveIdle:  true,
			ShowLightbulb: true,
		},
		{
			ID: BackForth,
			EyePhases: []EyePhase{
				eyesTo(eyeshape.LookLeft, 0, 0.15),
				eyesTo(eyeshape.LookRight, 0.3, 0.15),
				eyesTo(eyeshape.Idle, 1.2, 0.2),
			},
			Character: []Phase{
				phase(0.3, animation.EaseSineInOut, props{pX: -20, pRot: -6}),
				phase(0.5, animation.EaseSineInOut, props{pX: 20, pRot: 6}),
				phase(0.35, animation.EaseSineInOut, props{pX: -10, pRot: -3}),
				phase(0.3, animation.EaseSineInOut, props{pX: 0, pRot: 0}),
			},
			Glow:          true,
			TotalDuration: 1.6,
		},
		{
			ID:            Wink,
			Eyes:          &EyeSpec{Left: eyeshape.Closed, Duration: 0.12, Ease: animation.EasePower2Out},
			EyePhases:     []EyePhase{eyesTo(eyeshape.Idle, 0.45, 0.12)},
			TotalDuration: 0.7,
			PreserveIdle:  true,
		},
		{
			ID:        Nod,
			Eyes:      &EyeSpec{Shape: eyeshape.Half, Duration: 0.15, Ease: animation.EasePower2Out},
			EyePhases: []EyePhase{eyesTo(eyeshape.Idle, 0.6, 0.15)},
			Character: []Phase{
				phase(0.15, animation.EasePower2Out, props{pY: 6, pRotX: 12}),
				phase(0.15, animation.EasePower2Both, props{pY: -2, pRotX: -4}),
				phase(0.15, animation.EasePower2Both, props{pY: 5, pRotX: 10}),
				phase(0.2, animation.EasePower2Out, props{pY: 0, pRotX: 0}),
			},
			TotalDuration: 1.0,
		},
		{
			ID:        Headshake,
			Eyes:      &EyeSpec{Shape: eyeshape.Half, Duration: 0.15, Ease: animation.EasePower2Out},
			EyePhases: []EyePhase{eyesTo(eyeshape.Idle, 0.85, 0.15)},
			Character: []Phase{
				phase(0.12, animation.EasePower2Out, props{pRotY: -20}),
				phase(0.2, animation.EaseSineInOut, props{pRotY: 20}),
				phase(0.18, animation.EaseSineInOut, props{pRotY: -15}),
				phase(0.15, animation.EaseSineInOut, props{pRotY: 10}),
				phase(0.15, animation.EasePower2Out, props{pRotY: 0}),
			},
			TotalDuration:  1.1,
			ResetRotationY: true,
		},
		{
			ID: LookAround,
			EyePhases: []EyePhase{
				{Shape: eyeshape.LookLeft, At: 0, Duration: 0.2, Ease: animation.EasePower2Out, X: px(-6)},
				{Shape: eyeshape.LookRight, At: 0.8, Duration: 0.25, Ease: animation.EasePower2Both, X: px(6)},
				{Shape: eyeshape.Idle, At: 1.6, Duration: 0.2, Ease: animation.EasePower2Both, X: px(0)},
			},
			TotalDuration: 2.0,
			PreserveIdle:  true,
		},
		{
			ID: LookLeft,
			Eyes: &EyeSpec{
				Shape: eyeshape.LookLeft, Duration: 0.25, Ease: animation.EasePower2Out,
				LeftTransform:  &EyeTransform{X: -6},
				RightTransform: &EyeTransform{X: -6},
			},
			TotalDuration: 0.3,
			HoldDuration:  1.0,
			PreserveIdle:  true,
		},
		{
			ID: LookRight,
			Eyes: &EyeSpec{
				Shape: eyeshape.LookRight, Duration: 0.25, Ease: animation.EasePower2Out,
				LeftTransform:  &EyeTransform{X: 6},
				RightTransform: &EyeTransform{X: 6},
			},
			TotalDuration: 0.3,
			HoldDuration:  1.0,
			PreserveIdle:  true,
		},
		{
			ID:        Super,
			Eyes:      &EyeSpec{Shape: eyeshape.Wide, Duration: 0.2, Ease: animation.EasePower2Out},
			EyePhases: []EyePhase{eyesTo(eyeshape.Idle, 1.5, 0.2)},
			Character: []Phase{
				phase(0.4, "back.out(1.7)", props{pY: -10, pScale: 1.25}),
				phase(0.6, animation.EasePower2Both, props{pRot: 360}),
				phase(0.4, animation.EasePower2Out, props{pY: 0, pScale: 1}),
			},
			Body: &BodySpec{
				LeftX: -8, RightX: 8,
				Duration: 0.4, Ease: animation.EaseBackOut,
				Hold:           0.6,
				ReturnDuration: 0.4, ReturnEase: animation.EasePower2Out,
			},
			Glow:          true,
			TotalDuration: 1.8,
			ResetRotation: true,
		},
	}
}

// Catalog maps emotion types to their configs.
type Catalog struct {
	entries map[Type]*Config
}

// NewCatalog indexes cfgs by ID; later duplicates win.
func NewCatalog(cfgs ...*Config) *Catalog {
	c := &Catalog{entries: make(map[Type]*Config, len(cfgs))}
	for _, cfg := range cfgs {
		if cfg != nil {
			c.entries[cfg.ID] = cfg
		}
	}
	return c
}

var defaultCatalog = NewCatalog(builtin()...)

// Default returns the built-in catalog.
func Default() *Catalog { return defaultCatalog }

// Lookup finds t in the built-in catalog.
func Lookup(t Type) (*Config, bool) { return defaultCatalog.Lookup(t) }

// Lookup returns the config for t. The returned config must not be modified.
func (c *Catalog) Lookup(t Type) (*Config, bool) {
	if c == nil {
		return nil, false
	}
	cfg, ok := c.entries[t]
	return cfg, ok
}

// Len is the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Configs lists entries in catalog order, unknown IDs last by name.
func (c *Catalog) Configs() []*Config {
	if c == nil {
		return nil
	}
	out := make([]*Config, 0, len(c.entries))
	for _, t := range allTypes {
		if cfg, ok := c.entries[t]; ok {
			out = append(out, cfg)
		}
	}
	var extra []*Config
	for t, cfg := range c.entries {
		if !t.Valid() {
			extra = append(extra, cfg)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].ID < extra[j].ID })
	return append(out, extra...)
}
