package idle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/anty/internal/animation"
	"github.com/normanking/anty/internal/eyeshape"
)

// quarter-second steps land exactly on the 2.5s half cycle
const step = 0.25

func seeded() *rand.Rand { return rand.New(rand.NewSource(1)) }

func TestCreateSnapsEyesAndScale(t *testing.T) {
	ticker := animation.NewTicker()
	els := animation.NewElements()

	a := Create(ticker, els, Options{SizeScale: 2, BaseScale: 1.5, Rand: seeded()})
	require.NotNil(t, a.Timeline)

	assert.Equal(t, "idle", els.LeftPath.Shape().Name)
	assert.Equal(t, "idle", els.RightPath.Shape().Name)
	assert.Equal(t, eyeshape.MustDimensions(eyeshape.Idle).Width*2, els.RightSvg.Get(animation.PropWidth))
	assert.Equal(t, 1.5, els.Character.Get(animation.PropScale))

	assert.True(t, a.Timeline.Paused())
	assert.Equal(t, 0, ticker.Active())
}

func TestIdleLoopYoyos(t *testing.T) {
	ticker := animation.NewTicker()
	els := animation.NewElements()
	a := Create(ticker, els, Options{SizeScale: 1, BaseScale: 1, DisableBlinks: true})

	a.Timeline.Play()
	ticker.Step(10, step)
	tr := els.Character.Transform()
	assert.Equal(t, -DefaultAmplitude, tr.Y)
	assert.Equal(t, DefaultRotation, tr.Rotation)
	assert.InDelta(t, DefaultBreathe, tr.Scale, 1e-12)

	ticker.Step(10, step)
	tr = els.Character.Transform()
	assert.Equal(t, 0.0, tr.Y)
	assert.Equal(t, 0.0, tr.Rotation)
	assert.Equal(t, 1.0, tr.Scale)

	ticker.Step(5, step)
	assert.Less(t, els.Character.Get(animation.PropY), 0.0)
	assert.True(t, a.Timeline.IsActive())
}

func TestIdleAmplitudeScalesWithSize(t *testing.T) {
	ticker := animation.NewTicker()
	els := animation.NewElements()
	a := Create(ticker, els, Options{SizeScale: 2, DisableBlinks: true})

	a.Timeline.Play()
	ticker.Step(10, step)
	assert.Equal(t, -2*DefaultAmplitude, els.Character.Get(animation.PropY))
	assert.Equal(t, DefaultRotation, els.Character.Get(animation.PropRotation))
}

func TestIdleBreathesRelativeToBaseScale(t *testing.T) {
	ticker := animation.NewTicker()
	els := animation.NewElements()
	a := Create(ticker, els, Options{BaseScale: 1.5, DisableBlinks: true})

	a.Timeline.Play()
	ticker.Step(10, step)
	assert.InDelta(t, 1.5*DefaultBreathe, els.Character.Get(animation.PropScale), 1e-12)

	// super mode boost followed by a restart keeps the boosted baseline
	els.Character.SetProps(map[animation.Prop]float64{
		animation.PropY:        0,
		animation.PropRotation: 0,
		animation.PropScale:    2,
	})
	a.Timeline.Invalidate()
	a.Timeline.Restart()
	ticker.Step(10, step)
	assert.InDelta(t, 2*DefaultBreathe, els.Character.Get(animation.PropScale), 1e-12)

	ticker.Step(10, step)
	assert.InDelta(t, 2.0, els.Character.Get(animation.PropScale), 1e-12)
}

func TestIdleDelay(t *testing.T) {
	ticker := animation.NewTicker()
	els := animation.NewElements()
	a := Create(ticker, els, Options{Delay: 1, DisableBlinks: true})

	a.Timeline.Play()
	ticker.Step(4, step)
	assert.Equal(t, 0.0, els.Character.Get(animation.PropY))

	ticker.Step(10, step)
	assert.Equal(t, -DefaultAmplitude, els.Character.Get(animation.PropY))
}

func TestIdleWithoutElements(t *testing.T) {
	ticker := animation.NewTicker()
	var a *Animation
	require.NotPanics(t, func() { a = Create(ticker, nil, Options{Rand: seeded()}) })
	a.Timeline.Play()
	assert.NotPanics(t, func() { ticker.Advance(20, 0.5) })
	assert.Zero(t, a.Blinks.Count())
}

func TestOptionDefaults(t *testing.T) {
	var o Options
	o.withDefaults()
	assert.Equal(t, 1.0, o.SizeScale)
	assert.Equal(t, DefaultAmplitude, o.Amplitude)
	assert.Equal(t, DefaultBreathe, o.Breathe)
	assert.Equal(t, DefaultBlinkMin, o.BlinkMin)
	assert.Equal(t, DefaultBlinkMax, o.BlinkMax)
	assert.Equal(t, DefaultDoubleChance, o.DoubleChance)
	assert.Equal(t, animation.EaseSineInOut, o.Ease)

	o = Options{BlinkMin: 5, BlinkMax: 2, DoubleChance: -1}
	o.withDefaults()
	assert.Equal(t, 5.0, o.BlinkMax)
	assert.Zero(t, o.DoubleChance)
}
