package emotion

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/anty/internal/animation"
	"github.com/normanking/anty/internal/eyeshape"
)

var nopLogger = zerolog.Nop()

const frame = 0.05

func mustLookup(t *testing.T, typ Type) *Config {
	t.Helper()
	cfg, ok := Lookup(typ)
	require.True(t, ok, "missing %s", typ)
	return cfg
}

func TestInterpretPadsToTotalDuration(t *testing.T) {
	in := NewInterpreter(nil, nopLogger)
	for _, cfg := range Default().Configs() {
		tl := in.Interpret(cfg, animation.NewElements(), 1)
		require.NotNil(t, tl)
		require.NoError(t, tl.Err(), cfg.ID)
		assert.InDelta(t, cfg.TotalDuration, tl.Duration(), 1e-6, "%s", cfg.ID)
		assert.True(t, tl.Paused(), "%s must not autoplay", cfg.ID)
	}
}

func TestInterpretNil(t *testing.T) {
	in := NewInterpreter(nil, nopLogger)
	assert.Nil(t, in.Interpret(nil, animation.NewElements(), 1))
}

func TestInterpretScaleInvariance(t *testing.T) {
	in := NewInterpreter(nil, nopLogger)

	for _, cfg := range Default().Configs() {
		t.Run(string(cfg.ID), func(t *testing.T) {
			small := in.Interpret(cfg, animation.NewElements(), 1).Describe()
			large := in.Interpret(cfg, animation.NewElements(), 2).Describe()
			require.Len(t, large, len(small))

			for i := range small {
				a, b := small[i], large[i]
				assert.Equal(t, a.Target, b.Target)
				assert.Equal(t, a.Start, b.Start)
				assert.Equal(t, a.Duration, b.Duration)
				assert.Equal(t, a.Shape, b.Shape)
				require.Len(t, b.Props, len(a.Props))
				for p, v := range a.Props {
					want := v.V
					if IsPixel(p) {
						want *= 2
					}
					assert.InDelta(t, want, b.Props[p].V, 1e-9, "%s %s", a.Target, p)
				}
			}
		})
	}
}

func TestInterpretAppliesBaseScale(t *testing.T) {
	in := NewInterpreter(nil, nopLogger)
	in.SetBaseScale(1.5)
	assert.Equal(t, 1.5, in.BaseScale())

	specs := in.Interpret(mustLookup(t, Celebrate), animation.NewElements(), 1).Describe()
	var scales []float64
	for _, s := range specs {
		if s.Target != "character" {
			continue
		}
		if v, ok := s.Props[animation.PropScale]; ok {
			scales = append(scales, v.V)
		}
	}
	require.Len(t, scales, 2)
	assert.InDelta(t, 1.65, scales[0], 1e-9)
	assert.InDelta(t, 1.5, scales[1], 1e-9)

	in.SetBaseScale(0)
	assert.Equal(t, 1.0, in.BaseScale())
}

func TestInterpretDegradesWithMissingElements(t *testing.T) {
	ticker := animation.NewTicker()
	in := NewInterpreter(ticker, nopLogger)
	els := &animation.Elements{Character: animation.NewElement("character")}

	tl := in.Interpret(mustLookup(t, Celebrate), els, 1)
	require.NotNil(t, tl)
	for _, s := range tl.Describe() {
		assert.Equal(t, "character", s.Target)
	}

	ticker.Play(tl)
	ticker.Advance(1.6, frame)
	assert.True(t, tl.Completed())
	assert.Equal(t, 0.0, els.Character.Get(animation.PropRotation))
	assert.InDelta(t, 0.0, els.Character.Get(animation.PropY), 1e-9)

	bare := in.Interpret(mustLookup(t, Smize), nil, 1)
	require.NotNil(t, bare)
	ticker.Play(bare)
	assert.NotPanics(t, func() { ticker.Advance(2, frame) })
}

func TestEmotionPlaysAndResetsEyes(t *testing.T) {
	ticker := animation.NewTicker()
	in := NewInterpreter(ticker, nopLogger)
	els := animation.NewElements()

	tl := in.Interpret(mustLookup(t, Shocked), els, 1)
	ticker.Play(tl)

	ticker.Advance(0.1, frame)
	assert.InDelta(t, 1.25, els.LeftEye.Get(animation.PropScale), 1e-6)
	assert.Equal(t, "wide", els.LeftPath.Shape().Name)

	ticker.Advance(1.15, frame)
	require.True(t, tl.Completed())
	assert.Equal(t, 1.0, els.LeftEye.Get(animation.PropScale))
	assert.Equal(t, "idle", els.RightPath.Shape().Name)
	assert.Equal(t, eyeshape.MustDimensions(eyeshape.Idle).Width, els.LeftSvg.Get(animation.PropWidth))
	for _, b := range els.Brackets() {
		assert.Equal(t, 0.0, b.Get(animation.PropX))
	}
	assert.False(t, in.HasPendingReset())
}

func TestResetRotationFlag(t *testing.T) {
	ticker := animation.NewTicker()
	in := NewInterpreter(ticker, nopLogger)
	els := animation.NewElements()

	tl := ticker.Play(in.Interpret(mustLookup(t, Spin), els, 1))
	ticker.Advance(0.9, frame)
	assert.InDelta(t, 360, els.Character.Get(animation.PropRotation), 1e-6)

	ticker.Advance(0.3, frame)
	require.True(t, tl.Completed())
	assert.Equal(t, 0.0, els.Character.Get(animation.PropRotation))
}

func TestHoldSchedulesPendingReset(t *testing.T) {
	ticker := animation.NewTicker()
	in := NewInterpreter(ticker, nopLogger)
	els := animation.NewElements()

	tl := ticker.Play(in.Interpret(mustLookup(t, LookLeft), els, 1))
	ticker.Advance(0.3, frame)
	require.True(t, tl.Completed())

	assert.True(t, in.HasPendingReset())
	assert.InDelta(t, -6, els.LeftEye.Get(animation.PropX), 1e-9)
	assert.Equal(t, "look-left", els.LeftPath.Shape().Name)

	ticker.Advance(1.1, frame)
	assert.False(t, in.HasPendingReset())
	assert.Equal(t, 0.0, els.LeftEye.Get(animation.PropX))
	assert.Equal(t, "idle", els.LeftPath.Shape().Name)
}

func TestNextEmotionCancelsPendingReset(t *testing.T) {
	ticker := animation.NewTicker()
	in := NewInterpreter(ticker, nopLogger)
	els := animation.NewElements()

	ticker.Play(in.Interpret(mustLookup(t, LookLeft), els, 1))
	ticker.Advance(0.3, frame)
	require.True(t, in.HasPendingReset())

	ticker.Play(in.Interpret(mustLookup(t, Happy), els, 1))
	ticker.Tick(frame)
	assert.False(t, in.HasPendingReset())

	// past the point where the hold would have expired
	ticker.Advance(1.0, frame)
	assert.InDelta(t, -6, els.LeftEye.Get(animation.PropX), 1e-9)
	assert.Equal(t, "happy", els.LeftPath.Shape().Name)
}

func TestInterruptResetsTransforms(t *testing.T) {
	ticker := animation.NewTicker()
	in := NewInterpreter(ticker, nopLogger)
	els := animation.NewElements()

	tl := ticker.Play(in.Interpret(mustLookup(t, Angry), els, 1))
	ticker.Advance(0.5, frame)
	require.InDelta(t, 3, els.LeftEye.Get(animation.PropX), 1e-9)
	require.InDelta(t, -3, els.RightEye.Get(animation.PropX), 1e-9)

	tl.Kill()
	for _, eye := range els.Eyes() {
		assert.Equal(t, 0.0, eye.Get(animation.PropX))
		assert.Equal(t, 1.0, eye.Get(animation.PropScale))
	}
	for _, b := range els.Brackets() {
		assert.Equal(t, 0.0, b.Get(animation.PropX))
		assert.Equal(t, 0.0, b.Get(animation.PropY))
	}
	assert.Equal(t, 0, ticker.Active())
}

func TestEyeBunchAndAsymmetry(t *testing.T) {
	in := NewInterpreter(nil, nopLogger)
	specs := in.Interpret(mustLookup(t, Angry), animation.NewElements(), 1).Describe()

	require.NotEmpty(t, specs)
	assert.Equal(t, "leftEyePath", specs[0].Target)
	assert.Equal(t, "angry", specs[0].Shape)

	wink := in.Interpret(mustLookup(t, Wink), animation.NewElements(), 1).Describe()
	require.NotEmpty(t, wink)
	assert.Equal(t, "leftEyePath", wink[0].Target)
	assert.Equal(t, "closed", wink[0].Shape)
	for _, s := range wink {
		if s.Start == 0 {
			assert.NotEqual(t, "rightEyePath", s.Target)
		}
	}
}
